package money_test

import (
	"testing"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisplay_Fantasy(t *testing.T) {
	mf, err := money.New(money.Fantasy)
	require.NoError(t, err)
	assert.Equal(t, "nothing", mf.Display(0, false, ""))
	assert.Equal(t, "zilch", mf.Display(0, false, "zilch"))
	assert.Equal(t, "nothing", mf.Display(0.01, false, ""))
	assert.Equal(t, "1 copper", mf.Display(0.06, false, ""))
	assert.Equal(t, "12 gold, 3 silver, and 2 copper", mf.Display(123.24, false, ""))
	assert.Equal(t, "12 gold, 3 silver, and 3 copper", mf.Display(123.26, false, ""))
	assert.Equal(t, "0g/0s/0c", mf.Display(0, true, ""))
	assert.Equal(t, "12g/3s/2c", mf.Display(123.24, true, ""))
	assert.Equal(t, "12g/3s/3c", mf.Display(123.26, true, ""))
}

func TestDisplay_Modern(t *testing.T) {
	mf, err := money.New(money.Modern)
	require.NoError(t, err)
	assert.Equal(t, "nothing", mf.Display(0, false, ""))
	assert.Equal(t, "zilch", mf.Display(0, false, "zilch"))
	assert.Equal(t, "nothing", mf.Display(0.001, false, ""))
	assert.Equal(t, "1 cent", mf.Display(0.006, false, ""))
	assert.Equal(t, "5 cent", mf.Display(0.05, false, ""))
	assert.Equal(t, "123 dollar and 24 cent", mf.Display(123.244, false, ""))
	assert.Equal(t, "123 dollar and 25 cent", mf.Display(123.246, false, ""))
	assert.Equal(t, "$ 0.00", mf.Display(0, true, ""))
	assert.Equal(t, "$ 123.24", mf.Display(123.244, true, ""))
	assert.Equal(t, "$ 123.25", mf.Display(123.246, true, ""))
}

func TestToFloat(t *testing.T) {
	_, err := money.New("bubblewrap")
	assert.Error(t, err)

	mf, _ := money.New(money.Fantasy)
	v, err := mf.ToFloat(nil)
	require.NoError(t, err)
	assert.Zero(t, v)
	v, _ = mf.ToFloat(map[string]float64{"copper": 1, "coppers": 2})
	assert.InDelta(t, 0.3, v, 1e-4)
	v, _ = mf.ToFloat(map[string]float64{"gold": 22.5, "silver": 100.2, "copper": 4})
	assert.InDelta(t, 325.6, v, 1e-4)
	v, err = mf.FromString("22g/66s/33c")
	require.NoError(t, err)
	assert.InDelta(t, 289.3, v, 1e-4)

	mf, _ = money.New(money.Modern)
	v, _ = mf.ToFloat(map[string]float64{"cent": 22, "cents": 33})
	assert.InDelta(t, 0.55, v, 1e-4)
	v, _ = mf.ToFloat(map[string]float64{"dollar": 22, "dollars": 33})
	assert.InDelta(t, 55.0, v, 1e-4)
	v, _ = mf.ToFloat(map[string]float64{"dollar": 5, "cent": 42})
	assert.InDelta(t, 5.42, v, 1e-4)
	v, _ = mf.FromString("$3.45")
	assert.InDelta(t, 3.45, v, 1e-4)
	v, _ = mf.FromString("$  3.45")
	assert.InDelta(t, 3.45, v, 1e-4)
}

func TestParse(t *testing.T) {
	mf, _ := money.New(money.Fantasy)
	for _, bad := range [][]string{{}, {"44"}, {"44g/s"}, {"gold"}} {
		_, err := mf.Parse(bad)
		assert.True(t, errs.IsParse(err), "%v", bad)
	}
	v, err := mf.Parse([]string{"44", "gold", "5", "silver", "66", "copper"})
	require.NoError(t, err)
	assert.InDelta(t, 451.6, v, 1e-4)
	v, err = mf.Parse([]string{"44g/5s/66c"})
	require.NoError(t, err)
	assert.InDelta(t, 451.6, v, 1e-4)

	mf, _ = money.New(money.Modern)
	for _, bad := range [][]string{{}, {"44"}, {"$xxx"}, {"dollar"}} {
		_, err := mf.Parse(bad)
		assert.True(t, errs.IsParse(err), "%v", bad)
	}
	for _, words := range [][]string{{"44", "dollar", "215", "cent"}, {"$46.15"}, {"$ 46.15"}, {"$", "46.15"}} {
		v, err := mf.Parse(words)
		require.NoError(t, err, words)
		assert.InDelta(t, 46.15, v, 1e-4)
	}
}
