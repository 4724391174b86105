package races_test

import (
	"testing"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestLookup(t *testing.T) {
	r, err := races.Lookup("elf")
	require.NoError(t, err)
	assert.Equal(t, "Elvish", r.Language)
	_, err = races.Lookup("unicorn")
	assert.Error(t, err)
	assert.Contains(t, races.Playable(), "human")
	assert.NotContains(t, races.Playable(), "dragon")
}

func TestRollStats_AllRaces(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.SampledFrom(races.Names()).Draw(rt, "race")
		st, err := races.RollStats(name, dice.NewSeededSource(rapid.Uint64().Draw(rt, "seed")))
		require.NoError(rt, err)
		for _, s := range races.StatNames {
			if st.Get(s) < 1 {
				rt.Fatalf("%s: stat %s is %d", name, s, st.Get(s))
			}
		}
		if st.HP != st.MaxHP || st.HP < 1 {
			rt.Fatalf("bad hp %d/%d", st.HP, st.MaxHP)
		}
	})
}

func TestBodySize_Rank(t *testing.T) {
	assert.Less(t, races.SizeTiny.Rank(), races.SizeHuman.Rank())
	assert.Equal(t, 5, races.SizeColossal.Rank())
	assert.Equal(t, races.SizeHuman.Rank(), races.BodySize("odd").Rank())
}
