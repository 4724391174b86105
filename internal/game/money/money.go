// Package money formats and parses amounts of money for the two supported
// money types. Amounts are float64 in the base unit (silver or dollar).
package money

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
)

// Type selects the currency system of a story.
type Type string

const (
	Modern  Type = "modern"
	Fantasy Type = "fantasy"
	None    Type = ""
)

type unit struct {
	name  string
	short string
	value float64
}

// Formatter displays and parses money of one Type.
type Formatter struct {
	kind  Type
	units []unit // largest first
	names map[string]float64
}

// New returns the Formatter for t.
//
// Postcondition: returns an error when t is neither Modern nor Fantasy.
func New(t Type) (*Formatter, error) {
	f := &Formatter{kind: t, names: make(map[string]float64)}
	switch t {
	case Fantasy:
		f.units = []unit{{"gold", "g", 10}, {"silver", "s", 1}, {"copper", "c", 0.1}}
	case Modern:
		f.units = []unit{{"dollar", "$", 1}, {"cent", "c", 0.01}}
	default:
		return nil, fmt.Errorf("money: unknown money type %q", t)
	}
	for _, u := range f.units {
		f.names[u.name] = u.value
		f.names[u.name+"s"] = u.value
	}
	return f, nil
}

// Type returns the currency system.
func (f *Formatter) Type() Type { return f.kind }

// smallest returns amount in the smallest unit, rounded.
func (f *Formatter) smallest(amount float64) int64 {
	return int64(math.Round(amount / f.units[len(f.units)-1].value))
}

// Display renders amount, e.g. "12 gold, 3 silver, and 2 copper" or, short,
// "12g/3s/2c". zeroMsg replaces the long form of a zero amount; empty means
// "nothing".
func (f *Formatter) Display(amount float64, short bool, zeroMsg string) string {
	n := f.smallest(amount)
	if f.kind == Modern {
		if short {
			return fmt.Sprintf("$ %d.%02d", n/100, n%100)
		}
		if n == 0 {
			return zeroOr(zeroMsg)
		}
		var parts []string
		if n/100 > 0 {
			parts = append(parts, fmt.Sprintf("%d dollar", n/100))
		}
		if n%100 > 0 {
			parts = append(parts, fmt.Sprintf("%d cent", n%100))
		}
		return lang.Join(parts, "and")
	}
	gold, silver, copper := n/100, n%100/10, n%10
	if short {
		return fmt.Sprintf("%dg/%ds/%dc", gold, silver, copper)
	}
	if n == 0 {
		return zeroOr(zeroMsg)
	}
	var parts []string
	for i, v := range []int64{gold, silver, copper} {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", v, f.units[i].name))
		}
	}
	return lang.Join(parts, "and")
}

func zeroOr(msg string) string {
	if msg == "" {
		return "nothing"
	}
	return msg
}

// ToFloat sums coins given per unit name; singular and plural names are
// both accepted.
func (f *Formatter) ToFloat(coins map[string]float64) (float64, error) {
	var total float64
	for name, count := range coins {
		v, ok := f.names[name]
		if !ok {
			return 0, fmt.Errorf("money: unknown coin %q", name)
		}
		total += v * count
	}
	return total, nil
}

var (
	dollarPattern  = regexp.MustCompile(`^\$\s*(\d+(?:\.\d+)?)$`)
	fantasyPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)([gsc])$`)
)

// FromString parses the short notation: "22g/66s/33c" or "$ 3.45".
func (f *Formatter) FromString(s string) (float64, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if f.kind == Modern {
		m := dollarPattern.FindStringSubmatch(s)
		if m == nil {
			return 0, fmt.Errorf("money: invalid amount %q", s)
		}
		return strconv.ParseFloat(m[1], 64)
	}
	var total float64
	for _, part := range strings.Split(s, "/") {
		m := fantasyPattern.FindStringSubmatch(part)
		if m == nil {
			return 0, fmt.Errorf("money: invalid amount %q", s)
		}
		v, _ := strconv.ParseFloat(m[1], 64)
		for _, u := range f.units {
			if u.short == m[2] {
				total += v * u.value
			}
		}
	}
	return total, nil
}

// Parse parses words typed by a player, such as ["44", "gold", "5",
// "silver"], ["44g/5s"], ["$", "46.15"] or ["44", "dollar", "215", "cent"].
//
// Postcondition: returns a *errs.ParseError when the words are not money.
func (f *Formatter) Parse(words []string) (float64, error) {
	notMoney := errs.Parse("That is not an amount of money.")
	if len(words) == 0 {
		return 0, notMoney
	}
	if v, err := f.FromString(strings.Join(words, " ")); err == nil {
		return v, nil
	}
	if len(words)%2 != 0 {
		return 0, notMoney
	}
	coins := make(map[string]float64)
	for i := 0; i < len(words); i += 2 {
		amount, err := strconv.ParseFloat(words[i], 64)
		if err != nil {
			return 0, notMoney
		}
		name := strings.ToLower(words[i+1])
		if _, ok := f.names[name]; !ok {
			return 0, notMoney
		}
		coins[name] += amount
	}
	return f.ToFloat(coins)
}
