// Package races holds the race table that seeds a living's statistics.
package races

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/tale/internal/game/dice"
)

// BodySize classifies how large a race is.
type BodySize string

const (
	SizeTiny     BodySize = "tiny"
	SizeSmall    BodySize = "small"
	SizeHuman    BodySize = "human sized"
	SizeLarge    BodySize = "large"
	SizeHuge     BodySize = "huge"
	SizeColossal BodySize = "colossal"
)

var sizeOrder = []BodySize{SizeTiny, SizeSmall, SizeHuman, SizeLarge, SizeHuge, SizeColossal}

// Rank orders body sizes from tiny (0) to colossal (5); unknown sizes
// rank as human sized.
func (s BodySize) Rank() int {
	for i, x := range sizeOrder {
		if x == s {
			return i
		}
	}
	return 2
}

// BodyType classifies the anatomy of a race.
type BodyType string

const (
	Humanoid    BodyType = "humanoid"
	Quadruped   BodyType = "quadruped"
	Winged      BodyType = "winged"
	Insectoid   BodyType = "insectoid"
	Serpentine  BodyType = "serpentine"
	Noncorporal BodyType = "noncorporal"
	Avian       BodyType = "avian"
)

// Race describes a playable or non-playable race. Each stat is a dice
// expression rolled when a living of this race is created.
type Race struct {
	Name      string
	Size      BodySize
	BodyType  BodyType
	Language  string
	Mass      float64 // kilograms
	Playable  bool
	StatDice  map[string]string
	BaseHP    int
	ArmorBase int
}

// StatNames lists the rolled attributes in display order.
var StatNames = []string{"agi", "cha", "int", "lck", "spd", "sta", "str", "wis"}

var table = map[string]Race{
	"human": {
		Name: "human", Size: SizeHuman, BodyType: Humanoid, Language: "English", Mass: 72, Playable: true,
		StatDice: uniform("3d6+2"), BaseHP: 10, ArmorBase: 10,
	},
	"elf": {
		Name: "elf", Size: SizeHuman, BodyType: Humanoid, Language: "Elvish", Mass: 60, Playable: true,
		StatDice: with(uniform("3d6+2"), map[string]string{"agi": "4d6kh3+4", "wis": "4d6kh3+3", "sta": "3d6"}),
		BaseHP: 8, ArmorBase: 10,
	},
	"dwarf": {
		Name: "dwarf", Size: SizeSmall, BodyType: Humanoid, Language: "Dwarvish", Mass: 80, Playable: true,
		StatDice: with(uniform("3d6+2"), map[string]string{"sta": "4d6kh3+4", "str": "4d6kh3+3", "spd": "3d6"}),
		BaseHP: 12, ArmorBase: 11,
	},
	"hobbit": {
		Name: "hobbit", Size: SizeSmall, BodyType: Humanoid, Language: "English", Mass: 35, Playable: true,
		StatDice: with(uniform("3d6+2"), map[string]string{"lck": "4d6kh3+4", "str": "3d6-2"}),
		BaseHP: 8, ArmorBase: 11,
	},
	"orc": {
		Name: "orc", Size: SizeHuman, BodyType: Humanoid, Language: "Orcish", Mass: 90,
		StatDice: with(uniform("3d6"), map[string]string{"str": "4d6kh3+4", "int": "3d6-3"}),
		BaseHP: 12, ArmorBase: 10,
	},
	"dragon": {
		Name: "dragon", Size: SizeColossal, BodyType: Winged, Language: "Draconic", Mass: 8000,
		StatDice: uniform("4d6kh3+10"), BaseHP: 200, ArmorBase: 20,
	},
	"golem": {
		Name: "golem", Size: SizeLarge, BodyType: Humanoid, Language: "none", Mass: 1000,
		StatDice: with(uniform("3d6"), map[string]string{"str": "4d6kh3+10", "spd": "2d6", "int": "2d6"}),
		BaseHP: 60, ArmorBase: 18,
	},
	"ghost": {
		Name: "ghost", Size: SizeHuman, BodyType: Noncorporal, Language: "English", Mass: 0,
		StatDice: uniform("3d6"), BaseHP: 20, ArmorBase: 15,
	},
	"dog": {
		Name: "dog", Size: SizeSmall, BodyType: Quadruped, Language: "none", Mass: 25,
		StatDice: with(uniform("2d6"), map[string]string{"spd": "3d6+4"}), BaseHP: 6, ArmorBase: 8,
	},
	"cat": {
		Name: "cat", Size: SizeTiny, BodyType: Quadruped, Language: "none", Mass: 4,
		StatDice: with(uniform("2d6"), map[string]string{"agi": "3d6+6"}), BaseHP: 3, ArmorBase: 8,
	},
	"rodent": {
		Name: "rodent", Size: SizeTiny, BodyType: Quadruped, Language: "none", Mass: 0.3,
		StatDice: uniform("1d6+1"), BaseHP: 1, ArmorBase: 6,
	},
	"insect": {
		Name: "insect", Size: SizeTiny, BodyType: Insectoid, Language: "none", Mass: 0.01,
		StatDice: with(uniform("1d6+1"), map[string]string{"spd": "3d6+2"}), BaseHP: 1, ArmorBase: 4,
	},
	"half-orc": {
		Name: "half-orc", Size: SizeHuman, BodyType: Humanoid, Language: "Orcish", Mass: 80, Playable: true,
		StatDice: with(uniform("3d6+2"), map[string]string{"str": "4d6kh3+3"}), BaseHP: 11, ArmorBase: 10,
	},
	"bot": {
		Name: "bot", Size: SizeSmall, BodyType: Noncorporal, Language: "none", Mass: 5,
		StatDice: uniform("2d6+2"), BaseHP: 4, ArmorBase: 12,
	},
	"bird": {
		Name: "bird", Size: SizeTiny, BodyType: Avian, Language: "none", Mass: 0.2,
		StatDice: with(uniform("1d6+1"), map[string]string{"spd": "3d6+2"}), BaseHP: 1, ArmorBase: 6,
	},
}

func uniform(expr string) map[string]string {
	m := make(map[string]string, len(StatNames))
	for _, s := range StatNames {
		m[s] = expr
	}
	return m
}

func with(base, overrides map[string]string) map[string]string {
	for k, v := range overrides {
		base[k] = v
	}
	return base
}

// Default is the race used when none is given.
const Default = "human"

// Lookup returns the race with the given name. An empty name means Default.
func Lookup(name string) (Race, error) {
	if name == "" {
		name = Default
	}
	r, ok := table[name]
	if !ok {
		return Race{}, fmt.Errorf("races: unknown race %q", name)
	}
	return r, nil
}

// Names returns all race names, sorted.
func Names() []string {
	out := make([]string, 0, len(table))
	for n := range table {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Playable returns the names of the races a player may choose, sorted.
func Playable() []string {
	var out []string
	for _, n := range Names() {
		if table[n].Playable {
			out = append(out, n)
		}
	}
	return out
}

// Stats are the rolled attributes of a living.
type Stats struct {
	Race     string
	Level    int
	XP       int
	HP       int
	MaxHP    int
	AC       int
	Values   map[string]int
	Size     BodySize
	BodyType BodyType
	Language string
	Weight   float64
}

// Get returns the named attribute value, or 0.
func (s Stats) Get(name string) int {
	return s.Values[name]
}

// RollStats rolls the statistics for a new living of the named race.
//
// Postcondition: every name in StatNames has a value and HP == MaxHP > 0.
func RollStats(raceName string, src dice.Source) (Stats, error) {
	r, err := Lookup(raceName)
	if err != nil {
		return Stats{}, err
	}
	st := Stats{
		Race:     r.Name,
		Level:    1,
		Values:   make(map[string]int, len(StatNames)),
		Size:     r.Size,
		BodyType: r.BodyType,
		Language: r.Language,
		Weight:   r.Mass,
		AC:       r.ArmorBase,
	}
	for _, name := range StatNames {
		e, err := dice.Parse(r.StatDice[name])
		if err != nil {
			return Stats{}, fmt.Errorf("races: stat %s of %s: %w", name, r.Name, err)
		}
		v := dice.Roll(e, src).Total()
		if v < 1 {
			v = 1
		}
		st.Values[name] = v
	}
	st.MaxHP = r.BaseHP + (st.Values["sta"]-10)/2
	if st.MaxHP < 1 {
		st.MaxHP = 1
	}
	st.HP = st.MaxHP
	return st, nil
}
