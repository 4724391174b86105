// Package world is the object model of the game: an arena of locations,
// exits, items and livings addressed by stable identifiers.
//
// Objects never hold pointers to each other. Containment and links are
// stored as IDs and resolved through the owning World, which makes the
// cyclic room graph safe to copy, serialize and destroy piecemeal.
// The World is not safe for concurrent use; the driver serializes all
// mutation onto its own goroutine.
package world

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/gametime"
	"github.com/cory-johannsen/tale/internal/pubsub"
)

// ID identifies an object within a World. Zero is never a valid ID.
type ID uint64

// LimboID is the ID of the Limbo location present in every World.
const LimboID ID = 1

// Kind names the concrete type of an object.
type Kind string

const (
	KindItem      Kind = "item"
	KindContainer Kind = "container"
	KindWeapon    Kind = "weapon"
	KindArmour    Kind = "armour"
	KindClock     Kind = "clock"
	KindLiving    Kind = "living"
	KindNPC       Kind = "npc"
	KindMonster   Kind = "monster"
	KindPlayer    Kind = "player"
	KindLocation  Kind = "location"
	KindExit      Kind = "exit"
	KindDoor      Kind = "door"
)

var (
	// ErrNotContained reports an attempt to remove an object from a holder
	// that does not contain it. It always indicates a bug in the caller.
	ErrNotContained = errors.New("world: object is not contained there")
	// ErrUnboundExit reports use of an exit whose target was never resolved.
	ErrUnboundExit = errors.New("world: exit target is not bound")
	// ErrDuplicatePath reports two objects registered under one path.
	ErrDuplicatePath = errors.New("world: duplicate object path")
)

// Object is implemented by every world object through the embedded Base.
type Object interface {
	Core() *Base
	Title() string
	Description() string
}

// World owns every object of one game.
type World struct {
	objects map[ID]Object
	paths   map[string]ID
	nextID  ID

	// Bus carries wiretaps and other notifications.
	Bus *pubsub.Bus
	// Clock is the game clock.
	Clock *gametime.Clock
	// Dice is the randomness source for stats and NPC behaviour.
	Dice dice.Source
}

// New creates a World containing only Limbo.
//
// Postcondition: w.Get(LimboID) is the Limbo location.
func New(clock *gametime.Clock, src dice.Source) *World {
	if src == nil {
		src = dice.NewCryptoSource()
	}
	w := &World{
		objects: make(map[ID]Object),
		paths:   make(map[string]ID),
		nextID:  LimboID,
		Bus:     pubsub.New(),
		Clock:   clock,
		Dice:    src,
	}
	limbo := w.NewLocation("Limbo", "The intermediate or transitional place or state. There's only nothingness. Living beings end up here if they're not in a proper location yet.")
	if limbo.ID != LimboID {
		panic("world: limbo must be the first object")
	}
	return w
}

func (w *World) add(o Object, kind Kind) {
	b := o.Core()
	b.ID = w.nextID
	w.nextID++
	b.Kind = kind
	b.world = w
	w.objects[b.ID] = o
}

// Get returns the object with the given id, or nil.
func (w *World) Get(id ID) Object {
	if id == 0 {
		return nil
	}
	return w.objects[id]
}

// Limbo returns the Limbo location.
func (w *World) Limbo() *Location {
	return w.objects[LimboID].(*Location)
}

// Location returns the location with the given id, or nil.
func (w *World) Location(id ID) *Location {
	l, _ := w.Get(id).(*Location)
	return l
}

// Living returns the living with the given id, or nil.
func (w *World) Living(id ID) *Living {
	return AsLiving(w.Get(id))
}

// Item returns the item with the given id, or nil.
func (w *World) Item(id ID) *Item {
	return AsItem(w.Get(id))
}

// SetPath registers o under a stable path such as "town.square".
func (w *World) SetPath(o Object, path string) error {
	if other, ok := w.paths[path]; ok && other != o.Core().ID {
		return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
	}
	w.paths[path] = o.Core().ID
	o.Core().Path = path
	return nil
}

// ByPath returns the object registered under path, or nil.
func (w *World) ByPath(path string) Object {
	return w.Get(w.paths[path])
}

// Paths returns all registered paths, sorted.
func (w *World) Paths() []string {
	out := make([]string, 0, len(w.paths))
	for p := range w.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Objects returns all live objects ordered by ID.
func (w *World) Objects() []Object {
	ids := make([]ID, 0, len(w.objects))
	for id := range w.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]Object, len(ids))
	for i, id := range ids {
		out[i] = w.objects[id]
	}
	return out
}

// Len returns the number of live objects, Limbo included.
func (w *World) Len() int { return len(w.objects) }

// Players returns the players currently in the world ordered by ID.
func (w *World) Players() []*Player {
	var out []*Player
	for _, o := range w.Objects() {
		if p, ok := o.(*Player); ok {
			out = append(out, p)
		}
	}
	return out
}

// Base holds the state shared by every object. It is embedded by all
// concrete object types.
type Base struct {
	ID   ID
	Kind Kind
	// Name is the identifier used to refer to the object in commands.
	Name string
	// Path is the stable "zone.symbol" path of objects defined by a story.
	Path string
	// Aliases are alternative names.
	Aliases []string
	// Verbs maps custom verbs this object understands to their help text.
	Verbs map[string]string
	// ShortDescription, when set, is shown as its own sentence in room listings.
	ShortDescription string

	title       string
	description string
	world       *World
	destroyed   bool
}

func newBase(name, title, description string) Base {
	if title == "" {
		title = name
	}
	return Base{
		Name:        strings.ToLower(name),
		Verbs:       make(map[string]string),
		title:       title,
		description: Dedent(description),
	}
}

// Core returns b itself; it makes every embedding type an Object.
func (b *Base) Core() *Base { return b }

// Title returns the display name.
func (b *Base) Title() string { return b.title }

// SetTitle changes the display name.
func (b *Base) SetTitle(t string) { b.title = t }

// Description returns the long description.
func (b *Base) Description() string { return b.description }

// SetDescription changes the long description; common indentation is removed.
func (b *Base) SetDescription(d string) { b.description = Dedent(d) }

// World returns the owning world, or nil once destroyed.
func (b *Base) World() *World {
	if b.destroyed {
		return nil
	}
	return b.world
}

// Alive reports whether the object still exists in its world.
func (b *Base) Alive() bool { return b.world != nil && !b.destroyed }

// AddAliases adds alternative names, ignoring duplicates.
func (b *Base) AddAliases(aliases ...string) {
	for _, a := range aliases {
		a = strings.ToLower(a)
		if a == "" || b.HasAlias(a) {
			continue
		}
		b.Aliases = append(b.Aliases, a)
	}
}

// HasAlias reports whether a is one of the aliases.
func (b *Base) HasAlias(a string) bool {
	for _, x := range b.Aliases {
		if x == a {
			return true
		}
	}
	return false
}

// Matches reports whether name, case-insensitively, equals the object's
// name, title or one of its aliases.
func (b *Base) Matches(name string) bool {
	name = strings.ToLower(name)
	return name == strings.ToLower(b.Name) || name == strings.ToLower(b.title) || b.HasAlias(name)
}

func (b *Base) String() string {
	return fmt.Sprintf("<%s %q #%d>", b.Kind, b.Name, b.ID)
}

func (b *Base) self() Object {
	if b.world == nil {
		return nil
	}
	return b.world.objects[b.ID]
}

// AsLiving returns the Living embedded in o (a Living, NPC, Monster or
// Player), or nil.
func AsLiving(o Object) *Living {
	if l, ok := o.(interface{ asLiving() *Living }); ok {
		return l.asLiving()
	}
	return nil
}

// AsItem returns the Item embedded in o (any item kind), or nil.
func AsItem(o Object) *Item {
	if i, ok := o.(interface{ asItem() *Item }); ok {
		return i.asItem()
	}
	return nil
}

// AsExit returns the Exit embedded in o (an Exit or Door), or nil.
func AsExit(o Object) *Exit {
	if e, ok := o.(interface{ asExit() *Exit }); ok {
		return e.asExit()
	}
	return nil
}

// AsLocation returns o as a Location, or nil.
func AsLocation(o Object) *Location {
	l, _ := o.(*Location)
	return l
}

// AsPlayer returns o as a Player, or nil.
func AsPlayer(o Object) *Player {
	p, _ := o.(*Player)
	return p
}

// Dedent removes the whitespace prefix common to all non-blank lines and
// trims the result.
func Dedent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := -1
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		n := len(l) - len(strings.TrimLeft(l, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix > 0 {
		for i, l := range lines {
			if len(l) >= prefix {
				lines[i] = l[prefix:]
			} else {
				lines[i] = strings.TrimLeft(l, " \t")
			}
		}
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
