package world

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
)

// Item is a thing that can be carried, contained and manipulated.
// A plain Item holds nothing.
type Item struct {
	Base
	// DoorCode is non-zero for keys; it opens doors with the same code.
	DoorCode int
	// Value is the worth in the smallest money unit.
	Value float64
	// Weight is informational only.
	Weight float64
	// ReadText is shown by the read command.
	ReadText string
	// Messages maps a manipulation verb (or custom verb) to the text shown
	// to the actor. "<verb>:room" is shown to the others present.
	Messages map[string]string

	containedIn ID
}

// NewItem creates an item. The title defaults to name.
func (w *World) NewItem(name, title, description string) *Item {
	it := &Item{Base: newBase(name, title, description)}
	w.add(it, KindItem)
	return it
}

func (i *Item) asItem() *Item { return i }

// ContainedIn returns the object holding the item, or nil.
func (i *Item) ContainedIn() Object {
	if i.world == nil {
		return nil
	}
	return i.world.Get(i.containedIn)
}

// Location returns the location the item is ultimately in, following
// containers and carriers. It is nil when the item is nowhere.
func (i *Item) Location() *Location {
	for depth, o := 0, i.ContainedIn(); o != nil && depth < 64; depth++ {
		switch v := o.(type) {
		case *Location:
			return v
		default:
			if l := AsLiving(o); l != nil {
				return l.Location()
			}
			if it := AsItem(o); it != nil {
				o = it.ContainedIn()
				continue
			}
			return nil
		}
	}
	return nil
}

// Insert refuses; only containers hold things.
func (i *Item) Insert(Object, *Living) error {
	return errs.Refused("You can't put things in there.")
}

// Remove refuses.
func (i *Item) Remove(Object, *Living) error {
	return errs.Refused("You can't take things from there.")
}

// AllowItemMove is the permission check for moving the item itself.
func (i *Item) AllowItemMove(*Living, string) error { return nil }

func (i *Item) Contents() []ID           { return nil }
func (i *Item) Contains(Object) bool     { return false }
func (i *Item) attach(Object)            {}
func (i *Item) detach(Object) bool       { return false }
func (i *Item) holderContents() []Object { return nil }

// Move moves the item from its current holder into target.
// If target refuses the item it stays where it was.
//
// Precondition: the item is held by the holder recorded as its container.
func (i *Item) Move(target Holder, actor *Living, verb string) error {
	if verb == "" {
		verb = "move"
	}
	self := i.self()
	if self == nil {
		return fmt.Errorf("world: moving destroyed item %s", i)
	}
	if err := target.AllowItemMove(actor, verb); err != nil {
		return err
	}
	src, _ := i.ContainedIn().(Holder)
	if src != nil {
		if !src.Contains(self) {
			return fmt.Errorf("%w: %s in %s", ErrNotContained, i, src.Core())
		}
		if err := src.Remove(self, actor); err != nil {
			return err
		}
	}
	if err := target.Insert(self, actor); err != nil {
		if src != nil {
			src.(rawHolder).attach(self)
		} else {
			i.containedIn = 0
		}
		return err
	}
	return nil
}

// Read tells the actor the item's text.
func (i *Item) Read(_ Context, actor *Living) error {
	if i.ReadText == "" {
		return errs.Refused("There's nothing written on %s.", i.title)
	}
	actor.Tell(i.ReadText, End)
	return nil
}

// Manipulate shows the configured message for verb, or refuses.
func (i *Item) Manipulate(_ Context, verb string, actor *Living) error {
	if !i.tellMessage(verb, actor) {
		return errs.Refused("You can't %s %s.", verb, i.title)
	}
	return nil
}

// Activate shows the "activate" message, or refuses.
func (i *Item) Activate(_ Context, actor *Living) error {
	if !i.tellMessage("activate", actor) {
		return errs.Refused("You can't activate %s.", i.title)
	}
	return nil
}

// Deactivate shows the "deactivate" message, or refuses.
func (i *Item) Deactivate(_ Context, actor *Living) error {
	if !i.tellMessage("deactivate", actor) {
		return errs.Refused("You can't deactivate %s.", i.title)
	}
	return nil
}

// HandleVerb handles custom verbs that have a message configured.
func (i *Item) HandleVerb(_ Context, act Action, actor *Living) (bool, error) {
	if _, ok := i.Verbs[act.Verb]; !ok {
		return false, nil
	}
	return i.tellMessage(act.Verb, actor), nil
}

func (i *Item) tellMessage(verb string, actor *Living) bool {
	msg, ok := i.Messages[verb]
	if !ok {
		return false
	}
	actor.Tell(msg, End)
	if room, ok := i.Messages[verb+":room"]; ok {
		if loc := actor.Location(); loc != nil {
			loc.Tell(expandTitles(room, actor), actor, nil, "")
		}
	}
	return true
}

// Container is an item that holds other items.
type Container struct {
	Item
	contents []ID
}

// NewContainer creates an empty container.
func (w *World) NewContainer(name, title, description string) *Container {
	c := &Container{Item: Item{Base: newBase(name, title, description)}}
	w.add(c, KindContainer)
	return c
}

// Contents returns the IDs of the contained items.
func (c *Container) Contents() []ID { return append([]ID(nil), c.contents...) }

// Contains reports whether obj is directly inside the container.
func (c *Container) Contains(obj Object) bool {
	return indexOf(c.contents, obj.Core().ID) >= 0
}

// Insert puts an item into the container.
func (c *Container) Insert(obj Object, _ *Living) error {
	it := AsItem(obj)
	if it == nil {
		return errs.Refused("You can't put that in %s.", c.title)
	}
	if it.ID == c.ID || c.insideOf(it.ID) {
		return errs.Refused("You can't put %s inside itself.", it.title)
	}
	c.attach(obj)
	return nil
}

// Remove takes an item out of the container.
func (c *Container) Remove(obj Object, _ *Living) error {
	if !c.detach(obj) {
		return fmt.Errorf("%w: %s in %s", ErrNotContained, obj.Core(), c)
	}
	return nil
}

func (c *Container) insideOf(id ID) bool {
	for depth, o := 0, c.ContainedIn(); o != nil && depth < 64; depth++ {
		if o.Core().ID == id {
			return true
		}
		it := AsItem(o)
		if it == nil {
			return false
		}
		o = it.ContainedIn()
	}
	return false
}

func (c *Container) attach(obj Object) {
	it := AsItem(obj)
	if it == nil {
		return
	}
	if indexOf(c.contents, it.ID) < 0 {
		c.contents = append(c.contents, it.ID)
	}
	it.containedIn = c.ID
}

func (c *Container) detach(obj Object) bool {
	id := obj.Core().ID
	n := indexOf(c.contents, id)
	if n < 0 {
		return false
	}
	c.contents = append(c.contents[:n], c.contents[n+1:]...)
	if it := AsItem(obj); it != nil {
		it.containedIn = 0
	}
	return true
}

func (c *Container) holderContents() []Object { return resolve(c.world, c.contents) }

// InitInventory places items into the container without permission
// checks. It is meant for world construction.
func (c *Container) InitInventory(items ...Object) {
	for _, o := range items {
		detachFromHolder(o)
		c.attach(o)
	}
}

// Weapon is an item that can be wielded.
type Weapon struct {
	Item
	Damage string
}

// NewWeapon creates a weapon; damage is a dice expression.
func (w *World) NewWeapon(name, title, description, damage string) *Weapon {
	wp := &Weapon{Item: Item{Base: newBase(name, title, description)}, Damage: damage}
	w.add(wp, KindWeapon)
	return wp
}

// Armour is an item that can be worn.
type Armour struct {
	Item
	Bonus int
}

// NewArmour creates a piece of armour.
func (w *World) NewArmour(name, title, description string, bonus int) *Armour {
	a := &Armour{Item: Item{Base: newBase(name, title, description)}, Bonus: bonus}
	w.add(a, KindArmour)
	return a
}

// GameClock is an item that shows the game time when looked at or read.
type GameClock struct {
	Item
}

// NewGameClock creates a clock item.
func (w *World) NewGameClock(name, title, description string) *GameClock {
	c := &GameClock{Item: Item{Base: newBase(name, title, description)}}
	w.add(c, KindClock)
	return c
}

// Description includes the current game time.
func (c *GameClock) Description() string {
	d := c.Base.Description()
	if c.world == nil || c.world.Clock == nil {
		return strings.TrimSpace(d + " It seems to be broken.")
	}
	return strings.TrimSpace(d + " It reads " + c.world.Clock.Display() + ".")
}

// Read tells the actor the time.
func (c *GameClock) Read(_ Context, actor *Living) error {
	actor.Tell(lang.Capital(c.title)+": "+c.Description(), End)
	return nil
}

// detachFromHolder removes o from whatever holds it, without checks.
func detachFromHolder(o Object) {
	if it := AsItem(o); it != nil {
		if h, ok := it.ContainedIn().(rawHolder); ok {
			h.detach(o)
		}
		it.containedIn = 0
		return
	}
	if l := AsLiving(o); l != nil {
		if loc := l.Location(); loc != nil {
			loc.detach(o)
		}
		l.location = LimboID
	}
}

func indexOf(ids []ID, id ID) int {
	for i, x := range ids {
		if x == id {
			return i
		}
	}
	return -1
}

func resolve(w *World, ids []ID) []Object {
	if w == nil {
		return nil
	}
	out := make([]Object, 0, len(ids))
	for _, id := range ids {
		if o := w.Get(id); o != nil {
			out = append(out, o)
		}
	}
	return out
}

// expandTitles replaces {Title} and {title} with the actor's title.
func expandTitles(msg string, actor *Living) string {
	msg = strings.ReplaceAll(msg, "{Title}", lang.Capital(actor.title))
	return strings.ReplaceAll(msg, "{title}", actor.title)
}
