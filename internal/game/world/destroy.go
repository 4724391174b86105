package world

import (
	"fmt"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/pubsub"
)

// Destroy removes o and everything it holds from the world. Livings in a
// destroyed location are sent to Limbo instead of being destroyed.
// Destroying an already destroyed object does nothing.
func (w *World) Destroy(ctx Context, o Object) error {
	if o == nil || !o.Core().Alive() {
		return nil
	}
	if o.Core().ID == LimboID {
		return fmt.Errorf("world: limbo cannot be destroyed")
	}
	switch {
	case AsLocation(o) != nil:
		loc := AsLocation(o)
		for _, l := range loc.Livings() {
			loc.detach(l)
		}
		for _, it := range loc.Items() {
			if err := w.Destroy(ctx, it); err != nil {
				return err
			}
		}
		for _, ex := range loc.clearExits() {
			if err := w.Destroy(ctx, ex); err != nil {
				return err
			}
		}
	case AsLiving(o) != nil:
		l := AsLiving(o)
		if loc := l.Location(); loc != nil {
			loc.detach(o)
		}
		for _, it := range l.Inventory() {
			if err := w.Destroy(ctx, it); err != nil {
				return err
			}
		}
		l.inventory = nil
		l.location = 0
		if p := AsPlayer(o); p != nil {
			p.ClearWiretaps()
			_ = p.CloseTranscript()
		}
	case AsItem(o) != nil:
		it := AsItem(o)
		if h, ok := it.ContainedIn().(rawHolder); ok {
			h.detach(o)
		}
		if c, ok := o.(*Container); ok {
			for _, inner := range c.holderContents() {
				if err := w.Destroy(ctx, inner); err != nil {
					return err
				}
			}
			c.contents = nil
		}
	}
	w.finalize(ctx, o)
	return nil
}

func (w *World) finalize(ctx Context, o Object) {
	b := o.Core()
	sched := ctx.Scheduler()
	sched.CancelDeferreds(b.ID)
	sched.UnregisterHeartbeat(b.ID)
	if sub, ok := o.(pubsub.Subscriber); ok {
		w.Bus.UnsubscribeAll(sub)
	}
	delete(w.objects, b.ID)
	if b.Path != "" && w.paths[b.Path] == b.ID {
		delete(w.paths, b.Path)
	}
	b.destroyed = true
}

// Clone makes a deep copy of an item or non-player living, with fresh
// ids for the copy and everything it holds. The copy of a living starts
// in Limbo and the copy of an item is not contained anywhere.
func (w *World) Clone(o Object) (Object, error) {
	if o == nil || !o.Core().Alive() {
		return nil, errs.Refused("There's nothing to clone.")
	}
	var dup Object
	switch v := o.(type) {
	case *Player:
		return nil, errs.Refused("You can't clone a player.")
	case *Location, *Exit, *Door:
		return nil, errs.Refused("You can't clone %s.", lang.A(o.Title()))
	case *Item:
		c := *v
		dup = &c
	case *Weapon:
		c := *v
		dup = &c
	case *Armour:
		c := *v
		dup = &c
	case *GameClock:
		c := *v
		dup = &c
	case *Container:
		c := *v
		c.contents = nil
		dup = &c
	case *Living:
		c := *v
		dup = &c
	case *NPC:
		c := *v
		c.IdleMessages = append([]string(nil), v.IdleMessages...)
		c.Reactions = copyStrings(v.Reactions)
		dup = &c
	case *Monster:
		c := *v
		c.IdleMessages = append([]string(nil), v.IdleMessages...)
		c.Reactions = copyStrings(v.Reactions)
		dup = &c
	default:
		return nil, fmt.Errorf("world: cannot clone %T", o)
	}
	b := dup.Core()
	b.Aliases = append([]string(nil), b.Aliases...)
	b.Verbs = copyStrings(b.Verbs)
	b.Path = ""
	w.add(dup, b.Kind)

	if it := AsItem(dup); it != nil {
		it.containedIn = 0
		it.Messages = copyStrings(it.Messages)
		if src, ok := o.(*Container); ok {
			c := dup.(*Container)
			for _, inner := range src.holderContents() {
				cp, err := w.Clone(inner)
				if err != nil {
					return nil, err
				}
				c.attach(cp)
			}
		}
	}
	if l := AsLiving(dup); l != nil {
		src := AsLiving(o)
		l.location = LimboID
		l.inventory = nil
		l.Privileges = make(map[string]bool, len(src.Privileges))
		for k, v := range src.Privileges {
			l.Privileges[k] = v
		}
		l.Stats.Values = make(map[string]int, len(src.Stats.Values))
		for k, v := range src.Stats.Values {
			l.Stats.Values[k] = v
		}
		for _, it := range src.Inventory() {
			cp, err := w.Clone(it)
			if err != nil {
				return nil, err
			}
			l.attach(cp)
		}
	}
	return dup, nil
}

func copyStrings(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PrintLocation tells p where obj was found. container is the holder it
// was found in, or nil when unknown.
func PrintLocation(p *Player, obj, container Object, parentheses bool) {
	wrap := func(s string) string {
		if parentheses {
			return "(" + s + ")."
		}
		return lang.Capital(s) + "."
	}
	switch {
	case container == nil:
		p.Tell(wrap("It's not clear where "+obj.Core().Name+" is"), End)
	case p.Contains(container):
		p.Tell(wrap(fmt.Sprintf("%s was found in %s, in your inventory", obj.Title(), container.Title())), End)
	case p.Location() != nil && container.Core().ID == p.Location().ID:
		p.Tell(wrap(obj.Title()+" was found in your current location"), End)
	case container.Core().ID == p.ID:
		p.Tell(wrap(obj.Title()+" was found in your inventory"), End)
	default:
		p.Tell(wrap(fmt.Sprintf("%s was found in %s", obj.Title(), container.Core().Name)), End)
	}
}
