package world

import "fmt"

// Place puts obj into holder without permission checks or messages,
// taking it out of wherever it was first. Livings can only be placed in
// locations. Restoring a saved game uses it.
func (w *World) Place(obj, holder Object) error {
	dst, ok := holder.(rawHolder)
	if !ok {
		return fmt.Errorf("world: %s cannot hold anything", holder.Core())
	}
	switch {
	case AsLiving(obj) != nil:
		if AsLocation(holder) == nil {
			return fmt.Errorf("world: cannot place %s in %s", obj.Core(), holder.Core())
		}
		if loc := AsLiving(obj).Location(); loc != nil {
			loc.detach(obj)
		}
	case AsItem(obj) != nil:
		if obj.Core().ID == holder.Core().ID {
			return fmt.Errorf("world: cannot place %s inside itself", obj.Core())
		}
		if src, ok := AsItem(obj).ContainedIn().(rawHolder); ok {
			src.detach(obj)
		}
	default:
		return fmt.Errorf("world: %s cannot be placed", obj.Core())
	}
	dst.attach(obj)
	return nil
}
