package world

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/pubsub"
)

// LocationObserver is told when livings enter or leave a location.
// Stories attach one to locations that need to react.
type LocationObserver interface {
	NotifyPlayerArrived(loc *Location, p *Player, from *Location)
	NotifyPlayerLeft(loc *Location, p *Player, to *Location)
	NotifyNPCArrived(loc *Location, l *Living, from *Location)
	NotifyNPCLeft(loc *Location, l *Living, to *Location)
}

// Location is a room: it holds livings and items and has exits.
type Location struct {
	Base
	Observer LocationObserver

	livings []ID
	items   []ID
	exits   map[string]ID
}

// NewLocation creates a location. Unlike other objects its name keeps its
// case and doubles as its title.
func (w *World) NewLocation(name, description string) *Location {
	loc := &Location{Base: newBase(name, name, description), exits: make(map[string]ID)}
	loc.Name = name
	w.add(loc, KindLocation)
	return loc
}

// Livings returns the livings present, in arrival order.
func (loc *Location) Livings() []Object { return resolve(loc.world, loc.livings) }

// Items returns the items lying here, in arrival order.
func (loc *Location) Items() []Object { return resolve(loc.world, loc.items) }

// Contents returns the IDs of everything in the location.
func (loc *Location) Contents() []ID {
	out := append([]ID(nil), loc.livings...)
	return append(out, loc.items...)
}

// Contains reports whether obj is a living or item present here.
func (loc *Location) Contains(obj Object) bool {
	id := obj.Core().ID
	return indexOf(loc.livings, id) >= 0 || indexOf(loc.items, id) >= 0
}

// Insert adds a living or item. Livings are not told anything; use
// Living.Move for that.
func (loc *Location) Insert(obj Object, _ *Living) error {
	if AsLiving(obj) == nil && AsItem(obj) == nil {
		return fmt.Errorf("world: can't insert %s into location %s", obj.Core(), loc)
	}
	loc.attach(obj)
	return nil
}

// Remove takes a living or item out of the location. Removing something
// that is not here is a no-op. A removed living is placed in Limbo.
func (loc *Location) Remove(obj Object, _ *Living) error {
	if obj != nil {
		loc.detach(obj)
	}
	return nil
}

// AllowItemMove permits everything.
func (loc *Location) AllowItemMove(*Living, string) error { return nil }

func (loc *Location) attach(obj Object) {
	if l := AsLiving(obj); l != nil {
		if indexOf(loc.livings, l.ID) < 0 {
			loc.livings = append(loc.livings, l.ID)
		}
		l.location = loc.ID
		return
	}
	if it := AsItem(obj); it != nil {
		if indexOf(loc.items, it.ID) < 0 {
			loc.items = append(loc.items, it.ID)
		}
		it.containedIn = loc.ID
	}
}

func (loc *Location) detach(obj Object) bool {
	id := obj.Core().ID
	if n := indexOf(loc.livings, id); n >= 0 {
		loc.livings = append(loc.livings[:n], loc.livings[n+1:]...)
		if l := AsLiving(obj); l != nil {
			l.location = LimboID
		}
		return true
	}
	if n := indexOf(loc.items, id); n >= 0 {
		loc.items = append(loc.items[:n], loc.items[n+1:]...)
		if it := AsItem(obj); it != nil {
			it.containedIn = 0
		}
		return true
	}
	return false
}

func (loc *Location) holderContents() []Object { return loc.Items() }

// InitInventory places livings and items here without messages or
// permission checks. It is meant for world construction.
func (loc *Location) InitInventory(objs ...Object) error {
	for _, o := range objs {
		if AsLiving(o) == nil && AsItem(o) == nil {
			return fmt.Errorf("world: can't place %s in location %s", o.Core(), loc)
		}
		detachFromHolder(o)
		loc.attach(o)
	}
	return nil
}

// AddExits adds exits under each of their directions.
func (loc *Location) AddExits(exits ...Object) error {
	for _, o := range exits {
		ex := AsExit(o)
		if ex == nil {
			return fmt.Errorf("world: %s is not an exit", o.Core())
		}
		for _, d := range ex.Directions {
			if other, ok := loc.exits[d]; ok && other != ex.ID {
				return fmt.Errorf("world: location %s already has an exit %q", loc.Name, d)
			}
		}
		for _, d := range ex.Directions {
			loc.exits[d] = ex.ID
		}
	}
	return nil
}

// Exit returns the exit reachable by direction, or nil.
func (loc *Location) Exit(direction string) Object {
	id, ok := loc.exits[direction]
	if !ok {
		return nil
	}
	return loc.world.Get(id)
}

// ExitNames returns all exit directions, sorted.
func (loc *Location) ExitNames() []string {
	out := make([]string, 0, len(loc.exits))
	for d := range loc.exits {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// UniqueExits returns each exit once, ordered by exit name.
func (loc *Location) UniqueExits() []Object {
	seen := make(map[ID]bool)
	var out []Object
	for _, id := range loc.exits {
		if seen[id] {
			continue
		}
		seen[id] = true
		if o := loc.world.Get(id); o != nil {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Core().Name < out[j].Core().Name })
	return out
}

func (loc *Location) clearExits() []Object {
	out := loc.UniqueExits()
	loc.exits = make(map[string]ID)
	return out
}

// Tell tells roomMsg to every living present except exclude. Livings in
// targets receive targetMsg instead. Wiretaps on the location receive the
// room message.
func (loc *Location) Tell(roomMsg string, exclude *Living, targets []*Living, targetMsg string) {
	special := make(map[ID]bool, len(targets))
	for _, t := range targets {
		special[t.ID] = true
	}
	for _, o := range loc.Livings() {
		l := AsLiving(o)
		if exclude != nil && l.ID == exclude.ID {
			continue
		}
		switch {
		case special[l.ID]:
			if targetMsg != "" {
				l.Tell(targetMsg, End)
			}
		case roomMsg != "":
			l.Tell(roomMsg, End)
		}
	}
	if roomMsg == "" || loc.world == nil {
		return
	}
	if t, ok := loc.world.Bus.Lookup(wiretapTopic(loc)); ok {
		t.Send(WiretapEvent{Source: loc.Name, Message: roomMsg})
	}
}

// Wiretap returns the topic carrying everything told in the location.
func (loc *Location) Wiretap() *pubsub.Topic {
	return loc.world.Bus.Topic(wiretapTopic(loc))
}

// MessageNearby tells msg in every adjacent location, with a hint about
// where the sound came from.
func (loc *Location) MessageNearby(msg string) {
	done := map[ID]bool{loc.ID: true}
	for _, o := range loc.UniqueExits() {
		ex := AsExit(o)
		target := ex.Target()
		if target == nil || done[target.ID] {
			continue
		}
		done[target.ID] = true
		target.Tell(msg, nil, nil, "")
		var back []string
		for _, d := range target.ExitNames() {
			if rex := AsExit(target.Exit(d)); rex != nil && rex.target == loc.ID {
				back = append(back, d)
			}
		}
		if len(back) == 0 {
			continue
		}
		hint := "You can't hear where the sound is coming from."
		for _, d := range back {
			if audibleDirections[Direction(d)] {
				hint = "The sound is coming from the " + d + "."
				break
			}
		}
		target.Tell(hint, nil, nil, "")
	}
}

// SearchLiving finds a living present by name, title or alias.
func (loc *Location) SearchLiving(name string) *Living {
	return AsLiving(matchAmong(loc.Livings(), name))
}

// AllVerbs returns the custom verbs available here: the location's own,
// those of items lying here, and those of livings present and whatever
// they carry. Later sources override earlier ones.
func (loc *Location) AllVerbs() map[string]string {
	out := make(map[string]string)
	merge := func(o Object) {
		for k, v := range o.Core().Verbs {
			out[k] = v
		}
	}
	merge(loc)
	for _, it := range loc.Items() {
		merge(it)
	}
	for _, o := range loc.Livings() {
		merge(o)
		for _, it := range AsLiving(o).Inventory() {
			merge(it)
		}
	}
	return out
}

// Look describes the location as a list of paragraphs. exclude is left
// out of the livings present, normally the looking player.
func (loc *Location) Look(exclude *Living, short bool) []string {
	if short {
		return loc.lookShort(exclude)
	}
	paragraphs := []string{"<location>[" + loc.Name + "]</>"}
	if d := loc.Description(); d != "" {
		paragraphs = append(paragraphs, d)
	}
	var exits []string
	for _, o := range loc.UniqueExits() {
		if sd := o.Core().ShortDescription; sd != "" {
			exits = append(exits, sd)
		}
	}
	if len(exits) > 0 {
		paragraphs = append(paragraphs, strings.Join(exits, " "))
	}
	var content []string
	var seen []string
	for _, o := range loc.Items() {
		if sd := o.Core().ShortDescription; sd != "" {
			content = append(content, sd)
		} else {
			seen = append(seen, lang.A(o.Title()))
		}
	}
	if len(seen) > 0 {
		sort.Strings(seen)
		for i, s := range seen {
			seen[i] = "<item>" + s + "</>"
		}
		content = append(content, "You see "+lang.Join(seen, "and")+".")
	}
	var present, presentShort []string
	for _, o := range loc.Livings() {
		l := AsLiving(o)
		if exclude != nil && l.ID == exclude.ID {
			continue
		}
		if l.ShortDescription != "" {
			presentShort = append(presentShort, l.ShortDescription)
			continue
		}
		present = append(present, l.title)
	}
	if len(present) > 0 {
		sort.Strings(present)
		present[0] = lang.Capital(present[0])
		for i, t := range present {
			present[i] = "<living>" + t + "</>"
		}
		verb := " is here."
		if len(present) > 1 {
			verb = " are here."
		}
		content = append(content, lang.Join(present, "and")+verb)
	}
	content = append(content, presentShort...)
	if len(content) > 0 {
		paragraphs = append(paragraphs, strings.Join(content, " "))
	}
	return paragraphs
}

func (loc *Location) lookShort(exclude *Living) []string {
	paragraphs := []string{"<location>[" + loc.Name + "]</>"}
	if names := loc.ExitNames(); len(names) > 0 {
		paragraphs = append(paragraphs, "<exit>Exits</>: "+strings.Join(names, ", "))
	}
	var items []string
	for _, o := range loc.Items() {
		items = append(items, o.Core().Name)
	}
	if len(items) > 0 {
		sort.Strings(items)
		paragraphs = append(paragraphs, "<item>You see</>: "+strings.Join(items, ", "))
	}
	var livings []string
	for _, o := range loc.Livings() {
		if exclude != nil && o.Core().ID == exclude.ID {
			continue
		}
		livings = append(livings, o.Core().Name)
	}
	if len(livings) > 0 {
		sort.Strings(livings)
		paragraphs = append(paragraphs, "<living>Present</>: "+strings.Join(livings, ", "))
	}
	return paragraphs
}

func (loc *Location) notifyArrived(o Object, from *Location) {
	if p := AsPlayer(o); p != nil {
		loc.NotifyPlayerArrived(p, from)
	} else if l := AsLiving(o); l != nil {
		loc.NotifyNPCArrived(l, from)
	}
}

func (loc *Location) notifyLeft(o Object, to *Location) {
	if p := AsPlayer(o); p != nil {
		loc.NotifyPlayerLeft(p, to)
	} else if l := AsLiving(o); l != nil {
		loc.NotifyNPCLeft(l, to)
	}
}

func (loc *Location) NotifyPlayerArrived(p *Player, from *Location) {
	if loc.Observer != nil {
		loc.Observer.NotifyPlayerArrived(loc, p, from)
	}
}

func (loc *Location) NotifyPlayerLeft(p *Player, to *Location) {
	if loc.Observer != nil {
		loc.Observer.NotifyPlayerLeft(loc, p, to)
	}
}

func (loc *Location) NotifyNPCArrived(l *Living, from *Location) {
	if loc.Observer != nil {
		loc.Observer.NotifyNPCArrived(loc, l, from)
	}
}

func (loc *Location) NotifyNPCLeft(l *Living, to *Location) {
	if loc.Observer != nil {
		loc.Observer.NotifyNPCLeft(loc, l, to)
	}
}

// NotifyAction forwards to the observer when it wants actions.
func (loc *Location) NotifyAction(ctx Context, act Action, actor *Living) {
	if n, ok := loc.Observer.(ActionNotifiee); ok {
		n.NotifyAction(ctx, act, actor)
	}
}

// Exit connects a location to another. The target is given either
// directly or as a path that is bound once all zones are loaded.
type Exit struct {
	Base
	Directions []string
	TargetPath string

	target ID
}

func newExitBase(directions []string, short, long string) (Base, error) {
	if len(directions) == 0 {
		return Base{}, fmt.Errorf("world: exit needs at least one direction")
	}
	b := newBase(directions[0], "", long)
	b.ShortDescription = strings.TrimSpace(short)
	b.AddAliases(directions[1:]...)
	return b, nil
}

// NewExit creates an exit to target.
func (w *World) NewExit(directions []string, target *Location, short, long string) (*Exit, error) {
	ex, err := w.NewExitTo(directions, "", short, long)
	if err != nil {
		return nil, err
	}
	ex.target = target.ID
	ex.TargetPath = target.Path
	return ex, nil
}

// NewExitTo creates an exit whose target is resolved later by Bind.
func (w *World) NewExitTo(directions []string, targetPath, short, long string) (*Exit, error) {
	b, err := newExitBase(directions, short, long)
	if err != nil {
		return nil, err
	}
	ex := &Exit{Base: b, Directions: directions, TargetPath: targetPath}
	w.add(ex, KindExit)
	return ex, nil
}

func (ex *Exit) asExit() *Exit { return ex }

// Bound reports whether the target has been resolved.
func (ex *Exit) Bound() bool { return ex.target != 0 }

// Target returns the destination, or nil while unbound.
func (ex *Exit) Target() *Location {
	if ex.world == nil {
		return nil
	}
	return ex.world.Location(ex.target)
}

// Bind resolves TargetPath to a location. Binding twice is harmless.
func (ex *Exit) Bind(w *World) error {
	if ex.Bound() {
		return nil
	}
	loc := AsLocation(w.ByPath(ex.TargetPath))
	if loc == nil {
		return fmt.Errorf("world: exit %q: no location at path %q", ex.Name, ex.TargetPath)
	}
	ex.target = loc.ID
	return nil
}

// Title reads "Exit to" followed by the target's title.
func (ex *Exit) Title() string {
	if t := ex.Target(); t != nil {
		return "Exit to " + t.Title()
	}
	return "Exit to <unbound:" + ex.TargetPath + ">"
}

// Description is the long description, or the short one if unset.
func (ex *Exit) Description() string {
	if d := ex.Base.Description(); d != "" {
		return d
	}
	return ex.ShortDescription
}

// AllowPassage reports whether actor may pass.
func (ex *Exit) AllowPassage(*Living) error {
	if !ex.Bound() {
		return fmt.Errorf("%w: %s", ErrUnboundExit, ex.TargetPath)
	}
	return nil
}

func (ex *Exit) Open(*Living, Object) error   { return errs.Refused("You can't open that.") }
func (ex *Exit) Close(*Living, Object) error  { return errs.Refused("You can't close that.") }
func (ex *Exit) Lock(*Living, Object) error   { return errs.Refused("You can't lock that.") }
func (ex *Exit) Unlock(*Living, Object) error { return errs.Refused("You can't unlock that.") }

// DoorState is the initial state of a door.
type DoorState struct {
	Opened bool
	Locked bool
	// Code must match a key's DoorCode to lock or unlock the door.
	Code int
}

// DefaultDoorState is an open, unlocked door without a key.
var DefaultDoorState = DoorState{Opened: true}

// Door is an exit that can be opened, closed, locked and unlocked.
// A door is never open and locked at the same time.
type Door struct {
	Exit
	Opened bool
	Locked bool
	Code   int
}

func checkDoorState(st DoorState) error {
	if st.Opened && st.Locked {
		return fmt.Errorf("world: door cannot be open and locked")
	}
	return nil
}

// NewDoor creates a door to target.
func (w *World) NewDoor(directions []string, target *Location, short, long string, st DoorState) (*Door, error) {
	d, err := w.NewDoorTo(directions, "", short, long, st)
	if err != nil {
		return nil, err
	}
	d.target = target.ID
	d.TargetPath = target.Path
	return d, nil
}

// NewDoorTo creates a door whose target is resolved later by Bind.
func (w *World) NewDoorTo(directions []string, targetPath, short, long string, st DoorState) (*Door, error) {
	if err := checkDoorState(st); err != nil {
		return nil, err
	}
	b, err := newExitBase(directions, short, long)
	if err != nil {
		return nil, err
	}
	d := &Door{
		Exit:   Exit{Base: b, Directions: directions, TargetPath: targetPath},
		Opened: st.Opened,
		Locked: st.Locked,
		Code:   st.Code,
	}
	w.add(d, KindDoor)
	return d, nil
}

// Description appends the door's state.
func (d *Door) Description() string {
	state := " It is open and unlocked."
	switch {
	case d.Opened:
	case d.Locked:
		state = " It is closed and locked."
	default:
		state = " It is closed and unlocked."
	}
	return d.Exit.Description() + state
}

// AllowPassage refuses while the door is closed.
func (d *Door) AllowPassage(actor *Living) error {
	if err := d.Exit.AllowPassage(actor); err != nil {
		return err
	}
	if !d.Opened {
		return errs.Refused("You can't go there; it's closed.")
	}
	return nil
}

// Open opens a closed, unlocked door.
func (d *Door) Open(*Living, Object) error {
	if d.Opened {
		return errs.Refused("It's already open.")
	}
	if d.Locked {
		return errs.Refused("You try to open it, but it's locked.")
	}
	d.Opened = true
	return nil
}

// Close closes an open door.
func (d *Door) Close(*Living, Object) error {
	if !d.Opened {
		return errs.Refused("It's already closed.")
	}
	d.Opened = false
	return nil
}

// Lock locks a closed door using with, or a fitting key the actor carries.
func (d *Door) Lock(actor *Living, with Object) error {
	if d.Locked {
		return errs.Refused("It's already locked.")
	}
	if d.Opened {
		return errs.Refused("You'll have to close it first.")
	}
	if !d.keyFits(actor, with) {
		return errs.Refused("You don't seem to have the means to lock it.")
	}
	d.Locked = true
	return nil
}

// Unlock unlocks a locked door using with, or a fitting key the actor carries.
func (d *Door) Unlock(actor *Living, with Object) error {
	if !d.Locked {
		return errs.Refused("It's not locked.")
	}
	if !d.keyFits(actor, with) {
		return errs.Refused("You don't seem to have the means to unlock it.")
	}
	d.Locked = false
	return nil
}

func (d *Door) keyFits(actor *Living, with Object) bool {
	if d.Code == 0 {
		return false
	}
	if with != nil {
		it := AsItem(with)
		return it != nil && it.DoorCode == d.Code
	}
	if actor == nil {
		return false
	}
	for _, o := range actor.Inventory() {
		if it := AsItem(o); it != nil && it.DoorCode == d.Code {
			return true
		}
	}
	return false
}

// wiretapTopic names the topic a location or living is tapped on.
func wiretapTopic(o Object) string {
	if o == nil {
		return ""
	}
	kind := "wiretap-living"
	if _, ok := o.(*Location); ok {
		kind = "wiretap-location"
	}
	return pubsub.Key(kind, fmt.Sprint(uint64(o.Core().ID)))
}
