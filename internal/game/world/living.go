package world

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/pubsub"
	"github.com/cory-johannsen/tale/internal/render"
)

// PrivilegeWizard grants the wizard commands and unrestricted item moves.
const PrivilegeWizard = "wizard"

// TellFlag modifies how a message is added to a living's output.
type TellFlag uint8

const (
	// End closes the current paragraph after the message.
	End TellFlag = 1 << iota
	// Unformatted keeps the message's line structure instead of wrapping.
	Unformatted
)

// WiretapEvent is sent on a wiretap topic for every message told to the
// tapped location or living.
type WiretapEvent struct {
	Source  string
	Message string
}

// Living is a being that can act: players, NPCs and monsters embed it.
type Living struct {
	Base
	Gender     lang.Gender
	Race       string
	Stats      races.Stats
	Money      float64
	Privileges map[string]bool
	Aggressive bool

	inventory []ID
	location  ID
	out       *render.Buffer
}

// NewLiving creates a living of the given race with freshly rolled stats.
// The living starts out in Limbo.
func (w *World) NewLiving(name string, gender lang.Gender, race, title, description string) (*Living, error) {
	l := &Living{}
	if err := w.initLiving(l, name, gender, race, title, description); err != nil {
		return nil, err
	}
	w.add(l, KindLiving)
	return l, nil
}

func (w *World) initLiving(l *Living, name string, gender lang.Gender, race, title, description string) error {
	if _, err := lang.ParseGender(string(gender)); err != nil {
		return err
	}
	stats, err := races.RollStats(race, w.Dice)
	if err != nil {
		return err
	}
	l.Base = newBase(name, title, description)
	l.Gender = gender
	l.Race = stats.Race
	l.Stats = stats
	l.Privileges = make(map[string]bool)
	l.location = LimboID
	return nil
}

func (l *Living) asLiving() *Living { return l }

// Location returns the living's current location; Limbo when it is
// nowhere in particular and nil once destroyed.
func (l *Living) Location() *Location {
	if l.world == nil {
		return nil
	}
	return l.world.Location(l.location)
}

// IsWizard reports whether the living has wizard privileges.
func (l *Living) IsWizard() bool { return l.Privileges[PrivilegeWizard] }

// HasPrivilege reports whether the living holds p.
func (l *Living) HasPrivilege(p string) bool { return l.Privileges[p] }

// PrivilegeList returns the held privileges, sorted.
func (l *Living) PrivilegeList() []string {
	out := make([]string, 0, len(l.Privileges))
	for p, ok := range l.Privileges {
		if ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

func (l *Living) Subjective() string { return l.Gender.Subjective() }
func (l *Living) Objective() string  { return l.Gender.Objective() }
func (l *Living) Possessive() string { return l.Gender.Possessive() }

// Inventory returns the carried items in insertion order.
func (l *Living) Inventory() []Object { return resolve(l.world, l.inventory) }

// InventorySize returns the number of carried items.
func (l *Living) InventorySize() int { return len(l.inventory) }

// Contents returns the IDs of the carried items.
func (l *Living) Contents() []ID { return append([]ID(nil), l.inventory...) }

// Contains reports whether obj is carried directly.
func (l *Living) Contains(obj Object) bool {
	return indexOf(l.inventory, obj.Core().ID) >= 0
}

// Insert adds an item to the inventory. Only the living itself, a wizard
// or world code (nil actor) may do that.
func (l *Living) Insert(obj Object, actor *Living) error {
	if AsItem(obj) == nil {
		return errs.Refused("You can't give that to %s.", l.title)
	}
	if actor != nil && actor.ID != l.ID && !actor.IsWizard() {
		return errs.Refused("You can't do that.")
	}
	l.attach(obj)
	return nil
}

// Remove takes an item from the inventory; only the living itself or a
// wizard may do that.
func (l *Living) Remove(obj Object, actor *Living) error {
	if actor == nil || (actor.ID != l.ID && !actor.IsWizard()) {
		return errs.Refused("You can't take %s from %s.", obj.Title(), l.title)
	}
	if !l.detach(obj) {
		return fmt.Errorf("%w: %s carried by %s", ErrNotContained, obj.Core(), l)
	}
	return nil
}

// AllowItemMove permits everything; refusals happen in Insert.
func (l *Living) AllowItemMove(*Living, string) error { return nil }

func (l *Living) attach(obj Object) {
	it := AsItem(obj)
	if it == nil {
		return
	}
	if indexOf(l.inventory, it.ID) < 0 {
		l.inventory = append(l.inventory, it.ID)
	}
	it.containedIn = l.ID
}

func (l *Living) detach(obj Object) bool {
	n := indexOf(l.inventory, obj.Core().ID)
	if n < 0 {
		return false
	}
	l.inventory = append(l.inventory[:n], l.inventory[n+1:]...)
	if it := AsItem(obj); it != nil {
		it.containedIn = 0
	}
	return true
}

func (l *Living) holderContents() []Object { return l.Inventory() }

// InitInventory gives items to the living without permission checks.
func (l *Living) InitInventory(items ...Object) {
	for _, o := range items {
		detachFromHolder(o)
		l.attach(o)
	}
}

// Tell adds a message to the living's output (players only) and forwards
// it to anyone wiretapping the living.
func (l *Living) Tell(msg string, flags ...TellFlag) {
	l.print(msg, flags...)
	if l.world == nil {
		return
	}
	if t, ok := l.world.Bus.Lookup(wiretapTopic(l.self())); ok {
		t.Send(WiretapEvent{Source: l.Name, Message: msg})
	}
}

func (l *Living) print(msg string, flags ...TellFlag) {
	if l.out == nil {
		return
	}
	var f TellFlag
	for _, x := range flags {
		f |= x
	}
	l.out.Print(msg, f&End != 0, f&Unformatted == 0)
}

// TellOthers tells everyone else in the location; {Title} and {title}
// are replaced with the living's title.
func (l *Living) TellOthers(msg string) {
	if loc := l.Location(); loc != nil {
		loc.Tell(expandTitles(msg, l), l, nil, "")
	}
}

// Wiretap returns the topic carrying everything told to the living.
func (l *Living) Wiretap() *pubsub.Topic {
	return l.world.Bus.Topic(wiretapTopic(l.self()))
}

// Move moves the living into target. Unless silent, the old and new
// locations are told about the departure and arrival.
//
// Postcondition: on success l.Location() == target and target contains l.
func (l *Living) Move(target *Location, actor *Living, silent bool) error {
	self := l.self()
	if self == nil || target == nil {
		return fmt.Errorf("world: invalid move of %s", l)
	}
	if actor == nil {
		actor = l
	}
	src := l.Location()
	removed := false
	if src != nil && src.Contains(self) {
		removed = true
		if err := src.Remove(self, actor); err != nil {
			return err
		}
		if !silent {
			src.Tell(lang.Capital(l.title)+" leaves.", l, nil, "")
		}
	}
	if err := target.Insert(self, actor); err != nil {
		if removed {
			src.attach(self)
		}
		return err
	}
	if !silent {
		target.Tell(lang.Capital(l.title)+" arrives.", l, nil, "")
	}
	if src != nil {
		src.notifyLeft(self, target)
	}
	target.notifyArrived(self, src)
	return nil
}

// SearchItem looks for an item by name, title or alias in the inventory,
// then the location, then containers in the inventory.
func (l *Living) SearchItem(name string, inInventory, inLocation, inContainers bool) Object {
	o, _ := l.LocateItem(name, inInventory, inLocation, inContainers)
	return o
}

// LocateItem is SearchItem that also returns where the item was found.
func (l *Living) LocateItem(name string, inInventory, inLocation, inContainers bool) (Object, Object) {
	if name == "" {
		return nil, nil
	}
	if inInventory {
		if o := matchAmong(l.Inventory(), name); o != nil {
			return o, l.self()
		}
	}
	if loc := l.Location(); inLocation && loc != nil {
		if o := matchAmong(loc.Items(), name); o != nil {
			return o, loc
		}
	}
	if inContainers {
		for _, c := range l.Inventory() {
			h, ok := c.(interface{ holderContents() []Object })
			if !ok {
				continue
			}
			if o := matchAmong(h.holderContents(), name); o != nil {
				return o, c
			}
		}
	}
	return nil, nil
}

// matchAmong finds by exact name first, then title, then alias.
func matchAmong(objs []Object, name string) Object {
	name = strings.ToLower(name)
	for _, o := range objs {
		if strings.ToLower(o.Core().Name) == name {
			return o
		}
	}
	for _, o := range objs {
		if strings.ToLower(o.Title()) == name {
			return o
		}
	}
	for _, o := range objs {
		if o.Core().HasAlias(name) {
			return o
		}
	}
	return nil
}

// ShowInventory tells viewer what the living carries. A nil formatter
// leaves out the money line.
func (l *Living) ShowInventory(viewer *Living, mf *money.Formatter) {
	name := lang.Capital(l.title)
	inv := l.Inventory()
	if len(inv) == 0 {
		viewer.Tell(name+" is carrying nothing.", End)
	} else {
		viewer.Tell(name+" is carrying:", End)
		for _, it := range inv {
			viewer.Tell("  <item>"+it.Title()+"</>", Unformatted)
		}
	}
	if mf != nil {
		viewer.Tell(fmt.Sprintf("Money in possession: %s.", mf.Display(l.Money, false, "")), End)
	}
}

// StartAttack announces an attack on victim.
func (l *Living) StartAttack(victim *Living) {
	name := lang.Capital(l.title)
	victim.Tell(name+" starts attacking you!", End)
	if loc := victim.Location(); loc != nil {
		loc.Tell(fmt.Sprintf("%s starts attacking %s!", name, victim.title), victim,
			[]*Living{l}, fmt.Sprintf("You start attacking %s!", victim.title))
	}
}

// NPC is a computer controlled living.
type NPC struct {
	Living
	// IdleMessages are told to the room at random heartbeats.
	IdleMessages []string
	// IdleChance is the probability per heartbeat of an idle message.
	IdleChance float64
	// Reactions maps a soul verb aimed at the NPC to its reply.
	Reactions map[string]string
	// Announcements are told to the room in turn, one every
	// AnnounceEvery of game time, once the first one is deferred.
	Announcements []string
	AnnounceEvery time.Duration
}

// NewNPC creates a non-player character.
func (w *World) NewNPC(name string, gender lang.Gender, race, title, description string) (*NPC, error) {
	n := &NPC{}
	if err := w.initLiving(&n.Living, name, gender, race, title, description); err != nil {
		return nil, err
	}
	w.add(n, KindNPC)
	return n, nil
}

// Insert refuses gifts from anyone but wizards.
func (n *NPC) Insert(obj Object, actor *Living) error {
	if actor != nil && (actor.IsWizard() || actor.ID == n.ID) {
		return n.Living.Insert(obj, actor)
	}
	return errs.Refused("%s doesn't want %s.", lang.Capital(n.title), obj.Title())
}

// Heartbeat occasionally tells the room one of the idle messages.
func (n *NPC) Heartbeat(ctx Context) {
	if len(n.IdleMessages) == 0 || n.IdleChance <= 0 {
		return
	}
	if !dice.Chance(ctx.World.Dice, n.IdleChance) {
		return
	}
	if loc := n.Location(); loc != nil {
		loc.Tell(expandTitles(dice.Choice(ctx.World.Dice, n.IdleMessages), &n.Living), nil, nil, "")
	}
}

// NotifyAction replies to soul verbs aimed at the NPC. "{actor}" in the
// reply is replaced with the actor's title.
func (n *NPC) NotifyAction(_ Context, act Action, actor *Living) {
	if actor == nil || actor.ID == n.ID || !act.Targets(n.ID) {
		return
	}
	reply, ok := n.Reactions[act.Verb]
	if !ok {
		return
	}
	reply = strings.ReplaceAll(expandTitles(reply, &n.Living), "{actor}", actor.title)
	if loc := n.Location(); loc != nil {
		loc.Tell(reply, nil, nil, "")
	}
}

// ActionAnnounce is the deferred action that makes an NPC tell the room
// its next announcement. Its argument is the announcement's index.
const ActionAnnounce = "announce"

// HandleDeferred tells the announcement with the index in args and
// schedules the next one.
func (n *NPC) HandleDeferred(ctx Context, action string, args []any) error {
	if action != ActionAnnounce {
		return fmt.Errorf("world: %s has no deferred action %q", n, action)
	}
	if len(n.Announcements) == 0 {
		return nil
	}
	i := 0
	if len(args) > 0 {
		// savegames bring numbers back as float64
		switch v := args[0].(type) {
		case int:
			i = v
		case float64:
			i = int(v)
		}
	}
	i %= len(n.Announcements)
	if loc := n.Location(); loc != nil {
		loc.Tell(expandTitles(n.Announcements[i], &n.Living), nil, nil, "")
	}
	if n.AnnounceEvery > 0 {
		ctx.Scheduler().Defer(ctx.Clock().Now().Add(n.AnnounceEvery), n.ID, ActionAnnounce, i+1)
	}
	return nil
}

// Monster is an aggressive NPC.
type Monster struct {
	NPC
}

// NewMonster creates an aggressive NPC.
func (w *World) NewMonster(name string, gender lang.Gender, race, title, description string) (*Monster, error) {
	m := &Monster{}
	if err := w.initLiving(&m.Living, name, gender, race, title, description); err != nil {
		return nil, err
	}
	m.Aggressive = true
	w.add(m, KindMonster)
	return m, nil
}

// Insert refuses gifts from anyone but wizards.
func (m *Monster) Insert(obj Object, actor *Living) error {
	if actor != nil && (actor.IsWizard() || actor.ID == m.ID) {
		return m.Living.Insert(obj, actor)
	}
	return errs.Refused("It's probably not a good idea to give %s to %s.", obj.Title(), m.title)
}
