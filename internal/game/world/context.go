package world

import (
	"time"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/gametime"
)

// Scheduler is the part of the driver that world objects may use to
// schedule deferred actions and heartbeats.
type Scheduler interface {
	// Defer schedules action on owner at game time due. The owner must
	// implement DeferredHandler.
	Defer(due time.Time, owner ID, action string, args ...any)
	// CancelDeferreds drops every pending deferred owned by owner.
	CancelDeferreds(owner ID)
	RegisterHeartbeat(id ID)
	UnregisterHeartbeat(id ID)
}

// NopScheduler discards everything. It is used when no driver is running.
type NopScheduler struct{}

func (NopScheduler) Defer(time.Time, ID, string, ...any) {}
func (NopScheduler) CancelDeferreds(ID)                  {}
func (NopScheduler) RegisterHeartbeat(ID)                {}
func (NopScheduler) UnregisterHeartbeat(ID)              {}

// Context is passed to every operation that needs more than the object
// graph itself.
type Context struct {
	World *World
	Sched Scheduler
}

// Scheduler returns the context's scheduler, or a NopScheduler.
func (c Context) Scheduler() Scheduler {
	if c.Sched == nil {
		return NopScheduler{}
	}
	return c.Sched
}

// Clock returns the game clock.
func (c Context) Clock() *gametime.Clock {
	return c.World.Clock
}

// Action describes a command that was just executed, as seen by objects
// reacting to it.
type Action struct {
	Verb     string
	Adverb   string
	Message  string
	Who      []ID
	Args     []string
	Unparsed string
}

// Targets reports whether id was one of the action's targets.
func (a Action) Targets(id ID) bool {
	for _, w := range a.Who {
		if w == id {
			return true
		}
	}
	return false
}

// Holder is implemented by objects that can contain other objects.
type Holder interface {
	Object
	Insert(obj Object, actor *Living) error
	Remove(obj Object, actor *Living) error
	// AllowItemMove is consulted before anything is moved into the holder.
	AllowItemMove(actor *Living, verb string) error
	Contents() []ID
	Contains(obj Object) bool
}

// rawHolder bypasses permission checks; used by loaders and rollbacks.
type rawHolder interface {
	attach(obj Object)
	detach(obj Object) bool
}

// Interactive covers the generic object manipulations. Base refuses all of
// them; concrete types override what they support.
type Interactive interface {
	Activate(ctx Context, actor *Living) error
	Deactivate(ctx Context, actor *Living) error
	Manipulate(ctx Context, verb string, actor *Living) error
	Read(ctx Context, actor *Living) error
	Combine(ctx Context, others []Object, actor *Living) error
}

// Openable is implemented by exits and doors.
type Openable interface {
	Open(actor *Living, with Object) error
	Close(actor *Living, with Object) error
	Lock(actor *Living, with Object) error
	Unlock(actor *Living, with Object) error
}

// Animate is implemented by every kind of living.
type Animate interface {
	Object
	asLiving() *Living
}

// Heartbeater receives a call every driver tick once registered.
type Heartbeater interface {
	Heartbeat(ctx Context)
}

// ActionNotifiee is told about commands executed near it.
type ActionNotifiee interface {
	NotifyAction(ctx Context, act Action, actor *Living)
}

// VerbHandler handles custom verbs declared in an object's Verbs map.
type VerbHandler interface {
	HandleVerb(ctx Context, act Action, actor *Living) (bool, error)
}

// DeferredHandler executes named deferred actions scheduled on it.
type DeferredHandler interface {
	HandleDeferred(ctx Context, action string, args []any) error
}

// Activate refuses.
func (b *Base) Activate(Context, *Living) error { return errs.Refused("You can't activate that.") }

// Deactivate refuses.
func (b *Base) Deactivate(Context, *Living) error {
	return errs.Refused("You can't deactivate that.")
}

// Manipulate refuses.
func (b *Base) Manipulate(_ Context, verb string, _ *Living) error {
	return errs.Refused("You can't %s that.", verb)
}

// Read refuses.
func (b *Base) Read(Context, *Living) error { return errs.Refused("There's nothing to read.") }

// Combine refuses.
func (b *Base) Combine(Context, []Object, *Living) error {
	return errs.Refused("You can't combine these.")
}
