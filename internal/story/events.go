package story

import (
	"github.com/cory-johannsen/tale/internal/game/world"
)

type doorCheckpoint struct {
	name  string
	recap string
}

// locationEvents is the observer the zone loader attaches to locations
// that end the game or guard a checkpoint door.
type locationEvents struct {
	gameEnd     bool
	checkpoints map[world.ID]doorCheckpoint
}

func (e *locationEvents) addCheckpoint(door world.ID, name, recap string) {
	if e.checkpoints == nil {
		e.checkpoints = make(map[world.ID]doorCheckpoint)
	}
	e.checkpoints[door] = doorCheckpoint{name: name, recap: recap}
}

func (e *locationEvents) active() bool {
	return e.gameEnd || len(e.checkpoints) > 0
}

// NotifyPlayerArrived completes the story on a game-end location.
func (e *locationEvents) NotifyPlayerArrived(_ *world.Location, p *world.Player, _ *world.Location) {
	if e.gameEnd {
		p.StoryCompleted()
	}
}

func (e *locationEvents) NotifyPlayerLeft(*world.Location, *world.Player, *world.Location) {}
func (e *locationEvents) NotifyNPCArrived(*world.Location, *world.Living, *world.Location) {}
func (e *locationEvents) NotifyNPCLeft(*world.Location, *world.Living, *world.Location)    {}

// NotifyAction records the checkpoint of a door the player just unlocked
// or opened.
func (e *locationEvents) NotifyAction(ctx world.Context, act world.Action, actor *world.Living) {
	if act.Verb != "unlock" && act.Verb != "open" {
		return
	}
	p := world.AsPlayer(ctx.World.Get(actor.ID))
	if p == nil {
		return
	}
	for id, cp := range e.checkpoints {
		if !act.Targets(id) {
			continue
		}
		if d, ok := ctx.World.Get(id).(*world.Door); ok && !d.Locked {
			p.Hints.Checkpoint(cp.name, cp.recap)
		}
	}
}
