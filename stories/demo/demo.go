// Package demo is the demo story shipped with the engine. Importing it
// registers the story under the name "demo".
package demo

import (
	"embed"
	"time"

	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/story"
)

//go:embed story.yaml zones messages
var files embed.FS

// Name is the name the demo story is registered under.
const Name = "demo"

func init() {
	story.Register(Name, files, func(base *story.DataStory) story.Story {
		return &Story{DataStory: base}
	})
}

// reminderAfter is the game time after which a new player is nudged.
const reminderAfter = 15 * time.Minute

// Story adds a little flavour to the data driven demo.
type Story struct {
	*story.DataStory
	host story.Host
}

// Init builds the world and keeps the host for scheduling reminders.
func (s *Story) Init(h story.Host) error {
	if err := s.DataStory.Init(h); err != nil {
		return err
	}
	s.host = h
	return nil
}

// Welcome greets a new player and schedules a reminder of the goal.
func (s *Story) Welcome(p *world.Player) {
	s.DataStory.Welcome(p)
	if s.host == nil {
		return
	}
	due := s.host.World().Clock.Now().Add(reminderAfter)
	s.host.Scheduler().Defer(due, p.ID, world.ActionTell,
		"The church clock strikes the quarter hour. You feel you should find a way out of town.")
}

// InitPlayer gives new players some pocket money on top of the hints.
func (s *Story) InitPlayer(p *world.Player) {
	s.DataStory.InitPlayer(p)
	if p.Money == 0 {
		p.Money = s.Config().PlayerMoney
	}
}

// Completion adds a farewell to the standard congratulations.
func (s *Story) Completion(p *world.Player) {
	s.DataStory.Completion(p)
	p.Tell("The fields are yours to wander, "+p.Title()+".", world.End)
}
