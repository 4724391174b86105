// Package command provides the command registry, the dispatcher that runs
// a player's input line, and the built-in normal and wizard commands.
package command

import (
	"io"
	"strings"
	"time"

	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/story"
)

// Categories for organizing commands in help output.
const (
	CategoryMovement      = "movement"
	CategoryWorld         = "world"
	CategoryItems         = "items"
	CategoryCommunication = "communication"
	CategorySystem        = "system"
	CategoryWizard        = "wizard"
)

// Handler executes a command for player p. Returning a user facing error
// (errs.ParseError, errs.ActionRefused) shows its message to the player.
type Handler func(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error)

// Command defines a player-invocable command.
type Command struct {
	// Name is the canonical command name. Wizard commands start with '!'.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Help is the text shown by help and "what is".
	Help     string
	Category string
	Handler  Handler
	// NoNotifyAction keeps the command from being passed to the objects
	// around the player after it executed.
	NoNotifyAction bool
	// OverridesSoul must be set when the name or an alias is also an emote.
	OverridesSoul bool
	// NoSoulParse hands the raw remainder of the line to the handler.
	NoSoulParse bool
	// DisabledIn lists the game modes the command is refused in.
	DisabledIn []story.Mode
	// Wizard commands require the wizard privilege.
	Wizard bool
}

// Names returns the name followed by the aliases.
func (c *Command) Names() []string {
	return append([]string{c.Name}, c.Aliases...)
}

// Disabled reports whether the command is refused in mode m.
func (c *Command) Disabled(m story.Mode) bool {
	for _, d := range c.DisabledIn {
		if d == m {
			return true
		}
	}
	return false
}

// Outcome tells the dispatcher what to do after a handler returned.
type Outcome int

const (
	// Done means the command completed.
	Done Outcome = iota
	// RetryParse runs Result.Line through the whole pipeline again.
	RetryParse
	// RetrySoulVerb executes the line as an emote instead.
	RetrySoulVerb
	// RetrySoulVerbNotPlayer executes the line as an emote that must not
	// target the player.
	RetrySoulVerbNotPlayer
	// Ask suspends the command until the player answers Result.Question.
	Ask
)

// Result is what a handler returns besides an error.
type Result struct {
	Outcome  Outcome
	Line     string
	Question *Question
}

// Retry returns a result that re-runs line.
func Retry(line string) Result { return Result{Outcome: RetryParse, Line: line} }

// Question is a yes/no question whose answer resumes a suspended command.
type Question struct {
	Prompt string
	Then   func(yes bool) (Result, error)
}

// Confirm returns a result that asks the player prompt and continues with
// then once the answer arrives.
func Confirm(prompt string, then func(yes bool) (Result, error)) Result {
	return Result{Outcome: Ask, Question: &Question{Prompt: prompt, Then: then}}
}

// ParseAnswer interprets a reply to a Question.
//
// Postcondition: ok is false when the reply is neither yes nor no.
func ParseAnswer(line string) (yes, ok bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "sure", "ok", "yep", "yeah":
		return true, true
	case "n", "no", "nope", "nah":
		return false, true
	}
	return false, false
}

// DeferredInfo describes a pending deferred for the wizard commands.
type DeferredInfo struct {
	Due    time.Time
	Owner  string
	Action string
}

// ServerInfo describes the running driver for the wizard commands.
type ServerInfo struct {
	Started      time.Time
	Mode         story.Mode
	TickMethod   story.TickMethod
	TickTime     time.Duration
	LoopDuration time.Duration
	Players      int
	Heartbeats   int
	Deferreds    int
	Goroutines   int
}

// Driver is the part of the game driver the commands use.
type Driver interface {
	Mode() story.Mode
	Story() story.Story
	// Money returns the money formatter, or nil when the story has none.
	Money() *money.Formatter
	// SearchPlayer finds a connected player by name.
	SearchPlayer(name string) *world.Player
	// Wait lets game time pass. When ok is false msg says why not.
	Wait(d time.Duration) (ok bool, msg string)
	Save(p *world.Player) error
	// OpenTranscript creates a transcript file for the player.
	OpenTranscript(p *world.Player, name string) (io.WriteCloser, error)
	// NotifyAction passes an executed command to the objects around the
	// actor once the command's output is out.
	NotifyAction(act world.Action, actor *world.Player)
	// SetOutputDelay sets the player's delay between output lines.
	SetOutputDelay(p *world.Player, d time.Duration) error
	OutputDelay(p *world.Player) time.Duration
	Heartbeats() []world.ID
	Deferreds() []DeferredInfo
	Info() ServerInfo
}

// Ctx is passed to every handler.
type Ctx struct {
	world.Context
	Driver     Driver
	Dispatcher *Dispatcher
}

// Config returns the story configuration.
func (c *Ctx) Config() *story.Config { return c.Driver.Story().Config() }
