package world

import (
	"fmt"
	"io"
	"sort"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/pubsub"
	"github.com/cory-johannsen/tale/internal/render"
	"github.com/cory-johannsen/tale/internal/story/hints"
)

// LookMode selects the verbosity of Player.Look.
type LookMode int

const (
	// LookAuto follows the player's brief setting.
	LookAuto LookMode = iota
	LookLong
	LookShort
)

// Player is the living controlled by a connected user.
type Player struct {
	Living
	// Brief is 0 for full descriptions, 1 for short descriptions of known
	// locations, 2 for short descriptions everywhere.
	Brief          int
	ScreenWidth    int
	ScreenIndent   int
	ScreenStyles   bool
	Smartquotes    bool
	KnownLocations map[ID]bool
	// TeleportedFrom is where a wizard was before the last teleport.
	TeleportedFrom ID
	Hints          *hints.System

	transcript io.WriteCloser
	wiretaps   []string
	completed  bool
}

// NewPlayer creates a player. The title is the capitalized name.
func (w *World) NewPlayer(name string, gender lang.Gender, race, description string) (*Player, error) {
	p := &Player{}
	if err := w.initLiving(&p.Living, name, gender, race, lang.Capital(name), description); err != nil {
		return nil, err
	}
	p.out = &render.Buffer{}
	p.ScreenWidth = render.DefaultOptions().Width
	p.ScreenIndent = render.DefaultOptions().Indent
	p.ScreenStyles = true
	p.Smartquotes = true
	p.KnownLocations = make(map[ID]bool)
	p.Hints = hints.New(nil)
	w.add(p, KindPlayer)
	return p, nil
}

// Insert accepts items from anyone.
func (p *Player) Insert(obj Object, _ *Living) error {
	if AsItem(obj) == nil {
		return errs.Refused("You can't give that to %s.", p.title)
	}
	p.attach(obj)
	return nil
}

// Output returns the buffered paragraphs, clearing the buffer if asked.
func (p *Player) Output(clear bool) []render.Paragraph { return p.out.Paragraphs(clear) }

// RawOutput returns the buffered paragraph texts with style tags intact.
func (p *Player) RawOutput(clear bool) []string { return p.out.Raw(clear) }

// HasOutput reports whether anything is waiting to be rendered.
func (p *Player) HasOutput() bool { return p.out.Len() > 0 }

// RenderOptions returns the player's screen settings.
func (p *Player) RenderOptions() render.Options {
	return render.Options{
		Indent:      p.ScreenIndent,
		Width:       p.ScreenWidth,
		Styles:      p.ScreenStyles,
		Smartquotes: p.Smartquotes,
	}
}

// Render renders and clears the buffered output. A plain copy of the text
// goes to the transcript when one is active.
func (p *Player) Render() string {
	paras := p.out.Paragraphs(true)
	opts := p.RenderOptions()
	text := render.Render(paras, opts)
	if p.transcript != nil && len(paras) > 0 {
		opts.Styles = false
		_, _ = io.WriteString(p.transcript, render.Render(paras, opts))
	}
	return text
}

// RecordInput writes a line typed by the player to the transcript.
func (p *Player) RecordInput(line string) {
	if p.transcript != nil {
		_, _ = fmt.Fprintf(p.transcript, "\n>> %s\n", line)
	}
}

// SetTranscript starts a transcript, closing any previous one.
func (p *Player) SetTranscript(w io.WriteCloser) error {
	err := p.CloseTranscript()
	p.transcript = w
	return err
}

// CloseTranscript stops the transcript.
func (p *Player) CloseTranscript() error {
	if p.transcript == nil {
		return nil
	}
	err := p.transcript.Close()
	p.transcript = nil
	return err
}

// HasTranscript reports whether a transcript is being written.
func (p *Player) HasTranscript() bool { return p.transcript != nil }

// Look tells the player about the current location and remembers it as
// known.
func (p *Player) Look(mode LookMode) {
	loc := p.Location()
	if loc == nil {
		p.Tell("You see nothing.", End)
		return
	}
	short := mode == LookShort
	if mode == LookAuto {
		switch p.Brief {
		case 2:
			short = true
		case 1:
			short = p.KnownLocations[loc.ID]
		}
	}
	p.KnownLocations[loc.ID] = true
	for _, para := range loc.Look(&p.Living, short) {
		p.Tell(para, End)
	}
}

// CreateWiretap subscribes the player to everything told to target,
// which must be a location or a living other than the player.
func (p *Player) CreateWiretap(target Object) error {
	switch {
	case target == nil:
		return errs.Refused("Wiretap what?")
	case target.Core().ID == p.ID:
		return errs.Refused("You can't wiretap yourself.")
	case AsLocation(target) == nil && AsLiving(target) == nil:
		return errs.Refused("You can only wiretap locations and livings.")
	}
	name := wiretapTopic(target)
	p.world.Bus.Topic(name).Subscribe(p)
	for _, w := range p.wiretaps {
		if w == name {
			return nil
		}
	}
	p.wiretaps = append(p.wiretaps, name)
	sort.Strings(p.wiretaps)
	return nil
}

// ClearWiretaps removes all of the player's wiretaps.
func (p *Player) ClearWiretaps() {
	if p.world == nil {
		return
	}
	for _, name := range p.wiretaps {
		if t, ok := p.world.Bus.Lookup(name); ok {
			t.Unsubscribe(p)
		}
	}
	p.wiretaps = nil
}

// StoryCompleted marks the story as completed by the player. The driver
// checks the mark after every command.
func (p *Player) StoryCompleted() { p.completed = true }

// Completed reports whether the player completed the story.
func (p *Player) Completed() bool { return p.completed }

// Wiretaps returns the topics the player is tapping, sorted.
func (p *Player) Wiretaps() []string { return append([]string(nil), p.wiretaps...) }

// PubsubEvent shows wiretapped messages. Relayed text is not forwarded to
// taps on the player, so two wizards tapping each other cannot loop.
func (p *Player) PubsubEvent(_ string, event any) any {
	if ev, ok := event.(WiretapEvent); ok {
		p.print(fmt.Sprintf("[wiretapped from '%s': %s]", ev.Source, ev.Message), End)
	}
	return nil
}

var _ pubsub.Subscriber = (*Player)(nil)
var _ pubsub.Liveness = (*Player)(nil)

// ActionTell is the deferred action that tells a player its argument
// later on.
const ActionTell = "tell"

// HandleDeferred handles the deferred actions scheduled on players.
func (p *Player) HandleDeferred(_ Context, action string, args []any) error {
	if action != ActionTell {
		return fmt.Errorf("world: player %s has no deferred action %q", p.Name, action)
	}
	for _, a := range args {
		if msg, ok := a.(string); ok {
			p.Tell(msg, End)
		}
	}
	return nil
}
