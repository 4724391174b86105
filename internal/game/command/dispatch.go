package command

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
)

// maxRetries bounds the number of times one input line may be rewritten.
const maxRetries = 8

// Dispatcher executes player input lines. It owns the soul of every
// player, so pronouns keep referring to the targets of the player's
// previous command.
//
// A Dispatcher is not safe for concurrent use; the driver calls it from
// its own goroutine only.
type Dispatcher struct {
	registry *Registry
	abbrev   map[string]string
	souls    map[world.ID]*soul.Soul
	logger   *zap.Logger
}

// NewDispatcher returns a dispatcher for the commands in reg.
//
// Precondition: reg and logger are not nil.
func NewDispatcher(reg *Registry, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: reg,
		abbrev:   Abbreviations,
		souls:    make(map[world.ID]*soul.Soul),
		logger:   logger,
	}
}

// Registry returns the commands the dispatcher knows.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Soul returns the soul of the living with the given id, creating it on
// first use.
func (d *Dispatcher) Soul(id world.ID) *soul.Soul {
	s, ok := d.souls[id]
	if !ok {
		s = soul.New()
		d.souls[id] = s
	}
	return s
}

// Forget drops the soul of a player that left the game.
func (d *Dispatcher) Forget(id world.ID) {
	delete(d.souls, id)
}

// Execute runs one input line for p.
//
// Postcondition: a returned error is user facing (ParseError,
// ActionRefused, SecurityViolation), a session control sentinel, or an
// internal error. An unknown verb is reported as "What do you mean?".
// When the result's Outcome is Ask, the caller must pass the player's
// next line to Resume.
func (d *Dispatcher) Execute(c *Ctx, p *world.Player, line string) (Result, error) {
	res, err := d.run(c, p, line)
	return d.settle(c, p, res, err)
}

// Resume continues a command suspended on q with the player's answer.
// An answer that is neither yes nor no asks the question again.
func (d *Dispatcher) Resume(c *Ctx, p *world.Player, q *Question, answer string) (Result, error) {
	yes, ok := ParseAnswer(answer)
	if !ok {
		return Result{Outcome: Ask, Question: q}, nil
	}
	res, err := q.Then(yes)
	return d.settle(c, p, res, err)
}

// settle follows the retry protocol until a command completes.
func (d *Dispatcher) settle(c *Ctx, p *world.Player, res Result, err error) (Result, error) {
	for i := 0; err == nil; i++ {
		if i == maxRetries {
			return Result{}, fmt.Errorf("command: too many retries for %q", res.Line)
		}
		switch res.Outcome {
		case RetryParse:
			res, err = d.run(c, p, res.Line)
		case RetrySoulVerb:
			res, err = d.emote(c, p, res.Line, false)
		case RetrySoulVerbNotPlayer:
			res, err = d.emote(c, p, res.Line, true)
		default:
			return res, nil
		}
	}
	var uv *errs.UnknownVerb
	if errors.As(err, &uv) {
		return Result{}, errs.Parse("What do you mean?")
	}
	return Result{}, err
}

// run executes one line once; a retry outcome is left to settle.
func (d *Dispatcher) run(c *Ctx, p *world.Player, line string) (Result, error) {
	line = Normalize(line, d.abbrev)
	verb, rest := SplitVerb(line)
	if verb == "" {
		return Result{}, nil
	}

	if strings.HasPrefix(verb, "!") {
		if !p.IsWizard() {
			return Result{}, &errs.SecurityViolation{Msg: "Wizard privilege required for verb " + verb}
		}
		cmd, ok := d.registry.Resolve(verb)
		if !ok || !cmd.Wizard {
			return Result{}, &errs.UnknownVerb{Verb: verb}
		}
		return d.runCommand(c, p, cmd, verb, rest, line)
	}

	cmd, hasCmd := d.registry.Resolve(verb)
	if hasCmd && cmd.Wizard {
		hasCmd = false
	}
	if hasCmd && cmd.NoSoulParse {
		return d.runCommand(c, p, cmd, verb, rest, line)
	}

	loc := p.Location()
	var custom map[string]string
	if loc != nil {
		custom = loc.AllVerbs()
	}
	external := func(v string) bool {
		if cm, ok := d.registry.Resolve(v); ok && !cm.Wizard {
			return true
		}
		if _, ok := custom[v]; ok {
			return true
		}
		return loc != nil && loc.Exit(v) != nil
	}
	r, err := d.Soul(p.ID).Parse(&p.Living, line, soul.Options{External: external, Abbreviations: d.abbrev})
	if err != nil {
		return Result{}, err
	}
	if r.Qualifier != "" {
		return d.socialize(c, p, r, false)
	}

	if _, ok := custom[r.Verb]; ok {
		handled, err := d.customVerb(c, p, r)
		if err != nil {
			return Result{}, err
		}
		if handled {
			d.Soul(p.ID).Remember(r)
			c.Driver.NotifyAction(r.Action(), p)
			return Result{}, nil
		}
		if !hasCmd && (loc == nil || loc.Exit(r.Verb) == nil) {
			return Result{}, errs.Parse("Please be more specific.")
		}
	}

	if loc != nil {
		if ex := loc.Exit(r.Verb); ex != nil {
			return Result{}, d.goThrough(p, ex)
		}
	}
	if hasCmd {
		return d.execCommand(c, p, cmd, r, line)
	}
	if _, ok := soul.VERBS[r.Verb]; ok {
		return d.socialize(c, p, r, false)
	}
	if world.Direction(r.Verb).IsStandard() {
		return Result{}, errs.Refused("You can't go in that direction.")
	}
	return Result{}, &errs.UnknownVerb{Verb: r.Verb}
}

// runCommand runs a command that does its own parsing, or a wizard
// command, which is parsed in command mode.
func (d *Dispatcher) runCommand(c *Ctx, p *world.Player, cmd *Command, verb, rest, line string) (Result, error) {
	if cmd.NoSoulParse {
		r := &soul.ParseResult{Verb: verb, Unparsed: rest, Args: strings.Fields(rest), WhoInfo: map[world.ID]soul.WhoInfo{}}
		return d.execCommand(c, p, cmd, r, line)
	}
	external := func(string) bool { return true }
	r, err := d.Soul(p.ID).Parse(&p.Living, line, soul.Options{External: external, Abbreviations: d.abbrev})
	if err != nil {
		return Result{}, err
	}
	return d.execCommand(c, p, cmd, r, line)
}

func (d *Dispatcher) execCommand(c *Ctx, p *world.Player, cmd *Command, r *soul.ParseResult, line string) (Result, error) {
	if mode := c.Driver.Mode(); cmd.Disabled(mode) {
		return Result{}, errs.Refused("You can't do that in %s mode.", mode)
	}
	res, err := cmd.Handler(c, p, r)
	if err != nil {
		return Result{}, err
	}
	switch res.Outcome {
	case RetrySoulVerb, RetrySoulVerbNotPlayer:
		if res.Line == "" {
			res.Line = line
		}
		return res, nil
	case RetryParse:
		return res, nil
	}
	d.Soul(p.ID).Remember(r)
	if !cmd.NoNotifyAction {
		if res.Outcome == Ask && res.Question != nil {
			// observers only hear about it once the player has answered
			res.Question = notifyAfter(res.Question, c, r.Action(), p)
		} else {
			c.Driver.NotifyAction(r.Action(), p)
		}
	}
	d.logger.Debug("command executed", zap.String("player", p.Name), zap.String("command", cmd.Name))
	return res, nil
}

// emote parses line in soul mode and performs it.
func (d *Dispatcher) emote(c *Ctx, p *world.Player, line string, notPlayer bool) (Result, error) {
	r, err := d.Soul(p.ID).Parse(&p.Living, Normalize(line, d.abbrev), soul.Options{Abbreviations: d.abbrev})
	if err != nil {
		return Result{}, err
	}
	return d.socialize(c, p, r, notPlayer)
}

// socialize performs the emote in r and tells everyone involved.
func (d *Dispatcher) socialize(c *Ctx, p *world.Player, r *soul.ParseResult, notPlayer bool) (Result, error) {
	if notPlayer {
		kept := r.WhoOrder[:0]
		for _, o := range r.WhoOrder {
			if o.Core().ID != p.ID {
				kept = append(kept, o)
			}
		}
		r.WhoOrder = kept
	}
	sl := d.Soul(p.ID)
	e, err := sl.Socialize(r, &p.Living)
	if err != nil {
		return Result{}, err
	}
	p.Tell(e.PlayerMsg, world.End)
	if loc := p.Location(); loc != nil {
		loc.Tell(e.RoomMsg, &p.Living, e.Targets, e.TargetMsg)
	}
	if e.Aggressive {
		for _, t := range e.Targets {
			if t.Aggressive {
				t.StartAttack(&p.Living)
			}
		}
	}
	sl.Remember(r)
	c.Driver.NotifyAction(r.Action(), p)
	return Result{}, nil
}

// customVerb offers a custom verb to the objects in scope: the targets
// first, then the location, the items in it, the livings present and
// whatever they carry.
func (d *Dispatcher) customVerb(c *Ctx, p *world.Player, r *soul.ParseResult) (bool, error) {
	loc := p.Location()
	candidates := append([]world.Object(nil), r.WhoOrder...)
	candidates = append(candidates, loc)
	candidates = append(candidates, loc.Items()...)
	for _, o := range loc.Livings() {
		candidates = append(candidates, o)
		candidates = append(candidates, world.AsLiving(o).Inventory()...)
	}
	act := r.Action()
	seen := make(map[world.ID]bool)
	for _, o := range candidates {
		id := o.Core().ID
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, ok := o.Core().Verbs[r.Verb]; !ok {
			continue
		}
		h, ok := o.(world.VerbHandler)
		if !ok {
			continue
		}
		handled, err := h.HandleVerb(c.Context, act, &p.Living)
		if err != nil || handled {
			return handled, err
		}
	}
	return false, nil
}

type passage interface {
	AllowPassage(actor *world.Living) error
}

// goThrough moves the player through an exit and shows the new location.
func (d *Dispatcher) goThrough(p *world.Player, o world.Object) error {
	ex := world.AsExit(o)
	if ex == nil {
		return errs.Refused("You can't go there.")
	}
	if pa, ok := o.(passage); ok {
		if err := pa.AllowPassage(&p.Living); err != nil {
			if errs.IsUserFacing(err) {
				return err
			}
			d.logger.Warn("exit is not passable", zap.Stringer("exit", ex.Core()), zap.Error(err))
			return errs.Refused("You can't go there.")
		}
	}
	if err := p.Move(ex.Target(), &p.Living, false); err != nil {
		return err
	}
	p.Look(world.LookAuto)
	return nil
}

func notifyAfter(q *Question, c *Ctx, act world.Action, p *world.Player) *Question {
	then := q.Then
	return &Question{Prompt: q.Prompt, Then: func(yes bool) (Result, error) {
		res, err := then(yes)
		if err != nil {
			return res, err
		}
		if res.Outcome == Ask && res.Question != nil {
			res.Question = notifyAfter(res.Question, c, act, p)
		} else if res.Outcome == Done {
			c.Driver.NotifyAction(act, p)
		}
		return res, nil
	}}
}
