package command

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/gametime"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/story"
)

func socialCommands() []Command {
	notMUD := []story.Mode{story.ModeMUD}
	return []Command{
		{Name: "say", Category: CategoryCommunication, Handler: handleSay, NoSoulParse: true,
			Help: "Say something to people near you."},
		{Name: "yell", Category: CategoryCommunication, Handler: handleYell, OverridesSoul: true,
			Help: "Yell something. People in nearby locations will also be able to hear you."},
		{Name: "emote", Category: CategoryCommunication, Handler: handleEmote, DisabledIn: []story.Mode{story.ModeIF},
			Help: "Emit a custom 'emote' message literally, such as: 'emote looks stupid.' -> '<player> looks stupid."},
		{Name: "tell", Category: CategoryCommunication, Handler: handleTell,
			Help: "Pass a message to another player or creature that nobody else can hear. The other player doesn't have to be in the same location as you."},
		{Name: "wait", Category: CategoryWorld, Handler: handleWait, OverridesSoul: true, DisabledIn: notMUD,
			Help: "Let someone know you are waiting for them. Alternatively, you can simply let time pass. For the latter use, you can optionally specify how long you want to wait (in hours, minutes, seconds), or until when."},
		{Name: "dice", Aliases: []string{"roll"}, Category: CategoryWorld, Handler: handleDice, OverridesSoul: true,
			Help: "Roll a 6-sided die. Use the familiar '3d6' argument style if you want to roll multiple dice."},
		{Name: "coin", Category: CategoryWorld, Handler: handleCoin,
			Help: "Toss a coin."},
		{Name: "flee", Category: CategoryMovement, Handler: handleFlee,
			Help: "Flee in a random or given direction, possibly escaping a combat situation."},
		{Name: "go", Category: CategoryMovement, Handler: handleGo,
			Help: "Go in a direction or through an exit, for instance 'go north' or 'go door'."},
		{Name: "save", Category: CategorySystem, Handler: handleSave, NoNotifyAction: true, DisabledIn: notMUD,
			Help: "Save your game."},
		{Name: "load", Aliases: []string{"reload", "restore", "restart"}, Category: CategorySystem, Handler: handleLoad,
			NoNotifyAction: true, DisabledIn: notMUD,
			Help: "Load a previously saved game."},
		{Name: "transcript", Category: CategorySystem, Handler: handleTranscript, NoNotifyAction: true, DisabledIn: notMUD,
			Help: "Makes a transcript of your game session to the specified file, or switches transcript off again."},
		{Name: "quit", Aliases: []string{"leave"}, Category: CategorySystem, Handler: handleQuit, NoNotifyAction: true,
			Help: "Quit the game."},
	}
}

// withPunctuation appends punct unless the message already ends a sentence.
func withPunctuation(msg, punct string) string {
	if strings.HasSuffix(msg, ".") || strings.HasSuffix(msg, "!") || strings.HasSuffix(msg, "?") {
		return msg
	}
	return msg + punct
}

// handleSay gets the raw line. "say to bob hello" addresses a living
// present.
func handleSay(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	msg := strings.TrimSpace(r.Unparsed)
	if msg == "" {
		return Result{}, errs.Refused("Say what?")
	}
	target := ""
	if rest, ok := strings.CutPrefix(msg, "to "); ok {
		name, after, _ := strings.Cut(strings.TrimSpace(rest), " ")
		if l := p.Location().SearchLiving(name); l != nil && strings.TrimSpace(after) != "" {
			target = " to " + l.Title()
			msg = strings.TrimSpace(after)
		}
	}
	msg = withPunctuation(msg, ".")
	p.Tell(fmt.Sprintf("You say%s: %s", target, msg), world.End)
	p.TellOthers(fmt.Sprintf("{Title} says%s: %s", target, msg))
	return Result{}, nil
}

func handleYell(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if r.Unparsed == "" {
		return Result{}, errs.Refused("Yell what?")
	}
	msg := withPunctuation(r.Unparsed, "!")
	p.Tell("You yell: "+msg, world.End)
	p.TellOthers("{Title} yells: " + msg)
	p.Location().MessageNearby("Someone nearby is yelling: " + msg)
	return Result{}, nil
}

func handleEmote(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if r.Unparsed == "" {
		return Result{}, errs.Parse("Emote what message?")
	}
	msg := withPunctuation(lang.Capital(p.Title())+" "+r.Unparsed, ".")
	p.Tell("You emote: "+msg, world.End)
	p.TellOthers(msg)
	return Result{}, nil
}

func handleTell(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Refused("Tell whom what?")
	}
	name := r.Args[0]
	var target *world.Living
	if l := p.Location().SearchLiving(name); l != nil {
		target = l
	} else if other := c.Driver.SearchPlayer(name); other != nil {
		target = &other.Living
	}
	if target == nil {
		if name == "all" {
			return Result{}, errs.Refused("You can't tell something to everyone, only to individuals.")
		}
		return Result{}, errs.Refused("%s isn't here.", name)
	}
	if target.ID == p.ID {
		p.Tell("You're talking to yourself...", world.End)
		return Result{}, nil
	}
	msg := strings.TrimSpace(r.Unparsed)
	if len(msg) >= len(name) && strings.EqualFold(msg[:len(name)], name) {
		msg = strings.TrimSpace(msg[len(name):])
	}
	if msg == "" {
		p.Tell(fmt.Sprintf("Tell %s what?", target.Objective()), world.End)
		return Result{}, nil
	}
	target.Tell(fmt.Sprintf("<player>%s</> tells you: %s", p.Name, msg), world.End)
	p.Tell(fmt.Sprintf("You told <living>%s</>.", name), world.End)
	return Result{}, nil
}

func handleWait(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	for _, w := range r.Unrecognized {
		if w == "for" && len(r.WhoOrder) == 0 {
			return Result{}, errs.Refused("Who exactly do you want to wait for?")
		}
	}
	if len(r.WhoOrder) > 0 {
		for _, o := range r.WhoOrder {
			if world.AsLiving(o) == nil {
				return Result{}, errs.Refused("You can't wait for something that's not alive.")
			}
		}
		who := lang.Join(titles(r.WhoOrder), "")
		p.Tell(fmt.Sprintf("You wait for %s.", who), world.End)
		p.TellOthers(fmt.Sprintf("{Title} waits for %s.", who))
		return Result{}, nil
	}
	duration := 10 * time.Minute
	if len(r.Args) > 0 {
		var err error
		if r.Args[0] == "till" || r.Args[0] == "until" {
			duration, err = waitUntil(c, r.Args[1:])
		} else {
			duration, err = gametime.ParseDuration(r.Args)
		}
		if err != nil {
			return Result{}, err
		}
	}
	cfg := c.Config()
	if cfg.MaxWaitHours == 0 {
		return Result{}, errs.Refused("It is not possible to wait.")
	}
	if duration > cfg.MaxWait() {
		spelled, err := lang.SpellNumber(cfg.MaxWaitHours)
		if err != nil {
			spelled = strconv.FormatFloat(cfg.MaxWaitHours, 'f', -1, 64)
		}
		return Result{}, errs.Refused("You can't wait more than %s %s at once, who knows what might happen in that time?",
			spelled, lang.Pluralize("hour", cfg.MaxWaitHours))
	}
	if ok, msg := c.Driver.Wait(duration); !ok {
		p.Tell(msg, world.End)
		return Result{}, nil
	}
	p.Tell(fmt.Sprintf("Time passes. You've waited %s.", gametime.DurationDisplay(duration)), world.End)
	return Result{}, nil
}

// waitUntil returns the game time until the next occurrence of the time
// of day in words.
func waitUntil(c *Ctx, words []string) (time.Duration, error) {
	tod, err := gametime.ParseTime(words)
	if err != nil {
		return 0, err
	}
	now := c.Clock().Now()
	at := tod.On(now)
	if at.Equal(now) {
		return 0, errs.Refused("It is already that time.")
	}
	if at.Before(now) {
		at = at.Add(24 * time.Hour)
	}
	return at.Sub(now), nil
}

func handleDice(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	expr := "1d6"
	if len(r.Args) == 0 {
		if r.Verb == "roll" {
			return Result{Outcome: RetrySoulVerb}, nil
		}
	} else {
		expr = r.Args[0]
	}
	e, err := dice.Parse(expr)
	if err != nil {
		if r.Verb == "roll" {
			return Result{Outcome: RetrySoulVerb}, nil
		}
		return Result{}, errs.Refused("What kind of dice do you want to roll (such as 3d6)?")
	}
	if e.Count > 20 {
		return Result{}, errs.Refused("Please try a bit more sensible values.")
	}
	roll := dice.Roll(e, c.World.Dice)
	die := "a die"
	if e.Raw != "1d6" && e.Raw != "d6" {
		die = e.Raw
	}
	p.Tell(fmt.Sprintf("You roll %s. The result is: %d.", die, roll.Total()), world.End)
	p.TellOthers(fmt.Sprintf("{Title} rolls %s. The result is: %d.", die, roll.Total()))
	if len(roll.Dice) > 1 || roll.Modifier != 0 {
		p.Location().Tell("The individual rolls were: "+roll.String(), nil, nil, "")
	}
	return Result{}, nil
}

func handleCoin(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	result := dice.Choice(c.World.Dice, []string{"heads", "tails"})
	p.Tell(fmt.Sprintf("You toss a coin. The result is: %s!", result), world.End)
	p.TellOthers(fmt.Sprintf("{Title} tosses a coin. The result is: %s!", result))
	return Result{}, nil
}

func handleFlee(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	loc := p.Location()
	var chosen world.Object
	switch {
	case len(r.WhoOrder) == 1:
		chosen = r.WhoOrder[0]
		ex, ok := chosen.(passage)
		if !ok || world.AsExit(chosen) == nil {
			return Result{}, errs.Parse("You can't flee there.")
		}
		if err := ex.AllowPassage(&p.Living); err != nil {
			return Result{}, err
		}
	case len(r.Args) > 0:
		return Result{}, errs.Parse("Flee where?")
	}
	exits := loc.UniqueExits()
	random := chosen == nil
	if random {
		if len(exits) == 0 {
			return Result{}, errs.Refused("You can't flee anywhere!")
		}
		chosen = dice.Choice(c.World.Dice, exits)
	}
	for _, o := range append([]world.Object{chosen}, exits...) {
		ex, ok := o.(passage)
		if !ok {
			continue
		}
		if err := ex.AllowPassage(&p.Living); err != nil {
			if !errs.IsUserFacing(err) {
				return Result{}, err
			}
			continue
		}
		target := world.AsExit(o).Target()
		if target == nil {
			continue
		}
		if random {
			p.Tell("You flee in a random direction!", world.End)
		} else {
			p.Tell("You flee!", world.End)
		}
		p.Tell("\n")
		if err := p.Move(target, &p.Living, false); err != nil {
			return Result{}, err
		}
		p.Look(world.LookAuto)
		return Result{}, nil
	}
	return Result{}, errs.Refused("You can't flee anywhere!")
}

func handleGo(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Go where?")
	}
	return Retry(strings.Join(r.Args, " ")), nil
}

func handleSave(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	return Result{}, c.Driver.Save(p)
}

func handleLoad(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	p.Tell("If you want to restart or reload a previously saved game, please quit the game (without saving!) "+
		"and start it again. During startup, select the appropriate option to start from a saved game, "+
		"or start a new game.", world.End)
	return Result{}, nil
}

func handleTranscript(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if r.Unparsed == "off" || (len(r.Args) > 0 && r.Args[0] == "off") {
		if !p.HasTranscript() {
			return Result{}, errs.Refused("There's no transcript being written.")
		}
		if err := p.CloseTranscript(); err != nil {
			return Result{}, err
		}
		p.Tell("Transcript ended.", world.End)
		return Result{}, nil
	}
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Transcript to what file? (or off)")
	}
	w, err := c.Driver.OpenTranscript(p, r.Args[0])
	if err != nil {
		return Result{}, err
	}
	if err := p.SetTranscript(w); err != nil {
		return Result{}, err
	}
	p.Tell(fmt.Sprintf("Transcript is being written to %s.", r.Args[0]), world.End)
	return Result{}, nil
}

func handleQuit(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	leave := func() (Result, error) {
		p.Tell("\n")
		return Result{}, errs.ErrSessionExit
	}
	return Confirm("Are you sure you want to quit?", func(yes bool) (Result, error) {
		if !yes {
			p.Tell("Good, thank you for staying.", world.End)
			return Result{}, nil
		}
		cfg := c.Config()
		if c.Driver.Mode() == story.ModeMUD || !cfg.SavegamesEnabled {
			return leave()
		}
		return Confirm("Would you like to save your progress?", func(save bool) (Result, error) {
			if save {
				if err := c.Driver.Save(p); err != nil {
					return Result{}, err
				}
			}
			return leave()
		}), nil
	}), nil
}
