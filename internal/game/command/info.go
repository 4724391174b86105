package command

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/render"
	"github.com/cory-johannsen/tale/internal/story"
)

func infoCommands() []Command {
	return []Command{
		{Name: "inventory", Category: CategoryItems, Handler: handleInventory, NoNotifyAction: true,
			Help: "Show the items you are carrying."},
		{Name: "locate", Aliases: []string{"search", "find"}, Category: CategoryWorld, Handler: handleLocate,
			Help: "Try to locate a specific item, creature or player."},
		{Name: "help", Category: CategorySystem, Handler: handleHelp, NoNotifyAction: true,
			Help: "Provides some helpful information about different aspects of the game. Also try 'hint' or 'recap'."},
		{Name: "look", Category: CategoryWorld, Handler: handleLook, NoNotifyAction: true,
			Help: "Look around to see where you are and what's around you."},
		{Name: "examine", Aliases: []string{"inspect"}, Category: CategoryWorld, Handler: handleExamine, NoNotifyAction: true,
			Help: "Examine something or someone thoroughly."},
		{Name: "stats", Category: CategoryWorld, Handler: handleStats, NoNotifyAction: true, DisabledIn: []story.Mode{story.ModeIF},
			Help: "Prints the gender, race and stats information of yourself, or another creature or player."},
		{Name: "who", Category: CategoryWorld, Handler: handleWho, NoNotifyAction: true,
			Help: "Search for all players, a specific player or creature, and shows some information about them."},
		{Name: "what", Category: CategorySystem, Handler: handleWhat, NoNotifyAction: true,
			Help: "Tries to answer your question about what something is. The topics range from game commands to location exits to creature and items. For more general help, try the 'help' command first."},
		{Name: "exits", Category: CategoryMovement, Handler: handleExits, NoNotifyAction: true,
			Help: "Provides a tiny clue about possible exits from your current location."},
		{Name: "time", Aliases: []string{"date"}, Category: CategoryWorld, Handler: handleTime, NoNotifyAction: true,
			Help: "Query the current date and/or time of day."},
		{Name: "brief", Category: CategorySystem, Handler: handleBrief, NoNotifyAction: true,
			Help: "Configure the verbosity of location descriptions. 'brief' shows short descriptions of locations you already know, 'brief all' of all locations, 'brief off' always shows long descriptions, and 'brief reset' also forgets the known locations."},
		{Name: "motd", Category: CategorySystem, Handler: handleMotd, NoNotifyAction: true, DisabledIn: []story.Mode{story.ModeIF},
			Help: "Show the message-of-the-day again."},
		{Name: "license", Category: CategorySystem, Handler: handleLicense,
			Help: "Show information about the game and about the engine, and show the software license."},
		{Name: "config", Category: CategorySystem, Handler: handleConfig,
			Help: "Show or change player configuration parameters."},
		{Name: "hint", Category: CategorySystem, Handler: handleHint,
			Help: "Provide a clue about what to do next. Also try 'help', and 'recap'."},
		{Name: "recap", Category: CategorySystem, Handler: handleRecap,
			Help: "Shows the key events or actions that have happened so that you might get back up to speed with the story so far."},
		{Name: "@teststyles", Category: CategorySystem, Handler: handleTestStyles,
			Help: "Test the text output styling (styles and colors)."},
	}
}

func handleInventory(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) > 0 && p.IsWizard() {
		if l := world.AsLiving(r.WhoOrder[0]); l != nil {
			l.ShowInventory(&p.Living, c.Driver.Money())
			return Result{}, nil
		}
	}
	inv := p.Inventory()
	if len(inv) == 0 {
		p.Tell("You are carrying nothing.", world.End)
	} else {
		p.Tell("You are carrying:", world.End)
		for _, it := range inv {
			p.Tell("  <item>"+it.Title()+"</>", world.Unformatted)
		}
	}
	if mf := c.Driver.Money(); mf != nil {
		p.Tell(fmt.Sprintf("Money in possession: %s.", mf.Display(p.Money, false, "you are broke")), world.End)
	}
	return Result{}, nil
}

// aliasNote tells the player which object an alias was taken to mean.
func aliasNote(p *world.Player, name string, o world.Object, verb string) {
	b := o.Core()
	if !strings.EqualFold(b.Name, name) && b.HasAlias(strings.ToLower(name)) {
		p.Tell(fmt.Sprintf("<dim>(By %s you probably %s %s.)</>", name, verb, b.Name), world.End)
	}
}

func handleLocate(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Locate what/who?")
	}
	if len(r.Args) > 1 || len(r.WhoOrder) > 1 {
		return Result{}, errs.Parse("Can only search for one thing at a time.")
	}
	name := r.Args[0]
	loc := p.Location()
	p.Tell(fmt.Sprintf("You look around to see if you can locate %s.", name), world.End)
	p.TellOthers("{Title} looks around.")
	if len(r.WhoOrder) == 1 {
		thing := r.WhoOrder[0]
		if thing.Core().ID == p.ID {
			p.Tell(fmt.Sprintf("You are here, in <location>%s</>.", loc.Name), world.End)
			return Result{}, nil
		}
		aliasNote(p, name, thing, "mean")
		switch {
		case loc.Contains(thing):
			if l := world.AsLiving(thing); l != nil {
				p.Tell(fmt.Sprintf("<living>%s</> is here next to you.", lang.Capital(l.Title())), world.End)
			} else {
				world.PrintLocation(p, thing, loc, false)
			}
		case p.Contains(thing):
			world.PrintLocation(p, thing, c.World.Get(p.ID), false)
		default:
			p.Tell("You can't find that.", world.End)
		}
		return Result{}, nil
	}
	if item, container := p.LocateItem(name, false, false, true); item != nil {
		aliasNote(p, name, item, "mean")
		world.PrintLocation(p, item, container, false)
		return Result{}, nil
	}
	if other := c.Driver.SearchPlayer(name); other != nil {
		tellPlaying(p, other)
		return Result{}, nil
	}
	p.Tell("You can't find that.", world.End)
	return Result{}, nil
}

func tellPlaying(p, other *world.Player) {
	where := "nowhere"
	if l := other.Location(); l != nil {
		where = l.Name
	}
	p.Tell(fmt.Sprintf("<player>%s</> is playing, %s is currently in '<location>%s</>'.",
		lang.Capital(other.Title()), other.Subjective(), where), world.End)
}

// currentVerbs returns every verb the player can use right now with its
// help text: commands plus the custom verbs around the player.
func currentVerbs(c *Ctx, p *world.Player) map[string]string {
	out := make(map[string]string)
	for _, cmd := range c.Dispatcher.Registry().Commands() {
		if cmd.Wizard && !p.IsWizard() {
			continue
		}
		for _, n := range cmd.Names() {
			out[n] = cmd.Help
		}
	}
	if loc := p.Location(); loc != nil {
		for v, help := range loc.AllVerbs() {
			out[v] = help
		}
	}
	return out
}

func handleHelp(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) > 0 {
		return handleWhat(c, p, r)
	}
	aliases := make(map[string]bool)
	for _, cmd := range c.Dispatcher.Registry().Commands() {
		for _, a := range cmd.Aliases {
			aliases[a] = true
		}
	}
	abbrevsOf := make(map[string][]string)
	var loose []string
	for abbr, verb := range Abbreviations {
		abbrevsOf[verb] = append(abbrevsOf[verb], abbr)
	}
	var verbs, synonyms []string
	for verb := range currentVerbs(c, p) {
		if aliases[verb] {
			synonyms = append(synonyms, verb)
			continue
		}
		entry := verb
		if abbrs := abbrevsOf[verb]; len(abbrs) > 0 {
			sort.Strings(abbrs)
			entry += "/" + strings.Join(abbrs, "/")
			delete(abbrevsOf, verb)
		}
		verbs = append(verbs, entry)
	}
	for verb, abbrs := range abbrevsOf {
		for _, a := range abbrs {
			loose = append(loose, a+"="+verb)
		}
	}
	sort.Strings(verbs)
	sort.Strings(synonyms)
	sort.Strings(loose)
	p.Tell("<bright>Available commands:</>")
	p.Tell(strings.Join(verbs, ", "), world.End)
	p.Tell("\n")
	if len(synonyms) > 0 {
		p.Tell("<bright>Synonyms:</> a different word for one of the commands mentioned above. Makes typing a bit more natural sometimes. The synonyms are: ")
		p.Tell(strings.Join(synonyms, ", "), world.End)
		p.Tell("\n")
	}
	p.Tell("<bright>Abbreviations:</>")
	p.Tell(strings.Join(loose, ", "), world.End)
	p.Tell("\n")
	p.Tell("You can get more info about all kinds of stuff by asking 'what is <topic>' (?topic).")
	p.Tell("You can get more info about the 'emote' verbs by asking 'what is soul' (?soul).")
	p.Tell("To see all possible verbs ask 'what is emotes' (?emotes).", world.End)
	if p.Hints.HasHints() {
		p.Tell("\n")
		p.Tell("<bright>Hints:</>")
		p.Tell("When you're stuck, you can use the 'hint' command to try to get a clue about what to do next.", world.End)
	}
	return Result{}, nil
}

func handleLook(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		p.Look(world.LookLong)
		return Result{}, nil
	}
	loc := p.Location()
	arg := r.Args[0]
	ex := loc.Exit(arg)
	if ex == nil {
		if full, ok := Abbreviations[arg]; ok {
			if ex = loc.Exit(full); ex != nil {
				p.Tell(ex.Core().ShortDescription, world.End)
				return Result{}, nil
			}
		}
		return Result{}, errs.Parse("Maybe you should examine that instead.")
	}
	short := ex.Core().ShortDescription
	p.Tell(short, world.End)
	if short != ex.Description() {
		p.Tell("Maybe you should examine it?", world.End)
	}
	return Result{}, nil
}

// dropIsAre removes a leading "is" or "are" as in "examine is the door".
func dropIsAre(args []string) []string {
	if len(args) > 1 && (args[0] == "is" || args[0] == "are") {
		return args[1:]
	}
	return args
}

func handleExamine(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	loc := p.Location()
	var living *world.Living
	var name string
	if len(r.WhoOrder) > 0 {
		if l := world.AsLiving(r.WhoOrder[0]); l != nil {
			living, name = l, l.Name
		}
	}
	if living == nil {
		args := dropIsAre(r.Args)
		if len(args) == 0 {
			return Result{}, errs.Parse("Examine what or who?")
		}
		name = args[0]
		living = loc.SearchLiving(name)
	}
	if living != nil {
		examineLiving(p, living, name)
		return Result{}, nil
	}
	item, container := p.LocateItem(name, true, true, true)
	if item != nil {
		aliasNote(p, name, item, "meant")
		switch {
		case p.Contains(item):
			p.Tell(fmt.Sprintf("You're carrying <item>%s</>.", lang.A(item.Title())), world.End)
		case container != nil && p.Contains(container):
			world.PrintLocation(p, item, container, true)
		default:
			p.Tell(fmt.Sprintf("You see <item>%s</>.", lang.A(item.Title())), world.End)
		}
		if d := item.Description(); d != "" {
			p.Tell(d, world.End)
		}
		if _, ok := item.(*world.Container); ok {
			if contents := holderContents(c.World, item); len(contents) > 0 {
				p.Tell(fmt.Sprintf("It contains: <item>%s</>.", lang.Join(titles(contents), "")), world.End)
			} else {
				p.Tell("It's empty.", world.End)
			}
		}
		return Result{}, nil
	}
	ex := loc.Exit(name)
	if ex == nil {
		if full, ok := Abbreviations[name]; ok {
			ex = loc.Exit(full)
		}
	}
	if ex != nil {
		p.Tell("It seems you can go there:", world.End)
		p.Tell("<exit>"+ex.Description()+"</>", world.End)
		return Result{}, nil
	}
	return Result{}, errs.Refused("%s isn't here.", name)
}

func examineLiving(p *world.Player, l *world.Living, name string) {
	if l.ID == p.ID {
		p.Tell(fmt.Sprintf("You are <living>%s</>. But you knew that already.", lang.Capital(l.Title())), world.End)
		p.TellOthers(fmt.Sprintf("{Title} is looking at %sself.", l.Objective()))
		return
	}
	aliasNote(p, name, l, "meant")
	p.Tell(fmt.Sprintf("This is <living>%s</>.", l.Title()), world.End)
	if d := l.Description(); d != "" {
		p.Tell(d, world.End)
	}
	race, err := races.Lookup(l.Race)
	if err != nil {
		return
	}
	if l.Race == races.Default {
		p.Tell(lang.Capital(fmt.Sprintf("%s speaks %s.", l.Subjective(), race.Language)), world.End)
		return
	}
	p.Tell(fmt.Sprintf("%s's a %s %s %s, and speaks %s.", lang.Capital(l.Subjective()),
		race.Size, race.BodyType, l.Race, race.Language), world.End)
}

func handleStats(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	target := &p.Living
	switch {
	case len(r.Args) == 0:
	case len(r.WhoOrder) == 1:
		target = world.AsLiving(r.WhoOrder[0])
		if target == nil {
			return Result{}, errs.Refused("That doesn't have stats.")
		}
	default:
		return Result{}, errs.Refused("Show stats from who?")
	}
	race, err := races.Lookup(target.Race)
	if err != nil {
		return Result{}, err
	}
	p.Tell(fmt.Sprintf("<living>%s</> (%s) - %s %s %s", target.Title(), target.Name, target.Gender.Name(), target.Race, target.Kind), world.End)
	p.Tell(fmt.Sprintf("%s %s, speaks %s, weighs ~%s kg.", lang.Capital(string(race.Size)), race.BodyType, race.Language,
		strconv.FormatFloat(race.Mass, 'f', -1, 64)), world.End)
	if target.Aggressive {
		p.Tell(fmt.Sprintf("%s seems to be aggressive.", lang.Capital(target.Subjective())), world.End)
	}
	var parts []string
	for _, name := range races.StatNames {
		parts = append(parts, fmt.Sprintf("%s<dim>:</>%d", name, target.Stats.Get(name)))
	}
	p.Tell(strings.Join(parts, ", "), world.End)
	return Result{}, nil
}

func handleWho(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 2 && r.Args[0] == "am" && r.Args[1] == "i" {
		return Retry("examine myself"), nil
	}
	if c.Driver.Mode() == story.ModeIF {
		return handleExamine(c, p, r)
	}
	if len(r.Args) == 0 {
		p.Tell("All players currently in the game:", world.End)
		for _, other := range c.World.Players() {
			where := "nowhere"
			if l := other.Location(); l != nil {
				where = l.Name
			}
			p.Tell(fmt.Sprintf("<player>%s</> (%s): currently in '<location>%s</>'.", lang.Capital(other.Name), other.Title(), where), world.End)
		}
		return Result{}, nil
	}
	args := dropIsAre(r.Args)
	name := strings.TrimRight(args[0], "?")
	found := false
	if other := c.Driver.SearchPlayer(name); other != nil {
		found = true
		tellPlaying(p, other)
	}
	if _, err := handleExamine(c, p, r); err != nil && !errs.IsUserFacing(err) {
		return Result{}, err
	}
	if !found {
		p.Tell("Right now, there's nobody here or playing with that name.", world.End)
	}
	return Result{}, nil
}

func handleWhat(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("What do you mean?")
	}
	args := r.Args
	if args[0] == "are" && len(args) > 2 {
		return Result{}, errs.Refused("Be more specific.")
	}
	args = dropIsAre(args)
	name := strings.TrimRight(args[0], "?")
	if name == "" {
		return Result{}, errs.Refused("What do you mean?")
	}
	switch name {
	case "that", "this", "they", "them", "it":
		return Result{}, errs.Refused("Be more specific.")
	}
	found := false
	if full, ok := Abbreviations[name]; ok {
		name = full
		p.Tell(fmt.Sprintf("It's an abbreviation for %s.", name), world.End)
	}
	if help, ok := currentVerbs(c, p)[name]; ok {
		found = true
		if help = strings.TrimSpace(help); help != "" {
			p.Tell(help, world.End)
		} else {
			p.Tell("It is a command that you can use to perform some action.", world.End)
		}
	}
	sl := soul.New()
	if _, ok := soul.VERBS[name]; ok {
		found = true
		if e, err := sl.Socialize(&soul.ParseResult{Verb: name, WhoOrder: []world.Object{p}}, &p.Living); err == nil {
			p.Tell(fmt.Sprintf("It is a soul emote you can do. <dim>%s: %s</>", name, e.PlayerMsg), world.End)
		}
		if soul.AGGRESSIVE_VERBS[name] {
			p.Tell("It might be regarded as offensive to certain people or beings.", world.End)
		}
	}
	if _, ok := soul.BODY_PARTS[name]; ok {
		found = true
		if e, err := sl.Socialize(&soul.ParseResult{Verb: "pat", WhoOrder: []world.Object{p}, Bodypart: name}, &p.Living); err == nil {
			p.Tell(fmt.Sprintf("It denotes a body part. <dim>pat myself %s -> %s</>", name, e.PlayerMsg), world.End)
		}
	}
	if _, ok := soul.ACTION_QUALIFIERS[name]; ok {
		found = true
		if e, err := sl.Socialize(&soul.ParseResult{Verb: "smile", Qualifier: name}, &p.Living); err == nil {
			p.Tell(fmt.Sprintf("It is a qualifier for something. <dim>%s smile -> %s</>", name, e.PlayerMsg), world.End)
		}
	}
	if lang.IsAdverb(name) {
		found = true
		p.Tell("That's an adverb you can use with the soul emote commands.", world.End)
		if e, err := sl.Socialize(&soul.ParseResult{Verb: "smile", Adverb: name}, &p.Living); err == nil {
			p.Tell(fmt.Sprintf("<dim>smile %s -> %s</>", name, e.PlayerMsg), world.End)
		}
	}
	if race, err := races.Lookup(name); err == nil && name != "" {
		found = true
		p.Tell(fmt.Sprintf("That's a race. They're %s, their body type is %s, and they usually speak %s.",
			race.Size, race.BodyType, race.Language), world.End)
	}
	loc := p.Location()
	if ex := loc.Exit(name); ex != nil {
		found = true
		p.Tell(fmt.Sprintf("It's a possible way to leave your current location: <exit>%s</>", ex.Core().ShortDescription), world.End)
	}
	if l := loc.SearchLiving(name); l != nil {
		found = true
		aliasNote(p, name, l, "meant")
		if l.ID == p.ID {
			p.Tell("That's you.", world.End)
		} else {
			tag, suffix := "living", ""
			if l.Kind == world.KindPlayer {
				tag, suffix = "player", " (player)"
			}
			p.Tell(fmt.Sprintf("<%[1]s>%[2]s</> is a %[3]s %[4]s%[5]s. %[6]s's here.", tag, lang.Capital(l.Title()),
				l.Gender.Name(), l.Race, suffix, lang.Capital(l.Subjective())), world.End)
		}
	}
	if item, _ := p.LocateItem(name, true, true, true); item != nil {
		found = true
		aliasNote(p, name, item, "meant")
		p.Tell("It's an item in your vicinity. You should perhaps try to examine it.", world.End)
	}
	if whatTopic(p, name) {
		found = true
	}
	if !found {
		p.Tell("Sorry, there is no information available about that.", world.End)
		if p.IsWizard() {
			p.Tell(fmt.Sprintf("Maybe you meant to type a wizard command like '!%s'?", name), world.End)
		}
	}
	return Result{}, nil
}

// whatTopic explains the general topics about the soul.
func whatTopic(p *world.Player, name string) bool {
	switch name {
	case "soul":
		p.Tell("Your soul provides a large amount of 'emotes' or 'verbs' that you can perform. "+
			"An emote is a command that you can do to perform something, or tell something. "+
			"They usually are just for socialization or fun and are not normally considered "+
			"to be a command to actually do something or interact with things.", world.End)
		p.Tell(fmt.Sprintf("Your soul knows %d emotes. See them all by asking about 'emotes'.", len(soul.VERBS)))
		p.Tell(fmt.Sprintf("Your soul knows %d adverbs. You can use them by their full name, or make "+
			"a selection by using prefixes (sa/sar/sarcas -> sarcastically).", len(lang.ADVERBS)), world.End)
		p.Tell("There are all sorts of emote possibilities, for instance:", world.End)
		for _, ex := range []string{
			"  fail sit zen  ->  You try to sit zen-likely, but fail miserably.",
			"  pat max on the back  ->  You pat Max on the back.",
			"  slap all  ->  You slap X, Y and Z in the face.",
			"  slap all and me  ->  You slap yourself, X, Y and Z in the face.",
		} {
			p.Tell(ex, world.End)
		}
		p.Tell("Often you can target a specific bodypart (try 'what is bodyparts' or ?bodyparts). "+
			"It's sometimes also possible to qualify your action to make it mean something else, such as fail ... or pretend... "+
			"(try 'what are qualifiers' or ?qualifiers).", world.End)
	case "emotes":
		p.Tell("All available soul verbs (emotes):", world.End)
		columns := p.ScreenWidth / 15
		if columns < 1 {
			columns = 1
		}
		verbs := soul.VerbNames()
		rows := make([]string, len(verbs)/columns+1)
		for i, v := range verbs {
			rows[i%len(rows)] += fmt.Sprintf("%-15s", v)
		}
		p.Tell(strings.Join(rows, "\n"), world.Unformatted)
	case "adverb", "adverbs":
		p.Tell("You can use adverbs such as 'happily', 'zen', 'aggressively' with soul emotes.")
		p.Tell(fmt.Sprintf("Your soul knows %d adverbs. You can use them by their full name, or make "+
			"a selection by using prefixes (sa/sar/sarcas -> sarcastically).", len(lang.ADVERBS)), world.End)
	case "bodypart", "bodyparts":
		parts := make([]string, 0, len(soul.BODY_PARTS))
		for bp := range soul.BODY_PARTS {
			parts = append(parts, bp)
		}
		sort.Strings(parts)
		p.Tell("You can sometimes use a specific body part with certain soul emotes. "+
			"For instance, 'hit max knee' -> You hit Max on the knee.")
		p.Tell("Recognised body parts: "+strings.Join(parts, ", "), world.End)
	case "qualifier", "qualifiers":
		quals := make([]string, 0, len(soul.ACTION_QUALIFIERS))
		for q := range soul.ACTION_QUALIFIERS {
			quals = append(quals, q)
		}
		sort.Strings(quals)
		p.Tell("You can use an action qualifier to change the meaning of a soul emote. "+
			"For instance, 'fail stand' -> You try to stand up, but fail miserably.")
		p.Tell("Recognised qualifiers: "+strings.Join(quals, ", "), world.End)
	default:
		return false
	}
	return true
}

func handleExits(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	loc := p.Location()
	names := loc.ExitNames()
	if p.IsWizard() {
		p.Tell("The following exits are defined for your current location:", world.End)
		for _, dir := range names {
			ex := world.AsExit(loc.Exit(dir))
			if ex == nil {
				continue
			}
			if t := ex.Target(); t != nil {
				p.Tell(fmt.Sprintf("Exit: <exit>%s</> <dim>-></> <location>%s</>", dir, t.Name), world.End)
			} else {
				p.Tell(fmt.Sprintf("Exit: <exit>%s</> <dim>-></> <location>%s</> (unbound)", dir, ex.TargetPath), world.End)
			}
		}
		return Result{}, nil
	}
	p.Tell("If you want to know about the possible exits from your location, look around the room. Usually the exits are easily visible.")
	switch {
	case len(names) == 1:
		p.Tell("Your current location seems to have a possible exit.", world.End)
	case len(names) > 1:
		p.Tell("Your current location seems to have some possible exits.", world.End)
	default:
		p.Tell("Your current location doesn't seem to have any obvious exits.", world.End)
	}
	return Result{}, nil
}

func handleTime(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if p.IsWizard() {
		p.Tell("The game time is: "+c.Clock().Display(), world.End)
		p.Tell("Real time is: "+time.Now().Format("2006-01-02 15:04:05"), world.End)
		return Result{}, nil
	}
	if c.Config().DisplayGametime {
		for _, o := range p.Inventory() {
			if clock, ok := o.(*world.GameClock); ok {
				p.Tell(fmt.Sprintf("You glance at your %s.", clock.Name))
				p.Tell(clock.Description(), world.End)
				return Result{}, nil
			}
		}
		return Result{}, errs.Refused("You don't have a watch, so you're unsure what %s it is.", r.Verb)
	}
	return Result{}, errs.Refused("You have no idea what %s it is.", r.Verb)
}

func handleBrief(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	switch {
	case r.Unparsed == "off" || (len(r.Args) > 0 && r.Args[0] == "off"):
		p.Brief = 0
		p.Tell("Verbose location descriptions restored.", world.End)
	case len(r.Args) == 0:
		p.Brief = 1
		p.Tell("Brief location descriptions enabled for known locations.", world.End)
	case r.Args[0] == "all":
		p.Brief = 2
		p.Tell("Brief location descriptions enabled for all locations.", world.End)
	case r.Args[0] == "reset":
		p.Brief = 0
		n := len(p.KnownLocations)
		p.KnownLocations = make(map[world.ID]bool)
		p.Tell(fmt.Sprintf("Verbose location descriptions have been restored, and you've forgotten about %d previously visited locations.", n), world.End)
	default:
		return Result{}, errs.Parse("That's not recognised by this command.")
	}
	return Result{}, nil
}

func handleMotd(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	st := c.Driver.Story()
	motd := st.Motd()
	if motd == "" {
		p.Tell("There's currently no message-of-the-day.", world.End)
		return Result{}, nil
	}
	mtime, err := st.VFS().Mtime(st.Config().MotdFile)
	if err != nil || mtime.IsZero() {
		p.Tell("<bright>Message-of-the-day:</>", world.End)
	} else {
		p.Tell(fmt.Sprintf("<bright>Message-of-the-day, last modified on %s:</>", mtime.Format("2006-01-02 15:04:05")), world.End)
	}
	p.Tell("\n")
	p.Tell(motd, world.End)
	return Result{}, nil
}

func handleLicense(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	cfg := c.Config()
	addr := ""
	if cfg.AuthorAddress != "" {
		addr = " (" + cfg.AuthorAddress + ")"
	}
	p.Tell(fmt.Sprintf("This game, '<bright>%s</>' v%s,", cfg.Name, cfg.Version))
	p.Tell(fmt.Sprintf("is written by <bright>%s%s</>,", cfg.Author, addr))
	p.Tell(fmt.Sprintf("and is using the Tale engine v%s.", story.EngineVersion), world.End)
	p.Tell("\n")
	p.Tell("<bright>Tale: mud driver, mudlib and interactive fiction framework.</>", world.End)
	p.Tell("This program comes with ABSOLUTELY NO WARRANTY. This is free software, "+
		"and you are welcome to redistribute it under the terms and conditions "+
		"of the GNU General Public License version 3.", world.End)
	return Result{}, nil
}

func enabledWord(v string) bool {
	switch strings.ToLower(v) {
	case "y", "yes", "true", "enable", "enabled", "on":
		return true
	}
	return false
}

func handleConfig(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) > 0 {
		if len(r.Args) != 1 {
			return Result{}, errs.Parse("Configure what? Usage is: config parameter=value")
		}
		param, value, _ := strings.Cut(r.Args[0], "=")
		if value == "" {
			return Result{}, errs.Parse("You must provide a value.")
		}
		switch param {
		case "delay":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 || n > 100 {
				return Result{}, errs.Refused("Invalid delay value, range is 0..100")
			}
			if err := c.Driver.SetOutputDelay(p, time.Duration(n)*time.Millisecond); err != nil {
				return Result{}, err
			}
		case "width":
			n, err := strconv.Atoi(value)
			if err != nil || n < 40 || n > 200 {
				return Result{}, errs.Refused("Invalid screen width, range is 40..200")
			}
			p.ScreenWidth = n
		case "styles":
			p.ScreenStyles = enabledWord(value)
		case "smartquotes":
			p.Smartquotes = enabledWord(value)
		default:
			return Result{}, errs.Refused("Invalid parameter name.")
		}
		p.Tell("Configuration modified.", world.End)
		p.Tell("\n")
	}
	p.Tell("Configuration:", world.End)
	p.Tell(fmt.Sprintf("  delay <dim>(output line delay) =</> %d", c.Driver.OutputDelay(p).Milliseconds()), world.Unformatted)
	p.Tell(fmt.Sprintf("  width <dim>(screen width) =</> %d", p.ScreenWidth), world.Unformatted)
	p.Tell(fmt.Sprintf("  styles <dim>(enable text styles) =</> %t", p.ScreenStyles), world.Unformatted)
	p.Tell(fmt.Sprintf("  smartquotes <dim>(use typographic quotes) =</> %t", p.Smartquotes), world.Unformatted)
	return Result{}, nil
}

func handleHint(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	where := ""
	if loc := p.Location(); loc != nil {
		where = loc.Path
	}
	if hint := p.Hints.Hint(where); hint != "" {
		p.Tell(hint, world.End)
	} else {
		p.Tell("You're on your own to decide what to do next...", world.End)
	}
	return Result{}, nil
}

func handleRecap(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	msgs := p.Hints.Recap()
	if len(msgs) == 0 {
		p.Tell("There's not much to say about the events thus far.", world.End)
		return Result{}, nil
	}
	for _, m := range msgs {
		p.Tell(m, world.End)
	}
	return Result{}, nil
}

func handleTestStyles(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	var lines []string
	for _, tag := range render.Tags() {
		if strings.HasPrefix(tag, "/") || tag == "monospaced" {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %-12s <%s>This is %s.</>", tag, tag, strings.ToUpper(tag)))
	}
	p.Tell("Text styles available:", world.End)
	p.Tell(strings.Join(lines, "\n"), world.Unformatted)
	if p.ScreenStyles {
		p.Tell("Styles are enabled.", world.End)
	} else {
		p.Tell("Styles are disabled; you see the text without them.", world.End)
	}
	return Result{}, nil
}
