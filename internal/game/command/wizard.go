package command

import (
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rodaine/table"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/story"
)

// WizardCommands returns the administration commands. None of them is
// passed on to the objects around the wizard.
func WizardCommands() []Command {
	cmds := []Command{
		{Name: "!ls", Handler: handleLs,
			Help: "List the objects whose path starts with the given prefix (try !ls town.)."},
		{Name: "!clone", Handler: handleClone,
			Help: "Clone an item or living directly from the room or inventory, or by its path."},
		{Name: "!destroy", Handler: handleDestroy,
			Help: "Destroys an object or creature."},
		{Name: "!clean", Handler: handleClean,
			Help: "Destroys all objects contained in something or someone's inventory, or the current location (.)"},
		{Name: "!wiretap", Handler: handleWiretap,
			Help: "Adds a wiretap to something to overhear the messages they receive. '!wiretap .' taps the room, '!wiretap name' taps a creature with that name, '!wiretap -clear' gets rid of all taps."},
		{Name: "!teleport", Aliases: []string{"!teleport_to"}, Handler: handleTeleport,
			Help: "Teleport to a location or creature, or teleport a creature to you. '!teleport[_to] zone.symbol' teleports [to] that object, '!teleport[_to] playername' teleports [to] that player, '!teleport_to @start' teleports you to the starting location for wizards."},
		{Name: "!return", Handler: handleReturn,
			Help: "Return a player to the location where they were before a teleport."},
		{Name: "!move", Handler: handleWizMove,
			Help: "Move something to another location (.), item or creature. This works around restrictions that prevent stuff from being moved around normally, for instance to pick up items that are fixed in place (!move item to playername)."},
		{Name: "!debug", Handler: handleDebug,
			Help: "Dumps the internal attribute values of a location (.), item or creature."},
		{Name: "!set", Handler: handleSet,
			Help: "Set an attribute of a location (.), object or creature to a new value. Usage is: !set name.field=value"},
		{Name: "!server", Handler: handleServer,
			Help: "Dump some server information."},
		{Name: "!events", Handler: handleEvents,
			Help: "Dump pending events."},
	}
	for i := range cmds {
		cmds[i].Wizard = true
		cmds[i].NoNotifyAction = true
		cmds[i].Category = CategoryWizard
	}
	return cmds
}

// renderTable lays out rows with the given headers as preformatted text.
func renderTable(headers []any, rows [][]any) string {
	var b strings.Builder
	t := table.New(headers...).WithWriter(&b)
	for _, r := range rows {
		t.AddRow(r...)
	}
	t.Print()
	return strings.TrimRight(b.String(), "\n")
}

func handleLs(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("ls what path?")
	}
	prefix := r.Args[0]
	if prefix == "." {
		prefix = ""
	}
	var rows [][]any
	for _, path := range c.World.Paths() {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		o := c.World.ByPath(path)
		rows = append(rows, []any{path, o.Core().Kind, o.Title()})
	}
	if len(rows) == 0 {
		return Result{}, errs.Refused("There's nothing at %s.", r.Args[0])
	}
	p.Tell("<"+r.Args[0]+">", world.End)
	p.Tell(renderTable([]any{"Path", "Kind", "Title"}, rows), world.Unformatted)
	return Result{}, nil
}

// byPathOrName resolves a zone.symbol path, falling back to the objects
// the parser found.
func byPathOrName(c *Ctx, r *soul.ParseResult) (world.Object, error) {
	if len(r.Args) > 0 && strings.Contains(r.Args[0], ".") {
		if o := c.World.ByPath(r.Args[0]); o != nil {
			return o, nil
		}
		return nil, errs.Refused("There's no object at %s.", r.Args[0])
	}
	if len(r.WhoOrder) > 0 {
		return r.WhoOrder[0], nil
	}
	return nil, errs.Refused("Object not found")
}

func handleClone(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Clone what?")
	}
	src, err := byPathOrName(c, r)
	if err != nil {
		return Result{}, err
	}
	dup, err := c.World.Clone(src)
	if err != nil {
		return Result{}, err
	}
	if l := world.AsLiving(dup); l != nil {
		if err := l.Move(p.Location(), &p.Living, true); err != nil {
			return Result{}, err
		}
		p.Tell(fmt.Sprintf("Cloned into: %s (spawned in current location)", dup.Core()), world.End)
		p.TellOthers(fmt.Sprintf("{Title} summons %s...", l.Title()))
		return Result{}, nil
	}
	if err := p.Insert(dup, &p.Living); err != nil {
		return Result{}, err
	}
	p.Tell(fmt.Sprintf("Cloned into: %s (placed in your inventory)", dup.Core()), world.End)
	p.TellOthers(fmt.Sprintf("{Title} conjures up %s, and quickly pockets it.", lang.A(dup.Title())))
	return Result{}, nil
}

func handleDestroy(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Destroy what or who?")
	}
	if len(r.Unrecognized) > 0 {
		return Result{}, errs.Parse("It's not clear what you mean by: %s", strings.Join(r.Unrecognized, ","))
	}
	return destroyEach(c, p, r.WhoOrder), nil
}

// destroyEach asks about each victim in turn.
func destroyEach(c *Ctx, p *world.Player, victims []world.Object) Result {
	if len(victims) == 0 {
		return Result{}
	}
	victim, rest := victims[0], victims[1:]
	return Confirm(fmt.Sprintf("Are you sure you want to destroy %s?", victim.Title()), func(yes bool) (Result, error) {
		if yes {
			if world.AsPlayer(victim) != nil {
				return Result{}, errs.Refused("You can't destroy a player.")
			}
			desc := victim.Core().String()
			title := lang.Capital(victim.Title())
			if err := c.World.Destroy(c.Context, victim); err != nil {
				return Result{}, err
			}
			p.Tell(fmt.Sprintf("You destroyed %s.", desc), world.End)
			p.TellOthers("{Title} makes some gestures and a tiny black hole appears. " +
				title + " disappears in it, and the black hole immediately vanishes.")
		}
		return destroyEach(c, p, rest), nil
	})
}

func handleClean(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) > 0 && r.Args[0] == "." {
		loc := p.Location()
		p.Tell("Cleaning the stuff in your environment.", world.End)
		p.TellOthers("{Title} cleans out the environment.")
		for _, it := range loc.Items() {
			if err := c.World.Destroy(c.Context, it); err != nil {
				return Result{}, err
			}
		}
		for _, o := range loc.Livings() {
			if world.AsPlayer(o) != nil {
				continue
			}
			if err := c.World.Destroy(c.Context, o); err != nil {
				return Result{}, err
			}
		}
		if len(loc.Items()) > 0 {
			p.Tell("Some items refused to be destroyed!", world.End)
		}
		return Result{}, nil
	}
	if len(r.WhoOrder) != 1 {
		return Result{}, errs.Parse("Clean what or who?")
	}
	victim := r.WhoOrder[0]
	return Confirm(fmt.Sprintf("Are you sure you want to clean out %s?", victim.Title()), func(yes bool) (Result, error) {
		if !yes {
			return Result{}, nil
		}
		p.Tell(fmt.Sprintf("Cleaning inventory of %s.", victim.Title()), world.End)
		p.TellOthers(fmt.Sprintf("{Title} cleans out the inventory of %s.", victim.Title()))
		for _, it := range holderContents(c.World, victim) {
			desc := it.Core().String()
			if err := c.World.Destroy(c.Context, it); err != nil {
				return Result{}, err
			}
			p.Tell("destroyed "+desc, world.End)
		}
		if len(holderContents(c.World, victim)) > 0 {
			p.Tell("Some items refused to be destroyed!", world.End)
		}
		return Result{}, nil
	}), nil
}

func handleWiretap(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Refused("Wiretap who?")
	}
	switch arg := r.Args[0]; {
	case arg == ".":
		loc := p.Location()
		if err := p.CreateWiretap(loc); err != nil {
			return Result{}, err
		}
		p.Tell(fmt.Sprintf("Wiretapped room '<location>%s</>'.", loc.Name), world.End)
	case arg == "-clear":
		p.ClearWiretaps()
		p.Tell("All wiretaps removed.", world.End)
	case len(r.WhoOrder) > 0:
		for _, o := range r.WhoOrder {
			if o.Core().ID == p.ID {
				return Result{}, errs.Refused("Can't wiretap yourself.")
			}
			if world.AsItem(o) != nil {
				return Result{}, errs.Refused("Can't wiretap an item, try a living being or a location instead.")
			}
			if err := p.CreateWiretap(o); err != nil {
				return Result{}, err
			}
			p.Tell(fmt.Sprintf("Wiretapped <living>%s</>.", o.Core().Name), world.End)
		}
	default:
		return Result{}, errs.Refused("Wiretap who?")
	}
	return Result{}, nil
}

func handleTeleport(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Refused("Teleport what to where?")
	}
	self := r.Verb == "!teleport_to"
	arg := r.Args[0]
	if arg == "@start" {
		loc := world.AsLocation(c.World.ByPath(c.Config().StartlocationWizard))
		if loc == nil {
			return Result{}, errs.Refused("Can't determine location to teleport to.")
		}
		return Result{}, teleportTo(p, loc)
	}
	var target world.Object
	if strings.Contains(arg, ".") {
		if target = c.World.ByPath(arg); target == nil {
			return Result{}, errs.Refused("Object not found")
		}
	} else if other := c.Driver.SearchPlayer(arg); other != nil {
		target = other
	} else {
		return Result{}, errs.Refused("%s isn't here.", arg)
	}
	if self {
		loc := world.AsLocation(target)
		if l := world.AsLiving(target); l != nil {
			loc = l.Location()
		}
		if loc == nil {
			return Result{}, errs.Refused("Can't determine location to teleport to.")
		}
		return Result{}, teleportTo(p, loc)
	}
	who := world.AsLiving(target)
	if who == nil {
		if world.AsLocation(target) != nil {
			return Result{}, errs.Refused("Can't teleport a room here, maybe you wanted to teleport TO somewhere?")
		}
		return Result{}, errs.Refused("You can only teleport living beings.")
	}
	return Result{}, teleportToPlayer(c, who, p)
}

func teleportTo(p *world.Player, loc *world.Location) error {
	p.TellOthers("{Title} makes some gestures and a portal suddenly opens.")
	p.TellOthers(fmt.Sprintf("%s jumps into the portal, which quickly closes behind %s.", lang.Capital(p.Subjective()), p.Objective()))
	if from := p.Location(); from != nil {
		p.TeleportedFrom = from.ID
	}
	if err := p.Move(loc, &p.Living, true); err != nil {
		return err
	}
	p.Tell("You've been teleported.", world.End)
	p.Look(world.LookAuto)
	loc.Tell("Suddenly, a shimmering portal opens!", &p.Living, nil, "")
	loc.Tell(fmt.Sprintf("%s jumps out, and the portal quickly closes behind %s.", lang.Capital(p.Title()), p.Objective()), &p.Living, nil, "")
	return nil
}

func teleportToPlayer(c *Ctx, who *world.Living, p *world.Player) error {
	from := who.Location()
	from.Tell("Suddenly, a shimmering portal opens!", nil, nil, "")
	from.Tell(fmt.Sprintf("%s is sucked into it, and the portal quickly closes behind %s.", lang.Capital(who.Title()), who.Objective()),
		nil, []*world.Living{who}, "You are sucked into it!")
	if wp := world.AsPlayer(c.World.Get(who.ID)); wp != nil {
		wp.TeleportedFrom = from.ID
	}
	loc := p.Location()
	if err := who.Move(loc, &p.Living, true); err != nil {
		return err
	}
	loc.Tell(fmt.Sprintf("%s makes some gestures and a portal suddenly opens.", lang.Capital(p.Title())), who, nil, "")
	loc.Tell(fmt.Sprintf("%s tumbles out of it, and the portal quickly closes again.", lang.Capital(who.Title())), who, nil, "")
	return nil
}

func handleReturn(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	who := p
	switch len(r.WhoOrder) {
	case 0:
	case 1:
		if who = world.AsPlayer(r.WhoOrder[0]); who == nil {
			return Result{}, errs.Refused("Can't determine <living>%s</>'s previous location.", r.WhoOrder[0].Core().Name)
		}
	default:
		return Result{}, errs.Refused("You can only return one person at a time.")
	}
	prev := c.World.Location(who.TeleportedFrom)
	if who.TeleportedFrom == 0 || prev == nil {
		p.Tell(fmt.Sprintf("Can't determine <player>%s</>'s previous location.", who.Name), world.End)
		return Result{}, nil
	}
	p.Tell(fmt.Sprintf("Returning <player>%s</> to <location>%s</>", who.Name, prev.Name), world.End)
	from := who.Location()
	from.Tell("Suddenly, a shimmering portal opens!", nil, nil, "")
	from.Tell(fmt.Sprintf("%s is sucked into it, and the portal quickly closes behind %s.", lang.Capital(who.Title()), who.Objective()),
		nil, []*world.Living{&who.Living}, "You are sucked into it!")
	who.TeleportedFrom = 0
	if err := who.Move(prev, &p.Living, true); err != nil {
		return Result{}, err
	}
	who.TellOthers("Suddenly, a shimmering portal opens!")
	who.TellOthers("{Title} tumbles out of it, and the portal quickly closes again.")
	return Result{}, nil
}

func handleWizMove(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) != 2 || len(r.WhoOrder) < 1 {
		return Result{}, errs.Refused("Move what where?")
	}
	thing := r.WhoOrder[0]
	if world.AsLiving(thing) != nil {
		return Result{}, errs.Refused("* use '!teleport' instead to move livings around.")
	}
	it := world.AsItem(thing)
	if it == nil {
		return Result{}, errs.Refused("You can only move items around.")
	}
	var target world.Object
	switch {
	case r.Args[1] == "." && len(r.WhoOrder) == 1:
		target = p.Location()
	case len(r.WhoOrder) == 2:
		target = r.WhoOrder[1]
	default:
		return Result{}, errs.Parse("It's not clear what you want to move where.")
	}
	if thing.Core().ID == target.Core().ID {
		return Result{}, errs.Refused("You can't move things inside themselves.")
	}
	var from world.Object
	switch {
	case p.Contains(thing):
		from = p
	case p.Location().Contains(thing):
		from = p.Location()
	default:
		return Result{}, errs.Parse("There seems to be no <item>%s</> here.", thing.Core().Name)
	}
	holder, ok := target.(world.Holder)
	if !ok {
		return Result{}, errs.Refused("You can't move things into %s.", target.Title())
	}
	if err := it.Move(holder, &p.Living, "move"); err != nil {
		return Result{}, err
	}
	p.Tell(fmt.Sprintf("Moved <item>%s</> from %s to %s.", thing.Core().Name, from.Core().Name, target.Core().Name), world.End)
	p.TellOthers(fmt.Sprintf("{Title} moved %s into %s.", thing.Title(), target.Title()))
	return Result{}, nil
}

func handleDebug(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Debug what?")
	}
	var obj world.Object
	switch {
	case r.Args[0] == ".":
		obj = p.Location()
	case len(r.WhoOrder) > 0:
		obj = r.WhoOrder[0]
	default:
		if obj = c.World.ByPath(r.Args[0]); obj == nil {
			return Result{}, errs.Refused("Can't find %s.", r.Args[0])
		}
	}
	dump, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return Result{}, fmt.Errorf("dumping %s: %w", obj.Core(), err)
	}
	lines := []string{"<bright>" + obj.Core().String() + "</>", fmt.Sprintf("Type: %T", obj), string(dump)}
	for _, id := range c.Driver.Heartbeats() {
		if id == obj.Core().ID {
			lines = append(lines, obj.Core().Name+" receives heartbeats.")
			break
		}
	}
	p.Tell(strings.Join(lines, "\n"), world.Unformatted)
	return Result{}, nil
}

// settable lists the attributes !set can change, per kind of object.
var settable = map[string]func(o world.Object, value string) error{
	"title": func(o world.Object, v string) error { o.Core().SetTitle(v); return nil },
	"description": func(o world.Object, v string) error {
		o.Core().SetDescription(v)
		return nil
	},
	"short_description": func(o world.Object, v string) error { o.Core().ShortDescription = v; return nil },
	"aggressive": func(o world.Object, v string) error {
		l := world.AsLiving(o)
		if l == nil {
			return errs.Refused("Only livings can be aggressive.")
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errs.Refused("Data type mismatch, expected a boolean.")
		}
		l.Aggressive = b
		return nil
	},
	"money": func(o world.Object, v string) error {
		l := world.AsLiving(o)
		if l == nil {
			return errs.Refused("Only livings carry money.")
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errs.Refused("Data type mismatch, expected a number.")
		}
		l.Money = f
		return nil
	},
	"opened": func(o world.Object, v string) error { return setDoor(o, v, func(d *world.Door, b bool) { d.Opened = b }) },
	"locked": func(o world.Object, v string) error { return setDoor(o, v, func(d *world.Door, b bool) { d.Locked = b }) },
}

func setDoor(o world.Object, v string, set func(*world.Door, bool)) error {
	d, ok := o.(*world.Door)
	if !ok {
		return errs.Refused("That is not a door.")
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return errs.Refused("Data type mismatch, expected a boolean.")
	}
	set(d, b)
	if d.Opened && d.Locked {
		set(d, !b)
		return errs.Refused("A door can't be open and locked at the same time.")
	}
	return nil
}

func handleSet(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	usage := errs.Parse("Set what? (usage: !set name.field=value)")
	if len(r.Args) == 0 {
		return Result{}, usage
	}
	lhs, value, ok := strings.Cut(strings.TrimSpace(r.Unparsed), "=")
	if !ok {
		return Result{}, usage
	}
	dot := strings.LastIndex(lhs, ".")
	if dot < 0 {
		return Result{}, usage
	}
	name, field := strings.TrimSpace(lhs[:dot]), strings.TrimSpace(lhs[dot+1:])
	var obj world.Object
	switch {
	case name == "":
		obj = p.Location()
	case strings.Contains(name, "."):
		obj = c.World.ByPath(name)
	default:
		obj = p.SearchItem(name, true, true, false)
		if obj == nil {
			if l := p.Location().SearchLiving(name); l != nil {
				obj = c.World.Get(l.ID)
			}
		}
	}
	if obj == nil {
		return Result{}, errs.Refused("Can't find %s.", name)
	}
	set, ok := settable[field]
	if !ok {
		fields := make([]string, 0, len(settable))
		for f := range settable {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		return Result{}, errs.Refused("Can't set %s; try one of %s.", field, lang.Join(fields, "or"))
	}
	p.Tell(obj.Core().String(), world.End)
	if err := set(obj, strings.TrimSpace(value)); err != nil {
		return Result{}, err
	}
	p.Tell(fmt.Sprintf("Field set: %s.%s = %q", name, field, strings.TrimSpace(value)), world.End)
	return Result{}, nil
}

func handleServer(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	info := c.Driver.Info()
	cfg := c.Config()
	now := time.Now().Truncate(time.Second)
	uptime := now.Sub(info.Started).Truncate(time.Second)
	clock := c.Clock()
	gameTime := clock.Display()
	if info.TickMethod == story.TickTimer {
		gameTime += fmt.Sprintf("   (%gx real time)", clock.TimesRealtime())
	}
	rows := [][]any{
		{"Go version", fmt.Sprintf("%s on %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH)},
		{"Engine", story.EngineVersion},
		{"Game", cfg.Name + " " + cfg.Version},
		{"Real time", now.Format("2006-01-02 15:04:05")},
		{"Uptime", uptime.String()},
		{"Game time", gameTime},
		{"Goroutines", info.Goroutines},
		{"Mode", info.Mode},
		{"Players", info.Players},
		{"Heartbeats", info.Heartbeats},
		{"Deferreds", info.Deferreds},
	}
	switch info.TickMethod {
	case story.TickTimer:
		rows = append(rows, []any{"Server loop", fmt.Sprintf("tick %s, loop duration %s", info.TickTime, info.LoopDuration)})
	case story.TickCommand:
		rows = append(rows, []any{"Server loop", fmt.Sprintf("tick %s (command driven)", info.TickTime)})
	}
	p.Tell("<bright>Server information:</>", world.End)
	p.Tell(renderTable([]any{"What", "Value"}, rows), world.Unformatted)
	return Result{}, nil
}

func handleEvents(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	info := c.Driver.Info()
	hbs := c.Driver.Heartbeats()
	p.Tell(fmt.Sprintf("<bright>Pending events overview.</> Server tick is %s.", info.TickTime), world.End)
	p.Tell(fmt.Sprintf("Heartbeat objects (%d):", len(hbs)), world.End)
	var hbLines []string
	for _, id := range hbs {
		if o := c.World.Get(id); o != nil {
			hbLines = append(hbLines, "  "+o.Core().String())
		}
	}
	if len(hbLines) > 0 {
		p.Tell(strings.Join(hbLines, "\n"), world.Unformatted)
	}
	defs := c.Driver.Deferreds()
	p.Tell(fmt.Sprintf("Deferreds (%d):", len(defs)), world.End)
	if len(defs) == 0 {
		return Result{}, nil
	}
	now := c.Clock().Now()
	rows := make([][]any, 0, len(defs))
	for _, d := range defs {
		rows = append(rows, []any{d.Due.Sub(now).Truncate(time.Second), d.Action, d.Owner})
	}
	p.Tell(renderTable([]any{"Due", "Action", "Owner"}, rows), world.Unformatted)
	return Result{}, nil
}
