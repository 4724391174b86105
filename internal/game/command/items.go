package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
)

func itemCommands() []Command {
	return []Command{
		{Name: "take", Aliases: []string{"get", "steal", "rob"}, Category: CategoryItems, Handler: handleTake,
			Help: "Take something (or all things) from something or someone else. Keep in mind that stealing and robbing is frowned upon, to say the least."},
		{Name: "drop", Category: CategoryItems, Handler: handleDrop,
			Help: "Drop an item (or all items) you are carrying."},
		{Name: "put", Aliases: []string{"place"}, Category: CategoryItems, Handler: handlePut,
			Help: "Put an item (or all items) into something else. If you're not carrying the item, you will first pick it up."},
		{Name: "empty", Category: CategoryItems, Handler: handleEmpty,
			Help: "Remove the contents from an object."},
		{Name: "loot", Aliases: []string{"pilfer", "sack"}, Category: CategoryItems, Handler: handleLoot,
			Help: "Take all things from something or someone else."},
		{Name: "give", Category: CategoryItems, Handler: handleGive,
			Help: "Give something (or all things) you are carrying to someone else."},
		{Name: "throw", Category: CategoryItems, Handler: handleThrow,
			Help: "Throw something you are carrying at someone or something. If you don't have it yet, you will first pick it up."},
		{Name: "show", Category: CategoryItems, Handler: handleShow,
			Help: "Shows something to someone else."},
		{Name: "combine", Aliases: []string{"attach", "apply", "install"}, Category: CategoryItems, Handler: handleCombine,
			Help: "Combine two items you are carrying."},
		{Name: "use", Category: CategoryItems, Handler: handleUse,
			Help: "General object use. Most of the time, you'll need to be more specific to say exactly what you want to do with it."},
		{Name: "open", Aliases: []string{"close", "lock", "unlock"}, Category: CategoryItems, Handler: handleOpen,
			Help: "Do something with a door, exit or item, possibly by using something. Example: open door, unlock chest with key"},
		{Name: "activate", Category: CategoryItems, Handler: handleActivate,
			Help: "Activate something, turn it on, or switch it on."},
		{Name: "deactivate", Category: CategoryItems, Handler: handleDeactivate,
			Help: "Deactivate something, turn it off, or switch it off."},
		{Name: "switch", Category: CategoryItems, Handler: handleSwitch,
			Help: "Switch something on or off."},
		{Name: "turn", Category: CategoryItems, Handler: handleTurn,
			Help: "Turn something (rotate it), or turn something on or off."},
		{Name: "manipulate", Aliases: []string{"move", "shove", "swivel", "shift", "manip", "rotate", "press", "poke", "push"},
			Category: CategoryItems, Handler: handleManipulate, OverridesSoul: true,
			Help: "Manipulate something."},
		{Name: "read", Category: CategoryItems, Handler: handleRead,
			Help: "Read something."},
	}
}

// moveItems moves each item into target. Refusals are collected; any
// other error aborts.
func moveItems(p *world.Player, items []world.Object, target world.Holder, verb string) (moved []world.Object, refusals []error, err error) {
	for _, o := range items {
		it := world.AsItem(o)
		if it == nil {
			refusals = append(refusals, errs.Refused("You can't %s %s.", verb, o.Title()))
			continue
		}
		if err := it.Move(target, &p.Living, verb); err != nil {
			if !errs.IsUserFacing(err) {
				return moved, refusals, err
			}
			refusals = append(refusals, err)
			continue
		}
		moved = append(moved, o)
	}
	return moved, refusals, nil
}

// settleRefusals returns the refusal itself when it is the only thing
// that happened; otherwise it tells each refusal to the player.
func settleRefusals(p *world.Player, moved []world.Object, refusals []error) error {
	if len(moved) == 0 && len(refusals) == 1 {
		return refusals[0]
	}
	for _, r := range refusals {
		msg, _ := errs.UserMessage(r)
		p.Tell(msg, world.End)
	}
	return nil
}

func titles(objs []world.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Title()
	}
	return out
}

// holderContents returns what a holder contains, or nil for non-holders.
func holderContents(w *world.World, o world.Object) []world.Object {
	h, ok := o.(world.Holder)
	if !ok {
		return nil
	}
	var out []world.Object
	for _, id := range h.Contents() {
		if x := w.Get(id); x != nil {
			out = append(out, x)
		}
	}
	return out
}

func whoPrevious(r *soul.ParseResult, o world.Object) string {
	info, _ := r.Who(o)
	return info.PreviousWord
}

func handleTake(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Take what?")
	}
	loc := p.Location()
	whatNames := r.Args
	var where world.Object
	if len(r.Args) > 1 && len(r.WhoOrder) > 0 {
		last := r.WhoOrder[len(r.WhoOrder)-1]
		if whoPrevious(r, last) == "from" {
			whatNames = r.Args[:len(r.Args)-1]
			where = last
		}
	}
	if where != nil && where.Core().ID == p.ID {
		return Result{}, errs.Refused("There's no reason to take things from yourself.")
	}
	if l := world.AsLiving(where); l != nil {
		p.TellOthers("{Title} tries to steal things from " + l.Title() + ".")
		if l.Aggressive {
			l.StartAttack(&p.Living)
		}
		return Result{}, errs.Refused("You can't just steal stuff from <living>%s</>!", l.Title())
	}
	if r.Verb == "steal" || r.Verb == "rob" {
		if where == nil {
			return Result{}, errs.Refused("Steal what from whom?")
		}
		return Result{}, errs.Refused("You can't steal stuff from an object. Try taking it instead.")
	}

	if len(whatNames) == 1 && whatNames[0] == "all" {
		if where != nil {
			if !p.Contains(where) && !loc.Contains(where) {
				return Result{}, errs.Refused("Take what?")
			}
			items := holderContents(c.World, where)
			if len(items) == 0 {
				return Result{}, errs.Refused("There's nothing in there.")
			}
			return Result{}, takeStuff(p, items, where.Title())
		}
		if len(loc.Items()) == 0 {
			return Result{}, errs.Refused("There's nothing here to take.")
		}
		return Result{}, takeStuff(p, loc.Items(), "")
	}

	if where != nil {
		if !p.Contains(where) && !loc.Contains(where) {
			return Result{}, errs.Refused("You can't take anything from that.")
		}
		byName := make(map[string]world.Object)
		for _, o := range holderContents(c.World, where) {
			byName[o.Core().Name] = o
		}
		var items []world.Object
		for _, name := range whatNames {
			if o, ok := byName[name]; ok {
				items = append(items, o)
			} else {
				p.Tell(fmt.Sprintf("There's no %s in there.", name), world.End)
			}
		}
		return Result{}, takeStuff(p, items, where.Title())
	}

	if len(r.Unrecognized) > 0 {
		p.Tell(fmt.Sprintf("You don't see %s.", lang.Join(r.Unrecognized, "")), world.End)
	}
	for _, o := range r.WhoOrder {
		if l := world.AsLiving(o); l != nil && l.ID != p.ID && loc.Contains(o) {
			tryPickUpLiving(p, l)
		}
	}
	if len(loc.Items()) == 0 {
		return Result{}, errs.Refused("There's nothing here to take.")
	}
	var items []world.Object
	for _, o := range r.WhoOrder {
		switch {
		case world.AsItem(o) != nil && loc.Contains(o):
			items = append(items, o)
		case world.AsExit(o) != nil:
			return Result{}, errs.Refused("You can't pick that up.")
		case world.AsLiving(o) != nil:
		case p.Contains(o):
			p.Tell("You've already got it.", world.End)
		default:
			p.Tell(fmt.Sprintf("There's no <item>%s</> here.", o.Core().Name), world.End)
		}
	}
	return Result{}, takeStuff(p, items, "")
}

func takeStuff(p *world.Player, items []world.Object, whereTitle string) error {
	if len(items) == 0 {
		return nil
	}
	moved, refusals, err := moveItems(p, items, p, "take")
	if err != nil {
		return err
	}
	if err := settleRefusals(p, moved, refusals); err != nil {
		return err
	}
	if len(moved) == 0 {
		return nil
	}
	names := lang.Join(titles(moved), "")
	if whereTitle != "" {
		p.Tell(fmt.Sprintf("You take <item>%s</> from the <item>%s</>.", names, whereTitle), world.End)
		p.TellOthers(fmt.Sprintf("<player>{Title}</> takes <item>%s</> from the <item>%s</>.", names, whereTitle))
		return nil
	}
	p.Tell(fmt.Sprintf("You take <item>%s</>.", names), world.End)
	p.TellOthers(fmt.Sprintf("<player>{Title}</> takes <item>%s</>.", names))
	return nil
}

func tryPickUpLiving(p *world.Player, l *world.Living) {
	lr, _ := races.Lookup(l.Race)
	pr, _ := races.Lookup(p.Race)
	if pr.Size.Rank()-lr.Size.Rank() >= 2 {
		p.Tell(fmt.Sprintf("Even though %s's small enough, you can't carry %s with you.", l.Subjective(), l.Objective()), world.End)
		if l.Aggressive {
			p.Tell(fmt.Sprintf("Trying to pick %[1]s up wasn't a very good idea, you've made %[1]s angry!", l.Objective()), world.End)
			l.StartAttack(&p.Living)
		}
		return
	}
	p.Tell(fmt.Sprintf("You can't carry %s with you, %s's too large.", l.Objective(), l.Subjective()), world.End)
}

func handleLoot(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) != 1 || len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Loot what?")
	}
	if len(r.WhoOrder) > 1 {
		return Result{}, errs.Parse("Please be more specific, you can only loot from one thing at a time.")
	}
	return Retry("take all from " + r.WhoOrder[0].Core().Name), nil
}

func handleDrop(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) == 0 {
		return Result{}, errs.Parse("Drop what?")
	}
	if r.Args[0] == "all" {
		if p.InventorySize() == 0 {
			return Result{}, errs.Refused("You're not carrying anything.")
		}
		return Confirm("Are you sure you want to drop all you are carrying?", func(yes bool) (Result, error) {
			if !yes {
				return Result{}, nil
			}
			return Result{}, dropStuff(p, p.Inventory(), p)
		}), nil
	}
	if len(r.WhoOrder) > 0 {
		item := r.WhoOrder[0]
		if !p.Contains(item) {
			return Result{}, errs.Refused("You can't drop that.")
		}
		return Result{}, dropStuff(p, []world.Object{item}, p)
	}
	item, container := p.LocateItem(r.Args[0], true, false, true)
	if item == nil {
		return Result{}, errs.Refused("You don't have <item>%s</>.", lang.A(r.Args[0]))
	}
	if container.Core().ID != p.ID {
		world.PrintLocation(p, item, container, true)
	}
	return Result{}, dropStuff(p, []world.Object{item}, container)
}

func dropStuff(p *world.Player, items []world.Object, container world.Object) error {
	moved, refusals, err := moveItems(p, items, p.Location(), "drop")
	if err != nil {
		return err
	}
	if container.Core().ID != p.ID {
		for _, it := range moved {
			printItemRemoval(p, it, container)
		}
	}
	if err := settleRefusals(p, moved, refusals); err != nil {
		return err
	}
	if len(moved) == 0 {
		p.Tell("You didn't drop anything.", world.End)
		return nil
	}
	names := lang.Join(titles(moved), "")
	p.Tell(fmt.Sprintf("You drop <item>%s</>.", names), world.End)
	p.TellOthers(fmt.Sprintf("{Title} drops %s.", names))
	return nil
}

func printItemRemoval(p *world.Player, item, container world.Object) {
	p.Tell(fmt.Sprintf("<dim>(You take the %s from the %s).</>", item.Core().Name, container.Core().Name), world.End)
	p.TellOthers(fmt.Sprintf("{Title} takes the %s from the %s.", item.Core().Name, container.Core().Name))
}

func handleEmpty(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) != 1 || len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Empty what?")
	}
	if len(r.WhoOrder) > 1 {
		return Result{}, errs.Parse("Please be more specific, only empty one thing at a time.")
	}
	container, ok := r.WhoOrder[0].(*world.Container)
	if !ok {
		return Result{}, errs.Refused("You can't take anything from <item>%s</>.", r.WhoOrder[0].Title())
	}
	loc := p.Location()
	var target world.Holder
	action := ""
	switch {
	case loc.Contains(container):
		target, action = loc, "dropped"
	case p.Contains(container):
		target, action = p, "took"
	default:
		return Result{}, errs.Parse("You can't seem to empty that.")
	}
	moved, refusals, err := moveItems(p, holderContents(c.World, container), target, "move")
	if err != nil {
		return Result{}, err
	}
	for _, r := range refusals {
		msg, _ := errs.UserMessage(r)
		p.Tell(msg, world.End)
	}
	if len(moved) == 0 {
		p.Tell(fmt.Sprintf("You %s nothing.", action), world.End)
		return Result{}, nil
	}
	names := lang.Join(titles(moved), "")
	p.Tell(fmt.Sprintf("You %s: <item>%s</>.", action, names), world.End)
	p.TellOthers(fmt.Sprintf("{Title} %s: %s.", action, names))
	return Result{}, nil
}

func handlePut(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) < 2 || len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Put what where?")
	}
	where := r.WhoOrder[len(r.WhoOrder)-1]
	if r.Args[0] == "all" {
		if p.InventorySize() == 0 {
			return Result{}, errs.Refused("You're not carrying anything.")
		}
		if len(r.Args) != 2 {
			return Result{}, errs.Parse("Put what where?")
		}
		what := p.Inventory()
		return Confirm("Are you sure you want to put everything away?", func(yes bool) (Result, error) {
			if !yes {
				return Result{}, nil
			}
			return Result{}, putStuff(p, what, where, whoPrevious(r, where))
		}), nil
	}
	if len(r.Unrecognized) > 0 {
		return Result{}, errs.Refused("You don't see %s.", lang.Join(r.Unrecognized, ""))
	}
	if len(r.WhoOrder) < 2 {
		return Result{}, errs.Parse("Put what where?")
	}
	return Result{}, putStuff(p, r.WhoOrder[:len(r.WhoOrder)-1], where, whoPrevious(r, where))
}

func putStuff(p *world.Player, what []world.Object, where world.Object, wordBefore string) error {
	if l := world.AsLiving(where); l != nil {
		return errs.Refused("You can't put stuff in <living>%s</>, try giving it to %s?", l.Name, l.Objective())
	}
	if wordBefore == "" {
		wordBefore = "in"
	}
	if wordBefore != "in" && wordBefore != "into" {
		return errs.Refused("You can't do that.")
	}
	holder, ok := where.(world.Holder)
	if !ok {
		return errs.Refused("You can't put anything in %s.", where.Title())
	}
	loc := p.Location()
	var fromInventory []world.Object
	var refusals []error
	for _, o := range what {
		if o.Core().ID == where.Core().ID {
			p.Tell(fmt.Sprintf("You can't put <item>%s</> %s itself.", o.Title(), wordBefore), world.End)
			continue
		}
		it := world.AsItem(o)
		switch {
		case it == nil:
			refusals = append(refusals, errs.Refused("You can't put %s anywhere.", o.Title()))
		case p.Contains(o):
			if err := it.Move(holder, &p.Living, "put"); err != nil {
				if !errs.IsUserFacing(err) {
					return err
				}
				refusals = append(refusals, err)
				continue
			}
			fromInventory = append(fromInventory, o)
		case loc.Contains(o):
			if err := it.Move(p, &p.Living, "take"); err != nil {
				if !errs.IsUserFacing(err) {
					return err
				}
				refusals = append(refusals, err)
				continue
			}
			p.Tell(fmt.Sprintf("You take %s.", o.Title()), world.End)
			p.TellOthers(fmt.Sprintf("{Title} takes %s.", o.Title()))
			if err := it.Move(holder, &p.Living, "put"); err != nil {
				if !errs.IsUserFacing(err) {
					return err
				}
				refusals = append(refusals, err)
				continue
			}
			p.Tell(fmt.Sprintf("You put it in the <item>%s</>.", where.Core().Name), world.End)
			p.TellOthers(fmt.Sprintf("{Title} puts it in the %s.", where.Core().Name))
		}
	}
	if len(fromInventory) == 0 && len(refusals) == 1 && len(what) == 1 {
		return refusals[0]
	}
	for _, r := range refusals {
		msg, _ := errs.UserMessage(r)
		p.Tell(msg, world.End)
	}
	if len(fromInventory) > 0 {
		names := lang.Join(titles(fromInventory), "")
		p.TellOthers(fmt.Sprintf("{Title} puts %s in the %s.", names, where.Core().Name))
		p.Tell(fmt.Sprintf("You put <item>%s</> in the <item>%s</>.", names, where.Core().Name), world.End)
	}
	return nil
}

func handleGive(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.Args) < 2 {
		return Result{}, errs.Parse("Give what to whom?")
	}
	if len(r.WhoOrder) == 1 {
		if mf := c.Driver.Money(); mf != nil {
			if amount, err := mf.Parse(r.Unrecognized); err == nil {
				return giveMoney(p, amount, r.WhoOrder[0], mf)
			}
		}
	}
	if len(r.Unrecognized) > 0 {
		return Result{}, errs.Parse("You don't have %s.", lang.Join(r.Unrecognized, ""))
	}
	if p.InventorySize() == 0 {
		return Result{}, errs.Refused("You're not carrying anything.")
	}
	for _, a := range r.Args {
		if a != "all" {
			continue
		}
		if len(r.Args) != 2 {
			return Result{}, errs.Parse("Give all to who?")
		}
		name := r.Args[1]
		if r.Args[0] != "all" {
			name = r.Args[0]
		}
		target := p.Location().SearchLiving(name)
		if target == nil {
			return Result{}, errs.Refused("%s isn't here.", name)
		}
		what := p.Inventory()
		return Confirm("Are you sure you want to give it all away?", func(yes bool) (Result, error) {
			if !yes {
				return Result{}, nil
			}
			return Result{}, giveStuff(p, what, c.World.Get(target.ID))
		}), nil
	}
	livings := 0
	for _, o := range r.WhoOrder {
		if world.AsLiving(o) != nil {
			livings++
		}
	}
	if livings > 1 {
		return Result{}, errs.Refused("It's not clear who you want to give things to.")
	}
	first, last := r.WhoOrder[0], r.WhoOrder[len(r.WhoOrder)-1]
	switch {
	case world.AsLiving(first) != nil:
		return Result{}, giveStuff(p, r.WhoOrder[1:], first)
	case world.AsLiving(last) != nil:
		return Result{}, giveStuff(p, r.WhoOrder[:len(r.WhoOrder)-1], last)
	}
	return Result{}, errs.Refused("It's not clear who you want to give things to.")
}

func giveStuff(p *world.Player, items []world.Object, target world.Object) error {
	if target.Core().ID == p.ID {
		return errs.Refused("There's no reason to give things to yourself.")
	}
	holder, ok := target.(world.Holder)
	if !ok {
		return errs.Refused("You can't give things to %s.", target.Title())
	}
	moved, refusals, err := moveItems(p, items, holder, "give")
	if err != nil {
		return err
	}
	if err := settleRefusals(p, moved, refusals); err != nil {
		return err
	}
	if len(moved) == 0 {
		p.Tell(fmt.Sprintf("You didn't give <living>%s</> anything.", target.Title()), world.End)
		return nil
	}
	names := lang.Join(titles(moved), "")
	who := lang.Capital(p.Title())
	roomMsg := fmt.Sprintf("<player>%s</> gives <item>%s</> to <living>%s</>.", who, names, target.Title())
	targetMsg := fmt.Sprintf("<player>%s</> gives you <item>%s</>.", who, names)
	p.Location().Tell(roomMsg, &p.Living, []*world.Living{world.AsLiving(target)}, targetMsg)
	p.Tell(fmt.Sprintf("You give <living>%s</> <item>%s</>.", target.Title(), names), world.End)
	return nil
}

func giveMoney(p *world.Player, amount float64, recipient world.Object, mf *money.Formatter) (Result, error) {
	l := world.AsLiving(recipient)
	switch {
	case l == nil:
		return Result{}, errs.Refused("You can't do that.")
	case l.ID == p.ID:
		return Result{}, errs.Refused("There's no reason to give it to yourself.")
	case amount <= 0:
		p.Tell("You don't give away anything.", world.End)
		return Result{}, nil
	case p.Money < amount:
		p.Tell("You don't have that amount of wealth.", world.End)
		return Result{}, nil
	}
	shown := mf.Display(amount, false, "")
	return Confirm(fmt.Sprintf("Are you sure you want to give %s away?", shown), func(yes bool) (Result, error) {
		if !yes {
			return Result{}, nil
		}
		if p.Money < amount {
			return Result{}, errs.Refused("You don't have that amount of wealth.")
		}
		p.Money -= amount
		l.Money += amount
		p.Tell(fmt.Sprintf("You gave <living>%s</> %s.", l.Title(), shown), world.End)
		p.TellOthers(fmt.Sprintf("{Title} gave %s some money.", l.Title()))
		return Result{}, nil
	}), nil
}

func handleThrow(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) != 2 {
		return Result{}, errs.Parse("Throw what where?")
	}
	o, where := r.WhoOrder[0], r.WhoOrder[1]
	it := world.AsItem(o)
	if it == nil {
		return Result{}, errs.Refused("You can't throw that.")
	}
	loc := p.Location()
	if loc.Contains(o) {
		if err := it.Move(p, &p.Living, "take"); err != nil {
			return Result{}, err
		}
		p.Tell(fmt.Sprintf("You take <item>%s</>.", o.Title()), world.End)
		p.TellOthers(fmt.Sprintf("{Title} takes %s.", o.Title()))
	}
	if err := it.Move(loc, &p.Living, "throw"); err != nil {
		return Result{}, err
	}
	obj := "it"
	l := world.AsLiving(where)
	if l != nil {
		obj = l.Objective()
	}
	p.Tell(fmt.Sprintf("You throw the <item>%s</> at %s, missing %s by a hair.", o.Title(), where.Title(), obj), world.End)
	p.TellOthers(fmt.Sprintf("{Title} throws the %s at %s, missing %s by a hair.", o.Title(), where.Title(), obj))
	if l != nil && l.Aggressive {
		l.StartAttack(&p.Living)
	}
	return Result{}, nil
}

func handleShow(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) != 2 {
		return Result{}, errs.Parse("Show what to whom?")
	}
	shown, target := r.WhoOrder[0], r.WhoOrder[1]
	if !p.Contains(shown) {
		return Result{}, errs.Refused("You don't have <item>%s</>.", lang.A(shown.Title()))
	}
	p.Tell(fmt.Sprintf("You show the <item>%s</> to <living>%s</>.", shown.Title(), target.Title()), world.End)
	who := lang.Capital(p.Title())
	roomMsg := fmt.Sprintf("%s shows %s to %s.", who, lang.A(shown.Title()), target.Title())
	targetMsg := fmt.Sprintf("%s shows you %s.", who, lang.A(shown.Title()))
	var targets []*world.Living
	if l := world.AsLiving(target); l != nil {
		targets = append(targets, l)
	}
	p.Location().Tell(roomMsg, &p.Living, targets, targetMsg)
	return Result{}, nil
}

var combinePrompts = map[string]string{
	"combine": "Combine what with what?",
	"attach":  "Attach what to what?",
	"apply":   "Apply what to what?",
	"install": "Install what on what?",
}

func handleCombine(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) != 2 {
		msg, ok := combinePrompts[r.Verb]
		if !ok {
			msg = combinePrompts["combine"]
		}
		return Result{}, errs.Parse("%s", msg)
	}
	a, b := r.WhoOrder[0], r.WhoOrder[1]
	if !p.Contains(a) || !p.Contains(b) {
		return Result{}, errs.Refused("You are not carrying both, try to pick them up first.")
	}
	ia, okA := a.(world.Interactive)
	ib, okB := b.(world.Interactive)
	if !okA || !okB {
		return Result{}, errs.Refused("You can't combine these.")
	}
	if err := ib.Combine(c.Context, []world.Object{a}, &p.Living); err != nil {
		if !errs.IsRefused(err) {
			return Result{}, err
		}
		return Result{}, ia.Combine(c.Context, []world.Object{b}, &p.Living)
	}
	return Result{}, nil
}

func handleUse(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) == 0 {
		return Result{}, errs.Refused("Use what?")
	}
	subj := "it"
	if len(r.WhoOrder) > 1 {
		if len(r.WhoOrder) == 2 && p.Contains(r.WhoOrder[0]) && p.Contains(r.WhoOrder[1]) {
			p.Tell("<dim>(It is assumed that you want to combine them.)</>", world.End)
			return handleCombine(c, p, r)
		}
		subj = "them"
	} else if l := world.AsLiving(r.WhoOrder[0]); l != nil {
		if l.ID == p.ID {
			return Result{}, errs.Refused("Please be more specific: what do you want to do?")
		}
		subj = l.Objective()
	}
	return Result{}, errs.Refused("Please be more specific: what do you want to do with %s?", subj)
}

func handleOpen(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if (len(r.Args) != 1 && len(r.Args) != 2) || len(r.Unrecognized) > 0 {
		return Result{}, errs.Parse("%s what? With what?", lang.Capital(r.Verb))
	}
	if len(r.WhoOrder) > 0 {
		if l := world.AsLiving(r.WhoOrder[0]); l != nil {
			return Result{}, errs.Refused("You can't do that with <living>%s</>.", l.Title())
		}
	}
	whatName := r.Args[0]
	what := p.SearchItem(whatName, true, true, false)
	loc := p.Location()
	if what == nil {
		what = loc.Exit(whatName)
		if what == nil {
			if full, ok := Abbreviations[whatName]; ok {
				what = loc.Exit(full)
			}
		}
	}
	if what == nil {
		return Result{}, errs.Refused("You don't see %s.", lang.A(whatName))
	}
	var with world.Object
	if len(r.Args) == 2 {
		with = p.SearchItem(r.Args[1], true, false, false)
		if with == nil {
			return Result{}, errs.Refused("You don't have <item>%s</>.", lang.A(r.Args[1]))
		}
	}
	op, ok := what.(world.Openable)
	if !ok {
		return Result{}, errs.Refused("You can't %s that.", r.Verb)
	}
	var err error
	switch r.Verb {
	case "open":
		err = op.Open(&p.Living, with)
	case "close":
		err = op.Close(&p.Living, with)
	case "lock":
		err = op.Lock(&p.Living, with)
	case "unlock":
		err = op.Unlock(&p.Living, with)
	}
	if err != nil {
		return Result{}, err
	}
	verbed := map[string]string{"open": "opened", "close": "closed", "lock": "locked", "unlock": "unlocked"}[r.Verb]
	p.Tell(fmt.Sprintf("You %s it.", verbed), world.End)
	p.TellOthers(fmt.Sprintf("{Title} %s the %s.", verbed, what.Core().Name))
	return Result{}, nil
}

// interactEach applies f to every target. With several targets each
// refusal is prefixed with the target's name.
func interactEach(p *world.Player, targets []world.Object, f func(world.Interactive) error) error {
	for _, o := range targets {
		in, ok := o.(world.Interactive)
		if !ok {
			continue
		}
		err := f(in)
		if err == nil {
			continue
		}
		msg, ok := errs.UserMessage(err)
		if !ok {
			return err
		}
		if len(targets) > 1 {
			msg = o.Core().Name + ": " + msg
		}
		p.Tell(msg, world.End)
	}
	return nil
}

func handleActivate(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Activate what?")
	}
	return Result{}, interactEach(p, r.WhoOrder, func(in world.Interactive) error {
		return in.Activate(c.Context, &p.Living)
	})
}

func handleDeactivate(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) == 0 {
		return Result{}, errs.Parse("Deactivate what?")
	}
	return Result{}, interactEach(p, r.WhoOrder, func(in world.Interactive) error {
		return in.Deactivate(c.Context, &p.Living)
	})
}

// onOff reports whether the single target of a switch or turn command is
// to be switched "on" or "off", or "" when neither.
func onOff(r *soul.ParseResult) string {
	if len(r.WhoOrder) != 1 {
		return ""
	}
	prev := whoPrevious(r, r.WhoOrder[0])
	for _, w := range []string{"on", "off"} {
		if prev == w || strings.HasSuffix(r.Unparsed, " "+w) {
			return w
		}
	}
	return ""
}

func switchOnOff(c *Ctx, p *world.Player, r *soul.ParseResult, verb string) (Result, error, bool) {
	switch onOff(r) {
	case "on":
		res, err := handleActivate(c, p, r)
		return res, err, true
	case "off":
		res, err := handleDeactivate(c, p, r)
		return res, err, true
	}
	if len(r.WhoOrder) == 0 {
		if arg, _ := SplitVerb(r.Unparsed); arg == "on" || arg == "off" {
			return Result{}, errs.Parse("%s %s what?", lang.Capital(verb), arg), true
		}
	}
	return Result{}, nil, false
}

func handleSwitch(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if res, err, done := switchOnOff(c, p, r, "switch"); done {
		return res, err
	}
	return Result{Outcome: RetrySoulVerb}, nil
}

func handleTurn(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if res, err, done := switchOnOff(c, p, r, "turn"); done {
		return res, err
	}
	return handleManipulate(c, p, r)
}

func handleManipulate(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	verb := r.Verb
	if verb == "manip" {
		verb = "manipulate"
	}
	_, isEmote := soul.VERBS[verb]
	if len(r.WhoOrder) == 1 {
		in, ok := r.WhoOrder[0].(world.Interactive)
		if !ok {
			return Result{}, errs.Refused("You can't %s that.", verb)
		}
		err := in.Manipulate(c.Context, verb, &p.Living)
		if err != nil && errs.IsRefused(err) && isEmote {
			return Result{Outcome: RetrySoulVerb}, nil
		}
		return Result{}, err
	}
	if isEmote {
		return Result{Outcome: RetrySoulVerb}, nil
	}
	return Result{}, errs.Parse("%s what?", lang.Capital(verb))
}

func handleRead(c *Ctx, p *world.Player, r *soul.ParseResult) (Result, error) {
	if len(r.WhoOrder) != 1 {
		return Result{}, errs.Parse("Read what?")
	}
	in, ok := r.WhoOrder[0].(world.Interactive)
	if !ok {
		return Result{}, errs.Refused("There's nothing to read.")
	}
	return Result{}, in.Read(c.Context, &p.Living)
}
