package world_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/gametime"
	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/render"
)

func newWorld(t testing.TB) *world.World {
	t.Helper()
	clock := gametime.NewClock(time.Date(2012, 4, 19, 14, 0, 0, 0, time.UTC), 1)
	return world.New(clock, dice.NewSeededSource(42))
}

func mustNPC(t testing.TB, w *world.World, name string, g lang.Gender, race, title, descr string) *world.NPC {
	t.Helper()
	n, err := w.NewNPC(name, g, race, title, descr)
	require.NoError(t, err)
	return n
}

func mustPlayer(t testing.TB, w *world.World, name string, g lang.Gender) *world.Player {
	t.Helper()
	p, err := w.NewPlayer(name, g, "human", "")
	require.NoError(t, err)
	return p
}

// collector records wiretap messages.
type collector struct {
	msgs []world.WiretapEvent
}

func (c *collector) PubsubEvent(_ string, event any) any {
	if ev, ok := event.(world.WiretapEvent); ok {
		c.msgs = append(c.msgs, ev)
	}
	return nil
}

func stripAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = render.StripTags(s)
	}
	return out
}

type hallFixture struct {
	w                    *world.World
	hall, attic, street  *world.Location
	table, key, magazine *world.Item
	pencil, notebook     *world.Item
	bag                  *world.Container
	rat, fly, julie      *world.NPC
	player               *world.Player
}

func newHall(t *testing.T) *hallFixture {
	w := newWorld(t)
	f := &hallFixture{w: w}
	f.hall = w.NewLocation("Main hall", "A very large hall.")
	f.attic = w.NewLocation("Attic", "A dark attic.")
	f.street = w.NewLocation("Street", "An endless street.")
	e1, err := w.NewExit([]string{"up"}, f.attic, "A ladder leads up.", "")
	require.NoError(t, err)
	e2, err := w.NewExit([]string{"door", "east"}, f.street, "A heavy wooden door to the east blocks the noises from the street outside.", "")
	require.NoError(t, err)
	require.NoError(t, f.hall.AddExits(e1, e2))
	f.table = w.NewItem("table", "oak table", "a large dark table with a lot of cracks in its surface")
	f.key = w.NewItem("key", "rusty key", "an old rusty key without a label")
	f.key.ShortDescription = "Someone forgot a key."
	f.magazine = w.NewItem("magazine", "university magazine", "")
	f.rat = mustNPC(t, w, "rat", lang.Neuter, "rodent", "", "")
	f.fly = mustNPC(t, w, "fly", lang.Neuter, "insect", "", "")
	f.fly.ShortDescription = "A fly buzzes around your head."
	f.julie = mustNPC(t, w, "julie", lang.Female, "human", "attractive Julie", "She's quite the looker.")
	f.julie.AddAliases("chick")
	f.player = mustPlayer(t, w, "player", lang.Male)
	f.pencil = w.NewItem("pencil", "fountain pen", "")
	f.pencil.AddAliases("pen")
	f.bag = w.NewContainer("bag", "", "")
	f.notebook = w.NewItem("notebook", "", "")
	require.NoError(t, f.bag.Insert(f.notebook, &f.player.Living))
	require.NoError(t, f.player.Insert(f.pencil, &f.player.Living))
	require.NoError(t, f.player.Insert(f.bag, &f.player.Living))
	require.NoError(t, f.hall.InitInventory(f.table, f.key, f.magazine, f.rat, f.julie, f.player, f.fly))
	return f
}

func TestLocation_Names(t *testing.T) {
	w := newWorld(t)
	loc := w.NewLocation("The Attic", "A dusty attic.")
	assert.Equal(t, "The Attic", loc.Name)
	assert.Equal(t, "A dusty attic.", loc.Description())
	assert.Equal(t, world.LimboID, w.Limbo().ID)
}

func TestLocation_Contains(t *testing.T) {
	f := newHall(t)
	assert.True(t, f.hall.Contains(f.julie))
	assert.True(t, f.hall.Contains(f.magazine))
	assert.False(t, f.hall.Contains(f.pencil))
	assert.False(t, f.attic.Contains(f.magazine))
	assert.False(t, f.attic.Contains(f.julie))
}

func TestLocation_Look(t *testing.T) {
	f := newHall(t)
	expected := []string{"[Main hall]", "A very large hall.",
		"A heavy wooden door to the east blocks the noises from the street outside. A ladder leads up.",
		"Someone forgot a key. You see a university magazine and an oak table. Player, attractive Julie, and rat are here. A fly buzzes around your head."}
	assert.Equal(t, expected, stripAll(f.hall.Look(nil, false)))
	expected[3] = "Someone forgot a key. You see a university magazine and an oak table. Attractive Julie and rat are here. A fly buzzes around your head."
	assert.Equal(t, expected, stripAll(f.hall.Look(&f.player.Living, false)))
	assert.Equal(t, []string{"[Attic]", "A dark attic."}, stripAll(f.attic.Look(nil, false)))
}

func TestLocation_LookShort(t *testing.T) {
	f := newHall(t)
	assert.Equal(t, []string{"[Attic]"}, stripAll(f.attic.Look(nil, true)))
	assert.Equal(t, []string{"[Main hall]", "Exits: door, east, up", "You see: key, magazine, table", "Present: fly, julie, player, rat"},
		stripAll(f.hall.Look(nil, true)))
	assert.Equal(t, []string{"[Main hall]", "Exits: door, east, up", "You see: key, magazine, table", "Present: fly, julie, rat"},
		stripAll(f.hall.Look(&f.player.Living, true)))
}

func TestLocation_SearchLiving(t *testing.T) {
	f := newHall(t)
	assert.Nil(t, f.hall.SearchLiving("<notexisting>"))
	assert.Nil(t, f.attic.SearchLiving("<notexisting>"))
	assert.Equal(t, &f.rat.Living, f.hall.SearchLiving("rat"))
	assert.Equal(t, &f.julie.Living, f.hall.SearchLiving("Julie"))
	assert.Equal(t, &f.julie.Living, f.hall.SearchLiving("attractive julie"))
	assert.Equal(t, &f.julie.Living, f.hall.SearchLiving("chick"))
	assert.Nil(t, f.hall.SearchLiving("bloke"))
}

func TestLiving_LocateItem(t *testing.T) {
	f := newHall(t)
	p := f.player
	item, container := p.LocateItem("<notexisting>", true, true, true)
	assert.Nil(t, item)
	assert.Nil(t, container)
	item, container = p.LocateItem("pencil", true, true, true)
	assert.Equal(t, world.Object(f.pencil), item)
	assert.Equal(t, world.Object(p), container)
	item, _ = p.LocateItem("fountain pen", true, true, true)
	assert.Equal(t, world.Object(f.pencil), item, "need to find the title")
	item, _ = p.LocateItem("pen", true, true, true)
	assert.Equal(t, world.Object(f.pencil), item, "need to find the alias")
	item, container = p.LocateItem("pencil", false, true, true)
	assert.Nil(t, item)
	assert.Nil(t, container)
	item, container = p.LocateItem("key", true, true, true)
	assert.Equal(t, world.Object(f.key), item)
	assert.Equal(t, world.Object(f.hall), container)
	item, _ = p.LocateItem("key", true, false, true)
	assert.Nil(t, item)
	item, container = p.LocateItem("KEY", true, true, true)
	assert.Equal(t, world.Object(f.key), item, "should work case-insensitive")
	assert.Equal(t, world.Object(f.hall), container)
	item, container = p.LocateItem("notebook", true, true, true)
	assert.Equal(t, world.Object(f.notebook), item)
	assert.Equal(t, world.Object(f.bag), container, "should search in bags in inventory")
	item, container = p.LocateItem("notebook", true, true, false)
	assert.Nil(t, item)
	assert.Nil(t, container)
	assert.Equal(t, world.Object(f.pencil), p.SearchItem("pencil", true, true, true))
}

func TestLocation_Tell(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	rat := mustPlayer(t, w, "rat", lang.Neuter)
	julie := mustPlayer(t, w, "julie", lang.Female)
	require.NoError(t, hall.InitInventory(rat, julie))
	hall.Tell("roommsg", nil, nil, "")
	assert.Equal(t, []string{"roommsg"}, rat.RawOutput(true))
	assert.Equal(t, []string{"roommsg"}, julie.RawOutput(true))
	hall.Tell("roommsg", &rat.Living, []*world.Living{&julie.Living}, "juliemsg")
	assert.Empty(t, rat.RawOutput(true))
	assert.Equal(t, []string{"juliemsg"}, julie.RawOutput(true))
}

func TestLocation_EnterLeave(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	rat1 := mustNPC(t, w, "rat1", lang.Neuter, "rodent", "", "")
	rat2 := mustNPC(t, w, "rat2", lang.Neuter, "rodent", "", "")
	julie := mustNPC(t, w, "julie", lang.Female, "human", "", "")
	exit, err := w.NewExitTo([]string{"north"}, "x.y", "", "")
	require.NoError(t, err)
	assert.Error(t, hall.Insert(exit, &julie.Living))
	assert.Equal(t, w.Limbo(), rat1.Location())
	assert.False(t, hall.Contains(rat1))

	tap := &collector{}
	hall.Wiretap().Subscribe(tap)
	require.NoError(t, hall.Insert(rat1, &julie.Living))
	assert.Equal(t, hall, rat1.Location())
	assert.True(t, hall.Contains(rat1))
	require.NoError(t, hall.Insert(rat2, &julie.Living))
	assert.Empty(t, tap.msgs, "insert shouldn't produce arrival messages")

	require.NoError(t, hall.Remove(rat1, &julie.Living))
	assert.False(t, hall.Contains(rat1))
	assert.Equal(t, w.Limbo(), rat1.Location())
	require.NoError(t, hall.Remove(rat2, &julie.Living))
	assert.Empty(t, tap.msgs, "remove shouldn't produce exit messages")
	require.NoError(t, hall.Remove(rat1, &julie.Living), "removing an absent object is harmless")
}

func TestLocation_CustomVerbs(t *testing.T) {
	w := newWorld(t)
	player := mustPlayer(t, w, "julie", lang.Female)
	player.Verbs["xywobble"] = "p1"
	room := w.NewLocation("room", "")
	chair1 := w.NewItem("chair1", "", "")
	chair1.Verbs["frobnitz"] = "c1"
	chair2 := w.NewItem("chair2", "", "")
	chair2.Verbs["frobnitz"] = "c2"
	chair3 := w.NewItem("chair3", "", "")
	chair3.Verbs["kowabooga"] = "c3"
	require.NoError(t, room.InitInventory(chair1, player, chair2))
	me := &player.Living

	assert.Equal(t, map[string]string{"xywobble": "p1"}, player.Verbs)
	assert.Equal(t, map[string]string{"frobnitz": "c2", "xywobble": "p1"}, room.AllVerbs())
	require.NoError(t, player.Insert(chair3, me))
	assert.Equal(t, map[string]string{"xywobble": "p1"}, player.Verbs)
	assert.Equal(t, map[string]string{"frobnitz": "c2", "xywobble": "p1", "kowabooga": "c3"}, room.AllVerbs())
	require.NoError(t, player.Remove(chair3, me))
	assert.Equal(t, map[string]string{"frobnitz": "c2", "xywobble": "p1"}, room.AllVerbs())

	require.NoError(t, player.Insert(chair3, me))
	room2 := w.NewLocation("room2", "")
	assert.Empty(t, room2.AllVerbs())
	require.NoError(t, chair1.Move(room2, me, ""))
	require.NoError(t, chair2.Move(room2, me, ""))
	assert.Equal(t, map[string]string{"xywobble": "p1", "kowabooga": "c3"}, room.AllVerbs())
	assert.Equal(t, map[string]string{"frobnitz": "c2"}, room2.AllVerbs())
	require.NoError(t, player.Move(room2, nil, false))
	assert.Empty(t, room.AllVerbs())
	assert.Equal(t, map[string]string{"frobnitz": "c2", "xywobble": "p1", "kowabooga": "c3"}, room2.AllVerbs())
}

type moveObserver struct {
	npcLeft, npcArrived       *world.Living
	leftTarget, arrivedFrom   *world.Location
	playerArrived, playerLeft *world.Player
}

func (o *moveObserver) NotifyPlayerArrived(_ *world.Location, p *world.Player, _ *world.Location) {
	o.playerArrived = p
}
func (o *moveObserver) NotifyPlayerLeft(_ *world.Location, p *world.Player, _ *world.Location) {
	o.playerLeft = p
}
func (o *moveObserver) NotifyNPCArrived(_ *world.Location, l *world.Living, from *world.Location) {
	o.npcArrived, o.arrivedFrom = l, from
}
func (o *moveObserver) NotifyNPCLeft(_ *world.Location, l *world.Living, to *world.Location) {
	o.npcLeft, o.leftTarget = l, to
}

func TestLiving_MoveNotifies(t *testing.T) {
	w := newWorld(t)
	npc := mustNPC(t, w, "rat", lang.Male, "rodent", "", "")
	room1, room2 := w.NewLocation("room1", ""), w.NewLocation("room2", "")
	obs1, obs2 := &moveObserver{}, &moveObserver{}
	room1.Observer, room2.Observer = obs1, obs2
	require.NoError(t, room1.Insert(npc, nil))
	require.NoError(t, npc.Move(room2, nil, false))
	assert.Equal(t, room2, npc.Location())
	assert.Equal(t, &npc.Living, obs1.npcLeft)
	assert.Equal(t, room2, obs1.leftTarget)
	assert.Equal(t, &npc.Living, obs2.npcArrived)
	assert.Equal(t, room1, obs2.arrivedFrom)

	p := mustPlayer(t, w, "julie", lang.Female)
	require.NoError(t, room1.InitInventory(p))
	require.NoError(t, p.Move(room2, nil, true))
	assert.Equal(t, p, obs1.playerLeft)
	assert.Equal(t, p, obs2.playerArrived)
}

func TestLiving_MoveMessages(t *testing.T) {
	w := newWorld(t)
	hall, attic := w.NewLocation("hall", ""), w.NewLocation("attic", "")
	rat, err := w.NewLiving("rat", lang.Neuter, "rodent", "", "")
	require.NoError(t, err)
	require.NoError(t, hall.InitInventory(rat))
	tapHall, tapAttic := &collector{}, &collector{}
	hall.Wiretap().Subscribe(tapHall)
	attic.Wiretap().Subscribe(tapAttic)

	require.NoError(t, rat.Move(attic, nil, false))
	assert.True(t, attic.Contains(rat))
	assert.False(t, hall.Contains(rat))
	assert.Equal(t, attic, rat.Location())
	assert.Equal(t, []world.WiretapEvent{{Source: "hall", Message: "Rat leaves."}}, tapHall.msgs)
	assert.Equal(t, []world.WiretapEvent{{Source: "attic", Message: "Rat arrives."}}, tapAttic.msgs)

	tapHall.msgs, tapAttic.msgs = nil, nil
	require.NoError(t, rat.Move(hall, nil, true))
	assert.Equal(t, hall, rat.Location())
	assert.Empty(t, tapHall.msgs)
	assert.Empty(t, tapAttic.msgs)
}

func TestLiving_Pronouns(t *testing.T) {
	w := newWorld(t)
	for _, tc := range []struct {
		g                  lang.Gender
		subj, obj, possess string
	}{
		{lang.Female, "she", "her", "her"},
		{lang.Male, "he", "him", "his"},
		{lang.Neuter, "it", "it", "its"},
	} {
		l, err := w.NewLiving("x", tc.g, "human", "", "")
		require.NoError(t, err)
		assert.Equal(t, tc.subj, l.Subjective())
		assert.Equal(t, tc.obj, l.Objective())
		assert.Equal(t, tc.possess, l.Possessive())
	}
	_, err := w.NewLiving("x", "q", "human", "", "")
	assert.Error(t, err)
	_, err = w.NewLiving("x", lang.Male, "unicorn", "", "")
	assert.Error(t, err)
}

func TestLiving_TellWiretap(t *testing.T) {
	w := newWorld(t)
	julie, err := w.NewLiving("julie", lang.Female, "human", "", "")
	require.NoError(t, err)
	tap := &collector{}
	julie.Wiretap().Subscribe(tap)
	julie.Tell("msg1")
	julie.Tell("msg2", world.End)
	require.Len(t, tap.msgs, 2)
	assert.Equal(t, "msg1", tap.msgs[0].Message)
	assert.Equal(t, "julie", tap.msgs[0].Source)
}

func TestLiving_ShowInventory(t *testing.T) {
	w := newWorld(t)
	julie := mustPlayer(t, w, "julie", lang.Female)
	julie.InitInventory(w.NewItem("key", "", ""))
	julie.Money = 9.23
	mf, err := money.New(money.Modern)
	require.NoError(t, err)
	julie.ShowInventory(&julie.Living, mf)
	text := strings.Join(stripAll(julie.RawOutput(true)), " ")
	assert.Equal(t, "Julie is carrying:   key Money in possession: 9 dollar and 23 cent.", text)
	julie.ShowInventory(&julie.Living, nil)
	assert.Equal(t, "Julie is carrying:   key", strings.Join(stripAll(julie.RawOutput(true)), " "))
}

func TestLiving_Allowance(t *testing.T) {
	w := newWorld(t)
	orc, err := w.NewLiving("orc", lang.Male, "half-orc", "", "")
	require.NoError(t, err)
	axe := w.NewWeapon("axe", "", "", "1d8")
	require.NoError(t, orc.Insert(axe, orc))
	assert.True(t, orc.Contains(axe))
	assert.Equal(t, 1, orc.InventorySize())
	err = orc.Remove(axe, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "can't take")
	require.NoError(t, orc.Remove(axe, orc))
	assert.False(t, orc.Contains(axe))
}

func TestNPC_Init(t *testing.T) {
	w := newWorld(t)
	rat := mustNPC(t, w, "rat", lang.Neuter, "rodent", "", "")
	julie := mustNPC(t, w, "julie", lang.Female, "human", "attractive Julie", `
                    She's quite the looker.
                    `)
	assert.False(t, julie.Aggressive)
	assert.Equal(t, "julie", julie.Name)
	assert.Equal(t, "attractive Julie", julie.Title())
	assert.Equal(t, "She's quite the looker.", julie.Description())
	assert.Equal(t, "human", julie.Race)
	assert.Greater(t, julie.Stats.Get("agi"), 0)
	assert.Equal(t, "rat", rat.Title())
	assert.Equal(t, "rodent", rat.Race)
	assert.Equal(t, "", rat.Description())
	dragon, err := w.NewMonster("dragon", lang.Female, "dragon", "", "")
	require.NoError(t, err)
	assert.True(t, dragon.Aggressive)
}

func TestItem_Names(t *testing.T) {
	w := newWorld(t)
	item := w.NewItem("KEY", "", "")
	assert.Equal(t, "key", item.Name)
	assert.Equal(t, "KEY", item.Title())
	item = w.NewItem("key", "rusty old key", `
                    a very small, old key that's rusted
                    `)
	assert.Equal(t, "rusty old key", item.Title())
	assert.Equal(t, "a very small, old key that's rusted", item.Description())
}

func TestItem_InsertRemoveRefused(t *testing.T) {
	w := newWorld(t)
	key := w.NewItem("key", "", "")
	thing := w.NewItem("gizmo", "", "")
	p := mustPlayer(t, w, "julie", lang.Female)
	assert.True(t, errs.IsRefused(key.Remove(thing, &p.Living)))
	assert.True(t, errs.IsRefused(key.Insert(thing, &p.Living)))
	assert.NoError(t, key.AllowItemMove(&p.Living, "take"))
	assert.Empty(t, key.Contents())
	assert.False(t, key.Contains(thing))
}

func TestItem_Move(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	person, err := w.NewLiving("person", lang.Male, "human", "", "")
	require.NoError(t, err)
	monster, err := w.NewMonster("dragon", lang.Female, "dragon", "", "")
	require.NoError(t, err)
	key := w.NewItem("key", "", "")
	stone := w.NewItem("stone", "", "")
	require.NoError(t, hall.InitInventory(person, key))
	require.NoError(t, stone.Move(hall, person, ""))
	tap := &collector{}
	hall.Wiretap().Subscribe(tap)

	require.NoError(t, key.Move(person, person, "take"))
	assert.False(t, hall.Contains(key))
	assert.True(t, person.Contains(key))
	assert.Empty(t, tap.msgs, "item moves are silent")

	err = key.Move(monster, person, "give")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a good idea")
	assert.True(t, person.Contains(key), "a refused move leaves the item where it was")
	assert.Equal(t, world.Object(person), key.ContainedIn())
}

func TestItem_Location(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	person, err := w.NewLiving("person", lang.Male, "human", "", "")
	require.NoError(t, err)
	key := w.NewItem("key", "", "")
	backpack := w.NewContainer("backpack", "", "")
	require.NoError(t, person.Insert(backpack, person))
	assert.Nil(t, key.ContainedIn())
	assert.Nil(t, key.Location())
	assert.Equal(t, world.Object(person), backpack.ContainedIn())
	assert.Equal(t, w.Limbo(), backpack.Location())
	require.NoError(t, hall.InitInventory(person, key))
	assert.Equal(t, hall, key.Location())
	assert.Equal(t, hall, backpack.Location())
	require.NoError(t, key.Move(backpack, person, ""))
	assert.Equal(t, world.Object(backpack), key.ContainedIn())
	assert.Equal(t, hall, key.Location())
}

func TestNPC_RefusesGifts(t *testing.T) {
	w := newWorld(t)
	p := mustPlayer(t, w, "julie", lang.Female)
	npc := mustNPC(t, w, "max", lang.Male, "human", "", "")
	stone := w.NewItem("stone", "", "")
	p.InitInventory(stone)
	err := stone.Move(npc, &p.Living, "give")
	require.Error(t, err)
	msg, ok := errs.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "Max doesn't want stone.", msg)
	assert.True(t, p.Contains(stone))

	p.Privileges[world.PrivilegeWizard] = true
	require.NoError(t, stone.Move(npc, &p.Living, "give"))
	assert.True(t, npc.Contains(stone))
}

func TestContainer(t *testing.T) {
	w := newWorld(t)
	bag := w.NewContainer("bag", "leather bag", "a small leather bag")
	key := w.NewItem("key", "", "")
	npc := mustNPC(t, w, "julie", lang.Female, "human", "", "")
	assert.Empty(t, bag.Contents())
	require.NoError(t, bag.Insert(key, &npc.Living))
	assert.True(t, bag.Contains(key))
	require.NoError(t, bag.Remove(key, &npc.Living))
	assert.False(t, bag.Contains(key))
	err := bag.Remove(key, &npc.Living)
	assert.True(t, errors.Is(err, world.ErrNotContained))
	assert.Error(t, bag.Insert(npc, &npc.Living))

	assert.True(t, errs.IsRefused(bag.Insert(bag, nil)), "a bag can't hold itself")
	inner := w.NewContainer("pouch", "", "")
	require.NoError(t, bag.Insert(inner, nil))
	assert.True(t, errs.IsRefused(inner.Insert(bag, nil)), "no containment cycles")

	p := mustPlayer(t, w, "julie", lang.Female)
	require.NoError(t, bag.Move(p, &p.Living, ""))
	assert.Equal(t, "bag", bag.Name)
	assert.Equal(t, "leather bag", bag.Title())
	assert.Equal(t, "a small leather bag", bag.Description())
}

func TestDoor_State(t *testing.T) {
	w := newWorld(t)
	for _, st := range []world.DoorState{{}, {Opened: true}, {Locked: true}} {
		_, err := w.NewDoorTo([]string{"out"}, "xyz", "short desc", "", st)
		assert.NoError(t, err)
	}
	_, err := w.NewDoorTo([]string{"out"}, "xyz", "short desc", "", world.DoorState{Opened: true, Locked: true})
	assert.Error(t, err)
}

func refusal(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	msg, ok := errs.UserMessage(err)
	require.True(t, ok, "expected a refusal, got %v", err)
	return msg
}

func TestDoor_Actions(t *testing.T) {
	w := newWorld(t)
	p := mustPlayer(t, w, "julie", lang.Female)
	me := &p.Living
	hall := w.NewLocation("hall", "")
	attic := w.NewLocation("attic", "")

	unbound, err := w.NewExitTo([]string{"random"}, "foo.bar", "a random exit", "")
	require.NoError(t, err)
	assert.ErrorIs(t, unbound.AllowPassage(me), world.ErrUnboundExit)
	ladder, err := w.NewExit([]string{"ladder"}, attic, "first ladder to attic", "")
	require.NoError(t, err)
	assert.NoError(t, ladder.AllowPassage(me))

	door, err := w.NewDoor([]string{"north"}, hall, "open unlocked door", "", world.DefaultDoorState)
	require.NoError(t, err)
	assert.Equal(t, "It's already open.", refusal(t, door.Open(me, nil)))
	require.NoError(t, door.Close(me, nil))
	assert.False(t, door.Opened)
	assert.Equal(t, "You can't go there; it's closed.", refusal(t, door.AllowPassage(me)))
	assert.Equal(t, "You don't seem to have the means to lock it.", refusal(t, door.Lock(me, nil)))
	assert.Equal(t, "It's not locked.", refusal(t, door.Unlock(me, nil)))
	door.Locked = true
	assert.Equal(t, "It's already locked.", refusal(t, door.Lock(me, nil)))
	assert.Equal(t, "You don't seem to have the means to unlock it.", refusal(t, door.Unlock(me, nil)))
	assert.True(t, door.Locked)

	door, err = w.NewDoor([]string{"north"}, hall, "closed locked door", "", world.DoorState{Locked: true})
	require.NoError(t, err)
	assert.Equal(t, "You try to open it, but it's locked.", refusal(t, door.Open(me, nil)))
	assert.Equal(t, "It's already closed.", refusal(t, door.Close(me, nil)))

	door, err = w.NewDoor([]string{"north"}, hall, "Some door.", "", world.DefaultDoorState)
	require.NoError(t, err)
	assert.Equal(t, "Some door.", door.ShortDescription)
	assert.Equal(t, "Some door. It is open and unlocked.", door.Description())
	door, err = w.NewDoor([]string{"north"}, hall, "Some door.", "This is a peculiar door leading north.", world.DefaultDoorState)
	require.NoError(t, err)
	assert.Equal(t, "This is a peculiar door leading north. It is open and unlocked.", door.Description())
}

func TestDoor_WithKey(t *testing.T) {
	w := newWorld(t)
	p := mustPlayer(t, w, "julie", lang.Female)
	me := &p.Living
	key := w.NewItem("key", "door key", "")
	key.DoorCode = 12345
	hall := w.NewLocation("hall", "")
	door, err := w.NewDoor([]string{"north"}, hall, "a locked door", "", world.DoorState{Locked: true})
	require.NoError(t, err)
	assert.Error(t, door.Unlock(me, nil))
	assert.Error(t, door.Unlock(me, key))
	door.Code = 12345
	require.NoError(t, door.Unlock(me, key))
	assert.False(t, door.Locked)
	door.Locked = true
	assert.Error(t, door.Unlock(me, nil))
	require.NoError(t, key.Move(p, me, "take"))
	require.NoError(t, door.Unlock(me, nil))
	assert.False(t, door.Locked)
	require.NoError(t, door.Lock(me, nil))
	assert.True(t, door.Locked)
}

func TestExits(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	attic := w.NewLocation("attic", "")
	exit1, _ := w.NewExit([]string{"ladder1"}, attic, "The first ladder leads to the attic.", "")
	exit2, _ := w.NewExit([]string{"up"}, attic, "Second ladder to attic.", "")
	exit3, _ := w.NewExit([]string{"ladder3"}, attic, "Third ladder to attic.", "")
	exit4, _ := w.NewExit([]string{"window"}, attic, "A window.", "A window, maybe if you open it you can get out?")
	require.NoError(t, hall.AddExits(exit1, exit2, exit3, exit4))
	assert.Equal(t, world.Object(exit2), hall.Exit("up"))
	assert.Equal(t, []string{"[hall]", "The first ladder leads to the attic. Third ladder to attic. Second ladder to attic. A window."},
		stripAll(hall.Look(nil, false)))
	assert.Equal(t, "Third ladder to attic.", exit3.Description())
	assert.Equal(t, "A window, maybe if you open it you can get out?", exit4.Description())

	ctx := world.Context{World: w}
	me := (*world.Living)(nil)
	assert.True(t, errs.IsRefused(exit1.Activate(ctx, me)))
	assert.True(t, errs.IsRefused(exit1.Deactivate(ctx, me)))
	assert.True(t, errs.IsRefused(exit1.Open(me, nil)))
	assert.True(t, errs.IsRefused(exit1.Close(me, nil)))
	assert.True(t, errs.IsRefused(exit1.Lock(me, nil)))
	assert.True(t, errs.IsRefused(exit1.Unlock(me, nil)))
	assert.True(t, errs.IsRefused(exit1.Manipulate(ctx, "frobnitz", me)))
	assert.True(t, errs.IsRefused(exit1.Read(ctx, me)))
}

func TestExit_BindAndTitle(t *testing.T) {
	w := newWorld(t)
	square := w.NewLocation("square", "")
	require.NoError(t, w.SetPath(square, "town.square"))
	exit, err := w.NewExitTo([]string{"outside"}, "town.square", "someplace", "")
	require.NoError(t, err)
	assert.Equal(t, "outside", exit.Name)
	assert.Equal(t, "Exit to <unbound:town.square>", exit.Title())
	assert.False(t, exit.Bound())
	require.NoError(t, exit.Bind(w))
	assert.True(t, exit.Bound())
	assert.Equal(t, square, exit.Target())
	assert.Equal(t, "Exit to square", exit.Title())
	require.NoError(t, exit.Bind(w), "binding twice is harmless")

	dangling, err := w.NewExitTo([]string{"in"}, "town.nowhere", "", "")
	require.NoError(t, err)
	assert.Error(t, dangling.Bind(w))
}

func TestExit_Aliases(t *testing.T) {
	w := newWorld(t)
	loc := w.NewLocation("hall", "empty hall")
	exit, _ := w.NewExitTo([]string{"up"}, "attic", "ladder to attic", "")
	door, _ := w.NewDoorTo([]string{"door"}, "street", "door to street", "", world.DefaultDoorState)
	exit2, _ := w.NewExitTo([]string{"down", "hatch", "manhole"}, "underground", "hatch to underground", "")
	door2, _ := w.NewDoorTo([]string{"east", "garden"}, "garden", "door east to garden", "", world.DefaultDoorState)
	assert.Equal(t, "door", door.Name)
	require.NoError(t, loc.AddExits(exit, door, exit2, door2))
	assert.Equal(t, []string{"door", "down", "east", "garden", "hatch", "manhole", "up"}, loc.ExitNames())
	assert.Equal(t, loc.Exit("down"), loc.Exit("hatch"))
	assert.NoError(t, loc.AddExits(exit2), "re-adding the same exit is fine")
	clash, _ := w.NewExitTo([]string{"up"}, "roof", "", "")
	assert.Error(t, loc.AddExits(clash))
}

func TestMessageNearby(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	street := w.NewLocation("street", "")
	cellar := w.NewLocation("cellar", "")
	toStreet, _ := w.NewExit([]string{"west"}, street, "", "")
	toHall, _ := w.NewExit([]string{"east"}, hall, "", "")
	toCellar, _ := w.NewExit([]string{"down"}, cellar, "", "")
	up, _ := w.NewExit([]string{"up"}, hall, "", "")
	require.NoError(t, hall.AddExits(toStreet, toCellar))
	require.NoError(t, street.AddExits(toHall))
	require.NoError(t, cellar.AddExits(up))
	bob := mustPlayer(t, w, "bob", lang.Male)
	eve := mustPlayer(t, w, "eve", lang.Female)
	require.NoError(t, street.InitInventory(bob))
	require.NoError(t, cellar.InitInventory(eve))

	hall.MessageNearby("Someone yells: help!")
	assert.Equal(t, []string{"Someone yells: help!", "The sound is coming from the east."}, bob.RawOutput(true))
	assert.Equal(t, []string{"Someone yells: help!", "You can't hear where the sound is coming from."}, eve.RawOutput(true))
}

func TestPlayer_LookBrief(t *testing.T) {
	f := newHall(t)
	p := f.player
	p.Brief = 1
	p.Look(world.LookAuto)
	first := stripAll(p.RawOutput(true))
	assert.Equal(t, "A very large hall.", first[1])
	p.Look(world.LookAuto)
	assert.Equal(t, "Exits: door, east, up", stripAll(p.RawOutput(true))[1])
	p.Brief = 0
	p.Look(world.LookAuto)
	assert.Equal(t, first, stripAll(p.RawOutput(true)))

	ctx := world.Context{World: f.w}
	require.NoError(t, f.w.Destroy(ctx, f.hall))
	p.Look(world.LookLong)
	assert.Equal(t, "[Limbo]", stripAll(p.RawOutput(true))[0])
}

func TestPlayer_Wiretap(t *testing.T) {
	w := newWorld(t)
	hall := w.NewLocation("hall", "")
	wiz := mustPlayer(t, w, "merlin", lang.Male)
	other := mustPlayer(t, w, "julie", lang.Female)
	require.NoError(t, hall.InitInventory(other))

	assert.True(t, errs.IsRefused(wiz.CreateWiretap(wiz)))
	require.NoError(t, wiz.CreateWiretap(hall))
	require.NoError(t, wiz.CreateWiretap(other))
	require.NoError(t, other.CreateWiretap(wiz))
	assert.Len(t, wiz.Wiretaps(), 2)

	hall.Tell("A bell rings.", nil, nil, "")
	assert.Contains(t, wiz.RawOutput(false), "[wiretapped from 'hall': A bell rings.]")
	assert.Contains(t, wiz.RawOutput(false), "[wiretapped from 'julie': A bell rings.]")
	assert.Empty(t, other.RawOutput(true)[1:], "relayed text is not tapped again")

	wiz.RawOutput(true)
	wiz.ClearWiretaps()
	hall.Tell("Silence.", nil, nil, "")
	assert.Empty(t, wiz.RawOutput(true))
}

func TestDestroy_Location(t *testing.T) {
	w := newWorld(t)
	ctx := world.Context{World: w}
	loc := w.NewLocation("loc", "")
	item := w.NewItem("item", "", "")
	rat, err := w.NewLiving("rat", lang.Neuter, "rodent", "", "")
	require.NoError(t, err)
	exit, _ := w.NewExitTo([]string{"north"}, "somewhere", "exit to somewhere", "")
	require.NoError(t, loc.AddExits(exit))
	p := mustPlayer(t, w, "julie", lang.Female)
	p.Privileges[world.PrivilegeWizard] = true
	require.NoError(t, p.CreateWiretap(loc))
	require.NoError(t, loc.InitInventory(item, rat, p))

	require.NoError(t, w.Destroy(ctx, loc))
	assert.Empty(t, loc.ExitNames())
	assert.Empty(t, loc.Items())
	assert.Empty(t, loc.Livings())
	assert.Equal(t, w.Limbo(), p.Location())
	assert.Equal(t, w.Limbo(), rat.Location())
	assert.Nil(t, w.Get(item.ID))
	assert.Nil(t, w.Get(loc.ID))
	assert.Error(t, w.Destroy(ctx, w.Limbo()))
}

func TestDestroy_Player(t *testing.T) {
	w := newWorld(t)
	ctx := world.Context{World: w}
	loc := w.NewLocation("loc", "")
	p := mustPlayer(t, w, "julie", lang.Female)
	require.NoError(t, p.CreateWiretap(loc))
	key := w.NewItem("key", "", "")
	require.NoError(t, p.Insert(key, &p.Living))
	require.NoError(t, loc.InitInventory(p))

	require.NoError(t, w.Destroy(ctx, p))
	assert.Zero(t, p.InventorySize())
	assert.False(t, loc.Contains(p))
	assert.Nil(t, p.Location(), "a destroyed player is nowhere")
	assert.Nil(t, w.Get(key.ID))
	assert.Empty(t, p.Wiretaps())
	require.NoError(t, w.Destroy(ctx, p), "destroying twice is a no-op")
}

type recordingScheduler struct {
	world.NopScheduler
	cancelled, unregistered []world.ID
}

func (s *recordingScheduler) CancelDeferreds(id world.ID)     { s.cancelled = append(s.cancelled, id) }
func (s *recordingScheduler) UnregisterHeartbeat(id world.ID) { s.unregistered = append(s.unregistered, id) }

func TestDestroy_CancelsDeferreds(t *testing.T) {
	w := newWorld(t)
	sched := &recordingScheduler{}
	ctx := world.Context{World: w, Sched: sched}
	bag := w.NewContainer("bag", "", "")
	coin := w.NewItem("coin", "", "")
	bag.InitInventory(coin)
	require.NoError(t, w.Destroy(ctx, bag))
	assert.ElementsMatch(t, []world.ID{bag.ID, coin.ID}, sched.cancelled)
	assert.ElementsMatch(t, []world.ID{bag.ID, coin.ID}, sched.unregistered)
}

func TestClone(t *testing.T) {
	w := newWorld(t)
	bag := w.NewContainer("bag", "leather bag", "")
	coin := w.NewItem("coin", "gold coin", "")
	bag.InitInventory(coin)
	dup, err := w.Clone(bag)
	require.NoError(t, err)
	c := dup.(*world.Container)
	assert.NotEqual(t, bag.ID, c.ID)
	assert.Equal(t, "leather bag", c.Title())
	require.Len(t, c.Contents(), 1)
	assert.NotEqual(t, coin.ID, c.Contents()[0])
	assert.Len(t, bag.Contents(), 1, "original is untouched")

	npc := mustNPC(t, w, "rat", lang.Neuter, "rodent", "", "")
	npc.InitInventory(w.NewItem("cheese", "", ""))
	dup, err = w.Clone(npc)
	require.NoError(t, err)
	rat2 := dup.(*world.NPC)
	assert.Equal(t, w.Limbo(), rat2.Location())
	assert.Equal(t, 1, rat2.InventorySize())

	_, err = w.Clone(w.Limbo())
	assert.True(t, errs.IsRefused(err))
	_, err = w.Clone(mustPlayer(t, w, "julie", lang.Female))
	assert.True(t, errs.IsRefused(err))
}

func TestPrintLocation(t *testing.T) {
	w := newWorld(t)
	p := mustPlayer(t, w, "julie", lang.Female)
	room := w.NewLocation("room", "")
	bag := w.NewContainer("bag", "", "")
	key := w.NewItem("key", "", "")
	bag.InitInventory(key)
	require.NoError(t, p.Insert(bag, &p.Living))
	require.NoError(t, room.InitInventory(p))

	world.PrintLocation(p, key, nil, true)
	assert.Equal(t, []string{"(It's not clear where key is)."}, p.RawOutput(true))
	world.PrintLocation(p, key, nil, false)
	assert.Equal(t, []string{"It's not clear where key is."}, p.RawOutput(true))
	world.PrintLocation(p, key, bag, true)
	result := strings.Join(p.RawOutput(true), "")
	assert.Contains(t, result, "in bag")
	assert.Contains(t, result, "in your inventory")
	world.PrintLocation(p, key, room, true)
	assert.Contains(t, strings.Join(p.RawOutput(true), ""), "in your current location")
	world.PrintLocation(p, bag, p, true)
	assert.Contains(t, strings.Join(p.RawOutput(true), ""), "in your inventory")
}

func TestDedent(t *testing.T) {
	assert.Equal(t, "line one\n  line two", world.Dedent("\n    line one\n      line two\n    "))
	assert.Equal(t, "", world.Dedent("   "))
}

func TestWorld_Place(t *testing.T) {
	f := newHall(t)
	require.NoError(t, f.w.Place(f.key, f.bag))
	assert.True(t, f.bag.Contains(f.key))
	assert.False(t, f.hall.Contains(f.key))
	assert.Equal(t, f.bag.ID, f.key.ContainedIn().Core().ID)

	require.NoError(t, f.w.Place(f.julie, f.attic))
	assert.True(t, f.attic.Contains(f.julie))
	assert.False(t, f.hall.Contains(f.julie))

	assert.Error(t, f.w.Place(f.julie, f.bag))
	assert.Error(t, f.w.Place(f.bag, f.bag))
}
