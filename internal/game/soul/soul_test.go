package soul_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/gametime"
	"github.com/cory-johannsen/tale/internal/game/soul"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
)

type room struct {
	w        *world.World
	loc      *world.Location
	player   *world.Player
	julie    *world.NPC
	rat      *world.NPC
	key      *world.Item
	box      *world.Container
	pencil   *world.Item
	north    *world.Exit
	commands map[string]bool
}

type tb interface {
	require.TestingT
	Helper()
}

func newRoom(t tb) *room {
	t.Helper()
	clock := gametime.NewClock(time.Date(2012, 4, 19, 14, 0, 0, 0, time.UTC), 1)
	w := world.New(clock, dice.NewSeededSource(7))
	r := &room{w: w, commands: map[string]bool{"take": true, "give": true, "put": true, "look": true, "wait": true}}
	r.loc = w.NewLocation("Hall", "A hall.")
	street := w.NewLocation("Street", "A street.")
	var err error
	r.north, err = w.NewExit([]string{"north"}, street, "A street is to the north.", "")
	require.NoError(t, err)
	require.NoError(t, r.loc.AddExits(r.north))
	r.player, err = w.NewPlayer("player", lang.Male, "human", "")
	require.NoError(t, err)
	r.julie, err = w.NewNPC("julie", lang.Female, "human", "Julie", "")
	require.NoError(t, err)
	r.rat, err = w.NewNPC("rat", lang.Neuter, "rodent", "", "")
	require.NoError(t, err)
	r.key = w.NewItem("key", "rusty key", "")
	r.box = w.NewContainer("box", "wooden box", "")
	r.pencil = w.NewItem("pencil", "", "")
	require.NoError(t, r.player.Insert(r.pencil, nil))
	require.NoError(t, r.loc.InitInventory(r.player, r.julie, r.rat, r.key, r.box))
	return r
}

func (r *room) opts() soul.Options {
	return soul.Options{
		External:      func(v string) bool { return r.commands[v] },
		Abbreviations: map[string]string{"n": "north"},
	}
}

func (r *room) parse(t testing.TB, line string) *soul.ParseResult {
	t.Helper()
	res, err := soul.New().Parse(&r.player.Living, line, r.opts())
	require.NoError(t, err)
	return res
}

func names(objs []world.Object) []string {
	out := make([]string, len(objs))
	for i, o := range objs {
		out[i] = o.Core().Name
	}
	return out
}

func TestParse_EmoteWithAdverbAndBodypart(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "pat julie happily on the head")
	assert.Equal(t, "pat", res.Verb)
	assert.Equal(t, []string{"julie"}, names(res.WhoOrder))
	assert.Equal(t, "happily", res.Adverb)
	assert.Equal(t, "head", res.Bodypart)
	assert.Equal(t, "julie happily on the head", res.Unparsed)

	e, err := soul.New().Socialize(res, &r.player.Living)
	require.NoError(t, err)
	assert.Equal(t, "You pat Julie happily on the head.", e.PlayerMsg)
	assert.Equal(t, "Player pats you happily on the head.", e.TargetMsg)
	assert.Equal(t, "Player pats Julie happily on the head.", e.RoomMsg)
	require.Len(t, e.Targets, 1)
	assert.Equal(t, r.julie.ID, e.Targets[0].ID)
}

func TestParse_UnknownVerb(t *testing.T) {
	r := newRoom(t)
	_, err := soul.New().Parse(&r.player.Living, "frobnicate julie", r.opts())
	var uv *errs.UnknownVerb
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "frobnicate", uv.Verb)
}

func TestParse_CommandArgsAndPreviousWord(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "take the rusty key from the box")
	assert.Equal(t, []string{"rusty key", "box"}, res.Args)
	assert.Equal(t, []string{"key", "box"}, names(res.WhoOrder))
	info, ok := res.Who(r.box)
	require.True(t, ok)
	assert.Equal(t, "from", info.PreviousWord)
	assert.Equal(t, 1, info.Sequence)
	info, _ = res.Who(r.key)
	assert.Equal(t, "", info.PreviousWord)

	res = r.parse(t, "give pencil to julie")
	info, _ = res.Who(r.julie)
	assert.Equal(t, "to", info.PreviousWord)
	assert.Equal(t, []string{"pencil", "julie"}, res.Args)
}

func TestParse_CommandModeKeepsAllAndUnrecognized(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "take all")
	assert.Equal(t, []string{"all"}, res.Args)
	assert.Empty(t, res.WhoOrder)
	assert.Empty(t, res.Unrecognized)

	res = r.parse(t, "wait 30 minutes")
	assert.Equal(t, []string{"30", "minutes"}, res.Args)
	assert.Equal(t, []string{"30", "minutes"}, res.Unrecognized)
}

func TestParse_CommandModeIgnoresAdverbPrefixes(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "look hap")
	assert.Empty(t, res.Adverb)
	assert.Equal(t, []string{"hap"}, res.Unrecognized)

	res = r.parse(t, "smile hap")
	assert.Equal(t, lang.AdverbByPrefix("hap", 1)[0], res.Adverb)
}

func TestParse_EveryoneExcludesActorUnlessMe(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "wave at everyone")
	assert.Equal(t, []string{"julie", "rat"}, names(res.WhoOrder))
	res = r.parse(t, "wave at all and me")
	assert.Equal(t, []string{"julie", "rat", "player"}, names(res.WhoOrder))
}

func TestParse_Message(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "whisper julie 'meet me at the pub'")
	assert.Equal(t, "meet me at the pub", res.Message)
	assert.Equal(t, []string{"julie"}, names(res.WhoOrder))
	e, err := soul.New().Socialize(res, &r.player.Living)
	require.NoError(t, err)
	assert.Equal(t, "You whisper 'meet me at the pub' to Julie.", e.PlayerMsg)
}

func TestParse_Errors(t *testing.T) {
	r := newRoom(t)
	tests := []struct {
		line string
		msg  string
	}{
		{"smile happily sadly", "You can't do that both happily and sadly."},
		{"pat julie on the head and the hand", "You can't do that both on the head and on the hand."},
		{"fail pretend smile", "You can't do that both fail and pretend."},
		{"pretend take key", "You can't pretend that."},
		{"smile at the moon", "It's not clear what you mean by 'moon'."},
		{"kiss her", "It is not clear who you're referring to."},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			_, err := soul.New().Parse(&r.player.Living, tt.line, r.opts())
			require.Error(t, err)
			msg, ok := errs.UserMessage(err)
			require.True(t, ok)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestParse_ExitsAndAbbreviations(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "look n")
	assert.Equal(t, []world.Object{r.north}, res.WhoOrder)
	res = r.parse(t, "point north")
	assert.Equal(t, []world.Object{r.north}, res.WhoOrder)
}

func TestParse_NamePrefix(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "hug jul")
	assert.Equal(t, []string{"julie"}, names(res.WhoOrder))
}

func TestSoul_Pronouns(t *testing.T) {
	r := newRoom(t)
	s := soul.New()
	res, err := s.Parse(&r.player.Living, "greet julie", r.opts())
	require.NoError(t, err)
	s.Remember(res)
	res, err = s.Parse(&r.player.Living, "kiss her", r.opts())
	require.NoError(t, err)
	assert.Equal(t, []string{"julie"}, names(res.WhoOrder))
	_, err = s.Parse(&r.player.Living, "kiss him", r.opts())
	assert.True(t, errs.IsParse(err))
}

func TestSocialize_Variants(t *testing.T) {
	r := newRoom(t)
	tests := []struct {
		line         string
		player, room string
		target       string
	}{
		{"smile", "You smile happily.", "Player smiles happily.", "Player smiles happily."},
		{"smile at julie", "You smile happily at Julie.", "Player smiles happily at Julie.", "Player smiles happily at you."},
		{"pat julie", "You pat Julie on the head.", "Player pats Julie on the head.", "Player pats you on the head."},
		{"fail pat julie", "You try to pat Julie on the head, but fail miserably.",
			"Player tries to pat Julie on the head, but fails miserably.", "Player tries to pat you on the head, but fails miserably."},
		{"suddenly cry", "You suddenly burst into tears.", "Player suddenly bursts into tears.", "Player suddenly bursts into tears."},
		{"shake", "You shake your head.", "Player shakes his head.", "Player shakes his head."},
		{"pat me", "You pat yourself on the head.", "Player pats himself on the head.", "Player pats himself on the head."},
		{"facepalm", "You put your face in your hands.", "Player puts his face in his hands.", "Player puts his face in his hands."},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			res := r.parse(t, tt.line)
			e, err := soul.New().Socialize(res, &r.player.Living)
			require.NoError(t, err)
			assert.Equal(t, tt.player, e.PlayerMsg)
			assert.Equal(t, tt.room, e.RoomMsg)
			assert.Equal(t, tt.target, e.TargetMsg)
		})
	}
}

func TestSocialize_NeedsPerson(t *testing.T) {
	r := newRoom(t)
	res := r.parse(t, "pat")
	_, err := soul.New().Socialize(res, &r.player.Living)
	msg, ok := errs.UserMessage(err)
	require.True(t, ok)
	assert.Equal(t, "The verb pat needs a person.", msg)
}

func TestSocialize_Aggressive(t *testing.T) {
	r := newRoom(t)
	e, err := soul.New().Socialize(r.parse(t, "kick rat"), &r.player.Living)
	require.NoError(t, err)
	assert.True(t, e.Aggressive)
	assert.True(t, soul.AGGRESSIVE_VERBS["kick"])
	assert.False(t, soul.AGGRESSIVE_VERBS["smile"])
}

func TestThirdPerson(t *testing.T) {
	for verb, want := range map[string]string{
		"pat": "pats", "kiss": "kisses", "cry": "cries", "play": "plays",
		"go": "goes", "touch": "touches", "have": "has",
	} {
		assert.Equal(t, want, soul.ThirdPerson(verb), verb)
	}
}

func TestAction(t *testing.T) {
	r := newRoom(t)
	act := r.parse(t, "smile at julie").Action()
	assert.Equal(t, "smile", act.Verb)
	assert.True(t, act.Targets(r.julie.ID))
	assert.False(t, act.Targets(r.rat.ID))
}

// Parsing never changes where anything is.
func TestParse_DoesNotMutateWorld(t *testing.T) {
	words := []string{"julie", "rat", "key", "box", "pencil", "all", "me", "happily", "head",
		"on", "the", "and", "to", "from", "north", "n", "'hello", "everyone", "sadly", "moon"}
	verbs := []string{"smile", "pat", "take", "give", "put", "look", "fail", "kick", "whisper", "frob"}
	rapid.Check(t, func(rt *rapid.T) {
		r := newRoom(rt)
		before := snapshot(r)
		line := rapid.SampledFrom(verbs).Draw(rt, "verb")
		n := rapid.IntRange(0, 6).Draw(rt, "n")
		for i := 0; i < n; i++ {
			line += " " + rapid.SampledFrom(words).Draw(rt, "word")
		}
		res, err := soul.New().Parse(&r.player.Living, line, r.opts())
		if err == nil {
			seen := map[world.ID]bool{}
			for _, o := range res.WhoOrder {
				if seen[o.Core().ID] {
					rt.Fatalf("duplicate target %s in %q", o.Core().Name, line)
				}
				seen[o.Core().ID] = true
			}
		}
		if after := snapshot(r); after != before {
			rt.Fatalf("world changed by %q:\n%s\n%s", line, before, after)
		}
	})
}

func snapshot(r *room) string {
	var b strings.Builder
	for _, o := range r.loc.Livings() {
		b.WriteString(o.Core().Name + ",")
	}
	for _, o := range r.loc.Items() {
		b.WriteString(o.Core().Name + ",")
	}
	for _, o := range r.player.Inventory() {
		b.WriteString(o.Core().Name + ",")
	}
	return b.String()
}
