package soul

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
)

// Emote is a rendered emote, ready to be delivered with Location.Tell.
type Emote struct {
	// Targets are the livings that get TargetMsg instead of RoomMsg.
	Targets    []*world.Living
	PlayerMsg  string
	RoomMsg    string
	TargetMsg  string
	Aggressive bool
}

type perspective int

const (
	actorView perspective = iota
	roomView
	targetView
)

var (
	conjugated = regexp.MustCompile(`([A-Za-z']+)\$`)
	spaces     = regexp.MustCompile(`\s{2,}`)
	irregular  = map[string]string{"have": "has", "are": "is", "do": "does", "go": "goes"}
)

// Socialize renders the emote described by r as performed by actor.
//
// Precondition: r.Verb is a key of VERBS.
// Postcondition: returns a *errs.ParseError when the verb needs a target
// and r has none.
func (s *Soul) Socialize(r *ParseResult, actor *world.Living) (Emote, error) {
	v, ok := VERBS[r.Verb]
	if !ok {
		return Emote{}, errs.Parse("Don't know how to %s.", r.Verb)
	}
	tmpl, ok := v.template(len(r.WhoOrder) > 0)
	if !ok {
		return Emote{}, errs.Parse("The verb %s needs a person.", r.Verb)
	}
	if strings.HasPrefix(tmpl, "$") {
		tmpl = r.Verb + tmpl
	}
	e := Emote{Aggressive: v.Aggressive}
	for _, o := range r.WhoOrder {
		if l := world.AsLiving(o); l != nil && l.ID != actor.ID {
			e.Targets = append(e.Targets, l)
		}
	}

	build := func(p perspective) string {
		base := fill(tmpl, v, r, actor, p)
		if q, ok := ACTION_QUALIFIERS[r.Qualifier]; ok {
			if p == actorView {
				return fmt.Sprintf(q.Self, conjugate(base, false))
			}
			return fmt.Sprintf(q.Room, conjugate(base, q.UseRoomForm))
		}
		return conjugate(base, p != actorView)
	}
	e.PlayerMsg = sentence("You " + build(actorView))
	e.RoomMsg = sentence(lang.Capital(actor.Title()) + " " + build(roomView))
	e.TargetMsg = sentence(lang.Capital(actor.Title()) + " " + build(targetView))
	return e, nil
}

func fill(tmpl string, v Verb, r *ParseResult, actor *world.Living, p perspective) string {
	who := whoString(r, actor, p)
	how := r.Adverb
	if how == "" {
		how = v.Adverb
	}
	where := v.Where
	if r.Bodypart != "" {
		where = BODY_PARTS[r.Bodypart]
	}
	at := ""
	if who != "" {
		at = v.at() + " " + who
	}
	msg := ""
	if r.Message != "" {
		msg = "'" + r.Message + "'"
	}
	your := "your"
	if p != actorView {
		your = actor.Possessive()
	}
	poss := lang.Possessive(who)
	if p == targetView {
		poss = "your"
	}
	out := strings.NewReplacer(
		"{who}", who, "{how}", how, "{where}", where, "{at}", at,
		"{msg}", msg, "{your}", your, "{poss}", poss,
	).Replace(tmpl)
	if msg != "" && !strings.Contains(tmpl, "{msg}") {
		out += ", saying " + msg
	}
	return out
}

// whoString names the targets as seen from p. The actor is "yourself" to
// itself and "himself" (or her/itself) to others; a target sees "you".
func whoString(r *ParseResult, actor *world.Living, p perspective) string {
	names := make([]string, 0, len(r.WhoOrder))
	you := false
	for _, o := range r.WhoOrder {
		switch {
		case o.Core().ID == actor.ID && p == actorView:
			names = append(names, "yourself")
		case o.Core().ID == actor.ID:
			names = append(names, actor.Objective()+"self")
		case p == targetView && world.AsLiving(o) != nil:
			if !you {
				names = append(names, "you")
				you = true
			}
		default:
			names = append(names, o.Title())
		}
	}
	return lang.Join(names, "and")
}

// conjugate resolves the '$' markers, for the third person when third is set.
func conjugate(s string, third bool) string {
	return conjugated.ReplaceAllStringFunc(s, func(m string) string {
		word := strings.TrimSuffix(m, "$")
		if !third {
			return word
		}
		return ThirdPerson(word)
	})
}

// ThirdPerson returns the third person singular of a verb.
func ThirdPerson(verb string) string {
	if irr, ok := irregular[verb]; ok {
		return irr
	}
	n := len(verb)
	switch {
	case n == 0:
		return verb
	case strings.HasSuffix(verb, "s"), strings.HasSuffix(verb, "sh"), strings.HasSuffix(verb, "ch"),
		strings.HasSuffix(verb, "x"), strings.HasSuffix(verb, "z"), strings.HasSuffix(verb, "o"):
		return verb + "es"
	case verb[n-1] == 'y' && n > 1 && !strings.ContainsRune("aeiou", rune(verb[n-2])):
		return verb[:n-1] + "ies"
	}
	return verb + "s"
}

func sentence(s string) string {
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	s = strings.ReplaceAll(s, " ,", ",")
	return lang.Fullstop(s, ".")
}
