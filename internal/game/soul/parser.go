// Package soul turns a player's command line into a structured parse
// result and renders emotes ("pat julie happily on the head") for the
// actor, the targets and the rest of the room.
package soul

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
)

// maxNameWords bounds multi-word name matching ("rusty old key").
const maxNameWords = 4

// minPrefixLen is the shortest word that may match a name by prefix.
const minPrefixLen = 3

// WhoInfo records where a target appeared in the command line.
type WhoInfo struct {
	Sequence     int
	PreviousWord string
}

// ParseResult is the outcome of parsing one command line.
type ParseResult struct {
	Verb      string
	Qualifier string
	Adverb    string
	// Bodypart is a key of BODY_PARTS.
	Bodypart string
	Message  string
	// WhoOrder lists the resolved targets left to right.
	WhoOrder []world.Object
	WhoInfo  map[world.ID]WhoInfo
	// Args are the words after the verb without joiners, articles,
	// prepositions, adverbs and body parts. Multi-word names are one arg.
	Args         []string
	Unrecognized []string
	// Unparsed is the text after the verb, as typed.
	Unparsed string
}

// Who returns the info recorded for a target.
func (r *ParseResult) Who(o world.Object) (WhoInfo, bool) {
	if o == nil {
		return WhoInfo{}, false
	}
	info, ok := r.WhoInfo[o.Core().ID]
	return info, ok
}

// Action converts the result into what world objects see when they are
// notified of the command.
func (r *ParseResult) Action() world.Action {
	who := make([]world.ID, len(r.WhoOrder))
	for i, o := range r.WhoOrder {
		who[i] = o.Core().ID
	}
	return world.Action{
		Verb:     r.Verb,
		Adverb:   r.Adverb,
		Message:  r.Message,
		Who:      who,
		Args:     append([]string(nil), r.Args...),
		Unparsed: r.Unparsed,
	}
}

func (r *ParseResult) String() string {
	names := make([]string, len(r.WhoOrder))
	for i, o := range r.WhoOrder {
		names[i] = o.Core().Name
	}
	return fmt.Sprintf("ParseResult(verb=%q qualifier=%q adverb=%q bodypart=%q message=%q who=%v args=%v unrecognized=%v unparsed=%q)",
		r.Verb, r.Qualifier, r.Adverb, r.Bodypart, r.Message, names, r.Args, r.Unrecognized, r.Unparsed)
}

func (r *ParseResult) addWho(o world.Object, previous string) {
	id := o.Core().ID
	if _, dup := r.WhoInfo[id]; dup {
		return
	}
	r.WhoInfo[id] = WhoInfo{Sequence: len(r.WhoOrder), PreviousWord: previous}
	r.WhoOrder = append(r.WhoOrder, o)
}

// Options tell the parser about the verbs and abbreviations handled
// outside the soul.
type Options struct {
	// External reports whether a command or custom object verb handles
	// verb. Such verbs are parsed in command mode.
	External func(verb string) bool
	// Abbreviations maps short words to the words they stand for, such as
	// "n" to "north". They are used to find exits.
	Abbreviations map[string]string
}

func (o Options) external(verb string) bool {
	return o.External != nil && o.External(verb)
}

// Soul is the parser state of one living. It remembers the targets of the
// previous command so "him", "her", "it" and "them" can refer to them.
type Soul struct {
	previous []world.ID
}

// New returns an empty Soul.
func New() *Soul { return &Soul{} }

// Remember records the targets of a command that was executed.
func (s *Soul) Remember(r *ParseResult) {
	if r == nil || len(r.WhoOrder) == 0 {
		return
	}
	s.previous = s.previous[:0]
	for _, o := range r.WhoOrder {
		s.previous = append(s.previous, o.Core().ID)
	}
}

// Parse parses line for actor. It does not change the world or the soul.
//
// Precondition: actor is alive.
// Postcondition: returns *errs.UnknownVerb when neither the soul nor
// opts.External knows the verb, a *errs.ParseError when the line is
// contradictory, or the parse result.
func (s *Soul) Parse(actor *world.Living, line string, opts Options) (*ParseResult, error) {
	line = strings.TrimSpace(line)
	verb, rest := splitWord(line)
	if verb == "" {
		return nil, errs.Parse("What do you want to do?")
	}
	verb = strings.ToLower(verb)
	r := &ParseResult{Verb: verb, Unparsed: rest, WhoInfo: make(map[world.ID]WhoInfo)}

	if _, isQual := ACTION_QUALIFIERS[verb]; isQual && rest != "" {
		next, after := splitWord(rest)
		next = strings.ToLower(next)
		if _, again := ACTION_QUALIFIERS[next]; again {
			return nil, errs.Parse("You can't do that both %s and %s.", verb, next)
		}
		r.Qualifier, r.Verb, r.Unparsed = verb, next, after
	}

	_, isEmote := VERBS[r.Verb]
	commandMode := opts.external(r.Verb)
	if !isEmote && !commandMode {
		return nil, &errs.UnknownVerb{Verb: r.Verb}
	}
	if r.Qualifier != "" && !isEmote {
		return nil, errs.Parse("You can't %s that.", r.Qualifier)
	}

	words, message, hasMessage := splitMessage(r.Unparsed)
	if hasMessage {
		r.Message = message
	}
	tokens := tokenize(words)
	loc := actor.Location()
	previous := ""

	for i := 0; i < len(tokens); i++ {
		w := tokens[i]
		switch {
		case joiners[w]:
			continue
		case articles[w]:
			continue
		case prepositions[w]:
			previous = w
			continue
		case selfWords[w]:
			r.addWho(actor.World().Get(actor.ID), previous)
			r.Args = append(r.Args, w)
		case w == "all" && commandMode:
			// "take all", "drop all": the handler decides what all means.
			r.Args = append(r.Args, w)
		case everyoneWords[w]:
			// Everyone else; "and me" adds the actor explicitly.
			if loc != nil {
				for _, l := range loc.Livings() {
					if l.Core().ID != actor.ID {
						r.addWho(l, previous)
					}
				}
			}
			r.Args = append(r.Args, w)
		case pronouns[w]:
			refs := s.referents(actor, w)
			if len(refs) == 0 {
				return nil, errs.Parse("It is not clear who you're referring to.")
			}
			for _, o := range refs {
				r.addWho(o, previous)
			}
			r.Args = append(r.Args, w)
		default:
			if obj, n := resolveName(actor, tokens[i:], opts); obj != nil {
				r.addWho(obj, previous)
				r.Args = append(r.Args, strings.Join(tokens[i:i+n], " "))
				i += n - 1
				w = tokens[i]
				break
			}
			if phrase, ok := BODY_PARTS[w]; ok {
				if r.Bodypart != "" && r.Bodypart != w {
					return nil, errs.Parse("You can't do that both %s and %s.", BODY_PARTS[r.Bodypart], phrase)
				}
				r.Bodypart = w
				break
			}
			adverb := ""
			if lang.IsAdverb(w) {
				adverb = w
			} else if obj := resolvePrefix(actor, w); obj != nil {
				r.addWho(obj, previous)
				r.Args = append(r.Args, w)
				break
			} else if !commandMode {
				// Ambiguous prefixes take the first adverb in sort order.
				if m := lang.AdverbByPrefix(w, 1); len(m) > 0 {
					adverb = m[0]
				}
			}
			if adverb != "" {
				if r.Adverb != "" && r.Adverb != adverb {
					return nil, errs.Parse("You can't do that both %s and %s.", r.Adverb, adverb)
				}
				r.Adverb = adverb
				break
			}
			r.Unrecognized = append(r.Unrecognized, w)
			r.Args = append(r.Args, w)
		}
		previous = w
	}

	if !commandMode && len(r.Unrecognized) > 0 {
		return nil, errs.Parse("It's not clear what you mean by '%s'.", r.Unrecognized[0])
	}
	return r, nil
}

// referents resolves a pronoun against the previous command's targets
// that are still present.
func (s *Soul) referents(actor *world.Living, pronoun string) []world.Object {
	w := actor.World()
	var out []world.Object
	for _, id := range s.previous {
		o := w.Get(id)
		if o == nil || !visible(actor, o) {
			continue
		}
		l := world.AsLiving(o)
		switch pronoun {
		case "him":
			if l == nil || l.Gender != lang.Male {
				continue
			}
		case "her":
			if l == nil || l.Gender != lang.Female {
				continue
			}
		case "it":
			if l != nil && l.Gender != lang.Neuter {
				continue
			}
		}
		out = append(out, o)
	}
	if pronoun != "them" && len(out) > 1 {
		out = out[len(out)-1:]
	}
	return out
}

func visible(actor *world.Living, o world.Object) bool {
	if actor.Contains(o) {
		return true
	}
	loc := actor.Location()
	return loc != nil && loc.Contains(o)
}

// scope returns the objects a name may refer to, in priority order.
func scope(actor *world.Living) [][]world.Object {
	loc := actor.Location()
	if loc == nil {
		return [][]world.Object{actor.Inventory()}
	}
	return [][]world.Object{loc.Livings(), loc.Items(), actor.Inventory(), loc.UniqueExits()}
}

// resolveName finds the object named by the longest run of leading tokens.
// It returns the object and the number of tokens consumed.
func resolveName(actor *world.Living, tokens []string, opts Options) (world.Object, int) {
	groups := scope(actor)
	n := len(tokens)
	if n > maxNameWords {
		n = maxNameWords
	}
	for ; n > 0; n-- {
		if stopsName(tokens[n-1]) && n > 1 {
			continue
		}
		phrase := strings.Join(tokens[:n], " ")
		for _, group := range groups {
			for _, o := range group {
				if o.Core().Matches(phrase) {
					return o, n
				}
			}
		}
	}
	word := tokens[0]
	if loc := actor.Location(); loc != nil {
		if ex := loc.Exit(word); ex != nil {
			return ex, 1
		}
		if full, ok := opts.Abbreviations[word]; ok {
			if ex := loc.Exit(full); ex != nil {
				return ex, 1
			}
		}
	}
	return nil, 0
}

// resolvePrefix finds the object whose name or title starts with word.
// Several matches resolve to the first name in sort order.
func resolvePrefix(actor *world.Living, word string) world.Object {
	if len(word) < minPrefixLen {
		return nil
	}
	var candidates []world.Object
	for _, group := range scope(actor) {
		for _, o := range group {
			if strings.HasPrefix(o.Core().Name, word) || strings.HasPrefix(strings.ToLower(o.Title()), word) {
				candidates = append(candidates, o)
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Core().Name < candidates[j].Core().Name
	})
	return candidates[0]
}

func stopsName(w string) bool {
	return joiners[w] || prepositions[w]
}

// splitWord splits off the first whitespace separated word.
func splitWord(s string) (word, rest string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}

// splitMessage separates a quoted message from the words before it. The
// message starts at the first quote that begins a word and runs to the
// end of the line; a matching closing quote is dropped.
func splitMessage(s string) (words, message string, ok bool) {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\'' && c != '"' {
			continue
		}
		if i > 0 && s[i-1] != ' ' && s[i-1] != '\t' {
			continue
		}
		message = strings.TrimSpace(s[i+1:])
		message = strings.TrimSuffix(message, string(c))
		return strings.TrimSpace(s[:i]), strings.TrimSpace(message), true
	}
	return s, "", false
}

// tokenize lowercases the words and splits trailing commas into joiners.
func tokenize(s string) []string {
	var out []string
	for _, w := range lang.Split(s) {
		w = strings.ToLower(w)
		trailing := strings.HasSuffix(w, ",") && len(w) > 1
		w = strings.TrimRight(w, ",")
		if w == "" {
			out = append(out, ",")
			continue
		}
		out = append(out, w)
		if trailing {
			out = append(out, ",")
		}
	}
	return out
}
