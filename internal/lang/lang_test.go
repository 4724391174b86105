package lang_test

import (
	"testing"

	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestA(t *testing.T) {
	tests := map[string]string{
		"house":               "a house",
		"a house":             "a house",
		"House":               "a House",
		"egg":                 "an egg",
		"an egg":              "an egg",
		"university":          "a university",
		"university magazine": "a university magazine",
		"unindent":            "an unindent",
		"user":                "a user",
		"history":             "a history",
		"hour":                "an hour",
		"":                    "",
	}
	for in, want := range tests {
		assert.Equal(t, want, lang.A(in), "A(%q)", in)
	}
}

func TestA_RegisteredExceptions(t *testing.T) {
	assert.Equal(t, "an unicycle", lang.A("unicycle"))
	lang.RegisterAExceptions(map[string]string{"unicycle": "a"})
	assert.Equal(t, "a unicycle", lang.A("unicycle"))
	assert.Equal(t, "a unicycle wheel", lang.A("unicycle wheel"))
}

// TestA_Idempotent verifies A(A(s)) == A(s) for arbitrary phrases.
func TestA_Idempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z]{0,8}( [a-z]{1,6}){0,2}`).Draw(rt, "phrase")
		once := lang.A(s)
		assert.Equal(rt, once, lang.A(once))
	})
}

func TestFullstop(t *testing.T) {
	assert.Equal(t, "a.", lang.Fullstop("a", "."))
	assert.Equal(t, "a.", lang.Fullstop("a ", "."))
	assert.Equal(t, "a.", lang.Fullstop("a.", "."))
	assert.Equal(t, "a?", lang.Fullstop("a?", "."))
	assert.Equal(t, "a!", lang.Fullstop("a!", "."))
	assert.Equal(t, "a;", lang.Fullstop("a", ";"))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", lang.Join(nil, ""))
	assert.Equal(t, "a", lang.Join([]string{"a"}, ""))
	assert.Equal(t, "a and b", lang.Join([]string{"a", "b"}, ""))
	assert.Equal(t, "a, b, and c", lang.Join([]string{"a", "b", "c"}, "and"))
	assert.Equal(t, "a, b, or c", lang.Join([]string{"a", "b", "c"}, "or"))
	assert.Equal(t, "c, b, or a", lang.Join([]string{"c", "b", "a"}, "or"))
}

func TestAdverbs(t *testing.T) {
	require.NotEmpty(t, lang.AdverbList)
	assert.True(t, lang.IsAdverb("noisily"))
	assert.False(t, lang.IsAdverb("zzzzzzzzzz"))
	assert.Equal(t, []string{"nobly", "nocturnally", "noiselessly", "noisily", "nominally"}, lang.AdverbByPrefix("no", 5))
	assert.Equal(t, []string{"nobly"}, lang.AdverbByPrefix("no", 1))
	assert.Equal(t, []string{"abjectly"}, lang.AdverbByPrefix("a", 1))
	assert.Equal(t, []string{"zonally", "zoologically"}, lang.AdverbByPrefix("zo", 0))
	assert.Equal(t, []string{"zoologically"}, lang.AdverbByPrefix("zoo", 0))
	assert.Empty(t, lang.AdverbByPrefix("zzzzzzzzzz", 0))
}

func TestPossessive(t *testing.T) {
	assert.Equal(t, "", lang.PossessiveLetter(""))
	assert.Equal(t, "'s", lang.PossessiveLetter("julie"))
	assert.Equal(t, "'s", lang.PossessiveLetter("tess"))
	assert.Equal(t, "", lang.PossessiveLetter("your own"))
	assert.Equal(t, "julie's", lang.Possessive("julie"))
	assert.Equal(t, "tess's", lang.Possessive("tess"))
	assert.Equal(t, "your own", lang.Possessive("your own"))
}

func TestCapital(t *testing.T) {
	assert.Equal(t, "", lang.Capital(""))
	assert.Equal(t, "X", lang.Capital("x"))
	assert.Equal(t, "Xyz AbC", lang.Capital("xyz AbC"))
	assert.Equal(t, "Élan", lang.Capital("élan"))
}

func TestSplit(t *testing.T) {
	assert.Empty(t, lang.Split(""))
	assert.Equal(t, []string{"a"}, lang.Split("a"))
	assert.Equal(t, []string{"a", "b", "c"}, lang.Split("a b c"))
	assert.Equal(t, []string{"a", "b", "c"}, lang.Split(" a   b  c    "))
	assert.Equal(t, []string{"a", "b c d", "e"}, lang.Split("a 'b c d' e"))
	assert.Equal(t, []string{"a", "b c d", "e"}, lang.Split("a  '  b c d '   e"))
	assert.Equal(t, []string{"a", "b c d", "e", "f g", "h"}, lang.Split(`a 'b c d' e "f g   " h`))
	assert.Equal(t, []string{"a", `b c "hi!" d`, "e"}, lang.Split(`a  '  b c "hi!" d '   e`))
	assert.Equal(t, []string{"a", "'b"}, lang.Split("a 'b"))
	assert.Equal(t, []string{"a", `"b`}, lang.Split(`a "b`))
	assert.Equal(t, []string{"pat", "julie's", "head"}, lang.Split("pat julie's head"))
}

func TestFullverb(t *testing.T) {
	tests := map[string]string{
		"say": "saying", "ski": "skiing", "poke": "poking", "polka": "polkaing",
		"snivel": "sniveling", "fart": "farting", "try": "trying", "pat": "patting",
		"lie": "lying", "see": "seeing",
	}
	for in, want := range tests {
		assert.Equal(t, want, lang.Fullverb(in), "Fullverb(%q)", in)
	}
}

func TestSpellNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "zero"}, {1, "one"}, {20, "twenty"}, {99, "99"}, {-1, "minus one"},
		{-20, "minus twenty"}, {2.5, "two and a half"}, {40, "forty"},
	}
	for _, tt := range tests {
		got, err := lang.SpellNumber(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
	_, err := lang.SpellNumber(1.234)
	assert.Error(t, err)
}

func TestPluralize(t *testing.T) {
	assert.Equal(t, "cars", lang.Pluralize("car", 2))
	assert.Equal(t, "cars", lang.Pluralize("car", 0))
	assert.Equal(t, "car", lang.Pluralize("car", 1))
	tests := map[string]string{
		"box": "boxes", "boss": "bosses", "bush": "bushes", "church": "churches",
		"gas": "gases", "quiz": "quizzes", "volcano": "volcanoes", "photo": "photos",
		"piano": "pianos", "lady": "ladies", "crisis": "crises", "wolf": "wolves",
		"knife": "knives", "roof": "roofs", "child": "children",
	}
	for in, want := range tests {
		assert.Equal(t, want, lang.Pluralize(in, 2), "Pluralize(%q)", in)
	}
}

func TestGender(t *testing.T) {
	g, err := lang.ParseGender("f")
	require.NoError(t, err)
	assert.Equal(t, "her", g.Objective())
	assert.Equal(t, "her", g.Possessive())
	assert.Equal(t, "she", g.Subjective())
	assert.Equal(t, "him", lang.Male.Objective())
	assert.Equal(t, "his", lang.Male.Possessive())
	assert.Equal(t, "it", lang.Neuter.Subjective())
	assert.Equal(t, "its", lang.Neuter.Possessive())
	_, err = lang.ParseGender("x")
	assert.Error(t, err)
}
