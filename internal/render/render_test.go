package render_test

import (
	"strings"
	"testing"

	"github.com/cory-johannsen/tale/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestApplyStyles(t *testing.T) {
	s := "You see <item>a key</> and <bright>light</bright>."
	assert.Equal(t, "You see a key and light.", render.StripTags(s))
	styled := render.ApplyStyles(s, true)
	assert.Contains(t, styled, render.Bold+"a key"+render.Reset)
	assert.NotContains(t, styled, "<")
}

func TestApplyStyles_UnknownTagsKept(t *testing.T) {
	s := "type 'help <topic>' for <bg:red>help</>"
	assert.Equal(t, "type 'help <topic>' for help", render.StripTags(s))
}

func TestTags(t *testing.T) {
	tags := render.Tags()
	for _, want := range []string{"dim", "bright", "ul", "it", "rev", "living", "player", "item", "exit", "location", "monospaced", "/monospaced", "/", "bg:blue"} {
		assert.Contains(t, tags, want)
	}
	assert.True(t, render.IsTag("/living"))
	assert.False(t, render.IsTag("topic"))
}

func TestRender_Unformatted(t *testing.T) {
	out := render.Render([]render.Paragraph{{Text: "line one\n  line two", Formatted: false}},
		render.Options{Indent: 2, Width: 40})
	assert.Equal(t, "  line one\n    line two\n", out)
}

func TestRender_Wraps(t *testing.T) {
	text := strings.Repeat("word ", 30)
	out := render.Render([]render.Paragraph{{Text: text, Formatted: true}},
		render.Options{Indent: 2, Width: 30})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Greater(t, len(lines), 1)
	for _, l := range lines {
		assert.True(t, strings.HasPrefix(l, "  "))
		assert.LessOrEqual(t, render.VisibleWidth(l), 30)
	}
}

func TestRender_SentenceEndings(t *testing.T) {
	out := render.Render([]render.Paragraph{{Text: "You wait. Time passes.", Formatted: true}},
		render.Options{Indent: 0, Width: 72})
	assert.Equal(t, "You wait.  Time passes.\n", out)
}

func TestRender_StylesOffHasNoEscapes(t *testing.T) {
	out := render.Render([]render.Paragraph{{Text: "<red>red</> text", Formatted: true}},
		render.Options{Indent: 0, Width: 72, Styles: false})
	assert.NotContains(t, out, "\033")
	assert.Equal(t, "red text\n", out)
}

func TestSmartquotes(t *testing.T) {
	assert.Equal(t, "She says, “hello.” It’s fine.", render.Smartquotes(`She says, "hello." It's fine.`))
	assert.Equal(t, "‘quoted’", render.Smartquotes("'quoted'"))
}

// TestRender_LineWidthProperty checks that wrapped lines never exceed the
// configured width when every word fits.
func TestRender_LineWidthProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		width := rapid.IntRange(20, 100).Draw(rt, "width")
		ind := rapid.IntRange(0, 4).Draw(rt, "indent")
		words := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,9}[.,]?`), 1, 60).Draw(rt, "words")
		styled := rapid.Bool().Draw(rt, "styles")
		text := strings.Join(words, " ")
		if styled && len(words) > 1 {
			text = "<item>" + words[0] + "</> " + strings.Join(words[1:], " ")
		}
		out := render.Render([]render.Paragraph{{Text: text, Formatted: true}},
			render.Options{Indent: ind, Width: width, Styles: styled})
		for _, l := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
			if render.VisibleWidth(l) > width {
				rt.Fatalf("line %q wider than %d", l, width)
			}
		}
	})
}

func TestBuffer(t *testing.T) {
	var b render.Buffer
	b.Print("You take key.", false, true)
	b.Print("It is heavy.", true, true)
	b.Print("\n", false, true)
	b.Print("raw", false, false)
	b.Print("text", false, false)
	got := b.Raw(true)
	assert.Equal(t, []string{"You take key. It is heavy.", "", "raw\ntext"}, got)
	assert.Zero(t, b.Len())
}
