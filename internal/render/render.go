// Package render turns buffered game output paragraphs into terminal text:
// style tags become ANSI codes (or vanish), formatted paragraphs are wrapped
// and indented, and straight quotes may be converted to typographic ones.
package render

import (
	"strings"
	"unicode"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

// Paragraph is one unit of output. Formatted paragraphs are wrapped to the
// player's screen width; unformatted ones keep their line structure.
type Paragraph struct {
	Text      string
	Formatted bool
}

// Options captures the per-player rendering settings.
type Options struct {
	Indent      int
	Width       int
	Styles      bool
	Smartquotes bool
}

// DefaultOptions matches a plain 72 column terminal with styles enabled.
func DefaultOptions() Options {
	return Options{Indent: 2, Width: 72, Styles: true, Smartquotes: true}
}

// Render renders paragraphs to a single string. Every paragraph ends with a
// newline.
//
// Postcondition: each line of a formatted paragraph has a visible width of at
// most opts.Width, unless a single word is wider than the wrap width.
func Render(paragraphs []Paragraph, opts Options) string {
	var b strings.Builder
	for _, p := range paragraphs {
		b.WriteString(renderParagraph(p, opts))
	}
	out := b.String()
	if opts.Smartquotes {
		out = Smartquotes(out)
	}
	return out
}

func renderParagraph(p Paragraph, opts Options) string {
	text := ApplyStyles(p.Text, opts.Styles)
	if opts.Styles && strings.Contains(text, "\033[") {
		text += Reset
	}
	pad := opts.Indent
	if pad < 0 {
		pad = 0
	}
	if !p.Formatted {
		return indent.String(strings.TrimRight(text, "\n"), uint(pad)) + "\n"
	}
	text = fixSentenceEndings(collapseNewlines(text))
	limit := opts.Width - pad
	if limit < 10 {
		limit = 10
	}
	w := wordwrap.NewWriter(limit)
	w.Breakpoints = nil
	_, _ = w.Write([]byte(text))
	_ = w.Close()
	return indent.String(w.String(), uint(pad)) + "\n"
}

// collapseNewlines joins the lines of a formatted paragraph into one run of
// text so the wrapper decides where lines break.
func collapseNewlines(s string) string {
	s = strings.TrimSpace(s)
	return strings.ReplaceAll(s, "\n", " ")
}

// fixSentenceEndings puts two spaces after a sentence ending in a lowercase
// letter followed by '.', '!' or '?' (and an optional closing quote).
func fixSentenceEndings(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(r); i++ {
		b.WriteRune(r[i])
		if r[i] != ' ' || i == 0 || i+1 >= len(r) || r[i+1] == ' ' {
			continue
		}
		j := i - 1
		if r[j] == '"' || r[j] == '\'' {
			j--
		}
		if j < 1 || !strings.ContainsRune(".!?", r[j]) {
			continue
		}
		if unicode.IsLower(r[j-1]) {
			b.WriteRune(' ')
		}
	}
	return b.String()
}

// VisibleWidth returns the number of terminal cells s occupies, ignoring
// ANSI sequences and style tags.
func VisibleWidth(s string) int {
	return ansi.PrintableRuneWidth(StripTags(s))
}

// Smartquotes replaces straight quotes with typographic ones. Double quotes
// alternate between opening and closing based on the preceding character,
// apostrophes inside words become right single quotes.
func Smartquotes(s string) string {
	r := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i, c := range r {
		var prev rune = ' '
		if i > 0 {
			prev = r[i-1]
		}
		opening := unicode.IsSpace(prev) || strings.ContainsRune("([{-", prev)
		switch c {
		case '"':
			if opening {
				b.WriteRune('“')
			} else {
				b.WriteRune('”')
			}
		case '\'':
			if opening && i+1 < len(r) && !unicode.IsSpace(r[i+1]) {
				b.WriteRune('‘')
			} else {
				b.WriteRune('’')
			}
		default:
			b.WriteRune(c)
		}
	}
	return b.String()
}
