package render

import "sync"

// Buffer accumulates the paragraphs written to one player between flushes.
// Consecutive formatted texts that are not ended join into one paragraph.
type Buffer struct {
	mu         sync.Mutex
	paragraphs []Paragraph
	open       bool
}

// Print appends text to the buffer. A text of exactly "\n" inserts an empty
// paragraph. When end is true the current paragraph is closed after text.
func (b *Buffer) Print(text string, end, formatted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if text == "\n" {
		b.paragraphs = append(b.paragraphs, Paragraph{Formatted: true})
		b.open = false
		return
	}
	n := len(b.paragraphs)
	if !b.open || n == 0 || b.paragraphs[n-1].Formatted != formatted {
		b.paragraphs = append(b.paragraphs, Paragraph{Text: text, Formatted: formatted})
	} else {
		sep := " "
		if !formatted {
			sep = "\n"
		}
		b.paragraphs[n-1].Text += sep + text
	}
	b.open = !end
}

// Paragraphs returns the buffered paragraphs, emptying the buffer when clear
// is set.
func (b *Buffer) Paragraphs(clear bool) []Paragraph {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Paragraph, len(b.paragraphs))
	copy(out, b.paragraphs)
	if clear {
		b.paragraphs = nil
		b.open = false
	}
	return out
}

// Raw returns the buffered paragraph texts with style tags intact.
func (b *Buffer) Raw(clear bool) []string {
	ps := b.Paragraphs(clear)
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.Text
	}
	return out
}

// Len reports the number of buffered paragraphs.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.paragraphs)
}
