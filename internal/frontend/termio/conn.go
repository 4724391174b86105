// Package termio puts a line editing terminal on top of a byte stream
// for the frontends that talk to a terminal: the SSH server and the
// local console.
package termio

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync/atomic"

	"golang.org/x/term"

	"github.com/cory-johannsen/tale/internal/driver"
)

// CtrlC is the byte a terminal in raw mode sends for an interrupt.
const CtrlC byte = 3

var _ driver.Conn = (*Conn)(nil)

// breakDetector notes Ctrl-C in the input stream. The terminal reports it
// as io.EOF, the same as Ctrl-D, so the session could not tell them apart
// otherwise.
type breakDetector struct {
	io.ReadWriter
	hit atomic.Bool
}

func (b *breakDetector) Read(p []byte) (int, error) {
	n, err := b.ReadWriter.Read(p)
	if bytes.IndexByte(p[:n], CtrlC) >= 0 {
		b.hit.Store(true)
	}
	return n, err
}

// Conn is a driver.Conn over a terminal.
type Conn struct {
	term   *term.Terminal
	brk    *breakDetector
	addr   string
	styles bool
	closer func() error
}

// New returns a Conn reading and writing rw. closer is called by Close
// and may be nil.
func New(rw io.ReadWriter, addr string, styles bool, closer func() error) *Conn {
	brk := &breakDetector{ReadWriter: rw}
	return &Conn{
		term:   term.NewTerminal(brk, ""),
		brk:    brk,
		addr:   addr,
		styles: styles,
		closer: closer,
	}
}

// SetSize tells the line editor the terminal size.
func (c *Conn) SetSize(width, height int) error {
	return c.term.SetSize(width, height)
}

func (c *Conn) ReadLine() (string, error) {
	line, err := c.term.ReadLine()
	if c.brk.hit.Swap(false) && errors.Is(err, io.EOF) {
		return "", driver.ErrInterrupted
	}
	return line, err
}

func (c *Conn) ReadPassword(prompt string) (string, error) {
	pw, err := c.term.ReadPassword(prompt)
	if c.brk.hit.Swap(false) && errors.Is(err, io.EOF) {
		return "", driver.ErrInterrupted
	}
	return pw, err
}

func (c *Conn) WriteText(text string) error {
	_, err := c.term.Write([]byte(text))
	return err
}

// WritePrompt makes the last line of prompt the terminal's prompt and
// writes the lines before it. Writing redraws the prompt below the text.
func (c *Conn) WritePrompt(prompt string) error {
	i := strings.LastIndexByte(prompt, '\n')
	c.term.SetPrompt(prompt[i+1:])
	_, err := c.term.Write([]byte(prompt[:i+1]))
	return err
}

func (c *Conn) Styles() bool { return c.styles }

func (c *Conn) RemoteAddr() string { return c.addr }

func (c *Conn) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}
