// Package console connects the local terminal to the driver for single
// player games.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"

	"github.com/cory-johannsen/tale/internal/driver"
	"github.com/cory-johannsen/tale/internal/frontend/termio"
)

// Addr is the remote address reported for the console.
const Addr = "console"

// Open returns a Conn for in and out. When both are terminals, in is put
// in raw mode for line editing, and Close restores it. Otherwise lines are
// read as they come, which suits piped input.
func Open(in, out *os.File) (driver.Conn, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) || !term.IsTerminal(int(out.Fd())) {
		return NewLineConn(in, out), nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("console raw mode: %w", err)
	}
	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	c := termio.New(rw, Addr, true, func() error { return term.Restore(fd, state) })
	if w, h, err := term.GetSize(int(out.Fd())); err == nil {
		_ = c.SetSize(w, h)
	}
	return c, nil
}

// LineConn reads plain lines and writes unstyled text.
type LineConn struct {
	in  *bufio.Reader
	mu  sync.Mutex
	out io.Writer
}

// NewLineConn returns a LineConn on in and out.
func NewLineConn(in io.Reader, out io.Writer) *LineConn {
	return &LineConn{in: bufio.NewReader(in), out: out}
}

func (c *LineConn) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	return strings.TrimRight(line, "\r\n"), err
}

func (c *LineConn) ReadPassword(prompt string) (string, error) {
	if err := c.WritePrompt(prompt); err != nil {
		return "", err
	}
	return c.ReadLine()
}

func (c *LineConn) WriteText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := io.WriteString(c.out, text)
	return err
}

func (c *LineConn) WritePrompt(prompt string) error { return c.WriteText(prompt) }
func (c *LineConn) Styles() bool                    { return false }
func (c *LineConn) RemoteAddr() string              { return Addr }
func (c *LineConn) Close() error                    { return nil }
