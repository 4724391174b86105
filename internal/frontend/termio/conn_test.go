package termio

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/tale/internal/driver"
)

// script is a terminal that types input and records what is written.
type script struct {
	in  io.Reader
	mu  sync.Mutex
	out bytes.Buffer
}

func (s *script) Read(p []byte) (int, error) { return s.in.Read(p) }

func (s *script) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Write(p)
}

func (s *script) output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.String()
}

func TestConn_ReadLine(t *testing.T) {
	s := &script{in: strings.NewReader("look\rnorth\r")}
	c := New(s, "console", true, nil)

	line, err := c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "look", line)
	line, err = c.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "north", line)
	_, err = c.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestConn_CtrlCIsABreak(t *testing.T) {
	s := &script{in: io.MultiReader(bytes.NewReader([]byte{'x', CtrlC}), strings.NewReader("\x04"))}
	c := New(s, "console", false, nil)

	_, err := c.ReadLine()
	assert.ErrorIs(t, err, driver.ErrInterrupted)
	_, err = c.ReadLine()
	assert.ErrorIs(t, err, io.EOF, "ctrl-d on an empty line ends the input")
}

func TestConn_WritePrompt(t *testing.T) {
	s := &script{in: strings.NewReader("yes\r")}
	c := New(s, "console", true, nil)

	require.NoError(t, c.WriteText("Are you sure?\n"))
	require.NoError(t, c.WritePrompt("\n>> "))
	_, err := c.ReadLine()
	require.NoError(t, err)
	out := s.output()
	assert.Contains(t, out, "Are you sure?\r\n\r\n>> ")
	assert.Contains(t, out, "yes")
}

func TestConn_Close(t *testing.T) {
	closed := false
	c := New(&script{in: strings.NewReader("")}, "test", false, func() error {
		closed = true
		return nil
	})
	require.NoError(t, c.Close())
	assert.True(t, closed)
	assert.Equal(t, "test", c.RemoteAddr())
	assert.NoError(t, New(&script{in: strings.NewReader("")}, "", false, nil).Close())
}

func TestBreakDetector(t *testing.T) {
	b := &breakDetector{ReadWriter: &script{in: bytes.NewReader([]byte{'a', CtrlC, 'b'})}}
	buf := make([]byte, 8)
	n, err := b.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.True(t, b.hit.Load())
}
