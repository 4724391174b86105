package telnet

import (
	"bufio"
	"bytes"
	"io"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/tale/internal/driver"
)

// inputConn returns a Conn that reads input and has no usable socket.
func inputConn(input []byte) *Conn {
	return &Conn{reader: bufio.NewReader(bytes.NewReader(input))}
}

func readLines(t *testing.T, c *Conn) []string {
	t.Helper()
	var lines []string
	for {
		line, err := c.ReadLine()
		if err == io.EOF {
			return lines
		}
		require.NoError(t, err)
		lines = append(lines, line)
	}
}

func TestReadLine_LineEndings(t *testing.T) {
	c := inputConn([]byte("one\r\ntwo\nthree\r\x00four\r\n"))
	assert.Equal(t, []string{"one", "two", "three", "four"}, readLines(t, c))
}

func TestReadLine_FiltersNegotiation(t *testing.T) {
	input := []byte{IAC, WILL, OptSuppressGoAhead, 'h', IAC, DO, OptLinemode, 'i', '\n'}
	assert.Equal(t, []string{"hi"}, readLines(t, inputConn(input)))
}

func TestReadLine_SubNegotiation(t *testing.T) {
	input := []byte{IAC, SB, 24, 0, 'x', 't', 'e', 'r', 'm', IAC, SE, 'z', '\n'}
	assert.Equal(t, []string{"z"}, readLines(t, inputConn(input)))
}

func TestReadLine_DropsControlCharacters(t *testing.T) {
	input := []byte{'a', 7, 'b', '\t', 'c', IAC, NOP, '\n'}
	assert.Equal(t, []string{"ab\tc"}, readLines(t, inputConn(input)))
}

func TestReadLine_Interrupts(t *testing.T) {
	for name, input := range map[string][]byte{
		"interrupt process": {'l', 'o', IAC, IP, 'o', 'k', '\n'},
		"break":             {'l', 'o', IAC, BRK, 'o', 'k', '\n'},
		"ctrl-c":            {'l', 'o', ctrlC, 'o', 'k', '\n'},
	} {
		t.Run(name, func(t *testing.T) {
			c := inputConn(input)
			_, err := c.ReadLine()
			assert.ErrorIs(t, err, driver.ErrInterrupted)
			line, err := c.ReadLine()
			require.NoError(t, err)
			assert.Equal(t, "ok", line, "the partial line is discarded")
		})
	}
}

func TestWriteText_TranslatesNewlines(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := NewConn(server, 0, time.Second)
	defer c.Close()

	go func() { _ = c.WriteText("one\ntwo\r\nthree\n") }()
	buf := make([]byte, 64)
	var got strings.Builder
	for got.Len() < len("one\r\ntwo\r\nthree\r\n") {
		n, err := client.Read(buf)
		require.NoError(t, err)
		got.Write(buf[:n])
	}
	assert.Equal(t, "one\r\ntwo\r\nthree\r\n", got.String())
}

func TestReadPassword_TogglesEcho(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()
	c := NewConn(server, 0, time.Second)
	defer c.Close()

	type result struct {
		pw  string
		err error
	}
	done := make(chan result, 1)
	go func() {
		pw, err := c.ReadPassword("Password: ")
		done <- result{pw, err}
	}()

	r := bufio.NewReader(client)
	want := append([]byte("Password: "), IAC, WILL, OptEcho)
	got := make([]byte, len(want))
	_, err := io.ReadFull(r, got)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	go func() { _, _ = client.Write([]byte("s3cret\r\n")) }()
	tail := make([]byte, 5)
	_, err = io.ReadFull(r, tail)
	require.NoError(t, err)
	assert.Equal(t, []byte{IAC, WONT, OptEcho, '\r', '\n'}, tail)

	res := <-done
	require.NoError(t, res.err)
	assert.Equal(t, "s3cret", res.pw)
}

// Property: printable input without IAC bytes reads back unchanged.
func TestPropertyReadLine_PrintablePassesThrough(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(0, 200).Draw(t, "length")
		input := make([]byte, length)
		for i := range input {
			input[i] = byte(rapid.IntRange(32, 254).Draw(t, "byte"))
		}
		line, err := inputConn(append(input, '\n')).ReadLine()
		if err != nil {
			t.Fatalf("reading: %v", err)
		}
		if line != string(input) {
			t.Fatalf("got %q, want %q", line, input)
		}
	})
}

// Property: a line read never contains IAC or control bytes other than tab.
func TestPropertyReadLine_OutputHasNoCommands(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		length := rapid.IntRange(0, 100).Draw(t, "length")
		input := make([]byte, length)
		for i := range input {
			input[i] = byte(rapid.IntRange(0, 255).Draw(t, "byte"))
		}
		c := inputConn(input)
		for {
			line, err := c.ReadLine()
			for _, b := range []byte(line) {
				if b == IAC || (b < 32 && b != '\t') {
					t.Fatalf("line %q contains byte %d", line, b)
				}
			}
			if err == io.EOF {
				return
			}
		}
	})
}
