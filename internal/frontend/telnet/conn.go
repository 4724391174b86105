// Package telnet serves the MUD over raw telnet connections.
package telnet

import (
	"bufio"
	"bytes"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/cory-johannsen/tale/internal/driver"
)

// Telnet IAC (Interpret As Command) constants per RFC 854.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	GA   byte = 249 // Go Ahead
	IP   byte = 244 // Interrupt Process
	BRK  byte = 243
	NOP  byte = 241
	SE   byte = 240 // Sub-negotiation End

	// Telnet options
	OptEcho            byte = 1
	OptSuppressGoAhead byte = 3
	OptLinemode        byte = 34
)

// ctrlC is what clients in character mode send for an interrupt.
const ctrlC byte = 3

var _ driver.Conn = (*Conn)(nil)

// Conn wraps a TCP connection with Telnet protocol handling.
// It filters IAC sequences from input and provides line-based reading.
type Conn struct {
	raw    net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	readTimeout  time.Duration
	writeTimeout time.Duration
}

// NewConn wraps a raw TCP connection with Telnet protocol handling.
//
// Precondition: raw must be a valid, open network connection.
// Postcondition: Returns a Conn ready for reading and writing.
func NewConn(raw net.Conn, readTimeout, writeTimeout time.Duration) *Conn {
	return &Conn{
		raw:          raw,
		reader:       bufio.NewReaderSize(raw, 4096),
		readTimeout:  readTimeout,
		writeTimeout: writeTimeout,
	}
}

// Negotiate asks the client to suppress go-ahead.
//
// Postcondition: Negotiation bytes are written to the connection.
func (c *Conn) Negotiate() error {
	return c.write([]byte{IAC, WILL, OptSuppressGoAhead})
}

// ReadLine reads a single line of input, filtering Telnet IAC sequences.
// The returned line does not include the trailing \r\n. An interrupt from
// the client discards the partial line and returns driver.ErrInterrupted.
//
// Postcondition: Returns the next line of text input, or an error (including io.EOF).
func (c *Conn) ReadLine() (string, error) {
	if c.readTimeout > 0 {
		_ = c.raw.SetReadDeadline(time.Now().Add(c.readTimeout))
	}

	var line bytes.Buffer
	for {
		b, err := c.reader.ReadByte()
		if err != nil {
			return line.String(), err
		}

		if b == IAC {
			interrupted, err := c.handleIAC()
			if err != nil {
				return line.String(), err
			}
			if interrupted {
				return "", driver.ErrInterrupted
			}
			continue
		}

		if b == ctrlC {
			return "", driver.ErrInterrupted
		}
		if b == '\n' {
			break
		}
		if b == '\r' {
			next, err := c.reader.Peek(1)
			if err == nil && len(next) > 0 && (next[0] == '\n' || next[0] == 0) {
				_, _ = c.reader.ReadByte()
			}
			break
		}

		// Filter control characters except tab
		if b < 32 && b != '\t' {
			continue
		}

		line.WriteByte(b)
	}

	return line.String(), nil
}

// handleIAC processes a Telnet IAC sequence after the initial IAC byte
// has been read. It reports whether the sequence was an interrupt.
func (c *Conn) handleIAC() (bool, error) {
	cmd, err := c.reader.ReadByte()
	if err != nil {
		return false, err
	}

	switch cmd {
	case WILL, WONT, DO, DONT:
		// These commands have one option byte following
		_, err := c.reader.ReadByte()
		return false, err
	case SB:
		// Sub-negotiation: read until IAC SE
		for {
			b, err := c.reader.ReadByte()
			if err != nil {
				return false, err
			}
			if b != IAC {
				continue
			}
			next, err := c.reader.ReadByte()
			if err != nil {
				return false, err
			}
			if next == SE {
				return false, nil
			}
		}
	case IP, BRK:
		return true, nil
	}
	// Escaped IAC and the remaining commands carry no text.
	return false, nil
}

// ReadPassword writes prompt and reads a line with client echo
// suppressed. It sends IAC WILL Echo before reading and IAC WONT Echo
// after, then moves the cursor past the hidden input.
//
// Postcondition: Returns the input with echo restored.
func (c *Conn) ReadPassword(prompt string) (string, error) {
	if err := c.WritePrompt(prompt); err != nil {
		return "", err
	}
	if err := c.write([]byte{IAC, WILL, OptEcho}); err != nil {
		return "", err
	}

	line, err := c.ReadLine()

	// Always restore echo, even on error
	_ = c.write([]byte{IAC, WONT, OptEcho})
	_ = c.write([]byte("\r\n"))

	return line, err
}

// WriteText sends text with every newline translated to \r\n.
func (c *Conn) WriteText(text string) error {
	return c.write([]byte(crlf(text)))
}

// WritePrompt sends a prompt string without a trailing newline.
//
// Postcondition: The prompt text is written to the connection.
func (c *Conn) WritePrompt(prompt string) error {
	return c.write([]byte(crlf(prompt)))
}

// Styles reports that telnet clients get ANSI styles.
func (c *Conn) Styles() bool { return true }

// Close closes the underlying TCP connection.
//
// Postcondition: The connection is closed and no longer usable.
func (c *Conn) Close() error {
	return c.raw.Close()
}

// RemoteAddr returns the remote network address of the client.
func (c *Conn) RemoteAddr() string {
	return c.raw.RemoteAddr().String()
}

func (c *Conn) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.writeTimeout > 0 {
		_ = c.raw.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	_, err := c.raw.Write(data)
	return err
}

// crlf turns bare newlines into the telnet line ending.
func crlf(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
