// Package driver runs a story: it owns the game clock, the deferred
// queue, the heartbeat registry and the player sessions, and it is the
// only goroutine that touches the world.
package driver

import (
	"errors"
)

// ErrInterrupted is returned by Conn.ReadLine when the user pressed the
// break key. The session reports it and keeps reading.
var ErrInterrupted = errors.New("input interrupted")

// Conn is one connected user, seen from the driver. Telnet, SSH and the
// local console implement it.
//
// ReadLine and ReadPassword are only called from the session's reader
// goroutine; the Write methods only from its writer goroutine.
type Conn interface {
	// ReadLine blocks for the next line of input without its line ending.
	ReadLine() (string, error)
	// ReadPassword writes prompt and reads a line without echoing it.
	ReadPassword(prompt string) (string, error)
	// WriteText writes rendered text. The text carries its own newlines.
	WriteText(text string) error
	// WritePrompt writes the input prompt without a trailing newline.
	WritePrompt(prompt string) error
	// Styles reports whether the client understands ANSI styles.
	Styles() bool
	RemoteAddr() string
	Close() error
}
