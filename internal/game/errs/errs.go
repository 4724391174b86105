// Package errs defines the error categories shared by the parser, the object
// model, the command dispatcher and the driver.
//
// ParseError and ActionRefused are user facing: their message is shown to the
// player verbatim and the session continues. SecurityViolation is shown and
// audit-logged. ErrSessionExit and ErrStoryCompleted are control signals that
// unwind a session. Anything else is an internal error.
package errs

import (
	"errors"
	"fmt"
)

// ErrSessionExit signals a clean termination of the player's session.
var ErrSessionExit = errors.New("session exit")

// ErrStoryCompleted signals that the story has been completed by the player.
var ErrStoryCompleted = errors.New("story completed")

// ParseError reports that the input was not understood.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

// ActionRefused reports that the input was understood but is not permitted.
type ActionRefused struct {
	Msg string
}

func (e *ActionRefused) Error() string { return e.Msg }

// UnknownVerb reports that neither the soul nor the command registry knows the verb.
// The dispatcher rewrites it into a ParseError("What do you mean?").
type UnknownVerb struct {
	Verb string
}

func (e *UnknownVerb) Error() string { return "unknown verb: " + e.Verb }

// SecurityViolation reports a privileged verb invoked without the required privilege.
type SecurityViolation struct {
	Msg string
}

func (e *SecurityViolation) Error() string { return e.Msg }

// Parse returns a *ParseError with a formatted message.
func Parse(format string, args ...any) error {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}

// Refused returns an *ActionRefused with a formatted message.
func Refused(format string, args ...any) error {
	return &ActionRefused{Msg: fmt.Sprintf(format, args...)}
}

// IsRefused reports whether err is (or wraps) an *ActionRefused.
func IsRefused(err error) bool {
	var ar *ActionRefused
	return errors.As(err, &ar)
}

// IsParse reports whether err is (or wraps) a *ParseError.
func IsParse(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// UserMessage returns the message to show the player for a user-facing error.
//
// Postcondition: ok is true iff err is a ParseError, ActionRefused or SecurityViolation.
func UserMessage(err error) (msg string, ok bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Msg, true
	}
	var ar *ActionRefused
	if errors.As(err, &ar) {
		return ar.Msg, true
	}
	var sv *SecurityViolation
	if errors.As(err, &sv) {
		return sv.Msg, true
	}
	return "", false
}

// IsUserFacing reports whether err carries a message meant for the player.
func IsUserFacing(err error) bool {
	_, ok := UserMessage(err)
	return ok
}
