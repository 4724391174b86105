package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
		ok   bool
	}{
		{"parse", errs.Parse("What do you mean?"), "What do you mean?", true},
		{"refused", errs.Refused("It's %s.", "locked"), "It's locked.", true},
		{"wrapped refused", fmt.Errorf("open door: %w", errs.Refused("nope")), "nope", true},
		{"security", &errs.SecurityViolation{Msg: "Wizard privilege required for verb !ls"}, "Wizard privilege required for verb !ls", true},
		{"session exit", errs.ErrSessionExit, "", false},
		{"internal", errors.New("boom"), "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := errs.UserMessage(tt.err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestPredicates(t *testing.T) {
	assert.True(t, errs.IsRefused(errs.Refused("x")))
	assert.False(t, errs.IsRefused(errs.Parse("x")))
	assert.True(t, errs.IsParse(fmt.Errorf("wrap: %w", errs.Parse("x"))))
	assert.Equal(t, "unknown verb: frob", (&errs.UnknownVerb{Verb: "frob"}).Error())
}
