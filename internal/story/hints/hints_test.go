package hints_test

import (
	"testing"

	"github.com/cory-johannsen/tale/internal/story/hints"
	"github.com/stretchr/testify/assert"
)

func demoHints() *hints.System {
	return hints.New([]hints.Hint{
		{Text: "Find a way to open the door that leads to the exit of the game."},
		{Checkpoint: "unlocked_enddoor", Text: "Step out through the door into the freedom!"},
		{Location: "Attic", Text: "Look under the floorboards."},
	})
}

func TestHint_Progression(t *testing.T) {
	s := demoHints()
	assert.True(t, s.HasHints())
	assert.Equal(t, "Find a way to open the door that leads to the exit of the game.", s.Hint("Town square"))
	assert.Equal(t, "Look under the floorboards.", s.Hint("Attic"))

	assert.True(t, s.Checkpoint("unlocked_enddoor", "You unlocked the door."))
	assert.False(t, s.Checkpoint("unlocked_enddoor", "again"))
	assert.Equal(t, "Step out through the door into the freedom!", s.Hint("Attic"))
	assert.Equal(t, []string{"You unlocked the door."}, s.Recap())
}

func TestHint_None(t *testing.T) {
	s := hints.New(nil)
	assert.False(t, s.HasHints())
	assert.Empty(t, s.Hint("anywhere"))
	assert.Empty(t, s.Recap())
}

func TestState_RoundTrip(t *testing.T) {
	s := demoHints()
	s.Checkpoint("a", "first")
	s.Checkpoint("b", "")
	restored := demoHints()
	restored.Restore(s.State())
	assert.True(t, restored.Reached("a"))
	assert.True(t, restored.Reached("b"))
	assert.False(t, restored.Reached("c"))
	assert.Equal(t, []string{"first"}, restored.Recap())
}
