// Package hints tracks a player's progress through story checkpoints and
// selects the clue to give on request.
package hints

import "strings"

// Hint is a clue that becomes available once its checkpoint is reached.
// An empty Checkpoint is reached from the start; an empty Location
// applies anywhere.
type Hint struct {
	Checkpoint string `yaml:"checkpoint" json:"checkpoint"`
	Location   string `yaml:"location" json:"location"`
	Text       string `yaml:"text" json:"text"`
}

// State is the persisted progress of one player.
type State struct {
	Checkpoints []string `json:"checkpoints"`
	Recap       []string `json:"recap"`
}

// System holds the hints of a story and the progress of one player.
type System struct {
	hints       []Hint
	checkpoints []string
	recap       []string
}

// New returns a System with the given hints and no checkpoints reached.
func New(hs []Hint) *System {
	return &System{hints: append([]Hint(nil), hs...)}
}

// Init replaces the hints, keeping progress.
func (s *System) Init(hs []Hint) {
	s.hints = append([]Hint(nil), hs...)
}

// HasHints reports whether any hints are defined.
func (s *System) HasHints() bool { return len(s.hints) > 0 }

// Checkpoint marks name as reached and appends recap to the story so far.
// It reports whether the checkpoint is new.
func (s *System) Checkpoint(name, recap string) bool {
	for _, c := range s.checkpoints {
		if c == name {
			return false
		}
	}
	s.checkpoints = append(s.checkpoints, name)
	if recap = strings.TrimSpace(recap); recap != "" {
		s.recap = append(s.recap, recap)
	}
	return true
}

// Reached reports whether checkpoint name was reached.
func (s *System) Reached(name string) bool {
	if name == "" {
		return true
	}
	for _, c := range s.checkpoints {
		if c == name {
			return true
		}
	}
	return false
}

// Hint returns the clue for a player standing in location, or "" when
// there is nothing to say. Hints of the most recently reached checkpoint
// win, and among those location specific ones win.
func (s *System) Hint(location string) string {
	rank := func(cp string) int {
		if cp == "" {
			return 0
		}
		for i, c := range s.checkpoints {
			if c == cp {
				return i + 1
			}
		}
		return -1
	}
	best := -1
	var texts []string
	var local bool
	for _, h := range s.hints {
		r := rank(h.Checkpoint)
		if r < 0 || (h.Location != "" && h.Location != location) {
			continue
		}
		isLocal := h.Location != ""
		switch {
		case r > best || (r == best && isLocal && !local):
			best, local, texts = r, isLocal, []string{h.Text}
		case r == best && isLocal == local:
			texts = append(texts, h.Text)
		}
	}
	return strings.Join(texts, " ")
}

// Recap returns the recap messages in the order their checkpoints were reached.
func (s *System) Recap() []string { return append([]string(nil), s.recap...) }

// State returns the progress for saving.
func (s *System) State() State {
	return State{
		Checkpoints: append([]string(nil), s.checkpoints...),
		Recap:       s.Recap(),
	}
}

// Restore replaces the progress with a saved state.
func (s *System) Restore(st State) {
	s.checkpoints = append([]string(nil), st.Checkpoints...)
	s.recap = append([]string(nil), st.Recap...)
}
