// Package savegame captures the state of a game in progress and restores
// it into a freshly loaded world. Objects are identified by their stable
// zone paths, so a savegame only records where things are now.
package savegame

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/cory-johannsen/tale/internal/game/races"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/story/hints"
)

// FormatVersion is bumped whenever the snapshot layout changes.
const FormatVersion = 1

// ErrSavegameNotFound is returned by stores that hold no savegame under
// the requested key.
var ErrSavegameNotFound = errors.New("savegame not found")

// ErrIncompatible is returned when a savegame was written for another
// story or by an incompatible engine.
var ErrIncompatible = errors.New("savegame is not compatible")

// Store persists snapshots under a key, usually the player's name.
type Store interface {
	Save(ctx context.Context, key string, s *Snapshot) error
	// Load returns ErrSavegameNotFound when nothing was saved under key.
	Load(ctx context.Context, key string) (*Snapshot, error)
	Delete(ctx context.Context, key string) error
}

// Snapshot is the serialized form of one saved game.
type Snapshot struct {
	ID           uuid.UUID   `json:"id"`
	Format       int         `json:"format"`
	Story        string      `json:"story"`
	StoryVersion string      `json:"story_version"`
	SavedAt      time.Time   `json:"saved_at"`
	Clock        time.Time   `json:"clock"`
	Player       PlayerState `json:"player"`
	Items        []Placement `json:"items"`
	Livings      []Placement `json:"livings"`
	Doors        []DoorState `json:"doors"`
	Deferreds    []Deferred  `json:"deferreds,omitempty"`
}

// PlayerState is everything about the player that is not derived from
// the story.
type PlayerState struct {
	Name           string      `json:"name"`
	Gender         lang.Gender `json:"gender"`
	Race           string      `json:"race"`
	Description    string      `json:"description,omitempty"`
	Stats          races.Stats `json:"stats"`
	Money          float64     `json:"money"`
	Privileges     []string    `json:"privileges,omitempty"`
	Location       string      `json:"location"`
	KnownLocations []string    `json:"known_locations,omitempty"`
	Brief          int         `json:"brief"`
	ScreenWidth    int         `json:"screen_width"`
	ScreenIndent   int         `json:"screen_indent"`
	ScreenStyles   bool        `json:"screen_styles"`
	Smartquotes    bool        `json:"smartquotes"`
	Hints          hints.State `json:"hints"`
}

// PlayerHolder is the holder path used for things the player carries.
const PlayerHolder = "@player"

// Placement records which holder an object is in.
type Placement struct {
	Path   string `json:"path"`
	Holder string `json:"holder"`
}

// DoorState identifies a door by its location and first direction.
type DoorState struct {
	Location  string `json:"location"`
	Direction string `json:"direction"`
	Opened    bool   `json:"opened"`
	Locked    bool   `json:"locked"`
}

// Deferred is a pending deferred action owned by an object with a path.
// Arguments must survive a JSON round trip; numbers come back as float64.
type Deferred struct {
	Due    time.Time `json:"due"`
	Owner  string    `json:"owner"`
	Action string    `json:"action"`
	Args   []any     `json:"args,omitempty"`
}

// Capture snapshots the world as seen by p. Objects without a path, such
// as clones made by a wizard, are not saved.
//
// Precondition: p is in a location that has a path.
func Capture(w *world.World, p *world.Player, storyName, storyVersion string, deferreds []Deferred) (*Snapshot, error) {
	loc := p.Location()
	if loc == nil || loc.Path == "" {
		return nil, fmt.Errorf("savegame: %s is not in a saveable location", p.Core())
	}
	s := &Snapshot{
		ID:           uuid.New(),
		Format:       FormatVersion,
		Story:        storyName,
		StoryVersion: storyVersion,
		SavedAt:      time.Now().UTC(),
		Clock:        w.Clock.Now(),
		Player:       capturePlayer(w, p, loc),
		Deferreds:    deferreds,
	}
	for _, path := range w.Paths() {
		o := w.ByPath(path)
		switch {
		case world.AsItem(o) != nil:
			s.Items = append(s.Items, Placement{Path: path, Holder: holderPath(world.AsItem(o).ContainedIn(), p)})
		case world.AsLiving(o) != nil:
			if where := world.AsLiving(o).Location(); where != nil {
				s.Livings = append(s.Livings, Placement{Path: path, Holder: where.Path})
			}
		case world.AsLocation(o) != nil:
			s.Doors = append(s.Doors, captureDoors(world.AsLocation(o))...)
		}
	}
	return s, nil
}

func capturePlayer(w *world.World, p *world.Player, loc *world.Location) PlayerState {
	ps := PlayerState{
		Name:         p.Name,
		Gender:       p.Gender,
		Race:         p.Race,
		Description:  p.Description(),
		Stats:        p.Stats,
		Money:        p.Money,
		Location:     loc.Path,
		Brief:        p.Brief,
		ScreenWidth:  p.ScreenWidth,
		ScreenIndent: p.ScreenIndent,
		ScreenStyles: p.ScreenStyles,
		Smartquotes:  p.Smartquotes,
		Hints:        p.Hints.State(),
	}
	for priv, on := range p.Privileges {
		if on {
			ps.Privileges = append(ps.Privileges, priv)
		}
	}
	sort.Strings(ps.Privileges)
	for id := range p.KnownLocations {
		if l := w.Location(id); l != nil && l.Path != "" {
			ps.KnownLocations = append(ps.KnownLocations, l.Path)
		}
	}
	sort.Strings(ps.KnownLocations)
	return ps
}

// holderPath names the holder of an item; "" means Limbo or nowhere.
func holderPath(h world.Object, p *world.Player) string {
	switch {
	case h == nil:
		return ""
	case h.Core().ID == p.ID:
		return PlayerHolder
	case h.Core().ID == world.LimboID:
		return ""
	}
	return h.Core().Path
}

func captureDoors(loc *world.Location) []DoorState {
	var out []DoorState
	for _, ex := range loc.UniqueExits() {
		d, ok := ex.(*world.Door)
		if !ok || len(d.Directions) == 0 {
			continue
		}
		out = append(out, DoorState{Location: loc.Path, Direction: d.Directions[0], Opened: d.Opened, Locked: d.Locked})
	}
	return out
}

// Restore recreates the player of s in w and moves everything back to
// where it was. w must be freshly loaded from the same story.
//
// Postcondition: the clock is set to the saved game time and the returned
// player is in its saved location.
func Restore(w *world.World, s *Snapshot, storyName string) (*world.Player, error) {
	if s.Format != FormatVersion || s.Story != storyName {
		return nil, fmt.Errorf("%w: format %d of story %q", ErrIncompatible, s.Format, s.Story)
	}
	ps := s.Player
	loc := world.AsLocation(w.ByPath(ps.Location))
	if loc == nil {
		return nil, fmt.Errorf("savegame: location %q no longer exists", ps.Location)
	}
	p, err := w.NewPlayer(ps.Name, ps.Gender, ps.Race, ps.Description)
	if err != nil {
		return nil, fmt.Errorf("savegame: recreating player: %w", err)
	}
	p.Stats = ps.Stats
	p.Money = ps.Money
	for _, priv := range ps.Privileges {
		p.Privileges[priv] = true
	}
	p.Brief = ps.Brief
	p.ScreenWidth = ps.ScreenWidth
	p.ScreenIndent = ps.ScreenIndent
	p.ScreenStyles = ps.ScreenStyles
	p.Smartquotes = ps.Smartquotes
	p.Hints.Restore(ps.Hints)
	for _, path := range ps.KnownLocations {
		if l := world.AsLocation(w.ByPath(path)); l != nil {
			p.KnownLocations[l.ID] = true
		}
	}
	if err := w.Place(p, loc); err != nil {
		return nil, err
	}

	for _, pl := range append(append([]Placement(nil), s.Livings...), s.Items...) {
		o := w.ByPath(pl.Path)
		if o == nil {
			continue
		}
		var holder world.Object
		switch pl.Holder {
		case "":
			holder = w.Limbo()
		case PlayerHolder:
			holder = p
		default:
			holder = w.ByPath(pl.Holder)
		}
		if holder == nil {
			return nil, fmt.Errorf("savegame: holder %q of %s no longer exists", pl.Holder, pl.Path)
		}
		if err := w.Place(o, holder); err != nil {
			return nil, fmt.Errorf("savegame: %w", err)
		}
	}
	for _, ds := range s.Doors {
		l := world.AsLocation(w.ByPath(ds.Location))
		if l == nil {
			continue
		}
		if d, ok := l.Exit(ds.Direction).(*world.Door); ok {
			d.Opened, d.Locked = ds.Opened, ds.Locked
		}
	}
	w.Clock.Set(s.Clock)
	return p, nil
}

// Marshal encodes s as JSON.
func Marshal(s *Snapshot) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding savegame: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a snapshot written by Marshal.
func Unmarshal(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding savegame: %w", err)
	}
	return &s, nil
}
