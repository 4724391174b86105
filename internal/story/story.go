package story

import (
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cory-johannsen/tale/internal/game/world"
)

// Host is what the driver exposes to a story while it initializes.
type Host interface {
	World() *world.World
	Scheduler() world.Scheduler
	Mode() Mode
}

// Story is the set of hooks the driver calls at the key moments of a game.
type Story interface {
	Config() *Config
	VFS() *VFS
	// Init is called once, after the driver is set up and before any
	// player connects. It builds the world.
	Init(h Host) error
	// InitPlayer is called for every new or restored player.
	InitPlayer(p *world.Player)
	Welcome(p *world.Player)
	WelcomeSavegame(p *world.Player)
	Goodbye(p *world.Player)
	Completion(p *world.Player)
	// Motd returns the message of the day, or "" when there is none.
	Motd() string
}

// DataStory implements Story from story.yaml and the story's files.
// Go stories embed it and override the hooks they need.
type DataStory struct {
	cfg   *Config
	vfs   *VFS
	Zones []*Zone
}

// NewDataStory returns the data driven story for cfg and vfs.
func NewDataStory(cfg *Config, vfs *VFS) *DataStory {
	return &DataStory{cfg: cfg, vfs: vfs}
}

func (s *DataStory) Config() *Config { return s.cfg }
func (s *DataStory) VFS() *VFS       { return s.vfs }

// Init loads the zones, checks the start locations and registers the
// heartbeats the zones asked for.
func (s *DataStory) Init(h Host) error {
	if !s.cfg.Supports(h.Mode()) {
		return fmt.Errorf("story %q does not support %s mode", s.cfg.Name, h.Mode())
	}
	w := h.World()
	zones, err := LoadZones(w, s.vfs)
	if err != nil {
		return err
	}
	s.Zones = zones
	for _, p := range []string{s.cfg.StartlocationPlayer, s.cfg.StartlocationWizard} {
		if world.AsLocation(w.ByPath(p)) == nil {
			return fmt.Errorf("start location %q is not a location", p)
		}
	}
	now := w.Clock.Now()
	for _, z := range zones {
		for _, id := range z.Heartbeats {
			h.Scheduler().RegisterHeartbeat(id)
		}
		for _, id := range z.Announcers {
			var every time.Duration
			switch n := w.Get(id).(type) {
			case *world.NPC:
				every = n.AnnounceEvery
			case *world.Monster:
				every = n.AnnounceEvery
			}
			h.Scheduler().Defer(now.Add(every), id, world.ActionAnnounce, 0)
		}
	}
	return nil
}

// InitPlayer gives the player the story's hints.
func (s *DataStory) InitPlayer(p *world.Player) {
	p.Hints.Init(s.cfg.Hints)
}

// Welcome greets a player starting a new game.
func (s *DataStory) Welcome(p *world.Player) {
	p.Tell(fmt.Sprintf("<bright>Welcome to %s.</>", s.cfg.Name), world.End)
	s.tellFile(p, s.cfg.WelcomeFile)
}

// WelcomeSavegame greets a player continuing a saved game.
func (s *DataStory) WelcomeSavegame(p *world.Player) {
	p.Tell(fmt.Sprintf("<bright>Welcome back to %s.</>", s.cfg.Name), world.End)
	s.tellFile(p, s.cfg.WelcomeFile)
}

func (s *DataStory) Goodbye(p *world.Player) {
	if s.cfg.GoodbyeFile != "" {
		s.tellFile(p, s.cfg.GoodbyeFile)
		return
	}
	p.Tell(fmt.Sprintf("Goodbye, %s. Please come back again soon.", p.Title()), world.End)
	p.Tell("\n")
}

func (s *DataStory) Completion(p *world.Player) {
	if s.cfg.CompletionFile != "" {
		s.tellFile(p, s.cfg.CompletionFile)
		return
	}
	p.Tell("<bright>Congratulations! You've finished the game!</>", world.End)
}

func (s *DataStory) Motd() string {
	if s.cfg.MotdFile == "" {
		return ""
	}
	text, err := s.vfs.LoadText(s.cfg.MotdFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// tellFile tells the contents of a story file followed by an empty
// paragraph. Missing files are skipped.
func (s *DataStory) tellFile(p *world.Player, rel string) {
	if rel == "" {
		return
	}
	text, err := s.vfs.LoadText(rel)
	if err != nil {
		return
	}
	p.Tell("\n")
	p.Tell(strings.TrimSpace(text), world.End)
	p.Tell("\n")
}

// Factory wraps the data driven story of a Go story.
type Factory func(base *DataStory) Story

type registration struct {
	files   fs.FS
	factory Factory
}

var (
	registryMu sync.Mutex
	registry   = map[string]registration{}
)

// Register makes a Go story available under name. files, when not nil,
// are the story's embedded files, which lets Open find the story by name
// alone. Registering a name twice panics.
func Register(name string, files fs.FS, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("story: Register called twice for " + name)
	}
	registry[name] = registration{files: files, factory: f}
}

// Registered returns the names of the registered Go stories, sorted.
func Registered() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func lookup(name string) (registration, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	r, ok := registry[name]
	return r, ok
}

// Open loads the story at location, which is either the name of a
// registered story with embedded files or a directory on disk. When the
// story's config names hooks, the registered factory wraps the data story.
func Open(location string) (Story, error) {
	var vfs *VFS
	if r, ok := lookup(location); ok && r.files != nil {
		vfs = NewReadOnlyVFS(r.files)
	} else {
		vfs = NewVFS(location)
	}
	cfg, err := LoadConfig(vfs)
	if err != nil {
		return nil, fmt.Errorf("opening story %s: %w", location, err)
	}
	base := NewDataStory(cfg, vfs)
	if cfg.Hooks == "" {
		return base, nil
	}
	r, ok := lookup(cfg.Hooks)
	if !ok || r.factory == nil {
		return nil, fmt.Errorf("opening story %s: no story registered as %q", location, cfg.Hooks)
	}
	return r.factory(base), nil
}
