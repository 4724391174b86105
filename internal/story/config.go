// Package story loads a story: its configuration, its zones and the text
// files it ships, and provides the hooks the driver calls at the key
// moments of a game.
package story

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/lang"
	"github.com/cory-johannsen/tale/internal/story/hints"
)

// EngineVersion is the version of the engine. Stories declare the
// major.minor they were written for in requires_engine.
const EngineVersion = "1.4.0"

// ConfigFile is the name of the story configuration inside the story root.
const ConfigFile = "story.yaml"

// Mode is the game mode the driver runs in.
type Mode string

const (
	ModeIF  Mode = "if"
	ModeMUD Mode = "mud"
)

// TickMethod selects how the driver advances time.
type TickMethod string

const (
	// TickTimer advances the clock on a real time interval.
	TickTimer TickMethod = "timer"
	// TickCommand advances the clock once per command.
	TickCommand TickMethod = "command"
)

// Config is the story configuration read from story.yaml.
type Config struct {
	Name           string `yaml:"name"`
	Author         string `yaml:"author"`
	AuthorAddress  string `yaml:"author_address"`
	Version        string `yaml:"version"`
	RequiresEngine string `yaml:"requires_engine"`
	SupportedModes []Mode `yaml:"supported_modes"`
	// Hooks names a story registered with Register. Empty means the
	// story is driven by its files only.
	Hooks string `yaml:"hooks"`

	PlayerName   string  `yaml:"player_name"`
	PlayerGender string  `yaml:"player_gender"`
	PlayerRace   string  `yaml:"player_race"`
	PlayerMoney  float64 `yaml:"player_money"`
	MoneyType    string  `yaml:"money_type"`

	ServerTickMethod   TickMethod `yaml:"server_tick_method"`
	ServerTickTime     float64    `yaml:"server_tick_time"`
	GametimeToRealtime float64    `yaml:"gametime_to_realtime"`
	MaxWaitHours       float64    `yaml:"max_wait_hours"`
	DisplayGametime    bool       `yaml:"display_gametime"`
	Epoch              time.Time  `yaml:"epoch"`

	StartlocationPlayer string `yaml:"startlocation_player"`
	StartlocationWizard string `yaml:"startlocation_wizard"`
	SavegamesEnabled    bool   `yaml:"savegames_enabled"`

	Hints          []hints.Hint `yaml:"hints"`
	WelcomeFile    string       `yaml:"welcome_file"`
	GoodbyeFile    string       `yaml:"goodbye_file"`
	CompletionFile string       `yaml:"completion_file"`
	MotdFile       string       `yaml:"motd_file"`
}

// DefaultConfig returns the values used for settings a story leaves out.
func DefaultConfig() Config {
	return Config{
		SupportedModes:     []Mode{ModeIF},
		PlayerRace:         "human",
		MoneyType:          string(money.Modern),
		ServerTickMethod:   TickTimer,
		ServerTickTime:     1.0,
		GametimeToRealtime: 1,
		MaxWaitHours:       2,
		DisplayGametime:    true,
	}
}

// ParseConfig decodes and validates a story configuration. Duplicate
// keys are rejected by the decoder.
//
// Postcondition: returns a validated Config or a non-nil error.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig reads story.yaml from the story's files.
func LoadConfig(vfs *VFS) (*Config, error) {
	data, err := vfs.LoadBytes(ConfigFile)
	if err != nil {
		return nil, err
	}
	return ParseConfig(data)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}
	if strings.TrimSpace(c.Name) == "" {
		add("name is required")
	}
	if len(c.SupportedModes) == 0 {
		add("supported_modes must list at least one mode")
	}
	seen := map[Mode]bool{}
	for _, m := range c.SupportedModes {
		if m != ModeIF && m != ModeMUD {
			add("supported_modes: unknown mode %q", m)
		}
		if seen[m] {
			add("supported_modes: duplicate mode %q", m)
		}
		seen[m] = true
	}
	if err := CheckEngineVersion(c.RequiresEngine); err != nil {
		add("%v", err)
	}
	switch c.MoneyType {
	case "", string(money.Modern), string(money.Fantasy):
	default:
		add("money_type must be modern, fantasy or empty, not %q", c.MoneyType)
	}
	if c.ServerTickMethod != TickTimer && c.ServerTickMethod != TickCommand {
		add("server_tick_method must be timer or command, not %q", c.ServerTickMethod)
	}
	if c.ServerTickTime <= 0 {
		add("server_tick_time must be positive")
	}
	if c.GametimeToRealtime < 0 {
		add("gametime_to_realtime must not be negative")
	}
	if c.MaxWaitHours < 0 {
		add("max_wait_hours must not be negative")
	}
	if c.PlayerGender != "" {
		if _, err := lang.ParseGender(c.PlayerGender); err != nil {
			add("player_gender: %v", err)
		}
	}
	if c.StartlocationPlayer == "" {
		add("startlocation_player is required")
	}
	if c.StartlocationWizard == "" {
		c.StartlocationWizard = c.StartlocationPlayer
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid story config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Supports reports whether the story can run in mode m.
func (c *Config) Supports(m Mode) bool {
	for _, s := range c.SupportedModes {
		if s == m {
			return true
		}
	}
	return false
}

// TickInterval is the real time between timer ticks.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.ServerTickTime * float64(time.Second))
}

// MaxWait is the longest game time a player may wait at once.
func (c *Config) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitHours * float64(time.Hour))
}

// Money returns the money formatter, or nil when the story has no money.
func (c *Config) Money() *money.Formatter {
	if c.MoneyType == "" {
		return nil
	}
	mf, err := money.New(money.Type(c.MoneyType))
	if err != nil {
		return nil
	}
	return mf
}

// CheckEngineVersion reports an error unless required equals the
// engine's major.minor.
func CheckEngineVersion(required string) error {
	parts := strings.SplitN(EngineVersion, ".", 3)
	want := parts[0] + "." + parts[1]
	if required != want {
		return fmt.Errorf("requires_engine %q does not match engine version %s", required, want)
	}
	return nil
}
