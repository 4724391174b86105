package story

import (
	"fmt"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/lang"
)

// ZoneDir is the directory of zone files inside the story root.
const ZoneDir = "zones"

// yamlZoneFile is the top-level YAML structure for zone files.
type yamlZoneFile struct {
	Zone      string         `yaml:"zone"`
	Locations []yamlLocation `yaml:"locations"`
	Items     []yamlItem     `yaml:"items"`
	NPCs      []yamlNPC      `yaml:"npcs"`
}

// yamlLocation is the YAML representation of a location.
type yamlLocation struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Items       []string          `yaml:"items"`
	Livings     []string          `yaml:"livings"`
	Exits       []yamlExit        `yaml:"exits"`
	Verbs       map[string]string `yaml:"verbs"`
	// GameEnd completes the story for players arriving here.
	GameEnd bool `yaml:"game_end"`
}

// yamlExit is the YAML representation of an exit or a door.
type yamlExit struct {
	Directions  []string  `yaml:"directions"`
	Target      string    `yaml:"target"`
	Short       string    `yaml:"short"`
	Description string    `yaml:"description"`
	Door        *yamlDoor `yaml:"door"`
}

type yamlDoor struct {
	Opened bool `yaml:"opened"`
	Locked bool `yaml:"locked"`
	Code   int  `yaml:"code"`
	// Checkpoint is reached by the player who unlocks the door.
	Checkpoint string `yaml:"checkpoint"`
	Recap      string `yaml:"recap"`
}

// yamlItem is the YAML representation of any item kind.
type yamlItem struct {
	ID          string            `yaml:"id"`
	Kind        string            `yaml:"kind"`
	Name        string            `yaml:"name"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Short       string            `yaml:"short"`
	Aliases     []string          `yaml:"aliases"`
	Value       float64           `yaml:"value"`
	Weight      float64           `yaml:"weight"`
	DoorCode    int               `yaml:"door_code"`
	Text        string            `yaml:"text"`
	Damage      string            `yaml:"damage"`
	Bonus       int               `yaml:"bonus"`
	Contents    []string          `yaml:"contents"`
	Messages    map[string]string `yaml:"messages"`
	Verbs       map[string]string `yaml:"verbs"`
}

// yamlNPC is the YAML representation of an NPC or monster.
type yamlNPC struct {
	ID          string            `yaml:"id"`
	Kind        string            `yaml:"kind"`
	Name        string            `yaml:"name"`
	Gender      string            `yaml:"gender"`
	Race        string            `yaml:"race"`
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Short       string            `yaml:"short"`
	Aliases     []string          `yaml:"aliases"`
	Money       float64           `yaml:"money"`
	Inventory   []string          `yaml:"inventory"`
	Idle        yamlIdle          `yaml:"idle"`
	Announce    yamlAnnounce      `yaml:"announce"`
	Reactions   map[string]string `yaml:"reactions"`
	Verbs       map[string]string `yaml:"verbs"`
}

type yamlIdle struct {
	Chance   float64  `yaml:"chance"`
	Messages []string `yaml:"messages"`
}

// yamlAnnounce makes an NPC tell the room a message every so often.
// Every is a Go duration of game time, such as "1h" or "30m".
type yamlAnnounce struct {
	Every    string   `yaml:"every"`
	Messages []string `yaml:"messages"`
}

// Zone is a loaded zone: its name and the objects it defined, by symbol.
type Zone struct {
	Name    string
	Objects map[string]world.Object
	// Heartbeats are the objects that want a heartbeat every tick.
	Heartbeats []world.ID
	// Announcers are the NPCs whose first announcement must be deferred.
	Announcers []world.ID
}

// parseZone decodes a zone file without building anything.
//
// Postcondition: returns the parsed file or a non-nil error.
func parseZone(data []byte) (*yamlZoneFile, error) {
	var file yamlZoneFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing zone YAML: %w", err)
	}
	if file.Zone == "" {
		return nil, fmt.Errorf("zone name is required")
	}
	if strings.Contains(file.Zone, ".") {
		return nil, fmt.Errorf("zone name %q must not contain a dot", file.Zone)
	}
	return &file, nil
}

// LoadZones builds every zone in the story's zones directory into w and
// then binds all exits. Objects get the path "zone.id".
//
// Postcondition: every exit in w is bound, or an error is returned.
func LoadZones(w *world.World, vfs *VFS) ([]*Zone, error) {
	files, err := vfs.Glob(ZoneDir, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("listing zones: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no zone files found in %s", ZoneDir)
	}
	var zones []*Zone
	for _, f := range files {
		data, err := vfs.LoadBytes(f)
		if err != nil {
			return nil, err
		}
		file, err := parseZone(data)
		if err != nil {
			return nil, fmt.Errorf("loading zone from %s: %w", path.Base(f), err)
		}
		z, err := buildZone(w, file)
		if err != nil {
			return nil, fmt.Errorf("building zone %s: %w", file.Zone, err)
		}
		zones = append(zones, z)
	}
	if err := BindExits(w); err != nil {
		return nil, err
	}
	return zones, nil
}

// BindExits resolves the target of every unbound exit in w.
func BindExits(w *world.World) error {
	for _, o := range w.Objects() {
		if ex := world.AsExit(o); ex != nil {
			if err := ex.Bind(w); err != nil {
				return err
			}
		}
	}
	return nil
}

func buildZone(w *world.World, file *yamlZoneFile) (*Zone, error) {
	z := &Zone{Name: file.Zone, Objects: make(map[string]world.Object)}
	register := func(id string, o world.Object) error {
		if id == "" {
			return fmt.Errorf("%s without id", o.Core().Kind)
		}
		if _, dup := z.Objects[id]; dup {
			return fmt.Errorf("duplicate id %q", id)
		}
		z.Objects[id] = o
		return w.SetPath(o, file.Zone+"."+id)
	}
	lookup := func(id string) (world.Object, error) {
		o, ok := z.Objects[id]
		if !ok {
			return nil, fmt.Errorf("unknown id %q", id)
		}
		return o, nil
	}

	for _, yi := range file.Items {
		it, err := buildItem(w, yi)
		if err != nil {
			return nil, fmt.Errorf("item %s: %w", yi.ID, err)
		}
		if err := register(yi.ID, it); err != nil {
			return nil, err
		}
	}
	for _, yi := range file.Items {
		if len(yi.Contents) == 0 {
			continue
		}
		c, ok := z.Objects[yi.ID].(*world.Container)
		if !ok {
			return nil, fmt.Errorf("item %s has contents but is not a container", yi.ID)
		}
		for _, id := range yi.Contents {
			inner, err := lookup(id)
			if err != nil {
				return nil, fmt.Errorf("container %s: %w", yi.ID, err)
			}
			c.InitInventory(inner)
		}
	}
	for _, yn := range file.NPCs {
		n, err := buildNPC(w, yn)
		if err != nil {
			return nil, fmt.Errorf("npc %s: %w", yn.ID, err)
		}
		if err := register(yn.ID, n); err != nil {
			return nil, err
		}
		if len(yn.Idle.Messages) > 0 {
			z.Heartbeats = append(z.Heartbeats, n.Core().ID)
		}
		if len(yn.Announce.Messages) > 0 {
			z.Announcers = append(z.Announcers, n.Core().ID)
		}
		var inv []world.Object
		for _, id := range yn.Inventory {
			it, err := lookup(id)
			if err != nil {
				return nil, fmt.Errorf("npc %s: %w", yn.ID, err)
			}
			inv = append(inv, it)
		}
		world.AsLiving(n).InitInventory(inv...)
	}
	for _, yl := range file.Locations {
		name := yl.Name
		if name == "" {
			name = yl.ID
		}
		loc := w.NewLocation(name, yl.Description)
		for verb, help := range yl.Verbs {
			loc.Verbs[verb] = help
		}
		if err := register(yl.ID, loc); err != nil {
			return nil, err
		}
	}
	for _, yl := range file.Locations {
		loc := z.Objects[yl.ID].(*world.Location)
		var contents []world.Object
		for _, id := range append(append([]string(nil), yl.Items...), yl.Livings...) {
			o, err := lookup(id)
			if err != nil {
				return nil, fmt.Errorf("location %s: %w", yl.ID, err)
			}
			contents = append(contents, o)
		}
		if err := loc.InitInventory(contents...); err != nil {
			return nil, fmt.Errorf("location %s: %w", yl.ID, err)
		}
		obs := &locationEvents{gameEnd: yl.GameEnd}
		for _, ye := range yl.Exits {
			ex, err := buildExit(w, file.Zone, ye)
			if err != nil {
				return nil, fmt.Errorf("location %s: %w", yl.ID, err)
			}
			if err := loc.AddExits(ex); err != nil {
				return nil, fmt.Errorf("location %s: %w", yl.ID, err)
			}
			if d, ok := ex.(*world.Door); ok && ye.Door.Checkpoint != "" {
				obs.addCheckpoint(d.ID, ye.Door.Checkpoint, ye.Door.Recap)
			}
		}
		if obs.active() {
			loc.Observer = obs
		}
	}
	return z, nil
}

func buildItem(w *world.World, yi yamlItem) (world.Object, error) {
	name := yi.Name
	if name == "" {
		name = yi.ID
	}
	var o world.Object
	switch yi.Kind {
	case "", "item":
		o = w.NewItem(name, yi.Title, yi.Description)
	case "container":
		o = w.NewContainer(name, yi.Title, yi.Description)
	case "weapon":
		o = w.NewWeapon(name, yi.Title, yi.Description, yi.Damage)
	case "armour", "armor":
		o = w.NewArmour(name, yi.Title, yi.Description, yi.Bonus)
	case "clock":
		o = w.NewGameClock(name, yi.Title, yi.Description)
	default:
		return nil, fmt.Errorf("unknown item kind %q", yi.Kind)
	}
	it := world.AsItem(o)
	it.ShortDescription = strings.TrimSpace(yi.Short)
	it.AddAliases(yi.Aliases...)
	it.Value = yi.Value
	it.Weight = yi.Weight
	it.DoorCode = yi.DoorCode
	it.ReadText = world.Dedent(yi.Text)
	for k, v := range yi.Messages {
		if it.Messages == nil {
			it.Messages = make(map[string]string)
		}
		it.Messages[k] = v
	}
	for verb, help := range yi.Verbs {
		it.Verbs[verb] = help
	}
	return o, nil
}

func buildNPC(w *world.World, yn yamlNPC) (world.Object, error) {
	name := yn.Name
	if name == "" {
		name = yn.ID
	}
	gender := lang.Neuter
	if yn.Gender != "" {
		g, err := lang.ParseGender(yn.Gender)
		if err != nil {
			return nil, err
		}
		gender = g
	}
	race := yn.Race
	if race == "" {
		race = "human"
	}
	var npc *world.NPC
	var o world.Object
	switch yn.Kind {
	case "", "npc":
		n, err := w.NewNPC(name, gender, race, yn.Title, yn.Description)
		if err != nil {
			return nil, err
		}
		npc, o = n, n
	case "monster":
		m, err := w.NewMonster(name, gender, race, yn.Title, yn.Description)
		if err != nil {
			return nil, err
		}
		npc, o = &m.NPC, m
	default:
		return nil, fmt.Errorf("unknown npc kind %q", yn.Kind)
	}
	npc.ShortDescription = strings.TrimSpace(yn.Short)
	npc.AddAliases(yn.Aliases...)
	npc.Money = yn.Money
	npc.IdleChance = yn.Idle.Chance
	npc.IdleMessages = append([]string(nil), yn.Idle.Messages...)
	if len(yn.Announce.Messages) > 0 {
		every, err := time.ParseDuration(yn.Announce.Every)
		if err != nil || every <= 0 {
			return nil, fmt.Errorf("invalid announce interval %q", yn.Announce.Every)
		}
		npc.Announcements = append([]string(nil), yn.Announce.Messages...)
		npc.AnnounceEvery = every
	}
	if len(yn.Reactions) > 0 {
		npc.Reactions = make(map[string]string, len(yn.Reactions))
		for k, v := range yn.Reactions {
			npc.Reactions[k] = v
		}
	}
	for verb, help := range yn.Verbs {
		npc.Verbs[verb] = help
	}
	return o, nil
}

func buildExit(w *world.World, zone string, ye yamlExit) (world.Object, error) {
	target := ye.Target
	if target == "" {
		return nil, fmt.Errorf("exit %v has no target", ye.Directions)
	}
	if !strings.Contains(target, ".") {
		target = zone + "." + target
	}
	if ye.Door != nil {
		st := world.DoorState{Opened: ye.Door.Opened, Locked: ye.Door.Locked, Code: ye.Door.Code}
		return w.NewDoorTo(ye.Directions, target, ye.Short, ye.Description, st)
	}
	return w.NewExitTo(ye.Directions, target, ye.Short, ye.Description)
}
