package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/savegame"
	"github.com/cory-johannsen/tale/internal/story"
)

// saveTimeout bounds a single savegame write.
const saveTimeout = 10 * time.Second

// errDriverStopped is returned to sessions that arrive after Run ended.
var errDriverStopped = errors.New("driver stopped")

// Serve runs the session of one connection: the login, then the input
// loop until the player quits or the connection drops. It blocks until
// the session has ended and its output is written.
//
// Precondition: Run is running or about to run.
func (d *Driver) Serve(ctx context.Context, conn Conn) error {
	var (
		req *joinRequest
		err error
	)
	if d.mode == story.ModeMUD {
		req, err = d.loginMUD(ctx, conn)
	} else {
		req, err = d.loginIF(ctx, conn)
	}
	if errors.Is(err, errQuitLogin) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	s := newSession(conn, req.name, d.logger)
	s.startWriter()
	reply := make(chan error, 1)
	if !d.post(event{kind: evJoin, sess: s, join: req, reply: reply}) {
		s.close()
		return errDriverStopped
	}
	select {
	case err := <-reply:
		if err != nil {
			if msg, ok := errs.UserMessage(err); ok {
				s.send(msg+"\n", false)
				err = nil
			}
			s.close()
			return err
		}
	case <-d.done:
		s.close()
		return errDriverStopped
	}

	for {
		line, err := conn.ReadLine()
		if errors.Is(err, ErrInterrupted) {
			if !d.post(event{kind: evBreak, sess: s}) {
				break
			}
			continue
		}
		if err != nil {
			d.post(event{kind: evLeave, sess: s, err: err})
			break
		}
		if !d.post(event{kind: evLine, sess: s, line: line}) {
			break
		}
	}
	select {
	case <-s.ended:
	case <-d.done:
		s.close()
	}
	return nil
}

// join creates the player of a new session, or restores it from its
// savegame, and welcomes it.
func (d *Driver) join(s *session, req *joinRequest) error {
	if d.mode == story.ModeIF && d.PlayerCount() > 0 {
		return errs.Refused("This game already has a player.")
	}
	if d.SearchPlayer(req.name) != nil {
		return errs.Refused("You're already logged in.")
	}
	p, err := d.createPlayer(req)
	if err != nil {
		d.logger.Error("creating player", zap.String("player", req.name), zap.Error(err))
		return errs.Refused("Your character could not be created.")
	}
	p.ScreenStyles = p.ScreenStyles && s.conn.Styles()
	d.story.InitPlayer(p)

	s.player = p
	s.joined = time.Now()
	d.mu.Lock()
	d.sessions[p.ID] = s
	d.mu.Unlock()

	if d.mode == story.ModeMUD {
		if motd := d.story.Motd(); motd != "" {
			p.Tell("<bright>Message-of-the-day:</>", world.End)
			p.Tell(motd, world.End)
			p.Tell("\n")
		}
	}
	if req.snapshot != nil {
		d.story.WelcomeSavegame(p)
	} else {
		d.story.Welcome(p)
	}
	p.Look(world.LookLong)
	s.logger.Info("player joined",
		zap.Bool("savegame", req.snapshot != nil),
		zap.Int("players", d.PlayerCount()),
	)
	return nil
}

func (d *Driver) createPlayer(req *joinRequest) (*world.Player, error) {
	cfg := d.story.Config()
	if req.snapshot != nil {
		p, err := savegame.Restore(d.world, req.snapshot, cfg.Name)
		if err != nil {
			return nil, err
		}
		d.restoreDeferreds(p, req.snapshot.Deferreds)
		return p, nil
	}
	p, err := d.world.NewPlayer(req.name, req.gender, req.race, "")
	if err != nil {
		return nil, err
	}
	for _, priv := range req.privileges {
		p.Privileges[priv] = true
	}
	start := cfg.StartlocationPlayer
	if p.IsWizard() && cfg.StartlocationWizard != "" {
		start = cfg.StartlocationWizard
	}
	loc := world.AsLocation(d.world.ByPath(start))
	if loc == nil {
		return nil, fmt.Errorf("start location %q is not a location", start)
	}
	if err := p.Move(loc, &p.Living, false); err != nil {
		return nil, err
	}
	return p, nil
}

func (d *Driver) restoreDeferreds(p *world.Player, saved []savegame.Deferred) {
	for _, df := range saved {
		var owner world.Object
		if df.Owner == savegame.PlayerHolder {
			owner = p
		} else {
			owner = d.world.ByPath(df.Owner)
		}
		if owner == nil {
			d.logger.Warn("dropping deferred of a vanished owner", zap.String("owner", df.Owner), zap.String("action", df.Action))
			continue
		}
		d.sched.Defer(df.Due, owner.Core().ID, df.Action, df.Args...)
	}
}

// captureDeferreds returns the pending deferreds that can be saved: those
// owned by p or by objects with a path.
func (d *Driver) captureDeferreds(p *world.Player) []savegame.Deferred {
	var out []savegame.Deferred
	for _, df := range d.sched.snapshot() {
		owner := ""
		switch o := d.world.Get(df.owner); {
		case o == nil:
			continue
		case df.owner == p.ID:
			owner = savegame.PlayerHolder
		case o.Core().Path != "":
			owner = o.Core().Path
		default:
			continue
		}
		out = append(out, savegame.Deferred{Due: df.due, Owner: owner, Action: df.action, Args: df.args})
	}
	return out
}

// Save writes the player's savegame.
func (d *Driver) Save(p *world.Player) error {
	cfg := d.story.Config()
	if !cfg.SavegamesEnabled || d.opts.Savegames == nil {
		return errs.Refused("It is not possible to save your progress.")
	}
	if d.mode == story.ModeMUD {
		return errs.Refused("Saving is not possible in mud mode, your character is kept by the server.")
	}
	snap, err := savegame.Capture(d.world, p, cfg.Name, cfg.Version, d.captureDeferreds(p))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := d.opts.Savegames.Save(ctx, p.Name, snap); err != nil {
		return fmt.Errorf("saving game of %s: %w", p.Name, err)
	}
	d.logger.Info("game saved", zap.String("player", p.Name), zap.Stringer("savegame", snap.ID))
	p.Tell("Game saved.", world.End)
	if cfg.DisplayGametime {
		p.Tell("Game time: "+d.world.Clock.Display(), world.End)
	}
	return nil
}

// leave ends the session of s. A graceful leave says goodbye first. The
// player's story items go back to its location so the world stays
// playable for others, everything else it carried is destroyed with it.
func (d *Driver) leave(s *session, graceful bool) {
	if s.leaving {
		return
	}
	s.leaving = true
	if p := s.player; p != nil {
		if graceful {
			d.guard(p, func() { d.story.Goodbye(p) })
		}
		s.flush()
		d.guard(nil, func() { d.removePlayer(p) })
		d.mu.Lock()
		delete(d.sessions, p.ID)
		d.mu.Unlock()
		s.logger.Info("player left", zap.Duration("session_duration", time.Since(s.joined)))
	}
	go s.close()
	if d.mode == story.ModeIF {
		d.finished = true
	}
}

func (d *Driver) removePlayer(p *world.Player) {
	loc := p.Location()
	if loc != nil && loc.ID != world.LimboID {
		for _, it := range p.Inventory() {
			if it.Core().Path != "" {
				if err := d.world.Place(it, loc); err != nil {
					d.logger.Warn("returning item", zap.Stringer("item", it.Core()), zap.Error(err))
				}
			}
		}
		loc.Tell(p.Title()+" leaves the game.", &p.Living, nil, "")
	}
	d.dispatcher.Forget(p.ID)
	if err := d.world.Destroy(d.worldCtx(), p); err != nil {
		d.logger.Error("destroying player", zap.String("player", p.Name), zap.Error(err))
	}
}
