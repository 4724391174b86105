package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/game/command"
	"github.com/cory-johannsen/tale/internal/game/dice"
	"github.com/cory-johannsen/tale/internal/game/errs"
	"github.com/cory-johannsen/tale/internal/game/gametime"
	"github.com/cory-johannsen/tale/internal/game/money"
	"github.com/cory-johannsen/tale/internal/game/world"
	"github.com/cory-johannsen/tale/internal/savegame"
	"github.com/cory-johannsen/tale/internal/story"
)

const (
	// mailboxSize bounds the input events waiting for the driver.
	mailboxSize = 256
	// maxWaitTicks bounds the heartbeat rounds a single wait runs.
	maxWaitTicks = 60

	internalErrorMsg = "* internal error: something went wrong."
	softBreakMsg     = "* break: Use <quit> if you want to quit."
)

// Options configure a Driver.
type Options struct {
	Story story.Story
	Mode  story.Mode
	// TickMethod overrides the story's tick method when set.
	TickMethod story.TickMethod
	// Savegames stores saved games; nil disables saving.
	Savegames savegame.Store
	// Accounts is required in MUD mode.
	Accounts AccountStore
	// TranscriptDir is where transcripts are written. Empty means the
	// working directory.
	TranscriptDir string
	// Wizard gives the IF player wizard privileges.
	Wizard bool
	// Dice is the world's randomness; nil means crypto/rand.
	Dice   dice.Source
	Logger *zap.Logger
}

type eventKind int

const (
	evJoin eventKind = iota
	evLine
	evBreak
	evLeave
)

// event is one entry in the driver's mailbox.
type event struct {
	kind  eventKind
	sess  *session
	line  string
	join  *joinRequest
	reply chan error
	err   error
}

// pendingAction is a NotifyAction waiting for the command's output to
// be flushed.
type pendingAction struct {
	act   world.Action
	actor world.ID
}

// Driver runs one story. All world mutation happens on the goroutine
// that calls Run; sessions talk to it through the mailbox.
type Driver struct {
	opts       Options
	story      story.Story
	mode       story.Mode
	tickMethod story.TickMethod
	tick       time.Duration
	logger     *zap.Logger

	world      *world.World
	sched      *scheduler
	dispatcher *command.Dispatcher
	money      *money.Formatter

	mailbox chan event
	done    chan struct{}
	stop    sync.Once

	mu           sync.RWMutex
	sessions     map[world.ID]*session
	started      time.Time
	loopDuration time.Duration

	pending  []pendingAction
	finished bool
}

// New creates a driver for opts.Story and lets the story build its world.
//
// Precondition: opts.Story and opts.Logger are not nil.
// Postcondition: the world is loaded and the driver is ready to Run.
func New(opts Options) (*Driver, error) {
	if opts.Story == nil {
		return nil, errors.New("driver: no story")
	}
	cfg := opts.Story.Config()
	if opts.Mode == "" {
		opts.Mode = story.ModeIF
	}
	if !cfg.Supports(opts.Mode) {
		return nil, fmt.Errorf("driver: story %q does not support %s mode", cfg.Name, opts.Mode)
	}
	if cfg.RequiresEngine != "" {
		if err := story.CheckEngineVersion(cfg.RequiresEngine); err != nil {
			return nil, fmt.Errorf("driver: %w", err)
		}
	}
	tm := opts.TickMethod
	if tm == "" {
		tm = cfg.ServerTickMethod
	}
	if tm != story.TickTimer && tm != story.TickCommand {
		return nil, fmt.Errorf("driver: invalid tick method %q", tm)
	}
	if opts.Mode == story.ModeMUD && tm == story.TickCommand {
		return nil, errors.New("driver: mud mode requires the timer tick method")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	epoch := cfg.Epoch
	if epoch.IsZero() {
		epoch = time.Now().Truncate(time.Second)
	}
	d := &Driver{
		opts:       opts,
		story:      opts.Story,
		mode:       opts.Mode,
		tickMethod: tm,
		tick:       cfg.TickInterval(),
		logger:     logger,
		world:      world.New(gametime.NewClock(epoch, cfg.GametimeToRealtime), opts.Dice),
		sched:      newScheduler(),
		money:      cfg.Money(),
		mailbox:    make(chan event, mailboxSize),
		done:       make(chan struct{}),
		sessions:   make(map[world.ID]*session),
		started:    time.Now(),
	}
	if d.tick <= 0 {
		d.tick = time.Second
	}
	d.dispatcher = command.NewDispatcher(command.DefaultRegistry(), logger)

	start := time.Now()
	if err := d.story.Init(d); err != nil {
		return nil, fmt.Errorf("driver: initializing story %q: %w", cfg.Name, err)
	}
	logger.Info("story loaded",
		zap.String("story", cfg.Name),
		zap.String("version", cfg.Version),
		zap.String("mode", string(d.mode)),
		zap.String("tick_method", string(d.tickMethod)),
		zap.Int("objects", d.world.Len()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return d, nil
}

// World implements story.Host.
func (d *Driver) World() *world.World { return d.world }

// Scheduler implements story.Host.
func (d *Driver) Scheduler() world.Scheduler { return d.sched }

// Mode implements story.Host and command.Driver.
func (d *Driver) Mode() story.Mode { return d.mode }

func (d *Driver) Story() story.Story { return d.story }

func (d *Driver) Money() *money.Formatter { return d.money }

// Done is closed once Run has returned.
func (d *Driver) Done() <-chan struct{} { return d.done }

// worldCtx is the context world objects are called with.
func (d *Driver) worldCtx() world.Context {
	return world.Context{World: d.world, Sched: d.sched}
}

func (d *Driver) cmdCtx() *command.Ctx {
	return &command.Ctx{Context: d.worldCtx(), Driver: d, Dispatcher: d.dispatcher}
}

// Run processes the mailbox and the ticks until ctx is cancelled or, in
// IF mode, the player's session ends.
//
// Postcondition: all sessions are closed when Run returns.
func (d *Driver) Run(ctx context.Context) error {
	defer d.stop.Do(func() { close(d.done) })
	var ticks <-chan time.Time
	if d.tickMethod == story.TickTimer {
		t := time.NewTicker(d.tick)
		defer t.Stop()
		ticks = t.C
	}
	d.logger.Info("driver running", zap.Duration("tick", d.tick))
	for {
		select {
		case <-ctx.Done():
			d.shutdown()
			return nil
		case <-ticks:
			start := time.Now()
			d.guard(nil, func() { d.serverTick(d.tick) })
			d.flushAll()
			d.mu.Lock()
			d.loopDuration = time.Since(start)
			d.mu.Unlock()
		case ev := <-d.mailbox:
			d.handle(ev)
			d.flushAll()
			if d.finished {
				d.shutdown()
				return nil
			}
		}
	}
}

// post hands an event to the driver unless it has stopped.
func (d *Driver) post(ev event) bool {
	select {
	case d.mailbox <- ev:
		return true
	case <-d.done:
		return false
	}
}

// serverTick advances the clock by the game time spanned by real, fires
// the deferreds that are due and runs the heartbeats.
func (d *Driver) serverTick(real time.Duration) {
	d.world.Clock.AddRealtime(real)
	d.fireDeferreds()
	d.heartbeats()
}

func (d *Driver) fireDeferreds() {
	mark := d.sched.mark()
	now := d.world.Clock.Now()
	for df := d.sched.popDue(now, mark); df != nil; df = d.sched.popDue(now, mark) {
		d.fire(df)
	}
}

func (d *Driver) fire(df *deferred) {
	obj := d.world.Get(df.owner)
	if obj == nil {
		return
	}
	h, ok := obj.(world.DeferredHandler)
	if !ok {
		d.logger.Warn("deferred owner cannot handle deferreds",
			zap.Stringer("owner", obj.Core()), zap.String("action", df.action))
		return
	}
	p := world.AsPlayer(obj)
	d.guard(p, func() {
		if err := h.HandleDeferred(d.worldCtx(), df.action, df.args); err != nil {
			d.report(p, err)
		}
	})
}

func (d *Driver) heartbeats() {
	ctx := d.worldCtx()
	for _, id := range d.sched.Heartbeats() {
		obj := d.world.Get(id)
		if obj == nil {
			d.sched.UnregisterHeartbeat(id)
			continue
		}
		if hb, ok := obj.(world.Heartbeater); ok {
			d.guard(nil, func() { hb.Heartbeat(ctx) })
		}
	}
}

// guard runs fn and turns a panic into a logged internal error. The
// player, when given, is told something went wrong.
func (d *Driver) guard(p *world.Player, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 8192)
			buf = buf[:runtime.Stack(buf, false)]
			d.logger.Error("recovered from panic", zap.Any("panic", r), zap.ByteString("stack", buf))
			if p != nil {
				p.Tell(internalErrorMsg, world.End)
			}
		}
	}()
	fn()
}

// report shows a user facing error to p and logs anything else.
func (d *Driver) report(p *world.Player, err error) {
	var sv *errs.SecurityViolation
	if errors.As(err, &sv) && p != nil {
		d.logger.Warn("security violation", zap.String("player", p.Name), zap.String("msg", sv.Msg))
	}
	if msg, ok := errs.UserMessage(err); ok {
		if p != nil {
			p.Tell(msg, world.End)
		}
		return
	}
	d.logger.Error("internal error", zap.Error(err))
	if p != nil {
		p.Tell(internalErrorMsg, world.End)
	}
}

func (d *Driver) handle(ev event) {
	switch ev.kind {
	case evJoin:
		err := d.join(ev.sess, ev.join)
		ev.reply <- err
	case evLine:
		if ev.sess.player == nil || ev.sess.leaving {
			return
		}
		d.input(ev.sess, ev.line)
	case evBreak:
		if p := ev.sess.player; p != nil {
			p.Tell(softBreakMsg, world.End)
		}
	case evLeave:
		if ev.sess.player == nil || ev.sess.leaving {
			return
		}
		if ev.err != nil && !errors.Is(ev.err, io.EOF) {
			ev.sess.logger.Info("connection lost", zap.Error(ev.err))
		}
		d.leave(ev.sess, false)
	}
}

// input executes one line typed by the player of s.
func (d *Driver) input(s *session, line string) {
	p := s.player
	line = strings.TrimSpace(line)
	p.RecordInput(line)
	if d.tickMethod == story.TickCommand {
		d.guard(nil, func() { d.serverTick(d.tick) })
	}
	c := d.cmdCtx()
	var (
		res command.Result
		err error
	)
	d.guard(p, func() {
		if q := s.question; q != nil {
			s.question = nil
			res, err = d.dispatcher.Resume(c, p, q, line)
		} else {
			if line == "" {
				return
			}
			res, err = d.dispatcher.Execute(c, p, line)
		}
	})
	switch {
	case errors.Is(err, errs.ErrSessionExit):
		d.leave(s, true)
		return
	case errors.Is(err, errs.ErrStoryCompleted):
		p.StoryCompleted()
	case err != nil:
		d.report(p, err)
	case res.Outcome == command.Ask && res.Question != nil:
		s.question = res.Question
		p.Tell(res.Question.Prompt, world.End)
	}
	d.flushAll()
	d.notifyPending()
	if p.Completed() && !s.leaving {
		d.story.Completion(p)
		d.leave(s, true)
	}
}

// NotifyAction queues act; the objects around the actor hear about it
// once the output of the command is flushed.
func (d *Driver) NotifyAction(act world.Action, actor *world.Player) {
	d.pending = append(d.pending, pendingAction{act: act, actor: actor.ID})
}

func (d *Driver) notifyPending() {
	for len(d.pending) > 0 {
		pa := d.pending[0]
		d.pending = d.pending[1:]
		actor := d.world.Living(pa.actor)
		if actor == nil {
			continue
		}
		d.guard(nil, func() { d.notify(pa.act, actor) })
	}
	d.pending = nil
}

// notify passes act to the actor's location, the livings in it and every
// item in scope that declares custom verbs.
func (d *Driver) notify(act world.Action, actor *world.Living) {
	loc := actor.Location()
	if loc == nil {
		return
	}
	ctx := d.worldCtx()
	loc.NotifyAction(ctx, act, actor)
	for _, o := range loc.Livings() {
		if n, ok := o.(world.ActionNotifiee); ok {
			n.NotifyAction(ctx, act, actor)
		}
	}
	items := append(loc.Items(), actor.Inventory()...)
	for _, o := range items {
		if len(o.Core().Verbs) == 0 {
			continue
		}
		if n, ok := o.(world.ActionNotifiee); ok {
			n.NotifyAction(ctx, act, actor)
		}
	}
}

// flushAll sends every player's pending output to its session.
func (d *Driver) flushAll() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sessions {
		s.flush()
	}
}

// Wait lets duration of game time pass as if the ticks had elapsed. It is
// refused when a deferred aimed at a player falls within the wait.
func (d *Driver) Wait(duration time.Duration) (bool, string) {
	if d.mode != story.ModeIF {
		return false, "You can't wait in mud mode, time passes for everyone."
	}
	if limit := d.story.Config().MaxWait(); duration > limit {
		return false, fmt.Sprintf("You can't wait more than %s at once.", gametime.DurationDisplay(limit))
	}
	end := d.world.Clock.Now().Add(duration)
	interactive := func(df *deferred) bool { return world.AsPlayer(d.world.Get(df.owner)) != nil }
	if d.sched.anyDue(end, interactive) {
		return false, "Something is about to happen, you can't wait now."
	}
	step := d.world.Clock.ToGame(d.tick)
	if floor := duration / maxWaitTicks; step < floor {
		step = floor
	}
	if step <= 0 {
		step = duration
	}
	for left := duration; left > 0; left -= step {
		if left < step {
			step = left
		}
		d.world.Clock.AddGametime(step)
		d.fireDeferreds()
		d.heartbeats()
	}
	return true, ""
}

// SearchPlayer finds a connected player by name.
func (d *Driver) SearchPlayer(name string) *world.Player {
	name = strings.ToLower(name)
	d.mu.RLock()
	defer d.mu.RUnlock()
	for _, s := range d.sessions {
		if s.player != nil && strings.ToLower(s.player.Name) == name {
			return s.player
		}
	}
	return nil
}

// Players returns the connected players.
func (d *Driver) Players() []*world.Player {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*world.Player, 0, len(d.sessions))
	for _, s := range d.sessions {
		if s.player != nil {
			out = append(out, s.player)
		}
	}
	return out
}

// PlayerCount returns the number of connected players. It is safe to
// call from any goroutine.
func (d *Driver) PlayerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.sessions)
}

func (d *Driver) sessionOf(p *world.Player) *session {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.sessions[p.ID]
}

func (d *Driver) SetOutputDelay(p *world.Player, delay time.Duration) error {
	s := d.sessionOf(p)
	if s == nil {
		return errs.Refused("You're not connected.")
	}
	s.delay.Store(int64(delay))
	return nil
}

func (d *Driver) OutputDelay(p *world.Player) time.Duration {
	if s := d.sessionOf(p); s != nil {
		return time.Duration(s.delay.Load())
	}
	return 0
}

// OpenTranscript creates the transcript file name in the transcript
// directory. Only a plain file name is accepted.
func (d *Driver) OpenTranscript(p *world.Player, name string) (io.WriteCloser, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, errs.Refused("Use a plain file name for the transcript.")
	}
	if d.mode == story.ModeMUD && !p.IsWizard() {
		return nil, errs.Refused("Only wizards can write transcripts in mud mode.")
	}
	dir := d.opts.TranscriptDir
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating transcript dir: %w", err)
		}
	}
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening transcript: %w", err)
	}
	return f, nil
}

func (d *Driver) Heartbeats() []world.ID { return d.sched.Heartbeats() }

// Deferreds describes the pending deferreds in firing order.
func (d *Driver) Deferreds() []command.DeferredInfo {
	pending := d.sched.snapshot()
	out := make([]command.DeferredInfo, 0, len(pending))
	for _, df := range pending {
		owner := fmt.Sprintf("#%d", df.owner)
		if o := d.world.Get(df.owner); o != nil {
			owner = o.Core().String()
		}
		out = append(out, command.DeferredInfo{Due: df.due, Owner: owner, Action: df.action})
	}
	return out
}

func (d *Driver) Info() command.ServerInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return command.ServerInfo{
		Started:      d.started,
		Mode:         d.mode,
		TickMethod:   d.tickMethod,
		TickTime:     d.tick,
		LoopDuration: d.loopDuration,
		Players:      len(d.sessions),
		Heartbeats:   len(d.sched.Heartbeats()),
		Deferreds:    d.sched.Len(),
		Goroutines:   runtime.NumGoroutine(),
	}
}

// shutdown says goodbye to everyone still connected.
func (d *Driver) shutdown() {
	d.mu.RLock()
	sessions := make([]*session, 0, len(d.sessions))
	for _, s := range d.sessions {
		sessions = append(sessions, s)
	}
	d.mu.RUnlock()
	for _, s := range sessions {
		if s.player != nil && !s.leaving {
			s.player.Tell("<yellow>The server is shutting down.</>", world.End)
		}
		d.leave(s, true)
	}
	d.logger.Info("driver stopped", zap.Duration("uptime", time.Since(d.started)))
}
