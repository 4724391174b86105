package driver

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tale/internal/game/command"
	"github.com/cory-johannsen/tale/internal/game/world"
)

// inputPrompt is written after every batch of output.
const inputPrompt = "\n>> "

// session is one connected user. The reader and writer goroutines only
// touch conn, out and delay; everything else belongs to the driver
// goroutine.
type session struct {
	conn   Conn
	out    *outbox
	name   string
	delay  atomic.Int64
	logger *zap.Logger

	player    *world.Player
	question  *command.Question
	joined    time.Time
	leaving   bool
	writerEnd sync.WaitGroup
	closeOnce sync.Once
	ended     chan struct{}
}

func newSession(conn Conn, name string, logger *zap.Logger) *session {
	return &session{
		conn:   conn,
		out:    newOutbox(name, defaultOutboxSize),
		name:   name,
		ended:  make(chan struct{}),
		logger: logger.With(zap.String("player", name), zap.String("remote_addr", conn.RemoteAddr())),
	}
}

// startWriter drains the outbox into the connection until the outbox is
// closed. With an output delay each line is written separately.
func (s *session) startWriter() {
	s.writerEnd.Add(1)
	go func() {
		defer s.writerEnd.Done()
		for c := range s.out.chunks {
			if err := s.write(c); err != nil {
				s.logger.Debug("writing to client", zap.Error(err))
				// keep draining so the driver never blocks on us
				continue
			}
		}
	}()
}

func (s *session) write(c chunk) error {
	if c.prompt {
		return s.conn.WritePrompt(c.text)
	}
	d := time.Duration(s.delay.Load())
	if d <= 0 {
		return s.conn.WriteText(c.text)
	}
	for _, line := range strings.SplitAfter(c.text, "\n") {
		if line == "" {
			continue
		}
		if err := s.conn.WriteText(line); err != nil {
			return err
		}
		time.Sleep(d)
	}
	return nil
}

// send queues text for the writer. Output that does not fit is dropped.
func (s *session) send(text string, prompt bool) {
	if text == "" {
		return
	}
	if err := s.out.push(chunk{text: text, prompt: prompt}); err != nil {
		s.logger.Warn("dropping output", zap.Error(err))
	}
}

// flush renders the player's pending output followed by the prompt.
func (s *session) flush() {
	if s.player == nil || !s.player.HasOutput() {
		return
	}
	s.send(s.player.Render(), false)
	if !s.leaving {
		s.send(inputPrompt, true)
	}
}

// close stops the writer after the pending output and closes the
// connection, which also ends the reader. It may be called more than once.
func (s *session) close() {
	s.closeOnce.Do(func() {
		s.out.close()
		s.writerEnd.Wait()
		_ = s.conn.Close()
		close(s.ended)
	})
}
