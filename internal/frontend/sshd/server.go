// Package sshd serves the game over SSH. Authentication is left to the
// game's own login, so the SSH layer accepts every client.
package sshd

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"
	"go.uber.org/zap"
	gossh "golang.org/x/crypto/ssh"

	"github.com/cory-johannsen/tale/internal/config"
	"github.com/cory-johannsen/tale/internal/driver"
	"github.com/cory-johannsen/tale/internal/frontend/termio"
)

// Handler runs the session of one connection.
type Handler interface {
	Serve(ctx context.Context, conn driver.Conn) error
}

// Server accepts SSH sessions and hands their terminals to a Handler.
type Server struct {
	cfg     config.SSHConfig
	handler Handler
	logger  *zap.Logger
	srv     *ssh.Server

	mu       sync.Mutex
	listener net.Listener
}

// NewServer loads or generates the host key and prepares the server.
//
// Precondition: handler and logger must be non-nil.
func NewServer(cfg config.SSHConfig, handler Handler, logger *zap.Logger) (*Server, error) {
	signer, err := HostSigner(cfg.HostKeyFile)
	if err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, handler: handler, logger: logger}
	s.srv = &ssh.Server{Handler: s.handle}
	s.srv.AddHostKey(signer)
	logger.Info("ssh host key", zap.String("fingerprint", gossh.FingerprintSHA256(signer.PublicKey())))
	return s, nil
}

// HostSigner reads the PEM private key at path. An empty path generates
// an ed25519 key.
func HostSigner(path string) (gossh.Signer, error) {
	if path == "" {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("generating host key: %w", err)
		}
		return gossh.NewSignerFromKey(priv)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading host key: %w", err)
	}
	signer, err := gossh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("parsing host key %s: %w", path, err)
	}
	return signer, nil
}

// ListenAndServe accepts sessions until Stop is called.
func (s *Server) ListenAndServe() error {
	l, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.cfg.Addr(), err)
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()
	s.logger.Info("ssh server listening", zap.String("addr", l.Addr().String()))

	if err := s.srv.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop closes the listener and all sessions.
func (s *Server) Stop() {
	if err := s.srv.Close(); err != nil {
		s.logger.Debug("closing ssh server", zap.Error(err))
	}
	s.logger.Info("ssh server stopped")
}

// Addr returns the listening address, or "" before ListenAndServe.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) handle(sess ssh.Session) {
	start := time.Now()
	logger := s.logger.With(zap.String("remote_addr", sess.RemoteAddr().String()), zap.String("ssh_user", sess.User()))
	if len(sess.Command()) > 0 {
		_, _ = fmt.Fprintln(sess, "Commands are not supported.")
		_ = sess.Exit(1)
		return
	}

	pty, winCh, isPty := sess.Pty()
	conn := termio.New(sess, sess.RemoteAddr().String(), isPty, func() error { return sess.Exit(0) })
	if isPty {
		_ = conn.SetSize(pty.Window.Width, pty.Window.Height)
		go func() {
			for win := range winCh {
				_ = conn.SetSize(win.Width, win.Height)
			}
		}()
	}

	logger.Info("client connected")
	if err := s.handler.Serve(sess.Context(), conn); err != nil {
		logger.Debug("session ended", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	logger.Info("session ended cleanly", zap.Duration("duration", time.Since(start)))
}
