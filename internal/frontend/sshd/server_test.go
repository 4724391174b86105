package sshd

import (
	"bufio"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	gossh "golang.org/x/crypto/ssh"

	"github.com/cory-johannsen/tale/internal/config"
	"github.com/cory-johannsen/tale/internal/driver"
	"github.com/cory-johannsen/tale/internal/frontend/termio"
)

type echoHandler struct{}

func (echoHandler) Serve(_ context.Context, conn driver.Conn) error {
	if err := conn.WriteText("hello " + conn.RemoteAddr() + "\n"); err != nil {
		return err
	}
	for {
		if err := conn.WritePrompt("\n> "); err != nil {
			return err
		}
		line, err := conn.ReadLine()
		if errors.Is(err, driver.ErrInterrupted) {
			_ = conn.WriteText("break\n")
			continue
		}
		if err != nil {
			return err
		}
		if line == "quit" {
			_ = conn.WriteText("bye\n")
			return conn.Close()
		}
		_ = conn.WriteText("echo: " + line + "\n")
	}
}

func startServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.SSHConfig{Host: "127.0.0.1", Port: 0}, echoHandler{}, zaptest.NewLogger(t))
	require.NoError(t, err)
	go func() { _ = s.ListenAndServe() }()
	require.Eventually(t, func() bool { return s.Addr() != "" }, 2*time.Second, 10*time.Millisecond)
	t.Cleanup(s.Stop)
	return s
}

type shell struct {
	stdin io.WriteCloser
	out   *bufio.Reader
}

func (sh *shell) readUntil(t *testing.T, want string) string {
	t.Helper()
	var got strings.Builder
	done := make(chan error, 1)
	go func() {
		for {
			b, err := sh.out.ReadByte()
			if err != nil {
				done <- err
				return
			}
			got.WriteByte(b)
			if strings.HasSuffix(got.String(), want) {
				done <- nil
				return
			}
		}
	}()
	select {
	case err := <-done:
		require.NoError(t, err, "output so far: %q", got.String())
	case <-time.After(3 * time.Second):
		t.Fatalf("timed out waiting for %q", want)
	}
	return got.String()
}

func openShell(t *testing.T, addr string) *shell {
	t.Helper()
	client, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "guest",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         2 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	sess, err := client.NewSession()
	require.NoError(t, err)
	require.NoError(t, sess.RequestPty("xterm", 24, 80, gossh.TerminalModes{}))
	stdin, err := sess.StdinPipe()
	require.NoError(t, err)
	stdout, err := sess.StdoutPipe()
	require.NoError(t, err)
	require.NoError(t, sess.Shell())
	return &shell{stdin: stdin, out: bufio.NewReader(stdout)}
}

func TestServer_LineSession(t *testing.T) {
	s := startServer(t)
	sh := openShell(t, s.Addr())

	sh.readUntil(t, "hello 127.0.0.1")
	sh.readUntil(t, "> ")
	_, err := sh.stdin.Write([]byte("look\r"))
	require.NoError(t, err)
	sh.readUntil(t, "echo: look")

	_, err = sh.stdin.Write([]byte{termio.CtrlC})
	require.NoError(t, err)
	sh.readUntil(t, "break")

	_, err = sh.stdin.Write([]byte("quit\r"))
	require.NoError(t, err)
	sh.readUntil(t, "bye")
}

func TestServer_RefusesCommands(t *testing.T) {
	s := startServer(t)
	client, err := gossh.Dial("tcp", s.Addr(), &gossh.ClientConfig{
		User:            "guest",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
	})
	require.NoError(t, err)
	defer client.Close()
	sess, err := client.NewSession()
	require.NoError(t, err)
	out, err := sess.CombinedOutput("ls")
	assert.Error(t, err)
	assert.Contains(t, string(out), "Commands are not supported.")
}

func TestHostSigner(t *testing.T) {
	generated, err := HostSigner("")
	require.NoError(t, err)
	assert.Equal(t, gossh.KeyAlgoED25519, generated.PublicKey().Type())

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := gossh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "host.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	loaded, err := HostSigner(path)
	require.NoError(t, err)
	want, err := gossh.NewSignerFromKey(priv)
	require.NoError(t, err)
	assert.Equal(t, want.PublicKey().Marshal(), loaded.PublicKey().Marshal())

	_, err = HostSigner(filepath.Join(t.TempDir(), "missing.pem"))
	assert.Error(t, err)
}
