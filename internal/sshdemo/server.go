// Package sshdemo serves the line editor to SSH clients. Every connection
// with a PTY gets its own editor and command loop, which makes it easy to
// exercise the library from a plain ssh client.
package sshdemo

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"

	gliderssh "github.com/gliderlabs/ssh"
	"golang.org/x/crypto/ssh"

	"pkt.systems/pslog"
	"pkt.systems/termline/core"
	"pkt.systems/termline/schema"
)

// LineHandler consumes submitted lines from one demo session. The returned
// output is echoed to the client and a false continue flag ends the session.
type LineHandler interface {
	Handle(ctx context.Context, line string) (string, bool)
}

// Server exposes the demo shell over SSH.
type Server struct {
	Addr               string
	HostKeyPath        string
	AuthorizedKeysPath string
	MOTD               string
	Listener           net.Listener
	Config             schema.Config
	Completer          core.Completer
	// NewHandler builds the per-session command handler once the editor
	// for the connection exists.
	NewHandler func(userID schema.UserID, editor *core.Editor) LineHandler
	logger     pslog.Logger
}

// ListenAndServe starts the SSH server and shuts down on context cancellation.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.logger == nil {
		s.logger = pslog.Ctx(ctx)
	}
	if s.NewHandler == nil {
		return errors.New("line handler factory is required")
	}

	signer, err := EnsureHostKey(s.HostKeyPath)
	if err != nil {
		return err
	}
	s.logger.Info("ssh host key ready", "fingerprint", ssh.FingerprintSHA256(signer.PublicKey()))

	server := &gliderssh.Server{
		Addr:             s.Addr,
		Handler:          s.handleSession,
		PublicKeyHandler: s.handlePublicKey,
	}
	server.AddHostKey(signer)

	errCh := make(chan error, 1)
	go func() {
		if s.Listener != nil {
			errCh <- server.Serve(s.Listener)
			return
		}
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		_ = server.Close()
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) handlePublicKey(ctx gliderssh.Context, key gliderssh.PublicKey) bool {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(ctx)
	}
	fingerprint := ssh.FingerprintSHA256(key)
	remote := remoteAddr(ctx)
	user := ctx.User()
	if user == "" {
		log.Warn("ssh pubkey rejected", "reason", "missing user", "remote", remote, "fingerprint", fingerprint)
		return false
	}
	log = log.With("user", user, "remote", remote, "fingerprint", fingerprint)
	authorized, err := loadAuthorizedKeys(s.AuthorizedKeysPath)
	if err != nil {
		log.Warn("ssh pubkey rejected", "err", err)
		return false
	}
	if !keyAuthorized(key, authorized) {
		log.Warn("ssh pubkey rejected", "reason", "no matching key")
		return false
	}
	log.Info("ssh pubkey accepted")
	return true
}

func keyAuthorized(key gliderssh.PublicKey, candidates []gliderssh.PublicKey) bool {
	for _, candidate := range candidates {
		if gliderssh.KeysEqual(key, candidate) {
			return true
		}
	}
	return false
}

func loadAuthorizedKeys(path string) ([]gliderssh.PublicKey, error) {
	if path == "" {
		return nil, errors.New("authorized keys path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var keys []gliderssh.PublicKey
	for len(data) > 0 {
		key, _, _, rest, err := ssh.ParseAuthorizedKey(data)
		if err != nil {
			if len(keys) == 0 {
				return nil, fmt.Errorf("parse authorized keys: %w", err)
			}
			break
		}
		keys = append(keys, key)
		data = rest
	}
	return keys, nil
}

func remoteAddr(ctx gliderssh.Context) string {
	if ctx == nil || ctx.RemoteAddr() == nil {
		return ""
	}
	return ctx.RemoteAddr().String()
}
