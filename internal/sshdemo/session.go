package sshdemo

import (
	"context"
	"errors"
	"io"
	"sync"

	gliderssh "github.com/gliderlabs/ssh"

	"pkt.systems/pslog"
	"pkt.systems/termline/core"
	"pkt.systems/termline/internal/demoshell"
	"pkt.systems/termline/internal/logx"
	"pkt.systems/termline/schema"
	"pkt.systems/termline/terminal"
)

// demoSession bridges one SSH connection to an editor. The pump goroutine
// decodes the client byte stream into key events and owns the channel close;
// the window watcher updates the cached size and nudges a repaint.
type demoSession struct {
	sess   gliderssh.Session
	events chan schema.KeyEvent
	stopCh chan struct{}

	sendMu     sync.Mutex
	sendClosed bool

	mu      sync.Mutex
	width   int
	height  int
	readErr error
}

func newDemoSession(sess gliderssh.Session, width, height int) *demoSession {
	d := &demoSession{
		sess:   sess,
		events: make(chan schema.KeyEvent, 64),
		stopCh: make(chan struct{}),
	}
	d.setSize(width, height)
	return d
}

func (d *demoSession) setSize(width, height int) {
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	d.mu.Lock()
	d.width = width
	d.height = height
	d.mu.Unlock()
}

func (d *demoSession) size() (int, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

func (d *demoSession) setReadErr(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}

func (d *demoSession) readError() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readErr
}

// send delivers an event unless the session is shutting down.
func (d *demoSession) send(ev schema.KeyEvent) bool {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	if d.sendClosed {
		return false
	}
	select {
	case d.events <- ev:
		return true
	case <-d.stopCh:
		return false
	}
}

func (d *demoSession) closeEvents() {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	if !d.sendClosed {
		d.sendClosed = true
		close(d.events)
	}
}

func (d *demoSession) stop() {
	select {
	case <-d.stopCh:
	default:
		close(d.stopCh)
	}
}

// pump decodes client input into key events. Unlike the raw-mode driver
// there is no read timeout here, so a lone Escape resolves only when the
// next byte arrives.
func (d *demoSession) pump() {
	defer d.closeEvents()
	var dec terminal.Decoder
	buf := make([]byte, 256)
	for {
		n, err := d.sess.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if !d.send(ev) {
					return
				}
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				d.setReadErr(err)
			}
			return
		}
	}
}

func (d *demoSession) watchWindow(winCh <-chan gliderssh.Window) {
	for {
		select {
		case win, ok := <-winCh:
			if !ok {
				return
			}
			d.setSize(win.Width, win.Height)
			d.send(schema.KeyEvent{Kind: schema.KeyResize})
		case <-d.stopCh:
			return
		}
	}
}

func (s *Server) handleSession(sess gliderssh.Session) {
	log := s.logger
	if log == nil {
		log = pslog.Ctx(sess.Context())
	}
	userID := schema.UserID(sess.User())
	remote := sess.RemoteAddr().String()
	log = log.With("user", userID, "remote", remote)
	sshSession := sess.Context().SessionID()
	if sshSession != "" {
		log = log.With("ssh_session", sshSession)
	}

	pty, winCh, ok := sess.Pty()
	if !ok {
		log.Info("ssh session rejected", "reason", "pty required")
		_, _ = io.WriteString(sess, "pty required\n")
		_ = sess.Exit(1)
		return
	}

	ctx := logx.ContextWithSessionLogger(sess.Context(), log, schema.SessionID(sshSession))
	ctx = logx.ContextWithUser(ctx, userID)

	st := newDemoSession(sess, pty.Window.Width, pty.Window.Height)
	defer st.stop()
	go st.pump()
	go st.watchWindow(winCh)

	editor, err := core.NewEditor(s.Config, core.Deps{
		Events:    st.events,
		Out:       sess,
		Size:      st.size,
		ReadErr:   st.readError,
		Completer: s.Completer,
		Logger:    log,
	})
	if err != nil {
		log.Warn("ssh session editor failed", "err", err)
		_ = sess.Exit(1)
		return
	}

	log.Info("ssh session opened", "term", pty.Term)
	if s.MOTD != "" {
		demoshell.WriteText(sess, s.MOTD)
	}
	handler := s.NewHandler(userID, editor)
	runSession(ctx, sess, editor, handler, log)
	log.Info("ssh session closed", "term", pty.Term)
	_ = sess.Exit(0)
}

func runSession(ctx context.Context, sess gliderssh.Session, editor *core.Editor, handler LineHandler, log pslog.Logger) {
	for {
		line, err := editor.ReadLine(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				demoshell.WriteText(sess, "bye")
			} else if !errors.Is(err, context.Canceled) {
				log.Warn("ssh session read failed", "err", err)
			}
			return
		}
		if line == "" {
			continue
		}
		out, cont := handler.Handle(ctx, line)
		if out != "" {
			demoshell.WriteText(sess, out)
		}
		if !cont {
			demoshell.WriteText(sess, "bye")
			return
		}
	}
}
