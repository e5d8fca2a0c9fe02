// Package termline provides interactive line editing for terminal
// command-line programs: raw-mode input, an editable buffer with history
// and tab completion, and in-place redrawing of the prompt line.
package termline

import (
	"context"
	"errors"
	"os"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/termline/core"
	"pkt.systems/termline/schema"
	"pkt.systems/termline/terminal"
)

// Session owns the terminal for the duration of interactive editing. At
// most one session per process holds the terminal at a time; Close
// restores the saved terminal mode and must run on every exit path, so
// callers defer it right after Open.
type Session struct {
	id     schema.SessionID
	cfg    schema.Config
	driver *terminal.Driver
	editor *core.Editor
	logger pslog.Logger

	mu      sync.Mutex
	reading bool
	closed  bool
}

// Option adjusts how a session is opened.
type Option func(*sessionOptions)

type sessionOptions struct {
	in        *os.File
	out       *os.File
	completer core.Completer
	logger    pslog.Logger
}

// WithInput overrides the input stream. Defaults to os.Stdin.
func WithInput(f *os.File) Option {
	return func(o *sessionOptions) { o.in = f }
}

// WithOutput overrides the output stream. Defaults to os.Stdout.
func WithOutput(f *os.File) Option {
	return func(o *sessionOptions) { o.out = f }
}

// WithCompleter supplies the completion provider consulted on Tab.
func WithCompleter(c core.Completer) Option {
	return func(o *sessionOptions) { o.completer = c }
}

// WithLogger routes session logging. Defaults to the ambient logger.
func WithLogger(l pslog.Logger) Option {
	return func(o *sessionOptions) { o.logger = l }
}

// Open acquires the terminal in raw mode and builds the editing session.
// It fails with ErrNotTerminal when the streams are not interactive and
// ErrAlreadyActive when another session holds the terminal.
func Open(cfg schema.Config, opts ...Option) (*Session, error) {
	options := sessionOptions{in: os.Stdin, out: os.Stdout}
	for _, opt := range opts {
		opt(&options)
	}
	logger := options.logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	id := core.NewSessionID()
	logger = logger.With("session", id)
	normalized, err := schema.NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized

	driver, err := terminal.Open(options.in, options.out, logger)
	if err != nil {
		return nil, err
	}
	editor, err := core.NewEditor(cfg, core.Deps{
		Events:    driver.Events(),
		Out:       driver.Out(),
		Size:      driver.Size,
		ReadErr:   driver.ReadErr,
		Completer: options.completer,
		Logger:    logger,
	})
	if err != nil {
		_ = driver.Close()
		return nil, err
	}
	logger.Debug("session opened", "prompt", cfg.Prompt)
	return &Session{
		id:     id,
		cfg:    cfg,
		driver: driver,
		editor: editor,
		logger: logger,
	}, nil
}

// ID identifies this session in logs.
func (s *Session) ID() schema.SessionID { return s.id }

// ReadLine runs the event loop until one line is submitted and returns
// it. Distinct terminal results: io.EOF once input is exhausted (the
// session cannot be restarted afterwards), ErrInterrupted for Ctrl-C when
// the config asks for it, and ctx.Err() on cancellation. Every result
// other than a line or an interrupt releases the terminal before
// returning.
func (s *Session) ReadLine(ctx context.Context) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", schema.ErrClosed
	}
	if s.reading {
		s.mu.Unlock()
		return "", errors.New("read already in progress")
	}
	s.reading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.reading = false
		s.mu.Unlock()
	}()

	line, err := s.editor.ReadLine(ctx)
	if err != nil && !errors.Is(err, schema.ErrInterrupted) {
		_ = s.Close()
	}
	return line, err
}

// PushHistory seeds one history entry, subject to the same blank and
// duplicate policy as submitted lines. Hosts use it to load history they
// persist themselves.
func (s *Session) PushHistory(text string) bool {
	return s.editor.PushHistory(text)
}

// History returns a copy of the stored entries, oldest first.
func (s *Session) History() []string {
	return s.editor.History()
}

// SetPrompt replaces the prompt, effective on the next repaint.
func (s *Session) SetPrompt(prompt string) error {
	return s.editor.SetPrompt(prompt)
}

// Close stops reading and restores the terminal mode. It is idempotent
// and blocks until the mode is restored.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()
	err := s.driver.Close()
	s.logger.Debug("session closed")
	return err
}
