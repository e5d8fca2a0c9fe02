package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/termline/schema"
)

// Deps captures the collaborators the event loop drives. Events and Out are
// required; the remaining fields default to safe fallbacks.
type Deps struct {
	// Events delivers decoded key events in arrival order. Closing the
	// channel marks the end of input; ReadErr reports why.
	Events <-chan schema.KeyEvent
	// Out receives the batched frame output.
	Out io.Writer
	// Size reports the terminal dimensions in cells.
	Size func() (width, height int)
	// ReadErr reports the error that closed Events, if any.
	ReadErr func() error
	// Completer supplies candidates for the text left of the cursor.
	Completer Completer
	Logger    pslog.Logger
}

// Editor runs the line-editing event loop. It is the sole writer of the
// buffer and completion state; each ReadLine call consumes events until a
// submission, an interrupt, or end of input. ReadLine is not reentrant.
// PushHistory and History are safe to call from other goroutines.
type Editor struct {
	cfg     schema.Config
	events  <-chan schema.KeyEvent
	size    func() (int, int)
	readErr func() error
	logger  pslog.Logger

	buf   *buffer
	comp  *completion
	spent bool

	mu   sync.Mutex
	hist *history
	rend *renderer
}

// NewEditor wires an editor from its dependencies. The configuration is
// normalized first, so a zero Config yields the defaults.
func NewEditor(cfg schema.Config, deps Deps) (*Editor, error) {
	normalized, err := schema.NormalizeConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Events == nil {
		return nil, errors.New("key event channel is required")
	}
	if deps.Out == nil {
		return nil, errors.New("output writer is required")
	}
	if deps.Size == nil {
		deps.Size = func() (int, int) { return 80, 24 }
	}
	if deps.ReadErr == nil {
		deps.ReadErr = func() error { return nil }
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Editor{
		cfg:     cfg,
		events:  deps.Events,
		size:    deps.Size,
		readErr: deps.ReadErr,
		logger:  logger,
		buf:     &buffer{},
		comp:    newCompletion(deps.Completer),
		hist:    newHistory(cfg.HistoryMaxLen, cfg.SuppressDuplicateHistory),
		rend:    newRenderer(deps.Out, cfg.Prompt),
	}, nil
}

// ReadLine paints the prompt and consumes key events until one line is
// submitted. It returns io.EOF when input is exhausted, ErrInterrupted for
// Ctrl-C when the config asks for it, and ctx.Err() on cancellation.
// Cancellation is only observed while waiting for the next event, never
// mid-mutation or mid-repaint.
func (e *Editor) ReadLine(ctx context.Context) (string, error) {
	if e.spent {
		return "", io.EOF
	}
	e.buf.Clear()
	e.comp.Invalidate()
	e.mu.Lock()
	e.hist.resetBrowse()
	e.mu.Unlock()
	if err := e.redraw(); err != nil {
		return "", err
	}
	for {
		select {
		case <-ctx.Done():
			_ = e.finishFrame()
			e.logger.Debug("read cancelled", "err", ctx.Err())
			return "", ctx.Err()
		case ev, ok := <-e.events:
			if !ok {
				return e.inputClosed()
			}
			line, done, err := e.handleKey(ev)
			if done || err != nil {
				return line, err
			}
		}
	}
}

// inputClosed maps a closed event channel to the final result of the
// session: the recorded read error, or io.EOF for a clean end of input.
func (e *Editor) inputClosed() (string, error) {
	e.spent = true
	_ = e.finishFrame()
	if err := e.readErr(); err != nil && !errors.Is(err, io.EOF) {
		e.logger.Warn("input stream failed", "err", err)
		return "", fmt.Errorf("read terminal: %w", err)
	}
	e.logger.Debug("input closed")
	return "", io.EOF
}

// handleKey applies one event. done reports that the current ReadLine call
// is finished and line/err form its result.
func (e *Editor) handleKey(ev schema.KeyEvent) (line string, done bool, err error) {
	if ev.Kind != schema.KeyTab && ev.Kind != schema.KeyShiftTab {
		e.comp.Invalidate()
	}
	switch ev.Kind {
	case schema.KeyRune:
		e.buf.Insert(ev.R)
	case schema.KeyEnter:
		return e.submit()
	case schema.KeyInterrupt:
		e.buf.Clear()
		e.mu.Lock()
		echoErr := e.rend.Echo("^C\r\n")
		e.mu.Unlock()
		if echoErr != nil {
			return "", true, fmt.Errorf("write terminal: %w", echoErr)
		}
		e.logger.Debug("read interrupted")
		if e.cfg.EchoInterruptAsError {
			return "", true, schema.ErrInterrupted
		}
		return "", true, nil
	case schema.KeyEOF:
		if e.buf.Len() > 0 {
			e.buf.Delete()
			break
		}
		e.spent = true
		_ = e.finishFrame()
		e.logger.Debug("input closed")
		return "", true, io.EOF
	case schema.KeyBackspace:
		e.buf.Backspace()
	case schema.KeyDelete:
		e.buf.Delete()
	case schema.KeyLeft:
		e.buf.Move(-1)
	case schema.KeyRight:
		e.buf.Move(1)
	case schema.KeyHome:
		e.buf.MoveStart()
	case schema.KeyEnd:
		e.buf.MoveEnd()
	case schema.KeyWordLeft:
		e.buf.MoveWordLeft()
	case schema.KeyWordRight:
		e.buf.MoveWordRight()
	case schema.KeyDeleteWord:
		e.buf.DeleteWordBack()
	case schema.KeyKillToStart:
		e.buf.KillToStart()
	case schema.KeyKillToEnd:
		e.buf.KillToEnd()
	case schema.KeyUp:
		e.mu.Lock()
		text, ok := e.hist.BrowsePrev(e.buf.String())
		e.mu.Unlock()
		if ok {
			e.buf.SetText(text)
		}
	case schema.KeyDown:
		e.mu.Lock()
		text, ok := e.hist.BrowseNext()
		e.mu.Unlock()
		if ok {
			e.buf.SetText(text)
		}
	case schema.KeyTab:
		e.completeCycle(1)
	case schema.KeyShiftTab:
		e.completeCycle(-1)
	case schema.KeyClear:
		e.mu.Lock()
		clearErr := e.rend.Clear()
		e.mu.Unlock()
		if clearErr != nil {
			return "", true, fmt.Errorf("write terminal: %w", clearErr)
		}
	case schema.KeyResize:
		// Repaint below picks up the new dimensions.
	default:
		// Escape and the page keys have no line-editing effect; they only
		// invalidated the completion context above.
	}
	return "", false, e.redraw()
}

// submit finalizes the current line. An empty buffer yields no submission;
// the loop keeps waiting on a fresh prompt.
func (e *Editor) submit() (string, bool, error) {
	line := e.buf.String()
	if err := e.finishFrame(); err != nil {
		return "", true, err
	}
	if line == "" {
		return "", false, e.redraw()
	}
	e.buf.Clear()
	e.mu.Lock()
	recorded := e.hist.Append(line)
	e.mu.Unlock()
	e.logger.Debug("line submitted", "len", len(line), "recorded", recorded)
	return line, true, nil
}

func (e *Editor) completeCycle(step int) {
	prefix := string(e.buf.text[:e.buf.cursor])
	if text, ok := e.comp.Cycle(prefix, step); ok {
		e.buf.SetText(text)
	}
}

func (e *Editor) redraw() error {
	width, _ := e.size()
	e.mu.Lock()
	err := e.rend.Redraw(e.buf.text, e.buf.cursor, width)
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write terminal: %w", err)
	}
	return nil
}

func (e *Editor) finishFrame() error {
	e.mu.Lock()
	err := e.rend.Finish()
	e.mu.Unlock()
	if err != nil {
		return fmt.Errorf("write terminal: %w", err)
	}
	return nil
}

// PushHistory seeds one history entry, subject to the same blank and
// duplicate policy as submitted lines. The host uses this to load history
// it persisted elsewhere.
func (e *Editor) PushHistory(text string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Append(text)
}

// History returns a copy of the stored entries, oldest first.
func (e *Editor) History() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Entries()
}

// SetPrompt replaces the prompt, effective on the next repaint. The prompt
// is normalized the same way as at construction.
func (e *Editor) SetPrompt(prompt string) error {
	cfg, err := schema.NormalizeConfig(schema.Config{Prompt: prompt})
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.rend.SetPrompt(cfg.Prompt)
	e.mu.Unlock()
	return nil
}

// Prompt reports the prompt currently in effect.
func (e *Editor) Prompt() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rend.Prompt()
}
