// Package terminal owns raw-mode terminal state and turns the raw byte
// stream into decoded key events.
package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"

	"golang.org/x/term"
	"pkt.systems/pslog"
	"pkt.systems/termline/schema"
)

// activeDriver enforces that at most one driver holds raw mode in this
// process at a time.
var activeDriver atomic.Bool

// Driver holds the terminal in raw mode for the lifetime of a session. A
// background reader polls the input stream, feeds the decoder, and
// delivers events on a channel that closes when input ends or fails.
// Close restores the saved terminal mode unconditionally.
type Driver struct {
	in     *os.File
	out    *os.File
	state  *term.State
	dec    *Decoder
	logger pslog.Logger

	events     chan schema.KeyEvent
	stopCh     chan struct{}
	wg         sync.WaitGroup
	sendMu     sync.Mutex
	sendClosed bool

	mu      sync.Mutex
	width   int
	height  int
	readErr error
	closed  bool
}

// Open switches the terminal into raw mode and starts the reader. It
// fails with ErrNotTerminal when either stream is not interactive and
// with ErrAlreadyActive when another driver already holds raw mode.
func Open(in, out *os.File, logger pslog.Logger) (*Driver, error) {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	inFd := int(in.Fd())
	outFd := int(out.Fd())
	if !term.IsTerminal(inFd) || !term.IsTerminal(outFd) {
		return nil, schema.ErrNotTerminal
	}
	if !activeDriver.CompareAndSwap(false, true) {
		return nil, schema.ErrAlreadyActive
	}
	state, err := term.MakeRaw(inFd)
	if err != nil {
		activeDriver.Store(false)
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	d := &Driver{
		in:     in,
		out:    out,
		state:  state,
		dec:    &Decoder{},
		logger: logger,
		events: make(chan schema.KeyEvent, 64),
		stopCh: make(chan struct{}),
	}
	d.width, d.height = winSize(outFd)
	d.wg.Add(2)
	go d.readLoop(inFd)
	go d.watchResize(outFd)
	logger.Debug("terminal raw mode entered", "width", d.width, "height", d.height)
	return d, nil
}

// Events exposes the decoded key stream. The channel closes when input
// ends; ReadErr explains why.
func (d *Driver) Events() <-chan schema.KeyEvent {
	return d.events
}

// ReadEvent returns the next decoded event, io.EOF when input is
// exhausted, or the read error that ended the stream. Cancellation is
// observed only while waiting.
func (d *Driver) ReadEvent(ctx context.Context) (schema.KeyEvent, error) {
	select {
	case <-ctx.Done():
		return schema.KeyEvent{}, ctx.Err()
	case ev, ok := <-d.events:
		if !ok {
			if err := d.ReadErr(); err != nil && !errors.Is(err, io.EOF) {
				return schema.KeyEvent{}, err
			}
			return schema.KeyEvent{}, io.EOF
		}
		return ev, nil
	}
}

// ReadErr reports the error recorded by the reader, if any.
func (d *Driver) ReadErr() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.readErr
}

// Size reports the terminal dimensions in cells, refreshed on every
// window-change signal.
func (d *Driver) Size() (width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.width, d.height
}

// Out exposes the output stream the renderer writes frames to.
func (d *Driver) Out() io.Writer {
	return d.out
}

// Close stops the reader and restores the saved terminal mode. It is
// idempotent; only the first call restores and reports the result.
func (d *Driver) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil
	}
	d.closed = true
	d.mu.Unlock()
	close(d.stopCh)
	d.wg.Wait()
	err := term.Restore(int(d.in.Fd()), d.state)
	activeDriver.Store(false)
	d.logger.Debug("terminal raw mode restored")
	if err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	return nil
}

func (d *Driver) readLoop(fd int) {
	defer d.wg.Done()
	defer d.closeEvents()
	for {
		select {
		case <-d.stopCh:
			return
		default:
		}
		data, timedOut, err := readChunk(fd)
		if err != nil {
			d.setReadErr(err)
			if !errors.Is(err, io.EOF) {
				d.logger.Warn("terminal read failed", "err", err)
			}
			return
		}
		if timedOut {
			if ev, ok := d.dec.FlushEscape(); ok {
				if !d.send(ev) {
					return
				}
			}
			continue
		}
		for _, ev := range d.dec.Feed(data) {
			if !d.send(ev) {
				return
			}
		}
	}
}

func (d *Driver) watchResize(outFd int) {
	defer d.wg.Done()
	ch := make(chan os.Signal, 1)
	notifyResize(ch)
	defer signal.Stop(ch)
	for {
		select {
		case <-d.stopCh:
			return
		case <-ch:
			width, height := winSize(outFd)
			d.mu.Lock()
			d.width, d.height = width, height
			d.mu.Unlock()
			d.send(schema.KeyEvent{Kind: schema.KeyResize})
		}
	}
}

// send delivers one event, giving up when the driver is stopping so the
// reader can never deadlock against Close. It reports false once the
// event stream has closed.
func (d *Driver) send(ev schema.KeyEvent) bool {
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

// closeEvents closes the event channel exactly once. Only the read loop
// calls it; send checks sendClosed under the same lock so a window-change
// signal arriving after the reader exits can never write to a closed
// channel.
func (d *Driver) closeEvents() {
	d.sendMu.Lock()
	defer d.sendMu.Unlock()
	if !d.sendClosed {
		d.sendClosed = true
		close(d.events)
	}
}

func (d *Driver) setReadErr(err error) {
	d.mu.Lock()
	d.readErr = err
	d.mu.Unlock()
}
