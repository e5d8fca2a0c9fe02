package terminal

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"pkt.systems/termline/schema"
)

func TestOpenRejectsNonTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()
	if _, err := Open(r, w, nil); !errors.Is(err, schema.ErrNotTerminal) {
		t.Fatalf("err = %v, want ErrNotTerminal", err)
	}
}

func TestReadEventDrainsThenReportsEOF(t *testing.T) {
	ch := make(chan schema.KeyEvent, 1)
	ch <- schema.KeyEvent{Kind: schema.KeyTab}
	close(ch)
	d := &Driver{events: ch}
	ev, err := d.ReadEvent(context.Background())
	if err != nil || ev.Kind != schema.KeyTab {
		t.Fatalf("event = %v err = %v, want tab", ev, err)
	}
	if _, err := d.ReadEvent(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("err = %v, want io.EOF", err)
	}
}

func TestReadEventReportsRecordedError(t *testing.T) {
	boom := errors.New("boom")
	ch := make(chan schema.KeyEvent)
	close(ch)
	d := &Driver{events: ch, readErr: boom}
	if _, err := d.ReadEvent(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestReadEventHonorsCancellation(t *testing.T) {
	d := &Driver{events: make(chan schema.KeyEvent)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := d.ReadEvent(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

// A hangup ends the read loop while the resize watcher keeps running
// until Close. A window-change signal landing in that window must not
// reach the closed event channel.
func TestSendAfterReaderExitIsSafe(t *testing.T) {
	d := &Driver{
		events: make(chan schema.KeyEvent, 64),
		stopCh: make(chan struct{}),
	}
	if !d.send(schema.KeyEvent{Kind: schema.KeyRune, R: 'a'}) {
		t.Fatalf("expected send to succeed")
	}
	d.closeEvents()
	if d.send(schema.KeyEvent{Kind: schema.KeyResize}) {
		t.Fatalf("expected send after reader exit to report failure")
	}
	ev, ok := <-d.events
	if !ok || ev.R != 'a' {
		t.Fatalf("expected buffered event, got ok=%v %v", ok, ev)
	}
	if _, ok := <-d.events; ok {
		t.Fatalf("expected channel to be closed")
	}
}
