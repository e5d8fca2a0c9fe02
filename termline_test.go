package termline

import (
	"context"
	"errors"
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
	if _, err := Open(schema.Config{}, WithInput(r), WithOutput(w)); !errors.Is(err, schema.ErrNotTerminal) {
		t.Fatalf("err = %v, want ErrNotTerminal", err)
	}
}

func TestOpenRejectsMultilinePrompt(t *testing.T) {
	if _, err := Open(schema.Config{Prompt: "a\nb"}); !errors.Is(err, schema.ErrInvalidPrompt) {
		t.Fatalf("err = %v, want ErrInvalidPrompt", err)
	}
}

func TestReadLineAfterCloseReturnsErrClosed(t *testing.T) {
	s := &Session{closed: true}
	if _, err := s.ReadLine(context.Background()); !errors.Is(err, schema.ErrClosed) {
		t.Fatalf("err = %v, want ErrClosed", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	s := &Session{closed: true}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}
