package demoshell

import (
	"context"
	"strings"
	"testing"
)

type stubEditor struct {
	history []string
	prompt  string
}

func (s *stubEditor) History() []string { return s.history }

func (s *stubEditor) SetPrompt(prompt string) error {
	s.prompt = prompt
	return nil
}

func TestShellEcho(t *testing.T) {
	shell := New("alice", &stubEditor{})
	out, cont := shell.Handle(context.Background(), `echo hello world`)
	if !cont {
		t.Fatalf("expected session to continue")
	}
	if out != "hello world" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShellFieldsShowsQuoting(t *testing.T) {
	shell := New("alice", &stubEditor{})
	out, _ := shell.Handle(context.Background(), `fields a "b c"`)
	if out != "0: \"a\"\n1: \"b c\"" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShellHistoryListsEntries(t *testing.T) {
	shell := New("alice", &stubEditor{history: []string{"one", "two"}})
	out, _ := shell.Handle(context.Background(), "history")
	if !strings.Contains(out, "1  one") || !strings.Contains(out, "2  two") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShellHistoryEmpty(t *testing.T) {
	shell := New("alice", &stubEditor{})
	out, _ := shell.Handle(context.Background(), "history")
	if out != "history is empty" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShellPromptUpdatesEditor(t *testing.T) {
	ed := &stubEditor{}
	shell := New("alice", ed)
	out, cont := shell.Handle(context.Background(), "prompt demo>")
	if out != "" || !cont {
		t.Fatalf("unexpected result %q %v", out, cont)
	}
	if ed.prompt != "demo> " {
		t.Fatalf("expected trailing space on prompt, got %q", ed.prompt)
	}
}

func TestShellPromptWithoutArgumentResets(t *testing.T) {
	ed := &stubEditor{prompt: "old> "}
	shell := New("alice", ed)
	if _, cont := shell.Handle(context.Background(), "prompt"); !cont {
		t.Fatalf("expected session to continue")
	}
	if ed.prompt != "" {
		t.Fatalf("expected empty prompt to request the default, got %q", ed.prompt)
	}
}

func TestShellWhoami(t *testing.T) {
	out, _ := New("alice", &stubEditor{}).Handle(context.Background(), "whoami")
	if out != "alice" {
		t.Fatalf("unexpected output %q", out)
	}
	out, _ = New("", &stubEditor{}).Handle(context.Background(), "whoami")
	if out != "anonymous" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestShellExitStops(t *testing.T) {
	for _, cmd := range []string{"exit", "quit"} {
		if _, cont := New("alice", &stubEditor{}).Handle(context.Background(), cmd); cont {
			t.Fatalf("expected %q to end the session", cmd)
		}
	}
}

func TestShellUnknownCommand(t *testing.T) {
	out, cont := New("alice", &stubEditor{}).Handle(context.Background(), "frobnicate")
	if !cont {
		t.Fatalf("expected session to continue")
	}
	if !strings.Contains(out, "frobnicate") || !strings.Contains(out, "help") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestWriteTextUsesCRLF(t *testing.T) {
	var b strings.Builder
	WriteText(&b, "one\ntwo")
	if b.String() != "one\r\ntwo\r\n" {
		t.Fatalf("unexpected output %q", b.String())
	}
	b.Reset()
	WriteText(&b, "done\r\n")
	if b.String() != "done\r\n" {
		t.Fatalf("unexpected output %q", b.String())
	}
}

func TestStylePromptKeepsTrailingSpacePlain(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	got := StylePrompt("> ")
	if !strings.HasPrefix(got, ansiBold+ansiCyan+">") {
		t.Fatalf("expected styled prompt, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset+" ") {
		t.Fatalf("expected reset before the trailing space, got %q", got)
	}
}

func TestStylePromptHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if got := StylePrompt("> "); got != "> " {
		t.Fatalf("expected plain prompt, got %q", got)
	}
}

func TestStylePromptLeavesStyledPromptsAlone(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	styled := "\x1b[32m$\x1b[0m "
	if got := StylePrompt(styled); got != styled {
		t.Fatalf("expected pass-through, got %q", got)
	}
}
