// Package demoshell implements the command set used by the termline demos.
// One Shell serves one editing session, local or SSH.
package demoshell

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"pkt.systems/termline"
	"pkt.systems/termline/internal/logx"
	"pkt.systems/termline/schema"
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
	ansiCyan  = "\x1b[36m"
)

// Editor is the session surface the shell drives.
type Editor interface {
	History() []string
	SetPrompt(prompt string) error
}

// Shell dispatches demo commands for one session.
type Shell struct {
	user schema.UserID
	ed   Editor
}

// New constructs a shell bound to the given editor session.
func New(user schema.UserID, ed Editor) *Shell {
	return &Shell{user: user, ed: ed}
}

const helpText = `commands:
  echo <text>     print text back
  fields <text>   show how the line splits into fields
  history         list lines recorded this session
  prompt [text]   change the prompt; no argument resets it
  whoami          print the login name
  help            show this help
  exit            leave the shell`

// Handle runs one submitted line. The returned text is shown to the user;
// a false continue flag ends the session.
func (s *Shell) Handle(ctx context.Context, line string) (string, bool) {
	fields := termline.Fields(line)
	if len(fields) == 0 {
		return "", true
	}
	cmd, args := fields[0], fields[1:]
	logx.WithSessionUser(ctx, "", s.user).Debug("shell command", "command", cmd, "args", len(args))
	switch cmd {
	case "help":
		return helpText, true
	case "echo":
		return strings.Join(args, " "), true
	case "fields":
		if len(args) == 0 {
			return "usage: fields <text>", true
		}
		var b strings.Builder
		for i, field := range args {
			fmt.Fprintf(&b, "%d: %q\n", i, field)
		}
		return strings.TrimRight(b.String(), "\n"), true
	case "history":
		entries := s.ed.History()
		if len(entries) == 0 {
			return "history is empty", true
		}
		var b strings.Builder
		for i, entry := range entries {
			fmt.Fprintf(&b, "%3d  %s\n", i+1, entry)
		}
		return strings.TrimRight(b.String(), "\n"), true
	case "prompt":
		prompt := strings.Join(args, " ")
		if prompt != "" && !strings.HasSuffix(prompt, " ") {
			prompt += " "
		}
		if err := s.ed.SetPrompt(prompt); err != nil {
			return fmt.Sprintf("prompt rejected: %v", err), true
		}
		return "", true
	case "whoami":
		if s.user == "" {
			return "anonymous", true
		}
		return string(s.user), true
	case "exit", "quit":
		return "", false
	default:
		return fmt.Sprintf("unknown command %q; type 'help' for a list", cmd), true
	}
}

// StylePrompt colors the prompt text, leaving trailing spaces outside
// the escape sequences. The renderer measures prompt width with escapes
// skipped, so the styled prompt occupies the same columns as the plain
// one. Prompts that already carry escapes pass through, as does
// everything when NO_COLOR is set.
func StylePrompt(prompt string) string {
	if os.Getenv("NO_COLOR") != "" || strings.Contains(prompt, "\x1b") {
		return prompt
	}
	trimmed := strings.TrimRight(prompt, " ")
	if trimmed == "" {
		return prompt
	}
	return ansiBold + ansiCyan + trimmed + ansiReset + prompt[len(trimmed):]
}

// WriteText writes shell output with CRLF line endings, which raw-mode
// terminals need to return the carriage.
func WriteText(w io.Writer, text string) {
	if text == "" {
		return
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	if !strings.HasSuffix(text, "\r\n") {
		text += "\r\n"
	}
	_, _ = io.WriteString(w, text)
}
