package core

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
)

// frame is one computed repaint: wrapped display rows plus the cell the
// cursor parks on (0-based row and column).
type frame struct {
	rows      []string
	cursorRow int
	cursorCol int
}

// layoutFrame wraps prompt plus text against width. Continuation rows are
// indented to the prompt width, wide runes never straddle a row boundary,
// and escape sequences in the prompt count zero columns.
func layoutFrame(prompt string, text []rune, cursor, width int) frame {
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(text) {
		cursor = len(text)
	}
	promptWidth := visibleWidth(prompt)
	if width <= 0 {
		width = promptWidth + len(text) + 1
	}
	promptVisible := prompt
	if promptWidth >= width {
		promptVisible = trimANSIToWidth(prompt, width-1)
		promptWidth = visibleWidth(promptVisible)
	}
	indent := strings.Repeat(" ", promptWidth)

	f := frame{cursorRow: 0, cursorCol: promptWidth}
	var row strings.Builder
	col := promptWidth
	cursorSet := false

	flush := func() {
		head := promptVisible
		if len(f.rows) > 0 {
			head = indent
		}
		f.rows = append(f.rows, head+row.String())
		row.Reset()
		col = promptWidth
	}

	for i, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		if col+w > width {
			flush()
		}
		if !cursorSet && i == cursor {
			f.cursorRow = len(f.rows)
			f.cursorCol = col
			cursorSet = true
		}
		row.WriteRune(r)
		col += w
	}
	if !cursorSet {
		if col >= width {
			flush()
		}
		f.cursorRow = len(f.rows)
		f.cursorCol = col
	}
	flush()
	return f
}

// renderer repaints the prompt and buffer in place. Every repaint is one
// batched write so a frame never tears.
type renderer struct {
	out         io.Writer
	prompt      string
	promptWidth int

	prevRows      int
	prevCursorRow int
	drawn         bool
}

func newRenderer(out io.Writer, prompt string) *renderer {
	return &renderer{out: out, prompt: prompt, promptWidth: visibleWidth(prompt)}
}

func (r *renderer) SetPrompt(prompt string) {
	r.prompt = prompt
	r.promptWidth = visibleWidth(prompt)
}

func (r *renderer) Prompt() string {
	return r.prompt
}

// Redraw paints the full frame: hop to the frame origin, erase below, write
// every row, park the cursor.
func (r *renderer) Redraw(text []rune, cursor, width int) error {
	f := layoutFrame(r.prompt, text, cursor, width)

	var b strings.Builder
	b.WriteString("\x1b[?25l")
	if r.drawn && r.prevCursorRow > 0 {
		b.WriteString(fmt.Sprintf("\x1b[%dA", r.prevCursorRow))
	}
	b.WriteString("\r\x1b[J")
	for i, row := range f.rows {
		if i > 0 {
			b.WriteString("\r\n")
		}
		b.WriteString(row)
	}
	if up := len(f.rows) - 1 - f.cursorRow; up > 0 {
		b.WriteString(fmt.Sprintf("\x1b[%dA", up))
	}
	b.WriteString("\r")
	if f.cursorCol > 0 {
		b.WriteString(fmt.Sprintf("\x1b[%dC", f.cursorCol))
	}
	b.WriteString("\x1b[?25h")

	r.prevRows = len(f.rows)
	r.prevCursorRow = f.cursorRow
	r.drawn = true
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Finish parks the cursor below the frame and emits a newline, leaving the
// submitted (or abandoned) line on screen. Follow-up output from the host
// starts on a fresh row.
func (r *renderer) Finish() error {
	var b strings.Builder
	if down := r.prevRows - 1 - r.prevCursorRow; r.drawn && down > 0 {
		b.WriteString(fmt.Sprintf("\x1b[%dB", down))
	}
	b.WriteString("\r\n")
	r.forget()
	_, err := io.WriteString(r.out, b.String())
	return err
}

// Clear wipes the screen and homes the cursor; the next Redraw paints at the
// top left.
func (r *renderer) Clear() error {
	r.forget()
	_, err := io.WriteString(r.out, "\x1b[H\x1b[2J")
	return err
}

// Echo writes raw output at the frame position, then forgets the frame. Used
// for the ^C echo.
func (r *renderer) Echo(s string) error {
	var b strings.Builder
	if down := r.prevRows - 1 - r.prevCursorRow; r.drawn && down > 0 {
		b.WriteString(fmt.Sprintf("\x1b[%dB", down))
	}
	b.WriteString(s)
	r.forget()
	_, err := io.WriteString(r.out, b.String())
	return err
}

func (r *renderer) forget() {
	r.prevRows = 0
	r.prevCursorRow = 0
	r.drawn = false
}

// visibleWidth measures display cells, skipping ANSI escape sequences.
func visibleWidth(text string) int {
	width := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			i = skipEscape(text, i+1)
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		i += size
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		width += w
	}
	return width
}

// trimANSIToWidth truncates to a display width while keeping escape
// sequences intact.
func trimANSIToWidth(text string, width int) string {
	if width <= 0 {
		return ""
	}
	var b strings.Builder
	visible := 0
	for i := 0; i < len(text); {
		if text[i] == 0x1b {
			start := i
			i = skipEscape(text, i+1)
			b.WriteString(text[start:i])
			continue
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if size == 0 {
			break
		}
		w := runewidth.RuneWidth(r)
		if w == 0 {
			w = 1
		}
		if visible+w > width {
			break
		}
		b.WriteRune(r)
		i += size
		visible += w
	}
	return b.String()
}

func skipEscape(text string, i int) int {
	if i >= len(text) {
		return i
	}
	switch text[i] {
	case '[':
		return skipCSI(text, i+1)
	case ']':
		return skipOSC(text, i+1)
	default:
		return i + 1
	}
}

func skipCSI(text string, i int) int {
	for i < len(text) {
		b := text[i]
		if b >= 0x40 && b <= 0x7e {
			return i + 1
		}
		i++
	}
	return i
}

func skipOSC(text string, i int) int {
	for i < len(text) {
		switch text[i] {
		case 0x07:
			return i + 1
		case 0x1b:
			if i+1 < len(text) && text[i+1] == '\\' {
				return i + 2
			}
		}
		i++
	}
	return i
}
