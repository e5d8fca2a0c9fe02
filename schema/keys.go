package schema

// KeyKind discriminates decoded key events.
type KeyKind int

const (
	// KeyRune is a printable character; R carries the rune.
	KeyRune KeyKind = iota
	// KeyEnter submits the current line (CR, LF, or CRLF).
	KeyEnter
	// KeyBackspace deletes the character before the cursor.
	KeyBackspace
	// KeyDelete deletes the character under the cursor.
	KeyDelete
	// KeyLeft moves the cursor one column left.
	KeyLeft
	// KeyRight moves the cursor one column right.
	KeyRight
	// KeyUp recalls the previous history entry.
	KeyUp
	// KeyDown recalls the next history entry (or the live draft).
	KeyDown
	// KeyHome moves the cursor to the start of the line.
	KeyHome
	// KeyEnd moves the cursor to the end of the line.
	KeyEnd
	// KeyWordLeft moves the cursor to the previous word boundary.
	KeyWordLeft
	// KeyWordRight moves the cursor past the next word.
	KeyWordRight
	// KeyDeleteWord removes the word before the cursor.
	KeyDeleteWord
	// KeyKillToStart removes everything before the cursor.
	KeyKillToStart
	// KeyKillToEnd removes everything at and after the cursor.
	KeyKillToEnd
	// KeyTab requests completion, or advances an active completion cycle.
	KeyTab
	// KeyShiftTab steps an active completion cycle backwards.
	KeyShiftTab
	// KeyClear repaints on a cleared screen.
	KeyClear
	// KeyInterrupt is Ctrl-C.
	KeyInterrupt
	// KeyEOF is Ctrl-D.
	KeyEOF
	// KeyEscape is a bare ESC with no sequence following it.
	KeyEscape
	// KeyPageUp and KeyPageDown are decoded so their sequences never leak
	// into the buffer as text; the editor ignores them.
	KeyPageUp
	KeyPageDown
	// KeyResize signals that the terminal geometry changed.
	KeyResize
)

// KeyEvent is a single decoded keystroke, or a driver notice such as a
// resize. Produced by the terminal decoder, consumed by the editor loop.
type KeyEvent struct {
	Kind KeyKind
	R    rune
}

var keyKindNames = map[KeyKind]string{
	KeyRune:        "rune",
	KeyEnter:       "enter",
	KeyBackspace:   "backspace",
	KeyDelete:      "delete",
	KeyLeft:        "left",
	KeyRight:       "right",
	KeyUp:          "up",
	KeyDown:        "down",
	KeyHome:        "home",
	KeyEnd:         "end",
	KeyWordLeft:    "word-left",
	KeyWordRight:   "word-right",
	KeyDeleteWord:  "delete-word",
	KeyKillToStart: "kill-to-start",
	KeyKillToEnd:   "kill-to-end",
	KeyTab:         "tab",
	KeyShiftTab:    "shift-tab",
	KeyClear:       "clear",
	KeyInterrupt:   "interrupt",
	KeyEOF:         "eof",
	KeyEscape:      "escape",
	KeyPageUp:      "page-up",
	KeyPageDown:    "page-down",
	KeyResize:      "resize",
}

// String returns a stable lowercase name for the kind.
func (k KeyKind) String() string {
	if name, ok := keyKindNames[k]; ok {
		return name
	}
	return "unknown"
}
