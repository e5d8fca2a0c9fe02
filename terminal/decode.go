package terminal

import (
	"unicode/utf8"

	"pkt.systems/termline/schema"
)

// Decoder assembles raw terminal bytes into key events. Bytes arrive in
// arbitrary fragments; an incomplete escape or UTF-8 sequence stays
// buffered until the next feed, so a split sequence is never misread as
// printable input. Malformed sequences are dropped and decoding resumes
// at the next byte.
type Decoder struct {
	buf       []byte
	lastWasCR bool
}

// Feed appends raw bytes and decodes every event that is complete so far.
func (d *Decoder) Feed(p []byte) []schema.KeyEvent {
	d.buf = append(d.buf, p...)
	events, consumed := d.parse(d.buf)
	if consumed > 0 {
		if consumed >= len(d.buf) {
			d.buf = d.buf[:0]
		} else {
			copy(d.buf, d.buf[consumed:])
			d.buf = d.buf[:len(d.buf)-consumed]
		}
	}
	return events
}

// FlushEscape resolves a pending lone ESC byte as the Escape key. The
// driver calls it after a read timeout, when no continuation bytes are
// coming.
func (d *Decoder) FlushEscape() (schema.KeyEvent, bool) {
	if len(d.buf) == 1 && d.buf[0] == 0x1b {
		d.buf = d.buf[:0]
		return schema.KeyEvent{Kind: schema.KeyEscape}, true
	}
	return schema.KeyEvent{}, false
}

// parse decodes events from data and reports how many bytes it consumed.
// It stops short of a trailing incomplete sequence.
func (d *Decoder) parse(data []byte) ([]schema.KeyEvent, int) {
	var events []schema.KeyEvent
	i := 0
	for i < len(data) {
		b := data[i]
		if d.lastWasCR {
			d.lastWasCR = false
			if b == '\n' {
				i++
				continue
			}
		}
		switch {
		case b == 0x1b:
			consumed, ev, ok := parseEscape(data[i:])
			if consumed == 0 {
				return events, i
			}
			if ok {
				events = append(events, ev)
			}
			i += consumed
		case b == '\r':
			d.lastWasCR = true
			events = append(events, schema.KeyEvent{Kind: schema.KeyEnter})
			i++
		case b == '\n':
			events = append(events, schema.KeyEvent{Kind: schema.KeyEnter})
			i++
		case b < 0x20:
			if ev, ok := controlKey(b); ok {
				events = append(events, ev)
			}
			i++
		case b == 0x7f:
			events = append(events, schema.KeyEvent{Kind: schema.KeyBackspace})
			i++
		case b < utf8.RuneSelf:
			events = append(events, schema.KeyEvent{Kind: schema.KeyRune, R: rune(b)})
			i++
		default:
			seqLen := utf8SeqLen(b)
			if seqLen == 0 {
				// Invalid start byte.
				i++
				continue
			}
			if i+seqLen > len(data) {
				return events, i
			}
			r, size := utf8.DecodeRune(data[i:])
			if r == utf8.RuneError && size == 1 {
				i++
				continue
			}
			events = append(events, schema.KeyEvent{Kind: schema.KeyRune, R: r})
			i += size
		}
	}
	return events, i
}

// utf8SeqLen returns the expected sequence length for a UTF-8 start byte,
// zero if the byte cannot start a sequence.
func utf8SeqLen(b byte) int {
	switch {
	case b < 0x80:
		return 1
	case b&0xe0 == 0xc0:
		return 2
	case b&0xf0 == 0xe0:
		return 3
	case b&0xf8 == 0xf0:
		return 4
	default:
		return 0
	}
}

// parseEscape decodes one escape-initiated sequence. consumed is zero when
// the sequence is still incomplete; ok is false for recognized-but-unmapped
// sequences, which are swallowed.
func parseEscape(data []byte) (consumed int, ev schema.KeyEvent, ok bool) {
	if len(data) < 2 {
		return 0, schema.KeyEvent{}, false
	}
	switch data[1] {
	case 0x1b:
		return 2, schema.KeyEvent{Kind: schema.KeyEscape}, true
	case '[':
		return parseCSI(data)
	case 'O':
		return parseSS3(data)
	case 'b', 'B':
		return 2, schema.KeyEvent{Kind: schema.KeyWordLeft}, true
	case 'f', 'F':
		return 2, schema.KeyEvent{Kind: schema.KeyWordRight}, true
	case 0x7f, 0x08:
		return 2, schema.KeyEvent{Kind: schema.KeyDeleteWord}, true
	default:
		// Unmapped alt chord.
		return 2, schema.KeyEvent{}, false
	}
}

// maxCSIParams bounds the parameter bytes scanned before a sequence is
// declared runaway and dropped.
const maxCSIParams = 16

func parseCSI(data []byte) (int, schema.KeyEvent, bool) {
	scanLimit := len(data)
	if scanLimit > 2+maxCSIParams {
		scanLimit = 2 + maxCSIParams
	}
	end := 2
	for end < scanLimit {
		b := data[end]
		if b >= 0x40 && b <= 0x7e {
			end++
			ev, ok := lookupCSI(string(data[2:end]))
			return end, ev, ok
		}
		if b < 0x20 {
			// Malformed parameter byte; discard through it.
			return end + 1, schema.KeyEvent{}, false
		}
		end++
	}
	if end-2 >= maxCSIParams {
		return end, schema.KeyEvent{}, false
	}
	return 0, schema.KeyEvent{}, false
}

func lookupCSI(seq string) (schema.KeyEvent, bool) {
	switch seq {
	case "A":
		return schema.KeyEvent{Kind: schema.KeyUp}, true
	case "B":
		return schema.KeyEvent{Kind: schema.KeyDown}, true
	case "C":
		return schema.KeyEvent{Kind: schema.KeyRight}, true
	case "D":
		return schema.KeyEvent{Kind: schema.KeyLeft}, true
	case "H":
		return schema.KeyEvent{Kind: schema.KeyHome}, true
	case "F":
		return schema.KeyEvent{Kind: schema.KeyEnd}, true
	case "Z", "1;2Z":
		return schema.KeyEvent{Kind: schema.KeyShiftTab}, true
	case "1~", "7~":
		return schema.KeyEvent{Kind: schema.KeyHome}, true
	case "3~":
		return schema.KeyEvent{Kind: schema.KeyDelete}, true
	case "4~", "8~":
		return schema.KeyEvent{Kind: schema.KeyEnd}, true
	case "5~":
		return schema.KeyEvent{Kind: schema.KeyPageUp}, true
	case "6~":
		return schema.KeyEvent{Kind: schema.KeyPageDown}, true
	case "1;5C":
		return schema.KeyEvent{Kind: schema.KeyWordRight}, true
	case "1;5D":
		return schema.KeyEvent{Kind: schema.KeyWordLeft}, true
	default:
		return schema.KeyEvent{}, false
	}
}

func parseSS3(data []byte) (int, schema.KeyEvent, bool) {
	if len(data) < 3 {
		return 0, schema.KeyEvent{}, false
	}
	switch data[2] {
	case 'A':
		return 3, schema.KeyEvent{Kind: schema.KeyUp}, true
	case 'B':
		return 3, schema.KeyEvent{Kind: schema.KeyDown}, true
	case 'C':
		return 3, schema.KeyEvent{Kind: schema.KeyRight}, true
	case 'D':
		return 3, schema.KeyEvent{Kind: schema.KeyLeft}, true
	case 'H':
		return 3, schema.KeyEvent{Kind: schema.KeyHome}, true
	case 'F':
		return 3, schema.KeyEvent{Kind: schema.KeyEnd}, true
	default:
		return 3, schema.KeyEvent{}, false
	}
}

func controlKey(b byte) (schema.KeyEvent, bool) {
	switch b {
	case 0x01:
		return schema.KeyEvent{Kind: schema.KeyHome}, true
	case 0x02:
		return schema.KeyEvent{Kind: schema.KeyLeft}, true
	case 0x03:
		return schema.KeyEvent{Kind: schema.KeyInterrupt}, true
	case 0x04:
		return schema.KeyEvent{Kind: schema.KeyEOF}, true
	case 0x05:
		return schema.KeyEvent{Kind: schema.KeyEnd}, true
	case 0x06:
		return schema.KeyEvent{Kind: schema.KeyRight}, true
	case 0x08:
		return schema.KeyEvent{Kind: schema.KeyBackspace}, true
	case 0x09:
		return schema.KeyEvent{Kind: schema.KeyTab}, true
	case 0x0b:
		return schema.KeyEvent{Kind: schema.KeyKillToEnd}, true
	case 0x0c:
		return schema.KeyEvent{Kind: schema.KeyClear}, true
	case 0x0e:
		return schema.KeyEvent{Kind: schema.KeyDown}, true
	case 0x10:
		return schema.KeyEvent{Kind: schema.KeyUp}, true
	case 0x15:
		return schema.KeyEvent{Kind: schema.KeyKillToStart}, true
	case 0x17:
		return schema.KeyEvent{Kind: schema.KeyDeleteWord}, true
	default:
		return schema.KeyEvent{}, false
	}
}
