package terminal

import (
	"strings"
	"testing"

	"pkt.systems/termline/schema"
)

func kinds(events []schema.KeyEvent) []schema.KeyKind {
	out := make([]schema.KeyKind, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Kind)
	}
	return out
}

func kindsEqual(got, want []schema.KeyKind) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestDecoderPlainText(t *testing.T) {
	d := &Decoder{}
	events := d.Feed([]byte("hi"))
	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].R != 'h' || events[1].R != 'i' {
		t.Fatalf("runes = %c %c, want h i", events[0].R, events[1].R)
	}
}

func TestDecoderEnterVariants(t *testing.T) {
	d := &Decoder{}
	if got := kinds(d.Feed([]byte("\r\n"))); !kindsEqual(got, []schema.KeyKind{schema.KeyEnter}) {
		t.Fatalf("crlf = %v, want one enter", got)
	}
	if got := kinds(d.Feed([]byte("\n"))); !kindsEqual(got, []schema.KeyKind{schema.KeyEnter}) {
		t.Fatalf("lf = %v, want one enter", got)
	}
	if got := kinds(d.Feed([]byte("\r\r"))); !kindsEqual(got, []schema.KeyKind{schema.KeyEnter, schema.KeyEnter}) {
		t.Fatalf("crcr = %v, want two enters", got)
	}
}

func TestDecoderCRLFSplitAcrossFeeds(t *testing.T) {
	d := &Decoder{}
	first := kinds(d.Feed([]byte("\r")))
	second := kinds(d.Feed([]byte("\n")))
	if !kindsEqual(first, []schema.KeyKind{schema.KeyEnter}) || len(second) != 0 {
		t.Fatalf("split crlf = %v then %v, want one enter total", first, second)
	}
}

func TestDecoderArrowKeys(t *testing.T) {
	cases := []struct {
		in   string
		want schema.KeyKind
	}{
		{"\x1b[A", schema.KeyUp},
		{"\x1b[B", schema.KeyDown},
		{"\x1b[C", schema.KeyRight},
		{"\x1b[D", schema.KeyLeft},
		{"\x1bOA", schema.KeyUp},
		{"\x1bOC", schema.KeyRight},
		{"\x1b[H", schema.KeyHome},
		{"\x1b[F", schema.KeyEnd},
		{"\x1b[3~", schema.KeyDelete},
		{"\x1b[5~", schema.KeyPageUp},
		{"\x1b[6~", schema.KeyPageDown},
		{"\x1b[Z", schema.KeyShiftTab},
		{"\x1b[1;2Z", schema.KeyShiftTab},
		{"\x1b[1;5C", schema.KeyWordRight},
		{"\x1b[1;5D", schema.KeyWordLeft},
	}
	for _, tc := range cases {
		d := &Decoder{}
		events := d.Feed([]byte(tc.in))
		if len(events) != 1 || events[0].Kind != tc.want {
			t.Fatalf("%q = %v, want %v", tc.in, kinds(events), tc.want)
		}
	}
}

func TestDecoderControlKeys(t *testing.T) {
	cases := []struct {
		in   byte
		want schema.KeyKind
	}{
		{0x01, schema.KeyHome},
		{0x03, schema.KeyInterrupt},
		{0x04, schema.KeyEOF},
		{0x05, schema.KeyEnd},
		{0x09, schema.KeyTab},
		{0x0b, schema.KeyKillToEnd},
		{0x0c, schema.KeyClear},
		{0x15, schema.KeyKillToStart},
		{0x17, schema.KeyDeleteWord},
		{0x7f, schema.KeyBackspace},
		{0x08, schema.KeyBackspace},
		{0x10, schema.KeyUp},
		{0x0e, schema.KeyDown},
	}
	for _, tc := range cases {
		d := &Decoder{}
		events := d.Feed([]byte{tc.in})
		if len(events) != 1 || events[0].Kind != tc.want {
			t.Fatalf("0x%02x = %v, want %v", tc.in, kinds(events), tc.want)
		}
	}
}

func TestDecoderAltWordKeys(t *testing.T) {
	d := &Decoder{}
	if got := kinds(d.Feed([]byte("\x1bb\x1bf\x1b\x7f"))); !kindsEqual(got, []schema.KeyKind{
		schema.KeyWordLeft, schema.KeyWordRight, schema.KeyDeleteWord,
	}) {
		t.Fatalf("alt chords = %v", got)
	}
}

func TestDecoderFragmentedEscape(t *testing.T) {
	d := &Decoder{}
	if events := d.Feed([]byte{0x1b}); len(events) != 0 {
		t.Fatalf("lone esc decoded early: %v", kinds(events))
	}
	if events := d.Feed([]byte{'['}); len(events) != 0 {
		t.Fatalf("esc-bracket decoded early: %v", kinds(events))
	}
	events := d.Feed([]byte{'A'})
	if len(events) != 1 || events[0].Kind != schema.KeyUp {
		t.Fatalf("completed sequence = %v, want up", kinds(events))
	}
}

func TestDecoderSplitUTF8(t *testing.T) {
	d := &Decoder{}
	raw := []byte("é")
	if events := d.Feed(raw[:1]); len(events) != 0 {
		t.Fatalf("partial utf8 decoded early: %v", kinds(events))
	}
	events := d.Feed(raw[1:])
	if len(events) != 1 || events[0].R != 'é' {
		t.Fatalf("events = %v, want é", events)
	}

	d = &Decoder{}
	wide := []byte("界")
	if events := d.Feed(wide[:2]); len(events) != 0 {
		t.Fatalf("partial utf8 decoded early: %v", kinds(events))
	}
	events = d.Feed(wide[2:])
	if len(events) != 1 || events[0].R != '界' {
		t.Fatalf("events = %v, want 界", events)
	}
}

func TestDecoderInvalidUTF8Discarded(t *testing.T) {
	d := &Decoder{}
	events := d.Feed([]byte{0xff, 'a', 0xc3, 'b'})
	if len(events) != 2 || events[0].R != 'a' || events[1].R != 'b' {
		t.Fatalf("events = %v, want a b", events)
	}
}

func TestDecoderMalformedCSIRecovers(t *testing.T) {
	d := &Decoder{}
	events := d.Feed([]byte("\x1b[\x01ok"))
	if len(events) != 2 || events[0].R != 'o' || events[1].R != 'k' {
		t.Fatalf("events = %v, want o k after discard", events)
	}
}

func TestDecoderRunawayCSIDiscarded(t *testing.T) {
	d := &Decoder{}
	events := d.Feed([]byte("\x1b[" + strings.Repeat("1", 16) + "ok"))
	if len(events) != 2 || events[0].R != 'o' || events[1].R != 'k' {
		t.Fatalf("events = %v, want o k after discard", events)
	}
}

func TestDecoderFlushEscape(t *testing.T) {
	d := &Decoder{}
	if events := d.Feed([]byte{0x1b}); len(events) != 0 {
		t.Fatalf("lone esc decoded early: %v", kinds(events))
	}
	ev, ok := d.FlushEscape()
	if !ok || ev.Kind != schema.KeyEscape {
		t.Fatalf("flush = %v %v, want escape", ev, ok)
	}
	if _, ok := d.FlushEscape(); ok {
		t.Fatalf("second flush produced an event")
	}

	d = &Decoder{}
	d.Feed([]byte{0x1b, '['})
	if _, ok := d.FlushEscape(); ok {
		t.Fatalf("flush fired on a pending sequence")
	}
}

func TestDecoderEscapeEscape(t *testing.T) {
	d := &Decoder{}
	events := d.Feed([]byte{0x1b, 0x1b})
	if len(events) != 1 || events[0].Kind != schema.KeyEscape {
		t.Fatalf("events = %v, want escape", kinds(events))
	}
}
