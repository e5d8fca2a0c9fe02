package core

// buffer owns the editable line and its cursor. The cursor is a rune index
// and always stays within [0, len(text)].
type buffer struct {
	text   []rune
	cursor int
}

func (b *buffer) String() string {
	return string(b.text)
}

func (b *buffer) Len() int {
	return len(b.text)
}

func (b *buffer) Cursor() int {
	return b.cursor
}

func (b *buffer) Clear() {
	b.text = nil
	b.cursor = 0
}

// SetText replaces the whole line and parks the cursor at its end.
func (b *buffer) SetText(value string) {
	if value == "" {
		b.Clear()
		return
	}
	b.text = []rune(value)
	b.cursor = len(b.text)
}

func (b *buffer) Insert(r rune) {
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor > len(b.text) {
		b.cursor = len(b.text)
	}
	b.text = append(b.text[:b.cursor], append([]rune{r}, b.text[b.cursor:]...)...)
	b.cursor++
}

func (b *buffer) Backspace() {
	if b.cursor <= 0 {
		return
	}
	b.text = append(b.text[:b.cursor-1], b.text[b.cursor:]...)
	b.cursor--
}

func (b *buffer) Delete() {
	if b.cursor < 0 || b.cursor >= len(b.text) {
		return
	}
	b.text = append(b.text[:b.cursor], b.text[b.cursor+1:]...)
}

// Move shifts the cursor by delta, clamped to [0, len(text)].
func (b *buffer) Move(delta int) {
	b.cursor += delta
	if b.cursor < 0 {
		b.cursor = 0
	}
	if b.cursor > len(b.text) {
		b.cursor = len(b.text)
	}
}

func (b *buffer) MoveStart() {
	b.cursor = 0
}

func (b *buffer) MoveEnd() {
	b.cursor = len(b.text)
}

func (b *buffer) MoveWordLeft() {
	if b.cursor <= 0 {
		return
	}
	i := b.cursor
	for i > 0 && isSpace(b.text[i-1]) {
		i--
	}
	for i > 0 && !isSpace(b.text[i-1]) {
		i--
	}
	b.cursor = i
}

func (b *buffer) MoveWordRight() {
	if b.cursor >= len(b.text) {
		return
	}
	i := b.cursor
	for i < len(b.text) && isSpace(b.text[i]) {
		i++
	}
	for i < len(b.text) && !isSpace(b.text[i]) {
		i++
	}
	b.cursor = i
}

func (b *buffer) DeleteWordBack() {
	if b.cursor <= 0 {
		return
	}
	start := b.cursor
	for start > 0 && isSpace(b.text[start-1]) {
		start--
	}
	for start > 0 && !isSpace(b.text[start-1]) {
		start--
	}
	b.text = append(b.text[:start], b.text[b.cursor:]...)
	b.cursor = start
}

func (b *buffer) KillToStart() {
	if b.cursor <= 0 {
		return
	}
	b.text = append(b.text[:0], b.text[b.cursor:]...)
	b.cursor = 0
}

func (b *buffer) KillToEnd() {
	if b.cursor >= len(b.text) {
		return
	}
	b.text = b.text[:b.cursor]
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
