package core

import (
	"strings"

	"pkt.systems/termline/schema"
)

// history stores submitted lines plus the browsing state. browse ==
// len(entries) means the live line is showing; draft keeps the live text
// stashed while older entries are browsed.
type history struct {
	entries []string
	max     int
	noDups  bool
	browse  int
	draft   string
}

func newHistory(max int, suppressDups bool) *history {
	if max <= 0 {
		max = schema.DefaultHistoryMaxLen
	}
	return &history{max: max, noDups: suppressDups}
}

// Append records a submission and leaves browsing pointed at the live line.
// Blank entries are dropped; adjacent duplicates are dropped when duplicate
// suppression is on.
func (h *history) Append(entry string) bool {
	if h == nil {
		return false
	}
	defer h.resetBrowse()
	if strings.TrimSpace(entry) == "" {
		return false
	}
	if h.noDups && len(h.entries) > 0 && h.entries[len(h.entries)-1] == entry {
		return false
	}
	h.entries = append(h.entries, entry)
	if len(h.entries) > h.max {
		h.entries = h.entries[len(h.entries)-h.max:]
	}
	return true
}

// BrowsePrev steps toward older entries, stashing live when leaving the live
// line. The second result is false when already at the oldest entry (or the
// history is empty) and the buffer must stay untouched.
func (h *history) BrowsePrev(live string) (string, bool) {
	if h == nil || len(h.entries) == 0 {
		return "", false
	}
	if h.browse == len(h.entries) {
		h.draft = live
		h.browse--
		return h.entries[h.browse], true
	}
	if h.browse == 0 {
		return "", false
	}
	h.browse--
	return h.entries[h.browse], true
}

// BrowseNext steps toward newer entries; arriving back at the live line
// returns the stashed draft. The second result is false when not browsing.
func (h *history) BrowseNext() (string, bool) {
	if h == nil || h.browse >= len(h.entries) {
		return "", false
	}
	h.browse++
	if h.browse == len(h.entries) {
		draft := h.draft
		h.draft = ""
		return draft, true
	}
	return h.entries[h.browse], true
}

// Browsing reports whether a history entry is currently loaded.
func (h *history) Browsing() bool {
	return h != nil && h.browse < len(h.entries)
}

func (h *history) resetBrowse() {
	h.browse = len(h.entries)
	h.draft = ""
}

func (h *history) Len() int {
	if h == nil {
		return 0
	}
	return len(h.entries)
}

// Entries returns a copy of the stored submissions, oldest first.
func (h *history) Entries() []string {
	if h == nil {
		return nil
	}
	return append([]string(nil), h.entries...)
}
