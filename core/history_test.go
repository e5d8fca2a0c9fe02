package core

import "testing"

func TestHistoryAppendRejectsBlank(t *testing.T) {
	h := newHistory(10, false)
	if h.Append("") {
		t.Fatalf("expected empty entry to be rejected")
	}
	if h.Append("   \t") {
		t.Fatalf("expected whitespace entry to be rejected")
	}
	if h.Len() != 0 {
		t.Fatalf("expected no entries, got %d", h.Len())
	}
}

func TestHistoryDuplicateSuppression(t *testing.T) {
	h := newHistory(10, false)
	h.Append("ls")
	h.Append("ls")
	if h.Len() != 2 {
		t.Fatalf("suppression off: expected 2 entries, got %d", h.Len())
	}

	h = newHistory(10, true)
	h.Append("ls")
	h.Append("ls")
	if h.Len() != 1 {
		t.Fatalf("suppression on: expected 1 entry, got %d", h.Len())
	}
	h.Append("pwd")
	h.Append("ls")
	if h.Len() != 3 {
		t.Fatalf("non-adjacent duplicates must be kept, got %d entries", h.Len())
	}
}

func TestHistoryRespectsMax(t *testing.T) {
	h := newHistory(3, false)
	for _, entry := range []string{"one", "two", "three", "four"} {
		h.Append(entry)
	}
	entries := h.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0] != "two" || entries[2] != "four" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestHistoryBrowseRestoresDraft(t *testing.T) {
	h := newHistory(10, false)
	h.Append("ls")
	h.Append("pwd")

	entry, ok := h.BrowsePrev("cd")
	if !ok || entry != "pwd" {
		t.Fatalf("first prev: expected %q, got %q ok=%v", "pwd", entry, ok)
	}
	entry, ok = h.BrowsePrev("pwd")
	if !ok || entry != "ls" {
		t.Fatalf("second prev: expected %q, got %q ok=%v", "ls", entry, ok)
	}
	entry, ok = h.BrowseNext()
	if !ok || entry != "pwd" {
		t.Fatalf("first next: expected %q, got %q ok=%v", "pwd", entry, ok)
	}
	entry, ok = h.BrowseNext()
	if !ok || entry != "cd" {
		t.Fatalf("second next: expected stashed draft %q, got %q ok=%v", "cd", entry, ok)
	}
	if h.Browsing() {
		t.Fatalf("expected browsing to end at the live line")
	}
}

func TestHistoryBrowseBoundaries(t *testing.T) {
	h := newHistory(10, false)
	if _, ok := h.BrowsePrev("live"); ok {
		t.Fatalf("prev on empty history must be a no-op")
	}
	if _, ok := h.BrowseNext(); ok {
		t.Fatalf("next without browsing must be a no-op")
	}

	h.Append("only")
	if entry, ok := h.BrowsePrev("live"); !ok || entry != "only" {
		t.Fatalf("expected %q, got %q ok=%v", "only", entry, ok)
	}
	if _, ok := h.BrowsePrev("only"); ok {
		t.Fatalf("prev past the oldest entry must be a no-op")
	}
	if entry, ok := h.BrowseNext(); !ok || entry != "live" {
		t.Fatalf("expected draft %q, got %q ok=%v", "live", entry, ok)
	}
	if _, ok := h.BrowseNext(); ok {
		t.Fatalf("next past the live line must be a no-op")
	}
}

func TestHistoryAppendResetsBrowsing(t *testing.T) {
	h := newHistory(10, false)
	h.Append("ls")
	h.Append("pwd")
	if _, ok := h.BrowsePrev("draft"); !ok {
		t.Fatalf("expected browsing to start")
	}
	h.Append("cd /tmp")
	if h.Browsing() {
		t.Fatalf("append must reset browsing to the live line")
	}
	if entry, ok := h.BrowsePrev(""); !ok || entry != "cd /tmp" {
		t.Fatalf("expected newest entry %q, got %q ok=%v", "cd /tmp", entry, ok)
	}
}
