package core

import "strings"

// Completer supplies ordered completion candidates for the text left of the
// cursor. Implementations come from the hosting application; the engine
// never inspects candidates beyond applying them.
type Completer interface {
	Complete(prefix string) []string
}

// CompleteFunc adapts a plain function to Completer.
type CompleteFunc func(prefix string) []string

// Complete implements Completer.
func (f CompleteFunc) Complete(prefix string) []string {
	return f(prefix)
}

// completion tracks an active tab cycle. A cycle stays valid only across
// immediately repeated Tab or Shift-Tab presses; every other action
// invalidates it.
type completion struct {
	completer  Completer
	candidates []string
	index      int
	active     bool
}

func newCompletion(completer Completer) *completion {
	return &completion{completer: completer}
}

// Invalidate drops the active cycle.
func (c *completion) Invalidate() {
	c.active = false
	c.candidates = nil
}

// Cycle produces the next buffer text for a completion keypress. step is +1
// for Tab and -1 for Shift-Tab. The second result is false when no
// completion applies and the buffer must stay untouched.
func (c *completion) Cycle(prefix string, step int) (string, bool) {
	if c == nil || c.completer == nil {
		return "", false
	}
	if c.active {
		n := len(c.candidates)
		c.index = ((c.index+step)%n + n) % n
		return c.candidates[c.index], true
	}
	candidates := c.completer.Complete(prefix)
	if len(candidates) == 0 {
		return "", false
	}
	if len(candidates) == 1 {
		return candidates[0], true
	}
	if exact, ok := exactMatch(candidates, prefix); ok {
		return exact, true
	}
	c.candidates = candidates
	c.index = 0
	c.active = true
	return c.candidates[0], true
}

// exactMatch reports a candidate equal to the prefix when every other
// candidate merely extends it. Such a prefix is already a complete word and
// cycling is not entered.
func exactMatch(candidates []string, prefix string) (string, bool) {
	found := false
	for _, candidate := range candidates {
		if candidate == prefix {
			found = true
			continue
		}
		if !strings.HasPrefix(candidate, prefix) {
			return "", false
		}
	}
	if !found {
		return "", false
	}
	return prefix, true
}
