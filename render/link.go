package render

import "github.com/gogpu/richtext/stream"

// LinkTracker follows the pointer or caret over a block and keeps at most
// one link active.
//
// A link is activated when the tracked position enters it and
// deactivated when the position leaves it or Deactivate is called. The
// zero value has no active link. LinkTracker is not safe for concurrent
// use.
type LinkTracker struct {
	active string
	ok     bool
}

// Active returns the target of the active link.
func (t *LinkTracker) Active() (string, bool) {
	return t.active, t.ok
}

// Update tracks the pointer at (x, y) and reports whether the active link
// changed.
func (t *LinkTracker) Update(s *stream.Stream, x, y float64) bool {
	return t.set(LinkAt(s, x, y))
}

// UpdateCursor tracks the caret before the glyph at index and reports
// whether the active link changed.
func (t *LinkTracker) UpdateCursor(s *stream.Stream, index int) bool {
	return t.set(LinkAtGlyph(s, index))
}

// Deactivate clears the active link and reports whether one was active.
func (t *LinkTracker) Deactivate() bool {
	return t.set("", false)
}

func (t *LinkTracker) set(target string, ok bool) bool {
	if t.ok == ok && t.active == target {
		return false
	}
	t.active, t.ok = target, ok
	return true
}
