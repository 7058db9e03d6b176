// Package scope implements stacks whose entries remember the style depth
// they were pushed at.
//
// Layout and the renderer keep one Stack per push/pop command family.
// Popping a style removes every entry pushed at that style's depth, and a
// plain pop only succeeds when the top entry belongs to the current depth.
package scope

// Entry is one stack entry.
type Entry[T any] struct {
	Value T
	// Depth is the style depth at push time.
	Depth int
	// Implicit marks entries pushed on behalf of another command.
	Implicit bool
}

// Stack is a LIFO of entries. The zero value is an empty stack.
type Stack[T any] struct {
	entries []Entry[T]
}

// Push adds v at depth.
func (s *Stack[T]) Push(v T, depth int, implicit bool) {
	s.entries = append(s.entries, Entry[T]{Value: v, Depth: depth, Implicit: implicit})
}

// Pop removes the top entry regardless of depth.
func (s *Stack[T]) Pop() (Entry[T], bool) {
	if len(s.entries) == 0 {
		return Entry[T]{}, false
	}
	e := s.entries[len(s.entries)-1]
	s.entries = s.entries[:len(s.entries)-1]
	return e, true
}

// PopAt removes the top entry if it was pushed at depth.
func (s *Stack[T]) PopAt(depth int) (Entry[T], bool) {
	if e, ok := s.Top(); !ok || e.Depth != depth {
		return Entry[T]{}, false
	}
	return s.Pop()
}

// PopDepth removes every entry on top of the stack pushed at depth and
// returns them, topmost first.
func (s *Stack[T]) PopDepth(depth int) []Entry[T] {
	var popped []Entry[T]
	for {
		e, ok := s.PopAt(depth)
		if !ok {
			return popped
		}
		popped = append(popped, e)
	}
}

// Top returns the top entry.
func (s *Stack[T]) Top() (Entry[T], bool) {
	if len(s.entries) == 0 {
		return Entry[T]{}, false
	}
	return s.entries[len(s.entries)-1], true
}

// Len returns the number of entries.
func (s *Stack[T]) Len() int { return len(s.entries) }

// Reset removes every entry.
func (s *Stack[T]) Reset() { s.entries = s.entries[:0] }
