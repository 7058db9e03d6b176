package stream

// Cursor walks a Stream forward.
//
// A cursor is a plain index; it stays valid across Set but not across
// Insert or Truncate.
type Cursor struct {
	s   *Stream
	pos int
}

// Seek returns a cursor at index i.
func (s *Stream) Seek(i int) Cursor {
	return Cursor{s: s, pos: i}
}

// Seek moves the cursor to index i.
func (c *Cursor) Seek(i int) { c.pos = i }

// Index returns the current index.
func (c *Cursor) Index() int { return c.pos }

// Valid reports whether the cursor is on a record.
func (c *Cursor) Valid() bool { return c.pos >= 0 && c.pos < c.s.Len() }

// Tag returns the tag of the current record.
func (c *Cursor) Tag() Tag { return c.s.TagAt(c.pos) }

// Command decodes the current record.
func (c *Cursor) Command() Command { return c.s.At(c.pos) }

// Data returns the raw bytes of the current record. The slice aliases the
// stream and may only be used inside an AcquirePointers window.
func (c *Cursor) Data() []byte {
	if !c.s.Pinned() {
		panic("stream: Data outside AcquirePointers")
	}
	return c.s.slot(c.pos)
}

// SeekNextCommand advances one record and reports whether the cursor is
// still on a record.
func (c *Cursor) SeekNextCommand() bool {
	if c.pos < c.s.Len() {
		c.pos++
	}
	return c.Valid()
}

// SeekNextLine advances to the next LineInfo record. From a LineInfo it
// skips the whole line using LengthInCommands; from anywhere else it scans
// forward. It reports whether a LineInfo was found; if not the cursor is
// at the end.
func (c *Cursor) SeekNextLine() bool {
	n := c.s.Len()
	if c.Valid() && c.Tag() == TagLineInfo {
		c.pos += 1 + int(c.s.LineInfo(c.pos).LengthInCommands)
		if c.pos > n {
			c.pos = n
		}
		if c.Valid() && c.Tag() == TagLineInfo {
			return true
		}
	} else if c.pos < n {
		c.pos++
	}
	for c.pos < n {
		if c.Tag() == TagLineInfo {
			return true
		}
		c.pos++
	}
	return false
}

// SeekEnd moves the cursor past the last record.
func (c *Cursor) SeekEnd() { c.pos = c.s.Len() }
