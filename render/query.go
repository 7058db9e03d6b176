package render

import (
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// All query coordinates are relative to the block origin passed to Draw.

// LineHit describes a line.
type LineHit struct {
	Line int
	Info stream.LineInfo

	// Top is the top of the line.
	Top float64

	// FirstGlyph is the block-wide index of the line's first glyph.
	FirstGlyph int
}

// GlyphHit describes a glyph or icon.
type GlyphHit struct {
	Glyph int
	Line  int

	Bounds text.Rect

	// Source indexes the stream's source registry. SourceOffset is a
	// byte offset into that source.
	Source       int16
	SourceOffset int

	Rune rune
	Icon bool
}

// InsertionPoint is a caret position between glyphs.
type InsertionPoint struct {
	// Index is the glyph index the caret stands before.
	Index int
	Line  int

	Source       int16
	SourceOffset int

	// Caret is a zero-width rectangle spanning the line.
	Caret text.Rect
}

// LineAtPosition returns the line that contains y. Lines are found from
// their metadata alone.
func LineAtPosition(s *stream.Stream, y float64) (LineHit, bool) {
	w, err := newWalker(s)
	if err != nil {
		return LineHit{}, false
	}
	w.fast = true
	s.AcquirePointers()
	defer s.ReleasePointers()

	if !w.seekLine(below(y)) || y < w.st.Top {
		return LineHit{}, false
	}
	return LineHit{
		Line:       w.st.Line,
		Info:       w.st.LineInfo,
		Top:        w.st.Top,
		FirstGlyph: w.lineGlyph,
	}, true
}

// GlyphAtPosition returns the glyph or icon under (x, y). Break glyphs
// are never hit.
func GlyphAtPosition(s *stream.Stream, x, y float64) (GlyphHit, bool) {
	w, err := newWalker(s)
	if err != nil {
		return GlyphHit{}, false
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace)
	s.AcquirePointers()
	defer s.ReleasePointers()

	b, ok := w.boxAt(x, y)
	if !ok {
		return GlyphHit{}, false
	}
	return w.glyphHit(b), true
}

// GlyphBounds returns the box of the glyph at index. Glyphs consumed by a
// line break have zero width and sit at the end of their line.
func GlyphBounds(s *stream.Stream, index int) (text.Rect, bool) {
	w, err := newWalker(s)
	if err != nil {
		return text.Rect{}, false
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace)
	s.AcquirePointers()
	defer s.ReleasePointers()

	b, ok := w.boxOf(index)
	if !ok {
		return text.Rect{}, false
	}
	return b.bounds(), true
}

// InsertionPointAt returns the caret position closest to (x, y).
//
// Points above or below the block snap to the first or last line, points
// beside a line to its ends. Within a line the caret goes before the
// grapheme under x when x is left of its midpoint and after it otherwise;
// right-to-left runs swap the two.
func InsertionPointAt(s *stream.Stream, x, y float64) (InsertionPoint, bool) {
	w, err := newWalker(s)
	if err != nil {
		return InsertionPoint{}, false
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace)
	s.AcquirePointers()
	defer s.ReleasePointers()

	last := int(w.info.LineCount) - 1
	match := func(st *State) bool {
		return st.Line >= last || y < st.Top+float64(st.LineInfo.Height)
	}
	if last < 0 || !w.seekLine(match) {
		return InsertionPoint{}, false
	}
	top, height := w.st.Top, float64(w.st.LineInfo.Height)
	line := w.st.Line
	lineStart := w.left(0, 0)
	boxes := w.collectLine()

	var hit, leftmost, rightmost *box
	for k := range boxes {
		b := &boxes[k]
		if b.brk {
			continue
		}
		if leftmost == nil || b.x < leftmost.x {
			leftmost = b
		}
		if rightmost == nil || b.x+b.w > rightmost.x+rightmost.w {
			rightmost = b
		}
		if hit == nil && x >= b.x && x < b.x+b.w {
			hit = b
		}
	}

	ip := InsertionPoint{Line: line, Source: w.st.SourceIndex}
	if leftmost == nil {
		ip.Index = w.lineGlyph
		ip.SourceOffset = w.lineSrc
		if len(boxes) > 0 {
			ip.Source, ip.SourceOffset = boxes[0].source, boxes[0].src
		}
		ip.Caret = text.Rect{MinX: lineStart, MinY: top, MaxX: lineStart, MaxY: top + height}
		return ip, true
	}
	switch {
	case hit != nil:
	case x < leftmost.x:
		hit = leftmost
	default:
		hit = rightmost
	}

	rightHalf := x >= (hit.cx0+hit.cx1)/2
	cx := hit.cx0
	if rightHalf {
		cx = hit.cx1
	}
	if rightHalf != hit.rtl {
		ip.Index, ip.SourceOffset = hit.c1, hit.cs1
	} else {
		ip.Index, ip.SourceOffset = hit.c0, hit.cs0
	}
	ip.Source = hit.source
	ip.Caret = text.Rect{MinX: cx, MinY: top, MaxX: cx, MaxY: top + height}
	return ip, true
}

// LinkAt returns the target of the link under (x, y).
func LinkAt(s *stream.Stream, x, y float64) (string, bool) {
	w, err := newWalker(s)
	if err != nil {
		return "", false
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace | stream.BlockNoScopes)
	s.AcquirePointers()
	defer s.ReleasePointers()

	b, ok := w.boxAt(x, y)
	if !ok || b.link == "" {
		return "", false
	}
	return b.link, true
}

// LinkAtGlyph returns the target of the link containing the glyph at
// index. Editors use it to find the link under the caret.
func LinkAtGlyph(s *stream.Stream, index int) (string, bool) {
	w, err := newWalker(s)
	if err != nil {
		return "", false
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace | stream.BlockNoScopes)
	s.AcquirePointers()
	defer s.ReleasePointers()

	b, ok := w.boxOf(index)
	if !ok || b.link == "" {
		return "", false
	}
	return b.link, true
}

func below(y float64) func(st *State) bool {
	return func(st *State) bool { return y < st.Top+float64(st.LineInfo.Height) }
}

func (w *walker) boxAt(x, y float64) (box, bool) {
	if !w.seekLine(below(y)) || y < w.st.Top {
		return box{}, false
	}
	for _, b := range w.collectLine() {
		if !b.brk && x >= b.x && x < b.x+b.w {
			return b, true
		}
	}
	return box{}, false
}

func (w *walker) boxOf(index int) (box, bool) {
	if index < 0 {
		return box{}, false
	}
	match := func(st *State) bool {
		return index < st.Glyph+int(st.LineInfo.LengthInGlyphs)
	}
	if !w.seekLine(match) {
		return box{}, false
	}
	for _, b := range w.collectLine() {
		if b.index == index {
			return b, true
		}
	}
	return box{}, false
}

func (w *walker) glyphHit(b box) GlyphHit {
	return GlyphHit{
		Glyph:        b.index,
		Line:         w.st.Line,
		Bounds:       b.bounds(),
		Source:       b.source,
		SourceOffset: b.src,
		Rune:         b.r,
		Icon:         b.icon,
	}
}
