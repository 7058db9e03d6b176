package text

// ShapedGlyph is one positioned glyph produced by a Shaper.
type ShapedGlyph struct {
	// GID is the glyph index in the font.
	GID GlyphID

	// Cluster is the byte offset of the source character this glyph
	// was shaped from. Used to map glyphs back to source positions.
	Cluster int

	// XOffset and YOffset adjust the glyph relative to the pen position.
	XOffset, YOffset float64

	// XAdvance and YAdvance move the pen to the next glyph.
	XAdvance, YAdvance float64

	// Marker is set on the zero-advance glyph ShapedStringBuilder inserts
	// in front of every right-to-left run. Markers are never drawn.
	Marker bool
}

// Advance returns the summed horizontal advance of glyphs.
func Advance(glyphs []ShapedGlyph) float64 {
	var total float64
	for i := range glyphs {
		total += glyphs[i].XAdvance
	}
	return total
}

// Shaped is implemented by ShapedString and ShapedStringBuilder.
type Shaped interface {
	// Source returns the raw text the glyphs were shaped from.
	Source() string
	// Glyphs returns the shaped glyphs. The slice must not be modified.
	Glyphs() []ShapedGlyph
}

// ShapedString is an immutable raw string together with its shaped glyphs.
type ShapedString struct {
	source string
	glyphs []ShapedGlyph
}

// NewShapedString shapes all of s as a single run.
func NewShapedString(s string, face Face, dir Direction, shaper Shaper) *ShapedString {
	b := NewShapedStringBuilder(s)
	b.Append(0, len(s), face, dir, shaper)
	return b.String()
}

// Source implements Shaped.
func (s *ShapedString) Source() string { return s.source }

// Glyphs implements Shaped.
func (s *ShapedString) Glyphs() []ShapedGlyph { return s.glyphs }

// Len returns the number of glyphs, markers included.
func (s *ShapedString) Len() int { return len(s.glyphs) }

// ShapedStringBuilder shapes consecutive ranges of a raw source string into
// one growing glyph buffer. Layout appends one range per text piece and
// records the returned glyph offsets in its commands.
//
// ShapedStringBuilder is not safe for concurrent use.
type ShapedStringBuilder struct {
	source string
	glyphs []ShapedGlyph
}

// NewShapedStringBuilder creates a builder over source.
func NewShapedStringBuilder(source string) *ShapedStringBuilder {
	return &ShapedStringBuilder{source: source}
}

// Source implements Shaped.
func (b *ShapedStringBuilder) Source() string { return b.source }

// SetSource replaces the raw source. Existing glyphs keep their clusters,
// so the new source must extend the old one.
func (b *ShapedStringBuilder) SetSource(source string) { b.source = source }

// Glyphs implements Shaped.
func (b *ShapedStringBuilder) Glyphs() []ShapedGlyph { return b.glyphs }

// Len returns the number of glyphs, markers included.
func (b *ShapedStringBuilder) Len() int { return len(b.glyphs) }

// Append shapes source[start:end] and appends the glyphs. Clusters are
// rebased onto the full source. Right-to-left runs are preceded by a marker
// glyph, which is included in the returned count.
func (b *ShapedStringBuilder) Append(start, end int, face Face, dir Direction, shaper Shaper) (offset, count int) {
	offset = len(b.glyphs)
	if dir == DirectionRTL {
		b.glyphs = append(b.glyphs, ShapedGlyph{Cluster: start, Marker: true})
	}
	if shaper == nil {
		shaper = BuiltinShaper{}
	}
	for _, g := range shaper.Shape(b.source[start:end], face, dir) {
		g.Cluster += start
		b.glyphs = append(b.glyphs, g)
	}
	return offset, len(b.glyphs) - offset
}

// Truncate drops every glyph at index n and beyond.
func (b *ShapedStringBuilder) Truncate(n int) {
	if n < len(b.glyphs) {
		b.glyphs = b.glyphs[:n]
	}
}

// Reset removes all glyphs and keeps the source.
func (b *ShapedStringBuilder) Reset() {
	b.glyphs = b.glyphs[:0]
}

// String returns an immutable snapshot of the builder.
func (b *ShapedStringBuilder) String() *ShapedString {
	glyphs := make([]ShapedGlyph, len(b.glyphs))
	copy(glyphs, b.glyphs)
	return &ShapedString{source: b.source, glyphs: glyphs}
}
