package text

// GlyphID is a unique identifier for a glyph within a font.
// The glyph ID is assigned by the font file and is font-specific.
type GlyphID uint16

// glyphIDer is implemented by faces that can report glyph indices.
type glyphIDer interface {
	glyphID(r rune) GlyphID
}

// glyphIDOf returns the glyph index of r in face, or 0 when the face
// cannot report one.
func glyphIDOf(face Face, r rune) GlyphID {
	if g, ok := face.(glyphIDer); ok {
		return g.glyphID(r)
	}
	return 0
}
