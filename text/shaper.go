package text

// Shaper converts text to positioned glyphs.
// Implementations provide different levels of text shaping support:
//   - BuiltinShaper: one glyph per rune, kerning only
//   - GoTextShaper: HarfBuzz-level shaping via go-text/typesetting
//
// Glyphs are returned in visual order. For DirectionRTL the first glyph is
// the rightmost one. Cluster values are byte offsets into s.
type Shaper interface {
	Shape(s string, face Face, dir Direction) []ShapedGlyph
}

// BuiltinShaper positions one glyph per rune using the face's advances and
// kerning. It does not substitute ligatures or contextual forms.
//
// BuiltinShaper is stateless and safe for concurrent use.
type BuiltinShaper struct{}

// Shape implements Shaper.
func (BuiltinShaper) Shape(s string, face Face, dir Direction) []ShapedGlyph {
	if s == "" || face == nil {
		return nil
	}

	result := make([]ShapedGlyph, 0, len(s))
	var (
		prev  rune
		first = true
	)
	for i, r := range s {
		advance := face.GlyphAdvance(r)
		if !first {
			// Kerning is folded into the previous glyph's advance.
			result[len(result)-1].XAdvance += face.Kern(prev, r)
		}
		result = append(result, ShapedGlyph{
			GID:      glyphIDOf(face, r),
			Cluster:  i,
			XAdvance: advance,
		})
		prev = r
		first = false
	}

	if dir == DirectionRTL {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	return result
}
