package text

import "github.com/mattn/go-runewidth"

// MonoFace is a synthetic fixed-pitch face. Runes advance by whole cells:
// East Asian wide characters take two, combining marks none. There is no
// kerning.
type MonoFace struct {
	// Width is the advance of one cell.
	Width float64

	// Ascent, Descent and LineGap are returned by Metrics.
	Ascent, Descent, LineGap float64

	// Ranges limits the runes the face reports as present.
	// An empty list covers everything.
	Ranges []UnicodeRange

	// Dir is returned by Direction.
	Dir Direction
}

// NewMonoFace returns a MonoFace with the given advance and height split
// 80/20 between ascent and descent.
func NewMonoFace(width, height float64, ranges ...UnicodeRange) *MonoFace {
	return &MonoFace{
		Width:   width,
		Ascent:  height * 0.8,
		Descent: height * 0.2,
		Ranges:  ranges,
	}
}

// Metrics implements Face.
func (f *MonoFace) Metrics() Metrics {
	return Metrics{
		Ascent:    f.Ascent,
		Descent:   f.Descent,
		LineGap:   f.LineGap,
		XHeight:   f.Ascent / 2,
		CapHeight: f.Ascent * 0.9,
	}
}

// Advance implements Face.
func (f *MonoFace) Advance(s string) float64 {
	var total float64
	for _, r := range s {
		total += f.GlyphAdvance(r)
	}
	return total
}

// GlyphAdvance implements Face.
func (f *MonoFace) GlyphAdvance(r rune) float64 {
	return f.Width * float64(runewidth.RuneWidth(r))
}

// Kern implements Face.
func (f *MonoFace) Kern(_, _ rune) float64 { return 0 }

// HasGlyph implements Face.
func (f *MonoFace) HasGlyph(r rune) bool {
	if len(f.Ranges) == 0 {
		return true
	}
	for _, ur := range f.Ranges {
		if ur.Contains(r) {
			return true
		}
	}
	return false
}

// Size implements Face.
func (f *MonoFace) Size() float64 { return f.Ascent + f.Descent }

// Direction implements Face.
func (f *MonoFace) Direction() Direction { return f.Dir }

// Source implements Face. Synthetic faces have no source.
func (f *MonoFace) Source() *FontSource { return nil }

// glyphID maps covered runes to themselves so shaped output stays readable.
func (f *MonoFace) glyphID(r rune) GlyphID {
	if !f.HasGlyph(r) || r > 0xFFFF {
		return 0
	}
	return GlyphID(r)
}
