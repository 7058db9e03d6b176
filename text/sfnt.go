package text

import (
	"fmt"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// ParsedFont represents a parsed font file.
// Sizes are given in pixels per em.
type ParsedFont interface {
	// Name returns the font family name, or "" if not available.
	Name() string

	// GlyphIndex returns the glyph index for a rune.
	// Returns 0 if the font has no glyph for r.
	GlyphIndex(r rune) uint16

	// GlyphAdvance returns the advance width of a glyph.
	GlyphAdvance(glyphIndex uint16, ppem float64) float64

	// Kern returns the kerning adjustment between two glyphs.
	// Fonts without kerning data report 0.
	Kern(left, right uint16, ppem float64) float64

	// GlyphBounds returns the bounding box for a glyph.
	GlyphBounds(glyphIndex uint16, ppem float64) Rect

	// Metrics returns the font metrics.
	Metrics(ppem float64) Metrics
}

// parseSFNT parses TTF or OTF data with golang.org/x/image/font/opentype.
func parseSFNT(data []byte) (ParsedFont, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("text: failed to parse font: %w", err)
	}
	return &sfntFont{font: f}, nil
}

// sfntFont implements ParsedFont on top of sfnt.Font.
// A fresh sfnt.Buffer is used per call so the value is safe for concurrent use.
type sfntFont struct {
	font *opentype.Font
}

func (f *sfntFont) Name() string {
	if name, err := f.font.Name(nil, sfnt.NameIDFamily); err == nil {
		return name
	}
	if name, err := f.font.Name(nil, sfnt.NameIDFull); err == nil {
		return name
	}
	return ""
}

func (f *sfntFont) GlyphIndex(r rune) uint16 {
	idx, err := f.font.GlyphIndex(nil, r)
	if err != nil {
		return 0
	}
	return uint16(idx)
}

func (f *sfntFont) GlyphAdvance(glyphIndex uint16, ppem float64) float64 {
	var buf sfnt.Buffer
	advance, err := f.font.GlyphAdvance(&buf, sfnt.GlyphIndex(glyphIndex), toFixed(ppem), font.HintingNone)
	if err != nil {
		return 0
	}
	return fromFixed(advance)
}

func (f *sfntFont) Kern(left, right uint16, ppem float64) float64 {
	var buf sfnt.Buffer
	k, err := f.font.Kern(&buf, sfnt.GlyphIndex(left), sfnt.GlyphIndex(right), toFixed(ppem), font.HintingNone)
	if err != nil {
		// sfnt.ErrNotFound means the font carries no kern table.
		return 0
	}
	return fromFixed(k)
}

func (f *sfntFont) GlyphBounds(glyphIndex uint16, ppem float64) Rect {
	var buf sfnt.Buffer
	bounds, _, err := f.font.GlyphBounds(&buf, sfnt.GlyphIndex(glyphIndex), toFixed(ppem), font.HintingNone)
	if err != nil {
		return Rect{}
	}
	return Rect{
		MinX: fromFixed(bounds.Min.X),
		MinY: fromFixed(bounds.Min.Y),
		MaxX: fromFixed(bounds.Max.X),
		MaxY: fromFixed(bounds.Max.Y),
	}
}

func (f *sfntFont) Metrics(ppem float64) Metrics {
	var buf sfnt.Buffer
	m, err := f.font.Metrics(&buf, toFixed(ppem), font.HintingNone)
	if err != nil {
		return Metrics{}
	}
	// sfnt reports Descent as a positive distance below the baseline.
	lineGap := fromFixed(m.Height) - fromFixed(m.Ascent) - fromFixed(m.Descent)
	if lineGap < 0 {
		lineGap = 0
	}
	return Metrics{
		Ascent:    fromFixed(m.Ascent),
		Descent:   fromFixed(m.Descent),
		LineGap:   lineGap,
		XHeight:   fromFixed(m.XHeight),
		CapHeight: fromFixed(m.CapHeight),
	}
}

// toFixed converts a float64 size to fixed.Int26_6.
func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fromFixed converts a fixed.Int26_6 value to float64.
func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64.0
}

// RasterFace returns a golang.org/x/image face at size pixels per em for
// drawing glyph masks. Every call creates a new face; the result is not
// safe for concurrent use.
func (s *FontSource) RasterFace(size float64) (font.Face, error) {
	s.copyCheck()
	f, ok := s.parsed.(*sfntFont)
	if !ok {
		return nil, ErrNoOutlines
	}
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
