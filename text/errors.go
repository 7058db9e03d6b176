package text

import "errors"

// Sentinel errors for text package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")

	// ErrNilFace is returned when a font is built without a regular face.
	ErrNilFace = errors.New("text: regular face is nil")

	// ErrNoOutlines is returned by RasterFace for sources without glyph
	// outlines.
	ErrNoOutlines = errors.New("text: font has no outlines")
)
