package render

import (
	"image/color"

	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/text"
)

// Glyph is one positioned glyph handed to a Sink.
type Glyph struct {
	// Index is the block-wide glyph index.
	Index int

	// Rune is the source character, or the first character of the cluster
	// for shaped glyphs.
	Rune rune

	// GID is the glyph index in the font. Unshaped runs leave it zero.
	GID text.GlyphID

	// X and Y are the pen position on the baseline, shaping offsets applied.
	X, Y float64

	// Advance is the horizontal advance, kerning included.
	Advance float64

	Scale    float64
	Rotation float64
	Color    color.NRGBA
}

// GlyphRun is a sequence of glyphs drawn with one face.
type GlyphRun struct {
	Face text.Face

	// Text is the source text of the run.
	Text string

	// Glyphs may be a subset of the run when a glyph window is set.
	Glyphs []Glyph

	// Link is the target of the enclosing link, or "".
	Link string

	// Shaped reports whether the glyphs came from a shaper.
	Shaped bool
}

// Sprite is an inline icon handed to a Sink.
type Sprite struct {
	Icon *resource.Icon

	// Index is the block-wide glyph index of the icon.
	Index int

	// X and Y are the top-left corner; W and H the drawn size.
	X, Y, W, H float64

	Rotation float64
	Color    color.NRGBA
	Link     string
}

// Sink receives draw calls.
//
// The run and sprite passed to a Sink are only valid during the call;
// Draw reuses their storage. Implementations that keep them must copy.
type Sink interface {
	DrawGlyphRun(run *GlyphRun)
	DrawSprite(sp *Sprite)
}

// CustomSink is implemented by sinks that react to custom markup commands.
// Value is "" for commands without one.
type CustomSink interface {
	Sink
	DrawCustom(id byte, value string)
}
