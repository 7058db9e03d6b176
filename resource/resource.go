package resource

import (
	"image/color"

	"github.com/gogpu/richtext/text"
)

// Style is a named bundle of formatting applied by |style:NAME|.
type Style struct {
	Name string

	// Font names a font in the same library. Empty keeps the current font.
	Font string

	// Bold and Italic flip the current bold and italic state when set.
	Bold, Italic bool

	// Color, when non-nil, is pushed as the text color.
	Color *color.NRGBA

	// GlyphShader names a shader to push. Empty pushes none.
	GlyphShader string
}

// Icon is an inline sprite referenced by |icon:NAME|.
type Icon struct {
	Name string

	// Sprite is handed to the draw sink unchanged.
	Sprite any

	// Width and Height are the drawn size in pixels.
	Width, Height float64

	// Ascender and Descender position the icon relative to the baseline.
	// Ascender + Descender is normally Height.
	Ascender, Descender float64
}

// GlyphState is the per-glyph drawing state a GlyphShader may modify.
type GlyphState struct {
	// Index is the glyph index within the block.
	Index int

	// Rune is the source character. For shaped glyphs it is the first
	// character of the glyph's cluster.
	Rune rune

	// GID is the glyph index in the font.
	GID text.GlyphID

	// X and Y are the pen position of the glyph.
	X, Y float64

	Scale    float64
	Rotation float64
	Color    color.NRGBA
}

// GlyphShader adjusts glyphs right before they are drawn.
// Shaders must be deterministic for a given GlyphState.
type GlyphShader interface {
	ShadeGlyph(g *GlyphState)
}

// GlyphShaderFunc adapts a function to GlyphShader.
type GlyphShaderFunc func(g *GlyphState)

// ShadeGlyph implements GlyphShader.
func (f GlyphShaderFunc) ShadeGlyph(g *GlyphState) { f(g) }

// Resolver resolves the names used in markup.
// Lookups return nil when the name is unknown.
type Resolver interface {
	Style(name string) *Style
	Font(name string) *text.Font
	Icon(name string) *Icon
	GlyphShader(name string) GlyphShader
}
