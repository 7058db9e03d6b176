package layout

import (
	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/text"
)

// Align positions lines inside the layout box. A horizontal and a
// vertical value may be combined.
type Align uint8

// Alignment values.
const (
	AlignLeft   Align = 0
	AlignCenter Align = 1
	AlignRight  Align = 2

	AlignTop    Align = 0
	AlignMiddle Align = 4
	AlignBottom Align = 8

	alignHorizontal = AlignCenter | AlignRight
	alignVertical   = AlignMiddle | AlignBottom
)

// Horizontal returns the horizontal part of a.
func (a Align) Horizontal() Align { return a & alignHorizontal }

// Vertical returns the vertical part of a.
func (a Align) Vertical() Align { return a & alignVertical }

// Options toggle layout features.
type Options uint16

// Layout options.
const (
	// OptHyphenate appends a hyphen to words broken at the line end.
	OptHyphenate Options = 1 << iota
	// OptShape shapes text with Settings.Shaper and records shaped glyph
	// ranges in the commands.
	OptShape
	OptIgnoreColor
	OptIgnoreFontFace
	OptIgnoreFontStyle
	OptIgnoreGlyphShaders
	OptIgnoreCustomCommands
)

// Has reports whether all bits in o2 are set.
func (o Options) Has(o2 Options) bool { return o&o2 == o2 }

// DefaultHyphen is the rune drawn for hyphenated breaks.
const DefaultHyphen = '-'

// Settings configure one layout call. Zero Width or Height leaves that
// dimension unbounded.
type Settings struct {
	// Font is the default font. Required.
	Font *text.Font

	Width  float64
	Height float64

	Align   Align
	Options Options

	// Bold and Italic select the initial face of Font.
	Bold   bool
	Italic bool

	// Style names a style applied before the first token.
	Style string

	// Resources resolves style, font, icon and glyph shader names used by
	// markup. A nil Resources makes every such name a lookup error.
	Resources resource.Resolver

	// Shaper shapes text when OptShape is set. Nil uses text.BuiltinShaper.
	Shaper text.Shaper

	// HyphenRune is drawn for hyphenated breaks. Zero uses DefaultHyphen.
	HyphenRune rune

	// Direction is used for runs without strong directional characters
	// and mirrors the block when it is text.DirectionRTL.
	Direction text.Direction

	// LineSpacing scales every line height. Zero means 1.
	LineSpacing float64
}

// DefaultSettings returns unbounded, left-aligned settings for font.
func DefaultSettings(font *text.Font) Settings {
	return Settings{
		Font:        font,
		HyphenRune:  DefaultHyphen,
		LineSpacing: 1,
	}
}

func (s *Settings) normalize() {
	if s.HyphenRune == 0 {
		s.HyphenRune = DefaultHyphen
	}
	if s.LineSpacing <= 0 {
		s.LineSpacing = 1
	}
	if s.Shaper == nil {
		s.Shaper = text.BuiltinShaper{}
	}
}
