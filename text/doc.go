// Package text provides the font and shaping layer of richtext.
//
// The pipeline separates heavyweight and lightweight resources:
//
//   - FontSource: a parsed TTF/OTF file, shared across the application
//   - Face: a FontSource at one size, with cached advances
//   - Font: a named family of up to four faces (regular, bold, italic, bold italic)
//   - Shaper: converts a run of text into positioned glyphs
//
// # Example usage
//
//	source, err := text.NewFontSourceFromFile("Roboto-Regular.ttf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	font := text.NewFont("body", source.Face(16))
//
//	shaped := text.NewShapedString("Hello", font.Face(false, false),
//	    text.DirectionLTR, text.NewGoTextShaper())
//
// Font parsing uses golang.org/x/image/font/opentype. Complex shaping
// (ligatures, Arabic joining, mark positioning) uses go-text/typesetting
// through GoTextShaper; BuiltinShaper covers simple scripts without it.
//
// MonoFace is a synthetic face with fixed metrics. It needs no font file
// and is what tests and terminal tools measure with.
package text
