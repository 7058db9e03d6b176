// Package layout turns a markup token stream into a stream of positioned
// commands.
//
// Layout greedily fills lines up to Settings.Width. When a word does not
// fit, the line is split retroactively at the last breaking whitespace;
// without one, a word on an otherwise empty line is broken at the longest
// fitting grapheme prefix, optionally followed by a hyphen. Glyphs the
// current font cannot represent are drawn with a registered fallback font.
//
// Basic usage:
//
//	ts, _ := markup.Parse("Hello |b|world|b|")
//	out := stream.New()
//	res, err := layout.CalculateLayout(ts, layout.DefaultSettings(font), out)
//
// CalculateLayout never draws. The resulting stream is consumed by package
// render.
package layout
