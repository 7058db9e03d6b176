// Package render draws laid-out command streams and answers point queries
// against them.
//
// A stream produced by package layout is walked record by record. The
// walker rebuilds the font, color, glyph shader and link stacks, resolves
// each line's position and hands positioned glyphs and sprites to a Sink.
// The same walk answers the inverse questions an editor asks: which glyph
// or line lies under a point, where the caret goes for a click, where a
// glyph is, and which link is under the pointer.
//
// # Coordinates
//
// Draw places the block at DrawOptions.X and DrawOptions.Y. Queries take
// coordinates relative to that origin and return bounds in the same
// space. Blocks laid out right-to-left are mirrored inside each line.
//
// # Fast paths
//
// When a block uses a single face and source (stream.BlockUniformFace)
// geometry queries jump from line to line using LineInfo metadata instead
// of decoding every record. Draw does the same for lines it clips away,
// provided the block carries no scope records (stream.BlockNoScopes).
//
// # Usage
//
//	out := stream.New()
//	if _, err := layout.CalculateLayout(tokens, settings, out); err != nil {
//	    return err
//	}
//	opts := render.DefaultDrawOptions()
//	opts.X, opts.Y = 10, 20
//	if err := render.Draw(out, sink, opts); err != nil {
//	    return err
//	}
//
//	if hit, ok := render.GlyphAtPosition(out, mouseX-10, mouseY-20); ok {
//	    fmt.Println("glyph", hit.Glyph)
//	}
package render
