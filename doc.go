// Package richtext lays out markup-annotated text into a compact command
// stream that a renderer walks to draw glyphs and answer hit-test queries.
//
// # Overview
//
// The pipeline is split into focused packages:
//
//   - markup: tokenizes "|b|bold|b| and |c:FF0000FF|red|c|" style markup,
//     including incremental re-lexing of an edited window.
//   - layout: turns a token stream into lines, handling word wrap,
//     hyphenation, fallback fonts, alignment and optional shaping.
//   - stream: the fixed-slot command buffer the layout writes and the
//     renderer reads, plus its resource registries.
//   - render: draws a finished stream into a Sink and answers
//     glyph/line/insertion-point/link queries.
//   - text: fonts, faces, measurement and shaping.
//   - resource: styles, icons, glyph shaders and colors.
//   - recording: a Sink that keeps draw calls for playback to other sinks
//     and to the listing, jsonl and raster backends.
//
// The rtdump command under cmd/ lays out a markup file and prints the
// command stream, the recorded draw calls or a terminal preview.
//
// # Quick Start
//
//	src, _ := text.NewFontSource(goregular.TTF)
//	font := text.NewFont("regular", src.Face(16))
//
//	var tokens markup.TokenStream
//	if err := markup.Parse("|b|Hello|b| |c:FF0000FF|World|c|", &tokens); err != nil {
//	    log.Fatal(err)
//	}
//
//	out := stream.New()
//	settings := layout.DefaultSettings(font)
//	settings.Width = 320
//	if _, err := layout.CalculateLayout(&tokens, settings, out); err != nil {
//	    log.Fatal(err)
//	}
//
//	render.Draw(out, sink, render.DefaultDrawOptions())
//
// # Logging
//
// The library is silent by default. Call SetLogger to receive debug output
// from layout and incremental parsing.
package richtext
