// Package stream implements the command stream produced by layout and
// walked by the renderer.
//
// A Stream is a growable arena of fixed 48-byte slots. Each slot holds one
// record: a tag byte followed by a little-endian payload. Records are
// addressed by slot index, so a stream can be sought, patched in place and
// walked forward without any external index.
//
// Layout writes BlockInfo and LineInfo records as placeholders and patches
// them with Set once the extent of the block or line is known. The rare
// retroactive line break splices records into the middle of the stream with
// Insert.
//
// Besides the records a Stream owns registries that intern the sources,
// styles, icons, fonts, glyph shaders, link targets and custom command
// values records refer to by int16 index. Clear resets the records and
// every registry.
package stream
