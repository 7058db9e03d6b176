// Package listing provides a recording backend that writes a plain-text
// listing of every draw call, one per line.
//
// It is the reference backend for tests and for the rtdump tool:
//
//	import _ "github.com/gogpu/richtext/recording/backends/listing"
//
//	b := recording.MustBackend("listing")
//	r.Playback(b)
//	b.(recording.WriterBackend).WriteTo(os.Stdout)
package listing

import (
	"bytes"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/gogpu/richtext/recording"
	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/resource"
)

func init() {
	recording.Register("listing", func() recording.Backend {
		return New()
	})
}

// Backend accumulates the listing in memory.
type Backend struct {
	buf bytes.Buffer
	tw  *tabwriter.Writer
	err error
}

var _ recording.WriterBackend = (*Backend)(nil)

// New creates a listing backend.
func New() *Backend {
	return &Backend{}
}

// Begin implements recording.Backend.
func (b *Backend) Begin(width, height int) error {
	b.buf.Reset()
	b.err = nil
	b.tw = tabwriter.NewWriter(&b.buf, 0, 4, 1, ' ', 0)
	b.printf("canvas\t%dx%d\n", width, height)
	return b.err
}

// End implements recording.Backend.
func (b *Backend) End() error {
	if b.tw == nil {
		return nil
	}
	if err := b.tw.Flush(); err != nil && b.err == nil {
		b.err = err
	}
	b.tw = nil
	return b.err
}

func (b *Backend) printf(format string, args ...any) {
	if b.err != nil || b.tw == nil {
		return
	}
	_, b.err = fmt.Fprintf(b.tw, format, args...)
}

// DrawGlyphRun implements render.Sink.
func (b *Backend) DrawGlyphRun(run *render.GlyphRun) {
	var size float64
	if run.Face != nil {
		size = run.Face.Size()
	}
	b.printf("run\t%q\tsize %g", run.Text, size)
	if run.Link != "" {
		b.printf(" link %q", run.Link)
	}
	if run.Shaped {
		b.printf(" shaped")
	}
	b.printf("\n")
	for _, g := range run.Glyphs {
		b.printf("  %d\t%q\t%.2f,%.2f\tadv %.2f\t%s", g.Index, g.Rune, g.X, g.Y, g.Advance, resource.FormatHex(g.Color))
		if g.Scale != 1 || g.Rotation != 0 {
			b.printf(" scale %g rot %g", g.Scale, g.Rotation)
		}
		b.printf("\n")
	}
}

// DrawSprite implements render.Sink.
func (b *Backend) DrawSprite(sp *render.Sprite) {
	name := "?"
	if sp.Icon != nil {
		name = sp.Icon.Name
	}
	b.printf("sprite\t%s #%d\t%.2f,%.2f\t%.2fx%.2f\t%s", name, sp.Index, sp.X, sp.Y, sp.W, sp.H, resource.FormatHex(sp.Color))
	if sp.Link != "" {
		b.printf(" link %q", sp.Link)
	}
	b.printf("\n")
}

// DrawCustom implements render.CustomSink.
func (b *Backend) DrawCustom(id byte, value string) {
	b.printf("custom\t%d\t%q\n", id, value)
}

// String returns the listing written so far.
func (b *Backend) String() string {
	return b.buf.String()
}

// WriteTo implements recording.WriterBackend.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf.Bytes())
	return int64(n), err
}
