// Package jsonl provides a recording backend that writes one JSON object
// per draw call, newline separated.
//
// The first line describes the canvas:
//
//	{"op":"canvas","width":320,"height":200}
//	{"op":"run","text":"hi","size":20,"glyphs":[{"i":0,"r":"h","x":0,"y":16,"adv":10,"color":"FFFFFFFF"}]}
//	{"op":"sprite","icon":"star","i":2,"x":20,"y":0,"w":20,"h":30,"color":"FFFFFFFF"}
//	{"op":"custom","id":4,"value":"on"}
package jsonl

import (
	"bytes"
	"io"

	"github.com/tidwall/sjson"

	"github.com/gogpu/richtext/recording"
	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/resource"
)

func init() {
	recording.Register("jsonl", func() recording.Backend {
		return New()
	})
}

// Backend accumulates JSON lines in memory.
type Backend struct {
	buf bytes.Buffer
	err error
}

var _ recording.WriterBackend = (*Backend)(nil)

// New creates a jsonl backend.
func New() *Backend {
	return &Backend{}
}

// object builds one JSON object, remembering the first error.
type object struct {
	s   string
	err error
}

func (o *object) set(path string, v any) {
	if o.err == nil {
		o.s, o.err = sjson.Set(o.s, path, v)
	}
}

func (o *object) setRaw(path, raw string) {
	if o.err == nil {
		o.s, o.err = sjson.SetRaw(o.s, path, raw)
	}
}

func (b *Backend) emit(o *object) {
	if b.err != nil {
		return
	}
	if o.err != nil {
		b.err = o.err
		return
	}
	b.buf.WriteString(o.s)
	b.buf.WriteByte('\n')
}

// Begin implements recording.Backend.
func (b *Backend) Begin(width, height int) error {
	b.buf.Reset()
	b.err = nil
	var o object
	o.set("op", "canvas")
	o.set("width", width)
	o.set("height", height)
	b.emit(&o)
	return b.err
}

// End implements recording.Backend.
func (b *Backend) End() error {
	return b.err
}

// DrawGlyphRun implements render.Sink.
func (b *Backend) DrawGlyphRun(run *render.GlyphRun) {
	var o object
	o.set("op", "run")
	o.set("text", run.Text)
	if run.Face != nil {
		o.set("size", run.Face.Size())
	}
	if run.Link != "" {
		o.set("link", run.Link)
	}
	if run.Shaped {
		o.set("shaped", true)
	}
	o.setRaw("glyphs", "[]")
	for _, g := range run.Glyphs {
		var gj object
		gj.set("i", g.Index)
		gj.set("r", string(g.Rune))
		if run.Shaped {
			gj.set("gid", g.GID)
		}
		gj.set("x", g.X)
		gj.set("y", g.Y)
		gj.set("adv", g.Advance)
		if g.Scale != 1 {
			gj.set("scale", g.Scale)
		}
		if g.Rotation != 0 {
			gj.set("rot", g.Rotation)
		}
		gj.set("color", resource.FormatHex(g.Color))
		if gj.err != nil {
			o.err = gj.err
			break
		}
		o.setRaw("glyphs.-1", gj.s)
	}
	b.emit(&o)
}

// DrawSprite implements render.Sink.
func (b *Backend) DrawSprite(sp *render.Sprite) {
	var o object
	o.set("op", "sprite")
	if sp.Icon != nil {
		o.set("icon", sp.Icon.Name)
	}
	o.set("i", sp.Index)
	o.set("x", sp.X)
	o.set("y", sp.Y)
	o.set("w", sp.W)
	o.set("h", sp.H)
	if sp.Rotation != 0 {
		o.set("rot", sp.Rotation)
	}
	o.set("color", resource.FormatHex(sp.Color))
	if sp.Link != "" {
		o.set("link", sp.Link)
	}
	b.emit(&o)
}

// DrawCustom implements render.CustomSink.
func (b *Backend) DrawCustom(id byte, value string) {
	var o object
	o.set("op", "custom")
	o.set("id", id)
	o.set("value", value)
	b.emit(&o)
}

// Bytes returns the output written so far.
func (b *Backend) Bytes() []byte {
	return b.buf.Bytes()
}

// WriteTo implements recording.WriterBackend.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.buf.Bytes())
	return int64(n), err
}
