// Package raster provides a recording backend that rasterizes draw calls
// into an RGBA image.
//
// Glyphs of faces backed by a FontSource are drawn from the font's
// outlines with golang.org/x/image/font/opentype; synthetic faces fall
// back to basicfont. Glyphs are looked up by rune, so shaped runs draw
// the first character of each cluster. Sprites whose Icon.Sprite is an
// image.Image are scaled into place; other sprites are drawn as filled
// rectangles. Rotation is ignored.
//
// # Example
//
//	import _ "github.com/gogpu/richtext/recording/backends/raster"
//
//	b := recording.MustBackend("raster")
//	r.Playback(b)
//	b.(recording.WriterBackend).WriteTo(f) // PNG
package raster

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/richtext"
	"github.com/gogpu/richtext/recording"
	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/text"
)

func init() {
	recording.Register("raster", func() recording.Backend {
		return NewBackend()
	})
}

// Backend renders recordings to an *image.RGBA.
type Backend struct {
	// Background fills the canvas in Begin. The zero value leaves it
	// transparent.
	Background color.NRGBA

	img   *image.RGBA
	faces map[faceKey]font.Face
}

type faceKey struct {
	src  *text.FontSource
	size float64
}

var _ recording.WriterBackend = (*Backend)(nil)

// NewBackend creates a raster backend. Begin must be called before
// drawing; Recording.Playback does that.
func NewBackend() *Backend {
	return &Backend{faces: make(map[faceKey]font.Face)}
}

// Begin implements recording.Backend.
func (b *Backend) Begin(width, height int) error {
	b.img = image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if b.Background.A > 0 {
		draw.Draw(b.img, b.img.Bounds(), image.NewUniform(b.Background), image.Point{}, draw.Src)
	}
	return nil
}

// End implements recording.Backend.
func (b *Backend) End() error {
	return nil
}

// Image returns the rendered image, or nil before Begin.
func (b *Backend) Image() *image.RGBA {
	return b.img
}

// rasterFace returns the face used to draw glyphs of f at scale.
func (b *Backend) rasterFace(f text.Face, scale float64) font.Face {
	if f == nil || f.Source() == nil {
		return basicfont.Face7x13
	}
	key := faceKey{src: f.Source(), size: f.Size() * scale}
	if rf, ok := b.faces[key]; ok {
		return rf
	}
	rf, err := key.src.RasterFace(key.size)
	if err != nil {
		richtext.Logger().Warn("raster: no outlines, using basic font", "font", key.src.Name(), "err", err)
		rf = basicfont.Face7x13
	}
	b.faces[key] = rf
	return rf
}

// DrawGlyphRun implements render.Sink.
func (b *Backend) DrawGlyphRun(run *render.GlyphRun) {
	if b.img == nil {
		return
	}
	for _, g := range run.Glyphs {
		rf := b.rasterFace(run.Face, g.Scale)
		dot := fixed.Point26_6{X: toFixed(g.X), Y: toFixed(g.Y)}
		dr, mask, maskp, _, ok := rf.Glyph(dot, g.Rune)
		if !ok {
			continue
		}
		draw.DrawMask(b.img, dr, image.NewUniform(g.Color), image.Point{}, mask, maskp, draw.Over)
	}
}

// DrawSprite implements render.Sink.
func (b *Backend) DrawSprite(sp *render.Sprite) {
	if b.img == nil {
		return
	}
	dst := image.Rect(
		int(math.Round(sp.X)), int(math.Round(sp.Y)),
		int(math.Round(sp.X+sp.W)), int(math.Round(sp.Y+sp.H)),
	)
	if sp.Icon != nil {
		if src, ok := sp.Icon.Sprite.(image.Image); ok {
			xdraw.ApproxBiLinear.Scale(b.img, dst, src, src.Bounds(), xdraw.Over, nil)
			return
		}
	}
	draw.Draw(b.img, dst, image.NewUniform(sp.Color), image.Point{}, draw.Over)
}

// DrawCustom implements render.CustomSink. Custom commands draw nothing.
func (b *Backend) DrawCustom(byte, string) {}

// WriteTo implements recording.WriterBackend by encoding the image as
// PNG.
func (b *Backend) WriteTo(w io.Writer) (int64, error) {
	if b.img == nil {
		return 0, nil
	}
	cw := &countingWriter{w: w}
	err := png.Encode(cw, b.img)
	return cw.n, err
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
