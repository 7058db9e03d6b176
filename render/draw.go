package render

import (
	"image/color"

	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/stream"
)

// DefaultHyphen is drawn for Hyphen records when DrawOptions.HyphenRune
// is zero.
const DefaultHyphen = '-'

// activeLinkBlend is how far ActiveLinkColor is mixed into a link.
const activeLinkBlend = 0.5

var white = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// DrawOptions control Draw.
type DrawOptions struct {
	// X and Y place the block origin.
	X, Y float64

	// Color modulates every glyph and sprite. Markup colors are
	// multiplied with it.
	Color color.NRGBA

	// Clip limits drawing to lines that intersect [MinY, MaxY), in the
	// same space as Y.
	Clip       bool
	MinY, MaxY float64

	// GlyphStart and GlyphCount select the glyphs to draw. A negative
	// GlyphCount draws to the end of the block.
	GlyphStart int
	GlyphCount int

	// LinkColor, unless fully transparent, replaces the color of links.
	LinkColor color.NRGBA

	// ActiveLink is the target of the highlighted link, usually taken
	// from a LinkTracker. ActiveLinkColor is blended into it.
	ActiveLink      string
	ActiveLinkColor color.NRGBA

	// HyphenRune is drawn for hyphens inserted at line breaks.
	HyphenRune rune
}

// DefaultDrawOptions returns options that draw the whole block in opaque
// white at the origin.
func DefaultDrawOptions() DrawOptions {
	return DrawOptions{
		Color:      white,
		GlyphCount: -1,
		HyphenRune: DefaultHyphen,
	}
}

// Draw walks s and sends its glyphs and icons to sink.
//
// Lines outside the clip range or the glyph window are not drawn. Draw
// stops at the first line below MaxY; custom commands after it are not
// delivered.
func Draw(s *stream.Stream, sink Sink, opts DrawOptions) error {
	if sink == nil {
		return ErrNilSink
	}
	w, err := newWalker(s)
	if err != nil {
		return err
	}
	w.fast = w.info.Flags.Has(stream.BlockUniformFace | stream.BlockNoScopes)
	if opts.HyphenRune == 0 {
		opts.HyphenRune = DefaultHyphen
	}

	s.AcquirePointers()
	defer s.ReleasePointers()

	d := &drawer{w: w, sink: sink, opts: opts}
	for i := 1; i < s.Len(); {
		c := s.At(i)
		w.apply(i, c)
		li, ok := c.(stream.LineInfo)
		if !ok {
			d.draw(c)
			i++
			continue
		}
		top := opts.Y + w.st.Top
		if (opts.Clip && top >= opts.MaxY) || d.pastWindow() {
			break
		}
		if (opts.Clip && top+float64(li.Height) <= opts.MinY) || d.beforeWindow(li) {
			i = w.skipLine()
			continue
		}
		i++
	}
	return nil
}

type drawer struct {
	w      *walker
	sink   Sink
	opts   DrawOptions
	run    GlyphRun
	sprite Sprite
	boxes  []box
}

func (d *drawer) draw(c stream.Command) {
	switch r := c.(type) {
	case stream.Text:
		d.text(r)
	case stream.Icon:
		d.icon(r)
	case stream.Hyphen:
		d.hyphen(r)
	case stream.Custom:
		d.custom(r)
	}
}

func (d *drawer) inWindow(i int) bool {
	o := d.opts
	return i >= o.GlyphStart && (o.GlyphCount < 0 || i < o.GlyphStart+o.GlyphCount)
}

// pastWindow reports whether the line starting at the current glyph lies
// after the glyph window.
func (d *drawer) pastWindow() bool {
	o := d.opts
	return o.GlyphCount >= 0 && d.w.st.Glyph >= o.GlyphStart+o.GlyphCount
}

func (d *drawer) beforeWindow(li stream.LineInfo) bool {
	return d.w.st.Glyph+int(li.LengthInGlyphs) <= d.opts.GlyphStart
}

// color resolves the color of the next glyph.
func (d *drawer) color() color.NRGBA {
	st := &d.w.st
	c := white
	if st.HasColor {
		c = st.Color
	}
	if st.Link != "" {
		if d.opts.LinkColor.A > 0 {
			c = d.opts.LinkColor
		}
		if st.Link == d.opts.ActiveLink && d.opts.ActiveLinkColor.A > 0 {
			c = resource.Blend(c, d.opts.ActiveLinkColor, activeLinkBlend)
		}
	}
	return resource.Modulate(c, d.opts.Color)
}

// shade runs the active glyph shader on g.
func (d *drawer) shade(g *Glyph) {
	sh := d.w.st.Shader
	if sh == nil {
		return
	}
	gs := resource.GlyphState{
		Index:    g.Index,
		Rune:     g.Rune,
		GID:      g.GID,
		X:        g.X,
		Y:        g.Y,
		Scale:    g.Scale,
		Rotation: g.Rotation,
		Color:    g.Color,
	}
	sh.ShadeGlyph(&gs)
	g.X, g.Y = gs.X, gs.Y
	g.Scale, g.Rotation, g.Color = gs.Scale, gs.Rotation, gs.Color
}

func (d *drawer) text(t stream.Text) {
	w := d.w
	d.boxes = w.textBoxes(t, d.boxes[:0])
	col := d.color()

	run := &d.run
	*run = GlyphRun{
		Face:   w.st.Face,
		Text:   w.text[t.SourceOffset : t.SourceOffset+t.SourceLen],
		Glyphs: run.Glyphs[:0],
		Link:   w.st.Link,
		Shaped: w.st.Source.IsShaped(),
	}
	for _, b := range d.boxes {
		if !d.inWindow(b.index) {
			continue
		}
		g := Glyph{
			Index:   b.index,
			Rune:    b.r,
			GID:     b.gid,
			X:       d.opts.X + b.x + b.dx,
			Y:       d.opts.Y + b.baseline - b.dy,
			Advance: b.w,
			Scale:   1,
			Color:   col,
		}
		d.shade(&g)
		run.Glyphs = append(run.Glyphs, g)
	}
	if len(run.Glyphs) > 0 {
		d.sink.DrawGlyphRun(run)
	}
}

func (d *drawer) icon(r stream.Icon) {
	idx := int(r.GlyphOffset)
	if !d.inWindow(idx) {
		return
	}
	w := d.w
	g := Glyph{
		Index: idx,
		X:     d.opts.X + w.left(r.X, r.W),
		Y:     d.opts.Y + w.st.Top + float64(r.Y),
		Scale: 1,
		Color: d.color(),
	}
	d.shade(&g)
	d.sprite = Sprite{
		Icon:     w.s.Icons().Get(r.IconIndex),
		Index:    idx,
		X:        g.X,
		Y:        g.Y,
		W:        float64(r.W) * g.Scale,
		H:        float64(r.H) * g.Scale,
		Rotation: g.Rotation,
		Color:    g.Color,
		Link:     w.st.Link,
	}
	d.sink.DrawSprite(&d.sprite)
}

// hyphen draws the hyphen that follows the last glyph of a broken word.
// It is drawn whenever that glyph is.
func (d *drawer) hyphen(r stream.Hyphen) {
	w := d.w
	if w.st.Glyph == 0 || !d.inWindow(w.st.Glyph-1) {
		return
	}
	g := Glyph{
		Index:   -1,
		Rune:    d.opts.HyphenRune,
		X:       d.opts.X + w.left(r.X, r.W),
		Y:       d.opts.Y + w.st.Top + float64(w.st.LineInfo.Baseline),
		Advance: float64(r.W),
		Scale:   1,
		Color:   d.color(),
	}
	d.run = GlyphRun{
		Face:   w.st.Face,
		Text:   string(d.opts.HyphenRune),
		Glyphs: append(d.run.Glyphs[:0], g),
		Link:   w.st.Link,
	}
	d.sink.DrawGlyphRun(&d.run)
}

func (d *drawer) custom(r stream.Custom) {
	cs, ok := d.sink.(CustomSink)
	if !ok {
		return
	}
	var v string
	if r.Value >= 0 {
		v = d.w.s.CustomValues().Get(r.Value)
	}
	cs.DrawCustom(r.ID, v)
}
