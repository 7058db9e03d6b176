package render

import (
	"image/color"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/gogpu/richtext/internal/scope"
	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// State is the drawing state in effect after a record.
type State struct {
	// Line is the zero-based line number, or -1 in the block header.
	Line     int
	LineInfo stream.LineInfo

	// Top is the top of the current line relative to the block origin.
	Top float64

	// Glyph is the block-wide index of the next glyph.
	Glyph int

	// Depth is the style depth.
	Depth int

	// Open counts the entries on each scope stack.
	Open [stream.NumScopes]int

	Font         *text.Font
	Face         text.Face
	Bold, Italic bool

	// Color is the innermost markup color. HasColor is false when no
	// color is pushed.
	Color    color.NRGBA
	HasColor bool

	Shader resource.GlyphShader

	// Link is the innermost link target, or "".
	Link string

	Source      stream.Source
	SourceIndex int16
}

// Balanced reports whether every scope stack is empty.
func (st *State) Balanced() bool {
	return st.Open == [stream.NumScopes]int{}
}

// WalkFunc is called for every record after it took effect. Returning
// false stops the walk.
type WalkFunc func(index int, cmd stream.Command, st *State) bool

// Walk visits every record of s in order, BlockInfo included.
func Walk(s *stream.Stream, fn WalkFunc) error {
	w, err := newWalker(s)
	if err != nil {
		return err
	}
	s.AcquirePointers()
	defer s.ReleasePointers()

	for i := 0; i < s.Len(); i++ {
		c := s.At(i)
		w.apply(i, c)
		if !fn(i, c, &w.st) {
			break
		}
	}
	return nil
}

// walker replays a stream and keeps its scope stacks.
type walker struct {
	s     *stream.Stream
	info  stream.BlockInfo
	st    State
	font0 *text.Font
	text  string

	styles  scope.Stack[int16]
	fonts   scope.Stack[int16]
	colors  scope.Stack[color.NRGBA]
	shaders scope.Stack[int16]
	links   scope.Stack[int16]

	// fast lets skipLine jump over lines without decoding them. The face
	// then stays at the block default.
	fast bool

	lineIdx   int
	lineGlyph int
	lineSrc   int
	srcEnd    int

	boxes []box
}

func newWalker(s *stream.Stream) (*walker, error) {
	if s == nil {
		return nil, ErrNilStream
	}
	if s.Len() == 0 || s.TagAt(0) != stream.TagBlockInfo {
		return nil, ErrNoBlock
	}
	info := s.BlockInfo(0)
	w := &walker{s: s, info: info, lineIdx: -1}
	w.font0 = s.Fonts().Get(info.DefaultFont)
	w.st = State{
		Line:        -1,
		Top:         float64(info.Offset),
		Font:        w.font0,
		Bold:        info.Flags.Has(stream.BlockBold),
		Italic:      info.Flags.Has(stream.BlockItalic),
		SourceIndex: -1,
	}
	w.st.Face = w.font0.Face(w.st.Bold, w.st.Italic)
	return w, nil
}

func (w *walker) apply(i int, c stream.Command) {
	switch r := c.(type) {
	case stream.LineInfo:
		if w.st.Line >= 0 {
			w.st.Top += float64(w.st.LineInfo.Height)
		}
		w.st.Line++
		w.st.LineInfo = r
		w.lineIdx = i
		w.lineGlyph = w.st.Glyph
		w.lineSrc = w.srcEnd
	case stream.Text:
		w.advance(r.GlyphOffset+r.GlyphLen, r.SourceOffset+r.SourceLen)
	case stream.Icon:
		w.advance(r.GlyphOffset+r.GlyphLen, r.SourceOffset+r.SourceLen)
	case stream.LineBreak:
		w.advance(r.GlyphOffset+r.GlyphLen, r.SourceOffset+r.SourceLen)
	case stream.Toggle:
		if r.Italic {
			w.st.Italic = !w.st.Italic
		} else {
			w.st.Bold = !w.st.Bold
		}
		w.updateFace()
	case stream.Push:
		depth := w.styles.Len()
		switch r.Scope {
		case stream.ScopeStyle:
			w.styles.Push(r.Index, depth+1, r.Implicit)
		case stream.ScopeFont:
			w.fonts.Push(r.Index, depth, r.Implicit)
			w.updateFace()
		case stream.ScopeGlyphShader:
			w.shaders.Push(r.Index, depth, r.Implicit)
		case stream.ScopeLink:
			w.links.Push(r.Index, depth, r.Implicit)
		}
		w.sync()
	case stream.PushColor:
		w.colors.Push(r.Color, w.styles.Len(), r.Implicit)
		w.sync()
	case stream.Pop:
		switch r.Scope {
		case stream.ScopeStyle:
			w.styles.Pop()
		case stream.ScopeFont:
			w.fonts.Pop()
			w.updateFace()
		case stream.ScopeColor:
			w.colors.Pop()
		case stream.ScopeGlyphShader:
			w.shaders.Pop()
		case stream.ScopeLink:
			w.links.Pop()
		}
		w.sync()
	case stream.ChangeSource:
		w.st.Source = w.s.Source(r.Index)
		w.st.SourceIndex = r.Index
		w.text = w.st.Source.String()
	}
}

func (w *walker) advance(glyphEnd, srcEnd int32) {
	w.st.Glyph = int(glyphEnd)
	w.srcEnd = int(srcEnd)
}

// sync refreshes the State fields derived from the scope stacks.
func (w *walker) sync() {
	st := &w.st
	st.Depth = w.styles.Len()
	st.Open = [stream.NumScopes]int{
		stream.ScopeStyle:       w.styles.Len(),
		stream.ScopeFont:        w.fonts.Len(),
		stream.ScopeColor:       w.colors.Len(),
		stream.ScopeGlyphShader: w.shaders.Len(),
		stream.ScopeLink:        w.links.Len(),
	}

	st.Color, st.HasColor = color.NRGBA{}, false
	if e, ok := w.colors.Top(); ok {
		st.Color, st.HasColor = e.Value, true
	}
	st.Shader = nil
	if e, ok := w.shaders.Top(); ok {
		st.Shader = w.s.GlyphShaders().Get(e.Value)
	}
	st.Link = ""
	if e, ok := w.links.Top(); ok {
		st.Link = w.s.Links().Get(e.Value)
	}
}

func (w *walker) updateFace() {
	if w.fast {
		return
	}
	w.st.Font = w.font0
	if e, ok := w.fonts.Top(); ok {
		w.st.Font = w.s.Fonts().Get(e.Value)
	}
	w.st.Face = w.st.Font.Face(w.st.Bold, w.st.Italic)
}

// lineEnd returns the index after the last record of the current line.
func (w *walker) lineEnd() int {
	return w.lineIdx + 1 + int(w.st.LineInfo.LengthInCommands)
}

// seekLine advances to the first line for which match returns true and
// leaves the walker on its LineInfo.
func (w *walker) seekLine(match func(st *State) bool) bool {
	i := 1
	if w.lineIdx > 0 {
		i = w.lineEnd()
	}
	for i < w.s.Len() {
		c := w.s.At(i)
		w.apply(i, c)
		if _, ok := c.(stream.LineInfo); !ok {
			i++
			continue
		}
		if match(&w.st) {
			return true
		}
		i = w.skipLine()
	}
	return false
}

// skipLine moves past the records of the current line and returns the
// index of the next record. Fast walkers do not decode the skipped
// records.
func (w *walker) skipLine() int {
	if w.fast {
		cur := w.s.Seek(w.lineIdx)
		cur.SeekNextLine()
		w.st.Glyph = w.lineGlyph + int(w.st.LineInfo.LengthInGlyphs)
		w.srcEnd = w.lineSrc + int(w.st.LineInfo.LengthInSource)
		return cur.Index()
	}
	end := w.lineEnd()
	for i := w.lineIdx + 1; i < end; i++ {
		w.apply(i, w.s.At(i))
	}
	return end
}

// left returns the left edge, relative to the block origin, of a record
// placed at x with the given width. Right-to-left blocks are mirrored
// inside the line.
func (w *walker) left(x, width float32) float64 {
	li := w.st.LineInfo
	if w.info.Flags.Has(stream.BlockRTL) {
		return float64(li.Offset + li.Width - x - width)
	}
	return float64(li.Offset + x)
}

// box is one glyph, icon or break glyph of a line, relative to the block
// origin.
type box struct {
	index    int
	r        rune
	gid      text.GlyphID
	x, w     float64
	dx, dy   float64
	top, h   float64
	baseline float64
	src      int
	source   int16
	link     string

	// The box belongs to the grapheme cluster of glyphs [c0, c1), which
	// spans [cx0, cx1) on screen and [cs0, cs1) in the source.
	c0, c1   int
	cx0, cx1 float64
	cs0, cs1 int

	rtl  bool
	icon bool
	brk  bool
}

func (b box) bounds() text.Rect {
	return text.Rect{MinX: b.x, MinY: b.top, MaxX: b.x + b.w, MaxY: b.top + b.h}
}

// single makes b its own cluster.
func (b *box) single(srcEnd int) {
	b.c0, b.c1 = b.index, b.index+1
	b.cx0, b.cx1 = b.x, b.x+b.w
	b.cs0, b.cs1 = b.src, srcEnd
}

// collectLine applies the records of the current line and returns its
// boxes in record order.
func (w *walker) collectLine() []box {
	w.boxes = w.boxes[:0]
	li := w.st.LineInfo
	rtl := w.info.Flags.Has(stream.BlockRTL)
	edge := w.left(0, 0)
	end := w.lineEnd()
	for i := w.lineIdx + 1; i < end; i++ {
		c := w.s.At(i)
		w.apply(i, c)
		switch r := c.(type) {
		case stream.Text:
			w.boxes = w.textBoxes(r, w.boxes)
			edge = w.left(r.X, r.W)
			if !rtl {
				edge += float64(r.W)
			}
		case stream.Icon:
			b := box{
				index:    int(r.GlyphOffset),
				x:        w.left(r.X, r.W),
				w:        float64(r.W),
				top:      w.st.Top + float64(r.Y),
				h:        float64(r.H),
				baseline: w.st.Top + float64(li.Baseline),
				src:      int(r.SourceOffset),
				source:   w.st.SourceIndex,
				link:     w.st.Link,
				icon:     true,
			}
			b.single(int(r.SourceOffset + r.SourceLen))
			w.boxes = append(w.boxes, b)
			edge = b.x
			if !rtl {
				edge += b.w
			}
		case stream.LineBreak:
			for k := range int(r.GlyphLen) {
				b := box{
					index:    int(r.GlyphOffset) + k,
					x:        edge,
					top:      w.st.Top,
					h:        float64(li.Height),
					baseline: w.st.Top + float64(li.Baseline),
					src:      int(r.SourceOffset),
					source:   w.st.SourceIndex,
					link:     w.st.Link,
					brk:      true,
				}
				b.single(int(r.SourceOffset + r.SourceLen))
				w.boxes = append(w.boxes, b)
			}
		}
	}
	return w.boxes
}

// textBoxes appends the glyph boxes of t.
func (w *walker) textBoxes(t stream.Text, out []box) []box {
	proto := box{
		top:      w.st.Top + float64(t.Y),
		h:        float64(t.H),
		baseline: w.st.Top + float64(w.st.LineInfo.Baseline),
		source:   w.st.SourceIndex,
		link:     w.st.Link,
	}
	x := w.left(t.X, t.W)

	if w.st.Source.IsShaped() {
		gs := w.st.Source.Glyphs()[t.ShapedOffset : t.ShapedOffset+t.ShapedLen]
		rtl := len(gs) > 0 && gs[0].Marker
		runEnd := int(t.SourceOffset + t.SourceLen)
		k := 0
		for _, g := range gs {
			if g.Marker {
				continue
			}
			b := proto
			b.index = int(t.GlyphOffset) + k
			if rtl {
				b.index = int(t.GlyphOffset+t.GlyphLen) - 1 - k
			}
			b.r = runeAt(w.text, g.Cluster)
			b.gid = g.GID
			b.x, b.w = x, g.XAdvance
			b.dx, b.dy = g.XOffset, g.YOffset
			b.src = g.Cluster
			b.rtl = rtl
			b.single(nextCluster(gs, g.Cluster, runEnd))
			out = append(out, b)
			x += g.XAdvance
			k++
		}
		return out
	}

	s := w.text[t.SourceOffset : t.SourceOffset+t.SourceLen]
	face := w.st.Face
	start := len(out)
	var prev rune
	for off, r := range s {
		if len(out) > start {
			kern := face.Kern(prev, r)
			out[len(out)-1].w += kern
			x += kern
		}
		b := proto
		b.index = int(t.GlyphOffset) + len(out) - start
		b.r = r
		b.x, b.w = x, face.GlyphAdvance(r)
		b.src = int(t.SourceOffset) + off
		out = append(out, b)
		x += b.w
		prev = r
	}
	clusterize(out[start:], s, int(t.SourceOffset))
	return out
}

// clusterize groups the boxes of an unshaped run, one per rune of s, into
// grapheme clusters.
func clusterize(bs []box, s string, srcOff int) {
	rest, state := s, -1
	i, pos := 0, srcOff
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		n := utf8.RuneCountInString(cluster)
		g := bs[i : i+n]
		first, last := g[0], g[n-1]
		for k := range g {
			g[k].c0, g[k].c1 = first.index, last.index+1
			g[k].cx0, g[k].cx1 = first.x, last.x+last.w
			g[k].cs0, g[k].cs1 = pos, pos+len(cluster)
		}
		i += n
		pos += len(cluster)
	}
}

// nextCluster returns the smallest cluster in gs after c, or end.
func nextCluster(gs []text.ShapedGlyph, c, end int) int {
	next := end
	for _, g := range gs {
		if !g.Marker && g.Cluster > c && g.Cluster < next {
			next = g.Cluster
		}
	}
	return next
}

func runeAt(s string, i int) rune {
	if i < 0 || i >= len(s) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return r
}
