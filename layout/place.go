package layout

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// piece is a byte range of the current source drawn with one face.
type piece struct {
	start, end int
	face       text.Face
	dir        text.Direction
}

// measured is the size of a piece. Shaped pieces are already appended to
// the source's ShapedStringBuilder.
type measured struct {
	w      float64
	kern   float64
	glyphs int
	shaped int
	nshape int
	extend bool
}

// text lays out a text token and reports whether layout must stop.
func (st *state) text(tok markup.Token) (bool, error) {
	switch {
	case tok.Flags.Has(markup.FlagNewline):
		st.line.source += tok.Length
		st.out.Append(stream.LineBreak{
			GlyphOffset:  int32(st.glyphs),
			SourceOffset: int32(tok.Offset),
			SourceLen:    int32(tok.Length),
		})
		return st.breakLine(tok.Length), nil
	case tok.Flags.Has(markup.FlagWhitespace):
		return st.whitespace(tok), nil
	}

	start := tok.Offset
	if tok.Flags.Has(markup.FlagEscaped) && tok.Length == 2 {
		// "||" draws the second pipe only.
		st.line.source++
		start++
	}
	return st.word(start, tok.End())
}

// whitespace places a breaking whitespace run and remembers it as the
// break candidate. A run that does not fit becomes the line break.
func (st *state) whitespace(tok markup.Token) bool {
	p := st.piece(tok.Offset, tok.End())
	xBefore := st.x
	m := st.measure(p)
	if st.bounded() && st.x+m.w > st.set.Width {
		st.out.Append(stream.LineBreak{
			GlyphOffset:  int32(st.glyphs),
			GlyphLen:     int32(m.glyphs),
			SourceOffset: int32(tok.Offset),
			SourceLen:    int32(tok.Length),
		})
		st.glyphs += m.glyphs
		st.line.glyphs += m.glyphs
		st.line.shaped += m.nshape
		st.line.source += tok.Length
		return st.breakLine(tok.Length)
	}

	glyph := st.glyphs
	st.place(p, m)
	st.brk = candidate{
		valid:     true,
		text:      st.last.idx,
		srcStart:  p.start,
		srcEnd:    p.end,
		glyph:     glyph,
		glyphLen:  m.glyphs,
		shaped:    m.shaped,
		shapedLen: m.nshape,
		xBefore:   xBefore,
		xAfter:    st.x,
		next:      st.tok + 1,
		line:      st.line,
	}
	return false
}

// word places a word token, splitting it into pieces wherever a fallback
// font takes over or gives back.
func (st *state) word(start, end int) (bool, error) {
	s := st.source().text
	pieceStart := start
	flush := func(pos int) bool {
		if pos == pieceStart {
			return false
		}
		stop := st.placeWord(st.piece(pieceStart, pos))
		pieceStart = pos
		return stop
	}

	for i, r := range s[start:end] {
		pos := start + i
		if st.fallback != nil && !st.fallback.Range.Contains(r) {
			if flush(pos) {
				return true, nil
			}
			st.closeFallback()
		}
		if st.fallback == nil && !st.face.HasGlyph(r) {
			if fb, ok := st.fallbackFor(r); ok {
				if flush(pos) {
					return true, nil
				}
				if err := st.openFallback(fb); err != nil {
					return false, err
				}
			}
		}
	}
	if flush(end) {
		return true, nil
	}
	if st.fallback != nil {
		st.closeFallback()
	}
	return false, nil
}

func (st *state) fallbackFor(r rune) (text.FallbackFont, bool) {
	for _, fb := range st.fallbacks {
		if fb.Covers(r, st.bold, st.italic) {
			return fb, true
		}
	}
	return text.FallbackFont{}, false
}

// openFallback pushes fb as an implicit font.
func (st *state) openFallback(fb text.FallbackFont) error {
	idx, err := st.out.Fonts().Register(fb.Font.Name(), fb.Font)
	if err != nil {
		return fmt.Errorf("layout: register fallback font %q: %w", fb.Font.Name(), err)
	}
	st.fallback = &fb
	st.emit(stream.Push{Scope: stream.ScopeFont, Index: idx, Implicit: true})
	st.updateFace()
	return nil
}

func (st *state) closeFallback() {
	st.fallback = nil
	st.emit(stream.Pop{Scope: stream.ScopeFont, Implicit: true})
	st.updateFace()
}

func (st *state) piece(start, end int) piece {
	p := piece{start: start, end: end, face: st.face}
	if st.shaping() {
		p.dir = text.DetectDirection(st.source().text[start:end], st.set.Direction)
	}
	return p
}

// placeWord places p, breaking lines as needed.
func (st *state) placeWord(p piece) bool {
	for p.start < p.end {
		m := st.measure(p)
		if !st.bounded() || st.x+m.w <= st.set.Width {
			st.place(p, m)
			return false
		}
		st.unmeasure(m)

		switch {
		case st.brk.valid:
			if st.splitAtCandidate() {
				return true
			}
		case st.x > 0:
			if st.syntheticBreak(p.start) {
				return true
			}
		default:
			n, stop := st.fitPrefix(p)
			if stop {
				return true
			}
			p.start += n
		}
	}
	return false
}

// canExtend reports whether p may be appended to the last Text record.
func (st *state) canExtend(p piece) bool {
	l := st.last
	return l.idx >= 0 && l.idx == st.out.Len()-1 && l.idx > st.lineIdx &&
		l.face == p.face && l.src == st.src && l.end == p.start &&
		!l.rtl && p.dir != text.DirectionRTL
}

func (st *state) measure(p piece) measured {
	m := measured{extend: st.canExtend(p)}
	s := st.source().text[p.start:p.end]
	if b := st.source().builder; b != nil {
		m.shaped, m.nshape = b.Append(p.start, p.end, p.face, p.dir, st.set.Shaper)
		m.w = text.Advance(b.Glyphs()[m.shaped : m.shaped+m.nshape])
		m.glyphs = m.nshape
		if p.dir == text.DirectionRTL {
			m.glyphs--
		}
		m.extend = m.extend && st.last.shapedEnd == m.shaped
		return m
	}
	m.w = p.face.Advance(s)
	m.glyphs = utf8.RuneCountInString(s)
	if m.extend {
		first, _ := utf8.DecodeRuneInString(s)
		m.kern = p.face.Kern(st.last.lastRune, first)
		m.w += m.kern
	}
	return m
}

// unmeasure drops the glyphs measure appended.
func (st *state) unmeasure(m measured) {
	if b := st.source().builder; b != nil {
		b.Truncate(m.shaped)
	}
}

// place writes p at the pen position, extending the last Text record
// when possible.
func (st *state) place(p piece, m measured) {
	s := st.source().text[p.start:p.end]
	if m.extend && st.last.w+m.w <= math.MaxInt16 {
		t := st.out.Text(st.last.idx)
		t.GlyphLen += int32(m.glyphs)
		t.SourceLen += int32(p.end - p.start)
		t.ShapedLen += int32(m.nshape)
		st.last.w += m.w
		t.W = float32(st.last.w)
		st.out.Set(st.last.idx, t)
	} else {
		m.w -= m.kern
		metrics := p.face.Metrics()
		idx := st.out.Append(stream.Text{
			GlyphOffset:  int32(st.glyphs),
			GlyphLen:     int32(m.glyphs),
			SourceOffset: int32(p.start),
			SourceLen:    int32(p.end - p.start),
			ShapedOffset: int32(m.shaped),
			ShapedLen:    int32(m.nshape),
			X:            float32(st.x),
			Y:            float32(-metrics.Ascent),
			W:            float32(m.w),
			H:            float32(metrics.Ascent + metrics.Descent),
		})
		st.last = run{idx: idx, face: p.face, src: st.src, w: m.w, rtl: p.dir == text.DirectionRTL}
		if p.face != st.defaultFace {
			st.uniform = false
		}
	}
	st.last.end = p.end
	st.last.shapedEnd = m.shaped + m.nshape
	st.last.lastRune, _ = utf8.DecodeLastRuneInString(s)

	st.x += m.w
	st.glyphs += m.glyphs
	st.line.glyphs += m.glyphs
	st.line.shaped += m.nshape
	st.line.source += p.end - p.start
}

// fitPrefix places the longest grapheme prefix of p that fits on the
// current line, which holds nothing wider than zero, then breaks the line.
// It returns the number of bytes placed, or stop when not even one
// grapheme fits.
func (st *state) fitPrefix(p piece) (int, bool) {
	s := st.source().text[p.start:p.end]
	avail := st.set.Width - st.x
	hyphen := 0.0
	if st.set.Options.Has(OptHyphenate) {
		hyphen = p.face.GlyphAdvance(st.set.HyphenRune)
	}

	withHyphen, without := 0, 0
	rest, gstate := s, -1
	for len(rest) > 0 {
		_, rest, _, gstate = uniseg.FirstGraphemeClusterInString(rest, gstate)
		n := len(s) - len(rest)
		w := st.prefixWidth(p, n)
		if w > avail {
			break
		}
		without = n
		if w+hyphen <= avail {
			withHyphen = n
		}
	}

	n, useHyphen := withHyphen, hyphen > 0
	if n == 0 {
		n, useHyphen = without, false
	}
	if n == 0 {
		return 0, true
	}

	head := p
	head.end = p.start + n
	st.place(head, st.measure(head))
	if n == len(s) {
		return n, false
	}
	if useHyphen {
		metrics := p.face.Metrics()
		st.out.Append(stream.Hyphen{
			X: float32(st.x),
			Y: float32(-metrics.Ascent),
			W: float32(hyphen),
			H: float32(metrics.Ascent + metrics.Descent),
		})
		st.x += hyphen
		st.last = run{idx: -1}
	}
	return n, st.syntheticBreak(p.start + n)
}

// prefixWidth measures the first n bytes of p without placing them.
func (st *state) prefixWidth(p piece, n int) float64 {
	s := st.source().text[p.start : p.start+n]
	if st.shaping() {
		return text.Advance(st.set.Shaper.Shape(s, p.face, p.dir))
	}
	return p.face.Advance(s)
}

// icon places an inline icon. Icons never break; an icon wider than an
// empty line is placed anyway.
func (st *state) icon(tok markup.Token) (bool, error) {
	ic := st.lookupIcon(tok.Value)
	if ic == nil {
		return false, &LookupError{Kind: "icon", Name: tok.Value, Offset: tok.Offset}
	}
	idx, err := st.out.Icons().Register(tok.Value, ic)
	if err != nil {
		return false, fmt.Errorf("layout: register icon %q: %w", tok.Value, err)
	}

	for st.bounded() && st.x+ic.Width > st.set.Width {
		if st.brk.valid {
			if st.splitAtCandidate() {
				return true, nil
			}
			continue
		}
		if st.x == 0 {
			break
		}
		if st.syntheticBreak(tok.Offset) {
			return true, nil
		}
	}

	st.out.Append(stream.Icon{
		IconIndex:    idx,
		X:            float32(st.x),
		Y:            float32(-ic.Ascender),
		W:            float32(ic.Width),
		H:            float32(ic.Height),
		Ascender:     float32(ic.Ascender),
		Descender:    float32(ic.Descender),
		GlyphOffset:  int32(st.glyphs),
		GlyphLen:     1,
		SourceOffset: int32(tok.Offset),
		SourceLen:    int32(tok.Length),
	})
	st.last = run{idx: -1}
	st.uniform = false
	st.x += ic.Width
	st.glyphs++
	st.line.glyphs++
	st.line.source += tok.Length
	return false, nil
}
