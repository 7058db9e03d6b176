package layout

import (
	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// startLine appends a placeholder LineInfo and resets the pen. token is
// the first token that can contribute to the line.
func (st *state) startLine(token int) {
	st.lineIdx = st.out.Append(stream.LineInfo{})
	st.line = lineState{token: token}
	st.x = 0
	st.brk = candidate{}
	st.last = run{idx: -1}
}

// breakLine finishes the current line, whose LineBreak has already been
// written, and starts the next one. It reports whether the height bound
// was reached.
func (st *state) breakLine(breakLen int) bool {
	if st.finishLine(st.lineIdx, st.out.Len(), st.line, breakLen) {
		return true
	}
	next := st.tok
	if breakLen > 0 {
		next++
	}
	st.startLine(next)
	return false
}

// syntheticBreak ends the line without consuming source.
func (st *state) syntheticBreak(srcOffset int) bool {
	st.out.Append(stream.LineBreak{
		GlyphOffset:  int32(st.glyphs),
		SourceOffset: int32(srcOffset),
	})
	return st.breakLine(0)
}

// splitAtCandidate breaks the current line at the remembered whitespace.
//
// The Text record holding the whitespace is cut in two: the head stays on
// the current line, the whitespace becomes the LineBreak and the tail opens
// the new line together with every record written after it. Those records
// are shifted left so the new line starts at x = 0.
func (st *state) splitAtCandidate() bool {
	c := st.brk
	st.brk = candidate{}
	st.splits++

	t := st.out.Text(c.text)
	lb := stream.LineBreak{
		GlyphOffset:  int32(c.glyph),
		GlyphLen:     int32(c.glyphLen),
		SourceOffset: int32(c.srcStart),
		SourceLen:    int32(c.srcEnd - c.srcStart),
	}

	head := t
	head.GlyphLen = int32(c.glyph) - t.GlyphOffset
	head.SourceLen = int32(c.srcStart) - t.SourceOffset
	head.ShapedLen = int32(c.shaped) - t.ShapedOffset
	head.W = float32(c.xBefore) - t.X

	tail := t
	tail.GlyphOffset = int32(c.glyph + c.glyphLen)
	tail.GlyphLen = t.GlyphOffset + t.GlyphLen - tail.GlyphOffset
	tail.SourceOffset = int32(c.srcEnd)
	tail.SourceLen = t.SourceOffset + t.SourceLen - tail.SourceOffset
	tail.ShapedOffset = int32(c.shaped + c.shapedLen)
	tail.ShapedLen = t.ShapedOffset + t.ShapedLen - tail.ShapedOffset
	tail.X = float32(c.xAfter)
	tail.W = t.X + t.W - tail.X

	var ins []stream.Command
	breakIdx := c.text
	if head.SourceLen > 0 {
		st.out.Set(c.text, head)
		ins = append(ins, lb)
		breakIdx++
	} else {
		st.out.Set(c.text, lb)
	}
	ins = append(ins, stream.LineInfo{})
	if tail.SourceLen > 0 {
		ins = append(ins, tail)
	}
	st.out.Insert(c.text+1, ins...)

	switch {
	case st.last.idx == c.text && tail.SourceLen > 0:
		st.last.idx = c.text + len(ins)
		st.last.w = float64(tail.W)
	case st.last.idx == c.text:
		st.last = run{idx: -1}
	case st.last.idx > c.text:
		st.last.idx += len(ins)
	}

	newLine := breakIdx + 1
	rest := lineState{
		source: st.line.source - c.line.source,
		glyphs: st.line.glyphs - c.line.glyphs,
		shaped: st.line.shaped - c.line.shaped,
		token:  c.next,
	}
	if st.finishLine(st.lineIdx, newLine, c.line, c.srcEnd-c.srcStart) {
		return true
	}
	st.lineIdx = newLine
	st.line = rest
	st.x -= c.xAfter

	dx := float32(c.xAfter)
	for i := newLine + 1; i < st.out.Len(); i++ {
		switch r := st.out.At(i).(type) {
		case stream.Text:
			r.X -= dx
			st.out.Set(i, r)
		case stream.Icon:
			r.X -= dx
			st.out.Set(i, r)
		case stream.Hyphen:
			r.X -= dx
			st.out.Set(i, r)
		}
	}
	return false
}

// finishLine patches the LineInfo at idx for the records in (idx, end).
// When the line would cross the height bound it is dropped along with
// everything after it, and finishLine reports true.
func (st *state) finishLine(idx, end int, acc lineState, breakLen int) bool {
	var asc, desc, right float64
	visible := false
	for i := idx + 1; i < end; i++ {
		switch r := st.out.At(i).(type) {
		case stream.Text:
			asc = max(asc, float64(-r.Y))
			desc = max(desc, float64(r.H+r.Y))
			right = max(right, float64(r.X+r.W))
			visible = true
		case stream.Hyphen:
			asc = max(asc, float64(-r.Y))
			desc = max(desc, float64(r.H+r.Y))
			right = max(right, float64(r.X+r.W))
			visible = true
		case stream.Icon:
			asc = max(asc, float64(r.Ascender))
			desc = max(desc, float64(r.Descender))
			right = max(right, float64(r.X+r.W))
			visible = true
		}
	}
	if !visible {
		m := st.face.Metrics()
		asc, desc = m.Ascent, m.Descent
	}
	h := (asc + desc + st.defaultFace.Metrics().LineGap) * st.set.LineSpacing

	if st.set.Height > 0 && st.lines > 0 && st.y+h > st.set.Height {
		st.out.Truncate(idx)
		st.exhausted = true
		st.tokens = acc.token
		return true
	}

	for i := idx + 1; i < end; i++ {
		switch r := st.out.At(i).(type) {
		case stream.Text:
			r.Y += float32(asc)
			st.out.Set(i, r)
		case stream.Hyphen:
			r.Y += float32(asc)
			st.out.Set(i, r)
		case stream.Icon:
			r.Y += float32(asc)
			st.out.Set(i, r)
		}
	}

	st.out.Set(idx, stream.LineInfo{
		Offset:              float32(st.alignOffset(right, st.set.Width)),
		Width:               float32(right),
		Height:              float32(h),
		Baseline:            float32(asc),
		LengthInCommands:    int32(end - idx - 1),
		LengthInGlyphs:      int32(acc.glyphs),
		LengthInSource:      int32(acc.source),
		LengthInShaped:      int32(acc.shaped),
		TerminatingBreakLen: int32(breakLen),
	})
	st.y += h
	st.lines++
	st.width = max(st.width, right)
	st.consumed += acc.source
	return false
}

// alignOffset returns the horizontal offset of a line of width w inside
// a box of width box.
func (st *state) alignOffset(w, box float64) float64 {
	if box <= 0 {
		return 0
	}
	switch st.set.Align.Horizontal() {
	case AlignCenter:
		return max(0, (box-w)/2)
	case AlignRight:
		return max(0, box-w)
	}
	return 0
}

// finishBlock patches BlockInfo, realigns lines of unbounded layouts and
// swaps shaping builders of immutable sources for their final strings.
func (st *state) finishBlock() {
	if !st.bounded() && st.set.Align.Horizontal() != AlignLeft {
		for i := 1; i < st.out.Len(); i++ {
			if st.out.TagAt(i) != stream.TagLineInfo {
				continue
			}
			li := st.out.LineInfo(i)
			li.Offset = float32(st.alignOffset(float64(li.Width), st.width))
			st.out.Set(i, li)
			i += int(li.LengthInCommands)
		}
	}

	var offset float64
	if st.set.Height > 0 {
		switch st.set.Align.Vertical() {
		case AlignMiddle:
			offset = max(0, (st.set.Height-st.y)/2)
		case AlignBottom:
			offset = max(0, st.set.Height-st.y)
		}
	}

	var flags stream.BlockFlags
	if st.set.Bold {
		flags |= stream.BlockBold
	}
	if st.set.Italic {
		flags |= stream.BlockItalic
	}
	if st.set.Direction == text.DirectionRTL {
		flags |= stream.BlockRTL
	}
	if st.uniform && st.out.Sources().Len() <= 1 {
		flags |= stream.BlockUniformFace
	}
	if !st.scoped {
		flags |= stream.BlockNoScopes
	}
	st.out.Set(0, stream.BlockInfo{
		Offset:         float32(offset),
		LineCount:      int32(st.lines),
		Width:          float32(st.width),
		Height:         float32(st.y),
		LengthInSource: int32(st.consumed),
		DefaultFont:    st.defaultFont,
		InitialStyle:   st.initialStyle,
		Flags:          flags,
	})

	st.freezeShapedSources()
}

// freezeShapedSources replaces the builders of immutable string sources
// with ShapedStrings and retags their ChangeSource records.
func (st *state) freezeShapedSources() {
	frozen := make(map[int16]bool)
	for i := range st.srcs {
		ss := &st.srcs[i]
		if ss.builder == nil || ss.kind != markup.SourceString {
			continue
		}
		st.out.ReplaceSource(ss.index, stream.Source{Kind: stream.SourceShapedString, Shaped: ss.builder.String()})
		frozen[ss.index] = true
	}
	if len(frozen) == 0 {
		return
	}
	for i := 0; i < st.out.Len(); i++ {
		if cs, ok := st.out.At(i).(stream.ChangeSource); ok && frozen[cs.Index] {
			cs.Kind = stream.SourceShapedString
			st.out.Set(i, cs)
		}
	}
}
