package layout

import (
	"fmt"
	"image/color"

	"github.com/gogpu/richtext/internal/scope"
	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// state is one layout call in progress.
type state struct {
	set       Settings
	fallbacks []text.FallbackFont
	ts        *markup.TokenStream
	out       *stream.Stream

	// Style state. Entries are scoped by the style depth at push time.
	styles       scope.Stack[styleEntry]
	fonts        scope.Stack[*text.Font]
	colors       scope.Stack[color.NRGBA]
	shaders      scope.Stack[int16]
	links        scope.Stack[int16]
	bold, italic bool
	fallback     *text.FallbackFont
	face         text.Face
	defaultFace  text.Face
	defaultFont  int16
	initialStyle int16

	srcs []sourceState
	src  int

	// Pen and line state.
	tok     int
	glyphs  int
	x       float64
	lineIdx int
	line    lineState
	last    run
	brk     candidate

	// Block totals.
	y         float64
	lines     int
	width     float64
	consumed  int
	tokens    int
	exhausted bool

	scoped      bool
	uniform     bool
	splits      int
	ignoredPops int
}

// styleEntry remembers which font flags a style flipped.
type styleEntry struct {
	bold, italic bool
}

// sourceState is a markup source as registered in the output stream.
type sourceState struct {
	registered bool
	index      int16
	kind       markup.SourceKind
	text       string
	builder    *text.ShapedStringBuilder
}

// lineState accumulates the counters of the current line.
type lineState struct {
	source int
	glyphs int
	shaped int
	// token is the first token that contributed to the line.
	token int
}

// run is the last Text record, which the next piece may extend.
type run struct {
	idx       int
	face      text.Face
	src       int
	end       int
	shapedEnd int
	lastRune  rune
	w         float64
	rtl       bool
}

// candidate is the last breaking whitespace on the current line.
type candidate struct {
	valid bool
	// text indexes the Text record holding the whitespace.
	text             int
	srcStart, srcEnd int
	glyph, glyphLen  int
	shaped           int
	shapedLen        int
	xBefore, xAfter  float64
	// next is the token after the whitespace.
	next int
	// line holds the line counters right after the whitespace.
	line lineState
}

func newState(set Settings, fallbacks []text.FallbackFont, ts *markup.TokenStream, out *stream.Stream) *state {
	st := &state{
		set:          set,
		fallbacks:    fallbacks,
		ts:           ts,
		out:          out,
		bold:         set.Bold,
		italic:       set.Italic,
		srcs:         make([]sourceState, len(ts.Sources)),
		src:          -1,
		initialStyle: -1,
		uniform:      true,
		last:         run{idx: -1},
	}
	st.defaultFace = set.Font.Face(set.Bold, set.Italic)
	st.face = st.defaultFace
	return st
}

func (st *state) run() (Result, error) {
	if err := st.begin(); err != nil {
		return Result{}, err
	}
	for i, tok := range st.ts.Tokens {
		st.tok = i
		if err := st.useSource(int(tok.Src)); err != nil {
			return Result{}, err
		}
		stop, err := st.token(tok)
		if err != nil {
			return Result{}, err
		}
		if stop {
			break
		}
		st.tokens = i + 1
	}
	if !st.exhausted {
		st.finishLine(st.lineIdx, st.out.Len(), st.line, 0)
	}
	st.finishBlock()

	return Result{
		Complete: st.tokens == st.ts.Len(),
		Lines:    st.lines,
		Width:    st.width,
		Height:   st.y,
		Tokens:   st.tokens,
	}, nil
}

// begin writes the block header: BlockInfo, the first source and the
// initial style, followed by the first LineInfo.
func (st *state) begin() error {
	st.out.Append(stream.BlockInfo{})
	idx, err := st.out.Fonts().Register(st.set.Font.Name(), st.set.Font)
	if err != nil {
		return fmt.Errorf("layout: register default font: %w", err)
	}
	st.defaultFont = idx

	if len(st.ts.Tokens) > 0 {
		if err := st.useSource(int(st.ts.Tokens[0].Src)); err != nil {
			return err
		}
	}
	if st.set.Style != "" {
		if err := st.pushStyle(st.set.Style, 0, true); err != nil {
			return err
		}
		st.initialStyle, _ = st.out.Styles().Index(st.set.Style)
	}
	st.startLine(0)
	return nil
}

func (st *state) shaping() bool { return st.set.Options.Has(OptShape) }

func (st *state) bounded() bool { return st.set.Width > 0 }

// useSource makes markup source i current, registering it on first use.
func (st *state) useSource(i int) error {
	if i == st.src {
		return nil
	}
	ss := &st.srcs[i]
	if !ss.registered {
		ms := st.ts.Sources[i]
		ss.kind = ms.Kind
		ss.text = ms.String()

		var src stream.Source
		switch {
		case st.shaping():
			ss.builder = text.NewShapedStringBuilder(ss.text)
			src = stream.Source{Kind: stream.SourceShapedStringBuilder, ShapedBuilder: ss.builder}
		case ms.Kind == markup.SourceBuilder:
			src = stream.Source{Kind: stream.SourceStringBuilder, Builder: ms.Builder}
		default:
			src = stream.Source{Kind: stream.SourceString, Text: ss.text}
		}
		idx, err := st.out.RegisterSource(src)
		if err != nil {
			return fmt.Errorf("layout: register source: %w", err)
		}
		ss.index = idx
		ss.registered = true
	}

	kind := stream.SourceString
	switch {
	case ss.builder != nil:
		kind = stream.SourceShapedStringBuilder
	case ss.kind == markup.SourceBuilder:
		kind = stream.SourceStringBuilder
	}
	st.out.Append(stream.ChangeSource{Kind: kind, Index: ss.index})
	st.src = i
	st.last = run{idx: -1}
	return nil
}

func (st *state) source() *sourceState { return &st.srcs[st.src] }

// token lays out one token. It reports stop when layout cannot continue.
func (st *state) token(tok markup.Token) (bool, error) {
	switch tok.Kind {
	case markup.KindText:
		return st.text(tok)
	case markup.KindIcon:
		return st.icon(tok)
	}
	st.line.source += tok.Length
	return false, st.command(tok)
}

func (st *state) command(tok markup.Token) error {
	opts := st.set.Options
	switch tok.Kind {
	case markup.KindToggleBold:
		if !opts.Has(OptIgnoreFontStyle) {
			st.toggle(false)
		}
	case markup.KindToggleItalic:
		if !opts.Has(OptIgnoreFontStyle) {
			st.toggle(true)
		}
	case markup.KindPushStyle:
		return st.pushStyle(tok.Value, tok.Offset, false)
	case markup.KindPopStyle:
		st.popStyle()
	case markup.KindPushFont:
		if opts.Has(OptIgnoreFontFace) {
			return nil
		}
		return st.pushFont(tok.Value, tok.Offset, false)
	case markup.KindPopFont:
		if opts.Has(OptIgnoreFontFace) {
			return nil
		}
		if e, ok := st.fonts.PopAt(st.scope()); ok {
			st.emit(stream.Pop{Scope: stream.ScopeFont, Implicit: e.Implicit})
			st.updateFace()
		} else {
			st.ignoredPops++
		}
	case markup.KindPushColor:
		if !opts.Has(OptIgnoreColor) {
			st.colors.Push(tok.Color, st.scope(), false)
			st.emit(stream.PushColor{Color: tok.Color})
		}
	case markup.KindPopColor:
		if !opts.Has(OptIgnoreColor) {
			popScoped(st, &st.colors, stream.ScopeColor)
		}
	case markup.KindPushGlyphShader:
		if opts.Has(OptIgnoreGlyphShaders) {
			return nil
		}
		return st.pushShader(tok.Value, tok.Offset, false)
	case markup.KindPopGlyphShader:
		if !opts.Has(OptIgnoreGlyphShaders) {
			popScoped(st, &st.shaders, stream.ScopeGlyphShader)
		}
	case markup.KindPushLink:
		idx, err := st.out.RegisterLink(tok.Value)
		if err != nil {
			return fmt.Errorf("layout: register link %q: %w", tok.Value, err)
		}
		st.links.Push(idx, st.scope(), false)
		st.emit(stream.Push{Scope: stream.ScopeLink, Index: idx})
	case markup.KindPopLink:
		popScoped(st, &st.links, stream.ScopeLink)
	case markup.KindCustom:
		if opts.Has(OptIgnoreCustomCommands) {
			return nil
		}
		value := int16(-1)
		if tok.Value != "" {
			idx, err := st.out.RegisterCustomValue(tok.Value)
			if err != nil {
				return fmt.Errorf("layout: register custom value: %w", err)
			}
			value = idx
		}
		st.out.Append(stream.Custom{ID: tok.CustomID, Value: value})
		st.last = run{idx: -1}
	}
	return nil
}

// scope returns the current style depth.
func (st *state) scope() int { return st.styles.Len() }

// emit appends a scope record.
func (st *state) emit(c stream.Command) {
	st.out.Append(c)
	st.scoped = true
	st.last = run{idx: -1}
}

// popScoped pops s if its top entry belongs to the current scope.
func popScoped[T any](st *state, s *scope.Stack[T], sc stream.Scope) {
	e, ok := s.PopAt(st.scope())
	if !ok {
		st.ignoredPops++
		return
	}
	st.emit(stream.Pop{Scope: sc, Implicit: e.Implicit})
}

func (st *state) toggle(italic bool) {
	if italic {
		st.italic = !st.italic
	} else {
		st.bold = !st.bold
	}
	st.emit(stream.Toggle{Italic: italic})
	st.updateFace()
}

// updateFace selects the face for the current font and style.
func (st *state) updateFace() {
	font := st.set.Font
	if st.fallback != nil {
		font = st.fallback.Font
	} else if e, ok := st.fonts.Top(); ok {
		font = e.Value
	}
	st.face = font.Face(st.bold, st.italic)
}

func (st *state) pushFont(name string, offset int, implicit bool) error {
	f := st.lookupFont(name)
	if f == nil {
		return &LookupError{Kind: "font", Name: name, Offset: offset}
	}
	idx, err := st.out.Fonts().Register(name, f)
	if err != nil {
		return fmt.Errorf("layout: register font %q: %w", name, err)
	}
	st.fonts.Push(f, st.scope(), implicit)
	st.emit(stream.Push{Scope: stream.ScopeFont, Index: idx, Implicit: implicit})
	st.updateFace()
	return nil
}

func (st *state) pushShader(name string, offset int, implicit bool) error {
	sh := st.lookupShader(name)
	if sh == nil {
		return &LookupError{Kind: "glyph shader", Name: name, Offset: offset}
	}
	idx, err := st.out.GlyphShaders().Register(name, sh)
	if err != nil {
		return fmt.Errorf("layout: register glyph shader %q: %w", name, err)
	}
	st.shaders.Push(idx, st.scope(), implicit)
	st.emit(stream.Push{Scope: stream.ScopeGlyphShader, Index: idx, Implicit: implicit})
	return nil
}

// pushStyle opens a new style depth and applies the style's font, color,
// shader and font flags inside it.
func (st *state) pushStyle(name string, offset int, implicit bool) error {
	s := st.lookupStyle(name)
	if s == nil {
		return &LookupError{Kind: "style", Name: name, Offset: offset}
	}
	idx, err := st.out.Styles().Register(name, s)
	if err != nil {
		return fmt.Errorf("layout: register style %q: %w", name, err)
	}
	st.emit(stream.Push{Scope: stream.ScopeStyle, Index: idx, Implicit: implicit})

	opts := st.set.Options
	var entry styleEntry
	if !opts.Has(OptIgnoreFontStyle) {
		entry = styleEntry{bold: s.Bold, italic: s.Italic}
	}
	st.styles.Push(entry, st.scope()+1, implicit)

	if s.Font != "" && !opts.Has(OptIgnoreFontFace) {
		if err := st.pushFont(s.Font, offset, true); err != nil {
			return err
		}
	}
	if s.Color != nil && !opts.Has(OptIgnoreColor) {
		st.colors.Push(*s.Color, st.scope(), true)
		st.emit(stream.PushColor{Color: *s.Color, Implicit: true})
	}
	if s.GlyphShader != "" && !opts.Has(OptIgnoreGlyphShaders) {
		if err := st.pushShader(s.GlyphShader, offset, true); err != nil {
			return err
		}
	}
	if entry.bold {
		st.toggle(false)
	}
	if entry.italic {
		st.toggle(true)
	}
	return nil
}

// popStyle closes the innermost style and everything pushed inside it.
func (st *state) popStyle() {
	top, ok := st.styles.Top()
	if !ok {
		st.ignoredPops++
		return
	}
	depth := top.Depth
	for _, e := range st.links.PopDepth(depth) {
		st.emit(stream.Pop{Scope: stream.ScopeLink, Implicit: e.Implicit})
	}
	for _, e := range st.shaders.PopDepth(depth) {
		st.emit(stream.Pop{Scope: stream.ScopeGlyphShader, Implicit: e.Implicit})
	}
	for _, e := range st.colors.PopDepth(depth) {
		st.emit(stream.Pop{Scope: stream.ScopeColor, Implicit: e.Implicit})
	}
	for _, e := range st.fonts.PopDepth(depth) {
		st.emit(stream.Pop{Scope: stream.ScopeFont, Implicit: e.Implicit})
	}
	if top.Value.italic {
		st.toggle(true)
	}
	if top.Value.bold {
		st.toggle(false)
	}
	st.styles.Pop()
	st.emit(stream.Pop{Scope: stream.ScopeStyle, Implicit: top.Implicit})
	st.updateFace()
}

func (st *state) lookupStyle(name string) *resource.Style {
	if st.set.Resources == nil {
		return nil
	}
	return st.set.Resources.Style(name)
}

func (st *state) lookupFont(name string) *text.Font {
	if st.set.Resources == nil {
		return nil
	}
	return st.set.Resources.Font(name)
}

func (st *state) lookupIcon(name string) *resource.Icon {
	if st.set.Resources == nil {
		return nil
	}
	return st.set.Resources.Icon(name)
}

func (st *state) lookupShader(name string) resource.GlyphShader {
	if st.set.Resources == nil {
		return nil
	}
	return st.set.Resources.GlyphShader(name)
}

// balanced reports whether every scope stack is empty.
func (st *state) balanced() bool {
	return st.styles.Len() == 0 && st.fonts.Len() == 0 && st.colors.Len() == 0 &&
		st.shaders.Len() == 0 && st.links.Len() == 0 && st.fallback == nil
}
