package layout

import (
	"slices"
	"sync"

	"github.com/gogpu/richtext"
	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// Result summarizes a layout call.
type Result struct {
	// Complete is false when layout stopped before consuming every token:
	// the height bound was reached or a glyph did not fit on an empty line.
	// An empty last line left open by a trailing break is dropped when it
	// does not fit, without making the layout incomplete.
	Complete bool

	// Lines is the number of lines written.
	Lines int

	// Width and Height are the extent of the laid-out content.
	Width, Height float64

	// Tokens is the number of tokens fully laid out.
	Tokens int
}

// Engine lays out token streams. Its fallback fonts apply to every call.
//
// Engine is safe for concurrent use; each call writes only to its own
// output stream.
type Engine struct {
	mu        sync.RWMutex
	fallbacks []text.FallbackFont
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithFallbackFont registers a fallback font at construction.
func WithFallbackFont(r text.UnicodeRange, f *text.Font) EngineOption {
	return func(e *Engine) {
		e.fallbacks = append(e.fallbacks, text.FallbackFont{Range: r, Font: f})
	}
}

// NewEngine creates an engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RegisterFallbackFont adds a font used for runes in r that the current
// face cannot represent. Earlier registrations win when ranges overlap.
func (e *Engine) RegisterFallbackFont(r text.UnicodeRange, f *text.Font) {
	if f == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fallbacks = append(e.fallbacks, text.FallbackFont{Range: r, Font: f})
}

// FallbackFonts returns a copy of the registered fallback fonts.
func (e *Engine) FallbackFonts() []text.FallbackFont {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.fallbacks)
}

// CalculateLayout lays out ts into out, replacing its previous contents.
//
// An unknown resource name returns a *LookupError and leaves out empty.
// Running out of vertical space, or meeting a glyph that does not fit on
// an empty line, is not an error: the result is marked incomplete.
func (e *Engine) CalculateLayout(ts *markup.TokenStream, settings Settings, out *stream.Stream) (Result, error) {
	switch {
	case settings.Font == nil:
		return Result{}, ErrNilFont
	case ts == nil:
		return Result{}, ErrNilTokens
	case out == nil:
		return Result{}, ErrNilStream
	}
	settings.normalize()

	out.Clear()
	st := newState(settings, e.FallbackFonts(), ts, out)
	res, err := st.run()
	if err != nil {
		out.Clear()
		return Result{}, err
	}

	log := richtext.Logger()
	log.Debug("layout: calculated",
		"tokens", ts.Len(),
		"commands", out.Len(),
		"lines", res.Lines,
		"complete", res.Complete,
		"splits", st.splits)
	if st.ignoredPops > 0 {
		log.Warn("layout: ignored unbalanced pops", "count", st.ignoredPops)
	}
	return res, nil
}

var defaultEngine = NewEngine()

// RegisterFallbackFont registers a fallback font with the engine used by
// the package-level CalculateLayout.
func RegisterFallbackFont(r text.UnicodeRange, f *text.Font) {
	defaultEngine.RegisterFallbackFont(r, f)
}

// CalculateLayout lays out ts with the package-level engine.
func CalculateLayout(ts *markup.TokenStream, settings Settings, out *stream.Stream) (Result, error) {
	return defaultEngine.CalculateLayout(ts, settings, out)
}
