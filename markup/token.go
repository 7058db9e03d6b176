package markup

import (
	"image/color"
	"strings"
)

// Kind identifies what a token does.
type Kind uint8

// Token kinds.
const (
	KindText Kind = iota
	KindIcon
	KindToggleBold
	KindToggleItalic
	KindPushFont
	KindPopFont
	KindPushColor
	KindPopColor
	KindPushStyle
	KindPopStyle
	KindPushGlyphShader
	KindPopGlyphShader
	KindPushLink
	KindPopLink
	KindCustom
)

var kindNames = [...]string{
	KindText:            "Text",
	KindIcon:            "Icon",
	KindToggleBold:      "ToggleBold",
	KindToggleItalic:    "ToggleItalic",
	KindPushFont:        "PushFont",
	KindPopFont:         "PopFont",
	KindPushColor:       "PushColor",
	KindPopColor:        "PopColor",
	KindPushStyle:       "PushStyle",
	KindPopStyle:        "PopStyle",
	KindPushGlyphShader: "PushGlyphShader",
	KindPopGlyphShader:  "PopGlyphShader",
	KindPushLink:        "PushLink",
	KindPopLink:         "PopLink",
	KindCustom:          "Custom",
}

// String returns the kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// Flags describe text tokens.
type Flags uint8

// Text token flags.
const (
	// FlagWhitespace marks a run of breaking whitespace.
	FlagWhitespace Flags = 1 << iota
	// FlagNewline marks a hard line break.
	FlagNewline
	// FlagNonBreaking marks a run of non-breaking spaces.
	FlagNonBreaking
	// FlagEscaped marks a literal pipe. Its display text is "|".
	FlagEscaped
)

// Has reports whether all bits in f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// Token is one lexical unit of markup.
//
// Offset and Length locate the token in its source in bytes, markup
// included: the tokens of one parse are contiguous and cover the source.
type Token struct {
	Kind  Kind
	Flags Flags

	Offset int
	Length int

	// Value is the command argument: a font, style, shader or icon name,
	// a link target, or a custom command's value.
	Value string

	// Color is set for KindPushColor.
	Color color.NRGBA

	// CustomID identifies the custom command for KindCustom.
	CustomID byte

	// Src indexes TokenStream.Sources.
	Src uint16
}

// End returns the offset just past the token.
func (t Token) End() int { return t.Offset + t.Length }

// IsText reports whether the token displays text.
func (t Token) IsText() bool { return t.Kind == KindText }

// IsBreak reports whether layout may break a line at the token.
func (t Token) IsBreak() bool {
	return t.Kind == KindText && t.Flags&(FlagWhitespace|FlagNewline) != 0
}

// SourceKind identifies how a source is stored.
type SourceKind uint8

// Source kinds.
const (
	// SourceString is an immutable string.
	SourceString SourceKind = iota
	// SourceBuilder is a strings.Builder the caller keeps appending to.
	SourceBuilder
)

// Source is the text a set of tokens was lexed from.
type Source struct {
	Kind    SourceKind
	Text    string
	Builder *strings.Builder
}

// String returns the current source text.
func (s Source) String() string {
	if s.Kind == SourceBuilder && s.Builder != nil {
		return s.Builder.String()
	}
	return s.Text
}

// TokenStream is the parser output: tokens in source order plus the
// sources they refer to.
type TokenStream struct {
	Sources []Source
	Tokens  []Token
}

// Len returns the number of tokens.
func (ts *TokenStream) Len() int { return len(ts.Tokens) }

// Reset empties the stream and keeps its capacity.
func (ts *TokenStream) Reset() {
	ts.Sources = ts.Sources[:0]
	ts.Tokens = ts.Tokens[:0]
}

// Raw returns the source bytes covered by t, markup included.
func (ts *TokenStream) Raw(t Token) string {
	src := ts.Sources[t.Src].String()
	return src[t.Offset:t.End()]
}

// Text returns the text t displays. Commands display nothing.
func (ts *TokenStream) Text(t Token) string {
	switch {
	case t.Kind != KindText:
		return ""
	case t.Flags.Has(FlagEscaped):
		return "|"
	default:
		return ts.Raw(t)
	}
}

// PlainText concatenates the display text of every text token.
func (ts *TokenStream) PlainText() string {
	var sb strings.Builder
	for _, t := range ts.Tokens {
		sb.WriteString(ts.Text(t))
	}
	return sb.String()
}

// Append adds the tokens and sources of other after those of ts.
// Token source indices of other are rebased.
func (ts *TokenStream) Append(other *TokenStream) {
	base := uint16(len(ts.Sources)) //nolint:gosec // source count is small
	ts.Sources = append(ts.Sources, other.Sources...)
	for _, t := range other.Tokens {
		t.Src += base
		ts.Tokens = append(ts.Tokens, t)
	}
}

// Clone returns a deep copy of the token slices.
func (ts *TokenStream) Clone() *TokenStream {
	return &TokenStream{
		Sources: append([]Source(nil), ts.Sources...),
		Tokens:  append([]Token(nil), ts.Tokens...),
	}
}
