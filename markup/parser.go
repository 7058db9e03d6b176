package markup

import (
	"strings"

	"github.com/gogpu/richtext"
)

// Option configures a Parser.
type Option func(*Parser)

// WithCommandSet makes the parser recognise the custom commands in cs
// instead of those in DefaultCommandSet.
func WithCommandSet(cs *CommandSet) Option {
	return func(p *Parser) {
		p.commands = cs
	}
}

// Parser tokenizes markup.
//
// A Parser owns a scratch buffer reused by ParseIncremental, so it is not
// safe for concurrent use. Use one Parser per goroutine.
type Parser struct {
	commands *CommandSet
	scratch  []Token
}

// NewParser creates a parser.
func NewParser(opts ...Option) *Parser {
	p := &Parser{commands: defaultCommands}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse tokenizes source with a new default parser.
func Parse(source string, out *TokenStream) error {
	return NewParser().Parse(source, out)
}

// Parse replaces the contents of out with the tokens of source.
//
// Malformed commands become text. The only error is a *ColorError for a
// color argument of eight characters that is not hex; out is left empty.
func (p *Parser) Parse(source string, out *TokenStream) error {
	return p.ParseSource(Source{Kind: SourceString, Text: source}, out)
}

// ParseBuilder tokenizes the current contents of b. The stream keeps a
// reference to b, so later edits can be applied with ParseIncremental.
func (p *Parser) ParseBuilder(b *strings.Builder, out *TokenStream) error {
	return p.ParseSource(Source{Kind: SourceBuilder, Builder: b}, out)
}

// ParseSource replaces the contents of out with the tokens of src.
func (p *Parser) ParseSource(src Source, out *TokenStream) error {
	out.Reset()
	out.Sources = append(out.Sources, src)

	text := src.String()
	lx := scanner{src: text, commands: p.commands}
	for pos := 0; pos < len(text); {
		tok, err := lx.next(pos)
		if err != nil {
			out.Tokens = out.Tokens[:0]
			return err
		}
		out.Tokens = append(out.Tokens, tok)
		pos = tok.End()
	}
	return nil
}

// ParseIncremental updates ts, previously produced by Parse, after an edit.
//
// source is the complete text after the edit. The edit replaced some range
// of the old text starting at editStart with editCount bytes of new text;
// the number of bytes removed is editCount minus the change in length.
// For a single-source stream with a SourceBuilder the builder must already
// hold the new text and source must equal its contents.
//
// Only tokens whose lexing can depend on the edited bytes are re-lexed.
// The returned offset and count give the range of ts.Tokens that was
// replaced; tokens after it are shifted but otherwise unchanged.
func (p *Parser) ParseIncremental(source string, editStart, editCount int, ts *TokenStream) (offset, count int, err error) {
	if len(ts.Sources) > 1 {
		return 0, 0, ErrInvalidEdit
	}
	oldLen := 0
	if n := len(ts.Tokens); n > 0 {
		oldLen = ts.Tokens[n-1].End()
	}
	delta := len(source) - oldLen
	removed := editCount - delta
	if editStart < 0 || editCount < 0 || removed < 0 ||
		editStart+editCount > len(source) || editStart+removed > oldLen {
		return 0, 0, ErrInvalidEdit
	}
	if len(ts.Sources) == 0 {
		ts.Sources = append(ts.Sources, Source{Kind: SourceString})
	}

	tokens := ts.Tokens
	ix1 := firstAffected(tokens, editStart)
	ix1 = extendToPipeWord(tokens, ix1, source)

	pos := 0
	if ix1 < len(tokens) {
		pos = tokens[ix1].Offset
	} else if ix1 > 0 {
		pos = tokens[ix1-1].End()
	}

	newEditEnd := editStart + editCount
	lx := scanner{src: source, commands: p.commands}
	p.scratch = p.scratch[:0]
	k := ix1
	for pos < len(source) {
		if pos >= newEditEnd {
			for k < len(tokens) && tokens[k].Offset+delta < pos {
				k++
			}
			if k < len(tokens) && tokens[k].Offset+delta == pos {
				break
			}
		}
		tok, lexErr := lx.next(pos)
		if lexErr != nil {
			return 0, 0, lexErr
		}
		p.scratch = append(p.scratch, tok)
		pos = tok.End()
	}
	if pos >= len(source) {
		k = len(tokens)
	}

	tail := tokens[k:]
	for i := range tail {
		tail[i].Offset += delta
	}
	ts.Tokens = spliceTokens(tokens, ix1, k, p.scratch)
	if ts.Sources[0].Kind == SourceString {
		ts.Sources[0].Text = source
	}

	richtext.Logger().Debug("markup: incremental parse",
		"editStart", editStart, "editCount", editCount,
		"replaced", k-ix1, "inserted", len(p.scratch))
	return ix1, len(p.scratch), nil
}

// firstAffected returns the index of the first token ending at or after
// editStart.
func firstAffected(tokens []Token, editStart int) int {
	lo, hi := 0, len(tokens)
	for lo < hi {
		mid := int(uint(lo+hi) >> 1)
		if tokens[mid].End() < editStart {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}

// extendToPipeWord moves ix back to the earliest token on the same line
// that is a pipe followed by text. Such a token became text because no
// closing pipe was found, and the edit may have inserted one.
// Tokens before ix end before the edit, so their bytes are the same in the
// old and new source.
func extendToPipeWord(tokens []Token, ix int, source string) int {
	start := ix
	for i := ix - 1; i >= 0; i-- {
		t := tokens[i]
		if t.Flags.Has(FlagNewline) {
			break
		}
		if t.Kind == KindText && t.Flags == 0 && source[t.Offset] == '|' {
			start = i
		}
	}
	return start
}

// spliceTokens replaces tokens[from:to] with repl.
func spliceTokens(tokens []Token, from, to int, repl []Token) []Token {
	diff := len(repl) - (to - from)
	switch {
	case diff > 0:
		tokens = append(tokens, make([]Token, diff)...)
		copy(tokens[to+diff:], tokens[to:len(tokens)-diff])
	case diff < 0:
		copy(tokens[to+diff:], tokens[to:])
		tokens = tokens[:len(tokens)+diff]
	}
	copy(tokens[from:], repl)
	return tokens
}
