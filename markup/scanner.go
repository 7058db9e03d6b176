package markup

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/gogpu/richtext/resource"
)

const nbsp = '\u00a0'

// scanner produces one token at a time from a source string.
type scanner struct {
	src      string
	commands *CommandSet
}

// next lexes the token starting at pos. pos must be < len(src).
func (l *scanner) next(pos int) (Token, error) {
	src := l.src
	switch src[pos] {
	case '\n':
		return Token{Kind: KindText, Flags: FlagNewline, Offset: pos, Length: 1}, nil
	case '\r':
		n := 1
		if pos+1 < len(src) && src[pos+1] == '\n' {
			n = 2
		}
		return Token{Kind: KindText, Flags: FlagNewline, Offset: pos, Length: n}, nil
	case '|':
		return l.pipe(pos)
	}

	r, size := utf8.DecodeRuneInString(src[pos:])
	switch {
	case r == nbsp:
		end := l.scan(pos+size, func(r rune) bool { return r == nbsp })
		return Token{Kind: KindText, Flags: FlagNonBreaking, Offset: pos, Length: end - pos}, nil
	case isBreakingSpace(r):
		end := l.scan(pos+size, isBreakingSpace)
		return Token{Kind: KindText, Flags: FlagWhitespace, Offset: pos, Length: end - pos}, nil
	}
	return l.word(pos, pos+size), nil
}

// pipe lexes a token starting with '|'.
func (l *scanner) pipe(pos int) (Token, error) {
	src := l.src
	if pos+1 < len(src) && src[pos+1] == '|' {
		return Token{Kind: KindText, Flags: FlagEscaped, Offset: pos, Length: 2}, nil
	}
	if pos+1 == len(src) {
		return Token{Kind: KindText, Flags: FlagEscaped, Offset: pos, Length: 1}, nil
	}
	if r, _ := utf8.DecodeRuneInString(src[pos+1:]); unicode.IsSpace(r) {
		return Token{Kind: KindText, Flags: FlagEscaped, Offset: pos, Length: 1}, nil
	}

	rest := src[pos+1:]
	end := strings.IndexAny(rest, "|\r\n")
	if end < 0 || rest[end] != '|' {
		return l.word(pos, pos+1), nil
	}
	tok, ok, err := l.command(pos, rest[:end])
	if err != nil {
		return Token{}, err
	}
	if !ok {
		return l.word(pos, pos+1), nil
	}
	tok.Offset = pos
	tok.Length = end + 2
	return tok, nil
}

// command interprets a command body. ok is false when the body is not a
// recognised command.
func (l *scanner) command(pos int, body string) (tok Token, ok bool, err error) {
	cmd := parseCommandBody(body)
	if cmd == nil {
		return Token{}, false, nil
	}
	if cmd.HasArg && cmd.Arg == "" {
		return Token{}, false, nil
	}

	push := func(push, pop Kind) (Token, bool, error) {
		if cmd.HasArg {
			return Token{Kind: push, Value: cmd.Arg}, true, nil
		}
		return Token{Kind: pop}, true, nil
	}

	switch cmd.Name {
	case "b":
		return Token{Kind: KindToggleBold}, !cmd.HasArg, nil
	case "i":
		return Token{Kind: KindToggleItalic}, !cmd.HasArg, nil
	case "c":
		if !cmd.HasArg {
			return Token{Kind: KindPopColor}, true, nil
		}
		if len(cmd.Arg) != 8 {
			return Token{}, false, nil
		}
		c, perr := resource.ParseHex(cmd.Arg)
		if perr != nil {
			return Token{}, false, &ColorError{Offset: pos, Value: cmd.Arg, Err: perr}
		}
		return Token{Kind: KindPushColor, Color: c}, true, nil
	case "font":
		return push(KindPushFont, KindPopFont)
	case "style":
		return push(KindPushStyle, KindPopStyle)
	case "shader":
		return push(KindPushGlyphShader, KindPopGlyphShader)
	case "link":
		return push(KindPushLink, KindPopLink)
	case "icon":
		return Token{Kind: KindIcon, Value: cmd.Arg}, cmd.HasArg, nil
	}

	if l.commands == nil {
		return Token{}, false, nil
	}
	id, found := l.commands.Lookup(cmd.Name)
	if !found {
		return Token{}, false, nil
	}
	return Token{Kind: KindCustom, CustomID: id, Value: cmd.Arg}, true, nil
}

// word lexes a word starting at pos whose first character ends at from.
func (l *scanner) word(pos, from int) Token {
	end := l.scan(from, func(r rune) bool { return r != '|' && !unicode.IsSpace(r) })
	return Token{Kind: KindText, Offset: pos, Length: end - pos}
}

// scan returns the offset of the first rune at or after pos not matching f.
func (l *scanner) scan(pos int, f func(rune) bool) int {
	for pos < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[pos:])
		if !f(r) {
			break
		}
		pos += size
	}
	return pos
}

// isBreakingSpace reports whether r is whitespace a line may break at.
// Newlines and non-breaking spaces have their own tokens.
func isBreakingSpace(r rune) bool {
	return r != '\n' && r != '\r' && r != nbsp && unicode.IsSpace(r)
}
