package stream

import (
	"fmt"
	"strings"

	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/text"
)

// Stream is a command stream together with the registries its records
// index into.
//
// Stream is not safe for concurrent use. Between AcquirePointers and
// ReleasePointers the stream may be read but not mutated.
type Stream struct {
	buf    []byte
	pinned int

	sources      Registry[SourceKey, Source]
	styles       Registry[string, *resource.Style]
	icons        Registry[string, *resource.Icon]
	fonts        Registry[string, *text.Font]
	glyphShaders Registry[string, resource.GlyphShader]
	links        Registry[string, string]
	customValues Registry[string, string]
}

// New creates an empty stream.
func New() *Stream {
	return &Stream{}
}

// Len returns the number of records.
func (s *Stream) Len() int { return len(s.buf) / SlotSize }

// Append adds c at the end and returns its index.
func (s *Stream) Append(c Command) int {
	s.checkMutable()
	i := s.Len()
	s.buf = append(s.buf, make([]byte, SlotSize)...)
	s.write(i, c)
	return i
}

// Set overwrites the record at index i.
func (s *Stream) Set(i int, c Command) {
	s.checkMutable()
	s.write(i, c)
}

// At decodes the record at index i.
func (s *Stream) At(i int) Command {
	return decode(s.slot(i))
}

// TagAt returns the tag of the record at index i.
func (s *Stream) TagAt(i int) Tag {
	return Tag(s.slot(i)[0])
}

// Text decodes the Text record at index i. It panics if the record has
// another tag.
func (s *Stream) Text(i int) Text {
	b := s.slotOf(i, TagText)
	return decodeText(b)
}

// LineInfo decodes the LineInfo record at index i.
func (s *Stream) LineInfo(i int) LineInfo {
	return decodeLineInfo(s.slotOf(i, TagLineInfo))
}

// BlockInfo decodes the BlockInfo record at index i.
func (s *Stream) BlockInfo(i int) BlockInfo {
	return decodeBlockInfo(s.slotOf(i, TagBlockInfo))
}

// Insert splices cmds in before index at. Records at and after at move up.
func (s *Stream) Insert(at int, cmds ...Command) {
	s.ReserveInsert(at, len(cmds))
	for i, c := range cmds {
		s.write(at+i, c)
	}
}

// ReserveInsert opens n zeroed slots before index at. The caller must fill
// them with Set before the stream is read. Offsets stored in records are
// relative to their own line, so only the enclosing LineInfo's
// LengthInCommands needs updating.
func (s *Stream) ReserveInsert(at, n int) {
	s.checkMutable()
	if at < 0 || at > s.Len() {
		panic(fmt.Sprintf("stream: insert index %d out of range [0, %d]", at, s.Len()))
	}
	if n <= 0 {
		return
	}
	off := at * SlotSize
	grow := n * SlotSize
	s.buf = append(s.buf, make([]byte, grow)...)
	copy(s.buf[off+grow:], s.buf[off:len(s.buf)-grow])
	clear(s.buf[off : off+grow])
}

// Truncate drops every record at index n and beyond.
func (s *Stream) Truncate(n int) {
	s.checkMutable()
	if n < s.Len() {
		s.buf = s.buf[:n*SlotSize]
	}
}

// Clear removes every record and resets every registry.
func (s *Stream) Clear() {
	s.checkMutable()
	s.buf = s.buf[:0]
	s.sources.Reset()
	s.styles.Reset()
	s.icons.Reset()
	s.fonts.Reset()
	s.glyphShaders.Reset()
	s.links.Reset()
	s.customValues.Reset()
}

// AcquirePointers opens a read window in which Cursor.Data may be used.
// Windows nest. Every call must be paired with ReleasePointers, usually
// through defer.
func (s *Stream) AcquirePointers() { s.pinned++ }

// ReleasePointers closes a window opened by AcquirePointers.
func (s *Stream) ReleasePointers() {
	if s.pinned == 0 {
		panic("stream: ReleasePointers without AcquirePointers")
	}
	s.pinned--
}

// Pinned reports whether a pointer window is open.
func (s *Stream) Pinned() bool { return s.pinned > 0 }

// Sources returns the source registry.
func (s *Stream) Sources() *Registry[SourceKey, Source] { return &s.sources }

// Styles returns the style registry.
func (s *Stream) Styles() *Registry[string, *resource.Style] { return &s.styles }

// Icons returns the icon registry.
func (s *Stream) Icons() *Registry[string, *resource.Icon] { return &s.icons }

// Fonts returns the font registry.
func (s *Stream) Fonts() *Registry[string, *text.Font] { return &s.fonts }

// GlyphShaders returns the glyph shader registry.
func (s *Stream) GlyphShaders() *Registry[string, resource.GlyphShader] { return &s.glyphShaders }

// Links returns the link target registry. Targets are their own keys.
func (s *Stream) Links() *Registry[string, string] { return &s.links }

// CustomValues returns the registry of custom command values.
func (s *Stream) CustomValues() *Registry[string, string] { return &s.customValues }

// RegisterSource interns src and returns its index.
func (s *Stream) RegisterSource(src Source) (int16, error) {
	return s.sources.Register(src.key(), src)
}

// Source returns the source at index i.
func (s *Stream) Source(i int16) Source { return s.sources.Get(i) }

// ReplaceSource swaps the source at index i for src, keeping the index.
// Layout uses it to replace a shaping builder with its final string.
func (s *Stream) ReplaceSource(i int16, src Source) {
	s.sources.replace(i, src.key(), src)
}

// RegisterLink interns a link target by content.
func (s *Stream) RegisterLink(target string) (int16, error) {
	return s.links.Register(target, target)
}

// RegisterCustomValue interns a custom command value by content.
func (s *Stream) RegisterCustomValue(v string) (int16, error) {
	return s.customValues.Register(v, v)
}

func (s *Stream) write(i int, c Command) {
	b := s.slot(i)
	clear(b)
	b[0] = byte(c.Tag())
	c.encode(b)
}

func (s *Stream) slot(i int) slot {
	if i < 0 || i >= s.Len() {
		panic(fmt.Sprintf("stream: index %d out of range [0, %d)", i, s.Len()))
	}
	off := i * SlotSize
	return slot(s.buf[off : off+SlotSize : off+SlotSize])
}

func (s *Stream) slotOf(i int, want Tag) slot {
	b := s.slot(i)
	if got := Tag(b[0]); got != want {
		panic(fmt.Sprintf("stream: record %d is %v, not %v", i, got, want))
	}
	return b
}

func (s *Stream) checkMutable() {
	if s.pinned > 0 {
		panic("stream: mutation while pointers are acquired")
	}
}

// Source is a registered backing source: the text, and for shaped sources
// the glyphs, that Text records index into.
type Source struct {
	Kind          SourceKind
	Text          string
	Builder       *strings.Builder
	Shaped        *text.ShapedString
	ShapedBuilder *text.ShapedStringBuilder
}

// String returns the raw text of the source.
func (src Source) String() string {
	switch src.Kind {
	case SourceStringBuilder:
		return src.Builder.String()
	case SourceShapedString:
		return src.Shaped.Source()
	case SourceShapedStringBuilder:
		return src.ShapedBuilder.Source()
	default:
		return src.Text
	}
}

// Glyphs returns the shaped glyphs, or nil for unshaped sources.
func (src Source) Glyphs() []text.ShapedGlyph {
	switch src.Kind {
	case SourceShapedString:
		return src.Shaped.Glyphs()
	case SourceShapedStringBuilder:
		return src.ShapedBuilder.Glyphs()
	default:
		return nil
	}
}

// IsShaped reports whether the source carries glyphs.
func (src Source) IsShaped() bool {
	return src.Kind == SourceShapedString || src.Kind == SourceShapedStringBuilder
}

// SourceKey identifies a source: strings by content, builders and shaped
// strings by identity.
type SourceKey struct {
	kind SourceKind
	text string
	ptr  any
}

func (src Source) key() SourceKey {
	switch src.Kind {
	case SourceStringBuilder:
		return SourceKey{kind: src.Kind, ptr: src.Builder}
	case SourceShapedString:
		return SourceKey{kind: src.Kind, ptr: src.Shaped}
	case SourceShapedStringBuilder:
		return SourceKey{kind: src.Kind, ptr: src.ShapedBuilder}
	default:
		return SourceKey{kind: src.Kind, text: src.Text}
	}
}
