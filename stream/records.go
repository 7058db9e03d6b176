package stream

import (
	"encoding/binary"
	"fmt"
	"image/color"
	"math"
)

// SlotSize is the size in bytes of every record.
const SlotSize = 48

// Command is a record that can be stored in a Stream.
type Command interface {
	Tag() Tag
	encode(b slot)
}

// BlockFlags describe a laid-out block.
type BlockFlags uint8

// Block flags.
const (
	// BlockBold and BlockItalic record the initial font style.
	BlockBold BlockFlags = 1 << iota
	BlockItalic
	// BlockRTL mirrors horizontal placement.
	BlockRTL
	// BlockUniformFace is set when every run uses the default face and
	// there are no icons, so line metadata alone locates any glyph.
	BlockUniformFace
	// BlockNoScopes is set when the stream contains no push or pop records.
	BlockNoScopes
)

// Has reports whether all bits in f2 are set.
func (f BlockFlags) Has(f2 BlockFlags) bool { return f&f2 == f2 }

// BlockInfo is the first record of a laid-out block.
type BlockInfo struct {
	// Offset is the vertical offset of the first line.
	Offset float32
	// LineCount is the number of LineInfo records that follow.
	LineCount int32
	// Width and Height are the extent of the laid-out content.
	Width, Height float32
	// LengthInSource is the number of source bytes the block consumed.
	LengthInSource int32
	// DefaultFont indexes the font registry.
	DefaultFont int16
	// InitialStyle indexes the style registry, or is -1.
	InitialStyle int16
	Flags        BlockFlags
}

// Tag implements Command.
func (BlockInfo) Tag() Tag { return TagBlockInfo }

func (r BlockInfo) encode(b slot) {
	b[1] = byte(r.Flags)
	b.putI16(2, r.DefaultFont)
	b.putI16(4, r.InitialStyle)
	b.putF32(8, r.Offset)
	b.putI32(12, r.LineCount)
	b.putF32(16, r.Width)
	b.putF32(20, r.Height)
	b.putI32(24, r.LengthInSource)
}

func decodeBlockInfo(b slot) BlockInfo {
	return BlockInfo{
		Flags:          BlockFlags(b[1]),
		DefaultFont:    b.i16(2),
		InitialStyle:   b.i16(4),
		Offset:         b.f32(8),
		LineCount:      b.i32(12),
		Width:          b.f32(16),
		Height:         b.f32(20),
		LengthInSource: b.i32(24),
	}
}

// LineInfo starts every line.
type LineInfo struct {
	// Offset is the horizontal offset of the line from the block origin.
	Offset float32
	Width  float32
	Height float32
	// Baseline is the distance from the top of the line to its baseline.
	Baseline float32
	// LengthInCommands is the number of records in the line, not counting
	// the LineInfo itself.
	LengthInCommands int32
	LengthInGlyphs   int32
	// LengthInSource counts every source byte the line consumed, markup
	// and the terminating break included.
	LengthInSource int32
	LengthInShaped int32
	// TerminatingBreakLen is the source length of the break that ended
	// the line.
	TerminatingBreakLen int32
}

// Tag implements Command.
func (LineInfo) Tag() Tag { return TagLineInfo }

func (r LineInfo) encode(b slot) {
	b.putF32(4, r.Offset)
	b.putF32(8, r.Width)
	b.putF32(12, r.Height)
	b.putF32(16, r.Baseline)
	b.putI32(20, r.LengthInCommands)
	b.putI32(24, r.LengthInGlyphs)
	b.putI32(28, r.LengthInSource)
	b.putI32(32, r.LengthInShaped)
	b.putI32(36, r.TerminatingBreakLen)
}

func decodeLineInfo(b slot) LineInfo {
	return LineInfo{
		Offset:              b.f32(4),
		Width:               b.f32(8),
		Height:              b.f32(12),
		Baseline:            b.f32(16),
		LengthInCommands:    b.i32(20),
		LengthInGlyphs:      b.i32(24),
		LengthInSource:      b.i32(28),
		LengthInShaped:      b.i32(32),
		TerminatingBreakLen: b.i32(36),
	}
}

// Text is a run of glyphs drawn with the current face.
type Text struct {
	// GlyphOffset is the block-wide index of the first glyph.
	GlyphOffset, GlyphLen int32
	// SourceOffset is a byte offset into the current source.
	SourceOffset, SourceLen int32
	// ShapedOffset indexes the glyphs of a shaped source.
	ShapedOffset, ShapedLen int32
	// X and Y place the run relative to its line. Y is the top of the run.
	X, Y, W, H float32
}

// Tag implements Command.
func (Text) Tag() Tag { return TagText }

func (r Text) encode(b slot) {
	b.putI32(4, r.GlyphOffset)
	b.putI32(8, r.GlyphLen)
	b.putI32(12, r.SourceOffset)
	b.putI32(16, r.SourceLen)
	b.putI32(20, r.ShapedOffset)
	b.putI32(24, r.ShapedLen)
	b.putF32(28, r.X)
	b.putF32(32, r.Y)
	b.putF32(36, r.W)
	b.putF32(40, r.H)
}

func decodeText(b slot) Text {
	return Text{
		GlyphOffset:  b.i32(4),
		GlyphLen:     b.i32(8),
		SourceOffset: b.i32(12),
		SourceLen:    b.i32(16),
		ShapedOffset: b.i32(20),
		ShapedLen:    b.i32(24),
		X:            b.f32(28),
		Y:            b.f32(32),
		W:            b.f32(36),
		H:            b.f32(40),
	}
}

// Icon is an inline sprite. It counts as one glyph.
type Icon struct {
	IconIndex           int16
	X, Y, W, H          float32
	Ascender, Descender float32
	GlyphOffset         int32
	GlyphLen            int32
	SourceOffset        int32
	SourceLen           int32
}

// Tag implements Command.
func (Icon) Tag() Tag { return TagIcon }

func (r Icon) encode(b slot) {
	b.putI16(2, r.IconIndex)
	b.putF32(4, r.X)
	b.putF32(8, r.Y)
	b.putF32(12, r.W)
	b.putF32(16, r.H)
	b.putF32(20, r.Ascender)
	b.putF32(24, r.Descender)
	b.putI32(28, r.GlyphOffset)
	b.putI32(32, r.GlyphLen)
	b.putI32(36, r.SourceOffset)
	b.putI32(40, r.SourceLen)
}

func decodeIcon(b slot) Icon {
	return Icon{
		IconIndex:    b.i16(2),
		X:            b.f32(4),
		Y:            b.f32(8),
		W:            b.f32(12),
		H:            b.f32(16),
		Ascender:     b.f32(20),
		Descender:    b.f32(24),
		GlyphOffset:  b.i32(28),
		GlyphLen:     b.i32(32),
		SourceOffset: b.i32(36),
		SourceLen:    b.i32(40),
	}
}

// LineBreak ends a line. Synthetic breaks have zero lengths.
type LineBreak struct {
	GlyphOffset, GlyphLen   int32
	SourceOffset, SourceLen int32
}

// Tag implements Command.
func (LineBreak) Tag() Tag { return TagLineBreak }

func (r LineBreak) encode(b slot) {
	b.putI32(4, r.GlyphOffset)
	b.putI32(8, r.GlyphLen)
	b.putI32(12, r.SourceOffset)
	b.putI32(16, r.SourceLen)
}

func decodeLineBreak(b slot) LineBreak {
	return LineBreak{
		GlyphOffset:  b.i32(4),
		GlyphLen:     b.i32(8),
		SourceOffset: b.i32(12),
		SourceLen:    b.i32(16),
	}
}

// Toggle flips bold, or italic when Italic is set.
type Toggle struct {
	Italic bool
}

// Tag implements Command.
func (r Toggle) Tag() Tag {
	if r.Italic {
		return TagToggleItalic
	}
	return TagToggleBold
}

func (Toggle) encode(slot) {}

// Push pushes a registry index onto a scope stack. Colors use PushColor.
type Push struct {
	Scope Scope
	Index int16
	// Implicit marks pushes layout inserted on its own, such as fallback
	// fonts and the font of a style.
	Implicit bool
}

// Tag implements Command.
func (r Push) Tag() Tag { return pushTag[r.Scope] }

func (r Push) encode(b slot) {
	b.putI16(2, r.Index)
	b.putBool(4, r.Implicit)
}

// PushColor pushes a color.
type PushColor struct {
	Color    color.NRGBA
	Implicit bool
}

// Tag implements Command.
func (PushColor) Tag() Tag { return TagPushColor }

func (r PushColor) encode(b slot) {
	b[2], b[3], b[4], b[5] = r.Color.R, r.Color.G, r.Color.B, r.Color.A
	b.putBool(6, r.Implicit)
}

// Pop pops a scope stack.
type Pop struct {
	Scope    Scope
	Implicit bool
}

// Tag implements Command.
func (r Pop) Tag() Tag { return popTag[r.Scope] }

func (r Pop) encode(b slot) {
	b.putBool(4, r.Implicit)
}

// SourceKind identifies how a registered source is stored.
type SourceKind uint8

// Source kinds.
const (
	SourceString SourceKind = iota
	SourceStringBuilder
	SourceShapedString
	SourceShapedStringBuilder
)

var sourceKindNames = [...]string{"String", "StringBuilder", "ShapedString", "ShapedStringBuilder"}

// String returns the kind name.
func (k SourceKind) String() string {
	if int(k) < len(sourceKindNames) {
		return sourceKindNames[k]
	}
	return "Unknown"
}

// ChangeSource makes a registered source current for the records that
// follow.
type ChangeSource struct {
	Kind  SourceKind
	Index int16
}

// Tag implements Command.
func (ChangeSource) Tag() Tag { return TagChangeSource }

func (r ChangeSource) encode(b slot) {
	b[1] = byte(r.Kind)
	b.putI16(2, r.Index)
}

// Hyphen is a hyphen drawn after a word broken at the line end.
type Hyphen struct {
	X, Y, W, H float32
}

// Tag implements Command.
func (Hyphen) Tag() Tag { return TagHyphen }

func (r Hyphen) encode(b slot) {
	b.putF32(4, r.X)
	b.putF32(8, r.Y)
	b.putF32(12, r.W)
	b.putF32(16, r.H)
}

// Custom carries a custom markup command to the renderer.
type Custom struct {
	ID byte
	// Value indexes the custom value registry, or is -1.
	Value int16
}

// Tag implements Command.
func (Custom) Tag() Tag { return TagCustom }

func (r Custom) encode(b slot) {
	b[1] = r.ID
	b.putI16(2, r.Value)
}

// decode returns the record stored in b.
func decode(b slot) Command {
	tag := Tag(b[0])
	switch tag {
	case TagBlockInfo:
		return decodeBlockInfo(b)
	case TagLineInfo:
		return decodeLineInfo(b)
	case TagText:
		return decodeText(b)
	case TagIcon:
		return decodeIcon(b)
	case TagLineBreak:
		return decodeLineBreak(b)
	case TagToggleBold:
		return Toggle{}
	case TagToggleItalic:
		return Toggle{Italic: true}
	case TagPushColor:
		return PushColor{Color: color.NRGBA{R: b[2], G: b[3], B: b[4], A: b[5]}, Implicit: b[6] != 0}
	case TagChangeSource:
		return ChangeSource{Kind: SourceKind(b[1]), Index: b.i16(2)}
	case TagHyphen:
		return Hyphen{X: b.f32(4), Y: b.f32(8), W: b.f32(12), H: b.f32(16)}
	case TagCustom:
		return Custom{ID: b[1], Value: b.i16(2)}
	}
	if scope, push, ok := ScopeOf(tag); ok {
		if push {
			return Push{Scope: scope, Index: b.i16(2), Implicit: b[4] != 0}
		}
		return Pop{Scope: scope, Implicit: b[4] != 0}
	}
	panic(fmt.Sprintf("stream: invalid tag %d", tag))
}

// slot is the byte view of one record.
type slot []byte

func (b slot) i16(off int) int16 { return int16(binary.LittleEndian.Uint16(b[off:])) } //nolint:gosec // two's complement round trip

func (b slot) putI16(off int, v int16) { binary.LittleEndian.PutUint16(b[off:], uint16(v)) } //nolint:gosec // two's complement round trip

func (b slot) i32(off int) int32 { return int32(binary.LittleEndian.Uint32(b[off:])) } //nolint:gosec // two's complement round trip

func (b slot) putI32(off int, v int32) { binary.LittleEndian.PutUint32(b[off:], uint32(v)) } //nolint:gosec // two's complement round trip

func (b slot) f32(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }

func (b slot) putF32(off int, v float32) { binary.LittleEndian.PutUint32(b[off:], math.Float32bits(v)) }

func (b slot) putBool(off int, v bool) {
	if v {
		b[off] = 1
	} else {
		b[off] = 0
	}
}
