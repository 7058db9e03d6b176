package text

// UnicodeRange represents an inclusive range of code points.
type UnicodeRange struct {
	Start rune
	End   rune
}

// Contains reports whether the rune is in the range.
func (ur UnicodeRange) Contains(r rune) bool {
	return r >= ur.Start && r <= ur.End
}

// Common Unicode ranges for registering fallback fonts.
var (
	RangeBasicLatin = UnicodeRange{0x0000, 0x007F} // ASCII
	RangeLatin1Sup  = UnicodeRange{0x0080, 0x00FF} // Latin-1 Supplement
	RangeCyrillic   = UnicodeRange{0x0400, 0x04FF} // Cyrillic
	RangeGreek      = UnicodeRange{0x0370, 0x03FF} // Greek and Coptic
	RangeArabic     = UnicodeRange{0x0600, 0x06FF} // Arabic
	RangeHebrew     = UnicodeRange{0x0590, 0x05FF} // Hebrew

	RangeCJKUnified = UnicodeRange{0x4E00, 0x9FFF} // CJK Unified Ideographs
	RangeHiragana   = UnicodeRange{0x3040, 0x309F} // Hiragana
	RangeKatakana   = UnicodeRange{0x30A0, 0x30FF} // Katakana
	RangeHangul     = UnicodeRange{0xAC00, 0xD7AF} // Hangul Syllables

	RangeEmoji     = UnicodeRange{0x1F600, 0x1F64F} // Emoticons
	RangeEmojiMisc = UnicodeRange{0x1F300, 0x1F5FF} // Miscellaneous Symbols and Pictographs
)

// FallbackFont pairs a font with the code point range it covers.
type FallbackFont struct {
	Range UnicodeRange
	Font  *Font
}

// Covers reports whether the fallback should be used for r when rendered
// with the given style: r must be in range and the face must have a glyph.
func (f FallbackFont) Covers(r rune, bold, italic bool) bool {
	return f.Range.Contains(r) && f.Font.Face(bold, italic).HasGlyph(r)
}
