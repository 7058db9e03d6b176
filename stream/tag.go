package stream

// Tag identifies the record stored in a slot.
type Tag uint8

// Record tags.
const (
	TagInvalid Tag = iota
	TagBlockInfo
	TagLineInfo
	TagText
	TagIcon
	TagLineBreak
	TagToggleBold
	TagToggleItalic
	TagPushStyle
	TagPopStyle
	TagPushFont
	TagPopFont
	TagPushColor
	TagPopColor
	TagPushGlyphShader
	TagPopGlyphShader
	TagPushLink
	TagPopLink
	TagChangeSource
	TagHyphen
	TagCustom

	tagCount
)

var tagNames = [tagCount]string{
	TagInvalid:         "Invalid",
	TagBlockInfo:       "BlockInfo",
	TagLineInfo:        "LineInfo",
	TagText:            "Text",
	TagIcon:            "Icon",
	TagLineBreak:       "LineBreak",
	TagToggleBold:      "ToggleBold",
	TagToggleItalic:    "ToggleItalic",
	TagPushStyle:       "PushStyle",
	TagPopStyle:        "PopStyle",
	TagPushFont:        "PushFont",
	TagPopFont:         "PopFont",
	TagPushColor:       "PushColor",
	TagPopColor:        "PopColor",
	TagPushGlyphShader: "PushGlyphShader",
	TagPopGlyphShader:  "PopGlyphShader",
	TagPushLink:        "PushLink",
	TagPopLink:         "PopLink",
	TagChangeSource:    "ChangeSource",
	TagHyphen:          "Hyphen",
	TagCustom:          "Custom",
}

// String returns the tag name.
func (t Tag) String() string {
	if t < tagCount {
		return tagNames[t]
	}
	return "Unknown"
}

// Scope identifies one of the push/pop stacks.
type Scope uint8

// Scopes.
const (
	ScopeStyle Scope = iota
	ScopeFont
	ScopeColor
	ScopeGlyphShader
	ScopeLink

	// NumScopes is the number of scopes.
	NumScopes
)

var scopeNames = [NumScopes]string{"Style", "Font", "Color", "GlyphShader", "Link"}

// String returns the scope name.
func (s Scope) String() string {
	if s < NumScopes {
		return scopeNames[s]
	}
	return "Unknown"
}

// pushTag and popTag map scopes to their record tags.
var (
	pushTag = [NumScopes]Tag{TagPushStyle, TagPushFont, TagPushColor, TagPushGlyphShader, TagPushLink}
	popTag  = [NumScopes]Tag{TagPopStyle, TagPopFont, TagPopColor, TagPopGlyphShader, TagPopLink}
)

// PushTag returns the push tag of s.
func (s Scope) PushTag() Tag { return pushTag[s] }

// PopTag returns the pop tag of s.
func (s Scope) PopTag() Tag { return popTag[s] }

// ScopeOf returns the scope of a push or pop tag.
func ScopeOf(t Tag) (s Scope, push, ok bool) {
	for i := range NumScopes {
		switch t {
		case pushTag[i]:
			return i, true, true
		case popTag[i]:
			return i, false, true
		}
	}
	return 0, false, false
}
