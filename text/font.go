package text

// Style bits index the faces of a Font.
const (
	styleBold   = 1 << 0
	styleItalic = 1 << 1
)

// Font is a named family of faces: regular, bold, italic and bold italic.
// Variants that were not provided fall back to the closest available face.
//
// Font is immutable after NewFont and safe for concurrent use.
type Font struct {
	name  string
	faces [4]Face
}

// NewFont creates a font family around its regular face.
// Panics if regular is nil.
func NewFont(name string, regular Face, opts ...FontOption) *Font {
	if regular == nil {
		panic(ErrNilFace)
	}
	f := &Font{name: name}
	f.faces[0] = regular
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the family name the font was registered with.
func (f *Font) Name() string {
	return f.name
}

// Face returns the face for the requested style.
// A missing bold italic face falls back to bold, then italic, then regular.
func (f *Font) Face(bold, italic bool) Face {
	idx := 0
	if bold {
		idx |= styleBold
	}
	if italic {
		idx |= styleItalic
	}
	for _, candidate := range fallbackOrder[idx] {
		if face := f.faces[candidate]; face != nil {
			return face
		}
	}
	return f.faces[0]
}

// fallbackOrder lists, per style index, the faces to try in order.
var fallbackOrder = [4][]int{
	0:                       {0},
	styleBold:               {styleBold, 0},
	styleItalic:             {styleItalic, 0},
	styleBold | styleItalic: {styleBold | styleItalic, styleBold, styleItalic, 0},
}

// LineSpacing returns the regular face's recommended line height.
func (f *Font) LineSpacing() float64 {
	return f.faces[0].Metrics().LineHeight()
}

// Descender returns the regular face's descent below the baseline.
func (f *Font) Descender() float64 {
	return f.faces[0].Metrics().Descent
}
