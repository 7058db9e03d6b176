package text

// FaceOption configures Face creation.
type FaceOption func(*faceConfig)

// faceConfig holds configuration for Face.
type faceConfig struct {
	direction Direction
	language  string
}

// defaultFaceConfig returns the default face configuration.
func defaultFaceConfig() faceConfig {
	return faceConfig{
		direction: DirectionLTR,
		language:  "en",
	}
}

// WithDirection sets the preferred text direction for the face.
// Shapers use it when a run carries no strong directional characters.
func WithDirection(d Direction) FaceOption {
	return func(c *faceConfig) {
		c.direction = d
	}
}

// WithLanguage sets the language tag used when shaping (e.g., "en", "ja", "ar").
func WithLanguage(lang string) FaceOption {
	return func(c *faceConfig) {
		c.language = lang
	}
}

// FontOption configures a Font family.
type FontOption func(*Font)

// WithBold sets the face used for bold text.
func WithBold(f Face) FontOption {
	return func(font *Font) {
		font.faces[styleBold] = f
	}
}

// WithItalic sets the face used for italic text.
func WithItalic(f Face) FontOption {
	return func(font *Font) {
		font.faces[styleItalic] = f
	}
}

// WithBoldItalic sets the face used for text that is both bold and italic.
func WithBoldItalic(f Face) FontOption {
	return func(font *Font) {
		font.faces[styleBold|styleItalic] = f
	}
}
