package text

import (
	"bytes"
	"sync"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
)

// GoTextShaper provides HarfBuzz-level text shaping using go-text/typesetting.
// It supports ligatures, kerning pairs, contextual alternates and
// right-to-left scripts.
//
// Faces without a FontSource (synthetic faces) are shaped with
// BuiltinShaper instead.
//
// GoTextShaper is safe for concurrent use. Parsed font.Font values are
// cached per FontSource; HarfbuzzShaper instances are pooled because they
// carry mutable buffers.
type GoTextShaper struct {
	shaperPool sync.Pool

	mu        sync.RWMutex
	fontCache map[*FontSource]*font.Font
}

// NewGoTextShaper creates a new GoTextShaper.
func NewGoTextShaper() *GoTextShaper {
	return &GoTextShaper{
		shaperPool: sync.Pool{
			New: func() any {
				return &shaping.HarfbuzzShaper{}
			},
		},
		fontCache: make(map[*FontSource]*font.Font),
	}
}

// Shape implements Shaper.
func (s *GoTextShaper) Shape(text string, face Face, dir Direction) []ShapedGlyph {
	if text == "" || face == nil {
		return nil
	}
	source := face.Source()
	if source == nil {
		return BuiltinShaper{}.Shape(text, face, dir)
	}

	goTextFont, err := s.fontFor(source)
	if err != nil {
		return BuiltinShaper{}.Shape(text, face, dir)
	}

	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: mapDirection(dir),
		Face:      font.NewFace(goTextFont),
		Size:      toFixed(face.Size()),
		Script:    detectScript(runes),
		Language:  language.NewLanguage(languageOf(face)),
	}

	hb := s.shaperPool.Get().(*shaping.HarfbuzzShaper)
	output := hb.Shape(input)
	s.shaperPool.Put(hb)

	return convertGlyphs(output.Glyphs, byteOffsets(text))
}

// fontFor returns the cached go-text font for source, parsing it on first use.
func (s *GoTextShaper) fontFor(source *FontSource) (*font.Font, error) {
	s.mu.RLock()
	f, ok := s.fontCache[source]
	s.mu.RUnlock()
	if ok {
		return f, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.fontCache[source]; ok {
		return f, nil
	}
	parsed, err := font.ParseTTF(bytes.NewReader(source.data))
	if err != nil {
		return nil, err
	}
	s.fontCache[source] = parsed.Font
	return parsed.Font, nil
}

// ClearCache removes all cached parsed fonts.
func (s *GoTextShaper) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontCache = make(map[*FontSource]*font.Font)
}

// languageOf returns the shaping language configured on face.
func languageOf(face Face) string {
	if sf, ok := face.(*sourceFace); ok && sf.config.language != "" {
		return sf.config.language
	}
	return "en"
}

// mapDirection converts Direction to go-text's di.Direction.
func mapDirection(d Direction) di.Direction {
	if d == DirectionRTL {
		return di.DirectionRTL
	}
	return di.DirectionLTR
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// byteOffsets maps rune indices of s to byte offsets; the extra final
// entry is len(s).
func byteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// convertGlyphs converts go-text output to ShapedGlyph values with byte
// offset clusters.
func convertGlyphs(glyphs []shaping.Glyph, offsets []int) []ShapedGlyph {
	if len(glyphs) == 0 {
		return nil
	}
	result := make([]ShapedGlyph, len(glyphs))
	for i, g := range glyphs {
		cluster := g.TextIndex()
		if cluster >= 0 && cluster < len(offsets) {
			cluster = offsets[cluster]
		}
		result[i] = ShapedGlyph{
			GID:      GlyphID(uint16(g.GlyphID)), //nolint:gosec // GlyphID is uint16 by design
			Cluster:  cluster,
			XOffset:  fromFixed(g.XOffset),
			YOffset:  fromFixed(g.YOffset),
			XAdvance: fromFixed(g.Advance),
		}
	}
	return result
}
