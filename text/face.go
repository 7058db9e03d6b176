package text

// Face represents a font face at a specific size.
//
// Layout measures runs through Advance and Kern, asks HasGlyph to decide
// when a fallback font must take over, and uses Metrics for line heights.
// Implementations must be deterministic: the renderer re-measures the same
// strings and expects the same widths the layout saw.
type Face interface {
	// Metrics returns the font metrics at this face's size.
	Metrics() Metrics

	// Advance returns the total advance width of s, kerning included.
	Advance(s string) float64

	// GlyphAdvance returns the advance width of a single rune.
	GlyphAdvance(r rune) float64

	// Kern returns the kerning adjustment between two adjacent runes.
	Kern(left, right rune) float64

	// HasGlyph reports whether the face can represent r.
	HasGlyph(r rune) bool

	// Size returns the size of this face in pixels per em.
	Size() float64

	// Direction returns the preferred text direction of the face.
	Direction() Direction

	// Source returns the FontSource this face was created from,
	// or nil for synthetic faces.
	Source() *FontSource
}

// sourceFace is the Face implementation backed by a FontSource.
type sourceFace struct {
	source *FontSource
	size   float64
	config faceConfig
	cache  *runeCache
}

func (f *sourceFace) Metrics() Metrics {
	return f.source.Parsed().Metrics(f.size)
}

func (f *sourceFace) Advance(s string) float64 {
	var (
		total float64
		prev  rune
		first = true
	)
	for _, r := range s {
		if !first {
			total += f.Kern(prev, r)
		}
		total += f.GlyphAdvance(r)
		prev = r
		first = false
	}
	return total
}

func (f *sourceFace) GlyphAdvance(r rune) float64 {
	return f.lookup(r).advance
}

func (f *sourceFace) Kern(left, right rune) float64 {
	return f.source.Parsed().Kern(f.lookup(left).gid, f.lookup(right).gid, f.size)
}

func (f *sourceFace) HasGlyph(r rune) bool {
	return f.lookup(r).gid != 0
}

func (f *sourceFace) Size() float64 {
	return f.size
}

func (f *sourceFace) Direction() Direction {
	return f.config.direction
}

func (f *sourceFace) Source() *FontSource {
	return f.source
}

// glyphID returns the glyph index for r.
func (f *sourceFace) glyphID(r rune) GlyphID {
	return GlyphID(f.lookup(r).gid)
}

// lookup returns cached glyph data for r, filling the cache on a miss.
func (f *sourceFace) lookup(r rune) runeInfo {
	if info, ok := f.cache.get(r); ok {
		return info
	}
	parsed := f.source.Parsed()
	gid := parsed.GlyphIndex(r)
	info := runeInfo{gid: gid, advance: parsed.GlyphAdvance(gid, f.size)}
	f.cache.put(r, info)
	return info
}
