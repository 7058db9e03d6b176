package text

import (
	"slices"
	"sync"
)

// shapeKey identifies one shaping request.
type shapeKey struct {
	text string
	face Face
	dir  Direction
}

// shapeEntry holds a cached shaping result with its access time.
type shapeEntry struct {
	glyphs []ShapedGlyph
	atime  int64
}

// CachedShaper memoizes another Shaper's results in an LRU cache with a
// soft limit. When the cache exceeds the limit the least recently used
// quarter of the entries is evicted.
//
// Layout reshapes the same words on every pass, so wrapping an expensive
// shaper such as GoTextShaper saves most of the work on re-layout.
//
// CachedShaper is safe for concurrent use when the wrapped Shaper is.
// Callers must not modify returned glyph slices.
type CachedShaper struct {
	shaper Shaper

	mu        sync.Mutex
	entries   map[shapeKey]*shapeEntry
	softLimit int
	tick      int64
	hits      uint64
	misses    uint64
}

// DefaultShapeCacheSize is the soft limit used by NewCachedShaper when
// size is not positive.
const DefaultShapeCacheSize = 1024

// NewCachedShaper wraps shaper with a cache of roughly size entries.
func NewCachedShaper(shaper Shaper, size int) *CachedShaper {
	if size <= 0 {
		size = DefaultShapeCacheSize
	}
	return &CachedShaper{
		shaper:    shaper,
		entries:   make(map[shapeKey]*shapeEntry),
		softLimit: size,
	}
}

// Shape implements Shaper.
func (c *CachedShaper) Shape(s string, face Face, dir Direction) []ShapedGlyph {
	key := shapeKey{text: s, face: face, dir: dir}

	c.mu.Lock()
	c.tick++
	if e, ok := c.entries[key]; ok {
		e.atime = c.tick
		c.hits++
		c.mu.Unlock()
		return e.glyphs
	}
	c.misses++
	c.mu.Unlock()

	glyphs := c.shaper.Shape(s, face, dir)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tick++
	c.entries[key] = &shapeEntry{glyphs: glyphs, atime: c.tick}
	if len(c.entries) > c.softLimit {
		c.evictOldest()
	}
	return glyphs
}

// Len returns the number of cached results.
func (c *CachedShaper) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters.
func (c *CachedShaper) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Clear removes all cached results.
func (c *CachedShaper) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[shapeKey]*shapeEntry)
	c.tick = 0
}

// evictOldest removes entries until three quarters of the soft limit remain.
// Caller must hold c.mu.
func (c *CachedShaper) evictOldest() {
	target := max(c.softLimit*3/4, 1)
	toEvict := len(c.entries) - target
	if toEvict <= 0 {
		return
	}

	type aged struct {
		key   shapeKey
		atime int64
	}
	all := make([]aged, 0, len(c.entries))
	for k, e := range c.entries {
		all = append(all, aged{key: k, atime: e.atime})
	}
	slices.SortFunc(all, func(a, b aged) int {
		return int(a.atime - b.atime)
	})
	for _, e := range all[:toEvict] {
		delete(c.entries, e.key)
	}
}
