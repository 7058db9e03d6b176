package text

import "sync"

// runeInfo is the cached per-rune data of a face.
type runeInfo struct {
	gid     uint16
	advance float64
}

// runeCache maps runes to glyph ids and advances.
// Entries are grouped into 256-rune blocks allocated on demand, which keeps
// sparse access across the Unicode space cheap.
//
// runeCache is safe for concurrent use.
type runeCache struct {
	mu     sync.RWMutex
	blocks map[uint32]*runeBlock
}

// runeBlock covers 256 consecutive runes.
type runeBlock struct {
	checked [4]uint64
	info    [256]runeInfo
}

func newRuneCache() *runeCache {
	return &runeCache{blocks: make(map[uint32]*runeBlock)}
}

// get returns the cached info and whether r has been stored.
func (c *runeCache) get(r rune) (runeInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b, ok := c.blocks[uint32(r)>>8]
	if !ok {
		return runeInfo{}, false
	}
	i := uint32(r) & 0xFF
	if b.checked[i/64]&(1<<(i%64)) == 0 {
		return runeInfo{}, false
	}
	return b.info[i], true
}

// put stores info for r.
func (c *runeCache) put(r rune, info runeInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := uint32(r) >> 8
	b, ok := c.blocks[key]
	if !ok {
		b = &runeBlock{}
		c.blocks[key] = b
	}
	i := uint32(r) & 0xFF
	b.checked[i/64] |= 1 << (i % 64)
	b.info[i] = info
}
