package text

import (
	"sync"
	"testing"
)

// countingShaper counts calls to the wrapped shaper.
type countingShaper struct {
	mu    sync.Mutex
	calls int
}

func (c *countingShaper) Shape(s string, face Face, dir Direction) []ShapedGlyph {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return BuiltinShaper{}.Shape(s, face, dir)
}

func TestCachedShaperHit(t *testing.T) {
	inner := &countingShaper{}
	cache := NewCachedShaper(inner, 0)
	face := NewMonoFace(8, 16)

	a := cache.Shape("word", face, DirectionLTR)
	b := cache.Shape("word", face, DirectionLTR)
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
	if len(a) != len(b) {
		t.Errorf("cached result differs: %d vs %d glyphs", len(a), len(b))
	}

	cache.Shape("word", face, DirectionRTL)
	if inner.calls != 2 {
		t.Errorf("different direction should miss, inner calls = %d", inner.calls)
	}

	hits, misses := cache.Stats()
	if hits != 1 || misses != 2 {
		t.Errorf("Stats() = (%d, %d), want (1, 2)", hits, misses)
	}
}

func TestCachedShaperEviction(t *testing.T) {
	cache := NewCachedShaper(BuiltinShaper{}, 8)
	face := NewMonoFace(8, 16)

	for i := range 20 {
		cache.Shape(string(rune('a'+i)), face, DirectionLTR)
	}
	if n := cache.Len(); n > 8 {
		t.Errorf("Len() = %d, want <= 8", n)
	}

	cache.Clear()
	if n := cache.Len(); n != 0 {
		t.Errorf("Len() after Clear = %d, want 0", n)
	}
}

func TestCachedShaperConcurrent(t *testing.T) {
	cache := NewCachedShaper(BuiltinShaper{}, 16)
	face := NewMonoFace(8, 16)

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := range 50 {
				s := string(rune('a' + (i+j)%26))
				if got := cache.Shape(s, face, DirectionLTR); len(got) != 1 {
					t.Errorf("Shape(%q) len = %d, want 1", s, len(got))
					return
				}
			}
		}(i)
	}
	wg.Wait()
}
