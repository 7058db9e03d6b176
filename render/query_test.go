package render

import (
	"testing"

	"github.com/gogpu/richtext/layout"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

func TestLineAtPosition(t *testing.T) {
	s := layoutString(t, "a\nb\nc", settings())
	tests := []struct {
		y     float64
		ok    bool
		line  int
		top   float64
		first int
	}{
		{-1, false, 0, 0, 0},
		{0, true, 0, 0, 0},
		{25, true, 1, 20, 1},
		{59.5, true, 2, 40, 2},
		{60, false, 0, 0, 0},
	}
	for _, tt := range tests {
		hit, ok := LineAtPosition(s, tt.y)
		if ok != tt.ok {
			t.Errorf("LineAtPosition(%v) ok = %v, want %v", tt.y, ok, tt.ok)
			continue
		}
		if ok && (hit.Line != tt.line || hit.Top != tt.top || hit.FirstGlyph != tt.first) {
			t.Errorf("LineAtPosition(%v) = %+v", tt.y, hit)
		}
	}

	// Vertical alignment moves every line down.
	set := settings()
	set.Height = 100
	set.Align = layout.AlignMiddle
	s = layoutString(t, "a\nb\nc", set)
	if hit, ok := LineAtPosition(s, 25); !ok || hit.Line != 0 || hit.Top != 20 {
		t.Errorf("middle-aligned LineAtPosition(25) = %+v, %v", hit, ok)
	}
}

func TestGlyphAtPosition(t *testing.T) {
	set := settings()
	set.Width = 50
	s := layoutString(t, "aaaa bbbb", set)

	tests := []struct {
		x, y  float64
		ok    bool
		glyph int
		src   int
		rect  text.Rect
	}{
		{12, 5, true, 1, 1, text.Rect{MinX: 10, MaxX: 20, MaxY: 20}},
		{15, 25, true, 6, 6, text.Rect{MinX: 10, MinY: 20, MaxX: 20, MaxY: 40}},
		{45, 5, false, 0, 0, text.Rect{}},
		{5, 45, false, 0, 0, text.Rect{}},
	}
	for _, tt := range tests {
		hit, ok := GlyphAtPosition(s, tt.x, tt.y)
		if ok != tt.ok {
			t.Errorf("GlyphAtPosition(%v, %v) ok = %v, want %v", tt.x, tt.y, ok, tt.ok)
			continue
		}
		if !ok {
			continue
		}
		if hit.Glyph != tt.glyph || hit.SourceOffset != tt.src || hit.Bounds != tt.rect {
			t.Errorf("GlyphAtPosition(%v, %v) = %+v", tt.x, tt.y, hit)
		}
	}
}

func TestGlyphAtPositionIcon(t *testing.T) {
	s := layoutString(t, "a|icon:star|b", settings())
	hit, ok := GlyphAtPosition(s, 15, 5)
	if !ok || !hit.Icon || hit.Glyph != 1 || hit.Bounds != (text.Rect{MinX: 10, MaxX: 30, MaxY: 30}) {
		t.Errorf("GlyphAtPosition over icon = %+v, %v", hit, ok)
	}
}

func TestGlyphAtPositionShaped(t *testing.T) {
	set := settings()
	set.Options = layout.OptShape
	s := layoutString(t, "ab", set)
	hit, ok := GlyphAtPosition(s, 12, 5)
	if !ok || hit.Glyph != 1 || hit.Rune != 'b' || hit.SourceOffset != 1 {
		t.Errorf("GlyphAtPosition = %+v, %v", hit, ok)
	}
}

func TestGlyphBounds(t *testing.T) {
	set := settings()
	set.Width = 50
	s := layoutString(t, "aaaa bbbb", set)

	tests := []struct {
		index int
		ok    bool
		want  text.Rect
	}{
		{0, true, text.Rect{MaxX: 10, MaxY: 20}},
		// The space became the line break: zero width at the end of its line.
		{4, true, text.Rect{MinX: 40, MaxX: 40, MaxY: 20}},
		{6, true, text.Rect{MinX: 10, MinY: 20, MaxX: 20, MaxY: 40}},
		{9, false, text.Rect{}},
		{-1, false, text.Rect{}},
	}
	for _, tt := range tests {
		got, ok := GlyphBounds(s, tt.index)
		if ok != tt.ok || got != tt.want {
			t.Errorf("GlyphBounds(%d) = %+v, %v; want %+v, %v", tt.index, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInsertionPointAt(t *testing.T) {
	s := layoutString(t, "ab cd", settings())
	tests := []struct {
		name   string
		x, y   float64
		index  int
		src    int
		caretX float64
	}{
		{"left half", 4, 5, 0, 0, 0},
		{"right half", 6, 5, 1, 1, 10},
		{"past the end", 100, 5, 5, 5, 50},
		{"before the start", -10, 5, 0, 0, 0},
		{"above", 16, -50, 2, 2, 20},
		{"below", 44, 500, 4, 4, 40},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ip, ok := InsertionPointAt(s, tt.x, tt.y)
			if !ok {
				t.Fatal("no insertion point")
			}
			if ip.Index != tt.index || ip.SourceOffset != tt.src || ip.Caret.MinX != tt.caretX {
				t.Errorf("InsertionPointAt(%v, %v) = %+v", tt.x, tt.y, ip)
			}
			if ip.Caret.MinY != 0 || ip.Caret.MaxY != 20 || ip.Caret.Width() != 0 {
				t.Errorf("caret = %+v", ip.Caret)
			}
		})
	}
}

func TestInsertionPointGraphemes(t *testing.T) {
	// "e" and a combining acute form one grapheme 10 wide.
	s := layoutString(t, "e\u0301x", settings())
	ip, ok := InsertionPointAt(s, 6, 5)
	if !ok || ip.Index != 2 || ip.SourceOffset != 3 || ip.Caret.MinX != 10 {
		t.Errorf("InsertionPointAt in a grapheme = %+v, %v", ip, ok)
	}
	ip, _ = InsertionPointAt(s, 4, 5)
	if ip.Index != 0 || ip.SourceOffset != 0 {
		t.Errorf("InsertionPointAt before a grapheme = %+v", ip)
	}
}

func TestInsertionPointEmptyLine(t *testing.T) {
	s := layoutString(t, "a\n\nb", settings())
	ip, ok := InsertionPointAt(s, 30, 25)
	if !ok || ip.Line != 1 || ip.Index != 1 || ip.SourceOffset != 2 {
		t.Errorf("InsertionPointAt on an empty line = %+v, %v", ip, ok)
	}
	if ip.Caret != (text.Rect{MinY: 20, MaxY: 40}) {
		t.Errorf("caret = %+v", ip.Caret)
	}
}

func TestInsertionPointRightToLeftRun(t *testing.T) {
	set := settings()
	set.Options = layout.OptShape
	// Alef then bet; shaped right to left, bet is drawn first.
	s := layoutString(t, "\u05d0\u05d1", set)

	ip, ok := InsertionPointAt(s, 2, 5)
	if !ok || ip.Index != 2 || ip.SourceOffset != 4 || ip.Caret.MinX != 0 {
		t.Errorf("left of bet = %+v, %v", ip, ok)
	}
	ip, _ = InsertionPointAt(s, 8, 5)
	if ip.Index != 1 || ip.SourceOffset != 2 || ip.Caret.MinX != 10 {
		t.Errorf("right of bet = %+v", ip)
	}
	hit, _ := GlyphAtPosition(s, 15, 5)
	if hit.Glyph != 0 || hit.Rune != '\u05d0' {
		t.Errorf("glyph right of the run = %+v, want alef", hit)
	}
}

func TestFastPathMatchesFullWalk(t *testing.T) {
	set := settings()
	set.Width = 70
	s := layoutString(t, "the |c:FF0000FF|quick|c| brown fox jumps over |b||b|the lazy dog", set)
	if !s.BlockInfo(0).Flags.Has(stream.BlockUniformFace) {
		t.Fatal("block is not uniform")
	}

	query := func(fast bool, x, y float64) (box, bool) {
		w, err := newWalker(s)
		if err != nil {
			t.Fatal(err)
		}
		w.fast = fast
		return w.boxAt(x, y)
	}
	for y := 0.0; y < 140; y += 7 {
		for x := 0.0; x < 80; x += 3 {
			slow, okSlow := query(false, x, y)
			fast, okFast := query(true, x, y)
			if okSlow != okFast || slow.index != fast.index || slow.bounds() != fast.bounds() {
				t.Errorf("(%v, %v): fast %+v %v, full %+v %v", x, y, fast, okFast, slow, okSlow)
			}
		}
	}
}

func TestLinkQueries(t *testing.T) {
	s := layoutString(t, "go |link:home|here|link| now", settings())

	if target, ok := LinkAt(s, 35, 5); !ok || target != "home" {
		t.Errorf("LinkAt(35, 5) = %q, %v", target, ok)
	}
	if _, ok := LinkAt(s, 5, 5); ok {
		t.Error("LinkAt(5, 5) found a link")
	}
	if target, ok := LinkAtGlyph(s, 4); !ok || target != "home" {
		t.Errorf("LinkAtGlyph(4) = %q, %v", target, ok)
	}
	if _, ok := LinkAtGlyph(s, 0); ok {
		t.Error("LinkAtGlyph(0) found a link")
	}
}

func TestLinkTracker(t *testing.T) {
	s := layoutString(t, "go |link:home|here|link| |link:away|x|link|", settings())
	var lt LinkTracker

	steps := []struct {
		name    string
		do      func() bool
		changed bool
		active  string
	}{
		{"enter", func() bool { return lt.Update(s, 35, 5) }, true, "home"},
		{"move inside", func() bool { return lt.Update(s, 45, 5) }, false, "home"},
		{"leave", func() bool { return lt.Update(s, 5, 5) }, true, ""},
		{"enter again", func() bool { return lt.Update(s, 35, 5) }, true, "home"},
		{"jump to another", func() bool { return lt.Update(s, 85, 5) }, true, "away"},
		{"deactivate", lt.Deactivate, true, ""},
		{"deactivate twice", lt.Deactivate, false, ""},
		{"caret", func() bool { return lt.UpdateCursor(s, 3) }, true, "home"},
		{"caret leaves", func() bool { return lt.UpdateCursor(s, 1) }, true, ""},
	}
	for _, st := range steps {
		if changed := st.do(); changed != st.changed {
			t.Errorf("%s: changed = %v, want %v", st.name, changed, st.changed)
		}
		active, ok := lt.Active()
		if active != st.active || ok != (st.active != "") {
			t.Errorf("%s: active = %q, %v; want %q", st.name, active, ok, st.active)
		}
	}
}

func TestQueriesOnEmptyStream(t *testing.T) {
	s := stream.New()
	if _, ok := LineAtPosition(s, 0); ok {
		t.Error("LineAtPosition on empty stream")
	}
	if _, ok := GlyphAtPosition(s, 0, 0); ok {
		t.Error("GlyphAtPosition on empty stream")
	}
	if _, ok := GlyphBounds(s, 0); ok {
		t.Error("GlyphBounds on empty stream")
	}
	if _, ok := InsertionPointAt(s, 0, 0); ok {
		t.Error("InsertionPointAt on empty stream")
	}
	if _, ok := LinkAt(nil, 0, 0); ok {
		t.Error("LinkAt on nil stream")
	}
}
