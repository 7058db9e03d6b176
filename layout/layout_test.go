package layout

import (
	"errors"
	"image/color"
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

// monoFont returns a font whose cells are 10 wide and 20 tall
// (ascent 16, descent 4).
func monoFont(name string, ranges ...text.UnicodeRange) *text.Font {
	return text.NewFont(name, text.NewMonoFace(10, 20, ranges...))
}

func parse(t *testing.T, src string) *markup.TokenStream {
	t.Helper()
	var ts markup.TokenStream
	if err := markup.Parse(src, &ts); err != nil {
		t.Fatalf("Parse(%q) error = %v", src, err)
	}
	return &ts
}

func layoutString(t *testing.T, src string, set Settings) (*stream.Stream, Result) {
	t.Helper()
	out := stream.New()
	res, err := CalculateLayout(parse(t, src), set, out)
	if err != nil {
		t.Fatalf("CalculateLayout(%q) error = %v", src, err)
	}
	return out, res
}

func tags(s *stream.Stream) []stream.Tag {
	out := make([]stream.Tag, s.Len())
	for i := range out {
		out[i] = s.TagAt(i)
	}
	return out
}

func lineInfos(s *stream.Stream) []stream.LineInfo {
	var lines []stream.LineInfo
	for i := 0; i < s.Len(); i++ {
		if s.TagAt(i) == stream.TagLineInfo {
			lines = append(lines, s.LineInfo(i))
		}
	}
	return lines
}

// lineTexts returns the source text of the Text records of every line.
func lineTexts(s *stream.Stream) []string {
	var (
		lines []string
		cur   strings.Builder
		src   string
		open  bool
	)
	for i := 0; i < s.Len(); i++ {
		switch r := s.At(i).(type) {
		case stream.ChangeSource:
			src = s.Source(r.Index).String()
		case stream.LineInfo:
			if open {
				lines = append(lines, cur.String())
				cur.Reset()
			}
			open = true
		case stream.Text:
			cur.WriteString(src[r.SourceOffset : r.SourceOffset+r.SourceLen])
		}
	}
	if open {
		lines = append(lines, cur.String())
	}
	return lines
}

func sumSource(lines []stream.LineInfo) int {
	var n int
	for _, li := range lines {
		n += int(li.LengthInSource)
	}
	return n
}

func TestExampleBoldAndColor(t *testing.T) {
	regular := text.NewMonoFace(10, 20)
	bold := text.NewMonoFace(12, 20)
	font := text.NewFont("mono", regular, text.WithBold(bold))

	src := "|b|Hello|b| |c:FF0000FF|World|c|"
	out, res := layoutString(t, src, DefaultSettings(font))

	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagToggleBold, stream.TagText, stream.TagToggleBold,
		stream.TagText, stream.TagPushColor, stream.TagText, stream.TagPopColor,
	}
	if got := tags(out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	if !res.Complete || res.Lines != 1 {
		t.Errorf("result = %+v, want one complete line", res)
	}

	hello := out.Text(4)
	if hello.W != 60 {
		t.Errorf("bold Hello width = %v, want 60", hello.W)
	}
	world := out.Text(8)
	if world.X != 70 || world.W != 50 {
		t.Errorf("World at X=%v W=%v, want X=70 W=50", world.X, world.W)
	}
	if c := out.At(7).(stream.PushColor).Color; c != (color.NRGBA{R: 255, A: 255}) {
		t.Errorf("pushed color = %v, want red", c)
	}

	li := out.LineInfo(2)
	if li.LengthInCommands != 7 {
		t.Errorf("LengthInCommands = %d, want 7", li.LengthInCommands)
	}
	if int(li.LengthInSource) != len(src) {
		t.Errorf("LengthInSource = %d, want %d", li.LengthInSource, len(src))
	}
	if li.Width != 120 {
		t.Errorf("line width = %v, want 120", li.Width)
	}
}

func TestExampleNarrowWidth(t *testing.T) {
	src := "a very long sentence that will not fit"
	set := DefaultSettings(monoFont("mono"))
	set.Width = 100
	out, res := layoutString(t, src, set)

	lines := lineInfos(out)
	if len(lines) < 2 || res.Lines != len(lines) {
		t.Fatalf("got %d lines (result %d), want at least 2", len(lines), res.Lines)
	}
	if got := sumSource(lines); got != len(src) {
		t.Errorf("sum of LengthInSource = %d, want %d", got, len(src))
	}
	if bi := out.BlockInfo(0); int(bi.LengthInSource) != len(src) {
		t.Errorf("BlockInfo.LengthInSource = %d, want %d", bi.LengthInSource, len(src))
	}

	want := []string{"a very", "long", "sentence", "that will", "not fit"}
	if got := lineTexts(out); !slices.Equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
	for i, li := range lines {
		if li.Width > 100 {
			t.Errorf("line %d width = %v, exceeds 100", i, li.Width)
		}
	}
}

func TestExampleFallbackFont(t *testing.T) {
	latin := monoFont("latin", text.RangeBasicLatin)
	cjk := monoFont("cjk", text.RangeCJKUnified)
	e := NewEngine(WithFallbackFont(text.RangeCJKUnified, cjk))

	out := stream.New()
	res, err := e.CalculateLayout(parse(t, "ab\u4e2dcd"), DefaultSettings(latin), out)
	if err != nil {
		t.Fatalf("CalculateLayout() error = %v", err)
	}

	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagText, stream.TagPushFont, stream.TagText, stream.TagPopFont, stream.TagText,
	}
	if got := tags(out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	push := out.At(4).(stream.Push)
	if !push.Implicit || out.Fonts().Get(push.Index) != cjk {
		t.Errorf("push = %+v, want implicit push of the CJK font", push)
	}
	if pop := out.At(6).(stream.Pop); !pop.Implicit {
		t.Error("fallback pop is not implicit")
	}
	if mid := out.Text(5); mid.SourceOffset != 2 || mid.SourceLen != 3 || mid.W != 20 {
		t.Errorf("CJK run = %+v, want offset 2, length 3, width 20", mid)
	}
	if last := out.Text(7); last.X != 40 || last.GlyphOffset != 3 {
		t.Errorf("trailing run = %+v, want X=40 GlyphOffset=3", last)
	}
	if res.Width != 60 {
		t.Errorf("Width = %v, want 60", res.Width)
	}
	if out.BlockInfo(0).Flags.Has(stream.BlockUniformFace) {
		t.Error("BlockUniformFace set with a fallback run")
	}
}

func TestFallbackMissingLeavesPrimary(t *testing.T) {
	latin := monoFont("latin", text.RangeBasicLatin)
	out, _ := layoutString(t, "a\u4e2db", DefaultSettings(latin))
	for i := 0; i < out.Len(); i++ {
		if out.TagAt(i) == stream.TagPushFont {
			t.Fatalf("unexpected font push at %d without a fallback", i)
		}
	}
	if got := lineTexts(out); !slices.Equal(got, []string{"a\u4e2db"}) {
		t.Errorf("lines = %q", got)
	}
}

func TestBreakRemainderAfterCandidate(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 60
	out, res := layoutString(t, "aaaa b|b|bbbbb", set)

	if got := lineTexts(out); !slices.Equal(got, []string{"aaaa", "bbbbbb"}) {
		t.Fatalf("lines = %q", got)
	}
	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagText, stream.TagLineBreak, stream.TagLineInfo,
		stream.TagText, stream.TagToggleBold, stream.TagText,
	}
	if got := tags(out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}

	head := out.Text(3)
	if head.SourceLen != 4 || head.GlyphLen != 4 || head.W != 40 {
		t.Errorf("head = %+v", head)
	}
	lb := out.At(4).(stream.LineBreak)
	if lb != (stream.LineBreak{GlyphOffset: 4, GlyphLen: 1, SourceOffset: 4, SourceLen: 1}) {
		t.Errorf("break = %+v", lb)
	}
	tail := out.Text(6)
	if tail.X != 0 || tail.W != 10 || tail.SourceOffset != 5 || tail.GlyphOffset != 5 {
		t.Errorf("tail = %+v, want X=0 W=10 at offset 5", tail)
	}
	if next := out.Text(8); next.X != 10 {
		t.Errorf("run after the toggle starts at X=%v, want 10", next.X)
	}

	lines := lineInfos(out)
	if lines[0].LengthInCommands != 2 || lines[0].TerminatingBreakLen != 1 || lines[0].LengthInSource != 5 {
		t.Errorf("first line = %+v", lines[0])
	}
	if lines[1].LengthInCommands != 3 || lines[1].Width != 60 || lines[1].LengthInGlyphs != 6 {
		t.Errorf("second line = %+v", lines[1])
	}
	if !res.Complete {
		t.Error("layout incomplete")
	}
}

func TestBreakZeroWidthRemainder(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 60
	src := "aaaa \u200b|b|bbbbbbb"
	out, _ := layoutString(t, src, set)

	want := []string{"aaaa", "\u200bbbbbbb", "b"}
	if got := lineTexts(out); !slices.Equal(got, want) {
		t.Fatalf("lines = %q, want %q", got, want)
	}
	lines := lineInfos(out)
	if lines[1].Width != 60 {
		t.Errorf("second line width = %v, want 60", lines[1].Width)
	}
	if got := sumSource(lines); got != len(src) {
		t.Errorf("sum of LengthInSource = %d, want %d", got, len(src))
	}
}

func TestBreakExactlyAtLineEnd(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 50
	out, res := layoutString(t, "aaaaa bbbbb", set)

	if got := lineTexts(out); !slices.Equal(got, []string{"aaaaa", "bbbbb"}) {
		t.Fatalf("lines = %q", got)
	}
	lines := lineInfos(out)
	if lines[0].Width != 50 || lines[1].Width != 50 {
		t.Errorf("widths = %v, %v, want 50", lines[0].Width, lines[1].Width)
	}
	if lines[0].TerminatingBreakLen != 1 || lines[0].LengthInGlyphs != 6 {
		t.Errorf("first line = %+v, want the space consumed as its break", lines[0])
	}
	if lb := out.At(4).(stream.LineBreak); lb.GlyphLen != 1 || lb.SourceOffset != 5 {
		t.Errorf("break = %+v", lb)
	}
	if res.Width != 50 || res.Height != 40 {
		t.Errorf("result = %+v", res)
	}
}

func TestBreakInsideShapedRTL(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 50
	set.Options = OptShape
	set.Direction = text.DirectionRTL
	src := "\u05d0\u05d1\u05d2 \u05d3\u05d4\u05d5 \u05d6\u05d7\u05d8"
	out, res := layoutString(t, src, set)

	if res.Lines != 3 {
		t.Fatalf("Lines = %d, want 3", res.Lines)
	}
	source := out.Source(0)
	if source.Kind != stream.SourceShapedString {
		t.Fatalf("source kind = %v, want ShapedString", source.Kind)
	}
	glyphs := source.Glyphs()

	var shaped, glyphTotal int
	for _, li := range lineInfos(out) {
		shaped += int(li.LengthInShaped)
		glyphTotal += int(li.LengthInGlyphs)
		if li.Width != 30 {
			t.Errorf("line width = %v, want 30", li.Width)
		}
	}
	if shaped != len(glyphs) {
		t.Errorf("sum of LengthInShaped = %d, want %d", shaped, len(glyphs))
	}
	if glyphTotal != 11 {
		t.Errorf("sum of LengthInGlyphs = %d, want 11", glyphTotal)
	}

	lastGlyph := int32(-1)
	for i := 0; i < out.Len(); i++ {
		switch r := out.At(i).(type) {
		case stream.Text:
			if !glyphs[r.ShapedOffset].Marker {
				t.Errorf("Text %d does not start at a marker glyph", i)
			}
			if r.GlyphLen != r.ShapedLen-1 || r.GlyphOffset < lastGlyph {
				t.Errorf("Text %d = %+v", i, r)
			}
			lastGlyph = r.GlyphOffset
		case stream.ChangeSource:
			if r.Kind != stream.SourceShapedString {
				t.Errorf("ChangeSource kind = %v, want ShapedString", r.Kind)
			}
		}
	}
	if !out.BlockInfo(0).Flags.Has(stream.BlockRTL) {
		t.Error("BlockRTL not set")
	}
}

func TestShapedBuilderSourceKeepsBuilder(t *testing.T) {
	var b strings.Builder
	b.WriteString("abc def")
	var ts markup.TokenStream
	if err := markup.NewParser().ParseBuilder(&b, &ts); err != nil {
		t.Fatal(err)
	}
	set := DefaultSettings(monoFont("mono"))
	set.Options = OptShape
	out := stream.New()
	if _, err := CalculateLayout(&ts, set, out); err != nil {
		t.Fatal(err)
	}
	src := out.Source(0)
	if src.Kind != stream.SourceShapedStringBuilder {
		t.Fatalf("source kind = %v, want ShapedStringBuilder", src.Kind)
	}
	if t0 := out.Text(3); t0.ShapedLen != 7 || t0.GlyphLen != 7 {
		t.Errorf("shaped run = %+v, want one extended run of 7 glyphs", t0)
	}
}

func TestLineFitAndMonotonicOffsets(t *testing.T) {
	src := "the quick brown fox jumps over the lazy dog and keeps running " +
		"through |b|the|b| forest while |c:00FF00FF|birds|c| sing"
	for _, width := range []float64{60, 80, 100, 130, 200} {
		set := DefaultSettings(monoFont("mono"))
		set.Width = width
		out, res := layoutString(t, src, set)
		if !res.Complete {
			t.Errorf("width %v: layout incomplete", width)
		}

		for i, li := range lineInfos(out) {
			if float64(li.Width) > width {
				t.Errorf("width %v: line %d width %v", width, i, li.Width)
			}
		}
		if got := sumSource(lineInfos(out)); got != len(src) {
			t.Errorf("width %v: sum of LengthInSource = %d, want %d", width, got, len(src))
		}

		var lastGlyph, lastSource int32
		for i := 0; i < out.Len(); i++ {
			var glyph, source int32
			switch r := out.At(i).(type) {
			case stream.Text:
				glyph, source = r.GlyphOffset, r.SourceOffset
			case stream.LineBreak:
				glyph, source = r.GlyphOffset, r.SourceOffset
			default:
				continue
			}
			if glyph < lastGlyph || source < lastSource {
				t.Errorf("width %v: record %d goes back to glyph %d source %d", width, i, glyph, source)
			}
			lastGlyph, lastSource = glyph, source
		}
	}
}

func TestLongWordPrefix(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []string
		hyphens int
	}{
		{"plain", 0, []string{"abcde", "fghij", "kl"}, 0},
		{"hyphenated", OptHyphenate, []string{"abcd", "efgh", "ijkl"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultSettings(monoFont("mono"))
			set.Width = 50
			set.Options = tt.opts
			out, res := layoutString(t, "abcdefghijkl", set)
			if got := lineTexts(out); !slices.Equal(got, tt.want) {
				t.Errorf("lines = %q, want %q", got, tt.want)
			}
			var hyphens int
			for i := 0; i < out.Len(); i++ {
				if out.TagAt(i) == stream.TagHyphen {
					hyphens++
				}
			}
			if hyphens != tt.hyphens {
				t.Errorf("hyphens = %d, want %d", hyphens, tt.hyphens)
			}
			if !res.Complete {
				t.Error("layout incomplete")
			}
		})
	}
}

func TestPrefixKeepsGraphemes(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 20
	// "e" plus a combining acute is one grapheme of width 10.
	out, _ := layoutString(t, "ae\u0301bc", set)
	want := []string{"ae\u0301", "bc"}
	if got := lineTexts(out); !slices.Equal(got, want) {
		t.Errorf("lines = %q, want %q", got, want)
	}
}

func TestNothingFitsIsIncomplete(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 5
	out, res := layoutString(t, "ab", set)
	if res.Complete || res.Tokens != 0 {
		t.Errorf("result = %+v, want incomplete with no tokens consumed", res)
	}
	if res.Lines != 1 || out.BlockInfo(0).LineCount != 1 {
		t.Errorf("Lines = %d, want the empty first line", res.Lines)
	}
}

func TestHeightTruncation(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 30
	set.Height = 45
	out, res := layoutString(t, "aaa bbb ccc ddd", set)

	if res.Complete || res.Lines != 2 || res.Tokens != 4 {
		t.Errorf("result = %+v, want 2 lines and 4 tokens", res)
	}
	if got := lineTexts(out); !slices.Equal(got, []string{"aaa", "bbb"}) {
		t.Errorf("lines = %q", got)
	}
	bi := out.BlockInfo(0)
	if bi.LengthInSource != 8 || bi.Height != 40 || bi.LineCount != 2 {
		t.Errorf("BlockInfo = %+v", bi)
	}
}

func TestHeightDropsEmptyTrailingLine(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Height = 20
	out, res := layoutString(t, "abc\n", set)

	if !res.Complete || res.Lines != 1 || res.Tokens != 2 {
		t.Errorf("result = %+v, want complete with 1 line and 2 tokens", res)
	}
	if got := lineTexts(out); !slices.Equal(got, []string{"abc"}) {
		t.Errorf("lines = %q", got)
	}

	// A dropped line with content still leaves the layout incomplete.
	_, res = layoutString(t, "abc\nd", set)
	if res.Complete || res.Tokens != 2 {
		t.Errorf("result = %+v, want incomplete after 2 tokens", res)
	}
}

func TestAlignment(t *testing.T) {
	tests := []struct {
		name       string
		width      float64
		height     float64
		align      Align
		src        string
		offsets    []float32
		blockShift float32
	}{
		{"right", 100, 0, AlignRight, "abc", []float32{70}, 0},
		{"center", 100, 0, AlignCenter, "abc", []float32{35}, 0},
		{"unbounded center", 0, 0, AlignCenter, "a\nabc", []float32{10, 0}, 0},
		{"unbounded right", 0, 0, AlignRight, "a\nabc", []float32{20, 0}, 0},
		{"middle", 100, 100, AlignMiddle, "a\nb", []float32{0, 0}, 30},
		{"bottom", 100, 100, AlignBottom | AlignRight, "a", []float32{90}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := DefaultSettings(monoFont("mono"))
			set.Width, set.Height, set.Align = tt.width, tt.height, tt.align
			out, _ := layoutString(t, tt.src, set)
			var got []float32
			for _, li := range lineInfos(out) {
				got = append(got, li.Offset)
			}
			if !slices.Equal(got, tt.offsets) {
				t.Errorf("offsets = %v, want %v", got, tt.offsets)
			}
			if bi := out.BlockInfo(0); bi.Offset != tt.blockShift {
				t.Errorf("block offset = %v, want %v", bi.Offset, tt.blockShift)
			}
		})
	}
}

func TestNewlinesAndEmptyLines(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.LineSpacing = 1.5
	out, res := layoutString(t, "a\n\r\nb", set)

	lines := lineInfos(out)
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for i, li := range lines {
		if li.Height != 30 || li.Baseline != 16 {
			t.Errorf("line %d height %v baseline %v, want 30 and 16", i, li.Height, li.Baseline)
		}
	}
	if lines[1].LengthInSource != 2 || lines[1].TerminatingBreakLen != 2 {
		t.Errorf("empty line = %+v, want the CRLF as its break", lines[1])
	}
	if res.Height != 90 {
		t.Errorf("Height = %v, want 90", res.Height)
	}
}

func TestEscapedPipeRuns(t *testing.T) {
	out, _ := layoutString(t, "a||b", DefaultSettings(monoFont("mono")))
	if got := lineTexts(out); !slices.Equal(got, []string{"a|b"}) {
		t.Errorf("lines = %q, want a|b", got)
	}
	if n := out.Text(4).SourceOffset; n != 2 {
		t.Errorf("pipe run starts at %d, want 2", n)
	}
	if li := lineInfos(out)[0]; li.LengthInSource != 4 || li.LengthInGlyphs != 3 {
		t.Errorf("line = %+v", li)
	}
}

func TestMultipleSources(t *testing.T) {
	ts := parse(t, "abc")
	ts.Append(parse(t, "def"))
	out := stream.New()
	res, err := CalculateLayout(ts, DefaultSettings(monoFont("mono")), out)
	if err != nil {
		t.Fatal(err)
	}

	var changes, runs int
	for i := 0; i < out.Len(); i++ {
		switch out.TagAt(i) {
		case stream.TagChangeSource:
			changes++
		case stream.TagText:
			runs++
		}
	}
	if changes != 2 || runs != 2 {
		t.Errorf("changes = %d, runs = %d, want 2 and 2", changes, runs)
	}
	if got := lineTexts(out); !slices.Equal(got, []string{"abcdef"}) {
		t.Errorf("lines = %q", got)
	}
	if res.Width != 60 || out.BlockInfo(0).Flags.Has(stream.BlockUniformFace) {
		t.Errorf("result = %+v, flags = %v", res, out.BlockInfo(0).Flags)
	}
}

func testLibrary() *resource.Library {
	lib := resource.NewLibrary()
	red := color.NRGBA{R: 255, A: 255}
	lib.AddFont("serif", monoFont("serif"))
	lib.AddStyle(&resource.Style{Name: "title", Font: "serif", Bold: true, Color: &red, GlyphShader: "wave"})
	lib.AddStyle(&resource.Style{Name: "em", Italic: true})
	lib.AddGlyphShader("wave", resource.GlyphShaderFunc(func(g *resource.GlyphState) { g.Y += 1 }))
	lib.AddIcon(&resource.Icon{Name: "star", Width: 20, Height: 30, Ascender: 24, Descender: 6})
	return lib
}

func TestStyleScopes(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	ts := parse(t, "|style:title|Hi |font:serif|x|style| there")
	st := newState(set, nil, ts, stream.New())
	st.set.normalize()
	if _, err := st.run(); err != nil {
		t.Fatal(err)
	}
	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagPushStyle, stream.TagPushFont, stream.TagPushColor, stream.TagPushGlyphShader, stream.TagToggleBold,
		stream.TagText, stream.TagPushFont, stream.TagText,
		stream.TagPopGlyphShader, stream.TagPopColor, stream.TagPopFont, stream.TagPopFont,
		stream.TagToggleBold, stream.TagPopStyle, stream.TagText,
	}
	if got := tags(st.out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v\nwant %v", got, want)
	}
	if !st.balanced() {
		t.Error("scope stacks not empty after balanced markup")
	}
	if st.out.BlockInfo(0).Flags.Has(stream.BlockNoScopes) {
		t.Error("BlockNoScopes set")
	}
}

func TestUnbalancedPopsIgnored(t *testing.T) {
	ts := parse(t, "|font||c||style||shader||link|x")
	set := DefaultSettings(monoFont("mono"))
	st := newState(set, nil, ts, stream.New())
	st.set.normalize()
	if _, err := st.run(); err != nil {
		t.Fatal(err)
	}
	if st.ignoredPops != 5 {
		t.Errorf("ignoredPops = %d, want 5", st.ignoredPops)
	}
	if !st.out.BlockInfo(0).Flags.Has(stream.BlockNoScopes | stream.BlockUniformFace) {
		t.Errorf("flags = %v, want no scopes and uniform face", st.out.BlockInfo(0).Flags)
	}
}

func TestFontPopOutsideItsStyle(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	ts := parse(t, "|font:serif||style:em||font|a|style||font|b")
	st := newState(set, nil, ts, stream.New())
	st.set.normalize()
	if _, err := st.run(); err != nil {
		t.Fatal(err)
	}
	// The first |font| is inside em and must not pop serif.
	var pops int
	for i := 0; i < st.out.Len(); i++ {
		if st.out.TagAt(i) == stream.TagPopFont {
			pops++
		}
	}
	if pops != 1 || st.ignoredPops != 1 {
		t.Errorf("font pops = %d, ignored = %d, want 1 and 1", pops, st.ignoredPops)
	}
	if !st.balanced() {
		t.Error("scope stacks not empty")
	}
}

func TestIgnoreOptions(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	set.Options = OptIgnoreColor | OptIgnoreFontStyle | OptIgnoreFontFace | OptIgnoreGlyphShaders | OptIgnoreCustomCommands
	out, res := layoutString(t, "|b|a|c:FF0000FF||font:nope||shader:nope|b|c||i|", set)

	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagText, stream.TagText,
	}
	if got := tags(out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	if !res.Complete || !out.BlockInfo(0).Flags.Has(stream.BlockNoScopes) {
		t.Errorf("result = %+v, flags = %v", res, out.BlockInfo(0).Flags)
	}
}

func TestLookupErrors(t *testing.T) {
	tests := []struct {
		src  string
		kind string
	}{
		{"|style:nope|", "style"},
		{"|font:nope|", "font"},
		{"a |icon:nope|", "icon"},
		{"|shader:nope|", "glyph shader"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			set := DefaultSettings(monoFont("mono"))
			set.Resources = testLibrary()
			out := stream.New()
			_, err := CalculateLayout(parse(t, tt.src), set, out)
			var le *LookupError
			if !errors.As(err, &le) {
				t.Fatalf("error = %v, want *LookupError", err)
			}
			if le.Kind != tt.kind || le.Name != "nope" {
				t.Errorf("LookupError = %+v, want kind %q", le, tt.kind)
			}
			if out.Len() != 0 || out.Fonts().Len() != 0 || out.Sources().Len() != 0 {
				t.Errorf("failed layout left %d commands in the stream", out.Len())
			}
		})
	}

	// A style whose font is unknown fails on the font.
	lib := testLibrary()
	lib.AddStyle(&resource.Style{Name: "broken", Font: "missing"})
	set := DefaultSettings(monoFont("mono"))
	set.Resources = lib
	_, err := CalculateLayout(parse(t, "|style:broken|x"), set, stream.New())
	var le *LookupError
	if !errors.As(err, &le) || le.Kind != "font" || le.Name != "missing" {
		t.Errorf("error = %v, want unknown font missing", err)
	}

	// Without a resolver every name is unknown.
	_, err = CalculateLayout(parse(t, "|style:title|"), DefaultSettings(monoFont("mono")), stream.New())
	if !errors.As(err, &le) {
		t.Errorf("error = %v, want *LookupError", err)
	}
}

func TestConfigurationErrors(t *testing.T) {
	font := monoFont("mono")
	ts := parse(t, "x")
	tests := []struct {
		name string
		ts   *markup.TokenStream
		set  Settings
		out  *stream.Stream
		want error
	}{
		{"nil font", ts, Settings{}, stream.New(), ErrNilFont},
		{"nil tokens", nil, DefaultSettings(font), stream.New(), ErrNilTokens},
		{"nil stream", ts, DefaultSettings(font), nil, ErrNilStream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CalculateLayout(tt.ts, tt.set, tt.out); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestIconPlacement(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	out, _ := layoutString(t, "a|icon:star|b", set)

	want := []stream.Tag{
		stream.TagBlockInfo, stream.TagChangeSource, stream.TagLineInfo,
		stream.TagText, stream.TagIcon, stream.TagText,
	}
	if got := tags(out); !slices.Equal(got, want) {
		t.Fatalf("tags = %v, want %v", got, want)
	}
	icon := out.At(4).(stream.Icon)
	if icon.X != 10 || icon.Y != 0 || icon.GlyphOffset != 1 || icon.GlyphLen != 1 {
		t.Errorf("icon = %+v", icon)
	}
	b := out.Text(5)
	if b.X != 30 || b.GlyphOffset != 2 {
		t.Errorf("b = %+v, want X=30 GlyphOffset=2", b)
	}
	// The icon's ascender raises the baseline; text moves down to meet it.
	li := out.LineInfo(2)
	if li.Baseline != 24 || li.Height != 30 {
		t.Errorf("line baseline %v height %v, want 24 and 30", li.Baseline, li.Height)
	}
	if a := out.Text(3); a.Y != 8 {
		t.Errorf("text Y = %v, want 8", a.Y)
	}
	if out.BlockInfo(0).Flags.Has(stream.BlockUniformFace) {
		t.Error("BlockUniformFace set with an icon")
	}
}

func TestIconBreaks(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	set.Width = 40

	// The icon follows a space, so the line splits there.
	out, _ := layoutString(t, "aaa |icon:star|", set)
	if n := len(lineInfos(out)); n != 2 {
		t.Errorf("got %d lines, want 2", n)
	}

	// An icon wider than the box still goes on an empty line.
	set.Width = 10
	out, res := layoutString(t, "|icon:star|", set)
	if !res.Complete || out.TagAt(3) != stream.TagIcon {
		t.Errorf("result = %+v, tags = %v", res, tags(out))
	}
}

func TestLinksAndCustomCommands(t *testing.T) {
	cs := markup.NewCommandSet()
	id, err := cs.Register("shake")
	if err != nil {
		t.Fatal(err)
	}
	var ts markup.TokenStream
	p := markup.NewParser(markup.WithCommandSet(cs))
	if err := p.Parse("|link:home|go|link| |shake:3|x|shake|", &ts); err != nil {
		t.Fatal(err)
	}
	out := stream.New()
	if _, err := CalculateLayout(&ts, DefaultSettings(monoFont("mono")), out); err != nil {
		t.Fatal(err)
	}

	push := out.At(3).(stream.Push)
	if push.Scope != stream.ScopeLink || out.Links().Get(push.Index) != "home" {
		t.Errorf("link push = %+v", push)
	}
	var customs []stream.Custom
	for i := 0; i < out.Len(); i++ {
		if c, ok := out.At(i).(stream.Custom); ok {
			customs = append(customs, c)
		}
	}
	if len(customs) != 2 || customs[0].ID != id || customs[1].Value != -1 {
		t.Fatalf("customs = %+v", customs)
	}
	if v := out.CustomValues().Get(customs[0].Value); v != "3" {
		t.Errorf("custom value = %q, want 3", v)
	}
}

func TestInitialStyle(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Resources = testLibrary()
	set.Style = "title"
	set.Bold = true
	out, _ := layoutString(t, "x", set)

	bi := out.BlockInfo(0)
	if bi.InitialStyle < 0 || out.Styles().Key(bi.InitialStyle) != "title" {
		t.Errorf("InitialStyle = %d", bi.InitialStyle)
	}
	if !bi.Flags.Has(stream.BlockBold) {
		t.Error("BlockBold not set")
	}
	// The style's records precede the first line.
	first := 0
	for i := 0; i < out.Len(); i++ {
		if out.TagAt(i) == stream.TagLineInfo {
			first = i
			break
		}
	}
	if p, ok := out.At(2).(stream.Push); !ok || p.Scope != stream.ScopeStyle || !p.Implicit || first < 3 {
		t.Errorf("header = %v", tags(out)[:first+1])
	}
}

func TestUniformFace(t *testing.T) {
	out, _ := layoutString(t, "plain text\nonly", DefaultSettings(monoFont("mono")))
	want := stream.BlockUniformFace | stream.BlockNoScopes
	if flags := out.BlockInfo(0).Flags; !flags.Has(want) {
		t.Errorf("flags = %v, want %v", flags, want)
	}
}

func TestEmptyInput(t *testing.T) {
	out, res := layoutString(t, "", DefaultSettings(monoFont("mono")))
	if !res.Complete || res.Lines != 1 || res.Height != 20 {
		t.Errorf("result = %+v, want one empty line of height 20", res)
	}
	if out.Len() != 2 {
		t.Errorf("stream = %v, want BlockInfo and LineInfo", tags(out))
	}
}

func TestLayoutReusesStream(t *testing.T) {
	set := DefaultSettings(monoFont("mono"))
	set.Width = 50
	out := stream.New()
	ts := parse(t, "some words to wrap around")
	if _, err := CalculateLayout(ts, set, out); err != nil {
		t.Fatal(err)
	}
	first := out.String()
	if _, err := CalculateLayout(ts, set, out); err != nil {
		t.Fatal(err)
	}
	if second := out.String(); second != first {
		t.Errorf("second layout differs:\n%s\nvs\n%s", second, first)
	}
}

func TestRegisterFallbackFontConcurrent(t *testing.T) {
	e := NewEngine()
	cjk := monoFont("cjk", text.RangeCJKUnified)
	ts := parse(t, "a\u4e2d")
	set := DefaultSettings(monoFont("latin", text.RangeBasicLatin))
	done := make(chan struct{})
	for range 4 {
		go func() {
			defer func() { done <- struct{}{} }()
			e.RegisterFallbackFont(text.RangeCJKUnified, cjk)
			_, _ = e.CalculateLayout(ts, set, stream.New())
		}()
	}
	for range 4 {
		<-done
	}
	if n := len(e.FallbackFonts()); n != 4 {
		t.Errorf("FallbackFonts() = %d entries, want 4", n)
	}
	e.RegisterFallbackFont(text.RangeHangul, nil)
	if n := len(e.FallbackFonts()); n != 4 {
		t.Error("nil font was registered")
	}
}
