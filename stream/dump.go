package stream

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Dump writes a human-readable listing of the records to w, one per line.
// Lines are indented under their LineInfo and Text records show the text
// they cover.
func (s *Stream) Dump(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 1, ' ', 0)

	var (
		source   Source
		haveSrc  bool
		inLine   bool
		lineDone int
	)
	for i := range s.Len() {
		if inLine && i > lineDone {
			inLine = false
		}
		cmd := s.At(i)
		indent := ""
		if inLine {
			indent = "  "
		}

		detail := fmt.Sprintf("%+v", cmd)
		switch r := cmd.(type) {
		case LineInfo:
			inLine = true
			lineDone = i + int(r.LengthInCommands)
		case ChangeSource:
			source, haveSrc = s.Source(r.Index), true
		case Text:
			if haveSrc {
				detail += fmt.Sprintf(" %q", sourceSlice(source.String(), r.SourceOffset, r.SourceLen))
			}
		case Push:
			detail += " " + s.pushName(r)
		case Custom:
			if r.Value >= 0 {
				detail += fmt.Sprintf(" %q", s.customValues.Get(r.Value))
			}
		}
		if _, err := fmt.Fprintf(tw, "%d\t%s%s\t%s\n", i, indent, cmd.Tag(), detail); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// pushName returns the registered name a push refers to.
func (s *Stream) pushName(p Push) string {
	var name string
	switch p.Scope {
	case ScopeStyle:
		name = s.styles.Key(p.Index)
	case ScopeFont:
		name = s.fonts.Key(p.Index)
	case ScopeGlyphShader:
		name = s.glyphShaders.Key(p.Index)
	case ScopeLink:
		name = s.links.Key(p.Index)
	}
	return fmt.Sprintf("%q", name)
}

// String returns the Dump listing.
func (s *Stream) String() string {
	var sb strings.Builder
	_ = s.Dump(&sb)
	return sb.String()
}

// sourceSlice returns src[off:off+n], clamped to src.
func sourceSlice(src string, off, n int32) string {
	start := min(max(int(off), 0), len(src))
	end := min(max(start+int(n), start), len(src))
	return src[start:end]
}
