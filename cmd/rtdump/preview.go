package main

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/padding"
	"github.com/muesli/reflow/truncate"

	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/stream"
)

// cell is one terminal cell of the preview.
type cell struct {
	s       string
	c       color.NRGBA
	link    bool
	covered bool // second half of a wide glyph
}

// grid collects glyphs laid out with a one-cell font.
type grid struct {
	rows [][]cell
}

func (g *grid) at(row, col int) *cell {
	if row < 0 || col < 0 {
		return nil
	}
	for len(g.rows) <= row {
		g.rows = append(g.rows, nil)
	}
	for len(g.rows[row]) <= col {
		g.rows[row] = append(g.rows[row], cell{})
	}
	return &g.rows[row][col]
}

func (g *grid) DrawGlyphRun(run *render.GlyphRun) {
	for _, gl := range run.Glyphs {
		row := int(math.Floor(gl.Y))
		col := int(math.Round(gl.X))
		if gl.Advance == 0 && col > 0 {
			// Combining marks join the cell before them.
			if c := g.at(row, col-1); c != nil {
				c.s += string(gl.Rune)
			}
			continue
		}
		c := g.at(row, col)
		if c == nil {
			continue
		}
		*c = cell{s: string(gl.Rune), c: gl.Color, link: run.Link != ""}
		for k := 1; k < int(math.Round(gl.Advance)); k++ {
			g.at(row, col+k).covered = true
		}
	}
}

func (g *grid) DrawSprite(sp *render.Sprite) {
	for y := int(math.Floor(sp.Y)); y < int(math.Ceil(sp.Y+sp.H)); y++ {
		for x := int(math.Round(sp.X)); x < int(math.Round(sp.X+sp.W)); x++ {
			if c := g.at(y, x); c != nil {
				*c = cell{s: "#", c: sp.Color, link: sp.Link != ""}
			}
		}
	}
}

// lines renders each row, with ANSI colors when colored is set.
func (g *grid) lines(colored bool) []string {
	out := make([]string, len(g.rows))
	for i, row := range g.rows {
		var (
			b    strings.Builder
			last *cell
		)
		for k := range row {
			c := &row[k]
			if c.covered {
				continue
			}
			if colored && c.s != "" && (last == nil || last.c != c.c || last.link != c.link) {
				b.WriteString(sgr(c))
				last = c
			}
			if c.s == "" {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(c.s)
		}
		if colored && last != nil {
			b.WriteString("\x1b[0m")
		}
		out[i] = strings.TrimRight(b.String(), " ")
	}
	return out
}

func sgr(c *cell) string {
	s := fmt.Sprintf("\x1b[0;38;2;%d;%d;%dm", c.c.R, c.c.G, c.c.B)
	if c.link {
		s += "\x1b[4m"
	}
	return s
}

// writePreview draws s into a character grid and writes it framed to w.
// Lines are cut to limit cells unless limit is zero.
func writePreview(w io.Writer, s *stream.Stream, colored bool, limit int) error {
	var g grid
	if err := render.Draw(s, &g, render.DefaultDrawOptions()); err != nil {
		return err
	}

	lines := g.lines(colored)
	width := 0
	for i, l := range lines {
		if limit > 0 {
			l = truncate.String(l, uint(limit))
			lines[i] = l
		}
		width = max(width, ansi.PrintableRuneWidth(l))
	}

	border := "+" + strings.Repeat("-", width) + "+\n"
	if _, err := io.WriteString(w, border); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(w, "|%s|\n", padding.String(l, uint(width))); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, border)
	return err
}
