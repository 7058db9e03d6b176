// Command rtdump lays out rich-text markup and prints what the layout
// produced: the command stream, the recorded draw calls or a terminal
// preview.
//
// Usage:
//
//	rtdump [flags] [file]
//
// Markup is read from file, or from stdin when no file is given.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/term"

	"github.com/gogpu/richtext"
	"github.com/gogpu/richtext/layout"
	"github.com/gogpu/richtext/markup"
	"github.com/gogpu/richtext/recording"
	_ "github.com/gogpu/richtext/recording/backends/jsonl"
	_ "github.com/gogpu/richtext/recording/backends/listing"
	_ "github.com/gogpu/richtext/recording/backends/raster"
	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/resource"
	"github.com/gogpu/richtext/stream"
	"github.com/gogpu/richtext/text"
)

const (
	defaultWidth = 80
	defaultSize  = 16
)

type config struct {
	format    string
	width     float64
	height    float64
	align     string
	fontPath  string
	size      float64
	mono      bool
	styles    string
	shape     bool
	hyphenate bool
	rtl       bool
	customs   []string
	color     string
	verbose   bool
}

func main() {
	var (
		cfg     config
		outPath string
	)
	flags := pflag.NewFlagSet("rtdump", pflag.ExitOnError)
	flags.StringVarP(&cfg.format, "format", "f", "stream", "Output: stream|preview|"+strings.Join(recording.Backends(), "|"))
	flags.Float64VarP(&cfg.width, "width", "w", 0, "Layout width in pixels (0 is unbounded; preview uses terminal columns)")
	flags.Float64VarP(&cfg.height, "height", "H", 0, "Layout height in pixels (0 is unbounded)")
	flags.StringVarP(&cfg.align, "align", "a", "left", "Alignment, e.g. center or right,bottom")
	flags.StringVar(&cfg.fontPath, "font", "", "TTF/OTF path for the default font (Go fonts if empty)")
	flags.Float64VarP(&cfg.size, "size", "s", defaultSize, "Font size in pixels per em")
	flags.BoolVar(&cfg.mono, "mono", false, "Use a synthetic fixed-pitch font of one size-wide cell")
	flags.StringVar(&cfg.styles, "styles", "", "JSON style sheet")
	flags.BoolVar(&cfg.shape, "shape", false, "Shape text")
	flags.BoolVar(&cfg.hyphenate, "hyphenate", false, "Hyphenate words broken at the line end")
	flags.BoolVar(&cfg.rtl, "rtl", false, "Right-to-left block direction")
	flags.StringSliceVar(&cfg.customs, "custom", nil, "Register a custom command name (repeatable)")
	flags.StringVar(&cfg.color, "color", "auto", "Preview colors: auto|on|off")
	flags.BoolVarP(&cfg.verbose, "verbose", "v", false, "Log layout details to stderr")
	flags.StringVarP(&outPath, "output", "o", "", "Output file instead of stdout")

	flags.SetInterspersed(true)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rtdump [flags] [file]\n")
		fmt.Fprintln(os.Stderr, "\nIf no file is given, markup is read from stdin.")
		fmt.Fprintln(os.Stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	src, err := readInput(flags.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "read input: %v\n", err)
		os.Exit(1)
	}

	out := io.Writer(os.Stdout)
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "open output: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()
		out = f
	} else if cfg.format == "raster" && isTerminal(os.Stdout) {
		fmt.Fprintln(os.Stderr, "refusing to write PNG to terminal; use -o/--output")
		os.Exit(2)
	}

	if cfg.verbose {
		richtext.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}
	if cfg.format == "preview" {
		if cfg.width == 0 {
			cfg.width = float64(terminalWidth(defaultWidth))
		}
		if cfg.color == "auto" && outPath == "" && isTerminal(os.Stdout) {
			cfg.color = "on"
		}
	}

	if err := run(cfg, src, out); err != nil {
		fmt.Fprintf(os.Stderr, "rtdump: %v\n", err)
		os.Exit(1)
	}
}

func readInput(args []string) (string, error) {
	switch len(args) {
	case 0:
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	case 1:
		// #nosec G304 -- input path is provided by the user
		data, err := os.ReadFile(args[0])
		return string(data), err
	default:
		return "", fmt.Errorf("expected at most one input file, got %d", len(args))
	}
}

// run lays out src and writes the requested output to w.
func run(cfg config, src string, w io.Writer) error {
	s, res, err := layoutMarkup(cfg, src)
	if err != nil {
		return err
	}
	richtext.Logger().Debug("rtdump: laid out",
		"lines", res.Lines, "width", res.Width, "height", res.Height, "complete", res.Complete)

	switch cfg.format {
	case "stream":
		return s.Dump(w)
	case "preview":
		return writePreview(w, s, cfg.color == "on", int(cfg.width))
	}

	backend, err := recording.NewBackend(cfg.format)
	if err != nil {
		return err
	}
	wb, ok := backend.(recording.WriterBackend)
	if !ok {
		return fmt.Errorf("backend %q produces no output", cfg.format)
	}

	width, height := res.Width, res.Height
	if cfg.width > 0 {
		width = cfg.width
	}
	if cfg.height > 0 {
		height = cfg.height
	}
	rec := recording.NewRecorder(int(math.Ceil(width)), int(math.Ceil(height)))
	if err := render.Draw(s, rec, render.DefaultDrawOptions()); err != nil {
		return err
	}
	if err := rec.FinishRecording().Playback(wb); err != nil {
		return err
	}
	_, err = wb.WriteTo(w)
	return err
}

// layoutMarkup parses src and lays it out with the settings cfg selects.
func layoutMarkup(cfg config, src string) (*stream.Stream, layout.Result, error) {
	cs := markup.NewCommandSet()
	for _, name := range cfg.customs {
		if _, err := cs.Register(name); err != nil {
			return nil, layout.Result{}, err
		}
	}
	var ts markup.TokenStream
	if err := markup.NewParser(markup.WithCommandSet(cs)).Parse(src, &ts); err != nil {
		return nil, layout.Result{}, err
	}

	set, err := settings(cfg)
	if err != nil {
		return nil, layout.Result{}, err
	}
	s := stream.New()
	res, err := layout.CalculateLayout(&ts, set, s)
	if err != nil {
		return nil, layout.Result{}, err
	}
	return s, res, nil
}

func settings(cfg config) (layout.Settings, error) {
	font, err := loadFont(cfg)
	if err != nil {
		return layout.Settings{}, err
	}
	set := layout.DefaultSettings(font)
	set.Width, set.Height = cfg.width, cfg.height
	if set.Align, err = parseAlign(cfg.align); err != nil {
		return layout.Settings{}, err
	}
	if cfg.shape {
		set.Options |= layout.OptShape
		set.Shaper = text.NewCachedShaper(text.NewGoTextShaper(), text.DefaultShapeCacheSize)
	}
	if cfg.hyphenate {
		set.Options |= layout.OptHyphenate
	}
	if cfg.rtl {
		set.Direction = text.DirectionRTL
	}
	if cfg.styles != "" {
		data, err := os.ReadFile(cfg.styles)
		if err != nil {
			return layout.Settings{}, err
		}
		lib, err := resource.LoadLibrary(data)
		if err != nil {
			return layout.Settings{}, fmt.Errorf("%s: %w", cfg.styles, err)
		}
		set.Resources = lib
	}
	return set, nil
}

func loadFont(cfg config) (*text.Font, error) {
	if cfg.format == "preview" {
		return text.NewFont("cells", text.NewMonoFace(1, 1)), nil
	}
	if cfg.mono {
		return text.NewFont("mono", text.NewMonoFace(cfg.size, cfg.size*2)), nil
	}
	if cfg.fontPath != "" {
		src, err := text.NewFontSourceFromFile(cfg.fontPath)
		if err != nil {
			return nil, err
		}
		return text.NewFont(src.Name(), src.Face(cfg.size)), nil
	}

	faces := make([]text.Face, 0, 4)
	for _, data := range [][]byte{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF} {
		src, err := text.NewFontSource(data)
		if err != nil {
			return nil, err
		}
		faces = append(faces, src.Face(cfg.size))
	}
	return text.NewFont("Go", faces[0],
		text.WithBold(faces[1]),
		text.WithItalic(faces[2]),
		text.WithBoldItalic(faces[3]),
	), nil
}

func parseAlign(s string) (layout.Align, error) {
	var a layout.Align
	for part := range strings.SplitSeq(s, ",") {
		switch strings.TrimSpace(strings.ToLower(part)) {
		case "", "left", "top":
		case "center":
			a |= layout.AlignCenter
		case "right":
			a |= layout.AlignRight
		case "middle":
			a |= layout.AlignMiddle
		case "bottom":
			a |= layout.AlignBottom
		default:
			return 0, fmt.Errorf("unknown alignment %q", part)
		}
	}
	return a, nil
}

func terminalWidth(fallback int) int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	if value := os.Getenv("COLUMNS"); value != "" {
		if w, err := strconv.Atoi(value); err == nil && w > 0 {
			return w
		}
	}
	return fallback
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
