package recording

import (
	"slices"

	"github.com/gogpu/richtext/render"
	"github.com/gogpu/richtext/text"
)

// Recorder is a render.CustomSink that captures draw calls as commands.
// Use FinishRecording to obtain an immutable Recording.
//
// Example:
//
//	rec := recording.NewRecorder(320, 200)
//	render.Draw(s, rec, render.DefaultDrawOptions())
//	r := rec.FinishRecording()
//
// The Recorder is not safe for concurrent use.
type Recorder struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
	bounds        text.Rect
	empty         bool
}

var _ render.CustomSink = (*Recorder)(nil)

// NewRecorder creates a Recorder for a canvas of the given size. The size
// is passed to backends on playback.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{
		width:     width,
		height:    height,
		commands:  make([]Command, 0, 64),
		resources: NewResourcePool(),
		empty:     true,
	}
}

// Width returns the width of the recording canvas.
func (r *Recorder) Width() int {
	return r.width
}

// Height returns the height of the recording canvas.
func (r *Recorder) Height() int {
	return r.height
}

// Len returns the number of recorded commands.
func (r *Recorder) Len() int {
	return len(r.commands)
}

// DrawGlyphRun records a copy of run.
func (r *Recorder) DrawGlyphRun(run *render.GlyphRun) {
	r.commands = append(r.commands, DrawGlyphRunCommand{
		Face:   r.resources.AddFace(run.Face),
		Text:   run.Text,
		Glyphs: slices.Clone(run.Glyphs),
		Link:   run.Link,
		Shaped: run.Shaped,
	})
	var m text.Metrics
	if run.Face != nil {
		m = run.Face.Metrics()
	}
	for _, g := range run.Glyphs {
		r.extend(text.Rect{
			MinX: g.X,
			MinY: g.Y - m.Ascent*g.Scale,
			MaxX: g.X + g.Advance*g.Scale,
			MaxY: g.Y + m.Descent*g.Scale,
		})
	}
}

// DrawSprite records sp.
func (r *Recorder) DrawSprite(sp *render.Sprite) {
	r.commands = append(r.commands, DrawSpriteCommand{
		Icon:     r.resources.AddIcon(sp.Icon),
		Index:    sp.Index,
		X:        sp.X,
		Y:        sp.Y,
		W:        sp.W,
		H:        sp.H,
		Rotation: sp.Rotation,
		Color:    sp.Color,
		Link:     sp.Link,
	})
	r.extend(text.Rect{MinX: sp.X, MinY: sp.Y, MaxX: sp.X + sp.W, MaxY: sp.Y + sp.H})
}

// DrawCustom records a custom command.
func (r *Recorder) DrawCustom(id byte, value string) {
	r.commands = append(r.commands, CustomCommand{ID: id, Value: value})
}

func (r *Recorder) extend(b text.Rect) {
	if r.empty {
		r.bounds, r.empty = b, false
		return
	}
	r.bounds = r.bounds.Union(b)
}

// FinishRecording returns an immutable Recording of everything drawn so
// far. The Recorder should not be used afterwards.
func (r *Recorder) FinishRecording() *Recording {
	return &Recording{
		width:     r.width,
		height:    r.height,
		commands:  r.commands,
		resources: r.resources,
		bounds:    r.bounds,
	}
}

// Recording is an immutable list of recorded draw calls.
type Recording struct {
	width, height int
	commands      []Command
	resources     *ResourcePool
	bounds        text.Rect
}

// Width returns the width of the recording canvas.
func (r *Recording) Width() int {
	return r.width
}

// Height returns the height of the recording canvas.
func (r *Recording) Height() int {
	return r.height
}

// Commands returns the recorded commands.
func (r *Recording) Commands() []Command {
	return r.commands
}

// Resources returns the resource pool.
func (r *Recording) Resources() *ResourcePool {
	return r.resources
}

// Bounds returns the union of every glyph and sprite box drawn. Glyph
// boxes span the face's ascent and descent.
func (r *Recording) Bounds() text.Rect {
	return r.bounds
}

// Playback replays the recording to sink.
//
// Custom commands reach the sink only if it is a render.CustomSink. When
// sink is a Backend it is bracketed by Begin and End with the canvas size.
func (r *Recording) Playback(sink render.Sink) error {
	backend, isBackend := sink.(Backend)
	if isBackend {
		if err := backend.Begin(r.width, r.height); err != nil {
			return err
		}
	}
	custom, _ := sink.(render.CustomSink)

	var (
		run    render.GlyphRun
		sprite render.Sprite
	)
	for _, cmd := range r.commands {
		switch c := cmd.(type) {
		case DrawGlyphRunCommand:
			run = render.GlyphRun{
				Face:   r.resources.Face(c.Face),
				Text:   c.Text,
				Glyphs: c.Glyphs,
				Link:   c.Link,
				Shaped: c.Shaped,
			}
			sink.DrawGlyphRun(&run)
		case DrawSpriteCommand:
			sprite = render.Sprite{
				Icon:     r.resources.Icon(c.Icon),
				Index:    c.Index,
				X:        c.X,
				Y:        c.Y,
				W:        c.W,
				H:        c.H,
				Rotation: c.Rotation,
				Color:    c.Color,
				Link:     c.Link,
			}
			sink.DrawSprite(&sprite)
		case CustomCommand:
			if custom != nil {
				custom.DrawCustom(c.ID, c.Value)
			}
		}
	}

	if isBackend {
		return backend.End()
	}
	return nil
}
