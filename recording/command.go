package recording

import (
	"image/color"

	"github.com/gogpu/richtext/render"
)

// CommandType identifies the type of a command.
type CommandType uint8

const (
	CmdDrawGlyphRun CommandType = iota // Draw a run of glyphs
	CmdDrawSprite                      // Draw an inline icon
	CmdCustom                          // Custom markup command
)

var commandTypeNames = [...]string{
	CmdDrawGlyphRun: "DrawGlyphRun",
	CmdDrawSprite:   "DrawSprite",
	CmdCustom:       "Custom",
}

// String returns the string representation of a CommandType.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is the interface implemented by all recorded commands.
type Command interface {
	Type() CommandType
}

// InvalidRef marks a missing resource, such as the face of a run drawn
// without one.
const InvalidRef = ^uint32(0)

// FaceRef is a reference to a face in the resource pool.
type FaceRef uint32

// IsValid returns true if the reference is not InvalidRef.
func (r FaceRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// IconRef is a reference to an icon in the resource pool.
type IconRef uint32

// IsValid returns true if the reference is not InvalidRef.
func (r IconRef) IsValid() bool {
	return uint32(r) != InvalidRef
}

// DrawGlyphRunCommand is a recorded render.GlyphRun. Glyphs is owned by
// the recording.
type DrawGlyphRunCommand struct {
	Face   FaceRef
	Text   string
	Glyphs []render.Glyph
	Link   string
	Shaped bool
}

// Type implements Command.
func (DrawGlyphRunCommand) Type() CommandType { return CmdDrawGlyphRun }

// DrawSpriteCommand is a recorded render.Sprite.
type DrawSpriteCommand struct {
	Icon       IconRef
	Index      int
	X, Y, W, H float64
	Rotation   float64
	Color      color.NRGBA
	Link       string
}

// Type implements Command.
func (DrawSpriteCommand) Type() CommandType { return CmdDrawSprite }

// CustomCommand is a custom markup command reached while drawing.
type CustomCommand struct {
	ID    byte
	Value string
}

// Type implements Command.
func (CustomCommand) Type() CommandType { return CmdCustom }
