package recording

import (
	"testing"
)

func TestCommandType_String(t *testing.T) {
	tests := []struct {
		ct   CommandType
		want string
	}{
		{CmdDrawGlyphRun, "DrawGlyphRun"},
		{CmdDrawSprite, "DrawSprite"},
		{CmdCustom, "Custom"},
		{CommandType(254), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.ct.String(); got != tt.want {
				t.Errorf("CommandType.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCommandInterface(t *testing.T) {
	tests := []struct {
		cmd  Command
		want CommandType
	}{
		{DrawGlyphRunCommand{Face: FaceRef(0), Text: "a"}, CmdDrawGlyphRun},
		{DrawSpriteCommand{Icon: IconRef(0), W: 10, H: 10}, CmdDrawSprite},
		{CustomCommand{ID: 1, Value: "x"}, CmdCustom},
	}
	for _, tt := range tests {
		if got := tt.cmd.Type(); got != tt.want {
			t.Errorf("%T.Type() = %v, want %v", tt.cmd, got, tt.want)
		}
	}
}

func TestRefValidity(t *testing.T) {
	if !FaceRef(0).IsValid() || !IconRef(3).IsValid() {
		t.Error("small refs should be valid")
	}
	if FaceRef(InvalidRef).IsValid() {
		t.Error("FaceRef(InvalidRef).IsValid() = true")
	}
	if IconRef(InvalidRef).IsValid() {
		t.Error("IconRef(InvalidRef).IsValid() = true")
	}
}
