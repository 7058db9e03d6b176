package layout

import (
	"errors"
	"fmt"
)

// Configuration errors.
var (
	// ErrNilFont is returned when Settings.Font is nil.
	ErrNilFont = errors.New("layout: nil default font")

	// ErrNilTokens is returned when the token stream is nil.
	ErrNilTokens = errors.New("layout: nil token stream")

	// ErrNilStream is returned when the output stream is nil.
	ErrNilStream = errors.New("layout: nil output stream")
)

// LookupError reports a resource name that markup referenced but the
// resolver does not know.
type LookupError struct {
	// Kind is "style", "font", "icon" or "glyph shader".
	Kind string
	Name string
	// Offset is the source offset of the command.
	Offset int
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("layout: unknown %s %q at offset %d", e.Kind, e.Name, e.Offset)
}
