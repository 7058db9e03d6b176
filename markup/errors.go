package markup

import (
	"errors"
	"fmt"
)

// Sentinel errors for the markup package.
var (
	// ErrTooManyCommands is returned when registering a custom command
	// would exceed MaxCustomCommands.
	ErrTooManyCommands = errors.New("markup: too many custom commands")

	// ErrInvalidCommandName is returned for custom command names that are
	// empty, malformed or collide with a builtin command.
	ErrInvalidCommandName = errors.New("markup: invalid custom command name")

	// ErrInvalidEdit is returned by ParseIncremental when the edit range
	// does not fit the old or new source.
	ErrInvalidEdit = errors.New("markup: invalid edit range")
)

// ColorError reports a color command whose argument has the length of a
// color but is not valid hex.
type ColorError struct {
	// Offset is the byte offset of the command in the source.
	Offset int
	// Value is the rejected argument.
	Value string
	// Err is the underlying parse error.
	Err error
}

func (e *ColorError) Error() string {
	return fmt.Sprintf("markup: invalid color %q at offset %d", e.Value, e.Offset)
}

func (e *ColorError) Unwrap() error { return e.Err }
