package render

import "errors"

var (
	// ErrNilStream is returned when a nil stream is drawn or walked.
	ErrNilStream = errors.New("render: nil stream")

	// ErrNoBlock is returned for streams that do not start with a
	// BlockInfo record, such as a cleared stream.
	ErrNoBlock = errors.New("render: stream has no laid-out block")

	// ErrNilSink is returned by Draw when sink is nil.
	ErrNilSink = errors.New("render: nil sink")
)
