package recording

import (
	"io"

	"github.com/gogpu/richtext/render"
)

// Backend is a sink that turns a played-back recording into some output:
// a listing, JSON, an image.
//
// Playback calls Begin with the canvas size, then the sink methods in
// recording order, then End. Custom commands are delivered through
// DrawCustom.
//
// Backends register themselves in init:
//
//	func init() {
//	    recording.Register("listing", func() recording.Backend {
//	        return New()
//	    })
//	}
type Backend interface {
	render.CustomSink

	// Begin prepares the backend for a canvas of the given size and
	// discards any previous output.
	Begin(width, height int) error

	// End finalizes the output.
	End() error
}

// WriterBackend is a Backend whose output can be written out after End.
type WriterBackend interface {
	Backend

	// WriteTo writes the output to w.
	WriteTo(w io.Writer) (int64, error)
}
