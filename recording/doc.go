// Package recording captures the draw calls of a laid-out block so they can
// be inspected or replayed later.
//
// A Recorder is a render.Sink. Draw into it, finish the recording and play
// it back to any other sink or to a registered backend:
//
//	rec := recording.NewRecorder(320, 200)
//	if err := render.Draw(s, rec, render.DefaultDrawOptions()); err != nil {
//	    return err
//	}
//	r := rec.FinishRecording()
//
//	r.Playback(screen)
//
// # Architecture
//
//   - Recorder: copies every glyph run, sprite and custom command
//   - Recording: the immutable command list and its resources
//   - Backend: a sink with a Begin/End lifecycle that produces output
//
// Faces and icons are stored once in a ResourcePool and referenced from
// commands by FaceRef and IconRef.
//
// # Backends
//
// Backends register themselves by name, following the database/sql driver
// pattern:
//
//	import _ "github.com/gogpu/richtext/recording/backends/listing"
//
//	b, err := recording.NewBackend("listing")
//	if err != nil {
//	    return err
//	}
//	if err := r.Playback(b); err != nil {
//	    return err
//	}
//	b.(recording.WriterBackend).WriteTo(os.Stdout)
//
// The listing, jsonl and raster backends live under backends/.
//
// # Thread Safety
//
// Recorder is not safe for concurrent use. A Recording is immutable once
// finished and may be played back from several goroutines.
package recording
