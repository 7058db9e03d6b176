package stream

import "errors"

// ErrCapacity is returned when a registry already holds MaxEntries values.
var ErrCapacity = errors.New("stream: registry capacity exceeded")
