package stream

import "fmt"

// MaxEntries is the number of values a Registry can hold. Indices are
// int16.
const MaxEntries = 32767

// Registry interns values under comparable keys and hands out dense int16
// indices. Registration is idempotent: a known key returns its existing
// index and keeps the first value.
//
// The zero value is an empty registry.
type Registry[K comparable, V any] struct {
	index  map[K]int16
	keys   []K
	values []V
}

// Register interns v under key and returns its index.
// It returns ErrCapacity when MaxEntries values are already registered.
func (r *Registry[K, V]) Register(key K, v V) (int16, error) {
	if i, ok := r.index[key]; ok {
		return i, nil
	}
	if len(r.values) >= MaxEntries {
		return -1, ErrCapacity
	}
	if r.index == nil {
		r.index = make(map[K]int16)
	}
	i := int16(len(r.values)) //nolint:gosec // bounded by MaxEntries
	r.index[key] = i
	r.keys = append(r.keys, key)
	r.values = append(r.values, v)
	return i, nil
}

// Get returns the value at index i. An index that did not come from this
// registry is a programming error and panics.
func (r *Registry[K, V]) Get(i int16) V {
	if i < 0 || int(i) >= len(r.values) {
		panic(fmt.Sprintf("stream: registry index %d out of range [0, %d)", i, len(r.values)))
	}
	return r.values[i]
}

// Key returns the key registered at index i.
func (r *Registry[K, V]) Key(i int16) K {
	if i < 0 || int(i) >= len(r.keys) {
		panic(fmt.Sprintf("stream: registry index %d out of range [0, %d)", i, len(r.keys)))
	}
	return r.keys[i]
}

// Index returns the index of key.
func (r *Registry[K, V]) Index(key K) (int16, bool) {
	i, ok := r.index[key]
	return i, ok
}

// Find returns the value registered under key, or the zero value.
func (r *Registry[K, V]) Find(key K) V {
	if i, ok := r.index[key]; ok {
		return r.values[i]
	}
	var zero V
	return zero
}

// Len returns the number of registered values.
func (r *Registry[K, V]) Len() int { return len(r.values) }

// Reset removes every value.
func (r *Registry[K, V]) Reset() {
	clear(r.index)
	r.keys = r.keys[:0]
	r.values = r.values[:0]
}

// replace swaps the value at index i, re-keying it.
func (r *Registry[K, V]) replace(i int16, key K, v V) {
	old := r.Key(i)
	delete(r.index, old)
	if r.index == nil {
		r.index = make(map[K]int16)
	}
	r.index[key] = i
	r.keys[i] = key
	r.values[i] = v
}
