package fugue

import (
	"context"
	"sync"
)

// Stream is a named, independently startable and stoppable consumer of one
// or more topics. Its iteration logic is the stream's own concern; the
// application only drives its lifecycle.
//
// The name must be set before registration and is unique for the lifetime of
// the registry.
type Stream interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// streamRegistry is an insertion-ordered mapping from stream name to stream.
// Registration order encodes dependency order: streams are started in
// insertion order and stopped in reverse.
type streamRegistry struct {
	mu      sync.RWMutex
	entries []Stream
	lookup  map[string]Stream
}

func newStreamRegistry() *streamRegistry {
	return &streamRegistry{
		lookup: make(map[string]Stream),
	}
}

// register inserts a stream at the end of the registry. The registry is left
// unchanged when the name is empty or already taken.
func (r *streamRegistry) register(s Stream) error {
	name := s.Name()
	if name == "" {
		return &ConfigurationError{Message: "stream has no name"}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.lookup[name]; exists {
		return &DuplicateNameError{Name: name}
	}
	r.entries = append(r.entries, s)
	r.lookup[name] = s
	return nil
}

// values returns the registered streams in insertion order.
func (r *streamRegistry) values() []Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Stream, len(r.entries))
	copy(out, r.entries)
	return out
}

// reversed returns the registered streams in reverse insertion order.
func (r *streamRegistry) reversed() []Stream {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Stream, len(r.entries))
	for i, s := range r.entries {
		out[len(r.entries)-1-i] = s
	}
	return out
}

func (r *streamRegistry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
