package fugue

import "fmt"

// DuplicateNameError indicates a stream registration collided with an
// existing registry entry. The registry is left unchanged.
type DuplicateNameError struct {
	Name string
}

// Error implements the error interface.
func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("fugue: stream with name %q already exists", e.Name)
}

// SerializationError indicates key or value encoding failed during a send.
// It does not affect other sends or the producer's started state.
type SerializationError struct {
	What  string // "key" or "value"
	Cause error
}

// Error implements the error interface.
func (e *SerializationError) Error() string {
	return fmt.Sprintf("fugue: %s serialization failed: %v", e.What, e.Cause)
}

// Unwrap returns the underlying encoding error.
func (e *SerializationError) Unwrap() error { return e.Cause }

// ConfigurationError indicates invalid application options. It is surfaced
// at construction or provisioning time and never retried.
type ConfigurationError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fugue: configuration: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("fugue: configuration: %s", e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ConfigurationError) Unwrap() error { return e.Cause }
