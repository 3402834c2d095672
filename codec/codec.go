package codec

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Codec serializes values to and from their wire representation.
type Codec interface {
	// Encode converts a value to its byte representation.
	Encode(v interface{}) ([]byte, error)

	// Decode parses data into the value pointed to by v.
	Decode(data []byte, v interface{}) error
}

// JSON encodes values using encoding/json.
type JSON struct{}

// Encode marshals v as JSON.
func (JSON) Encode(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Decode unmarshals JSON data into v.
func (JSON) Decode(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// Raw passes strings and byte slices through unchanged.
type Raw struct{}

// Encode converts v to bytes. Only strings and byte slices are supported.
func (Raw) Encode(v interface{}) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []byte:
		return val, nil
	case string:
		return []byte(val), nil
	case fmt.Stringer:
		return []byte(val.String()), nil
	default:
		return nil, fmt.Errorf("raw codec: unsupported type %T", v)
	}
}

// Decode copies data into v, which must be *[]byte or *string.
func (Raw) Decode(data []byte, v interface{}) error {
	switch dst := v.(type) {
	case *[]byte:
		*dst = data
		return nil
	case *string:
		*dst = string(data)
		return nil
	default:
		return fmt.Errorf("raw codec: unsupported target %T", v)
	}
}

// --- Named codec registry ---

var (
	registryMu sync.RWMutex
	registry   = map[string]Codec{
		"json": JSON{},
		"raw":  Raw{},
	}
)

// Register makes a codec available under the given name. Registering a name
// twice overwrites the previous entry.
func Register(name string, c Codec) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = c
}

// Resolve returns the codec registered under name.
func Resolve(name string) (Codec, error) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown codec: %q", name)
	}
	return c, nil
}
