// Package codec encodes archive manifests and ledger entries.
//
// Writers tag persisted data with the name of the codec that produced it
// (see Tag); readers resolve the tag with FromTag.
package codec

import (
	"errors"
	"fmt"
	"slices"
)

// Record is the PAX record key holding the codec name of a tagged entry.
const Record = "PATHFILES.codec"

// ErrUnknown is returned for a codec name with no registered codec.
var ErrUnknown = errors.New("unknown codec")

// Codec encodes and decodes values. Implementations must be safe for
// concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// Default encodes new manifests and ledger entries.
var Default Codec = GoJSON{}

var registry = map[string]Codec{
	JSON{}.Name():   JSON{},
	GoJSON{}.Name(): GoJSON{},
}

// Names returns the sorted names of all codecs.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ByName returns the codec registered under name.
func ByName(name string) (Codec, bool) {
	c, ok := registry[name]
	return c, ok
}

// Lookup is ByName with an error. An empty name selects JSON, since
// untagged data is plain JSON.
func Lookup(name string) (Codec, error) {
	if name == "" {
		return JSON{}, nil
	}
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknown, name)
	}
	return c, nil
}

// Tag returns the PAX records naming c.
func Tag(c Codec) map[string]string {
	return map[string]string{Record: c.Name()}
}

// FromTag resolves the codec named in records.
func FromTag(records map[string]string) (Codec, error) {
	return Lookup(records[Record])
}

// Encode marshals v with c, or with Default if c is nil.
func Encode(c Codec, v any) ([]byte, error) {
	if c == nil {
		c = Default
	}
	data, err := c.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%s encode: %w", c.Name(), err)
	}
	return data, nil
}
