package tiled

import (
	"encoding/json"
	"errors"
	"fmt"
)

// AttributesKey names the optional sidecar holding user attributes for the
// sources of a Store. It is hidden, so sniffing never counts it.
const AttributesKey = ".zattrs"

// Attributes are free-form descriptive metadata about a data source.
type Attributes map[string]interface{}

// LoadAttributes reads the attributes sidecar of s. A store without one has
// empty attributes.
func LoadAttributes(s Store) (Attributes, error) {
	f, err := s.Get(AttributesKey)
	if errors.Is(err, ErrNotfound) {
		return Attributes{}, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	attrs := Attributes{}
	if err := json.NewDecoder(f).Decode(&attrs); err != nil {
		return nil, fmt.Errorf("reading %q attributes: %w", AttributesKey, err)
	}
	return attrs, nil
}

// Copy returns a shallow copy of a, so callers can't mutate adapter state.
func (a Attributes) Copy() Attributes {
	c := make(Attributes, len(a))
	for k, v := range a {
		c[k] = v
	}
	return c
}
