package typemap

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes the polymorphic marker as null.
func (c Canonical) MarshalJSON() ([]byte, error) {
	if c == Null {
		return []byte("null"), nil
	}
	return json.Marshal(string(c))
}

// UnmarshalJSON decodes null as the polymorphic marker.
func (c *Canonical) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*c = Null
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = Canonical(s)
	return nil
}
