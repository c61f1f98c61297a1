package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	// MimeTypeKey is the property holding the content type of a stored file.
	MimeTypeKey = "mimetype"
	// DefaultMimeType is used when an upload declares no content type.
	DefaultMimeType = "application/octet-stream"
)

// Metadata is an ordered set of named values. The zero value is empty and ready to use.
type Metadata struct {
	keys   []string
	values map[string]Value
}

// Set adds or replaces a property. New properties are appended to the order.
func (m *Metadata) Set(key string, v Value) {
	if m.values == nil {
		m.values = make(map[string]Value)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get returns the value of a property.
func (m Metadata) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether a property is set.
func (m Metadata) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Delete removes a property and reports whether it was present.
func (m *Metadata) Delete(key string) bool {
	if _, ok := m.values[key]; !ok {
		return false
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i:i], m.keys[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of properties.
func (m Metadata) Len() int { return len(m.keys) }

// Keys returns the property names in insertion order.
func (m Metadata) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Range calls fn for each property in order until fn returns false.
func (m Metadata) Range(fn func(key string, v Value) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// MimeType returns the mimetype property, if set as a string.
func (m Metadata) MimeType() (string, bool) {
	v, ok := m.values[MimeTypeKey]
	if !ok || v.Kind() != KindString {
		return "", false
	}
	return v.Text(), true
}

// SetMimeType sets the mimetype property.
func (m *Metadata) SetMimeType(mimeType string) {
	m.Set(MimeTypeKey, String(mimeType))
}

// Clone returns an independent copy.
func (m Metadata) Clone() Metadata {
	out := Metadata{
		keys:   make([]string, len(m.keys)),
		values: make(map[string]Value, len(m.values)),
	}
	copy(out.keys, m.keys)
	for k, v := range m.values {
		out.values[k] = v
	}
	return out
}

// MarshalJSON encodes the properties as a JSON object, preserving order.
func (m Metadata) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := m.values[k].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object. Nested objects, arrays and nulls are rejected.
func (m *Metadata) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*m = Metadata{}
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("metadata must be a JSON object")
	}

	var out Metadata
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected metadata key %v", tok)
		}

		tok, err = dec.Token()
		if err != nil {
			return err
		}
		if _, isDelim := tok.(json.Delim); isDelim || tok == nil {
			return fmt.Errorf("metadata property %q: only string, number and boolean values are supported", key)
		}
		v, err := ValueOf(tok)
		if err != nil {
			return fmt.Errorf("metadata property %q: %w", key, err)
		}
		out.Set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
