package admin

import (
	"bytes"
	"encoding/json"
)

// OrderedMap is a string-keyed map that marshals its keys in insertion order.
type OrderedMap[V any] struct {
	keys   []string
	values map[string]V
}

// NewOrderedMap returns an empty map with room for n keys.
func NewOrderedMap[V any](n int) *OrderedMap[V] {
	return &OrderedMap[V]{keys: make([]string, 0, n), values: make(map[string]V, n)}
}

// Set stores v under k, appending k if it is new.
func (m *OrderedMap[V]) Set(k string, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Get returns the value stored under k.
func (m *OrderedMap[V]) Get(k string) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Has reports whether k is present.
func (m *OrderedMap[V]) Has(k string) bool {
	_, ok := m.values[k]
	return ok
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[V]) Keys() []string {
	return append([]string(nil), m.keys...)
}

// Len returns the number of keys.
func (m *OrderedMap[V]) Len() int {
	return len(m.keys)
}

// ToMap copies the entries into a plain map.
func (m *OrderedMap[V]) ToMap() map[string]V {
	out := make(map[string]V, len(m.keys))
	for _, k := range m.keys {
		out[k] = m.values[k]
	}
	return out
}

// MarshalJSON writes the entries as a JSON object in insertion order.
func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
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
		val, err := json.Marshal(m.values[k])
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
