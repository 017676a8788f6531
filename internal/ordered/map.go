// Package ordered provides an insertion-ordered string-keyed map that
// serializes as a list of [key, value] pairs.
package ordered

import (
	"encoding/json"
	"fmt"
)

// Map is an insertion-ordered map. The zero value is ready to use and a nil
// *Map reads as empty. Map is not safe for concurrent use.
type Map[V any] struct {
	keys   []string
	values map[string]V
}

// New returns an empty map.
func New[V any]() *Map[V] {
	return &Map[V]{values: make(map[string]V)}
}

// Get returns the value for key and whether it was present.
func (m *Map[V]) Get(key string) (V, bool) {
	if m == nil {
		var zero V
		return zero, false
	}
	v, ok := m.values[key]
	return v, ok
}

// Set stores v under key. New keys are appended to the iteration order;
// existing keys keep their position.
func (m *Map[V]) Set(key string, v V) {
	if m.values == nil {
		m.values = make(map[string]V)
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Delete removes key if present.
func (m *Map[V]) Delete(key string) {
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	for i, k := range m.keys {
		if k == key {
			m.keys = append(m.keys[:i], m.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (m *Map[V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *Map[V]) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Each calls fn for every entry in insertion order. Returning false stops
// the iteration.
func (m *Map[V]) Each(fn func(key string, v V) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

// Clone returns a shallow copy.
func (m *Map[V]) Clone() *Map[V] {
	out := New[V]()
	m.Each(func(k string, v V) bool {
		out.Set(k, v)
		return true
	})
	return out
}

// MarshalJSON encodes the map as [[key, value], ...].
func (m Map[V]) MarshalJSON() ([]byte, error) {
	pairs := make([][2]any, 0, len(m.keys))
	for _, k := range m.keys {
		pairs = append(pairs, [2]any{k, m.values[k]})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes a [[key, value], ...] list. Later duplicates of a
// key overwrite earlier ones but keep the first position.
func (m *Map[V]) UnmarshalJSON(data []byte) error {
	var pairs []json.RawMessage
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("decode pairs: %w", err)
	}
	m.keys = nil
	m.values = make(map[string]V, len(pairs))
	for i, raw := range pairs {
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil {
			return fmt.Errorf("decode pair %d: %w", i, err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("decode pair %d: want 2 elements, got %d", i, len(pair))
		}
		var key string
		if err := json.Unmarshal(pair[0], &key); err != nil {
			return fmt.Errorf("decode pair %d key: %w", i, err)
		}
		var v V
		if err := json.Unmarshal(pair[1], &v); err != nil {
			return fmt.Errorf("decode pair %d value: %w", i, err)
		}
		m.Set(key, v)
	}
	return nil
}
