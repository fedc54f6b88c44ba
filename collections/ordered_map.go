package collections

import (
	"fmt"
	"iter"
)

// OrderedMap is a map that remembers the order keys were first inserted.
// Overwriting an existing key keeps its original position.
//
// The zero value is ready to use. Read methods are safe on a nil receiver.
type OrderedMap[K comparable, V any] struct {
	keys  []K
	index map[K]int
	items map[K]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{}
}

func (m *OrderedMap[K, V]) init() {
	if m.items == nil {
		m.items = make(map[K]V)
		m.index = make(map[K]int)
	}
}

// Set stores value under key. Existing keys keep their position.
func (m *OrderedMap[K, V]) Set(key K, value V) *OrderedMap[K, V] {
	m.init()
	if _, ok := m.items[key]; !ok {
		m.index[key] = len(m.keys)
		m.keys = append(m.keys, key)
	}
	m.items[key] = value
	return m
}

// Add stores value under key and fails when key is already present.
func (m *OrderedMap[K, V]) Add(key K, value V) error {
	if m.Has(key) {
		return fmt.Errorf("collections: key %v already exists", key)
	}
	m.Set(key, value)
	return nil
}

// Get returns the value stored under key.
func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	if m == nil || m.items == nil {
		var zero V
		return zero, false
	}
	v, ok := m.items[key]
	return v, ok
}

// Value returns the value stored under key or the zero value.
func (m *OrderedMap[K, V]) Value(key K) V {
	v, _ := m.Get(key)
	return v
}

// Has reports whether key is present.
func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key. It reports whether the key was present.
func (m *OrderedMap[K, V]) Delete(key K) bool {
	if m == nil || m.items == nil {
		return false
	}
	i, ok := m.index[key]
	if !ok {
		return false
	}
	delete(m.items, key)
	delete(m.index, key)
	m.keys = append(m.keys[:i], m.keys[i+1:]...)
	for j := i; j < len(m.keys); j++ {
		m.index[m.keys[j]] = j
	}
	return true
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	if m == nil {
		return nil
	}
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in insertion order.
func (m *OrderedMap[K, V]) Values() []V {
	if m == nil {
		return nil
	}
	out := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		out = append(out, m.items[k])
	}
	return out
}

// At returns the entry at position i.
func (m *OrderedMap[K, V]) At(i int) (K, V, bool) {
	if m == nil || i < 0 || i >= len(m.keys) {
		var (
			zk K
			zv V
		)
		return zk, zv, false
	}
	k := m.keys[i]
	return k, m.items[k], true
}

// All iterates over the entries in insertion order. The keys are
// snapshotted first, so the map may be modified while iterating.
func (m *OrderedMap[K, V]) All() iter.Seq2[K, V] {
	keys := m.Keys()
	return func(yield func(K, V) bool) {
		for _, k := range keys {
			v, ok := m.Get(k)
			if !ok {
				continue
			}
			if !yield(k, v) {
				return
			}
		}
	}
}

// Merge copies every entry of other into m. Nil other is a no-op.
func (m *OrderedMap[K, V]) Merge(other *OrderedMap[K, V]) *OrderedMap[K, V] {
	for k, v := range other.All() {
		m.Set(k, v)
	}
	return m
}

// Clone returns a shallow copy. Cloning a nil map yields an empty map.
func (m *OrderedMap[K, V]) Clone() *OrderedMap[K, V] {
	return NewOrderedMap[K, V]().Merge(m)
}

// ToMap returns the entries as a plain Go map.
func (m *OrderedMap[K, V]) ToMap() map[K]V {
	out := make(map[K]V, m.Len())
	for k, v := range m.All() {
		out[k] = v
	}
	return out
}
