package collections

import (
	"fmt"
	"sort"
	"strings"
)

// StringMap holds environment variables and secrets.
type StringMap = OrderedMap[string, string]

// ObjectMap holds inputs, outputs and variables.
type ObjectMap = OrderedMap[string, any]

// Inputs are the resolved `with` values of a unit.
type Inputs = ObjectMap

// Outputs are the values a unit produced.
type Outputs = ObjectMap

// NewStringMap creates an empty StringMap.
func NewStringMap() *StringMap { return NewOrderedMap[string, string]() }

// NewObjectMap creates an empty ObjectMap.
func NewObjectMap() *ObjectMap { return NewOrderedMap[string, any]() }

// StringMapFrom builds a StringMap from a Go map. Keys are sorted so the
// resulting order is deterministic.
func StringMapFrom(src map[string]string) *StringMap {
	m := NewStringMap()
	for _, k := range sortedKeys(src) {
		m.Set(k, src[k])
	}
	return m
}

// ObjectMapFrom builds an ObjectMap from a Go map with sorted keys.
func ObjectMapFrom(src map[string]any) *ObjectMap {
	m := NewObjectMap()
	for _, k := range sortedKeys(src) {
		m.Set(k, src[k])
	}
	return m
}

// ParseEnviron builds a StringMap from KEY=VALUE pairs such as os.Environ().
// Entries without '=' are ignored.
func ParseEnviron(pairs []string) *StringMap {
	m := NewStringMap()
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		m.Set(k, v)
	}
	return m
}

// Environ renders a StringMap as KEY=VALUE pairs in insertion order.
func Environ(m *StringMap) []string {
	out := make([]string, 0, m.Len())
	for k, v := range m.All() {
		out = append(out, k+"="+v)
	}
	return out
}

// Stringify renders an arbitrary value the way it is projected into the
// environment. Nil becomes the empty string.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}

func sortedKeys[V any](src map[string]V) []string {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
