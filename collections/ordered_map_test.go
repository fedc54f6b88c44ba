package collections

import (
	"reflect"
	"testing"
)

func TestOrderedMap_SetKeepsFirstPosition(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("a", 1).Set("b", 2).Set("c", 3)
	m.Set("a", 10)

	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("keys = %v", got)
	}
	if v, _ := m.Get("a"); v != 10 {
		t.Fatalf("a = %d, want 10", v)
	}
}

func TestOrderedMap_AddRejectsDuplicate(t *testing.T) {
	m := NewOrderedMap[string, int]()
	if err := m.Add("x", 1); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := m.Add("x", 2); err == nil {
		t.Fatal("expected error on duplicate add")
	}
	if v := m.Value("x"); v != 1 {
		t.Fatalf("x = %d, want 1", v)
	}
}

func TestOrderedMap_Delete(t *testing.T) {
	m := NewOrderedMap[string, int]()
	m.Set("a", 1).Set("b", 2).Set("c", 3)

	if !m.Delete("b") {
		t.Fatal("expected b to be deleted")
	}
	if m.Delete("b") {
		t.Fatal("second delete should report false")
	}
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Fatalf("keys = %v", got)
	}
	k, v, ok := m.At(1)
	if !ok || k != "c" || v != 3 {
		t.Fatalf("At(1) = %s %d %v", k, v, ok)
	}
}

func TestOrderedMap_NilReceiver(t *testing.T) {
	var m *OrderedMap[string, string]
	if m.Len() != 0 || m.Has("x") || m.Keys() != nil {
		t.Fatal("nil map should behave as empty")
	}
	for range m.All() {
		t.Fatal("nil map should not yield")
	}
	if c := m.Clone(); c == nil || c.Len() != 0 {
		t.Fatal("clone of nil should be empty")
	}
}

func TestOrderedMap_CloneIsIndependent(t *testing.T) {
	m := NewStringMap()
	m.Set("A", "1")
	c := m.Clone()
	c.Set("A", "2").Set("B", "3")

	if m.Value("A") != "1" || m.Has("B") {
		t.Fatalf("original mutated: %v", m.ToMap())
	}
}

func TestOrderedMap_AllAllowsMutation(t *testing.T) {
	m := NewStringMap()
	m.Set("a", "1").Set("b", "2")
	var seen []string
	for k := range m.All() {
		seen = append(seen, k)
		m.Set(k+k, "x")
	}
	if !reflect.DeepEqual(seen, []string{"a", "b"}) {
		t.Fatalf("seen = %v", seen)
	}
	if m.Len() != 4 {
		t.Fatalf("len = %d", m.Len())
	}
}

func TestParseEnviron(t *testing.T) {
	m := ParseEnviron([]string{"A=1", "B=x=y", "broken", "=nokey"})
	if m.Len() != 2 {
		t.Fatalf("len = %d", m.Len())
	}
	if m.Value("B") != "x=y" {
		t.Fatalf("B = %q", m.Value("B"))
	}
	if got := Environ(m); !reflect.DeepEqual(got, []string{"A=1", "B=x=y"}) {
		t.Fatalf("environ = %v", got)
	}
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{42, "42"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Stringify(tt.in); got != tt.want {
			t.Errorf("Stringify(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
