package value

import (
	"slices"
	"strconv"
	"strings"
)

// Map is an ordered mapping of string keys to values. The zero Map is empty
// and ready to use. Empty maps hold no backing storage so that two empty maps
// are structurally identical.
type Map struct {
	keys    []string
	entries map[string]Value
}

// NewMap returns an empty map.
func NewMap() *Map { return &Map{} }

// MapOf builds a map from alternating key/value pairs.
func MapOf(pairs ...any) *Map {
	if len(pairs)%2 != 0 {
		panic("value.MapOf: odd number of arguments")
	}
	m := NewMap()
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			panic("value.MapOf: key must be a string")
		}
		v, err := FromInterface(pairs[i+1])
		if err != nil {
			panic(err)
		}
		m.Set(key, v)
	}
	return m
}

// Len returns the number of entries. A nil map has length zero.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil || m.entries == nil {
		return Value{}, false
	}
	v, ok := m.entries[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. Existing keys keep their position; new keys are appended.
func (m *Map) Set(key string, v Value) {
	if m.entries == nil {
		m.entries = make(map[string]Value)
	}
	if _, exists := m.entries[key]; !exists {
		m.keys = append(m.keys, key)
	}
	m.entries[key] = v
}

// Delete removes key and reports whether it was present.
func (m *Map) Delete(key string) bool {
	if m == nil || m.entries == nil {
		return false
	}
	if _, exists := m.entries[key]; !exists {
		return false
	}
	delete(m.entries, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
	if len(m.keys) == 0 {
		m.keys = nil
		m.entries = nil
	}
	return true
}

// Keys returns a copy of the keys in order.
func (m *Map) Keys() []string {
	if m.Len() == 0 {
		return nil
	}
	return slices.Clone(m.keys)
}

// Range calls fn for each entry in order until fn returns false.
func (m *Map) Range(fn func(key string, v Value) bool) {
	if m == nil {
		return
	}
	for _, k := range m.keys {
		if !fn(k, m.entries[k]) {
			return
		}
	}
}

// Clone returns a deep copy. Cloning a nil map yields an empty map.
func (m *Map) Clone() *Map {
	out := NewMap()
	m.Range(func(k string, v Value) bool {
		out.Set(k, v.Clone())
		return true
	})
	return out
}

// Merge applies a shallow union of other onto m: every key of other is set
// on m, existing keys keep their position.
func (m *Map) Merge(other *Map) {
	other.Range(func(k string, v Value) bool {
		m.Set(k, v.Clone())
		return true
	})
}

// Reconcile replaces the content of m with other. Keys present in both keep
// their current position, keys missing from other are dropped, and keys new
// in other are appended in other's order.
func (m *Map) Reconcile(other *Map) {
	next := NewMap()
	m.Range(func(k string, _ Value) bool {
		if v, ok := other.Get(k); ok {
			next.Set(k, v.Clone())
		}
		return true
	})
	other.Range(func(k string, v Value) bool {
		if !next.Has(k) {
			next.Set(k, v.Clone())
		}
		return true
	})
	*m = *next
}

// Equal reports whether both maps hold equal entries in the same order.
func (m *Map) Equal(o *Map) bool {
	if m.Len() != o.Len() {
		return false
	}
	for i, k := range m.keysOrNil() {
		if o.keys[i] != k {
			return false
		}
		if !m.entries[k].Equal(o.entries[k]) {
			return false
		}
	}
	return true
}

func (m *Map) keysOrNil() []string {
	if m == nil {
		return nil
	}
	return m.keys
}

// String renders the map for logs and error messages.
func (m *Map) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	m.Range(func(k string, v Value) bool {
		if !first {
			sb.WriteString(", ")
		}
		first = false
		sb.WriteString(strconv.Quote(k))
		sb.WriteString(": ")
		sb.WriteString(v.String())
		return true
	})
	sb.WriteByte('}')
	return sb.String()
}
