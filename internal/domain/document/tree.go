// Package document implements the ordered hierarchical model that records are
// built into and loaded from.
//
// A Tree maps keys to scalars (nil, bool, int64, float64, string), nested
// Trees, or lists ([]any of scalars or Trees). Key order is insertion order
// and is preserved by every codec.
package document

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// Tree is an ordered key/value mapping.
type Tree struct {
	keys []string
	vals map[string]any
}

// New returns an empty Tree.
func New() *Tree {
	return &Tree{vals: make(map[string]any)}
}

// Keys returns the keys in insertion order.
func (t *Tree) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of keys.
func (t *Tree) Len() int { return len(t.keys) }

// Get returns the value stored directly under key.
func (t *Tree) Get(key string) (any, bool) {
	v, ok := t.vals[key]
	return v, ok
}

// Set stores v under key. New keys are appended, existing keys keep their position.
func (t *Tree) Set(key string, v any) {
	if t.vals == nil {
		t.vals = make(map[string]any)
	}
	if _, ok := t.vals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.vals[key] = Normalize(v)
}

// Delete removes key.
func (t *Tree) Delete(key string) {
	if _, ok := t.vals[key]; !ok {
		return
	}
	delete(t.vals, key)
	for i, k := range t.keys {
		if k == key {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

// Find resolves a dot-delimited path. Every intermediate element must be a Tree.
func (t *Tree) Find(path string) (any, bool) {
	cur := t
	parts := strings.Split(path, ".")
	for i, p := range parts {
		v, ok := cur.Get(p)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		next, ok := v.(*Tree)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// SetPath stores v at a dot-delimited path, creating intermediate Trees.
func (t *Tree) SetPath(path string, v any) error {
	parts := strings.Split(path, ".")
	cur := t
	for _, p := range parts[:len(parts)-1] {
		existing, ok := cur.Get(p)
		if !ok {
			next := New()
			cur.Set(p, next)
			cur = next
			continue
		}
		next, ok := existing.(*Tree)
		if !ok {
			return fmt.Errorf("path %q: element %q is not a tree", path, p)
		}
		cur = next
	}
	cur.Set(parts[len(parts)-1], v)
	return nil
}

// Equal reports deep equality including key order.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if len(t.keys) != len(o.keys) {
		return false
	}
	for i, k := range t.keys {
		if o.keys[i] != k {
			return false
		}
		if !equalValue(t.vals[k], o.vals[k]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (t *Tree) Clone() *Tree {
	out := New()
	for _, k := range t.keys {
		out.Set(k, cloneValue(t.vals[k]))
	}
	return out
}

// AsList returns v as a list: nil stays nil, lists are returned as-is and any
// other value becomes a one-element list. Encodings without a list marker (XML)
// decode single-entry lists as the bare entry.
func AsList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	default:
		return []any{x}
	}
}

// Normalize converts Go values into the Tree value set.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil, bool, int64, float64, string, *Tree:
		return x
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case int16:
		return int64(x)
	case int8:
		return int64(x)
	case uint:
		return int64(x)
	case uint32:
		return int64(x)
	case uint16:
		return int64(x)
	case uint8:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.Format(time.RFC3339)
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = Normalize(e)
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []int64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []*Tree:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		tr := New()
		for _, k := range keys {
			tr.Set(k, x[k])
		}
		return tr
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func equalValue(a, b any) bool {
	switch x := a.(type) {
	case *Tree:
		y, ok := b.(*Tree)
		return ok && x.Equal(y)
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !equalValue(x[i], y[i]) {
				return false
			}
		}
		return true
	case float64:
		y, ok := b.(float64)
		return ok && (x == y || (math.IsNaN(x) && math.IsNaN(y)))
	default:
		return a == b
	}
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case *Tree:
		return x.Clone()
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return x
	}
}
