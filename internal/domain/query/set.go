package query

import (
	"fmt"

	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
)

// Set is an ordered mapping of logical field names to queries.
type Set struct {
	keys []string
	m    map[string]*Query
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{m: make(map[string]*Query)}
}

// Add binds key to q. It reports false when key is already taken.
func (s *Set) Add(key string, q *Query) bool {
	if _, ok := s.m[key]; ok {
		return false
	}
	s.keys = append(s.keys, key)
	s.m[key] = q
	return true
}

// Put binds key to q, replacing any existing entry in place.
func (s *Set) Put(key string, q *Query) {
	if _, ok := s.m[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.m[key] = q
}

// Delete removes key. It reports whether it was present.
func (s *Set) Delete(key string) bool {
	if _, ok := s.m[key]; !ok {
		return false
	}
	delete(s.m, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the query bound to key.
func (s *Set) Get(key string) (*Query, bool) {
	q, ok := s.m[key]
	return q, ok
}

// Keys returns the keys in insertion order.
func (s *Set) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of queries.
func (s *Set) Len() int { return len(s.keys) }

// BuildFilter compiles every key present in values into acc, in set order.
func (s *Set) BuildFilter(acc filter.Accumulator, values map[string]any, prefix string) error {
	if err := s.checkKeys(values); err != nil {
		return err
	}
	for _, k := range s.keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		if err := s.m[k].BuildFilter(acc, v, prefix); err != nil {
			return fmt.Errorf("query %s: %w", k, err)
		}
	}
	return nil
}

// Mask ANDs the masks of every key present in values.
func (s *Set) Mask(t metadata.Table, values map[string]any) ([]bool, error) {
	if err := s.checkKeys(values); err != nil {
		return nil, err
	}
	mask := t.All()
	for _, k := range s.keys {
		v, ok := values[k]
		if !ok {
			continue
		}
		m, err := s.m[k].Mask(t, v)
		if err != nil {
			return nil, fmt.Errorf("query %s: %w", k, err)
		}
		mask = metadata.And(mask, m)
	}
	return mask, nil
}

func (s *Set) checkKeys(values map[string]any) error {
	for k := range values {
		if _, ok := s.m[k]; !ok {
			return fmt.Errorf("no query named %q", k)
		}
	}
	return nil
}
