// Package registry maps style names to implementations.
//
// A Registry is populated once at process start and then passed explicitly to
// whatever needs to resolve styles. Entries are either loaded (an
// implementation is available) or failed (registration was attempted and the
// cause is retained for diagnostics).
package registry

import (
	"sort"
	"sync"

	"github.com/kailas-cloud/recordex/internal/domain"
)

// Status tags the outcome of a lookup.
type Status int

// Lookup outcomes.
const (
	NotFound Status = iota
	Loaded
	LoadFailed
)

func (s Status) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case LoadFailed:
		return "load_failed"
	default:
		return "not_found"
	}
}

// Result is the tagged outcome of Lookup.
type Result[T any] struct {
	Status Status
	Value  T
	Cause  error
}

// Registry holds loaded and failed styles for one family (query, kind, record, store).
type Registry[T any] struct {
	name string

	mu     sync.RWMutex
	loaded map[string]T
	failed map[string]error
}

// New creates an empty registry. name labels errors ("query", "record", ...).
func New[T any](name string) *Registry[T] {
	return &Registry[T]{
		name:   name,
		loaded: make(map[string]T),
		failed: make(map[string]error),
	}
}

// Name returns the registry label.
func (r *Registry[T]) Name() string { return r.name }

// Register marks style as loaded with impl. A previous failure for the same style is cleared.
func (r *Registry[T]) Register(style string, impl T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failed, style)
	r.loaded[style] = impl
}

// Fail records that style could not be initialized.
func (r *Registry[T]) Fail(style string, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.loaded, style)
	r.failed[style] = cause
}

// Lookup returns the tagged outcome for style.
func (r *Registry[T]) Lookup(style string) Result[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if impl, ok := r.loaded[style]; ok {
		return Result[T]{Status: Loaded, Value: impl}
	}
	if cause, ok := r.failed[style]; ok {
		return Result[T]{Status: LoadFailed, Cause: cause}
	}
	return Result[T]{Status: NotFound}
}

// Resolve returns the implementation for style, or an *UnknownStyleError /
// *StyleLoadError.
func (r *Registry[T]) Resolve(style string) (T, error) {
	res := r.Lookup(style)
	switch res.Status {
	case Loaded:
		return res.Value, nil
	case LoadFailed:
		var zero T
		return zero, &domain.StyleLoadError{Registry: r.name, Style: style, Cause: res.Cause}
	default:
		var zero T
		return zero, &domain.UnknownStyleError{Registry: r.name, Style: style}
	}
}

// LoadedStyleNames returns the sorted names of loaded styles.
func (r *Registry[T]) LoadedStyleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.loaded)
}

// FailedStyleNames returns the sorted names of failed styles.
func (r *Registry[T]) FailedStyleNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.failed)
}

// FailedStyles returns a copy of the failure causes keyed by style.
func (r *Registry[T]) FailedStyles() map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]error, len(r.failed))
	for k, v := range r.failed {
		out[k] = v
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
