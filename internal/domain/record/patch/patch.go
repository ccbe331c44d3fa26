// Package patch describes partial record updates.
package patch

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/recordex/internal/domain/record"
)

// Patch is a partial record update.
// Fields not named are unchanged. A cleared field is unset.
type Patch struct {
	set   map[string]any
	clear []string
}

// New validates and creates a Patch. At least one field must be provided and
// no field may be both set and cleared.
func New(set map[string]any, clear ...string) (Patch, error) {
	if len(set) == 0 && len(clear) == 0 {
		return Patch{}, fmt.Errorf("at least one field must be provided")
	}
	cleared := make([]string, 0, len(clear))
	seen := make(map[string]bool, len(clear))
	for _, k := range clear {
		if _, ok := set[k]; ok {
			return Patch{}, fmt.Errorf("field %q is both set and cleared", k)
		}
		if !seen[k] {
			seen[k] = true
			cleared = append(cleared, k)
		}
	}
	sort.Strings(cleared)
	return Patch{set: set, clear: cleared}, nil
}

// Set returns the assigned fields.
func (p Patch) Set() map[string]any { return p.set }

// Cleared returns the cleared field names, sorted.
func (p Patch) Cleared() []string { return p.clear }

// Fields returns every field the patch touches, sorted.
func (p Patch) Fields() []string {
	out := make([]string, 0, len(p.set)+len(p.clear))
	for k := range p.set {
		out = append(out, k)
	}
	out = append(out, p.clear...)
	sort.Strings(out)
	return out
}

// Apply assigns the patch to r. Nothing is changed when any field fails.
func (p Patch) Apply(r *record.Record) error {
	values := make(map[string]any, len(p.set)+len(p.clear))
	for k, v := range p.set {
		values[k] = v
	}
	for _, k := range p.clear {
		values[k] = nil
	}
	return r.SetValues(values)
}
