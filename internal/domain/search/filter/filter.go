// Package filter builds document-store filter fragments.
//
// Fragments use the operators $in, $regex, $gte/$lte (and $gt/$lt), $and and
// $or. They are collected into an Accumulator, which is either a top-level
// mapping (Doc) or an ordered list of fragments (List).
package filter

import (
	"fmt"
	"sort"
)

// Operators.
const (
	OpIn    = "$in"
	OpRegex = "$regex"
	OpGT    = "$gt"
	OpGTE   = "$gte"
	OpLT    = "$lt"
	OpLTE   = "$lte"
	OpAnd   = "$and"
	OpOr    = "$or"
)

// Fragment is one unit of a filter expression.
type Fragment map[string]any

// Accumulator collects fragments.
type Accumulator interface {
	Add(f Fragment)
}

// Doc is a top-level filter mapping. Keys already present are not
// overwritten: the new clause is moved under $and instead.
type Doc map[string]any

// Add merges f into d.
func (d Doc) Add(f Fragment) {
	for _, k := range sortedKeys(f) {
		v := f[k]
		if k == OpAnd {
			d[OpAnd] = append(Fragments(d[OpAnd]), Fragments(v)...)
			continue
		}
		if _, taken := d[k]; taken {
			d[OpAnd] = append(Fragments(d[OpAnd]), Fragment{k: v})
			continue
		}
		d[k] = v
	}
}

// List is an ordered list of fragments, one per compiled query.
type List []Fragment

// Add appends f.
func (l *List) Add(f Fragment) { *l = append(*l, f) }

// Fragment folds the list into a single fragment: empty for no clauses, the
// clause itself for one, $and otherwise.
func (l List) Fragment() Fragment {
	switch len(l) {
	case 0:
		return Fragment{}
	case 1:
		return l[0]
	default:
		return Fragment{OpAnd: []Fragment(l)}
	}
}

// In matches path against any of values.
func In(path string, values []any) Fragment {
	return Fragment{path: Fragment{OpIn: values}}
}

// Regex matches path against pattern.
func Regex(path, pattern string) Fragment {
	return Fragment{path: Fragment{OpRegex: pattern}}
}

// Eq matches path exactly. For list fields this is element membership.
func Eq(path string, value any) Fragment {
	return Fragment{path: value}
}

// InRange matches path inside r.
func InRange(path string, r Range) Fragment {
	return Fragment{path: r.Fragment()}
}

// And requires every clause.
func And(clauses ...Fragment) Fragment {
	return Fragment{OpAnd: clauses}
}

// Or requires at least one clause.
func Or(clauses ...Fragment) Fragment {
	return Fragment{OpOr: clauses}
}

// Fragments reads a $and / $or operand back as a fragment slice.
func Fragments(v any) []Fragment {
	switch x := v.(type) {
	case []Fragment:
		return x
	case []any:
		out := make([]Fragment, 0, len(x))
		for _, e := range x {
			switch f := e.(type) {
			case Fragment:
				out = append(out, f)
			case map[string]any:
				out = append(out, Fragment(f))
			}
		}
		return out
	case []map[string]any:
		out := make([]Fragment, len(x))
		for i, e := range x {
			out[i] = Fragment(e)
		}
		return out
	case Fragment:
		return []Fragment{x}
	case map[string]any:
		return []Fragment{Fragment(x)}
	default:
		return nil
	}
}

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range.
// At least one boundary required. gt/gte and lt/lte are mutually exclusive.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	if gt == nil && gte == nil && lt == nil && lte == nil {
		return Range{}, fmt.Errorf("at least one range boundary is required")
	}
	if gt != nil && gte != nil {
		return Range{}, fmt.Errorf("cannot specify both gt and gte")
	}
	if lt != nil && lte != nil {
		return Range{}, fmt.Errorf("cannot specify both lt and lte")
	}
	return Range{gt: gt, gte: gte, lt: lt, lte: lte}, nil
}

// Around returns the closed window [c-eps, c+eps].
func Around(c, eps float64) Range {
	lo, hi := c-eps, c+eps
	return Range{gte: &lo, lte: &hi}
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies every bound.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && !(v > *r.gt):
		return false
	case r.gte != nil && !(v >= *r.gte):
		return false
	case r.lt != nil && !(v < *r.lt):
		return false
	case r.lte != nil && !(v <= *r.lte):
		return false
	}
	return true
}

// Fragment renders the bounds as operator entries.
func (r Range) Fragment() Fragment {
	f := Fragment{}
	if r.gt != nil {
		f[OpGT] = *r.gt
	}
	if r.gte != nil {
		f[OpGTE] = *r.gte
	}
	if r.lt != nil {
		f[OpLT] = *r.lt
	}
	if r.lte != nil {
		f[OpLTE] = *r.lte
	}
	return f
}

func sortedKeys(f Fragment) []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
