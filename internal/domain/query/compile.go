package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/convert"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	"github.com/kailas-cloud/recordex/internal/domain/unit"
)

// BuildFilter adds the document filter for value to acc. A nil value or an
// empty candidate list adds nothing. prefix is prepended verbatim to the path.
func (q *Query) BuildFilter(acc filter.Accumulator, value any, prefix string) error {
	path, err := q.Path()
	if err != nil {
		return err
	}
	if value == nil {
		return nil
	}
	cands, err := q.candidates(value, path)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		return nil
	}
	path = prefix + path

	switch q.style {
	case StrContains:
		clauses := make([]filter.Fragment, len(cands))
		for i, c := range cands {
			clauses[i] = filter.Regex(path, regexp.QuoteMeta(c.(string)))
		}
		acc.Add(filter.And(clauses...))
	case ListContains:
		clauses := make([]filter.Fragment, len(cands))
		for i, c := range cands {
			clauses[i] = filter.Eq(path, c)
		}
		acc.Add(filter.And(clauses...))
	case FloatMatch:
		if q.unit != "" {
			path += ".value"
		}
		clauses := make([]filter.Fragment, len(cands))
		for i, c := range cands {
			clauses[i] = filter.InRange(path, filter.Around(c.(float64), Tolerance))
		}
		acc.Add(filter.Or(clauses...))
	default:
		acc.Add(filter.In(path, cands))
	}
	return nil
}

// Mask evaluates the predicate against every row of t. A nil value or an
// empty candidate list selects all rows.
func (q *Query) Mask(t metadata.Table, value any) ([]bool, error) {
	name, err := q.Name()
	if err != nil {
		return nil, err
	}
	if value == nil {
		return t.All(), nil
	}
	cands, err := q.candidates(value, name)
	if err != nil {
		return nil, err
	}
	if len(cands) == 0 {
		return t.All(), nil
	}
	mask := make([]bool, t.Len())
	for i, row := range t.Rows() {
		mask[i] = q.matchRow(row, name, cands)
	}
	return mask, nil
}

// Match evaluates the predicate against a single row.
func (q *Query) Match(row metadata.Row, value any) (bool, error) {
	m, err := q.Mask(metadata.NewTable(row), value)
	if err != nil {
		return false, err
	}
	return m[0], nil
}

func (q *Query) matchRow(row metadata.Row, name string, cands []any) bool {
	if q.parent == "" {
		field, ok := row[name]
		if !ok || field == nil {
			return false
		}
		if q.style.containment() {
			for _, c := range cands {
				if !q.contains(field, c) {
					return false
				}
			}
			return true
		}
		return q.equalsAny(field, cands)
	}

	entries := row.Entries(q.parent)
	if q.style.containment() {
		for _, c := range cands {
			found := metadata.AnyEntry(entries, func(e metadata.Row) bool {
				field, ok := e[name]
				return ok && field != nil && q.contains(field, c)
			})
			if !found {
				return false
			}
		}
		return true
	}
	return metadata.AnyEntry(entries, func(e metadata.Row) bool {
		field, ok := e[name]
		return ok && field != nil && q.equalsAny(field, cands)
	})
}

// contains checks one candidate against a stored field.
func (q *Query) contains(field, cand any) bool {
	if q.style == ListContains {
		for _, el := range convert.AsList(field) {
			if convert.Equal(el, cand) {
				return true
			}
		}
		return false
	}
	s, err := convert.String(field)
	if err != nil || s == "" {
		return false
	}
	return strings.Contains(s, cand.(string))
}

// equalsAny compares a stored field with the candidate set. Stored values
// are coerced like candidates; values that fail coercion never match.
func (q *Query) equalsAny(field any, cands []any) bool {
	stored, err := q.coerce(field)
	if err != nil {
		return false
	}
	for _, c := range cands {
		if stored == c {
			return true
		}
	}
	return false
}

func (q *Query) candidates(value any, field string) ([]any, error) {
	raw := convert.AsList(value)
	out := make([]any, len(raw))
	for i, r := range raw {
		c, err := q.coerce(r)
		if err != nil {
			return nil, &domain.ConversionError{Field: field, Kind: string(q.style), Input: r, Err: err}
		}
		out[i] = c
	}
	return out, nil
}

// coerce maps a candidate or stored value to the comparable form of the style.
func (q *Query) coerce(v any) (any, error) {
	switch q.style {
	case StrMatch, StrContains:
		return convert.String(v)
	case ListContains:
		if v == nil {
			return nil, fmt.Errorf("nil candidate")
		}
		return v, nil
	case IntMatch:
		return convert.Int(v)
	case FloatMatch:
		if q.unit != "" {
			return unit.FromModel(v, q.unit)
		}
		return convert.Float(v)
	case DateMatch:
		return convert.DateString(v)
	case BoolMatch:
		return convert.Bool(v)
	default:
		return nil, fmt.Errorf("unsupported style %q", q.style)
	}
}
