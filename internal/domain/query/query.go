// Package query compiles field predicates for two backends: document-store
// filter fragments (BuildFilter) and boolean row masks over a metadata table
// (Mask).
//
// A Query carries its bound parameters: the metadata column name, an
// optional parent list column, the document path and an optional unit.
// BuildFilter needs the path, Mask needs the name; compiling without them
// fails with a *domain.UnboundParameterError.
package query

import (
	"github.com/kailas-cloud/recordex/internal/domain"
)

// Query is one parametrized predicate.
type Query struct {
	style       Style
	name        string
	parent      string
	path        string
	unit        string
	description string
}

// Option binds a Query parameter at load time.
type Option func(*Query)

// WithName sets the metadata column.
func WithName(name string) Option { return func(q *Query) { q.name = name } }

// WithParent sets the enclosing parent-list column.
func WithParent(parent string) Option { return func(q *Query) { q.parent = parent } }

// WithPath sets the dot-delimited document path.
func WithPath(path string) Option { return func(q *Query) { q.path = path } }

// WithUnit sets the declared unit for float_match.
func WithUnit(unit string) Option { return func(q *Query) { q.unit = unit } }

// WithDescription overrides the style description.
func WithDescription(desc string) Option { return func(q *Query) { q.description = desc } }

// New creates a query of a known style.
func New(style Style, opts ...Option) *Query {
	q := &Query{style: style}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Load resolves style by name and creates a query.
func Load(style string, opts ...Option) (*Query, error) {
	s, err := ParseStyle(style)
	if err != nil {
		return nil, err
	}
	return New(s, opts...), nil
}

// Style returns the query style.
func (q *Query) Style() Style { return q.style }

// Description returns the override or the style description.
func (q *Query) Description() string {
	if q.description != "" {
		return q.description
	}
	return q.style.Description()
}

// Name returns the metadata column.
func (q *Query) Name() (string, error) {
	if q.name == "" {
		return "", &domain.UnboundParameterError{Style: string(q.style), Param: "name"}
	}
	return q.name, nil
}

// Path returns the document path.
func (q *Query) Path() (string, error) {
	if q.path == "" {
		return "", &domain.UnboundParameterError{Style: string(q.style), Param: "path"}
	}
	return q.path, nil
}

// Parent returns the parent-list column, "" when unset.
func (q *Query) Parent() string { return q.parent }

// Unit returns the declared unit, "" when unset.
func (q *Query) Unit() string { return q.unit }

// SetName binds the metadata column; "" unsets it.
func (q *Query) SetName(name string) { q.name = name }

// SetParent binds the parent-list column; "" unsets it.
func (q *Query) SetParent(parent string) { q.parent = parent }

// SetPath binds the document path; "" unsets it.
func (q *Query) SetPath(path string) { q.path = path }

// SetDescription overrides the description; "" restores the default.
func (q *Query) SetDescription(desc string) { q.description = desc }

// Clone returns an independent copy.
func (q *Query) Clone() *Query {
	c := *q
	return &c
}
