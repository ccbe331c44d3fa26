package record

import (
	"fmt"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/query"
)

// Value is one field of a record instance: a declaration plus its current
// value. A rejected Set leaves the current value untouched.
type Value struct {
	field *Field
	val   any
}

// NewValue declares a standalone field on owner and returns an instance
// holding the field default.
func NewValue(kind Kind, name string, owner Owner, opts ...Option) (*Value, error) {
	f, err := newField(kind, name, owner, opts...)
	if err != nil {
		return nil, err
	}
	return f.newValue(), nil
}

func (f *Field) newValue() *Value {
	return &Value{field: f, val: cloneCanonical(f.def)}
}

// Field returns the declaration.
func (v *Value) Field() *Field { return v.field }

// Name returns the field name.
func (v *Value) Name() string { return v.field.name }

// Kind returns the field kind.
func (v *Value) Kind() Kind { return v.field.kind }

// Get returns the current canonical value, nil when unset.
func (v *Value) Get() any {
	if recs, ok := v.val.([]*Record); ok {
		return append([]*Record(nil), recs...)
	}
	return cloneCanonical(v.val)
}

// IsSet reports whether the value holds something.
func (v *Value) IsSet() bool { return !isEmpty(v.val) }

// Set coerces and validates raw, then stores it. nil clears the value unless
// the field is required.
func (v *Value) Set(raw any) error {
	c, err := v.field.coerce(raw)
	if err != nil {
		return err
	}
	if err := v.field.validate(c); err != nil {
		return err
	}
	v.val = c
	return nil
}

// BuildModelValue returns the document literal, nil when unset.
func (v *Value) BuildModelValue() (any, error) {
	if isEmpty(v.val) {
		return nil, nil
	}
	return v.field.literal(v.val)
}

// LoadModelValue sets the value from a document literal. nil or an empty list
// applies the field default, as an absent element does.
func (v *Value) LoadModelValue(raw any) error {
	if l, ok := raw.([]any); raw == nil || ok && len(l) == 0 {
		return v.Set(v.field.def)
	}
	return v.Set(raw)
}

// MetadataContribution returns the entries the value adds to a metadata row:
// nothing when the key is suppressed or the value is unset, {key: value}
// otherwise, nested as {parent: [{key: value}]} when a parent is declared.
func (v *Value) MetadataContribution() metadata.Row {
	key, ok := v.field.MetadataKey()
	if !ok || v.val == nil {
		return metadata.Row{}
	}
	mv := v.field.metadataValue(v.val)
	if p := v.field.metaParent; p != "" {
		return metadata.Row{p: []metadata.Row{{key: mv}}}
	}
	return metadata.Row{key: mv}
}

// DefaultQueries returns the predicates of the field.
func (v *Value) DefaultQueries() *query.Set { return v.field.DefaultQueries() }

// Records returns the sub-records of a record-list value.
func (v *Value) Records() []*Record {
	recs, _ := v.val.([]*Record)
	return append([]*Record(nil), recs...)
}

// Append builds a sub-record from fields and adds it to a record-list value.
func (v *Value) Append(fields map[string]any) (*Record, error) {
	if v.field.kind != RecordList {
		return nil, &domain.SchemaError{
			Style:  v.field.style,
			Field:  v.field.name,
			Reason: fmt.Sprintf("append on %s field", v.field.kind),
		}
	}
	rec := v.field.sub.New()
	if err := rec.SetValues(fields); err != nil {
		return nil, err
	}
	recs, _ := v.val.([]*Record)
	v.val = append(append([]*Record(nil), recs...), rec)
	return rec, nil
}

func cloneCanonical(c any) any {
	switch x := c.(type) {
	case []string:
		return append([]string(nil), x...)
	case []float64:
		return append([]float64(nil), x...)
	case []*Record:
		out := make([]*Record, len(x))
		for i, r := range x {
			out[i] = r.Clone()
		}
		return out
	default:
		return c
	}
}
