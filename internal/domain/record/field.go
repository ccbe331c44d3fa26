package record

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/query"
	"github.com/kailas-cloud/recordex/internal/domain/unit"
)

// Owner is the schema a field is declared on.
type Owner interface {
	Style() string
	ModelRoot() string
}

// Field is the immutable declaration of one record field.
type Field struct {
	kind        Kind
	name        string
	style       string
	root        string
	modelPath   string
	metaKey     string
	noMeta      bool
	metaParent  string
	def         any
	required    bool
	unit        string
	allowed     []any
	description string
	subSchema   Schema
	sub         *Layout
}

// Option configures a field declaration.
type Option func(*Field)

// WithDefault sets the value used when a document omits the field.
func WithDefault(v any) Option { return func(f *Field) { f.def = v } }

// Required rejects unset values.
func Required() Option { return func(f *Field) { f.required = true } }

// WithMetadataKey renames the metadata column. Defaults to the field name.
func WithMetadataKey(key string) Option { return func(f *Field) { f.metaKey = key } }

// WithoutMetadata leaves the field out of metadata rows.
func WithoutMetadata() Option { return func(f *Field) { f.noMeta = true } }

// WithMetadataParent nests the metadata column inside a parent list entry.
func WithMetadataParent(parent string) Option { return func(f *Field) { f.metaParent = parent } }

// WithModelPath sets the dot path below the model root. Defaults to the field name.
func WithModelPath(path string) Option { return func(f *Field) { f.modelPath = path } }

// WithUnit declares the unit of a float field.
func WithUnit(u string) Option { return func(f *Field) { f.unit = u } }

// WithAllowed restricts values to the given set.
func WithAllowed(values ...any) Option {
	return func(f *Field) { f.allowed = append([]any(nil), values...) }
}

// WithDescription documents the field.
func WithDescription(desc string) Option { return func(f *Field) { f.description = desc } }

// WithSubSchema sets the schema of a record-list field.
func WithSubSchema(s Schema) Option { return func(f *Field) { f.subSchema = s } }

func newField(kind Kind, name string, owner Owner, opts ...Option) (*Field, error) {
	f := &Field{kind: kind, name: name}
	if owner != nil {
		f.style, f.root = owner.Style(), owner.ModelRoot()
	}
	bad := func(format string, args ...any) error {
		return &domain.SchemaError{Style: f.style, Field: name, Reason: fmt.Sprintf(format, args...)}
	}
	if strings.TrimSpace(name) == "" {
		return nil, bad("field name is required")
	}
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, bad("unknown kind %q", kind)
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.modelPath == "" {
		f.modelPath = name
	}
	if f.metaKey == "" {
		f.metaKey = name
	}

	if f.unit != "" {
		if kind != Float {
			return nil, bad("unit %q on %s field", f.unit, kind)
		}
		if _, err := unit.Lookup(f.unit); err != nil {
			return nil, bad("%v", err)
		}
	}
	if kind == RecordList {
		if f.subSchema == nil {
			return nil, bad("record field needs a sub-schema")
		}
		sub, err := Compile(f.subSchema)
		if err != nil {
			return nil, bad("sub-schema: %v", err)
		}
		f.sub = sub
		if len(f.allowed) > 0 {
			return nil, bad("record field cannot restrict values")
		}
	} else if f.subSchema != nil {
		return nil, bad("sub-schema on %s field", kind)
	}

	for i, a := range f.allowed {
		c, err := f.coerce(a)
		if err != nil || c == nil {
			return nil, bad("allowed value %#v: %v", a, err)
		}
		f.allowed[i] = c
	}
	if f.def != nil {
		c, err := f.coerce(f.def)
		if err != nil {
			return nil, bad("default: %v", err)
		}
		if err := f.validate(c); err != nil {
			return nil, bad("default: %v", err)
		}
		f.def = c
	}
	return f, nil
}

// validate applies the required and allowed-value rules to a coerced value.
func (f *Field) validate(c any) error {
	if isEmpty(c) {
		if f.required {
			return &domain.ValidationError{Field: f.name, Reason: "value is required"}
		}
		return nil
	}
	if len(f.allowed) == 0 {
		return nil
	}
	for _, a := range f.allowed {
		if f.same(a, c) {
			return nil
		}
	}
	return &domain.ValidationError{Field: f.name, Reason: fmt.Sprintf("%v is not an allowed value", c)}
}

func isEmpty(c any) bool {
	switch x := c.(type) {
	case nil:
		return true
	case []*Record:
		return len(x) == 0
	default:
		return false
	}
}

// Kind returns the field kind.
func (f *Field) Kind() Kind { return f.kind }

// Name returns the field name.
func (f *Field) Name() string { return f.name }

// ModelPath returns the dot path below the model root.
func (f *Field) ModelPath() string { return f.modelPath }

// Path returns the full document path including the model root.
func (f *Field) Path() string {
	if f.root == "" {
		return f.modelPath
	}
	return f.root + "." + f.modelPath
}

// MetadataKey returns the metadata column and whether the field has one.
func (f *Field) MetadataKey() (string, bool) {
	if f.noMeta {
		return "", false
	}
	return f.metaKey, true
}

// MetadataParent returns the enclosing parent list column, "" when unset.
func (f *Field) MetadataParent() string { return f.metaParent }

// Default returns the coerced default value, nil when unset.
func (f *Field) Default() any { return f.def }

// IsRequired reports whether unset values are rejected.
func (f *Field) IsRequired() bool { return f.required }

// Unit returns the declared unit of a float field.
func (f *Field) Unit() string { return f.unit }

// Allowed returns the allowed value set, nil when unrestricted.
func (f *Field) Allowed() []any { return append([]any(nil), f.allowed...) }

// Description returns the field description.
func (f *Field) Description() string { return f.description }

// SubLayout returns the compiled sub-schema of a record-list field.
func (f *Field) SubLayout() *Layout { return f.sub }

// DefaultQueries returns the predicates the field contributes to its record.
func (f *Field) DefaultQueries() *query.Set {
	set := query.NewSet()
	if f.kind == RecordList {
		subRoot := f.sub.ModelRoot() + "."
		for _, key := range f.sub.queries.Keys() {
			q, _ := f.sub.queries.Get(key)
			c := q.Clone()
			if f.noMeta {
				c.SetParent("")
			} else {
				c.SetParent(f.metaKey)
			}
			if p, err := q.Path(); err == nil {
				c.SetPath(f.Path() + "." + strings.TrimPrefix(p, subRoot))
			}
			set.Add(key, c)
		}
		return set
	}

	style, ok := f.kind.QueryStyle()
	if !ok {
		return set
	}
	name := f.metaKey
	if f.noMeta {
		name = ""
	}
	verb := "matches a given value"
	if style == query.StrContains || style == query.ListContains {
		verb = "contains the given values"
	}
	set.Add(f.name, query.New(style,
		query.WithName(name),
		query.WithParent(f.metaParent),
		query.WithPath(f.Path()),
		query.WithUnit(f.unit),
		query.WithDescription(fmt.Sprintf("Return only the records where %s %s", f.name, verb)),
	))
	return set
}
