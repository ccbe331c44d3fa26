// Package record models typed record schemas and their instances.
//
// A Schema declares its fields once, in document order, through a Builder.
// Compile turns a Schema into an immutable Layout; Layout.New creates Record
// instances. A Record converts between its typed values and the ordered
// document tree (BuildModel / LoadModel), flattens to a metadata row and
// exposes the union of its field queries.
package record

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/query"
)

// Schema is implemented by every record style.
type Schema interface {
	Style() string
	ModelRoot() string
	// InitValues declares the fields in the order they appear in documents.
	InitValues(b *Builder) error
}

// Builder collects field declarations for one schema.
type Builder struct {
	style     string
	root      string
	fields    []*Field
	byName    map[string]*Field
	withdrawn []string
	overrides []override
}

type override struct {
	key string
	q   *query.Query
}

// Style returns the schema style being built.
func (b *Builder) Style() string { return b.style }

// ModelRoot returns the root element of the schema being built.
func (b *Builder) ModelRoot() string { return b.root }

// Add declares the next field. Names must be unique within the schema.
func (b *Builder) Add(kind Kind, name string, opts ...Option) (*Field, error) {
	if _, dup := b.byName[name]; dup {
		return nil, &domain.SchemaError{Style: b.style, Field: name, Reason: "duplicate field name"}
	}
	f, err := newField(kind, name, b, opts...)
	if err != nil {
		return nil, err
	}
	b.fields = append(b.fields, f)
	b.byName[name] = f
	return f, nil
}

// WithdrawQuery drops a field query from the record query set.
func (b *Builder) WithdrawQuery(key string) { b.withdrawn = append(b.withdrawn, key) }

// OverrideQuery replaces (or adds) a record query.
func (b *Builder) OverrideQuery(key string, q *query.Query) {
	b.overrides = append(b.overrides, override{key: key, q: q})
}

// Layout is a compiled schema.
type Layout struct {
	style   string
	root    string
	fields  []*Field
	index   map[string]int
	queries *query.Set
}

// Compile runs the schema declaration and checks it.
func Compile(s Schema) (*Layout, error) {
	b := &Builder{style: s.Style(), root: s.ModelRoot(), byName: make(map[string]*Field)}
	if b.root == "" {
		return nil, &domain.SchemaError{Style: b.style, Reason: "model root is required"}
	}
	if err := s.InitValues(b); err != nil {
		return nil, err
	}
	if len(b.fields) == 0 {
		return nil, &domain.SchemaError{Style: b.style, Reason: "no fields declared"}
	}

	l := &Layout{
		style:   b.style,
		root:    b.root,
		fields:  b.fields,
		index:   make(map[string]int, len(b.fields)),
		queries: query.NewSet(),
	}
	for i, f := range b.fields {
		l.index[f.name] = i
	}

	withdrawn := make(map[string]bool, len(b.withdrawn))
	for _, k := range b.withdrawn {
		withdrawn[k] = true
	}
	for _, f := range b.fields {
		fq := f.DefaultQueries()
		for _, k := range fq.Keys() {
			if withdrawn[k] {
				delete(withdrawn, k)
				continue
			}
			q, _ := fq.Get(k)
			if !l.queries.Add(k, q) {
				return nil, &domain.SchemaError{Style: b.style, Field: f.name, Reason: fmt.Sprintf("duplicate query %q", k)}
			}
		}
	}
	if len(withdrawn) > 0 {
		keys := make([]string, 0, len(withdrawn))
		for k := range withdrawn {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return nil, &domain.SchemaError{Style: b.style, Reason: fmt.Sprintf("cannot withdraw unknown queries %v", keys)}
	}
	for _, o := range b.overrides {
		l.queries.Put(o.key, o.q)
	}
	return l, nil
}

// Style returns the record style.
func (l *Layout) Style() string { return l.style }

// ModelRoot returns the document root element.
func (l *Layout) ModelRoot() string { return l.root }

// Fields returns the declarations in document order.
func (l *Layout) Fields() []*Field { return append([]*Field(nil), l.fields...) }

// Field looks up a declaration by name.
func (l *Layout) Field(name string) (*Field, bool) {
	i, ok := l.index[name]
	if !ok {
		return nil, false
	}
	return l.fields[i], true
}

// Queries returns a copy of the record query set.
func (l *Layout) Queries() *query.Set {
	out := query.NewSet()
	for _, k := range l.queries.Keys() {
		q, _ := l.queries.Get(k)
		out.Add(k, q.Clone())
	}
	return out
}

// New creates an instance holding the field defaults.
func (l *Layout) New() *Record {
	r := &Record{layout: l, values: make([]*Value, len(l.fields))}
	for i, f := range l.fields {
		r.values[i] = f.newValue()
	}
	return r
}

// Record is an instance of a schema.
type Record struct {
	layout *Layout
	name   string
	values []*Value
}

// New compiles s and creates an instance.
func New(s Schema) (*Record, error) {
	l, err := Compile(s)
	if err != nil {
		return nil, err
	}
	return l.New(), nil
}

// Layout returns the compiled schema.
func (r *Record) Layout() *Layout { return r.layout }

// Style returns the record style.
func (r *Record) Style() string { return r.layout.style }

// ModelRoot returns the document root element.
func (r *Record) ModelRoot() string { return r.layout.root }

// Name returns the record name, "" when unnamed.
func (r *Record) Name() string { return r.name }

// SetName names the record.
func (r *Record) SetName(name string) { r.name = name }

// Value returns the named field instance.
func (r *Record) Value(name string) (*Value, error) {
	i, ok := r.layout.index[name]
	if !ok {
		return nil, fmt.Errorf("%s has no field %q", r.layout.style, name)
	}
	return r.values[i], nil
}

// Values returns the field instances in document order.
func (r *Record) Values() []*Value { return append([]*Value(nil), r.values...) }

// Get returns the current value of a field.
func (r *Record) Get(name string) (any, error) {
	v, err := r.Value(name)
	if err != nil {
		return nil, err
	}
	return v.Get(), nil
}

// Set assigns one field.
func (r *Record) Set(name string, raw any) error {
	v, err := r.Value(name)
	if err != nil {
		return err
	}
	return v.Set(raw)
}

// SetValues assigns several fields in declaration order. Unknown names are
// rejected before anything is assigned; on a failing field the record is
// left unchanged.
func (r *Record) SetValues(values map[string]any) error {
	for k := range values {
		if _, ok := r.layout.index[k]; !ok {
			return fmt.Errorf("%s has no field %q", r.layout.style, k)
		}
	}
	staged := r.stage()
	for i, f := range r.layout.fields {
		raw, ok := values[f.name]
		if !ok {
			continue
		}
		if err := staged[i].Set(raw); err != nil {
			return err
		}
	}
	r.commit(staged)
	return nil
}

// Append adds a sub-record to a record-list field.
func (r *Record) Append(field string, values map[string]any) (*Record, error) {
	v, err := r.Value(field)
	if err != nil {
		return nil, err
	}
	return v.Append(values)
}

// BuildModel returns the document rooted at the model root.
func (r *Record) BuildModel() (*document.Tree, error) {
	content, err := r.BuildContent()
	if err != nil {
		return nil, err
	}
	doc := document.New()
	doc.Set(r.layout.root, content)
	return doc, nil
}

// BuildContent returns the document content below the model root. Unset
// optional fields are omitted.
func (r *Record) BuildContent() (*document.Tree, error) {
	content := document.New()
	for _, v := range r.values {
		lit, err := v.BuildModelValue()
		if err != nil {
			return nil, err
		}
		if lit == nil {
			if v.field.required {
				return nil, &domain.ValidationError{Field: v.field.name, Reason: "value is required"}
			}
			continue
		}
		if err := content.SetPath(v.field.modelPath, lit); err != nil {
			return nil, fmt.Errorf("%s: %w", v.field.name, err)
		}
	}
	return content, nil
}

// LoadModel populates the record from a document rooted at the model root.
func (r *Record) LoadModel(doc *document.Tree) error {
	raw, ok := doc.Get(r.layout.root)
	content, isTree := raw.(*document.Tree)
	if !ok || !isTree {
		return &domain.ConversionError{
			Field: r.layout.root,
			Kind:  "record",
			Input: doc.Keys(),
			Err:   fmt.Errorf("document has no %q root element", r.layout.root),
		}
	}
	return r.LoadContent(content)
}

// LoadContent populates the record from content below the model root. Absent
// fields take their defaults. Nothing is changed when any field fails.
func (r *Record) LoadContent(content *document.Tree) error {
	staged := r.stage()
	for _, v := range staged {
		raw, _ := content.Find(v.field.modelPath)
		if err := v.LoadModelValue(raw); err != nil {
			return err
		}
	}
	r.commit(staged)
	return nil
}

// LoadBytes decodes a JSON, XML or YAML document and loads it.
func (r *Record) LoadBytes(data []byte) error {
	doc, err := document.DecodeAny(data)
	if err != nil {
		return fmt.Errorf("decode %s model: %w", r.layout.style, err)
	}
	return r.LoadModel(doc)
}

// Metadata flattens the record into a row. The record name, when set, is
// stored under "name".
func (r *Record) Metadata() metadata.Row {
	row := metadata.Row{}
	if r.name != "" {
		row["name"] = r.name
	}
	for _, v := range r.values {
		for k, mv := range v.MetadataContribution() {
			if v.field.metaParent == "" {
				row[k] = mv
				continue
			}
			entries := row.Entries(k)
			if len(entries) == 0 {
				entries = []metadata.Row{{}}
				row[k] = entries
			}
			for ck, cv := range mv.([]metadata.Row)[0] {
				entries[0][ck] = cv
			}
		}
	}
	return row
}

// Queries returns the record query set.
func (r *Record) Queries() *query.Set { return r.layout.Queries() }

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	c := &Record{layout: r.layout, name: r.name, values: make([]*Value, len(r.values))}
	for i, v := range r.values {
		c.values[i] = &Value{field: v.field, val: cloneCanonical(v.val)}
	}
	return c
}

// stage copies the current values so a multi-field update can be dropped
// on failure. Set replaces values wholesale, so a shallow copy suffices.
func (r *Record) stage() []*Value {
	out := make([]*Value, len(r.values))
	for i, v := range r.values {
		out[i] = &Value{field: v.field, val: v.val}
	}
	return out
}

func (r *Record) commit(staged []*Value) {
	for i, v := range staged {
		r.values[i].val = v.val
	}
}

type definedSchema struct {
	style string
	root  string
	init  func(b *Builder) error
}

func (s definedSchema) Style() string               { return s.style }
func (s definedSchema) ModelRoot() string           { return s.root }
func (s definedSchema) InitValues(b *Builder) error { return s.init(b) }

// Define builds a Schema from a declaration function.
func Define(style, root string, init func(b *Builder) error) Schema {
	return definedSchema{style: style, root: root, init: init}
}
