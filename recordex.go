// Package recordex defines typed record schemas and compiles field queries
// into document-store filters and tabular row masks.
//
// A Catalog is the explicit context object: it holds the registries that
// resolve query styles, value kinds, record styles and storage drivers.
//
//	cat := recordex.New(recordex.WithSchemas(schemas.All()...))
//	rec, _ := cat.LoadRecord("album")
//	_ = rec.SetValues(map[string]any{"album": "Abbey Road"})
//	database, _ := cat.Open(ctx, recordex.LocalStorage("data", "json"))
//	defer database.Close()
//	name, _ := database.Save(ctx, rec, false)
package recordex

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/query"
	"github.com/kailas-cloud/recordex/internal/domain/record"
	"github.com/kailas-cloud/recordex/internal/domain/registry"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	"github.com/kailas-cloud/recordex/internal/schemas"
)

// Re-exported domain types.
type (
	Record   = record.Record
	Layout   = record.Layout
	Schema   = record.Schema
	Value    = record.Value
	Owner    = record.Owner
	Query    = query.Query
	QuerySet = query.Set
	Row      = metadata.Row
	Table    = metadata.Table
	Doc      = filter.Doc
	List     = filter.List
	Fragment = filter.Fragment
)

// Catalog resolves styles by name.
type Catalog struct {
	queries *registry.Registry[query.Style]
	kinds   *registry.Registry[record.Kind]
	records *registry.Registry[*record.Layout]
	stores  *registry.Registry[StoreFactory]
	logger  *zap.Logger
}

// New creates a catalog with every query style, value kind and storage
// driver registered, plus the bundled record schemas unless
// WithoutBundledSchemas is given.
func New(opts ...Option) *Catalog {
	cfg := &catalogConfig{bundled: true}
	for _, o := range opts {
		o.apply(cfg)
	}

	c := &Catalog{
		queries: registry.New[query.Style]("query"),
		kinds:   registry.New[record.Kind]("value"),
		records: registry.New[*record.Layout]("record"),
		stores:  registry.New[StoreFactory]("store"),
		logger:  cfg.logger,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	for _, s := range query.Styles() {
		c.queries.Register(string(s), s)
	}
	for alias, s := range query.Aliases() {
		c.queries.Register(alias, s)
	}
	for _, k := range record.Kinds() {
		c.kinds.Register(string(k), k)
	}
	for alias, k := range record.KindAliases() {
		c.kinds.Register(alias, k)
	}
	c.stores.Register(DriverLocal, openLocal)
	c.stores.Register(DriverRedis, openRedis)
	for name, f := range cfg.stores {
		c.stores.Register(name, f)
	}

	all := cfg.schemas
	if cfg.bundled {
		all = append(schemas.All(), all...)
	}
	schemas.Register(c.records, all...)
	for style, err := range c.records.FailedStyles() {
		c.logger.Warn("Record style failed to load", zap.String("style", style), zap.Error(err))
	}
	return c
}

// LoadQuery creates a query of the named style.
func (c *Catalog) LoadQuery(style string, opts ...query.Option) (*Query, error) {
	s, err := c.queries.Resolve(style)
	if err != nil {
		return nil, err
	}
	return query.New(s, opts...), nil
}

// LoadValue creates a standalone value of the named kind, owned by owner.
func (c *Catalog) LoadValue(kind, name string, owner Owner, opts ...record.Option) (*Value, error) {
	k, err := c.kinds.Resolve(kind)
	if err != nil {
		return nil, err
	}
	return record.NewValue(k, name, owner, opts...)
}

// LoadRecord creates an empty record of the named style.
func (c *Catalog) LoadRecord(style string) (*Record, error) {
	l, err := c.records.Resolve(style)
	if err != nil {
		return nil, err
	}
	return l.New(), nil
}

// Layout returns the compiled schema of a record style.
func (c *Catalog) Layout(style string) (*Layout, error) {
	return c.records.Resolve(style)
}

// StyleReport lists the loaded and failed names of one registry.
type StyleReport struct {
	Registry string
	Loaded   []string
	Failed   map[string]error
}

// Styles reports every registry, in the order query, value, record, store.
func (c *Catalog) Styles() []StyleReport {
	return []StyleReport{
		report(c.queries),
		report(c.kinds),
		report(c.records),
		report(c.stores),
	}
}

func report[T any](r *registry.Registry[T]) StyleReport {
	return StyleReport{Registry: r.Name(), Loaded: r.LoadedStyleNames(), Failed: r.FailedStyles()}
}
