// Package record persists records through a db.DocumentStore and answers
// field queries over them.
package record

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/db"
	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	domrec "github.com/kailas-cloud/recordex/internal/domain/record"
	"github.com/kailas-cloud/recordex/internal/domain/record/patch"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	"github.com/kailas-cloud/recordex/internal/metrics"
)

// store is the consumer interface for record documents (ISP).
type store interface {
	Format() string
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Scan(ctx context.Context, prefix string) ([]string, error)
}

// layouts resolves a record style to its compiled schema.
type layouts interface {
	Resolve(style string) (*domrec.Layout, error)
}

// Repo stores records as documents keyed by style and name.
type Repo struct {
	store   store
	layouts layouts
	format  document.Format
	logger  *zap.Logger
}

// New creates a record repository. A nil logger disables logging.
func New(s store, l layouts, logger *zap.Logger) (*Repo, error) {
	f, err := document.ParseFormat(s.Format())
	if err != nil {
		return nil, fmt.Errorf("store format: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repo{store: s, layouts: l, format: f, logger: logger}, nil
}

// Save persists rec. An unnamed record is given a random UUID name, which is
// returned. Without overwrite, saving over an existing record fails with
// *domain.RecordExistsError.
func (r *Repo) Save(ctx context.Context, rec *domrec.Record, overwrite bool) (name string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRecordOp("save", rec.Style(), start, err) }()

	name = rec.Name()
	if name == "" {
		name = uuid.NewString()
	}
	model, err := rec.BuildModel()
	if err != nil {
		return "", fmt.Errorf("build %s model: %w", rec.Style(), err)
	}
	data, err := document.Encode(model, r.format)
	if err != nil {
		return "", fmt.Errorf("encode %s model: %w", rec.Style(), err)
	}

	key := db.Key(rec.Style(), name)
	if !overwrite {
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf("check exists %s: %w", key, err)
		}
		if exists {
			return "", &domain.RecordExistsError{Style: rec.Style(), Name: name}
		}
	}
	if err := r.store.Put(ctx, key, data); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	rec.SetName(name)

	r.logger.Debug("Record saved",
		zap.String("style", rec.Style()),
		zap.String("name", name),
		zap.Int("bytes", len(data)),
	)
	return name, nil
}

// Get loads a stored record.
func (r *Repo) Get(ctx context.Context, style, name string) (rec *domrec.Record, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRecordOp("get", style, start, err) }()
	return r.get(ctx, style, name)
}

func (r *Repo) get(ctx context.Context, style, name string) (*domrec.Record, error) {
	layout, err := r.layouts.Resolve(style)
	if err != nil {
		return nil, err
	}
	key := db.Key(style, name)
	data, err := r.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return nil, &domain.RecordNotFoundError{Style: style, Name: name}
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	doc, err := document.Decode(data, r.format)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	rec := layout.New()
	if err := rec.LoadModel(doc); err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	rec.SetName(name)
	return rec, nil
}

// Delete removes a stored record.
func (r *Repo) Delete(ctx context.Context, style, name string) (err error) {
	start := time.Now()
	defer func() { metrics.ObserveRecordOp("delete", style, start, err) }()

	key := db.Key(style, name)
	exists, err := r.store.Exists(ctx, key)
	if err != nil {
		return fmt.Errorf("check exists %s: %w", key, err)
	}
	if !exists {
		return &domain.RecordNotFoundError{Style: style, Name: name}
	}
	if err := r.store.Del(ctx, key); err != nil {
		return fmt.Errorf("del %s: %w", key, err)
	}
	r.logger.Debug("Record deleted", zap.String("style", style), zap.String("name", name))
	return nil
}

// Update applies p to a stored record and writes it back.
func (r *Repo) Update(ctx context.Context, style, name string, p patch.Patch) (rec *domrec.Record, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRecordOp("update", style, start, err) }()

	rec, err = r.get(ctx, style, name)
	if err != nil {
		return nil, err
	}
	if err := p.Apply(rec); err != nil {
		return nil, fmt.Errorf("patch %s: %w", db.Key(style, name), err)
	}
	model, err := rec.BuildModel()
	if err != nil {
		return nil, fmt.Errorf("build %s model: %w", style, err)
	}
	data, err := document.Encode(model, r.format)
	if err != nil {
		return nil, fmt.Errorf("encode %s model: %w", style, err)
	}
	key := db.Key(style, name)
	if err := r.store.Put(ctx, key, data); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}
	r.logger.Debug("Record updated",
		zap.String("style", style),
		zap.String("name", name),
		zap.Strings("fields", p.Fields()),
	)
	return rec, nil
}

// Names lists the stored record names of a style, sorted.
func (r *Repo) Names(ctx context.Context, style string) ([]string, error) {
	prefix := db.Key(style, "")
	keys, err := r.store.Scan(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", style, err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, strings.TrimPrefix(k, prefix))
	}
	return names, nil
}

// Find returns the stored records of a style whose metadata satisfies every
// query value. values is keyed by record query name; a nil value matches
// everything.
func (r *Repo) Find(ctx context.Context, style string, values map[string]any) (out []*domrec.Record, err error) {
	start := time.Now()
	defer func() { metrics.ObserveRecordOp("find", style, start, err) }()

	layout, err := r.layouts.Resolve(style)
	if err != nil {
		return nil, err
	}
	names, err := r.Names(ctx, style)
	if err != nil {
		return nil, err
	}

	recs := make([]*domrec.Record, 0, len(names))
	var table metadata.Table
	for _, name := range names {
		rec, err := r.get(ctx, style, name)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
		table.Append(rec.Metadata())
	}

	mask, err := layout.Queries().Mask(table, values)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", style, err)
	}
	metrics.ObserveCompile(metrics.BackendMask, style)

	for i, ok := range mask {
		if ok {
			out = append(out, recs[i])
		}
	}
	r.logger.Debug("Records found",
		zap.String("style", style),
		zap.Int("scanned", len(recs)),
		zap.Int("matched", len(out)),
	)
	return out, nil
}

// Filter compiles query values for a style into a document filter. prefix is
// prepended to every field path.
func (r *Repo) Filter(style string, values map[string]any, acc filter.Accumulator, prefix string) error {
	layout, err := r.layouts.Resolve(style)
	if err != nil {
		return err
	}
	if err := layout.Queries().BuildFilter(acc, values, prefix); err != nil {
		return fmt.Errorf("query %s: %w", style, err)
	}
	metrics.ObserveCompile(metrics.BackendFilter, style)
	return nil
}
