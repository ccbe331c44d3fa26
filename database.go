package recordex

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/config"
	"github.com/kailas-cloud/recordex/internal/db"
	"github.com/kailas-cloud/recordex/internal/db/local"
	dbRedis "github.com/kailas-cloud/recordex/internal/db/redis"
	"github.com/kailas-cloud/recordex/internal/domain/record/patch"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
	recordrepo "github.com/kailas-cloud/recordex/internal/repository/record"
)

// Storage drivers registered by New.
const (
	DriverLocal = config.DriverLocal
	DriverRedis = config.DriverRedis
)

// StorageConfig selects and configures a storage driver.
type StorageConfig = config.StorageConfig

// StoreFactory opens a db.Store from its configuration.
type StoreFactory func(cfg StorageConfig) (db.Store, error)

// LocalStorage configures a directory store.
func LocalStorage(path, format string) StorageConfig {
	return StorageConfig{Driver: DriverLocal, Path: path, Format: format}
}

// RedisStorage configures a Redis 8 store.
func RedisStorage(addr, password string) StorageConfig {
	return StorageConfig{Driver: DriverRedis, Addrs: []string{addr}, Password: password}
}

func openLocal(cfg StorageConfig) (db.Store, error) {
	s, err := local.NewStore(local.Config{Path: cfg.Path, Format: cfg.Format})
	if err != nil {
		return nil, fmt.Errorf("recordex: create local store: %w", err)
	}
	return s, nil
}

func openRedis(cfg StorageConfig) (db.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:     cfg.Addrs,
		Username:  cfg.Username,
		Password:  cfg.Password,
		DB:        cfg.DB,
		KeyPrefix: cfg.KeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("recordex: create redis store: %w", err)
	}
	return s, nil
}

// Database persists records of the catalog's styles.
type Database struct {
	store db.Store
	repo  *recordrepo.Repo
}

// Open connects to the configured driver and waits until it is ready.
func (c *Catalog) Open(ctx context.Context, cfg StorageConfig) (*Database, error) {
	full := config.Config{Storage: cfg}
	full.ApplyDefaults()
	cfg = full.Storage

	factory, err := c.stores.Resolve(cfg.Driver)
	if err != nil {
		return nil, err
	}
	store, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("recordex: store not ready: %w", err)
	}
	repo, err := recordrepo.New(store, c.records, c.logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("recordex: %w", err)
	}
	c.logger.Debug("Database opened",
		zap.String("driver", cfg.Driver),
		zap.String("format", store.Format()),
	)
	return &Database{store: store, repo: repo}, nil
}

// Close releases the store.
func (d *Database) Close() { d.store.Close() }

// Ping checks the store.
func (d *Database) Ping(ctx context.Context) error { return d.store.Ping(ctx) }

// Save persists rec and returns its name; unnamed records get a UUID.
func (d *Database) Save(ctx context.Context, rec *Record, overwrite bool) (string, error) {
	return d.repo.Save(ctx, rec, overwrite)
}

// Get loads a stored record.
func (d *Database) Get(ctx context.Context, style, name string) (*Record, error) {
	return d.repo.Get(ctx, style, name)
}

// Delete removes a stored record.
func (d *Database) Delete(ctx context.Context, style, name string) error {
	return d.repo.Delete(ctx, style, name)
}

// Update assigns set and unsets clear on a stored record, then writes it
// back. Nothing is stored when any field fails.
func (d *Database) Update(ctx context.Context, style, name string, set map[string]any, clear ...string) (*Record, error) {
	p, err := patch.New(set, clear...)
	if err != nil {
		return nil, fmt.Errorf("update %s:%s: %w", style, name, err)
	}
	return d.repo.Update(ctx, style, name, p)
}

// Names lists the stored names of a style.
func (d *Database) Names(ctx context.Context, style string) ([]string, error) {
	return d.repo.Names(ctx, style)
}

// Find returns the stored records matching every query value.
func (d *Database) Find(ctx context.Context, style string, values map[string]any) ([]*Record, error) {
	return d.repo.Find(ctx, style, values)
}

// Filter compiles query values into a document filter.
func (d *Database) Filter(style string, values map[string]any, acc filter.Accumulator, prefix string) error {
	return d.repo.Filter(style, values, acc, prefix)
}
