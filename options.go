package recordex

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/recordex/internal/domain/record"
)

// Option configures the Catalog.
type Option interface {
	apply(*catalogConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*catalogConfig)

func (f optionFunc) apply(c *catalogConfig) { f(c) }

type catalogConfig struct {
	bundled bool
	schemas []record.Schema
	stores  map[string]StoreFactory
	logger  *zap.Logger
}

// WithSchemas registers additional record schemas. A schema that fails to
// compile is recorded as a failed style rather than aborting New.
func WithSchemas(s ...record.Schema) Option {
	return optionFunc(func(c *catalogConfig) {
		c.schemas = append(c.schemas, s...)
	})
}

// WithoutBundledSchemas leaves out the FAQ, album, track and recording styles.
func WithoutBundledSchemas() Option {
	return optionFunc(func(c *catalogConfig) {
		c.bundled = false
	})
}

// WithStoreDriver registers (or replaces) a storage driver.
func WithStoreDriver(name string, f StoreFactory) Option {
	return optionFunc(func(c *catalogConfig) {
		if c.stores == nil {
			c.stores = make(map[string]StoreFactory)
		}
		c.stores[name] = f
	})
}

// WithLogger sets the logger for the catalog and the databases it opens.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *catalogConfig) {
		c.logger = l
	})
}
