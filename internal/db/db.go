package db

import (
	"context"
	"time"
)

// Store is the storage facade a record repository runs on.
type Store interface {
	Pinger
	DocumentStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DocumentStore keeps encoded record documents under string keys. Keys are
// "<style>:<name>"; drivers add their own namespace on top.
type DocumentStore interface {
	// Format names the document encoding the driver persists
	// ("json", "xml" or "yaml").
	Format() string
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// Scan returns the keys starting with prefix, sorted.
	Scan(ctx context.Context, prefix string) ([]string, error)
}

// Key joins a record style and name into a store key.
func Key(style, name string) string { return style + ":" + name }
