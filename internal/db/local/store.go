// Package local implements db.Store on a directory tree: one file per
// record at <path>/<style>/<name>.<format>, guarded by a flock on
// <path>/.lock so several processes can share the directory.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/kailas-cloud/recordex/internal/db"
	"github.com/kailas-cloud/recordex/internal/domain/document"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	lockName      = ".lock"
	lockTimeout   = 3 * time.Second
	retryInterval = 50 * time.Millisecond
)

// Config holds the local store location and encoding.
type Config struct {
	Path   string
	Format string
}

// Store implements db.Store on the local filesystem.
type Store struct {
	root   string
	format document.Format
	lock   *flock.Flock
	// mu serializes use of lock within the process; flock only
	// arbitrates between processes.
	mu sync.Mutex
}

// NewStore creates the root directory if needed and returns a store on it.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	f := document.JSON
	if cfg.Format != "" {
		var err error
		if f, err = document.ParseFormat(cfg.Format); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Store{
		root:   cfg.Path,
		format: f,
		lock:   flock.New(filepath.Join(cfg.Path, lockName)),
	}, nil
}

// Format implements db.DocumentStore.
func (s *Store) Format() string { return string(s.format) }

// Ping checks that the root directory is still there.
func (s *Store) Ping(_ context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("ping: %s is not a directory", s.root)
	}
	return nil
}

// Close releases the lock file handle.
func (s *Store) Close() {
	_ = s.lock.Close()
}

// WaitForReady reports whether the directory is usable. There is nothing
// to wait for on a local disk, so it checks once.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Put writes data atomically through a temp file and rename.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &db.Error{Op: db.OpWrite, Err: err}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &db.Error{Op: db.OpWrite, Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return &db.Error{Op: db.OpWrite, Err: err}
	}
	return nil
}

// Get reads the document stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, err
	}
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpRead, Err: err}
	}
	return data, nil
}

// Del removes the document at key. Removing a missing key is not an error.
func (s *Store) Del(ctx context.Context, key string) error {
	path, err := s.path(key)
	if err != nil {
		return err
	}
	unlock, err := s.acquire(ctx, false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &db.Error{Op: db.OpRemove, Err: err}
	}
	return nil
}

// Exists checks if a document is stored at key.
func (s *Store) Exists(_ context.Context, key string) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, &db.Error{Op: db.OpExists, Err: err}
	}
}

// Scan lists the keys starting with prefix, sorted.
func (s *Store) Scan(ctx context.Context, prefix string) ([]string, error) {
	unlock, err := s.acquire(ctx, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	styles, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &db.Error{Op: db.OpScan, Err: err}
	}
	ext := s.format.Ext()
	var keys []string
	for _, sd := range styles {
		if !sd.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.root, sd.Name()))
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ext) {
				continue
			}
			key := db.Key(sd.Name(), strings.TrimSuffix(f.Name(), ext))
			if strings.HasPrefix(key, prefix) {
				keys = append(keys, key)
			}
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// path maps "<style>:<name>" to its file.
func (s *Store) path(key string) (string, error) {
	style, name, ok := strings.Cut(key, ":")
	if !ok || !validSegment(style) || !validSegment(name) {
		return "", fmt.Errorf("%w: %q", db.ErrInvalidKey, key)
	}
	return filepath.Join(s.root, style, name+s.format.Ext()), nil
}

func validSegment(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`) && !strings.HasPrefix(s, ".")
}

// acquire takes the directory lock, shared for readers.
func (s *Store) acquire(ctx context.Context, shared bool) (func(), error) {
	s.mu.Lock()
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	var (
		locked bool
		err    error
	)
	if shared {
		locked, err = s.lock.TryRLockContext(ctx, retryInterval)
	} else {
		locked, err = s.lock.TryLockContext(ctx, retryInterval)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, &db.Error{Op: db.OpLock, Err: err}
	}
	if !locked {
		s.mu.Unlock()
		return nil, &db.Error{Op: db.OpLock, Err: fmt.Errorf("could not acquire %s", s.lock.Path())}
	}
	return func() {
		_ = s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}
