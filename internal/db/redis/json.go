package redis

import (
	"context"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recordex/internal/db"
)

// Put stores a JSON document at the root path of key.
func (s *Store) Put(ctx context.Context, key string, data []byte) error {
	cmd := s.b().Arbitrary("JSON.SET").Keys(s.key(key)).Args("$", string(data)).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		if isRedisErr(err, "unknown command") {
			return &db.Error{Op: db.OpJSONSet, Err: errJSONUnsupported}
		}
		return &db.Error{Op: db.OpJSONSet, Err: err}
	}
	return nil
}

// Get retrieves the whole JSON document stored at key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	cmd := s.b().Arbitrary("JSON.GET").Keys(s.key(key)).Build()
	raw, err := s.do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, db.ErrKeyNotFound
		}
		return nil, &db.Error{Op: db.OpJSONGet, Err: err}
	}
	if raw == "" {
		return nil, db.ErrKeyNotFound
	}
	return []byte(raw), nil
}
