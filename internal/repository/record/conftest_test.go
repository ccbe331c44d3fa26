package record

import (
	"context"
	"testing"

	"github.com/kailas-cloud/recordex/internal/db/local"
	domrec "github.com/kailas-cloud/recordex/internal/domain/record"
	"github.com/kailas-cloud/recordex/internal/domain/registry"
	"github.com/kailas-cloud/recordex/internal/schemas"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	format   string
	putFn    func(ctx context.Context, key string, data []byte) error
	getFn    func(ctx context.Context, key string) ([]byte, error)
	delFn    func(ctx context.Context, key string) error
	existsFn func(ctx context.Context, key string) (bool, error)
	scanFn   func(ctx context.Context, prefix string) ([]string, error)
}

func (m *mockStore) Format() string {
	if m.format == "" {
		return "json"
	}
	return m.format
}

func (m *mockStore) Put(ctx context.Context, key string, data []byte) error {
	if m.putFn != nil {
		return m.putFn(ctx, key, data)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) Del(ctx context.Context, key string) error {
	if m.delFn != nil {
		return m.delFn(ctx, key)
	}
	return nil
}

func (m *mockStore) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

func (m *mockStore) Scan(ctx context.Context, prefix string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, prefix)
	}
	return nil, nil
}

func testLayouts() *registry.Registry[*domrec.Layout] {
	reg := registry.New[*domrec.Layout]("record")
	schemas.Register(reg, schemas.All()...)
	return reg
}

// newLocalRepo returns a repository on a fresh directory store.
func newLocalRepo(t *testing.T, format string) *Repo {
	t.Helper()
	s, err := local.NewStore(local.Config{Path: t.TempDir(), Format: format})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	r, err := New(s, testLayouts(), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func newAlbum(t *testing.T, r *Repo, name string, values map[string]any, tracks ...map[string]any) *domrec.Record {
	t.Helper()
	l, err := r.layouts.Resolve("album")
	if err != nil {
		t.Fatal(err)
	}
	rec := l.New()
	rec.SetName(name)
	if err := rec.SetValues(values); err != nil {
		t.Fatal(err)
	}
	for _, tr := range tracks {
		if _, err := rec.Append("tracks", tr); err != nil {
			t.Fatal(err)
		}
	}
	return rec
}
