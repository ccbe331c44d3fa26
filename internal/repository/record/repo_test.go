package record

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/kailas-cloud/recordex/internal/db"
	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/record/patch"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
)

func seedAlbums(t *testing.T, r *Repo) {
	t.Helper()
	ctx := context.Background()
	albums := []struct {
		name   string
		values map[string]any
		tracks []map[string]any
	}{
		{
			"abbey",
			map[string]any{
				"artist": "The Beatles", "producer": "George Martin", "album": "Abbey Road",
				"releasedate": "1969-09-26", "genre": []string{"rock", "pop"},
			},
			[]map[string]any{
				{"title": "Come Together", "number": 1, "duration": "4m20s"},
				{"title": "Something", "number": 2, "duration": "3m3s"},
			},
		},
		{
			"kind-of-blue",
			map[string]any{
				"artist": "Miles Davis", "producer": "Teo Macero", "album": "Kind of Blue",
				"releasedate": "1959-08-17", "genre": "jazz",
			},
			[]map[string]any{{"title": "So What", "number": 1}},
		},
		{
			"revolver",
			map[string]any{
				"artist": "The Beatles", "producer": "George Martin", "album": "Revolver",
				"releasedate": "1966-08-05", "genre": []string{"rock"},
			},
			nil,
		},
	}
	for _, a := range albums {
		if _, err := r.Save(ctx, newAlbum(t, r, a.name, a.values, a.tracks...), false); err != nil {
			t.Fatalf("Save %s: %v", a.name, err)
		}
	}
}

func TestNew_RejectsUnknownFormat(t *testing.T) {
	_, err := New(&mockStore{format: "toml"}, testLayouts(), nil)
	if err == nil || !strings.Contains(err.Error(), "store format") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSave_AssignsUUID(t *testing.T) {
	for _, format := range []string{"json", "xml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			r := newLocalRepo(t, format)
			rec := newAlbum(t, r, "", map[string]any{"album": "Untitled", "releasedate": "2001-02-03"})

			name, err := r.Save(context.Background(), rec, false)
			if err != nil {
				t.Fatalf("Save: %v", err)
			}
			if _, err := uuid.Parse(name); err != nil {
				t.Errorf("name %q is not a UUID: %v", name, err)
			}
			if rec.Name() != name {
				t.Errorf("record name = %q, want %q", rec.Name(), name)
			}

			got, err := r.Get(context.Background(), "album", name)
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if diff := cmp.Diff(rec.Metadata(), got.Metadata()); diff != "" {
				t.Errorf("metadata (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSave_Overwrite(t *testing.T) {
	ctx := context.Background()
	r := newLocalRepo(t, "json")
	rec := newAlbum(t, r, "abbey", map[string]any{"album": "Abbey Road"})
	if _, err := r.Save(ctx, rec, false); err != nil {
		t.Fatal(err)
	}

	_ = rec.Set("album", "Abbey Road (Remaster)")
	_, err := r.Save(ctx, rec, false)
	var exists *domain.RecordExistsError
	if !errors.As(err, &exists) || exists.Name != "abbey" {
		t.Fatalf("expected RecordExistsError, got %v", err)
	}

	if _, err := r.Save(ctx, rec, true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ := r.Get(ctx, "album", "abbey")
	if v, _ := got.Get("album"); v != "Abbey Road (Remaster)" {
		t.Errorf("album = %v", v)
	}
}

func TestSave_StoreErrors(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name  string
		store *mockStore
	}{
		{"exists", &mockStore{existsFn: func(context.Context, string) (bool, error) { return false, boom }}},
		{"put", &mockStore{putFn: func(context.Context, string, []byte) error { return boom }}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := New(tt.store, testLayouts(), nil)
			_, err := r.Save(context.Background(), newAlbum(t, r, "a", nil), false)
			if !errors.Is(err, boom) {
				t.Errorf("expected boom, got %v", err)
			}
		})
	}
}

func TestGet_Errors(t *testing.T) {
	ctx := context.Background()
	r, _ := New(&mockStore{getFn: func(_ context.Context, key string) ([]byte, error) {
		switch key {
		case "album:missing":
			return nil, db.ErrKeyNotFound
		case "album:garbled":
			return []byte(`{"album": `), nil
		case "album:wrongroot":
			return []byte(`{"faq": {}}`), nil
		}
		return nil, errors.New("unexpected key " + key)
	}}, testLayouts(), nil)

	if _, err := r.Get(ctx, "album", "missing"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("missing: %v", err)
	}
	if _, err := r.Get(ctx, "album", "garbled"); err == nil || !strings.Contains(err.Error(), "decode album:garbled") {
		t.Errorf("garbled: %v", err)
	}
	if _, err := r.Get(ctx, "album", "wrongroot"); !errors.Is(err, domain.ErrConversion) {
		t.Errorf("wrongroot: %v", err)
	}
	if _, err := r.Get(ctx, "symphony", "x"); !errors.Is(err, domain.ErrUnknownStyle) {
		t.Errorf("unknown style: %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r := newLocalRepo(t, "json")
	seedAlbums(t, r)

	if err := r.Delete(ctx, "album", "revolver"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := r.Delete(ctx, "album", "revolver"); !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("second delete: %v", err)
	}
	names, err := r.Names(ctx, "album")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"abbey", "kind-of-blue"}, names); diff != "" {
		t.Errorf("names (-want +got):\n%s", diff)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	r := newLocalRepo(t, "yaml")
	seedAlbums(t, r)

	p, err := patch.New(map[string]any{"producer": "Glyn Johns"}, "genre")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := r.Update(ctx, "album", "abbey", p); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := r.Get(ctx, "album", "abbey")
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Get("producer"); v != "Glyn Johns" {
		t.Errorf("producer = %v", v)
	}
	if v, _ := got.Get("genre"); v != nil {
		t.Errorf("genre = %v, want cleared", v)
	}
	if v, _ := got.Get("album"); v != "Abbey Road" {
		t.Errorf("album = %v", v)
	}

	_, err = r.Update(ctx, "album", "missing", p)
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Errorf("missing err = %v", err)
	}

	bad, _ := patch.New(map[string]any{"releasedate": "someday"})
	_, err = r.Update(ctx, "album", "abbey", bad)
	if !errors.Is(err, domain.ErrConversion) {
		t.Errorf("bad patch err = %v", err)
	}
}

func TestNames_OtherStylesIgnored(t *testing.T) {
	ctx := context.Background()
	r := newLocalRepo(t, "json")
	seedAlbums(t, r)

	faq, _ := r.layouts.Resolve("FAQ")
	q := faq.New()
	q.SetName("abbey")
	_ = q.SetValues(map[string]any{"question": "Who?", "answer": "The Beatles"})
	if _, err := r.Save(ctx, q, false); err != nil {
		t.Fatal(err)
	}

	names, _ := r.Names(ctx, "FAQ")
	if diff := cmp.Diff([]string{"abbey"}, names); diff != "" {
		t.Errorf("FAQ names (-want +got):\n%s", diff)
	}
	names, _ = r.Names(ctx, "track")
	if len(names) != 0 {
		t.Errorf("track names = %v", names)
	}
}

func TestFind(t *testing.T) {
	r := newLocalRepo(t, "json")
	seedAlbums(t, r)

	tests := []struct {
		name   string
		values map[string]any
		want   []string
	}{
		{"no values", nil, []string{"abbey", "kind-of-blue", "revolver"}},
		{"nil value", map[string]any{"producer": nil}, []string{"abbey", "kind-of-blue", "revolver"}},
		{"exact", map[string]any{"producer": "George Martin"}, []string{"abbey", "revolver"}},
		{"exact any of", map[string]any{"album": []string{"Revolver", "Kind of Blue"}}, []string{"kind-of-blue", "revolver"}},
		{"contains", map[string]any{"artist": "Beatles"}, []string{"abbey", "revolver"}},
		{"contains all", map[string]any{"artist": []string{"The", "Davis"}}, nil},
		{"list contains", map[string]any{"genre": []string{"rock", "pop"}}, []string{"abbey"}},
		{"date", map[string]any{"releasedate": "1959-08-17"}, []string{"kind-of-blue"}},
		{"nested track", map[string]any{"title": "So What"}, []string{"kind-of-blue"}},
		{"combined", map[string]any{"producer": "George Martin", "genre": "pop"}, []string{"abbey"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := r.Find(context.Background(), "album", tt.values)
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			var got []string
			for _, rec := range recs {
				got = append(got, rec.Name())
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("names (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFind_UnknownQuery(t *testing.T) {
	r := newLocalRepo(t, "json")
	seedAlbums(t, r)
	_, err := r.Find(context.Background(), "album", map[string]any{"number": 1})
	if err == nil || !strings.Contains(err.Error(), `no query named "number"`) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFilter(t *testing.T) {
	r, _ := New(&mockStore{}, testLayouts(), nil)

	doc := filter.Doc{}
	err := r.Filter("album", map[string]any{
		"producer":    "George Martin",
		"releasedate": "1969-09-26",
		"artist":      nil,
	}, doc, "")
	if err != nil {
		t.Fatal(err)
	}
	want := filter.Doc{
		"album.producer":    filter.Fragment{filter.OpIn: []any{"George Martin"}},
		"album.releasedate": filter.Fragment{filter.OpIn: []any{"1969-09-26"}},
	}
	if diff := cmp.Diff(want, doc); diff != "" {
		t.Errorf("filter (-want +got):\n%s", diff)
	}

	var list filter.List
	if err := r.Filter("album", map[string]any{"producer": "George Martin"}, &list, "content."); err != nil {
		t.Fatal(err)
	}
	wantList := filter.List{{"content.album.producer": filter.Fragment{filter.OpIn: []any{"George Martin"}}}}
	if diff := cmp.Diff(wantList, list); diff != "" {
		t.Errorf("list (-want +got):\n%s", diff)
	}

	if err := r.Filter("album", map[string]any{"bogus": 1}, doc, ""); err == nil {
		t.Error("expected error for unknown query")
	}
	if err := r.Filter("symphony", nil, doc, ""); !errors.Is(err, domain.ErrUnknownStyle) {
		t.Errorf("unknown style: %v", err)
	}
}
