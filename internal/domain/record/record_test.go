package record

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/query"
	"github.com/kailas-cloud/recordex/internal/domain/search/filter"
)

type decl struct {
	kind Kind
	name string
	opts []Option
}

func declare(decls ...decl) func(*Builder) error {
	return func(b *Builder) error {
		for _, d := range decls {
			if _, err := b.Add(d.kind, d.name, d.opts...); err != nil {
				return err
			}
		}
		return nil
	}
}

var trackSchema = Define("track", "track", declare(
	decl{Str, "title", []Option{WithDescription("track title")}},
	decl{Int, "number", nil},
	decl{TimeDelta, "duration", nil},
	decl{LongStr, "lyrics", nil},
))

var albumSchema = Define("album", "album", func(b *Builder) error {
	if err := declare(
		decl{LongStr, "artist", nil},
		decl{Str, "producer", nil},
		decl{Str, "album", nil},
		decl{Date, "releasedate", nil},
		decl{StrList, "genre", nil},
		decl{RecordList, "tracks", []Option{WithSubSchema(trackSchema)}},
	)(b); err != nil {
		return err
	}
	b.WithdrawQuery("number")
	return nil
})

var recordingSchema = Define("recording", "recording", declare(
	decl{Str, "title", nil},
	decl{Int, "number", nil},
	decl{StrList, "keyword", nil},
	decl{Bool, "settings.reverb", []Option{WithDefault(false)}},
	decl{Float, "settings.frequency", []Option{WithUnit("kHz")}},
	decl{LongStr, "description", nil},
	decl{FloatArray, "notes", nil},
))

func abbeyRoad(t *testing.T) *Record {
	t.Helper()
	rec, err := New(albumSchema)
	if err != nil {
		t.Fatal(err)
	}
	rec.SetName("abbey")
	err = rec.SetValues(map[string]any{
		"artist":      "The Beatles",
		"producer":    "George Martin",
		"album":       "Abbey Road",
		"releasedate": "1969-09-26",
		"genre":       []string{"rock", "pop"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Append("tracks", map[string]any{
		"title": "Come Together", "number": 1, "duration": "4:20",
		"lyrics": "Here come old flat-top\nHe come grooving up slowly",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := rec.Append("tracks", map[string]any{"title": "Something", "number": "2", "duration": "3m3s"}); err != nil {
		t.Fatal(err)
	}
	return rec
}

func TestCompile_SchemaErrors(t *testing.T) {
	dup := Define("dup", "dup", declare(decl{Str, "title", nil}, decl{Int, "title", nil}))
	_, err := Compile(dup)
	var se *domain.SchemaError
	if !errors.As(err, &se) || se.Field != "title" || !strings.Contains(se.Reason, "duplicate") {
		t.Errorf("duplicate err = %v", err)
	}

	if _, err := Compile(Define("empty", "empty", declare())); !errors.Is(err, domain.ErrSchema) {
		t.Errorf("zero fields err = %v", err)
	}
	if _, err := Compile(Define("noroot", "", declare(decl{Str, "a", nil}))); !errors.Is(err, domain.ErrSchema) {
		t.Errorf("no root err = %v", err)
	}

	withdraw := Define("w", "w", func(b *Builder) error {
		_, err := b.Add(Str, "a")
		b.WithdrawQuery("b")
		return err
	})
	if _, err := Compile(withdraw); err == nil || !strings.Contains(err.Error(), "withdraw") {
		t.Errorf("withdraw err = %v", err)
	}

	clash := Define("clash", "clash", declare(
		decl{Str, "title", nil},
		decl{RecordList, "tracks", []Option{WithSubSchema(trackSchema)}},
	))
	if _, err := Compile(clash); !errors.Is(err, domain.ErrSchema) {
		t.Errorf("query clash err = %v", err)
	}
}

func TestRecord_BuildModel(t *testing.T) {
	rec := abbeyRoad(t)
	model, err := rec.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	content, _ := model.Get("album")
	if diff := cmp.Diff(
		[]string{"artist", "producer", "album", "releasedate", "genre", "tracks"},
		content.(*document.Tree).Keys(),
	); diff != "" {
		t.Errorf("field order (-want +got):\n%s", diff)
	}
	if v, _ := model.Find("album.releasedate"); v != "1969-09-26" {
		t.Errorf("releasedate = %v", v)
	}
	tracks, _ := model.Find("album.tracks")
	list, ok := tracks.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("tracks = %#v", tracks)
	}
	second := list[1].(*document.Tree)
	if diff := cmp.Diff([]string{"title", "number", "duration"}, second.Keys()); diff != "" {
		t.Errorf("unset lyrics should be omitted (-want +got):\n%s", diff)
	}
	if d, _ := second.Get("duration"); d != "3m3s" {
		t.Errorf("duration = %v", d)
	}
}

func TestRecord_RoundTripAcrossFormats(t *testing.T) {
	withEmptyTrack := abbeyRoad(t)
	if _, err := withEmptyTrack.Append("tracks", map[string]any{}); err != nil {
		t.Fatal(err)
	}
	records := []struct {
		name string
		rec  *Record
	}{
		{"album", abbeyRoad(t)},
		{"empty track", withEmptyTrack},
	}
	for _, r := range records {
		for _, f := range []document.Format{document.JSON, document.XML, document.YAML} {
			t.Run(r.name+"/"+string(f), func(t *testing.T) {
				roundTrip(t, r.rec, f)
			})
		}
	}
}

func roundTrip(t *testing.T, rec *Record, f document.Format) {
	t.Helper()
	want, err := rec.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	data, err := document.Encode(want, f)
	if err != nil {
		t.Fatal(err)
	}
	loaded := rec.Layout().New()
	if err := loaded.LoadBytes(data); err != nil {
		t.Fatalf("LoadBytes: %v\n%s", err, data)
	}
	got, err := loaded.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("model (-want +got):\n%s", diff)
	}

	again := rec.Layout().New()
	if err := again.LoadModel(got); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(loaded.Metadata(), again.Metadata()); diff != "" {
		t.Errorf("load(build(load(doc))) != load(doc) (-want +got):\n%s", diff)
	}
}

func TestRecord_NestedPathsAndUnits(t *testing.T) {
	rec, err := New(recordingSchema)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.SetValues(map[string]any{
		"title":              "Take 3",
		"settings.frequency": "0.0441 MHz",
		"notes":              []float64{440, 493.88},
	}); err != nil {
		t.Fatal(err)
	}
	model, err := rec.BuildModel()
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := model.Find("recording.settings.reverb"); v != false {
		t.Errorf("reverb default = %v", v)
	}
	if v, _ := model.Find("recording.settings.frequency.unit"); v != "kHz" {
		t.Errorf("unit = %v", v)
	}

	data, err := document.EncodeXML(model)
	if err != nil {
		t.Fatal(err)
	}
	back := rec.Layout().New()
	if err := back.LoadBytes(data); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec.Metadata(), back.Metadata()); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}

	q, _ := rec.Queries().Get("settings.frequency")
	d := filter.Doc{}
	if err := q.BuildFilter(d, "44.1 kHz", ""); err != nil {
		t.Fatal(err)
	}
	if _, ok := filter.Fragments(d[filter.OpOr])[0]["recording.settings.frequency.value"]; !ok {
		t.Errorf("filter = %v", d)
	}
}

func TestRecord_Metadata(t *testing.T) {
	rec := abbeyRoad(t)
	row := rec.Metadata()
	if row["name"] != "abbey" || row["releasedate"] != "1969-09-26" {
		t.Errorf("row = %v", row)
	}
	if diff := cmp.Diff([]string{"rock", "pop"}, row["genre"]); diff != "" {
		t.Errorf("genre (-want +got):\n%s", diff)
	}
	tracks := row.Entries("tracks")
	if len(tracks) != 2 || tracks[0]["title"] != "Come Together" || tracks[1]["number"] != int64(2) {
		t.Errorf("tracks = %v", tracks)
	}

	stats := Define("song", "song", declare(
		decl{Str, "title", nil},
		decl{Int, "plays", []Option{WithMetadataParent("stats")}},
		decl{Int, "rating", []Option{WithMetadataParent("stats")}},
		decl{Str, "isrc", []Option{WithoutMetadata()}},
	))
	song, err := New(stats)
	if err != nil {
		t.Fatal(err)
	}
	_ = song.SetValues(map[string]any{"title": "Ode", "plays": 10, "rating": 4, "isrc": "X"})
	want := metadata.Row{"title": "Ode", "stats": []metadata.Row{{"plays": int64(10), "rating": int64(4)}}}
	if diff := cmp.Diff(want, song.Metadata()); diff != "" {
		t.Errorf("parent metadata (-want +got):\n%s", diff)
	}
	q, _ := song.Queries().Get("rating")
	ok, err := q.Match(song.Metadata(), 4)
	if err != nil || !ok {
		t.Errorf("parent query = %v, %v", ok, err)
	}
}

func TestRecord_Queries(t *testing.T) {
	rec := abbeyRoad(t)
	qs := rec.Queries()
	if diff := cmp.Diff(
		[]string{"artist", "producer", "album", "releasedate", "genre", "title", "lyrics"},
		qs.Keys(),
	); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	title, _ := qs.Get("title")
	path, _ := title.Path()
	if title.Parent() != "tracks" || path != "album.tracks.title" {
		t.Errorf("title query parent=%q path=%q", title.Parent(), path)
	}

	tbl := metadata.NewTable(rec.Metadata())
	m, err := qs.Mask(tbl, map[string]any{"title": "Something", "genre": "rock", "artist": "Beatles"})
	if err != nil || !m[0] {
		t.Errorf("Mask = %v, %v", m, err)
	}
	m, _ = qs.Mask(tbl, map[string]any{"title": "Yesterday"})
	if m[0] {
		t.Error("unexpected match")
	}

	title.SetPath("")
	again, _ := rec.Queries().Get("title")
	if _, err := again.Path(); err != nil {
		t.Error("Queries must return copies")
	}
}

func TestRecord_OverrideQuery(t *testing.T) {
	s := Define("o", "o", func(b *Builder) error {
		if _, err := b.Add(Str, "album"); err != nil {
			return err
		}
		b.OverrideQuery("album", query.New(query.StrContains, query.WithName("album"), query.WithPath("o.album")))
		return nil
	})
	l, err := Compile(s)
	if err != nil {
		t.Fatal(err)
	}
	q, _ := l.Queries().Get("album")
	if q.Style() != query.StrContains {
		t.Errorf("style = %s", q.Style())
	}
}

func TestRecord_FailedUpdatesLeaveRecordUnchanged(t *testing.T) {
	rec := abbeyRoad(t)
	before, _ := rec.BuildModel()

	if err := rec.SetValues(map[string]any{"album": "Let It Be", "releasedate": "someday"}); !errors.Is(err, domain.ErrConversion) {
		t.Errorf("SetValues err = %v", err)
	}
	if err := rec.SetValues(map[string]any{"label": "Apple"}); err == nil {
		t.Error("unknown field accepted")
	}

	bad := document.New()
	content := document.New()
	content.Set("album", "Let It Be")
	content.Set("releasedate", "not a date")
	bad.Set("album", content)
	if err := rec.LoadModel(bad); !errors.Is(err, domain.ErrConversion) {
		t.Errorf("LoadModel err = %v", err)
	}

	wrongRoot := document.New()
	wrongRoot.Set("faq", document.New())
	if err := rec.LoadModel(wrongRoot); !errors.Is(err, domain.ErrConversion) {
		t.Errorf("wrong root err = %v", err)
	}

	after, _ := rec.BuildModel()
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("record changed (-want +got):\n%s", diff)
	}
}

func TestRecord_RequiredOnBuild(t *testing.T) {
	s := Define("faq", "faq", declare(
		decl{LongStr, "question", []Option{Required()}},
		decl{LongStr, "answer", nil},
	))
	rec, err := New(s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rec.BuildModel(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("err = %v", err)
	}
	_ = rec.Set("question", "Why?")
	if _, err := rec.BuildModel(); err != nil {
		t.Error(err)
	}
}

func TestRecord_SetRecordListFromSeparateLayout(t *testing.T) {
	album := abbeyRoad(t)
	track, err := New(trackSchema)
	if err != nil {
		t.Fatal(err)
	}
	if err := track.SetValues(map[string]any{"title": "Because", "number": 8}); err != nil {
		t.Fatal(err)
	}
	if err := album.Set("tracks", []*Record{track}); err != nil {
		t.Fatalf("Set tracks: %v", err)
	}
	tracks, _ := album.Value("tracks")
	recs := tracks.Records()
	if len(recs) != 1 {
		t.Fatalf("tracks = %d", len(recs))
	}
	if got, _ := recs[0].Get("title"); got != "Because" {
		t.Errorf("title = %v", got)
	}
	if got, _ := recs[0].Get("number"); got != int64(8) {
		t.Errorf("number = %v", got)
	}
	if _, err := album.BuildModel(); err != nil {
		t.Errorf("BuildModel: %v", err)
	}

	other, _ := New(recordingSchema)
	err = album.Set("tracks", []*Record{other})
	if !errors.Is(err, domain.ErrConversion) || !strings.Contains(err.Error(), `want "track"`) {
		t.Errorf("wrong style err = %v", err)
	}
	if got := len(tracks.Records()); got != 1 {
		t.Errorf("tracks changed to %d", got)
	}
}

func TestRecord_AppendAndClone(t *testing.T) {
	rec := abbeyRoad(t)
	if _, err := rec.Append("album", map[string]any{}); !errors.Is(err, domain.ErrSchema) {
		t.Errorf("append on str err = %v", err)
	}
	if _, err := rec.Append("tracks", map[string]any{"number": "three"}); !errors.Is(err, domain.ErrConversion) {
		t.Errorf("bad track err = %v", err)
	}

	c := rec.Clone()
	_ = c.Set("album", "Something Else")
	tracks, _ := c.Value("tracks")
	_ = tracks.Records()[0].Set("title", "Changed")

	if got, _ := rec.Get("album"); got != "Abbey Road" {
		t.Errorf("album = %v", got)
	}
	orig, _ := rec.Value("tracks")
	if got, _ := orig.Records()[0].Get("title"); got != "Come Together" {
		t.Errorf("title = %v", got)
	}
	if len(orig.Records()) != 2 {
		t.Errorf("tracks = %d", len(orig.Records()))
	}
}
