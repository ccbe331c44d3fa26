package schemas

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/record"
	"github.com/kailas-cloud/recordex/internal/domain/registry"
)

type badRecord struct{}

func (badRecord) Style() string     { return "bad_record" }
func (badRecord) ModelRoot() string { return "bad" }
func (badRecord) InitValues(b *record.Builder) error {
	if _, err := b.Add(record.Str, "a"); err != nil {
		return err
	}
	_, err := b.Add(record.Int, "a")
	return err
}

func TestRegister(t *testing.T) {
	reg := registry.New[*record.Layout]("record")
	Register(reg, append(All(), badRecord{})...)

	if diff := cmp.Diff([]string{"FAQ", "album", "recording", "track"}, reg.LoadedStyleNames()); diff != "" {
		t.Errorf("loaded (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"bad_record"}, reg.FailedStyleNames()); diff != "" {
		t.Errorf("failed (-want +got):\n%s", diff)
	}
	_, err := reg.Resolve("bad_record")
	if !errors.Is(err, domain.ErrStyleLoad) || !errors.Is(err, domain.ErrSchema) {
		t.Errorf("err = %v", err)
	}
}

func TestFAQ_LoadBytes(t *testing.T) {
	rec, err := record.New(FAQ{})
	if err != nil {
		t.Fatal(err)
	}
	xml := `<faq><question>What is a record?</question><answer>A typed document.
It has fields.</answer></faq>`
	if err := rec.LoadBytes([]byte(xml)); err != nil {
		t.Fatal(err)
	}
	if got, _ := rec.Get("answer"); got != "A typed document.\nIt has fields." {
		t.Errorf("answer = %q", got)
	}
	model, _ := rec.BuildModel()
	data, err := document.EncodeJSON(model)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := record.New(FAQ{})
	if err := again.LoadBytes(data); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(rec.Metadata(), again.Metadata()); diff != "" {
		t.Errorf("metadata (-want +got):\n%s", diff)
	}
}

func TestAlbum_Queries(t *testing.T) {
	l, err := record.Compile(Album{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := l.Queries().Get("number"); ok {
		t.Error("track number query should be withdrawn")
	}
	q, ok := l.Queries().Get("lyrics")
	if !ok || q.Parent() != "tracks" {
		t.Errorf("lyrics query = %+v", q)
	}
}
