// Package schemas holds the bundled record styles.
package schemas

import (
	"github.com/kailas-cloud/recordex/internal/domain/record"
	"github.com/kailas-cloud/recordex/internal/domain/registry"
)

// All returns the bundled schemas.
func All() []record.Schema {
	return []record.Schema{FAQ{}, Album{}, Track{}, Recording{}}
}

// Register compiles each schema into reg. A schema that fails to compile is
// recorded as a failed style with its cause.
func Register(reg *registry.Registry[*record.Layout], schemas ...record.Schema) {
	for _, s := range schemas {
		l, err := record.Compile(s)
		if err != nil {
			reg.Fail(s.Style(), err)
			continue
		}
		reg.Register(s.Style(), l)
	}
}

type field struct {
	kind record.Kind
	name string
	opts []record.Option
}

func addAll(b *record.Builder, fields ...field) error {
	for _, f := range fields {
		if _, err := b.Add(f.kind, f.name, f.opts...); err != nil {
			return err
		}
	}
	return nil
}

// FAQ is a frequently asked question.
type FAQ struct{}

// Style implements record.Schema.
func (FAQ) Style() string { return "FAQ" }

// ModelRoot implements record.Schema.
func (FAQ) ModelRoot() string { return "faq" }

// InitValues implements record.Schema.
func (FAQ) InitValues(b *record.Builder) error {
	return addAll(b,
		field{record.LongStr, "question", nil},
		field{record.LongStr, "answer", nil},
	)
}

// Track is one track of an Album.
type Track struct{}

// Style implements record.Schema.
func (Track) Style() string { return "track" }

// ModelRoot implements record.Schema.
func (Track) ModelRoot() string { return "track" }

// InitValues implements record.Schema.
func (Track) InitValues(b *record.Builder) error {
	return addAll(b,
		field{record.Str, "title", []record.Option{record.WithDescription("track title")}},
		field{record.Int, "number", []record.Option{record.WithDescription("track number")}},
		field{record.TimeDelta, "duration", nil},
		field{record.LongStr, "lyrics", nil},
	)
}

// Album is a music album with its track list.
type Album struct{}

// Style implements record.Schema.
func (Album) Style() string { return "album" }

// ModelRoot implements record.Schema.
func (Album) ModelRoot() string { return "album" }

// InitValues implements record.Schema. Track numbers are not searchable
// across albums.
func (Album) InitValues(b *record.Builder) error {
	err := addAll(b,
		field{record.LongStr, "artist", []record.Option{record.WithDescription("artist name")}},
		field{record.Str, "producer", []record.Option{record.WithDescription("producer name")}},
		field{record.Str, "album", []record.Option{record.WithDescription("album title")}},
		field{record.Date, "releasedate", []record.Option{record.WithDescription("release date")}},
		field{record.StrList, "genre", nil},
		field{record.RecordList, "tracks", []record.Option{
			record.WithSubSchema(Track{}),
			record.WithDescription("List of album tracks"),
		}},
	)
	if err != nil {
		return err
	}
	b.WithdrawQuery("number")
	return nil
}

// Recording is a studio take with mixing settings.
type Recording struct{}

// Style implements record.Schema.
func (Recording) Style() string { return "recording" }

// ModelRoot implements record.Schema.
func (Recording) ModelRoot() string { return "recording" }

// InitValues implements record.Schema.
func (Recording) InitValues(b *record.Builder) error {
	return addAll(b,
		field{record.Str, "title", nil},
		field{record.Int, "number", nil},
		field{record.StrList, "keyword", nil},
		field{record.Bool, "settings.reverb", []record.Option{record.WithDefault(false)}},
		field{record.Float, "settings.frequency", []record.Option{record.WithUnit("kHz")}},
		field{record.LongStr, "description", nil},
		field{record.FloatArray, "notes", nil},
	)
}
