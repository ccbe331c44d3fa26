package record

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/recordex/internal/domain"
	"github.com/kailas-cloud/recordex/internal/domain/convert"
	"github.com/kailas-cloud/recordex/internal/domain/document"
	"github.com/kailas-cloud/recordex/internal/domain/metadata"
	"github.com/kailas-cloud/recordex/internal/domain/query"
	"github.com/kailas-cloud/recordex/internal/domain/unit"
)

// Kind is the closed type tag of a field.
type Kind string

// Field kinds.
const (
	Bool       Kind = "bool"
	Int        Kind = "int"
	Float      Kind = "float"
	Str        Kind = "str"
	LongStr    Kind = "longstr"
	Date       Kind = "date"
	TimeDelta  Kind = "timedelta"
	StrList    Kind = "strlist"
	FloatArray Kind = "floatarray"
	RecordList Kind = "record"
)

var kinds = []Kind{Bool, Int, Float, Str, LongStr, Date, TimeDelta, StrList, FloatArray, RecordList}

var kindAliases = map[string]Kind{
	"time_delta": TimeDelta,
	"list":       StrList,
}

// Kinds returns every kind in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// KindAliases returns alternate kind names and the kind each resolves to.
func KindAliases() map[string]Kind {
	out := make(map[string]Kind, len(kindAliases))
	for k, v := range kindAliases {
		out[k] = v
	}
	return out
}

// ParseKind resolves a kind name or alias.
func ParseKind(name string) (Kind, error) {
	n := strings.TrimSpace(name)
	for _, k := range kinds {
		if string(k) == n {
			return k, nil
		}
	}
	if k, ok := kindAliases[n]; ok {
		return k, nil
	}
	return "", &domain.UnknownStyleError{Registry: "value", Style: name}
}

// QueryStyle returns the style of the default query for the kind. Durations
// and float arrays have none; record lists re-use their sub-schema queries.
func (k Kind) QueryStyle() (query.Style, bool) {
	switch k {
	case Bool:
		return query.BoolMatch, true
	case Int:
		return query.IntMatch, true
	case Float:
		return query.FloatMatch, true
	case Str:
		return query.StrMatch, true
	case LongStr:
		return query.StrContains, true
	case Date:
		return query.DateMatch, true
	case StrList:
		return query.ListContains, true
	default:
		return "", false
	}
}

// coerce maps raw input to the canonical in-memory type. nil stays nil, and
// so does an empty list for the list kinds.
func (f *Field) coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	var (
		out any
		err error
	)
	switch f.kind {
	case Bool:
		out, err = convert.Bool(v)
	case Int:
		out, err = convert.Int(v)
	case Float:
		if f.unit != "" {
			out, err = unit.FromModel(v, f.unit)
		} else {
			out, err = convert.Float(v)
		}
	case Str, LongStr:
		out, err = convert.String(v)
	case Date:
		out, err = convert.Date(v)
	case TimeDelta:
		out, err = convert.Duration(v)
	case StrList:
		out, err = convert.Strings(v)
	case FloatArray:
		out, err = convert.Floats(v)
	case RecordList:
		out, err = f.coerceRecords(v)
	default:
		err = fmt.Errorf("unsupported kind %q", f.kind)
	}
	if err != nil {
		return nil, &domain.ConversionError{Field: f.name, Kind: string(f.kind), Input: v, Err: err}
	}
	if emptyList(out) {
		return nil, nil
	}
	return out, nil
}

func emptyList(c any) bool {
	switch x := c.(type) {
	case []string:
		return len(x) == 0
	case []float64:
		return len(x) == 0
	case []*Record:
		return len(x) == 0
	default:
		return false
	}
}

func (f *Field) coerceRecords(v any) ([]*Record, error) {
	var out []*Record
	for i, item := range convert.AsList(v) {
		rec, err := f.coerceRecord(item)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *Field) coerceRecord(v any) (*Record, error) {
	switch x := v.(type) {
	case *Record:
		if x.layout == f.sub {
			return x, nil
		}
		if x.Style() != f.sub.Style() || x.ModelRoot() != f.sub.ModelRoot() {
			return nil, fmt.Errorf("record style %q, want %q", x.Style(), f.sub.Style())
		}
		content, err := x.BuildContent()
		if err != nil {
			return nil, err
		}
		rec := f.sub.New()
		if err := rec.LoadContent(content); err != nil {
			return nil, err
		}
		rec.SetName(x.Name())
		return rec, nil
	case *document.Tree:
		rec := f.sub.New()
		if err := rec.LoadContent(x); err != nil {
			return nil, err
		}
		return rec, nil
	case map[string]any:
		rec := f.sub.New()
		if err := rec.SetValues(x); err != nil {
			return nil, err
		}
		return rec, nil
	case string:
		// An element with no content, as XML decodes an empty sub-document.
		if strings.TrimSpace(x) != "" {
			return nil, fmt.Errorf("unsupported type %T", v)
		}
		rec := f.sub.New()
		if err := rec.LoadContent(document.New()); err != nil {
			return nil, err
		}
		return rec, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// literal renders a canonical value as its document literal.
func (f *Field) literal(c any) (any, error) {
	switch f.kind {
	case Float:
		if f.unit != "" {
			return unit.Model(c.(float64), f.unit), nil
		}
		return c, nil
	case Date:
		return c.(time.Time).Format(convert.DateLayout), nil
	case TimeDelta:
		return c.(time.Duration).String(), nil
	case StrList:
		return document.Normalize(c.([]string)), nil
	case FloatArray:
		return document.Normalize(c.([]float64)), nil
	case RecordList:
		recs := c.([]*Record)
		out := make([]any, len(recs))
		for i, r := range recs {
			t, err := r.BuildContent()
			if err != nil {
				return nil, fmt.Errorf("%s[%d]: %w", f.name, i, err)
			}
			out[i] = t
		}
		return out, nil
	default:
		return c, nil
	}
}

// metadataValue renders a canonical value for a metadata row.
func (f *Field) metadataValue(c any) any {
	switch f.kind {
	case Date:
		return c.(time.Time).Format(convert.DateLayout)
	case TimeDelta:
		return c.(time.Duration).String()
	case StrList:
		return append([]string(nil), c.([]string)...)
	case FloatArray:
		return append([]float64(nil), c.([]float64)...)
	case RecordList:
		recs := c.([]*Record)
		rows := make([]metadata.Row, len(recs))
		for i, r := range recs {
			rows[i] = r.Metadata()
		}
		return rows
	default:
		return c
	}
}

// same reports whether two canonical values are equal.
func (f *Field) same(a, b any) bool {
	switch f.kind {
	case Date:
		ta, okA := a.(time.Time)
		tb, okB := b.(time.Time)
		return okA && okB && ta.Equal(tb)
	case StrList, FloatArray:
		return fmt.Sprint(a) == fmt.Sprint(b)
	default:
		return a == b
	}
}
