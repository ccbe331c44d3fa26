// Package convert coerces loosely typed inputs (decoded documents, CLI
// arguments, query candidates) into canonical Go values.
//
// Functions return plain errors; callers attach field context.
package convert

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the ISO-8601 calendar date form.
const DateLayout = "2006-01-02"

var (
	errNil      = errors.New("nil value")
	errBoolText = errors.New("invalid boolean string")
)

// AsList normalizes v to an ordered candidate list. Slices and arrays are
// expanded; strings, byte slices and everything else become one element.
func AsList(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []any:
		return x
	case string, []byte:
		return []any{x}
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return []any{v}
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// Bool accepts a bool or case-insensitive "true"/"t"/"false"/"f".
func Bool(v any) (bool, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(x)) {
		case "true", "t":
			return true, nil
		case "false", "f":
			return false, nil
		}
		return false, errBoolText
	case nil:
		return false, errNil
	default:
		return false, fmt.Errorf("unsupported type %T", v)
	}
}

// Int accepts integer types, integral floats and numeric strings.
func Int(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float32:
		return Int(float64(x))
	case float64:
		if x != math.Trunc(x) || math.IsInf(x, 0) || math.IsNaN(x) {
			return 0, fmt.Errorf("%v is not integral", x)
		}
		return int64(x), nil
	case string:
		s := strings.TrimSpace(x)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", x, err)
		}
		return Int(f)
	case nil:
		return 0, errNil
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
}

// Float accepts numeric types and numeric strings.
func Float(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", x, err)
		}
		return f, nil
	case bool:
		return 0, fmt.Errorf("unsupported type %T", v)
	case nil:
		return 0, errNil
	}
	n, err := Int(v)
	if err != nil {
		return 0, err
	}
	return float64(n), nil
}

// String renders scalars the way they appear in a document.
func String(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case []byte:
		return string(x), nil
	case nil:
		return "", errNil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case time.Time:
		return x.Format(time.RFC3339), nil
	case fmt.Stringer:
		return x.String(), nil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return "", fmt.Errorf("unsupported type %T", v)
	}
	return fmt.Sprint(v), nil
}

// Date accepts time.Time, YYYY-MM-DD and RFC 3339 strings and returns the
// calendar date at UTC midnight.
func Date(v any) (time.Time, error) {
	switch x := v.(type) {
	case time.Time:
		y, m, d := x.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	case string:
		s := strings.TrimSpace(x)
		if t, err := time.Parse(DateLayout, s); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q", x)
		}
		return Date(t)
	case nil:
		return time.Time{}, errNil
	default:
		return time.Time{}, fmt.Errorf("unsupported type %T", v)
	}
}

// DateString returns the ISO-8601 date form of v. Strings that do not parse
// as dates are returned unchanged so they can still be compared verbatim.
func DateString(v any) (string, error) {
	t, err := Date(v)
	if err == nil {
		return t.Format(DateLayout), nil
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return "", err
}

// Duration accepts time.Duration, Go duration strings ("3m45s"), clock
// strings ("H:MM:SS" with optional fraction) and numbers of seconds.
func Duration(v any) (time.Duration, error) {
	switch x := v.(type) {
	case time.Duration:
		return x, nil
	case string:
		s := strings.TrimSpace(x)
		if d, err := time.ParseDuration(s); err == nil {
			return d, nil
		}
		if strings.Contains(s, ":") {
			return parseClock(s)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("parse duration %q", x)
		}
		return seconds(f), nil
	case nil:
		return 0, errNil
	}
	f, err := Float(v)
	if err != nil {
		return 0, err
	}
	return seconds(f), nil
}

// Clock formats d as H:MM:SS with a fractional part when needed.
func Clock(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	out := fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	if d > 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", int64(d)), "0")
		out += "." + frac
	}
	return out
}

func parseClock(s string) (time.Duration, error) {
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("parse duration %q", s)
	}
	var total float64
	for _, p := range parts {
		f, err := strconv.ParseFloat(p, 64)
		if err != nil || f < 0 {
			return 0, fmt.Errorf("parse duration %q", s)
		}
		total = total*60 + f
	}
	if neg {
		total = -total
	}
	return seconds(total), nil
}

func seconds(f float64) time.Duration {
	return time.Duration(math.Round(f * float64(time.Second)))
}

// Strings coerces a scalar or sequence element-wise to strings.
func Strings(v any) ([]string, error) {
	items := AsList(v)
	out := make([]string, len(items))
	for i, it := range items {
		s, err := String(it)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = s
	}
	return out, nil
}

// Floats coerces a scalar or sequence element-wise to float64.
func Floats(v any) ([]float64, error) {
	items := AsList(v)
	out := make([]float64, len(items))
	for i, it := range items {
		f, err := Float(it)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Equal compares two scalars loosely: numbers by value, everything else by
// document text.
func Equal(a, b any) bool {
	if fa, err := Float(a); err == nil {
		if fb, err := Float(b); err == nil {
			return fa == fb
		}
	}
	sa, errA := String(a)
	sb, errB := String(b)
	return errA == nil && errB == nil && sa == sb
}
