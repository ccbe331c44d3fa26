package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// EncodeJSON renders t as indented JSON, keys in Tree order.
func EncodeJSON(t *Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, t, 0); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any, depth int) error {
	switch x := v.(type) {
	case *Tree:
		if x.Len() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteString("{\n")
		for i, k := range x.keys {
			indent(buf, depth+1)
			key, err := json.Marshal(k)
			if err != nil {
				return fmt.Errorf("encode key %q: %w", k, err)
			}
			buf.Write(key)
			buf.WriteString(": ")
			if err := writeJSON(buf, x.vals[k], depth+1); err != nil {
				return err
			}
			if i < len(x.keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte('}')
	case []any:
		if len(x) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteString("[\n")
		for i, e := range x {
			indent(buf, depth+1)
			if err := writeJSON(buf, e, depth+1); err != nil {
				return err
			}
			if i < len(x)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		indent(buf, depth)
		buf.WriteByte(']')
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return fmt.Errorf("encode %v: not representable in JSON", x)
		}
		buf.WriteString(formatFloat(x))
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Errorf("encode %v: %w", x, err)
		}
		buf.Write(raw)
	}
	return nil
}

func indent(buf *bytes.Buffer, depth int) {
	for i := 0; i < depth; i++ {
		buf.WriteString("  ")
	}
}

// DecodeJSON parses a JSON object into a Tree, preserving key order.
func DecodeJSON(data []byte) (*Tree, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("decode json: top level must be an object")
	}
	t, err := readJSONObject(dec)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode json: trailing data after top-level object")
	}
	return t, nil
}

func readJSONObject(dec *json.Decoder) (*Tree, error) {
	t := New()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		if d, ok := tok.(json.Delim); ok && d == '}' {
			return t, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		if _, dup := t.Get(key); dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		v, err := readJSONValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		t.Set(key, v)
	}
}

func readJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch x := tok.(type) {
	case json.Delim:
		switch x {
		case '{':
			return readJSONObject(dec)
		case '[':
			list := []any{}
			for {
				if !dec.More() {
					if _, err := dec.Token(); err != nil {
						return nil, err
					}
					return list, nil
				}
				e, err := readJSONValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, e)
			}
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", x)
		}
	case json.Number:
		return parseNumber(string(x))
	case string, bool, nil:
		return x, nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func parseNumber(s string) (any, error) {
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return f, nil
}
