package document

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Format names a textual encoding of a Tree.
type Format string

// Supported encodings.
const (
	JSON Format = "json"
	XML  Format = "xml"
	YAML Format = "yaml"
)

// ParseFormat validates a format name (case-insensitive, "yml" accepted).
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSON, nil
	case "xml":
		return XML, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown document format %q", s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string { return "." + string(f) }

// Encode serializes t in the given format.
func Encode(t *Tree, f Format) ([]byte, error) {
	switch f {
	case JSON:
		return EncodeJSON(t)
	case XML:
		return EncodeXML(t)
	case YAML:
		return EncodeYAML(t)
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
}

// Decode parses data in the given format.
func Decode(data []byte, f Format) (*Tree, error) {
	switch f {
	case JSON:
		return DecodeJSON(data)
	case XML:
		return DecodeXML(data)
	case YAML:
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unknown document format %q", f)
	}
}

// Detect guesses the encoding of data from its first significant byte.
func Detect(data []byte) Format {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")), " \t\r\n")
	switch {
	case len(trimmed) > 0 && trimmed[0] == '<':
		return XML
	case len(trimmed) > 0 && trimmed[0] == '{':
		return JSON
	default:
		return YAML
	}
}

// DecodeAny parses data in whichever format Detect reports.
func DecodeAny(data []byte) (*Tree, error) {
	return Decode(data, Detect(data))
}

// formatFloat renders f so that it decodes back as a float (always has a
// fraction or exponent).
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// scalarText renders a scalar for text-only encodings.
func scalarText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
