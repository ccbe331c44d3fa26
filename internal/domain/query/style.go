package query

import (
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain"
)

// Style is the closed set of query kinds.
type Style string

// Query styles.
const (
	StrMatch     Style = "str_match"
	StrContains  Style = "str_contains"
	ListContains Style = "list_contains"
	IntMatch     Style = "int_match"
	FloatMatch   Style = "float_match"
	DateMatch    Style = "date_match"
	BoolMatch    Style = "bool_match"
)

// Tolerance is the absolute window applied around float_match candidates in
// document filters.
const Tolerance = 0.00001

var styles = []Style{StrMatch, StrContains, ListContains, IntMatch, FloatMatch, DateMatch, BoolMatch}

var aliases = map[string]Style{
	"in_list": ListContains,
}

// Styles returns every style in a stable order.
func Styles() []Style {
	out := make([]Style, len(styles))
	copy(out, styles)
	return out
}

// Aliases returns alternate style names and the style each resolves to.
func Aliases() map[string]Style {
	out := make(map[string]Style, len(aliases))
	for k, v := range aliases {
		out[k] = v
	}
	return out
}

// ParseStyle resolves a style name or alias.
func ParseStyle(name string) (Style, error) {
	n := strings.TrimSpace(name)
	for _, s := range styles {
		if string(s) == n {
			return s, nil
		}
	}
	if s, ok := aliases[n]; ok {
		return s, nil
	}
	return "", &domain.UnknownStyleError{Registry: "query", Style: name}
}

// Description returns the default description of the style.
func (s Style) Description() string {
	switch s {
	case StrMatch:
		return "Query a str field for specific values"
	case StrContains:
		return "Query a str field for containing specific values"
	case ListContains:
		return "Query a list field for containing specific values"
	case IntMatch:
		return "Query an int field for specific values"
	case FloatMatch:
		return "Query a float field for specific values"
	case DateMatch:
		return "Query a date field for specific values"
	case BoolMatch:
		return "Query a bool field for specific values"
	default:
		return ""
	}
}

// containment reports whether candidates are AND'd (every one must be found)
// rather than OR'd.
func (s Style) containment() bool {
	return s == StrContains || s == ListContains
}
