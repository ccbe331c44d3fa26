package unit

import (
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/recordex/internal/domain/document"
)

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9*math.Max(1, math.Abs(b)) }

func TestConvert(t *testing.T) {
	tests := []struct {
		v        float64
		from, to string
		want     float64
	}{
		{5, "kHz", "Hz", 5000},
		{5, "MHz", "kHz", 5000},
		{1, "angstrom", "nm", 0.1},
		{2, "h", "min", 120},
		{1, "Å", "angstrom", 1},
	}
	for _, tt := range tests {
		got, err := Convert(tt.v, tt.from, tt.to)
		if err != nil {
			t.Errorf("Convert(%v %s->%s): %v", tt.v, tt.from, tt.to, err)
			continue
		}
		if !approx(got, tt.want) {
			t.Errorf("Convert(%v %s->%s) = %v, want %v", tt.v, tt.from, tt.to, got, tt.want)
		}
	}
}

func TestConvert_Errors(t *testing.T) {
	if _, err := Convert(1, "kHz", "m"); err == nil || !strings.Contains(err.Error(), "cannot convert") {
		t.Errorf("err = %v", err)
	}
	if _, err := Convert(1, "parsec", "m"); err == nil || !strings.Contains(err.Error(), "unknown unit") {
		t.Errorf("err = %v", err)
	}
}

func TestParseLiteral(t *testing.T) {
	v, u, err := ParseLiteral(" 44.1 kHz ")
	if err != nil || v != 44.1 || u != "kHz" {
		t.Errorf("ParseLiteral = %v %q %v", v, u, err)
	}
	v, u, err = ParseLiteral("7")
	if err != nil || v != 7 || u != "" {
		t.Errorf("ParseLiteral bare = %v %q %v", v, u, err)
	}
	for _, bad := range []string{"", "abc kHz", "5 furlongs"} {
		if _, _, err := ParseLiteral(bad); err == nil {
			t.Errorf("ParseLiteral(%q): expected error", bad)
		}
	}
}

func TestParseIn(t *testing.T) {
	got, err := ParseIn("2 MHz", "kHz")
	if err != nil || !approx(got, 2000) {
		t.Errorf("ParseIn = %v, %v", got, err)
	}
	got, err = ParseIn("2", "kHz")
	if err != nil || got != 2 {
		t.Errorf("ParseIn bare = %v, %v", got, err)
	}
}

func TestModelRoundTrip(t *testing.T) {
	m := Model(44.1, "kHz")
	got, err := FromModel(m, "kHz")
	if err != nil || got != 44.1 {
		t.Errorf("FromModel = %v, %v", got, err)
	}

	other := document.New()
	other.Set("value", "1.5")
	other.Set("unit", "MHz")
	got, err = FromModel(other, "kHz")
	if err != nil || !approx(got, 1500) {
		t.Errorf("FromModel converted = %v, %v", got, err)
	}

	got, err = FromModel(int64(3), "kHz")
	if err != nil || got != 3 {
		t.Errorf("FromModel bare = %v, %v", got, err)
	}

	if _, err := FromModel(document.New(), "kHz"); err == nil {
		t.Error("expected error for literal without value")
	}
}
