// Package unit handles "<number> <unit>" literals and the unit-tagged model
// form {value, unit} used for floats declared with a unit.
package unit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recordex/internal/domain/convert"
	"github.com/kailas-cloud/recordex/internal/domain/document"
)

// Dimension groups units that convert into each other.
type Dimension string

// Known dimensions.
const (
	Length      Dimension = "length"
	Time        Dimension = "time"
	Frequency   Dimension = "frequency"
	Energy      Dimension = "energy"
	Mass        Dimension = "mass"
	Pressure    Dimension = "pressure"
	Temperature Dimension = "temperature"
	Volume      Dimension = "volume"
)

// Unit is a named scale relative to its dimension's base unit.
type Unit struct {
	Name      string
	Dimension Dimension
	Scale     float64
}

var units = map[string]Unit{}

func define(d Dimension, scale float64, names ...string) {
	for _, n := range names {
		units[n] = Unit{Name: names[0], Dimension: d, Scale: scale}
	}
}

func init() {
	define(Length, 1, "m")
	define(Length, 1e3, "km")
	define(Length, 1e-2, "cm")
	define(Length, 1e-3, "mm")
	define(Length, 1e-6, "um", "µm")
	define(Length, 1e-9, "nm")
	define(Length, 1e-10, "angstrom", "Å", "A")

	define(Time, 1, "s", "sec")
	define(Time, 1e-3, "ms")
	define(Time, 1e-6, "us", "µs")
	define(Time, 1e-9, "ns")
	define(Time, 1e-12, "ps")
	define(Time, 60, "min")
	define(Time, 3600, "h", "hr")

	define(Frequency, 1, "Hz")
	define(Frequency, 1e3, "kHz")
	define(Frequency, 1e6, "MHz")
	define(Frequency, 1e9, "GHz")
	define(Frequency, 1e12, "THz")

	define(Energy, 1, "J")
	define(Energy, 1e3, "kJ")
	define(Energy, 1.602176634e-19, "eV")
	define(Energy, 1.602176634e-22, "meV")
	define(Energy, 1.602176634e-16, "keV")

	define(Mass, 1, "kg")
	define(Mass, 1e-3, "g")
	define(Mass, 1e-6, "mg")
	define(Mass, 1.66053906660e-27, "amu", "u", "Da")

	define(Pressure, 1, "Pa")
	define(Pressure, 1e3, "kPa")
	define(Pressure, 1e6, "MPa")
	define(Pressure, 1e9, "GPa")
	define(Pressure, 1e5, "bar")
	define(Pressure, 101325, "atm")

	define(Temperature, 1, "K")

	define(Volume, 1, "m^3")
	define(Volume, 1e-30, "angstrom^3", "Å^3", "A^3")
}

// Lookup returns the unit registered under name.
func Lookup(name string) (Unit, error) {
	u, ok := units[strings.TrimSpace(name)]
	if !ok {
		return Unit{}, fmt.Errorf("unknown unit %q", name)
	}
	return u, nil
}

// Convert rescales v from one unit to another of the same dimension.
func Convert(v float64, from, to string) (float64, error) {
	if from == to {
		return v, nil
	}
	fu, err := Lookup(from)
	if err != nil {
		return 0, err
	}
	tu, err := Lookup(to)
	if err != nil {
		return 0, err
	}
	if fu.Name == tu.Name {
		return v, nil
	}
	if fu.Dimension != tu.Dimension {
		return 0, fmt.Errorf("cannot convert %s (%s) to %s (%s)", from, fu.Dimension, to, tu.Dimension)
	}
	return v * fu.Scale / tu.Scale, nil
}

// ParseLiteral splits "<number> <unit>" into its parts. The unit is empty
// when the literal is a bare number.
func ParseLiteral(s string) (float64, string, error) {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return 0, "", fmt.Errorf("empty unit literal")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, "", fmt.Errorf("invalid number in literal %q: %w", s, err)
	}
	name := strings.Join(fields[1:], " ")
	if name != "" {
		if _, err := Lookup(name); err != nil {
			return 0, "", err
		}
	}
	return v, name, nil
}

// ParseIn parses a literal and expresses it in target. A bare number is taken
// to already be in target.
func ParseIn(s, target string) (float64, error) {
	v, from, err := ParseLiteral(s)
	if err != nil {
		return 0, err
	}
	if from == "" {
		return v, nil
	}
	return Convert(v, from, target)
}

// Model builds the unit-tagged literal {value, unit}.
func Model(v float64, name string) *document.Tree {
	t := document.New()
	t.Set("value", v)
	t.Set("unit", name)
	return t
}

// FromModel reads a float expressed in target from a model literal: a
// {value, unit} tree, a "<number> <unit>" string or a bare number.
func FromModel(raw any, target string) (float64, error) {
	switch x := raw.(type) {
	case *document.Tree:
		rv, ok := x.Get("value")
		if !ok {
			return 0, fmt.Errorf("unit literal has no value")
		}
		v, err := convert.Float(rv)
		if err != nil {
			return 0, err
		}
		from := target
		if ru, ok := x.Get("unit"); ok && ru != nil {
			if s, isStr := ru.(string); isStr && s != "" {
				from = s
			}
		}
		return Convert(v, from, target)
	case string:
		return ParseIn(x, target)
	default:
		return convert.Float(raw)
	}
}
