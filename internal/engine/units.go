package engine

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	UnitMilligram     Unit = "mg"
	UnitGram          Unit = "g"
	UnitMicrogram     Unit = "mcg"
	UnitKilocalorie   Unit = "kcal"
	UnitInternational Unit = "IU"
)

type unitKind string

const (
	unitKindMass   unitKind = "mass"
	unitKindEnergy unitKind = "energy"
	unitKindIU     unitKind = "iu"
)

type unitDef struct {
	unit       Unit
	kind       unitKind
	toBaseUnit float64
}

var unitTable = map[string]unitDef{
	// mass (base = g)
	"mcg":       {unit: UnitMicrogram, kind: unitKindMass, toBaseUnit: 0.000001},
	"ug":        {unit: UnitMicrogram, kind: unitKindMass, toBaseUnit: 0.000001},
	"mg":        {unit: UnitMilligram, kind: unitKindMass, toBaseUnit: 0.001},
	"g":         {unit: UnitGram, kind: unitKindMass, toBaseUnit: 1},
	"microgram": {unit: UnitMicrogram, kind: unitKindMass, toBaseUnit: 0.000001},
	"milligram": {unit: UnitMilligram, kind: unitKindMass, toBaseUnit: 0.001},
	"gram":      {unit: UnitGram, kind: unitKindMass, toBaseUnit: 1},

	// energy and international units only convert to themselves
	"kcal":               {unit: UnitKilocalorie, kind: unitKindEnergy, toBaseUnit: 1},
	"kilocalorie":        {unit: UnitKilocalorie, kind: unitKindEnergy, toBaseUnit: 1},
	"iu":                 {unit: UnitInternational, kind: unitKindIU, toBaseUnit: 1},
	"international-unit": {unit: UnitInternational, kind: unitKindIU, toBaseUnit: 1},
}

// ParseUnit maps spellings like "MG", "ug" or "kilocalorie" onto the closed unit set.
func ParseUnit(value string) (Unit, error) {
	def, ok := resolveUnit(value)
	if !ok {
		return "", fmt.Errorf("%w %q (use mg, g, mcg, kcal, IU)", ErrUnknownUnit, value)
	}
	return def.unit, nil
}

// ConvertAmount converts between units of the same dimension.
func ConvertAmount(value float64, from, to string) (float64, error) {
	if !finite(value) {
		return 0, fmt.Errorf("amount %v: %w", value, ErrInvalidAmount)
	}
	src, ok := resolveUnit(from)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownUnit, from)
	}
	dst, ok := resolveUnit(to)
	if !ok {
		return 0, fmt.Errorf("%w %q", ErrUnknownUnit, to)
	}
	if src.kind != dst.kind {
		return 0, fmt.Errorf("%w: cannot convert %s to %s", ErrInvalidInput, src.unit, dst.unit)
	}
	out, _ := decimal.NewFromFloat(value).
		Mul(decimal.NewFromFloat(src.toBaseUnit)).
		Div(decimal.NewFromFloat(dst.toBaseUnit)).
		Float64()
	if !finite(out) {
		return 0, fmt.Errorf("amount %v %s overflows in %s: %w", value, src.unit, dst.unit, ErrInvalidAmount)
	}
	return out, nil
}

func resolveUnit(unit string) (unitDef, bool) {
	u := strings.ToLower(strings.TrimSpace(unit))
	def, ok := unitTable[u]
	return def, ok
}
