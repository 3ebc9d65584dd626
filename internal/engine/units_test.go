package engine_test

import (
	"errors"
	"math"
	"testing"

	"github.com/saadjs/nutrilog/internal/engine"
)

func TestParseUnitAliases(t *testing.T) {
	t.Parallel()
	cases := map[string]engine.Unit{
		"MG":          engine.UnitMilligram,
		" ug ":        engine.UnitMicrogram,
		"gram":        engine.UnitGram,
		"kilocalorie": engine.UnitKilocalorie,
		"iu":          engine.UnitInternational,
	}
	for in, want := range cases {
		got, err := engine.ParseUnit(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: expected %s, got %s", in, want, got)
		}
	}

	if _, err := engine.ParseUnit("cup"); !errors.Is(err, engine.ErrUnknownUnit) {
		t.Fatalf("expected unknown unit, got %v", err)
	}
}

func TestConvertAmountMass(t *testing.T) {
	t.Parallel()

	got, err := engine.ConvertAmount(1800, "mcg", "mg")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got != 1.8 {
		t.Fatalf("expected 1.8 mg, got %v", got)
	}

	got, err = engine.ConvertAmount(2.5, "g", "mg")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if got != 2500 {
		t.Fatalf("expected 2500 mg, got %v", got)
	}
}

func TestConvertAmountRejectsCrossDimension(t *testing.T) {
	t.Parallel()

	if _, err := engine.ConvertAmount(100, "kcal", "g"); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := engine.ConvertAmount(100, "IU", "mcg"); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	got, err := engine.ConvertAmount(400, "IU", "iu")
	if err != nil || got != 400 {
		t.Fatalf("IU identity: got %v, %v", got, err)
	}
}

func TestConvertAmountRejectsNonFinite(t *testing.T) {
	t.Parallel()

	if _, err := engine.ConvertAmount(math.NaN(), "mg", "mg"); !errors.Is(err, engine.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for NaN, got %v", err)
	}
	if _, err := engine.ConvertAmount(math.Inf(1), "g", "mg"); !errors.Is(err, engine.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount for +Inf, got %v", err)
	}
	if _, err := engine.ConvertAmount(math.MaxFloat64, "g", "mcg"); !errors.Is(err, engine.ErrInvalidAmount) {
		t.Fatalf("expected overflow to be rejected, got %v", err)
	}
}
