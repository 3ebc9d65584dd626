package engine_test

import (
	"errors"
	"testing"

	"github.com/saadjs/nutrilog/internal/engine"
)

func TestRoundAmountHalfAwayFromZero(t *testing.T) {
	t.Parallel()
	cases := map[float64]float64{
		4.644:  4.64,
		3.225:  3.23,
		0.005:  0.01,
		-0.005: -0.01,
		2:      2,
	}
	for in, want := range cases {
		if got := engine.RoundAmount(in); got != want {
			t.Fatalf("round %v: expected %v, got %v", in, want, got)
		}
	}
}

func TestEncodeDecodeAmounts(t *testing.T) {
	t.Parallel()

	encoded, err := engine.EncodeAmounts(engine.Amounts{2: 9.72, 1: 4.64})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if encoded != `{"1":4.64,"2":9.72}` {
		t.Fatalf("unexpected encoding %s", encoded)
	}
	decoded, err := engine.DecodeAmounts(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded[1] != 4.64 || decoded[2] != 9.72 {
		t.Fatalf("unexpected decoded amounts %v", decoded)
	}

	empty, err := engine.EncodeAmounts(nil)
	if err != nil || empty != "{}" {
		t.Fatalf("expected {} for empty amounts, got %q (%v)", empty, err)
	}
	if _, err := engine.DecodeAmounts(`{"x":1}`); err == nil {
		t.Fatalf("expected error for non-numeric nutrient id")
	}
	if _, err := engine.DecodeAmounts(`[1,2]`); err == nil {
		t.Fatalf("expected error for non-object snapshot")
	}
}

func TestAmountsNutrientIDsSorted(t *testing.T) {
	t.Parallel()
	ids := engine.Amounts{5: 1, 1: 1, 3: 1}.NutrientIDs()
	if len(ids) != 3 || ids[0] != 1 || ids[1] != 3 || ids[2] != 5 {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

func TestConvertAmount(t *testing.T) {
	t.Parallel()

	got, err := engine.ConvertAmount(1.5, "g", "mg")
	if err != nil || got != 1500 {
		t.Fatalf("expected 1500 mg, got %v (%v)", got, err)
	}
	got, err = engine.ConvertAmount(250, "ug", "mg")
	if err != nil || got != 0.25 {
		t.Fatalf("expected 0.25 mg, got %v (%v)", got, err)
	}
	if _, err := engine.ConvertAmount(1, "kcal", "mg"); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("expected error converting energy to mass, got %v", err)
	}
	if _, err := engine.ParseUnit("pinch"); !errors.Is(err, engine.ErrUnknownUnit) {
		t.Fatalf("expected unknown unit error, got %v", err)
	}
}
