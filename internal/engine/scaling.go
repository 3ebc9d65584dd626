package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Consumption is what a single logged serving delivered.
type Consumption struct {
	Mode          ServingMode
	ServingGrams  float64
	ScalingFactor float64
	Amounts       Amounts
}

// Scale applies target to base. Amounts are rounded once, at the end, to
// AmountPrecision places; the factor is not clamped, so servings larger than the
// recipe yield proportionally larger amounts.
func Scale(base BaseTotals, target ServingTarget) (Consumption, error) {
	if !finite(base.TotalWeightGrams) {
		return Consumption{}, fmt.Errorf("base weight %v g: %w", base.TotalWeightGrams, ErrInvalidGrams)
	}
	var out Consumption
	switch target.mode {
	case ServingModePortion:
		amounts, err := ScaleByFactor(base.PerNutrient, target.multiplier)
		if err != nil {
			return Consumption{}, err
		}
		servingGrams, _ := decimal.NewFromFloat(base.TotalWeightGrams).Mul(decimal.NewFromFloat(target.multiplier)).Float64()
		if !finite(servingGrams) {
			return Consumption{}, fmt.Errorf("serving of %v portions: %w", target.multiplier, ErrInvalidPortion)
		}
		out = Consumption{
			Mode:          target.mode,
			ServingGrams:  RoundAmount(servingGrams),
			ScalingFactor: target.multiplier,
			Amounts:       amounts,
		}
	case ServingModeAgeBand, ServingModeGrams:
		if !finite(target.grams) {
			return Consumption{}, fmt.Errorf("serving of %v g: %w", target.grams, ErrInvalidGrams)
		}
		if base.TotalWeightGrams <= 0 {
			return Consumption{}, fmt.Errorf("base weight %.2f g: %w", base.TotalWeightGrams, ErrDegenerateRecipe)
		}
		if err := checkFinite(base.PerNutrient); err != nil {
			return Consumption{}, err
		}
		grams := decimal.NewFromFloat(target.grams)
		weight := decimal.NewFromFloat(base.TotalWeightGrams)
		factor, _ := grams.Div(weight).Float64()
		out = Consumption{
			Mode:          target.mode,
			ServingGrams:  target.grams,
			ScalingFactor: factor,
			Amounts:       scaleBy(base.PerNutrient, grams, weight),
		}
	default:
		return Consumption{}, fmt.Errorf("%w: serving target is not set", ErrInvalidInput)
	}
	if err := checkFinite(out.Amounts); err != nil {
		return Consumption{}, err
	}
	return out, nil
}

// ScaleByFactor multiplies every amount by factor and rounds the result. It is the
// portion path of Scale. A factor of 0 yields all-zero amounts; NaN and infinities are
// rejected.
func ScaleByFactor(base Amounts, factor float64) (Amounts, error) {
	if !finite(factor) {
		return nil, fmt.Errorf("factor %v: %w", factor, ErrInvalidPortion)
	}
	if err := checkFinite(base); err != nil {
		return nil, err
	}
	return scaleBy(base, decimal.NewFromFloat(factor), decimal.NewFromInt(1)), nil
}

// scaleBy computes base x num / den per nutrient, multiplying before dividing so a
// serving equal to the base weight reproduces the base totals.
func scaleBy(base Amounts, num, den decimal.Decimal) Amounts {
	out := make(Amounts, len(base))
	for id, v := range base {
		scaled := decimal.NewFromFloat(v).Mul(num).Div(den).Round(AmountPrecision)
		f, _ := scaled.Float64()
		out[id] = f
	}
	return out
}

func checkFinite(a Amounts) error {
	for id, v := range a {
		if !finite(v) {
			return fmt.Errorf("nutrient %d amount %v: %w", id, v, ErrInvalidAmount)
		}
	}
	return nil
}
