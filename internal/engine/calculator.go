package engine

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DensityTable maps ingredient id -> nutrient id -> amount per 100 g.
type DensityTable map[int64]map[int64]float64

// BaseTotals are the nutrient amounts of a dish as composed, before any serving is applied.
type BaseTotals struct {
	TotalWeightGrams float64
	PerNutrient      Amounts
}

// ComputeBaseTotals sums density x grams / 100 over every composition entry. An
// ingredient without a value for a nutrient contributes nothing to it. No rounding
// happens here.
func ComputeBaseTotals(comp model.DishComposition, densities DensityTable) (BaseTotals, error) {
	if len(comp.Entries) == 0 {
		return BaseTotals{}, fmt.Errorf("dish %q: %w", comp.DishName, ErrEmptyRecipe)
	}

	weight := decimal.Zero
	sums := decimalSum{}
	for _, entry := range comp.Entries {
		if !finite(entry.Grams) || entry.Grams <= 0 {
			return BaseTotals{}, fmt.Errorf("dish %q ingredient %q: %w", comp.DishName, entry.IngredientName, ErrInvalidGrams)
		}
		grams := decimal.NewFromFloat(entry.Grams)
		weight = weight.Add(grams)
		for nutrientID, per100 := range densities[entry.IngredientID] {
			if !finite(per100) || per100 < 0 {
				return BaseTotals{}, fmt.Errorf("ingredient %q nutrient %d: %w", entry.IngredientName, nutrientID, ErrInvalidAmount)
			}
			contribution := decimal.NewFromFloat(per100).Mul(grams).Div(hundred)
			sums[nutrientID] = sums[nutrientID].Add(contribution)
		}
	}

	totalWeight, _ := weight.Float64()
	if !finite(totalWeight) {
		return BaseTotals{}, fmt.Errorf("dish %q weight overflows: %w", comp.DishName, ErrInvalidGrams)
	}
	perNutrient := sums.amounts(nil)
	if err := checkFinite(perNutrient); err != nil {
		return BaseTotals{}, fmt.Errorf("dish %q: %w", comp.DishName, err)
	}
	return BaseTotals{
		TotalWeightGrams: totalWeight,
		PerNutrient:      perNutrient,
	}, nil
}
