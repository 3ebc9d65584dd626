package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/provider/usda"
	"github.com/saadjs/nutrilog/internal/store"
)

// FoodFetcher is satisfied by *usda.Client.
type FoodFetcher interface {
	GetFood(ctx context.Context, fdcID int64) (usda.Food, error)
}

type ImportedValue struct {
	NutrientID   int64   `json:"nutrient_id"`
	NutrientName string  `json:"nutrient_name"`
	AmountPer100 float64 `json:"amount_per_100g"`
	Unit         string  `json:"unit"`
}

type SkippedValue struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ImportResult struct {
	IngredientID   int64           `json:"ingredient_id"`
	IngredientName string          `json:"ingredient_name"`
	Created        bool            `json:"created"`
	FDCID          int64           `json:"fdc_id"`
	Imported       []ImportedValue `json:"imported"`
	Skipped        []SkippedValue  `json:"skipped"`
}

// ImportUSDAFood copies the per-100 g values of a FoodData Central food onto an
// ingredient, creating the ingredient when needed. Only nutrients already in the catalog
// are imported; amounts are converted into the catalog unit.
func ImportUSDAFood(ctx context.Context, st *store.Store, fetcher FoodFetcher, fdcID int64, ingredientName string) (ImportResult, error) {
	food, err := fetcher.GetFood(ctx, fdcID)
	if err != nil {
		return ImportResult{}, err
	}
	name := strings.TrimSpace(ingredientName)
	if name == "" {
		name = strings.TrimSpace(food.Description)
	}
	if name == "" {
		return ImportResult{}, fmt.Errorf("%w: food %d has no description; pass an ingredient name", engine.ErrInvalidInput, fdcID)
	}

	result := ImportResult{FDCID: food.FDCID, Imported: []ImportedValue{}, Skipped: []SkippedValue{}}
	err = st.InTx(ctx, func(tx *store.Store) error {
		ing, err := tx.GetIngredientByName(ctx, name)
		switch {
		case errors.Is(err, engine.ErrNotFound):
			id, err := tx.CreateIngredient(ctx, name, "usda", strconv.FormatInt(food.FDCID, 10))
			if err != nil {
				return err
			}
			result.IngredientID, result.IngredientName, result.Created = id, name, true
		case err != nil:
			return err
		default:
			result.IngredientID, result.IngredientName = ing.ID, ing.Name
		}

		nutrients, err := tx.ListNutrients(ctx)
		if err != nil {
			return err
		}
		byName := make(map[string]int, len(nutrients))
		for i, n := range nutrients {
			byName[normalizeName(n.Name)] = i
		}

		seen := map[int64]bool{}
		for _, fn := range food.Nutrients {
			idx, ok := byName[normalizeName(fn.Name)]
			if !ok {
				idx, ok = byName[usda.CanonicalName(fn.Name)]
			}
			if !ok {
				result.Skipped = append(result.Skipped, SkippedValue{Name: fn.Name, Reason: "not in catalog"})
				continue
			}
			target := nutrients[idx]
			if seen[target.ID] {
				result.Skipped = append(result.Skipped, SkippedValue{Name: fn.Name, Reason: "duplicate of " + target.Name})
				continue
			}
			if fn.AmountPer100 < 0 {
				result.Skipped = append(result.Skipped, SkippedValue{Name: fn.Name, Reason: "negative amount"})
				continue
			}
			amount, err := engine.ConvertAmount(fn.AmountPer100, fn.Unit, target.Unit)
			if err != nil {
				result.Skipped = append(result.Skipped, SkippedValue{Name: fn.Name, Reason: err.Error()})
				continue
			}
			amount = engine.RoundAmount(amount)
			if err := tx.SetIngredientValue(ctx, result.IngredientID, target.ID, amount); err != nil {
				return err
			}
			seen[target.ID] = true
			result.Imported = append(result.Imported, ImportedValue{
				NutrientID:   target.ID,
				NutrientName: target.Name,
				AmountPer100: amount,
				Unit:         target.Unit,
			})
		}
		return nil
	})
	if err != nil {
		return ImportResult{}, err
	}
	return result, nil
}
