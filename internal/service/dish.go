package service

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type DishInput struct {
	Name  string
	Notes string
}

func CreateDish(ctx context.Context, st *store.Store, in DishInput) (int64, error) {
	name, err := requireName("dish", in.Name)
	if err != nil {
		return 0, err
	}
	return st.CreateDish(ctx, name, strings.TrimSpace(in.Notes))
}

func ListDishes(ctx context.Context, st *store.Store) ([]model.Dish, error) {
	return st.ListDishes(ctx)
}

// ResolveDish accepts a numeric id or a case-insensitive name.
func ResolveDish(ctx context.Context, st *store.Store, idOrName string) (model.Dish, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return model.Dish{}, fmt.Errorf("%w: dish identifier is required", engine.ErrInvalidInput)
	}
	if id, err := parseIDLoose(idOrName); err == nil {
		return st.GetDish(ctx, id)
	}
	return st.GetDishByName(ctx, idOrName)
}

func UpdateDish(ctx context.Context, st *store.Store, idOrName string, in DishInput) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		d, err := ResolveDish(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		if strings.TrimSpace(in.Name) != "" {
			d.Name = strings.TrimSpace(in.Name)
		}
		if in.Notes != "" {
			d.Notes = strings.TrimSpace(in.Notes)
		}
		return tx.UpdateDish(ctx, d)
	})
}

func DeleteDish(ctx context.Context, st *store.Store, idOrName string) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		d, err := ResolveDish(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		return tx.DeleteDish(ctx, d.ID)
	})
}

func validateGrams(grams float64) error {
	if math.IsNaN(grams) || math.IsInf(grams, 0) || grams <= 0 {
		return fmt.Errorf("%.2f g: %w", grams, engine.ErrInvalidGrams)
	}
	return nil
}

func AddDishIngredient(ctx context.Context, st *store.Store, dishRef, ingredientRef string, grams float64) (int64, error) {
	if err := validateGrams(grams); err != nil {
		return 0, err
	}
	var id int64
	err := st.InTx(ctx, func(tx *store.Store) error {
		d, err := ResolveDish(ctx, tx, dishRef)
		if err != nil {
			return err
		}
		ing, err := ResolveIngredient(ctx, tx, ingredientRef)
		if err != nil {
			return err
		}
		id, err = tx.AddDishIngredient(ctx, d.ID, ing.ID, grams)
		return err
	})
	return id, err
}

func UpdateDishIngredient(ctx context.Context, st *store.Store, dishRef string, entryID int64, grams float64) error {
	if err := validateGrams(grams); err != nil {
		return err
	}
	return st.InTx(ctx, func(tx *store.Store) error {
		d, err := ResolveDish(ctx, tx, dishRef)
		if err != nil {
			return err
		}
		return tx.UpdateDishIngredient(ctx, d.ID, entryID, grams)
	})
}

func RemoveDishIngredient(ctx context.Context, st *store.Store, dishRef string, entryID int64) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		d, err := ResolveDish(ctx, tx, dishRef)
		if err != nil {
			return err
		}
		return tx.RemoveDishIngredient(ctx, d.ID, entryID)
	})
}

// GetDishComposition resolves the dish the same way meal logging does.
func GetDishComposition(ctx context.Context, st *store.Store, idOrName string) (model.DishComposition, error) {
	return resolveComposition(ctx, st, idOrName)
}

// DishBaseTotals computes the current nutrients of the whole recipe. It reads live
// catalog data and is meant for previews; logged entries keep their own snapshot.
func DishBaseTotals(ctx context.Context, st *store.Store, idOrName string) (model.DishComposition, engine.BaseTotals, error) {
	comp, err := resolveComposition(ctx, st, idOrName)
	if err != nil {
		return model.DishComposition{}, engine.BaseTotals{}, err
	}
	base, err := computeBaseTotals(ctx, st, comp)
	if err != nil {
		return model.DishComposition{}, engine.BaseTotals{}, err
	}
	return comp, base, nil
}

func resolveComposition(ctx context.Context, dishes DishStore, idOrName string) (model.DishComposition, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return model.DishComposition{}, fmt.Errorf("%w: dish identifier is required", engine.ErrInvalidInput)
	}
	if id, err := parseIDLoose(idOrName); err == nil {
		return dishes.GetComposition(ctx, id)
	}
	return dishes.GetCompositionByName(ctx, idOrName)
}

func computeBaseTotals(ctx context.Context, ingredients IngredientStore, comp model.DishComposition) (engine.BaseTotals, error) {
	densities := engine.DensityTable{}
	for _, entry := range comp.Entries {
		if _, ok := densities[entry.IngredientID]; ok {
			continue
		}
		density, err := ingredients.GetDensity(ctx, entry.IngredientID)
		if err != nil {
			return engine.BaseTotals{}, err
		}
		densities[entry.IngredientID] = density
	}
	return engine.ComputeBaseTotals(comp, densities)
}
