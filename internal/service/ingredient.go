package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

func CreateIngredient(ctx context.Context, st *store.Store, name string) (int64, error) {
	name, err := requireName("ingredient", name)
	if err != nil {
		return 0, err
	}
	return st.CreateIngredient(ctx, name, "manual", "")
}

func ListIngredients(ctx context.Context, st *store.Store) ([]model.Ingredient, error) {
	return st.ListIngredients(ctx)
}

// ResolveIngredient looks an ingredient up by id or name and loads its nutrient values.
func ResolveIngredient(ctx context.Context, st *store.Store, idOrName string) (model.Ingredient, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return model.Ingredient{}, fmt.Errorf("%w: ingredient identifier is required", engine.ErrInvalidInput)
	}
	var ing model.Ingredient
	var err error
	if id, perr := parseIDLoose(idOrName); perr == nil {
		ing, err = st.GetIngredient(ctx, id)
	} else {
		ing, err = st.GetIngredientByName(ctx, idOrName)
	}
	if err != nil {
		return model.Ingredient{}, err
	}
	values, err := st.ListIngredientValues(ctx, ing.ID)
	if err != nil {
		return model.Ingredient{}, err
	}
	ing.Values = values
	return ing, nil
}

type IngredientValueInput struct {
	Ingredient   string
	Nutrient     string
	AmountPer100 float64
	// Unit is the unit AmountPer100 is given in. Empty means the nutrient's catalog unit.
	Unit string
}

// SetIngredientValue stores the per-100 g amount of a nutrient, converting from in.Unit
// into the catalog unit. Entries logged earlier keep their snapshot.
func SetIngredientValue(ctx context.Context, st *store.Store, in IngredientValueInput) (float64, error) {
	if err := validateNonNegativeFloat("amount per 100 g", in.AmountPer100); err != nil {
		return 0, err
	}
	var stored float64
	err := st.InTx(ctx, func(tx *store.Store) error {
		ing, err := ResolveIngredient(ctx, tx, in.Ingredient)
		if err != nil {
			return err
		}
		nutrient, err := ResolveNutrient(ctx, tx, in.Nutrient)
		if err != nil {
			return err
		}
		stored = in.AmountPer100
		if strings.TrimSpace(in.Unit) != "" {
			if stored, err = engine.ConvertAmount(in.AmountPer100, in.Unit, nutrient.Unit); err != nil {
				return fmt.Errorf("nutrient %q: %w", nutrient.Name, err)
			}
		}
		return tx.SetIngredientValue(ctx, ing.ID, nutrient.ID, stored)
	})
	if err != nil {
		return 0, err
	}
	return stored, nil
}

func RemoveIngredientValue(ctx context.Context, st *store.Store, ingredientRef, nutrientRef string) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		ing, err := ResolveIngredient(ctx, tx, ingredientRef)
		if err != nil {
			return err
		}
		nutrient, err := ResolveNutrient(ctx, tx, nutrientRef)
		if err != nil {
			return err
		}
		return tx.DeleteIngredientValue(ctx, ing.ID, nutrient.ID)
	})
}

// DeleteIngredient removes an ingredient that no dish uses.
func DeleteIngredient(ctx context.Context, st *store.Store, idOrName string) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		ing, err := ResolveIngredient(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		count, err := tx.IngredientUsageCount(ctx, ing.ID)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: ingredient %q is used by %d dish entries", engine.ErrInvalidInput, ing.Name, count)
		}
		return tx.DeleteIngredient(ctx, ing.ID)
	})
}
