package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type NutrientInput struct {
	Name string
	Unit string
}

func CreateNutrient(ctx context.Context, st *store.Store, in NutrientInput) (int64, error) {
	name, err := requireName("nutrient", in.Name)
	if err != nil {
		return 0, err
	}
	unit, err := engine.ParseUnit(in.Unit)
	if err != nil {
		return 0, err
	}
	return st.CreateNutrient(ctx, name, string(unit))
}

func ListNutrients(ctx context.Context, st *store.Store) ([]model.Nutrient, error) {
	return st.ListNutrients(ctx)
}

// ResolveNutrient looks a nutrient up by numeric id or case-insensitive name.
func ResolveNutrient(ctx context.Context, st *store.Store, idOrName string) (model.Nutrient, error) {
	idOrName = strings.TrimSpace(idOrName)
	if idOrName == "" {
		return model.Nutrient{}, fmt.Errorf("%w: nutrient identifier is required", engine.ErrInvalidInput)
	}
	if id, err := parseIDLoose(idOrName); err == nil {
		return st.GetNutrient(ctx, id)
	}
	return st.GetNutrientByName(ctx, idOrName)
}

// UpdateNutrient renames a nutrient or changes its unit. The unit is fixed once any
// ingredient value references the nutrient, since stored densities and snapshots are
// expressed in it.
func UpdateNutrient(ctx context.Context, st *store.Store, idOrName string, in NutrientInput) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		current, err := ResolveNutrient(ctx, tx, idOrName)
		if err != nil {
			return err
		}
		next := current
		if strings.TrimSpace(in.Name) != "" {
			next.Name = strings.TrimSpace(in.Name)
		}
		if strings.TrimSpace(in.Unit) != "" {
			unit, err := engine.ParseUnit(in.Unit)
			if err != nil {
				return err
			}
			next.Unit = string(unit)
		}
		if next.Unit != current.Unit {
			count, err := tx.NutrientValueCount(ctx, current.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: nutrient %q unit is fixed while %d ingredient values use it", engine.ErrInvalidInput, current.Name, count)
			}
		}
		return tx.UpdateNutrient(ctx, next)
	})
}
