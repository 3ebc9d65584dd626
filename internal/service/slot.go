package service

import (
	"context"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

func AddMealSlot(ctx context.Context, st *store.Store, name string) (int64, error) {
	name, err := requireName("meal slot", name)
	if err != nil {
		return 0, err
	}
	return st.CreateMealSlot(ctx, normalizeName(name))
}

func ListMealSlots(ctx context.Context, st *store.Store) ([]model.MealSlot, error) {
	return st.ListMealSlots(ctx)
}

// DeleteMealSlot removes a custom slot nothing is logged under. Default slots stay.
func DeleteMealSlot(ctx context.Context, st *store.Store, name string) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		slot, err := tx.GetMealSlot(ctx, normalizeName(name))
		if err != nil {
			return err
		}
		if slot.IsDefault {
			return fmt.Errorf("%w: meal slot %q is a default slot", engine.ErrInvalidInput, slot.Name)
		}
		count, err := tx.MealSlotUsageCount(ctx, slot.Name)
		if err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: meal slot %q is used by %d entries", engine.ErrInvalidInput, slot.Name, count)
		}
		return tx.DeleteMealSlot(ctx, slot.ID)
	})
}
