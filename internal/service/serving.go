package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type AgeBandInput struct {
	MinMonths   int
	MaxMonths   int
	Description string
}

// CreateAgeBand adds a band covering MinMonths..MaxMonths inclusive. Bands may not
// overlap, so every age resolves to at most one serving rule.
func CreateAgeBand(ctx context.Context, st *store.Store, in AgeBandInput) (int64, error) {
	if in.MinMonths < 0 {
		return 0, fmt.Errorf("%w: min months must be >= 0", engine.ErrInvalidInput)
	}
	if in.MaxMonths < in.MinMonths {
		return 0, fmt.Errorf("%w: max months %d is below min months %d", engine.ErrInvalidInput, in.MaxMonths, in.MinMonths)
	}
	var id int64
	err := st.InTx(ctx, func(tx *store.Store) error {
		overlapping, err := tx.OverlappingAgeBands(ctx, in.MinMonths, in.MaxMonths, 0)
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			b := overlapping[0]
			return fmt.Errorf("%w: band %d-%d overlaps band %d (%d-%d)", engine.ErrInvalidInput, in.MinMonths, in.MaxMonths, b.ID, b.MinMonths, b.MaxMonths)
		}
		id, err = tx.CreateAgeBand(ctx, model.AgeBand{
			MinMonths:   in.MinMonths,
			MaxMonths:   in.MaxMonths,
			Description: strings.TrimSpace(in.Description),
		})
		return err
	})
	return id, err
}

func ListAgeBands(ctx context.Context, st *store.Store) ([]model.AgeBand, error) {
	return st.ListAgeBands(ctx)
}

func DeleteAgeBand(ctx context.Context, st *store.Store, id int64) error {
	return st.DeleteAgeBand(ctx, id)
}

// SetServingRule sets the standard serving weight of an age band.
func SetServingRule(ctx context.Context, st *store.Store, ageBandID int64, grams float64) error {
	if err := validateGrams(grams); err != nil {
		return fmt.Errorf("serving rule: %w", err)
	}
	return st.InTx(ctx, func(tx *store.Store) error {
		if _, err := tx.GetAgeBandByID(ctx, ageBandID); err != nil {
			return err
		}
		return tx.SetServingRule(ctx, model.ServingRule{AgeBandID: ageBandID, ServingGrams: grams})
	})
}

func ListServingRules(ctx context.Context, st *store.Store) ([]model.ServingRule, error) {
	return st.ListServingRules(ctx)
}

// SetNutrientTarget sets the daily amount a patient in the band should reach, in the
// nutrient's catalog unit.
func SetNutrientTarget(ctx context.Context, st *store.Store, ageBandID int64, nutrientRef string, daily float64) error {
	if err := validateNonNegativeFloat("daily target", daily); err != nil {
		return err
	}
	return st.InTx(ctx, func(tx *store.Store) error {
		if _, err := tx.GetAgeBandByID(ctx, ageBandID); err != nil {
			return err
		}
		nutrient, err := ResolveNutrient(ctx, tx, nutrientRef)
		if err != nil {
			return err
		}
		return tx.SetNutrientTarget(ctx, model.NutrientTarget{AgeBandID: ageBandID, NutrientID: nutrient.ID, DailyAmount: daily})
	})
}

func ListNutrientTargets(ctx context.Context, st *store.Store, ageBandID int64) ([]model.NutrientTarget, error) {
	return st.ListNutrientTargets(ctx, ageBandID)
}
