package service

import (
	"context"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type DishStore interface {
	GetComposition(ctx context.Context, dishID int64) (model.DishComposition, error)
	GetCompositionByName(ctx context.Context, name string) (model.DishComposition, error)
}

type IngredientStore interface {
	// GetDensity returns nutrient id -> amount per 100 g.
	GetDensity(ctx context.Context, ingredientID int64) (map[int64]float64, error)
}

type ServingStore interface {
	GetAgeBand(ctx context.Context, ageMonths int) (model.AgeBand, error)
	GetServingRule(ctx context.Context, ageBandID int64) (model.ServingRule, error)
}

type PatientDirectory interface {
	GetAgeInMonths(ctx context.Context, patientID int64, at time.Time) (int, error)
}

type MealLogStore interface {
	Append(ctx context.Context, entry model.MealLogEntry) (int64, error)
	// QueryByPatientAndDate returns live entries with from <= logged_at < to.
	QueryByPatientAndDate(ctx context.Context, patientID int64, from, to time.Time) ([]model.MealLogEntry, error)
}

type mealSlotLookup interface {
	GetMealSlot(ctx context.Context, name string) (model.MealSlot, error)
}

// mealBackend is everything one meal log needs, read and written inside one transaction.
type mealBackend interface {
	DishStore
	IngredientStore
	ServingStore
	PatientDirectory
	MealLogStore
	mealSlotLookup
}

var _ mealBackend = (*store.Store)(nil)
