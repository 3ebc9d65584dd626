package service_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/db"
	"github.com/saadjs/nutrilog/internal/service"
	"github.com/saadjs/nutrilog/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	sqldb, err := db.Open(filepath.Join(t.TempDir(), "nutrilog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })
	if err := db.ApplyMigrations(sqldb, db.SQLite); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return store.New(sqldb, db.SQLite)
}

// fixture is a lentil stew of 150 g lentils (3.3 mg iron, 9 g protein per 100 g) and
// 100 g rice (1.5 mg iron), served at 180 g to children aged 12-35 months.
type fixture struct {
	st        *store.Store
	engine    *service.Engine
	ironID    int64
	proteinID int64
	lentilsID int64
	riceID    int64
	dishID    int64
	bandID    int64
	patientID int64
}

func newFixture(t *testing.T, opts ...service.Option) fixture {
	t.Helper()
	ctx := context.Background()
	st := newTestStore(t)
	f := fixture{st: st}

	var err error
	must := func(step string) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", step, err)
		}
	}
	f.ironID, err = service.CreateNutrient(ctx, st, service.NutrientInput{Name: "Iron", Unit: "mg"})
	must("create iron")
	f.proteinID, err = service.CreateNutrient(ctx, st, service.NutrientInput{Name: "Protein", Unit: "g"})
	must("create protein")
	f.lentilsID, err = service.CreateIngredient(ctx, st, "Lentils")
	must("create lentils")
	f.riceID, err = service.CreateIngredient(ctx, st, "Rice")
	must("create rice")
	_, err = service.SetIngredientValue(ctx, st, service.IngredientValueInput{Ingredient: "Lentils", Nutrient: "iron", AmountPer100: 3.3})
	must("set lentil iron")
	_, err = service.SetIngredientValue(ctx, st, service.IngredientValueInput{Ingredient: "Lentils", Nutrient: "protein", AmountPer100: 9})
	must("set lentil protein")
	_, err = service.SetIngredientValue(ctx, st, service.IngredientValueInput{Ingredient: "rice", Nutrient: "Iron", AmountPer100: 1.5})
	must("set rice iron")
	f.dishID, err = service.CreateDish(ctx, st, service.DishInput{Name: "Lentil stew"})
	must("create dish")
	_, err = service.AddDishIngredient(ctx, st, "Lentil stew", "Lentils", 150)
	must("add lentils")
	_, err = service.AddDishIngredient(ctx, st, "Lentil stew", "Rice", 100)
	must("add rice")
	f.bandID, err = service.CreateAgeBand(ctx, st, service.AgeBandInput{MinMonths: 12, MaxMonths: 35, Description: "toddler"})
	must("create band")
	err = service.SetServingRule(ctx, st, f.bandID, 180)
	must("set serving rule")
	// 25 months old at testNow.
	f.patientID, err = service.CreatePatient(ctx, st, service.PatientInput{Name: "Ada", BirthDate: "2024-01-15"})
	must("create patient")

	opts = append([]service.Option{service.WithLocation(time.UTC), service.WithClock(func() time.Time { return testNow })}, opts...)
	f.engine = service.NewEngine(st, opts...)
	return f
}

func (f fixture) logStew(t *testing.T, serving service.ServingSpec, at time.Time) int64 {
	t.Helper()
	entry, err := f.engine.LogMeal(context.Background(), service.LogMealInput{
		PatientID: f.patientID,
		Dish:      "lentil stew",
		Serving:   serving,
		MealSlot:  "lunch",
		LoggedAt:  at,
	})
	if err != nil {
		t.Fatalf("log meal: %v", err)
	}
	return entry.ID
}
