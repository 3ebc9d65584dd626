package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/saadjs/nutrilog/internal/provider/usda"
	"github.com/saadjs/nutrilog/internal/service"
)

type fakeFetcher struct {
	food usda.Food
	err  error
}

func (f fakeFetcher) GetFood(context.Context, int64) (usda.Food, error) {
	return f.food, f.err
}

func TestImportUSDAFoodCreatesIngredient(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	fetcher := fakeFetcher{food: usda.Food{
		FDCID:       172420,
		Description: "Spinach, raw",
		Nutrients: []usda.Nutrient{
			{Name: "Iron, Fe", Unit: "MG", AmountPer100: 2.71},
			{Name: "Protein", Unit: "G", AmountPer100: 2.86},
			{Name: "Energy", Unit: "kJ", AmountPer100: 97},
			{Name: "Iron, Fe", Unit: "MG", AmountPer100: 2.7},
		},
	}}
	result, err := service.ImportUSDAFood(ctx, f.st, fetcher, 172420, "Spinach")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if !result.Created || result.IngredientName != "Spinach" || len(result.Imported) != 2 || len(result.Skipped) != 2 {
		t.Fatalf("unexpected result %+v", result)
	}

	spinach, err := service.ResolveIngredient(ctx, f.st, "spinach")
	if err != nil {
		t.Fatalf("resolve spinach: %v", err)
	}
	if spinach.Source != "usda" || spinach.SourceRef != "172420" {
		t.Fatalf("unexpected provenance %+v", spinach)
	}
	values := map[int64]float64{}
	for _, v := range spinach.Values {
		values[v.NutrientID] = v.AmountPer100
	}
	if values[f.ironID] != 2.71 || values[f.proteinID] != 2.86 {
		t.Fatalf("unexpected imported values %+v", values)
	}
}

func TestImportUSDAFoodConvertsIntoCatalogUnit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	fetcher := fakeFetcher{food: usda.Food{
		FDCID:       1,
		Description: "Rice",
		Nutrients:   []usda.Nutrient{{Name: "Iron, Fe", Unit: "UG", AmountPer100: 800}},
	}}
	result, err := service.ImportUSDAFood(ctx, f.st, fetcher, 1, "")
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Created || result.IngredientID != f.riceID {
		t.Fatalf("expected existing rice to be updated, got %+v", result)
	}
	if len(result.Imported) != 1 || result.Imported[0].AmountPer100 != 0.8 || result.Imported[0].Unit != "mg" {
		t.Fatalf("unexpected conversion %+v", result.Imported)
	}
}

func TestImportUSDAFoodFetchError(t *testing.T) {
	t.Parallel()
	f := newFixture(t)

	want := errors.New("usda down")
	if _, err := service.ImportUSDAFood(context.Background(), f.st, fakeFetcher{err: want}, 1, "x"); !errors.Is(err, want) {
		t.Fatalf("expected fetch error, got %v", err)
	}
}
