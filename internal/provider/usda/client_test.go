package usda

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestGetFoodParsesNestedNutrients(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fdc/v1/food/172420" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "demo" {
			t.Errorf("expected api key in query, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "fdcId": 172420,
  "description": "Lentils, mature seeds, cooked, boiled",
  "dataType": "SR Legacy",
  "foodNutrients": [
    {"nutrient": {"number": "303", "name": "Iron, Fe", "unitName": "mg"}, "amount": 3.33},
    {"nutrient": {"number": "203", "name": "Protein", "unitName": "g"}, "amount": 9.02},
    {"nutrient": {"number": "208", "name": "Energy", "unitName": "kcal"}, "amount": 116},
    {"nutrient": {"number": "", "name": "", "unitName": ""}, "amount": 1}
  ]
}`))
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "demo", zap.NewNop())
	food, err := c.GetFood(context.Background(), 172420)
	if err != nil {
		t.Fatalf("get food: %v", err)
	}
	if food.FDCID != 172420 || food.DataType != "SR Legacy" {
		t.Fatalf("unexpected food %+v", food)
	}
	if len(food.Nutrients) != 3 {
		t.Fatalf("expected 3 nutrients, got %+v", food.Nutrients)
	}
	if food.Nutrients[0].Name != "Iron, Fe" || food.Nutrients[0].Unit != "mg" || food.Nutrients[0].AmountPer100 != 3.33 {
		t.Fatalf("unexpected iron %+v", food.Nutrients[0])
	}
}

func TestGetFoodParsesFlatNutrients(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"fdcId": 1, "description": "Rice", "foodNutrients": [{"nutrientName": "Iron, Fe", "unitName": "MG", "value": 1.5}]}`))
	}))
	defer ts.Close()

	food, err := NewClient(ts.URL, "demo", nil).GetFood(context.Background(), 1)
	if err != nil {
		t.Fatalf("get food: %v", err)
	}
	if len(food.Nutrients) != 1 || food.Nutrients[0].AmountPer100 != 1.5 {
		t.Fatalf("unexpected nutrients %+v", food.Nutrients)
	}
}

func TestGetFoodNotFound(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := NewClient(ts.URL, "demo", nil).GetFood(context.Background(), 99); err == nil {
		t.Fatalf("expected error for missing food")
	}
	if _, err := NewClient(ts.URL, "", nil).GetFood(context.Background(), 99); err == nil {
		t.Fatalf("expected error without api key")
	}
}

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Iron, Fe":                       "iron",
		"Total lipid (fat)":              "fat",
		"Protein":                        "protein",
		"Carbohydrate, by difference":    "carbohydrate",
		"Vitamin C, total ascorbic acid": "vitamin c",
	}
	for in, want := range cases {
		if got := CanonicalName(in); got != want {
			t.Fatalf("canonical %q: expected %q, got %q", in, want, got)
		}
	}
}
