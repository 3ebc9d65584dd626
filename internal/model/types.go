package model

import "time"

type Nutrient struct {
	ID        int64
	Name      string
	Unit      string
	CreatedAt time.Time
}

type Ingredient struct {
	ID        int64
	Name      string
	Source    string
	SourceRef string
	Values    []IngredientNutrientValue
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IngredientNutrientValue is the amount of one nutrient in 100 g of an ingredient.
type IngredientNutrientValue struct {
	IngredientID int64
	NutrientID   int64
	NutrientName string
	Unit         string
	AmountPer100 float64
	UpdatedAt    time.Time
}

type Dish struct {
	ID        int64
	Name      string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CompositionEntry struct {
	ID             int64
	DishID         int64
	IngredientID   int64
	IngredientName string
	Grams          float64
}

type DishComposition struct {
	DishID   int64
	DishName string
	Entries  []CompositionEntry
}

type AgeBand struct {
	ID          int64
	MinMonths   int
	MaxMonths   int
	Description string
}

type ServingRule struct {
	AgeBandID    int64
	ServingGrams float64
}

type NutrientTarget struct {
	AgeBandID    int64
	NutrientID   int64
	NutrientName string
	Unit         string
	DailyAmount  float64
}

type Patient struct {
	ID        int64
	Name      string
	BirthDate string
	CreatedAt time.Time
}

type MealSlot struct {
	ID        int64
	Name      string
	IsDefault bool
	CreatedAt time.Time
}

// MealLogEntry is one consumption event. NutrientAmounts is the snapshot taken when the
// meal was logged and is never recomputed from the current recipe.
type MealLogEntry struct {
	ID              int64
	UID             string
	PatientID       int64
	DishID          int64
	DishName        string
	LoggedAt        time.Time
	MealSlot        string
	ServingMode     string
	ServingGrams    float64
	ScalingFactor   float64
	BaseWeightGrams float64
	NutrientAmounts map[int64]float64
	SnapshotJSON    string
	Notes           string
	CreatedAt       time.Time
	DeletedAt       *time.Time
}
