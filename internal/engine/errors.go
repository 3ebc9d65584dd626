package engine

import "errors"

// Error kinds. Every specific engine error unwraps to exactly one of these.
var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrDegenerateState = errors.New("degenerate state")
)

var (
	ErrDishNotFound       = kindError(ErrNotFound, "dish not found")
	ErrIngredientNotFound = kindError(ErrNotFound, "ingredient not found")
	ErrNutrientNotFound   = kindError(ErrNotFound, "nutrient not found")
	ErrPatientNotFound    = kindError(ErrNotFound, "patient not found")
	ErrNoAgeBandFound     = kindError(ErrNotFound, "no age band covers age")
	ErrNoServingRule      = kindError(ErrNotFound, "no serving rule for age band")

	ErrEmptyRecipe    = kindError(ErrInvalidInput, "recipe has no composition entries")
	ErrInvalidGrams   = kindError(ErrInvalidInput, "grams must be > 0")
	ErrInvalidPortion = kindError(ErrInvalidInput, "portion multiplier must be > 0")
	ErrInvalidAmount  = kindError(ErrInvalidInput, "nutrient amount must be >= 0")
	ErrUnknownUnit    = kindError(ErrInvalidInput, "unknown nutrient unit")

	ErrDegenerateRecipe = kindError(ErrDegenerateState, "recipe base weight is zero")
)

type engineError struct {
	kind error
	msg  string
}

func kindError(kind error, msg string) error {
	return &engineError{kind: kind, msg: msg}
}

func (e *engineError) Error() string { return e.msg }

func (e *engineError) Unwrap() error { return e.kind }
