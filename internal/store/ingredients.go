package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

const ingredientColumns = `id, name, source, source_ref, created_at, updated_at`

func (s *Store) CreateIngredient(ctx context.Context, name, source, sourceRef string) (int64, error) {
	if source == "" {
		source = "manual"
	}
	ts := formatTime(now())
	id, err := s.insert(ctx, `INSERT INTO ingredients(name, source, source_ref, created_at, updated_at) VALUES(?, ?, ?, ?, ?)`, name, source, sourceRef, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("create ingredient %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) GetIngredient(ctx context.Context, id int64) (model.Ingredient, error) {
	return scanIngredient(s.queryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE id = ?`, id), fmt.Sprintf("%d", id))
}

func (s *Store) GetIngredientByName(ctx context.Context, name string) (model.Ingredient, error) {
	return scanIngredient(s.queryRow(ctx, `SELECT `+ingredientColumns+` FROM ingredients WHERE lower(name) = lower(?)`, name), name)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIngredientRow(row rowScanner) (model.Ingredient, error) {
	var ing model.Ingredient
	var createdAt, updatedAt string
	if err := row.Scan(&ing.ID, &ing.Name, &ing.Source, &ing.SourceRef, &createdAt, &updatedAt); err != nil {
		return model.Ingredient{}, err
	}
	var err error
	if ing.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Ingredient{}, err
	}
	if ing.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Ingredient{}, err
	}
	return ing, nil
}

func scanIngredient(row *sql.Row, ref string) (model.Ingredient, error) {
	ing, err := scanIngredientRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Ingredient{}, fmt.Errorf("ingredient %q: %w", ref, engine.ErrIngredientNotFound)
		}
		return model.Ingredient{}, fmt.Errorf("get ingredient %q: %w", ref, err)
	}
	return ing, nil
}

func (s *Store) ListIngredients(ctx context.Context) ([]model.Ingredient, error) {
	rows, err := s.query(ctx, `SELECT `+ingredientColumns+` FROM ingredients ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	defer rows.Close()

	out := make([]model.Ingredient, 0)
	for rows.Next() {
		ing, err := scanIngredientRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		out = append(out, ing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}
	return out, nil
}

func (s *Store) DeleteIngredient(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM ingredients WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete ingredient %d: %w", id, err)
	}
	return affectedOne(res, fmt.Errorf("ingredient %d: %w", id, engine.ErrIngredientNotFound))
}

// IngredientUsageCount reports how many dish composition entries use the ingredient.
func (s *Store) IngredientUsageCount(ctx context.Context, id int64) (int, error) {
	var count int
	if err := s.queryRow(ctx, `SELECT COUNT(1) FROM dish_ingredients WHERE ingredient_id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count dishes using ingredient %d: %w", id, err)
	}
	return count, nil
}

// SetIngredientValue inserts or replaces the per-100 g amount of one nutrient.
func (s *Store) SetIngredientValue(ctx context.Context, ingredientID, nutrientID int64, amountPer100 float64) error {
	ts := formatTime(now())
	if _, err := s.exec(ctx, `
INSERT INTO ingredient_nutrients(ingredient_id, nutrient_id, amount_per_100, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(ingredient_id, nutrient_id) DO UPDATE SET amount_per_100 = excluded.amount_per_100, updated_at = excluded.updated_at
`, ingredientID, nutrientID, amountPer100, ts); err != nil {
		return fmt.Errorf("set ingredient %d nutrient %d: %w", ingredientID, nutrientID, err)
	}
	if _, err := s.exec(ctx, `UPDATE ingredients SET updated_at = ? WHERE id = ?`, ts, ingredientID); err != nil {
		return fmt.Errorf("touch ingredient %d: %w", ingredientID, err)
	}
	return nil
}

func (s *Store) DeleteIngredientValue(ctx context.Context, ingredientID, nutrientID int64) error {
	res, err := s.exec(ctx, `DELETE FROM ingredient_nutrients WHERE ingredient_id = ? AND nutrient_id = ?`, ingredientID, nutrientID)
	if err != nil {
		return fmt.Errorf("delete ingredient %d nutrient %d: %w", ingredientID, nutrientID, err)
	}
	return affectedOne(res, fmt.Errorf("ingredient %d has no value for nutrient %d: %w", ingredientID, nutrientID, engine.ErrNotFound))
}

func (s *Store) ListIngredientValues(ctx context.Context, ingredientID int64) ([]model.IngredientNutrientValue, error) {
	rows, err := s.query(ctx, `
SELECT v.ingredient_id, v.nutrient_id, n.name, n.unit, v.amount_per_100, v.updated_at
FROM ingredient_nutrients v
JOIN nutrients n ON n.id = v.nutrient_id
WHERE v.ingredient_id = ?
ORDER BY n.id
`, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("list ingredient %d values: %w", ingredientID, err)
	}
	defer rows.Close()

	out := make([]model.IngredientNutrientValue, 0)
	for rows.Next() {
		var v model.IngredientNutrientValue
		var updatedAt string
		if err := rows.Scan(&v.IngredientID, &v.NutrientID, &v.NutrientName, &v.Unit, &v.AmountPer100, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan ingredient value: %w", err)
		}
		var perr error
		if v.UpdatedAt, perr = parseTime(updatedAt); perr != nil {
			return nil, perr
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredient values: %w", err)
	}
	return out, nil
}

// GetDensity returns nutrient id -> amount per 100 g for the ingredient. An ingredient
// without values yields an empty map.
func (s *Store) GetDensity(ctx context.Context, ingredientID int64) (map[int64]float64, error) {
	rows, err := s.query(ctx, `SELECT nutrient_id, amount_per_100 FROM ingredient_nutrients WHERE ingredient_id = ?`, ingredientID)
	if err != nil {
		return nil, fmt.Errorf("get density for ingredient %d: %w", ingredientID, err)
	}
	defer rows.Close()

	out := map[int64]float64{}
	for rows.Next() {
		var nutrientID int64
		var amount float64
		if err := rows.Scan(&nutrientID, &amount); err != nil {
			return nil, fmt.Errorf("scan density: %w", err)
		}
		out[nutrientID] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate density: %w", err)
	}
	return out, nil
}
