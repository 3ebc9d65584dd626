package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

const dishColumns = `id, name, notes, created_at, updated_at`

func (s *Store) CreateDish(ctx context.Context, name, notes string) (int64, error) {
	ts := formatTime(now())
	id, err := s.insert(ctx, `INSERT INTO dishes(name, notes, created_at, updated_at) VALUES(?, ?, ?, ?)`, name, notes, ts, ts)
	if err != nil {
		return 0, fmt.Errorf("create dish %q: %w", name, err)
	}
	return id, nil
}

func scanDishRow(row rowScanner) (model.Dish, error) {
	var d model.Dish
	var createdAt, updatedAt string
	if err := row.Scan(&d.ID, &d.Name, &d.Notes, &createdAt, &updatedAt); err != nil {
		return model.Dish{}, err
	}
	var err error
	if d.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.Dish{}, err
	}
	if d.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return model.Dish{}, err
	}
	return d, nil
}

func scanDish(row *sql.Row, ref string) (model.Dish, error) {
	d, err := scanDishRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Dish{}, fmt.Errorf("dish %q: %w", ref, engine.ErrDishNotFound)
		}
		return model.Dish{}, fmt.Errorf("get dish %q: %w", ref, err)
	}
	return d, nil
}

func (s *Store) GetDish(ctx context.Context, id int64) (model.Dish, error) {
	return scanDish(s.queryRow(ctx, `SELECT `+dishColumns+` FROM dishes WHERE id = ?`, id), fmt.Sprintf("%d", id))
}

func (s *Store) GetDishByName(ctx context.Context, name string) (model.Dish, error) {
	return scanDish(s.queryRow(ctx, `SELECT `+dishColumns+` FROM dishes WHERE lower(name) = lower(?)`, name), name)
}

func (s *Store) ListDishes(ctx context.Context) ([]model.Dish, error) {
	rows, err := s.query(ctx, `SELECT `+dishColumns+` FROM dishes ORDER BY lower(name)`)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	defer rows.Close()

	out := make([]model.Dish, 0)
	for rows.Next() {
		d, err := scanDishRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate dishes: %w", err)
	}
	return out, nil
}

func (s *Store) UpdateDish(ctx context.Context, d model.Dish) error {
	res, err := s.exec(ctx, `UPDATE dishes SET name = ?, notes = ?, updated_at = ? WHERE id = ?`, d.Name, d.Notes, formatTime(now()), d.ID)
	if err != nil {
		return fmt.Errorf("update dish %d: %w", d.ID, err)
	}
	return affectedOne(res, fmt.Errorf("dish %d: %w", d.ID, engine.ErrDishNotFound))
}

// DeleteDish removes the dish and its composition. Logged entries keep their snapshot and
// dish name; their dish reference becomes NULL.
func (s *Store) DeleteDish(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM dishes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dish %d: %w", id, err)
	}
	return affectedOne(res, fmt.Errorf("dish %d: %w", id, engine.ErrDishNotFound))
}

// AddDishIngredient appends a composition entry after the existing ones.
func (s *Store) AddDishIngredient(ctx context.Context, dishID, ingredientID int64, grams float64) (int64, error) {
	var position int
	if err := s.queryRow(ctx, `SELECT COALESCE(MAX(position), 0) + 1 FROM dish_ingredients WHERE dish_id = ?`, dishID).Scan(&position); err != nil {
		return 0, fmt.Errorf("next position for dish %d: %w", dishID, err)
	}
	ts := formatTime(now())
	id, err := s.insert(ctx, `INSERT INTO dish_ingredients(dish_id, ingredient_id, grams, position, created_at) VALUES(?, ?, ?, ?, ?)`, dishID, ingredientID, grams, position, ts)
	if err != nil {
		return 0, fmt.Errorf("add ingredient %d to dish %d: %w", ingredientID, dishID, err)
	}
	if _, err := s.exec(ctx, `UPDATE dishes SET updated_at = ? WHERE id = ?`, ts, dishID); err != nil {
		return 0, fmt.Errorf("touch dish %d: %w", dishID, err)
	}
	return id, nil
}

func (s *Store) UpdateDishIngredient(ctx context.Context, dishID, entryID int64, grams float64) error {
	res, err := s.exec(ctx, `UPDATE dish_ingredients SET grams = ? WHERE id = ? AND dish_id = ?`, grams, entryID, dishID)
	if err != nil {
		return fmt.Errorf("update dish %d entry %d: %w", dishID, entryID, err)
	}
	if err := affectedOne(res, fmt.Errorf("dish %d entry %d: %w", dishID, entryID, engine.ErrNotFound)); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `UPDATE dishes SET updated_at = ? WHERE id = ?`, formatTime(now()), dishID); err != nil {
		return fmt.Errorf("touch dish %d: %w", dishID, err)
	}
	return nil
}

func (s *Store) RemoveDishIngredient(ctx context.Context, dishID, entryID int64) error {
	res, err := s.exec(ctx, `DELETE FROM dish_ingredients WHERE id = ? AND dish_id = ?`, entryID, dishID)
	if err != nil {
		return fmt.Errorf("remove dish %d entry %d: %w", dishID, entryID, err)
	}
	if err := affectedOne(res, fmt.Errorf("dish %d entry %d: %w", dishID, entryID, engine.ErrNotFound)); err != nil {
		return err
	}
	if _, err := s.exec(ctx, `UPDATE dishes SET updated_at = ? WHERE id = ?`, formatTime(now()), dishID); err != nil {
		return fmt.Errorf("touch dish %d: %w", dishID, err)
	}
	return nil
}

// GetComposition returns the dish's ingredients in the order they were added.
func (s *Store) GetComposition(ctx context.Context, dishID int64) (model.DishComposition, error) {
	d, err := s.GetDish(ctx, dishID)
	if err != nil {
		return model.DishComposition{}, err
	}
	return s.composition(ctx, d)
}

func (s *Store) GetCompositionByName(ctx context.Context, name string) (model.DishComposition, error) {
	d, err := s.GetDishByName(ctx, name)
	if err != nil {
		return model.DishComposition{}, err
	}
	return s.composition(ctx, d)
}

func (s *Store) composition(ctx context.Context, d model.Dish) (model.DishComposition, error) {
	rows, err := s.query(ctx, `
SELECT di.id, di.dish_id, di.ingredient_id, i.name, di.grams
FROM dish_ingredients di
JOIN ingredients i ON i.id = di.ingredient_id
WHERE di.dish_id = ?
ORDER BY di.position, di.id
`, d.ID)
	if err != nil {
		return model.DishComposition{}, fmt.Errorf("get composition of dish %q: %w", d.Name, err)
	}
	defer rows.Close()

	comp := model.DishComposition{DishID: d.ID, DishName: d.Name, Entries: make([]model.CompositionEntry, 0)}
	for rows.Next() {
		var e model.CompositionEntry
		if err := rows.Scan(&e.ID, &e.DishID, &e.IngredientID, &e.IngredientName, &e.Grams); err != nil {
			return model.DishComposition{}, fmt.Errorf("scan composition entry: %w", err)
		}
		comp.Entries = append(comp.Entries, e)
	}
	if err := rows.Err(); err != nil {
		return model.DishComposition{}, fmt.Errorf("iterate composition entries: %w", err)
	}
	return comp, nil
}

// DishesWithoutIngredients lists dishes that cannot be logged because their composition
// is empty.
func (s *Store) DishesWithoutIngredients(ctx context.Context) ([]model.Dish, error) {
	rows, err := s.query(ctx, `
SELECT `+qualified("d", dishColumns)+`
FROM dishes d
WHERE NOT EXISTS (SELECT 1 FROM dish_ingredients di WHERE di.dish_id = d.id)
ORDER BY lower(d.name)
`)
	if err != nil {
		return nil, fmt.Errorf("list empty dishes: %w", err)
	}
	defer rows.Close()

	out := make([]model.Dish, 0)
	for rows.Next() {
		d, err := scanDishRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dish: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate empty dishes: %w", err)
	}
	return out, nil
}
