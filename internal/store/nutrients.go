package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

const nutrientColumns = `id, name, unit, created_at`

func (s *Store) CreateNutrient(ctx context.Context, name, unit string) (int64, error) {
	id, err := s.insert(ctx, `INSERT INTO nutrients(name, unit, created_at) VALUES(?, ?, ?)`, name, unit, formatTime(now()))
	if err != nil {
		return 0, fmt.Errorf("create nutrient %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) GetNutrient(ctx context.Context, id int64) (model.Nutrient, error) {
	return s.scanNutrient(s.queryRow(ctx, `SELECT `+nutrientColumns+` FROM nutrients WHERE id = ?`, id), fmt.Sprintf("%d", id))
}

func (s *Store) GetNutrientByName(ctx context.Context, name string) (model.Nutrient, error) {
	return s.scanNutrient(s.queryRow(ctx, `SELECT `+nutrientColumns+` FROM nutrients WHERE lower(name) = lower(?)`, name), name)
}

func (s *Store) scanNutrient(row *sql.Row, ref string) (model.Nutrient, error) {
	var n model.Nutrient
	var createdAt string
	if err := row.Scan(&n.ID, &n.Name, &n.Unit, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Nutrient{}, fmt.Errorf("nutrient %q: %w", ref, engine.ErrNutrientNotFound)
		}
		return model.Nutrient{}, fmt.Errorf("get nutrient %q: %w", ref, err)
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return model.Nutrient{}, err
	}
	n.CreatedAt = t
	return n, nil
}

func (s *Store) ListNutrients(ctx context.Context) ([]model.Nutrient, error) {
	rows, err := s.query(ctx, `SELECT `+nutrientColumns+` FROM nutrients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list nutrients: %w", err)
	}
	defer rows.Close()

	out := make([]model.Nutrient, 0)
	for rows.Next() {
		var n model.Nutrient
		var createdAt string
		if err := rows.Scan(&n.ID, &n.Name, &n.Unit, &createdAt); err != nil {
			return nil, fmt.Errorf("scan nutrient: %w", err)
		}
		if n.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrients: %w", err)
	}
	return out, nil
}

// NutrientIDs returns every catalog nutrient id in ascending order.
func (s *Store) NutrientIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.query(ctx, `SELECT id FROM nutrients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list nutrient ids: %w", err)
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan nutrient id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrient ids: %w", err)
	}
	return ids, nil
}

// NutrientValueCount reports how many ingredient density values reference the nutrient.
func (s *Store) NutrientValueCount(ctx context.Context, id int64) (int, error) {
	var count int
	if err := s.queryRow(ctx, `SELECT COUNT(1) FROM ingredient_nutrients WHERE nutrient_id = ?`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count values for nutrient %d: %w", id, err)
	}
	return count, nil
}

func (s *Store) UpdateNutrient(ctx context.Context, n model.Nutrient) error {
	res, err := s.exec(ctx, `UPDATE nutrients SET name = ?, unit = ? WHERE id = ?`, n.Name, n.Unit, n.ID)
	if err != nil {
		return fmt.Errorf("update nutrient %d: %w", n.ID, err)
	}
	return affectedOne(res, fmt.Errorf("nutrient %d: %w", n.ID, engine.ErrNutrientNotFound))
}
