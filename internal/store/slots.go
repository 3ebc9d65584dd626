package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

func (s *Store) CreateMealSlot(ctx context.Context, name string) (int64, error) {
	id, err := s.insert(ctx, `INSERT INTO meal_slots(name, is_default, created_at) VALUES(?, 0, ?)`, name, formatTime(now()))
	if err != nil {
		return 0, fmt.Errorf("add meal slot %q: %w", name, err)
	}
	return id, nil
}

func (s *Store) ListMealSlots(ctx context.Context) ([]model.MealSlot, error) {
	rows, err := s.query(ctx, `SELECT id, name, is_default, created_at FROM meal_slots ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list meal slots: %w", err)
	}
	defer rows.Close()

	slots := make([]model.MealSlot, 0)
	for rows.Next() {
		var slot model.MealSlot
		var isDefault int
		var createdAt string
		if err := rows.Scan(&slot.ID, &slot.Name, &isDefault, &createdAt); err != nil {
			return nil, fmt.Errorf("scan meal slot: %w", err)
		}
		slot.IsDefault = isDefault == 1
		var perr error
		if slot.CreatedAt, perr = parseTime(createdAt); perr != nil {
			return nil, perr
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal slots: %w", err)
	}
	return slots, nil
}

func (s *Store) GetMealSlot(ctx context.Context, name string) (model.MealSlot, error) {
	var slot model.MealSlot
	var isDefault int
	var createdAt string
	err := s.queryRow(ctx, `SELECT id, name, is_default, created_at FROM meal_slots WHERE name = ?`, name).
		Scan(&slot.ID, &slot.Name, &isDefault, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.MealSlot{}, fmt.Errorf("meal slot %q: %w", name, engine.ErrNotFound)
	}
	if err != nil {
		return model.MealSlot{}, fmt.Errorf("get meal slot %q: %w", name, err)
	}
	slot.IsDefault = isDefault == 1
	if slot.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.MealSlot{}, err
	}
	return slot, nil
}

func (s *Store) DeleteMealSlot(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM meal_slots WHERE id = ? AND is_default = 0`, id)
	if err != nil {
		return fmt.Errorf("delete meal slot %d: %w", id, err)
	}
	return affectedOne(res, fmt.Errorf("custom meal slot %d: %w", id, engine.ErrNotFound))
}

// MealSlotUsageCount counts live entries logged under the slot.
func (s *Store) MealSlotUsageCount(ctx context.Context, name string) (int, error) {
	var count int
	if err := s.queryRow(ctx, `SELECT COUNT(1) FROM meal_log_entries WHERE meal_slot = ? AND deleted_at IS NULL`, name).Scan(&count); err != nil {
		return 0, fmt.Errorf("count entries for meal slot %q: %w", name, err)
	}
	return count, nil
}
