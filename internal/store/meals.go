package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

// ErrEntryNotFound is returned for unknown or already deleted meal log entries.
var ErrEntryNotFound = fmt.Errorf("meal log entry: %w", engine.ErrNotFound)

const mealLogColumns = `id, uid, patient_id, dish_id, dish_name, logged_at, meal_slot, serving_mode,
serving_grams, scaling_factor, base_weight_grams, nutrient_amounts_json, notes, created_at, deleted_at`

// Append stores entry and returns its id. The snapshot is written once, from
// entry.NutrientAmounts, and no column of the row is ever recomputed. A UID is assigned
// when entry has none.
func (s *Store) Append(ctx context.Context, entry model.MealLogEntry) (int64, error) {
	if entry.UID == "" {
		entry.UID = uuid.NewString()
	}
	snapshot := entry.SnapshotJSON
	if snapshot == "" {
		encoded, err := engine.EncodeAmounts(entry.NutrientAmounts)
		if err != nil {
			return 0, err
		}
		snapshot = encoded
	}
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now()
	}
	var dishID sql.NullInt64
	if entry.DishID > 0 {
		dishID = sql.NullInt64{Int64: entry.DishID, Valid: true}
	}

	id, err := s.insert(ctx, `
INSERT INTO meal_log_entries(
  uid, patient_id, dish_id, dish_name, logged_at, meal_slot, serving_mode,
  serving_grams, scaling_factor, base_weight_grams, nutrient_amounts_json, notes, created_at
) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.UID, entry.PatientID, dishID, entry.DishName, formatTime(entry.LoggedAt), entry.MealSlot, entry.ServingMode,
		entry.ServingGrams, entry.ScalingFactor, entry.BaseWeightGrams, snapshot, entry.Notes, formatTime(createdAt),
	)
	if err != nil {
		return 0, fmt.Errorf("append meal log entry: %w", err)
	}
	return id, nil
}

func scanMealLogRow(row rowScanner) (model.MealLogEntry, error) {
	var e model.MealLogEntry
	var dishID sql.NullInt64
	var loggedAt, createdAt string
	var deletedAt sql.NullString
	if err := row.Scan(
		&e.ID, &e.UID, &e.PatientID, &dishID, &e.DishName, &loggedAt, &e.MealSlot, &e.ServingMode,
		&e.ServingGrams, &e.ScalingFactor, &e.BaseWeightGrams, &e.SnapshotJSON, &e.Notes, &createdAt, &deletedAt,
	); err != nil {
		return model.MealLogEntry{}, err
	}
	e.DishID = dishID.Int64
	var err error
	if e.LoggedAt, err = parseTime(loggedAt); err != nil {
		return model.MealLogEntry{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return model.MealLogEntry{}, err
	}
	if e.DeletedAt, err = parseNullTime(deletedAt); err != nil {
		return model.MealLogEntry{}, err
	}
	amounts, err := engine.DecodeAmounts(e.SnapshotJSON)
	if err != nil {
		return model.MealLogEntry{}, fmt.Errorf("entry %d snapshot: %w", e.ID, err)
	}
	e.NutrientAmounts = amounts
	return e, nil
}

func (s *Store) GetMealLogEntry(ctx context.Context, id int64) (model.MealLogEntry, error) {
	e, err := scanMealLogRow(s.queryRow(ctx, `SELECT `+mealLogColumns+` FROM meal_log_entries WHERE id = ? AND deleted_at IS NULL`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.MealLogEntry{}, fmt.Errorf("entry %d: %w", id, ErrEntryNotFound)
	}
	if err != nil {
		return model.MealLogEntry{}, fmt.Errorf("get meal log entry %d: %w", id, err)
	}
	return e, nil
}

// QueryByPatientAndDate returns the patient's live entries with from <= logged_at < to,
// ordered by logged_at.
func (s *Store) QueryByPatientAndDate(ctx context.Context, patientID int64, from, to time.Time) ([]model.MealLogEntry, error) {
	rows, err := s.query(ctx, `
SELECT `+mealLogColumns+`
FROM meal_log_entries
WHERE patient_id = ? AND logged_at >= ? AND logged_at < ? AND deleted_at IS NULL
ORDER BY logged_at, id
`, patientID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("query meal log for patient %d: %w", patientID, err)
	}
	defer rows.Close()

	out := make([]model.MealLogEntry, 0)
	for rows.Next() {
		e, err := scanMealLogRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan meal log entry: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meal log entries: %w", err)
	}
	return out, nil
}

// SoftDeleteMealLogEntry marks the entry deleted. The row and its snapshot stay in place.
func (s *Store) SoftDeleteMealLogEntry(ctx context.Context, id int64, at time.Time) error {
	res, err := s.exec(ctx, `UPDATE meal_log_entries SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("delete meal log entry %d: %w", id, err)
	}
	return affectedOne(res, fmt.Errorf("entry %d: %w", id, ErrEntryNotFound))
}

// SnapshotRow is the raw stored snapshot of one entry.
type SnapshotRow struct {
	ID       int64
	Snapshot string
}

// ListSnapshots returns the raw snapshot of every live entry without decoding it.
func (s *Store) ListSnapshots(ctx context.Context) ([]SnapshotRow, error) {
	rows, err := s.query(ctx, `SELECT id, nutrient_amounts_json FROM meal_log_entries WHERE deleted_at IS NULL ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]SnapshotRow, 0)
	for rows.Next() {
		var r SnapshotRow
		if err := rows.Scan(&r.ID, &r.Snapshot); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return out, nil
}
