package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

func (s *Store) CreateAgeBand(ctx context.Context, band model.AgeBand) (int64, error) {
	id, err := s.insert(ctx, `INSERT INTO age_bands(min_months, max_months, description, created_at) VALUES(?, ?, ?, ?)`,
		band.MinMonths, band.MaxMonths, band.Description, formatTime(now()))
	if err != nil {
		return 0, fmt.Errorf("create age band %d-%d: %w", band.MinMonths, band.MaxMonths, err)
	}
	return id, nil
}

// ListAgeBands returns every band ordered by MinMonths.
func (s *Store) ListAgeBands(ctx context.Context) ([]model.AgeBand, error) {
	rows, err := s.query(ctx, `SELECT id, min_months, max_months, description FROM age_bands ORDER BY min_months, max_months, id`)
	if err != nil {
		return nil, fmt.Errorf("list age bands: %w", err)
	}
	defer rows.Close()

	out := make([]model.AgeBand, 0)
	for rows.Next() {
		var b model.AgeBand
		if err := rows.Scan(&b.ID, &b.MinMonths, &b.MaxMonths, &b.Description); err != nil {
			return nil, fmt.Errorf("scan age band: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate age bands: %w", err)
	}
	return out, nil
}

// OverlappingAgeBands returns bands sharing at least one month with [minMonths, maxMonths].
func (s *Store) OverlappingAgeBands(ctx context.Context, minMonths, maxMonths int, excludeID int64) ([]model.AgeBand, error) {
	rows, err := s.query(ctx, `
SELECT id, min_months, max_months, description FROM age_bands
WHERE min_months <= ? AND max_months >= ? AND id <> ?
ORDER BY min_months
`, maxMonths, minMonths, excludeID)
	if err != nil {
		return nil, fmt.Errorf("find overlapping age bands: %w", err)
	}
	defer rows.Close()

	out := make([]model.AgeBand, 0)
	for rows.Next() {
		var b model.AgeBand
		if err := rows.Scan(&b.ID, &b.MinMonths, &b.MaxMonths, &b.Description); err != nil {
			return nil, fmt.Errorf("scan age band: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate age bands: %w", err)
	}
	return out, nil
}

func (s *Store) GetAgeBandByID(ctx context.Context, id int64) (model.AgeBand, error) {
	var b model.AgeBand
	err := s.queryRow(ctx, `SELECT id, min_months, max_months, description FROM age_bands WHERE id = ?`, id).
		Scan(&b.ID, &b.MinMonths, &b.MaxMonths, &b.Description)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AgeBand{}, fmt.Errorf("age band %d: %w", id, engine.ErrNotFound)
	}
	if err != nil {
		return model.AgeBand{}, fmt.Errorf("get age band %d: %w", id, err)
	}
	return b, nil
}

// GetAgeBand returns the band covering ageMonths, both ends inclusive.
func (s *Store) GetAgeBand(ctx context.Context, ageMonths int) (model.AgeBand, error) {
	bands, err := s.ListAgeBands(ctx)
	if err != nil {
		return model.AgeBand{}, err
	}
	return engine.FindAgeBand(bands, ageMonths)
}

func (s *Store) DeleteAgeBand(ctx context.Context, id int64) error {
	res, err := s.exec(ctx, `DELETE FROM age_bands WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete age band %d: %w", id, err)
	}
	return affectedOne(res, fmt.Errorf("age band %d: %w", id, engine.ErrNotFound))
}

func (s *Store) SetServingRule(ctx context.Context, rule model.ServingRule) error {
	if _, err := s.exec(ctx, `
INSERT INTO serving_rules(age_band_id, serving_grams, updated_at)
VALUES(?, ?, ?)
ON CONFLICT(age_band_id) DO UPDATE SET serving_grams = excluded.serving_grams, updated_at = excluded.updated_at
`, rule.AgeBandID, rule.ServingGrams, formatTime(now())); err != nil {
		return fmt.Errorf("set serving rule for age band %d: %w", rule.AgeBandID, err)
	}
	return nil
}

func (s *Store) GetServingRule(ctx context.Context, ageBandID int64) (model.ServingRule, error) {
	rule := model.ServingRule{AgeBandID: ageBandID}
	err := s.queryRow(ctx, `SELECT serving_grams FROM serving_rules WHERE age_band_id = ?`, ageBandID).Scan(&rule.ServingGrams)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ServingRule{}, fmt.Errorf("age band %d: %w", ageBandID, engine.ErrNoServingRule)
	}
	if err != nil {
		return model.ServingRule{}, fmt.Errorf("get serving rule for age band %d: %w", ageBandID, err)
	}
	return rule, nil
}

func (s *Store) ListServingRules(ctx context.Context) ([]model.ServingRule, error) {
	rows, err := s.query(ctx, `
SELECT r.age_band_id, r.serving_grams
FROM serving_rules r
JOIN age_bands b ON b.id = r.age_band_id
ORDER BY b.min_months
`)
	if err != nil {
		return nil, fmt.Errorf("list serving rules: %w", err)
	}
	defer rows.Close()

	out := make([]model.ServingRule, 0)
	for rows.Next() {
		var r model.ServingRule
		if err := rows.Scan(&r.AgeBandID, &r.ServingGrams); err != nil {
			return nil, fmt.Errorf("scan serving rule: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate serving rules: %w", err)
	}
	return out, nil
}

// AgeBandsWithoutRule lists bands that age-based logging cannot resolve.
func (s *Store) AgeBandsWithoutRule(ctx context.Context) ([]model.AgeBand, error) {
	rows, err := s.query(ctx, `
SELECT b.id, b.min_months, b.max_months, b.description
FROM age_bands b
LEFT JOIN serving_rules r ON r.age_band_id = b.id
WHERE r.age_band_id IS NULL
ORDER BY b.min_months
`)
	if err != nil {
		return nil, fmt.Errorf("list age bands without serving rule: %w", err)
	}
	defer rows.Close()

	out := make([]model.AgeBand, 0)
	for rows.Next() {
		var b model.AgeBand
		if err := rows.Scan(&b.ID, &b.MinMonths, &b.MaxMonths, &b.Description); err != nil {
			return nil, fmt.Errorf("scan age band: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate age bands: %w", err)
	}
	return out, nil
}

func (s *Store) SetNutrientTarget(ctx context.Context, target model.NutrientTarget) error {
	if _, err := s.exec(ctx, `
INSERT INTO nutrient_targets(age_band_id, nutrient_id, daily_amount, updated_at)
VALUES(?, ?, ?, ?)
ON CONFLICT(age_band_id, nutrient_id) DO UPDATE SET daily_amount = excluded.daily_amount, updated_at = excluded.updated_at
`, target.AgeBandID, target.NutrientID, target.DailyAmount, formatTime(now())); err != nil {
		return fmt.Errorf("set target for age band %d nutrient %d: %w", target.AgeBandID, target.NutrientID, err)
	}
	return nil
}

// ListNutrientTargets returns the targets of one age band, or of every band when
// ageBandID is 0.
func (s *Store) ListNutrientTargets(ctx context.Context, ageBandID int64) ([]model.NutrientTarget, error) {
	rows, err := s.query(ctx, `
SELECT t.age_band_id, t.nutrient_id, n.name, n.unit, t.daily_amount
FROM nutrient_targets t
JOIN nutrients n ON n.id = t.nutrient_id
JOIN age_bands b ON b.id = t.age_band_id
WHERE (? = 0 OR t.age_band_id = ?)
ORDER BY b.min_months, n.id
`, ageBandID, ageBandID)
	if err != nil {
		return nil, fmt.Errorf("list nutrient targets: %w", err)
	}
	defer rows.Close()

	out := make([]model.NutrientTarget, 0)
	for rows.Next() {
		var t model.NutrientTarget
		if err := rows.Scan(&t.AgeBandID, &t.NutrientID, &t.NutrientName, &t.Unit, &t.DailyAmount); err != nil {
			return nil, fmt.Errorf("scan nutrient target: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate nutrient targets: %w", err)
	}
	return out, nil
}
