package db

import (
	"database/sql"
	"fmt"
	"time"
)

// TimeLayout is the fixed-width UTC layout every timestamp column is stored in, so text
// comparison orders rows chronologically on both dialects.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "nutrient_catalog",
		sql: `
CREATE TABLE IF NOT EXISTS nutrients (
  id {{pk}},
  name TEXT NOT NULL,
  unit TEXT NOT NULL CHECK(unit IN ('mg', 'g', 'mcg', 'kcal', 'IU')),
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_nutrients_name ON nutrients(lower(name));

CREATE TABLE IF NOT EXISTS ingredients (
  id {{pk}},
  name TEXT NOT NULL,
  source TEXT NOT NULL DEFAULT 'manual',
  source_ref TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients(lower(name));

CREATE TABLE IF NOT EXISTS ingredient_nutrients (
  ingredient_id {{ref}} NOT NULL REFERENCES ingredients(id) ON DELETE CASCADE,
  nutrient_id {{ref}} NOT NULL REFERENCES nutrients(id),
  amount_per_100 {{real}} NOT NULL CHECK(amount_per_100 >= 0),
  updated_at TEXT NOT NULL,
  PRIMARY KEY(ingredient_id, nutrient_id)
);
CREATE INDEX IF NOT EXISTS idx_ingredient_nutrients_nutrient_id ON ingredient_nutrients(nutrient_id);

CREATE TABLE IF NOT EXISTS dishes (
  id {{pk}},
  name TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_dishes_name ON dishes(lower(name));

CREATE TABLE IF NOT EXISTS dish_ingredients (
  id {{pk}},
  dish_id {{ref}} NOT NULL REFERENCES dishes(id) ON DELETE CASCADE,
  ingredient_id {{ref}} NOT NULL REFERENCES ingredients(id),
  grams {{real}} NOT NULL CHECK(grams > 0),
  position INTEGER NOT NULL,
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dish_ingredients_dish_id ON dish_ingredients(dish_id, position);
`,
	},
	{
		version: 2,
		name:    "serving_rules",
		sql: `
CREATE TABLE IF NOT EXISTS age_bands (
  id {{pk}},
  min_months INTEGER NOT NULL CHECK(min_months >= 0),
  max_months INTEGER NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  CHECK(max_months >= min_months)
);

CREATE TABLE IF NOT EXISTS serving_rules (
  age_band_id {{ref}} PRIMARY KEY REFERENCES age_bands(id) ON DELETE CASCADE,
  serving_grams {{real}} NOT NULL CHECK(serving_grams > 0),
  updated_at TEXT NOT NULL
);
`,
	},
	{
		version: 3,
		name:    "patients_and_meal_log",
		sql: `
CREATE TABLE IF NOT EXISTS patients (
  id {{pk}},
  name TEXT NOT NULL,
  birth_date TEXT NOT NULL,
  created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meal_slots (
  id {{pk}},
  name TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_meal_slots_name ON meal_slots(name);

CREATE TABLE IF NOT EXISTS meal_log_entries (
  id {{pk}},
  uid TEXT NOT NULL,
  patient_id {{ref}} NOT NULL REFERENCES patients(id),
  dish_id {{ref}} REFERENCES dishes(id) ON DELETE SET NULL,
  dish_name TEXT NOT NULL,
  logged_at TEXT NOT NULL,
  meal_slot TEXT NOT NULL DEFAULT '',
  serving_mode TEXT NOT NULL,
  serving_grams {{real}} NOT NULL,
  scaling_factor {{real}} NOT NULL,
  base_weight_grams {{real}} NOT NULL,
  nutrient_amounts_json TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL,
  deleted_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_meal_log_entries_uid ON meal_log_entries(uid);
CREATE INDEX IF NOT EXISTS idx_meal_log_entries_patient_logged_at ON meal_log_entries(patient_id, logged_at);
`,
	},
	{
		version: 4,
		name:    "targets_and_config",
		sql: `
CREATE TABLE IF NOT EXISTS nutrient_targets (
  age_band_id {{ref}} NOT NULL REFERENCES age_bands(id) ON DELETE CASCADE,
  nutrient_id {{ref}} NOT NULL REFERENCES nutrients(id),
  daily_amount {{real}} NOT NULL CHECK(daily_amount >= 0),
  updated_at TEXT NOT NULL,
  PRIMARY KEY(age_band_id, nutrient_id)
);

CREATE TABLE IF NOT EXISTS app_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
`,
	},
}

// DefaultMealSlots are seeded on every migration run and cannot be deleted.
var DefaultMealSlots = []string{"breakfast", "lunch", "dinner", "snack"}

// ApplyMigrations brings the schema up to date for dialect. Each pending migration runs in
// its own transaction. It is safe to call on every start.
func ApplyMigrations(db *sql.DB, dialect Dialect) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at TEXT NOT NULL
);
`); err != nil {
		return fmt.Errorf("ensure schema_migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists int
		err := db.QueryRow(dialect.Rebind(`SELECT 1 FROM schema_migrations WHERE version = ?`), m.version).Scan(&exists)
		if err == nil {
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("check migration version %d: %w", m.version, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration tx: %w", err)
		}

		if _, err := tx.Exec(dialect.ddl(m.sql)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration version %d (%s): %w", m.version, m.name, err)
		}
		appliedAt := time.Now().UTC().Format(TimeLayout)
		if _, err := tx.Exec(dialect.Rebind(`INSERT INTO schema_migrations(version, name, applied_at) VALUES(?, ?, ?)`), m.version, m.name, appliedAt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration version %d: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration version %d: %w", m.version, err)
		}
	}

	createdAt := time.Now().UTC().Format(TimeLayout)
	for _, name := range DefaultMealSlots {
		if _, err := db.Exec(dialect.Rebind(`INSERT INTO meal_slots(name, is_default, created_at) VALUES(?, 1, ?) ON CONFLICT DO NOTHING`), name, createdAt); err != nil {
			return fmt.Errorf("seed default meal slot %s: %w", name, err)
		}
	}

	return nil
}
