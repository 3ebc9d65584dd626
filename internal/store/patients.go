package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

// BirthDateLayout is the storage format of patients.birth_date.
const BirthDateLayout = "2006-01-02"

func (s *Store) CreatePatient(ctx context.Context, name, birthDate string) (int64, error) {
	id, err := s.insert(ctx, `INSERT INTO patients(name, birth_date, created_at) VALUES(?, ?, ?)`, name, birthDate, formatTime(now()))
	if err != nil {
		return 0, fmt.Errorf("create patient %q: %w", name, err)
	}
	return id, nil
}

func scanPatientRow(row rowScanner) (model.Patient, error) {
	var p model.Patient
	var createdAt string
	if err := row.Scan(&p.ID, &p.Name, &p.BirthDate, &createdAt); err != nil {
		return model.Patient{}, err
	}
	t, err := parseTime(createdAt)
	if err != nil {
		return model.Patient{}, err
	}
	p.CreatedAt = t
	return p, nil
}

func (s *Store) GetPatient(ctx context.Context, id int64) (model.Patient, error) {
	p, err := scanPatientRow(s.queryRow(ctx, `SELECT id, name, birth_date, created_at FROM patients WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Patient{}, fmt.Errorf("patient %d: %w", id, engine.ErrPatientNotFound)
	}
	if err != nil {
		return model.Patient{}, fmt.Errorf("get patient %d: %w", id, err)
	}
	return p, nil
}

func (s *Store) ListPatients(ctx context.Context) ([]model.Patient, error) {
	rows, err := s.query(ctx, `SELECT id, name, birth_date, created_at FROM patients ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	defer rows.Close()

	out := make([]model.Patient, 0)
	for rows.Next() {
		p, err := scanPatientRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan patient: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patients: %w", err)
	}
	return out, nil
}

func (s *Store) UpdatePatient(ctx context.Context, p model.Patient) error {
	res, err := s.exec(ctx, `UPDATE patients SET name = ?, birth_date = ? WHERE id = ?`, p.Name, p.BirthDate, p.ID)
	if err != nil {
		return fmt.Errorf("update patient %d: %w", p.ID, err)
	}
	return affectedOne(res, fmt.Errorf("patient %d: %w", p.ID, engine.ErrPatientNotFound))
}

// GetAgeInMonths returns the patient's age in full months at the given instant. The
// birth date is read as a calendar date in at's location.
func (s *Store) GetAgeInMonths(ctx context.Context, patientID int64, at time.Time) (int, error) {
	p, err := s.GetPatient(ctx, patientID)
	if err != nil {
		return 0, err
	}
	birth, err := time.ParseInLocation(BirthDateLayout, p.BirthDate, at.Location())
	if err != nil {
		return 0, fmt.Errorf("patient %d birth date %q: %w", patientID, p.BirthDate, err)
	}
	return engine.AgeInMonths(birth, at), nil
}
