package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type PatientInput struct {
	Name      string
	BirthDate string
}

func validateBirthDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	if _, err := time.Parse(store.BirthDateLayout, value); err != nil {
		return "", fmt.Errorf("%w: birth date %q must be YYYY-MM-DD", engine.ErrInvalidInput, value)
	}
	return value, nil
}

func CreatePatient(ctx context.Context, st *store.Store, in PatientInput) (int64, error) {
	name, err := requireName("patient", in.Name)
	if err != nil {
		return 0, err
	}
	birth, err := validateBirthDate(in.BirthDate)
	if err != nil {
		return 0, err
	}
	return st.CreatePatient(ctx, name, birth)
}

func GetPatient(ctx context.Context, st *store.Store, id int64) (model.Patient, error) {
	return st.GetPatient(ctx, id)
}

func ListPatients(ctx context.Context, st *store.Store) ([]model.Patient, error) {
	return st.ListPatients(ctx)
}

// UpdatePatient changes the non-empty fields of in. Entries already logged keep the
// serving they were computed with.
func UpdatePatient(ctx context.Context, st *store.Store, id int64, in PatientInput) error {
	return st.InTx(ctx, func(tx *store.Store) error {
		p, err := tx.GetPatient(ctx, id)
		if err != nil {
			return err
		}
		if strings.TrimSpace(in.Name) != "" {
			p.Name = strings.TrimSpace(in.Name)
		}
		if strings.TrimSpace(in.BirthDate) != "" {
			if p.BirthDate, err = validateBirthDate(in.BirthDate); err != nil {
				return err
			}
		}
		return tx.UpdatePatient(ctx, p)
	})
}
