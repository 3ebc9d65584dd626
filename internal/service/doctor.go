package service

import (
	"context"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/store"
)

type InvalidSnapshot struct {
	EntryID int64  `json:"entry_id"`
	Error   string `json:"error"`
}

type DoctorReport struct {
	BandIssues       []engine.BandIssue `json:"band_issues"`
	BandsWithoutRule []model.AgeBand    `json:"bands_without_rule"`
	EmptyDishes      []model.Dish       `json:"empty_dishes"`
	InvalidSnapshots []InvalidSnapshot  `json:"invalid_snapshots"`
	EntriesChecked   int                `json:"entries_checked"`
}

func (r DoctorReport) Healthy() bool {
	return len(r.BandIssues) == 0 && len(r.BandsWithoutRule) == 0 && len(r.EmptyDishes) == 0 && len(r.InvalidSnapshots) == 0
}

// RunDoctor checks the catalog and the log for states that make meal logging or
// summaries fail.
func RunDoctor(ctx context.Context, st *store.Store) (DoctorReport, error) {
	bands, err := st.ListAgeBands(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	report := DoctorReport{BandIssues: engine.CheckAgeBands(bands), InvalidSnapshots: []InvalidSnapshot{}}

	if report.BandsWithoutRule, err = st.AgeBandsWithoutRule(ctx); err != nil {
		return DoctorReport{}, err
	}
	if report.EmptyDishes, err = st.DishesWithoutIngredients(ctx); err != nil {
		return DoctorReport{}, err
	}
	snapshots, err := st.ListSnapshots(ctx)
	if err != nil {
		return DoctorReport{}, err
	}
	report.EntriesChecked = len(snapshots)
	for _, s := range snapshots {
		if _, err := engine.DecodeAmounts(s.Snapshot); err != nil {
			report.InvalidSnapshots = append(report.InvalidSnapshots, InvalidSnapshot{EntryID: s.ID, Error: err.Error()})
		}
	}
	return report, nil
}
