package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/report"
	"github.com/shopspring/decimal"
)

const monthLayout = "2006-01"

// GetDailySummary totals the patient's snapshots for the calendar day of date in the
// engine's recording timezone.
func (e *Engine) GetDailySummary(ctx context.Context, patientID int64, date time.Time) (engine.DailyNutrientSummary, error) {
	days, err := e.GetDailySummaries(ctx, patientID, date, date)
	if err != nil {
		return engine.DailyNutrientSummary{}, err
	}
	return days[0], nil
}

// GetDailySummaries returns one summary per day in [from, to], both inclusive.
func (e *Engine) GetDailySummaries(ctx context.Context, patientID int64, from, to time.Time) ([]engine.DailyNutrientSummary, error) {
	if _, err := e.store.GetPatient(ctx, patientID); err != nil {
		return nil, err
	}
	start, _ := dayRange(from, e.loc)
	_, end := dayRange(to, e.loc)
	if !start.Before(end) {
		return nil, fmt.Errorf("%w: from date must be <= to date", engine.ErrInvalidInput)
	}
	entries, err := e.store.QueryByPatientAndDate(ctx, patientID, start, end)
	if err != nil {
		return nil, err
	}
	ids, err := e.store.NutrientIDs(ctx)
	if err != nil {
		return nil, err
	}
	return engine.SummarizeDays(patientID, entries, start, end.AddDate(0, 0, -1), e.loc, ids)
}

type TrendInput struct {
	PatientID int64
	// FromMonth and ToMonth are YYYY-MM; the range covers both months entirely.
	FromMonth   string
	ToMonth     string
	Granularity engine.Granularity
	// Thresholds maps nutrient id -> per-entry amount. An entry counts when its amount is
	// at or above the threshold.
	Thresholds map[int64]float64
}

// GetPeriodTrend buckets the patient's daily totals by month or ISO week.
func (e *Engine) GetPeriodTrend(ctx context.Context, in TrendInput) (report.Trend, error) {
	patient, err := e.store.GetPatient(ctx, in.PatientID)
	if err != nil {
		return report.Trend{}, err
	}
	fromMonth, err := time.ParseInLocation(monthLayout, strings.TrimSpace(in.FromMonth), e.loc)
	if err != nil {
		return report.Trend{}, fmt.Errorf("%w: from month %q must be YYYY-MM", engine.ErrInvalidInput, in.FromMonth)
	}
	toMonth, err := time.ParseInLocation(monthLayout, strings.TrimSpace(in.ToMonth), e.loc)
	if err != nil {
		return report.Trend{}, fmt.Errorf("%w: to month %q must be YYYY-MM", engine.ErrInvalidInput, in.ToMonth)
	}
	if toMonth.Before(fromMonth) {
		return report.Trend{}, fmt.Errorf("%w: from month must be <= to month", engine.ErrInvalidInput)
	}
	granularity := in.Granularity
	if granularity == "" {
		granularity = engine.GranularityMonth
	}
	for id, threshold := range in.Thresholds {
		if err := validateNonNegativeFloat(fmt.Sprintf("threshold for nutrient %d", id), threshold); err != nil {
			return report.Trend{}, err
		}
	}

	end := toMonth.AddDate(0, 1, 0)
	if err := ctx.Err(); err != nil {
		return report.Trend{}, err
	}
	entries, err := e.store.QueryByPatientAndDate(ctx, in.PatientID, fromMonth, end)
	if err != nil {
		return report.Trend{}, err
	}
	nutrients, err := e.store.ListNutrients(ctx)
	if err != nil {
		return report.Trend{}, err
	}
	ids := make([]int64, 0, len(nutrients))
	for _, n := range nutrients {
		ids = append(ids, n.ID)
	}
	if err := ctx.Err(); err != nil {
		return report.Trend{}, err
	}
	periods, err := engine.SummarizePeriods(in.PatientID, entries, fromMonth, end.AddDate(0, 0, -1), e.loc, ids, granularity, in.Thresholds)
	if err != nil {
		return report.Trend{}, err
	}
	return report.Trend{
		PatientID:   patient.ID,
		PatientName: patient.Name,
		From:        fromMonth.Format(monthLayout),
		To:          toMonth.Format(monthLayout),
		Granularity: granularity,
		Nutrients:   nutrients,
		Thresholds:  in.Thresholds,
		Periods:     periods,
	}, nil
}

type NutrientStatus struct {
	NutrientID int64   `json:"nutrient_id"`
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Consumed   float64 `json:"consumed"`
	Target     float64 `json:"target,omitempty"`
	HasTarget  bool    `json:"has_target"`
	Percent    float64 `json:"percent_of_target,omitempty"`
	Deficit    float64 `json:"deficit,omitempty"`
}

// DailyStatus compares one day's totals with the daily targets of the patient's age band
// on that day. AgeBand is nil when no band covers the patient's age.
type DailyStatus struct {
	Summary   engine.DailyNutrientSummary `json:"summary"`
	AgeMonths int                         `json:"age_months"`
	AgeBand   *model.AgeBand              `json:"age_band,omitempty"`
	Nutrients []NutrientStatus            `json:"nutrients"`
}

// Deficits returns the nutrients still below target, keyed by nutrient id.
func (s DailyStatus) Deficits() map[int64]float64 {
	out := map[int64]float64{}
	for _, n := range s.Nutrients {
		if n.HasTarget && n.Deficit > 0 {
			out[n.NutrientID] = n.Deficit
		}
	}
	return out
}

func (e *Engine) GetDailyStatus(ctx context.Context, patientID int64, date time.Time) (DailyStatus, error) {
	summary, err := e.GetDailySummary(ctx, patientID, date)
	if err != nil {
		return DailyStatus{}, err
	}
	_, end := dayRange(date, e.loc)
	age, err := e.store.GetAgeInMonths(ctx, patientID, end.Add(-time.Nanosecond))
	if err != nil {
		return DailyStatus{}, err
	}
	status := DailyStatus{Summary: summary, AgeMonths: age}

	targets := map[int64]float64{}
	band, err := e.store.GetAgeBand(ctx, age)
	switch {
	case errors.Is(err, engine.ErrNoAgeBandFound):
	case err != nil:
		return DailyStatus{}, err
	default:
		status.AgeBand = &band
		list, err := e.store.ListNutrientTargets(ctx, band.ID)
		if err != nil {
			return DailyStatus{}, err
		}
		for _, t := range list {
			targets[t.NutrientID] = t.DailyAmount
		}
	}

	nutrients, err := e.store.ListNutrients(ctx)
	if err != nil {
		return DailyStatus{}, err
	}
	status.Nutrients = make([]NutrientStatus, 0, len(nutrients))
	for _, n := range nutrients {
		ns := NutrientStatus{NutrientID: n.ID, Name: n.Name, Unit: n.Unit, Consumed: summary.Totals[n.ID]}
		if target, ok := targets[n.ID]; ok {
			ns.HasTarget = true
			ns.Target = target
			consumed := decimal.NewFromFloat(ns.Consumed)
			goal := decimal.NewFromFloat(target)
			if target > 0 {
				ns.Percent, _ = consumed.Mul(decimal.NewFromInt(100)).Div(goal).Round(engine.AmountPrecision).Float64()
			}
			if consumed.LessThan(goal) {
				ns.Deficit, _ = goal.Sub(consumed).Round(engine.AmountPrecision).Float64()
			}
		}
		status.Nutrients = append(status.Nutrients, ns)
	}
	return status, nil
}
