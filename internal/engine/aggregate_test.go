package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

func entryAt(patientID int64, at time.Time, slot string, amounts map[int64]float64) model.MealLogEntry {
	return model.MealLogEntry{PatientID: patientID, LoggedAt: at, MealSlot: slot, NutrientAmounts: amounts}
}

func TestSummarizeDaysAddsSnapshots(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	entries := []model.MealLogEntry{
		entryAt(7, day.Add(8*time.Hour), "breakfast", map[int64]float64{ironID: 4.64}),
		entryAt(7, day.Add(12*time.Hour), "lunch", map[int64]float64{ironID: 4.64}),
		entryAt(7, day.Add(18*time.Hour), "lunch", map[int64]float64{ironID: 0, proteinID: 3.1}),
		entryAt(8, day.Add(9*time.Hour), "lunch", map[int64]float64{ironID: 100}),
	}

	days, err := engine.SummarizeDays(7, entries, day, day, loc, []int64{ironID, proteinID})
	if err != nil {
		t.Fatalf("summarize days: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected one day, got %d", len(days))
	}
	got := days[0]
	if got.Date != "2026-03-02" || got.EntryCount != 3 {
		t.Fatalf("unexpected day %+v", got)
	}
	if got.Totals[ironID] != 9.28 {
		t.Fatalf("expected iron 9.28, got %v", got.Totals[ironID])
	}
	if got.Totals[proteinID] != 3.1 {
		t.Fatalf("expected protein 3.1, got %v", got.Totals[proteinID])
	}
	if len(got.PerMealSlot) != 2 || got.PerMealSlot[0].Slot != "breakfast" || got.PerMealSlot[1].Slot != "lunch" {
		t.Fatalf("unexpected slots %+v", got.PerMealSlot)
	}
	if got.PerMealSlot[1].EntryCount != 2 || got.PerMealSlot[1].Totals[ironID] != 4.64 {
		t.Fatalf("unexpected lunch slot %+v", got.PerMealSlot[1])
	}
}

func TestSummarizeDaysOrderIndependent(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, loc)
	values := []float64{0.1, 0.2, 0.7, 1.33, 2.01, 0.09}

	forward := make([]model.MealLogEntry, 0, len(values))
	backward := make([]model.MealLogEntry, 0, len(values))
	for i, v := range values {
		forward = append(forward, entryAt(1, day.Add(time.Duration(i)*time.Hour), "", map[int64]float64{ironID: v}))
	}
	for i := len(forward) - 1; i >= 0; i-- {
		backward = append(backward, forward[i])
	}

	a, err := engine.SummarizeDays(1, forward, day, day, loc, nil)
	if err != nil {
		t.Fatalf("summarize forward: %v", err)
	}
	b, err := engine.SummarizeDays(1, backward, day, day, loc, nil)
	if err != nil {
		t.Fatalf("summarize backward: %v", err)
	}
	if a[0].Totals[ironID] != b[0].Totals[ironID] || a[0].Totals[ironID] != 4.43 {
		t.Fatalf("expected 4.43 in both orders, got %v and %v", a[0].Totals[ironID], b[0].Totals[ironID])
	}
}

func TestSummarizeDaysEmptyAndDeleted(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)
	deletedAt := from
	entries := []model.MealLogEntry{
		entryAt(1, from.Add(time.Hour), "lunch", map[int64]float64{ironID: 2}),
	}
	entries[0].DeletedAt = &deletedAt

	days, err := engine.SummarizeDays(1, entries, from, to, loc, []int64{ironID})
	if err != nil {
		t.Fatalf("summarize days: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	for _, d := range days {
		if d.EntryCount != 0 || len(d.PerMealSlot) != 0 {
			t.Fatalf("expected empty day, got %+v", d)
		}
		if v, ok := d.Totals[ironID]; !ok || v != 0 {
			t.Fatalf("expected zero iron present on %s, got %v", d.Date, d.Totals)
		}
	}

	if _, err := engine.SummarizeDays(1, nil, to, from, loc, nil); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("expected invalid input for reversed range, got %v", err)
	}
}

func TestSummarizeDaysUsesRecordingTimezone(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC-5", -5*60*60)
	// 03:00 UTC on the 2nd is 22:00 on the 1st at UTC-5.
	entries := []model.MealLogEntry{
		entryAt(1, time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC), "dinner", map[int64]float64{ironID: 1.5}),
	}
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)

	days, err := engine.SummarizeDays(1, entries, day, day, loc, nil)
	if err != nil {
		t.Fatalf("summarize days: %v", err)
	}
	if days[0].EntryCount != 1 || days[0].Totals[ironID] != 1.5 {
		t.Fatalf("expected entry on local day 2026-03-01, got %+v", days[0])
	}
}

func TestSummarizePeriodsByMonth(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	from := time.Date(2026, 1, 30, 0, 0, 0, 0, loc)
	to := time.Date(2026, 2, 2, 0, 0, 0, 0, loc)
	entries := []model.MealLogEntry{
		entryAt(1, time.Date(2026, 1, 30, 8, 0, 0, 0, loc), "breakfast", map[int64]float64{ironID: 3}),
		entryAt(1, time.Date(2026, 1, 30, 12, 0, 0, 0, loc), "lunch", map[int64]float64{ironID: 1}),
		entryAt(1, time.Date(2026, 1, 31, 12, 0, 0, 0, loc), "lunch", map[int64]float64{ironID: 5}),
		entryAt(1, time.Date(2026, 2, 2, 12, 0, 0, 0, loc), "lunch", map[int64]float64{ironID: 2}),
	}

	periods, err := engine.SummarizePeriods(1, entries, from, to, loc, []int64{ironID}, engine.GranularityMonth, map[int64]float64{ironID: 3})
	if err != nil {
		t.Fatalf("summarize periods: %v", err)
	}
	if len(periods) != 2 {
		t.Fatalf("expected two months, got %+v", periods)
	}

	jan := periods[0]
	if jan.Label != "2026-01" || jan.FromDate != "2026-01-30" || jan.ToDate != "2026-01-31" {
		t.Fatalf("unexpected january bucket %+v", jan)
	}
	if jan.Days != 2 || jan.DaysWithEntries != 2 || jan.EntryCount != 3 {
		t.Fatalf("unexpected january counts %+v", jan)
	}
	if jan.Totals[ironID] != 9 || jan.AvgPerDay[ironID] != 4.5 {
		t.Fatalf("unexpected january iron %+v", jan)
	}
	// The breakfast entry sits exactly on the threshold and counts.
	if got := jan.AtOrAboveThreshold[ironID]; got != 2.0/3.0 {
		t.Fatalf("expected 2/3 of entries at or above threshold, got %v", got)
	}

	feb := periods[1]
	if feb.Days != 2 || feb.DaysWithEntries != 1 || feb.AvgPerDay[ironID] != 2 {
		t.Fatalf("unexpected february bucket %+v", feb)
	}
	if feb.AtOrAboveThreshold[ironID] != 0 {
		t.Fatalf("expected no february entries above threshold, got %v", feb.AtOrAboveThreshold[ironID])
	}
}

func TestSummarizePeriodsByWeek(t *testing.T) {
	t.Parallel()
	loc := time.UTC
	// 2026-03-01 is a Sunday, so the range spans ISO weeks 9 and 10.
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, 3, 3, 0, 0, 0, 0, loc)

	periods, err := engine.SummarizePeriods(1, nil, from, to, loc, []int64{ironID}, engine.GranularityWeek, nil)
	if err != nil {
		t.Fatalf("summarize periods: %v", err)
	}
	if len(periods) != 2 || periods[0].Label != "2026-W09" || periods[1].Label != "2026-W10" {
		t.Fatalf("unexpected week buckets %+v", periods)
	}
	if periods[1].Days != 2 || periods[1].AvgPerDay[ironID] != 0 || periods[1].AtOrAboveThreshold != nil {
		t.Fatalf("unexpected empty week %+v", periods[1])
	}
}

func TestParseGranularity(t *testing.T) {
	t.Parallel()
	if g, err := engine.ParseGranularity(""); err != nil || g != engine.GranularityMonth {
		t.Fatalf("expected month default, got %q (%v)", g, err)
	}
	if _, err := engine.ParseGranularity("year"); !errors.Is(err, engine.ErrInvalidInput) {
		t.Fatalf("expected invalid granularity, got %v", err)
	}
}
