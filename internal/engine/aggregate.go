package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/saadjs/nutrilog/internal/model"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

type SlotSummary struct {
	Slot       string  `json:"slot"`
	EntryCount int     `json:"entry_count"`
	Totals     Amounts `json:"totals"`
}

type DailyNutrientSummary struct {
	PatientID   int64         `json:"patient_id"`
	Date        string        `json:"date"`
	EntryCount  int           `json:"entry_count"`
	PerMealSlot []SlotSummary `json:"per_meal_slot"`
	Totals      Amounts       `json:"totals"`
}

type Granularity string

const (
	GranularityWeek  Granularity = "week"
	GranularityMonth Granularity = "month"
)

func ParseGranularity(value string) (Granularity, error) {
	switch Granularity(value) {
	case "", GranularityMonth:
		return GranularityMonth, nil
	case GranularityWeek:
		return GranularityWeek, nil
	default:
		return "", fmt.Errorf("%w: granularity %q (use week or month)", ErrInvalidInput, value)
	}
}

type PeriodSummary struct {
	Label           string  `json:"label"`
	FromDate        string  `json:"from_date"`
	ToDate          string  `json:"to_date"`
	Days            int     `json:"days"`
	DaysWithEntries int     `json:"days_with_entries"`
	EntryCount      int     `json:"entry_count"`
	Totals          Amounts `json:"totals"`
	AvgPerDay       Amounts `json:"avg_per_logged_day"`
	// AtOrAboveThreshold is the share of entries whose amount is >= the threshold.
	// An amount equal to the threshold counts.
	AtOrAboveThreshold map[int64]float64 `json:"at_or_above_threshold,omitempty"`
}

// SummarizeDays returns one summary per calendar day in [from, to], both inclusive, with
// day boundaries taken in loc. Totals add the stored snapshot values exactly; every id in
// nutrientIDs is present in every Totals map even when nothing was logged.
func SummarizeDays(patientID int64, entries []model.MealLogEntry, from, to time.Time, loc *time.Location, nutrientIDs []int64) ([]DailyNutrientSummary, error) {
	if loc == nil {
		loc = time.Local
	}
	from = beginningOfDay(from, loc)
	to = beginningOfDay(to, loc)
	if from.After(to) {
		return nil, fmt.Errorf("%w: from date must be <= to date", ErrInvalidInput)
	}

	type dayAcc struct {
		count int
		total decimalSum
		slots map[string]*slotAcc
	}
	byDay := map[string]*dayAcc{}
	for i := range entries {
		e := &entries[i]
		if e.DeletedAt != nil || e.PatientID != patientID {
			continue
		}
		local := e.LoggedAt.In(loc)
		if local.Before(from) || !local.Before(to.AddDate(0, 0, 1)) {
			continue
		}
		key := local.Format(dateLayout)
		acc, ok := byDay[key]
		if !ok {
			acc = &dayAcc{total: decimalSum{}, slots: map[string]*slotAcc{}}
			byDay[key] = acc
		}
		acc.count++
		acc.total.add(Amounts(e.NutrientAmounts))
		slot, ok := acc.slots[e.MealSlot]
		if !ok {
			slot = &slotAcc{total: decimalSum{}}
			acc.slots[e.MealSlot] = slot
		}
		slot.count++
		slot.total.add(Amounts(e.NutrientAmounts))
	}

	out := make([]DailyNutrientSummary, 0, inclusiveDayCount(from, to))
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(dateLayout)
		day := DailyNutrientSummary{
			PatientID:   patientID,
			Date:        key,
			PerMealSlot: []SlotSummary{},
			Totals:      decimalSum{}.amounts(nutrientIDs),
		}
		if acc, ok := byDay[key]; ok {
			day.EntryCount = acc.count
			day.Totals = acc.total.amounts(nutrientIDs)
			day.PerMealSlot = slotSummaries(acc.slots, nutrientIDs)
		}
		out = append(out, day)
	}
	return out, nil
}

type slotAcc struct {
	count int
	total decimalSum
}

func slotSummaries(slots map[string]*slotAcc, nutrientIDs []int64) []SlotSummary {
	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]SlotSummary, 0, len(names))
	for _, name := range names {
		out = append(out, SlotSummary{
			Slot:       name,
			EntryCount: slots[name].count,
			Totals:     slots[name].total.amounts(nutrientIDs),
		})
	}
	return out
}

// SummarizePeriods buckets the daily summaries of [from, to] by week or month. Buckets
// are clipped to the requested range. AtOrAboveThreshold holds, for each nutrient with a
// threshold, the share of entries in the bucket whose snapshot amount is >= threshold.
func SummarizePeriods(patientID int64, entries []model.MealLogEntry, from, to time.Time, loc *time.Location, nutrientIDs []int64, granularity Granularity, thresholds map[int64]float64) ([]PeriodSummary, error) {
	if loc == nil {
		loc = time.Local
	}
	days, err := SummarizeDays(patientID, entries, from, to, loc, nutrientIDs)
	if err != nil {
		return nil, err
	}

	type periodAcc struct {
		summary PeriodSummary
		total   decimalSum
		above   map[int64]int
	}
	acc := map[string]*periodAcc{}
	order := make([]string, 0)
	for i := range days {
		date, _ := time.ParseInLocation(dateLayout, days[i].Date, loc)
		key := bucketKey(date, granularity, loc)
		item, ok := acc[key]
		if !ok {
			item = &periodAcc{
				summary: PeriodSummary{Label: key, FromDate: days[i].Date},
				total:   decimalSum{},
				above:   map[int64]int{},
			}
			order = append(order, key)
			acc[key] = item
		}
		item.summary.ToDate = days[i].Date
		item.summary.Days++
		item.summary.EntryCount += days[i].EntryCount
		if days[i].EntryCount > 0 {
			item.summary.DaysWithEntries++
		}
		item.total.add(days[i].Totals)
	}

	if len(thresholds) > 0 {
		rangeEnd := beginningOfDay(to, loc).AddDate(0, 0, 1)
		rangeStart := beginningOfDay(from, loc)
		for i := range entries {
			e := &entries[i]
			if e.DeletedAt != nil || e.PatientID != patientID {
				continue
			}
			local := e.LoggedAt.In(loc)
			if local.Before(rangeStart) || !local.Before(rangeEnd) {
				continue
			}
			item := acc[bucketKey(local, granularity, loc)]
			for id, threshold := range thresholds {
				if e.NutrientAmounts[id] >= threshold {
					item.above[id]++
				}
			}
		}
	}

	out := make([]PeriodSummary, 0, len(order))
	for _, key := range order {
		item := acc[key]
		s := item.summary
		s.Totals = item.total.amounts(nutrientIDs)
		s.AvgPerDay = make(Amounts, len(s.Totals))
		for id, v := range s.Totals {
			if s.DaysWithEntries > 0 {
				avg, _ := decimal.NewFromFloat(v).Div(decimal.NewFromInt(int64(s.DaysWithEntries))).Round(AmountPrecision).Float64()
				s.AvgPerDay[id] = avg
			} else {
				s.AvgPerDay[id] = 0
			}
		}
		if len(thresholds) > 0 {
			s.AtOrAboveThreshold = make(map[int64]float64, len(thresholds))
			for id := range thresholds {
				if s.EntryCount > 0 {
					s.AtOrAboveThreshold[id] = float64(item.above[id]) / float64(s.EntryCount)
				} else {
					s.AtOrAboveThreshold[id] = 0
				}
			}
		}
		out = append(out, s)
	}
	return out, nil
}

func bucketKey(date time.Time, granularity Granularity, loc *time.Location) string {
	switch granularity {
	case GranularityWeek:
		year, week := date.In(loc).ISOWeek()
		return fmt.Sprintf("%04d-W%02d", year, week)
	default:
		return date.In(loc).Format("2006-01")
	}
}

func beginningOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func inclusiveDayCount(from, to time.Time) int {
	count := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		count++
	}
	return count
}
