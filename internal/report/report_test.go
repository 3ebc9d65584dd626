package report_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
	"github.com/saadjs/nutrilog/internal/report"
)

func sampleTrend() report.Trend {
	return report.Trend{
		PatientID:   5,
		PatientName: "Ada",
		From:        "2026-01",
		To:          "2026-02",
		Granularity: engine.GranularityMonth,
		Nutrients:   []model.Nutrient{{ID: 1, Name: "Iron", Unit: "mg"}, {ID: 2, Name: "Energy", Unit: "kcal"}},
		Thresholds:  map[int64]float64{1: 3},
		Periods: []engine.PeriodSummary{
			{
				Label: "2026-01", FromDate: "2026-01-01", ToDate: "2026-01-31",
				Days: 31, DaysWithEntries: 2, EntryCount: 3,
				Totals:             engine.Amounts{1: 9, 2: 1200},
				AvgPerDay:          engine.Amounts{1: 4.5, 2: 600},
				AtOrAboveThreshold: map[int64]float64{1: 2.0 / 3.0},
			},
			{
				Label: "2026-02", FromDate: "2026-02-01", ToDate: "2026-02-28",
				Days: 28, Totals: engine.Amounts{1: 0, 2: 0}, AvgPerDay: engine.Amounts{1: 0, 2: 0},
				AtOrAboveThreshold: map[int64]float64{1: 0},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := report.ParseFormat("XLSX")
	require.NoError(t, err)
	assert.Equal(t, report.FormatXLSX, f)

	f, err = report.ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, report.FormatJSON, f)

	_, err = report.ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatCSV, sampleTrend()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Period,From,To,Days,Days Logged,Entries,Iron Total (mg),Iron Avg/Day (mg),Iron >= 3 mg (%),Energy Total (kcal),Energy Avg/Day (kcal)", lines[0])
	assert.Equal(t, "2026-01,2026-01-01,2026-01-31,31,2,3,9,4.5,66.67,1200,600", lines[1])
	assert.Equal(t, "2026-02,2026-02-01,2026-02-28,28,0,0,0,0,0,0,0", lines[2])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatJSON, sampleTrend()))

	var decoded struct {
		PatientID int64 `json:"patient_id"`
		Periods   []struct {
			Label  string             `json:"label"`
			Totals map[string]float64 `json:"totals"`
		} `json:"periods"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, int64(5), decoded.PatientID)
	require.Len(t, decoded.Periods, 2)
	assert.Equal(t, 9.0, decoded.Periods[0].Totals["1"])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, report.FormatXLSX, sampleTrend()))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Trend"}, f.GetSheetList())
	rows, err := f.GetRows("Trend")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Period", rows[0][0])
	assert.Equal(t, "2026-01", rows[1][0])
	assert.Equal(t, "4.5", rows[1][7])
}
