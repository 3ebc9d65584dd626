// Package report renders period trends for export.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("unsupported report format %q (use json, csv, xlsx)", value)
	}
}

// Trend is one patient's period summaries together with the catalog needed to label
// nutrient columns.
type Trend struct {
	PatientID   int64                  `json:"patient_id"`
	PatientName string                 `json:"patient_name"`
	From        string                 `json:"from"`
	To          string                 `json:"to"`
	Granularity engine.Granularity     `json:"granularity"`
	Nutrients   []model.Nutrient       `json:"-"`
	Thresholds  map[int64]float64      `json:"thresholds,omitempty"`
	Periods     []engine.PeriodSummary `json:"periods"`
}

func Write(w io.Writer, format Format, trend Trend) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(trend); err != nil {
			return fmt.Errorf("encode trend json: %w", err)
		}
		return nil
	case FormatCSV:
		return writeCSV(w, trend)
	case FormatXLSX:
		return writeXLSX(w, trend)
	default:
		return fmt.Errorf("unsupported report format %q", format)
	}
}

// table flattens the trend into a header row and one row per period. Nutrient columns
// follow the order of trend.Nutrients.
func table(trend Trend) ([]string, [][]any) {
	headers := []string{"Period", "From", "To", "Days", "Days Logged", "Entries"}
	for _, n := range trend.Nutrients {
		headers = append(headers,
			fmt.Sprintf("%s Total (%s)", n.Name, n.Unit),
			fmt.Sprintf("%s Avg/Day (%s)", n.Name, n.Unit),
		)
		if _, ok := trend.Thresholds[n.ID]; ok {
			headers = append(headers, fmt.Sprintf("%s >= %s %s (%%)", n.Name, formatAmount(trend.Thresholds[n.ID]), n.Unit))
		}
	}

	rows := make([][]any, 0, len(trend.Periods))
	for _, p := range trend.Periods {
		row := []any{p.Label, p.FromDate, p.ToDate, p.Days, p.DaysWithEntries, p.EntryCount}
		for _, n := range trend.Nutrients {
			row = append(row, p.Totals[n.ID], p.AvgPerDay[n.ID])
			if _, ok := trend.Thresholds[n.ID]; ok {
				row = append(row, engine.RoundAmount(p.AtOrAboveThreshold[n.ID]*100))
			}
		}
		rows = append(rows, row)
	}
	return headers, rows
}

func writeCSV(w io.Writer, trend Trend) error {
	headers, rows := table(trend)
	cw := csv.NewWriter(w)
	if err := cw.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = formatCell(v)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return formatAmount(val)
	default:
		return fmt.Sprint(val)
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
