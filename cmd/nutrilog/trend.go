package nutrilog

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/report"
	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var (
	trendPatient     int64
	trendFrom        string
	trendTo          string
	trendGranularity string
	trendThresholds  []string
	trendFormat      string
	trendOut         string
)

var trendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Show monthly or weekly nutrient trends",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			trend, err := loadTrend(rt)
			if err != nil {
				return err
			}
			format, err := report.ParseFormat(trendFormat)
			if err != nil {
				return err
			}
			if format == report.FormatXLSX {
				return fmt.Errorf("xlsx output needs a file; use report trend --out")
			}
			return report.Write(cmd.OutOrStdout(), format, trend)
		})
	},
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export reports",
}

var reportTrendCmd = &cobra.Command{
	Use:   "trend",
	Short: "Export a trend as json, csv or xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(trendFormat)
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			trend, err := loadTrend(rt)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := report.Write(&buf, format, trend); err != nil {
				return err
			}
			if strings.TrimSpace(trendOut) == "" {
				_, err := cmd.OutOrStdout().Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(trendOut, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write report %s: %w", trendOut, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s report to %s\n", format, trendOut)
			return nil
		})
	},
}

func loadTrend(rt *runtime) (report.Trend, error) {
	granularity, err := engine.ParseGranularity(strings.ToLower(strings.TrimSpace(trendGranularity)))
	if err != nil {
		return report.Trend{}, err
	}
	thresholds, err := parseThresholds(rt, trendThresholds)
	if err != nil {
		return report.Trend{}, err
	}
	to := trendTo
	if strings.TrimSpace(to) == "" {
		to = trendFrom
	}
	return rt.engine.GetPeriodTrend(rt.ctx, service.TrendInput{
		PatientID:   trendPatient,
		FromMonth:   trendFrom,
		ToMonth:     to,
		Granularity: granularity,
		Thresholds:  thresholds,
	})
}

// parseThresholds reads nutrient=amount pairs; the nutrient is an id or a name.
func parseThresholds(rt *runtime, values []string) (map[int64]float64, error) {
	out := map[int64]float64{}
	for _, raw := range values {
		name, amount, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --threshold %q (expected nutrient=amount)", raw)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid --threshold amount %q", amount)
		}
		n, err := service.ResolveNutrient(rt.ctx, rt.store, name)
		if err != nil {
			return nil, err
		}
		out[n.ID] = v
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(trendCmd, reportCmd)
	reportCmd.AddCommand(reportTrendCmd)

	for _, c := range []*cobra.Command{trendCmd, reportTrendCmd} {
		c.Flags().Int64Var(&trendPatient, "patient", 0, "Patient id")
		c.Flags().StringVar(&trendFrom, "from", "", "First month YYYY-MM")
		c.Flags().StringVar(&trendTo, "to", "", "Last month YYYY-MM (default --from)")
		c.Flags().StringVar(&trendGranularity, "granularity", "month", "Bucket by month or week")
		c.Flags().StringArrayVar(&trendThresholds, "threshold", nil, "Per-entry threshold nutrient=amount (repeatable)")
		_ = c.MarkFlagRequired("patient")
		_ = c.MarkFlagRequired("from")
	}
	trendCmd.Flags().StringVar(&trendFormat, "format", "json", "Output format: json or csv")
	reportTrendCmd.Flags().StringVar(&trendFormat, "format", "csv", "Output format: json, csv, xlsx")
	reportTrendCmd.Flags().StringVar(&trendOut, "out", "", "Output file (default stdout)")
}
