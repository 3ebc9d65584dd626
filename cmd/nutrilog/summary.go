package nutrilog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Daily nutrient totals from logged snapshots",
}

var (
	summaryPatient int64
	summaryDate    string
	summaryFrom    string
	summaryTo      string
	summaryJSON    bool
)

var summaryDayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show one day's totals by meal slot",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			day, err := parseDateOrToday(summaryDate, rt.engine.Location())
			if err != nil {
				return err
			}
			s, err := rt.engine.GetDailySummary(rt.ctx, summaryPatient, day)
			if err != nil {
				return err
			}
			if summaryJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			labels, ids, err := nutrientLabels(rt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Date: %s\nEntries: %d\n", s.Date, s.EntryCount)
			header := []string{"SLOT", "ENTRIES"}
			for _, id := range ids {
				header = append(header, labels[id])
			}
			fmt.Fprintln(out, strings.Join(header, "\t"))
			for _, slot := range s.PerMealSlot {
				name := slot.Slot
				if name == "" {
					name = "-"
				}
				fmt.Fprintln(out, amountRow([]string{name, strconv.Itoa(slot.EntryCount)}, ids, slot.Totals))
			}
			fmt.Fprintln(out, amountRow([]string{"TOTAL", strconv.Itoa(s.EntryCount)}, ids, s.Totals))
			return nil
		})
	},
}

var summaryRangeCmd = &cobra.Command{
	Use:   "range",
	Short: "Show daily totals for every day in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			from, err := parseDateOrToday(summaryFrom, rt.engine.Location())
			if err != nil {
				return err
			}
			to, err := parseDateOrToday(summaryTo, rt.engine.Location())
			if err != nil {
				return err
			}
			days, err := rt.engine.GetDailySummaries(rt.ctx, summaryPatient, from, to)
			if err != nil {
				return err
			}
			if summaryJSON {
				return writeJSON(cmd.OutOrStdout(), days)
			}
			labels, ids, err := nutrientLabels(rt)
			if err != nil {
				return err
			}
			header := []string{"DATE", "ENTRIES"}
			for _, id := range ids {
				header = append(header, labels[id])
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(header, "\t"))
			for _, d := range days {
				fmt.Fprintln(cmd.OutOrStdout(), amountRow([]string{d.Date, strconv.Itoa(d.EntryCount)}, ids, d.Totals))
			}
			return nil
		})
	},
}

var summaryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare one day's totals with the age band's daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			day, err := parseDateOrToday(summaryDate, rt.engine.Location())
			if err != nil {
				return err
			}
			status, err := rt.engine.GetDailyStatus(rt.ctx, summaryPatient, day)
			if err != nil {
				return err
			}
			if summaryJSON {
				return writeJSON(cmd.OutOrStdout(), status)
			}
			out := cmd.OutOrStdout()
			band := "none"
			if status.AgeBand != nil {
				band = fmt.Sprintf("%d (%d-%d months)", status.AgeBand.ID, status.AgeBand.MinMonths, status.AgeBand.MaxMonths)
			}
			fmt.Fprintf(out, "Date: %s\nAge: %d months\nAge band: %s\n", status.Summary.Date, status.AgeMonths, band)
			fmt.Fprintln(out, "NUTRIENT\tCONSUMED\tTARGET\tPERCENT\tDEFICIT")
			for _, n := range status.Nutrients {
				if !n.HasTarget {
					fmt.Fprintf(out, "%s (%s)\t%.2f\t-\t-\t-\n", n.Name, n.Unit, n.Consumed)
					continue
				}
				fmt.Fprintf(out, "%s (%s)\t%.2f\t%g\t%.2f%%\t%.2f\n", n.Name, n.Unit, n.Consumed, n.Target, n.Percent, n.Deficit)
			}
			return nil
		})
	},
}

func amountRow(lead []string, ids []int64, amounts engine.Amounts) string {
	cells := append([]string{}, lead...)
	for _, id := range ids {
		cells = append(cells, strconv.FormatFloat(engine.RoundAmount(amounts[id]), 'f', engine.AmountPrecision, 64))
	}
	return strings.Join(cells, "\t")
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.AddCommand(summaryDayCmd, summaryRangeCmd, summaryStatusCmd)

	for _, c := range []*cobra.Command{summaryDayCmd, summaryRangeCmd, summaryStatusCmd} {
		c.Flags().Int64Var(&summaryPatient, "patient", 0, "Patient id")
		c.Flags().BoolVar(&summaryJSON, "json", false, "Output as JSON")
		_ = c.MarkFlagRequired("patient")
	}
	for _, c := range []*cobra.Command{summaryDayCmd, summaryStatusCmd} {
		c.Flags().StringVar(&summaryDate, "date", "", "Date YYYY-MM-DD (default today)")
	}
	summaryRangeCmd.Flags().StringVar(&summaryFrom, "from", "", "First day YYYY-MM-DD")
	summaryRangeCmd.Flags().StringVar(&summaryTo, "to", "", "Last day YYYY-MM-DD (default today)")
	_ = summaryRangeCmd.MarkFlagRequired("from")
}
