package nutrilog

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var doctorJSON bool

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run data integrity checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			report, err := service.RunDoctor(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			if doctorJSON {
				if err := writeJSON(cmd.OutOrStdout(), report); err != nil {
					return err
				}
			} else {
				out := cmd.OutOrStdout()
				for _, issue := range report.BandIssues {
					fmt.Fprintf(out, "Age band %s: months %d-%d\n", issue.Kind, issue.FromMonth, issue.ToMonth)
				}
				for _, b := range report.BandsWithoutRule {
					fmt.Fprintf(out, "Age band %d (%d-%d) has no serving rule\n", b.ID, b.MinMonths, b.MaxMonths)
				}
				for _, d := range report.EmptyDishes {
					fmt.Fprintf(out, "Dish %d %q has no ingredients\n", d.ID, d.Name)
				}
				for _, s := range report.InvalidSnapshots {
					fmt.Fprintf(out, "Entry %d snapshot is invalid: %s\n", s.EntryID, s.Error)
				}
				fmt.Fprintf(out, "Entries checked: %d\n", report.EntriesChecked)
			}
			if !report.Healthy() {
				return fmt.Errorf("doctor found integrity issues")
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "Output as JSON")
}
