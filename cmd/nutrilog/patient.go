package nutrilog

import (
	"fmt"
	"time"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var patientCmd = &cobra.Command{
	Use:   "patient",
	Short: "Manage patients",
}

var (
	patientName  string
	patientBirth string
)

var patientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a patient",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.CreatePatient(rt.ctx, rt.store, service.PatientInput{Name: patientName, BirthDate: patientBirth})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created patient %d\n", id)
			return nil
		})
	},
}

var patientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List patients with their age today",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			patients, err := service.ListPatients(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			now := time.Now().In(rt.engine.Location())
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tBIRTH_DATE\tAGE_MONTHS")
			for _, p := range patients {
				age, err := rt.store.GetAgeInMonths(rt.ctx, p.ID, now)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%d\n", p.ID, p.Name, p.BirthDate, age)
			}
			return nil
		})
	},
}

var patientUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a patient",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("patient id", args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.UpdatePatient(rt.ctx, rt.store, id, service.PatientInput{Name: patientName, BirthDate: patientBirth}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(patientCmd)
	patientCmd.AddCommand(patientAddCmd, patientListCmd, patientUpdateCmd)

	for _, c := range []*cobra.Command{patientAddCmd, patientUpdateCmd} {
		c.Flags().StringVar(&patientName, "name", "", "Patient name")
		c.Flags().StringVar(&patientBirth, "birth-date", "", "Birth date YYYY-MM-DD")
	}
	_ = patientAddCmd.MarkFlagRequired("name")
	_ = patientAddCmd.MarkFlagRequired("birth-date")
}
