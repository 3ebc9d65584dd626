package nutrilog

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var agebandCmd = &cobra.Command{
	Use:   "ageband",
	Short: "Manage age bands (inclusive month ranges)",
}

var (
	bandMin         int
	bandMax         int
	bandDescription string
	ruleGrams       float64
	targetDaily     float64
	targetBandID    int64
)

var agebandAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an age band",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.CreateAgeBand(rt.ctx, rt.store, service.AgeBandInput{MinMonths: bandMin, MaxMonths: bandMax, Description: bandDescription})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created age band %d (%d-%d months)\n", id, bandMin, bandMax)
			return nil
		})
	},
}

var agebandListCmd = &cobra.Command{
	Use:   "list",
	Short: "List age bands with their serving rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			bands, err := service.ListAgeBands(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			rules, err := service.ListServingRules(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			grams := make(map[int64]float64, len(rules))
			for _, r := range rules {
				grams[r.AgeBandID] = r.ServingGrams
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tMIN_MONTHS\tMAX_MONTHS\tSERVING_G\tDESCRIPTION")
			for _, b := range bands {
				serving := "-"
				if g, ok := grams[b.ID]; ok {
					serving = fmt.Sprintf("%g", g)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%d\t%d\t%s\t%s\n", b.ID, b.MinMonths, b.MaxMonths, serving, b.Description)
			}
			return nil
		})
	},
}

var agebandDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an age band with its serving rule and targets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("age band id", args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.DeleteAgeBand(rt.ctx, rt.store, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted age band %d\n", id)
			return nil
		})
	},
}

var servingRuleCmd = &cobra.Command{
	Use:   "serving-rule",
	Short: "Manage standard serving weights per age band",
}

var servingRuleSetCmd = &cobra.Command{
	Use:   "set <age-band-id>",
	Short: "Set the serving weight for an age band",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("age band id", args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.SetServingRule(rt.ctx, rt.store, id, ruleGrams); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Age band %d serves %g g\n", id, ruleGrams)
			return nil
		})
	},
}

var servingRuleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List serving rules",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			rules, err := service.ListServingRules(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "AGE_BAND\tSERVING_G")
			for _, r := range rules {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%g\n", r.AgeBandID, r.ServingGrams)
			}
			return nil
		})
	},
}

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Manage daily nutrient targets per age band",
}

var targetSetCmd = &cobra.Command{
	Use:   "set <age-band-id> <nutrient>",
	Short: "Set a daily target, in the nutrient's catalog unit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("age band id", args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.SetNutrientTarget(rt.ctx, rt.store, id, args[1], targetDaily); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Age band %d target for %s: %g per day\n", id, args[1], targetDaily)
			return nil
		})
	},
}

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily targets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			targets, err := service.ListNutrientTargets(rt.ctx, rt.store, targetBandID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "AGE_BAND\tNUTRIENT\tDAILY\tUNIT")
			for _, t := range targets {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%g\t%s\n", t.AgeBandID, t.NutrientName, t.DailyAmount, t.Unit)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(agebandCmd, servingRuleCmd, targetCmd)
	agebandCmd.AddCommand(agebandAddCmd, agebandListCmd, agebandDeleteCmd)
	servingRuleCmd.AddCommand(servingRuleSetCmd, servingRuleListCmd)
	targetCmd.AddCommand(targetSetCmd, targetListCmd)

	agebandAddCmd.Flags().IntVar(&bandMin, "min-months", 0, "First month covered (inclusive)")
	agebandAddCmd.Flags().IntVar(&bandMax, "max-months", 0, "Last month covered (inclusive)")
	agebandAddCmd.Flags().StringVar(&bandDescription, "description", "", "Description")
	_ = agebandAddCmd.MarkFlagRequired("min-months")
	_ = agebandAddCmd.MarkFlagRequired("max-months")

	servingRuleSetCmd.Flags().Float64Var(&ruleGrams, "grams", 0, "Serving weight in grams")
	_ = servingRuleSetCmd.MarkFlagRequired("grams")

	targetSetCmd.Flags().Float64Var(&targetDaily, "daily", 0, "Daily amount")
	_ = targetSetCmd.MarkFlagRequired("daily")
	targetListCmd.Flags().Int64Var(&targetBandID, "age-band", 0, "Only this age band")
}
