package nutrilog

import (
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/engine"
	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var mealCmd = &cobra.Command{
	Use:   "meal",
	Short: "Log and review meals",
}

var (
	mealPatient  int64
	mealDish     string
	mealServing  string
	mealPortions float64
	mealGrams    float64
	mealSlot     string
	mealDate     string
	mealTime     string
	mealNotes    string
	mealJSON     bool
)

// servingFromFlags picks the serving model. --portions or --grams alone select their
// mode; an unset --portions in portion mode means one whole recipe.
func servingFromFlags(cmd *cobra.Command) (service.ServingSpec, error) {
	portionsSet := cmd.Flags().Changed("portions")
	gramsSet := cmd.Flags().Changed("grams")
	if portionsSet && gramsSet {
		return service.ServingSpec{}, fmt.Errorf("use only one of --portions and --grams")
	}
	mode := strings.ToLower(strings.TrimSpace(mealServing))
	if !cmd.Flags().Changed("serving") {
		switch {
		case gramsSet:
			mode = string(engine.ServingModeGrams)
		case portionsSet:
			mode = string(engine.ServingModePortion)
		}
	}
	switch mode {
	case "age", string(engine.ServingModeAgeBand):
		if portionsSet || gramsSet {
			return service.ServingSpec{}, fmt.Errorf("--serving age does not take --portions or --grams")
		}
		return service.ByAge(), nil
	case string(engine.ServingModePortion):
		if gramsSet {
			return service.ServingSpec{}, fmt.Errorf("--serving portion does not take --grams")
		}
		if !portionsSet {
			return service.ByPortions(engine.DefaultPortions), nil
		}
		return service.ByPortions(mealPortions), nil
	case string(engine.ServingModeGrams):
		if !gramsSet {
			return service.ServingSpec{}, fmt.Errorf("--serving grams requires --grams")
		}
		return service.ByGrams(mealGrams), nil
	default:
		return service.ServingSpec{}, fmt.Errorf("invalid --serving %q (use age, portion, grams)", mealServing)
	}
}

var mealLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a meal for a patient",
	RunE: func(cmd *cobra.Command, args []string) error {
		serving, err := servingFromFlags(cmd)
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			loggedAt, err := parseDateTimeOrNow(mealDate, mealTime, rt.engine.Location())
			if err != nil {
				return err
			}
			entry, err := rt.engine.LogMeal(rt.ctx, service.LogMealInput{
				PatientID: mealPatient,
				Dish:      mealDish,
				Serving:   serving,
				MealSlot:  mealSlot,
				LoggedAt:  loggedAt,
				Notes:     mealNotes,
			})
			if err != nil {
				return err
			}
			if mealJSON {
				return writeJSON(cmd.OutOrStdout(), entry)
			}
			labels, ids, err := nutrientLabels(rt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged entry %d (%s): %s, %g g (%s, factor %.4f)\n", entry.ID, entry.UID, entry.DishName, entry.ServingGrams, entry.ServingMode, entry.ScalingFactor)
			for _, id := range ids {
				if v, ok := entry.NutrientAmounts[id]; ok {
					fmt.Fprintf(out, "%s\t%.2f\n", labels[id], v)
				}
			}
			return nil
		})
	},
}

var mealListCmd = &cobra.Command{
	Use:   "list",
	Short: "List a patient's meals for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			day, err := parseDateOrToday(mealDate, rt.engine.Location())
			if err != nil {
				return err
			}
			meals, err := rt.engine.ListMeals(rt.ctx, mealPatient, day)
			if err != nil {
				return err
			}
			if mealJSON {
				return writeJSON(cmd.OutOrStdout(), meals)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tTIME\tSLOT\tDISH\tMODE\tGRAMS")
			for _, m := range meals {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\t%s\t%g\n",
					m.ID, m.LoggedAt.In(rt.engine.Location()).Format("15:04"), m.MealSlot, m.DishName, m.ServingMode, m.ServingGrams)
			}
			return nil
		})
	},
}

var mealDeleteCmd = &cobra.Command{
	Use:   "delete <entry-id>",
	Short: "Delete a logged meal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseInt64Arg("entry id", args[0])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := rt.engine.DeleteMeal(rt.ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted entry %d\n", id)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(mealCmd)
	mealCmd.AddCommand(mealLogCmd, mealListCmd, mealDeleteCmd)

	mealLogCmd.Flags().Int64Var(&mealPatient, "patient", 0, "Patient id")
	mealLogCmd.Flags().StringVar(&mealDish, "dish", "", "Dish id or name")
	mealLogCmd.Flags().StringVar(&mealServing, "serving", "age", "Serving model: age, portion, grams")
	mealLogCmd.Flags().Float64Var(&mealPortions, "portions", engine.DefaultPortions, "Multiplier of the whole recipe")
	mealLogCmd.Flags().Float64Var(&mealGrams, "grams", 0, "Weighed serving in grams")
	mealLogCmd.Flags().StringVar(&mealSlot, "slot", "", "Meal slot")
	mealLogCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default now)")
	mealLogCmd.Flags().StringVar(&mealTime, "time", "", "Time HH:MM (default 12:00 with --date)")
	mealLogCmd.Flags().StringVar(&mealNotes, "notes", "", "Notes")
	mealLogCmd.Flags().BoolVar(&mealJSON, "json", false, "Output as JSON")
	_ = mealLogCmd.MarkFlagRequired("patient")
	_ = mealLogCmd.MarkFlagRequired("dish")

	mealListCmd.Flags().Int64Var(&mealPatient, "patient", 0, "Patient id")
	mealListCmd.Flags().StringVar(&mealDate, "date", "", "Date YYYY-MM-DD (default today)")
	mealListCmd.Flags().BoolVar(&mealJSON, "json", false, "Output as JSON")
	_ = mealListCmd.MarkFlagRequired("patient")
}
