package nutrilog

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var dishCmd = &cobra.Command{
	Use:   "dish",
	Short: "Manage dishes and their recipes",
}

var (
	dishName  string
	dishNotes string
	dishGrams float64
)

var dishAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a dish",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.CreateDish(rt.ctx, rt.store, service.DishInput{Name: dishName, Notes: dishNotes})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created dish %d\n", id)
			return nil
		})
	},
}

var dishListCmd = &cobra.Command{
	Use:   "list",
	Short: "List dishes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			dishes, err := service.ListDishes(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tNOTES")
			for _, d := range dishes {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", d.ID, d.Name, d.Notes)
			}
			return nil
		})
	},
}

var dishShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show a dish's recipe and the nutrients of the whole recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			comp, err := service.GetDishComposition(rt.ctx, rt.store, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %d\nName: %s\n", comp.DishID, comp.DishName)
			fmt.Fprintln(out, "ENTRY\tINGREDIENT\tGRAMS")
			for _, e := range comp.Entries {
				fmt.Fprintf(out, "%d\t%s\t%g\n", e.ID, e.IngredientName, e.Grams)
			}
			if len(comp.Entries) == 0 {
				return nil
			}
			_, base, err := service.DishBaseTotals(rt.ctx, rt.store, args[0])
			if err != nil {
				return err
			}
			labels, ids, err := nutrientLabels(rt)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Base weight: %g g\n", base.TotalWeightGrams)
			fmt.Fprintln(out, "NUTRIENT\tWHOLE_RECIPE")
			for _, id := range ids {
				if v, ok := base.PerNutrient[id]; ok {
					fmt.Fprintf(out, "%s\t%.2f\n", labels[id], v)
				}
			}
			return nil
		})
	},
}

var dishUpdateCmd = &cobra.Command{
	Use:   "update <id|name>",
	Short: "Rename a dish or change its notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.UpdateDish(rt.ctx, rt.store, args[0], service.DishInput{Name: dishName, Notes: dishNotes}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated dish %q\n", args[0])
			return nil
		})
	},
}

var dishDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete a dish; logged meals keep their snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.DeleteDish(rt.ctx, rt.store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted dish %q\n", args[0])
			return nil
		})
	},
}

var dishIngredientCmd = &cobra.Command{
	Use:   "ingredient",
	Short: "Edit a dish's recipe",
}

var dishIngredientAddCmd = &cobra.Command{
	Use:   "add <dish> <ingredient>",
	Short: "Add an ingredient to a dish",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.AddDishIngredient(rt.ctx, rt.store, args[0], args[1], dishGrams)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added entry %d\n", id)
			return nil
		})
	},
}

var dishIngredientUpdateCmd = &cobra.Command{
	Use:   "update <dish> <entry-id>",
	Short: "Change the grams of a recipe entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseInt64Arg("entry id", args[1])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.UpdateDishIngredient(rt.ctx, rt.store, args[0], entryID, dishGrams); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entry %d\n", entryID)
			return nil
		})
	},
}

var dishIngredientRemoveCmd = &cobra.Command{
	Use:   "remove <dish> <entry-id>",
	Short: "Remove a recipe entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		entryID, err := parseInt64Arg("entry id", args[1])
		if err != nil {
			return err
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.RemoveDishIngredient(rt.ctx, rt.store, args[0], entryID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", entryID)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dishCmd)
	dishCmd.AddCommand(dishAddCmd, dishListCmd, dishShowCmd, dishUpdateCmd, dishDeleteCmd, dishIngredientCmd)
	dishIngredientCmd.AddCommand(dishIngredientAddCmd, dishIngredientUpdateCmd, dishIngredientRemoveCmd)

	for _, c := range []*cobra.Command{dishAddCmd, dishUpdateCmd} {
		c.Flags().StringVar(&dishName, "name", "", "Dish name")
		c.Flags().StringVar(&dishNotes, "notes", "", "Notes")
	}
	_ = dishAddCmd.MarkFlagRequired("name")

	for _, c := range []*cobra.Command{dishIngredientAddCmd, dishIngredientUpdateCmd} {
		c.Flags().Float64Var(&dishGrams, "grams", 0, "Grams of the ingredient in the recipe")
		_ = c.MarkFlagRequired("grams")
	}
}
