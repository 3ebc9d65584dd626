package nutrilog

import (
	"fmt"
	"strings"

	"github.com/saadjs/nutrilog/internal/provider/usda"
	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var ingredientCmd = &cobra.Command{
	Use:   "ingredient",
	Short: "Manage ingredients and their nutrient densities",
}

var (
	ingredientName    string
	ingredientAmount  float64
	ingredientUnit    string
	ingredientFDCID   int64
	ingredientAPIKey  string
	ingredientJSONOut bool
)

var ingredientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an ingredient",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.CreateIngredient(rt.ctx, rt.store, ingredientName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created ingredient %d\n", id)
			return nil
		})
	},
}

var ingredientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List ingredients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			items, err := service.ListIngredients(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tSOURCE\tREF")
			for _, ing := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\t%s\n", ing.ID, ing.Name, ing.Source, ing.SourceRef)
			}
			return nil
		})
	},
}

var ingredientShowCmd = &cobra.Command{
	Use:   "show <id|name>",
	Short: "Show an ingredient with its per-100 g values",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			ing, err := service.ResolveIngredient(rt.ctx, rt.store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ID: %d\nName: %s\nSource: %s %s\n", ing.ID, ing.Name, ing.Source, ing.SourceRef)
			fmt.Fprintln(cmd.OutOrStdout(), "NUTRIENT\tPER_100G\tUNIT")
			for _, v := range ing.Values {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%g\t%s\n", v.NutrientName, v.AmountPer100, v.Unit)
			}
			return nil
		})
	},
}

var ingredientDeleteCmd = &cobra.Command{
	Use:   "delete <id|name>",
	Short: "Delete an ingredient no dish uses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.DeleteIngredient(rt.ctx, rt.store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted ingredient %q\n", args[0])
			return nil
		})
	},
}

var ingredientSetCmd = &cobra.Command{
	Use:   "set <ingredient> <nutrient>",
	Short: "Set the amount of a nutrient per 100 g of an ingredient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			stored, err := service.SetIngredientValue(rt.ctx, rt.store, service.IngredientValueInput{
				Ingredient:   args[0],
				Nutrient:     args[1],
				AmountPer100: ingredientAmount,
				Unit:         ingredientUnit,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s %s = %g per 100 g\n", args[0], args[1], stored)
			return nil
		})
	},
}

var ingredientUnsetCmd = &cobra.Command{
	Use:   "unset <ingredient> <nutrient>",
	Short: "Remove a nutrient value from an ingredient",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.RemoveIngredientValue(rt.ctx, rt.store, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from %s\n", args[1], args[0])
			return nil
		})
	},
}

var ingredientImportCmd = &cobra.Command{
	Use:   "import-usda",
	Short: "Import per-100 g values from USDA FoodData Central",
	Long:  "Fetches a food by FDC id and stores the values of every nutrient already in the catalog, converted into the catalog unit. Set NUTRILOG_USDA_API_KEY or pass --api-key.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingredientFDCID <= 0 {
			return fmt.Errorf("--fdc-id must be > 0")
		}
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			key := rt.cfg.USDA.APIKey
			if strings.TrimSpace(ingredientAPIKey) != "" {
				key = ingredientAPIKey
			}
			client := usda.NewClient(rt.cfg.USDA.BaseURL, key, rt.logger)
			result, err := service.ImportUSDAFood(rt.ctx, rt.store, client, ingredientFDCID, ingredientName)
			if err != nil {
				return err
			}
			if ingredientJSONOut {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			action := "Updated"
			if result.Created {
				action = "Created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s ingredient %d %q from FDC %d\n", action, result.IngredientID, result.IngredientName, result.FDCID)
			for _, v := range result.Imported {
				fmt.Fprintf(cmd.OutOrStdout(), "imported\t%s\t%g %s\n", v.NutrientName, v.AmountPer100, v.Unit)
			}
			for _, s := range result.Skipped {
				fmt.Fprintf(cmd.OutOrStdout(), "skipped\t%s\t%s\n", s.Name, s.Reason)
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(ingredientCmd)
	ingredientCmd.AddCommand(ingredientAddCmd, ingredientListCmd, ingredientShowCmd, ingredientDeleteCmd, ingredientSetCmd, ingredientUnsetCmd, ingredientImportCmd)

	ingredientAddCmd.Flags().StringVar(&ingredientName, "name", "", "Ingredient name")
	_ = ingredientAddCmd.MarkFlagRequired("name")

	ingredientSetCmd.Flags().Float64Var(&ingredientAmount, "amount", 0, "Amount per 100 g")
	ingredientSetCmd.Flags().StringVar(&ingredientUnit, "unit", "", "Unit of --amount (default: the nutrient's catalog unit)")
	_ = ingredientSetCmd.MarkFlagRequired("amount")

	ingredientImportCmd.Flags().Int64Var(&ingredientFDCID, "fdc-id", 0, "FoodData Central id")
	ingredientImportCmd.Flags().StringVar(&ingredientName, "name", "", "Ingredient name (default: the USDA description)")
	ingredientImportCmd.Flags().StringVar(&ingredientAPIKey, "api-key", "", "USDA API key override")
	ingredientImportCmd.Flags().BoolVar(&ingredientJSONOut, "json", false, "Output as JSON")
	_ = ingredientImportCmd.MarkFlagRequired("fdc-id")
}
