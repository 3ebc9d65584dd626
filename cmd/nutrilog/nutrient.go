package nutrilog

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var nutrientCmd = &cobra.Command{
	Use:   "nutrient",
	Short: "Manage the nutrient catalog",
}

var (
	nutrientName string
	nutrientUnit string
)

var nutrientAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a nutrient (unit: mg, g, mcg, kcal, IU)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.CreateNutrient(rt.ctx, rt.store, service.NutrientInput{Name: nutrientName, Unit: nutrientUnit})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created nutrient %d\n", id)
			return nil
		})
	},
}

var nutrientListCmd = &cobra.Command{
	Use:   "list",
	Short: "List nutrients",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			nutrients, err := service.ListNutrients(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tUNIT")
			for _, n := range nutrients {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%s\n", n.ID, n.Name, n.Unit)
			}
			return nil
		})
	},
}

var nutrientUpdateCmd = &cobra.Command{
	Use:   "update <id|name>",
	Short: "Rename a nutrient or change its unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.UpdateNutrient(rt.ctx, rt.store, args[0], service.NutrientInput{Name: nutrientName, Unit: nutrientUnit}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated nutrient %q\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(nutrientCmd)
	nutrientCmd.AddCommand(nutrientAddCmd, nutrientListCmd, nutrientUpdateCmd)

	nutrientAddCmd.Flags().StringVar(&nutrientName, "name", "", "Nutrient name")
	nutrientAddCmd.Flags().StringVar(&nutrientUnit, "unit", "", "Catalog unit")
	_ = nutrientAddCmd.MarkFlagRequired("name")
	_ = nutrientAddCmd.MarkFlagRequired("unit")

	nutrientUpdateCmd.Flags().StringVar(&nutrientName, "name", "", "New name")
	nutrientUpdateCmd.Flags().StringVar(&nutrientUnit, "unit", "", "New unit (only while no ingredient uses the nutrient)")
}
