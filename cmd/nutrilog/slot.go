package nutrilog

import (
	"fmt"

	"github.com/saadjs/nutrilog/internal/service"
	"github.com/spf13/cobra"
)

var slotCmd = &cobra.Command{
	Use:   "slot",
	Short: "Manage meal slots",
}

var slotAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a meal slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			id, err := service.AddMealSlot(rt.ctx, rt.store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added meal slot %d\n", id)
			return nil
		})
	},
}

var slotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List meal slots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			slots, err := service.ListMealSlots(rt.ctx, rt.store)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ID\tNAME\tDEFAULT")
			for _, s := range slots {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\t%t\n", s.ID, s.Name, s.IsDefault)
			}
			return nil
		})
	},
}

var slotDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an unused custom meal slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if err := service.DeleteMealSlot(rt.ctx, rt.store, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted meal slot %q\n", args[0])
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(slotCmd)
	slotCmd.AddCommand(slotAddCmd, slotListCmd, slotDeleteCmd)
}
