package nutrilog

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the nutrilog database",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRuntime(cmd.Context(), func(rt *runtime) error {
			if rt.dbPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutrilog database at %s\n", rt.dbPath)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized nutrilog %s database\n", rt.dialect)
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
