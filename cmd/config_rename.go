package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a profile, keeping it active if it was",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := config.RenameConfig(args[0], args[1])
		if err != nil {
			return err
		}

		fmt.Printf("Renamed config %q to %q (%s)\n", args[0], p.Label, p.Summary())
		if p.Active {
			fmt.Println("It is still the active config.")
		}

		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
