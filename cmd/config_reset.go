package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/spf13/cobra"
)

var flagResetKeepTitle bool

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset the active config to default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ActiveConfigPath()
		if err != nil {
			return err
		}

		cfg, err := config.ResetConfig(path, flagResetKeepTitle)
		if err != nil {
			return fmt.Errorf("reset %s: %w", path, err)
		}

		fmt.Printf("Reset active config: %s\n", path)
		cfg.Fprint(os.Stdout)
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVar(&flagResetKeepTitle, "keep-title", false, "keep the site, title and last downloaded chapter")
	configCmd.AddCommand(configResetCmd)
}
