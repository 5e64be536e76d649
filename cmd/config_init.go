package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/spf13/cobra"
)

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the Default config and make it active",
	RunE: func(cmd *cobra.Command, args []string) error {
		if p, err := config.ReadProfile(config.DefaultLabel); err == nil {
			fmt.Printf("The %s config already exists at:\n  %s\n", p.Label, p.Path)
			fmt.Println("Use `mangadl config reset` to recreate it.")
			return nil
		}

		fmt.Println("Configuration root:")
		fmt.Println("  ", config.ConfigRoot())
		fmt.Println("Download history will be kept in:")
		fmt.Println("  ", config.HistoryFile())
		fmt.Println()

		fmt.Println("Default configuration:")
		config.DefaultConfig().Print()
		fmt.Println()

		if !newPrompter().Confirm(fmt.Sprintf("Create the %s config", config.DefaultLabel)) {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := config.InitDefaultConfig()
		if err != nil {
			return fmt.Errorf("failed to write config file: %w", err)
		}

		fmt.Println("Config created at:", path)
		fmt.Printf("This config is now active (label: %s).\n", config.DefaultLabel)
		fmt.Println("Set `manga` in it, or pass a title to `mangadl download`.")

		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
