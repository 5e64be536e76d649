package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/spf13/cobra"
)

var (
	flagIgnoreConfig bool
	flagDebug        bool
	flagHome         string
)

var rootCmd = &cobra.Command{
	Use:           "mangadl",
	Short:         "Download manga chapters from MangaFox, MangaReader and OtakuWorks into CBZ archives",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagHome == "" {
			return nil
		}

		// profiles and history both live under the config root
		return os.Setenv(config.HomeEnv, flagHome)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagIgnoreConfig, "ignore-config", false, "ignore config and use only CLI flags")
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "config and history directory (overrides $"+config.HomeEnv+")")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
