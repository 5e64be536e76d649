package cmd

import (
	"fmt"
	"io"

	"github.com/brogergvhs/mangadl/internal/config"
	"github.com/brogergvhs/mangadl/internal/history"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective config and manage config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Loaded config from:\n  %s\n\n", used)
		cfg.Fprint(out)
		printHistoryFor(out, cfg, config.HistoryFile())
		return nil
	},
}

// printHistoryFor reports the last recorded chapter of the configured
// title, which is where an automatic run would resume.
func printHistoryFor(w io.Writer, cfg *config.Config, path string) {
	if cfg.Manga == "" {
		return
	}

	h, err := history.Load(path)
	if err != nil {
		fmt.Fprintf(w, "\nHistory unavailable: %v\n", err)
		return
	}

	if last, ok := h.Last(cfg.Site, cfg.Manga); ok {
		fmt.Fprintf(w, "\nLast downloaded %s chapter: %s\n", cfg.Manga, last)
		return
	}
	fmt.Fprintf(w, "\nNo %s chapters downloaded yet.\n", cfg.Manga)
}

func init() {
	rootCmd.AddCommand(configCmd)
}
