package cmd

import (
	"fmt"
	"time"

	"github.com/brogergvhs/mangadl/internal/config"
	"github.com/brogergvhs/mangadl/internal/history"
	"github.com/brogergvhs/mangadl/internal/providers/sites"
	"github.com/brogergvhs/mangadl/internal/ui"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or edit the last downloaded chapter of each title",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the download history",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := history.Load(config.HistoryFile())
		if err != nil {
			return err
		}

		entries := h.All()
		if len(entries) == 0 {
			fmt.Println("No downloads recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{e.Site, e.Title, e.LastChapter, e.UpdatedAt.Local().Format("2006-01-02 15:04")})
		}

		fmt.Println(ui.RenderTable([]string{"Site", "Title", "Last chapter", "Updated"}, rows))
		return nil
	},
}

var historySetCmd = &cobra.Command{
	Use:   "set <site> <title> <chapter_label>",
	Short: "Record the last downloaded chapter of a title",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		site, err := siteName(args[0])
		if err != nil {
			return err
		}

		h, err := history.Load(config.HistoryFile())
		if err != nil {
			return err
		}

		h.Record(site, args[1], args[2], time.Now())
		if err := h.Save(); err != nil {
			return err
		}

		fmt.Printf("%s on %s: last chapter %q\n", args[1], site, args[2])
		return nil
	},
}

var historyRemoveCmd = &cobra.Command{
	Use:   "remove <site> <title>",
	Short: "Forget a title so the next automatic run fetches every chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := history.Load(config.HistoryFile())
		if err != nil {
			return err
		}

		if !h.Remove(args[0], args[1]) {
			return fmt.Errorf("no history for %q on %s", args[1], args[0])
		}
		if err := h.Save(); err != nil {
			return err
		}

		fmt.Printf("Removed %q on %s from history\n", args[1], args[0])
		return nil
	},
}

// siteName returns the display name of a supported site.
func siteName(name string) (string, error) {
	a, err := sites.New(name, "", nil)
	if err != nil {
		return "", err
	}

	return a.Name(), nil
}

func init() {
	historyCmd.AddCommand(historyListCmd, historySetCmd, historyRemoveCmd)
	rootCmd.AddCommand(historyCmd)
}
