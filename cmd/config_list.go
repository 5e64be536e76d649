package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/config"
	"github.com/brogergvhs/mangadl/internal/ui"

	"github.com/spf13/cobra"
)

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available configs",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := config.ListConfigs()
		if err != nil {
			return fmt.Errorf("cannot read configs directory: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No configs yet. Run `mangadl config init` to create one.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, p := range list {
			activeMark := ""
			if p.Active {
				activeMark = "yes"
			}

			site, title := p.Site, p.Manga
			if p.Err != nil {
				site, title = "?", p.Err.Error()
			}
			rows = append(rows, []string{p.Label, site, title, activeMark, p.Path})
		}

		fmt.Println(ui.RenderTable([]string{"Label", "Site", "Title", "Active", "Path"}, rows))
		return nil
	},
}

func init() {
	configCmd.AddCommand(configListCmd)
}
