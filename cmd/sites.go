package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/providers/sites"
	"github.com/brogergvhs/mangadl/internal/ui"

	"github.com/spf13/cobra"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported catalog sites",
	Run: func(cmd *cobra.Command, args []string) {
		var rows [][]string
		for _, name := range sites.Names() {
			rows = append(rows, []string{name, sites.BaseURL(name)})
		}

		fmt.Println(ui.RenderTable([]string{"Site", "Address"}, rows))
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
