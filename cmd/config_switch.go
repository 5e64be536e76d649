package cmd

import (
	"fmt"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Switch to a different configuration profile",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string

		if len(args) == 1 {
			label = args[0]
		} else {
			list, err := config.ListConfigs()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				return fmt.Errorf("no configs available, run `mangadl config init` first")
			}

			items := make([]string, len(list))
			cursor := 0
			for i, p := range list {
				items[i] = profileItem(p)
				if p.Active {
					cursor = i
				}
			}

			prompt := promptui.Select{
				Label:     "Select config",
				Items:     items,
				CursorPos: cursor,
				Size:      10,
			}

			idx, _, err := prompt.Run()
			if err != nil {
				return fmt.Errorf("selection cancelled")
			}

			label = list[idx].Label
		}

		p, err := config.SwitchConfig(label)
		if err != nil {
			return err
		}

		fmt.Printf("Switched to %s: %s\n", p.Label, p.Summary())
		return nil
	},
}

// profileItem is the picker line of a profile, e.g.
// "weekly  Naruto on MangaFox  (active)".
func profileItem(p config.Profile) string {
	item := p.Label + "  " + p.Summary()
	if p.Active {
		item += "  (active)"
	}

	return item
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
