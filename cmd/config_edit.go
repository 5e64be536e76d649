package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/brogergvhs/mangadl/internal/config"

	"github.com/spf13/cobra"
)

var configEditCmd = &cobra.Command{
	Use:   "edit [label]",
	Short: "Edit the active or the named config in $EDITOR",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			var err error
			if label, err = config.CurrentLabel(); err != nil {
				return fmt.Errorf("no active config, run `mangadl config init` or name one: %w", err)
			}
		}

		path, err := config.ConfigPathByLabel(label)
		if err != nil {
			return err
		}

		if err := runEditor(path); err != nil {
			return fmt.Errorf("failed to open editor: %w", err)
		}

		p, err := config.ReadProfile(label)
		if err != nil {
			return err
		}
		if p.Err != nil {
			return fmt.Errorf("%s no longer parses, fix it with `mangadl config edit %s`: %w", path, label, p.Err)
		}

		fmt.Printf("Saved %s: %s\n", p.Label, p.Summary())
		return nil
	},
}

// runEditor opens path in $EDITOR, which may carry arguments, or nvim.
func runEditor(path string) error {
	argv := strings.Fields(os.Getenv("EDITOR"))
	if len(argv) == 0 {
		argv = []string{"nvim"}
	}

	c := exec.Command(argv[0], append(argv[1:], path)...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	return c.Run()
}

func init() {
	configCmd.AddCommand(configEditCmd)
}
