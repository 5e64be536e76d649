package cmd

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/brogergvhs/mangadl/internal/providers/sites"

	"github.com/spf13/cobra"
)

var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the mangadl version and supported sites",
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "mangadl version: %s (%s, %s/%s)\n", Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "Supported sites: %s\n", strings.Join(sites.Names(), ", "))
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
