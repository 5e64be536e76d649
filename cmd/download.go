package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/mangadl/internal/config"
	"github.com/brogergvhs/mangadl/internal/providers"
	"github.com/brogergvhs/mangadl/internal/runner"
	"github.com/brogergvhs/mangadl/internal/ui"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var (
	// selection
	flagSite        string
	flagAuto        bool
	flagAllChapters bool
	flagLast        string

	// output
	flagOutput    string
	flagFormat    string
	flagOverwrite bool
	flagWorkspace string
	flagDryRun    bool
	flagNoHistory bool

	// network
	flagMirror           string
	flagRetries          int
	flagTimeout          int
	flagCookie           string
	flagCookieFile       string
	flagUserAgent        string
	flagCloudflareBypass bool
)

func init() {
	downloadCmd := &cobra.Command{
		Use:   "download [title]",
		Short: "Download chapters of a title. Uses the defaults from the selected config, overwritten by CLI flags",
		Args:  cobra.ArbitraryArgs,
		RunE:  runDownload,
	}

	// selection
	downloadCmd.Flags().StringVar(&flagSite, "site", "", "catalog site: MangaFox, MangaReader or OtakuWorks")
	downloadCmd.Flags().BoolVar(&flagAuto, "auto", false, "download only chapters newer than the last downloaded one, without prompting")
	downloadCmd.Flags().BoolVar(&flagAllChapters, "all", false, "download every chapter without prompting")
	downloadCmd.Flags().StringVar(&flagLast, "last", "", "label of the last downloaded chapter (defaults to the history)")

	// output
	downloadCmd.Flags().StringVar(&flagOutput, "output", "", "download folder for archives")
	downloadCmd.Flags().StringVar(&flagFormat, "format", "", "archive extension, e.g. cbz or zip")
	downloadCmd.Flags().BoolVar(&flagOverwrite, "overwrite", false, "download chapters again even if archived")
	downloadCmd.Flags().StringVar(&flagWorkspace, "workspace", "", "temporary folder for pages (default <output>/mangadl_tmp)")
	downloadCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "show what would be downloaded, don’t download")
	downloadCmd.Flags().BoolVar(&flagNoHistory, "no-history", false, "neither read nor update the download history")

	// network
	downloadCmd.Flags().StringVar(&flagMirror, "mirror", "", "base URL replacing the site's address")
	downloadCmd.Flags().IntVar(&flagRetries, "retries", 0, "attempts per request before giving up")
	downloadCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "per-request timeout in seconds")
	downloadCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string, e.g. \"key=value; other=123\"")
	downloadCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	downloadCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")
	downloadCmd.Flags().BoolVar(&flagCloudflareBypass, "cloudflare-bypass", false, "route requests through the Cloudflare bypass transport")

	rootCmd.AddCommand(downloadCmd)
}

func runDownload(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig:     flagIgnoreConfig,
		Debug:            flagDebug,
		Site:             flagSite,
		Manga:            strings.Join(args, " "),
		Auto:             flagAuto,
		AllChapters:      flagAllChapters,
		Overwrite:        flagOverwrite,
		Output:           flagOutput,
		Format:           flagFormat,
		LastDownloaded:   flagLast,
		Workspace:        flagWorkspace,
		Mirror:           flagMirror,
		Retries:          flagRetries,
		Timeout:          flagTimeout,
		Cookie:           flagCookie,
		CookieFile:       flagCookieFile,
		UserAgent:        flagUserAgent,
		CloudflareBypass: flagCloudflareBypass,
	})
	if err != nil {
		return err
	}

	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}

	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	historyPath := config.HistoryFile()
	if flagNoHistory {
		historyPath = ""
	}

	r := runner.New(runner.Options{
		Config:      cfg,
		HistoryPath: historyPath,
		DryRun:      flagDryRun,
		Prompt:      newPrompter(),
		Bars:        isTerminal(os.Stdout) && !cfg.Debug,
		Out:         os.Stdout,
	})

	return r.Run(context.Background())
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newPrompter uses promptui on a terminal and plain line reads otherwise.
func newPrompter() providers.Prompter {
	if isTerminal(os.Stdin) && isTerminal(os.Stdout) {
		return ui.TTYPrompter{}
	}

	return ui.NewLinePrompter(os.Stdin, os.Stdout)
}
