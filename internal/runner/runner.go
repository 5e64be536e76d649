// Package runner drives one download run from configuration to archives.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/config"
	"github.com/brogergvhs/mangadl/internal/downloader"
	"github.com/brogergvhs/mangadl/internal/history"
	"github.com/brogergvhs/mangadl/internal/providers"
	"github.com/brogergvhs/mangadl/internal/providers/sites"
	"github.com/brogergvhs/mangadl/internal/ui"
	"github.com/brogergvhs/mangadl/internal/util"
)

type Options struct {
	Config *config.Config
	// HistoryPath is the history file; empty disables history.
	HistoryPath string
	DryRun      bool
	Prompt      providers.Prompter
	// Bars selects progress bars over plain page lines.
	Bars bool
	Out  io.Writer
}

type Runner struct {
	opts  Options
	cfg   *config.Config
	log   *ui.Logger
	out   io.Writer
	stats *ui.Stats
}

func New(opts Options) *Runner {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	return &Runner{
		opts:  opts,
		cfg:   opts.Config,
		log:   ui.NewLogger(opts.Config.Debug).WithOutput(out),
		out:   out,
		stats: &ui.Stats{},
	}
}

func (r *Runner) Stats() *ui.Stats {
	return r.stats
}

// Run looks the title up, downloads the selected chapters and prints a
// summary. Chapters that fail are counted and reported once at the end;
// fatal errors stop the run at once.
func (r *Runner) Run(ctx context.Context) error {
	cfg := r.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	_, statErr := os.Stat(cfg.Output)
	if err := os.MkdirAll(cfg.Output, 0755); err != nil {
		return fmt.Errorf("cannot create output folder: %w", err)
	}
	if errors.Is(statErr, os.ErrNotExist) {
		// runs after the workspace is gone
		defer func() {
			if r.stats.TotalChapters.Load() == 0 {
				util.RemoveIfEmpty(cfg.Output)
			}
		}()
	}

	wsDir := cfg.Workspace
	if wsDir == "" {
		wsDir = filepath.Join(cfg.Output, downloader.DefaultWorkspaceName)
	}
	ws, err := downloader.OpenWorkspace(wsDir)
	if err != nil {
		return err
	}
	defer ws.Close()

	stop := util.SetupInterruptHandler(ws.Close)
	defer stop()

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:          cfg.RequestTimeout(),
		UserAgent:        cfg.UserAgent,
		Cookie:           cfg.Cookie,
		CookieFile:       cfg.CookieFile,
		CloudflareBypass: cfg.CloudflareBypass,
		DebugLogger:      r.log,
	})
	if err != nil {
		return err
	}

	policy := util.DefaultRetryPolicy()
	policy.Attempts = cfg.Retries
	fetcher := util.NewFetcher(client, policy, r.log)

	hist, err := r.loadHistory()
	if err != nil {
		return err
	}

	progress := ui.NewProgressManager(r.out, r.opts.Bars && !r.opts.DryRun)
	sess := &providers.Session{
		Docs:      fetcher,
		Images:    downloader.NewImageFetcher(fetcher, policy, r.log),
		Workspace: ws,
		Dest: downloader.Destination{
			Dir:       cfg.Output,
			Format:    cfg.Format,
			Overwrite: cfg.Overwrite,
		},
		Prompt:   r.opts.Prompt,
		Log:      r.log,
		Progress: progress,
		Stats:    r.stats,
		Out:      r.out,
	}

	adapter, err := sites.New(cfg.Site, cfg.Mirror, sess)
	if err != nil {
		return err
	}

	req := providers.Request{
		Title:          cfg.Manga,
		Auto:           cfg.Auto,
		LastDownloaded: cfg.LastDownloaded,
		AllChapters:    cfg.AllChapters,
	}
	if req.Auto && req.LastDownloaded == "" && hist != nil {
		if last, ok := hist.Last(adapter.Name(), cfg.Manga); ok {
			r.log.Debugf("Last downloaded from history: %s\n", last)
			req.LastDownloaded = last
		}
	}

	listing, err := adapter.Enumerate(ctx, req)
	if errors.Is(err, chapters.ErrNoUpdates) {
		r.log.Infof("No new chapters for %s on %s\n", cfg.Manga, adapter.Name())
		return nil
	}
	if err != nil {
		return err
	}

	if r.opts.DryRun {
		r.printSelection(listing)
		return nil
	}

	start := time.Now()
	err = r.download(ctx, adapter, listing, hist)
	progress.Close()

	r.stats.Print(r.out, time.Since(start))
	if err != nil {
		return err
	}

	if n := r.stats.Failed.Load(); n > 0 {
		return fmt.Errorf("%d chapter(s) failed", n)
	}

	fmt.Fprintln(r.out, "\nAll done.")
	return nil
}

func (r *Runner) download(ctx context.Context, adapter providers.Adapter, listing *providers.Listing, hist *history.File) error {
	for _, idx := range listing.Selected {
		ch := listing.Chapters[idx]

		err := adapter.Download(ctx, listing.Title, ch)
		switch {
		case err == nil:
			r.record(hist, adapter.Name(), listing, idx)
		case errors.Is(err, providers.ErrSkipped):
			r.stats.Skipped.Add(1)
			r.log.Infof("%v, skipping to next chapter...\n", err)
		case errors.Is(err, downloader.ErrFatal):
			return err
		case ctx.Err() != nil:
			return ctx.Err()
		default:
			r.stats.Failed.Add(1)
			r.log.Errorf("Chapter %s failed: %v\n", ch.Label, err)
		}
	}

	return nil
}

func (r *Runner) loadHistory() (*history.File, error) {
	if r.opts.HistoryPath == "" {
		return nil, nil
	}

	return history.Load(r.opts.HistoryPath)
}

// record stores chapter idx as the last one downloaded, unless the history
// already points at a later chapter of the listing.
func (r *Runner) record(hist *history.File, site string, listing *providers.Listing, idx int) {
	if hist == nil {
		return
	}

	if last, ok := hist.Last(site, listing.Title); ok {
		for i := idx + 1; i < len(listing.Chapters); i++ {
			if listing.Chapters[i].Label == last {
				return
			}
		}
	}

	hist.Record(site, listing.Title, listing.Chapters[idx].Label, time.Now())
	if err := hist.Save(); err != nil {
		r.log.Warnf("Could not save history: %v\n", err)
	}
}

func (r *Runner) printSelection(listing *providers.Listing) {
	fmt.Fprintf(r.out, "Dry-run: %d chapters selected from %s.\n\n", len(listing.Selected), listing.Title)

	rows := make([][]string, 0, len(listing.Selected))
	for _, idx := range listing.Selected {
		ch := listing.Chapters[idx]
		rows = append(rows, []string{strconv.Itoa(idx + 1), ch.Label, ch.URL})
	}

	fmt.Fprintln(r.out, ui.RenderTable([]string{"#", "Chapter", "URL"}, rows, 0))
}
