package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/downloader"
	"github.com/brogergvhs/mangadl/internal/extract"
	"github.com/brogergvhs/mangadl/internal/ui"
)

// Documents retrieves pages as text.
type Documents interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// Session is the state one run shares with the adapter serving it.
type Session struct {
	Docs      Documents
	Images    *downloader.ImageFetcher
	Workspace *downloader.Workspace
	Dest      downloader.Destination
	Prompt    Prompter
	Log       *ui.Logger
	Progress  *ui.ProgressManager
	Stats     *ui.Stats
	Out       io.Writer
}

func (s *Session) out() io.Writer {
	if s.Out == nil {
		return os.Stdout
	}
	return s.Out
}

// Prepare clears the workspace for the chapter named prefix and reports
// whether it is already archived. Skipping touches nothing on the network.
func (s *Session) Prepare(prefix string) (skip bool, err error) {
	if err := s.Workspace.Reset(); err != nil {
		return false, err
	}

	return s.Dest.Claim(prefix)
}

// Choose selects the chapters to download. Automatic mode takes everything
// after the last downloaded chapter; manual mode shows the list and asks
// unless every chapter was requested up front.
func (s *Session) Choose(list []chapters.Chapter, req Request) ([]int, error) {
	if req.Auto {
		last := req.LastDownloaded
		if last != "" && !chapters.Contains(list, last) {
			s.Log.Warnf("Last downloaded chapter %q is not listed; selecting every chapter\n", last)
		}
		return chapters.UpdateSet(list, last)
	}

	fmt.Fprintln(s.out(), ui.ChapterTable(list))

	if req.AllChapters {
		fmt.Fprintln(s.out(), "Downloading all chapters...")
		return chapters.ParseSelection("all", len(list))
	}

	for {
		answer, err := s.Prompt.Ask("Download which chapters? (e.g. 1,3-5 or all)")
		if err != nil {
			return nil, err
		}

		sel, err := chapters.ParseSelection(answer, len(list))
		if err == nil {
			return sel, nil
		}
		if !errors.Is(err, chapters.ErrInvalidSelection) {
			return nil, err
		}

		s.Log.Errorf("%v\n", err)
	}
}

// FetchChapter downloads every page in pages, in order, into the workspace
// and archives them as prefix. label names the chapter in progress output.
func (s *Session) FetchChapter(ctx context.Context, prefix, label string, pages []string, image extract.Pattern) error {
	h := s.Progress.Register(label, len(pages))

	var total int64
	for i, pageURL := range pages {
		page := i + 1
		h.Begin(page)

		n, err := s.Images.Fetch(ctx, pageURL, image, s.Workspace.PagePath(prefix, page), h.Bytes)
		if err != nil {
			h.Abort()
			return fmt.Errorf("%s page %d: %w", label, page, err)
		}

		h.Finish(page, n)
		total += n
	}

	path, err := downloader.Archive(s.Workspace.Dir(), prefix, len(pages), s.Dest.Dir, s.Dest.Format)
	if err != nil {
		h.Abort()
		return err
	}
	h.MarkDone()

	if s.Stats != nil {
		s.Stats.TotalChapters.Add(1)
		s.Stats.TotalImages.Add(int64(len(pages)))
		s.Stats.TotalBytes.Add(total)
	}
	s.Log.Debugf("Archived %s\n", path)

	return nil
}
