// Package sites holds the supported catalog sites. Each site is a Rules
// value; a single Adapter runs the shared lookup and download workflow over
// those rules.
package sites

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strconv"
	"strings"

	"github.com/brogergvhs/mangadl/internal/chapters"
	"github.com/brogergvhs/mangadl/internal/extract"
	"github.com/brogergvhs/mangadl/internal/providers"
	"github.com/brogergvhs/mangadl/internal/util"
)

// Rules describe where a site keeps things and how to read them. URL
// builders receive the site's base URL without a trailing slash.
type Rules struct {
	Name    string
	BaseURL string

	// Probe, when set, is a guessed title URL checked for the removal
	// marker before searching.
	Probe func(base, title string) string

	Search  func(base, title string) string
	Results extract.Pattern // locator, name
	// Direct sites answer a search that has no result list with the title
	// page itself.
	Direct   bool
	TitleURL func(base, locator string) string
	Removed  string

	// ChapterList, when set, is a separate document holding the chapters.
	ChapterList func(base, locator string) string
	Chapters    func(title string) extract.Pattern
	Chapter     func(base, locator string, fields []string) chapters.Chapter
	// Reverse turns a newest-first chapter list into ascending order.
	Reverse bool

	PageCount extract.Pattern
	Pages     func(chapterURL, doc string, count int) []string
	Image     extract.Pattern
}

// Adapter implements providers.Adapter for one set of rules.
type Adapter struct {
	rules Rules
	base  string
	sess  *providers.Session
}

func newAdapter(r Rules, mirror string, sess *providers.Session) *Adapter {
	base := r.BaseURL
	if mirror != "" {
		base = mirror
	}

	return &Adapter{
		rules: r,
		base:  strings.TrimRight(base, "/"),
		sess:  sess,
	}
}

func (a *Adapter) Name() string {
	return a.rules.Name
}

func (a *Adapter) Enumerate(ctx context.Context, req providers.Request) (*providers.Listing, error) {
	r := a.rules
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: no title given", providers.ErrTitleNotFound)
	}

	a.sess.Log.Infof("Beginning %s check...\n", r.Name)

	if r.Probe != nil {
		if err := a.probe(ctx, r.Probe(a.base, title)); err != nil {
			return nil, err
		}
	}

	doc, err := a.sess.Docs.FetchText(ctx, r.Search(a.base, title))
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", r.Name, err)
	}

	entries := a.entries(doc)
	locator := ""
	page := doc

	switch {
	case len(entries) > 0:
		e, err := a.sess.SelectFromResults(entries, title, req.Auto)
		if err != nil {
			return nil, err
		}

		title, locator = e.Name, e.Locator
		page, err = a.sess.Docs.FetchText(ctx, r.TitleURL(a.base, locator))
		if err != nil {
			return nil, fmt.Errorf("title page: %w", err)
		}
	case !r.Direct:
		return nil, fmt.Errorf("%w: %q doesn't exist on %s, or cannot be resolved", providers.ErrTitleNotFound, title, r.Name)
	}

	if r.Removed != "" && strings.Contains(page, r.Removed) {
		return nil, fmt.Errorf("%w: %q has been removed from %s", providers.ErrTitleNotFound, title, r.Name)
	}

	if r.ChapterList != nil {
		page, err = a.sess.Docs.FetchText(ctx, r.ChapterList(a.base, locator))
		if err != nil {
			return nil, fmt.Errorf("chapter list: %w", err)
		}
	}

	var list []chapters.Chapter
	for _, m := range r.Chapters(title).FindAll(page) {
		list = append(list, r.Chapter(a.base, locator, m))
	}
	if r.Reverse {
		slices.Reverse(list)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("no chapters listed for %q on %s", title, r.Name)
	}

	selected, err := a.sess.Choose(list, req)
	if err != nil {
		return nil, err
	}

	return &providers.Listing{
		Title:    title,
		Chapters: list,
		Selected: selected,
	}, nil
}

// probe checks the guessed title page. A missing page only means the guess
// was wrong.
func (a *Adapter) probe(ctx context.Context, url string) error {
	doc, err := a.sess.Docs.FetchText(ctx, url)
	if err != nil {
		if util.IsGone(err) {
			return nil
		}
		return fmt.Errorf("probe %s: %w", a.rules.Name, err)
	}

	if a.rules.Removed != "" && strings.Contains(doc, a.rules.Removed) {
		return fmt.Errorf("%w: it has been removed from %s", providers.ErrTitleNotFound, a.rules.Name)
	}

	return nil
}

func (a *Adapter) entries(doc string) []providers.Entry {
	var out []providers.Entry
	for _, m := range a.rules.Results.FindAll(doc) {
		if len(m) < 2 {
			continue
		}

		name := strings.TrimSpace(html.UnescapeString(m[1]))
		if m[0] == "" || name == "" {
			continue
		}
		out = append(out, providers.Entry{Locator: m[0], Name: name})
	}

	return out
}

func (a *Adapter) Download(ctx context.Context, title string, ch chapters.Chapter) error {
	r := a.rules
	prefix := chapters.Prefix(title, ch)

	a.sess.Log.Debugf("Cleaning temporary directory...\n")
	skip, err := a.sess.Prepare(prefix)
	if err != nil {
		return err
	}
	if skip {
		return fmt.Errorf("%w: %s already downloaded", providers.ErrSkipped, ch.Label)
	}

	a.sess.Log.Debugf("%s\n", ch.URL)
	doc, err := a.sess.Docs.FetchText(ctx, ch.URL)
	if err != nil {
		if util.IsGone(err) {
			return fmt.Errorf("%w: %s is no longer available", providers.ErrSkipped, ch.Label)
		}
		return fmt.Errorf("%s: %w", ch.Label, err)
	}

	raw, _ := extract.First(r.PageCount, doc)
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || count < 1 {
		return fmt.Errorf("%w: %s has no pages", providers.ErrSkipped, ch.Label)
	}

	pages := r.Pages(ch.URL, doc, count)
	if len(pages) == 0 {
		return fmt.Errorf("%w: %s has no pages", providers.ErrSkipped, ch.Label)
	}

	err = a.sess.FetchChapter(ctx, prefix, ch.Label, pages, r.Image)
	if util.IsGone(err) {
		return fmt.Errorf("%w: %s lost a page while downloading: %w", providers.ErrSkipped, ch.Label, err)
	}

	return err
}

// numbered builds page URLs from format, which receives the chapter URL
// and the 1-based page number.
func numbered(format string) func(string, string, int) []string {
	return func(chapterURL, _ string, count int) []string {
		base := strings.TrimRight(chapterURL, "/")

		out := make([]string, count)
		for i := range out {
			out[i] = fmt.Sprintf(format, base, i+1)
		}
		return out
	}
}

// listed reads page URLs from the chapter document, at most count of them.
func listed(p extract.Pattern) func(string, string, int) []string {
	return func(chapterURL, doc string, count int) []string {
		var out []string
		for _, m := range p.FindAll(doc) {
			if len(m) == 0 || m[0] == "" {
				continue
			}
			out = append(out, extract.Resolve(chapterURL, m[0]))
			if len(out) == count {
				break
			}
		}
		return out
	}
}

func plusJoined(title string) string {
	return strings.Join(strings.Fields(title), "+")
}
