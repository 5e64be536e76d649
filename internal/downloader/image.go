package downloader

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/brogergvhs/mangadl/internal/extract"
	"github.com/brogergvhs/mangadl/internal/util"
)

// Source is what the image fetcher needs from the network layer.
type Source interface {
	FetchText(ctx context.Context, url string) (string, error)
	Open(ctx context.Context, url, referer string) (io.ReadCloser, error)
}

var errNoImage = errors.New("image URL not found on page")

type ImageFetcher struct {
	src    Source
	policy util.RetryPolicy
	log    interface{ Debugf(string, ...any) }
}

func NewImageFetcher(src Source, policy util.RetryPolicy, log interface{ Debugf(string, ...any) }) *ImageFetcher {
	return &ImageFetcher{
		src:    src,
		policy: policy,
		log:    log,
	}
}

// Fetch reads the page document at pageURL, locates the image with pattern
// and stores it at dest. A page without a match is fetched again: sites
// answer hammering with empty or denial pages that pass on their own.
// progress, if set, receives the running byte count of the image.
func (f *ImageFetcher) Fetch(ctx context.Context, pageURL string, pattern extract.Pattern, dest string, progress func(done int64)) (int64, error) {
	var imgURL string

	err := util.Retry(ctx, f.policy, func() error {
		doc, err := f.src.FetchText(ctx, pageURL)
		if err != nil {
			if util.IsGone(err) {
				return util.Permanent(err)
			}
			return err
		}

		raw, ok := extract.First(pattern, doc)
		if !ok || strings.TrimSpace(raw) == "" {
			return errNoImage
		}

		// regex rules capture attributes still HTML-escaped
		imgURL = EncodeImageURL(extract.Resolve(pageURL, html.UnescapeString(strings.TrimSpace(raw))))
		return nil
	}, f.notify(pageURL))
	if err != nil {
		return 0, fmt.Errorf("page %s: %w", pageURL, err)
	}

	f.debugf("Image %s\n", imgURL)

	var written int64
	err = util.Retry(ctx, f.policy, func() error {
		n, err := f.save(ctx, imgURL, pageURL, dest, progress)
		if err != nil {
			if util.IsGone(err) {
				return util.Permanent(err)
			}
			return err
		}

		written = n
		return nil
	}, f.notify(imgURL))
	if err != nil {
		return 0, fmt.Errorf("image %s: %w", imgURL, err)
	}

	return written, nil
}

func (f *ImageFetcher) save(ctx context.Context, imgURL, referer, dest string, progress func(done int64)) (int64, error) {
	body, err := f.src.Open(ctx, imgURL, referer)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = body.Close()
	}()

	out, err := os.Create(dest)
	if err != nil {
		return 0, util.Permanent(err)
	}

	n, err := copyWithProgress(out, body, progress)
	if cerr := out.Close(); cerr != nil && err == nil {
		err = cerr
	}

	return n, err
}

func (f *ImageFetcher) notify(target string) func(error, time.Duration) {
	return func(err error, wait time.Duration) {
		f.debugf("Retrying %s in %s: %v\n", target, wait.Round(time.Millisecond), err)
	}
}

func (f *ImageFetcher) debugf(format string, args ...any) {
	if f.log != nil {
		f.log.Debugf(format, args...)
	}
}

// EncodeImageURL percent-encodes the path of raw while leaving the scheme and
// host alone. Escapes already present are kept rather than encoded twice.
func EncodeImageURL(raw string) string {
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return raw
	}

	host, path, hasPath := strings.Cut(rest, "/")
	if !hasPath {
		return raw
	}

	query := ""
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path, query = path[:i], path[i:]
	}

	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}

	u := url.URL{Path: "/" + path}
	return scheme + "://" + host + u.EscapedPath() + query
}
