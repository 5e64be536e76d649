package util

import (
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/net/html/charset"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: HTTP %d", e.URL, e.Code)
}

// Temporary reports whether the server may answer differently later.
func (e *StatusError) Temporary() bool {
	return e.Code == http.StatusTooManyRequests || e.Code >= 500
}

// IsGone reports whether err says the resource no longer exists.
func IsGone(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}

	return se.Code == http.StatusNotFound || se.Code == http.StatusGone
}

// Fetcher retrieves documents and images over HTTP. Documents are returned as
// UTF-8 text with transient failures retried according to the policy.
type Fetcher struct {
	client *http.Client
	policy RetryPolicy
	log    interface{ Debugf(string, ...any) }
}

func NewFetcher(c *http.Client, policy RetryPolicy, log interface{ Debugf(string, ...any) }) *Fetcher {
	return &Fetcher{
		client: c,
		policy: policy,
		log:    log,
	}
}

func (f *Fetcher) FetchText(ctx context.Context, target string) (string, error) {
	var text string

	err := Retry(ctx, f.policy, func() error {
		body, err := f.fetchText(ctx, target)
		if err != nil {
			var se *StatusError
			if errors.As(err, &se) && !se.Temporary() {
				return Permanent(err)
			}
			return err
		}

		text = body
		return nil
	}, func(err error, wait time.Duration) {
		f.debugf("Retrying %s in %s: %v\n", target, wait.Round(time.Millisecond), err)
	})

	return text, err
}

func (f *Fetcher) fetchText(ctx context.Context, target string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return "", err
	}

	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip, deflate, br")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &StatusError{URL: target, Code: resp.StatusCode}
	}

	body, err := decodeBody(resp)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = body.Close()
	}()

	utf8, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return "", fmt.Errorf("charset: %w", err)
	}

	data, err := io.ReadAll(utf8)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// Open starts an image download. The caller closes the returned body.
func (f *Fetcher) Open(ctx context.Context, target, referer string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	if referer != "" {
		req.Header.Set("Referer", referer)
	}
	req.Header.Set("Accept", "image/avif,image/webp,image/apng,image/*,*/*;q=0.8")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, &StatusError{URL: target, Code: resp.StatusCode}
	}

	return resp.Body, nil
}

func (f *Fetcher) debugf(format string, args ...any) {
	if f.log != nil {
		f.log.Debugf(format, args...)
	}
}

// decodedBody reads the decoded response. Closing it closes the decoder
// and then the response body.
type decodedBody struct {
	io.Reader
	closers []io.Closer
}

func (b *decodedBody) Close() error {
	var first error
	for _, c := range b.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}

	return first
}

func decodeBody(resp *http.Response) (io.ReadCloser, error) {
	body := resp.Body

	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
		return &decodedBody{Reader: body, closers: []io.Closer{body}}, nil
	case "gzip":
		zr, err := gzip.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &decodedBody{Reader: zr, closers: []io.Closer{zr, body}}, nil
	case "deflate":
		zr, err := zlib.NewReader(body)
		if err != nil {
			return nil, err
		}
		return &decodedBody{Reader: zr, closers: []io.Closer{zr, body}}, nil
	case "br":
		return &decodedBody{Reader: brotli.NewReader(body), closers: []io.Closer{body}}, nil
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
}
