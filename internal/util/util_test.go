package util

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{Attempts: attempts, Initial: time.Millisecond, Max: 2 * time.Millisecond}
}

func newTestFetcher(t *testing.T, attempts int) *Fetcher {
	t.Helper()

	client, err := NewHTTPClient(HTTPClientOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	return NewFetcher(client, fastPolicy(attempts), nil)
}

func TestHuman(t *testing.T) {
	assert.Equal(t, "512 B", Human(512))
	assert.Equal(t, "1.00 KB", Human(1024))
	assert.Equal(t, "1.50 MB", Human(3<<19))
	assert.Equal(t, "2.00 GB", Human(2<<30))
}

func TestFetchTextSendsBrowserHeaders(t *testing.T) {
	var ua, cookie string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		cookie = r.Header.Get("Cookie")
		_, _ = io.WriteString(w, "<html>ok</html>")
	}))
	defer srv.Close()

	client, err := NewHTTPClient(HTTPClientOptions{Timeout: 5 * time.Second, Cookie: "a=1"})
	require.NoError(t, err)

	text, err := NewFetcher(client, fastPolicy(1), nil).FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", text)
	assert.Equal(t, DefaultUserAgent, ua)
	assert.Equal(t, "a=1", cookie)
}

func TestFetchTextRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, "third time")
	}))
	defer srv.Close()

	text, err := newTestFetcher(t, 5).FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "third time", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchTextGivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 3).FetchText(context.Background(), srv.URL)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchTextDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 5).FetchText(context.Background(), srv.URL)
	require.Error(t, err)
	assert.True(t, IsGone(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchTextDecodesCompressedBodies(t *testing.T) {
	const page = "<html>compressed</html>"

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		switch r.URL.Path {
		case "/gzip":
			zw := gzip.NewWriter(&buf)
			_, _ = io.WriteString(zw, page)
			_ = zw.Close()
			w.Header().Set("Content-Encoding", "gzip")
		case "/br":
			bw := brotli.NewWriter(&buf)
			_, _ = io.WriteString(bw, page)
			_ = bw.Close()
			w.Header().Set("Content-Encoding", "br")
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(buf.Bytes())
	}))
	defer srv.Close()

	f := newTestFetcher(t, 1)
	for _, path := range []string{"/gzip", "/br"} {
		text, err := f.FetchText(context.Background(), srv.URL+path)
		require.NoError(t, err, path)
		assert.Equal(t, page, text, path)
	}
}

type trackedBody struct {
	io.Reader
	closed int
}

func (b *trackedBody) Close() error {
	b.closed++
	return nil
}

func TestDecodeBodyClosesDecoderAndBody(t *testing.T) {
	const page = "<html>chapter list</html>"

	encode := map[string]func(io.Writer) io.WriteCloser{
		"":        func(w io.Writer) io.WriteCloser { return nopWriteCloser{w} },
		"gzip":    func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) },
		"deflate": func(w io.Writer) io.WriteCloser { return zlib.NewWriter(w) },
		"br":      func(w io.Writer) io.WriteCloser { return brotli.NewWriter(w) },
	}

	for enc, newWriter := range encode {
		var buf bytes.Buffer
		zw := newWriter(&buf)
		_, _ = io.WriteString(zw, page)
		require.NoError(t, zw.Close())

		raw := &trackedBody{Reader: &buf}
		resp := &http.Response{Header: http.Header{}, Body: raw}
		resp.Header.Set("Content-Encoding", enc)

		body, err := decodeBody(resp)
		require.NoError(t, err, enc)

		got, err := io.ReadAll(body)
		require.NoError(t, err, enc)
		assert.Equal(t, page, string(got), enc)

		require.NoError(t, body.Close(), enc)
		assert.Equal(t, 1, raw.closed, enc)
	}

	resp := &http.Response{Header: http.Header{"Content-Encoding": {"compress"}}, Body: &trackedBody{Reader: &bytes.Buffer{}}}
	_, err := decodeBody(resp)
	assert.Error(t, err)
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestFetchTextDecodesLegacyCharset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write([]byte{'c', 'a', 'f', 0xe9})
	}))
	defer srv.Close()

	text, err := newTestFetcher(t, 1).FetchText(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "café", text)
}

func TestOpenRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := newTestFetcher(t, 1).Open(context.Background(), srv.URL, "")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.False(t, se.Temporary())
}

func TestRetryStopsOnPermanent(t *testing.T) {
	calls := 0
	boom := errors.New("boom")

	err := Retry(context.Background(), fastPolicy(5), func() error {
		calls++
		return Permanent(boom)
	}, nil)

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
