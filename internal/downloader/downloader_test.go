package downloader

import (
	"archive/zip"
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brogergvhs/mangadl/internal/extract"
	"github.com/brogergvhs/mangadl/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func writePages(t *testing.T, dir, prefix string, pages ...[]byte) {
	t.Helper()
	for i, p := range pages {
		require.NoError(t, os.WriteFile(filepath.Join(dir, PageName(prefix, i+1)), p, 0644))
	}
}

func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out
}

func TestPageName(t *testing.T) {
	assert.Equal(t, "naruto_ch_1_007", PageName("naruto_ch_1", 7))
	assert.Equal(t, "naruto_ch_1_123", PageName("naruto_ch_1", 123))
}

func TestArchivePacksPagesWithDetectedExtensions(t *testing.T) {
	ws := t.TempDir()
	dest := t.TempDir()
	pic := testPNG(t)
	writePages(t, ws, "naruto_ch_1", pic, pic)

	path, err := Archive(ws, "naruto_ch_1", 2, dest, "cbz")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dest, "naruto_ch_1.cbz"), path)

	zr, err := zip.OpenReader(path)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"naruto_ch_1_001.png", "naruto_ch_1_002.png"}, names)

	_, err = os.Stat(filepath.Join(ws, "naruto_ch_1.cbz"))
	assert.True(t, os.IsNotExist(err), "archive must be moved out of the workspace")
}

func TestArchiveRejectsNonImagePage(t *testing.T) {
	ws := t.TempDir()
	dest := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dest, "other.cbz"), []byte("keep"), 0644))

	pic := testPNG(t)
	writePages(t, ws, "naruto_ch_2", pic, []byte("<html><body>403 Forbidden</body></html>"), pic)

	_, err := Archive(ws, "naruto_ch_2", 3, dest, ".cbz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFatal)

	assert.Equal(t, []string{"other.cbz"}, dirNames(t, dest))
	_, err = os.Stat(filepath.Join(ws, "naruto_ch_2.cbz"))
	assert.True(t, os.IsNotExist(err))
}

func TestArchiveMissingPageIsFatal(t *testing.T) {
	ws := t.TempDir()
	dest := t.TempDir()
	writePages(t, ws, "p", testPNG(t))

	_, err := Archive(ws, "p", 2, dest, ".zip")
	assert.ErrorIs(t, err, ErrFatal)
	assert.Empty(t, dirNames(t, dest))
}

func TestWorkspaceResetLeavesEmptyDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultWorkspaceName)

	ws, err := OpenWorkspace(dir)
	require.NoError(t, err)
	defer ws.Close()

	require.NoError(t, ws.Reset())
	require.NoError(t, os.WriteFile(ws.PagePath("x", 1), []byte("old"), 0644))

	require.NoError(t, ws.Reset())
	assert.Empty(t, dirNames(t, ws.Dir()))
}

func TestWorkspaceIsExclusive(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultWorkspaceName)

	ws, err := OpenWorkspace(dir)
	require.NoError(t, err)

	_, err = OpenWorkspace(dir)
	assert.Error(t, err)

	ws.Close()
	ws.Close()

	again, err := OpenWorkspace(dir)
	require.NoError(t, err)
	again.Close()
}

func TestWorkspaceCloseRemovesDirectory(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, DefaultWorkspaceName)

	ws, err := OpenWorkspace(dir)
	require.NoError(t, err)
	require.NoError(t, ws.Reset())
	require.NoError(t, os.WriteFile(ws.PagePath("x", 1), []byte("page"), 0644))

	ws.Close()
	assert.Empty(t, dirNames(t, parent))
}

func TestDestinationClaim(t *testing.T) {
	dir := t.TempDir()
	d := Destination{Dir: dir, Format: "cbz"}

	skip, err := d.Claim("naruto_ch_1")
	require.NoError(t, err)
	assert.False(t, skip)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "naruto_ch_1.zip"), []byte("legacy"), 0644))
	skip, err = d.Claim("naruto_ch_1")
	require.NoError(t, err)
	assert.True(t, skip, "a legacy archive counts as downloaded")

	d.Overwrite = true
	skip, err = d.Claim("naruto_ch_1")
	require.NoError(t, err)
	assert.False(t, skip)
	assert.Empty(t, dirNames(t, dir), "overwrite removes stale archives")
}

func TestNormalizeFormat(t *testing.T) {
	assert.Equal(t, ".cbz", NormalizeFormat(""))
	assert.Equal(t, ".cbz", NormalizeFormat("CBZ"))
	assert.Equal(t, ".zip", NormalizeFormat(".zip"))
}

func TestEncodeImageURL(t *testing.T) {
	tests := map[string]string{
		"http://cdn.example.com/images/My Page 01.jpg": "http://cdn.example.com/images/My%20Page%2001.jpg",
		"https://cdn.example.com/a%20b/c.png":          "https://cdn.example.com/a%20b/c.png",
		"http://cdn.example.com/x y.jpg?v=2":           "http://cdn.example.com/x%20y.jpg?v=2",
		"http://cdn.example.com":                       "http://cdn.example.com",
		"not a url":                                    "not a url",
	}

	for in, want := range tests {
		assert.Equal(t, want, EncodeImageURL(in), in)
	}
}

func newSource(t *testing.T) *util.Fetcher {
	t.Helper()

	client, err := util.NewHTTPClient(util.HTTPClientOptions{Timeout: 5 * time.Second})
	require.NoError(t, err)

	return util.NewFetcher(client, fastPolicy(), nil)
}

func fastPolicy() util.RetryPolicy {
	return util.RetryPolicy{Attempts: 4, Initial: time.Millisecond, Max: 2 * time.Millisecond}
}

func TestImageFetcherRetriesUntilPatternMatches(t *testing.T) {
	pic := testPNG(t)
	var pageHits, imageHits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/read/1.html":
			if pageHits.Add(1) < 3 {
				_, _ = io.WriteString(w, "<html>server busy</html>")
				return
			}
			_, _ = io.WriteString(w, `<div><img id="img" src="/store/page one.png"></div>`)
		case "/store/page one.png":
			imageHits.Add(1)
			assert.Equal(t, "/store/page%20one.png", r.URL.EscapedPath())
			_, _ = w.Write(pic)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "naruto_ch_1_001")
	var seen int64
	f := NewImageFetcher(newSource(t), fastPolicy(), nil)

	n, err := f.Fetch(context.Background(), srv.URL+"/read/1.html", extract.Regex(`img id="img" src="([^"]*)"`), dest, func(done int64) {
		seen = done
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(pic)), n)
	assert.Equal(t, n, seen)
	assert.Equal(t, int32(3), pageHits.Load())
	assert.Equal(t, int32(1), imageHits.Load())

	got, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, pic, got)

	ext, err := DetectImage(dest)
	require.NoError(t, err)
	assert.Equal(t, "png", ext)
}

func TestImageFetcherGivesUpWhenPatternNeverMatches(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = io.WriteString(w, "<html>nothing here</html>")
	}))
	defer srv.Close()

	f := NewImageFetcher(newSource(t), fastPolicy(), nil)
	_, err := f.Fetch(context.Background(), srv.URL, extract.Regex(`<img src="([^"]*)"`), filepath.Join(t.TempDir(), "p"), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, errNoImage)
	assert.Equal(t, int32(4), hits.Load())
}

func TestImageFetcherRetriesFailedDownloads(t *testing.T) {
	pic := testPNG(t)
	var imageHits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page" {
			_, _ = io.WriteString(w, `<img src="/img.png">`)
			return
		}
		if imageHits.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write(pic)
	}))
	defer srv.Close()

	dest := filepath.Join(t.TempDir(), "p_001")
	f := NewImageFetcher(newSource(t), fastPolicy(), nil)

	_, err := f.Fetch(context.Background(), srv.URL+"/page", extract.Regex(`<img src="([^"]*)"`), dest, nil)
	require.NoError(t, err)
	assert.Equal(t, int32(2), imageHits.Load())
}

func TestImageFetcherUnescapesCapturedURL(t *testing.T) {
	pic := testPNG(t)
	var query string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/page" {
			_, _ = io.WriteString(w, `<img id="img" src="/store/p.png?token=a1&amp;w=800">`)
			return
		}
		query = r.URL.RawQuery
		_, _ = w.Write(pic)
	}))
	defer srv.Close()

	f := NewImageFetcher(newSource(t), fastPolicy(), nil)
	_, err := f.Fetch(context.Background(), srv.URL+"/page", extract.Regex(`img id="img" src="([^"]*)"`), filepath.Join(t.TempDir(), "p_001"), nil)
	require.NoError(t, err)
	assert.Equal(t, "token=a1&w=800", query)
}
