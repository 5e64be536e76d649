package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultFormat = ".cbz"
	LegacyFormat  = ".zip"
)

// NormalizeFormat turns "cbz", ".CBZ" or "" into ".cbz".
func NormalizeFormat(format string) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" {
		return DefaultFormat
	}
	if !strings.HasPrefix(f, ".") {
		f = "." + f
	}

	return f
}

// Destination is the download directory and its archive naming.
type Destination struct {
	Dir       string
	Format    string
	Overwrite bool
}

func (d Destination) ArchivePath(prefix string) string {
	return filepath.Join(d.Dir, prefix+NormalizeFormat(d.Format))
}

func (d Destination) candidates(prefix string) []string {
	exts := []string{LegacyFormat, DefaultFormat}
	if f := NormalizeFormat(d.Format); f != LegacyFormat && f != DefaultFormat {
		exts = append(exts, f)
	}

	out := make([]string, len(exts))
	for i, ext := range exts {
		out[i] = filepath.Join(d.Dir, prefix+ext)
	}

	return out
}

// Claim decides whether the chapter named prefix should be downloaded. An
// archive under the legacy or current extension means it is done; unless
// overwriting, skip is true. When overwriting, stale archives are removed.
func (d Destination) Claim(prefix string) (skip bool, err error) {
	var existing []string
	for _, p := range d.candidates(prefix) {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}

	if len(existing) > 0 && !d.Overwrite {
		return true, nil
	}

	for _, p := range existing {
		if err := os.Remove(p); err != nil {
			return false, fmt.Errorf("remove stale archive: %w", err)
		}
	}

	return false, nil
}
