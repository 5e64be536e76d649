package downloader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// ErrFatal marks failures that end the whole run.
var ErrFatal = errors.New("fatal")

// DefaultWorkspaceName is the workspace directory created inside the
// download directory when none is configured.
const DefaultWorkspaceName = "mangadl_tmp"

// Workspace is the single temporary directory holding the raw pages of the
// chapter being downloaded. A lock file next to it keeps other processes
// from using the same directory.
type Workspace struct {
	dir  string
	lock *flock.Flock
	once sync.Once
}

func OpenWorkspace(dir string) (*Workspace, error) {
	dir = filepath.Clean(dir)
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return nil, fmt.Errorf("%w: unable to create workspace parent: %v", ErrFatal, err)
	}

	lock := flock.New(dir + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock workspace: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("workspace %s is in use by another download", dir)
	}

	return &Workspace{dir: dir, lock: lock}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Reset clears the workspace, creating it if needed.
func (w *Workspace) Reset() error {
	if err := os.RemoveAll(w.dir); err != nil {
		return fmt.Errorf("%w: unable to clear temporary directory: %v", ErrFatal, err)
	}
	if err := os.Mkdir(w.dir, 0755); err != nil {
		return fmt.Errorf("%w: unable to create temporary directory: %v", ErrFatal, err)
	}

	return nil
}

// PagePath is where page n of the chapter named prefix is stored.
func (w *Workspace) PagePath(prefix string, page int) string {
	return filepath.Join(w.dir, PageName(prefix, page))
}

// PageName is the raw page file name: prefix plus a zero-padded page number,
// without extension.
func PageName(prefix string, page int) string {
	return fmt.Sprintf("%s_%03d", prefix, page)
}

// Close removes the workspace and releases the lock. Failures are ignored;
// Close is safe to call more than once and from the interrupt handler.
func (w *Workspace) Close() {
	w.once.Do(func() {
		_ = os.RemoveAll(w.dir)
		_ = w.lock.Unlock()
		_ = os.Remove(w.lock.Path())
	})
}
