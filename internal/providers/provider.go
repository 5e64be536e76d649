package providers

import (
	"context"
	"errors"

	"github.com/brogergvhs/mangadl/internal/chapters"
)

var (
	// ErrTitleNotFound is returned when a title has no acceptable search
	// match or the site marks it as removed.
	ErrTitleNotFound = errors.New("title not found")

	// ErrSkipped marks a chapter that was not downloaded but should not fail
	// the run: it is already archived or its content has vanished.
	ErrSkipped = errors.New("chapter skipped")
)

// Request describes which title to look up and how chapters get selected.
type Request struct {
	Title          string
	Auto           bool
	LastDownloaded string
	// AllChapters selects every chapter in manual mode without asking.
	AllChapters bool
}

// Listing is the result of enumerating a title.
type Listing struct {
	// Title is the canonical name reported by the site.
	Title    string
	Chapters []chapters.Chapter
	// Selected holds 0-based indices into Chapters, in download order.
	Selected []int
}

// Adapter is implemented by every supported catalog site.
type Adapter interface {
	Name() string
	Enumerate(ctx context.Context, req Request) (*Listing, error)
	// Download fetches and archives one chapter of title. It returns nil,
	// an error wrapping ErrSkipped, or a failure.
	Download(ctx context.Context, title string, ch chapters.Chapter) error
}

// Prompter asks the user questions. Anything but an explicit yes makes
// Confirm return false.
type Prompter interface {
	Confirm(question string) bool
	Ask(question string) (string, error)
}
