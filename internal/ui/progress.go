package ui

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/brogergvhs/mangadl/internal/util"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// ProgressManager renders one bar per chapter on a terminal, or a plain
// "<label> | Page i / n" line per page everywhere else.
type ProgressManager struct {
	p   *mpb.Progress
	out io.Writer
}

func NewProgressManager(out io.Writer, bars bool) *ProgressManager {
	pm := &ProgressManager{out: out}
	if bars {
		pm.p = mpb.New(
			mpb.WithWidth(52),
			mpb.WithOutput(out),
			mpb.WithRefreshRate(120*time.Millisecond),
		)
	}

	return pm
}

func (pm *ProgressManager) Close() {
	if pm.p != nil {
		pm.p.Wait()
	}
}

func (pm *ProgressManager) Register(label string, total int) *ProgressHandle {
	h := &ProgressHandle{
		pm:    pm,
		label: label,
		total: int64(total),
		start: time.Now(),
	}
	if pm.p != nil {
		h.initBar()
	}

	return h
}

type ProgressHandle struct {
	pm    *ProgressManager
	label string
	bar   *mpb.Bar

	total int64
	done  int64

	// bytes of finished pages plus the page in flight
	base  int64
	bytes atomic.Int64

	start   time.Time
	elapsed atomic.Int64
	final   atomic.Bool
}

func (h *ProgressHandle) initBar() {
	h.bar = h.pm.p.New(
		h.total,
		mpb.BarStyle().Rbound("]"),

		mpb.PrependDecorators(
			decor.Name(h.label+"  "),
		),

		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncWidth),
			decor.CountersNoUnit(" | %d/%d pages", decor.WCSyncWidth),
			decor.Any(func(_ decor.Statistics) string {
				return " | " + util.Human(h.bytes.Load())
			}),

			decor.Any(func(_ decor.Statistics) string {
				if h.final.Load() {
					return fmt.Sprintf(" | %ds", h.elapsed.Load())
				}

				return fmt.Sprintf(" | %ds", int(time.Since(h.start).Seconds()))
			}),
		),
	)
}

// Begin announces that page (1-based) is being fetched.
func (h *ProgressHandle) Begin(page int) {
	if h.bar == nil {
		fmt.Fprintf(h.pm.out, "%s | Page %d / %d\n", h.label, page, h.total)
	}
}

// Bytes reports the running byte count of the page in flight.
func (h *ProgressHandle) Bytes(n int64) {
	h.bytes.Store(h.base + n)
}

// Finish records page as stored with size bytes.
func (h *ProgressHandle) Finish(page int, size int64) {
	if h.final.Load() {
		return
	}

	h.base += size
	h.bytes.Store(h.base)
	h.done = int64(page)
	if h.bar != nil {
		h.bar.SetCurrent(h.done)
	}
}

func (h *ProgressHandle) MarkDone() {
	if h.final.Swap(true) {
		return
	}

	h.elapsed.Store(int64(time.Since(h.start).Seconds()))
	if h.bar != nil {
		h.bar.SetCurrent(h.total)
		h.bar.SetTotal(h.total, true)
	}
}

// Abort stops the bar of a failed chapter so Close does not wait on it.
func (h *ProgressHandle) Abort() {
	if h.final.Swap(true) {
		return
	}

	if h.bar != nil {
		h.bar.Abort(false)
	}
}
