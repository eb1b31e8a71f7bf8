package reindex

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker prints reindexing progress, one carriage-return line per
// report so a terminal shows a single updating status line.
type ProgressTracker struct {
	mu          sync.Mutex
	w           io.Writer
	total       int
	done        int
	reportEvery int
	sinceReport int
	begun       time.Time
	running     bool
}

// NewProgressTracker creates a tracker over total products that prints a
// report every reportEvery products.
func NewProgressTracker(w io.Writer, total, reportEvery int) *ProgressTracker {
	return &ProgressTracker{
		w:           w,
		total:       total,
		reportEvery: reportEvery,
	}
}

// Start resets the tracker and begins timing.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.begun = time.Now()
	p.done = 0
	p.sinceReport = 0
	p.running = true
}

// Increment advances progress by delta products, printing a report when the
// accumulated advance crosses the report interval. Calls before Start are
// ignored.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done += delta
	if p.done > p.total {
		p.done = p.total
	}

	p.sinceReport += delta
	if p.sinceReport >= p.reportEvery {
		p.print()
		p.sinceReport = 0
	}
}

// Finish marks the run complete and prints the final line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	p.done = p.total
	p.print()
	fmt.Fprintln(p.w)
}

// Elapsed returns the time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return 0
	}
	return time.Since(p.begun)
}

// print writes one status line. Callers hold the lock.
func (p *ProgressTracker) print() {
	rate := 0.0
	if secs := time.Since(p.begun).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}

	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}

	fmt.Fprintf(p.w, "\rProgress: %d/%d (%.1f%%) - %.1f products/s",
		p.done, p.total, pct, rate)
}
