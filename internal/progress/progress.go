// Package progress provides an injectable, concurrency-safe progress sink
// for the builder and lookup pipelines (spec §4.6, §5: "the sink must
// tolerate concurrent increments").
package progress

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// Sink receives progress increments from worker goroutines. Inc may be
// called concurrently from any number of goroutines.
type Sink interface {
	Inc(delta uint64)
	Done()
}

// Noop discards all progress. Tests and library callers that don't want
// terminal output use it.
type Noop struct{}

func (Noop) Inc(uint64) {}
func (Noop) Done()      {}

// Bar renders a periodically-updated text progress bar to an io.Writer,
// replacing the indicatif crate the original Rust implementation used (no
// progress-bar library appears anywhere in the example corpus, so this
// stays on the standard library — see DESIGN.md).
type Bar struct {
	total   uint64
	current atomic.Uint64
	w       io.Writer
	label   string

	stop chan struct{}
	done chan struct{}
}

// NewBar starts a Bar that renders label and a count out of total to w once
// per tick until Done is called.
func NewBar(w io.Writer, label string, total uint64, tick time.Duration) *Bar {
	b := &Bar{
		total: total,
		w:     w,
		label: label,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go b.render(tick)
	return b
}

func (b *Bar) Inc(delta uint64) {
	b.current.Add(delta)
}

func (b *Bar) render(tick time.Duration) {
	defer close(b.done)
	ticker := time.NewTicker(tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			b.print()
		case <-b.stop:
			b.print()
			return
		}
	}
}

func (b *Bar) print() {
	cur := b.current.Load()
	pct := 0.0
	if b.total > 0 {
		pct = float64(cur) / float64(b.total) * 100
	}
	fmt.Fprintf(b.w, "\r%s %d/%d (%.1f%%)", b.label, cur, b.total, pct)
}

// Done stops rendering and writes a final trailing newline.
func (b *Bar) Done() {
	close(b.stop)
	<-b.done
	fmt.Fprintln(b.w)
}
