package batcher

import (
	"sync"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
)

// CountBatcher collects ViewEvents and flushes whenever count ≥ threshold.
type CountBatcher struct {
	mu        sync.Mutex
	events    []ViewEvent
	threshold int
	flush     FlushFunc
}

// NewCountBatcher returns a CountBatcher that calls flush when
// len(events) >= threshold.  Pass threshold=0 to disable.
func NewCountBatcher(threshold int, flush FlushFunc) *CountBatcher {
	return &CountBatcher{
		events:    make([]ViewEvent, 0, max(threshold, 0)),
		threshold: threshold,
		flush:     flush,
	}
}

// Enqueue adds an event and triggers flush if the threshold is reached.
func (b *CountBatcher) Enqueue(evt ViewEvent) {
	b.mu.Lock()
	b.events = append(b.events, evt)
	var agg AggregatedCount
	var n int
	if b.threshold > 0 && len(b.events) >= b.threshold {
		agg, n = b.takeLocked()
	}
	b.mu.Unlock()

	b.send(agg, n)
}

// Flush sends whatever is pending, regardless of the threshold.
func (b *CountBatcher) Flush() {
	b.mu.Lock()
	agg, n := b.takeLocked()
	b.mu.Unlock()

	b.send(agg, n)
}

// takeLocked aggregates and clears the pending events. It assumes b.mu is
// held.
func (b *CountBatcher) takeLocked() (AggregatedCount, int) {
	n := len(b.events)
	if n == 0 {
		return nil, 0
	}
	agg := aggregate(b.events)
	b.events = b.events[:0]
	return agg, n
}

// send runs the flush callback without holding b.mu, so producers are not
// stalled by a slow sink.
func (b *CountBatcher) send(agg AggregatedCount, n int) {
	if n == 0 {
		return
	}
	middlewares.DebugLogger.Printf("CountBatcher flush: %d events → %d articles", n, len(agg))
	if b.flush != nil {
		b.flush(agg)
	}
}
