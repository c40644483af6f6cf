package batcher

import (
	"sync"
	"time"

	"github.com/Glitch-Aswin/DevArticles/middlewares"
)

// TimeBatcher collects ViewEvents and flushes every flushInterval.
type TimeBatcher struct {
	mu            sync.Mutex
	events        []ViewEvent
	flushInterval time.Duration
	flush         FlushFunc
	stopCh        chan struct{}
	done          chan struct{}
	stopOnce      sync.Once
}

// NewTimeBatcher returns a TimeBatcher that calls flush on the given interval.
// Pass flushInterval=0 to disable time‑based flushing.
func NewTimeBatcher(flushInterval time.Duration, flush FlushFunc) *TimeBatcher {
	return &TimeBatcher{
		events:        []ViewEvent{},
		flushInterval: flushInterval,
		flush:         flush,
		stopCh:        make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the background ticker.  Call Stop() to end it.
func (b *TimeBatcher) Start() {
	if b.flushInterval <= 0 {
		close(b.done)
		return
	}
	ticker := time.NewTicker(b.flushInterval)
	go func() {
		defer close(b.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				b.Flush()
			case <-b.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the background ticker and flushes pending events.
// Start must have been called first.
func (b *TimeBatcher) Stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		<-b.done
		b.Flush()
	})
}

// Enqueue adds an event; it will be included in the next flush.
func (b *TimeBatcher) Enqueue(evt ViewEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
}

// Flush sends pending events now.
func (b *TimeBatcher) Flush() {
	b.mu.Lock()
	if len(b.events) == 0 {
		b.mu.Unlock()
		return
	}
	agg := aggregate(b.events)
	n := len(b.events)
	b.events = b.events[:0]
	b.mu.Unlock()

	middlewares.DebugLogger.Printf("TimeBatcher flush: %d events → %d articles", n, len(agg))
	if b.flush != nil {
		b.flush(agg)
	}
}
