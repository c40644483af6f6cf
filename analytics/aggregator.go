// Package analytics keeps per-article view counts in memory and ranks them.
package analytics

import (
	"cmp"
	"slices"
	"sync"

	"github.com/Glitch-Aswin/DevArticles/models"
)

// ViewAggregator records view events keyed by article id and answers point
// lookups and top-N queries. It is safe for concurrent use.
type ViewAggregator struct {
	mu      sync.RWMutex
	views   map[string]int64
	version uint64
}

// NewViewAggregator returns an empty aggregator.
func NewViewAggregator() *ViewAggregator {
	return &ViewAggregator{
		views: make(map[string]int64),
	}
}

// RecordView increments the count for articleID by one.
func (a *ViewAggregator) RecordView(articleID string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.views[articleID]++
	a.version++
}

// RecordViews applies several deltas under one lock. Empty ids and
// non-positive deltas are skipped.
func (a *ViewAggregator) RecordViews(deltas map[string]int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	changed := false
	for id, n := range deltas {
		if id == "" || n <= 0 {
			continue
		}
		a.views[id] += n
		changed = true
	}
	if changed {
		a.version++
	}
}

// GetViews returns the current count for articleID, or 0 if it was never seen.
func (a *ViewAggregator) GetViews(articleID string) int64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.views[articleID]
}

// TopArticles returns up to limit articles ordered by views descending, ties
// broken by article id ascending. A limit below 1 yields an empty slice.
func (a *ViewAggregator) TopArticles(limit int) []models.ArticleViews {
	if limit <= 0 {
		return []models.ArticleViews{}
	}

	a.mu.RLock()
	entries := make([]models.ArticleViews, 0, len(a.views))
	for id, n := range a.views {
		entries = append(entries, models.ArticleViews{ArticleID: id, Views: n})
	}
	a.mu.RUnlock()

	slices.SortFunc(entries, compareRank)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

func compareRank(x, y models.ArticleViews) int {
	if c := cmp.Compare(y.Views, x.Views); c != 0 {
		return c
	}
	return cmp.Compare(x.ArticleID, y.ArticleID)
}

// Reset drops every count.
func (a *ViewAggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.views = make(map[string]int64)
	a.version++
}

// Len reports the number of distinct articles seen.
func (a *ViewAggregator) Len() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.views)
}

// Version increases on every mutation. Two equal versions mean no view was
// recorded in between.
func (a *ViewAggregator) Version() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}
