package batcher

import "time"

// ViewEvent represents a “view” event on an article.
type ViewEvent struct {
	ArticleID string
	Timestamp time.Time
}

// AggregatedCount maps article IDs to total view counts.
type AggregatedCount map[string]int64

// FlushFunc receives the per-article deltas of one flush. The map is owned
// by the callee.
type FlushFunc func(AggregatedCount)

func aggregate(events []ViewEvent) AggregatedCount {
	agg := make(AggregatedCount)
	for _, e := range events {
		agg[e.ArticleID]++
	}
	return agg
}
