package analytics

import (
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/Glitch-Aswin/DevArticles/models"
)

func TestRecordAndGetViews(t *testing.T) {
	agg := NewViewAggregator()
	for i := 0; i < 3; i++ {
		agg.RecordView("a")
	}
	for i := 0; i < 5; i++ {
		agg.RecordView("b")
	}

	if got := agg.GetViews("a"); got != 3 {
		t.Errorf("expected 3 views for a, got %d", got)
	}
	if got := agg.GetViews("b"); got != 5 {
		t.Errorf("expected 5 views for b, got %d", got)
	}
	if got := agg.GetViews("never-seen"); got != 0 {
		t.Errorf("expected 0 views for unknown article, got %d", got)
	}

	top1 := agg.TopArticles(1)
	want1 := []models.ArticleViews{{ArticleID: "b", Views: 5}}
	if !reflect.DeepEqual(top1, want1) {
		t.Errorf("TopArticles(1) = %v, want %v", top1, want1)
	}

	top5 := agg.TopArticles(5)
	want5 := []models.ArticleViews{{ArticleID: "b", Views: 5}, {ArticleID: "a", Views: 3}}
	if !reflect.DeepEqual(top5, want5) {
		t.Errorf("TopArticles(5) = %v, want %v", top5, want5)
	}
}

func TestTopArticlesTieBreak(t *testing.T) {
	agg := NewViewAggregator()
	for _, id := range []string{"delta", "bravo", "charlie", "alpha", "bravo", "delta"} {
		agg.RecordView(id)
	}

	got := agg.TopArticles(10)
	want := []models.ArticleViews{
		{ArticleID: "bravo", Views: 2},
		{ArticleID: "delta", Views: 2},
		{ArticleID: "alpha", Views: 1},
		{ArticleID: "charlie", Views: 1},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("TopArticles(10) = %v, want %v", got, want)
	}
}

func TestTopArticlesLimits(t *testing.T) {
	agg := NewViewAggregator()
	if got := agg.TopArticles(3); len(got) != 0 || got == nil {
		t.Fatalf("expected empty non-nil slice on empty aggregator, got %#v", got)
	}

	for i := 0; i < 20; i++ {
		agg.RecordView(fmt.Sprintf("article-%02d", i))
	}
	if got := agg.TopArticles(0); len(got) != 0 {
		t.Errorf("TopArticles(0) returned %d entries", len(got))
	}
	if got := agg.TopArticles(-4); len(got) != 0 {
		t.Errorf("TopArticles(-4) returned %d entries", len(got))
	}
	if got := agg.TopArticles(7); len(got) != 7 {
		t.Errorf("TopArticles(7) returned %d entries", len(got))
	}
	if got := agg.TopArticles(100); len(got) != 20 {
		t.Errorf("TopArticles(100) returned %d entries, want 20", len(got))
	}
}

func TestTopArticlesIsSortedAndIdempotent(t *testing.T) {
	agg := NewViewAggregator()
	for i := 0; i < 200; i++ {
		agg.RecordView(fmt.Sprintf("id-%d", (i*7)%13))
	}

	first := agg.TopArticles(13)
	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		if prev.Views < cur.Views || (prev.Views == cur.Views && prev.ArticleID > cur.ArticleID) {
			t.Fatalf("entries %d and %d out of order: %v then %v", i-1, i, prev, cur)
		}
	}

	second := agg.TopArticles(13)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("repeated TopArticles differ:\n%v\n%v", first, second)
	}
}

func TestConcurrentRecordView(t *testing.T) {
	agg := NewViewAggregator()
	const workers = 50
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				agg.RecordView("hot")
				_ = agg.GetViews("hot")
				_ = agg.TopArticles(5)
			}
		}()
	}
	wg.Wait()

	if got := agg.GetViews("hot"); got != workers*perWorker {
		t.Fatalf("expected %d views, got %d", workers*perWorker, got)
	}
}

func TestRecordViewsSkipsInvalidDeltas(t *testing.T) {
	agg := NewViewAggregator()
	agg.RecordViews(map[string]int64{"a": 4, "b": 0, "c": -2, "": 9})

	if got := agg.GetViews("a"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
	if agg.Len() != 1 {
		t.Errorf("expected 1 article, got %d", agg.Len())
	}

	v := agg.Version()
	agg.RecordViews(map[string]int64{"b": 0})
	if agg.Version() != v {
		t.Errorf("version moved on a no-op batch")
	}
}

func TestVersionAndReset(t *testing.T) {
	agg := NewViewAggregator()
	v0 := agg.Version()

	agg.RecordView("a")
	v1 := agg.Version()
	if v1 == v0 {
		t.Fatal("version did not change after RecordView")
	}

	agg.GetViews("a")
	agg.TopArticles(3)
	if agg.Version() != v1 {
		t.Fatal("version changed on a read")
	}

	agg.Reset()
	if agg.Version() == v1 {
		t.Fatal("version did not change after Reset")
	}
	if agg.Len() != 0 || agg.GetViews("a") != 0 {
		t.Fatal("Reset left counts behind")
	}
}
