package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Glitch-Aswin/DevArticles/config"
)

func newTestStore(t *testing.T) *ViewStore {
	t.Helper()
	db, err := config.OpenDB(filepath.Join(t.TempDir(), "views.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	s := NewViewStore(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAddViewsAccumulates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.AddViews(ctx, map[string]int64{"a": 3, "b": 1}); err != nil {
		t.Fatalf("AddViews: %v", err)
	}
	if err := s.AddViews(ctx, map[string]int64{"a": 2, "c": 7, "skip": 0, "": 4}); err != nil {
		t.Fatalf("AddViews: %v", err)
	}

	got, err := s.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	want := map[string]int64{"a": 5, "b": 1, "c": 7}
	if len(got) != len(want) {
		t.Fatalf("LoadAll = %v, want %v", got, want)
	}
	for id, n := range want {
		if got[id] != n {
			t.Errorf("views[%s] = %d, want %d", id, got[id], n)
		}
	}
}

func TestAddViewsEmptyIsNoop(t *testing.T) {
	s := newTestStore(t)
	if err := s.AddViews(context.Background(), nil); err != nil {
		t.Fatalf("AddViews(nil): %v", err)
	}
	got, err := s.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty store, got %v", got)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}
