package cache

import (
	"reflect"
	"testing"
	"time"

	"github.com/Glitch-Aswin/DevArticles/models"

	"github.com/alicebob/miniredis/v2"
)

var ranking = []models.ArticleViews{{ArticleID: "b", Views: 5}, {ArticleID: "a", Views: 3}}

func TestBigCacheStoreRoundTrip(t *testing.T) {
	c, err := NewBigCacheStore(time.Minute)
	if err != nil {
		t.Fatalf("failed to initialize cache: %v", err)
	}
	defer c.Close()

	key := TopArticlesKey("node-1", 4, 10)
	if _, err := c.Get(key); err == nil {
		t.Fatal("expected a miss before Set")
	}
	if err := c.Set(key, ranking); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	got, err := c.Get(key)
	if err != nil {
		t.Fatalf("expected a hit, got %v", err)
	}
	if !reflect.DeepEqual(got, ranking) {
		t.Fatalf("Get = %v, want %v", got, ranking)
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisStore(mr.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("failed to initialize Redis: %v", err)
	}
	defer c.Close()

	key := TopArticlesKey("node-1", 7, 10)
	if _, err := c.Get(key); err == nil {
		t.Fatal("expected a miss before Set")
	}
	if err := c.Set(key, ranking); err != nil {
		t.Fatalf("failed to set cache: %v", err)
	}

	got, err := c.Get(key)
	if err != nil {
		t.Fatalf("expected a hit, got %v", err)
	}
	if !reflect.DeepEqual(got, ranking) {
		t.Fatalf("Get = %v, want %v", got, ranking)
	}
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Errorf("TTL = %v, want %v", ttl, time.Minute)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := c.Get(key); err == nil {
		t.Fatal("expected a miss after the TTL elapsed")
	}
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	if _, err := NewRedisStore(addr, "", 0, time.Minute); err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}

func TestTopArticlesKeyDependsOnInstanceVersionAndLimit(t *testing.T) {
	base := TopArticlesKey("node-1", 1, 10)
	if base == TopArticlesKey("node-2", 1, 10) {
		t.Error("keys for different instances collide")
	}
	if base == TopArticlesKey("node-1", 2, 10) {
		t.Error("keys for different versions collide")
	}
	if base == TopArticlesKey("node-1", 1, 5) {
		t.Error("keys for different limits collide")
	}
}
