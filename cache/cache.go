package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Glitch-Aswin/DevArticles/models"

	"github.com/allegro/bigcache"
)

// TopArticlesCache stores rendered top-N rankings. Any error from Get is a miss.
type TopArticlesCache interface {
	Set(key string, value []models.ArticleViews) error
	Get(key string) ([]models.ArticleViews, error)
	Close() error
}

// TopArticlesKey builds the cache key for a ranking of limit entries taken at
// the given aggregator version. Versions are local to one aggregator, so
// instance must be unique per process when the cache is shared.
func TopArticlesKey(instance string, version uint64, limit int) string {
	return fmt.Sprintf("top-articles:%s:%d:%d", instance, version, limit)
}

// BigCacheStore is an implementation of TopArticlesCache using BigCache.
type BigCacheStore struct {
	cache *bigcache.BigCache
}

// NewBigCacheStore initializes a new BigCacheStore whose entries live for ttl.
func NewBigCacheStore(ttl time.Duration) (*BigCacheStore, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	config := bigcache.Config{
		Shards:           64,
		LifeWindow:       ttl,
		CleanWindow:      ttl,
		MaxEntrySize:     4096,
		HardMaxCacheSize: 64,
		Verbose:          false,
	}
	bc, err := bigcache.NewBigCache(config)
	if err != nil {
		return nil, err
	}
	return &BigCacheStore{
		cache: bc,
	}, nil
}

// Set stores a value in the cache.
func (b *BigCacheStore) Set(key string, value []models.ArticleViews) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.cache.Set(key, data)
}

// Get retrieves a value from the cache.
func (b *BigCacheStore) Get(key string) ([]models.ArticleViews, error) {
	data, err := b.cache.Get(key)
	if err != nil {
		return nil, err
	}
	var value []models.ArticleViews
	if err := json.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

// Close stops the cache (BigCache doesn't need explicit closing, so we return nil).
func (b *BigCacheStore) Close() error {
	return nil
}
