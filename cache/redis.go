package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Glitch-Aswin/DevArticles/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore wraps a Redis client. It caches rankings and is shared by the
// rate limiter and the pub/sub fan-out.
type RedisStore struct {
	Client *redis.Client
	Ctx    context.Context
	ttl    time.Duration
}

// NewRedisStore initializes a new RedisStore instance and pings the server.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,     // e.g., "localhost:6379"
		Password: password, // leave empty if no password
		DB:       db,
	})

	ctx := context.Background()
	// Ping Redis to ensure connectivity.
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}

	return &RedisStore{
		Client: rdb,
		Ctx:    ctx,
		ttl:    ttl,
	}, nil
}

// Set stores a value in Redis for the configured TTL (0 means no expiry).
func (r *RedisStore) Set(key string, value []models.ArticleViews) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.Client.Set(r.Ctx, key, data, r.ttl).Err()
}

// Get retrieves a value from Redis.
func (r *RedisStore) Get(key string) ([]models.ArticleViews, error) {
	data, err := r.Client.Get(r.Ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var result []models.ArticleViews
	err = json.Unmarshal(data, &result)
	return result, err
}

// Close closes the Redis client.
func (r *RedisStore) Close() error {
	return r.Client.Close()
}
