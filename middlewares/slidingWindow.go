package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Glitch-Aswin/DevArticles/cache"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindowMiddleware allows maxRequests per client IP and endpoint in
// any window of windowDuration, tracked in a Redis sorted set. With a nil
// store or a non-positive limit it lets everything through.
func SlidingWindowMiddleware(store *cache.RedisStore, maxRequests int64, windowDuration time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || maxRequests <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r)
			key := "rate:sliding:" + ip + ":" + r.Method + ":" + r.URL.Path
			ctx := r.Context()

			now := time.Now().UnixMilli()
			windowStart := now - windowDuration.Milliseconds()

			// Members must be unique so concurrent requests in the same
			// millisecond are all counted.
			pipe := store.Client.TxPipeline()
			pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
			pipe.ZAdd(ctx, key, redis.Z{Score: float64(now), Member: uuid.NewString()})
			card := pipe.ZCard(ctx, key)
			pipe.Expire(ctx, key, windowDuration*2)
			if _, err := pipe.Exec(ctx); err != nil {
				ErrorLogger.Printf("sliding window lookup for %s failed: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			count := card.Val()

			remaining := maxRequests - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(maxRequests, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(windowDuration.Seconds())))

			if count > maxRequests {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("Rate limit exceeded. Try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitMiddleware picks the limiter named by strategy ("fixed" or
// "sliding") with a one-minute window.
func RateLimitMiddleware(store *cache.RedisStore, strategy string, perMinute int64) func(http.Handler) http.Handler {
	if strategy == "sliding" {
		return SlidingWindowMiddleware(store, perMinute, time.Minute)
	}
	return APIRateLimitMiddleware(store, perMinute)
}
