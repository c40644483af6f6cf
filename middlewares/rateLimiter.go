package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Glitch-Aswin/DevArticles/cache"
)

// APIRateLimitMiddleware allows maxRequest requests per client IP and
// endpoint in a one-minute fixed window kept in Redis. With a nil store or a
// non-positive limit it lets everything through. Redis errors fail open.
func APIRateLimitMiddleware(store *cache.RedisStore, maxRequest int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || maxRequest <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := getIPAddress(r)
			key := "rate:" + ip + ":" + r.Method + ":" + r.URL.Path
			ctx := r.Context()

			count, err := store.Client.Incr(ctx, key).Result()
			if err != nil {
				// In case of error, let the request pass.
				ErrorLogger.Printf("rate limit lookup for %s failed: %v", key, err)
				next.ServeHTTP(w, r)
				return
			}
			// If this is the first request, set an expiry of 1 minute.
			if count == 1 {
				store.Client.Expire(ctx, key, time.Minute)
			}

			remaining := maxRequest - count
			if remaining < 0 {
				remaining = 0
			}
			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(maxRequest, 10))
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			// Retrieve the TTL for this key.
			ttl, err := store.Client.TTL(ctx, key).Result()
			if err == nil && ttl > 0 {
				w.Header().Set("X-RateLimit-Reset", strconv.Itoa(int(ttl.Seconds())))
			} else {
				// Fallback if TTL is not available.
				w.Header().Set("X-RateLimit-Reset", "60")
			}

			if count > maxRequest {
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte("Rate limit exceeded. Try again later."))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
