package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lkhn/wealth-backend/pkg/clientip"
)

const (
	// RateLimitWindow is the fixed window for public write endpoints
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the number of writes allowed per IP per window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
)

// RedisRateLimit applies a fixed-window counter per IP, shared across instances.
// Redis failures let the request through.
func RedisRateLimit(client *redis.Client, max int64, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := RateLimitKeyPrefix + clientip.RateLimitKey(r)

			count, err := client.Incr(ctx, key).Result()
			if err != nil {
				zap.S().Warnw("rate limit check failed", "error", err)
				next.ServeHTTP(w, r)
				return
			}
			if count == 1 {
				// First request in this window
				client.Expire(ctx, key, window)
			}

			w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(max, 10))
			if count > max {
				w.Header().Set("X-RateLimit-Remaining", "0")
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				writeTooMany(w, "Rate limit exceeded. Please try again later.")
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(max-count, 10))
			next.ServeHTTP(w, r)
		})
	}
}
