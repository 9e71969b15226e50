package middleware

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/lkhn/wealth-backend/pkg/clientip"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets security-related response headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(headerXContentTypeOptions, "nosniff")
		w.Header().Set(headerXFrameOptions, "DENY")
		w.Header().Set(headerContentSecurityPolicy, "default-src 'self'")
		w.Header().Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

const (
	globalRateLimitRPS   = 1
	globalRateLimitBurst = 10
	limiterTTL           = 30 * time.Minute
	limiterCleanup       = 5 * time.Minute
)

// IPLimiter hands out one token bucket per client IP. Idle buckets expire from the registry.
type IPLimiter struct {
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
}

func NewIPLimiter(limit rate.Limit, burst int) *IPLimiter {
	return &IPLimiter{
		limit:    limit,
		burst:    burst,
		limiters: cache.New(limiterTTL, limiterCleanup),
	}
}

// Allow consumes a token for ip and refreshes its expiry.
func (l *IPLimiter) Allow(ip string) bool {
	var lim *rate.Limiter
	if v, ok := l.limiters.Get(ip); ok {
		lim = v.(*rate.Limiter)
	} else {
		lim = rate.NewLimiter(l.limit, l.burst)
		// Add fails if another request created the bucket first; use theirs.
		if err := l.limiters.Add(ip, lim, cache.DefaultExpiration); err != nil {
			if v, ok := l.limiters.Get(ip); ok {
				lim = v.(*rate.Limiter)
			}
		}
	}
	l.limiters.Set(ip, lim, cache.DefaultExpiration)
	return lim.Allow()
}

// Middleware returns 429 when the caller's bucket is empty.
func (l *IPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientip.RateLimitKey(r)) {
			writeTooMany(w, "Too many requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ProductionSecurity returns middlewares for production: SecurityHeaders → per-IP rate limit.
func ProductionSecurity() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		NewIPLimiter(globalRateLimitRPS, globalRateLimitBurst).Middleware,
	}
}

func writeTooMany(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
