package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// RealIP extracts the client's real IP address, preferring Cloudflare's
// CF-Connecting-IP header, then X-Forwarded-For, and falling back to RemoteAddr.
func RealIP(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// First IP in the chain is the original client
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter is a fixed-window limiter. Keys live in a bounded LRU whose
// entries expire with their window, so idle clients need no sweeping.
type RateLimiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows *expirable.LRU[string, *window]
	now     func() time.Time
}

func NewRateLimiter(limit int, period time.Duration, maxKeys int) *RateLimiter {
	if maxKeys <= 0 {
		maxKeys = 1024
	}
	return &RateLimiter{
		limit:   limit,
		period:  period,
		windows: expirable.NewLRU[string, *window](maxKeys, nil, period),
		now:     time.Now,
	}
}

// Allow reports whether key is still under the limit and counts the attempt.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.windows.Get(key)
	if !ok || !now.Before(w.resetAt) {
		rl.windows.Add(key, &window{count: 1, resetAt: now.Add(rl.period)})
		return true
	}
	w.count++
	return w.count <= rl.limit
}

// Tracked returns how many keys currently hold a window.
func (rl *RateLimiter) Tracked() int {
	return rl.windows.Len()
}

// RateLimit rejects requests over the limit with 429, keyed by client IP.
func RateLimit(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(RealIP(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", retryAfter(limiter.period))
				w.WriteHeader(http.StatusTooManyRequests)
				w.Write([]byte(`{"error":"too many requests"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func retryAfter(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
