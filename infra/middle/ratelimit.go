package middle

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mstgnz/storepay/infra/config"
	"github.com/mstgnz/storepay/infra/response"
)

// RateLimiter is a fixed-window per-IP limiter for the checkout endpoint
type RateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

// NewRateLimiter reads RATE_LIMIT_PER_MINUTE (default 60)
func NewRateLimiter() *RateLimiter {
	rate := config.GetIntEnv("RATE_LIMIT_PER_MINUTE", 60)
	if rate <= 0 {
		rate = 60
	}
	return NewRateLimiterWith(rate, time.Minute)
}

// NewRateLimiterWith creates a limiter allowing rate requests per window
func NewRateLimiterWith(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
	}
}

// Allow checks if the request is allowed
func (rl *RateLimiter) Allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[clientIP]

	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[clientIP] = &visitor{count: 1, lastReset: now}
		return true
	}

	if v.count >= rl.rate {
		return false
	}

	v.count++
	return true
}

// Cleanup drops visitors idle for two windows; run it from a ticker
func (rl *RateLimiter) Cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastReset) > rl.window*2 {
			delete(rl.visitors, ip)
		}
	}
}

// RateLimitMiddleware creates a rate limiting middleware
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(GetClientIP(r)) {
				w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
				response.Error(w, http.StatusTooManyRequests, "Rate limit exceeded", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
