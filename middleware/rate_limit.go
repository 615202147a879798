package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// writeRecord tracks write requests from one client
type writeRecord struct {
	Count   int
	FirstAt time.Time
}

// RateLimiter caps write-heavy API calls (alert and watchlist mutation)
// per client within a rolling window
type RateLimiter struct {
	mu           sync.Mutex
	records      map[string]*writeRecord
	maxRequests  int
	windowPeriod time.Duration
}

// NewRateLimiter creates a rate limiter.
// maxRequests: requests allowed per client within the window.
// windowPeriod: length of the rolling window.
func NewRateLimiter(maxRequests int, windowPeriod time.Duration) *RateLimiter {
	rl := &RateLimiter{
		records:      make(map[string]*writeRecord),
		maxRequests:  maxRequests,
		windowPeriod: windowPeriod,
	}
	go rl.startCleanup()
	return rl
}

// startCleanup periodically drops expired records
func (rl *RateLimiter) startCleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	for range ticker.C {
		rl.cleanup()
	}
}

func (rl *RateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for key, rec := range rl.records {
		if now.Sub(rec.FirstAt) > rl.windowPeriod {
			delete(rl.records, key)
		}
	}
}

// Allow records a request for the client key and reports whether it is
// within the limit, along with the remaining allowance
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rec, exists := rl.records[key]
	if !exists || now.Sub(rec.FirstAt) > rl.windowPeriod {
		rl.records[key] = &writeRecord{Count: 1, FirstAt: now}
		return true, rl.maxRequests - 1
	}

	if rec.Count >= rl.maxRequests {
		return false, 0
	}
	rec.Count++
	return true, rl.maxRequests - rec.Count
}

// Middleware returns a gin handler enforcing the limit. Authenticated
// requests are keyed by user id, anonymous ones by client IP.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := CurrentUserID(c)
		if key == "" {
			key = c.ClientIP()
		}

		allowed, remaining := rl.Allow(key)
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))

		if !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests, please slow down",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
