package server

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"auction-engine/utils"

	"github.com/gin-gonic/gin"
)

var errRateLimited = errors.New("too many requests")

// RateLimiter is a sliding-window in-memory rate limiter keyed by client IP.
// A background loop evicts idle keys; Stop ends it.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	window   time.Duration
	limit    int
	stopChan chan struct{}
}

// NewRateLimiter creates a rate limiter allowing limit requests per window
// and starts its cleanup loop.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		window:   window,
		limit:    limit,
		stopChan: make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request under key fits in the current window, and
// records it if so.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rl.window)

	var valid []time.Time
	for _, at := range rl.requests[key] {
		if at.After(cutoff) {
			valid = append(valid, at)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[key] = valid
		return false
	}

	rl.requests[key] = append(valid, now)
	return true
}

// Stop ends the cleanup loop.
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

// cleanup drops keys whose entire history has aged out of the window.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			cutoff := time.Now().Add(-rl.window * 2)
			for key, requests := range rl.requests {
				var valid []time.Time
				for _, at := range requests {
					if at.After(cutoff) {
						valid = append(valid, at)
					}
				}
				if len(valid) == 0 {
					delete(rl.requests, key)
				} else {
					rl.requests[key] = valid
				}
			}
			rl.mu.Unlock()
		case <-rl.stopChan:
			return
		}
	}
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !rl.Allow(ip) {
			utils.Warn("rate limit exceeded", map[string]any{
				"ip":     ip,
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			})
			utils.JSONReject(c, http.StatusTooManyRequests, "RATE_LIMITED", errRateLimited, "too many requests, try again later")
			c.Abort()
			return
		}
		c.Next()
	}
}
