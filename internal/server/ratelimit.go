package server

import (
	"fmt"
	"net/http"
	"sync"

	"auction-marketplace/internal/auth"
	"auction-marketplace/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// maxLimiters bounds the per-key limiter table; it is reset when exceeded
const maxLimiters = 10000

// RateLimiter throttles requests per authenticated account, or per client IP
// for anonymous callers
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewRateLimiter allows perSecond requests per key with bursts of burst
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(perSecond),
		burst:    burst,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		if len(rl.limiters) >= maxLimiters {
			rl.limiters = make(map[string]*rate.Limiter)
		}
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Allow reports whether one more request for key fits in its budget
func (rl *RateLimiter) Allow(key string) bool {
	return rl.limiter(key).Allow()
}

// Middleware aborts with 429 once the caller runs out of budget
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if acct, ok := auth.CurrentAccount(c); ok {
			key = acct.ID
		}

		if !rl.Allow(key) {
			utils.Warn("rate limit exceeded", map[string]any{
				"key":    key,
				"path":   c.Request.URL.Path,
				"method": c.Request.Method,
			})
			utils.JSONError(c, http.StatusTooManyRequests,
				fmt.Errorf("more than %v requests per second", float64(rl.rate)), "too many requests")
			c.Abort()
			return
		}
		c.Next()
	}
}
