package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/time/rate"

	"github.com/mrlokans/bookstore/internal/config"
)

const defaultLimiterIdleTTL = 3 * time.Minute

// RateLimiter keeps one token bucket per client IP. Buckets of clients that
// stay idle longer than the configured TTL are evicted.
type RateLimiter struct {
	mu       sync.Mutex
	limiters *ttlcache.Cache[string, *rate.Limiter]
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter and starts its eviction loop. Call Stop to release it.
func NewRateLimiter(cfg config.RateLimit) *RateLimiter {
	ttl := cfg.IdleTTL
	if ttl <= 0 {
		ttl = defaultLimiterIdleTTL
	}

	rl := &RateLimiter{
		limiters: ttlcache.New[string, *rate.Limiter](
			ttlcache.WithTTL[string, *rate.Limiter](ttl),
		),
		limit: rate.Limit(cfg.RPS),
		burst: cfg.Burst,
	}

	go rl.limiters.Start()

	return rl
}

// Allow reports whether the client identified by key may proceed now.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	var limiter *rate.Limiter
	if item := rl.limiters.Get(key); item != nil {
		limiter = item.Value()
	} else {
		limiter = rate.NewLimiter(rl.limit, rl.burst)
		rl.limiters.Set(key, limiter, ttlcache.DefaultTTL)
	}
	rl.mu.Unlock()

	return limiter.Allow()
}

// Clients returns the number of tracked clients.
func (rl *RateLimiter) Clients() int {
	return rl.limiters.Len()
}

// Stop ends the eviction loop.
func (rl *RateLimiter) Stop() {
	rl.limiters.Stop()
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "1")
			abortWithError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
