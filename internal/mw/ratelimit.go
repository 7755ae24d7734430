package mw

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"machine-loan-backend/config"
)

// ipLimiters hands out one token bucket per client IP.
type ipLimiters struct {
	mu    sync.Mutex
	per   map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.per[ip]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.per[ip] = lim
	}
	return lim
}

// RateLimiter applies per-IP rate limiting using the configured rate and
// burst.
func RateLimiter(cfg config.ServerConfig) gin.HandlerFunc {
	limiters := &ipLimiters{
		per:   make(map[string]*rate.Limiter),
		limit: rate.Limit(cfg.RateLimitPerSec),
		burst: cfg.RateLimitBurst,
	}
	return func(c *gin.Context) {
		if !limiters.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
