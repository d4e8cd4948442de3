package middleware

import (
	"net/http"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/cache"
	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/cleberrangel/quickquote-api/internal/model"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdle is how long a client's bucket survives without traffic
const limiterIdle = 10 * time.Minute

// RateLimiter keeps one token bucket per client IP
type RateLimiter struct {
	limiters *cache.Cache
	limit    rate.Limit
	burst    int
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. rps <= 0 disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limiters: cache.NewCache(limiterIdle, time.Minute),
		limit:    rate.Limit(rps),
		burst:    burst,
	}
}

// Allow consumes one token for key.
func (r *RateLimiter) Allow(key string) bool {
	if r.limit <= 0 {
		return true
	}
	l := r.limiters.GetOrSet(key, func() interface{} {
		return rate.NewLimiter(r.limit, r.burst)
	}).(*rate.Limiter)
	return l.Allow()
}

// Stop releases the janitor goroutine.
func (r *RateLimiter) Stop() {
	r.limiters.Stop()
}

// Middleware rejects requests over the limit with 429
func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if r.Allow(ip) {
			c.Next()
			return
		}

		metrics.Get().IncrementRateLimited()
		logger.FromGin(c).Warn().Str("client_ip", ip).Msg("Limite de requisições excedido")

		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, model.ErrorResponse{
			Success: false,
			Error:   "Muitas requisições, tente novamente em instantes",
		})
	}
}
