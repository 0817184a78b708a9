package api

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/RishiKendai/veritext/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// RequestIDMiddleware propagates or assigns an X-Request-ID
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLoggerMiddleware logs each request and records Prometheus metrics
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)

		metrics.RequestCount.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		metrics.RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(elapsed.Seconds())

		log.Debug().
			Str("requestId", c.GetString(requestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("clientIp", c.ClientIP()).
			Msg("Request handled")
	}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter manages rate limiting per client
type RateLimiter struct {
	limiters map[string]*limiterEntry
	mu       sync.RWMutex
	rps      float64
	burst    int
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rps,
		burst:    max(1, burst),
	}
}

// GetLimiter gets or creates a limiter for a client key
func (rl *RateLimiter) GetLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, exists := rl.limiters[key]; exists {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(rl.rps), rl.burst)
	rl.limiters[key] = &limiterEntry{limiter: limiter, lastSeen: time.Now()}

	return limiter
}

// Cleanup drops limiters idle for longer than maxIdle and returns how many
// were removed.
func (rl *RateLimiter) Cleanup(maxIdle time.Duration) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-maxIdle)
	for key, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, key)
			removed++
		}
	}
	return removed
}

// RunCleanup periodically evicts idle limiters until ctx is cancelled
func (rl *RateLimiter) RunCleanup(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := rl.Cleanup(maxIdle); removed > 0 {
				log.Debug().Int("removed", removed).Msg("Evicted idle rate limiters")
			}
		}
	}
}

func (rl *RateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.limiters)
}

// RateLimitMiddleware creates rate limiting middleware keyed by client IP
func RateLimitMiddleware(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := limiter.GetLimiter(c.ClientIP())

		if !lim.Allow() {
			abortWithError(c, http.StatusTooManyRequests, "Rate limit exceeded", "RATE_LIMIT_EXCEEDED")
			return
		}

		c.Next()
	}
}

// ErrorHandlerMiddleware handles errors and returns standard format
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			log.Error().Err(err).Str("requestId", c.GetString(requestIDKey)).Msg("Request error")

			abortWithError(c, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
		}
	}
}
