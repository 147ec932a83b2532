package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiterConfig configures per-IP rate limiting.
type RateLimiterConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// ConfigFromEnv reads RATE_LIMIT_RPS / RATE_LIMIT_BURST with sane defaults.
func ConfigFromEnv() RateLimiterConfig {
	cfg := RateLimiterConfig{RequestsPerSecond: 20, Burst: 40}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil && parsed > 0 {
			cfg.RequestsPerSecond = parsed
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			cfg.Burst = parsed
		}
	}
	return cfg
}

type rateLimiterMap struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	seen     map[string]time.Time
	config   RateLimiterConfig
}

func newRateLimiterMap(config RateLimiterConfig) *rateLimiterMap {
	rl := &rateLimiterMap{
		limiters: make(map[string]*rate.Limiter),
		seen:     make(map[string]time.Time),
		config:   config,
	}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiterMap) getLimiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	limiter, ok := rl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(rl.config.RequestsPerSecond), rl.config.Burst)
		rl.limiters[ip] = limiter
	}
	rl.seen[ip] = time.Now()
	return limiter
}

// cleanup drops limiters idle for over an hour.
func (rl *rateLimiterMap) cleanup() {
	for range time.Tick(10 * time.Minute) {
		rl.mu.Lock()
		cutoff := time.Now().Add(-time.Hour)
		for ip, last := range rl.seen {
			if last.Before(cutoff) {
				delete(rl.limiters, ip)
				delete(rl.seen, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// RateLimiter rejects clients exceeding the per-IP budget with 429.
func RateLimiter(config RateLimiterConfig) gin.HandlerFunc {
	rl := newRateLimiterMap(config)
	return func(c *gin.Context) {
		if !rl.getLimiter(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
