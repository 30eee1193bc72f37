package middleware

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/an-furnish/furnish-api/apperrors"
)

type rateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// RateLimitPolicy is a fixed-window per-IP limit for one group of endpoints
type RateLimitPolicy struct {
	name   string
	window time.Duration
	limit  int
}

// NewRateLimitPolicy builds a policy allowing limit requests per window per client IP
func NewRateLimitPolicy(name string, window time.Duration, limit int) RateLimitPolicy {
	return RateLimitPolicy{
		name:   strings.ToLower(strings.TrimSpace(name)),
		window: window,
		limit:  limit,
	}
}

func (p RateLimitPolicy) enabled() bool {
	return p.window > 0 && p.limit > 0
}

func (p RateLimitPolicy) normalizedName() string {
	if p.name == "" {
		return "default"
	}
	return p.name
}

const unknownClientIP = "unknown"

// ipKey groups clients without a resolvable address under one shared counter
func (p RateLimitPolicy) ipKey(ip string) string {
	if ip == "" {
		ip = unknownClientIP
	}
	return fmt.Sprintf("ip:%s:%s", p.normalizedName(), ip)
}

// RateLimit enforces policy with counters kept in store. A nil store disables it.
func RateLimit(policy RateLimitPolicy, store rateLimiterStore) gin.HandlerFunc {
	if !policy.enabled() || store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		ip := c.ClientIP()
		key := policy.ipKey(ip)

		allowed, count, err := allow(c.Request.Context(), store, key, policy.window, int64(policy.limit))
		if err != nil {
			WriteError(c, apperrors.Wrap(apperrors.CodeDependency, err, "rate limiting"))
			return
		}
		if !allowed {
			respondRateLimited(c, policy, ip, count)
			return
		}

		c.Next()
	}
}

func allow(ctx context.Context, store rateLimiterStore, key string, window time.Duration, limit int64) (bool, int64, error) {
	count, err := store.IncrWithTTL(ctx, key, window)
	if err != nil {
		return false, 0, err
	}
	return count <= limit, count, nil
}

func respondRateLimited(c *gin.Context, policy RateLimitPolicy, ip string, count int64) {
	logg := LoggerFrom(c)
	logCtx := logg.WithFields(c.Request.Context(), map[string]any{
		"scope":          "ip",
		"policy":         policy.normalizedName(),
		"ip":             ip,
		"attempts":       count,
		"limit":          policy.limit,
		"window_seconds": int(policy.window.Seconds()),
	})
	logg.Warn(logCtx, "rate_limit.blocked")

	c.Header("Retry-After", fmt.Sprintf("%d", int(policy.window.Seconds())))
	WriteError(c, apperrors.New(apperrors.CodeRateLimit, "Too many requests, please try again later"))
}
