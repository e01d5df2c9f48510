package middlewares

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/auth"
	"github.com/cyrene-ai/cyrene-server/internal/infrastructure/cache"
)

// Quota is a fixed-window request allowance, e.g. 15 requests per minute.
type Quota struct {
	Count  int64
	Period time.Duration
}

var quotaPeriods = map[string]time.Duration{
	"second": time.Second,
	"minute": time.Minute,
	"hour":   time.Hour,
	"day":    24 * time.Hour,
}

// ParseQuota parses the "count/period" notation, e.g. "15/minute" or "80/second".
func ParseQuota(s string) (Quota, error) {
	countStr, periodStr, ok := strings.Cut(s, "/")
	if !ok {
		return Quota{}, fmt.Errorf("invalid quota %q: expected count/period", s)
	}
	count, err := strconv.ParseInt(strings.TrimSpace(countStr), 10, 64)
	if err != nil || count <= 0 {
		return Quota{}, fmt.Errorf("invalid quota %q: bad count", s)
	}
	period, ok := quotaPeriods[strings.TrimSpace(periodStr)]
	if !ok {
		return Quota{}, fmt.Errorf("invalid quota %q: unknown period %q", s, periodStr)
	}
	return Quota{Count: count, Period: period}, nil
}

// MustQuota parses a quota literal and panics on error. Route-table use only.
func MustQuota(s string) Quota {
	q, err := ParseQuota(s)
	if err != nil {
		panic(err)
	}
	return q
}

// RateLimitMiddleware enforces a fixed-window quota per caller and route. The
// window counters live in the shared counter store so replicas share limits.
// Counter-store failures let the request through; dropping traffic because
// redis is down would be worse than briefly losing the limit.
func RateLimitMiddleware(store cache.CounterStore, quota Quota, logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ratelimit:" + c.FullPath() + ":" + LimiterKey(c)
		count, err := store.IncrWindow(c.Request.Context(), key, quota.Period)
		if err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("rate limit store unavailable, allowing request")
			c.Next()
			return
		}
		if count > quota.Count {
			c.Header("Retry-After", strconv.Itoa(int(quota.Period/time.Second)))
			c.AbortWithStatusJSON(429, gin.H{
				"error":   "rate_limited",
				"message": "Too many requests",
			})
			return
		}
		c.Next()
	}
}

// LimiterKey derives the counter key for a request. Authenticated callers are
// keyed by the user id carried in the bearer token; the token is decoded
// without signature verification because the limiter runs before auth and a
// forged id only moves the forger onto a different counter. Anonymous callers
// fall back to the first X-Forwarded-For hop, then the peer address.
func LimiterKey(c *gin.Context) string {
	if token, ok := BearerToken(c); ok {
		if claims, ok := auth.DecodeUnverified(token); ok {
			return strconv.FormatUint(uint64(claims.UserID), 10)
		}
	}
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(c.Request.RemoteAddr); err == nil {
		return host
	}
	return c.Request.RemoteAddr
}
