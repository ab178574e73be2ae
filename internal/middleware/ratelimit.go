package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/moviehub/movie-api/internal/config"
)

// RateLimitMessage is the fixed body returned on 429 responses.
const RateLimitMessage = "too many requests from this IP, please try again after 15 minutes"

// windowCounter increments the request counter for a key and reports the
// running count plus the window's remaining TTL in milliseconds.
type windowCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (count, ttlMs int64, err error)
}

// INCR and EXPIRE must be atomic so two first-hits in the same window
// cannot leave the key without a TTL.
var windowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end
	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end
	return { count, ttl }
`)

// redisCounter backs windowCounter with the atomic Lua script.
type redisCounter struct{ rdb *redis.Client }

func (rc redisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, int64, error) {
	vals, err := windowScript.Run(ctx, rc.rdb, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return 0, 0, err
	}
	arr, ok := vals.([]interface{})
	if !ok || len(arr) != 2 {
		return 0, 0, fmt.Errorf("unexpected script result: %#v", vals)
	}
	return asInt64(arr[0]), asInt64(arr[1]), nil
}

// NewRateLimiter returns a fixed-window per-IP limiter backed by Redis.
// Each window is a single counter keyed by prefix and IP; the first hit
// sets the expiry, and requests beyond the limit get 429 with a
// Retry-After header. When the limiter is disabled, Redis is nil, or a
// counter call fails mid-flight, requests pass through unthrottled.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return newRateLimiter(cfg, redisCounter{rdb: rdb})
}

func newRateLimiter(cfg config.RateLimitConfig, counter windowCounter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":ip:" + ip

			count, ttlMs, err := counter.Hit(c.Request().Context(), key, cfg.Window)
			if err != nil {
				if cfg.Debug {
					c.Logger().Warnf("[ratelimit] counter error for key=%s: %v", key, err)
				}
				return next(c)
			}

			remaining := int64(cfg.Limit) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Limit) {
				secs := int(math.Ceil(float64(ttlMs) / 1000.0))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s count=%d retry=%dms", key, count, ttlMs)
				}
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"status":  "error",
					"message": RateLimitMessage,
				})
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
