package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/moviehub/movie-api/internal/config"
)

// fakeCounter counts hits in memory and reports a fixed TTL, standing in
// for the Redis-backed window counter.
type fakeCounter struct {
	count int64
	ttlMs int64
	err   error
}

func (f *fakeCounter) Hit(_ context.Context, _ string, _ time.Duration) (int64, int64, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.count++
	return f.count, f.ttlMs, nil
}

func limitedEcho(mw echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	e.GET("/api/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	}, mw)
	return e
}

func hit(e *echo.Echo) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 3, Window: 15 * time.Minute, Prefix: "rl"}
	e := limitedEcho(newRateLimiter(cfg, &fakeCounter{ttlMs: 60_000}))

	for i := 1; i <= cfg.Limit; i++ {
		w := hit(e)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i, w.Code)
		}
		if got := w.Header().Get("X-RateLimit-Limit"); got != "3" {
			t.Errorf("request %d: X-RateLimit-Limit = %q, want 3", i, got)
		}
		if got := w.Header().Get("X-RateLimit-Remaining"); got != strconv.Itoa(3-i) {
			t.Errorf("request %d: X-RateLimit-Remaining = %q, want %d", i, got, 3-i)
		}
	}

	w := hit(e)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("over-limit code = %d, want 429", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v (%s)", err, w.Body.String())
	}
	if body["status"] != "error" || body["message"] != RateLimitMessage {
		t.Errorf("body = %v, want error envelope with the fixed message", body)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60 (ttl rounded up to seconds)", got)
	}
	if got := w.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0 when blocked", got)
	}
}

// A broken counter must not take the API down with it.
func TestRateLimiter_CounterErrorPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	e := limitedEcho(newRateLimiter(cfg, &fakeCounter{err: errors.New("connection refused")}))
	for i := 0; i < 3; i++ {
		if w := hit(e); w.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i, w.Code)
		}
	}
}

// Without a Redis client the limiter must degrade to a pass-through
// rather than reject or panic.
func TestRateLimiter_NilRedisPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute, Prefix: "rl"}
	e := limitedEcho(NewRateLimiter(cfg, nil))
	for i := 0; i < 5; i++ {
		if w := hit(e); w.Code != http.StatusOK {
			t.Fatalf("request %d: code = %d, want 200", i, w.Code)
		}
	}
}

func TestRateLimiter_DisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Limit: 1, Window: time.Minute, Prefix: "rl"}
	e := limitedEcho(NewRateLimiter(cfg, nil))
	if w := hit(e); w.Code != http.StatusOK {
		t.Errorf("code = %d, want 200", w.Code)
	}
}
