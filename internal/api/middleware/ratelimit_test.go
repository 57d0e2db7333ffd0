package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
	"go.uber.org/goleak"
	"golang.org/x/time/rate"
)

func limitedServer(rps float64, burst int, security *logger.SecurityLogger) *echo.Echo {
	e := echo.New()
	e.Use(RateLimiter(NewIPRateLimiter(rate.Limit(rps), burst), security))
	e.POST("/api/contact", func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	})
	return e
}

func post(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/contact", nil)
	if ip != "" {
		req.Header.Set("X-Real-IP", ip)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	e := limitedServer(10, 20, nil)

	assert.Equal(t, http.StatusOK, post(e, "").Code)
}

func TestRateLimiter_ExceedsLimit(t *testing.T) {
	var buf bytes.Buffer
	security := logger.NewSecurityLoggerWithHandler(slog.NewJSONHandler(&buf, nil))
	e := limitedServer(1, 1, security)

	assert.Equal(t, http.StatusOK, post(e, "").Code)

	rec := post(e, "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, RetryAfterSeconds, rec.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"ok":false,"error":"Too many requests. Try again later.","code":"RATE_LIMITED"}`, rec.Body.String())
	assert.Contains(t, buf.String(), "rate_limit_exceeded")
}

func TestRateLimiter_PerIPIsolation(t *testing.T) {
	e := limitedServer(1, 1, nil)

	assert.Equal(t, http.StatusOK, post(e, "203.0.113.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, post(e, "203.0.113.1").Code)
	assert.Equal(t, http.StatusOK, post(e, "203.0.113.2").Code)
}

func TestIPRateLimiter_SameLimiterPerIP(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)

	assert.Same(t, limiter.GetLimiter("a"), limiter.GetLimiter("a"))
	assert.NotSame(t, limiter.GetLimiter("a"), limiter.GetLimiter("b"))
}

func TestIPRateLimiter_CleanupDropsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	limiter.GetLimiter("old")
	now = now.Add(20 * time.Minute)
	limiter.GetLimiter("fresh")

	limiter.CleanupOldEntries(10 * time.Minute)

	assert.Equal(t, 1, limiter.Size())
	_, ok := limiter.visitors["fresh"]
	assert.True(t, ok)
}

func TestIPRateLimiter_RunStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	limiter := NewIPRateLimiter(rate.Limit(1), 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		limiter.Run(ctx, time.Millisecond, time.Hour)
		close(done)
	}()

	cancel()
	<-done
}
