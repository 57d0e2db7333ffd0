package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/response"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
	"golang.org/x/time/rate"
)

// RetryAfterSeconds is advertised on throttled responses
const RetryAfterSeconds = "60"

// MsgTooManyRequests is the body of a throttled response
const MsgTooManyRequests = "Too many requests. Try again later."

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter manages rate limiters per IP address
type IPRateLimiter struct {
	visitors map[string]*visitor
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
	now      func() time.Time
}

// NewIPRateLimiter creates a new IP-based rate limiter
func NewIPRateLimiter(r rate.Limit, b int) *IPRateLimiter {
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rate:     r,
		burst:    b,
		now:      time.Now,
	}
}

// GetLimiter returns the rate limiter for the given IP
func (i *IPRateLimiter) GetLimiter(ip string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	v, exists := i.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.visitors[ip] = v
	}
	v.lastSeen = i.now()

	return v.limiter
}

// CleanupOldEntries drops visitors not seen within maxIdle
func (i *IPRateLimiter) CleanupOldEntries(maxIdle time.Duration) {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-maxIdle)
	for ip, v := range i.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(i.visitors, ip)
		}
	}
}

// Size returns the number of tracked IPs
func (i *IPRateLimiter) Size() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.visitors)
}

// Run prunes idle visitors every interval until ctx is done
func (i *IPRateLimiter) Run(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.CleanupOldEntries(maxIdle)
		}
	}
}

// RateLimiter throttles requests per client IP
func RateLimiter(limiter *IPRateLimiter, security *logger.SecurityLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()

			if !limiter.GetLimiter(ip).Allow() {
				if security != nil {
					security.RateLimitExceeded(ip, c.Path())
				}

				c.Response().Header().Set("Retry-After", RetryAfterSeconds)
				return response.TooManyRequests(c, MsgTooManyRequests)
			}

			return next(c)
		}
	}
}
