package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
)

// MaxBodySize bounds a submission body
const MaxBodySize = "64K"

// RequestLogger returns a middleware that logs HTTP requests. Bodies and
// query strings are never logged.
func RequestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the response so the status is final
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			logger.Info("request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", res.Status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			)

			return nil
		}
	}
}

// Recover returns a middleware that recovers from panics
func Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

// BodyLimit rejects request bodies larger than MaxBodySize and records
// each rejection as a security event
func BodyLimit(security *logger.SecurityLogger) echo.MiddlewareFunc {
	limit := middleware.BodyLimit(MaxBodySize)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		limited := limit(next)
		return func(c echo.Context) error {
			err := limited(c)

			var he *echo.HTTPError
			if security != nil && errors.As(err, &he) && he.Code == http.StatusRequestEntityTooLarge {
				security.SecurityEvent("oversized_submission", c.RealIP(), map[string]string{
					"path":  c.Path(),
					"limit": MaxBodySize,
				})
			}
			return err
		}
	}
}
