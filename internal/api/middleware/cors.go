package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// DefaultDevOrigin is the local frontend dev server
const DefaultDevOrigin = "http://localhost:5173"

// SecureCORS returns CORS middleware for the portfolio frontend.
// Wildcard origins are dropped in production.
func SecureCORS(origins []string, appEnv string) echo.MiddlewareFunc {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if origin == "" {
			continue
		}
		if appEnv == "production" && origin == "*" {
			continue
		}
		allowed = append(allowed, origin)
	}
	if len(allowed) == 0 {
		allowed = []string{DefaultDevOrigin}
	}

	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: allowed,
		AllowMethods: []string{echo.GET, echo.POST, echo.OPTIONS},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, APIKeyHeader},
		MaxAge:       300,
	})
}
