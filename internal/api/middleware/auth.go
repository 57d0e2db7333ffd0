// Package middleware provides HTTP middleware for the contact relay.
package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/response"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
)

// APIKeyHeader carries the owner API key
const APIKeyHeader = "X-API-Key"

// apiKeyQueryParam lets browser websocket clients, which cannot set
// headers, authenticate.
const apiKeyQueryParam = "api_key"

// APIKeyAuth protects the owner routes. The key is read from X-API-Key,
// an Authorization bearer token or the api_key query parameter. An empty
// apiKey disables the check.
func APIKeyAuth(apiKey string, security *logger.SecurityLogger) echo.MiddlewareFunc {
	if apiKey == "" && security != nil {
		security.GetLogger().Warn("API_KEY not set - owner routes are UNSECURED")
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if apiKey == "" {
				return next(c)
			}

			token := extractAPIKey(c)
			if token == "" {
				if security != nil {
					security.AuthFailure(c.RealIP(), c.Path(), "missing api key")
				}
				return response.Unauthorized(c, "missing API key")
			}

			if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
				if security != nil {
					security.AuthFailure(c.RealIP(), c.Path(), "invalid api key")
				}
				return response.Unauthorized(c, "invalid API key")
			}

			return next(c)
		}
	}
}

func extractAPIKey(c echo.Context) string {
	req := c.Request()
	if key := strings.TrimSpace(req.Header.Get(APIKeyHeader)); key != "" {
		return key
	}
	if auth := req.Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return strings.TrimSpace(c.QueryParam(apiKeyQueryParam))
}
