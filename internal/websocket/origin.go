package websocket

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
)

// DefaultDevOrigin is allowed when no origins are configured
const DefaultDevOrigin = "http://localhost:5173"

// NewSecureUpgrader creates a WebSocket upgrader that only accepts the
// given origins. Same-origin requests (no Origin header) are allowed.
func NewSecureUpgrader(allowedOrigins []string, security *logger.SecurityLogger) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin != "" {
			allowed[origin] = true
		}
	}
	if len(allowed) == 0 {
		allowed[DefaultDevOrigin] = true
	}

	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || allowed[origin] {
				return true
			}

			if security != nil {
				security.InvalidOrigin(r.RemoteAddr, origin)
			}
			return false
		},
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
}
