// Package api wires the relay's HTTP routes.
package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/handlers"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/middleware"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/response"
	"github.com/welldanyogia/webrana-contact-relay/internal/config"
	apperrors "github.com/welldanyogia/webrana-contact-relay/internal/errors"
	"github.com/welldanyogia/webrana-contact-relay/internal/logger"
	"github.com/welldanyogia/webrana-contact-relay/internal/repository"
	"github.com/welldanyogia/webrana-contact-relay/internal/services"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// RouterConfig holds dependencies for the router. DB, Ledger and Hub are
// optional; their routes are only mounted when set.
type RouterConfig struct {
	Config   *config.Config
	Service  services.ContactService
	DB       *gorm.DB
	Ledger   repository.DeliveryRepository
	Hub      *websocket.Hub
	Limiter  *middleware.IPRateLimiter
	Security *logger.SecurityLogger
	Logger   *slog.Logger
}

// NewRouter creates and configures the Echo router with all routes
func NewRouter(cfg *RouterConfig) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler

	// Middleware order: recover, headers, CORS, logging
	e.Use(middleware.Recover())
	e.Use(middleware.SecureHeaders())
	e.Use(middleware.SecureCORS(cfg.Config.Origins(), cfg.Config.AppEnv))
	if cfg.Logger != nil {
		e.Use(middleware.RequestLogger(cfg.Logger))
	}

	limiter := cfg.Limiter
	if limiter == nil {
		limiter = middleware.NewIPRateLimiter(rate.Limit(cfg.Config.RateLimitRequests), cfg.Config.RateLimitBurst)
	}

	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Config)
	contactHandler := handlers.NewContactHandler(cfg.Service)

	// Health routes (no auth required)
	e.GET("/health", healthHandler.Health)
	e.GET("/ready", healthHandler.Ready)

	// Every method lands on the handler so unsupported ones get the JSON 405
	e.Any("/api/contact", contactHandler.Handle,
		middleware.BodyLimit(cfg.Security),
		middleware.RateLimiter(limiter, cfg.Security),
	)

	if cfg.Ledger == nil && cfg.Hub == nil {
		return e
	}

	owner := e.Group("/api/deliveries")
	owner.Use(middleware.APIKeyAuth(cfg.Config.APIKey, cfg.Security))

	if cfg.Ledger != nil {
		deliveryHandler := handlers.NewDeliveryHandler(cfg.Ledger)
		owner.GET("", deliveryHandler.List)
		owner.GET("/stats", deliveryHandler.Stats)
		owner.GET("/:id", deliveryHandler.Get)
	}

	if cfg.Hub != nil {
		upgrader := websocket.NewSecureUpgrader(cfg.Config.Origins(), cfg.Security)
		feedHandler := handlers.NewFeedHandler(cfg.Hub, upgrader, cfg.Logger)
		owner.GET("/ws", feedHandler.Serve)
	}

	return e
}

// errorHandler renders every unhandled error in the relay's JSON shape
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		message := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			message = m
		}
		resp := response.ErrorResponse{Error: message}
		if he.Code >= http.StatusInternalServerError {
			resp.Code = apperrors.CodeInternalError
		}
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(he.Code)
			return
		}
		_ = c.JSON(he.Code, resp)
		return
	}

	_ = response.Error(c, services.NormalizeFailure(err))
}
