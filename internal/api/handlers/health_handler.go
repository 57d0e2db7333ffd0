package handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/config"
	"gorm.io/gorm"
)

// HealthHandler handles health check HTTP requests. db is nil when the
// delivery ledger is disabled.
type HealthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db *gorm.DB, cfg *config.Config) *HealthHandler {
	return &HealthHandler{db: db, cfg: cfg}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
}

// Health handles GET /health. A missing provider setting is reported but
// only an unreachable database makes the service unhealthy.
func (h *HealthHandler) Health(c echo.Context) error {
	services := make(map[string]string)
	status := "healthy"

	if len(h.cfg.MissingDelivery()) == 0 {
		services["provider"] = h.cfg.EmailProvider
	} else {
		services["provider"] = "unconfigured"
	}

	if h.db != nil {
		if err := h.ping(); err != nil {
			services["database"] = "unhealthy"
			status = "unhealthy"
		} else {
			services["database"] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	return c.JSON(statusCode, HealthResponse{
		Status:   status,
		Services: services,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c echo.Context) error {
	if missing := h.cfg.MissingDelivery(); len(missing) > 0 {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "missing " + strings.Join(missing, "/"),
		})
	}

	if h.db != nil {
		if err := h.ping(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "database ping failed",
			})
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (h *HealthHandler) ping() error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
