package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/response"
	"github.com/welldanyogia/webrana-contact-relay/internal/models"
	"github.com/welldanyogia/webrana-contact-relay/internal/services"
)

// probeParam switches GET /api/contact into the configuration probe
const probeParam = "health"

// allowedContactMethods is advertised on 405 responses
const allowedContactMethods = "GET, POST"

// ContactHandler handles the contact relay endpoint
type ContactHandler struct {
	service services.ContactService
}

// NewContactHandler creates a new ContactHandler
func NewContactHandler(service services.ContactService) *ContactHandler {
	return &ContactHandler{service: service}
}

// Handle dispatches every method on /api/contact
func (h *ContactHandler) Handle(c echo.Context) error {
	switch c.Request().Method {
	case http.MethodPost:
		return h.Submit(c)
	case http.MethodGet:
		if _, ok := c.QueryParams()[probeParam]; ok {
			return h.Probe(c)
		}
	}
	return response.MethodNotAllowed(c, allowedContactMethods)
}

// Submit handles POST /api/contact
func (h *ContactHandler) Submit(c echo.Context) error {
	var req models.SubmissionRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.service.Submit(c.Request().Context(), &req, c.RealIP())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Sent(c, result.ID)
}

// Probe handles GET /api/contact?health
func (h *ContactHandler) Probe(c echo.Context) error {
	probe := h.service.Probe()
	return response.Probe(c, probe.HasKey, probe.To)
}
