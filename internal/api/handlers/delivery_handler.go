package handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/api/response"
	"github.com/welldanyogia/webrana-contact-relay/internal/repository"
	"github.com/welldanyogia/webrana-contact-relay/internal/validator"
)

// DeliveryHandler exposes the delivery ledger to the site owner
type DeliveryHandler struct {
	deliveryRepo repository.DeliveryRepository
}

// NewDeliveryHandler creates a new DeliveryHandler
func NewDeliveryHandler(deliveryRepo repository.DeliveryRepository) *DeliveryHandler {
	return &DeliveryHandler{deliveryRepo: deliveryRepo}
}

// List handles GET /api/deliveries
func (h *DeliveryHandler) List(c echo.Context) error {
	limit, offset := 0, 0
	if l := c.QueryParam("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}
	if o := c.QueryParam("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil {
			offset = parsed
		}
	}
	limit, offset = validator.ValidatePagination(limit, offset)

	deliveries, total, err := h.deliveryRepo.List(c.Request().Context(), repository.DeliveryFilter{
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		if errors.Is(err, repository.ErrInvalidInput) {
			return response.BadRequest(c, "invalid status filter")
		}
		return response.InternalError(c, "failed to list deliveries")
	}

	return response.Paginated(c, deliveries, total, limit, offset)
}

// Get handles GET /api/deliveries/:id
func (h *DeliveryHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "invalid delivery ID")
	}

	delivery, err := h.deliveryRepo.GetByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return response.NotFound(c, "delivery not found")
		}
		return response.InternalError(c, "failed to get delivery")
	}

	return response.Success(c, delivery)
}

// Stats handles GET /api/deliveries/stats
func (h *DeliveryHandler) Stats(c echo.Context) error {
	counts, err := h.deliveryRepo.CountByStatus(c.Request().Context())
	if err != nil {
		return response.InternalError(c, "failed to count deliveries")
	}
	return response.Success(c, counts)
}
