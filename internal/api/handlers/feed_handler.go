package handlers

import (
	"log/slog"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/welldanyogia/webrana-contact-relay/internal/websocket"
)

// FeedHandler upgrades owner dashboards to the live delivery feed
type FeedHandler struct {
	hub      *websocket.Hub
	upgrader gorillaws.Upgrader
	logger   *slog.Logger
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(hub *websocket.Hub, upgrader gorillaws.Upgrader, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{hub: hub, upgrader: upgrader, logger: logger}
}

// Serve handles GET /api/deliveries/ws
func (h *FeedHandler) Serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Debug("websocket upgrade failed", slog.Any("error", err))
		return nil
	}

	client := websocket.NewClient(h.hub, conn, h.logger)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	return nil
}
