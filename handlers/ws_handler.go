package handlers

import (
	"github.com/labstack/echo/v4"

	"github.com/okanyedibela/waba-relay/internal/hub"
)

// WSHandler upgrades client connections into the broadcast hub.
type WSHandler struct {
	hub *hub.Hub
}

func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

// Connect godoc
// @Summary Open the push channel
// @Description Upgrades to a websocket delivering broadcast events (new_message, message_sent, status_update, refresh)
// @Tags push
// @Router /ws [get]
func (h *WSHandler) Connect(c echo.Context) error {
	h.hub.HandleWebSocket(c.Response(), c.Request())
	return nil
}
