package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okanyedibela/waba-relay/internal/service"
	"github.com/okanyedibela/waba-relay/pkg/logger"
	"github.com/okanyedibela/waba-relay/pkg/waba"
)

// WebhookHandler receives inbound message and status callbacks from the
// provider.
type WebhookHandler struct {
	service *service.ChatService
}

func NewWebhookHandler(service *service.ChatService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// Receive godoc
// @Summary Provider webhook
// @Description Ingests inbound messages and status callbacks from 360dialog. Always acknowledges with 200 so the provider never retries based on our processing outcome.
// @Tags webhook
// @Accept json
// @Produce json
// @Param payload body waba.WebhookPayload true "Provider webhook payload"
// @Success 200 {object} map[string]string
// @Router /webhook [post]
func (h *WebhookHandler) Receive(c echo.Context) error {
	ack := map[string]string{"status": "ok"}

	var payload waba.WebhookPayload
	if err := c.Bind(&payload); err != nil {
		// Unparseable payloads are acknowledged and dropped; surfacing an
		// error here would only trigger provider-side retry storms.
		logger.Debugf("Ignoring unparseable webhook payload: %v", err)
		return c.JSON(http.StatusOK, ack)
	}

	h.service.HandleWebhook(c.Request().Context(), &payload)

	return c.JSON(http.StatusOK, ack)
}
