package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/okanyedibela/waba-relay/internal/service"
	"github.com/okanyedibela/waba-relay/pkg/response"
	"github.com/okanyedibela/waba-relay/pkg/validator"
	"github.com/okanyedibela/waba-relay/pkg/waba"
)

type ChatHandler struct {
	service *service.ChatService
}

func NewChatHandler(service *service.ChatService) *ChatHandler {
	return &ChatHandler{service: service}
}

type SendMessageRequest struct {
	Phone string `json:"phone" validate:"required"`
	Text  string `json:"text" validate:"required,max=4096"`
}

type CreateChatRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone" validate:"required"`
}

// SendMessage godoc
// @Summary Send a text message
// @Description Forwards a text message to the provider and records it on success
// @Tags chats
// @Accept json
// @Produce json
// @Param message body SendMessageRequest true "Message to send"
// @Success 200 {object} response.SuccessResponse
// @Failure 400 {object} response.ErrorResponse
// @Failure 502 {object} response.ErrorResponse
// @Router /api/send [post]
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	if _, err := h.service.Send(c.Request().Context(), req.Phone, req.Text); err != nil {
		var provErr *waba.ProviderError
		if errors.As(err, &provErr) {
			return response.BadGateway(c, provErr)
		}
		return response.InternalServerError(c, err)
	}

	return response.Ok(c, nil)
}

// GetChats godoc
// @Summary List conversations
// @Description Returns the current conversation summaries in first-contact order
// @Tags chats
// @Produce json
// @Success 200 {array} domain.Chat
// @Router /api/chats [get]
func (h *ChatHandler) GetChats(c echo.Context) error {
	chats, err := h.service.ListChats(c.Request().Context())
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return c.JSON(http.StatusOK, chats)
}

// GetMessages godoc
// @Summary Get message history
// @Description Returns the messages for a phone; an empty array when the phone is unknown
// @Tags chats
// @Produce json
// @Param phone path string true "Counter-party phone number"
// @Success 200 {array} domain.Message
// @Router /api/messages/{phone} [get]
func (h *ChatHandler) GetMessages(c echo.Context) error {
	messages, err := h.service.Messages(c.Request().Context(), c.Param("phone"))
	if err != nil {
		return response.InternalServerError(c, err)
	}

	return c.JSON(http.StatusOK, messages)
}

// CreateChat godoc
// @Summary Create a conversation
// @Description Idempotent: returns the existing conversation when the phone is already known
// @Tags chats
// @Accept json
// @Produce json
// @Param chat body CreateChatRequest true "Chat to create"
// @Success 200 {object} domain.Chat
// @Failure 400 {object} response.ErrorResponse
// @Router /api/chats [post]
func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return response.BadRequest(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return validator.HandleValidationError(c, err)
	}

	chat, err := h.service.CreateChat(c.Request().Context(), req.Name, req.Phone)
	if err != nil {
		return response.BadRequest(c, err)
	}

	return c.JSON(http.StatusOK, chat)
}

// MarkRead godoc
// @Summary Mark a conversation read
// @Description Resets the unread counter; unknown phones are a no-op
// @Tags chats
// @Produce json
// @Param phone path string true "Counter-party phone number"
// @Success 200 {object} map[string]bool
// @Router /api/chats/{phone}/read [post]
func (h *ChatHandler) MarkRead(c echo.Context) error {
	if _, err := h.service.MarkChatRead(c.Request().Context(), c.Param("phone")); err != nil {
		return response.InternalServerError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}
