package routes

import (
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/okanyedibela/waba-relay/handlers"
)

// RegisterRoutes wires all HTTP and websocket endpoints. API endpoints are
// deliberately unauthenticated; the relay sits behind its deployment's own
// perimeter.
func RegisterRoutes(
	e *echo.Echo,
	healthHandler *handlers.HealthHandler,
	webhookHandler *handlers.WebhookHandler,
	chatHandler *handlers.ChatHandler,
	wsHandler *handlers.WSHandler,
) {
	e.GET("/health", healthHandler.Health)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	e.POST("/webhook", webhookHandler.Receive)
	e.GET("/ws", wsHandler.Connect)

	api := e.Group("/api")

	api.POST("/send", chatHandler.SendMessage)
	api.GET("/chats", chatHandler.GetChats)
	api.POST("/chats", chatHandler.CreateChat)
	api.GET("/messages/:phone", chatHandler.GetMessages)
	api.POST("/chats/:phone/read", chatHandler.MarkRead)
}
