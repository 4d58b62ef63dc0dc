package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/okanyedibela/waba-relay/internal/hub"
	"github.com/okanyedibela/waba-relay/pkg/redis"
)

// HealthHandler handles health checks.
type HealthHandler struct {
	db           *sqlx.DB
	redis        *redis.Client
	hub          *hub.Hub
	storeDriver  string
	checkTimeout time.Duration
}

func NewHealthHandler(db *sqlx.DB, redisClient *redis.Client, h *hub.Hub, storeDriver string) *HealthHandler {
	return &HealthHandler{
		db:           db,
		redis:        redisClient,
		hub:          h,
		storeDriver:  storeDriver,
		checkTimeout: 2 * time.Second,
	}
}

// Health returns overall status plus component statuses.
// @Summary Health check
// @Description Returns store, cache and websocket hub status
// @Tags health
// @Produce json
// @Success 200 {object} map[string]any
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), h.checkTimeout)
	defer cancel()

	overallStatus := "ok"

	storeStatus := "up"
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			storeStatus = "down"
			overallStatus = "down"
		}
	}

	redisStatus := "disabled"
	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			redisStatus = "down"
			overallStatus = "degraded"
		} else {
			redisStatus = "up"
		}
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":    overallStatus,
		"timestamp": time.Now().Format(time.RFC3339),
		"components": map[string]any{
			"store": map[string]any{
				"driver": h.storeDriver,
				"status": storeStatus,
			},
			"redis": map[string]any{
				"status": redisStatus,
			},
			"hub": map[string]any{
				"clients":   h.hub.ClientCount(),
				"keepalive": h.hub.IsRunning(),
			},
		},
	})
}
