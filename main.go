package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/okanyedibela/waba-relay/environments"
	"github.com/okanyedibela/waba-relay/handlers"
	"github.com/okanyedibela/waba-relay/internal/hub"
	"github.com/okanyedibela/waba-relay/internal/repository"
	"github.com/okanyedibela/waba-relay/internal/service"
	"github.com/okanyedibela/waba-relay/pkg/database"
	"github.com/okanyedibela/waba-relay/pkg/logger"
	"github.com/okanyedibela/waba-relay/pkg/redis"
	"github.com/okanyedibela/waba-relay/pkg/validator"
	"github.com/okanyedibela/waba-relay/pkg/waba"
	"github.com/okanyedibela/waba-relay/routes"

	_ "github.com/okanyedibela/waba-relay/docs" // swagger docs
)

// @title WABA Relay API
// @version 1.0
// @description Relays WhatsApp Business messages between 360dialog and connected browser clients

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:3000
// @BasePath /

// @schemes http https
func main() {
	logger.Init()

	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err != nil {
		logger.Debugf("No .env file loaded: %v", err)
	}

	cfg := environments.Load()

	// Hard-fail if required secrets are missing
	if cfg.Provider.APIKey == "" {
		logger.Fatalf("D360_API_KEY is required but not set")
	}

	logger.Infof("Starting WABA Relay...")

	// Conversation store: in-memory by default, MySQL when configured.
	var db *sqlx.DB
	var chatRepo service.ChatRepository

	switch cfg.Store.Driver {
	case environments.StoreDriverMySQL:
		var err error
		db, err = database.NewMySQLDB(cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}

		if err := database.RunMigrations(db); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}

		chatRepo = repository.NewMySQLChatRepository(db)
	case environments.StoreDriverMemory:
		chatRepo = repository.NewMemoryChatRepository()
	default:
		logger.Fatalf("Unknown store driver %q", cfg.Store.Driver)
	}

	// Provider-id cache is optional; the relay degrades without it.
	var redisClient *redis.Client
	redisClient, err := redis.NewRedisClient(cfg.Redis)
	if err != nil {
		logger.Warnf("Redis not available, provider-id caching disabled: %v", err)
		redisClient = nil
	}

	var refCache service.ProviderRefCache
	if redisClient != nil {
		refCache = redisClient
	}

	// Provider client
	wabaClient := waba.NewClient(cfg.Provider)
	logger.Infof("Provider configured: %s", wabaClient.GetBaseURL())

	// Broadcast hub
	broadcastHub := hub.New(cfg.Hub.PingInterval)

	// Service
	chatService := service.NewChatService(chatRepo, wabaClient, broadcastHub, refCache, cfg.Provider)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Auto-start the hub keepalive pinger
	if os.Getenv("HUB_KEEPALIVE") != "false" {
		if err := broadcastHub.Start(ctx); err != nil {
			logger.Warnf("Failed to start hub keepalive: %v", err)
		}
	}

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(db, redisClient, broadcastHub, cfg.Store.Driver)
	webhookHandler := handlers.NewWebhookHandler(chatService)
	chatHandler := handlers.NewChatHandler(chatService)
	wsHandler := handlers.NewWSHandler(broadcastHub)

	e := echo.New()
	e.HideBanner = true
	e.Validator = validator.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
		},
	}))

	// Setup routes
	routes.RegisterRoutes(e, healthHandler, webhookHandler, chatHandler, wsHandler)

	// Start server in goroutine
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Infof("Server starting on http://localhost%s", addr)
		logger.Infof("Swagger docs available at http://localhost%s/swagger/index.html", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Infof("Shutting down gracefully...")

	// Cancel context to signal all goroutines to stop
	cancel()

	if broadcastHub.IsRunning() {
		if err := broadcastHub.Stop(); err != nil {
			logger.Errorf("Error stopping hub keepalive: %v", err)
		}
	}

	// Shutdown HTTP server (with timeout)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Infof("Shutting down HTTP server...")
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	} else {
		logger.Infof("HTTP server stopped successfully")
	}

	if db != nil {
		logger.Infof("Closing database connection...")
		if err := db.Close(); err != nil {
			logger.Errorf("Error closing database: %v", err)
		}
	}

	if redisClient != nil {
		logger.Infof("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			logger.Errorf("Error closing Redis: %v", err)
		}
	}

	logger.Infof("Graceful shutdown completed")
}
