package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"merge2048/internal/auth"
	"merge2048/internal/config"
	"merge2048/internal/handlers"
	"merge2048/internal/i18n"
	"merge2048/internal/logging"
	"merge2048/internal/mcp"
	"merge2048/internal/session"
	"merge2048/internal/version"
	"merge2048/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "merge2048: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.New(cfg.Server.LogLevel, cfg.Server.Debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.EnvFile != "" {
		logger.Info("loaded environment file", zap.String("path", cfg.EnvFile))
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	tr, err := i18n.New(cfg.I18n.DefaultLanguage, cfg.I18n.SupportedLanguages)
	if err != nil {
		return fmt.Errorf("failed to load translations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var hub *websocket.Hub
	sessions := session.NewManager(session.Options{
		GridSize:    cfg.Game.GridSize,
		VictoryTile: cfg.Game.VictoryTile,
		MaxSessions: cfg.Game.MaxConcurrentGames,
		IdleTimeout: cfg.SessionTimeout(),
		Seed:        cfg.Game.RandomSeed,
		OnEvict: func(ids []uuid.UUID) {
			hub.CloseSessions(ids)
		},
	}, logger.Named("session"))

	tokens := auth.NewTokenService(cfg.Server.TokenSecret, cfg.TokenLifetime())

	// Initialize WebSocket hub
	hub = websocket.NewHub(sessions, tokens, tr, cfg.Server.CORSOrigins, logger.Named("ws"))
	go hub.Run(ctx)

	// The janitor starts once the hub can receive evictions
	go sessions.Run(ctx)

	router := gin.New()
	router.Use(logging.Middleware(logger.Named("http")), gin.Recovery())

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept-Language"}
	router.Use(cors.New(corsConfig))
	router.Use(i18n.Middleware(tr))

	// Health check endpoint
	if cfg.Server.EnableHealthCheck {
		router.GET("/health", handlers.Health(sessions))
	}

	api := router.Group("/api")
	{
		api.GET("/languages", i18n.Languages(tr))
		handlers.NewSessionHandler(sessions, tokens, tr, logger.Named("api")).RegisterRoutes(api)
	}

	// WebSocket endpoint
	router.GET("/ws", hub.HandleWebSocket)

	if cfg.Server.EnableMCP {
		mcpServer := mcp.NewServer(sessions, version.String(), logger.Named("mcp"))
		router.POST("/mcp", mcpServer.HandleHTTP)
	}

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", cfg.GetServerAddress()),
			zap.String("version", version.String()),
			zap.Int("grid_size", cfg.Game.GridSize),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}
