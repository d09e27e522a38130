package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/screenwhisper/server/adapters/stt"
	"github.com/screenwhisper/server/adapters/translate"
	"github.com/screenwhisper/server/domain/repositories"
	"github.com/screenwhisper/server/internal/api"
	"github.com/screenwhisper/server/internal/config"
	"github.com/screenwhisper/server/internal/websocket"
	"github.com/screenwhisper/server/usecase"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg := config.Load(logger)

	// Initialize adapters
	recognizer, err := buildRecognizer(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize recognizer", zap.Error(err))
	}
	translator, err := buildTranslator(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize translator", zap.Error(err))
	}

	registry := usecase.NewRegistry(recognizer, translator, logger)

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize WebSocket hub
	hub := websocket.NewHub(registry, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, hub, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(cfg.Address()); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("address", cfg.Address()),
		zap.String("sttProvider", string(cfg.Provider)))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	registry.StopAll()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func buildRecognizer(cfg config.Config, logger *zap.Logger) (repositories.Recognizer, error) {
	switch cfg.Provider {
	case config.ProviderDeepgram:
		return stt.NewDeepgramRecognizer(stt.DeepgramConfig{APIKey: cfg.DeepgramAPIKey}, logger)
	case config.ProviderGoogle:
		return stt.NewGoogleRecognizer(logger), nil
	default:
		return stt.NewMockRecognizer(logger), nil
	}
}

func buildTranslator(cfg config.Config, logger *zap.Logger) (repositories.Translator, error) {
	if cfg.MockTranslation {
		return translate.NewMockTranslator(logger), nil
	}
	return translate.NewDeepLTranslator(translate.DeepLConfig{APIKey: cfg.DeepLAPIKey}, logger)
}
