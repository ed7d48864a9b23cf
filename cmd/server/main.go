package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"swipeboard-utils/internal/api/routes"
	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/detector"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/relay"
	"swipeboard-utils/internal/scraper"
	"swipeboard-utils/internal/scraper/workers"
	"swipeboard-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logging
	if err := logging.InitializeLogging(cfg); err != nil {
		log.Fatalf("Failed to initialize logging: %v", err)
	}
	defer logging.CloseLogging()

	logger := logging.GetGlobalLogger()
	logger.Info("Starting Swipeboard Ad Capture service")

	// Resolve cache (optional; the resolver works without it)
	var resolveCache *utils.RedisClient
	if cfg.ResolveCache.Enabled {
		resolveCache = utils.NewRedisClient(cfg)
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Redis.Timeout)
		if err := resolveCache.Ping(pingCtx); err != nil {
			logger.Warn("Redis unavailable, resolve cache disabled", map[string]interface{}{
				"error": err.Error(),
			})
			resolveCache = nil
		}
		cancel()
	}

	// Resolver pipeline and worker pool
	resolver, err := scraper.NewResolver(cfg, resolveCache)
	if err != nil {
		logger.Fatal("Failed to create resolver", map[string]interface{}{
			"error": err.Error(),
		})
	}

	poolManager := workers.NewPoolManager(cfg, resolver)
	if err := poolManager.Initialize(); err != nil {
		logger.Fatal("Failed to start worker pool", map[string]interface{}{
			"error": err.Error(),
		})
	}
	defer poolManager.Shutdown()

	// Detector
	det := detector.New()

	// Relay: preload session and boards in the background; the message
	// endpoint serves fallbacks until the preload finishes.
	rl := relay.NewRelay(cfg)
	go func() {
		preloadCtx, cancel := context.WithTimeout(context.Background(), cfg.Upstream.Timeout*2)
		defer cancel()
		rl.Preload(preloadCtx)
	}()

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true

	routes.SetupRoutes(e, cfg, poolManager, det, rl)

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("Stopping worker pool...")
		if err := poolManager.Shutdown(); err != nil {
			logger.Error("Error stopping worker pool", map[string]interface{}{
				"error": err.Error(),
			})
		}

		if resolveCache != nil {
			if err := resolveCache.Close(); err != nil {
				logger.Error("Error closing redis client", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}

		logger.Info("Stopping HTTP server...")
		if err := e.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error shutting down server", map[string]interface{}{
				"error": err.Error(),
			})
		}

		logger.Info("Server shutdown complete")
	}()

	// Start server
	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", map[string]interface{}{"address": address})

	if err := e.Start(address); err != nil {
		logger.Info("Server stopped", map[string]interface{}{"reason": err.Error()})
	}
}
