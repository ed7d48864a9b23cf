package routes

import (
	"net/http"

	"swipeboard-utils/internal/api/handlers"
	"swipeboard-utils/internal/api/middleware"
	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/detector"
	"swipeboard-utils/internal/relay"
	"swipeboard-utils/internal/scraper/workers"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(e *echo.Echo, cfg *config.Config, poolManager *workers.PoolManager, det *detector.Detector, rl *relay.Relay) {
	// Global middleware
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.CORSConfig())
	e.Use(middleware.RequestValidation())
	e.Use(middleware.TimeoutConfig(cfg.Server.ReadTimeout))

	// Health check routes
	health := e.Group("/health")
	{
		health.GET("", handlers.HealthHandler)
		health.GET("/ready", handlers.ReadinessHandler(poolManager, rl))
		health.GET("/live", handlers.LivenessHandler)
		health.GET("/workers", handlers.WorkerHealthHandler(poolManager))
	}

	// Status route
	e.GET("/status", handlers.StatusHandler(poolManager, rl))

	// API v1 routes
	v1 := e.Group("/api/v1")
	{
		ads := v1.Group("/ads")
		{
			ads.POST("/resolve", handlers.ResolveHandler(cfg, poolManager))
			ads.POST("/detect", handlers.DetectHandler(det))
		}

		extension := v1.Group("/extension")
		{
			extension.POST("/message", handlers.ExtensionMessageHandler(rl))
		}

		workerRoutes := v1.Group("/workers")
		{
			workerRoutes.GET("/stats", handlers.WorkerStatsHandler(poolManager))
		}
	}

	// Root route
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"service": "Swipeboard Ad Capture",
			"version": "1.0.0",
			"status":  "running",
		})
	})
}
