package handlers

import (
	"net/http"
	"time"

	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/relay"
	"swipeboard-utils/internal/scraper/workers"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"

	"github.com/labstack/echo/v4"
)

var startTime = time.Now()

// HealthHandler handles health check requests
func HealthHandler(c echo.Context) error {
	requestID := utils.GenerateRequestID()
	logger := logging.GetGlobalLogger()

	logger.Debug("Health check requested", map[string]interface{}{"request_id": requestID})

	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
		Checks: map[string]string{
			"api": "ok",
		},
	}

	return c.JSON(http.StatusOK, response)
}

// ReadinessHandler handles readiness probe requests. The service is ready
// once the worker pool is running and the relay preload has finished.
func ReadinessHandler(poolManager *workers.PoolManager, r *relay.Relay) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api":     "ok",
			"workers": "ok",
			"relay":   "ok",
		}
		status := "ready"
		code := http.StatusOK

		if !poolManager.IsHealthy() {
			checks["workers"] = "not running"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}
		if !r.Ready() {
			checks["relay"] = "warming up"
			status = "not_ready"
			code = http.StatusServiceUnavailable
		}

		return c.JSON(code, models.HealthResponse{
			Status:    status,
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}

// LivenessHandler handles liveness probe requests
func LivenessHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   "1.0.0",
		Uptime:    time.Since(startTime),
	})
}

// StatusHandler provides detailed service status
func StatusHandler(poolManager *workers.PoolManager, r *relay.Relay) echo.HandlerFunc {
	return func(c echo.Context) error {
		checks := map[string]string{
			"api":     "operational",
			"workers": "operational",
			"relay":   "operational",
		}
		if !poolManager.IsHealthy() {
			checks["workers"] = "degraded"
		}
		if !r.Ready() {
			checks["relay"] = "warming up"
		}

		return c.JSON(http.StatusOK, models.HealthResponse{
			Status:    "operational",
			Timestamp: time.Now(),
			Version:   "1.0.0",
			Uptime:    time.Since(startTime),
			Checks:    checks,
		})
	}
}
