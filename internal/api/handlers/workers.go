package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"swipeboard-utils/internal/scraper/workers"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"
)

// WorkerStatsHandler returns worker pool statistics
func WorkerStatsHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()

		stats, err := poolManager.GetStats()
		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Error:     "pool_unavailable",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"success":    true,
			"stats":      stats,
			"request_id": requestID,
		})
	}
}

// WorkerHealthHandler reports whether the worker pool is accepting jobs
func WorkerHealthHandler(poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !poolManager.IsHealthy() {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status": "unhealthy",
			})
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status": "healthy",
		})
	}
}
