package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"swipeboard-utils/internal/config"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/scraper"
	"swipeboard-utils/internal/scraper/workers"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ResolveHandler handles ad resolution requests using the worker pool
func ResolveHandler(cfg *config.Config, poolManager *workers.PoolManager) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := utils.GenerateRequestID()
		logger := logging.LogWithRequestID(requestID)

		logger.Info("Resolve request received")

		var req models.ResolveRequest
		if err := c.Bind(&req); err != nil {
			logger.Error("Failed to bind request", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid request format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&req); err != nil {
			logger.Error("Request validation failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Processing resolve request", map[string]interface{}{
			"ad_url": req.AdURL,
		})

		ctx := c.Request().Context()
		result, err := poolManager.SubmitJob(ctx, req.AdURL, req.Options)
		if err != nil {
			logger.Error("Failed to submit job to worker pool", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "job_submission_failed",
				Message:   fmt.Sprintf("Failed to submit resolve job: %v", err),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if result.Error != nil {
			// Malformed ad URLs are the caller's problem, not ours.
			if errors.Is(result.Error, scraper.ErrInvalidAdURL) {
				logger.Warn("Rejected invalid ad URL", map[string]interface{}{
					"ad_url": req.AdURL,
				})
				return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
					Error:     "invalid_ad_url",
					Message:   "The URL does not look like a Facebook ad",
					RequestID: requestID,
					Timestamp: time.Now(),
				})
			}

			logger.Error("Resolve job failed", map[string]interface{}{
				"error": result.Error.Error(),
			})
			return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:     "resolve_failed",
				Message:   fmt.Sprintf("Failed to resolve ad: %v", result.Error),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		ad := result.Ad

		engine := cfg.Scraper.Engine
		if req.Options != nil && req.Options.Engine != "" {
			engine = req.Options.Engine
		}

		response := models.ResolveResponse{
			Success:        true,
			Ad:             ad,
			ProcessingTime: time.Since(startTime),
			Engine:         engine,
			Cached:         result.Cached,
			RequestID:      requestID,
		}

		logger.Info("Resolve request completed successfully", map[string]interface{}{
			"processing_time": time.Since(startTime),
			"ad_id":           ad.AdID,
			"brand":           ad.BrandName,
			"resolved_by":     ad.ResolvedBy,
		})

		return c.JSON(http.StatusOK, response)
	}
}
