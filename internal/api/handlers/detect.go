package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"swipeboard-utils/internal/detector"
	"swipeboard-utils/internal/logging"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"
)

// DetectHandler scans a DOM snapshot for ad cards
func DetectHandler(det *detector.Detector) echo.HandlerFunc {
	return func(c echo.Context) error {
		startTime := time.Now()
		requestID := utils.GenerateRequestID()
		logger := logging.LogWithRequestID(requestID)

		var req models.DetectRequest
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

		cards, err := det.Scan(req.HTML, req.PageURL)
		if err != nil {
			logger.Error("Snapshot scan failed", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{
				Error:     "scan_failed",
				Message:   "Could not parse the submitted snapshot",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		logger.Info("Detect request completed", map[string]interface{}{
			"cards":           len(cards),
			"snapshot_bytes":  len(req.HTML),
			"processing_time": time.Since(startTime),
		})

		return c.JSON(http.StatusOK, models.DetectResponse{
			Success:        true,
			Cards:          cards,
			PageURL:        req.PageURL,
			ProcessingTime: time.Since(startTime),
			RequestID:      requestID,
		})
	}
}
