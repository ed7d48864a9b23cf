package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"swipeboard-utils/internal/logging"
	"swipeboard-utils/internal/relay"
	"swipeboard-utils/pkg/models"
	"swipeboard-utils/pkg/utils"
)

// ExtensionMessageHandler relays extension protocol messages (PING,
// CHECK_SESSION, LOAD_BOARDS, SAVE_AD) to the relay. The relay envelope is
// always 200; degraded results carry success=false with typed fallback data.
func ExtensionMessageHandler(r *relay.Relay) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := utils.GenerateRequestID()
		logger := logging.LogWithRequestID(requestID)

		var msg models.Message
		if err := c.Bind(&msg); err != nil {
			logger.Error("Failed to bind message", map[string]interface{}{
				"error": err.Error(),
			})
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "invalid_request",
				Message:   "Invalid message format",
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		if err := validate.Struct(&msg); err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:     "validation_failed",
				Message:   err.Error(),
				RequestID: requestID,
				Timestamp: time.Now(),
			})
		}

		resp := r.HandleMessage(c.Request().Context(), &msg)

		logger.Debug("Extension message handled", map[string]interface{}{
			"type":    msg.Type,
			"success": resp.Success,
		})

		return c.JSON(http.StatusOK, resp)
	}
}
