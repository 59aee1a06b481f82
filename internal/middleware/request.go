package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yukikurage/todolist-api/internal/constants"
	"github.com/yukikurage/todolist-api/internal/logging"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// RequestID reuses the caller's X-Request-ID or generates a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set(constants.ContextKeyRequestID, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// RequestLogger logs one line per request once it has been served.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.GetString(constants.ContextKeyRequestID),
		}
		if userID, ok := GetUserID(c); ok {
			args = append(args, "user_id", userID)
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error(c.Request.Context(), "request failed", args...)
		case c.Writer.Status() >= 400:
			logger.Warn(c.Request.Context(), "request rejected", args...)
		default:
			logger.Info(c.Request.Context(), "request served", args...)
		}
	}
}
