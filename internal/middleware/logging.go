package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"aquatrack/internal/logger"
)

const requestIDKey = "requestID"

// RequestLogging returns a Gin middleware that tags each request with an ID
// and logs method, path, status, latency, and client IP through Zap. An
// inbound X-Request-ID is kept so IDs survive a reverse proxy.
func RequestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		fields := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if query := c.Request.URL.RawQuery; query != "" {
			fields = append(fields, "query", query)
		}
		logger.Get().Infow("request", fields...)
	}
}
