package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "aquatrack/internal/errors"
	"aquatrack/internal/logger"
)

// ErrorHandler returns a Gin middleware that converts errors attached to the
// context into the JSON error envelope. The last error wins when several were
// attached. AppErrors keep their code and status; anything else is logged with
// the request ID and answered with a generic internal error so nothing
// internal leaks to clients.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if c.Writer.Written() {
			// A handler already responded; the error was informational.
			return
		}

		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			logger.Get().Errorw("unexpected error",
				"error", err.Error(),
				"request_id", c.GetString(requestIDKey),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			logger.Get().Errorw("app error",
				"code", appErr.Code,
				"internal", appErr.Internal.Error(),
				"request_id", c.GetString(requestIDKey),
				"path", c.Request.URL.Path,
			)
		}

		c.JSON(appErr.StatusCode, gin.H{
			"error": gin.H{
				"code":    appErr.Code,
				"message": appErr.Message,
			},
		})
	}
}
