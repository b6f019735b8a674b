package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ledazaf/ms-order-api/internal/pkg/logger"
)

// RequestLog emits one structured line per request.
func RequestLog(baseLog *logger.Logger) gin.HandlerFunc {
	log := baseLog.With("component", "http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", RequestIDFrom(c),
		}
		if status >= 500 {
			log.Error("request failed", fields...)
			return
		}
		log.Info("request", fields...)
	}
}
