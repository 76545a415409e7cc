package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/striking-distance/backend/logging"
)

// RequestLogger logs one structured line per request.
func RequestLogger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		log.WithFields(map[string]interface{}{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		}).Info("request")
	}
}
