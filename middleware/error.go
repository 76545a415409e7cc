package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/striking-distance/backend/logging"
)

// ErrorHandler recovers from panics in handlers and turns them into a 500
// response instead of killing the process.
func ErrorHandler(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.WithFields(map[string]interface{}{
					"panic": fmt.Sprintf("%v", err),
					"stack": string(debug.Stack()),
					"path":  c.Request.URL.Path,
				}).Error("panic recovered")

				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "An unexpected error occurred",
				})
				c.Abort()
			}
		}()

		c.Next()
	}
}
