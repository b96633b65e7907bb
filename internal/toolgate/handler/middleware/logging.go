package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kiosk404/toolgate/pkg/logger"
)

// RequestLogger logs one line per request through pkg/logger.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if path == "/healthz" {
			return
		}
		logger.Debug("[HTTP] %s %s %d %s", c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
