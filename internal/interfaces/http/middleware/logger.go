package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"re-view.backend/pkg/logger"
)

// LoggerMiddleware writes one entry per request after the handler chain.
// The context is read after c.Next so the actor's user id is included.
func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		logger.LogRequest(c.Request.Context(), logger.Request{
			Method:   c.Request.Method,
			Route:    route,
			Path:     path,
			Status:   c.Writer.Status(),
			Latency:  time.Since(start),
			ClientIP: c.ClientIP(),
			Bytes:    c.Writer.Size(),
		})
	}
}
