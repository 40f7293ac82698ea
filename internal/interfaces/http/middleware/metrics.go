package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"re-view.backend/pkg/metrics"
)

// MetricsMiddleware records request counts and latency by route template.
// Authorization failures are also counted on their own.
func MetricsMiddleware(m *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())

		switch status {
		case http.StatusUnauthorized:
			m.Denied("UNAUTHORIZED")
		case http.StatusForbidden:
			m.Denied("FORBIDDEN")
		}
	}
}
