package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"stilltime/api/internal/metrics"
)

// Metrics records per-route request counts and latency. The route label is
// the gin template path so path parameters do not explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		metrics.HTTPRequestsTotal.WithLabelValues(route, status).Inc()
		metrics.HTTPRequestDurationSeconds.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
