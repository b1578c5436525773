package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Harsh-BH/dispatch/internal/metrics"
)

// Metrics counts requests by route template, so ids never become labels.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(path, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
