package httpapi

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/ragd/internal/logger"
	"github.com/custodia-labs/ragd/internal/observability"
)

// unmatchedRoute labels requests that hit no route, keeping label cardinality bounded.
const unmatchedRoute = "unmatched"

// metricsMiddleware records request counts and latencies per route.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		observability.RequestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		observability.RequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

// loggingMiddleware logs each request at debug level and server errors at error level.
func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		latency := time.Since(start)
		if status >= 500 {
			logger.Error("%s %s -> %d (%v) %s", c.Request.Method, path, status, latency, c.Errors.String())
			return
		}
		logger.Debug("%s %s -> %d (%v)", c.Request.Method, path, status, latency)
	}
}
