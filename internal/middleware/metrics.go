package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/logger"
	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start).Milliseconds()
		statusCode := c.Writer.Status()

		metrics.Get().IncrementRequests(statusCode < 400, latency)

		// FullPath keeps /estimates/:id as one series
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		metrics.Get().TrackEndpoint(path, c.Request.Method, statusCode, latency)
	}
}

// AuditMiddleware logs audit events for document submissions and downloads
func AuditMiddleware() gin.HandlerFunc {
	auditPaths := []string{
		"/submit",
		"/estimates/",
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		shouldAudit := false
		for _, p := range auditPaths {
			if strings.HasPrefix(path, p) {
				shouldAudit = true
				break
			}
		}

		c.Next()

		if !shouldAudit || c.Request.Method == http.MethodOptions {
			return
		}

		logger.AuditRequest(
			c.Request.Context(),
			c.Request.Method,
			path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
			c.ClientIP(),
		)
	}
}
