package handler

import (
	"net/http"
	"time"

	"github.com/cleberrangel/quickquote-api/internal/metrics"
	"github.com/gin-gonic/gin"
)

// maxHeapMB bounds the memory check
const maxHeapMB = 512

// HealthHandler handles health check and metrics endpoints
type HealthHandler struct {
	store     metrics.WritableChecker
	version   string
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(store metrics.WritableChecker, version string) *HealthHandler {
	return &HealthHandler{
		store:     store,
		version:   version,
		startTime: time.Now(),
	}
}

// LivenessCheck returns basic liveness status
// @Summary Liveness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// ReadinessCheck reports whether documents can be written
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health/ready [get]
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	h.respond(c, map[string]metrics.HealthStatus{
		"storage": metrics.CheckStorageHealth(h.store),
	})
}

// DetailedHealthCheck returns comprehensive health information
// @Summary Detailed health check
// @Tags health
// @Produce json
// @Success 200 {object} metrics.HealthCheck
// @Failure 503 {object} metrics.HealthCheck
// @Router /health [get]
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	h.respond(c, map[string]metrics.HealthStatus{
		"storage":   metrics.CheckStorageHealth(h.store),
		"memory":    metrics.CheckMemoryHealth(maxHeapMB),
		"renderer":  h.checkRendererHealth(),
		"retention": h.checkRetentionHealth(),
	})
}

func (h *HealthHandler) respond(c *gin.Context, components map[string]metrics.HealthStatus) {
	overallStatus := metrics.DetermineOverallStatus(components)

	healthCheck := metrics.HealthCheck{
		Status:     overallStatus,
		Version:    h.version,
		Uptime:     time.Since(h.startTime).String(),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Components: components,
	}

	statusCode := http.StatusOK
	if overallStatus == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, healthCheck)
}

// checkRendererHealth degrades when most recent generations fail
func (h *HealthHandler) checkRendererHealth() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	total := snapshot.Estimates.Generated + snapshot.Estimates.Errors
	if total >= 10 {
		failureRate := float64(snapshot.Estimates.Errors) / float64(total) * 100
		if failureRate > 50 {
			return metrics.HealthStatus{
				Status:  "degraded",
				Message: "high estimate failure rate",
			}
		}
	}

	return metrics.HealthStatus{Status: "healthy"}
}

func (h *HealthHandler) checkRetentionHealth() metrics.HealthStatus {
	snapshot := metrics.Get().Snapshot()

	if snapshot.Retention.Runs > 0 && snapshot.Retention.Errors == snapshot.Retention.Runs {
		return metrics.HealthStatus{
			Status:  "degraded",
			Message: "every sweep has failed",
		}
	}

	return metrics.HealthStatus{Status: "healthy"}
}

// GetMetrics returns application metrics
// @Summary Get application metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} metrics.MetricsSnapshot
// @Router /metrics [get]
func (h *HealthHandler) GetMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, metrics.Get().Snapshot())
}

// GetMetricsSummary returns a summary of key metrics
// @Summary Get metrics summary
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/summary [get]
func (h *HealthHandler) GetMetricsSummary(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()

	requestSuccessRate := float64(0)
	if snapshot.Requests.Total > 0 {
		requestSuccessRate = float64(snapshot.Requests.Successful) / float64(snapshot.Requests.Total) * 100
	}

	estimateSuccessRate := float64(0)
	if total := snapshot.Estimates.Generated + snapshot.Estimates.Errors; total > 0 {
		estimateSuccessRate = float64(snapshot.Estimates.Generated) / float64(total) * 100
	}

	c.JSON(http.StatusOK, gin.H{
		"uptime_seconds": snapshot.UptimeSeconds,
		"version":        h.version,
		"requests": gin.H{
			"total":        snapshot.Requests.Total,
			"success_rate": requestSuccessRate,
			"avg_latency":  snapshot.Requests.AvgLatencyMs,
			"rate_limited": snapshot.Requests.RateLimited,
		},
		"estimates": gin.H{
			"generated":      snapshot.Estimates.Generated,
			"success_rate":   estimateSuccessRate,
			"images_omitted": snapshot.Estimates.ImagesOmitted,
		},
		"retention": gin.H{
			"swept": snapshot.Retention.Swept,
		},
		"system": gin.H{
			"goroutines":  snapshot.System.Goroutines,
			"heap_mb":     snapshot.System.HeapAllocMB,
			"heap_use_mb": snapshot.System.HeapInUseMB,
		},
	})
}

// GetEndpointMetrics returns per-route counters
// @Summary Get endpoint metrics
// @Tags metrics
// @Produce json
// @Success 200 {object} map[string]metrics.EndpointMetricsSnapshot
// @Router /metrics/endpoints [get]
func (h *HealthHandler) GetEndpointMetrics(c *gin.Context) {
	snapshot := metrics.Get().Snapshot()
	endpoints := snapshot.Endpoints
	if endpoints == nil {
		endpoints = map[string]metrics.EndpointMetricsSnapshot{}
	}
	c.JSON(http.StatusOK, gin.H{
		"endpoints": endpoints,
	})
}
