package handler

import (
	"github.com/cleberrangel/quickquote-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// Routes bundles the handlers mounted on the router
type Routes struct {
	Estimate    *EstimateHandler
	Health      *HealthHandler
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(routes Routes) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID()) // Request ID + logging estruturado
	r.Use(gin.Recovery())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.SetHTMLTemplate(FormTemplate())

	// Health e métricas (públicos)
	r.GET("/health", routes.Health.DetailedHealthCheck)
	r.GET("/health/live", routes.Health.LivenessCheck)
	r.GET("/health/ready", routes.Health.ReadinessCheck)
	r.GET("/metrics", routes.Health.GetMetrics)
	r.GET("/metrics/summary", routes.Health.GetMetricsSummary)
	r.GET("/metrics/endpoints", routes.Health.GetEndpointMetrics)

	r.GET("/", routes.Estimate.Form)
	if routes.RateLimiter != nil {
		r.POST("/submit", routes.RateLimiter.Middleware(), routes.Estimate.Submit)
	} else {
		r.POST("/submit", routes.Estimate.Submit)
	}
	r.GET("/estimates/:id/download", routes.Estimate.Download)

	return r
}
