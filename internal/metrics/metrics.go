package metrics

import (
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application metrics
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	RateLimited        int64

	// Request latency (in milliseconds)
	TotalLatency int64
	RequestCount int64

	// Estimate metrics
	EstimatesGenerated int64
	EstimateErrors     int64
	RenderLatency      int64
	BytesGenerated     int64
	ImagesOmitted      int64

	// Upload metrics (logo, signature image)
	FilesUploaded      int64
	TotalBytesUploaded int64

	// Retention metrics
	Downloads      int64
	DocumentsSwept int64
	SweepRuns      int64
	SweepErrors    int64

	// Endpoint-specific metrics
	EndpointMetrics map[string]*EndpointMetrics

	// Start time for uptime calculation
	StartTime time.Time
}

// global metrics instance
var globalMetrics *Metrics
var once sync.Once

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = &Metrics{
			StartTime:       time.Now(),
			EndpointMetrics: make(map[string]*EndpointMetrics),
		}
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests increments request counters
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	atomic.AddInt64(&m.RequestCount, 1)

	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// IncrementRateLimited counts a request rejected by the limiter
func (m *Metrics) IncrementRateLimited() {
	atomic.AddInt64(&m.RateLimited, 1)
}

// IncrementEstimate records one generation attempt
func (m *Metrics) IncrementEstimate(success bool, latencyMs, size int64) {
	if success {
		atomic.AddInt64(&m.EstimatesGenerated, 1)
		atomic.AddInt64(&m.BytesGenerated, size)
	} else {
		atomic.AddInt64(&m.EstimateErrors, 1)
	}
	atomic.AddInt64(&m.RenderLatency, latencyMs)
}

// IncrementImageOmitted counts a logo or signature dropped at render time
func (m *Metrics) IncrementImageOmitted() {
	atomic.AddInt64(&m.ImagesOmitted, 1)
}

// IncrementFileUpload increments file upload counters
func (m *Metrics) IncrementFileUpload(bytes int64) {
	atomic.AddInt64(&m.FilesUploaded, 1)
	atomic.AddInt64(&m.TotalBytesUploaded, bytes)
}

// IncrementDownload counts a re-download of a stored document
func (m *Metrics) IncrementDownload() {
	atomic.AddInt64(&m.Downloads, 1)
}

// IncrementSweep records one retention pass
func (m *Metrics) IncrementSweep(removed int, success bool) {
	atomic.AddInt64(&m.SweepRuns, 1)
	atomic.AddInt64(&m.DocumentsSwept, int64(removed))
	if !success {
		atomic.AddInt64(&m.SweepErrors, 1)
	}
}

// TrackEndpoint tracks metrics for a specific endpoint
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.EndpointMetrics == nil {
		m.EndpointMetrics = make(map[string]*EndpointMetrics)
	}

	em, exists := m.EndpointMetrics[key]
	if !exists {
		em = &EndpointMetrics{}
		m.EndpointMetrics[key] = em
	}

	atomic.AddInt64(&em.Requests, 1)
	atomic.AddInt64(&em.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&em.Errors, 1)
	}
}

// GetEndpointMetrics returns a copy of endpoint metrics
func (m *Metrics) GetEndpointMetrics() map[string]EndpointMetrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make(map[string]EndpointMetrics)
	for k, v := range m.EndpointMetrics {
		result[k] = EndpointMetrics{
			Requests:     atomic.LoadInt64(&v.Requests),
			Errors:       atomic.LoadInt64(&v.Errors),
			TotalLatency: atomic.LoadInt64(&v.TotalLatency),
		}
	}
	return result
}

// GetAverageLatency returns average request latency in milliseconds
func (m *Metrics) GetAverageLatency() float64 {
	count := atomic.LoadInt64(&m.RequestCount)
	if count == 0 {
		return 0
	}
	return float64(atomic.LoadInt64(&m.TotalLatency)) / float64(count)
}

// GetUptime returns the application uptime
func (m *Metrics) GetUptime() time.Duration {
	return time.Since(m.StartTime)
}

// EndpointMetricsSnapshot represents endpoint metrics in a snapshot
type EndpointMetricsSnapshot struct {
	Requests     int64   `json:"requests"`
	Errors       int64   `json:"errors"`
	ErrorRate    float64 `json:"error_rate"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// MetricsSnapshot represents a point-in-time snapshot of all metrics
type MetricsSnapshot struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	StartTime     string  `json:"start_time"`

	Requests struct {
		Total        int64   `json:"total"`
		Successful   int64   `json:"successful"`
		Failed       int64   `json:"failed"`
		RateLimited  int64   `json:"rate_limited"`
		AvgLatencyMs float64 `json:"avg_latency_ms"`
	} `json:"requests"`

	Estimates struct {
		Generated     int64   `json:"generated"`
		Errors        int64   `json:"errors"`
		BytesOut      int64   `json:"bytes_out"`
		ImagesOmitted int64   `json:"images_omitted"`
		AvgRenderMs   float64 `json:"avg_render_ms"`
	} `json:"estimates"`

	Files struct {
		Uploaded   int64 `json:"uploaded"`
		TotalBytes int64 `json:"total_bytes"`
		Downloads  int64 `json:"downloads"`
	} `json:"files"`

	Retention struct {
		Runs   int64 `json:"runs"`
		Swept  int64 `json:"swept"`
		Errors int64 `json:"errors"`
	} `json:"retention"`

	System struct {
		Goroutines   int    `json:"goroutines"`
		HeapAllocMB  uint64 `json:"heap_alloc_mb"`
		HeapInUseMB  uint64 `json:"heap_inuse_mb"`
		StackInUseMB uint64 `json:"stack_inuse_mb"`
		NumGC        uint32 `json:"num_gc"`
	} `json:"system"`

	Endpoints map[string]EndpointMetricsSnapshot `json:"endpoints,omitempty"`
}

// Snapshot returns a point-in-time snapshot of all metrics
func (m *Metrics) Snapshot() MetricsSnapshot {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	snapshot := MetricsSnapshot{}

	snapshot.UptimeSeconds = m.GetUptime().Seconds()
	snapshot.StartTime = m.StartTime.Format(time.RFC3339)

	snapshot.Requests.Total = atomic.LoadInt64(&m.TotalRequests)
	snapshot.Requests.Successful = atomic.LoadInt64(&m.SuccessfulRequests)
	snapshot.Requests.Failed = atomic.LoadInt64(&m.FailedRequests)
	snapshot.Requests.RateLimited = atomic.LoadInt64(&m.RateLimited)
	snapshot.Requests.AvgLatencyMs = m.GetAverageLatency()

	generated := atomic.LoadInt64(&m.EstimatesGenerated)
	failed := atomic.LoadInt64(&m.EstimateErrors)
	snapshot.Estimates.Generated = generated
	snapshot.Estimates.Errors = failed
	snapshot.Estimates.BytesOut = atomic.LoadInt64(&m.BytesGenerated)
	snapshot.Estimates.ImagesOmitted = atomic.LoadInt64(&m.ImagesOmitted)
	if attempts := generated + failed; attempts > 0 {
		snapshot.Estimates.AvgRenderMs = float64(atomic.LoadInt64(&m.RenderLatency)) / float64(attempts)
	}

	snapshot.Files.Uploaded = atomic.LoadInt64(&m.FilesUploaded)
	snapshot.Files.TotalBytes = atomic.LoadInt64(&m.TotalBytesUploaded)
	snapshot.Files.Downloads = atomic.LoadInt64(&m.Downloads)

	snapshot.Retention.Runs = atomic.LoadInt64(&m.SweepRuns)
	snapshot.Retention.Swept = atomic.LoadInt64(&m.DocumentsSwept)
	snapshot.Retention.Errors = atomic.LoadInt64(&m.SweepErrors)

	snapshot.System.Goroutines = runtime.NumGoroutine()
	snapshot.System.HeapAllocMB = memStats.HeapAlloc / 1024 / 1024
	snapshot.System.HeapInUseMB = memStats.HeapInuse / 1024 / 1024
	snapshot.System.StackInUseMB = memStats.StackInuse / 1024 / 1024
	snapshot.System.NumGC = memStats.NumGC

	endpointMetrics := m.GetEndpointMetrics()
	if len(endpointMetrics) > 0 {
		snapshot.Endpoints = make(map[string]EndpointMetricsSnapshot)
		for k, v := range endpointMetrics {
			em := EndpointMetricsSnapshot{
				Requests: v.Requests,
				Errors:   v.Errors,
			}
			if v.Requests > 0 {
				em.ErrorRate = float64(v.Errors) / float64(v.Requests) * 100
				em.AvgLatencyMs = float64(v.TotalLatency) / float64(v.Requests)
			}
			snapshot.Endpoints[k] = em
		}
	}

	return snapshot
}

// HealthStatus represents the health status of a component
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unhealthy"
	Message string `json:"message,omitempty"`
	Latency int64  `json:"latency_ms,omitempty"`
}

// HealthCheck represents the overall health check response
type HealthCheck struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Timestamp  string                  `json:"timestamp"`
	Components map[string]HealthStatus `json:"components"`
}

// WritableChecker is satisfied by the document store.
type WritableChecker interface {
	CheckWritable() error
}

// CheckStorageHealth verifies the output directory accepts writes
func CheckStorageHealth(store WritableChecker) HealthStatus {
	start := time.Now()

	if store == nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "document store not initialized",
		}
	}

	err := store.CheckWritable()
	latency := time.Since(start).Milliseconds()

	if err != nil {
		return HealthStatus{
			Status:  "unhealthy",
			Message: err.Error(),
			Latency: latency,
		}
	}

	// Slow disk (> 100ms)
	if latency > 100 {
		return HealthStatus{
			Status:  "degraded",
			Message: "high latency",
			Latency: latency,
		}
	}

	return HealthStatus{
		Status:  "healthy",
		Latency: latency,
	}
}

// CheckMemoryHealth checks memory usage
func CheckMemoryHealth(maxHeapMB uint64) HealthStatus {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	heapMB := memStats.HeapAlloc / 1024 / 1024

	if heapMB > maxHeapMB {
		return HealthStatus{
			Status:  "unhealthy",
			Message: "heap memory exceeds limit",
		}
	}

	if heapMB > (maxHeapMB * 80 / 100) {
		return HealthStatus{
			Status:  "degraded",
			Message: "heap memory usage high",
		}
	}

	return HealthStatus{
		Status: "healthy",
	}
}

// DetermineOverallStatus determines overall health from component statuses
func DetermineOverallStatus(components map[string]HealthStatus) string {
	hasUnhealthy := false
	hasDegraded := false

	for _, status := range components {
		switch status.Status {
		case "unhealthy":
			hasUnhealthy = true
		case "degraded":
			hasDegraded = true
		}
	}

	if hasUnhealthy {
		return "unhealthy"
	}
	if hasDegraded {
		return "degraded"
	}
	return "healthy"
}
