package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Buckets cover quick JSON calls up to slow multi-file uploads.
	CustomAPIBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21, 34, 55}

	// HTTP server metrics (sandbox backend)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_server_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	HTTPRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_server_request_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"http_request_method", "http_route", "http_response_status_code"},
	)

	ActiveRequests = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_server_active_requests",
			Help: "Number of active HTTP requests",
		},
		[]string{"http_request_method"},
	)

	// Backend API client metrics
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_client_operation_duration_seconds",
			Help:    "Backend API call duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"operation", "status"},
	)

	BackendRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "backend_client_operation_total",
			Help: "Total number of backend API calls",
		},
		[]string{"operation", "status"},
	)

	// Image host metrics
	ImageUploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "image_host_upload_duration_seconds",
			Help:    "Single file upload duration in seconds",
			Buckets: CustomAPIBuckets,
		},
		[]string{"host", "status"},
	)

	ImageUploadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "image_host_upload_total",
			Help: "Total number of single file uploads",
		},
		[]string{"host", "status"},
	)

	UploadBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipskill_upload_batches_total",
			Help: "Upload batches by outcome (accepted, too_many_files, too_large, failed)",
		},
		[]string{"status"},
	)

	// Dashboard controller metrics
	ControllerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipskill_dashboard_operations_total",
			Help: "Dashboard controller operations by outcome",
		},
		[]string{"operation", "status"},
	)

	StaleResponsesDiscarded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "equipskill_dashboard_stale_loads_total",
			Help: "Aggregate loads discarded because a newer load was issued",
		},
	)

	ReviewOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "equipskill_review_operations_total",
			Help: "Review operations by outcome",
		},
		[]string{"operation", "status"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_name"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_name"},
	)

	// Infrastructure Metrics
	GoRoutines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_goroutines",
			Help: "Number of goroutines",
		},
	)

	HeapAlloc = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "process_runtime_go_mem_heap_alloc_bytes",
			Help: "Heap allocated bytes",
		},
	)
)

// RecordInfrastructureMetrics collects infrastructure metrics until stop is closed
func RecordInfrastructureMetrics(stop <-chan struct{}) {
	ticker := time.NewTicker(15 * time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				GoRoutines.Set(float64(runtime.NumGoroutine()))
				HeapAlloc.Set(float64(m.HeapAlloc))
			}
		}
	}()
}

// MeasureDuration measures the duration of an operation
func MeasureDuration(start time.Time) float64 {
	return time.Since(start).Seconds()
}

// Status maps an error to the status label used across these metrics.
func Status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
