package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_convert_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Conversion metrics
var (
	ConversionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_conversions_total",
			Help: "Total number of conversion jobs by engine kind and outcome",
		},
		[]string{"engine", "from", "to", "status"},
	)

	ConversionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_duration_seconds",
			Help:    "Conversion job duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"engine"},
	)

	ConversionInputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_input_bytes",
			Help:    "Size of conversion input payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)

	ConversionOutputBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "media_convert_conversion_output_bytes",
			Help:    "Size of conversion output payloads in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		},
	)
)

// Engine metrics
var (
	EngineLoadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_engine_loads_total",
			Help: "Total number of transcoding engine load operations",
		},
	)

	EngineLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_engine_load_failures_total",
			Help: "Total number of failed transcoding engine load attempts",
		},
	)

	EngineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_convert_engine_runs_total",
			Help: "Total number of transcoding engine invocations",
		},
		[]string{"status"},
	)

	StagedFilesLeaked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_staged_files_leaked_total",
			Help: "Virtual staging files that could not be removed after a job",
		},
	)
)

// Memory metrics
var (
	MemoryUsageRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_convert_memory_usage_ratio",
			Help: "Heap usage as a fraction of the configured memory limit",
		},
	)

	MemoryPaused = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "media_convert_memory_paused",
			Help: "Whether conversion intake is paused due to memory pressure (0 or 1)",
		},
	)

	MemoryGCPauses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "media_convert_memory_gc_pauses_total",
			Help: "Forced garbage collections triggered by memory pressure",
		},
	)
)

// InitializeMetrics pre-populates expected label combinations so that every
// metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	for _, status := range []string{"success", "error"} {
		EngineRunsTotal.WithLabelValues(status)
	}
	for _, engine := range []string{"canvas-raster", "wasm-transcode", "pdf-page-rasterize", "svg-converter"} {
		ConversionDuration.WithLabelValues(engine)
	}
}
