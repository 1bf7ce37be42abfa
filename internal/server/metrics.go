package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/MeKo-Tech/poblur/internal/redact"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poblur_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poblur_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Redaction metrics
	redactRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poblur_redact_requests_total",
			Help: "Total number of redaction requests",
		},
		[]string{"type", "status"}, // type: image, pdf, batch, batch_image, batch_pdf, websocket_image
	)

	redactProcessingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poblur_redact_processing_duration_seconds",
			Help:    "Redaction processing duration in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	regionsBlurred = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poblur_redact_regions_blurred",
			Help:    "Number of regions blurred per request",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
		},
		[]string{"type"},
	)

	layoutFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poblur_redact_layout_fallbacks_total",
			Help: "Requests where detection found nothing and the layout catalog was used",
		},
		[]string{"type"},
	)

	// Rate limiting metrics
	rateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poblur_rate_limit_hits_total",
			Help: "Total number of rate limit hits",
		},
		[]string{"type"}, // type: minute, hour, requests, data
	)

	// File upload metrics
	uploadSizeBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "poblur_upload_size_bytes",
			Help: "Size of uploaded files in bytes",
			Buckets: []float64{
				1024, 10 * 1024, 100 * 1024, 1024 * 1024,
				10 * 1024 * 1024, 50 * 1024 * 1024, 100 * 1024 * 1024,
			},
		},
	)

	// WebSocket metrics
	websocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poblur_websocket_active_connections",
			Help: "Number of active WebSocket connections",
		},
	)

	websocketMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poblur_websocket_messages_total",
			Help: "Total number of WebSocket messages",
		},
		[]string{"direction"}, // direction: sent, received
	)
)

// recordRedactionMetrics records the metrics of one successful redaction.
func recordRedactionMetrics(kind string, duration time.Duration, res *redact.Result) {
	redactRequestsTotal.WithLabelValues(kind, "success").Inc()
	redactProcessingDuration.WithLabelValues(kind).Observe(duration.Seconds())
	regionsBlurred.WithLabelValues(kind).Observe(float64(res.BlurredCount()))
	if res.UsedFallback {
		layoutFallbacksTotal.WithLabelValues(kind).Inc()
	}
}
