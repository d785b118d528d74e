package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	csrfRejectionsTotal   *prometheus.CounterVec
	adminActivityFailures prometheus.Counter
	artworkCacheRequests  *prometheus.CounterVec
	uploadsTotal          *prometheus.CounterVec
	uploadLatencySeconds  prometheus.Histogram
	ordersTotal           *prometheus.CounterVec
	eventsPublishedTotal  *prometheus.CounterVec
	messageConnections    prometheus.Gauge
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nemesis_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		csrfRejectionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_csrf_rejections_total",
			Help: "State-changing requests rejected by the CSRF guard.",
		}, []string{"reason"})

		adminActivityFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nemesis_admin_activity_failures_total",
			Help: "Admin audit records that could not be persisted.",
		})

		artworkCacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_artwork_cache_requests_total",
			Help: "Artwork listing cache lookups by outcome.",
		}, []string{"result"})

		uploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_uploads_total",
			Help: "Media uploads by outcome.",
		}, []string{"result"})

		uploadLatencySeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nemesis_upload_latency_seconds",
			Help:    "Latency of media uploads including storage round trip.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		})

		ordersTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_orders_total",
			Help: "Order state transitions.",
		}, []string{"status"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nemesis_events_published_total",
			Help: "Domain events published to the broker.",
		}, []string{"subject", "result"})

		messageConnections = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nemesis_message_stream_connections",
			Help: "Open realtime message websocket connections.",
		})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			csrfRejectionsTotal,
			adminActivityFailures,
			artworkCacheRequests,
			uploadsTotal,
			uploadLatencySeconds,
			ordersTotal,
			eventsPublishedTotal,
			messageConnections,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// CSRFRejections exposes the CSRF rejection counter.
func CSRFRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return csrfRejectionsTotal
}

// AdminActivityFailures exposes the audit write failure counter.
func AdminActivityFailures() prometheus.Counter {
	RegisterMetrics()
	return adminActivityFailures
}

// ArtworkCacheRequests exposes the listing cache counter.
func ArtworkCacheRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return artworkCacheRequests
}

// Uploads exposes the upload outcome counter.
func Uploads() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsTotal
}

// UploadLatency exposes the upload latency histogram.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatencySeconds
}

// Orders exposes the order transition counter.
func Orders() *prometheus.CounterVec {
	RegisterMetrics()
	return ordersTotal
}

// EventsPublished exposes the broker publish counter.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}

// MessageConnections exposes the websocket connection gauge.
func MessageConnections() prometheus.Gauge {
	RegisterMetrics()
	return messageConnections
}

// MetricsHandler serves the Prometheus scrape endpoint through Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
