package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	TasksInFlight       prometheus.Gauge
	DomainsTotal        *prometheus.CounterVec
	DomainDuration      prometheus.Histogram
	AntiBotDetections   *prometheus.CounterVec
	ProfilesDiscovered  *prometheus.CounterVec
)

var initOnce sync.Once

// Init registers all collectors. Safe to call more than once; only the first
// call registers.
func Init() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	TasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "domain_tasks_in_flight",
			Help: "Number of domain tasks currently being processed.",
		},
	)

	DomainsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domains_processed_total",
			Help: "Total number of domain tasks driven to a terminal state.",
		},
		[]string{"status", "error_type"}, // status: success, failed
	)

	DomainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "domain_processing_duration_seconds",
			Help:    "End-to-end processing duration per domain.",
			Buckets: []float64{5, 15, 30, 60, 120, 180, 300},
		},
	)

	AntiBotDetections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "antibot_detections_total",
			Help: "Anti-bot challenges observed during profile search.",
		},
		[]string{"platform", "outcome"}, // outcome: resolved, aborted
	)

	ProfilesDiscovered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "executive_profiles_discovered_total",
			Help: "Executive profiles discovered per platform.",
		},
		[]string{"platform"},
	)
}
