// Package metrics holds the Prometheus collectors of the API.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "biztime",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biztime",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "biztime",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	paymentChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biztime",
			Subsystem: "invoices",
			Name:      "payment_updates_total",
			Help:      "Invoice updates by payment change (unchanged, settled, reopened).",
		},
		[]string{"change"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biztime",
			Subsystem: "events",
			Name:      "published_total",
			Help:      "Domain events handed to the broker.",
		},
		[]string{"type", "success"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		paymentChanges,
		eventsPublished,
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted increments the in-flight gauge and returns a func that
// records the finished request.
func RequestStarted() func(method, path, status string, d time.Duration) {
	httpInFlight.Inc()
	return func(method, path, status string, d time.Duration) {
		httpInFlight.Dec()
		httpRequests.WithLabelValues(method, path, status).Inc()
		httpDuration.WithLabelValues(method, path).Observe(d.Seconds())
	}
}

// RecordPaymentChange counts one invoice update by its payment change.
func RecordPaymentChange(change string) {
	paymentChanges.WithLabelValues(change).Inc()
}

// RecordEventPublished counts one publish attempt.
func RecordEventPublished(eventType string, err error) {
	success := "true"
	if err != nil {
		success = "false"
	}
	eventsPublished.WithLabelValues(eventType, success).Inc()
}
