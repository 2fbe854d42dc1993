// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ledger metrics
	MintedUnits      prometheus.Counter
	TransfersTotal   *prometheus.CounterVec
	TransferredUnits *prometheus.CounterVec
	JournalErrors    *prometheus.CounterVec

	// Registry metrics
	ProvidersRegistered prometheus.Counter

	// Scheduler metrics
	JobsSubmitted    prometheus.Counter
	JobEscrowedUnits prometheus.Counter
	JobTransitions   *prometheus.CounterVec

	// Marketplace metrics
	ListingsCreated prometheus.Counter
	ListedUnits     prometheus.Counter
	UnitsSold       prometheus.Counter
	SaleVolume      prometheus.Counter

	// API metrics
	APIRequests *prometheus.CounterVec
	APILatency  *prometheus.HistogramVec

	// Stream metrics
	StreamClients prometheus.Gauge
	StreamDropped prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "quantum_resource_allocation"
	}

	return &Metrics{
		// Ledger metrics
		MintedUnits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "minted_units_total",
			Help:      "Total quantum time units minted",
		}),
		TransfersTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transfers_total",
			Help:      "Total committed transfers by event type",
		}, []string{"event_type"}),
		TransferredUnits: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "transferred_units_total",
			Help:      "Total units moved by event type",
		}, []string{"event_type"}),
		JournalErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ledger",
			Name:      "journal_errors_total",
			Help:      "Total event journal append failures by event type",
		}, []string{"event_type"}),

		// Registry metrics
		ProvidersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "providers_registered_total",
			Help:      "Total hardware providers registered",
		}),

		// Scheduler metrics
		JobsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "jobs_submitted_total",
			Help:      "Total jobs submitted",
		}),
		JobEscrowedUnits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "escrowed_units_total",
			Help:      "Total units escrowed at job submission",
		}),
		JobTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_transitions_total",
			Help:      "Total job status transitions by target status",
		}, []string{"status"}),

		// Marketplace metrics
		ListingsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "listings_created_total",
			Help:      "Total listings created",
		}),
		ListedUnits: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "listed_units_total",
			Help:      "Total units escrowed into listings",
		}),
		UnitsSold: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "units_sold_total",
			Help:      "Total units sold from listings",
		}),
		SaleVolume: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "marketplace",
			Name:      "sale_volume_total",
			Help:      "Total tokens paid for listed units",
		}),

		// API metrics
		APIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests by surface, operation and outcome",
		}, []string{"surface", "operation", "outcome"}),
		APILatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "request_latency_seconds",
			Help:      "API request latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"surface", "operation"}),

		// Stream metrics
		StreamClients: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Current number of connected websocket clients",
		}),
		StreamDropped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "dropped_events_total",
			Help:      "Total events dropped due to slow websocket clients",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordMint increments the minted units counter.
func RecordMint(amount uint64) {
	DefaultMetrics.MintedUnits.Add(float64(amount))
}

// RecordTransfer records a committed transfer by event type.
func RecordTransfer(eventType string, amount uint64) {
	DefaultMetrics.TransfersTotal.WithLabelValues(eventType).Inc()
	DefaultMetrics.TransferredUnits.WithLabelValues(eventType).Add(float64(amount))
}

// RecordJournalError records a failed journal append.
func RecordJournalError(eventType string) {
	DefaultMetrics.JournalErrors.WithLabelValues(eventType).Inc()
}

// RecordProviderRegistered increments the provider registration counter.
func RecordProviderRegistered() {
	DefaultMetrics.ProvidersRegistered.Inc()
}

// RecordJobSubmitted records a submitted job and its escrowed units.
func RecordJobSubmitted(units uint64) {
	DefaultMetrics.JobsSubmitted.Inc()
	DefaultMetrics.JobEscrowedUnits.Add(float64(units))
}

// RecordJobTransition records a job status transition.
func RecordJobTransition(status string) {
	DefaultMetrics.JobTransitions.WithLabelValues(status).Inc()
}

// RecordListingCreated records a created listing and its listed units.
func RecordListingCreated(units uint64) {
	DefaultMetrics.ListingsCreated.Inc()
	DefaultMetrics.ListedUnits.Add(float64(units))
}

// RecordListingSale records a sale of units and its payment volume.
func RecordListingSale(units, payment uint64) {
	DefaultMetrics.UnitsSold.Add(float64(units))
	DefaultMetrics.SaleVolume.Add(float64(payment))
}

// RecordAPIRequest records an API request outcome and latency.
func RecordAPIRequest(surface, operation, outcome string, seconds float64) {
	DefaultMetrics.APIRequests.WithLabelValues(surface, operation, outcome).Inc()
	DefaultMetrics.APILatency.WithLabelValues(surface, operation).Observe(seconds)
}

// SetStreamClients updates the connected websocket client gauge.
func SetStreamClients(n int) {
	DefaultMetrics.StreamClients.Set(float64(n))
}

// RecordStreamDropped records an event dropped for a slow client.
func RecordStreamDropped() {
	DefaultMetrics.StreamDropped.Inc()
}
