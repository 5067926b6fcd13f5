// Package metrics holds the Prometheus collectors for the ledger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardledger_operations_total",
		Help: "Ledger operations by component, operation, and result kind.",
	}, []string{"component", "operation", "result"})

	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardledger_requests_total",
		Help: "Total HTTP requests by method, path, and response status.",
	}, []string{"method", "path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cardledger_request_duration_seconds",
		Help:    "Request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	journalEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cardledger_journal_entries_total",
		Help: "Total audit journal entries appended.",
	})

	eventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cardledger_events_published_total",
		Help: "Event publish attempts by outcome.",
	}, []string{"status"})
)

// RecordOperation counts one ledger operation. result is "ok" or the error kind.
func RecordOperation(component, operation, result string) {
	operationsTotal.WithLabelValues(component, operation, result).Inc()
}

// RecordRequest records one served HTTP request.
func RecordRequest(method, path, status string, seconds float64) {
	requestsTotal.WithLabelValues(method, path, status).Inc()
	requestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordJournalAppend records an audit journal append.
func RecordJournalAppend() {
	journalEntriesTotal.Inc()
}

// RecordEventPublish records an event publish attempt.
func RecordEventPublish(success bool) {
	if success {
		eventsPublishedTotal.WithLabelValues("success").Inc()
	} else {
		eventsPublishedTotal.WithLabelValues("failure").Inc()
	}
}

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

var healthChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cardledger_health_checks_total",
	Help: "Readiness probe runs by probe and outcome.",
}, []string{"probe", "result"})

// RecordHealthCheck records the outcome of one readiness probe.
func RecordHealthCheck(probe string, success bool) {
	result := "success"
	if !success {
		result = "failure"
	}
	healthChecksTotal.WithLabelValues(probe, result).Inc()
}

var webhookDeliveriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cardledger_webhook_deliveries_total",
	Help: "Webhook delivery attempts by outcome.",
}, []string{"status"})

// RecordWebhookDelivery records a webhook delivery attempt.
func RecordWebhookDelivery(success bool) {
	if success {
		webhookDeliveriesTotal.WithLabelValues("success").Inc()
	} else {
		webhookDeliveriesTotal.WithLabelValues("failure").Inc()
	}
}
