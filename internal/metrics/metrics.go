// Package metrics exposes Prometheus instrumentation for the web app and the
// sync workers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	BillsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financas_bills_created_total",
		Help: "Bills added through the web UI.",
	})

	BillStatusChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financas_bill_status_changes_total",
		Help: "Bill status transitions by target status.",
	}, []string{"status"})

	TransactionsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financas_transactions_deleted_total",
		Help: "Transactions removed through the web UI.",
	})

	TransactionsUpdated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financas_transactions_updated_total",
		Help: "Transactions edited through the web UI.",
	})

	SyncPushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financas_sync_pushes_total",
		Help: "Local rows pushed to the hosted backend, by outcome.",
	}, []string{"outcome"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "financas_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "financas_cache_requests_total",
		Help: "Month-bill cache lookups, by result.",
	}, []string{"result"})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financas_rate_limit_rejections_total",
		Help: "Mutating requests rejected by the rate limiter.",
	})

	SuspiciousRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "financas_suspicious_requests_total",
		Help: "Requests matching probe patterns.",
	})
)

// Handler serves the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
