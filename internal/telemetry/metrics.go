// Package telemetry provides application-level observability for the Eastern
// ERP backend.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http(s)://<host>:<EERP_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090.  The endpoint returns data in the Prometheus text
// exposition format and is intended to be scraped by a Prometheus server every
// 15–60 seconds.  It is NOT served by the Gin router.
//
// # Metric Groups
//
//   - HTTP request counters and latency histograms (labelled by route template, not raw URL)
//   - Audit lifecycle counters (submissions, save conflicts)
//   - Evidence upload counters
//   - Stale draft gauge (updated by the stale-draft notifier job)
//   - Database connection pool gauge (polled every 30 s)
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /api/v1/audits/:id)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as audit IDs.
package telemetry

import (
	"database/sql"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics, labelled by method, route template, and status code.
//
// HTTPRequestsTotal is a CounterVec with labels {method, path, status}.
// The path label holds the Gin route template, NOT the raw URL.
//
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//
// HTTPRequestDuration is a HistogramVec with labels {method, path} and
// exponential-ish buckets from 5 ms to 30 s.
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests processed, by method, route template, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, by method and route template.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)
)

// Audit lifecycle metrics.
//
// AuditsSubmittedTotal is a CounterVec with labels {company, template}. The
// company label is bounded by the configured entity list and the template
// label by the checklist template registry, so cardinality stays small.
//
// Example PromQL queries:
//   - Submissions per week by company:  increase(audits_submitted_total[7d])
//
// AuditSaveConflictsTotal counts saves rejected because another save for the
// same audit was still in flight, or because the stored audit was already
// submitted.  A sustained nonzero rate usually means users are double-clicking
// save on a slow connection.
var (
	AuditsSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audits_submitted_total",
			Help: "Total number of compliance audits submitted, by company and template.",
		},
		[]string{"company", "template"},
	)

	AuditSaveConflictsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_save_conflicts_total",
			Help: "Total number of audit saves rejected due to concurrency or lifecycle conflicts, by reason.",
		},
		[]string{"reason"},
	)
)

// EvidenceUploadsTotal is a CounterVec with label {status} ("success",
// "rejected" or "error") incremented once per evidence image upload attempt.
//
// Example PromQL queries:
//   - Upload failure rate:  rate(evidence_uploads_total{status="error"}[1h])
var EvidenceUploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "evidence_uploads_total",
		Help: "Total number of evidence image upload attempts, by outcome.",
	},
	[]string{"status"},
)

// StaleDraftsGauge holds the number of draft audits untouched for longer than
// the configured threshold, as counted by the stale-draft notifier job on its
// last run.
var StaleDraftsGauge = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "stale_draft_audits",
		Help: "Number of draft audits idle past the configured staleness threshold.",
	},
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool.  It is sampled every 30 seconds by
// StartDBStatsCollector rather than per-request to avoid the overhead of sql.DB.Stats().
var DBOpenConnections = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "db_open_connections",
		Help: "Current number of open database connections in the pool.",
	},
)

// StartDBStatsCollector launches a background goroutine that samples sql.DB connection
// pool statistics every 30 seconds and updates the DBOpenConnections gauge.
// The goroutine exits cleanly when the database becomes unreachable (db.Ping fails),
// which happens automatically when the application shuts down and defers db.Close().
//
// Call this once, immediately after db.Connect() succeeds in main.go:
//
//	telemetry.StartDBStatsCollector(database)
func StartDBStatsCollector(db *sql.DB) {
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			if err := db.Ping(); err != nil {
				slog.Warn("db stats collector: database unreachable, stopping collector", "error", err)
				return
			}
			DBOpenConnections.Set(float64(db.Stats().OpenConnections))
		}
	}()
}
