// Package telemetry provides application-level observability for the
// inventory admin service.
//
// # Prometheus Metrics Endpoint
//
// All metrics are registered against the default Prometheus registry and are
// automatically available on the side-channel HTTP server started by main.go:
//
//	GET http://<host>:<INV_TELEMETRY_METRICS_PROMETHEUS_PORT>/metrics
//
// Default port: 9090. The endpoint returns data in the Prometheus text
// exposition format and is intended to be scraped by a Prometheus server. It
// is NOT served by the Gin router, so it never competes with user traffic.
//
// # Label Cardinality
//
// HTTP metrics use c.FullPath() (route template such as /cars/:id/edit)
// rather than the raw request URL to prevent unbounded label cardinality from
// user-supplied path segments such as record ids or reset tokens.
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
// Example PromQL queries:
//   - Request rate (req/s, 5 m window):  rate(http_requests_total[5m])
//   - Error rate (%):                    sum(rate(http_requests_total{status=~"5.."}[5m])) / sum(rate(http_requests_total[5m])) * 100
//   - p99 latency per route:             histogram_quantile(0.99, sum by (path, le) (rate(http_request_duration_seconds_bucket[5m])))
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

// Authentication metrics.
//
// LoginAttemptsTotal has a single "outcome" label: "success", "invalid", or
// "rejected" (validation failure before the credential check). A rising
// invalid rate against a flat success rate is a useful credential-stuffing
// signal.
//
// PasswordResetsTotal has a single "stage" label: "requested", "redeemed",
// or "expired".
var (
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of login attempts, by outcome.",
		},
		[]string{"outcome"},
	)

	PasswordResetsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "password_resets_total",
			Help: "Total number of password reset events, by stage.",
		},
		[]string{"stage"},
	)
)

// Upload metrics, labelled by upload kind (profile_photo, vehicle_photo,
// warranty_doc).
//
// Example PromQL queries:
//   - Upload volume per day:  increase(upload_bytes_total[24h])
//   - Rejection ratio:        rate(uploads_rejected_total[1h]) / rate(uploads_total[1h])
var (
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total number of accepted file uploads, by kind.",
		},
		[]string{"kind"},
	)

	UploadsRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uploads_rejected_total",
			Help: "Total number of uploads rejected by policy, by kind.",
		},
		[]string{"kind"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upload_bytes_total",
			Help: "Total bytes of accepted uploads written to storage, by kind.",
		},
		[]string{"kind"},
	)
)

// DBOpenConnections is a Gauge that tracks the number of open connections currently
// held by the sql.DB connection pool. It is sampled every 30 seconds by
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
