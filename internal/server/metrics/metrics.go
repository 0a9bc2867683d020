// Package metrics holds the Prometheus collectors of the patrimonio server
// and the HTTP middleware that feeds them.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcomes recorded by AuthAttemptsTotal.
const (
	OutcomeBypass         = "bypass"
	OutcomeMissingHeader  = "missing_header"
	OutcomeMalformed      = "malformed"
	OutcomeUnknownSubject = "unknown_subject"
	OutcomeDirectoryError = "directory_error"
	OutcomeInvalid        = "invalid"
	OutcomeAuthenticated  = "authenticated"
)

var (
	// AuthAttemptsTotal counts gate evaluations by outcome.
	AuthAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patrimonio_auth_attempts_total",
			Help: "Authentication attempts by outcome",
		},
		[]string{"outcome"},
	)

	// LoginsTotal counts login and registration calls by result.
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patrimonio_logins_total",
			Help: "Login and registration calls",
		},
		[]string{"action", "result"},
	)

	// RequestsTotal counts HTTP requests by method, route pattern and status class.
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patrimonio_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration records HTTP request duration in seconds.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "patrimonio_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// ExportsTotal counts CSV exports by result.
	ExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "patrimonio_exports_total",
			Help: "CSV exports",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		AuthAttemptsTotal,
		LoginsTotal,
		RequestsTotal,
		RequestDuration,
		ExportsTotal,
	)
}
