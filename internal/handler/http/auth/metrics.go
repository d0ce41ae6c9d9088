package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// authRequestsTotal counts authentication requests by scheme and result.
	authRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_requests_total",
			Help: "Total authentication requests by scheme and result",
		},
		[]string{"scheme", "result"}, // result: success | failure
	)

	// authDuration tracks authentication duration by scheme.
	authDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "auth_duration_seconds",
			Help:    "Authentication duration by scheme",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
		[]string{"scheme"},
	)

	// rejectedAttempts counts rejected requests by scheme and method.
	rejectedAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_rejected_attempts_total",
			Help: "Rejected authentication attempts by scheme and method",
		},
		[]string{"scheme", "method"},
	)
)

// RecordAuthRequest records an authentication request.
func RecordAuthRequest(scheme, result string) {
	authRequestsTotal.WithLabelValues(scheme, result).Inc()
}

// RecordAuthDuration records authentication duration.
func RecordAuthDuration(scheme string, durationSeconds float64) {
	authDuration.WithLabelValues(scheme).Observe(durationSeconds)
}

// RecordRejectedAttempt records a rejected authentication attempt.
func RecordRejectedAttempt(scheme, method string) {
	rejectedAttempts.WithLabelValues(scheme, method).Inc()
}
