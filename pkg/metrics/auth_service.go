package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuthMetrics contains Prometheus metrics for account registration, login,
// and session-token handling shared by the lobby and developer listeners.
type AuthMetrics struct {
	LoginAttemptsTotal *prometheus.CounterVec
	LoginDuration      *prometheus.HistogramVec
	LoginFailuresTotal *prometheus.CounterVec

	TokensIssuedTotal     *prometheus.CounterVec
	TokenValidationsTotal *prometheus.CounterVec

	RegistrationsTotal *prometheus.CounterVec
	LogoutsTotal       *prometheus.CounterVec
	ActiveSessions     *prometheus.GaugeVec
}

// NewAuthMetrics creates and registers the auth metrics.
func NewAuthMetrics(namespace string) *AuthMetrics {
	return &AuthMetrics{
		LoginAttemptsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_attempts_total",
			Help:      "Total number of login attempts",
		}, []string{"principal", "status"}),
		LoginDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_duration_seconds",
			Help:      "Login operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"principal"}),
		LoginFailuresTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "login_failures_total",
			Help:      "Total number of login failures",
		}, []string{"principal", "reason"}),

		TokensIssuedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Total number of session tokens issued",
		}, []string{"principal"}),
		TokenValidationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "token_validations_total",
			Help:      "Total number of session token validations",
		}, []string{"principal", "status"}),

		RegistrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "registrations_total",
			Help:      "Total number of account registrations",
		}, []string{"principal", "status"}),
		LogoutsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "logouts_total",
			Help:      "Total number of logouts",
		}, []string{"principal"}),
		ActiveSessions: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "active_sessions",
			Help:      "Number of currently active sessions",
		}, []string{"principal"}),
	}
}
