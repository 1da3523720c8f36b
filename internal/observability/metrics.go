package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	requestsTotal        *prometheus.CounterVec
	latencySeconds       *prometheus.HistogramVec
	errorsTotal          *prometheus.CounterVec
	evaluationsTotal     *prometheus.CounterVec
	alertsCreatedTotal   *prometheus.CounterVec
	notifyFailuresTotal  prometheus.Counter
	sweepStudentFailures prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tahfiz_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tahfiz_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tahfiz_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tahfiz_evaluations_total",
			Help: "Total number of student evaluations by outcome tier.",
		}, []string{"tier"})

		alertsCreatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tahfiz_alerts_created_total",
			Help: "Total number of curriculum alerts created by type.",
		}, []string{"alert_type", "priority"})

		notifyFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tahfiz_notification_failures_total",
			Help: "Total number of notification deliveries that failed.",
		})

		sweepStudentFailures = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tahfiz_sweep_student_failures_total",
			Help: "Total number of per-student failures during batch evaluation sweeps.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal,
			evaluationsTotal, alertsCreatedTotal, notifyFailuresTotal, sweepStudentFailures)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for API error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// Evaluations exposes the counter for student evaluations.
func Evaluations() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// AlertsCreated exposes the counter for created alerts.
func AlertsCreated() *prometheus.CounterVec {
	RegisterMetrics()
	return alertsCreatedTotal
}

// NotificationFailures exposes the counter for failed notification deliveries.
func NotificationFailures() prometheus.Counter {
	RegisterMetrics()
	return notifyFailuresTotal
}

// SweepFailures exposes the counter for per-student sweep failures.
func SweepFailures() prometheus.Counter {
	RegisterMetrics()
	return sweepStudentFailures
}
