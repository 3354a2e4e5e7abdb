package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpLatencySeconds    *prometheus.HistogramVec
	httpErrorsTotal       *prometheus.CounterVec
	submissionsTotal      *prometheus.CounterVec
	ledgerOperationsTotal *prometheus.CounterVec
	reputationTotal       *prometheus.CounterVec
)

// Submission outcome labels.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeAdvisory = "advisory"
	OutcomeFailed   = "failed"
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casechain",
			Name:      "http_requests_total",
			Help:      "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "casechain",
			Name:      "http_latency_seconds",
			Help:      "Latency distribution for API requests.",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 15.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casechain",
			Name:      "http_errors_total",
			Help:      "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casechain",
			Name:      "submissions_total",
			Help:      "Evaluated submissions by category and outcome.",
		}, []string{"category", "outcome"})

		ledgerOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casechain",
			Name:      "ledger_operations_total",
			Help:      "Ledger writes by operation and result.",
		}, []string{"operation", "result"})

		reputationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casechain",
			Name:      "reputation_updates_total",
			Help:      "Reputation updates by result.",
		}, []string{"result"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal, submissionsTotal, ledgerOperationsTotal, reputationTotal)
	})
}

// MetricsHandler serves the Prometheus scrape endpoint through fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// RecordSubmission counts one evaluated submission.
func RecordSubmission(category, outcome string) {
	RegisterMetrics()
	submissionsTotal.WithLabelValues(category, outcome).Inc()
}

// RecordLedgerOperation counts one ledger write.
func RecordLedgerOperation(operation string, err error) {
	RegisterMetrics()
	ledgerOperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
}

// RecordReputationUpdate counts one reputation update attempt.
func RecordReputationUpdate(err error) {
	RegisterMetrics()
	reputationTotal.WithLabelValues(resultLabel(err)).Inc()
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
