package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// WorkerMetrics records parse job telemetry. It satisfies ports.JobObserver.
type WorkerMetrics struct {
	registry *prometheus.Registry
	service  string

	jobsTotal    *prometheus.CounterVec
	jobDuration  *prometheus.HistogramVec
	jobsInFlight prometheus.Gauge
	queueLag     *prometheus.HistogramVec
	jobAttempts  *prometheus.HistogramVec
	confidence   *prometheus.HistogramVec
	retriesTotal *prometheus.CounterVec
}

func NewWorkerMetrics(service string) *WorkerMetrics {
	registry := prometheus.NewRegistry()

	jobsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "jobs_total",
			Help:      "Total finished parse jobs by outcome.",
		},
		[]string{"service", "status"},
	)
	jobDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "job_duration_seconds",
			Help:      "Parse job duration in seconds by outcome, retries included.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "status"},
	)
	jobsInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "jobs_in_flight",
			Help:      "Number of parse jobs currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queueLag := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "queue_lag_seconds",
			Help:      "Delay between job creation and claim.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service"},
	)
	jobAttempts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "job_attempts",
			Help:      "Attempts used per finished job.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		},
		[]string{"service", "status"},
	)
	confidence := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "confidence",
			Help:      "Confidence score of stored results.",
			Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.9, 1},
		},
		[]string{"service"},
	)
	retriesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "resume_parser",
			Subsystem: "worker",
			Name:      "retries_total",
			Help:      "Failed attempts that were scheduled for retry, by operation.",
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(jobsTotal, jobDuration, jobsInFlight, queueLag, jobAttempts, confidence, retriesTotal)

	return &WorkerMetrics{
		registry:     registry,
		service:      service,
		jobsTotal:    jobsTotal,
		jobDuration:  jobDuration,
		jobsInFlight: jobsInFlight,
		queueLag:     queueLag,
		jobAttempts:  jobAttempts,
		confidence:   confidence,
		retriesTotal: retriesTotal,
	}
}

func (m *WorkerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *WorkerMetrics) StartJob() {
	m.jobsInFlight.Inc()
}

func (m *WorkerMetrics) FinishJob(status string, duration time.Duration, attempts int) {
	m.jobsInFlight.Dec()

	if status == "" {
		status = "unknown"
	}
	m.jobsTotal.WithLabelValues(m.service, status).Inc()
	m.jobDuration.WithLabelValues(m.service, status).Observe(duration.Seconds())
	if attempts > 0 {
		m.jobAttempts.WithLabelValues(m.service, status).Observe(float64(attempts))
	}
}

func (m *WorkerMetrics) ObserveQueueLag(lag time.Duration) {
	if lag < 0 {
		return
	}
	m.queueLag.WithLabelValues(m.service).Observe(lag.Seconds())
}

func (m *WorkerMetrics) ObserveConfidence(score float64) {
	m.confidence.WithLabelValues(m.service).Observe(score)
}

func (m *WorkerMetrics) RecordRetry(operation string) {
	if operation == "" {
		operation = "unknown"
	}
	m.retriesTotal.WithLabelValues(m.service, operation).Inc()
}
