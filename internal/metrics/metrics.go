package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the various metrics used for monitoring the application.
// It covers the employee API (requests, latency, generated emails), the storage layer
// and the agent pipeline (runs, stage durations, last successful run).
type Metrics struct {
	HTTPRequests      *prometheus.CounterVec
	HTTPDuration      *prometheus.HistogramVec
	EmailsGenerated   prometheus.Counter
	DBQueryDuration   *prometheus.HistogramVec
	PipelineRuns      *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	StageFailures     *prometheus.CounterVec
	LastSuccessfulRun prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with the provided Registerer.
//
// Parameters:
//   - reg: A prometheus.Registerer used to register the metrics.
//
// Returns:
//   - A pointer to the newly created Metrics instance.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	metrics := &Metrics{
		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scrumagent_http_requests_total",
			Help: "Total number of handled API requests.",
		}, []string{"route", "code"}),
		HTTPDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrumagent_http_request_duration_seconds",
			Help:    "Duration of API requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		EmailsGenerated: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "scrumagent_emails_generated_total",
			Help: "Total number of employee emails that were generated because none was given.",
		}),
		DBQueryDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrumagent_db_query_duration_seconds",
			Help:    "Duration of database queries.",
			Buckets: prometheus.DefBuckets,
		}, []string{"query_type"}), // query_type: 'list_employees', 'save_run'
		PipelineRuns: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scrumagent_pipeline_runs_total",
			Help: "Total times the agent pipeline has completed, successfully or not.",
		}, []string{"status"}),
		StageDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "scrumagent_pipeline_stage_duration_seconds",
			Help:    "Measures how long each pipeline stage takes.",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}, []string{"stage"}),
		StageFailures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "scrumagent_pipeline_stage_failures_total",
			Help: "Total number of failed pipeline stages.",
		}, []string{"stage"}),
		LastSuccessfulRun: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "scrumagent_pipeline_last_successful_run_timestamp",
			Help: "Last time when a pipeline run succeeded",
		}),
	}

	metrics.PipelineRuns.WithLabelValues("success")
	metrics.PipelineRuns.WithLabelValues("failure")

	return metrics
}
