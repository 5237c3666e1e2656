package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Billing pipeline metrics
	BillingGenerated        prometheus.Counter
	BillingFailed           *prometheus.CounterVec
	BillingPipelineDuration prometheus.Histogram

	// Insurance submission metrics
	InsuranceSubmissions *prometheus.CounterVec
	InsuranceLatency     prometheus.Histogram

	// Audit metrics
	AuditEntriesWritten prometheus.Counter
	AuditEntriesSkipped prometheus.Counter

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
	DatabaseLatency    *prometheus.HistogramVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		BillingGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_summaries_generated_total",
			Help:      "Total number of billing summaries persisted",
		}),
		BillingFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "billing_generation_failures_total",
			Help:      "Total number of billing generation failures",
		}, []string{"reason"}),
		BillingPipelineDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "billing_pipeline_duration_seconds",
			Help:      "Time spent running the billing generation pipeline",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
		InsuranceSubmissions: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "insurance_submissions_total",
			Help:      "Total number of insurance submissions by outcome",
		}, []string{"outcome"}),
		InsuranceLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "insurance_submission_duration_seconds",
			Help:      "Duration of insurance submissions",
			Buckets:   []float64{.1, .25, .5, 1, 2, 3, 5},
		}),
		AuditEntriesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_written_total",
			Help:      "Total number of audit log entries written",
		}),
		AuditEntriesSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_entries_skipped_total",
			Help:      "Total number of audit entries skipped for unknown users",
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
		DatabaseLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "database_operation_duration_seconds",
			Help:      "Duration of database operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
	}
}
