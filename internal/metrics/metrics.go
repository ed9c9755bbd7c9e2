package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tier change paths
const (
	PathIncremental = "incremental"
	PathBatch       = "batch"
	PathCreate      = "create"
)

var (
	// RecordTransactionDuration tracks the latency of recording a transaction,
	// including the tier re-evaluation that runs in the same database transaction
	RecordTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "loyalty_record_transaction_duration_seconds",
			Help: "Duration of transaction recording requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
			},
		},
		[]string{"status"}, // success or failure
	)

	// TierChanges counts assignments that moved a customer to a different tier
	TierChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_tier_changes_total",
			Help: "Number of tier assignment changes by trigger path",
		},
		[]string{"path"},
	)

	// ReassessmentRuns counts batch reassessment runs by outcome
	ReassessmentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_reassessment_runs_total",
			Help: "Number of batch reassessment runs",
		},
		[]string{"status"}, // success, partial or failure
	)

	// ReassessmentCustomers counts customers visited by batch runs
	ReassessmentCustomers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loyalty_reassessment_customers_total",
			Help: "Customers visited by batch reassessment",
		},
		[]string{"result"}, // unchanged, changed or failed
	)

	// ReassessmentDuration tracks how long a full batch run takes
	ReassessmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "loyalty_reassessment_duration_seconds",
			Help:    "Duration of batch reassessment runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 4, 8), // 100ms .. ~27m
		},
	)
)

// RecordTransactionLatency records the duration of a transaction recording request
func RecordTransactionLatency(status string, duration float64) {
	RecordTransactionDuration.WithLabelValues(status).Observe(duration)
}

// RecordTierChange counts one tier change on the given path
func RecordTierChange(path string) {
	TierChanges.WithLabelValues(path).Inc()
}

// RecordReassessment records the outcome of one batch run
func RecordReassessment(status string, duration float64, changed, unchanged, failed int) {
	ReassessmentRuns.WithLabelValues(status).Inc()
	ReassessmentDuration.Observe(duration)
	ReassessmentCustomers.WithLabelValues("changed").Add(float64(changed))
	ReassessmentCustomers.WithLabelValues("unchanged").Add(float64(unchanged))
	ReassessmentCustomers.WithLabelValues("failed").Add(float64(failed))
}
