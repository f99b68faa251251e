// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PairsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_pairs_scored_total",
			Help: "Total number of dyads scored across all runs",
		},
	)

	PairsEligible = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_pairs_eligible_total",
			Help: "Total number of dyads that passed eligibility filtering",
		},
	)

	DyadErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engine_dyad_errors_total",
			Help: "Total number of dyads whose scoring failed and was isolated",
		},
	)

	MalformedResponses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engine_malformed_responses_total",
			Help: "Responses whose shape did not match the question type",
		},
		[]string{"question_id"},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "engine_phase_duration_seconds",
			Help: "Duration of each pipeline phase in seconds",
		},
		[]string{"phase"},
	)

	PairScoreDistribution = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engine_pair_score",
			Help:    "Distribution of symmetric pair scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	UsersMatched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_users_matched",
			Help: "Number of users matched in the most recent run",
		},
	)

	UsersUnmatched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "engine_users_unmatched",
			Help: "Number of users left unmatched in the most recent run",
		},
	)
)
