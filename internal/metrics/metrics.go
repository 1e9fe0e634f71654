package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Batch phases.
const (
	PhasePair  = "pair"
	PhaseToken = "token"
)

// Metrics holds the collectors exported by the pair fetch pipeline.
type Metrics struct {
	FetchTotal         *prometheus.CounterVec
	BatchDuration      *prometheus.HistogramVec
	BatchFailures      *prometheus.CounterVec
	TokenFieldFallback *prometheus.CounterVec
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered, which is what tests usually want.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pair_explorer",
			Name:      "pair_fetch_total",
			Help:      "Pair fetches by outcome and error kind.",
		}, []string{"outcome", "kind"}),
		BatchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pair_explorer",
			Name:      "multicall_batch_duration_seconds",
			Help:      "Duration of one aggregated multicall batch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"phase"}),
		BatchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pair_explorer",
			Name:      "multicall_batch_failures_total",
			Help:      "Failed multicall batches by phase.",
		}, []string{"phase"}),
		TokenFieldFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pair_explorer",
			Name:      "token_metadata_fallback_total",
			Help:      "Token metadata fields replaced by their default value.",
		}, []string{"field"}),
	}

	if reg == nil {
		return m, nil
	}

	for _, c := range []prometheus.Collector{m.FetchTotal, m.BatchDuration, m.BatchFailures, m.TokenFieldFallback} {
		if err := reg.Register(c); err != nil {
			return nil, errors.Wrap(err, "reg.Register")
		}
	}
	return m, nil
}

// NewNop returns unregistered collectors.
func NewNop() *Metrics {
	m, _ := New(nil)
	return m
}
