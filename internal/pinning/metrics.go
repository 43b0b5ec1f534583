package pinning

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the Prometheus collectors the splicer updates on its hot
// path. They exist purely for observability of the data-plane anomalies
// the spec says must never be surfaced as errors (MissingDocument,
// PositionConflict) plus basic throughput/latency of the splice itself.
type Metrics struct {
	MatchedRulesTotal         prometheus.Counter
	PromotionsConsideredTotal prometheus.Counter
	MissingDocumentTotal      prometheus.Counter
	PositionConflictTotal     prometheus.Counter
	SpliceDuration            prometheus.Histogram
}

// NewMetrics creates and registers the pinning subsystem's collectors
// against reg. Passing prometheus.NewRegistry() isolates a set of
// collectors for tests; passing prometheus.DefaultRegisterer wires them
// into the process-wide /metrics endpoint, as cmd/pindemo does.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MatchedRulesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinning_matched_rules_total",
			Help: "Total number of pinning rules that matched a query across all splices.",
		}),
		PromotionsConsideredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinning_promotions_considered_total",
			Help: "Total number of promotions walked during conflict resolution.",
		}),
		MissingDocumentTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinning_missing_document_total",
			Help: "Total promotions silently dropped because their doc_id could not be resolved to an internal id.",
		}),
		PositionConflictTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pinning_position_conflict_total",
			Help: "Total promotions silently dropped because their position was already claimed.",
		}),
		SpliceDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pinning_splice_duration_seconds",
			Help:    "Wall-clock time spent in ApplyPinningRules.",
			Buckets: prometheus.ExponentialBuckets(0.0000025, 2, 14),
		}),
	}

	reg.MustRegister(
		m.MatchedRulesTotal,
		m.PromotionsConsideredTotal,
		m.MissingDocumentTotal,
		m.PositionConflictTotal,
		m.SpliceDuration,
	)

	return m
}
