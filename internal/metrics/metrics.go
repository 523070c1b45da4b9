package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Enrichment outcomes
const (
	OutcomeSkippedNoIP     = "skipped_no_ip"
	OutcomeSkippedDisabled = "skipped_disabled"
	OutcomeNoMatch         = "no_match"
	OutcomeEventOnly       = "event_only"
	OutcomePersonUpdated   = "person_updated"
	OutcomeError           = "error"
)

// Metrics provides observability for geo enrichment.
type Metrics struct {
	EnrichOutcome *prometheus.CounterVec

	LookupLatency prometheus.Histogram

	// Batches written by the consumer, by result: "inserted", "failed"
	BatchWrites *prometheus.CounterVec
}

// New registers all enrichment metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EnrichOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geoip_enrich_outcomes_total",
			Help: "Total enrichment outcomes by result",
		}, []string{"outcome"}),

		LookupLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "geoip_lookup_duration_seconds",
			Help:    "Duration of geo database lookups",
			Buckets: []float64{0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01},
		}),

		BatchWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "geoip_consumer_batch_writes_total",
			Help: "Total event batches written to storage by result",
		}, []string{"result"}),
	}
}

// IncrementOutcome records an enrichment outcome.
func (m *Metrics) IncrementOutcome(outcome string) {
	if m != nil {
		m.EnrichOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObserveLookupLatency records the duration of one geo lookup.
func (m *Metrics) ObserveLookupLatency(d time.Duration) {
	if m != nil {
		m.LookupLatency.Observe(d.Seconds())
	}
}

// IncrementBatchWrite records a batch write result.
func (m *Metrics) IncrementBatchWrite(result string) {
	if m != nil {
		m.BatchWrites.WithLabelValues(result).Inc()
	}
}
