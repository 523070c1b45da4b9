package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncrementOutcome(OutcomePersonUpdated)
		m.ObserveLookupLatency(time.Millisecond)
		m.IncrementBatchWrite("inserted")
	})
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncrementOutcome(OutcomeEventOnly)
	m.IncrementOutcome(OutcomeEventOnly)
	m.IncrementOutcome(OutcomeNoMatch)
	m.ObserveLookupLatency(200 * time.Microsecond)
	m.IncrementBatchWrite("failed")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.EnrichOutcome.WithLabelValues(OutcomeEventOnly)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.EnrichOutcome.WithLabelValues(OutcomeNoMatch)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.BatchWrites.WithLabelValues("failed")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.LookupLatency))
}
