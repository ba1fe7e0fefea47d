package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregationMetrics_Instruments(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := newAggregationMetrics(registry, Config{ServiceName: "voyatra", Environment: "test"})

	m.ObserveSnapshotDuration(120 * time.Millisecond)
	m.IncFetchFailed("payments", "schema")
	m.IncFetchFailed("payments", "schema")
	m.IncFetchFailed("event_logs", "transport")
	m.IncAlertEmitted("error")
	m.SetStoreConfigured(true)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.sourceFetchFailed.WithLabelValues("payments", "schema")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.sourceFetchFailed.WithLabelValues("event_logs", "transport")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.alertsEmitted.WithLabelValues("error")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.storeConfigured), 0.001)

	m.SetStoreConfigured(false)
	assert.InDelta(t, 0.0, testutil.ToFloat64(m.storeConfigured), 0.001)

	families, err := registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestAggregationMetrics_NilSafe(t *testing.T) {
	var m *AggregationMetrics
	assert.NotPanics(t, func() {
		m.ObserveSnapshotDuration(time.Second)
		m.IncFetchFailed("t", "schema")
		m.IncAlertEmitted("warn")
		m.SetStoreConfigured(true)
	})
}

func TestAggregation_Singleton(t *testing.T) {
	ResetAggregationMetricsForTest()
	t.Cleanup(ResetAggregationMetricsForTest)

	registry := prometheus.NewRegistry()
	aggregationMetricsOnce.Do(func() {
		aggregationMetrics = newAggregationMetrics(registry, Config{})
	})

	first := Aggregation()
	second := Aggregation()
	assert.Same(t, first, second)
}
