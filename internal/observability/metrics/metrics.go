package metrics

import (
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config carries the constant labels applied to every instrument.
type Config struct {
	ServiceName string
	Environment string
}

// AggregationMetrics instruments control-center snapshot builds.
type AggregationMetrics struct {
	snapshotDuration  prometheus.Histogram
	sourceFetchFailed *prometheus.CounterVec
	alertsEmitted     *prometheus.CounterVec
	storeConfigured   prometheus.Gauge
}

var (
	aggregationMetricsOnce sync.Once
	aggregationMetrics     *AggregationMetrics
)

func Aggregation() *AggregationMetrics {
	return AggregationWithConfig(Config{})
}

func AggregationWithConfig(cfg Config) *AggregationMetrics {
	aggregationMetricsOnce.Do(func() {
		aggregationMetrics = newAggregationMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return aggregationMetrics
}

func ResetAggregationMetricsForTest() {
	aggregationMetricsOnce = sync.Once{}
	aggregationMetrics = nil
}

func newAggregationMetrics(registerer prometheus.Registerer, cfg Config) *AggregationMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "voyatra"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	snapshotDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:        "voyatra_control_center_snapshot_seconds",
			Help:        "Wall time spent building one control-center snapshot.",
			Buckets:     []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			ConstLabels: constLabels,
		},
	)

	sourceFetchFailed := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "voyatra_control_center_fetch_failures_total",
			Help:        "Metric source fetches that returned no data due to an error.",
			ConstLabels: constLabels,
		},
		[]string{"table", "reason"}, // reason: schema | transport
	)

	alertsEmitted := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "voyatra_control_center_alerts_total",
			Help:        "Alerts included in snapshots, by severity.",
			ConstLabels: constLabels,
		},
		[]string{"severity"},
	)

	storeConfigured := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "voyatra_control_center_store_configured",
			Help:        "1 when the relational store is configured, 0 otherwise.",
			ConstLabels: constLabels,
		},
	)

	registerer.MustRegister(
		snapshotDuration,
		sourceFetchFailed,
		alertsEmitted,
		storeConfigured,
	)

	return &AggregationMetrics{
		snapshotDuration:  snapshotDuration,
		sourceFetchFailed: sourceFetchFailed,
		alertsEmitted:     alertsEmitted,
		storeConfigured:   storeConfigured,
	}
}

func (m *AggregationMetrics) ObserveSnapshotDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.snapshotDuration.Observe(d.Seconds())
}

func (m *AggregationMetrics) IncFetchFailed(table, reason string) {
	if m == nil {
		return
	}
	m.sourceFetchFailed.WithLabelValues(table, reason).Inc()
}

func (m *AggregationMetrics) IncAlertEmitted(severity string) {
	if m == nil {
		return
	}
	m.alertsEmitted.WithLabelValues(severity).Inc()
}

func (m *AggregationMetrics) SetStoreConfigured(configured bool) {
	if m == nil {
		return
	}
	if configured {
		m.storeConfigured.Set(1)
		return
	}
	m.storeConfigured.Set(0)
}
