// Package metrics exposes Prometheus metrics for rate synchronization.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync run outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)

// SyncMetrics holds the counters and gauges for sync runs. A nil *SyncMetrics records nothing.
type SyncMetrics struct {
	RunsTotal         *prometheus.CounterVec
	FeedFallbackTotal prometheus.Counter
	RecordsTotal      *prometheus.CounterVec
	RunDuration       prometheus.Histogram
	LastSuccess       prometheus.Gauge
}

// NewSyncMetrics registers the sync metrics on reg.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	f := promauto.With(reg)
	return &SyncMetrics{
		RunsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_sync_runs_total",
				Help: "Number of rate sync runs by outcome",
			},
			[]string{"trigger", "outcome"},
		),
		FeedFallbackTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "rates_feed_fallback_total",
				Help: "Number of sync runs that used fallback rates",
			},
		),
		RecordsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_sync_records_total",
				Help: "Rate records handled by the reconciler by result",
			},
			[]string{"result"},
		),
		RunDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rates_sync_duration_seconds",
				Help:    "Duration of rate sync runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
			},
		),
		LastSuccess: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "rates_sync_last_success_timestamp_seconds",
				Help: "Unix time of the last sync run that persisted records",
			},
		),
	}
}

// RecordRun records one finished run.
func (m *SyncMetrics) RecordRun(trigger, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(trigger, outcome).Inc()
	m.RunDuration.Observe(d.Seconds())
	if outcome == OutcomeFallback {
		m.FeedFallbackTotal.Inc()
	}
}

// RecordRecords adds the per-record reconcile results.
func (m *SyncMetrics) RecordRecords(persisted, failed int) {
	if m == nil {
		return
	}
	m.RecordsTotal.WithLabelValues("persisted").Add(float64(persisted))
	m.RecordsTotal.WithLabelValues("failed").Add(float64(failed))
	if persisted > 0 {
		m.LastSuccess.SetToCurrentTime()
	}
}
