// Package chanmetrics instruments one analyzer instance with Prometheus
// metrics: gauges for each layer's current length, counters for revocation
// and bsp-emission events, and a histogram for AddBar latency.
//
// Each analyzer owns a private *prometheus.Registry (instead of registering
// into the global default registry) so that many concurrent analyzer
// instances — one per symbol, per the concurrency model — never collide on
// metric name registration.
package chanmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all per-analyzer Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	BarsTotal    prometheus.Counter
	AddBarDur    prometheus.Histogram
	InvalidBars  prometheus.Counter
	InvariantErr prometheus.Counter

	CandleCount prometheus.Gauge
	BiCount     prometheus.Gauge
	SegCount    prometheus.Gauge
	SegSegCount prometheus.Gauge
	BiZsCount   prometheus.Gauge
	SegZsCount  prometheus.Gauge
	BiBspCount  prometheus.Gauge
	SegBspCount prometheus.Gauge

	BiRevocations prometheus.Counter

	BspEmitted *prometheus.CounterVec // labels: kind, is_buy
}

// New creates and registers a fresh Metrics set for one analyzer instance.
// namespace is typically the symbol/instrument name and is used as a label
// rather than baked into metric names, so dashboards can aggregate across
// instruments.
func New(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	constLabels := prometheus.Labels{"symbol": namespace}

	m := &Metrics{
		Registry: reg,
		BarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "chan_bars_total",
			Help:        "Total bars appended to the analyzer.",
			ConstLabels: constLabels,
		}),
		AddBarDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "chan_add_bar_duration_seconds",
			Help:        "Latency of a single AddBar call.",
			Buckets:     []float64{0.000001, 0.000005, 0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005},
			ConstLabels: constLabels,
		}),
		InvalidBars: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "chan_invalid_bars_total",
			Help:        "Bars rejected for non-monotone timestamps or non-finite prices.",
			ConstLabels: constLabels,
		}),
		InvariantErr: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "chan_internal_invariant_errors_total",
			Help:        "AddBar calls aborted due to a broken internal invariant.",
			ConstLabels: constLabels,
		}),
		CandleCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_candle_count", Help: "Current merged-candle list length.", ConstLabels: constLabels,
		}),
		BiCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_bi_count", Help: "Current stroke list length.", ConstLabels: constLabels,
		}),
		SegCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_seg_count", Help: "Current segment list length.", ConstLabels: constLabels,
		}),
		SegSegCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_seg_seg_count", Help: "Current seg-of-seg list length.", ConstLabels: constLabels,
		}),
		BiZsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_bi_zs_count", Help: "Current stroke-level zone list length.", ConstLabels: constLabels,
		}),
		SegZsCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_seg_zs_count", Help: "Current segment-level zone list length.", ConstLabels: constLabels,
		}),
		BiBspCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_bi_bsp_count", Help: "Current stroke-level bsp list length.", ConstLabels: constLabels,
		}),
		SegBspCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chan_seg_bsp_count", Help: "Current segment-level bsp list length.", ConstLabels: constLabels,
		}),
		BiRevocations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chan_bi_revocations_total", Help: "Tentative strokes discarded.", ConstLabels: constLabels,
		}),
		BspEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chan_bsp_emitted_total", Help: "BS-points emitted, by type.", ConstLabels: constLabels,
		}, []string{"kind", "is_buy"}),
	}

	reg.MustRegister(
		m.BarsTotal, m.AddBarDur, m.InvalidBars, m.InvariantErr,
		m.CandleCount, m.BiCount, m.SegCount, m.SegSegCount,
		m.BiZsCount, m.SegZsCount, m.BiBspCount, m.SegBspCount,
		m.BiRevocations, m.BspEmitted,
	)
	return m
}

// ObserveAddBar records the duration of one AddBar call.
func (m *Metrics) ObserveAddBar(start time.Time) {
	m.AddBarDur.Observe(time.Since(start).Seconds())
}
