package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// DefaultNamespace prefixes every metric the bot exports
const DefaultNamespace = "deltabot"

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// StrategyMetrics tracks the arbitrage cycle. A nil *StrategyMetrics is
// valid and records nothing.
type StrategyMetrics struct {
	Cycles        prometheus.Counter
	CycleErrors   *prometheus.CounterVec
	CycleOutcomes *prometheus.CounterVec
	Routes        *prometheus.CounterVec
	EstimatedGain prometheus.Histogram
	RealizedGain  prometheus.Gauge
	Swaps         prometheus.Counter
	TopUps        *prometheus.CounterVec
	Balance       *prometheus.GaugeVec
	CycleDuration prometheus.Histogram
}

func NewStrategyMetrics(reg prometheus.Registerer, namespace string) *StrategyMetrics {
	factory := promauto.With(reg)
	return &StrategyMetrics{
		Cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of strategy cycles started",
		}),
		CycleErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_errors_total",
			Help:      "Total number of cycles aborted by an error, by kind",
		}, []string{"kind"}),
		CycleOutcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycle_outcomes_total",
			Help:      "Total number of completed cycles, by outcome",
		}, []string{"outcome"}),
		Routes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_total",
			Help:      "Total number of selected routes",
		}, []string{"route"}),
		EstimatedGain: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "estimated_gain",
			Help:      "Estimated gain per quoted route in native units",
			Buckets:   []float64{-50, -20, -10, -5, 0, 1, 2, 5, 10, 20, 50, 100},
		}),
		RealizedGain: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "realized_gain_total",
			Help:      "Cumulative realized gain in native units",
		}),
		Swaps: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swaps_total",
			Help:      "Total number of executed arbitrage swaps",
		}),
		TopUps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "top_ups_total",
			Help:      "Total number of balance top-up actions",
		}, []string{"action"}),
		Balance: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "balance",
			Help:      "Last read wallet balance in native units",
		}, []string{"asset"}),
		CycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Time taken by one strategy cycle",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
	}
}

func (m *StrategyMetrics) CycleStarted() {
	if m == nil {
		return
	}
	m.Cycles.Inc()
}

func (m *StrategyMetrics) CycleFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CycleOutcomes.WithLabelValues(outcome).Inc()
	m.CycleDuration.Observe(elapsed.Seconds())
}

func (m *StrategyMetrics) CycleFailed(kind string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CycleErrors.WithLabelValues(kind).Inc()
	m.CycleDuration.Observe(elapsed.Seconds())
}

func (m *StrategyMetrics) RouteSelected(route string) {
	if m == nil {
		return
	}
	m.Routes.WithLabelValues(route).Inc()
}

func (m *StrategyMetrics) GainEstimated(gain float64) {
	if m == nil {
		return
	}
	m.EstimatedGain.Observe(gain)
}

func (m *StrategyMetrics) SwapExecuted(realized float64) {
	if m == nil {
		return
	}
	m.Swaps.Inc()
	m.RealizedGain.Add(realized)
}

func (m *StrategyMetrics) TopUp(action string) {
	if m == nil {
		return
	}
	m.TopUps.WithLabelValues(action).Inc()
}

func (m *StrategyMetrics) SetBalance(asset string, units float64) {
	if m == nil {
		return
	}
	m.Balance.WithLabelValues(asset).Set(units)
}
