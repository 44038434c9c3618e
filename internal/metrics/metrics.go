// Package metrics exposes Prometheus metrics for risk evaluations.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/liamcoop/riskscore/engine"
	"github.com/liamcoop/riskscore/internal/logger"
)

// Metrics records evaluation outcomes. A nil *Metrics is a no-op.
type Metrics struct {
	// Evaluation outcomes by band and action
	Outcomes *prometheus.CounterVec

	// Triggered rules by rule id
	RuleTriggers *prometheus.CounterVec

	// Score distribution
	Scores prometheus.Histogram

	// Time spent in engine.Run
	EvaluateLatency prometheus.Histogram
}

// New registers the metrics with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics, plus counter functions over the
// logger counters, with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	m := &Metrics{
		Outcomes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskscore_evaluations_total",
			Help: "Total risk evaluations by band and recommended action",
		}, []string{"band", "action"}),

		RuleTriggers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "riskscore_rule_triggers_total",
			Help: "Total times each rule contributed to a score",
		}, []string{"rule"}),

		Scores: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskscore_score",
			Help:    "Distribution of total risk scores",
			Buckets: []float64{0, 10, 25, 40, 60, 80, 100, 125},
		}),

		EvaluateLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "riskscore_evaluate_duration_seconds",
			Help:    "Duration of a full profile evaluation",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		}),
	}

	counterFunc(f, "riskscore_validation_failures_total", "Profiles rejected before scoring", &logger.ValidationFailures)
	counterFunc(f, "riskscore_store_errors_total", "Failed assessment store operations", &logger.StoreErrors)
	counterFunc(f, "riskscore_http_4xx_total", "HTTP responses with a 4xx status", &logger.Total4xxErrors)
	counterFunc(f, "riskscore_http_5xx_total", "HTTP responses with a 5xx status", &logger.Total5xxErrors)
	counterFunc(f, "riskscore_slow_requests_total", "HTTP requests slower than the slow threshold", &logger.SlowRequests)
	counterFunc(f, "riskscore_log_warnings_total", "Warnings raised, before sampling", &logger.TotalWarnings)
	counterFunc(f, "riskscore_log_errors_total", "Errors raised, before sampling", &logger.TotalErrors)

	return m
}

func counterFunc(f promauto.Factory, name, help string, v *atomic.Int64) {
	f.NewCounterFunc(prometheus.CounterOpts{Name: name, Help: help}, func() float64 {
		return float64(v.Load())
	})
}

// ObserveResult records one completed evaluation.
func (m *Metrics) ObserveResult(res *engine.RiskResult, d time.Duration) {
	if m == nil || res == nil {
		return
	}
	m.Outcomes.WithLabelValues(string(res.Band), string(res.Action)).Inc()
	m.Scores.Observe(float64(res.Score))
	m.EvaluateLatency.Observe(d.Seconds())
	for _, c := range res.Contributions {
		m.RuleTriggers.WithLabelValues(c.RuleID).Inc()
	}
}
