// Package metrics exposes prometheus collectors for the execution engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and all
// methods on it are no-ops, so components can take metrics optionally.
type Metrics struct {
	TurnsTotal       *prometheus.CounterVec
	CompletionSecs   prometheus.Histogram
	CompletionErrors prometheus.Counter
	FunctionSecs     prometheus.Histogram
	FunctionErrors   prometheus.Counter
}

// New registers the engine collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		TurnsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voiceflow",
			Name:      "turns_total",
			Help:      "Conversation turns executed, by resulting action.",
		}, []string{"action"}),
		CompletionSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voiceflow",
			Name:      "completion_duration_seconds",
			Help:      "Latency of language-model completion calls.",
			Buckets:   prometheus.DefBuckets,
		}),
		CompletionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voiceflow",
			Name:      "completion_errors_total",
			Help:      "Failed or degraded language-model completion calls.",
		}),
		FunctionSecs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "voiceflow",
			Name:      "function_duration_seconds",
			Help:      "Latency of function-node executions (HTTP and code).",
			Buckets:   prometheus.DefBuckets,
		}),
		FunctionErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "voiceflow",
			Name:      "function_errors_total",
			Help:      "Function-node executions that degraded to a failure result.",
		}),
	}
}

// ObserveTurn counts one executed turn by action.
func (m *Metrics) ObserveTurn(action string) {
	if m == nil {
		return
	}
	m.TurnsTotal.WithLabelValues(action).Inc()
}

// ObserveCompletion records one completion call.
func (m *Metrics) ObserveCompletion(seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.CompletionSecs.Observe(seconds)
	if failed {
		m.CompletionErrors.Inc()
	}
}

// ObserveFunction records one function-node execution.
func (m *Metrics) ObserveFunction(seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.FunctionSecs.Observe(seconds)
	if failed {
		m.FunctionErrors.Inc()
	}
}
