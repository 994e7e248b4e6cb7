package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics bundles Prometheus collectors for the assistant.
type Metrics struct {
	registry    *prometheus.Registry
	Turns       *prometheus.CounterVec
	TurnRounds  *prometheus.HistogramVec
	ToolCalls   *prometheus.CounterVec
	LLMDuration *prometheus.HistogramVec
}

// NewMetrics constructs a metrics registry with the assistant collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	turns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contratai_turns_total",
		Help: "Completed respond calls by outcome",
	}, []string{"outcome"})

	rounds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contratai_turn_rounds",
		Help:    "LLM rounds used per respond call",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 10, 15, 20},
	}, []string{"outcome"})

	toolCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "contratai_tool_calls_total",
		Help: "Tool invocations by tool and status",
	}, []string{"tool", "status"})

	llmDur := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "contratai_llm_request_duration_seconds",
		Help:    "Duration of chat completion calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"status"})

	reg.MustRegister(turns, rounds, toolCalls, llmDur)

	return &Metrics{
		registry:    reg,
		Turns:       turns,
		TurnRounds:  rounds,
		ToolCalls:   toolCalls,
		LLMDuration: llmDur,
	}
}

// Registry returns the underlying Prometheus registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordTurn records the outcome of one respond call.
func (m *Metrics) RecordTurn(outcome string, rounds int) {
	if m == nil {
		return
	}
	if outcome == "" {
		outcome = "unknown"
	}
	m.Turns.WithLabelValues(outcome).Inc()
	m.TurnRounds.WithLabelValues(outcome).Observe(float64(rounds))
}

// RecordToolCall counts one tool invocation; status is "ok" or "error".
func (m *Metrics) RecordToolCall(tool, status string) {
	if m == nil {
		return
	}
	if tool == "" {
		tool = "unknown"
	}
	m.ToolCalls.WithLabelValues(tool, status).Inc()
}

// RecordLLMCall observes the duration of one chat completion.
func (m *Metrics) RecordLLMCall(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.LLMDuration.WithLabelValues(status).Observe(d.Seconds())
}
