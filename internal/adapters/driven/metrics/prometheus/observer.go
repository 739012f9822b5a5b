// Package prometheus provides a driven.Observer backed by Prometheus collectors.
package prometheus

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/urbanbot/internal/core/domain"
	"github.com/custodia-labs/urbanbot/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.Observer = (*Observer)(nil)

const namespace = "urbanbot"

// Generation outcome labels.
const (
	outcomeOK      = "ok"
	outcomeTimeout = "timeout"
	outcomeError   = "error"
)

// Observer records request outcomes on its own registry.
type Observer struct {
	registry   *prometheus.Registry
	asks       *prometheus.CounterVec
	retrievals *prometheus.CounterVec
	generation *prometheus.HistogramVec
	dispatches *prometheus.CounterVec
}

// NewObserver creates an observer with a private registry that also carries
// the Go runtime and process collectors.
func NewObserver() *Observer {
	o := &Observer{registry: prometheus.NewRegistry()}

	o.asks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "asks_total",
		Help:      "Questions answered, by topic and terminal state",
	}, []string{"topic", "state"})
	o.retrievals = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "retrievals_total",
		Help:      "Event store fetches, by topic and status",
	}, []string{"topic", "status"})
	o.generation = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "generation_duration_seconds",
		Help:      "LLM completion latency",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	}, []string{"outcome"})
	o.dispatches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dispatches_total",
		Help:      "Report delivery attempts, by result",
	}, []string{"result"})

	o.registry.MustRegister(
		o.asks, o.retrievals, o.generation, o.dispatches,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return o
}

// ObserveAsk records the terminal state of one question.
func (o *Observer) ObserveAsk(topic domain.Topic, state domain.State) {
	o.asks.WithLabelValues(topic.String(), state.String()).Inc()
}

// ObserveRetrieval records one event store fetch.
func (o *Observer) ObserveRetrieval(topic domain.Topic, status domain.RetrievalStatus) {
	o.retrievals.WithLabelValues(topic.String(), string(status)).Inc()
}

// ObserveGeneration records one LLM call.
func (o *Observer) ObserveGeneration(elapsed time.Duration, err error) {
	outcome := outcomeOK
	switch {
	case errors.Is(err, domain.ErrGenerationTimeout):
		outcome = outcomeTimeout
	case err != nil:
		outcome = outcomeError
	}
	o.generation.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// ObserveDispatch records one delivery attempt.
func (o *Observer) ObserveDispatch(sent bool) {
	result := "failed"
	if sent {
		result = "sent"
	}
	o.dispatches.WithLabelValues(result).Inc()
}

// Registry exposes the underlying registry for tests and extra collectors.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}
