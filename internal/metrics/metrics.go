// Package metrics instruments path searches with Prometheus collectors.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdrpinto/gridpath"
)

// Search outcomes used as the "outcome" label.
const (
	OutcomeFound       = "found"
	OutcomeUnreachable = "unreachable"
	OutcomeInvalid     = "invalid"
	OutcomeError       = "error"
)

// Metrics owns its registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	searchTotal    *prometheus.CounterVec
	searchDuration prometheus.Histogram
	expandedNodes  prometheus.Histogram
	pathLength     prometheus.Histogram
	replaySteps    prometheus.Counter
}

// New registers a fresh set of collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Metrics{
		registry: registry,
		searchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridpath_search_total",
			Help: "Total path searches by outcome",
		}, []string{"outcome"}),
		searchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpath_search_duration_seconds",
			Help:    "Path search duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 16),
		}),
		expandedNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpath_search_expanded_nodes",
			Help:    "Nodes expanded per search",
			Buckets: prometheus.ExponentialBuckets(1, 2, 16),
		}),
		pathLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridpath_path_length",
			Help:    "Length of found paths in cells",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		replaySteps: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridpath_replay_steps_total",
			Help: "Replay steps executed",
		}),
	}
}

// ObserveSearch records one search. err is the error returned by Search.
func (m *Metrics) ObserveSearch(result gridpath.Result, err error, elapsed time.Duration) {
	m.searchTotal.WithLabelValues(Outcome(result, err)).Inc()
	if err != nil {
		return
	}
	m.searchDuration.Observe(elapsed.Seconds())
	m.expandedNodes.Observe(float64(result.ExpandedNodes))
	if result.Found {
		m.pathLength.Observe(float64(len(result.Path)))
	}
}

// ObserveReplayStep counts one executed replay step.
func (m *Metrics) ObserveReplayStep() { m.replaySteps.Inc() }

// Outcome classifies a search result for the outcome label.
func Outcome(result gridpath.Result, err error) string {
	var configErr *gridpath.ConfigError
	switch {
	case err == nil && result.Found:
		return OutcomeFound
	case err == nil:
		return OutcomeUnreachable
	case errors.As(err, &configErr), errors.Is(err, gridpath.ErrNilGrid), errors.Is(err, gridpath.ErrInvalidSize):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

// Registry exposes the collectors for gathering in tests or custom handlers.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
