// Package metrics exports search progress as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdrpinto/pathviz"
)

const namespace = "pathviz"

// Run outcomes.
const (
	OutcomeFound     = "found"
	OutcomeExhausted = "exhausted"
	OutcomeAborted   = "aborted"
)

// Recorder implements pathviz.Observer. It is safe for concurrent use, so one
// Recorder can watch every search started by Compare.
type Recorder struct {
	registry *prometheus.Registry

	steps      *prometheus.CounterVec
	openSize   *prometheus.GaugeVec
	closedSize *prometheus.GaugeVec
	discovered *prometheus.HistogramVec
	pathLength *prometheus.HistogramVec
	runs       *prometheus.CounterVec
}

// New registers the search metrics on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		steps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Search steps that changed state, by strategy and phase after the step",
		}, []string{"strategy", "phase"}),
		openSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_cells",
			Help:      "Size of the open set after the latest step",
		}, []string{"strategy"}),
		closedSize: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "closed_cells",
			Help:      "Size of the closed set after the latest step",
		}, []string{"strategy"}),
		discovered: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "discovered_per_step",
			Help:      "Cells newly added to the open set by one expansion",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		}, []string{"strategy"}),
		pathLength: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "path_cells",
			Help:      "Cells on each emitted path",
			Buckets:   prometheus.ExponentialBuckets(2, 2, 10),
		}, []string{"strategy"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished searches by strategy and outcome",
		}, []string{"strategy", "outcome"}),
	}
}

// ObserveStep records one step event.
func (r *Recorder) ObserveStep(ev pathviz.StepEvent) {
	strategy := ev.Strategy.String()
	r.steps.WithLabelValues(strategy, ev.Phase.String()).Inc()
	r.openSize.WithLabelValues(strategy).Set(float64(ev.OpenSize))
	r.closedSize.WithLabelValues(strategy).Set(float64(ev.ClosedSize))

	switch {
	case ev.Exhausted:
		r.runs.WithLabelValues(strategy, OutcomeExhausted).Inc()
	case ev.Phase == pathviz.PhaseAborted:
		r.runs.WithLabelValues(strategy, OutcomeAborted).Inc()
	case ev.Phase == pathviz.PhaseIdle:
		r.pathLength.WithLabelValues(strategy).Observe(float64(ev.PathLength))
		r.runs.WithLabelValues(strategy, OutcomeFound).Inc()
	case ev.Phase == pathviz.PhaseExpanding:
		r.discovered.WithLabelValues(strategy).Observe(float64(ev.Discovered))
	}
}

// Registry exposes the underlying registry, mostly for tests.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// Handler serves the recorder's metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
