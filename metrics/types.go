// Package metrics exposes Prometheus instruments for solver calls, sizing
// sweeps, controller iterations and time-step outcomes.
//
// Every Record method is safe on a nil *Registry, so components can take a
// registry as an optional dependency without guarding each call.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all heatnet metrics on a private prometheus.Registry.
type Registry struct {
	// Solver Metrics
	SolvesTotal   *prometheus.CounterVec
	SolveDuration prometheus.Histogram

	// Sizing Metrics
	ResizesTotal *prometheus.CounterVec
	SizingSweeps *prometheus.HistogramVec

	// Control Metrics
	ControllerIterations *prometheus.HistogramVec
	StepsTotal           *prometheus.CounterVec
	WorstPointDpBar      prometheus.Gauge

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initSolverMetrics()
	r.initSizingMetrics()
	r.initControlMetrics()

	return r
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
