package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSolverMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatnet_solves_total",
			Help: "Total number of hydraulic-thermal solves",
		},
		[]string{"status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "heatnet_solve_duration_seconds",
			Help:    "Solver call duration in seconds",
			Buckets: []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		},
	)
}

func (r *Registry) initSizingMetrics() {
	r.ResizesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatnet_resizes_total",
			Help: "Diameter or type changes by element kind and action (grow, shrink, revert)",
		},
		[]string{"kind", "action"},
	)

	r.SizingSweeps = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heatnet_sizing_sweeps",
			Help:    "Sweeps per sizing run",
			Buckets: []float64{1, 2, 5, 10, 50, 100, 500},
		},
		[]string{"kind"},
	)
}

func (r *Registry) initControlMetrics() {
	r.ControllerIterations = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "heatnet_controller_iterations",
			Help:    "Controller iterations per time step",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"controller"},
	)

	r.StepsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "heatnet_steps_total",
			Help: "Time steps by outcome (converged, not_converged, cancelled, diverged, failed)",
		},
		[]string{"status"},
	)

	r.WorstPointDpBar = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "heatnet_worst_point_dp_bar",
			Help: "Pressure margin at the worst point after the last time step",
		},
	)
}
