package metrics

import (
	"time"
)

// RecordSolve records one solver call.
func (r *Registry) RecordSolve(status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.SolvesTotal.WithLabelValues(status).Inc()
	r.SolveDuration.Observe(duration.Seconds())
}

// RecordResize records one diameter or type change.
func (r *Registry) RecordResize(kind, action string) {
	if r == nil {
		return
	}
	r.ResizesTotal.WithLabelValues(kind, action).Inc()
}

// RecordSizing records the number of sweeps a sizing run took.
func (r *Registry) RecordSizing(kind string, sweeps int) {
	if r == nil {
		return
	}
	r.SizingSweeps.WithLabelValues(kind).Observe(float64(sweeps))
}

// RecordControllerIterations records how many iterations a controller used in one step.
func (r *Registry) RecordControllerIterations(controller string, iterations int) {
	if r == nil {
		return
	}
	r.ControllerIterations.WithLabelValues(controller).Observe(float64(iterations))
}

// RecordStep records a finished time step and its worst-point margin.
func (r *Registry) RecordStep(status string, worstPointDpBar float64) {
	if r == nil {
		return
	}
	r.StepsTotal.WithLabelValues(status).Inc()
	r.WorstPointDpBar.Set(worstPointDpBar)
}
