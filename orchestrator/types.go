// Package orchestrator runs the control loop of a heating network over one
// or many time steps.
//
// A time step solves the network, picks the worst point, then alternates
// controller steps and solves until every controller is done or the
// iteration budget is spent. Running out of budget is not fatal: the step
// reports StatusNotConverged together with each controller's last error and
// the series moves on. A solver divergence or a cancellation ends the series.
//
// The network is mutated in place and owned by one Session at a time.
package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/katalvlaran/heatnet/control"
	"github.com/katalvlaran/heatnet/worstpoint"
)

// Sentinel errors.
var (
	// ErrConvergenceNotReached marks a time step that used up its iteration budget.
	ErrConvergenceNotReached = errors.New("orchestrator: convergence not reached")

	// ErrCancelled is returned when the context is done between solver calls.
	ErrCancelled = errors.New("orchestrator: cancelled")

	// ErrInvalidProfile is returned for load profiles that do not fit the network.
	ErrInvalidProfile = errors.New("orchestrator: invalid profile")

	// ErrSessionBusy is returned when a session is used by two callers at once.
	ErrSessionBusy = errors.New("orchestrator: session is already running")
)

// Status is the outcome of one time step.
type Status string

// Step statuses.
const (
	StatusConverged    Status = "converged"
	StatusNotConverged Status = "not_converged"
	StatusCancelled    Status = "cancelled"
	StatusDiverged     Status = "diverged"
	// StatusFailed covers unusable solver readings and solver errors other
	// than divergence.
	StatusFailed       Status = "failed"
)

// Margin is the last evaluation of one controller in a step.
type Margin struct {
	Controller string
	Kind       string
	Phase      control.Phase
	Outcome    control.Outcome
	// Error is target − measured, bar or K depending on Kind.
	Error      float64
	Iterations int
}

// ConvergenceError describes a step that ran out of iterations.
type ConvergenceError struct {
	Step       int
	Iterations int
	// Pending lists the controllers that were not done.
	Pending []Margin
}

func (e *ConvergenceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v at step %d after %d iterations", ErrConvergenceNotReached, e.Step, e.Iterations)
	for i, m := range e.Pending {
		sep := "; "
		if i == 0 {
			sep = ": "
		}
		fmt.Fprintf(&b, "%s%s error %.4g", sep, m.Controller, m.Error)
	}

	return b.String()
}

func (e *ConvergenceError) Unwrap() error { return ErrConvergenceNotReached }

// Summary is the producer-side state at the end of a step.
type Summary struct {
	PumpMdotKgPerS float64
	PumpDeltaPBar  float64
	PFlowBar       float64
	PReturnBar     float64
	TFlowC         float64
	TReturnC       float64
	// HeatFedW is the heat the pump side puts into the network.
	HeatFedW float64
	// DemandW is the total consumer demand of the step.
	DemandW float64
}

// StepReport is the result of one time step.
type StepReport struct {
	Step       int
	Status     Status
	Iterations int
	WorstPoint worstpoint.Point
	Margins    []Margin
	Summary    Summary
}

// Err returns a *ConvergenceError for StatusNotConverged and nil otherwise.
func (r StepReport) Err() error {
	if r.Status != StatusNotConverged {
		return nil
	}
	e := &ConvergenceError{Step: r.Step, Iterations: r.Iterations}
	for _, m := range r.Margins {
		if !m.Outcome.Done() {
			e.Pending = append(e.Pending, m)
		}
	}

	return e
}

// Profile is a load series. Qext[t][i] is the demand of heat exchanger i at
// step t. SupplyTempC, if set, holds one pump flow temperature per step.
type Profile struct {
	Qext        [][]float64
	SupplyTempC []float64
}

// Steps returns the number of time steps.
func (p Profile) Steps() int { return len(p.Qext) }

func (p Profile) validate(heatExchangers int) error {
	if len(p.SupplyTempC) != 0 && len(p.SupplyTempC) != len(p.Qext) {
		return fmt.Errorf("%w: %d supply temperatures for %d steps", ErrInvalidProfile, len(p.SupplyTempC), len(p.Qext))
	}
	for t, row := range p.Qext {
		if len(row) != heatExchangers {
			return fmt.Errorf("%w: step %d has %d loads for %d heat exchangers", ErrInvalidProfile, t, len(row), heatExchangers)
		}
		for i, q := range row {
			if !(q >= 0) {
				return fmt.Errorf("%w: step %d heat exchanger %d load %g W", ErrInvalidProfile, t, i, q)
			}
		}
	}

	return nil
}

// SeriesReport collects the step reports of a series.
type SeriesReport struct {
	Steps        []StepReport
	NotConverged int
}
