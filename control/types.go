// Package control implements the two proportional controllers of a heating
// network time step.
//
// The pressure controller drives the circulation pump so that the worst
// consumer keeps a minimum pressure margin. The return temperature
// controller, one per consumer, moves the valve mass flow until the consumer's
// outlet reaches its target temperature.
//
// Each controller is a pure step function over an explicit State, so the
// control law can be tested without a network or a solver:
//
//	next, decision := StepPressure(state, input)
//
// The network-bound wrappers (PressureController, ReturnTemperatureController)
// read solver results, call the step function and write the decision back to
// the network. They implement Controller, which is what the orchestrator
// drives.
//
// Saturation: when a valve sits at the bound it would have to move past to
// reach its target, the controller reports SaturatedAtBound and counts as
// converged. The target is never relaxed.
package control

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// Sentinel errors.
var (
	// ErrNotTargeted is returned when a pressure controller steps before Retarget.
	ErrNotTargeted = errors.New("control: pressure controller has no worst point")

	// ErrBadReading is returned when solver results hold NaN or are missing
	// the controlled element.
	ErrBadReading = errors.New("control: unusable solver reading")

	// ErrInvalidSettings is returned for non-positive tolerances, gains or velocity ranges.
	ErrInvalidSettings = errors.New("control: invalid settings")
)

// Phase is where a controller stands within the current time step.
type Phase uint8

// Controller phases.
const (
	// PhaseIdle means the controlled consumer draws no meaningful heat.
	PhaseIdle Phase = iota
	// PhaseSeeking means the controller is still adjusting its setpoint.
	PhaseSeeking
	// PhaseConverged means the target is met or cannot be approached further.
	PhaseConverged
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSeeking:
		return "seeking"
	case PhaseConverged:
		return "converged"
	default:
		return fmt.Sprintf("phase(%d)", uint8(p))
	}
}

// Outcome is the result of one evaluation.
type Outcome uint8

// Evaluation outcomes.
const (
	// Continue means a setpoint was changed and the network must be re-solved.
	Continue Outcome = iota
	// Converged means the target is within tolerance, or the consumer is idle.
	Converged
	// SaturatedAtBound means the target is out of reach because the setpoint
	// sits at the bound it would have to cross. It counts as converged.
	SaturatedAtBound
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Converged:
		return "converged"
	case SaturatedAtBound:
		return "saturated"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// Done reports whether the outcome ends the controller's work for this step.
func (o Outcome) Done() bool { return o == Converged || o == SaturatedAtBound }

// State is the mutable part of a controller. It is passed by value through
// the step functions.
type State struct {
	Phase Phase
	// Target is the working target, bar for pressure and °C for temperature.
	Target float64
	// InitialTarget is the configured target; Target is reset to it on convergence.
	InitialTarget float64
	Tolerance     float64
	// Iteration counts adjusting steps since the last ResetTimeStep.
	Iteration int
	// LastError is target − measured at the last evaluation.
	LastError float64
}

// NewState returns an idle state aiming at target.
func NewState(target, tolerance float64) State {
	return State{Phase: PhaseIdle, Target: target, InitialTarget: target, Tolerance: tolerance}
}

// Reset starts a new time step: the iteration counter and phase are cleared.
func (s State) Reset() State {
	s.Phase = PhaseIdle
	s.Iteration = 0
	s.LastError = 0

	return s
}

// Controller is a network-bound controller driven by the orchestrator.
type Controller interface {
	// Name identifies the controller instance in logs and reports.
	Name() string
	// Kind is the controller family, used as a metric label.
	Kind() string
	// ResetTimeStep is called once at the start of every time step.
	ResetTimeStep()
	// Step evaluates res and, unless done, adjusts its setpoint in net.
	Step(net *network.Network, res *solver.Results) (Outcome, error)
	State() State
}

// Controller kinds.
const (
	KindPressure          = "pressure"
	KindReturnTemperature = "return_temperature"
)
