package control

import (
	"fmt"
	"math"

	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// TemperatureGains selects the proportional gain by flow regime. At low flow
// the return temperature reacts strongly to the mass flow, so the gain is smaller.
type TemperatureGains struct {
	Low  float64
	High float64
	// LowFlowThresholdKgPerS: mass flows at or below it use Low.
	LowFlowThresholdKgPerS float64
}

// For returns the gain for the current mass flow.
func (g TemperatureGains) For(mdot float64) float64 {
	if mdot <= g.LowFlowThresholdKgPerS {
		return g.Low
	}

	return g.High
}

// TemperatureInput is what StepTemperature needs from the solved network.
type TemperatureInput struct {
	QextW       float64
	ReturnTempC float64
	// MdotKgPerS is the current controlled mass flow, inside [MinMdot, MaxMdot].
	MdotKgPerS         float64
	MinMdot, MaxMdot   float64
	ActivityThresholdW float64
}

// TemperatureDecision carries the new controlled mass flow. MdotKgPerS equals
// the input mass flow unless Outcome is Continue.
type TemperatureDecision struct {
	Outcome    Outcome
	MdotKgPerS float64
}

// StepTemperature evaluates the return temperature of one consumer.
//
// Within tolerance it converges and resets the working target. Outside
// tolerance it is saturated when the mass flow sits at the bound it would
// have to cross: at max while the outlet is still too cold, or at min while it
// is still too warm. Otherwise the mass flow moves by error × gain and is
// clamped into [MinMdot, MaxMdot].
func StepTemperature(s State, in TemperatureInput, g TemperatureGains) (State, TemperatureDecision) {
	keep := TemperatureDecision{Outcome: Converged, MdotKgPerS: in.MdotKgPerS}
	if in.QextW <= in.ActivityThresholdW {
		s.Phase = PhaseIdle
		s.LastError = 0
		return s, keep
	}

	s.LastError = s.Target - in.ReturnTempC
	if math.Abs(s.LastError) < s.Tolerance {
		s.Phase = PhaseConverged
		s.Target = s.InitialTarget
		return s, keep
	}
	if (s.LastError > 0 && in.MdotKgPerS >= in.MaxMdot) || (s.LastError < 0 && in.MdotKgPerS <= in.MinMdot) {
		s.Phase = PhaseConverged
		keep.Outcome = SaturatedAtBound
		return s, keep
	}

	s.Phase = PhaseSeeking
	s.Iteration++
	next := in.MdotKgPerS + s.LastError*g.For(in.MdotKgPerS)
	next = math.Max(in.MinMdot, math.Min(next, in.MaxMdot))

	return s, TemperatureDecision{Outcome: Continue, MdotKgPerS: next}
}

// TemperatureSettings configures a ReturnTemperatureController.
type TemperatureSettings struct {
	ToleranceK         float64
	Gains              TemperatureGains
	MinVelocity        float64
	MaxVelocity        float64
	ActivityThresholdW float64
}

func (s TemperatureSettings) validate() error {
	bad := !(s.ToleranceK > 0) || !(s.Gains.Low > 0) || !(s.Gains.High > 0) ||
		s.Gains.LowFlowThresholdKgPerS < 0 || s.MinVelocity < 0 ||
		!(s.MaxVelocity > s.MinVelocity) || s.ActivityThresholdW < 0
	if bad {
		return fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}

	return nil
}

// ReturnTemperatureController drives the flow control paired with one heat
// exchanger towards that exchanger's target return temperature.
type ReturnTemperatureController struct {
	hx, fc   int
	name     string
	settings TemperatureSettings
	min, max float64
	state    State
}

// NewReturnTemperatureController binds a controller to heat exchanger hx of
// net. The mass flow range follows from the velocity range and the heat
// exchanger's diameter and is written to the paired flow control, which
// clamps its current mass flow into it.
func NewReturnTemperatureController(net *network.Network, hx int, s TemperatureSettings) (*ReturnTemperatureController, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if hx < 0 || hx >= net.NumHeatExchangers() {
		return nil, fmt.Errorf("%w: heat exchanger %d", network.ErrIndexOutOfRange, hx)
	}
	h := net.HeatExchanger(hx)
	lo, hi := network.MassFlowBounds(h.DiameterM, s.MinVelocity, s.MaxVelocity)
	if err := net.SetMassFlowBounds(h.FlowControl, lo, hi); err != nil {
		return nil, err
	}

	return &ReturnTemperatureController{
		hx:       hx,
		fc:       h.FlowControl,
		name:     fmt.Sprintf("return_temperature[%s]", h.Name),
		settings: s,
		min:      lo,
		max:      hi,
		state:    NewState(h.TargetReturnTempC, s.ToleranceK),
	}, nil
}

func (c *ReturnTemperatureController) Name() string { return c.name }

func (c *ReturnTemperatureController) Kind() string { return KindReturnTemperature }

func (c *ReturnTemperatureController) ResetTimeStep() { c.state = c.state.Reset() }

func (c *ReturnTemperatureController) State() State { return c.state }

// HeatExchanger returns the controlled heat exchanger index.
func (c *ReturnTemperatureController) HeatExchanger() int { return c.hx }

// Bounds returns the mass flow range in kg/s.
func (c *ReturnTemperatureController) Bounds() (minMdot, maxMdot float64) { return c.min, c.max }

// Step reads the outlet temperature of the heat exchanger and updates the
// controlled mass flow of its flow control.
func (c *ReturnTemperatureController) Step(net *network.Network, res *solver.Results) (Outcome, error) {
	if c.hx >= len(res.HeatExchangers) {
		return Continue, fmt.Errorf("%w: no result for heat exchanger %d", ErrBadReading, c.hx)
	}
	t := res.HeatExchangers[c.hx].TToK - network.KelvinOffset
	if math.IsNaN(t) {
		return Continue, fmt.Errorf("%w: outlet temperature of %s is NaN", ErrBadReading, c.name)
	}

	next, d := StepTemperature(c.state, TemperatureInput{
		QextW:              net.HeatExchanger(c.hx).QextW,
		ReturnTempC:        t,
		MdotKgPerS:         net.FlowControl(c.fc).ControlledMdotKgPerS,
		MinMdot:            c.min,
		MaxMdot:            c.max,
		ActivityThresholdW: c.settings.ActivityThresholdW,
	}, c.settings.Gains)
	if d.Outcome == Continue {
		if _, err := net.SetControlledMdot(c.fc, d.MdotKgPerS); err != nil {
			return Continue, err
		}
	}
	c.state = next

	return d.Outcome, nil
}
