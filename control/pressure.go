package control

import (
	"fmt"
	"math"

	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
	"github.com/katalvlaran/heatnet/worstpoint"
)

// PressureInput is what StepPressure needs from the solved network.
type PressureInput struct {
	// QextW is the demand of the worst-point consumer.
	QextW float64
	// DpBar is the worst-point margin, p_from(flow control) − p_to(heat exchanger).
	DpBar float64
	// Gain converts a margin error in bar into a setpoint shift in bar.
	Gain float64
	// ActivityThresholdW is the demand at or below which the consumer is idle.
	ActivityThresholdW float64
}

// PressureDecision is the setpoint change StepPressure asks for.
type PressureDecision struct {
	Outcome Outcome
	// DeltaLiftBar and DeltaFlowBar are added to the pump's p_lift and p_flow.
	DeltaLiftBar float64
	DeltaFlowBar float64
}

// StepPressure evaluates the worst-point margin and returns the next state and
// the pump adjustment. Lift and flow pressure move by the same amount,
// (target − dp) × gain, so the suction side pressure stays put.
func StepPressure(s State, in PressureInput) (State, PressureDecision) {
	if in.QextW <= in.ActivityThresholdW {
		s.Phase = PhaseIdle
		s.LastError = 0
		return s, PressureDecision{Outcome: Converged}
	}

	s.LastError = s.Target - in.DpBar
	if math.Abs(s.LastError) < s.Tolerance {
		s.Phase = PhaseConverged
		s.Target = s.InitialTarget
		return s, PressureDecision{Outcome: Converged}
	}

	s.Phase = PhaseSeeking
	s.Iteration++
	d := s.LastError * in.Gain

	return s, PressureDecision{Outcome: Continue, DeltaLiftBar: d, DeltaFlowBar: d}
}

// PressureSettings configures a PressureController.
type PressureSettings struct {
	TargetDpBar        float64
	ToleranceBar       float64
	Gain               float64
	ActivityThresholdW float64
}

func (s PressureSettings) validate() error {
	if !(s.ToleranceBar > 0) || !(s.Gain > 0) || s.ActivityThresholdW < 0 || math.IsNaN(s.TargetDpBar) {
		return fmt.Errorf("%w: %+v", ErrInvalidSettings, s)
	}

	return nil
}

// PressureController keeps the worst-point margin at TargetDpBar by shifting
// the setpoints of one pump. The worst point is chosen by the caller once per
// time step through Retarget.
type PressureController struct {
	pump     int
	settings PressureSettings
	worst    worstpoint.Point
	targeted bool
	state    State
}

// NewPressureController returns a controller acting on pump index pump.
func NewPressureController(pump int, s PressureSettings) (*PressureController, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	if pump < 0 {
		return nil, fmt.Errorf("%w: pump index %d", ErrInvalidSettings, pump)
	}

	return &PressureController{pump: pump, settings: s, state: NewState(s.TargetDpBar, s.ToleranceBar)}, nil
}

// Retarget sets the consumer whose margin is controlled.
func (c *PressureController) Retarget(p worstpoint.Point) {
	c.worst = p
	c.targeted = true
}

// WorstPoint returns the current target consumer.
func (c *PressureController) WorstPoint() (worstpoint.Point, bool) { return c.worst, c.targeted }

func (c *PressureController) Name() string { return fmt.Sprintf("pressure[pump %d]", c.pump) }

func (c *PressureController) Kind() string { return KindPressure }

func (c *PressureController) ResetTimeStep() { c.state = c.state.Reset() }

func (c *PressureController) State() State { return c.state }

// Step reads the margin of the worst point from res and shifts the pump
// setpoints unless the margin is within tolerance.
func (c *PressureController) Step(net *network.Network, res *solver.Results) (Outcome, error) {
	if !c.targeted {
		return Continue, ErrNotTargeted
	}
	h, f := c.worst.HeatExchanger, c.worst.FlowControl
	if h < 0 || h >= len(res.HeatExchangers) || f < 0 || f >= len(res.FlowControls) || h >= net.NumHeatExchangers() {
		return Continue, fmt.Errorf("%w: worst point %+v", ErrBadReading, c.worst)
	}
	dp := res.FlowControls[f].PFromBar - res.HeatExchangers[h].PToBar
	if math.IsNaN(dp) {
		return Continue, fmt.Errorf("%w: worst-point margin is NaN", ErrBadReading)
	}

	next, d := StepPressure(c.state, PressureInput{
		QextW:              net.HeatExchanger(h).QextW,
		DpBar:              dp,
		Gain:               c.settings.Gain,
		ActivityThresholdW: c.settings.ActivityThresholdW,
	})
	if d.Outcome == Continue {
		if err := net.ShiftPumpSetpoints(c.pump, d.DeltaLiftBar, d.DeltaFlowBar); err != nil {
			return Continue, err
		}
	}
	c.state = next

	return d.Outcome, nil
}
