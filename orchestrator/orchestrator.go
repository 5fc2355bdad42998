package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/katalvlaran/heatnet/config"
	"github.com/katalvlaran/heatnet/control"
	"github.com/katalvlaran/heatnet/logging"
	"github.com/katalvlaran/heatnet/metrics"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
	"github.com/katalvlaran/heatnet/worstpoint"
)

const tracerName = "heatnet/orchestrator"

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.OrDiscard(l) }
}

// WithMetrics records step outcomes and controller iterations in reg.
func WithMetrics(reg *metrics.Registry) Option {
	return func(o *Orchestrator) { o.metrics = reg }
}

// WithTracerProvider traces steps through tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *Orchestrator) {
		if tp != nil {
			o.tracer = tp.Tracer(tracerName)
		}
	}
}

// Orchestrator holds what is shared by sessions: the solver and the control
// configuration.
type Orchestrator struct {
	solver  solver.Solver
	cfg     config.Control
	log     *slog.Logger
	metrics *metrics.Registry
	tracer  trace.Tracer
}

// New validates cfg and returns an Orchestrator solving with s.
func New(s solver.Solver, cfg config.Control, opts ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &Orchestrator{solver: s, cfg: cfg, log: logging.Discard(), tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Session binds the controllers to one network.
type Session struct {
	o           *Orchestrator
	net         *network.Network
	pressure    *control.PressureController
	controllers []control.Controller
	busy        atomic.Bool
}

// Attach creates a pressure controller for pump 0 and a return temperature
// controller for every heat exchanger of net. Creating the temperature
// controllers writes their mass flow bounds to the flow controls.
func (o *Orchestrator) Attach(net *network.Network) (*Session, error) {
	if net.NumHeatExchangers() == 0 {
		return nil, worstpoint.ErrNoHeatExchangers
	}
	pc, err := control.NewPressureController(0, control.PressureSettings{
		TargetDpBar:        o.cfg.TargetDpMinBar,
		ToleranceBar:       o.cfg.DpToleranceBar,
		Gain:               o.cfg.PressureGain,
		ActivityThresholdW: o.cfg.QextActivityThresholdW,
	})
	if err != nil {
		return nil, err
	}

	s := &Session{o: o, net: net, pressure: pc, controllers: []control.Controller{pc}}
	ts := control.TemperatureSettings{
		ToleranceK: o.cfg.TemperatureToleranceK,
		Gains: control.TemperatureGains{
			Low:                    o.cfg.LowFlowGain,
			High:                   o.cfg.HighFlowGain,
			LowFlowThresholdKgPerS: o.cfg.LowFlowThresholdKgPerS,
		},
		MinVelocity:        o.cfg.MinVelocity,
		MaxVelocity:        o.cfg.MaxVelocity,
		ActivityThresholdW: o.cfg.QextActivityThresholdW,
	}
	for i := 0; i < net.NumHeatExchangers(); i++ {
		tc, err := control.NewReturnTemperatureController(net, i, ts)
		if err != nil {
			return nil, err
		}
		s.controllers = append(s.controllers, tc)
	}

	return s, nil
}

// Network returns the network the session controls.
func (s *Session) Network() *network.Network { return s.net }

// Controllers returns the session's controllers, pressure controller first.
func (s *Session) Controllers() []control.Controller {
	return append([]control.Controller(nil), s.controllers...)
}

func (s *Session) acquire() error {
	if !s.busy.CompareAndSwap(false, true) {
		return ErrSessionBusy
	}

	return nil
}

// RunStep runs one time step with the current loads. The returned error is
// non-nil only for divergence, cancellation or invalid readings; a step that
// runs out of iterations reports StatusNotConverged with a nil error.
func (s *Session) RunStep(ctx context.Context, step int) (StepReport, error) {
	if err := s.acquire(); err != nil {
		return StepReport{Step: step}, err
	}
	defer s.busy.Store(false)

	return s.runStep(ctx, step)
}

// RunSeries applies the loads of p step by step and runs each step. It stops
// at the first error and returns the steps finished so far.
func (s *Session) RunSeries(ctx context.Context, p Profile) (SeriesReport, error) {
	var out SeriesReport
	if err := p.validate(s.net.NumHeatExchangers()); err != nil {
		return out, err
	}
	if err := s.acquire(); err != nil {
		return out, err
	}
	defer s.busy.Store(false)

	for t, row := range p.Qext {
		for i, q := range row {
			if err := s.net.SetQext(i, q); err != nil {
				return out, err
			}
		}
		if len(p.SupplyTempC) > 0 {
			if err := s.net.SetSupplyTemperature(0, p.SupplyTempC[t]+network.KelvinOffset); err != nil {
				return out, err
			}
		}

		rep, err := s.runStep(ctx, t)
		out.Steps = append(out.Steps, rep)
		if err != nil {
			return out, err
		}
		if rep.Status == StatusNotConverged {
			out.NotConverged++
		}
	}
	s.o.log.Info("series finished", "steps", len(out.Steps), "not_converged", out.NotConverged)

	return out, nil
}

func (s *Session) runStep(ctx context.Context, step int) (rep StepReport, err error) {
	o := s.o
	ctx, span := o.tracer.Start(ctx, "orchestrator.Step",
		trace.WithAttributes(
			attribute.Int("step", step),
			attribute.Int("controller_count", len(s.controllers)),
		),
	)
	defer func() {
		span.SetAttributes(attribute.String("status", string(rep.Status)), attribute.Int("iterations", rep.Iterations))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		o.record(rep)
	}()

	rep.Step = step
	for _, c := range s.controllers {
		c.ResetTimeStep()
	}

	res, err := s.solve(ctx, &rep)
	if err != nil {
		return rep, err
	}
	if rep.WorstPoint, err = worstpoint.Locate(s.net, res); err != nil {
		rep.Status = StatusFailed
		return rep, err
	}
	s.pressure.Retarget(rep.WorstPoint)
	o.log.Debug("worst point", "step", step, "worst_point", s.net.HeatExchanger(rep.WorstPoint.HeatExchanger).Name,
		"dp_bar", rep.WorstPoint.DpBar)

	outcomes := make([]control.Outcome, len(s.controllers))
	for {
		rep.Iterations++
		done := true
		for i, c := range s.controllers {
			out, err := c.Step(s.net, res)
			if err != nil {
				rep.Status = StatusFailed
				return s.finish(rep, res, outcomes), fmt.Errorf("orchestrator: %s: %w", c.Name(), err)
			}
			outcomes[i] = out
			done = done && out.Done()
		}
		if done {
			rep.Status = StatusConverged
			break
		}

		next, err := s.solve(ctx, &rep)
		if err != nil {
			return s.finish(rep, res, outcomes), err
		}
		res = next
		o.log.Debug("control iteration", "step", step, "iteration", rep.Iterations)
		if rep.Iterations >= o.cfg.MaxIterations {
			rep.Status = StatusNotConverged
			break
		}
	}

	rep = s.finish(rep, res, outcomes)
	if rep.Status == StatusNotConverged {
		o.log.Warn("step not converged", "step", step, "error", rep.Err())
	} else {
		o.log.Info("step converged", "step", step, "iterations", rep.Iterations,
			"pump_mdot_kg_per_s", rep.Summary.PumpMdotKgPerS, "pump_dp_bar", rep.Summary.PumpDeltaPBar)
	}

	return rep, nil
}

// solve checks for cancellation, then solves. On failure it sets the status:
// diverged for solver.ErrDivergence, failed for any other solver error.
func (s *Session) solve(ctx context.Context, rep *StepReport) (*solver.Results, error) {
	if ctx.Err() != nil {
		rep.Status = StatusCancelled
		return nil, fmt.Errorf("%w: %w", ErrCancelled, context.Cause(ctx))
	}
	res, err := s.o.solver.Solve(ctx, s.net)
	if err != nil {
		rep.Status = StatusFailed
		if errors.Is(err, solver.ErrDivergence) {
			rep.Status = StatusDiverged
		}
		return nil, fmt.Errorf("orchestrator: step %d: %w", rep.Step, err)
	}

	return res, nil
}

// finish fills the margins and the summary. res describes the network after
// the last controller adjustment; outcomes are the last evaluations.
func (s *Session) finish(rep StepReport, res *solver.Results, outcomes []control.Outcome) StepReport {
	rep.Margins = make([]Margin, 0, len(s.controllers))
	for i, c := range s.controllers {
		st := c.State()
		rep.Margins = append(rep.Margins, Margin{
			Controller: c.Name(),
			Kind:       c.Kind(),
			Phase:      st.Phase,
			Outcome:    outcomes[i],
			Error:      st.LastError,
			Iterations: st.Iteration,
		})
	}
	if ms, err := worstpoint.Margins(s.net, res); err == nil {
		rep.WorstPoint.DpBar = ms[rep.WorstPoint.HeatExchanger].DpBar
	}

	if len(res.Pumps) > 0 {
		p := res.Pumps[0]
		rep.Summary = Summary{
			PumpMdotKgPerS: p.MdotKgPerS,
			PumpDeltaPBar:  p.DeltaPBar,
			PFlowBar:       p.PFlowBar,
			PReturnBar:     p.PReturnBar,
			TFlowC:         p.TFlowK - network.KelvinOffset,
			TReturnC:       p.TReturnK - network.KelvinOffset,
			HeatFedW:       p.HeatW,
		}
	}
	rep.Summary.DemandW = s.net.TotalQextW()

	return rep
}

func (o *Orchestrator) record(rep StepReport) {
	o.metrics.RecordStep(string(rep.Status), rep.WorstPoint.DpBar)
	for _, m := range rep.Margins {
		o.metrics.RecordControllerIterations(m.Kind, m.Iterations)
	}
}
