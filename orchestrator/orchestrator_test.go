package orchestrator_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/katalvlaran/heatnet/config"
	"github.com/katalvlaran/heatnet/control"
	"github.com/katalvlaran/heatnet/metrics"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/network/networktest"
	"github.com/katalvlaran/heatnet/orchestrator"
	"github.com/katalvlaran/heatnet/solver"
	"github.com/katalvlaran/heatnet/solver/lumped"
)

type OrchestratorSuite struct {
	suite.Suite
	net     *network.Network
	reg     *metrics.Registry
	spans   *tracetest.SpanRecorder
	session *orchestrator.Session
}

func (s *OrchestratorSuite) SetupTest() {
	s.net = networktest.MustBuild(networktest.Chain(2, 100, 60000))
	s.reg = metrics.NewRegistry()
	s.spans = tracetest.NewSpanRecorder()
	s.session = s.attach(lumped.New(), config.DefaultControl())
}

func (s *OrchestratorSuite) attach(sv solver.Solver, cfg config.Control) *orchestrator.Session {
	o, err := orchestrator.New(sv, cfg,
		orchestrator.WithMetrics(s.reg),
		orchestrator.WithTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(s.spans))),
	)
	s.Require().NoError(err)
	sess, err := o.Attach(s.net)
	s.Require().NoError(err)

	return sess
}

func (s *OrchestratorSuite) TestStepConverges() {
	rep, err := s.session.RunStep(context.Background(), 0)
	s.Require().NoError(err)
	s.Equal(orchestrator.StatusConverged, rep.Status)
	s.NoError(rep.Err())
	s.Greater(rep.Iterations, 1)
	s.Equal(1, rep.WorstPoint.HeatExchanger, "the far consumer has the smallest margin")
	s.InDelta(1.0, rep.WorstPoint.DpBar, 0.2)

	s.Len(rep.Margins, 3)
	s.Equal(control.KindPressure, rep.Margins[0].Kind)
	for _, m := range rep.Margins {
		s.True(m.Outcome.Done(), m.Controller)
	}
	s.InDelta(120000, rep.Summary.DemandW, 1e-9)
	s.Greater(rep.Summary.HeatFedW, rep.Summary.DemandW)
	s.InDelta(90, rep.Summary.TFlowC, 1e-9)

	s.Equal(1.0, testutil.ToFloat64(s.reg.StepsTotal.WithLabelValues(string(orchestrator.StatusConverged))))
	s.Len(s.spans.Ended(), 1)
	s.Equal("orchestrator.Step", s.spans.Ended()[0].Name())
}

func (s *OrchestratorSuite) TestIdleStepChangesNothing() {
	for i := 0; i < s.net.NumHeatExchangers(); i++ {
		s.Require().NoError(s.net.SetQext(i, 0))
	}
	pump := s.net.Pump(0)
	mdot := s.net.FlowControl(0).ControlledMdotKgPerS

	rep, err := s.session.RunStep(context.Background(), 0)
	s.Require().NoError(err)
	s.Equal(orchestrator.StatusConverged, rep.Status)
	s.Equal(1, rep.Iterations)
	s.Equal(pump, s.net.Pump(0))
	s.Equal(mdot, s.net.FlowControl(0).ControlledMdotKgPerS)
	for _, m := range rep.Margins {
		s.Equal(control.PhaseIdle, m.Phase)
	}
}

func (s *OrchestratorSuite) TestIterationCapIsNotFatal() {
	cfg := config.DefaultControl()
	cfg.MaxIterations = 1
	sess := s.attach(lumped.New(), cfg)

	rep, err := sess.RunStep(context.Background(), 7)
	s.Require().NoError(err)
	s.Equal(orchestrator.StatusNotConverged, rep.Status)
	s.Equal(1, rep.Iterations)

	var ce *orchestrator.ConvergenceError
	s.Require().ErrorAs(rep.Err(), &ce)
	s.ErrorIs(rep.Err(), orchestrator.ErrConvergenceNotReached)
	s.Equal(7, ce.Step)
	s.NotEmpty(ce.Pending)
	s.Contains(ce.Error(), "step 7")
}

func (s *OrchestratorSuite) TestSeriesContinuesAfterNonConvergence() {
	cfg := config.DefaultControl()
	cfg.MaxIterations = 1
	sess := s.attach(lumped.New(), cfg)

	p := orchestrator.Profile{
		Qext:        [][]float64{{60000, 60000}, {0, 0}, {30000, 45000}},
		SupplyTempC: []float64{90, 85, 80},
	}
	rep, err := sess.RunSeries(context.Background(), p)
	s.Require().NoError(err)
	s.Require().Len(rep.Steps, 3)
	s.Equal(orchestrator.StatusNotConverged, rep.Steps[0].Status)
	s.Equal(orchestrator.StatusConverged, rep.Steps[1].Status)
	s.GreaterOrEqual(rep.NotConverged, 1)
	s.InDelta(75000, rep.Steps[2].Summary.DemandW, 1e-9)
	s.InDelta(80, rep.Steps[2].Summary.TFlowC, 1e-9)
	s.Len(s.spans.Ended(), 3)
}

func (s *OrchestratorSuite) TestSeriesStopsOnDivergence() {
	inner := lumped.New()
	sv := solver.Func(func(ctx context.Context, n *network.Network) (*solver.Results, error) {
		if n.TotalQextW() > 100000 {
			return nil, solver.Divergence("too much load")
		}
		return inner.Solve(ctx, n)
	})
	sess := s.attach(sv, config.DefaultControl())

	rep, err := sess.RunSeries(context.Background(), orchestrator.Profile{
		Qext: [][]float64{{0, 0}, {60000, 60000}, {0, 0}},
	})
	s.ErrorIs(err, solver.ErrDivergence)
	s.Require().Len(rep.Steps, 2)
	s.Equal(orchestrator.StatusDiverged, rep.Steps[1].Status)
	s.Equal(1.0, testutil.ToFloat64(s.reg.StepsTotal.WithLabelValues(string(orchestrator.StatusDiverged))))
}

func (s *OrchestratorSuite) TestUnusableReadingFailsWithoutDivergence() {
	inner := lumped.New()
	sv := solver.Func(func(ctx context.Context, n *network.Network) (*solver.Results, error) {
		res, err := inner.Solve(ctx, n)
		if err != nil {
			return nil, err
		}
		res.HeatExchangers[1].TToK = math.NaN()
		return res, nil
	})
	sess := s.attach(sv, config.DefaultControl())

	rep, err := sess.RunStep(context.Background(), 0)
	s.ErrorIs(err, control.ErrBadReading)
	s.NotErrorIs(err, solver.ErrDivergence)
	s.Equal(orchestrator.StatusFailed, rep.Status)
	s.Equal(1.0, testutil.ToFloat64(s.reg.StepsTotal.WithLabelValues(string(orchestrator.StatusFailed))))
	s.Zero(testutil.ToFloat64(s.reg.StepsTotal.WithLabelValues(string(orchestrator.StatusDiverged))))
}

func (s *OrchestratorSuite) TestSolverErrorOtherThanDivergenceFails() {
	broken := errors.New("license server unreachable")
	sess := s.attach(solver.Func(func(context.Context, *network.Network) (*solver.Results, error) {
		return nil, broken
	}), config.DefaultControl())

	rep, err := sess.RunStep(context.Background(), 0)
	s.ErrorIs(err, broken)
	s.Equal(orchestrator.StatusFailed, rep.Status)
}

func (s *OrchestratorSuite) TestCancelled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := s.session.RunStep(ctx, 0)
	s.ErrorIs(err, orchestrator.ErrCancelled)
	s.ErrorIs(err, context.Canceled)
	s.Equal(orchestrator.StatusCancelled, rep.Status)
}

func (s *OrchestratorSuite) TestCancelledBetweenSolves() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inner := lumped.New()
	calls := 0
	sv := solver.Func(func(ctx context.Context, n *network.Network) (*solver.Results, error) {
		calls++
		if calls == 2 {
			cancel()
		}
		return inner.Solve(ctx, n)
	})
	sess := s.attach(sv, config.DefaultControl())

	rep, err := sess.RunStep(ctx, 0)
	s.ErrorIs(err, orchestrator.ErrCancelled)
	s.Equal(orchestrator.StatusCancelled, rep.Status)
	s.Equal(2, calls, "the running solve finishes, the next one is not started")
	s.Len(rep.Margins, 3)
}

func (s *OrchestratorSuite) TestSessionIsExclusive() {
	entered, release := make(chan struct{}), make(chan struct{})
	inner := lumped.New()
	first := true
	sv := solver.Func(func(ctx context.Context, n *network.Network) (*solver.Results, error) {
		if first {
			first = false
			close(entered)
			<-release
		}
		return inner.Solve(ctx, n)
	})
	sess := s.attach(sv, config.DefaultControl())

	done := make(chan error, 1)
	go func() {
		_, err := sess.RunStep(context.Background(), 0)
		done <- err
	}()
	<-entered
	_, err := sess.RunStep(context.Background(), 1)
	s.ErrorIs(err, orchestrator.ErrSessionBusy)
	_, err = sess.RunSeries(context.Background(), orchestrator.Profile{Qext: [][]float64{{0, 0}}})
	s.ErrorIs(err, orchestrator.ErrSessionBusy)

	close(release)
	s.NoError(<-done)
}

func (s *OrchestratorSuite) TestInvalidProfile() {
	cases := []orchestrator.Profile{
		{Qext: [][]float64{{1}}},
		{Qext: [][]float64{{1, -1}}},
		{Qext: [][]float64{{1, 1}}, SupplyTempC: []float64{90, 90}},
	}
	for _, p := range cases {
		_, err := s.session.RunSeries(context.Background(), p)
		s.ErrorIs(err, orchestrator.ErrInvalidProfile)
	}
}

func TestOrchestratorSuite(t *testing.T) {
	suite.Run(t, new(OrchestratorSuite))
}

func TestNewValidatesControl(t *testing.T) {
	cfg := config.DefaultControl()
	cfg.MinVelocity, cfg.MaxVelocity = 2, 1
	_, err := orchestrator.New(lumped.New(), cfg)
	assert.ErrorIs(t, err, config.ErrOutOfRange)
}

func TestAttachBoundsFlowControls(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(1, 100, 60000))
	cfg := config.DefaultControl()
	cfg.MaxVelocity = 1
	o, err := orchestrator.New(lumped.New(), cfg)
	require.NoError(t, err)
	sess, err := o.Attach(n)
	require.NoError(t, err)

	_, hi := network.MassFlowBounds(n.HeatExchanger(0).DiameterM, cfg.MinVelocity, cfg.MaxVelocity)
	assert.Equal(t, hi, n.FlowControl(0).MaxMdotKgPerS)
	assert.Len(t, sess.Controllers(), 2)
	assert.Same(t, n, sess.Network())
}

func TestConvergenceErrorMessage(t *testing.T) {
	e := &orchestrator.ConvergenceError{Step: 3, Iterations: 100, Pending: []orchestrator.Margin{
		{Controller: "pressure[pump 0]", Error: 0.3},
		{Controller: "return_temperature[HAST 1]", Error: -4},
	}}
	assert.Equal(t,
		"orchestrator: convergence not reached at step 3 after 100 iterations: pressure[pump 0] error 0.3; return_temperature[HAST 1] error -4",
		e.Error())
	assert.True(t, errors.Is(e, orchestrator.ErrConvergenceNotReached))
}
