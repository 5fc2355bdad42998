package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/config"
	"github.com/katalvlaran/heatnet/metrics"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/orchestrator"
	"github.com/katalvlaran/heatnet/sizing"
	"github.com/katalvlaran/heatnet/solver"
	"github.com/katalvlaran/heatnet/solver/lumped"
)

type simulateFlags struct {
	metricsOut string
	parallel   int
}

func newSimulateCmd(opts *options) *cobra.Command {
	f := &simulateFlags{}
	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>...",
		Short: "Build, size and run the control loop over every time step of each scenario",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, cat, log, err := opts.load(cmd)
			if err != nil {
				return err
			}
			reg := metrics.NewRegistry()
			env := &runEnv{cfg: cfg, cat: cat, log: log, metrics: reg}

			// every scenario owns its network, so runs are independent
			out := make([]bytes.Buffer, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(1, f.parallel))
			for i, path := range args {
				g.Go(func() error { return env.simulate(ctx, path, &out[i]) })
			}
			runErr := g.Wait()

			for i := range out {
				if _, err := out[i].WriteTo(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			if f.metricsOut != "" {
				if err := writeMetrics(f.metricsOut, reg); err != nil {
					return err
				}
			}

			return runErr
		},
	}
	cmd.Flags().StringVar(&f.metricsOut, "metrics-out", "", "write Prometheus text metrics to this file")
	cmd.Flags().IntVar(&f.parallel, "parallel", 1, "scenarios simulated concurrently")

	return cmd
}

// runEnv is what every scenario run shares.
type runEnv struct {
	cfg     config.Config
	cat     *catalog.Catalog
	log     *slog.Logger
	metrics *metrics.Registry
}

// simulate runs one scenario: route, build, orient pipes, size, control.
// The report goes to w; steps finished before an error are still written.
func (e *runEnv) simulate(ctx context.Context, path string, w io.Writer) error {
	runID := uuid.NewString()
	log := e.log.With("run_id", runID, "scenario", path)
	cfg := e.cfg

	s, err := loadScenario(path)
	if err != nil {
		return err
	}
	plan, err := s.plan(cfg.Route)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	net, err := network.BuildLayout(s.layout(plan, cfg.Network), cfg.NetworkOptions(e.cat))
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	profile, err := s.profile(cfg.Network)
	if err != nil {
		return err
	}

	sv := solver.Instrument(
		lumped.New(lumped.WithAmbient(cfg.Network.AmbientTemperatureC+network.KelvinOffset)),
		solver.WithMetrics(e.metrics),
	)
	reversed, _, err := sizing.CorrectFlowDirections(ctx, sv, net)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	fmt.Fprintf(w, "# %s (run %s): %d junctions, %d pipes, %d consumers, %d pipes reversed\n",
		s.Name, runID, net.NumJunctions(), net.NumPipes(), net.NumHeatExchangers(), reversed)

	if cfg.Sizing.Enabled {
		opt := sizing.New(sv,
			sizing.WithMaxSweeps(cfg.Sizing.MaxSweeps),
			sizing.WithLogger(log),
			sizing.WithMetrics(e.metrics),
		)
		rep, err := opt.Run(ctx, net, sizing.Plan{
			Mode:              network.PipeMode(cfg.Network.PipeMode),
			Catalog:           e.cat,
			VMaxPipe:          cfg.Sizing.VMaxPipe,
			VMaxHeatExchanger: cfg.Sizing.VMaxHeatExchanger,
			Step:              cfg.Sizing.StepM,
			Material:          cfg.Sizing.MaterialFilter,
			Insulation:        cfg.Sizing.InsulationFilter,
		})
		if err != nil {
			return fmt.Errorf("%s: sizing: %w", path, err)
		}
		fmt.Fprintf(w, "# sizing: pipes %s, heat exchangers %s, flow controls %s\n",
			describe(rep.Pipes), describe(rep.HeatExchangers), describe(rep.FlowControls))
	}

	o, err := orchestrator.New(sv, cfg.Control, orchestrator.WithLogger(log), orchestrator.WithMetrics(e.metrics))
	if err != nil {
		return err
	}
	sess, err := o.Attach(net)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	series, err := sess.RunSeries(ctx, profile)
	for _, st := range series.Steps {
		writeStep(w, net, st)
	}
	if err != nil {
		log.Error("simulation aborted", "steps", len(series.Steps), "error", err)
		return fmt.Errorf("%s: %w", path, err)
	}
	if series.NotConverged > 0 {
		fmt.Fprintf(w, "# %d of %d steps did not converge\n", series.NotConverged, len(series.Steps))
	}

	return nil
}

func describe(r sizing.Report) string {
	return fmt.Sprintf("%d grown/%d shrunk in %d sweeps (%d above limit)", r.Grown, r.Shrunk, r.Sweeps, len(r.AtLimit))
}

func writeStep(w io.Writer, net *network.Network, st orchestrator.StepReport) {
	sum := st.Summary
	worst := "-"
	if st.Status != orchestrator.StatusCancelled && st.WorstPoint.HeatExchanger < net.NumHeatExchangers() {
		worst = net.HeatExchanger(st.WorstPoint.HeatExchanger).Name
	}
	fmt.Fprintf(w, "step %d %s iterations=%d worst=%q dp=%.3fbar pump_mdot=%.3fkg/s pump_dp=%.3fbar "+
		"t_flow=%.1fC t_return=%.1fC heat=%.1fkW demand=%.1fkW\n",
		st.Step, st.Status, st.Iterations, worst, st.WorstPoint.DpBar,
		sum.PumpMdotKgPerS, sum.PumpDeltaPBar, sum.TFlowC, sum.TReturnC, sum.HeatFedW/1000, sum.DemandW/1000)
}

func writeMetrics(path string, reg *metrics.Registry) error {
	mfs, err := reg.Gatherer().Gather()
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(f, mf); err != nil {
			f.Close()
			return err
		}
	}

	return f.Close()
}
