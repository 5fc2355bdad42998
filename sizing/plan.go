package sizing

import (
	"context"
	"fmt"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// CorrectFlowDirections solves net, swaps the endpoints of every pipe whose
// solved velocity is negative and, if any were swapped, solves again. It
// returns the number of swapped pipes and the results for the final state.
func CorrectFlowDirections(ctx context.Context, s solver.Solver, net *network.Network) (int, *solver.Results, error) {
	res, err := s.Solve(ctx, net)
	if err != nil {
		return 0, nil, fmt.Errorf("sizing: %w", err)
	}

	swapped := 0
	for i, p := range res.Pipes {
		if p.VMeanMPerS >= 0 {
			continue
		}
		if err = net.ReversePipe(i); err != nil {
			return swapped, nil, err
		}
		swapped++
	}
	if swapped == 0 {
		return 0, res, nil
	}

	if err = ctx.Err(); err != nil {
		return swapped, nil, fmt.Errorf("sizing: %w", context.Cause(ctx))
	}
	if res, err = s.Solve(ctx, net); err != nil {
		return swapped, nil, fmt.Errorf("sizing: %w", err)
	}

	return swapped, res, nil
}

// Plan is the full sizing pass over a network: pipes first, by catalog type
// or by diameter, then heat exchangers and flow controls by diameter.
type Plan struct {
	// Mode selects catalog or diameter sizing for pipes.
	Mode network.PipeMode
	// Catalog is required in ModeType.
	Catalog *catalog.Catalog

	VMaxPipe          float64
	VMaxHeatExchanger float64
	// Step is the diameter increment for every continuous pass.
	Step float64

	Material   string
	Insulation string
}

// PlanReport collects the per-kind reports of a Plan run.
type PlanReport struct {
	Pipes          Report
	HeatExchangers Report
	FlowControls   Report
}

// Run executes p against net. It stops at the first failing pass, restores
// net to its state before the run and returns the reports gathered so far.
func (o *Optimizer) Run(ctx context.Context, net *network.Network, p Plan) (out PlanReport, err error) {
	snapshot := net.Clone()
	defer func() {
		if err != nil {
			net.Restore(snapshot)
			o.log.Warn("sizing plan rolled back", "error", err)
		}
	}()

	switch p.Mode {
	case network.ModeType:
		if p.Catalog == nil {
			return out, fmt.Errorf("%w: type mode needs a catalog", ErrInvalidSettings)
		}
		out.Pipes, err = o.Catalog(ctx, net, p.Catalog, CatalogSettings{
			VMax: p.VMaxPipe, Material: p.Material, Insulation: p.Insulation,
		})
	case network.ModeDiameter, "":
		out.Pipes, err = o.Continuous(ctx, net, network.KindPipe, ContinuousSettings{VMax: p.VMaxPipe, Step: p.Step})
	default:
		return out, fmt.Errorf("%w: pipe mode %v", ErrInvalidSettings, p.Mode)
	}
	if err != nil {
		return out, err
	}

	hx := ContinuousSettings{VMax: p.VMaxHeatExchanger, Step: p.Step}
	if out.HeatExchangers, err = o.Continuous(ctx, net, network.KindHeatExchanger, hx); err != nil {
		return out, err
	}
	out.FlowControls, err = o.Continuous(ctx, net, network.KindFlowControl, hx)

	return out, err
}
