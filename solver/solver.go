// Package solver defines the contract between heatnet and a steady-state
// hydraulic-thermal solver.
//
// A Solver reads the current parameters of a network.Network and returns
// per-element results. It never mutates the network. A system that does not
// converge is reported as an error wrapping ErrDivergence, never as zeroed
// results.
package solver

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/heatnet/network"
)

// ErrDivergence marks a solve whose equation system did not converge to a
// physically consistent state. Retrying with the same inputs reproduces it.
var ErrDivergence = errors.New("solver: divergence")

// Divergence returns an error wrapping ErrDivergence with a formatted reason.
func Divergence(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDivergence, fmt.Sprintf(format, args...))
}

// Solver solves a network. Implementations must be safe to call repeatedly
// on the same network; a single call is atomic with respect to cancellation.
type Solver interface {
	Solve(ctx context.Context, net *network.Network) (*Results, error)
}

// Func adapts a function to the Solver interface.
type Func func(ctx context.Context, net *network.Network) (*Results, error)

// Solve calls f.
func (f Func) Solve(ctx context.Context, net *network.Network) (*Results, error) {
	return f(ctx, net)
}

// JunctionResult is the solved state of a junction.
type JunctionResult struct {
	PressureBar  float64
	TemperatureK float64
}

// PipeResult is the solved state of a pipe. VMeanMPerS and MdotKgPerS are
// signed: positive means flow from From to To.
type PipeResult struct {
	VMeanMPerS float64
	MdotKgPerS float64
	PFromBar   float64
	PToBar     float64
	TFromK     float64
	TToK       float64
}

// HeatExchangerResult is the solved state of a heat exchanger.
type HeatExchangerResult struct {
	PFromBar   float64
	PToBar     float64
	TFromK     float64
	TToK       float64
	VMeanMPerS float64
	MdotKgPerS float64
}

// FlowControlResult is the solved state of a flow control.
type FlowControlResult struct {
	PFromBar   float64
	PToBar     float64
	MdotKgPerS float64
	VMeanMPerS float64
}

// PumpResult is the solved state of a circulation pump.
type PumpResult struct {
	MdotKgPerS float64
	PFlowBar   float64
	PReturnBar float64
	DeltaPBar  float64
	TFlowK     float64
	TReturnK   float64
	// HeatW is the heat fed into the network: ṁ·cp·(TFlow − TReturn).
	HeatW float64
}

// Results holds one entry per network element, indexed like the network.
type Results struct {
	Junctions      []JunctionResult
	Pipes          []PipeResult
	HeatExchangers []HeatExchangerResult
	FlowControls   []FlowControlResult
	Pumps          []PumpResult
}

// NewResults allocates results sized for net.
func NewResults(net *network.Network) *Results {
	return &Results{
		Junctions:      make([]JunctionResult, net.NumJunctions()),
		Pipes:          make([]PipeResult, net.NumPipes()),
		HeatExchangers: make([]HeatExchangerResult, net.NumHeatExchangers()),
		FlowControls:   make([]FlowControlResult, net.NumFlowControls()),
		Pumps:          make([]PumpResult, net.NumPumps()),
	}
}

// Velocity returns the mean velocity of a pipe, heat exchanger or flow control.
func (r *Results) Velocity(ref network.Ref) (float64, error) {
	var n int
	switch ref.Kind {
	case network.KindPipe:
		n = len(r.Pipes)
	case network.KindHeatExchanger:
		n = len(r.HeatExchangers)
	case network.KindFlowControl:
		n = len(r.FlowControls)
	default:
		return 0, fmt.Errorf("%w: no velocity for %s", network.ErrInvalidValue, ref)
	}
	if ref.Index < 0 || ref.Index >= n {
		return 0, fmt.Errorf("%w: %s", network.ErrIndexOutOfRange, ref)
	}
	switch ref.Kind {
	case network.KindPipe:
		return r.Pipes[ref.Index].VMeanMPerS, nil
	case network.KindHeatExchanger:
		return r.HeatExchangers[ref.Index].VMeanMPerS, nil
	default:
		return r.FlowControls[ref.Index].VMeanMPerS, nil
	}
}

// Count returns the number of results of kind k.
func (r *Results) Count(k network.Kind) int {
	switch k {
	case network.KindPipe:
		return len(r.Pipes)
	case network.KindHeatExchanger:
		return len(r.HeatExchangers)
	case network.KindFlowControl:
		return len(r.FlowControls)
	case network.KindPump:
		return len(r.Pumps)
	default:
		return 0
	}
}
