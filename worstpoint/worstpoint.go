// Package worstpoint finds the hydraulically weakest consumer of a solved
// network.
//
// The margin of a consumer is the pressure upstream of its flow control minus
// the pressure downstream of its heat exchanger, i.e. the differential the
// circuit offers across the whole consumer branch. The worst point is the
// heat exchanger with the smallest margin; ties go to the lowest index.
//
// Complexity: O(H) time and O(1) extra space for Locate, O(H) space for
// Margins, where H is the number of heat exchangers.
package worstpoint

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

// Sentinel errors.
var (
	// ErrNoHeatExchangers is returned for networks without consumers.
	ErrNoHeatExchangers = errors.New("worstpoint: network has no heat exchangers")

	// ErrResultsMismatch is returned when results do not cover the network's
	// heat exchangers or flow controls, or a margin is not a number.
	ErrResultsMismatch = errors.New("worstpoint: results do not match network")
)

// Point is the pressure margin of one consumer branch.
type Point struct {
	HeatExchanger int
	FlowControl   int
	// DpBar is p_from(flow control) − p_to(heat exchanger).
	DpBar float64
}

// Margins returns the margin of every heat exchanger, in index order.
func Margins(net *network.Network, res *solver.Results) ([]Point, error) {
	if net.NumHeatExchangers() == 0 {
		return nil, ErrNoHeatExchangers
	}
	if res == nil || len(res.HeatExchangers) != net.NumHeatExchangers() || len(res.FlowControls) != net.NumFlowControls() {
		return nil, fmt.Errorf("%w: %d heat exchangers, %d flow controls",
			ErrResultsMismatch, net.NumHeatExchangers(), net.NumFlowControls())
	}

	out := make([]Point, net.NumHeatExchangers())
	for i, h := range net.HeatExchangers() {
		dp := res.FlowControls[h.FlowControl].PFromBar - res.HeatExchangers[i].PToBar
		if math.IsNaN(dp) {
			return nil, fmt.Errorf("%w: margin of %q is NaN", ErrResultsMismatch, h.Name)
		}
		out[i] = Point{HeatExchanger: i, FlowControl: h.FlowControl, DpBar: dp}
	}

	return out, nil
}

// Locate returns the consumer with the smallest margin.
func Locate(net *network.Network, res *solver.Results) (Point, error) {
	all, err := Margins(net, res)
	if err != nil {
		return Point{}, err
	}

	worst := all[0]
	for _, p := range all[1:] {
		if p.DpBar < worst.DpBar {
			worst = p
		}
	}

	return worst, nil
}
