// Package lumped is a simplified steady-state hydraulic-thermal solver for
// radial district heating networks with a single circulation pump.
//
// The forward and the return pipes must each form a tree rooted at the
// pump. Consumer mass flows are imposed by their flow controls, so pipe
// flows follow from summing the consumers downstream of each pipe; no
// equation system has to be iterated. Pressure losses use Darcy-Weisbach,
// heat losses an exponential decay towards the ambient temperature.
//
// The model is a stand-in for a full pipeflow engine: good enough to drive
// sizing and control loops end to end, not a physics reference.
package lumped

import (
	"context"
	"fmt"
	"math"

	"github.com/katalvlaran/heatnet/bfs"
	"github.com/katalvlaran/heatnet/core"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/solver"
)

const (
	// DefaultAmbientK is the soil temperature pipes lose heat to.
	DefaultAmbientK = 283.15
	// DefaultKinematicViscosity of water around 60 °C, in m²/s.
	DefaultKinematicViscosity = 4.7e-7

	pascalPerBar = 1e5
	laminarRe    = 2300.0
	freezingK    = network.KelvinOffset
)

// Option configures a Solver.
type Option func(*Solver)

// WithAmbient sets the ambient temperature in kelvin.
func WithAmbient(k float64) Option {
	return func(s *Solver) { s.ambientK = k }
}

// WithViscosity sets the kinematic viscosity in m²/s.
func WithViscosity(nu float64) Option {
	return func(s *Solver) { s.viscosity = nu }
}

// Solver implements solver.Solver for radial networks.
type Solver struct {
	ambientK  float64
	viscosity float64
}

var _ solver.Solver = (*Solver)(nil)

// New returns a Solver with the default ambient temperature and viscosity.
func New(opts ...Option) *Solver {
	s := &Solver{ambientK: DefaultAmbientK, viscosity: DefaultKinematicViscosity}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// tree is one pipe sub-network rooted at a pump junction.
type tree struct {
	root   network.JunctionID
	order  []network.JunctionID
	parent map[network.JunctionID]network.JunctionID
	// via is the pipe connecting a junction to its parent.
	via map[network.JunctionID]int
}

func (t *tree) has(j network.JunctionID) bool {
	if j == t.root {
		return true
	}
	_, ok := t.parent[j]
	return ok
}

// Solve computes flows, pressures and temperatures for net.
//
// Steps:
//  1. Root the forward tree at the pump outlet and the return tree at the
//     pump inlet; reject meshed or overlapping pipe networks.
//  2. Sum consumer mass flows onto the pipes between each consumer and the pump.
//  3. Propagate pressures: forward outwards from PFlow, return outwards from
//     PFlow − PLift, heat exchanger inlets above their outlets.
//  4. Propagate temperatures: forward with heat loss, through each heat
//     exchanger, then back along the return tree with mixing.
func (s *Solver) Solve(_ context.Context, net *network.Network) (*solver.Results, error) {
	if net.NumPumps() != 1 {
		return nil, solver.Divergence("lumped model needs exactly one pump, have %d", net.NumPumps())
	}
	pump := net.Pump(0)
	g, err := net.PipeTopology()
	if err != nil {
		return nil, fmt.Errorf("lumped: %w", err)
	}

	fwd, err := rooted(g, pump.FlowJunction, "forward")
	if err != nil {
		return nil, err
	}
	ret, err := rooted(g, pump.ReturnJunction, "return")
	if err != nil {
		return nil, err
	}
	for _, j := range fwd.order {
		if ret.has(j) {
			return nil, solver.Divergence("junction %d is on both the forward and the return pipes", j)
		}
	}

	res := solver.NewResults(net)
	flow := make([]float64, net.NumPipes()) // unsigned
	total := 0.0
	for i := 0; i < net.NumHeatExchangers(); i++ {
		h := net.HeatExchanger(i)
		fc := net.FlowControl(h.FlowControl)
		if !fwd.has(fc.From) || !ret.has(h.To) {
			return nil, solver.Divergence("consumer %q is not reachable from the pump", h.Name)
		}
		mdot := fc.ControlledMdotKgPerS
		if mdot <= 0 && h.QextW > 0 {
			return nil, solver.Divergence("consumer %q draws %g W without mass flow", h.Name, h.QextW)
		}
		for j := fc.From; j != fwd.root; j = fwd.parent[j] {
			flow[fwd.via[j]] += mdot
		}
		for j := h.To; j != ret.root; j = ret.parent[j] {
			flow[ret.via[j]] += mdot
		}
		total += mdot
	}

	s.pipeHydraulics(net, fwd, ret, flow, res)
	if err := s.pressures(net, fwd, ret, res); err != nil {
		return nil, err
	}
	if err := s.temperatures(net, fwd, ret, flow, res); err != nil {
		return nil, err
	}

	p := &res.Pumps[0]
	p.MdotKgPerS = total
	p.PFlowBar = pump.PFlowBar
	p.PReturnBar = pump.PFlowBar - pump.PLiftBar
	p.DeltaPBar = pump.PLiftBar
	p.TFlowK = pump.TFlowK
	p.TReturnK = res.Junctions[pump.ReturnJunction].TemperatureK
	p.HeatW = total * network.SpecificHeatWater * (p.TFlowK - p.TReturnK)

	return res, nil
}

func rooted(g *core.Graph, root network.JunctionID, side string) (*tree, error) {
	r, err := bfs.BFS(g, network.VertexID(root))
	if err != nil {
		return nil, solver.Divergence("%s tree: %v", side, err)
	}
	if r.EdgesSeen != len(r.Order)-1 {
		return nil, solver.Divergence("%s pipes are meshed: %d pipes over %d junctions", side, r.EdgesSeen, len(r.Order))
	}
	t := &tree{
		root:   root,
		order:  make([]network.JunctionID, 0, len(r.Order)),
		parent: make(map[network.JunctionID]network.JunctionID, len(r.Order)),
		via:    make(map[network.JunctionID]int, len(r.Order)),
	}
	for _, vid := range r.Order {
		j, _ := network.ParseVertexID(vid)
		t.order = append(t.order, j)
		if vid == network.VertexID(root) {
			continue
		}
		pj, _ := network.ParseVertexID(r.Parent[vid])
		ref, err := network.ParseEdgeID(r.ParentEdge[vid])
		if err != nil {
			return nil, err
		}
		t.parent[j] = pj
		t.via[j] = ref.Index
	}

	return t, nil
}

// pipeHydraulics fills signed mass flow and velocity for every tree pipe.
// Forward flow runs parent → child, return flow child → parent.
func (s *Solver) pipeHydraulics(net *network.Network, fwd, ret *tree, flow []float64, res *solver.Results) {
	sign := func(i int, from network.JunctionID) float64 {
		if net.Pipe(i).From == from {
			return 1
		}
		return -1
	}
	for child, i := range fwd.via {
		res.Pipes[i].MdotKgPerS = sign(i, fwd.parent[child]) * flow[i]
	}
	for child, i := range ret.via {
		res.Pipes[i].MdotKgPerS = sign(i, child) * flow[i]
	}
	for i := range res.Pipes {
		res.Pipes[i].VMeanMPerS = velocity(res.Pipes[i].MdotKgPerS, net.Pipe(i).DiameterM)
	}
}

func (s *Solver) pressures(net *network.Network, fwd, ret *tree, res *solver.Results) error {
	pump := net.Pump(0)
	p := make([]float64, net.NumJunctions())
	for j := range p {
		p[j] = math.NaN()
	}

	p[fwd.root] = pump.PFlowBar
	for _, j := range fwd.order[1:] {
		p[j] = p[fwd.parent[j]] - s.pipeDrop(net.Pipe(fwd.via[j]), res.Pipes[fwd.via[j]].VMeanMPerS)
	}
	p[ret.root] = pump.PFlowBar - pump.PLiftBar
	for _, j := range ret.order[1:] {
		p[j] = p[ret.parent[j]] + s.pipeDrop(net.Pipe(ret.via[j]), res.Pipes[ret.via[j]].VMeanMPerS)
	}

	for i := 0; i < net.NumHeatExchangers(); i++ {
		h := net.HeatExchanger(i)
		fc := net.FlowControl(h.FlowControl)
		mdot := fc.ControlledMdotKgPerS
		vh := velocity(mdot, h.DiameterM)
		hr := &res.HeatExchangers[i]
		hr.MdotKgPerS = mdot
		hr.VMeanMPerS = vh
		hr.PToBar = p[h.To]
		hr.PFromBar = hr.PToBar + h.LossCoefficient*network.WaterDensity*vh*vh/2/pascalPerBar
		p[h.From] = hr.PFromBar

		fr := &res.FlowControls[h.FlowControl]
		fr.MdotKgPerS = mdot
		fr.VMeanMPerS = velocity(mdot, fc.DiameterM)
		fr.PFromBar = p[fc.From]
		fr.PToBar = hr.PFromBar
	}

	for j, v := range p {
		if math.IsNaN(v) {
			return solver.Divergence("junction %d has no pressure path to the pump", j)
		}
		if v < 0 {
			return solver.Divergence("negative absolute pressure %.3f bar at junction %d", v, j)
		}
		res.Junctions[j].PressureBar = v
	}
	for i := range res.Pipes {
		pp := net.Pipe(i)
		res.Pipes[i].PFromBar = p[pp.From]
		res.Pipes[i].PToBar = p[pp.To]
	}

	return nil
}

func (s *Solver) temperatures(net *network.Network, fwd, ret *tree, flow []float64, res *solver.Results) error {
	pump := net.Pump(0)
	t := make([]float64, net.NumJunctions())

	t[fwd.root] = pump.TFlowK
	for _, j := range fwd.order[1:] {
		i := fwd.via[j]
		t[j] = s.cooled(net.Pipe(i), t[fwd.parent[j]], flow[i])
	}

	// Return junctions mix what arrives from heat exchangers and child pipes.
	heat := make([]float64, net.NumJunctions())
	mass := make([]float64, net.NumJunctions())
	for i := 0; i < net.NumHeatExchangers(); i++ {
		h := net.HeatExchanger(i)
		mdot := net.FlowControl(h.FlowControl).ControlledMdotKgPerS
		hr := &res.HeatExchangers[i]
		hr.TFromK = t[net.FlowControl(h.FlowControl).From]
		t[h.From] = hr.TFromK
		hr.TToK = hr.TFromK
		if mdot > 0 {
			hr.TToK = hr.TFromK - h.QextW/(mdot*network.SpecificHeatWater)
		}
		if hr.TToK <= freezingK {
			return solver.Divergence("consumer %q outlet at %.1f K: %g W cannot be drawn from %g kg/s",
				h.Name, hr.TToK, h.QextW, mdot)
		}
		heat[h.To] += mdot * hr.TToK
		mass[h.To] += mdot
	}
	for k := len(ret.order) - 1; k >= 0; k-- {
		j := ret.order[k]
		if mass[j] > 0 {
			t[j] = heat[j] / mass[j]
		} else {
			t[j] = net.Junction(j).TemperatureK
		}
		if j == ret.root {
			continue
		}
		i := ret.via[j]
		out := s.cooled(net.Pipe(i), t[j], flow[i])
		heat[ret.parent[j]] += flow[i] * out
		mass[ret.parent[j]] += flow[i]
	}

	for j := range t {
		res.Junctions[j].TemperatureK = t[j]
	}
	for i := range res.Pipes {
		pp := net.Pipe(i)
		res.Pipes[i].TFromK = t[pp.From]
		res.Pipes[i].TToK = t[pp.To]
	}

	return nil
}

// cooled returns the outlet temperature of a pipe carrying mdot at inlet tIn.
// A pipe without flow passes its inlet temperature through.
func (s *Solver) cooled(p network.Pipe, tIn, mdot float64) float64 {
	if mdot <= 0 {
		return tIn
	}
	k := p.AlphaWPerM2K * math.Pi * p.DiameterM * p.LengthM / (mdot * network.SpecificHeatWater)

	return s.ambientK + (tIn-s.ambientK)*math.Exp(-k)
}

// pipeDrop returns the Darcy-Weisbach pressure loss in bar.
func (s *Solver) pipeDrop(p network.Pipe, v float64) float64 {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	re := v * p.DiameterM / s.viscosity
	f := friction(re, p.RoughnessMM/1000, p.DiameterM)

	return f * p.LengthM / p.DiameterM * network.WaterDensity * v * v / 2 / pascalPerBar
}

// friction returns the Darcy friction factor: 64/Re when laminar,
// Swamee–Jain otherwise.
func friction(re, roughnessM, diameterM float64) float64 {
	if re < laminarRe {
		return 64 / re
	}
	l := math.Log10(roughnessM/(3.7*diameterM) + 5.74/math.Pow(re, 0.9))

	return 0.25 / (l * l)
}

func velocity(mdot, diameterM float64) float64 {
	return mdot / (network.WaterDensity * math.Pi / 4 * diameterM * diameterM)
}
