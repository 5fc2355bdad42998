package network

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/core"
)

// Network is the mutable circuit model. It is not safe for concurrent use;
// one run owns it at a time.
type Network struct {
	junctions []Junction
	pipes     []Pipe
	hx        []HeatExchanger
	fc        []FlowControl
	pumps     []Pump
}

// NumJunctions returns the number of junctions.
func (n *Network) NumJunctions() int { return len(n.junctions) }

// NumPipes returns the number of pipes.
func (n *Network) NumPipes() int { return len(n.pipes) }

// NumHeatExchangers returns the number of heat exchangers.
func (n *Network) NumHeatExchangers() int { return len(n.hx) }

// NumFlowControls returns the number of flow controls.
func (n *Network) NumFlowControls() int { return len(n.fc) }

// NumPumps returns the number of pumps.
func (n *Network) NumPumps() int { return len(n.pumps) }

// Count returns the number of elements of kind k.
func (n *Network) Count(k Kind) int {
	switch k {
	case KindPipe:
		return len(n.pipes)
	case KindHeatExchanger:
		return len(n.hx)
	case KindFlowControl:
		return len(n.fc)
	case KindPump:
		return len(n.pumps)
	default:
		return 0
	}
}

// Junction returns junction id.
func (n *Network) Junction(id JunctionID) Junction { return n.junctions[id] }

// Junctions returns a copy of all junctions.
func (n *Network) Junctions() []Junction { return append([]Junction(nil), n.junctions...) }

// Pipe returns pipe i.
func (n *Network) Pipe(i int) Pipe { return n.pipes[i] }

// Pipes returns a copy of all pipes.
func (n *Network) Pipes() []Pipe { return append([]Pipe(nil), n.pipes...) }

// HeatExchanger returns heat exchanger i.
func (n *Network) HeatExchanger(i int) HeatExchanger { return n.hx[i] }

// HeatExchangers returns a copy of all heat exchangers.
func (n *Network) HeatExchangers() []HeatExchanger {
	return append([]HeatExchanger(nil), n.hx...)
}

// FlowControl returns flow control i.
func (n *Network) FlowControl(i int) FlowControl { return n.fc[i] }

// FlowControls returns a copy of all flow controls.
func (n *Network) FlowControls() []FlowControl { return append([]FlowControl(nil), n.fc...) }

// Pump returns pump i.
func (n *Network) Pump(i int) Pump { return n.pumps[i] }

// TotalQextW returns the summed heat demand of all heat exchangers.
func (n *Network) TotalQextW() float64 {
	total := 0.0
	for _, h := range n.hx {
		total += h.QextW
	}

	return total
}

func (n *Network) check(k Kind, i int) error {
	if i < 0 || i >= n.Count(k) {
		return fmt.Errorf("%w: %s[%d]", ErrIndexOutOfRange, k, i)
	}

	return nil
}

// Diameter returns the diameter of a pipe, heat exchanger or flow control.
func (n *Network) Diameter(r Ref) (float64, error) {
	if err := n.check(r.Kind, r.Index); err != nil {
		return 0, err
	}
	switch r.Kind {
	case KindPipe:
		return n.pipes[r.Index].DiameterM, nil
	case KindHeatExchanger:
		return n.hx[r.Index].DiameterM, nil
	case KindFlowControl:
		return n.fc[r.Index].DiameterM, nil
	case KindPump:
		return 0, fmt.Errorf("%w: pumps have no diameter", ErrInvalidValue)
	}

	return 0, fmt.Errorf("%w: %s", ErrInvalidValue, r)
}

// SetDiameter sets the diameter of a pipe, heat exchanger or flow control.
// Setting a pipe diameter directly clears its catalog type.
func (n *Network) SetDiameter(r Ref, d float64) error {
	if err := n.check(r.Kind, r.Index); err != nil {
		return err
	}
	if !(d > 0) || math.IsInf(d, 0) {
		return fmt.Errorf("%w: diameter %g m for %s", ErrInvalidValue, d, r)
	}
	switch r.Kind {
	case KindPipe:
		n.pipes[r.Index].DiameterM = d
		n.pipes[r.Index].StdType = ""
	case KindHeatExchanger:
		n.hx[r.Index].DiameterM = d
	case KindFlowControl:
		n.fc[r.Index].DiameterM = d
	case KindPump:
		return fmt.Errorf("%w: pumps have no diameter", ErrInvalidValue)
	}

	return nil
}

// ApplyPipeType sets pipe i to catalog entry e: type name, inner diameter,
// roughness and heat transfer coefficient.
func (n *Network) ApplyPipeType(i int, e catalog.Entry) error {
	if err := n.check(KindPipe, i); err != nil {
		return err
	}
	if e.InnerDiameterMM <= 0 {
		return fmt.Errorf("%w: pipe type %q has no diameter", ErrInvalidValue, e.Name)
	}
	p := &n.pipes[i]
	p.StdType = e.Name
	p.DiameterM = e.DiameterM()
	p.RoughnessMM = e.RoughnessMM
	p.AlphaWPerM2K = e.HeatTransferWPerM2K

	return nil
}

// ReversePipe swaps the endpoints of pipe i.
func (n *Network) ReversePipe(i int) error {
	if err := n.check(KindPipe, i); err != nil {
		return err
	}
	p := &n.pipes[i]
	p.From, p.To = p.To, p.From

	return nil
}

// SetQext sets the heat demand of heat exchanger i.
func (n *Network) SetQext(i int, w float64) error {
	if err := n.check(KindHeatExchanger, i); err != nil {
		return err
	}
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: qext %g W", ErrInvalidValue, w)
	}
	n.hx[i].QextW = w

	return nil
}

// SetTargetReturnTemperature sets the return temperature target of heat exchanger i.
func (n *Network) SetTargetReturnTemperature(i int, c float64) error {
	if err := n.check(KindHeatExchanger, i); err != nil {
		return err
	}
	n.hx[i].TargetReturnTempC = c

	return nil
}

// SetMassFlowBounds sets the mass flow range of flow control i and re-clamps
// its controlled mass flow into it.
func (n *Network) SetMassFlowBounds(i int, minMdot, maxMdot float64) error {
	if err := n.check(KindFlowControl, i); err != nil {
		return err
	}
	if minMdot < 0 || maxMdot < minMdot {
		return fmt.Errorf("%w: mass flow bounds [%g, %g]", ErrInvalidValue, minMdot, maxMdot)
	}
	f := &n.fc[i]
	f.MinMdotKgPerS, f.MaxMdotKgPerS = minMdot, maxMdot
	f.ControlledMdotKgPerS = clamp(f.ControlledMdotKgPerS, minMdot, maxMdot)

	return nil
}

// SetControlledMdot sets the mass flow of flow control i, clamped into its
// bounds, and returns the value actually stored.
func (n *Network) SetControlledMdot(i int, mdot float64) (float64, error) {
	if err := n.check(KindFlowControl, i); err != nil {
		return 0, err
	}
	if math.IsNaN(mdot) {
		return 0, fmt.Errorf("%w: mass flow NaN", ErrInvalidValue)
	}
	f := &n.fc[i]
	f.ControlledMdotKgPerS = clamp(mdot, f.MinMdotKgPerS, f.MaxMdotKgPerS)

	return f.ControlledMdotKgPerS, nil
}

// ShiftPumpSetpoints adds dLift to PLiftBar and dFlow to PFlowBar of pump i.
func (n *Network) ShiftPumpSetpoints(i int, dLift, dFlow float64) error {
	if err := n.check(KindPump, i); err != nil {
		return err
	}
	n.pumps[i].PLiftBar += dLift
	n.pumps[i].PFlowBar += dFlow

	return nil
}

// SetSupplyTemperature sets the flow temperature of pump i in kelvin.
func (n *Network) SetSupplyTemperature(i int, tK float64) error {
	if err := n.check(KindPump, i); err != nil {
		return err
	}
	if !(tK > 0) {
		return fmt.Errorf("%w: supply temperature %g K", ErrInvalidValue, tK)
	}
	n.pumps[i].TFlowK = tK

	return nil
}

// Clone returns a deep copy.
func (n *Network) Clone() *Network {
	c := &Network{}
	c.Restore(n)

	return c
}

// Restore overwrites n with a deep copy of snapshot, typically an earlier
// Clone of n.
func (n *Network) Restore(snapshot *Network) {
	n.junctions = append([]Junction(nil), snapshot.junctions...)
	n.pipes = append([]Pipe(nil), snapshot.pipes...)
	n.hx = append([]HeatExchanger(nil), snapshot.hx...)
	n.fc = append([]FlowControl(nil), snapshot.fc...)
	n.pumps = append([]Pump(nil), snapshot.pumps...)
}

// Topology returns an undirected multigraph over all junctions with one edge
// per element. Edge ids come from EdgeID; pipe edges are weighted by length.
func (n *Network) Topology() (*core.Graph, error) {
	g, err := n.junctionGraph()
	if err != nil {
		return nil, err
	}
	for i, p := range n.pipes {
		if err := addElement(g, Ref{KindPipe, i}, p.From, p.To, p.LengthM); err != nil {
			return nil, err
		}
	}
	for i, h := range n.hx {
		if err := addElement(g, Ref{KindHeatExchanger, i}, h.From, h.To, 0); err != nil {
			return nil, err
		}
	}
	for i, f := range n.fc {
		if err := addElement(g, Ref{KindFlowControl, i}, f.From, f.To, 0); err != nil {
			return nil, err
		}
	}
	for i, p := range n.pumps {
		if err := addElement(g, Ref{KindPump, i}, p.ReturnJunction, p.FlowJunction, 0); err != nil {
			return nil, err
		}
	}

	return g, nil
}

// PipeTopology returns an undirected multigraph over all junctions holding
// only the pipes.
func (n *Network) PipeTopology() (*core.Graph, error) {
	g, err := n.junctionGraph()
	if err != nil {
		return nil, err
	}
	for i, p := range n.pipes {
		if err := addElement(g, Ref{KindPipe, i}, p.From, p.To, p.LengthM); err != nil {
			return nil, err
		}
	}

	return g, nil
}

func (n *Network) junctionGraph() (*core.Graph, error) {
	g := core.NewGraph(core.WithWeighted(), core.WithMultiEdges())
	for _, j := range n.junctions {
		if err := g.AddVertex(VertexID(j.ID)); err != nil {
			return nil, fmt.Errorf("%w: junction %d: %v", ErrInvalidTopology, j.ID, err)
		}
	}

	return g, nil
}

// addElement adds r as an edge between from and to. Self-loops and unknown
// junctions are topology errors.
func addElement(g *core.Graph, r Ref, from, to JunctionID, weight float64) error {
	if from == to {
		return fmt.Errorf("%w: %s is a self-loop at junction %d", ErrInvalidTopology, r, from)
	}
	if !g.HasVertex(VertexID(from)) || !g.HasVertex(VertexID(to)) {
		return fmt.Errorf("%w: %s references unknown junction (%d, %d)", ErrInvalidTopology, r, from, to)
	}
	if _, err := g.AddEdge(VertexID(from), VertexID(to), weight, core.WithID(EdgeID(r))); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidTopology, r, err)
	}

	return nil
}

// VertexID renders a junction id as a graph vertex id ("j<id>").
func VertexID(id JunctionID) string { return "j" + strconv.Itoa(int(id)) }

// ParseVertexID is the inverse of VertexID.
func ParseVertexID(s string) (JunctionID, error) {
	if !strings.HasPrefix(s, "j") {
		return 0, fmt.Errorf("%w: vertex id %q", ErrInvalidValue, s)
	}
	v, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, fmt.Errorf("%w: vertex id %q", ErrInvalidValue, s)
	}

	return JunctionID(v), nil
}

// EdgeID renders an element reference as a graph edge id ("pipe:3").
func EdgeID(r Ref) string { return r.Kind.String() + ":" + strconv.Itoa(r.Index) }

// ParseEdgeID is the inverse of EdgeID.
func ParseEdgeID(s string) (Ref, error) {
	name, idx, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, fmt.Errorf("%w: edge id %q", ErrInvalidValue, s)
	}
	k, err := ParseKind(name)
	if err != nil {
		return Ref{}, err
	}
	i, err := strconv.Atoi(idx)
	if err != nil {
		return Ref{}, fmt.Errorf("%w: edge id %q", ErrInvalidValue, s)
	}

	return Ref{Kind: k, Index: i}, nil
}

// MassFlowBounds converts a velocity range into a mass flow range for a
// circular cross-section: ṁ = v·(π/4)·d²·ρ.
func MassFlowBounds(diameterM, minVelocity, maxVelocity float64) (minMdot, maxMdot float64) {
	area := math.Pi / 4 * diameterM * diameterM
	return minVelocity * area * WaterDensity, maxVelocity * area * WaterDensity
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}

	return v
}
