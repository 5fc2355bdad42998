package network

import (
	"fmt"

	"github.com/katalvlaran/heatnet/bfs"
	"github.com/katalvlaran/heatnet/geometry"
)

// Consumer describes one heat consumer connected between a forward junction
// and a return junction. AddConsumer expands it into an inlet junction, a
// flow control (forward → inlet) and a heat exchanger (inlet → return).
type Consumer struct {
	Name              string
	Forward, Return   JunctionID
	QextW             float64
	TargetReturnTempC float64
	DiameterM         float64
	LossCoefficient   float64
	InitialMdot       float64
	MinMdot, MaxMdot  float64
}

// Builder assembles a Network element by element. It is single-use: Build
// validates and hands over the network, and every later call fails with
// ErrBuilderUsed.
//
// Add* methods record the first error they hit (unknown junction, invalid
// value); Build reports it. This keeps call sites linear.
type Builder struct {
	net  *Network
	used bool
	err  error
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{net: &Network{}}
}

func (b *Builder) fail(format string, args ...interface{}) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidTopology}, args...)...)
	}
}

func (b *Builder) known(id JunctionID) bool {
	return id >= 0 && int(id) < len(b.net.junctions)
}

// AddJunction appends j with the next free id and returns that id. j.ID is ignored.
func (b *Builder) AddJunction(j Junction) JunctionID {
	j.ID = JunctionID(len(b.net.junctions))
	b.net.junctions = append(b.net.junctions, j)

	return j.ID
}

// AddPipe appends p and returns its index.
func (b *Builder) AddPipe(p Pipe) int {
	switch {
	case !b.known(p.From) || !b.known(p.To):
		b.fail("pipe %q references unknown junction (%d, %d)", p.Name, p.From, p.To)
	case p.From == p.To:
		b.fail("pipe %q is a self-loop at junction %d", p.Name, p.From)
	case !(p.LengthM > 0):
		b.fail("pipe %q has length %g m", p.Name, p.LengthM)
	case !(p.DiameterM > 0):
		b.fail("pipe %q has diameter %g m", p.Name, p.DiameterM)
	}
	b.net.pipes = append(b.net.pipes, p)

	return len(b.net.pipes) - 1
}

// AddHeatExchanger appends h and returns its index. Its flow control is
// paired at Build time.
func (b *Builder) AddHeatExchanger(h HeatExchanger) int {
	switch {
	case !b.known(h.From) || !b.known(h.To):
		b.fail("heat exchanger %q references unknown junction (%d, %d)", h.Name, h.From, h.To)
	case h.From == h.To:
		b.fail("heat exchanger %q is a self-loop at junction %d", h.Name, h.From)
	case !(h.DiameterM > 0):
		b.fail("heat exchanger %q has diameter %g m", h.Name, h.DiameterM)
	case h.QextW < 0:
		b.fail("heat exchanger %q has negative qext %g W", h.Name, h.QextW)
	}
	h.FlowControl = -1
	b.net.hx = append(b.net.hx, h)

	return len(b.net.hx) - 1
}

// AddFlowControl appends f and returns its index. ControlledMdotKgPerS is
// clamped into [MinMdotKgPerS, MaxMdotKgPerS].
func (b *Builder) AddFlowControl(f FlowControl) int {
	switch {
	case !b.known(f.From) || !b.known(f.To):
		b.fail("flow control %q references unknown junction (%d, %d)", f.Name, f.From, f.To)
	case f.From == f.To:
		b.fail("flow control %q is a self-loop at junction %d", f.Name, f.From)
	case !(f.DiameterM > 0):
		b.fail("flow control %q has diameter %g m", f.Name, f.DiameterM)
	case f.MinMdotKgPerS < 0 || f.MaxMdotKgPerS < f.MinMdotKgPerS:
		b.fail("flow control %q has mass flow bounds [%g, %g]", f.Name, f.MinMdotKgPerS, f.MaxMdotKgPerS)
	}
	f.ControlledMdotKgPerS = clamp(f.ControlledMdotKgPerS, f.MinMdotKgPerS, f.MaxMdotKgPerS)
	f.HeatExchanger = -1
	b.net.fc = append(b.net.fc, f)

	return len(b.net.fc) - 1
}

// AddPump appends p and returns its index.
func (b *Builder) AddPump(p Pump) int {
	switch {
	case !b.known(p.ReturnJunction) || !b.known(p.FlowJunction):
		b.fail("pump %q references unknown junction (%d, %d)", p.Name, p.ReturnJunction, p.FlowJunction)
	case p.ReturnJunction == p.FlowJunction:
		b.fail("pump %q connects junction %d to itself", p.Name, p.FlowJunction)
	}
	b.net.pumps = append(b.net.pumps, p)

	return len(b.net.pumps) - 1
}

// AddConsumer adds the inlet junction, flow control and heat exchanger of c
// and returns the heat exchanger and flow control indices. The inlet
// junction shares the forward junction's coordinate and nominal state.
func (b *Builder) AddConsumer(c Consumer) (hx, fc int) {
	if !b.known(c.Forward) || !b.known(c.Return) {
		b.fail("consumer %q references unknown junction (%d, %d)", c.Name, c.Forward, c.Return)
		return -1, -1
	}
	fwd := b.net.junctions[c.Forward]
	inlet := b.AddJunction(Junction{
		Name:         c.Name + " inlet",
		Coord:        fwd.Coord,
		PressureBar:  fwd.PressureBar,
		TemperatureK: fwd.TemperatureK,
		Side:         SideConsumer,
	})
	fc = b.AddFlowControl(FlowControl{
		Name:                 c.Name,
		From:                 c.Forward,
		To:                   inlet,
		DiameterM:            c.DiameterM,
		ControlledMdotKgPerS: c.InitialMdot,
		MinMdotKgPerS:        c.MinMdot,
		MaxMdotKgPerS:        c.MaxMdot,
	})
	hx = b.AddHeatExchanger(HeatExchanger{
		Name:              c.Name,
		From:              inlet,
		To:                c.Return,
		DiameterM:         c.DiameterM,
		LossCoefficient:   c.LossCoefficient,
		QextW:             c.QextW,
		TargetReturnTempC: c.TargetReturnTempC,
	})

	return hx, fc
}

// Build validates the assembled network and returns it.
//
// Steps:
//  1. Report the first error recorded by the Add* methods.
//  2. Require exactly one circulation pump.
//  3. Pair every heat exchanger with the single flow control whose outlet is
//     its inlet junction; reject unpaired or doubly paired elements.
//  4. Require every junction to be reachable from the pump's flow junction.
func (b *Builder) Build() (*Network, error) {
	if b.used {
		return nil, ErrBuilderUsed
	}
	b.used = true
	if b.err != nil {
		return nil, b.err
	}
	n := b.net
	b.net = nil

	if len(n.pumps) != 1 {
		return nil, fmt.Errorf("%w: need exactly one circulation pump, have %d", ErrInvalidTopology, len(n.pumps))
	}
	if err := pair(n); err != nil {
		return nil, err
	}
	if err := connected(n); err != nil {
		return nil, err
	}

	return n, nil
}

func pair(n *Network) error {
	byOutlet := make(map[JunctionID][]int, len(n.fc))
	for i, f := range n.fc {
		byOutlet[f.To] = append(byOutlet[f.To], i)
	}
	for i := range n.hx {
		h := &n.hx[i]
		cands := byOutlet[h.From]
		if len(cands) != 1 {
			return fmt.Errorf("%w: heat exchanger %q has %d flow controls at inlet junction %d",
				ErrInvalidTopology, h.Name, len(cands), h.From)
		}
		f := &n.fc[cands[0]]
		if f.HeatExchanger >= 0 {
			return fmt.Errorf("%w: flow control %q feeds more than one heat exchanger", ErrInvalidTopology, f.Name)
		}
		h.FlowControl = cands[0]
		f.HeatExchanger = i
	}
	for _, f := range n.fc {
		if f.HeatExchanger < 0 {
			return fmt.Errorf("%w: flow control %q has no heat exchanger", ErrInvalidTopology, f.Name)
		}
	}

	return nil
}

func connected(n *Network) error {
	g, err := n.Topology()
	if err != nil {
		return err
	}
	res, err := bfs.BFS(g, VertexID(n.pumps[0].FlowJunction))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTopology, err)
	}
	if len(res.Order) == len(n.junctions) {
		return nil
	}
	for _, j := range n.junctions {
		if !res.Reached(VertexID(j.ID)) {
			return fmt.Errorf("%w: junction %d (%s at %v) is not connected to the pump",
				ErrInvalidTopology, j.ID, j.Name, j.Coord)
		}
	}

	return nil
}

// junctionsFor adds one junction per distinct coordinate of ix in id order
// and returns the mapping from index id to junction id.
func (b *Builder) junctionsFor(ix *geometry.Index, side Side, pressureBar, temperatureK float64) []JunctionID {
	out := make([]JunctionID, ix.Len())
	for i, p := range ix.Points() {
		out[i] = b.AddJunction(Junction{
			Name:         fmt.Sprintf("%s %d", side, i),
			Coord:        p,
			PressureBar:  pressureBar,
			TemperatureK: temperatureK,
			Side:         side,
		})
	}

	return out
}
