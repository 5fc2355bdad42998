package network_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/network/networktest"
)

func TestBuildLayoutChain(t *testing.T) {
	n, err := network.BuildLayout(networktest.Chain(2, 100, 60000), network.DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 8, n.NumJunctions(), "3 forward + 3 return + 2 consumer inlets")
	assert.Equal(t, 4, n.NumPipes())
	assert.Equal(t, 2, n.NumHeatExchangers())
	assert.Equal(t, 2, n.NumFlowControls())
	assert.Equal(t, 1, n.NumPumps())

	p := n.Pump(0)
	assert.Equal(t, network.JunctionID(0), p.FlowJunction)
	assert.Equal(t, network.JunctionID(3), p.ReturnJunction)
	assert.InDelta(t, 363.15, p.TFlowK, 1e-9)

	for i := 0; i < n.NumHeatExchangers(); i++ {
		h := n.HeatExchanger(i)
		f := n.FlowControl(h.FlowControl)
		assert.Equal(t, i, f.HeatExchanger)
		assert.Equal(t, f.To, h.From, "flow control feeds the heat exchanger inlet")
		assert.Equal(t, network.SideConsumer, n.Junction(h.From).Side)
		assert.Equal(t, n.Junction(f.From).Coord, n.Junction(h.From).Coord)
		assert.InDelta(t, 60.0, h.TargetReturnTempC, 1e-12)
		assert.GreaterOrEqual(t, f.ControlledMdotKgPerS, f.MinMdotKgPerS)
		assert.LessOrEqual(t, f.ControlledMdotKgPerS, f.MaxMdotKgPerS)
	}

	for i := 0; i < n.NumPipes(); i++ {
		assert.InDelta(t, 100.0, n.Pipe(i).LengthM, 1e-9)
		assert.InDelta(t, 0.1, n.Pipe(i).DiameterM, 1e-12)
	}
	assert.InDelta(t, 120000.0, n.TotalQextW(), 1e-9)
}

func TestBuildLayoutSeparatesForwardAndReturn(t *testing.T) {
	// forward and return share both coordinates but stay distinct junctions
	l := network.Layout{
		Forward:   []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(10, 0)}},
		Return:    []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(10, 0)}},
		Consumers: []network.ConsumerSpec{{Line: geometry.Line{geometry.Pt(10, 0), geometry.Pt(0, 0)}}},
		Producers: []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(10, 0)}},
	}
	n, err := network.BuildLayout(l, network.DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 5, n.NumJunctions())
	assert.Equal(t, network.SideForward, n.Junction(n.Pump(0).FlowJunction).Side)
	assert.Equal(t, network.SideReturn, n.Junction(n.Pump(0).ReturnJunction).Side)
	assert.Equal(t, "consumer 0", n.HeatExchanger(0).Name)

	l.Consumers[0].Line = geometry.Line{geometry.Pt(10, 0), geometry.Pt(10, 0.5)}
	_, err = network.BuildLayout(l, network.DefaultOptions())
	require.ErrorIs(t, err, network.ErrInvalidTopology, "connector end not on the return line")
}

func TestBuildLayoutRejects(t *testing.T) {
	base := func() network.Layout { return networktest.Chain(1, 50, 1000) }
	cases := []struct {
		name   string
		mutate func(*network.Layout)
	}{
		{"polyline", func(l *network.Layout) {
			l.Forward[0] = append(l.Forward[0], geometry.Pt(60, 5))
		}},
		{"zero length pipe", func(l *network.Layout) {
			l.Return = append(l.Return, geometry.Line{geometry.Pt(1, 0), geometry.Pt(1, 0)})
		}},
		{"no producer", func(l *network.Layout) { l.Producers = nil }},
		{"two producers", func(l *network.Layout) {
			l.Producers = append(l.Producers, geometry.Line{geometry.Pt(50, 0), geometry.Pt(51, 0)})
		}},
		{"producer off the line", func(l *network.Layout) {
			l.Producers[0] = geometry.Line{geometry.Pt(-5, 0), geometry.Pt(1, 0)}
		}},
		{"disconnected pipe", func(l *network.Layout) {
			l.Forward = append(l.Forward, geometry.Line{geometry.Pt(500, 500), geometry.Pt(600, 500)})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			l := base()
			tc.mutate(&l)
			_, err := network.BuildLayout(l, network.DefaultOptions())
			assert.ErrorIs(t, err, network.ErrInvalidTopology)
		})
	}
}

func TestBuildLayoutTypeMode(t *testing.T) {
	o := network.DefaultOptions()
	o.PipeMode = network.ModeType
	_, err := network.BuildLayout(networktest.Chain(1, 50, 1000), o)
	assert.ErrorIs(t, err, network.ErrInvalidValue, "type mode without catalog")

	o.Catalog = catalog.Default()
	n, err := network.BuildLayout(networktest.Chain(1, 50, 1000), o)
	require.NoError(t, err)
	p := n.Pipe(0)
	assert.Equal(t, "KMR 100/225-2v", p.StdType)
	assert.InDelta(t, 0.1071, p.DiameterM, 1e-12)

	o.InitialType = "nope"
	_, err = network.BuildLayout(networktest.Chain(1, 50, 1000), o)
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}

func TestBuilderPairing(t *testing.T) {
	newBase := func() (*network.Builder, network.JunctionID, network.JunctionID) {
		b := network.NewBuilder()
		f := b.AddJunction(network.Junction{Name: "f"})
		r := b.AddJunction(network.Junction{Name: "r"})
		b.AddPump(network.Pump{ReturnJunction: r, FlowJunction: f, PFlowBar: 4, PLiftBar: 1.5})
		return b, f, r
	}

	b, f, r := newBase()
	hx, fc := b.AddConsumer(network.Consumer{Name: "c", Forward: f, Return: r, DiameterM: 0.02, MaxMdot: 1})
	n, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, fc, n.HeatExchanger(hx).FlowControl)

	_, err = b.Build()
	assert.ErrorIs(t, err, network.ErrBuilderUsed)

	// heat exchanger without a flow control
	b, f, r = newBase()
	b.AddHeatExchanger(network.HeatExchanger{From: f, To: r, DiameterM: 0.02})
	_, err = b.Build()
	assert.ErrorIs(t, err, network.ErrInvalidTopology)

	// flow control without a heat exchanger
	b, f, r = newBase()
	b.AddFlowControl(network.FlowControl{From: f, To: r, DiameterM: 0.02, MaxMdotKgPerS: 1})
	_, err = b.Build()
	assert.ErrorIs(t, err, network.ErrInvalidTopology)

	// dangling reference
	b, f, _ = newBase()
	b.AddPipe(network.Pipe{From: f, To: 42, LengthM: 1, DiameterM: 0.1})
	_, err = b.Build()
	assert.ErrorIs(t, err, network.ErrInvalidTopology)

	b, _, _ = newBase()
	b.AddConsumer(network.Consumer{Forward: 7, Return: 8})
	_, err = b.Build()
	assert.ErrorIs(t, err, network.ErrInvalidTopology)
}

func TestBuilderRejectsSelfLoops(t *testing.T) {
	cases := []struct {
		name string
		add  func(b *network.Builder, f, in, r network.JunctionID)
	}{
		{"heat exchanger", func(b *network.Builder, f, in, r network.JunctionID) {
			b.AddFlowControl(network.FlowControl{Name: "fc", From: f, To: in, DiameterM: 0.02, MaxMdotKgPerS: 1})
			b.AddHeatExchanger(network.HeatExchanger{Name: "hx", From: in, To: in, DiameterM: 0.02})
		}},
		{"flow control", func(b *network.Builder, f, in, r network.JunctionID) {
			b.AddFlowControl(network.FlowControl{Name: "fc", From: in, To: in, DiameterM: 0.02, MaxMdotKgPerS: 1})
			b.AddHeatExchanger(network.HeatExchanger{Name: "hx", From: in, To: r, DiameterM: 0.02})
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b := network.NewBuilder()
			f := b.AddJunction(network.Junction{Name: "f"})
			r := b.AddJunction(network.Junction{Name: "r"})
			in := b.AddJunction(network.Junction{Name: "in"})
			b.AddPump(network.Pump{ReturnJunction: r, FlowJunction: f, PFlowBar: 4, PLiftBar: 1.5})
			tc.add(b, f, in, r)

			n, err := b.Build()
			assert.ErrorIs(t, err, network.ErrInvalidTopology)
			assert.ErrorContains(t, err, "self-loop")
			assert.Nil(t, n)
		})
	}
}

func TestSettersKeepInvariants(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(2, 100, 60000))
	f := n.FlowControl(0)

	got, err := n.SetControlledMdot(0, 1e6)
	require.NoError(t, err)
	assert.Equal(t, f.MaxMdotKgPerS, got)
	got, err = n.SetControlledMdot(0, -3)
	require.NoError(t, err)
	assert.Equal(t, f.MinMdotKgPerS, got)

	require.NoError(t, n.SetMassFlowBounds(0, 0.2, 0.3))
	assert.InDelta(t, 0.2, n.FlowControl(0).ControlledMdotKgPerS, 1e-12)
	assert.ErrorIs(t, n.SetMassFlowBounds(0, 0.4, 0.3), network.ErrInvalidValue)

	ref := network.Ref{Kind: network.KindPipe, Index: 1}
	assert.ErrorIs(t, n.SetDiameter(ref, 0), network.ErrInvalidValue)
	assert.ErrorIs(t, n.SetDiameter(ref, math.NaN()), network.ErrInvalidValue)
	require.NoError(t, n.SetDiameter(ref, 0.05))
	d, err := n.Diameter(ref)
	require.NoError(t, err)
	assert.InDelta(t, 0.05, d, 1e-12)

	_, err = n.Diameter(network.Ref{Kind: network.KindPump})
	assert.ErrorIs(t, err, network.ErrInvalidValue)
	_, err = n.Diameter(network.Ref{Kind: network.KindHeatExchanger, Index: 9})
	assert.ErrorIs(t, err, network.ErrIndexOutOfRange)

	p := n.Pipe(0)
	require.NoError(t, n.ReversePipe(0))
	assert.Equal(t, p.From, n.Pipe(0).To)
	assert.Equal(t, p.To, n.Pipe(0).From)

	require.NoError(t, n.ShiftPumpSetpoints(0, 0.2, 0.2))
	assert.InDelta(t, 1.7, n.Pump(0).PLiftBar, 1e-12)
	assert.InDelta(t, 4.2, n.Pump(0).PFlowBar, 1e-12)

	assert.ErrorIs(t, n.SetQext(0, -1), network.ErrInvalidValue)
	require.NoError(t, n.SetQext(0, 0))
	assert.Zero(t, n.HeatExchanger(0).QextW)
}

func TestApplyPipeType(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(1, 100, 1000))
	e, err := catalog.Default().Lookup("KMR 50/140-2v")
	require.NoError(t, err)

	require.NoError(t, n.ApplyPipeType(0, e))
	p := n.Pipe(0)
	assert.Equal(t, e.Name, p.StdType)
	assert.InDelta(t, 0.0545, p.DiameterM, 1e-12)
	assert.InDelta(t, e.HeatTransferWPerM2K, p.AlphaWPerM2K, 1e-12)

	require.NoError(t, n.SetDiameter(network.Ref{Kind: network.KindPipe}, 0.06))
	assert.Empty(t, n.Pipe(0).StdType, "a free diameter drops the type")
}

func TestCloneIsDeep(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(2, 100, 60000))
	c := n.Clone()
	require.NoError(t, c.SetQext(1, 5))
	require.NoError(t, c.ShiftPumpSetpoints(0, 1, 1))
	assert.InDelta(t, 60000.0, n.HeatExchanger(1).QextW, 1e-12)
	assert.InDelta(t, 1.5, n.Pump(0).PLiftBar, 1e-12)
}

func TestRestoreUndoesEdits(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(2, 100, 60000))
	snapshot := n.Clone()
	require.NoError(t, n.SetQext(1, 5))
	require.NoError(t, n.SetDiameter(network.Ref{Kind: network.KindPipe, Index: 2}, 0.2))
	require.NoError(t, n.ReversePipe(3))

	n.Restore(snapshot)
	assert.Equal(t, snapshot.Pipes(), n.Pipes())
	assert.Equal(t, snapshot.HeatExchangers(), n.HeatExchangers())

	// the snapshot stays independent of later edits
	require.NoError(t, n.SetQext(0, 7))
	assert.InDelta(t, 60000.0, snapshot.HeatExchanger(0).QextW, 1e-12)
}

func TestTopologyIDs(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(2, 100, 60000))
	g, err := n.Topology()
	require.NoError(t, err)
	assert.Equal(t, n.NumJunctions(), g.VertexCount())
	assert.Equal(t, 4+2+2+1, g.EdgeCount())

	pg, err := n.PipeTopology()
	require.NoError(t, err)
	assert.Equal(t, 4, pg.EdgeCount())
	for _, e := range pg.Edges() {
		ref, err := network.ParseEdgeID(e.ID)
		require.NoError(t, err)
		assert.Equal(t, network.KindPipe, ref.Kind)
	}

	id, err := network.ParseVertexID(network.VertexID(7))
	require.NoError(t, err)
	assert.Equal(t, network.JunctionID(7), id)
	_, err = network.ParseVertexID("x1")
	assert.ErrorIs(t, err, network.ErrInvalidValue)
	_, err = network.ParseEdgeID("valve:1")
	assert.ErrorIs(t, err, network.ErrInvalidValue)
}

func TestMassFlowBounds(t *testing.T) {
	lo, hi := network.MassFlowBounds(0.02, 0.005, 2)
	area := math.Pi / 4 * 0.02 * 0.02
	assert.InDelta(t, 0.005*area*1000, lo, 1e-12)
	assert.InDelta(t, 2*area*1000, hi, 1e-12)
}

func TestKindRoundTrip(t *testing.T) {
	for _, k := range []network.Kind{network.KindPipe, network.KindHeatExchanger, network.KindFlowControl, network.KindPump} {
		got, err := network.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	_, err := network.ParseKind("valve")
	assert.ErrorIs(t, err, network.ErrInvalidValue)
}
