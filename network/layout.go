package network

import (
	"fmt"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/geometry"
)

// PipeMode selects how BuildLayout dimensions new pipes.
type PipeMode string

// Pipe creation modes.
const (
	// ModeDiameter gives every pipe Options.InitialDiameterM.
	ModeDiameter PipeMode = "diameter"
	// ModeType gives every pipe the catalog entry Options.InitialType.
	ModeType PipeMode = "type"
)

// ConsumerSpec is one consumer connector line [forward point, return point]
// plus the attributes that travel with it.
type ConsumerSpec struct {
	Name              string
	Line              geometry.Line
	QextW             float64
	TargetReturnTempC float64
}

// Layout is the geometric description of a network: forward and return line
// segments, consumer connectors and producer connectors [flow point, return point].
type Layout struct {
	Forward   []geometry.Line
	Return    []geometry.Line
	Consumers []ConsumerSpec
	Producers []geometry.Line
}

// Options carries the element defaults BuildLayout applies.
type Options struct {
	PipeMode         PipeMode
	InitialDiameterM float64
	InitialType      string
	Catalog          *catalog.Catalog
	RoughnessMM      float64
	AlphaWPerM2K     float64

	JunctionPressureBar  float64
	JunctionTemperatureK float64

	HeatExchangerDiameterM float64
	LossCoefficient        float64
	DefaultReturnTempC     float64

	// MinVelocity and MaxVelocity bound the consumer mass flow through
	// MassFlowBounds on the heat exchanger diameter.
	MinVelocity float64
	MaxVelocity float64
	// DesignDeltaTK sets the initial consumer mass flow qext/(cp·ΔT).
	DesignDeltaTK float64

	PumpFlowBar float64
	PumpLiftBar float64
	SupplyTempC float64
}

// DefaultOptions returns the reference defaults: 100 mm pipes with 0.1 mm
// roughness and 10 W/m²K heat transfer, junctions at 1.05 bar and 20 °C,
// 20 mm heat exchangers with loss coefficient 100, a 4 bar / 1.5 bar pump
// at 90 °C supply.
func DefaultOptions() Options {
	return Options{
		PipeMode:               ModeDiameter,
		InitialDiameterM:       0.1,
		InitialType:            "KMR 100/225-2v",
		RoughnessMM:            0.1,
		AlphaWPerM2K:           10,
		JunctionPressureBar:    1.05,
		JunctionTemperatureK:   293.15,
		HeatExchangerDiameterM: 0.02,
		LossCoefficient:        100,
		DefaultReturnTempC:     60,
		MinVelocity:            0.005,
		MaxVelocity:            2,
		DesignDeltaTK:          25,
		PumpFlowBar:            4,
		PumpLiftBar:            1.5,
		SupplyTempC:            90,
	}
}

// BuildLayout turns a Layout into a validated Network.
//
// Forward and return coordinates are deduplicated separately, so a forward
// and a return point at the same coordinate become two junctions. Every line
// must be a two-point segment of nonzero length. Consumer and producer
// connectors must start on a forward coordinate and end on a return coordinate.
func BuildLayout(l Layout, o Options) (*Network, error) {
	pipeSpec, err := o.pipeTemplate()
	if err != nil {
		return nil, err
	}
	for _, set := range []struct {
		name  string
		lines []geometry.Line
	}{{"forward", l.Forward}, {"return", l.Return}, {"producer", l.Producers}} {
		for i, line := range set.lines {
			if err := checkSegment(line); err != nil {
				return nil, fmt.Errorf("%w: %s line %d: %v", ErrInvalidTopology, set.name, i, err)
			}
		}
	}
	for i, c := range l.Consumers {
		if err := checkSegment(c.Line); err != nil {
			return nil, fmt.Errorf("%w: consumer line %d: %v", ErrInvalidTopology, i, err)
		}
	}

	fwdIx, retIx := geometry.NewIndex(), geometry.NewIndex()
	for _, line := range l.Forward {
		fwdIx.AddLine(line)
	}
	for _, line := range l.Return {
		retIx.AddLine(line)
	}

	b := NewBuilder()
	fwd := b.junctionsFor(fwdIx, SideForward, o.JunctionPressureBar, o.JunctionTemperatureK)
	ret := b.junctionsFor(retIx, SideReturn, o.JunctionPressureBar, o.JunctionTemperatureK)

	addPipes := func(lines []geometry.Line, ix *geometry.Index, ids []JunctionID, side Side) {
		for i, line := range lines {
			from, _ := ix.Lookup(line[0])
			to, _ := ix.Lookup(line[1])
			p := pipeSpec
			p.Name = fmt.Sprintf("%s pipe %d", side, i)
			p.From, p.To = ids[from], ids[to]
			p.LengthM = line.Length()
			p.Side = side
			b.AddPipe(p)
		}
	}
	addPipes(l.Forward, fwdIx, fwd, SideForward)
	addPipes(l.Return, retIx, ret, SideReturn)

	ends := func(line geometry.Line) (JunctionID, JunctionID, error) {
		f, ok := fwdIx.Lookup(line[0])
		if !ok {
			return 0, 0, fmt.Errorf("%w: %v is not on the forward line", ErrInvalidTopology, line[0])
		}
		r, ok := retIx.Lookup(line[1])
		if !ok {
			return 0, 0, fmt.Errorf("%w: %v is not on the return line", ErrInvalidTopology, line[1])
		}

		return fwd[f], ret[r], nil
	}

	minMdot, maxMdot := MassFlowBounds(o.HeatExchangerDiameterM, o.MinVelocity, o.MaxVelocity)
	for i, c := range l.Consumers {
		f, r, err := ends(c.Line)
		if err != nil {
			return nil, fmt.Errorf("consumer %d: %w", i, err)
		}
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("consumer %d", i)
		}
		target := c.TargetReturnTempC
		if target == 0 {
			target = o.DefaultReturnTempC
		}
		b.AddConsumer(Consumer{
			Name:              name,
			Forward:           f,
			Return:            r,
			QextW:             c.QextW,
			TargetReturnTempC: target,
			DiameterM:         o.HeatExchangerDiameterM,
			LossCoefficient:   o.LossCoefficient,
			InitialMdot:       DesignMassFlow(c.QextW, o.DesignDeltaTK),
			MinMdot:           minMdot,
			MaxMdot:           maxMdot,
		})
	}
	for i, line := range l.Producers {
		f, r, err := ends(line)
		if err != nil {
			return nil, fmt.Errorf("producer %d: %w", i, err)
		}
		b.AddPump(Pump{
			Name:           fmt.Sprintf("producer %d", i),
			ReturnJunction: r,
			FlowJunction:   f,
			PFlowBar:       o.PumpFlowBar,
			PLiftBar:       o.PumpLiftBar,
			TFlowK:         o.SupplyTempC + KelvinOffset,
		})
	}

	return b.Build()
}

// DesignMassFlow returns qext/(cp·ΔT), or 0 when deltaTK is not positive.
func DesignMassFlow(qextW, deltaTK float64) float64 {
	if deltaTK <= 0 {
		return 0
	}

	return qextW / (SpecificHeatWater * deltaTK)
}

func (o Options) pipeTemplate() (Pipe, error) {
	p := Pipe{RoughnessMM: o.RoughnessMM, AlphaWPerM2K: o.AlphaWPerM2K}
	switch o.PipeMode {
	case ModeDiameter, "":
		if !(o.InitialDiameterM > 0) {
			return Pipe{}, fmt.Errorf("%w: initial diameter %g m", ErrInvalidValue, o.InitialDiameterM)
		}
		p.DiameterM = o.InitialDiameterM
	case ModeType:
		if o.Catalog == nil {
			return Pipe{}, fmt.Errorf("%w: type mode needs a catalog", ErrInvalidValue)
		}
		e, err := o.Catalog.Lookup(o.InitialType)
		if err != nil {
			return Pipe{}, err
		}
		p.StdType = e.Name
		p.DiameterM = e.DiameterM()
		p.RoughnessMM = e.RoughnessMM
		p.AlphaWPerM2K = e.HeatTransferWPerM2K
	default:
		return Pipe{}, fmt.Errorf("%w: pipe mode %q", ErrInvalidValue, o.PipeMode)
	}

	return p, nil
}

func checkSegment(l geometry.Line) error {
	if !l.IsSegment() {
		return fmt.Errorf("line has %d points, want 2", len(l))
	}
	if l.Length() == 0 {
		return fmt.Errorf("line has zero length at %v", l[0])
	}

	return nil
}
