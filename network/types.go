// Package network is the owned, mutable model of a two-pipe district heating
// circuit: junctions, forward and return pipes, consumer heat exchangers with
// their flow-control valves, and one circulation pump.
//
// The network is built once (Builder or BuildLayout) and then mutated in
// place: sizing changes diameters and pipe types, controllers change pump
// setpoints and valve mass flows. All mutation goes through setters that keep
// the model's invariants.
package network

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/heatnet/geometry"
)

// Sentinel errors.
var (
	// ErrInvalidTopology marks malformed geometry, dangling references,
	// unpaired heat exchangers or flow controls, or a disconnected network.
	ErrInvalidTopology = errors.New("network: invalid topology")

	// ErrBuilderUsed is returned when Build is called twice on one Builder.
	ErrBuilderUsed = errors.New("network: builder already used")

	// ErrIndexOutOfRange is returned for element indices that do not exist.
	ErrIndexOutOfRange = errors.New("network: element index out of range")

	// ErrInvalidValue is returned for physically meaningless setter arguments.
	ErrInvalidValue = errors.New("network: invalid value")
)

// Physical constants shared by the model and its solvers.
const (
	// WaterDensity in kg/m³.
	WaterDensity = 1000.0
	// SpecificHeatWater in J/(kg·K).
	SpecificHeatWater = 4190.0
	// KelvinOffset converts °C to K.
	KelvinOffset = 273.15
)

// Kind is the closed set of element kinds that carry a diameter or setpoints.
type Kind uint8

// Element kinds.
const (
	KindPipe Kind = iota + 1
	KindHeatExchanger
	KindFlowControl
	KindPump
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPipe:
		return "pipe"
	case KindHeatExchanger:
		return "heat_exchanger"
	case KindFlowControl:
		return "flow_control"
	case KindPump:
		return "pump"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind maps a kind name back to its Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range []Kind{KindPipe, KindHeatExchanger, KindFlowControl, KindPump} {
		if k.String() == s {
			return k, nil
		}
	}

	return 0, fmt.Errorf("%w: unknown element kind %q", ErrInvalidValue, s)
}

// Ref addresses one element by kind and index.
type Ref struct {
	Kind  Kind
	Index int
}

func (r Ref) String() string { return fmt.Sprintf("%s[%d]", r.Kind, r.Index) }

// Side tells which circuit a junction or pipe belongs to.
type Side uint8

// Circuit sides.
const (
	SideForward Side = iota + 1
	SideReturn
	// SideConsumer marks the inlet junction between a flow control and its heat exchanger.
	SideConsumer
)

func (s Side) String() string {
	switch s {
	case SideForward:
		return "forward"
	case SideReturn:
		return "return"
	case SideConsumer:
		return "consumer"
	default:
		return "unknown"
	}
}

// JunctionID identifies a junction; ids are dense and start at 0.
type JunctionID int

// Junction is a network node. Its coordinate is informational: two junctions
// may share a coordinate but never an id.
type Junction struct {
	ID           JunctionID
	Name         string
	Coord        geometry.Point
	PressureBar  float64
	TemperatureK float64
	Side         Side
}

// Pipe connects two junctions. From→To is bookkeeping; fluid may flow either way.
type Pipe struct {
	Name         string
	From, To     JunctionID
	LengthM      float64
	DiameterM    float64
	RoughnessMM  float64
	AlphaWPerM2K float64
	// StdType is the catalog type name; empty in diameter mode.
	StdType string
	Side    Side
}

// HeatExchanger extracts QextW between its inlet (From) and outlet (To).
type HeatExchanger struct {
	Name            string
	From, To        JunctionID
	DiameterM       float64
	LossCoefficient float64
	QextW           float64
	// TargetReturnTempC is the return temperature its controller aims for.
	TargetReturnTempC float64
	// FlowControl is the index of the paired flow control, set by Build.
	FlowControl int
}

// FlowControl enforces ControlledMdotKgPerS on a consumer branch. Its outlet
// (To) is the inlet junction of its heat exchanger.
type FlowControl struct {
	Name                 string
	From, To             JunctionID
	DiameterM            float64
	ControlledMdotKgPerS float64
	MinMdotKgPerS        float64
	MaxMdotKgPerS        float64
	// HeatExchanger is the index of the paired heat exchanger, set by Build.
	HeatExchanger int
}

// Pump is a circulation pump with constant outlet pressure PFlowBar and a
// pressure rise PLiftBar between ReturnJunction and FlowJunction.
type Pump struct {
	Name           string
	ReturnJunction JunctionID
	FlowJunction   JunctionID
	PFlowBar       float64
	PLiftBar       float64
	TFlowK         float64
}
