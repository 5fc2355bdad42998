// Package route synthesizes a pipe skeleton from terminal points and a
// reference line network (street centrelines): every terminal is connected
// perpendicularly to its nearest street, and the street endpoints are joined
// by a minimum spanning tree.
package route

import (
	"errors"

	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/prim_kruskal"
)

// ErrNoReferenceLines is returned when terminals must be projected but no
// usable reference line (two or more points) was supplied.
var ErrNoReferenceLines = errors.New("route: no reference lines to project onto")

// Offset shifts a terminal before projection, modelling a parallel return line.
type Offset struct {
	Distance float64 `yaml:"distance_m"`
	AngleDeg float64 `yaml:"angle_deg"`
}

// Request is the input of Synthesize.
type Request struct {
	// Terminals are service connections and sources alike.
	Terminals []geometry.Point
	// Streets are the reference polylines.
	Streets []geometry.Line
	// Offset, when non-nil, is applied to every terminal before projection.
	Offset *Offset
	// Method picks the spanning tree algorithm; empty means Kruskal.
	Method prim_kruskal.Method
}

// Route is a synthesized pipe skeleton.
type Route struct {
	// Connections are the distinct perpendicular edges terminal → street
	// (zero-length ones omitted).
	Connections []geometry.Segment
	// Trunk holds the spanning tree edges over Endpoints; len(Trunk) == len(Endpoints)-1
	// whenever there are at least two endpoints.
	Trunk []geometry.Segment
	// Endpoints are the distinct street endpoints sorted by (x, y).
	Endpoints []geometry.Point
	// TrunkLength is the total length of Trunk.
	TrunkLength float64
}

// Lines returns connections followed by trunk edges as two-point lines.
func (r *Route) Lines() []geometry.Line {
	out := make([]geometry.Line, 0, len(r.Connections)+len(r.Trunk))
	for _, s := range r.Connections {
		out = append(out, s.Line())
	}
	for _, s := range r.Trunk {
		out = append(out, s.Line())
	}

	return out
}

// PlanRequest describes a whole forward/return network layout.
type PlanRequest struct {
	// Consumers are the heat consumer locations.
	Consumers []geometry.Point
	// Producers are the source locations.
	Producers []geometry.Point
	// Streets are the reference polylines.
	Streets []geometry.Line
	// Return is the offset of the return line relative to the forward line.
	Return Offset
	// Method is passed on to both Synthesize calls.
	Method prim_kruskal.Method
}

// Plan is the four line sets a network is built from.
type Plan struct {
	// Forward are the forward (supply) line segments.
	Forward []geometry.Line
	// Return are the return line segments.
	Return []geometry.Line
	// Consumers are connector lines [forward point, return point], one per consumer.
	Consumers []geometry.Line
	// Producers are connector lines [forward point, return point], one per producer.
	Producers []geometry.Line
}
