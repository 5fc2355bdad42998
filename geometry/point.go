package geometry

import (
	"errors"
	"math"
	"sort"
)

// ErrEmptyLine is returned when a projection target has no segments.
var ErrEmptyLine = errors.New("geometry: line has fewer than two points")

// Point is a planar coordinate.
type Point struct {
	X float64 `yaml:"x" json:"x"`
	Y float64 `yaml:"y" json:"y"`
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 { return math.Hypot(b.X-a.X, b.Y-a.Y) }

// Offset returns p moved by distance along angleDeg (degrees, counter-clockwise from +X).
func Offset(p Point, distance, angleDeg float64) Point {
	rad := angleDeg * math.Pi / 180
	return Point{X: p.X + distance*math.Cos(rad), Y: p.Y + distance*math.Sin(rad)}
}

// Less orders points by X, then Y.
func Less(a, b Point) bool {
	if a.X != b.X {
		return a.X < b.X
	}

	return a.Y < b.Y
}

// SortPoints sorts pts in place by (X, Y).
func SortPoints(pts []Point) {
	sort.Slice(pts, func(i, j int) bool { return Less(pts[i], pts[j]) })
}

// Segment is a straight two-point line.
type Segment struct {
	A, B Point
}

// Length returns the segment length.
func (s Segment) Length() float64 { return Distance(s.A, s.B) }

// Line returns the segment as a two-point Line.
func (s Segment) Line() Line { return Line{s.A, s.B} }

// Line is a polyline.
type Line []Point

// IsSegment reports whether the line is a simple two-point segment.
func (l Line) IsSegment() bool { return len(l) == 2 }

// Length returns the polyline length.
func (l Line) Length() float64 {
	total := 0.0
	for i := 1; i < len(l); i++ {
		total += Distance(l[i-1], l[i])
	}

	return total
}

// Segments splits the polyline into consecutive segments.
func (l Line) Segments() []Segment {
	if len(l) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(l)-1)
	for i := 1; i < len(l); i++ {
		out = append(out, Segment{A: l[i-1], B: l[i]})
	}

	return out
}

// ClosestPointOnSegment returns the point of s nearest to p: the
// perpendicular foot, clamped to the segment ends.
func ClosestPointOnSegment(p Point, s Segment) Point {
	dx, dy := s.B.X-s.A.X, s.B.Y-s.A.Y
	den := dx*dx + dy*dy
	if den == 0 {
		return s.A
	}
	t := ((p.X-s.A.X)*dx + (p.Y-s.A.Y)*dy) / den
	switch {
	case t <= 0:
		return s.A
	case t >= 1:
		return s.B
	}

	return Point{X: s.A.X + t*dx, Y: s.A.Y + t*dy}
}

// Projection is the result of projecting a point onto a set of lines.
type Projection struct {
	// Foot is the closest point on the chosen line.
	Foot Point
	// Line is the index of the chosen line.
	Line int
	// Distance is |p - Foot|.
	Distance float64
}

// ProjectOntoLines returns the closest point to p over all segments of lines.
// Ties keep the first line (and the first segment within it).
func ProjectOntoLines(p Point, lines []Line) (Projection, error) {
	best := Projection{Line: -1, Distance: math.Inf(1)}
	for li, l := range lines {
		for _, s := range l.Segments() {
			foot := ClosestPointOnSegment(p, s)
			if d := Distance(p, foot); d < best.Distance {
				best = Projection{Foot: foot, Line: li, Distance: d}
			}
		}
	}
	if best.Line < 0 {
		return Projection{}, ErrEmptyLine
	}

	return best, nil
}
