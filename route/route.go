package route

import (
	"fmt"
	"strconv"

	"github.com/katalvlaran/heatnet/core"
	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/prim_kruskal"
)

// Synthesize projects every terminal onto its nearest reference line and
// spans the resulting street endpoints with a minimum spanning tree.
//
// Steps:
//  1. Offset each terminal if req.Offset is set.
//  2. Project it onto the nearest street segment; record the perpendicular
//     connection and the street endpoint (foot).
//  3. Deduplicate the endpoints and sort them by (x, y).
//  4. Insert every endpoint pair (i<j) into a weighted graph in that order,
//     weight = Euclidean distance, and span it with req.Method (Kruskal by
//     default, Prim rooted at the first sorted endpoint). Kruskal resolves
//     equal weights by sorted insertion order.
//
// Terminals sharing a position contribute one connection.
//
// Fewer than two distinct endpoints produce an empty trunk, not an error.
//
// Complexity: O(T·S + n² log n) for T terminals, S street segments, n endpoints.
func Synthesize(req Request) (*Route, error) {
	out := &Route{}
	if len(req.Terminals) == 0 {
		return out, nil
	}
	if !hasSegments(req.Streets) {
		return nil, ErrNoReferenceLines
	}

	ix := geometry.NewIndex()
	seen := make(map[geometry.Segment]struct{}, len(req.Terminals))
	for _, t := range req.Terminals {
		p := t
		if req.Offset != nil {
			p = geometry.Offset(t, req.Offset.Distance, req.Offset.AngleDeg)
		}
		pr, err := geometry.ProjectOntoLines(p, req.Streets)
		if err != nil {
			return nil, fmt.Errorf("route: projecting %v: %w", p, err)
		}
		if pr.Distance > 0 {
			c := geometry.Segment{A: p, B: pr.Foot}
			if _, dup := seen[c]; !dup {
				seen[c] = struct{}{}
				out.Connections = append(out.Connections, c)
			}
		}
		ix.Add(pr.Foot)
	}

	out.Endpoints = ix.Points()
	geometry.SortPoints(out.Endpoints)

	trunk, total, err := spanningTree(out.Endpoints, req.Method)
	if err != nil {
		return nil, err
	}
	out.Trunk = trunk
	out.TrunkLength = total

	return out, nil
}

// spanningTree spans the complete Euclidean graph of pts with m.
func spanningTree(pts []geometry.Point, m prim_kruskal.Method) ([]geometry.Segment, float64, error) {
	if len(pts) < 2 {
		return nil, 0, nil
	}
	g := core.NewGraph(core.WithWeighted())
	for i := range pts {
		if err := g.AddVertex(vertexID(i)); err != nil {
			return nil, 0, err
		}
	}
	for i := 0; i < len(pts); i++ {
		for j := i + 1; j < len(pts); j++ {
			if _, err := g.AddEdge(vertexID(i), vertexID(j), geometry.Distance(pts[i], pts[j])); err != nil {
				return nil, 0, err
			}
		}
	}

	if m == "" {
		m = prim_kruskal.MethodKruskal
	}
	edges, total, err := prim_kruskal.Span(g, m, vertexID(0))
	if err != nil {
		return nil, 0, fmt.Errorf("route: spanning tree: %w", err)
	}
	trunk := make([]geometry.Segment, len(edges))
	for k, e := range edges {
		trunk[k] = geometry.Segment{A: pts[vertexIndex(e.From)], B: pts[vertexIndex(e.To)]}
	}

	return trunk, total, nil
}

// BuildPlan builds the forward route from consumers and producers as they are,
// the return route from their offset positions, and one connector line per
// consumer and producer from its forward point to its return point.
func BuildPlan(req PlanRequest) (*Plan, error) {
	terminals := make([]geometry.Point, 0, len(req.Consumers)+len(req.Producers))
	terminals = append(terminals, req.Consumers...)
	terminals = append(terminals, req.Producers...)

	fwd, err := Synthesize(Request{Terminals: terminals, Streets: req.Streets, Method: req.Method})
	if err != nil {
		return nil, fmt.Errorf("route: forward line: %w", err)
	}
	off := req.Return
	ret, err := Synthesize(Request{Terminals: terminals, Streets: req.Streets, Offset: &off, Method: req.Method})
	if err != nil {
		return nil, fmt.Errorf("route: return line: %w", err)
	}

	connector := func(p geometry.Point) geometry.Line {
		return geometry.Line{p, geometry.Offset(p, off.Distance, off.AngleDeg)}
	}
	plan := &Plan{Forward: fwd.Lines(), Return: ret.Lines()}
	for _, c := range req.Consumers {
		plan.Consumers = append(plan.Consumers, connector(c))
	}
	for _, p := range req.Producers {
		plan.Producers = append(plan.Producers, connector(p))
	}

	return plan, nil
}

func hasSegments(lines []geometry.Line) bool {
	for _, l := range lines {
		if len(l) >= 2 {
			return true
		}
	}

	return false
}

func vertexID(i int) string { return strconv.Itoa(i) }

func vertexIndex(id string) int {
	i, _ := strconv.Atoi(id)
	return i
}
