// File: methods_edges.go
// Role: Edge insertion & queries: AddEdge/Edges/EdgeCount.
// Determinism:
//   - Edges() returns edges in insertion order (by sequence number), so callers
//     that stable-sort by weight get ties broken by insertion order.
//   - Generated IDs are monotonic and stable ("e" + decimal).
// Concurrency:
//   - Mutations under muEdgeAdj write lock.
//   - Read queries under muEdgeAdj read lock.

package core

import (
	"math"
	"sort"
	"strconv"
)

// edgeIDPrefix is the textual prefix for generated edge identifiers ("e1", "e2", ...).
const edgeIDPrefix = 'e'

// AddEdge creates a new edge and returns its ID.
//
// Steps:
//  1. Validate IDs, weight and loops.
//  2. Ensure endpoints via AddVertex.
//  3. Lock muEdgeAdj, check multi-edge and explicit ID constraints.
//  4. Store the edge and link adjacency both ways.
//
// Errors:
//   - ErrEmptyVertexID, ErrBadWeight, ErrLoopNotAllowed,
//     ErrMultiEdgeNotAllowed, ErrEdgeIDConflict.
//
// Complexity: O(1) amortized.
func (g *Graph) AddEdge(from, to string, weight float64, opts ...EdgeOption) (string, error) {
	if from == "" || to == "" {
		return "", ErrEmptyVertexID
	}
	if math.IsNaN(weight) || math.IsInf(weight, 0) {
		return "", ErrBadWeight
	}
	if !g.weighted && weight != 0 {
		return "", ErrBadWeight
	}
	if from == to {
		return "", ErrLoopNotAllowed
	}
	var cfg edgeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := g.AddVertex(from); err != nil {
		return "", err
	}
	if err := g.AddVertex(to); err != nil {
		return "", err
	}

	g.muEdgeAdj.Lock()
	defer g.muEdgeAdj.Unlock()

	if !g.allowMulti {
		if len(g.adjacencyList[from][to]) > 0 {
			return "", ErrMultiEdgeNotAllowed
		}
	}

	g.nextEdgeSeq++
	seq := g.nextEdgeSeq
	eid := cfg.id
	if eid == "" {
		eid = formatEdgeID(seq)
	}
	if _, taken := g.edges[eid]; taken {
		g.nextEdgeSeq--
		return "", ErrEdgeIDConflict
	}

	g.edges[eid] = &Edge{ID: eid, From: from, To: to, Weight: weight, seq: seq}
	ensureAdjacency(g, from, to)
	g.adjacencyList[from][to][eid] = struct{}{}
	ensureAdjacency(g, to, from)
	g.adjacencyList[to][from][eid] = struct{}{}

	return eid, nil
}

// Edges returns all edges in insertion order.
// Complexity: O(E log E).
func (g *Graph) Edges() []*Edge {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sortBySeq(out)

	return out
}

// EdgeCount returns the total number of edges.
// Complexity: O(1).
func (g *Graph) EdgeCount() int {
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	return len(g.edges)
}

// formatEdgeID renders "e<seq>" without fmt.
func formatEdgeID(seq uint64) string {
	buf := make([]byte, 0, 21)
	buf = append(buf, edgeIDPrefix)
	buf = strconv.AppendUint(buf, seq, 10)

	return string(buf)
}

func sortBySeq(es []*Edge) {
	sort.Slice(es, func(i, j int) bool { return es[i].seq < es[j].seq })
}
