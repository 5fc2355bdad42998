package prim_kruskal

import (
	"sort"

	"github.com/katalvlaran/heatnet/core"
)

// Kruskal computes the Minimum Spanning Tree (MST) of an undirected, weighted graph.
// It uses a disjoint-set (union-find) structure with path compression and union by rank.
//
// Error Conditions:
//   - ErrInvalidGraph : graph is nil or unweighted.
//   - ErrDisconnected : |V| == 0, or |V| > 1 and the graph is not connected.
//
// Steps:
//  1. Validate the graph.
//  2. |V| == 1 → trivial MST (empty, weight 0).
//  3. Collect edges in insertion order via graph.Edges(), skip self-loops.
//  4. Stable-sort by ascending weight, so equal weights keep insertion order.
//  5. Initialize parent[] and rank[] for each vertex.
//  6. For each edge (u,v) with find(u) != find(v): union and keep the edge.
//  7. Stop at |V|-1 edges; fewer after the loop → ErrDisconnected.
//
// Complexity: O(E log E + α(V)·E). Memory: O(E + V).
func Kruskal(graph *core.Graph) ([]core.Edge, float64, error) {
	if graph == nil || !graph.Weighted() {
		return nil, 0, ErrInvalidGraph
	}

	vertices := graph.Vertices()
	if len(vertices) == 0 {
		return nil, 0, ErrDisconnected
	}
	if len(vertices) == 1 {
		return []core.Edge{}, 0, nil
	}

	allEdges := graph.Edges()
	edges := make([]*core.Edge, 0, len(allEdges))
	for _, e := range allEdges {
		if e.From == e.To {
			continue
		}
		edges = append(edges, e)
	}

	sort.SliceStable(edges, func(i, j int) bool {
		return edges[i].Weight < edges[j].Weight
	})

	parent := make(map[string]string, len(vertices))
	rank := make(map[string]int, len(vertices))
	for _, vid := range vertices {
		parent[vid] = vid
	}

	// Iterative find with path halving.
	find := func(u string) string {
		for parent[u] != u {
			parent[u] = parent[parent[u]]
			u = parent[u]
		}

		return u
	}

	union := func(rootU, rootV string) {
		switch {
		case rank[rootU] < rank[rootV]:
			parent[rootU] = rootV
		case rank[rootU] > rank[rootV]:
			parent[rootV] = rootU
		default:
			parent[rootV] = rootU
			rank[rootU]++
		}
	}

	var (
		numVerts    = len(vertices)
		mst         = make([]core.Edge, 0, numVerts-1)
		totalWeight float64
	)
	for _, e := range edges {
		ru, rv := find(e.From), find(e.To)
		if ru == rv {
			continue
		}
		union(ru, rv)
		mst = append(mst, *e)
		totalWeight += e.Weight
		if len(mst) == numVerts-1 {
			break
		}
	}

	if len(mst) < numVerts-1 {
		return nil, 0, ErrDisconnected
	}

	return mst, totalWeight, nil
}
