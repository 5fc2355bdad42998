package prim_kruskal

import (
	"container/heap"

	"github.com/katalvlaran/heatnet/core"
)

// Prim computes the Minimum Spanning Tree (MST) of an undirected, weighted graph
// by growing outwards from root using a min-heap of candidate edges.
//
// Error Conditions:
//   - ErrInvalidGraph        : graph is nil or unweighted.
//   - ErrEmptyRoot           : root is empty.
//   - core.ErrVertexNotFound : root does not exist.
//   - ErrDisconnected        : |V| == 0, or the graph is not connected.
//
// Steps:
//  1. Validate the graph and root.
//  2. Mark root visited and push its incident edges.
//  3. Pop the lightest edge (ties by insertion order); skip it if its far end is visited.
//  4. Otherwise keep it, mark the far end visited and push its edges.
//  5. Fewer than |V|-1 kept edges → ErrDisconnected.
//
// Returned edges keep their stored orientation; use the far end relative to the
// tree when walking them.
//
// Complexity: O(E log V) time, O(V + E) memory.
func Prim(graph *core.Graph, root string) ([]core.Edge, float64, error) {
	if graph == nil || !graph.Weighted() {
		return nil, 0, ErrInvalidGraph
	}

	vertices := graph.Vertices()
	if len(vertices) == 0 {
		return nil, 0, ErrDisconnected
	}
	if root == "" {
		return nil, 0, ErrEmptyRoot
	}
	if !graph.HasVertex(root) {
		return nil, 0, core.ErrVertexNotFound
	}
	if len(vertices) == 1 {
		return []core.Edge{}, 0, nil
	}

	n := len(vertices)
	visited := make(map[string]bool, n)
	mst := make([]core.Edge, 0, n-1)
	var totalWeight float64

	pq := &edgePQ{}
	heap.Init(pq)

	push := func(from string) error {
		edges, err := graph.Neighbors(from)
		if err != nil {
			return err
		}
		for _, e := range edges {
			if !visited[farEnd(e, from)] {
				heap.Push(pq, candidate{edge: e, from: from})
			}
		}

		return nil
	}

	visited[root] = true
	if err := push(root); err != nil {
		return nil, 0, err
	}

	for pq.Len() > 0 && len(mst) < n-1 {
		c := heap.Pop(pq).(candidate)
		v := farEnd(c.edge, c.from)
		if visited[v] {
			continue
		}
		visited[v] = true
		mst = append(mst, *c.edge)
		totalWeight += c.edge.Weight
		if err := push(v); err != nil {
			return nil, 0, err
		}
	}

	if len(mst) < n-1 {
		return nil, 0, ErrDisconnected
	}

	return mst, totalWeight, nil
}

// farEnd returns the endpoint of e opposite to from.
func farEnd(e *core.Edge, from string) string {
	if e.From == from {
		return e.To
	}

	return e.From
}

// candidate is an edge reached from a visited vertex.
type candidate struct {
	edge *core.Edge
	from string
}

// edgePQ implements heap.Interface as a min-heap ordered by weight, then insertion order.
type edgePQ []candidate

func (pq edgePQ) Len() int { return len(pq) }

func (pq edgePQ) Less(i, j int) bool {
	if pq[i].edge.Weight != pq[j].edge.Weight {
		return pq[i].edge.Weight < pq[j].edge.Weight
	}

	return pq[i].edge.Seq() < pq[j].edge.Seq()
}

func (pq edgePQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *edgePQ) Push(x interface{}) { *pq = append(*pq, x.(candidate)) }

func (pq *edgePQ) Pop() interface{} {
	old := *pq
	n := len(old)
	c := old[n-1]
	*pq = old[:n-1]

	return c
}
