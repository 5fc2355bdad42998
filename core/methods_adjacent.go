// File: methods_adjacent.go
// Role: Neighborhood API (Neighbors) and adjacency helpers.
// Determinism:
//   - Neighbors() returns edges in insertion order.
// Concurrency:
//   - Read operations hold muVert then muEdgeAdj read locks.
//   - Helpers are called only under the muEdgeAdj write lock.

package core

// Neighbors returns all edges incident to id.
//
// Every edge appears once, whichever end id is. The result is in edge
// insertion order.
//
// Errors:
//   - ErrEmptyVertexID if id == "".
//   - ErrVertexNotFound if the vertex does not exist.
//
// Complexity: O(d log d).
func (g *Graph) Neighbors(id string) ([]*Edge, error) {
	if id == "" {
		return nil, ErrEmptyVertexID
	}
	g.muVert.RLock()
	defer g.muVert.RUnlock()
	g.muEdgeAdj.RLock()
	defer g.muEdgeAdj.RUnlock()

	if _, ok := g.vertices[id]; !ok {
		return nil, ErrVertexNotFound
	}

	var out []*Edge
	for _, edgeSet := range g.adjacencyList[id] {
		for eid := range edgeSet {
			e := g.edges[eid]
			if e == nil {
				continue
			}
			out = append(out, e)
		}
	}
	sortBySeq(out)

	return out, nil
}

// ensureAdjacency initializes adjacencyList[from][to] if missing.
func ensureAdjacency(g *Graph, from, to string) {
	if g.adjacencyList[from] == nil {
		g.adjacencyList[from] = make(map[string]map[string]struct{})
	}
	if g.adjacencyList[from][to] == nil {
		g.adjacencyList[from][to] = make(map[string]struct{})
	}
}
