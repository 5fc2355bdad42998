// Package core provides the thread-safe in-memory Graph that the rest of heatnet
// builds on: route synthesis runs its spanning tree over it, the network model
// exposes its junction topology through it, and the reference solver walks it.
//
// The Graph G = (V,E) supports:
//
//   - Undirected edges only
//   - float64 edge weights (WithWeighted)
//   - Parallel edges (WithMultiEdges)
//   - Explicit edge IDs (WithID) so callers can map edges back to domain objects
//   - Constant-time edge operations via nested maps:
//     adjacencyList[from][to][edgeID] = struct{}{}
//   - Separate sync.RWMutex for vertices (muVert) and edges+adjacency (muEdgeAdj)
//
// Determinism:
//
//	Vertices()     // sorted by ID
//	Edges()        // insertion order
//	Neighbors(id)  // insertion order
//
// Self-loops are always rejected: pipes, heat exchangers and flow controls
// join two distinct junctions.
//
// Insertion-ordered edge listing matters to the spanning tree code: a stable
// sort by weight over Edges() breaks ties by the order edges were added.
//
// Core Methods:
//
//	AddVertex(id string) error
//	HasVertex(id string) bool
//	AddEdge(from, to string, weight float64, opts ...EdgeOption) (edgeID string, err error)
//	Neighbors(id string) ([]*Edge, error)
//	Vertices() []string
//	Edges() []*Edge
//	VertexCount() int
//	EdgeCount() int
package core
