// Package prim_kruskal computes Minimum Spanning Trees (MST) on an undirected,
// weighted *core.Graph with Prim's or Kruskal's algorithm.
//
// What & Why
//
//	Given an undirected, connected, weighted graph G = (V, E), an MST is a
//	subset T ⊆ E that spans V with minimal total weight. heatnet uses it to lay
//	the trunk of a heating network: vertices are street endpoints, weights are
//	Euclidean distances, and the MST is the shortest pipe skeleton that
//	connects every service connection and the source.
//
// Algorithms Provided
//
//   - Kruskal(g *core.Graph) ([]core.Edge, float64, error)
//     Stable-sort all edges by weight and merge components with a
//     Disjoint-Set (path halving, union by rank).
//     Time O(E log E + α(V)·E), space O(V + E).
//
//   - Prim(g *core.Graph, root string) ([]core.Edge, float64, error)
//     Grow one tree from root using a min-heap of candidate edges.
//     Time O(E log V), space O(V + E).
//
//   - Span(g *core.Graph, m Method, root string) ([]core.Edge, float64, error)
//     Dispatch by Method name; route synthesis passes its Request.Method,
//     Kruskal when unset.
//
// Determinism
//
//	core.Graph lists edges in insertion order. Kruskal's stable sort and
//	Prim's heap (weight, then insertion sequence) therefore break equal
//	weights by the order in which edges were added. Callers that insert
//	edges in a canonical order get a canonical tree.
//
// Error Conditions
//
//   - ErrInvalidGraph: nil or unweighted graph.
//   - ErrEmptyRoot (Prim): root == "".
//   - core.ErrVertexNotFound (Prim): root is not a vertex.
//   - ErrDisconnected: |V| == 0, or no spanning tree covers every vertex.
//   - ErrUnknownMethod (Span): m is neither MethodKruskal nor MethodPrim.
package prim_kruskal
