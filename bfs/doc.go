// Package bfs provides breadth-first search over a core.Graph,
// returning hop distances, parent links, tree edges and visit order.
//
// What
//
//   - Explore vertices in non-decreasing hop distance from a start vertex.
//   - Return a BFSResult with Order, Depth, Parent, ParentEdge and the
//     number of distinct edges incident to the visited component.
//   - Optional OnVisit hook (may abort), edge filtering and MaxDepth.
//
// Why
//
//	heatnet walks pipe trees with it: the reference solver orders junctions
//	from the pump outward and reads each junction's feeding pipe from
//	ParentEdge, and the network builder uses reachability to reject
//	junctions that are not connected to the circulation pump.
//	EdgesSeen == len(Order)-1 holds exactly when the reached component is a tree.
//
// Determinism
//
//	core.Neighbors returns edges in insertion order and BFS enqueues in that
//	order, so the visit sequence is reproducible.
//
// Complexity: O(V + E) time, O(V) memory.
package bfs
