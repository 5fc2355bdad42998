// Package core defines the central Graph, Vertex, and Edge types,
// and provides thread-safe primitives for building and querying graphs.
//
// All core APIs use separate sync.RWMutex locks internally (muVert for vertices,
// muEdgeAdj for edges and adjacency), so graphs can be mutated across goroutines
// with minimal contention.
//
// This file declares Vertex, Edge, Graph, GraphOption, EdgeOption,
// sentinel errors, and the NewGraph constructor.
//
// Errors:
//
//	ErrEmptyVertexID       - vertex ID is the empty string.
//	ErrVertexNotFound      - requested vertex does not exist.
//	ErrBadWeight           - non-zero weight on an unweighted graph, or NaN/Inf weight.
//	ErrLoopNotAllowed      - edge from a vertex to itself.
//	ErrMultiEdgeNotAllowed - parallel edge when multi-edges are disabled.
//	ErrEdgeIDConflict      - explicit edge ID already in use.
package core

import (
	"errors"
	"sync"
)

// Sentinel errors for core graph operations.
var (
	// ErrEmptyVertexID indicates that the provided vertex ID is empty.
	ErrEmptyVertexID = errors.New("core: vertex ID is empty")

	// ErrVertexNotFound indicates an operation referenced a non-existent vertex.
	ErrVertexNotFound = errors.New("core: vertex not found")

	// ErrBadWeight indicates a non-zero weight on an unweighted graph or a non-finite weight.
	ErrBadWeight = errors.New("core: bad weight for graph")

	// ErrLoopNotAllowed indicates a self-loop; no heatnet graph has them.
	ErrLoopNotAllowed = errors.New("core: self-loop not allowed")

	// ErrMultiEdgeNotAllowed indicates a parallel edge was attempted when multi-edges are disabled.
	ErrMultiEdgeNotAllowed = errors.New("core: multi-edges not allowed")

	// ErrEdgeIDConflict indicates that an explicit edge ID is already taken.
	ErrEdgeIDConflict = errors.New("core: edge ID already exists")
)

// Vertex represents a node in the graph.
type Vertex struct {
	// ID is the unique identifier for this Vertex.
	ID string
}

// Edge represents a connection between two vertices.
//
// Each Edge has a unique ID, endpoints From and To (in insertion order; the
// edge itself is undirected) and a float64 Weight (length, cost).
type Edge struct {
	// ID uniquely identifies this edge in the Graph.
	ID string

	// From is the source vertex ID.
	From string

	// To is the destination vertex ID.
	To string

	// Weight is the cost or length of the edge.
	Weight float64

	// seq is the insertion sequence number; Edges() and Neighbors() order by it.
	seq uint64
}

// Seq returns the insertion sequence number of the edge (1-based).
func (e *Edge) Seq() uint64 { return e.seq }

// GraphOption configures behavior of a Graph before creation.
type GraphOption func(g *Graph)

// WithWeighted allows non-zero edge weights in the Graph.
func WithWeighted() GraphOption {
	return func(g *Graph) { g.weighted = true }
}

// WithMultiEdges permits parallel edges between the same vertices.
func WithMultiEdges() GraphOption {
	return func(g *Graph) { g.allowMulti = true }
}

// edgeConfig collects per-edge options before the edge is created.
type edgeConfig struct {
	id string
}

// EdgeOption configures properties of individual edges when added.
type EdgeOption func(*edgeConfig)

// WithID assigns an explicit edge ID instead of the generated "e<n>" one.
// Callers use it to map edges back to their own domain objects.
func WithID(id string) EdgeOption {
	return func(c *edgeConfig) { c.id = id }
}

// Graph is the core in-memory graph data structure.
//
// Edges are undirected and may carry float64 weights; parallel edges
// (multi-edges) are opt-in. Self-loops are always rejected.
// muVert protects vertices; muEdgeAdj protects edges and adjacencyList.
type Graph struct {
	muVert    sync.RWMutex // guards vertices
	muEdgeAdj sync.RWMutex // guards edges, adjacency and nextEdgeSeq

	// Configuration flags
	weighted   bool
	allowMulti bool

	// Storage
	nextEdgeSeq   uint64
	vertices      map[string]*Vertex
	edges         map[string]*Edge

	// adjacencyList[from][to][edgeID] = struct{}{}
	adjacencyList map[string]map[string]map[string]struct{}
}

// NewGraph creates an empty Graph with the given options.
// By default, Graph is unweighted with no multi-edges.
// Complexity: O(1)
func NewGraph(opts ...GraphOption) *Graph {
	g := &Graph{
		vertices:      make(map[string]*Vertex),
		edges:         make(map[string]*Edge),
		adjacencyList: make(map[string]map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Weighted reports whether non-zero weights are permitted.
func (g *Graph) Weighted() bool { return g.weighted }
