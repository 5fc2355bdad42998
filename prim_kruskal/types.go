package prim_kruskal

import (
	"errors"
	"fmt"

	"github.com/katalvlaran/heatnet/core"
)

// Sentinel errors.
var (
	// ErrInvalidGraph is returned for nil or unweighted graphs.
	ErrInvalidGraph = errors.New("prim_kruskal: MST requires a weighted graph")

	// ErrEmptyRoot is returned by Prim without a start vertex.
	ErrEmptyRoot = errors.New("prim_kruskal: empty root vertex")

	// ErrDisconnected is returned when no tree spans every vertex.
	ErrDisconnected = errors.New("prim_kruskal: graph is disconnected")

	// ErrUnknownMethod is returned by Span for a Method it does not know.
	ErrUnknownMethod = errors.New("prim_kruskal: unknown method")
)

// Method names a spanning tree algorithm.
type Method string

const (
	// MethodKruskal sorts all edges once; it needs no root. Route synthesis
	// defaults to it.
	MethodKruskal Method = "kruskal"
	// MethodPrim grows the tree from a root vertex.
	MethodPrim Method = "prim"
)

// Span runs m on g. root is only read by MethodPrim.
func Span(g *core.Graph, m Method, root string) ([]core.Edge, float64, error) {
	switch m {
	case MethodKruskal:
		return Kruskal(g)
	case MethodPrim:
		return Prim(g, root)
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownMethod, m)
	}
}
