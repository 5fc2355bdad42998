// Package bfs provides breadth-first search over a core.Graph,
// returning hop distances, parent links, tree edges and visit order.
package bfs

import (
	"context"
	"fmt"

	"github.com/katalvlaran/heatnet/core"
)

// queueItem pairs a vertex ID with its BFS depth.
type queueItem struct {
	id    string
	depth int
}

// walker encapsulates mutable BFS state.
type walker struct {
	graph   *core.Graph
	opts    BFSOptions
	ctx     context.Context
	queue   []queueItem
	visited map[string]bool
	seen    map[string]struct{}
	res     *BFSResult
}

// BFS runs breadth-first search on g starting from startID.
// Returns ErrGraphNil or ErrStartVertexNotFound for invalid input,
// ErrOptionViolation for bad options, ErrNeighbors for graph failures,
// the context error on cancellation, or any OnVisit error.
//
// Weights are ignored: depth counts edges.
func BFS(g *core.Graph, startID string, opts ...Option) (*BFSResult, error) {
	if g == nil {
		return nil, ErrGraphNil
	}
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}
	if !g.HasVertex(startID) {
		return nil, ErrStartVertexNotFound
	}

	n := g.VertexCount()
	w := &walker{
		graph:   g,
		opts:    o,
		ctx:     o.Ctx,
		queue:   make([]queueItem, 0, n),
		visited: make(map[string]bool, n),
		seen:    make(map[string]struct{}),
		res: &BFSResult{
			Order:      make([]string, 0, n),
			Depth:      make(map[string]int, n),
			Parent:     make(map[string]string, n),
			ParentEdge: make(map[string]string, n),
		},
	}

	w.enqueue(startID, 0, "", "")
	err := w.loop()
	w.res.EdgesSeen = len(w.seen)

	return w.res, err
}

func (w *walker) enqueue(id string, d int, parent, via string) {
	w.visited[id] = true
	w.res.Depth[id] = d
	if parent != "" {
		w.res.Parent[id] = parent
		w.res.ParentEdge[id] = via
	}
	w.queue = append(w.queue, queueItem{id: id, depth: d})
}

// loop processes the queue until empty, error, or cancellation.
func (w *walker) loop() error {
	for len(w.queue) > 0 {
		select {
		case <-w.ctx.Done():
			return w.ctx.Err()
		default:
		}

		item := w.queue[0]
		w.queue = w.queue[1:]
		w.res.Order = append(w.res.Order, item.id)
		if err := w.opts.OnVisit(item.id, item.depth); err != nil {
			return fmt.Errorf("bfs: OnVisit error at %q: %w", item.id, err)
		}
		if err := w.enqueueNeighbors(item); err != nil {
			return err
		}
	}

	return nil
}

// enqueueNeighbors walks the edges leaving item, applies filtering and
// MaxDepth, and enqueues each unseen neighbor.
func (w *walker) enqueueNeighbors(item queueItem) error {
	edges, err := w.graph.Neighbors(item.id)
	if err != nil {
		return fmt.Errorf("%w: failed to get neighbors of %q: %v", ErrNeighbors, item.id, err)
	}
	for _, e := range edges {
		if !w.opts.FilterEdge(item.id, e) {
			continue
		}
		w.seen[e.ID] = struct{}{}
		nbr := e.To
		if nbr == item.id {
			nbr = e.From
		}
		next := item.depth + 1
		if w.opts.MaxDepth > 0 && next > w.opts.MaxDepth {
			continue
		}
		if !w.visited[nbr] {
			w.enqueue(nbr, next, item.id, e.ID)
		}
	}

	return nil
}
