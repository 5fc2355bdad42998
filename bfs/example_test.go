package bfs_test

import (
	"fmt"

	"github.com/katalvlaran/heatnet/bfs"
	"github.com/katalvlaran/heatnet/core"
)

// ExampleBFS walks a small pipe tree from the pump junction and prints the
// pipe feeding each junction.
func ExampleBFS() {
	g := core.NewGraph(core.WithWeighted())
	_, _ = g.AddEdge("pump", "j1", 40, core.WithID("pipe0"))
	_, _ = g.AddEdge("j1", "j2", 25, core.WithID("pipe1"))
	_, _ = g.AddEdge("j1", "j3", 30, core.WithID("pipe2"))

	res, _ := bfs.BFS(g, "pump")
	for _, id := range res.Order[1:] {
		fmt.Printf("%s <- %s via %s\n", id, res.Parent[id], res.ParentEdge[id])
	}
	// Output:
	// j1 <- pump via pipe0
	// j2 <- j1 via pipe1
	// j3 <- j1 via pipe2
}
