package core_test

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katalvlaran/heatnet/core"
)

// TestConcurrentAddEdge checks that parallel AddEdge calls neither race nor
// lose edges; run with -race.
func TestConcurrentAddEdge(t *testing.T) {
	g := core.NewGraph(core.WithWeighted(), core.WithMultiEdges())
	const workers, perWorker = 8, 50

	var wg sync.WaitGroup
	errCh := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				from := "v" + strconv.Itoa(w)
				to := "u" + strconv.Itoa(i)
				if _, err := g.AddEdge(from, to, float64(i)); err != nil {
					errCh <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		assert.NoError(t, err)
	}
	assert.Equal(t, workers*perWorker, g.EdgeCount())
}

func TestConcurrentNeighborsAndEdges(t *testing.T) {
	g := core.NewGraph(core.WithWeighted())
	for i := 0; i < 100; i++ {
		_, _ = g.AddEdge("hub", "n"+strconv.Itoa(i), 1)
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := g.Neighbors("hub")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			assert.Len(t, g.Edges(), 100)
		}()
	}
	wg.Wait()
}
