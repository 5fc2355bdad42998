package route_test

import (
	"fmt"

	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/route"
)

func ExampleSynthesize() {
	r, err := route.Synthesize(route.Request{
		Terminals: []geometry.Point{geometry.Pt(10, 6), geometry.Pt(40, -3), geometry.Pt(25, 4)},
		Streets:   []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(50, 0)}},
	})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("endpoints:", r.Endpoints)
	for _, s := range r.Trunk {
		fmt.Printf("trunk %v -> %v\n", s.A, s.B)
	}
	fmt.Printf("length %.1f\n", r.TrunkLength)
	// Output:
	// endpoints: [{10 0} {25 0} {40 0}]
	// trunk {10 0} -> {25 0}
	// trunk {25 0} -> {40 0}
	// length 30.0
}
