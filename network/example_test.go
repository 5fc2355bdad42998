package network_test

import (
	"fmt"

	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/network"
)

// ExampleBuildLayout builds one consumer fed over a 50 m forward and return line.
func ExampleBuildLayout() {
	l := network.Layout{
		Forward: []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(50, 0)}},
		Return:  []geometry.Line{{geometry.Pt(1, 0), geometry.Pt(51, 0)}},
		Consumers: []network.ConsumerSpec{
			{Name: "HAST 0", Line: geometry.Line{geometry.Pt(50, 0), geometry.Pt(51, 0)}, QextW: 60000},
		},
		Producers: []geometry.Line{{geometry.Pt(0, 0), geometry.Pt(1, 0)}},
	}

	n, err := network.BuildLayout(l, network.DefaultOptions())
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	h := n.HeatExchanger(0)
	fc := n.FlowControl(h.FlowControl)
	fmt.Printf("junctions=%d pipes=%d\n", n.NumJunctions(), n.NumPipes())
	fmt.Printf("%s: junction %d -> %d -> %d\n", h.Name, fc.From, h.From, h.To)
	// Output:
	// junctions=5 pipes=2
	// HAST 0: junction 1 -> 4 -> 3
}
