// Package networktest provides small ready-made layouts for tests.
package networktest

import (
	"fmt"

	"github.com/katalvlaran/heatnet/geometry"
	"github.com/katalvlaran/heatnet/network"
)

// Chain returns a radial layout with the producer at the origin and n
// consumers spaced `spacing` metres apart along the x axis. The return line
// runs 1 m to the east of every forward point, the way route.BuildPlan
// offsets it by default. Every consumer draws qextW.
func Chain(n int, spacing, qextW float64) network.Layout {
	fwd := func(i int) geometry.Point { return geometry.Pt(float64(i)*spacing, 0) }
	ret := func(i int) geometry.Point { return geometry.Pt(float64(i)*spacing+1, 0) }

	var l network.Layout
	for i := 1; i <= n; i++ {
		l.Forward = append(l.Forward, geometry.Line{fwd(i - 1), fwd(i)})
		l.Return = append(l.Return, geometry.Line{ret(i - 1), ret(i)})
		l.Consumers = append(l.Consumers, network.ConsumerSpec{
			Name:  fmt.Sprintf("HAST %d", i-1),
			Line:  geometry.Line{fwd(i), ret(i)},
			QextW: qextW,
		})
	}
	l.Producers = []geometry.Line{{fwd(0), ret(0)}}

	return l
}

// Star returns a layout with the producer at the origin and one consumer at
// the end of each of n spokes of the given length.
func Star(n int, length, qextW float64) network.Layout {
	var l network.Layout
	origin, originRet := geometry.Pt(0, 0), geometry.Pt(1, 0)
	for i := 0; i < n; i++ {
		tip := geometry.Offset(origin, length, float64(i)*360/float64(n))
		tipRet := geometry.Offset(originRet, length, float64(i)*360/float64(n))
		l.Forward = append(l.Forward, geometry.Line{origin, tip})
		l.Return = append(l.Return, geometry.Line{originRet, tipRet})
		l.Consumers = append(l.Consumers, network.ConsumerSpec{
			Name:  fmt.Sprintf("HAST %d", i),
			Line:  geometry.Line{tip, tipRet},
			QextW: qextW,
		})
	}
	l.Producers = []geometry.Line{{origin, originRet}}

	return l
}

// MustBuild builds l with network.DefaultOptions and panics on error.
func MustBuild(l network.Layout) *network.Network {
	n, err := network.BuildLayout(l, network.DefaultOptions())
	if err != nil {
		panic(err)
	}

	return n
}
