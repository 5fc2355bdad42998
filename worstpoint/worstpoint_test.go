package worstpoint_test

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/heatnet/network"
	"github.com/katalvlaran/heatnet/network/networktest"
	"github.com/katalvlaran/heatnet/solver"
	"github.com/katalvlaran/heatnet/solver/lumped"
	"github.com/katalvlaran/heatnet/worstpoint"
)

// withMargins returns results for n where consumer i has margin dp[i].
func withMargins(n *network.Network, dp ...float64) *solver.Results {
	res := solver.NewResults(n)
	for i, h := range n.HeatExchangers() {
		res.FlowControls[h.FlowControl].PFromBar = 3 + dp[i]
		res.HeatExchangers[i].PToBar = 3
	}

	return res
}

func TestLocatePicksSmallestMargin(t *testing.T) {
	n := networktest.MustBuild(networktest.Star(3, 50, 60000))
	p, err := worstpoint.Locate(n, withMargins(n, 1.2, 0.4, 0.9))
	require.NoError(t, err)
	assert.Equal(t, 1, p.HeatExchanger)
	assert.Equal(t, n.HeatExchanger(1).FlowControl, p.FlowControl)
	assert.InDelta(t, 0.4, p.DpBar, 1e-12)
}

func TestLocateTieGoesToFirst(t *testing.T) {
	n := networktest.MustBuild(networktest.Star(4, 50, 60000))
	p, err := worstpoint.Locate(n, withMargins(n, 0.9, 0.5, 0.7, 0.5))
	require.NoError(t, err)
	assert.Equal(t, 1, p.HeatExchanger)
}

func TestMargins(t *testing.T) {
	n := networktest.MustBuild(networktest.Star(3, 50, 60000))
	all, err := worstpoint.Margins(n, withMargins(n, 1.2, 0.4, 0.9))
	require.NoError(t, err)
	require.Len(t, all, 3)
	for i, want := range []float64{1.2, 0.4, 0.9} {
		assert.Equal(t, i, all[i].HeatExchanger)
		assert.InDelta(t, want, all[i].DpBar, 1e-12)
	}
}

func TestLocateWithLumpedSolverPicksFarthestConsumer(t *testing.T) {
	n := networktest.MustBuild(networktest.Chain(3, 100, 60000))
	res, err := lumped.New().Solve(context.Background(), n)
	require.NoError(t, err)

	p, err := worstpoint.Locate(n, res)
	require.NoError(t, err)
	assert.Equal(t, 2, p.HeatExchanger)
	assert.Positive(t, p.DpBar)
}

func TestErrors(t *testing.T) {
	n := networktest.MustBuild(networktest.Star(2, 50, 60000))

	_, err := worstpoint.Locate(n, nil)
	assert.ErrorIs(t, err, worstpoint.ErrResultsMismatch)

	_, err = worstpoint.Locate(n, &solver.Results{})
	assert.ErrorIs(t, err, worstpoint.ErrResultsMismatch)

	_, err = worstpoint.Locate(n, withMargins(n, math.NaN(), 1))
	assert.ErrorIs(t, err, worstpoint.ErrResultsMismatch)

	b := network.NewBuilder()
	a := b.AddJunction(network.Junction{Name: "a"})
	c := b.AddJunction(network.Junction{Name: "b"})
	b.AddPump(network.Pump{Name: "pump", FlowJunction: a, ReturnJunction: c, PFlowBar: 4, PLiftBar: 1.5, TFlowK: 363.15})
	empty, err := b.Build()
	require.NoError(t, err)
	_, err = worstpoint.Locate(empty, solver.NewResults(empty))
	assert.ErrorIs(t, err, worstpoint.ErrNoHeatExchangers)
}
