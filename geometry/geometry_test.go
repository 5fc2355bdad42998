package geometry_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/heatnet/geometry"
)

func TestClosestPointOnSegment(t *testing.T) {
	s := geometry.Segment{A: geometry.Pt(0, 0), B: geometry.Pt(10, 0)}
	cases := []struct {
		name string
		p    geometry.Point
		want geometry.Point
	}{
		{"perpendicular foot", geometry.Pt(3, 4), geometry.Pt(3, 0)},
		{"clamped before A", geometry.Pt(-2, 1), geometry.Pt(0, 0)},
		{"clamped after B", geometry.Pt(12, -1), geometry.Pt(10, 0)},
		{"on segment", geometry.Pt(5, 0), geometry.Pt(5, 0)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geometry.ClosestPointOnSegment(tc.p, s)
			assert.InDelta(t, tc.want.X, got.X, 1e-12)
			assert.InDelta(t, tc.want.Y, got.Y, 1e-12)
		})
	}

	degenerate := geometry.Segment{A: geometry.Pt(1, 1), B: geometry.Pt(1, 1)}
	assert.Equal(t, geometry.Pt(1, 1), geometry.ClosestPointOnSegment(geometry.Pt(4, 5), degenerate))
}

func TestProjectOntoLines(t *testing.T) {
	lines := []geometry.Line{
		{geometry.Pt(0, 10), geometry.Pt(10, 10)},
		{geometry.Pt(0, 0), geometry.Pt(5, 0), geometry.Pt(5, 5)},
	}
	pr, err := geometry.ProjectOntoLines(geometry.Pt(7, 3), lines)
	require.NoError(t, err)
	assert.Equal(t, 1, pr.Line)
	assert.Equal(t, geometry.Pt(5, 3), pr.Foot)
	assert.InDelta(t, 2.0, pr.Distance, 1e-12)

	// equidistant: first line wins
	pr, err = geometry.ProjectOntoLines(geometry.Pt(2, 5), []geometry.Line{
		{geometry.Pt(0, 10), geometry.Pt(10, 10)},
		{geometry.Pt(0, 0), geometry.Pt(10, 0)},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, pr.Line)

	_, err = geometry.ProjectOntoLines(geometry.Pt(0, 0), []geometry.Line{{geometry.Pt(1, 1)}})
	assert.ErrorIs(t, err, geometry.ErrEmptyLine)
}

func TestOffset(t *testing.T) {
	p := geometry.Offset(geometry.Pt(1, 1), 2, 90)
	assert.InDelta(t, 1.0, p.X, 1e-12)
	assert.InDelta(t, 3.0, p.Y, 1e-12)

	p = geometry.Offset(geometry.Pt(0, 0), math.Sqrt2, 45)
	assert.InDelta(t, 1.0, p.X, 1e-12)
	assert.InDelta(t, 1.0, p.Y, 1e-12)
}

func TestLine(t *testing.T) {
	l := geometry.Line{geometry.Pt(0, 0), geometry.Pt(3, 4), geometry.Pt(3, 10)}
	assert.InDelta(t, 11.0, l.Length(), 1e-12)
	assert.Len(t, l.Segments(), 2)
	assert.False(t, l.IsSegment())
	assert.True(t, l[:2].IsSegment())
	assert.Nil(t, geometry.Line{geometry.Pt(0, 0)}.Segments())
}

func TestIndexDedup(t *testing.T) {
	ix := geometry.NewIndex()
	id, added := ix.Add(geometry.Pt(1, 2))
	assert.Equal(t, 0, id)
	assert.True(t, added)

	ids := ix.AddLine(geometry.Line{geometry.Pt(1, 2), geometry.Pt(3, 4)})
	assert.Equal(t, []int{0, 1}, ids)

	id, added = ix.Add(geometry.Pt(1, 2))
	assert.Equal(t, 0, id)
	assert.False(t, added)
	assert.Equal(t, 2, ix.Len())

	_, ok := ix.Lookup(geometry.Pt(1, 2.0000001))
	assert.False(t, ok, "dedup is exact equality")
	assert.Equal(t, geometry.Pt(3, 4), ix.Point(1))

	pts := ix.Points()
	pts[0] = geometry.Pt(9, 9)
	assert.Equal(t, geometry.Pt(1, 2), ix.Point(0), "Points returns a copy")
}

func TestSortPoints(t *testing.T) {
	pts := []geometry.Point{geometry.Pt(1, 0), geometry.Pt(0, 1), geometry.Pt(0, 0), geometry.Pt(1, -1)}
	geometry.SortPoints(pts)
	assert.Equal(t, []geometry.Point{geometry.Pt(0, 0), geometry.Pt(0, 1), geometry.Pt(1, -1), geometry.Pt(1, 0)}, pts)
}
