package catalog_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/heatnet/catalog"
)

func TestNewOrdersByNominalSize(t *testing.T) {
	c, err := catalog.New([]catalog.Entry{
		{Name: "big", NominalSize: 100, InnerDiameterMM: 107},
		{Name: "small", NominalSize: 20, InnerDiameterMM: 21},
		{Name: "mid", NominalSize: 50, InnerDiameterMM: 54},
	})
	require.NoError(t, err)
	names := []string{}
	for _, e := range c.Entries() {
		names = append(names, e.Name)
	}
	assert.Equal(t, []string{"small", "mid", "big"}, names)

	_, err = catalog.New([]catalog.Entry{{Name: "a", InnerDiameterMM: 1}, {Name: "a", InnerDiameterMM: 2}})
	assert.ErrorIs(t, err, catalog.ErrDuplicateType)
	_, err = catalog.New([]catalog.Entry{{Name: "", InnerDiameterMM: 1}})
	assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
	_, err = catalog.New([]catalog.Entry{{Name: "zero"}})
	assert.ErrorIs(t, err, catalog.ErrInvalidEntry)
	_, err = catalog.New(nil)
	assert.ErrorIs(t, err, catalog.ErrNoEntries)
}

func TestFilterAndNeighbours(t *testing.T) {
	c := catalog.Default().Filter("KMR", "2v")
	require.Greater(t, c.Len(), 3)
	for _, e := range c.Entries() {
		assert.Equal(t, "KMR", e.Material)
		assert.Equal(t, "2v", e.Insulation)
	}

	first := c.At(0)
	_, ok := c.Smaller(first.Name)
	assert.False(t, ok, "no entry below the smallest")

	next, ok := c.Larger(first.Name)
	require.True(t, ok)
	assert.Greater(t, next.InnerDiameterMM, first.InnerDiameterMM)

	prev, ok := c.Smaller(next.Name)
	require.True(t, ok)
	assert.Equal(t, first, prev)

	last := c.At(c.Len() - 1)
	_, ok = c.Larger(last.Name)
	assert.False(t, ok, "no entry above the largest")

	_, ok = c.Larger("KMR 20/90-1v")
	assert.False(t, ok, "filtered-out types are unknown")
	assert.Equal(t, -1, c.Index("nope"))

	_, err := c.Lookup("nope")
	assert.ErrorIs(t, err, catalog.ErrUnknownType)
}

func TestFitting(t *testing.T) {
	c := catalog.Default().Filter("KMR", "2v")
	e, ok := c.Fitting(0.1)
	require.True(t, ok)
	assert.Equal(t, "KMR 100/225-2v", e.Name)

	e, ok = c.Fitting(5)
	require.True(t, ok)
	assert.Equal(t, c.At(c.Len()-1), e, "falls back to the largest")

	_, ok = catalog.Default().Filter("steel", "").Fitting(0.1)
	assert.False(t, ok)
}

func TestDecode(t *testing.T) {
	src := `
- name: DN50
  material: KMR
  insulation: 2v
  nominal_size: 50
  inner_diameter_mm: 54.5
  roughness_mm: 0.1
  heat_transfer_w_per_m2k: 1.1
- name: DN25
  material: KMR
  insulation: 2v
  nominal_size: 25
  inner_diameter_mm: 28.5
  roughness_mm: 0.1
  heat_transfer_w_per_m2k: 0.85
`
	c, err := catalog.Decode(strings.NewReader(src))
	require.NoError(t, err)
	require.Equal(t, 2, c.Len())
	assert.Equal(t, "DN25", c.At(0).Name)
	assert.InDelta(t, 0.0545, c.At(1).DiameterM(), 1e-12)

	_, err = catalog.Decode(strings.NewReader("- name: x\n  colour: red\n"))
	assert.Error(t, err, "unknown fields are rejected")

	for _, empty := range []string{"", "# no types yet\n", "[]\n"} {
		_, err = catalog.Decode(strings.NewReader(empty))
		assert.ErrorIs(t, err, catalog.ErrNoEntries, "%q", empty)
	}
}
