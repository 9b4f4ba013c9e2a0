package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrid(t *testing.T) {
	proj := Projection{EPSG: 32722, XResolution: 10, YResolution: -10}

	t.Run("exact bounds", func(t *testing.T) {
		grid, err := proj.Grid(orb.Bound{Min: orb.Point{500000, 7000000}, Max: orb.Point{501280, 7001280}})
		require.NoError(t, err)
		assert.Equal(t, 128, grid.Width)
		assert.Equal(t, 128, grid.Height)
		assert.Equal(t, [6]float64{500000, 10, 0, 7001280, 0, -10}, grid.Transform)
	})

	t.Run("fractional extents round to nearest pixel", func(t *testing.T) {
		grid, err := proj.Grid(orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{1284, 1276}})
		require.NoError(t, err)
		assert.Equal(t, 128, grid.Width)
		assert.Equal(t, 128, grid.Height)
	})

	t.Run("zero resolution rejected", func(t *testing.T) {
		_, err := Projection{EPSG: 32722}.Grid(orb.Bound{Max: orb.Point{100, 100}})
		assert.Error(t, err)
	})

	t.Run("empty bounds rejected", func(t *testing.T) {
		_, err := proj.Grid(orb.Bound{Min: orb.Point{100, 100}, Max: orb.Point{100, 100}})
		assert.Error(t, err)
	})
}

func TestPixelRoundTrip(t *testing.T) {
	proj := Projection{EPSG: 32722, XResolution: 10, YResolution: -10}
	grid, err := proj.Grid(orb.Bound{Min: orb.Point{500000, 7000000}, Max: orb.Point{500640, 7000640}})
	require.NoError(t, err)

	col, row := grid.ToPixel(500005, 7000635)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	x, y := grid.PixelCenter(col, row)
	assert.Equal(t, 500005.0, x)
	assert.Equal(t, 7000635.0, y)

	col, row = grid.ToPixel(x, y)
	assert.Equal(t, 0, col)
	assert.Equal(t, 0, row)

	// Bottom-right pixel.
	col, row = grid.ToPixel(500639, 7000001)
	assert.Equal(t, 63, col)
	assert.Equal(t, 63, row)
}

func TestUTMEPSG(t *testing.T) {
	assert.Equal(t, 32722, UTMEPSG(-51.0, -20.0)) // zone 22 south
	assert.Equal(t, 32631, UTMEPSG(3.0, 48.0))    // zone 31 north
	assert.Equal(t, 32601, UTMEPSG(-179.9, 10.0))
	assert.Equal(t, 32760, UTMEPSG(179.9, -10.0))
	assert.Equal(t, 5041, UTMEPSG(0, 85))
	assert.Equal(t, 5042, UTMEPSG(0, -85))
}

func TestSquareBounds(t *testing.T) {
	t.Run("even size is symmetric around the pixel corner", func(t *testing.T) {
		b, err := SquareBounds(1000, 2000, 10, 4)
		require.NoError(t, err)
		assert.Equal(t, orb.Point{980, 1980}, b.Min)
		assert.Equal(t, orb.Point{1020, 2020}, b.Max)
	})

	t.Run("odd size still spans size+1 pixels per side", func(t *testing.T) {
		b, err := SquareBounds(1000, 2000, 10, 5)
		require.NoError(t, err)
		assert.Equal(t, orb.Point{980, 1970}, b.Min)
		assert.Equal(t, orb.Point{1030, 2020}, b.Max)
	})

	t.Run("non-positive size rejected", func(t *testing.T) {
		_, err := SquareBounds(0, 0, 10, 0)
		assert.Error(t, err)
	})
}

func TestMapPoints(t *testing.T) {
	shift := func(pt orb.Point) orb.Point { return orb.Point{pt[0] + 1, pt[1] + 1} }

	poly := orb.Polygon{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}}
	mapped := MapPoints(poly, shift).(orb.Polygon)
	assert.Equal(t, orb.Point{1, 1}, mapped[0][0])
	assert.Equal(t, orb.Point{3, 3}, mapped[0][2])
	// Input untouched.
	assert.Equal(t, orb.Point{0, 0}, poly[0][0])

	mp := MapPoints(orb.MultiPoint{{1, 1}, {2, 2}}, shift).(orb.MultiPoint)
	assert.Equal(t, orb.MultiPoint{{2, 2}, {3, 3}}, mp)
}
