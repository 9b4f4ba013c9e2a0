package rasterize

import (
	"errors"
	"testing"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 8x8 window with 10-unit pixels, top-left at (0, 80).
func testWindow() *window.Window {
	return &window.Window{
		Name:       "w",
		Group:      "g",
		Projection: geo.Projection{EPSG: 32722, XResolution: 10, YResolution: -10},
		Bounds:     [4]float64{0, 0, 80, 80},
		TimeRange: window.TimeRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func feature(g orb.Geometry, class string) *geojson.Feature {
	f := geojson.NewFeature(g)
	f.Properties = geojson.Properties{"category": class}
	return f
}

var testConfig = Config{
	Classes:  []string{"invalid", "Trees", "Water"},
	Property: "category",
}

func countValue(band []float64, value float64) int {
	n := 0
	for _, v := range band {
		if v == value {
			n++
		}
	}
	return n
}

func TestRasterizePolygonBurnsCoveredPixels(t *testing.T) {
	// Covers pixel columns 2-4, rows 2-4 (y 30-60 maps to rows 2,3,4).
	poly := orb.Polygon{{{20, 30}, {50, 30}, {50, 60}, {20, 60}, {20, 30}}}

	out, dropped, err := Rasterize(testWindow(), []*geojson.Feature{feature(poly, "Trees")}, testConfig)
	require.NoError(t, err)
	assert.Zero(t, dropped)
	assert.Equal(t, 8, out.Width)
	assert.Equal(t, 8, out.Height)
	assert.Equal(t, 9, countValue(out.Bands[0], 1))

	// Spot-check: pixel (3,3) center is (35, 45), inside the polygon.
	assert.Equal(t, 1.0, out.At(0, 3, 3))
	assert.Equal(t, 0.0, out.At(0, 0, 0))
}

func TestRasterizePointNeighborhood(t *testing.T) {
	pt := orb.Point{45, 45} // pixel (4, 3)

	cfg := testConfig
	out, _, err := Rasterize(testWindow(), []*geojson.Feature{feature(pt, "Water")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, countValue(out.Bands[0], 2))
	assert.Equal(t, 2.0, out.At(0, 4, 3))

	cfg.PointRadius = 1
	out, _, err = Rasterize(testWindow(), []*geojson.Feature{feature(pt, "Water")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 9, countValue(out.Bands[0], 2))
}

func TestRasterizePointAtEdgeClips(t *testing.T) {
	cfg := testConfig
	cfg.PointRadius = 1
	pt := orb.Point{5, 75} // pixel (0, 0)

	out, _, err := Rasterize(testWindow(), []*geojson.Feature{feature(pt, "Trees")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 4, countValue(out.Bands[0], 1))
}

func TestRasterizeUnknownClassAbort(t *testing.T) {
	cfg := testConfig
	cfg.Policy = Abort

	_, _, err := Rasterize(testWindow(), []*geojson.Feature{feature(orb.Point{5, 5}, "Lava")}, cfg)
	require.Error(t, err)
	var unknown *UnknownClassError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "Lava", unknown.Class)
}

func TestRasterizeUnknownClassDrop(t *testing.T) {
	cfg := testConfig
	cfg.Policy = Drop

	out, dropped, err := Rasterize(testWindow(), []*geojson.Feature{
		feature(orb.Point{5, 5}, "Lava"),
		feature(orb.Point{15, 15}, "Trees"),
	}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, countValue(out.Bands[0], 1))
}

func TestRasterizeNeedsRealClasses(t *testing.T) {
	_, _, err := Rasterize(testWindow(), nil, Config{Classes: []string{"invalid"}})
	assert.Error(t, err)
}

func TestRasterizeInvalidNeverAssigned(t *testing.T) {
	// A feature whose class matches the reserved index 0 name is unknown.
	cfg := testConfig
	cfg.Policy = Drop
	out, dropped, err := Rasterize(testWindow(), []*geojson.Feature{feature(orb.Point{5, 5}, "invalid")}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 0, countValue(out.Bands[0], 1)+countValue(out.Bands[0], 2))
}
