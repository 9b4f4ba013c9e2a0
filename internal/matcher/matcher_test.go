package matcher

import (
	"fmt"
	"testing"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWindow(t *testing.T) *window.Window {
	t.Helper()
	return &window.Window{
		Name:         "w",
		Group:        "g",
		Projection:   geo.Projection{EPSG: geo.WGS84, XResolution: 0.001, YResolution: -0.001},
		Bounds:       [4]float64{-51.1, -20.1, -51.0, -20.0},
		LatLonBounds: [4]float64{-51.1, -20.1, -51.0, -20.0},
		TimeRange: window.TimeRange{
			Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			End:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func fullFootprint() *geojson.Geometry {
	return geojson.NewGeometry(orb.Polygon{{
		{-52, -21}, {-50, -21}, {-50, -19}, {-52, -19}, {-52, -21},
	}})
}

func testItem(id string, day int, cloud float64) catalog.Item {
	return catalog.Item{
		ID:         id,
		Source:     "test",
		Time:       time.Date(2024, 1, day, 10, 0, 0, 0, time.UTC),
		CloudCover: cloud,
		Footprint:  fullFootprint(),
	}
}

func TestMatchSortsByMetric(t *testing.T) {
	w := testWindow(t)
	candidates := []catalog.Item{
		testItem("a", 5, 80),
		testItem("b", 10, 10),
		testItem("c", 15, 50),
	}

	groups := Match(w, QueryConfig{SpaceMode: Mosaic, TimeMode: Within, MaxMatches: 1, Ascending: true}, candidates)
	require.Len(t, groups, 1)
	// The least cloudy item alone covers the window; the others never join.
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "b", groups[0].Items[0].ID)

	groups = Match(w, QueryConfig{SpaceMode: Mosaic, TimeMode: Within, MaxMatches: 1, Ascending: false}, candidates)
	require.Len(t, groups, 1)
	assert.Equal(t, "a", groups[0].Items[0].ID)
}

func TestMatchTiesKeepCatalogOrder(t *testing.T) {
	w := testWindow(t)
	candidates := []catalog.Item{
		testItem("first", 5, 20),
		testItem("second", 10, 20),
	}
	groups := Match(w, QueryConfig{TimeMode: Within, Ascending: true}, candidates)
	require.Len(t, groups, 1)
	assert.Equal(t, "first", groups[0].Items[0].ID)
}

func TestMatchFiltersTimeRange(t *testing.T) {
	w := testWindow(t)
	early := testItem("early", 1, 5)
	early.Time = time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)
	late := testItem("late", 1, 5)
	late.Time = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) // end is exclusive
	in := testItem("in", 15, 5)

	groups := Match(w, QueryConfig{TimeMode: Within, Ascending: true}, []catalog.Item{early, late, in})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 1)
	assert.Equal(t, "in", groups[0].Items[0].ID)
}

func TestMatchFiltersFootprints(t *testing.T) {
	w := testWindow(t)
	elsewhere := testItem("elsewhere", 15, 5)
	elsewhere.Footprint = geojson.NewGeometry(orb.Polygon{{
		{10, 10}, {11, 10}, {11, 11}, {10, 11}, {10, 10},
	}})

	groups := Match(w, QueryConfig{TimeMode: Within, Ascending: true}, []catalog.Item{elsewhere})
	assert.Empty(t, groups)
}

func TestMatchMosaicAccumulatesPartialFootprints(t *testing.T) {
	w := testWindow(t)
	// Two half-window footprints, split down the middle.
	west := testItem("west", 5, 10)
	west.Footprint = geojson.NewGeometry(orb.Polygon{{
		{-51.1, -20.1}, {-51.05, -20.1}, {-51.05, -20.0}, {-51.1, -20.0}, {-51.1, -20.1},
	}})
	east := testItem("east", 10, 20)
	east.Footprint = geojson.NewGeometry(orb.Polygon{{
		{-51.05, -20.1}, {-51.0, -20.1}, {-51.0, -20.0}, {-51.05, -20.0}, {-51.05, -20.1},
	}})

	groups := Match(w, QueryConfig{TimeMode: Within, Ascending: true}, []catalog.Item{east, west})
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Items, 2)
	// Least cloudy first; compositing order follows the sort.
	assert.Equal(t, "west", groups[0].Items[0].ID)
	assert.Equal(t, "east", groups[0].Items[1].ID)
}

func TestMatchPeriods(t *testing.T) {
	w := testWindow(t)
	cfg := QueryConfig{
		SpaceMode:      PerPeriodMosaic,
		TimeMode:       Within,
		PeriodDuration: 30 * 24 * time.Hour,
		MaxMatches:     3,
		Ascending:      true,
	}
	candidates := []catalog.Item{
		testItem("jan-a", 5, 30),
		testItem("jan-b", 20, 10),
		{ID: "feb", Source: "test", Time: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), CloudCover: 40, Footprint: fullFootprint()},
	}

	groups := Match(w, cfg, candidates)
	require.Len(t, groups, 2)
	assert.Equal(t, "jan-b", groups[0].Items[0].ID)
	assert.Equal(t, "feb", groups[1].Items[0].ID)
}

func TestMatchNearestClampsIntoRange(t *testing.T) {
	w := testWindow(t)
	cfg := QueryConfig{
		SpaceMode:      PerPeriodMosaic,
		TimeMode:       Nearest,
		PeriodDuration: 30 * 24 * time.Hour,
		MaxMatches:     3,
		Ascending:      true,
	}
	before := testItem("before", 1, 5)
	before.Time = time.Date(2023, 12, 20, 0, 0, 0, 0, time.UTC)
	after := testItem("after", 1, 5)
	after.Time = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

	groups := Match(w, cfg, []catalog.Item{before, after})
	require.Len(t, groups, 2)
	assert.Equal(t, "before", groups[0].Items[0].ID)
	assert.Equal(t, "after", groups[1].Items[0].ID)
}

func TestMatchDeterministic(t *testing.T) {
	w := testWindow(t)
	var candidates []catalog.Item
	for i := 0; i < 20; i++ {
		candidates = append(candidates, testItem(fmt.Sprintf("item-%d", i), i%28+1, float64(i*7%100)))
	}
	cfg := QueryConfig{TimeMode: Within, PeriodDuration: 14 * 24 * time.Hour, MaxMatches: 4, Ascending: true}

	first := Match(w, cfg, candidates)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Match(w, cfg, candidates))
	}
}

func TestMatchEmptyCatalog(t *testing.T) {
	assert.Empty(t, Match(testWindow(t), QueryConfig{TimeMode: Within}, nil))
}

func TestParseModes(t *testing.T) {
	m, err := ParseSpaceMode("")
	require.NoError(t, err)
	assert.Equal(t, Mosaic, m)
	_, err = ParseSpaceMode("DIAGONAL")
	assert.Error(t, err)

	tm, err := ParseTimeMode("")
	require.NoError(t, err)
	assert.Equal(t, Within, tm)
	_, err = ParseTimeMode("SOMETIME")
	assert.Error(t, err)
}
