package catalog

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemProperty(t *testing.T) {
	it := Item{CloudCover: 12.5, Properties: map[string]float64{"sun_elevation": 40}}

	v, ok := it.Property("cloud_cover")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = it.Property("")
	assert.True(t, ok)
	assert.Equal(t, 12.5, v)

	v, ok = it.Property("sun_elevation")
	assert.True(t, ok)
	assert.Equal(t, 40.0, v)

	_, ok = it.Property("snow_cover")
	assert.False(t, ok)
}

func TestItemContains(t *testing.T) {
	t.Run("nil footprint covers everything", func(t *testing.T) {
		assert.True(t, Item{}.Contains(orb.Point{123, 45}))
	})

	t.Run("polygon footprint", func(t *testing.T) {
		it := Item{Footprint: geojson.NewGeometry(orb.Polygon{{
			{0, 0}, {10, 0}, {10, 10}, {0, 10}, {0, 0},
		}})}
		assert.True(t, it.Contains(orb.Point{5, 5}))
		assert.False(t, it.Contains(orb.Point{15, 5}))
	})

	t.Run("multipolygon footprint", func(t *testing.T) {
		it := Item{Footprint: geojson.NewGeometry(orb.MultiPolygon{
			{{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {0, 0}}},
			{{{8, 8}, {10, 8}, {10, 10}, {8, 10}, {8, 8}}},
		})}
		assert.True(t, it.Contains(orb.Point{1, 1}))
		assert.True(t, it.Contains(orb.Point{9, 9}))
		assert.False(t, it.Contains(orb.Point{5, 5}))
	})
}

func TestLocalSource(t *testing.T) {
	dir := t.TempDir()
	items := []Item{
		{ID: "a", Time: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), AssetURL: "a.bin"},
		{ID: "b", Time: time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC), AssetURL: "b.bin"},
		{ID: "far", Time: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), AssetURL: "far.bin",
			Footprint: geojson.NewGeometry(orb.Polygon{{{100, 0}, {101, 0}, {101, 1}, {100, 1}, {100, 0}}})},
	}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.json"), data, 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.bin"), []byte("payload-a"), 0644))

	src, err := NewLocalSource(dir)
	require.NoError(t, err)
	assert.Equal(t, "local/"+filepath.Base(dir), src.Name())

	bound := orb.Bound{Min: orb.Point{-1, -1}, Max: orb.Point{1, 1}}
	listed, err := src.ListCandidates(context.Background(), bound,
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a", listed[0].ID)
	assert.Equal(t, src.Name(), listed[0].Source)

	payload, err := src.Fetch(context.Background(), listed[0])
	require.NoError(t, err)
	assert.Equal(t, []byte("payload-a"), payload)

	_, err = src.Fetch(context.Background(), Item{ID: "no-asset"})
	assert.Error(t, err)
}

func TestNewLocalSourceMissingCatalog(t *testing.T) {
	_, err := NewLocalSource(t.TempDir())
	assert.Error(t, err)
}
