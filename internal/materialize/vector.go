package materialize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/matcher"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Vector gathers features from every item in the window's groups,
// reprojects them to the layer's coordinate mode, drops features outside the
// window bounds, and writes one GeoJSON file per window. An empty group list
// produces an empty feature collection.
func Vector(w *window.Window, layerName string, def dataset.LayerDef, groups []matcher.ItemGroup, handle HandleFunc, layerDir string) error {
	mode := dataset.CoordinateModeGeographic
	if def.Format != nil && def.Format.CoordinateMode != "" {
		mode = def.Format.CoordinateMode
	}
	grid, err := w.Grid()
	if err != nil {
		return err
	}

	out := geojson.NewFeatureCollection()
	bound := w.LatLonBound()
	for _, group := range groups {
		for _, item := range group.Items {
			h, ok := handle(item.Source, item.ID)
			if !ok {
				return fmt.Errorf("item %s referenced by window %s was never ingested", item.ID, w.Key())
			}
			data, err := os.ReadFile(h.Path)
			if err != nil {
				return fmt.Errorf("failed to read vector tile for item %s: %w", item.ID, err)
			}
			fc, err := geojson.UnmarshalFeatureCollection(data)
			if err != nil {
				return fmt.Errorf("corrupt vector tile for item %s: %w", item.ID, err)
			}
			for _, f := range fc.Features {
				if f.Geometry == nil || !bound.Intersects(f.Geometry.Bound()) {
					continue
				}
				if mode == dataset.CoordinateModePixel {
					g, err := toPixelSpace(f.Geometry, w, grid)
					if err != nil {
						return fmt.Errorf("failed to reproject feature from item %s: %w", item.ID, err)
					}
					nf := geojson.NewFeature(g)
					nf.Properties = f.Properties
					out.Append(nf)
				} else {
					out.Append(f)
				}
			}
		}
	}

	if err := os.MkdirAll(layerDir, 0755); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal vector layer: %w", err)
	}
	path := filepath.Join(layerDir, "data.geojson")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write vector layer: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename vector layer: %w", err)
	}
	return nil
}

// toPixelSpace converts WGS84 feature coordinates into fractional pixel
// coordinates on the window grid: project into the window CRS, then apply
// the inverse geotransform.
func toPixelSpace(g orb.Geometry, w *window.Window, grid geo.PixelGrid) (orb.Geometry, error) {
	var transformErr error
	mapped := geo.MapPoints(g, func(pt orb.Point) orb.Point {
		x, y, err := geo.LonLatToProjected(pt[0], pt[1], w.Projection.EPSG)
		if err != nil {
			transformErr = err
			return pt
		}
		return orb.Point{
			(x - grid.Transform[0]) / grid.Transform[1],
			(y - grid.Transform[3]) / grid.Transform[5],
		}
	})
	if transformErr != nil {
		return nil, transformErr
	}
	return mapped, nil
}
