package delivery

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
	"github.com/earth-window/earth-window-dataset-poc/internal/rasterize"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RasterizeParams names the materialized vector layer to burn and the target
// layer the class rasters are written to.
type RasterizeParams struct {
	SourceLayer string
	OutputLayer string
	Config      rasterize.Config
}

// RasterizeLabels burns each window's materialized label features into a
// single-band class raster stored as PNG under the output layer. Features are
// expected in geographic coordinates and are projected onto the window grid
// before burning.
func RasterizeLabels(ds *dataset.Dataset, params RasterizeParams, opts RunOptions) (*Result, error) {
	windows, err := ds.Registry.List(opts.Group, "")
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows found in group %q", opts.Group)
	}

	result := forEachWindow(windows, opts, "rasterizing labels", func(w *window.Window) []Failure {
		fail := func(err error) []Failure {
			return []Failure{{Window: w.Key(), Layer: params.OutputLayer, Error: err.Error()}}
		}

		srcPath := filepath.Join(ds.Registry.LayerDir(w, params.SourceLayer), "data.geojson")
		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fail(fmt.Errorf("no vector data for layer %s (materialize it first): %w", params.SourceLayer, err))
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return fail(fmt.Errorf("corrupt vector layer %s: %w", params.SourceLayer, err))
		}

		projected, err := projectFeatures(fc.Features, w.Projection.EPSG)
		if err != nil {
			return fail(err)
		}
		out, dropped, err := rasterize.Rasterize(w, projected, params.Config)
		if err != nil {
			return fail(err)
		}
		if dropped > 0 {
			fmt.Printf("Window %s: dropped %d features with unknown classes\n", w.Key(), dropped)
		}

		layerDir := ds.Registry.LayerDir(w, params.OutputLayer)
		if err := os.MkdirAll(layerDir, 0755); err != nil {
			return fail(err)
		}
		file, err := os.Create(filepath.Join(layerDir, "label.png"))
		if err != nil {
			return fail(err)
		}
		if err := raster.EncodePNG(file, out); err != nil {
			file.Close()
			return fail(err)
		}
		if err := file.Close(); err != nil {
			return fail(err)
		}
		if err := ds.Registry.MarkCompleted(w, params.OutputLayer); err != nil {
			return fail(err)
		}
		return nil
	})
	return result, nil
}

func projectFeatures(features []*geojson.Feature, epsg int) ([]*geojson.Feature, error) {
	out := make([]*geojson.Feature, 0, len(features))
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		var transformErr error
		g := geo.MapPoints(f.Geometry, func(pt orb.Point) orb.Point {
			x, y, err := geo.LonLatToProjected(pt[0], pt[1], epsg)
			if err != nil {
				transformErr = err
				return pt
			}
			return orb.Point{x, y}
		})
		if transformErr != nil {
			return nil, transformErr
		}
		nf := geojson.NewFeature(g)
		nf.Properties = f.Properties
		out = append(out, nf)
	}
	return out, nil
}
