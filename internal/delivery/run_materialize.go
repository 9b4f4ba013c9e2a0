package delivery

import (
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/ingest"
	"github.com/earth-window/earth-window-dataset-poc/internal/materialize"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// Materialize turns cached tiles into window-aligned layer files for every
// window that is not yet complete. Layers already marked completed are
// skipped, so an interrupted run resumes where it stopped.
func Materialize(ds *dataset.Dataset, cache *ingest.Cache, opts RunOptions) (*Result, error) {
	windows, err := ds.Registry.List(opts.Group, "")
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows found in group %q", opts.Group)
	}

	result := forEachWindow(windows, opts, "materializing windows", func(w *window.Window) []Failure {
		var failures []Failure
		for layerName, def := range ds.Config.Layers {
			if def.DataSource == nil {
				continue
			}
			if w.Completed[layerName] {
				continue
			}
			groups, err := ds.LoadItemGroups(w, layerName)
			if err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
				continue
			}
			layerDir := ds.Registry.LayerDir(w, layerName)

			switch def.Type {
			case dataset.LayerTypeRaster:
				err = materialize.Raster(w, layerName, def, groups, cache.Lookup, layerDir)
			case dataset.LayerTypeVector:
				err = materialize.Vector(w, layerName, def, groups, cache.Lookup, layerDir)
			default:
				err = fmt.Errorf("layer %q has unknown type %q", layerName, def.Type)
			}
			if err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
				continue
			}
			if err := ds.Registry.MarkCompleted(w, layerName); err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
			}
		}
		return failures
	})
	return result, nil
}
