package delivery

import (
	"context"
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/ingest"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// Ingest downloads and converts every item referenced by the prepared item
// groups. Windows fan out over the worker pool; the cache collapses
// concurrent requests for a shared item onto a single download, so an item
// referenced by fifty windows is still fetched once.
func Ingest(ctx context.Context, ds *dataset.Dataset, cache *ingest.Cache, sources map[string]catalog.Source, opts RunOptions) (*Result, error) {
	windows, err := ds.Registry.List(opts.Group, "")
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows found in group %q", opts.Group)
	}

	result := forEachWindow(windows, opts, "ingesting items", func(w *window.Window) []Failure {
		var failures []Failure
		for layerName, def := range ds.Config.Layers {
			if def.DataSource == nil {
				continue
			}
			src, ok := sources[def.DataSource.Name]
			if !ok {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: fmt.Sprintf("no source registered for %q", def.DataSource.Name)})
				continue
			}
			groups, err := ds.LoadItemGroups(w, layerName)
			if err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
				continue
			}
			kind := ingest.KindRaster
			if def.Type == dataset.LayerTypeVector {
				kind = ingest.KindVector
			}
			for _, group := range groups {
				for _, item := range group.Items {
					if _, err := cache.EnsureIngested(ctx, src, item, kind); err != nil {
						failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
					}
				}
			}
		}
		return failures
	})
	return result, nil
}
