package delivery

import (
	"context"
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/matcher"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// Prepare matches catalog items to every window for every layer that has a
// data source, and persists the resulting item groups. Matching a window that
// was already prepared just overwrites its item groups with the same content,
// so re-running prepare is safe.
func Prepare(ctx context.Context, ds *dataset.Dataset, sources map[string]catalog.Source, opts RunOptions) (*Result, error) {
	windows, err := ds.Registry.List(opts.Group, "")
	if err != nil {
		return nil, err
	}
	if len(windows) == 0 {
		return nil, fmt.Errorf("no windows found in group %q", opts.Group)
	}

	result := forEachWindow(windows, opts, "preparing windows", func(w *window.Window) []Failure {
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
			cfg, err := def.DataSource.QueryConfig()
			if err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
				continue
			}

			// NEAREST snaps out-of-range acquisitions into the window range,
			// so the listing has to reach one period past each end.
			start, end := w.TimeRange.Start, w.TimeRange.End
			if cfg.TimeMode == matcher.Nearest && cfg.PeriodDuration > 0 {
				start = start.Add(-cfg.PeriodDuration)
				end = end.Add(cfg.PeriodDuration)
			}

			var candidates []catalog.Item
			err = opts.Retry.Do(ctx, fmt.Sprintf("list candidates for %s", w.Key()), func() error {
				var listErr error
				candidates, listErr = src.ListCandidates(ctx, w.LatLonBound(), start, end)
				return listErr
			})
			if err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
				continue
			}

			groups := matcher.Match(w, cfg, candidates)
			if err := ds.SaveItemGroups(w, layerName, groups); err != nil {
				failures = append(failures, Failure{Window: w.Key(), Layer: layerName, Error: err.Error()})
			}
		}
		return failures
	})
	return result, nil
}
