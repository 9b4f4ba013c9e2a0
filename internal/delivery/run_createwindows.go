package delivery

import (
	"fmt"
	"os"

	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb/geojson"
)

// CreateWindows reads a labeled-point GeoJSON file and registers one square
// window per feature. Window creation is fast and purely local, so it runs
// sequentially; the expensive fan-out belongs to the later stages.
func CreateWindows(reg *window.Registry, labelsPath string, params window.PointWindowParams) ([]*window.Window, error) {
	data, err := os.ReadFile(labelsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels file %s: %w", labelsPath, err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("invalid labels GeoJSON %s: %w", labelsPath, err)
	}
	windows, err := window.FromPoints(reg, fc, params)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Created %d windows in group %s from %s\n", len(windows), params.Group, labelsPath)
	return windows, nil
}
