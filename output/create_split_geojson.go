package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// CreateSplitGeoJSON writes one point feature per window centroid, tagged
// with its split and label class, for inspecting split assignments on a map.
func CreateSplitGeoJSON(windows []*window.Window, outputPath string) error {
	features := make([]map[string]interface{}, 0, len(windows))
	for _, w := range windows {
		lon := (w.LatLonBounds[0] + w.LatLonBounds[2]) / 2
		lat := (w.LatLonBounds[1] + w.LatLonBounds[3]) / 2

		props := map[string]interface{}{
			"name":  w.Name,
			"group": w.Group,
			"split": w.Split,
		}
		if category, ok := w.Options["category"]; ok {
			props["category"] = category
		}

		features = append(features, map[string]interface{}{
			"type": "Feature",
			"geometry": map[string]interface{}{
				"type":        "Point",
				"coordinates": []float64{lon, lat},
			},
			"properties": props,
		})
	}

	geoJSON := map[string]interface{}{
		"type":     "FeatureCollection",
		"features": features,
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create GeoJSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(geoJSON); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}

	fmt.Println("Split GeoJSON created successfully at", outputPath)
	return nil
}
