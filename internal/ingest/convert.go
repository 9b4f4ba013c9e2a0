package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/airbusgeo/godal"
	"github.com/paulmach/orb/geojson"
)

// convertPayload is the default ConvertFunc. Raster payloads are rewritten as
// tiled GeoTIFF so the materializer can read arbitrary sub-rectangles without
// decoding whole scenes; vector payloads are validated GeoJSON stored as-is.
func convertPayload(payload []byte, kind, dir string) (string, error) {
	switch kind {
	case KindVector:
		if _, err := geojson.UnmarshalFeatureCollection(payload); err != nil {
			return "", fmt.Errorf("payload is not a feature collection: %w", err)
		}
		path := filepath.Join(dir, "data.geojson")
		if err := os.WriteFile(path, payload, 0644); err != nil {
			return "", fmt.Errorf("failed to write vector tile: %w", err)
		}
		return path, nil
	case KindRaster:
		rawPath := filepath.Join(dir, "raw.tif")
		if err := os.WriteFile(rawPath, payload, 0644); err != nil {
			return "", fmt.Errorf("failed to write raw payload: %w", err)
		}
		ds, err := godal.Open(rawPath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
			if ec == godal.CE_Warning {
				return nil
			}
			return fmt.Errorf("%s", msg)
		}))
		if err != nil {
			os.Remove(rawPath)
			return "", fmt.Errorf("payload is not a readable raster: %w", err)
		}
		defer ds.Close()
		if len(ds.Bands()) == 0 {
			os.Remove(rawPath)
			return "", fmt.Errorf("payload raster has no bands")
		}

		tilePath := filepath.Join(dir, "tile.tif")
		tiled, err := ds.Translate(tilePath, []string{"-co", "TILED=YES", "-co", "COMPRESS=LZW"})
		if err != nil {
			os.Remove(rawPath)
			return "", fmt.Errorf("failed to retile raster: %w", err)
		}
		tiled.Close()
		os.Remove(rawPath)
		return tilePath, nil
	default:
		return "", fmt.Errorf("unknown layer kind %q", kind)
	}
}
