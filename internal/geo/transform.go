package geo

import (
	"fmt"

	"github.com/airbusgeo/godal"
)

// TransformPoints reprojects coordinate slices in place from one EPSG CRS to
// another. xs carries eastings/longitudes and ys northings/latitudes.
func TransformPoints(fromEPSG, toEPSG int, xs, ys []float64) error {
	if fromEPSG == toEPSG {
		return nil
	}
	srcSR, err := godal.NewSpatialRefFromEPSG(fromEPSG)
	if err != nil {
		return fmt.Errorf("failed to create spatial ref for EPSG:%d: %w", fromEPSG, err)
	}
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromEPSG(toEPSG)
	if err != nil {
		return fmt.Errorf("failed to create spatial ref for EPSG:%d: %w", toEPSG, err)
	}
	defer dstSR.Close()

	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return fmt.Errorf("failed to create transform EPSG:%d -> EPSG:%d: %w", fromEPSG, toEPSG, err)
	}
	defer tr.Close()

	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return fmt.Errorf("transform error: %w", err)
	}
	return nil
}

// LonLatToProjected converts a single WGS84 lon/lat into projected x/y.
func LonLatToProjected(lon, lat float64, epsg int) (float64, float64, error) {
	if epsg == WGS84 {
		return lon, lat, nil
	}
	xs := []float64{lon}
	ys := []float64{lat}
	if err := TransformPoints(WGS84, epsg, xs, ys); err != nil {
		return 0, 0, err
	}
	return xs[0], ys[0], nil
}

// ProjectedToLonLat converts a single projected x/y back to WGS84 lon/lat.
func ProjectedToLonLat(x, y float64, epsg int) (float64, float64, error) {
	if epsg == WGS84 {
		return x, y, nil
	}
	xs := []float64{x}
	ys := []float64{y}
	if err := TransformPoints(epsg, WGS84, xs, ys); err != nil {
		return 0, 0, err
	}
	return xs[0], ys[0], nil
}
