package window

import (
	"fmt"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// PointWindowParams configures FromPoints. Resolution is meters per pixel in
// the per-point UTM projection; Size is the window side in pixels.
type PointWindowParams struct {
	Group         string
	Resolution    float64
	Size          int
	Start         time.Time
	End           time.Time
	ClassProperty string
}

// FromPoints creates one square window per labeled feature, centered on the
// feature centroid in the UTM zone of that centroid. Each window carries the
// label class and source feature id in its options so the label rasterizer
// can recover them without re-reading the source file.
func FromPoints(reg *Registry, fc *geojson.FeatureCollection, p PointWindowParams) ([]*Window, error) {
	if p.Size <= 0 {
		return nil, fmt.Errorf("%w: window size %d", ErrInvalidGeometry, p.Size)
	}
	var windows []*Window
	for i, f := range fc.Features {
		if f.Geometry == nil {
			continue
		}
		lon, lat := centroid(f.Geometry)
		category, ok := f.Properties[p.ClassProperty]
		if !ok {
			return nil, fmt.Errorf("feature %d has no %q property", i, p.ClassProperty)
		}

		epsg := geo.UTMEPSG(lon, lat)
		proj := geo.Projection{EPSG: epsg, XResolution: p.Resolution, YResolution: -p.Resolution}
		x, y, err := geo.LonLatToProjected(lon, lat, epsg)
		if err != nil {
			return nil, fmt.Errorf("failed to project feature %d: %w", i, err)
		}
		bounds, err := geo.SquareBounds(x, y, p.Resolution, p.Size)
		if err != nil {
			return nil, err
		}

		minLon, minLat, err := geo.ProjectedToLonLat(bounds.Min[0], bounds.Min[1], epsg)
		if err != nil {
			return nil, fmt.Errorf("failed to unproject feature %d bounds: %w", i, err)
		}
		maxLon, maxLat, err := geo.ProjectedToLonLat(bounds.Max[0], bounds.Max[1], epsg)
		if err != nil {
			return nil, fmt.Errorf("failed to unproject feature %d bounds: %w", i, err)
		}

		fid := featureID(f, i)
		w, err := reg.Create(CreateParams{
			Name:         fmt.Sprintf("%v_%.6f_%.6f", fid, lat, lon),
			Group:        p.Group,
			Projection:   proj,
			Bounds:       [4]float64{bounds.Min[0], bounds.Min[1], bounds.Max[0], bounds.Max[1]},
			LatLonBounds: [4]float64{minLon, minLat, maxLon, maxLat},
			Start:        p.Start,
			End:          p.End,
			Options: map[string]any{
				"category": fmt.Sprintf("%v", category),
				"fid":      fid,
				"source":   "labels",
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create window for feature %d: %w", i, err)
		}
		windows = append(windows, w)
	}
	return windows, nil
}

func featureID(f *geojson.Feature, idx int) any {
	if f.ID != nil {
		return f.ID
	}
	if v, ok := f.Properties["fid"]; ok {
		return v
	}
	return idx
}

func centroid(g orb.Geometry) (float64, float64) {
	if pt, ok := g.(orb.Point); ok {
		return pt[0], pt[1]
	}
	c, _ := planar.CentroidArea(g)
	return c[0], c[1]
}
