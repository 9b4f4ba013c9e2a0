package window

import (
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/paulmach/orb"
)

// Split tags understood by the pipeline. SplitNone marks windows that have
// not been assigned yet.
const (
	SplitTrain = "train"
	SplitVal   = "val"
	SplitTest  = "test"
	SplitNone  = ""
)

type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Window is one spatiotemporal example: a projected pixel grid plus a time
// range. Bounds are in projected CRS units; together with the resolution they
// define an exact integer pixel grid that never changes after creation.
type Window struct {
	Name         string         `json:"name"`
	Group        string         `json:"group"`
	Projection   geo.Projection `json:"projection"`
	Bounds       [4]float64     `json:"bounds"`        // minx, miny, maxx, maxy in CRS units
	LatLonBounds [4]float64     `json:"latlon_bounds"` // same extent in WGS84 lon/lat, used for catalog queries
	TimeRange    TimeRange      `json:"time_range"`
	Split        string         `json:"split"`
	Options      map[string]any `json:"options,omitempty"`
	// Completed records which layers have been fully materialized.
	Completed map[string]bool `json:"completed,omitempty"`
}

// Key identifies a window within a dataset.
func (w *Window) Key() string {
	return w.Group + "/" + w.Name
}

func (w *Window) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{w.Bounds[0], w.Bounds[1]},
		Max: orb.Point{w.Bounds[2], w.Bounds[3]},
	}
}

func (w *Window) LatLonBound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{w.LatLonBounds[0], w.LatLonBounds[1]},
		Max: orb.Point{w.LatLonBounds[2], w.LatLonBounds[3]},
	}
}

// Grid returns the pixel grid implied by the window bounds and resolution.
func (w *Window) Grid() (geo.PixelGrid, error) {
	return w.Projection.Grid(w.Bound())
}

// Centroid is the window center in projected CRS units.
func (w *Window) Centroid() (float64, float64) {
	return (w.Bounds[0] + w.Bounds[2]) / 2, (w.Bounds[1] + w.Bounds[3]) / 2
}
