// Package rasterize burns vector label features into dense per-pixel class
// rasters. Reframing point/polygon classification as segmentation lets the
// training framework run single-pass inference over tiled areas instead of
// per-instance classification calls.
package rasterize

import (
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

// Policy decides what happens when a feature's class is not in the class
// table. Neither option may silently mislabel: Drop reports a count, Abort
// fails the window.
type Policy int

const (
	Drop Policy = iota
	Abort
)

// UnknownClassError is returned under Abort for a class value missing from
// the class table.
type UnknownClassError struct {
	Class string
}

func (e *UnknownClassError) Error() string {
	return fmt.Sprintf("unknown class value %q", e.Class)
}

// Config describes how labels are burned. Classes[0] is reserved for the
// nodata/invalid class; real classes start at id 1. PointRadius widens point
// burns into a (2r+1)^2 pixel neighborhood.
type Config struct {
	Classes     []string
	Property    string
	PointRadius int
	Policy      Policy
}

func (c Config) classID(name string) (int, bool) {
	for i, cls := range c.Classes {
		if i == 0 {
			continue
		}
		if cls == name {
			return i, true
		}
	}
	return 0, false
}

// Rasterize burns features into a single-band class raster aligned to the
// window's pixel grid. Feature geometries are expected in the window's
// projected CRS. Returns the raster and how many features were dropped for
// unknown classes.
func Rasterize(w *window.Window, features []*geojson.Feature, cfg Config) (*raster.Raster, int, error) {
	if len(cfg.Classes) < 2 {
		return nil, 0, fmt.Errorf("class table needs the invalid class plus at least one real class")
	}
	grid, err := w.Grid()
	if err != nil {
		return nil, 0, err
	}
	out := raster.New(grid.Width, grid.Height, 1, 0)

	dropped := 0
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		name := classValue(f, cfg.Property)
		id, ok := cfg.classID(name)
		if !ok {
			if cfg.Policy == Abort {
				return nil, dropped, &UnknownClassError{Class: name}
			}
			dropped++
			continue
		}
		burn(out, grid, f.Geometry, float64(id), cfg.PointRadius)
	}
	return out, dropped, nil
}

func classValue(f *geojson.Feature, property string) string {
	v, ok := f.Properties[property]
	if !ok {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

func burn(out *raster.Raster, grid geo.PixelGrid, g orb.Geometry, value float64, pointRadius int) {
	switch geom := g.(type) {
	case orb.Point:
		col, row := grid.ToPixel(geom[0], geom[1])
		burnNeighborhood(out, col, row, pointRadius, value)
	case orb.MultiPoint:
		for _, pt := range geom {
			col, row := grid.ToPixel(pt[0], pt[1])
			burnNeighborhood(out, col, row, pointRadius, value)
		}
	case orb.Polygon:
		burnPolygon(out, grid, func(pt orb.Point) bool { return planar.PolygonContains(geom, pt) }, geom.Bound(), value)
	case orb.MultiPolygon:
		burnPolygon(out, grid, func(pt orb.Point) bool { return planar.MultiPolygonContains(geom, pt) }, geom.Bound(), value)
	}
}

func burnNeighborhood(out *raster.Raster, col, row, radius int, value float64) {
	for dr := -radius; dr <= radius; dr++ {
		for dc := -radius; dc <= radius; dc++ {
			setPixel(out, col+dc, row+dr, value)
		}
	}
}

// burnPolygon tests pixel centers inside the polygon's bound rectangle; a
// pixel is covered when its center is inside the polygon.
func burnPolygon(out *raster.Raster, grid geo.PixelGrid, contains func(orb.Point) bool, bound orb.Bound, value float64) {
	minCol, maxRow := grid.ToPixel(bound.Min[0], bound.Min[1])
	maxCol, minRow := grid.ToPixel(bound.Max[0], bound.Max[1])
	for row := minRow; row <= maxRow; row++ {
		if row < 0 || row >= out.Height {
			continue
		}
		for col := minCol; col <= maxCol; col++ {
			if col < 0 || col >= out.Width {
				continue
			}
			x, y := grid.PixelCenter(col, row)
			if contains(orb.Point{x, y}) {
				out.Set(0, col, row, value)
			}
		}
	}
}

func setPixel(out *raster.Raster, col, row int, value float64) {
	if col < 0 || col >= out.Width || row < 0 || row >= out.Height {
		return
	}
	out.Set(0, col, row, value)
}
