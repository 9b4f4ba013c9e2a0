package geo

import "github.com/paulmach/orb"

// MapPoints applies fn to every coordinate of a geometry and returns the
// rebuilt geometry. Geometry types outside the GeoJSON set pass through
// unchanged.
func MapPoints(g orb.Geometry, fn func(orb.Point) orb.Point) orb.Geometry {
	switch geom := g.(type) {
	case orb.Point:
		return fn(geom)
	case orb.MultiPoint:
		out := make(orb.MultiPoint, len(geom))
		for i, pt := range geom {
			out[i] = fn(pt)
		}
		return out
	case orb.LineString:
		out := make(orb.LineString, len(geom))
		for i, pt := range geom {
			out[i] = fn(pt)
		}
		return out
	case orb.MultiLineString:
		out := make(orb.MultiLineString, len(geom))
		for i, ls := range geom {
			out[i] = MapPoints(ls, fn).(orb.LineString)
		}
		return out
	case orb.Ring:
		out := make(orb.Ring, len(geom))
		for i, pt := range geom {
			out[i] = fn(pt)
		}
		return out
	case orb.Polygon:
		out := make(orb.Polygon, len(geom))
		for i, ring := range geom {
			out[i] = MapPoints(ring, fn).(orb.Ring)
		}
		return out
	case orb.MultiPolygon:
		out := make(orb.MultiPolygon, len(geom))
		for i, poly := range geom {
			out[i] = MapPoints(poly, fn).(orb.Polygon)
		}
		return out
	default:
		return g
	}
}
