package catalog

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

func geometryContains(g orb.Geometry, pt orb.Point) bool {
	switch geom := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(geom, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(geom, pt)
	default:
		return g.Bound().Contains(pt)
	}
}
