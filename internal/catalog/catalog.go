package catalog

import (
	"context"
	"time"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Item references one scene or tile from a remote-sensing provider. Items are
// immutable once listed; their pixel data is downloaded by the ingest cache.
type Item struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Time       time.Time          `json:"time"`
	CloudCover float64            `json:"cloud_cover"`
	Footprint  *geojson.Geometry  `json:"footprint"`
	Properties map[string]float64 `json:"properties,omitempty"`
	// AssetURL locates the raw payload; its interpretation belongs to the
	// source that listed the item.
	AssetURL string `json:"asset_url,omitempty"`
}

func (it Item) Bound() orb.Bound {
	if it.Footprint == nil {
		return orb.Bound{}
	}
	return it.Footprint.Geometry().Bound()
}

// Property looks up a sortable numeric metric by name. "cloud_cover" is
// always available; anything else comes from the provider's properties.
func (it Item) Property(name string) (float64, bool) {
	if name == "cloud_cover" || name == "" {
		return it.CloudCover, true
	}
	v, ok := it.Properties[name]
	return v, ok
}

// Contains reports whether the item footprint contains the point. Items with
// no footprint are treated as covering everything (full-scene providers).
func (it Item) Contains(pt orb.Point) bool {
	if it.Footprint == nil {
		return true
	}
	return geometryContains(it.Footprint.Geometry(), pt)
}

// Source is the capability set every provider backend implements. The source
// matcher and ingest cache depend only on this interface.
type Source interface {
	Name() string
	// ListCandidates returns items whose footprint intersects the WGS84
	// bound and whose acquisition time falls in [start, end), in stable
	// catalog order.
	ListCandidates(ctx context.Context, bound orb.Bound, start, end time.Time) ([]Item, error)
	// Fetch downloads the raw payload for one item.
	Fetch(ctx context.Context, item Item) ([]byte, error)
}
