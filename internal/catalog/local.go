package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/paulmach/orb"
)

// LocalSource serves a directory of pre-downloaded payloads described by a
// catalog.json sidecar. Useful for offline runs and as the reference backend
// in tests; item AssetURL is a path relative to the directory.
type LocalSource struct {
	dir   string
	name  string
	items []Item
}

func NewLocalSource(dir string) (*LocalSource, error) {
	data, err := os.ReadFile(filepath.Join(dir, "catalog.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read local catalog: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("invalid local catalog: %w", err)
	}
	s := &LocalSource{dir: dir, name: "local/" + filepath.Base(dir), items: items}
	for i := range s.items {
		s.items[i].Source = s.name
	}
	return s, nil
}

func (s *LocalSource) Name() string {
	return s.name
}

func (s *LocalSource) ListCandidates(ctx context.Context, bound orb.Bound, start, end time.Time) ([]Item, error) {
	var out []Item
	for _, it := range s.items {
		if it.Footprint != nil && !bound.Intersects(it.Bound()) {
			continue
		}
		if it.Time.Before(start) || !it.Time.Before(end) {
			continue
		}
		out = append(out, it)
	}
	return out, nil
}

func (s *LocalSource) Fetch(ctx context.Context, item Item) ([]byte, error) {
	if item.AssetURL == "" {
		return nil, fmt.Errorf("item %s has no asset path", item.ID)
	}
	data, err := os.ReadFile(filepath.Join(s.dir, item.AssetURL))
	if err != nil {
		return nil, fmt.Errorf("failed to read asset for item %s: %w", item.ID, err)
	}
	return data, nil
}
