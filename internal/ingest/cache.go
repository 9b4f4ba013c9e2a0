// Package ingest owns the shared tile cache: every source item is downloaded
// and converted at most once, no matter how many windows reference it or how
// many workers ask for it concurrently.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/retry"
	"golang.org/x/sync/singleflight"
)

const (
	KindRaster = "raster"
	KindVector = "vector"
)

// TileHandle points at the cached, randomly-accessible representation of one
// source item.
type TileHandle struct {
	ItemID    string    `json:"item_id"`
	Source    string    `json:"source"`
	Kind      string    `json:"kind"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

// ConvertFunc turns a raw payload into the cached tile file and returns its
// path. The default converts rasters to tiled GeoTIFF through GDAL and
// validates vector payloads as GeoJSON; tests swap in a passthrough.
type ConvertFunc func(payload []byte, kind, dir string) (string, error)

// Cache is safe for concurrent use by many window workers.
type Cache struct {
	root   string
	policy retry.Policy
	flight singleflight.Group

	// Convert is exposed so callers without a GDAL install can substitute
	// their own conversion.
	Convert ConvertFunc
}

func NewCache(root string, policy retry.Policy) *Cache {
	return &Cache{root: root, policy: policy, Convert: convertPayload}
}

func itemKey(source, itemID string) string {
	h := sha1.Sum([]byte(source + "/" + itemID))
	return hex.EncodeToString(h[:])
}

func (c *Cache) itemDir(source, itemID string) string {
	return filepath.Join(c.root, "tiles", itemKey(source, itemID))
}

// Lookup returns the handle for an already-ingested item without touching the
// network.
func (c *Cache) Lookup(source, itemID string) (TileHandle, bool) {
	data, err := os.ReadFile(filepath.Join(c.itemDir(source, itemID), "entry.json"))
	if err != nil {
		return TileHandle{}, false
	}
	var h TileHandle
	if err := json.Unmarshal(data, &h); err != nil {
		return TileHandle{}, false
	}
	if _, err := os.Stat(h.Path); err != nil {
		return TileHandle{}, false
	}
	return h, true
}

// EnsureIngested downloads and converts the item exactly once. Concurrent
// calls for the same item are collapsed onto a single in-flight download;
// later calls return the cached handle without touching the source.
func (c *Cache) EnsureIngested(ctx context.Context, src catalog.Source, item catalog.Item, kind string) (TileHandle, error) {
	if h, ok := c.Lookup(src.Name(), item.ID); ok {
		return h, nil
	}
	key := itemKey(src.Name(), item.ID)
	v, err, _ := c.flight.Do(key, func() (interface{}, error) {
		// Re-check under the flight: a concurrent winner may have just
		// finished writing the entry.
		if h, ok := c.Lookup(src.Name(), item.ID); ok {
			return h, nil
		}
		return c.ingest(ctx, src, item, kind)
	})
	if err != nil {
		return TileHandle{}, err
	}
	return v.(TileHandle), nil
}

func (c *Cache) ingest(ctx context.Context, src catalog.Source, item catalog.Item, kind string) (TileHandle, error) {
	var payload []byte
	err := c.policy.Do(ctx, fmt.Sprintf("download item %s", item.ID), func() error {
		var fetchErr error
		payload, fetchErr = src.Fetch(ctx, item)
		return fetchErr
	})
	if err != nil {
		return TileHandle{}, &SourceUnavailableError{ItemID: item.ID, Attempts: c.policy.MaxAttempts, Err: err}
	}

	dir := c.itemDir(src.Name(), item.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return TileHandle{}, fmt.Errorf("failed to create tile directory: %w", err)
	}
	tilePath, err := c.Convert(payload, kind, dir)
	if err != nil {
		return TileHandle{}, &IngestFormatError{ItemID: item.ID, Err: err}
	}

	h := TileHandle{
		ItemID:    item.ID,
		Source:    src.Name(),
		Kind:      kind,
		Path:      tilePath,
		CreatedAt: time.Now().UTC(),
	}
	if err := writeEntry(filepath.Join(dir, "entry.json"), h); err != nil {
		return TileHandle{}, err
	}
	return h, nil
}

// writeEntry lands the index record atomically so a crashed ingest never
// leaves a readable entry pointing at a half-written tile.
func writeEntry(path string, h TileHandle) error {
	data, err := json.Marshal(h)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp cache entry: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp cache entry: %w", err)
	}
	return nil
}
