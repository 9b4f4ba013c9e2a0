package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/earth-window/earth-window-dataset-poc/internal/matcher"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// Dataset ties a root directory to its parsed layer schema and window
// registry.
type Dataset struct {
	Root     string
	Config   *Config
	Registry *window.Registry
}

func Open(root string) (*Dataset, error) {
	cfg, err := LoadConfig(root)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Root:     root,
		Config:   cfg,
		Registry: window.NewRegistry(root),
	}, nil
}

// ItemsPath is where a window's matched item groups for one layer are stored.
func (d *Dataset) ItemsPath(w *window.Window, layer string) string {
	return filepath.Join(d.Registry.LayerDir(w, layer), "items.json")
}

// SaveItemGroups persists the matcher output for a window/layer atomically.
func (d *Dataset) SaveItemGroups(w *window.Window, layer string, groups []matcher.ItemGroup) error {
	dir := d.Registry.LayerDir(w, layer)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}
	data, err := json.MarshalIndent(groups, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal item groups: %w", err)
	}
	path := d.ItemsPath(w, layer)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp item groups: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp item groups: %w", err)
	}
	return nil
}

// LoadItemGroups reads the matcher output back. A missing file means prepare
// has not run for this window/layer yet, which callers treat as an error; an
// empty list is the matcher's valid "no data" answer.
func (d *Dataset) LoadItemGroups(w *window.Window, layer string) ([]matcher.ItemGroup, error) {
	data, err := os.ReadFile(d.ItemsPath(w, layer))
	if err != nil {
		return nil, fmt.Errorf("no item groups for %s layer %s (run prepare first): %w", w.Key(), layer, err)
	}
	var groups []matcher.ItemGroup
	if err := json.Unmarshal(data, &groups); err != nil {
		return nil, fmt.Errorf("corrupt item groups for %s layer %s: %w", w.Key(), layer, err)
	}
	return groups, nil
}
