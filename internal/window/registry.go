package window

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
)

var (
	ErrInvalidGeometry  = errors.New("invalid window geometry")
	ErrInvalidTimeRange = errors.New("invalid window time range")
	ErrNotFound         = errors.New("window not found")
)

// Registry owns window metadata below <root>/windows/<group>/<name>/window.json.
// It is the only writer of window records; layer data lives next to them but
// is produced by the materializer.
type Registry struct {
	root string
}

func NewRegistry(root string) *Registry {
	return &Registry{root: root}
}

func (r *Registry) WindowDir(group, name string) string {
	return filepath.Join(r.root, "windows", group, name)
}

// LayerDir is where a window's materialized data for one layer is stored.
func (r *Registry) LayerDir(w *Window, layer string) string {
	return filepath.Join(r.WindowDir(w.Group, w.Name), "layers", layer)
}

type CreateParams struct {
	Name         string
	Group        string
	Projection   geo.Projection
	Bounds       [4]float64
	LatLonBounds [4]float64
	Start        time.Time
	End          time.Time
	Options      map[string]any
}

// Create validates and persists a new window record. Degenerate bounds and
// inverted time ranges are rejected before anything touches disk.
func (r *Registry) Create(p CreateParams) (*Window, error) {
	if p.Bounds[2] <= p.Bounds[0] || p.Bounds[3] <= p.Bounds[1] {
		return nil, fmt.Errorf("%w: bounds %v have zero area", ErrInvalidGeometry, p.Bounds)
	}
	if !p.End.After(p.Start) {
		return nil, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidTimeRange, p.End, p.Start)
	}
	w := &Window{
		Name:         p.Name,
		Group:        p.Group,
		Projection:   p.Projection,
		Bounds:       p.Bounds,
		LatLonBounds: p.LatLonBounds,
		TimeRange:    TimeRange{Start: p.Start, End: p.End},
		Split:        SplitNone,
		Options:      p.Options,
		Completed:    map[string]bool{},
	}
	if p.Projection.EPSG == geo.WGS84 && p.LatLonBounds == [4]float64{} {
		w.LatLonBounds = p.Bounds
	}
	if _, err := w.Grid(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}
	if err := r.Save(w); err != nil {
		return nil, err
	}
	return w, nil
}

func (r *Registry) Get(group, name string) (*Window, error) {
	path := filepath.Join(r.WindowDir(group, name), "window.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, group, name)
		}
		return nil, err
	}
	var w Window
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("corrupt window record %s: %w", path, err)
	}
	return &w, nil
}

// List returns windows filtered by group and split. Empty selectors match
// everything; split filtering treats "none" as SplitNone.
func (r *Registry) List(group, split string) ([]*Window, error) {
	groupsDir := filepath.Join(r.root, "windows")
	var groups []string
	if group != "" {
		groups = []string{group}
	} else {
		entries, err := os.ReadDir(groupsDir)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, nil
			}
			return nil, err
		}
		for _, e := range entries {
			if e.IsDir() {
				groups = append(groups, e.Name())
			}
		}
	}

	var windows []*Window
	for _, g := range groups {
		entries, err := os.ReadDir(filepath.Join(groupsDir, g))
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			w, err := r.Get(g, e.Name())
			if err != nil {
				return nil, err
			}
			if split != "" && w.Split != split && !(split == "none" && w.Split == SplitNone) {
				continue
			}
			windows = append(windows, w)
		}
	}
	return windows, nil
}

// TagSplit updates only the split tag of an existing window.
func (r *Registry) TagSplit(w *Window, split string) error {
	w.Split = split
	return r.Save(w)
}

// MarkCompleted records that a layer has been materialized for the window.
func (r *Registry) MarkCompleted(w *Window, layer string) error {
	if w.Completed == nil {
		w.Completed = map[string]bool{}
	}
	w.Completed[layer] = true
	return r.Save(w)
}

// Save writes the window record atomically: a concurrent reader sees either
// the previous record or the new one, never a partial file.
func (r *Registry) Save(w *Window) error {
	dir := r.WindowDir(w.Group, w.Name)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create window directory: %w", err)
	}
	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal window %s: %w", w.Key(), err)
	}
	path := filepath.Join(dir, "window.json")
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp window file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to rename temp window file: %w", err)
	}
	return nil
}
