// Package dataset defines the on-disk dataset root: the layer schema in
// config.json and the paths where item groups and materialized layers live.
package dataset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/matcher"
	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
)

const (
	LayerTypeRaster = "raster"
	LayerTypeVector = "vector"

	CoordinateModePixel      = "pixel"
	CoordinateModeGeographic = "geographic"
)

// Config is the dataset schema: layer definitions shared by every window.
type Config struct {
	Layers map[string]LayerDef `json:"layers"`
}

// LayerDef is a tagged variant: raster layers carry band sets, vector layers
// a coordinate mode. Validate resolves the tag once at load time so nothing
// downstream re-interprets raw JSON.
type LayerDef struct {
	Type       string         `json:"type"`
	BandSets   []BandSet      `json:"band_sets,omitempty"`
	Format     *FormatDef     `json:"format,omitempty"`
	DataSource *DataSourceDef `json:"data_source,omitempty"`
	Resampling string         `json:"resampling,omitempty"` // nearest (default), bilinear, cubic
}

type BandSet struct {
	Bands []string `json:"bands"`
	DType string   `json:"dtype"`
	// ZoomOffset < 0 stores the band set at a coarser native resolution
	// (factor 2^-offset); materialization upsamples back to the window grid.
	ZoomOffset int      `json:"zoom_offset,omitempty"`
	NoData     *float64 `json:"nodata,omitempty"`
}

func (b BandSet) ParsedDType() (raster.DType, error) {
	return raster.ParseDType(b.DType)
}

// NoDataValue applies the per-dtype default when the config does not pin one.
func (b BandSet) NoDataValue() float64 {
	if b.NoData != nil {
		return *b.NoData
	}
	dt, err := b.ParsedDType()
	if err != nil {
		dt = raster.Float32
	}
	return raster.DefaultNoData(dt)
}

type FormatDef struct {
	Name           string `json:"name"` // geotiff, png, geojson
	CoordinateMode string `json:"coordinate_mode,omitempty"`
}

type DataSourceDef struct {
	Name string `json:"name"`
	// Bands is the band layout of tiles fetched from this source, in order.
	// Band-set bands are matched against it by name; when omitted, tiles are
	// assumed to carry exactly the band-set bands in band-set order.
	Bands          []string `json:"bands,omitempty"`
	SpaceMode      string `json:"space_mode,omitempty"`
	TimeMode       string `json:"time_mode,omitempty"`
	PeriodDuration string `json:"period_duration,omitempty"` // Go duration, e.g. "720h"
	MaxMatches     int    `json:"max_matches,omitempty"`
	SortBy         string `json:"sort_by,omitempty"`
	Ascending      *bool  `json:"ascending,omitempty"`
	CacheDir       string `json:"cache_dir,omitempty"`
}

// QueryConfig resolves the data source fields into a matcher policy.
func (d *DataSourceDef) QueryConfig() (matcher.QueryConfig, error) {
	spaceMode, err := matcher.ParseSpaceMode(d.SpaceMode)
	if err != nil {
		return matcher.QueryConfig{}, err
	}
	timeMode, err := matcher.ParseTimeMode(d.TimeMode)
	if err != nil {
		return matcher.QueryConfig{}, err
	}
	var period time.Duration
	if d.PeriodDuration != "" {
		period, err = time.ParseDuration(d.PeriodDuration)
		if err != nil {
			return matcher.QueryConfig{}, fmt.Errorf("invalid period_duration %q: %w", d.PeriodDuration, err)
		}
	}
	ascending := true
	if d.Ascending != nil {
		ascending = *d.Ascending
	}
	return matcher.QueryConfig{
		SpaceMode:      spaceMode,
		TimeMode:       timeMode,
		PeriodDuration: period,
		MaxMatches:     d.MaxMatches,
		SortBy:         d.SortBy,
		Ascending:      ascending,
	}, nil
}

func (l LayerDef) validate(name string) error {
	switch l.Type {
	case LayerTypeRaster:
		if len(l.BandSets) == 0 {
			return fmt.Errorf("raster layer %q has no band_sets", name)
		}
		for _, bs := range l.BandSets {
			if len(bs.Bands) == 0 {
				return fmt.Errorf("raster layer %q has an empty band set", name)
			}
			if _, err := bs.ParsedDType(); err != nil {
				return fmt.Errorf("raster layer %q: %w", name, err)
			}
			if bs.ZoomOffset > 0 {
				return fmt.Errorf("raster layer %q: positive zoom offsets are not supported", name)
			}
		}
	case LayerTypeVector:
		if l.Format != nil {
			switch l.Format.CoordinateMode {
			case "", CoordinateModePixel, CoordinateModeGeographic:
			default:
				return fmt.Errorf("vector layer %q has unknown coordinate mode %q", name, l.Format.CoordinateMode)
			}
		}
	default:
		return fmt.Errorf("layer %q has unknown type %q", name, l.Type)
	}
	if l.DataSource != nil {
		if _, err := l.DataSource.QueryConfig(); err != nil {
			return fmt.Errorf("layer %q: %w", name, err)
		}
	}
	return nil
}

// LoadConfig reads and validates <root>/config.json.
func LoadConfig(root string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(root, "config.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset config: %w", err)
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid dataset config: %w", err)
	}
	if len(cfg.Layers) == 0 {
		return nil, fmt.Errorf("dataset config declares no layers")
	}
	for name, layer := range cfg.Layers {
		if err := layer.validate(name); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}
