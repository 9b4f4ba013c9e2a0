// Package materialize crops, reprojects, and mosaics cached tiles into
// window-aligned layers. Given unchanged item groups and cached tiles it is
// deterministic and safe to re-run; prior output is overwritten.
package materialize

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/airbusgeo/godal"
	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/geo"
	"github.com/earth-window/earth-window-dataset-poc/internal/ingest"
	"github.com/earth-window/earth-window-dataset-poc/internal/matcher"
	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
)

// HandleFunc resolves a cached tile for an item id; ok=false means the item
// was never ingested, which is a pipeline-order error, not a data gap.
type HandleFunc func(source, itemID string) (ingest.TileHandle, bool)

// Raster materializes every band set of a raster layer for one window. Each
// item group becomes one mosaic; group i>0 (per-period matching) is written
// alongside group 0 with an index suffix.
func Raster(w *window.Window, layerName string, def dataset.LayerDef, groups []matcher.ItemGroup, handle HandleFunc, layerDir string) error {
	grid, err := w.Grid()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(layerDir, 0755); err != nil {
		return fmt.Errorf("failed to create layer directory: %w", err)
	}

	// An empty group list is the matcher's "no data available": the layer
	// still materializes, as a single nodata-filled mosaic.
	if len(groups) == 0 {
		groups = []matcher.ItemGroup{{}}
	}

	for gi, group := range groups {
		for _, bandSet := range def.BandSets {
			mosaic, err := mosaicBandSet(w, def, bandSet, group, handle, grid)
			if err != nil {
				return err
			}
			outPath := filepath.Join(layerDir, bandSetDir(bandSet), geotiffName(gi))
			if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
				return fmt.Errorf("failed to create band set directory: %w", err)
			}
			if err := writeGeoTIFF(outPath, mosaic, bandSet, grid, w.Projection.EPSG); err != nil {
				return err
			}
		}
	}
	return nil
}

func bandSetDir(bs dataset.BandSet) string {
	return strings.Join(bs.Bands, "_")
}

func geotiffName(group int) string {
	if group == 0 {
		return "geotiff.tif"
	}
	return fmt.Sprintf("geotiff.%d.tif", group)
}

// mosaicBandSet warps each tile in the group onto the band set's grid and
// composites them in matcher order: the first valid pixel wins.
func mosaicBandSet(w *window.Window, def dataset.LayerDef, bandSet dataset.BandSet, group matcher.ItemGroup, handle HandleFunc, grid geo.PixelGrid) (*raster.Raster, error) {
	nodata := bandSet.NoDataValue()

	// Negative zoom offsets warp at a coarser grid, then upsample.
	factor := 1
	for z := bandSet.ZoomOffset; z < 0; z++ {
		factor *= 2
	}
	width, height := grid.Width/factor, grid.Height/factor
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	mosaic := raster.New(width, height, len(bandSet.Bands), nodata)
	for _, item := range group.Items {
		h, ok := handle(item.Source, item.ID)
		if !ok {
			return nil, fmt.Errorf("item %s referenced by window %s was never ingested", item.ID, w.Key())
		}
		tile, err := warpTile(h.Path, w, def, bandSet, width, height, nodata)
		if err != nil {
			return nil, fmt.Errorf("failed to warp item %s for window %s: %w", item.ID, w.Key(), err)
		}
		if err := raster.Composite(mosaic, tile); err != nil {
			return nil, err
		}
	}

	if factor > 1 {
		mosaic = raster.UpsampleNearest(mosaic, factor)
		// Integer division can shave pixels off odd grids; pad back out.
		if mosaic.Width != grid.Width || mosaic.Height != grid.Height {
			padded := raster.New(grid.Width, grid.Height, len(bandSet.Bands), nodata)
			if err := pasteTopLeft(padded, mosaic); err != nil {
				return nil, err
			}
			mosaic = padded
		}
	}
	return mosaic, nil
}

func pasteTopLeft(dst, src *raster.Raster) error {
	if len(dst.Bands) != len(src.Bands) {
		return fmt.Errorf("paste band count mismatch")
	}
	for b := range dst.Bands {
		for row := 0; row < dst.Height && row < src.Height; row++ {
			for col := 0; col < dst.Width && col < src.Width; col++ {
				dst.Set(b, col, row, src.At(b, col, row))
			}
		}
	}
	return nil
}

// warpTile reprojects one cached tile onto the window grid with the layer's
// resampling method and reads the band set's bands.
func warpTile(tilePath string, w *window.Window, def dataset.LayerDef, bandSet dataset.BandSet, width, height int, nodata float64) (*raster.Raster, error) {
	ds, err := godal.Open(tilePath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open cached tile: %w", err)
	}
	defer ds.Close()

	resampling := def.Resampling
	if resampling == "" {
		resampling = "near"
	}
	switches := []string{
		"-t_srs", fmt.Sprintf("EPSG:%d", w.Projection.EPSG),
		"-te", formatFloat(w.Bounds[0]), formatFloat(w.Bounds[1]), formatFloat(w.Bounds[2]), formatFloat(w.Bounds[3]),
		"-ts", fmt.Sprintf("%d", width), fmt.Sprintf("%d", height),
		"-r", resampling,
		"-dstnodata", formatFloat(nodata),
	}
	warpedPath := tilePath + ".warp.tif"
	warped, err := ds.Warp(warpedPath, switches)
	if err != nil {
		return nil, &ReprojectionError{EPSG: w.Projection.EPSG, Err: err}
	}
	defer func() {
		warped.Close()
		os.Remove(warpedPath)
	}()

	bands := warped.Bands()
	indices, err := bandIndices(def, bandSet, len(bands))
	if err != nil {
		return nil, err
	}

	out := raster.New(width, height, len(indices), nodata)
	for bi, srcIdx := range indices {
		if err := bands[srcIdx].Read(0, 0, out.Bands[bi], width, height); err != nil {
			return nil, fmt.Errorf("failed to read band %d: %w", srcIdx, err)
		}
	}
	return out, nil
}

// bandIndices maps band-set band names onto tile band positions using the
// data source's declared layout; without a layout the tile is assumed to
// carry the band set's bands in order.
func bandIndices(def dataset.LayerDef, bandSet dataset.BandSet, available int) ([]int, error) {
	if def.DataSource == nil || len(def.DataSource.Bands) == 0 {
		if len(bandSet.Bands) > available {
			return nil, fmt.Errorf("tile has %d bands, band set wants %d", available, len(bandSet.Bands))
		}
		indices := make([]int, len(bandSet.Bands))
		for i := range indices {
			indices[i] = i
		}
		return indices, nil
	}
	layout := map[string]int{}
	for i, name := range def.DataSource.Bands {
		layout[name] = i
	}
	var indices []int
	for _, name := range bandSet.Bands {
		idx, ok := layout[name]
		if !ok {
			return nil, fmt.Errorf("band %q not present in source layout %v", name, def.DataSource.Bands)
		}
		if idx >= available {
			return nil, fmt.Errorf("band %q maps to index %d but tile has %d bands", name, idx, available)
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func writeGeoTIFF(path string, r *raster.Raster, bandSet dataset.BandSet, grid geo.PixelGrid, epsg int) error {
	dtype, err := bandSet.ParsedDType()
	if err != nil {
		return err
	}
	ds, err := godal.Create(godal.GTiff, path, len(r.Bands), godalDType(dtype), r.Width, r.Height,
		godal.CreationOption("TILED=YES", "COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("failed to create output raster: %w", err)
	}
	defer ds.Close()

	if err := ds.SetGeoTransform(grid.Transform); err != nil {
		return fmt.Errorf("failed to set geotransform: %w", err)
	}
	sr, err := godal.NewSpatialRefFromEPSG(epsg)
	if err != nil {
		return &ReprojectionError{EPSG: epsg, Err: err}
	}
	defer sr.Close()
	if err := ds.SetSpatialRef(sr); err != nil {
		return &ReprojectionError{EPSG: epsg, Err: err}
	}
	if !math.IsNaN(r.NoData) || dtype == raster.Float32 || dtype == raster.Float64 {
		if err := ds.SetNoData(r.NoData); err != nil {
			return fmt.Errorf("failed to set nodata: %w", err)
		}
	}
	for bi, band := range ds.Bands() {
		if err := band.Write(0, 0, r.Bands[bi], r.Width, r.Height); err != nil {
			return fmt.Errorf("failed to write band %d: %w", bi, err)
		}
	}
	return nil
}

func godalDType(dt raster.DType) godal.DataType {
	switch dt {
	case raster.UInt8:
		return godal.Byte
	case raster.UInt16:
		return godal.UInt16
	case raster.Int16:
		return godal.Int16
	case raster.Int32:
		return godal.Int32
	case raster.Float64:
		return godal.Float64
	default:
		return godal.Float32
	}
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return "nan"
	}
	return fmt.Sprintf("%g", v)
}
