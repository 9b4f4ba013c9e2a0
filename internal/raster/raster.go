// Package raster holds the in-memory pixel grid the materializer composites
// into. Values are carried as float64 regardless of the on-disk dtype; the
// dtype decides the nodata default and the encoded representation.
package raster

import (
	"fmt"
	"math"
)

type DType string

const (
	UInt8   DType = "uint8"
	UInt16  DType = "uint16"
	Int16   DType = "int16"
	Int32   DType = "int32"
	Float32 DType = "float32"
	Float64 DType = "float64"
)

func ParseDType(s string) (DType, error) {
	switch DType(s) {
	case UInt8, UInt16, Int16, Int32, Float32, Float64:
		return DType(s), nil
	case "":
		return Float32, nil
	}
	return "", fmt.Errorf("unknown dtype %q", s)
}

// DefaultNoData is the conventional fill value per dtype: zero for integer
// rasters, NaN for floating point. Layer configs can override it per band-set.
func DefaultNoData(dtype DType) float64 {
	switch dtype {
	case Float32, Float64:
		return math.NaN()
	default:
		return 0
	}
}

// Raster is a multi-band pixel grid. Bands[b][row*Width+col] addressing.
type Raster struct {
	Width  int
	Height int
	Bands  [][]float64
	NoData float64
}

// New allocates a raster pre-filled with the nodata value.
func New(width, height, bands int, nodata float64) *Raster {
	r := &Raster{Width: width, Height: height, NoData: nodata}
	for b := 0; b < bands; b++ {
		data := make([]float64, width*height)
		if nodata != 0 {
			for i := range data {
				data[i] = nodata
			}
		}
		r.Bands = append(r.Bands, data)
	}
	return r
}

// IsNoData handles the NaN nodata convention, where v != v.
func (r *Raster) IsNoData(v float64) bool {
	if math.IsNaN(r.NoData) {
		return math.IsNaN(v)
	}
	return v == r.NoData
}

func (r *Raster) At(band, col, row int) float64 {
	return r.Bands[band][row*r.Width+col]
}

func (r *Raster) Set(band, col, row int, v float64) {
	r.Bands[band][row*r.Width+col] = v
}

// ValidAt reports whether any band has valid data at the pixel. A pixel is
// treated as nodata only when every band is nodata, so partial-band values
// are never silently overwritten during compositing.
func (r *Raster) ValidAt(col, row int) bool {
	for b := range r.Bands {
		if !r.IsNoData(r.At(b, col, row)) {
			return true
		}
	}
	return false
}
