package raster

import "fmt"

// Composite fills dst from src wherever dst still holds nodata and src has
// valid data. Calling it with tiles in matcher order yields standard mosaic
// semantics: the first item with valid data at a pixel wins and later items
// never overwrite it.
func Composite(dst, src *Raster) error {
	if dst.Width != src.Width || dst.Height != src.Height {
		return fmt.Errorf("composite size mismatch: %dx%d vs %dx%d", dst.Width, dst.Height, src.Width, src.Height)
	}
	if len(dst.Bands) != len(src.Bands) {
		return fmt.Errorf("composite band count mismatch: %d vs %d", len(dst.Bands), len(src.Bands))
	}
	for row := 0; row < dst.Height; row++ {
		for col := 0; col < dst.Width; col++ {
			if dst.ValidAt(col, row) || !src.ValidAt(col, row) {
				continue
			}
			for b := range dst.Bands {
				dst.Set(b, col, row, src.At(b, col, row))
			}
		}
	}
	return nil
}

// Mosaic composites tiles in order onto a fresh nodata-filled raster.
func Mosaic(width, height, bands int, nodata float64, tiles []*Raster) (*Raster, error) {
	out := New(width, height, bands, nodata)
	for _, t := range tiles {
		if err := Composite(out, t); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpsampleNearest blows a raster up by an integer factor. Band-sets stored at
// a coarser zoom level are brought to the window resolution this way.
func UpsampleNearest(r *Raster, factor int) *Raster {
	if factor <= 1 {
		return r
	}
	out := New(r.Width*factor, r.Height*factor, len(r.Bands), r.NoData)
	for b := range r.Bands {
		for row := 0; row < out.Height; row++ {
			for col := 0; col < out.Width; col++ {
				out.Set(b, col, row, r.At(b, col/factor, row/factor))
			}
		}
	}
	return out
}
