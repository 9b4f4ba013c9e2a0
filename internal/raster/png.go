package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// EncodePNG writes a single-band uint8 raster as a grayscale PNG. PNG is the
// lightweight format used for label rasters and previews where GeoTIFF
// georeferencing is not needed; the window record already pins the grid.
func EncodePNG(w io.Writer, r *Raster) error {
	if len(r.Bands) != 1 {
		return fmt.Errorf("png rasters are single-band, got %d bands", len(r.Bands))
	}
	img := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
	for row := 0; row < r.Height; row++ {
		for col := 0; col < r.Width; col++ {
			v := r.At(0, col, row)
			if r.IsNoData(v) {
				v = 0
			}
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			img.SetGray(col, row, color.Gray{Y: uint8(v)})
		}
	}
	return png.Encode(w, img)
}

// DecodePNG reads a grayscale PNG back into a single-band raster with zero
// as nodata.
func DecodePNG(rd io.Reader) (*Raster, error) {
	img, err := png.Decode(rd)
	if err != nil {
		return nil, fmt.Errorf("failed to decode png raster: %w", err)
	}
	b := img.Bounds()
	out := New(b.Dx(), b.Dy(), 1, 0)
	for row := 0; row < out.Height; row++ {
		for col := 0; col < out.Width; col++ {
			cr, _, _, _ := img.At(b.Min.X+col, b.Min.Y+row).RGBA()
			out.Set(0, col, row, float64(cr>>8))
		}
	}
	return out, nil
}
