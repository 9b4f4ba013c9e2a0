package output

import (
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"github.com/fogleman/gg"
)

// CreateImageryPreviewImage renders the first band of a materialized GeoTIFF
// as a normalized grayscale PNG for eyeballing mosaics.
func CreateImageryPreviewImage(tiffPath, outputPath string) error {
	ds, err := godal.Open(tiffPath, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("%s", msg)
	}))
	if err != nil {
		return fmt.Errorf("failed to open TIFF file: %w", err)
	}
	defer ds.Close()

	width, height := ds.Structure().SizeX, ds.Structure().SizeY
	data := make([]float64, width*height)
	if err := ds.Bands()[0].Read(0, 0, data, width, height); err != nil {
		return fmt.Errorf("failed to read raster data: %w", err)
	}

	// Stretch valid values to the full gray range.
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range data {
		if math.IsNaN(v) {
			continue
		}
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if lo >= hi {
		lo, hi = 0, 1
	}

	dc := gg.NewContext(width, height)
	for row := 0; row < height; row++ {
		for col := 0; col < width; col++ {
			v := data[row*width+col]
			if math.IsNaN(v) {
				dc.SetRGB(0, 0, 0)
			} else {
				gray := (v - lo) / (hi - lo)
				dc.SetRGB(gray, gray, gray)
			}
			dc.SetPixel(col, row)
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save imagery preview: %w", err)
	}
	fmt.Println("Imagery preview created successfully at", outputPath)
	return nil
}
