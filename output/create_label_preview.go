// Package output renders human-checkable artifacts from materialized windows:
// label previews, imagery previews, and split-assignment GeoJSON.
package output

import (
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/properties"
	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
	"github.com/fogleman/gg"
)

// CreateLabelPreviewImage renders a class raster as a colored PNG, scaled up
// so individual pixels are visible. Class ids index the class table; ids
// outside the table render with the "unknown" color.
func CreateLabelPreviewImage(label *raster.Raster, classes []string, scale int, outputPath string) error {
	if len(label.Bands) != 1 {
		return fmt.Errorf("label preview needs a single-band raster, got %d bands", len(label.Bands))
	}
	if scale < 1 {
		scale = 1
	}

	dc := gg.NewContext(label.Width*scale, label.Height*scale)
	for row := 0; row < label.Height; row++ {
		for col := 0; col < label.Width; col++ {
			id := int(label.At(0, col, row))
			name := "unknown"
			if id >= 0 && id < len(classes) {
				name = classes[id]
			}
			c, ok := properties.ColorMap[name]
			if !ok {
				c = properties.ColorMap["unknown"]
			}
			dc.SetRGB255(int(c.R), int(c.G), int(c.B))
			dc.DrawRectangle(float64(col*scale), float64(row*scale), float64(scale), float64(scale))
			dc.Fill()
		}
	}

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save label preview: %w", err)
	}
	fmt.Println("Label preview created successfully at", outputPath)
	return nil
}
