package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/earth-window/earth-window-dataset-poc/internal/raster"
	"github.com/earth-window/earth-window-dataset-poc/output"
	"github.com/spf13/cobra"
)

func NewPreviewCommand(opts *rootOptions) *cobra.Command {
	var (
		windowKey string
		layer     string
		classes   string
		scale     int
		outPath   string
	)

	command := &cobra.Command{
		Use:   "preview",
		Short: "Render a window's label or imagery layer as a PNG",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			group, name, ok := strings.Cut(windowKey, "/")
			if !ok {
				return fmt.Errorf("--window must be group/name, got %q", windowKey)
			}
			w, err := ds.Registry.Get(group, name)
			if err != nil {
				return err
			}
			layerDir := ds.Registry.LayerDir(w, layer)

			labelPath := filepath.Join(layerDir, "label.png")
			if _, err := os.Stat(labelPath); err == nil {
				if classes == "" {
					return fmt.Errorf("layer %s holds a class raster: pass --classes", layer)
				}
				file, err := os.Open(labelPath)
				if err != nil {
					return err
				}
				defer file.Close()
				label, err := raster.DecodePNG(file)
				if err != nil {
					return err
				}
				classTable := append([]string{"invalid"}, strings.Split(classes, ",")...)
				return output.CreateLabelPreviewImage(label, classTable, scale, outPath)
			}

			// Imagery layers store one GeoTIFF per band set; preview the first.
			matches, err := filepath.Glob(filepath.Join(layerDir, "*", "geotiff.tif"))
			if err != nil || len(matches) == 0 {
				return fmt.Errorf("no materialized raster found under %s", layerDir)
			}
			return output.CreateImageryPreviewImage(matches[0], outPath)
		},
	}
	command.Flags().StringVar(&windowKey, "window", "", "Window to preview, as group/name")
	command.Flags().StringVar(&layer, "layer", "", "Layer to preview")
	command.Flags().StringVar(&classes, "classes", "", "Comma-separated class names for label layers")
	command.Flags().IntVar(&scale, "scale", 4, "Pixel scale factor for label previews")
	command.Flags().StringVar(&outPath, "out", "preview.png", "Output PNG path")
	command.MarkFlagRequired("window")
	command.MarkFlagRequired("layer")
	return command
}
