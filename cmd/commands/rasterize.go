package commands

import (
	"strings"

	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/rasterize"
	"github.com/spf13/cobra"
)

func NewRasterizeCommand(opts *rootOptions) *cobra.Command {
	var (
		sourceLayer   string
		outputLayer   string
		classes       string
		classProperty string
		pointRadius   int
		dropUnknown   bool
		reportPath    string
	)

	command := &cobra.Command{
		Use:   "rasterize",
		Short: "Burn materialized label features into per-pixel class rasters",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}

			// Index 0 of the class table is always the invalid/nodata class.
			classTable := append([]string{"invalid"}, strings.Split(classes, ",")...)
			policy := rasterize.Abort
			if dropUnknown {
				policy = rasterize.Drop
			}

			result, err := delivery.RasterizeLabels(ds, delivery.RasterizeParams{
				SourceLayer: sourceLayer,
				OutputLayer: outputLayer,
				Config: rasterize.Config{
					Classes:     classTable,
					Property:    classProperty,
					PointRadius: pointRadius,
					Policy:      policy,
				},
			}, opts.runOptions())
			if err != nil {
				return err
			}
			return reportResult("rasterize", result, reportPath)
		},
	}
	command.Flags().StringVar(&sourceLayer, "source-layer", "labels", "Materialized vector layer to burn")
	command.Flags().StringVar(&outputLayer, "output-layer", "label", "Layer name for the class rasters")
	command.Flags().StringVar(&classes, "classes", "", "Comma-separated class names, ids assigned in order from 1")
	command.Flags().StringVar(&classProperty, "class-property", "category", "Feature property carrying the label class")
	command.Flags().IntVar(&pointRadius, "point-radius", 0, "Square neighborhood radius for point burns, in pixels")
	command.Flags().BoolVar(&dropUnknown, "drop-unknown", false, "Drop features with unknown classes instead of failing the window")
	command.Flags().StringVar(&reportPath, "failure-report", "", "Write failed windows to this CSV file")
	command.MarkFlagRequired("classes")
	return command
}
