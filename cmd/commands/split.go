package commands

import (
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/split"
	"github.com/earth-window/earth-window-dataset-poc/output"
	"github.com/spf13/cobra"
)

func NewSplitCommand(opts *rootOptions) *cobra.Command {
	var (
		gridSize    int
		trainProp   float64
		valProp     float64
		testProp    float64
		random      bool
		geojsonPath string
	)

	command := &cobra.Command{
		Use:   "split",
		Short: "Assign train/val/test splits to windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}

			var splitter split.Splitter
			if random {
				splitter, err = split.NewRandomSplitter(trainProp, valProp, testProp)
			} else {
				splitter, err = split.NewSpatialSplitter(gridSize, trainProp, valProp, testProp)
			}
			if err != nil {
				return err
			}

			if _, err := delivery.Split(ds, splitter, opts.runOptions()); err != nil {
				return err
			}

			if geojsonPath != "" {
				windows, err := ds.Registry.List(opts.group, "")
				if err != nil {
					return err
				}
				if err := output.CreateSplitGeoJSON(windows, geojsonPath); err != nil {
					return err
				}
			}
			fmt.Println("\033[32mSplit assignment completed\033[0m")
			return nil
		},
	}
	command.Flags().IntVar(&gridSize, "grid-size", 512, "Spatial cell size in pixels")
	command.Flags().Float64Var(&trainProp, "train", 0.8, "Train proportion")
	command.Flags().Float64Var(&valProp, "val", 0.1, "Validation proportion")
	command.Flags().Float64Var(&testProp, "test", 0.1, "Test proportion")
	command.Flags().BoolVar(&random, "random", false, "Hash window names instead of spatial cells")
	command.Flags().StringVar(&geojsonPath, "geojson", "", "Also write a split-assignment GeoJSON to this path")
	return command
}
