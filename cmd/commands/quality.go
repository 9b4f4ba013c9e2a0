package commands

import (
	"fmt"
	"os"

	"github.com/earth-window/earth-window-dataset-poc/internal/quality"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"
)

func NewQualityCommand(opts *rootOptions) *cobra.Command {
	var (
		k         int
		countsCSV string
	)

	command := &cobra.Command{
		Use:   "quality",
		Short: "Report label clustering and class/split distribution",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			windows, err := ds.Registry.List(opts.group, "")
			if err != nil {
				return err
			}
			if len(windows) == 0 {
				return fmt.Errorf("no windows found in group %q", opts.group)
			}

			var points []quality.LabeledPoint
			for _, w := range windows {
				category, ok := w.Options["category"]
				if !ok {
					continue
				}
				points = append(points, quality.LabeledPoint{
					Lat:   (w.LatLonBounds[1] + w.LatLonBounds[3]) / 2,
					Lon:   (w.LatLonBounds[0] + w.LatLonBounds[2]) / 2,
					Label: fmt.Sprintf("%v", category),
				})
			}

			score, err := quality.SpatialClusteringScore(points, k)
			if err != nil {
				return err
			}
			fmt.Printf("Spatial clustering score (k=%d, %d labels): %.4f\n", k, len(points), score)
			if score > 0.9 {
				fmt.Println("\033[33mLabels are highly clustered; use the spatial splitter to avoid leakage.\033[0m")
			}

			counts := quality.CountsByClassSplit(windows)
			for _, row := range counts {
				fmt.Printf("%-24s train=%-6d val=%-6d test=%-6d unassigned=%d\n", row.Category, row.Train, row.Val, row.Test, row.None)
			}
			if countsCSV != "" {
				file, err := os.Create(countsCSV)
				if err != nil {
					return fmt.Errorf("failed to create counts file: %w", err)
				}
				defer file.Close()
				if err := gocsv.MarshalFile(&counts, file); err != nil {
					return fmt.Errorf("failed to write counts file: %w", err)
				}
				fmt.Println("Class/split counts written to", countsCSV)
			}
			return nil
		},
	}
	command.Flags().IntVar(&k, "k", 5, "Neighbors for the clustering score")
	command.Flags().StringVar(&countsCSV, "counts-csv", "", "Write the class/split count table to this CSV file")
	return command
}
