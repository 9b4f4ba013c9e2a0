package commands

import (
	"fmt"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/spf13/cobra"
)

func NewCreateWindowsCommand(opts *rootOptions) *cobra.Command {
	var (
		labels        string
		classProperty string
		resolution    float64
		size          int
		start         string
		end           string
	)

	command := &cobra.Command{
		Use:   "create-windows",
		Short: "Create square windows around labeled points from a GeoJSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			startTime, err := time.Parse("2006-01-02", start)
			if err != nil {
				return fmt.Errorf("invalid --start date: %w", err)
			}
			endTime, err := time.Parse("2006-01-02", end)
			if err != nil {
				return fmt.Errorf("invalid --end date: %w", err)
			}
			group := opts.group
			if group == "" {
				group = "default"
			}

			_, err = delivery.CreateWindows(ds.Registry, labels, window.PointWindowParams{
				Group:         group,
				Resolution:    resolution,
				Size:          size,
				Start:         startTime,
				End:           endTime,
				ClassProperty: classProperty,
			})
			return err
		},
	}
	command.Flags().StringVar(&labels, "labels", "", "Path to the labeled-point GeoJSON file")
	command.Flags().StringVar(&classProperty, "class-property", "category", "Feature property carrying the label class")
	command.Flags().Float64Var(&resolution, "resolution", 10, "Pixel resolution in meters")
	command.Flags().IntVar(&size, "size", 128, "Window side length in pixels")
	command.Flags().StringVar(&start, "start", "", "Time range start (YYYY-MM-DD)")
	command.Flags().StringVar(&end, "end", "", "Time range end (YYYY-MM-DD)")
	command.MarkFlagRequired("labels")
	command.MarkFlagRequired("start")
	command.MarkFlagRequired("end")
	return command
}
