package commands

import (
	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/ingest"
	"github.com/spf13/cobra"
)

func NewMaterializeCommand(opts *rootOptions) *cobra.Command {
	var (
		reportPath string
		cacheDir   string
	)

	command := &cobra.Command{
		Use:   "materialize",
		Short: "Build window-aligned layer files from the cached tiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			runOpts := opts.runOptions()
			dir := cacheDir
			if dir == "" {
				dir = ds.Root
			}
			cache := ingest.NewCache(dir, runOpts.Retry)
			result, err := delivery.Materialize(ds, cache, runOpts)
			if err != nil {
				return err
			}
			return reportResult("materialize", result, reportPath)
		},
	}
	command.Flags().StringVar(&reportPath, "failure-report", "", "Write failed windows to this CSV file")
	command.Flags().StringVar(&cacheDir, "cache-dir", "", "Tile cache directory (default: dataset root)")
	return command
}
