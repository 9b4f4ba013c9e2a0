package commands

import (
	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/ingest"
	"github.com/spf13/cobra"
)

func NewIngestCommand(opts *rootOptions) *cobra.Command {
	var (
		reportPath string
		cacheDir   string
	)

	command := &cobra.Command{
		Use:   "ingest",
		Short: "Download and convert every item referenced by the prepared windows",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			sources, err := opts.buildSources(ds)
			if err != nil {
				return err
			}
			runOpts := opts.runOptions()
			dir := cacheDir
			if dir == "" {
				dir = ds.Root
			}
			cache := ingest.NewCache(dir, runOpts.Retry)
			result, err := delivery.Ingest(cmd.Context(), ds, cache, sources, runOpts)
			if err != nil {
				return err
			}
			return reportResult("ingest", result, reportPath)
		},
	}
	command.Flags().StringVar(&reportPath, "failure-report", "", "Write failed windows to this CSV file")
	command.Flags().StringVar(&cacheDir, "cache-dir", "", "Tile cache directory (default: dataset root)")
	return command
}
