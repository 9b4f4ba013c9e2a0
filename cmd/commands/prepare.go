package commands

import (
	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/spf13/cobra"
)

func NewPrepareCommand(opts *rootOptions) *cobra.Command {
	var reportPath string

	command := &cobra.Command{
		Use:   "prepare",
		Short: "Match catalog items to every window and persist the item groups",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := opts.openDataset()
			if err != nil {
				return err
			}
			sources, err := opts.buildSources(ds)
			if err != nil {
				return err
			}
			result, err := delivery.Prepare(cmd.Context(), ds, sources, opts.runOptions())
			if err != nil {
				return err
			}
			return reportResult("prepare", result, reportPath)
		},
	}
	command.Flags().StringVar(&reportPath, "failure-report", "", "Write failed windows to this CSV file")
	return command
}
