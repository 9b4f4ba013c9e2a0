// Package commands wires the pipeline stages into a cobra CLI. Every stage
// command takes the shared --root/--group/--workers/--retry-* flags and exits
// non-zero when any window failed permanently.
package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/earth-window/earth-window-dataset-poc/internal/catalog"
	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/delivery"
	"github.com/earth-window/earth-window-dataset-poc/internal/notification"
	"github.com/earth-window/earth-window-dataset-poc/internal/properties"
	"github.com/earth-window/earth-window-dataset-poc/internal/retry"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	root                string
	group               string
	workers             int
	retryMaxAttempts    int
	retryBackoffSeconds int
}

func (o *rootOptions) rootPath() string {
	if o.root != "" {
		return o.root
	}
	return properties.RootPath()
}

func (o *rootOptions) runOptions() delivery.RunOptions {
	return delivery.RunOptions{
		Group:   o.group,
		Workers: o.workers,
		Retry: retry.Policy{
			MaxAttempts: o.retryMaxAttempts,
			Backoff:     time.Duration(o.retryBackoffSeconds) * time.Second,
		},
	}
}

func (o *rootOptions) openDataset() (*dataset.Dataset, error) {
	root := o.rootPath()
	if root == "" {
		return nil, fmt.Errorf("no dataset root: set --root or the ROOT_PATH environment variable")
	}
	return dataset.Open(root)
}

// buildSources constructs one backend per distinct data source named in the
// layer schema. Local sources resolve below <root>/sources.
func (o *rootOptions) buildSources(ds *dataset.Dataset) (map[string]catalog.Source, error) {
	sources := map[string]catalog.Source{}
	for layerName, def := range ds.Config.Layers {
		if def.DataSource == nil {
			continue
		}
		name := def.DataSource.Name
		if _, ok := sources[name]; ok {
			continue
		}
		switch {
		case strings.HasPrefix(name, "copernicus/"):
			src, err := catalog.NewCopernicusSource(def.DataSource.Bands, 10)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", layerName, err)
			}
			sources[name] = src
		case strings.HasPrefix(name, "local/"):
			src, err := catalog.NewLocalSource(fmt.Sprintf("%s/sources/%s", ds.Root, strings.TrimPrefix(name, "local/")))
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", layerName, err)
			}
			sources[name] = src
		default:
			return nil, fmt.Errorf("layer %s names unknown data source %q", layerName, name)
		}
	}
	return sources, nil
}

// reportResult prints the stage outcome, writes the failure report, and sends
// the Discord notification. A non-nil error means the process should exit
// non-zero.
func reportResult(stage string, result *delivery.Result, reportPath string) error {
	fmt.Printf("\033[32m%s: %d windows succeeded\033[0m\n", stage, result.Succeeded)
	if result.Failed == 0 {
		notification.SendDiscordSuccessNotification(fmt.Sprintf("%s completed: %d windows", stage, result.Succeeded))
		return nil
	}

	fmt.Printf("\033[31m%s: %d windows failed\033[0m\n", stage, result.Failed)
	for _, f := range result.Failures {
		fmt.Printf("\033[31m- %s %s: %s\033[0m\n", f.Window, f.Layer, f.Error)
	}
	if reportPath != "" {
		if err := result.WriteFailureReport(reportPath); err != nil {
			fmt.Printf("\033[31mFailed to write failure report: %s\033[0m\n", err.Error())
		} else {
			fmt.Printf("Failure report written to %s\n", reportPath)
		}
	}
	notification.SendDiscordWarnNotification(fmt.Sprintf("%s completed with %d failed windows (%d succeeded)", stage, result.Failed, result.Succeeded))
	return fmt.Errorf("%s failed for %d windows", stage, result.Failed)
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	command := &cobra.Command{
		Use:           "earthwindow",
		Short:         "Windowed remote-sensing dataset builder",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.PersistentFlags().StringVar(&opts.root, "root", "", "Dataset root directory (default: ROOT_PATH env)")
	command.PersistentFlags().StringVar(&opts.group, "group", "", "Window group to process (default: all groups)")
	command.PersistentFlags().IntVar(&opts.workers, "workers", 0, "Concurrent window workers (default: number of CPUs)")
	command.PersistentFlags().IntVar(&opts.retryMaxAttempts, "retry-max-attempts", 3, "Attempts per network operation")
	command.PersistentFlags().IntVar(&opts.retryBackoffSeconds, "retry-backoff-seconds", 5, "Seconds between retry attempts")

	command.AddCommand(NewCreateWindowsCommand(opts))
	command.AddCommand(NewPrepareCommand(opts))
	command.AddCommand(NewIngestCommand(opts))
	command.AddCommand(NewMaterializeCommand(opts))
	command.AddCommand(NewSplitCommand(opts))
	command.AddCommand(NewRasterizeCommand(opts))
	command.AddCommand(NewQualityCommand(opts))
	command.AddCommand(NewPreviewCommand(opts))
	return command
}
