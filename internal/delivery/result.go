// Package delivery runs the pipeline stages over every window of a dataset:
// window creation, prepare (source matching), ingest, materialize, split and
// rasterize. Stages isolate per-window failures so one bad window never stops
// a batch, and report the failures at the end.
package delivery

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/earth-window/earth-window-dataset-poc/internal/retry"
	"github.com/earth-window/earth-window-dataset-poc/internal/window"
	"github.com/gammazero/workerpool"
	"github.com/gocarina/gocsv"
	"github.com/schollz/progressbar/v3"
)

// RunOptions is shared by every batch stage.
type RunOptions struct {
	Group   string
	Workers int
	Retry   retry.Policy
}

func (o RunOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Failure records one window/layer that could not be processed.
type Failure struct {
	Window string `csv:"window"`
	Layer  string `csv:"layer"`
	Error  string `csv:"error"`
}

// Result aggregates a batch run. Failed counts windows, not window/layer
// pairs: a window with two broken layers fails once.
type Result struct {
	Succeeded int
	Failed    int
	Failures  []Failure
}

// WriteFailureReport writes the failure list as CSV for offline triage.
func (r *Result) WriteFailureReport(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create failure report: %w", err)
	}
	defer file.Close()
	failures := r.Failures
	if err := gocsv.MarshalFile(&failures, file); err != nil {
		return fmt.Errorf("failed to write failure report: %w", err)
	}
	return nil
}

// forEachWindow fans windows out over a worker pool with a progress bar and
// collects per-window failures. fn returns one Failure per broken layer.
func forEachWindow(windows []*window.Window, opts RunOptions, description string, fn func(w *window.Window) []Failure) *Result {
	wp := workerpool.New(opts.workers())
	bar := progressbar.Default(int64(len(windows)), description)

	var mu sync.Mutex
	result := &Result{}

	for _, w := range windows {
		w := w
		wp.Submit(func() {
			defer bar.Add(1)
			failures := fn(w)
			mu.Lock()
			defer mu.Unlock()
			if len(failures) == 0 {
				result.Succeeded++
				return
			}
			result.Failed++
			result.Failures = append(result.Failures, failures...)
		})
	}
	wp.StopWait()
	return result
}
