package delivery

import (
	"fmt"

	"github.com/earth-window/earth-window-dataset-poc/internal/dataset"
	"github.com/earth-window/earth-window-dataset-poc/internal/split"
)

// Split assigns train/val/test tags to the group's windows. Test windows are
// never reassigned; see split.Reassign.
func Split(ds *dataset.Dataset, splitter split.Splitter, opts RunOptions) (int, error) {
	windows, err := ds.Registry.List(opts.Group, "")
	if err != nil {
		return 0, err
	}
	if len(windows) == 0 {
		return 0, fmt.Errorf("no windows found in group %q", opts.Group)
	}
	changed, err := split.Reassign(ds.Registry, windows, splitter)
	if err != nil {
		return changed, err
	}
	fmt.Printf("Split assignment updated %d of %d windows\n", changed, len(windows))
	return changed, nil
}
