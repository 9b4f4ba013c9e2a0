package materialize

import "fmt"

// ReprojectionError marks a window whose CRS the resampling backend cannot
// handle. Fatal for the window; the failure report carries the window id.
type ReprojectionError struct {
	EPSG int
	Err  error
}

func (e *ReprojectionError) Error() string {
	return fmt.Sprintf("cannot reproject to EPSG:%d: %v", e.EPSG, e.Err)
}

func (e *ReprojectionError) Unwrap() error { return e.Err }
