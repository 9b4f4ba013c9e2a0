package ingest

import "fmt"

// SourceUnavailableError marks an item whose download kept failing after the
// retry budget was exhausted. Transient by nature; the item can be retried in
// a later run.
type SourceUnavailableError struct {
	ItemID   string
	Attempts int
	Err      error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source unavailable for item %s after %d attempts: %v", e.ItemID, e.Attempts, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// IngestFormatError marks a payload that downloaded fine but cannot be
// converted to the expected tile representation. Fatal for the item and for
// every window that references it.
type IngestFormatError struct {
	ItemID string
	Err    error
}

func (e *IngestFormatError) Error() string {
	return fmt.Sprintf("cannot convert payload for item %s: %v", e.ItemID, e.Err)
}

func (e *IngestFormatError) Unwrap() error { return e.Err }
