// Package retry holds the single retry policy threaded through every
// network-facing operation in the pipeline.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy bounds an operation to MaxAttempts tries with Backoff between them.
// When Exponential is set the backoff doubles after every failed attempt.
type Policy struct {
	MaxAttempts int
	Backoff     time.Duration
	Exponential bool
}

// Default matches the CLI defaults: three attempts, five seconds apart.
var Default = Policy{MaxAttempts: 3, Backoff: 5 * time.Second}

// Do runs fn until it succeeds, the attempt budget is exhausted, or the
// context is canceled. The returned error is the last failure, annotated with
// the attempt count.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("%s canceled after attempt %d: %w", op, attempt, ctx.Err())
		case <-time.After(backoff):
		}
		if p.Exponential {
			backoff *= 2
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, err)
}
