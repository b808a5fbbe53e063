// Package retry runs an operation again after transient failures.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy controls how often and how long to wait between attempts.
// The wait before attempt n+1 is n*Backoff.
type Policy struct {
	Attempts int
	Backoff  time.Duration
	// Retryable decides whether err is worth another attempt.
	// Nil means every error is retried.
	Retryable func(error) bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error)
}

// Do calls fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted, or ctx is done. It returns fn's last error.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		t := time.NewTimer(time.Duration(attempt) * p.Backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
	}
	return err
}
