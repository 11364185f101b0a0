// Package retry provides a fixed-delay retry policy applied around external calls.
// Policies are declared as named values at each call site so tests can inject
// shorter delays and fault predicates.
package retry

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Policy describes how an external call is retried: a fixed number of
// attempts with a constant delay between them. No backoff growth, no jitter.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
	// Delay is the fixed wait between attempts.
	Delay time.Duration
	// Retryable reports whether an error should be retried.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Do runs fn under the policy. It returns nil on the first success, the last
// error once attempts are exhausted, or the context error if the run is
// cancelled during a delay.
func (p Policy) Do(ctx context.Context, op string, fn func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		log.Printf("[retry] %s attempt %d/%d failed: %v (retrying in %s)", op, attempt, attempts, err, p.Delay)

		timer := time.NewTimer(p.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", op, attempts, lastErr)
}
