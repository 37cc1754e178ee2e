package repository

import (
	"context"
	"math/rand"
	"time"
)

// RetryPolicy controls how often a transaction is re-run after PostgreSQL aborted it
// because of a serialization failure or a deadlock.
type RetryPolicy struct {
	MaxAttempts  int
	BaseDelay    time.Duration
	JitterFactor float64
}

// DefaultRetryPolicy waits 0, 10, 20, 40 ms (plus jitter) between attempts.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts:  4,
	BaseDelay:    10 * time.Millisecond,
	JitterFactor: 0.3,
}

// Do runs fn until it succeeds, fails with a non retryable error, the context is done
// or the attempts are used up.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			delay := p.BaseDelay * time.Duration(1<<(attempt-1))
			delay += time.Duration(rand.Float64() * float64(delay) * p.JitterFactor) //nolint:gosec // jitter only
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn(ctx)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return err
}

func isRetryable(err error) bool {
	switch pqCode(err) {
	case codeSerializationFailure, codeDeadlockDetected:
		return true
	default:
		return false
	}
}
