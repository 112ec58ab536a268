package cache

import (
	"context"
	"errors"
	"time"
)

// Transient backend failures are retried a few times. After that the
// pipeline treats the entry as a miss and resolves from source.
const retryAttempts = 3

// retryDelay is the first backoff interval. It doubles per attempt.
var retryDelay = 100 * time.Millisecond

// RetryableError marks a backend failure that may succeed if repeated,
// such as a dropped Redis connection.
type RetryableError struct{ Err error }

// Retryable marks err as transient. It returns nil for a nil err.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or an error it wraps, was marked with
// Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff calls fn until it succeeds, returns an error not marked
// Retryable, or retryAttempts calls have failed. It returns the last error,
// or ctx.Err() if ctx ends while waiting.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			wait := time.NewTimer(retryDelay << (attempt - 1))
			select {
			case <-ctx.Done():
				wait.Stop()
				return ctx.Err()
			case <-wait.C:
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}
