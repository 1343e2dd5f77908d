// Package retry re-runs operations that fail transiently, doubling the
// wait between attempts.
//
// Only errors marked with [Transient] are retried:
//
//	err := retry.Do(ctx, 3, time.Second, func() error {
//		if err := ping(); err != nil {
//			return retry.Transient(err)
//		}
//		return nil
//	})
package retry

import (
	"context"
	"errors"
	"time"
)

// TransientError marks an error as worth another attempt.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so that [Do] retries it. A nil err stays nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}

// IsTransient reports whether err, or an error it wraps, is transient.
func IsTransient(err error) bool {
	return errors.As(err, new(*TransientError))
}

// Do executes fn up to attempts times. Non-transient errors are returned
// immediately. The delay doubles after each failed attempt. Returns the
// last error if all attempts fail, or ctx.Err() if cancelled while waiting.
func Do(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsTransient(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
