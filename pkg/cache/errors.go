package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a remote cache that could not be reached.
var ErrNetwork = errors.New("network error")

// RetryableError marks a transient failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable marks err as transient. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was marked with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const retryAttempts = 3

// retryDelay is the wait before the second attempt; it doubles after that.
var retryDelay = 200 * time.Millisecond

// RetryWithBackoff runs fn until it succeeds, fails permanently, or three
// attempts are spent. The context is checked between attempts.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	err := fn()
	for attempt, wait := 1, retryDelay; attempt < retryAttempts && IsRetryable(err); attempt, wait = attempt+1, wait*2 {
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = fn()
	}
	return err
}
