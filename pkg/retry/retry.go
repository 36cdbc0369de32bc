// Package retry provides a bounded back-off combinator.
//
// A [Backoff] runs an action with a numeric parameter and, while the action
// reports a retryable failure, runs it again with the parameter scaled by a
// fixed factor. The number of attempts is capped, so a check that can never
// pass ends in [ErrExhausted] instead of looping forever.
//
//	b := retry.Backoff{Attempts: 10, Factor: 0.1}
//	res, err := b.Run(1e-5, func(attempt int, slope float64) error {
//	    if unstable(slope) {
//	        return retry.Retryable(errUnstable)
//	    }
//	    return nil
//	})
package retry

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by [Backoff.Run] when every attempt failed with a
// retryable error. The last failure is wrapped alongside it.
var ErrExhausted = errors.New("retry attempts exhausted")

// RetryableError wraps an error to indicate it should trigger a retry.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff is a geometric schedule: attempt i (1-based) receives
// start × Factor^(i-1). Attempts below 1 are treated as 1.
type Backoff struct {
	Attempts int
	Factor   float64
}

// Result reports how a Run ended.
type Result struct {
	Value    float64 // parameter of the last attempt
	Attempts int     // number of attempts made
}

// Run calls fn until it returns nil, returns an error not wrapped with
// [Retryable], or the attempt cap is reached. Non-retryable errors are
// returned as they are.
func (b Backoff) Run(start float64, fn func(attempt int, value float64) error) (Result, error) {
	attempts := max(b.Attempts, 1)
	value := start
	var lastErr error

	for i := 1; i <= attempts; i++ {
		err := fn(i, value)
		if err == nil {
			return Result{Value: value, Attempts: i}, nil
		}
		if !IsRetryable(err) {
			return Result{Value: value, Attempts: i}, err
		}
		lastErr = err
		if i < attempts {
			value *= b.Factor
		}
	}
	return Result{Value: value, Attempts: attempts},
		fmt.Errorf("%w after %d attempts: %w", ErrExhausted, attempts, lastErr)
}
