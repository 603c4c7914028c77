// Package retry implements the linear-backoff retry used around flaky
// network calls (object storage, database writes, agent requests).
package retry

import (
	"fmt"
	"time"
)

// DefaultBackoff is the base delay between attempts. Attempt i sleeps
// i*DefaultBackoff, so three attempts wait 500ms then 1s.
const DefaultBackoff = 500 * time.Millisecond

// Do runs op up to attempts times and returns the first successful result.
// After the final failure the zero value of T is returned together with an
// error wrapping the last one.
func Do[T any](attempts int, op func() (T, error)) (T, error) {
	return DoWithBackoff(attempts, DefaultBackoff, op)
}

// DoWithBackoff is Do with a configurable base delay.
func DoWithBackoff[T any](attempts int, backoff time.Duration, op func() (T, error)) (T, error) {
	var result T
	var err error

	for i := 0; i < attempts; i++ {
		result, err = op()
		if err == nil {
			return result, nil
		}
		if i < attempts-1 {
			time.Sleep(time.Duration(i+1) * backoff)
		}
	}
	var zero T
	return zero, fmt.Errorf("operation failed after %d attempts: %w", attempts, err)
}
