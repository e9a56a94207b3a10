package fetch

import (
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
)

// ErrTimeout indicates a single fetch attempt exceeded its deadline.
// Timeouts are retryable.
var ErrTimeout = errors.New("fetch attempt timed out")

// Error is returned when all attempts for an operation are exhausted.
// Callers decide the fallback: stale cache, a default value, or surfacing
// the failure.
type Error struct {
	Op       string // cache key / operation name
	Attempts int    // total attempts made, including the first
	Err      error  // last error observed
}

func (e *Error) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Permanent marks err as non-retryable. The accessor fails immediately
// instead of burning retry attempts on errors that cannot succeed, e.g.
// a misconfigured backing resource.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
