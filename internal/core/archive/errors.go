package archive

import (
	"errors"
	"fmt"
)

// ErrLocked is returned when another worker currently holds the execution
// lock for an archive. It is always wrapped as retryable.
var ErrLocked = errors.New("archive is being executed by another worker")

// TerminalError marks a failure caused by bad input. Retrying the identical
// input fails identically, so callers must not requeue the job; the operator
// has to correct the input and register again.
type TerminalError struct {
	Reason string
}

func (e *TerminalError) Error() string {
	return e.Reason
}

// Terminalf builds a TerminalError with a formatted reason.
func Terminalf(format string, args ...any) error {
	return &TerminalError{Reason: fmt.Sprintf(format, args...)}
}

// IsTerminal reports whether err is (or wraps) a TerminalError.
func IsTerminal(err error) bool {
	var te *TerminalError
	return errors.As(err, &te)
}

// RetryableError marks a failure that is expected to clear on its own
// (resource contention, store outage). The job may be requeued; the
// archived-message checkpoint makes the retry safe.
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string {
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error {
	return e.Err
}

// Retryable wraps err as a RetryableError. A nil err returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err is (or wraps) a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
