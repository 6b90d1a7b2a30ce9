package kvengine

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy is returned when an operation is rejected by admission control:
	// the submission rate is exceeded or the executor queue is full.
	// Callers decide whether to retry or surface a server-busy response.
	ErrBusy = errors.New("engine busy")

	// ErrClosed is returned for operations on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrInvalidConfig is returned by New for unusable options.
	ErrInvalidConfig = errors.New("invalid config")
)

// ErrInvalidOption indicates an option value that New cannot accept.
//
// It matches ErrInvalidConfig with errors.Is. The original underlying error
// (if any) can be accessed via errors.Unwrap.
type ErrInvalidOption struct {
	Option string
	Value  any
	cause  error
}

func (e *ErrInvalidOption) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("invalid option %s=%v: %v", e.Option, e.Value, e.cause)
	}
	return fmt.Sprintf("invalid option %s=%v", e.Option, e.Value)
}

func (e *ErrInvalidOption) Unwrap() error { return e.cause }

// Is reports whether target is ErrInvalidConfig.
func (e *ErrInvalidOption) Is(target error) bool { return target == ErrInvalidConfig }
