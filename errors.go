package unit

import (
	"errors"
	"fmt"

	"github.com/ethereum-optimism/infra/op-unit/exitcodes"
)

// RuntimeError wraps a failure of the engine itself: bad configuration, an
// unwritable report, a service that would not start.
type RuntimeError struct {
	Err error
}

func NewRuntimeError(err error) *RuntimeError {
	return &RuntimeError{Err: err}
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("runtime error: %v", e.Err)
}

func (e *RuntimeError) Unwrap() error { return e.Err }

// TestFailureError is returned when tests failed and --fail-on-error is set.
type TestFailureError struct {
	Message string
}

func NewTestFailureError(message string) *TestFailureError {
	return &TestFailureError{Message: message}
}

func (e *TestFailureError) Error() string {
	return fmt.Sprintf("test failure: %s", e.Message)
}

// IsRuntimeError reports whether err wraps a *RuntimeError.
func IsRuntimeError(err error) bool {
	var target *RuntimeError
	return errors.As(err, &target)
}

// IsTestFailureError reports whether err wraps a *TestFailureError.
func IsTestFailureError(err error) bool {
	var target *TestFailureError
	return errors.As(err, &target)
}

// ExitCode maps an error returned by the application to a process exit code.
// Only test failures exit with exitcodes.TestFailure. Everything else,
// including flag validation errors raised before the run starts, is a
// runtime error.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return exitcodes.Success
	case IsTestFailureError(err) && !IsRuntimeError(err):
		return exitcodes.TestFailure
	default:
		return exitcodes.RuntimeErr
	}
}
