package thread

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyStarted is returned by Thread.Start if it was called before.
	ErrAlreadyStarted = errors.New(`thread: already started`)

	// ErrNotStarted is returned by Thread.Join if the thread was never started.
	ErrNotStarted = errors.New(`thread: not started`)

	// ErrNotReady is returned by Result.TryGet if the result has not been set.
	ErrNotReady = errors.New(`thread: result not ready`)

	// ErrTimeout is returned by Result.Get if the result was not set within
	// the timeout.
	ErrTimeout = errors.New(`thread: result timed out`)

	// ErrGoexit is the outcome captured when a function calls runtime.Goexit,
	// instead of returning.
	ErrGoexit = errors.New(`thread: goroutine exited via runtime.Goexit`)

	// ErrPanic matches any PanicError, using errors.Is.
	ErrPanic = errors.New(`thread: goroutine panicked`)
)

// PanicError is the outcome captured when a function panics.
type PanicError struct {
	Value any
}

func (e PanicError) Error() string {
	return fmt.Sprintf(`thread: goroutine panicked: %v`, e.Value)
}

// Is returns true for ErrPanic.
func (e PanicError) Is(target error) bool { return target == ErrPanic }

// Unwrap returns the panic value, if it is an error.
func (e PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
