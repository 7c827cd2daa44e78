package thread

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-threading"
)

// Result is the single-assignment outcome of a unit of work.
type Result[T any] struct {
	done  *threading.Event
	value T
	err   error
	set   atomic.Bool
}

// NewResult initializes an unset Result.
func NewResult[T any]() *Result[T] {
	return &Result[T]{done: threading.NewEvent()}
}

// Set assigns the outcome, and wakes any callers of Get. Only the first call
// has any effect, and returns true.
func (x *Result[T]) Set(value T, err error) bool {
	if !x.set.CompareAndSwap(false, true) {
		return false
	}
	x.value = value
	x.err = err
	x.done.Set()
	return true
}

// Get waits for the outcome, returning the value and error passed to Set.
// If the timeout elapses first, ErrTimeout is returned.
func (x *Result[T]) Get(ctx context.Context, timeout time.Duration) (value T, err error) {
	ok, err := x.done.Wait(ctx, timeout)
	if err != nil {
		return value, err
	}
	if !ok {
		return value, ErrTimeout
	}
	return x.value, x.err
}

// TryGet returns the outcome if it has been set, otherwise ErrNotReady.
func (x *Result[T]) TryGet() (value T, err error) {
	if !x.done.IsSet() {
		return value, ErrNotReady
	}
	return x.value, x.err
}

// Done returns true if the outcome has been set.
func (x *Result[T]) Done() bool {
	return x.done.IsSet()
}

// Run calls fn, capturing its outcome. A panic is captured as a PanicError,
// and a call to runtime.Goexit as ErrGoexit. In the latter case, the calling
// goroutine still exits.
func (x *Result[T]) Run(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	var completed bool
	defer func() {
		if completed {
			return
		}
		var zero T
		if r := recover(); r != nil {
			x.Set(zero, PanicError{Value: r})
		} else {
			x.Set(zero, ErrGoexit)
		}
	}()
	value, err := fn(ctx)
	completed = true
	x.Set(value, err)
}
