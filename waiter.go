package threading

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Waiter is a single-use gate, that starts closed. One goroutine blocks in
// [Waiter.Acquire], until the gate is opened by [Waiter.Release], a timer, or
// cancellation of the context. Exactly one of those opens the gate, the
// others become no-ops.
//
// A Waiter must not be reused, and must be initialized using NewWaiter.
type Waiter struct {
	gate chan struct{}
	// stop disarms any pending timer and context hook
	stop []func() bool
	// err records why the gate was opened, nil meaning Release
	err  error
	mu   sync.Mutex
	open bool
}

// for testing purposes
var (
	timeAfterFunc = func(d time.Duration, f func()) func() bool {
		return time.AfterFunc(d, f).Stop
	}
)

// errTimedOut is the internal reason for a timer opening the gate.
var errTimedOut = errors.New(`threading: waiter timed out`)

// NewWaiter returns a new, closed Waiter.
func NewWaiter() *Waiter {
	return &Waiter{gate: make(chan struct{})}
}

// Acquire blocks until the gate is opened, returning true if it was opened by
// Release, or false if the timeout elapsed first. If ctx was canceled first,
// the context's error is returned.
//
// The timeout must be positive, or Forever, otherwise [ErrInvalidTimeout] is
// returned without blocking.
func (x *Waiter) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	if ctx == nil {
		panic(`threading: nil context`)
	}
	if err := checkTimeout(timeout); err != nil {
		return false, err
	}

	x.mu.Lock()
	if !x.open {
		if timeout != Forever {
			x.stop = append(x.stop, timeAfterFunc(timeout, func() {
				x.release(errTimedOut)
			}))
		}
		if ctx.Done() != nil {
			x.stop = append(x.stop, context.AfterFunc(ctx, func() {
				x.release(ctx.Err())
			}))
		}
	}
	x.mu.Unlock()

	<-x.gate

	x.mu.Lock()
	for _, stop := range x.stop {
		stop()
	}
	x.stop = nil
	err := x.err
	x.mu.Unlock()

	switch err {
	case nil:
		return true, nil
	case errTimedOut:
		return false, nil
	default:
		return false, err
	}
}

// Release opens the gate, returning true if this call opened it, or false if
// it was already open, e.g. because the timeout elapsed.
func (x *Waiter) Release() bool {
	return x.release(nil)
}

func (x *Waiter) release(reason error) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.open {
		return false
	}
	x.open = true
	x.err = reason
	close(x.gate)
	return true
}
