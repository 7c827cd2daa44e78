package threading

import (
	"context"
	"time"
)

type (
	// Semaphore is a counting semaphore. Acquire decrements the count,
	// blocking while it is zero, and Release increments it.
	// It must be initialized using NewSemaphore.
	Semaphore struct {
		cond  *Cond
		value int
	}

	// BoundedSemaphore is a Semaphore that may never be released above its
	// initial count, guarding against releasing more times than acquired.
	// It must be initialized using NewBoundedSemaphore.
	BoundedSemaphore struct {
		Semaphore
		initial int
	}
)

// NewSemaphore returns a Semaphore with the given initial count, which must
// not be negative.
func NewSemaphore(value int) *Semaphore {
	var x Semaphore
	x.init(value)
	return &x
}

// NewBoundedSemaphore returns a BoundedSemaphore with the given initial
// count, which is also the upper bound. It must not be negative.
func NewBoundedSemaphore(value int) *BoundedSemaphore {
	x := BoundedSemaphore{initial: value}
	x.init(value)
	return &x
}

func (x *Semaphore) init(value int) {
	if value < 0 {
		panic(`threading: semaphore initial value must be >= 0`)
	}
	x.cond = NewCond(nil)
	x.value = value
}

// Count returns a snapshot of the current count.
func (x *Semaphore) Count() int {
	x.cond.Lock()
	defer x.cond.Unlock()
	return x.value
}

// Acquire decrements the count, blocking while it is zero, returning false
// if the timeout elapsed first.
func (x *Semaphore) Acquire(ctx context.Context, timeout time.Duration) (bool, error) {
	if err := checkTimeout(timeout); err != nil {
		return false, err
	}
	x.cond.Lock()
	defer x.cond.Unlock()
	ok, err := x.cond.WaitFor(ctx, func() bool { return x.value > 0 }, timeout)
	if ok {
		x.value--
	}
	return ok, err
}

// TryAcquire decrements the count if it is positive, without blocking.
func (x *Semaphore) TryAcquire() bool {
	x.cond.Lock()
	defer x.cond.Unlock()
	if x.value > 0 {
		x.value--
		return true
	}
	return false
}

// Release increments the count by n, waking up to n waiting goroutines.
// It returns [ErrInvalidCount] if n < 1.
func (x *Semaphore) Release(n int) error {
	if n < 1 {
		return ErrInvalidCount
	}
	x.cond.Lock()
	defer x.cond.Unlock()
	x.release(n)
	return nil
}

func (x *Semaphore) release(n int) {
	x.value += n
	x.cond.notify(n)
}

// Clear sets the count to zero.
func (x *Semaphore) Clear() {
	x.cond.Lock()
	defer x.cond.Unlock()
	x.value = 0
}

// Initial returns the initial count, which is also the upper bound.
func (x *BoundedSemaphore) Initial() int { return x.initial }

// Release increments the count by n, waking up to n waiting goroutines.
// It returns [ErrOverRelease], without modifying the count, if the count
// would exceed the initial count, or [ErrInvalidCount] if n < 1.
func (x *BoundedSemaphore) Release(n int) error {
	if n < 1 {
		return ErrInvalidCount
	}
	x.cond.Lock()
	defer x.cond.Unlock()
	if x.value+n > x.initial {
		return ErrOverRelease
	}
	x.release(n)
	return nil
}
