package threading

import (
	"context"
	"slices"
	"sync/atomic"
	"time"
)

// Cond is a condition variable, with timeouts, and strict FIFO wake order.
// Waiting goroutines are woken in the order that they began waiting.
//
// Cond must be initialized using NewCond. It must not be copied after first
// use.
type Cond struct {
	l *Mutex
	// waiters are the blocked Wait calls, oldest first, guarded by l
	waiters    []*Waiter
	numWaiters atomic.Int64
}

// NewCond returns a Cond associated with the given Mutex, or a new Mutex if
// l is nil. Multiple Cond values may share one Mutex.
func NewCond(l *Mutex) *Cond {
	if l == nil {
		l = new(Mutex)
	}
	return &Cond{l: l}
}

// Locker returns the associated Mutex.
func (x *Cond) Locker() *Mutex { return x.l }

// Lock locks the associated Mutex.
func (x *Cond) Lock() { x.l.Lock() }

// Unlock unlocks the associated Mutex.
func (x *Cond) Unlock() { x.l.Unlock() }

// Waiters returns the number of goroutines currently blocked in Wait. It is
// intended for diagnostics, and does not require holding the Mutex.
func (x *Cond) Waiters() int { return int(x.numWaiters.Load()) }

// Wait atomically unlocks the Mutex, and suspends the caller, until it is
// woken by Notify or NotifyAll, the timeout elapses, or ctx is canceled. The
// Mutex is locked again before Wait returns, on every path. The return value
// indicates whether the caller was notified.
//
// The caller must hold the Mutex, or [ErrNotOwner] is returned. Note that,
// like any condition variable, a notification does not imply the condition
// of interest holds; see also WaitFor.
func (x *Cond) Wait(ctx context.Context, timeout time.Duration) (notified bool, err error) {
	if ctx == nil {
		panic(`threading: nil context`)
	}
	if !x.l.HeldByCurrent() {
		return false, ErrNotOwner
	}
	if err := checkTimeout(timeout); err != nil {
		return false, err
	}

	waiter := NewWaiter()
	x.waiters = append(x.waiters, waiter)
	x.numWaiters.Add(1)

	x.l.Unlock()
	defer func() {
		x.l.Lock()
		if !notified {
			// timed out or canceled, and may still be enqueued
			x.remove(waiter)
		}
	}()

	return waiter.Acquire(ctx, timeout)
}

// WaitFor waits until predicate returns true, returning the last result of
// predicate, which will be false only if the timeout elapsed. The timeout is
// the total time budget, measured against a monotonic deadline, irrespective
// of how many times the caller is woken. The predicate is always evaluated
// while holding the Mutex.
//
// The same ownership and timeout rules as Wait apply.
func (x *Cond) WaitFor(ctx context.Context, predicate func() bool, timeout time.Duration) (bool, error) {
	if ctx == nil {
		panic(`threading: nil context`)
	}
	if !x.l.HeldByCurrent() {
		return false, ErrNotOwner
	}
	if err := checkTimeout(timeout); err != nil {
		return false, err
	}

	var deadline time.Time
	if timeout != Forever {
		deadline = time.Now().Add(timeout)
	}

	result := predicate()
	for !result {
		remaining := Forever
		if timeout != Forever {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				break
			}
		}
		if _, err := x.Wait(ctx, remaining); err != nil {
			return false, err
		}
		result = predicate()
	}

	return result, nil
}

// Notify wakes up to n waiting goroutines, oldest first. Waiters that have
// already timed out, but have not yet reacquired the Mutex, are skipped, and
// do not count towards n.
//
// The caller must hold the Mutex, or [ErrNotOwner] is returned. A negative n
// returns [ErrInvalidCount].
func (x *Cond) Notify(n int) error {
	if !x.l.HeldByCurrent() {
		return ErrNotOwner
	}
	if n < 0 {
		return ErrInvalidCount
	}
	x.notify(n)
	return nil
}

// NotifyAll wakes all waiting goroutines. The caller must hold the Mutex, or
// [ErrNotOwner] is returned.
func (x *Cond) NotifyAll() error {
	if !x.l.HeldByCurrent() {
		return ErrNotOwner
	}
	x.notifyAll()
	return nil
}

func (x *Cond) notify(n int) {
	for n > 0 && len(x.waiters) != 0 {
		waiter := x.waiters[0]
		x.waiters[0] = nil
		x.waiters = x.waiters[1:]
		x.numWaiters.Add(-1)
		if waiter.Release() {
			n--
		}
	}
	if len(x.waiters) == 0 {
		x.waiters = nil
	}
}

func (x *Cond) notifyAll() {
	x.notify(len(x.waiters))
}

func (x *Cond) remove(waiter *Waiter) {
	if i := slices.Index(x.waiters, waiter); i >= 0 {
		x.waiters = slices.Delete(x.waiters, i, i+1)
		x.numWaiters.Add(-1)
	}
}
