package queue

import (
	"context"
	"errors"
	"time"

	"github.com/joeycumines/go-threading"
	"golang.org/x/exp/constraints"
)

// DefaultCapacity is used by the constructors if the capacity is 0.
const DefaultCapacity = 100

var (
	// ErrFull is returned by Put if the queue remained full, until the
	// timeout elapsed, or by TryPut if the queue is full.
	ErrFull = errors.New(`queue: full`)

	// ErrEmpty is returned by Get if the queue remained empty, until the
	// timeout elapsed, or by TryGet if the queue is empty.
	ErrEmpty = errors.New(`queue: empty`)
)

// Queue is a bounded, blocking queue, safe for concurrent use. The order that
// values are received in depends on the constructor, see New, NewLifo, and
// NewPriority.
type Queue[T any] struct {
	mu       *threading.Mutex
	notEmpty *threading.Cond
	notFull  *threading.Cond
	store    store[T]
	capacity int
}

// New returns a first-in-first-out Queue. The capacity defaults to
// DefaultCapacity, if 0, and must not be negative.
func New[T any](capacity int) *Queue[T] {
	return newQueue[T](capacity, new(fifo[T]))
}

// NewLifo returns a last-in-first-out Queue, i.e. a stack.
// The capacity behaves as per New.
func NewLifo[T any](capacity int) *Queue[T] {
	return newQueue[T](capacity, new(lifo[T]))
}

// NewPriority returns a Queue that yields the least value first, as
// determined by less. Values that compare equal may be received in any
// order, i.e. the ordering is not stable. The capacity behaves as per New.
func NewPriority[T any](capacity int, less func(a, b T) bool) *Queue[T] {
	if less == nil {
		panic(`queue: nil less function`)
	}
	return newQueue[T](capacity, &priority[T]{less: less})
}

// NewOrdered is NewPriority, using the natural ordering of T.
func NewOrdered[T constraints.Ordered](capacity int) *Queue[T] {
	return NewPriority(capacity, func(a, b T) bool { return a < b })
}

func newQueue[T any](capacity int, store store[T]) *Queue[T] {
	if capacity < 0 {
		panic(`queue: negative capacity`)
	}
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	mu := new(threading.Mutex)
	return &Queue[T]{
		mu:       mu,
		notEmpty: threading.NewCond(mu),
		notFull:  threading.NewCond(mu),
		store:    store,
		capacity: capacity,
	}
}

// Put adds value to the queue, blocking while it is full. If the timeout
// elapses first, ErrFull is returned. If ctx is canceled, the context's error
// is returned, and the queue is unchanged, even if there was space. See the
// threading package regarding timeouts.
func (x *Queue[T]) Put(ctx context.Context, value T, timeout time.Duration) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	ok, err := x.notFull.WaitFor(ctx, x.hasSpace, timeout)
	if err != nil {
		return err
	}
	if !ok {
		return ErrFull
	}
	if err := ctx.Err(); err != nil {
		// pass the wakeup on, to another putter
		_ = x.notFull.Notify(1)
		return err
	}
	x.put(value)
	return nil
}

// TryPut adds value to the queue, if it is not full, otherwise returning
// ErrFull, without blocking.
func (x *Queue[T]) TryPut(value T) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.hasSpace() {
		return ErrFull
	}
	x.put(value)
	return nil
}

// Get removes and returns the next value, blocking while the queue is empty.
// If the timeout elapses first, ErrEmpty is returned. If ctx is canceled, the
// context's error is returned, and no value is removed.
func (x *Queue[T]) Get(ctx context.Context, timeout time.Duration) (value T, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	var ok bool
	ok, err = x.notEmpty.WaitFor(ctx, x.hasValue, timeout)
	if err != nil {
		return value, err
	}
	if !ok {
		return value, ErrEmpty
	}
	if err := ctx.Err(); err != nil {
		// pass the wakeup on, to another getter
		_ = x.notEmpty.Notify(1)
		return value, err
	}
	return x.get(), nil
}

// TryGet removes and returns the next value, if the queue is not empty,
// otherwise returning ErrEmpty, without blocking.
func (x *Queue[T]) TryGet() (value T, err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.hasValue() {
		return value, ErrEmpty
	}
	return x.get(), nil
}

// Size returns the number of values in the queue.
func (x *Queue[T]) Size() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.store.len()
}

// Cap returns the capacity of the queue.
func (x *Queue[T]) Cap() int { return x.capacity }

// Clear removes all values from the queue.
func (x *Queue[T]) Clear() {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.store.reset()
	_ = x.notFull.NotifyAll()
}

func (x *Queue[T]) hasSpace() bool { return x.store.len() < x.capacity }

func (x *Queue[T]) hasValue() bool { return x.store.len() != 0 }

// put requires x.mu
func (x *Queue[T]) put(value T) {
	x.store.push(value)
	_ = x.notEmpty.Notify(1)
}

// get requires x.mu and a value
func (x *Queue[T]) get() T {
	value := x.store.pop()
	_ = x.notFull.Notify(1)
	return value
}
