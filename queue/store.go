package queue

import (
	"container/heap"
)

type (
	// store is the ordering strategy of a Queue, always accessed under the
	// queue's mutex
	store[T any] interface {
		push(value T)
		// pop is only called if len is non-zero
		pop() T
		len() int
		reset()
	}

	fifo[T any] struct {
		values []T
	}

	lifo[T any] struct {
		values []T
	}

	// priority is a binary min-heap, ordered by less
	priority[T any] struct {
		less   func(a, b T) bool
		values []T
	}
)

var (
	_ store[any]     = (*fifo[any])(nil)
	_ store[any]     = (*lifo[any])(nil)
	_ store[any]     = (*priority[any])(nil)
	_ heap.Interface = (*priority[any])(nil)
)

func (x *fifo[T]) push(value T) { x.values = append(x.values, value) }

func (x *fifo[T]) pop() (value T) {
	value = x.values[0]
	var zero T
	x.values[0] = zero
	x.values = x.values[1:]
	if len(x.values) == 0 {
		x.values = nil
	}
	return value
}

func (x *fifo[T]) len() int { return len(x.values) }

func (x *fifo[T]) reset() { x.values = nil }

func (x *lifo[T]) push(value T) { x.values = append(x.values, value) }

func (x *lifo[T]) pop() (value T) {
	last := len(x.values) - 1
	value = x.values[last]
	var zero T
	x.values[last] = zero
	x.values = x.values[:last]
	return value
}

func (x *lifo[T]) len() int { return len(x.values) }

func (x *lifo[T]) reset() {
	clear(x.values)
	x.values = x.values[:0]
}

func (x *priority[T]) push(value T) { heap.Push(x, value) }

func (x *priority[T]) pop() T { return heap.Pop(x).(T) }

func (x *priority[T]) len() int { return len(x.values) }

func (x *priority[T]) reset() {
	clear(x.values)
	x.values = x.values[:0]
}

// Len implements heap.Interface.
func (x *priority[T]) Len() int { return len(x.values) }

// Less implements heap.Interface.
func (x *priority[T]) Less(i, j int) bool { return x.less(x.values[i], x.values[j]) }

// Swap implements heap.Interface.
func (x *priority[T]) Swap(i, j int) { x.values[i], x.values[j] = x.values[j], x.values[i] }

// Push implements heap.Interface.
func (x *priority[T]) Push(value any) { x.values = append(x.values, value.(T)) }

// Pop implements heap.Interface.
func (x *priority[T]) Pop() any {
	last := len(x.values) - 1
	value := x.values[last]
	var zero T
	x.values[last] = zero
	x.values = x.values[:last]
	return value
}
