package thread

import (
	"context"
	"time"
)

// AsyncTask runs a function on a fresh Thread, each time it is called.
type AsyncTask[T any] struct {
	fn   func(ctx context.Context) (T, error)
	opts *threadOptions
}

// NewAsyncTask initializes an AsyncTask. The options apply to each Thread it
// starts. A nil fn will cause a panic.
func NewAsyncTask[T any](fn func(ctx context.Context) (T, error), opts ...Option) (*AsyncTask[T], error) {
	if fn == nil {
		panic(`thread: nil async task function`)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &AsyncTask[T]{fn: fn, opts: cfg}, nil
}

// Delay starts a Thread that sleeps for d, if positive, then calls the
// function, and returns the Result it will be captured into, without
// waiting.
func (x *AsyncTask[T]) Delay(d time.Duration) *Result[T] {
	result := NewResult[T]()
	t := newThread(func(ctx context.Context) {
		if d > 0 {
			timer := time.NewTimer(d)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				var zero T
				result.Set(zero, ctx.Err())
				return
			case <-timer.C:
			}
		}
		result.Run(ctx, x.fn)
	}, x.opts)
	if err := t.Start(); err != nil {
		panic(err)
	}
	return result
}

// Call is Delay(0).
func (x *AsyncTask[T]) Call() *Result[T] {
	return x.Delay(0)
}

// Wrap returns a function that, each time it is called, runs fn with the
// given argument on a fresh Thread, and returns the Result it will be
// captured into, without waiting. The options apply to each Thread. A nil fn
// will cause a panic.
func Wrap[A, T any](fn func(ctx context.Context, arg A) (T, error), opts ...Option) (func(arg A) *Result[T], error) {
	if fn == nil {
		panic(`thread: nil async task function`)
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return func(arg A) *Result[T] {
		task := AsyncTask[T]{
			fn:   func(ctx context.Context) (T, error) { return fn(ctx, arg) },
			opts: cfg,
		}
		return task.Call()
	}, nil
}
