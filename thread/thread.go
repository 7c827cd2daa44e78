package thread

import (
	"context"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-threading"
	"github.com/joeycumines/go-threading/goroutineid"
)

// Thread runs a target function on its own goroutine, at most once.
type Thread struct {
	target  func(ctx context.Context)
	opts    *threadOptions
	ctx     context.Context
	cancel  context.CancelFunc
	done    *threading.Event
	ident   atomic.Uint64
	started atomic.Bool
}

// New initializes a Thread, which will run target once started. The target
// receives a context that is canceled by Terminate, or once it returns.
// A nil target will cause a panic.
func New(target func(ctx context.Context), opts ...Option) (*Thread, error) {
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return newThread(target, cfg), nil
}

func newThread(target func(ctx context.Context), opts *threadOptions) *Thread {
	if target == nil {
		panic(`thread: nil target`)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Thread{
		target: target,
		opts:   opts,
		ctx:    ctx,
		cancel: cancel,
		done:   threading.NewEvent(),
	}
}

// Start runs the target on a new goroutine. The goroutine's identity is
// available from Ident once Start returns. Calling Start more than once, or
// after Terminate, returns ErrAlreadyStarted.
func (x *Thread) Start() error {
	if !x.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	ready := make(chan struct{})
	go x.run(ready)
	<-ready
	return nil
}

func (x *Thread) run(ready chan<- struct{}) {
	id := goroutineid.Current()
	x.ident.Store(id)
	close(ready)

	var completed bool
	defer func() {
		if !completed {
			if r := recover(); r != nil {
				x.opts.logger.Err().
					Str(`thread`, x.opts.name).
					Uint64(`goroutine`, id).
					Any(`panic`, r).
					Str(`stack`, string(debug.Stack())).
					Log(`thread target panicked`)
			} else {
				x.opts.logger.Warning().
					Str(`thread`, x.opts.name).
					Uint64(`goroutine`, id).
					Log(`thread target called runtime.Goexit`)
			}
		}
		x.cancel()
		x.done.Set()
	}()

	x.target(x.ctx)
	completed = true
}

// Join waits for the thread to finish, returning false if the timeout
// elapsed first. See the threading package regarding timeouts.
func (x *Thread) Join(ctx context.Context, timeout time.Duration) (bool, error) {
	if !x.started.Load() {
		return false, ErrNotStarted
	}
	return x.done.Wait(ctx, timeout)
}

// Terminate cancels the target's context, and marks the thread as finished,
// without waiting for the target to return. Ident will return 0 afterwards.
// If the thread was not started, it never will be. See the package docs for
// the hazards.
func (x *Thread) Terminate() {
	x.started.Store(true)
	x.cancel()
	x.ident.Store(0)
	x.done.Set()
}

// IsRunning returns true if the thread was started, and has not finished or
// been terminated.
func (x *Thread) IsRunning() bool {
	return x.started.Load() && !x.done.IsSet()
}

// Ident returns the goroutine id of the thread, or 0 if it has not started,
// or was terminated.
func (x *Thread) Ident() uint64 {
	return x.ident.Load()
}

// Name returns the name set by WithName.
func (x *Thread) Name() string {
	return x.opts.name
}
