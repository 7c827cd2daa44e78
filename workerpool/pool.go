package workerpool

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/joeycumines/go-threading"
	"github.com/joeycumines/go-threading/goroutineid"
	"github.com/joeycumines/go-threading/queue"
	"github.com/joeycumines/go-threading/thread"
)

// DefaultMaxWorkers is a reasonable default, for callers of New.
const DefaultMaxWorkers = 4

// ErrInvalidWorkers is returned by New if maxWorkers is not positive.
var ErrInvalidWorkers = errors.New(`workerpool: max workers must be positive`)

type (
	// Pool runs submitted functions on at most MaxWorkers threads.
	// Instances must be initialized using the New factory.
	Pool struct {
		mu         threading.Mutex
		opts       *poolOptions
		queue      *queue.Queue[*workItem]
		threads    []*thread.Thread
		maxWorkers int
		spawned    int
	}

	// workItem is a submitted function, bound to its Result
	workItem struct {
		// run calls the function, returning the captured error
		run func(ctx context.Context) error
	}
)

// New initializes a Pool, which will start at most maxWorkers threads.
func New(maxWorkers int, opts ...Option) (*Pool, error) {
	if maxWorkers <= 0 {
		return nil, ErrInvalidWorkers
	}
	cfg, err := resolveOptions(opts)
	if err != nil {
		return nil, err
	}
	return &Pool{
		opts:       cfg,
		queue:      queue.New[*workItem](cfg.queueCapacity),
		maxWorkers: maxWorkers,
	}, nil
}

// Submit is the non-generic form of the Submit function.
func (x *Pool) Submit(ctx context.Context, fn func(ctx context.Context) (any, error)) (*thread.Result[any], error) {
	return Submit(ctx, x, fn)
}

// Submit queues fn to be run by one of the pool's workers, starting a new
// worker if fewer than the maximum are running, and returns the Result that
// fn's outcome will be captured into. If the queue is full, Submit blocks
// until there is space, or ctx is canceled, without preventing Shutdown. A
// submission that completes concurrently with Shutdown is discarded, like
// any other pending submission. The context passed to fn is canceled on
// Shutdown.
func Submit[T any](ctx context.Context, pool *Pool, fn func(ctx context.Context) (T, error)) (*thread.Result[T], error) {
	if fn == nil {
		panic(`workerpool: nil function`)
	}

	result := thread.NewResult[T]()
	item := &workItem{run: func(ctx context.Context) error {
		result.Run(ctx, fn)
		_, err := result.TryGet()
		return err
	}}

	pool.mu.Lock()
	q := pool.queue
	pool.mu.Unlock()

	// may block, so the pool's mutex must not be held
	if err := q.Put(ctx, item, threading.Forever); err != nil {
		return nil, err
	}

	pool.mu.Lock()
	defer pool.mu.Unlock()

	if q != pool.queue {
		// discarded by a concurrent Shutdown
		return result, nil
	}

	pool.prune()
	if len(pool.threads) < pool.maxWorkers {
		if err := pool.spawn(); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// Shutdown terminates every worker, and discards all pending submissions,
// whose Results will never resolve. Functions already running have their
// context canceled, but are not waited for. The pool may still be used,
// afterwards.
func (x *Pool) Shutdown() {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, t := range x.threads {
		t.Terminate()
	}
	x.threads = nil
	x.queue = queue.New[*workItem](x.queue.Cap())
	x.opts.logger.Debug().Log(`worker pool shut down`)
}

// Workers returns the number of running worker threads.
func (x *Pool) Workers() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.prune()
	return len(x.threads)
}

// Pending returns the number of submissions not yet picked up by a worker.
func (x *Pool) Pending() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.queue.Size()
}

// MaxWorkers returns the maximum number of worker threads.
func (x *Pool) MaxWorkers() int { return x.maxWorkers }

// prune removes threads that have finished, requires x.mu
func (x *Pool) prune() {
	x.threads = slices.DeleteFunc(x.threads, func(t *thread.Thread) bool {
		return !t.IsRunning()
	})
}

// spawn requires x.mu
func (x *Pool) spawn() error {
	t, err := thread.New(
		x.worker(x.queue),
		thread.WithLogger(x.opts.logger),
		thread.WithName(fmt.Sprintf(`workerpool-%d`, x.spawned)),
	)
	if err != nil {
		return err
	}
	if err := t.Start(); err != nil {
		return err
	}
	x.spawned++
	x.threads = append(x.threads, t)
	return nil
}

func (x *Pool) worker(q *queue.Queue[*workItem]) func(ctx context.Context) {
	cfg := queue.BatchConfig{
		MaxSize:        x.opts.batchSize,
		MinSize:        1,
		PartialTimeout: -1,
	}
	return func(ctx context.Context) {
		var completed bool
		defer func() {
			if !completed {
				x.replace(goroutineid.Current(), q)
			}
		}()
		for {
			if err := queue.GetBatch(ctx, q, &cfg, func(item *workItem) error {
				if err := item.run(ctx); err != nil {
					x.failed(err)
				}
				return nil
			}); err != nil {
				completed = true
				return
			}
		}
	}
}

// replace is called by a worker (identified by its goroutine id) that is
// exiting abnormally, i.e. an item called runtime.Goexit, and starts another
// worker if q still has pending items
func (x *Pool) replace(id uint64, q *queue.Queue[*workItem]) {
	x.mu.Lock()
	defer x.mu.Unlock()

	x.opts.logger.Warning().
		Uint64(`goroutine`, id).
		Log(`worker exited via runtime.Goexit`)

	x.threads = slices.DeleteFunc(x.threads, func(t *thread.Thread) bool {
		return t.Ident() == id
	})

	if q != x.queue || q.Size() == 0 {
		// shut down, or the next Submit will start a worker as required
		return
	}

	x.prune()
	if len(x.threads) < x.maxWorkers {
		if err := x.spawn(); err != nil {
			x.opts.logger.Err().
				Err(err).
				Log(`failed to replace worker`)
		}
	}
}

// failed logs panics captured from submitted functions, subject to the
// failure log rates
func (x *Pool) failed(err error) {
	var panicErr thread.PanicError
	if !errors.As(err, &panicErr) {
		return
	}
	category := fmt.Sprintf(`%T`, panicErr.Value)
	if _, ok := x.opts.failures.Allow(category); !ok {
		return
	}
	x.opts.logger.Err().
		Str(`category`, category).
		Err(err).
		Log(`work item panicked`)
}
