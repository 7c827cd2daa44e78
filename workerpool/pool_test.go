package workerpool

import (
	"bytes"
	"context"
	"errors"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/joeycumines/go-threading"
	"github.com/joeycumines/go-threading/internal/logging"
	"github.com/joeycumines/go-threading/thread"
	"github.com/joeycumines/logiface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (x *syncBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.Write(p)
}

func (x *syncBuffer) String() string {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.buf.String()
}

func TestNew_invalid(t *testing.T) {
	for _, tc := range [...]struct {
		name       string
		maxWorkers int
		opts       []Option
		err        string
	}{
		{`zero workers`, 0, nil, ErrInvalidWorkers.Error()},
		{`negative workers`, -1, nil, ErrInvalidWorkers.Error()},
		{`negative capacity`, 1, []Option{WithQueueCapacity(-1)}, `workerpool: negative queue capacity`},
		{`negative batch size`, 1, []Option{WithBatchSize(-1)}, `workerpool: negative batch size`},
		{`invalid rates`, 1, []Option{WithFailureLogRates(map[time.Duration]int{time.Second: 0})}, `workerpool: catrate: invalid rates: map[1s:0]`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := New(tc.maxWorkers, tc.opts...)
			assert.Nil(t, pool)
			assert.EqualError(t, err, tc.err)
		})
	}
}

func TestPool_Submit(t *testing.T) {
	pool, err := New(DefaultMaxWorkers)
	require.NoError(t, err)
	defer pool.Shutdown()
	assert.Equal(t, DefaultMaxWorkers, pool.MaxWorkers())

	var results []*thread.Result[int]
	for i := 0; i < 20; i++ {
		result, err := Submit(context.Background(), pool, func(ctx context.Context) (int, error) {
			return i * i, nil
		})
		require.NoError(t, err)
		results = append(results, result)
	}

	for i, result := range results {
		value, err := result.Get(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, i*i, value)
	}
	assert.LessOrEqual(t, pool.Workers(), DefaultMaxWorkers)
	assert.Zero(t, pool.Pending())
}

func TestPool_Submit_failure(t *testing.T) {
	pool, err := New(1)
	require.NoError(t, err)
	defer pool.Shutdown()

	failure := errors.New(`some failure`)
	result, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return nil, failure
	})
	require.NoError(t, err)
	_, err = result.Get(context.Background(), time.Second)
	assert.Same(t, failure, err)
}

func TestPool_maxWorkers(t *testing.T) {
	const maxWorkers = 3
	pool, err := New(maxWorkers)
	require.NoError(t, err)
	defer pool.Shutdown()

	release := make(chan struct{})
	var running atomic.Int32
	results := make([]*thread.Result[int], maxWorkers+1)
	for i := range results {
		results[i], err = Submit(context.Background(), pool, func(ctx context.Context) (int, error) {
			running.Add(1)
			defer running.Add(-1)
			<-release
			return i, nil
		})
		require.NoError(t, err)
	}

	require.Eventually(t, func() bool {
		return running.Load() == maxWorkers && pool.Pending() == 1
	}, time.Second, time.Millisecond)
	assert.Equal(t, maxWorkers, pool.Workers())

	// the last item stays queued until a slot frees
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, pool.Pending())
	assert.Equal(t, int32(maxWorkers), running.Load())

	close(release)
	for i, result := range results {
		value, err := result.Get(context.Background(), time.Second)
		require.NoError(t, err)
		assert.Equal(t, i, value)
	}
	assert.Equal(t, maxWorkers, pool.Workers())
}

func TestPool_Submit_queueFull(t *testing.T) {
	pool, err := New(1, WithQueueCapacity(1))
	require.NoError(t, err)
	defer pool.Shutdown()

	release := make(chan struct{})
	defer close(release)
	block := func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	}

	_, err = pool.Submit(context.Background(), block)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pool.Pending() == 0 }, time.Second, time.Millisecond)
	_, err = pool.Submit(context.Background(), block)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = pool.Submit(ctx, block)
	assert.Equal(t, context.DeadlineExceeded, err)
	assert.Equal(t, 1, pool.Pending())
}

func TestPool_Shutdown_blockedSubmit(t *testing.T) {
	pool, err := New(1, WithQueueCapacity(1))
	require.NoError(t, err)
	defer pool.Shutdown()

	release := make(chan struct{})
	defer close(release)
	block := func(ctx context.Context) (any, error) {
		<-release
		return nil, nil
	}

	_, err = pool.Submit(context.Background(), block)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return pool.Pending() == 0 }, time.Second, time.Millisecond)
	_, err = pool.Submit(context.Background(), block)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	submitted := make(chan error, 1)
	go func() {
		_, err := pool.Submit(ctx, block)
		submitted <- err
	}()
	time.Sleep(20 * time.Millisecond)
	select {
	case err := <-submitted:
		t.Fatalf(`expected submit to block: %v`, err)
	default:
	}

	shutdown := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(shutdown)
	}()
	select {
	case <-shutdown:
	case <-time.After(time.Second):
		t.Fatal(`shutdown blocked behind submit`)
	}
	assert.Zero(t, pool.Pending())
	assert.Zero(t, pool.Workers())

	cancel()
	select {
	case err := <-submitted:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(time.Second):
		t.Fatal(`submit did not return`)
	}
	assert.Zero(t, pool.Pending())
}

func TestPool_goexitReplacesWorker(t *testing.T) {
	var buf syncBuffer
	pool, err := New(1, WithLogger(logging.New(&buf, logiface.LevelInformational)))
	require.NoError(t, err)
	defer pool.Shutdown()

	started := make(chan struct{})
	release := make(chan struct{})
	bad, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-release
		runtime.Goexit()
		return nil, nil
	})
	require.NoError(t, err)
	<-started
	good, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return `ok`, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, pool.Pending())
	close(release)

	_, err = bad.Get(context.Background(), time.Second)
	assert.Equal(t, thread.ErrGoexit, err)

	value, err := good.Get(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, `ok`, value)
	assert.Zero(t, pool.Pending())
	require.Eventually(t, func() bool { return pool.Workers() == 1 }, time.Second, time.Millisecond)

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), `worker exited via runtime.Goexit`)
	}, time.Second, time.Millisecond)
}

func TestPool_panicContinues(t *testing.T) {
	var buf syncBuffer
	pool, err := New(1, WithLogger(logging.New(&buf, logiface.LevelInformational)))
	require.NoError(t, err)
	defer pool.Shutdown()

	bad, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		panic(`boom`)
	})
	require.NoError(t, err)
	good, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		return `ok`, nil
	})
	require.NoError(t, err)

	_, err = bad.Get(context.Background(), time.Second)
	assert.ErrorIs(t, err, thread.ErrPanic)

	value, err := good.Get(context.Background(), time.Second)
	require.NoError(t, err)
	assert.Equal(t, `ok`, value)
	assert.Equal(t, 1, pool.Workers())

	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), `work item panicked`)
	}, time.Second, time.Millisecond)
}

func TestPool_failureLogRates(t *testing.T) {
	var buf syncBuffer
	pool, err := New(1,
		WithLogger(logging.New(&buf, logiface.LevelInformational)),
		WithFailureLogRates(map[time.Duration]int{time.Hour: 2}),
	)
	require.NoError(t, err)
	defer pool.Shutdown()

	for i := 0; i < 5; i++ {
		result, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
			panic(`boom`)
		})
		require.NoError(t, err)
		_, err = result.Get(context.Background(), time.Second)
		require.ErrorIs(t, err, thread.ErrPanic)
	}
	// a non-string category is limited independently
	result, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		panic(errors.New(`boom`))
	})
	require.NoError(t, err)
	_, err = result.Get(context.Background(), time.Second)
	require.ErrorIs(t, err, thread.ErrPanic)

	require.Eventually(t, func() bool {
		return strings.Count(buf.String(), `work item panicked`) == 3
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 3, strings.Count(buf.String(), `work item panicked`))
}

func TestPool_Shutdown(t *testing.T) {
	pool, err := New(1)
	require.NoError(t, err)

	started := make(chan struct{})
	canceled := make(chan struct{})
	running, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		close(started)
		<-ctx.Done()
		close(canceled)
		return nil, ctx.Err()
	})
	require.NoError(t, err)
	pending, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) {
		t.Error(`unexpected call`)
		return nil, nil
	})
	require.NoError(t, err)
	<-started

	pool.Shutdown()
	<-canceled
	assert.Zero(t, pool.Workers())
	assert.Zero(t, pool.Pending())

	_, err = running.Get(context.Background(), time.Second)
	assert.Equal(t, context.Canceled, err)

	_, err = pending.Get(context.Background(), 30*time.Millisecond)
	assert.Equal(t, thread.ErrTimeout, err)

	// still usable
	result, err := pool.Submit(context.Background(), func(ctx context.Context) (any, error) { return 1, nil })
	require.NoError(t, err)
	value, err := result.Get(context.Background(), threading.Forever)
	require.NoError(t, err)
	assert.Equal(t, 1, value)
	pool.Shutdown()
}
