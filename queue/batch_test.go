package queue

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/joeycumines/go-threading"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(values ...int) *Queue[int] {
	q := New[int](0)
	for _, v := range values {
		if err := q.TryPut(v); err != nil {
			panic(err)
		}
	}
	return q
}

func TestGetBatch(t *testing.T) {
	for _, tc := range [...]struct {
		name           string
		ctx            context.Context
		cfg            *BatchConfig
		queue          func() *Queue[int]
		handler        func(value int) error
		expectedResult error
		expectedPanic  string
		expectedSize   int
	}{
		{
			name:          `nil context`,
			queue:         func() *Queue[int] { return filled() },
			handler:       func(value int) error { return nil },
			expectedPanic: `queue: nil context`,
		},
		{
			name:          `nil queue`,
			ctx:           context.Background(),
			queue:         func() *Queue[int] { return nil },
			handler:       func(value int) error { return nil },
			expectedPanic: `queue: nil queue`,
		},
		{
			name:          `nil handler`,
			ctx:           context.Background(),
			queue:         func() *Queue[int] { return filled() },
			expectedPanic: `queue: nil handler`,
		},
		{
			name: `context canceled`,
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
			queue:          func() *Queue[int] { return filled(1) },
			handler:        func(value int) error { return nil },
			expectedResult: context.Canceled,
			expectedSize:   1,
		},
		{
			name:           `handler error`,
			ctx:            context.Background(),
			queue:          func() *Queue[int] { return filled(1) },
			handler:        func(value int) error { return errors.New(`handler error`) },
			expectedResult: errors.New(`handler error`),
		},
		{
			name:         `max size exceeded`,
			ctx:          context.Background(),
			cfg:          &BatchConfig{MaxSize: 3},
			queue:        func() *Queue[int] { return filled(1, 2, 3, 4) },
			handler:      func(value int) error { return nil },
			expectedSize: 1,
		},
		{
			name:    `min size not reached`,
			ctx:     context.Background(),
			cfg:     &BatchConfig{MinSize: 2, PartialTimeout: 20 * time.Millisecond},
			queue:   func() *Queue[int] { return filled(1) },
			handler: func(value int) error { return nil },
		},
		{
			name: `partial timeout reached`,
			ctx:  context.Background(),
			cfg:  &BatchConfig{MinSize: -1, PartialTimeout: 50 * time.Millisecond},
			queue: func() *Queue[int] {
				q := filled()
				time.AfterFunc(100*time.Millisecond, func() { _ = q.TryPut(1) })
				return q
			},
			handler: func(value int) error { return nil },
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			q := tc.queue()

			var success bool
			defer func() {
				if tc.expectedPanic != `` {
					if success {
						t.Errorf("Expected panic %q, got none", tc.expectedPanic)
					} else if v := fmt.Sprint(recover()); v != tc.expectedPanic {
						t.Errorf("Expected panic %q, got %q", tc.expectedPanic, v)
					}
				} else if !success {
					t.Errorf("Expected success, got panic %v", recover())
				}
			}()

			result := GetBatch(tc.ctx, q, tc.cfg, tc.handler)

			success = true

			if tc.expectedResult == nil {
				assert.NoError(t, result)
			} else if assert.Error(t, result) {
				assert.Equal(t, tc.expectedResult.Error(), result.Error())
			}
			assert.Equal(t, tc.expectedSize, q.Size())
		})
	}
}

// drains as much as possible prior to exit
func TestGetBatch_maxSizeLoopNoMoreAvailable(t *testing.T) {
	var values []int
	err := GetBatch(context.Background(), filled(1, 2, 3), &BatchConfig{
		MaxSize:        10,
		MinSize:        -1,
		PartialTimeout: -1,
	}, func(value int) error {
		values = append(values, value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)
}

func TestGetBatch_maxSizeLoopHitMax(t *testing.T) {
	q := filled(1, 2, 3, 4)
	var values []int
	err := GetBatch(context.Background(), q, &BatchConfig{
		MaxSize:        3,
		MinSize:        -1,
		PartialTimeout: -1,
	}, func(value int) error {
		values = append(values, value)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, values)

	v, err := q.TryGet()
	require.NoError(t, err)
	assert.Equal(t, 4, v)
}

// disabling min size while using a partial timeout still waits for the first value
func TestGetBatch_waitForSingleValuePartialTimeoutNoMinSize(t *testing.T) {
	q := New[int](1)
	in := make(chan int)
	out := make(chan error)

	startTime := time.Now()

	go func() {
		out <- GetBatch(context.Background(), q, &BatchConfig{
			MaxSize:        10,
			MinSize:        -1,
			PartialTimeout: time.Second * 3,
		}, func(value int) error {
			in <- value
			return nil
		})
	}()

	time.Sleep(time.Millisecond * 30)
	select {
	case <-in:
		t.Fatal()
	case <-out:
		t.Fatal()
	default:
	}

	require.NoError(t, q.TryPut(1))

	assert.Equal(t, 1, <-in)
	require.NoError(t, <-out)
	assert.Less(t, time.Since(startTime), time.Second*2)
}

func TestGetBatch_noMinSizeOrPartialTimeoutNoValues(t *testing.T) {
	require.NoError(t, GetBatch(context.Background(), New[bool](0), &BatchConfig{
		MaxSize:        -1,
		MinSize:        -1,
		PartialTimeout: -1,
	}, func(value bool) error {
		t.Fatal(value)
		return nil
	}))
}

func TestGetBatch_minSizeNoPartialTimeout(t *testing.T) {
	q := New[float64](1)

	out := make(chan error)
	var values []float64
	go func() {
		out <- GetBatch(context.Background(), q, &BatchConfig{
			MaxSize:        -1,
			MinSize:        5,
			PartialTimeout: -1,
		}, func(value float64) error {
			values = append(values, value)
			return nil
		})
	}()

	time.Sleep(time.Millisecond * 30)

	for _, v := range [...]float64{1, 2, 3} {
		require.NoError(t, q.Put(context.Background(), v, threading.Forever))
	}

	time.Sleep(time.Millisecond * 30)

	require.NoError(t, q.Put(context.Background(), 4, threading.Forever))

	time.Sleep(time.Millisecond * 30)

	select {
	case <-out:
		t.Fatal()
	default:
	}

	require.NoError(t, q.Put(context.Background(), 5, threading.Forever))

	require.NoError(t, <-out)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, values)
}
