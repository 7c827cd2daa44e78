package queue

import (
	"context"
	"errors"
	"time"

	"github.com/joeycumines/go-threading"
)

// BatchConfig models optional configuration for the GetBatch function.
type BatchConfig struct {
	// MaxSize is the absolute maximum number of values to receive. Setting
	// this to a value < 0 will disable the maximum size constraint.
	//
	// Defaults to 16, if 0.
	MaxSize int

	// MinSize is the (target) minimum number of values to receive. If
	// PartialTimeout is configured, the effective minimum size will be 1, if
	// the PartialTimeout is reached.
	//
	// Setting this to a value < 0 will cause the PartialTimeout to start from
	// the call to GetBatch, and will allow returning without receiving any
	// values. In this scenario, PartialTimeout will apply to the first value.
	//
	// Defaults to 4, if 0.
	MinSize int

	// PartialTimeout is the maximum time to wait for a partial batch, defined
	// as a number of received values less than the MinSize. After/if this
	// timeout is reached, the effective minimum size will be reduced, see
	// MinSize for details. Setting this to a value < 0 disables it.
	//
	// Defaults to 50ms, if 0.
	PartialTimeout time.Duration
}

// GetBatch performs a blocking receive on the queue, returning as many values
// as possible, given the constraints. If ctx cancels, the error will be
// returned. The cfg parameter is optional, and may be nil, in which case the
// documented defaults will be used. Values are passed to handler, in the
// order received. Errors from handler will be returned, and cause the call to
// GetBatch to return.
//
// Providing a nil ctx, q, or handler will cause a panic.
func GetBatch[T any](ctx context.Context, q *Queue[T], cfg *BatchConfig, handler func(value T) error) error {
	if ctx == nil {
		panic(`queue: nil context`)
	}
	if q == nil {
		panic(`queue: nil queue`)
	}
	if handler == nil {
		panic(`queue: nil handler`)
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	maxSize := 16
	minSize := 4
	partialTimeout := 50 * time.Millisecond
	if cfg != nil {
		if cfg.MaxSize != 0 {
			maxSize = cfg.MaxSize
		}
		if cfg.MinSize != 0 {
			minSize = cfg.MinSize
		}
		if cfg.PartialTimeout != 0 {
			partialTimeout = cfg.PartialTimeout
		}
	}

	// zero means no partial deadline (yet)
	var partialDeadline time.Time
	if partialTimeout > 0 && minSize < 0 {
		// no minimum size, so the partial timeout starts immediately
		partialDeadline = time.Now().Add(partialTimeout)
	}

	var size int

	// receive the minimum number of values (or first value) OR partial timeout OR context cancel
	for (maxSize < 0 || size < maxSize) && (size < minSize || (size == 0 && !partialDeadline.IsZero())) {
		timeout := threading.Forever
		if !partialDeadline.IsZero() {
			timeout = time.Until(partialDeadline)
			if timeout <= 0 {
				break
			}
		}

		value, err := q.Get(ctx, timeout)
		if errors.Is(err, ErrEmpty) {
			if err := ctx.Err(); err != nil {
				return err
			}
			break
		}
		if err != nil {
			return err
		}

		size++

		if size == 1 && partialTimeout > 0 && partialDeadline.IsZero() {
			partialDeadline = time.Now().Add(partialTimeout)
		}

		if err := handler(value); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	// receive what additional values we can, up to the maximum size OR context cancel
	for maxSize < 0 || size < maxSize {
		value, err := q.TryGet()
		if err != nil {
			break
		}

		size++

		if err := handler(value); err != nil {
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}

	return nil
}
