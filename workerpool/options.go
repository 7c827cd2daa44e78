package workerpool

import (
	"errors"
	"fmt"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/go-threading/internal/logging"
	"github.com/joeycumines/go-threading/queue"
	"github.com/joeycumines/logiface"
)

// poolOptions holds configuration options for Pool creation.
type poolOptions struct {
	logger        *logiface.Logger[logiface.Event]
	failures      *catrate.Limiter
	queueCapacity int
	batchSize     int
}

// Option configures a Pool.
type Option interface {
	applyPool(*poolOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyPoolFunc func(*poolOptions) error
}

func (o *optionImpl) applyPool(opts *poolOptions) error {
	return o.applyPoolFunc(opts)
}

// WithQueueCapacity sets the maximum number of pending submissions, after
// which Submit blocks. Defaults to queue.DefaultCapacity, if 0.
func WithQueueCapacity(capacity int) Option {
	return &optionImpl{func(opts *poolOptions) error {
		if capacity < 0 {
			return errors.New(`workerpool: negative queue capacity`)
		}
		opts.queueCapacity = capacity
		return nil
	}}
}

// WithBatchSize sets the maximum number of pending submissions a worker
// drains in one pass, before it re-checks for shutdown. Defaults to 16, if 0.
func WithBatchSize(size int) Option {
	return &optionImpl{func(opts *poolOptions) error {
		if size < 0 {
			return errors.New(`workerpool: negative batch size`)
		}
		if size != 0 {
			opts.batchSize = size
		}
		return nil
	}}
}

// WithLogger sets the logger used by the pool and its workers. A nil logger
// disables logging. Defaults to JSON on stderr, at the warning level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *poolOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithFailureLogRates limits how often panics in submitted functions are
// logged, per panic value type. See catrate.NewLimiter for the format of
// rates. An empty map disables the limit.
func WithFailureLogRates(rates map[time.Duration]int) Option {
	return &optionImpl{func(opts *poolOptions) (err error) {
		if len(rates) == 0 {
			opts.failures = nil
			return nil
		}
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf(`workerpool: %v`, r)
			}
		}()
		opts.failures = catrate.NewLimiter(rates)
		return nil
	}}
}

// resolveOptions applies Option instances to poolOptions.
func resolveOptions(opts []Option) (*poolOptions, error) {
	cfg := &poolOptions{
		logger: logging.Default(),
		failures: catrate.NewLimiter(map[time.Duration]int{
			time.Second: 5,
			time.Minute: 30,
		}),
		queueCapacity: queue.DefaultCapacity,
		batchSize:     16,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyPool(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
