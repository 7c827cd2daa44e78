package thread

import (
	"errors"

	"github.com/joeycumines/go-threading/internal/logging"
	"github.com/joeycumines/logiface"
)

// threadOptions holds configuration options for Thread creation.
type threadOptions struct {
	logger *logiface.Logger[logiface.Event]
	name   string
}

// Option configures a Thread, or an AsyncTask.
type Option interface {
	applyThread(*threadOptions) error
}

// optionImpl implements Option.
type optionImpl struct {
	applyThreadFunc func(*threadOptions) error
}

func (o *optionImpl) applyThread(opts *threadOptions) error {
	return o.applyThreadFunc(opts)
}

// WithLogger sets the logger used to report failures of the target.
// A nil logger disables logging. Defaults to JSON on stderr, at the warning
// level.
func WithLogger(logger *logiface.Logger[logiface.Event]) Option {
	return &optionImpl{func(opts *threadOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithName sets the name the thread is identified by, in logs.
func WithName(name string) Option {
	return &optionImpl{func(opts *threadOptions) error {
		if name == `` {
			return errors.New(`thread: empty name`)
		}
		opts.name = name
		return nil
	}}
}

// resolveOptions applies Option instances to threadOptions.
func resolveOptions(opts []Option) (*threadOptions, error) {
	cfg := &threadOptions{
		logger: logging.Default(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyThread(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
