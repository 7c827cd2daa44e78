package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type benchConfig struct {
	Pool  poolConfig  `toml:"pool"`
	Queue queueConfig `toml:"queue"`
}

type poolConfig struct {
	Workers       int           `toml:"workers"`
	QueueCapacity int           `toml:"queue_capacity"`
	Producers     int           `toml:"producers"`
	Items         int           `toml:"items"`
	MaxDelay      time.Duration `toml:"max_delay"`
	FailureRatio  float64       `toml:"failure_ratio"`
	ResultTimeout time.Duration `toml:"result_timeout"`
}

type queueConfig struct {
	Kind      string        `toml:"kind"`
	Capacity  int           `toml:"capacity"`
	Producers int           `toml:"producers"`
	Consumers int           `toml:"consumers"`
	Items     int           `toml:"items"`
	Timeout   time.Duration `toml:"timeout"`
}

func defaultConfig() benchConfig {
	return benchConfig{
		Pool: poolConfig{
			Workers:       4,
			QueueCapacity: 100,
			Producers:     2,
			Items:         200,
			MaxDelay:      5 * time.Millisecond,
			FailureRatio:  0.1,
			ResultTimeout: time.Second,
		},
		Queue: queueConfig{
			Kind:      queueFIFO,
			Capacity:  16,
			Producers: 2,
			Consumers: 2,
			Items:     1000,
			Timeout:   10 * time.Millisecond,
		},
	}
}

// loadConfig returns the defaults, overridden by the file named by the
// --config flag, if any
func loadConfig(cmd *cobra.Command) (benchConfig, error) {
	cfg := defaultConfig()
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return cfg, err
	}
	if path == "" {
		return cfg, nil
	}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) != 0 {
		return cfg, fmt.Errorf("%s: unknown keys: %v", path, undecoded)
	}
	return cfg, nil
}

// applyFlags copies the flags that were explicitly set onto the fields they
// are bound to
func applyFlags(flags *pflag.FlagSet, bindings map[string]any) error {
	var err error
	flags.Visit(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch dst := bindings[f.Name].(type) {
		case nil:
		case *int:
			*dst, err = flags.GetInt(f.Name)
		case *float64:
			*dst, err = flags.GetFloat64(f.Name)
		case *string:
			*dst, err = flags.GetString(f.Name)
		case *time.Duration:
			*dst, err = flags.GetDuration(f.Name)
		default:
			err = fmt.Errorf("unsupported flag binding %q: %T", f.Name, dst)
		}
	})
	return err
}
