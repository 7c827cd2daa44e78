package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/joeycumines/go-threading/thread"
	"github.com/joeycumines/go-threading/workerpool"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var errSynthetic = errors.New("synthetic failure")

func newPoolCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Submit synthetic work to a worker pool",
		Args:  cobra.NoArgs,
		RunE:  runPool,
	}
	d := defaultConfig().Pool
	flags := cmd.Flags()
	flags.Int("workers", d.Workers, "maximum number of worker threads")
	flags.Int("queue-capacity", d.QueueCapacity, "maximum number of pending items")
	flags.Int("producers", d.Producers, "number of concurrent submitters")
	flags.Int("items", d.Items, "total number of items to submit")
	flags.Duration("max-delay", d.MaxDelay, "maximum random duration of each item")
	flags.Float64("failure-ratio", d.FailureRatio, "fraction of items that fail")
	flags.Duration("result-timeout", d.ResultTimeout, "how long to wait for each result")
	return cmd
}

func runPool(cmd *cobra.Command, _ []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c := &cfg.Pool
	if err := applyFlags(cmd.Flags(), map[string]any{
		"workers":        &c.Workers,
		"queue-capacity": &c.QueueCapacity,
		"producers":      &c.Producers,
		"items":          &c.Items,
		"max-delay":      &c.MaxDelay,
		"failure-ratio":  &c.FailureRatio,
		"result-timeout": &c.ResultTimeout,
	}); err != nil {
		return err
	}
	report, err := benchPool(cmd.Context(), *c)
	if err != nil {
		return err
	}
	return writeReport(cmd, report)
}

func benchPool(ctx context.Context, cfg poolConfig) (*poolReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Producers <= 0 || cfg.Items < 0 || cfg.ResultTimeout <= 0 {
		return nil, fmt.Errorf("invalid pool config: %+v", cfg)
	}

	pool, err := workerpool.New(cfg.Workers, workerpool.WithQueueCapacity(cfg.QueueCapacity))
	if err != nil {
		return nil, err
	}
	defer pool.Shutdown()

	type submission struct {
		start  time.Time
		result *thread.Result[time.Time]
	}

	var (
		mu          sync.Mutex
		submissions = make([]submission, 0, cfg.Items)
	)

	start := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Producers; p++ {
		n := cfg.Items / cfg.Producers
		if p < cfg.Items%cfg.Producers {
			n++
		}
		g.Go(func() error {
			for i := 0; i < n; i++ {
				delay := randomDelay(cfg.MaxDelay)
				fail := rand.Float64() < cfg.FailureRatio
				submitted := time.Now()
				result, err := workerpool.Submit(gCtx, pool, func(ctx context.Context) (time.Time, error) {
					if delay > 0 {
						time.Sleep(delay)
					}
					if fail {
						return time.Time{}, errSynthetic
					}
					return time.Now(), nil
				})
				if err != nil {
					return err
				}
				mu.Lock()
				submissions = append(submissions, submission{start: submitted, result: result})
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := poolReport{
		Workers: cfg.Workers,
		Items:   len(submissions),
	}
	var latencies []time.Duration
	for _, s := range submissions {
		finished, err := s.result.Get(ctx, cfg.ResultTimeout)
		switch {
		case err == nil:
			report.OK++
			latencies = append(latencies, finished.Sub(s.start))
		case errors.Is(err, thread.ErrTimeout):
			report.TimedOut++
		case errors.Is(err, errSynthetic):
			report.Failed++
		default:
			return nil, err
		}
	}
	report.Elapsed = time.Since(start).Round(time.Microsecond).String()
	report.Latencies = newPercentiles(latencies)
	return &report, nil
}

func randomDelay(limit time.Duration) time.Duration {
	if limit <= 0 {
		return 0
	}
	return rand.N(limit)
}
