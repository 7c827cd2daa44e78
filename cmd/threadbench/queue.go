package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-threading/queue"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const (
	queueFIFO     = "fifo"
	queueLIFO     = "lifo"
	queuePriority = "priority"
)

func newQueueCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Run producers and consumers over a bounded queue",
		Args:  cobra.NoArgs,
		RunE:  runQueue,
	}
	d := defaultConfig().Queue
	flags := cmd.Flags()
	flags.String("kind", d.Kind, "queue ordering (fifo|lifo|priority)")
	flags.Int("capacity", d.Capacity, "queue capacity")
	flags.Int("producers", d.Producers, "number of concurrent producers")
	flags.Int("consumers", d.Consumers, "number of concurrent consumers")
	flags.Int("items", d.Items, "total number of items to produce")
	flags.Duration("timeout", d.Timeout, "timeout of each put and get")
	return cmd
}

func runQueue(cmd *cobra.Command, _ []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c := &cfg.Queue
	if err := applyFlags(cmd.Flags(), map[string]any{
		"kind":      &c.Kind,
		"capacity":  &c.Capacity,
		"producers": &c.Producers,
		"consumers": &c.Consumers,
		"items":     &c.Items,
		"timeout":   &c.Timeout,
	}); err != nil {
		return err
	}
	report, err := benchQueue(cmd.Context(), *c)
	if err != nil {
		return err
	}
	return writeReport(cmd, report)
}

func newBenchQueue(kind string, capacity int) (*queue.Queue[int], error) {
	switch kind {
	case queueFIFO:
		return queue.New[int](capacity), nil
	case queueLIFO:
		return queue.NewLifo[int](capacity), nil
	case queuePriority:
		return queue.NewOrdered[int](capacity), nil
	default:
		return nil, fmt.Errorf("invalid queue kind %q (want %s|%s|%s)", kind, queueFIFO, queueLIFO, queuePriority)
	}
}

func benchQueue(ctx context.Context, cfg queueConfig) (*queueReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Producers <= 0 || cfg.Consumers <= 0 || cfg.Items < 0 || cfg.Capacity < 0 || cfg.Timeout <= 0 {
		return nil, fmt.Errorf("invalid queue config: %+v", cfg)
	}
	q, err := newBenchQueue(cfg.Kind, cfg.Capacity)
	if err != nil {
		return nil, err
	}

	var full, empty, produced, received atomic.Int64
	total := int64(cfg.Items)

	start := time.Now()

	g, gCtx := errgroup.WithContext(ctx)
	for p := 0; p < cfg.Producers; p++ {
		g.Go(func() error {
			for produced.Add(1) <= total {
				value := rand.IntN(1 << 16)
				for {
					err := q.Put(gCtx, value, cfg.Timeout)
					if errors.Is(err, queue.ErrFull) {
						full.Add(1)
						continue
					}
					if err != nil {
						return err
					}
					break
				}
			}
			return nil
		})
	}
	for c := 0; c < cfg.Consumers; c++ {
		g.Go(func() error {
			for received.Load() < total {
				_, err := q.Get(gCtx, cfg.Timeout)
				if errors.Is(err, queue.ErrEmpty) {
					empty.Add(1)
					continue
				}
				if err != nil {
					return err
				}
				received.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	report := queueReport{
		Kind:     cfg.Kind,
		Capacity: q.Cap(),
		Items:    cfg.Items,
		Received: int(received.Load()),
		Full:     full.Load(),
		Empty:    empty.Load(),
		Elapsed:  elapsed.Round(time.Microsecond).String(),
	}
	if elapsed > 0 {
		report.Throughput = float64(report.Received) / elapsed.Seconds()
	}
	return &report, nil
}
