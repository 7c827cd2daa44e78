package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

type (
	poolReport struct {
		Workers   int          `yaml:"workers"`
		Items     int          `yaml:"items"`
		OK        int          `yaml:"ok"`
		Failed    int          `yaml:"failed"`
		TimedOut  int          `yaml:"timed_out"`
		Elapsed   string       `yaml:"elapsed"`
		Latencies *percentiles `yaml:"latencies,omitempty"`
	}

	queueReport struct {
		Kind       string  `yaml:"kind"`
		Capacity   int     `yaml:"capacity"`
		Items      int     `yaml:"items"`
		Received   int     `yaml:"received"`
		Full       int64   `yaml:"full"`
		Empty      int64   `yaml:"empty"`
		Elapsed    string  `yaml:"elapsed"`
		Throughput float64 `yaml:"items_per_second"`
	}

	percentiles struct {
		P50 string `yaml:"p50"`
		P90 string `yaml:"p90"`
		P99 string `yaml:"p99"`
		Max string `yaml:"max"`
	}
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	okColor      = color.New(color.FgGreen)
	badColor     = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
)

func newPercentiles(latencies []time.Duration) *percentiles {
	if len(latencies) == 0 {
		return nil
	}
	latencies = slices.Clone(latencies)
	slices.Sort(latencies)
	at := func(p float64) string {
		i := int(p * float64(len(latencies)-1))
		return latencies[i].String()
	}
	return &percentiles{
		P50: at(0.5),
		P90: at(0.9),
		P99: at(0.99),
		Max: latencies[len(latencies)-1].String(),
	}
}

// configureColor applies the --color flag
func configureColor(cmd *cobra.Command) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	switch mode {
	case "auto":
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color %q (want auto|on|off)", mode)
	}
	return nil
}

func writeReport(cmd *cobra.Command, report any) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	switch format {
	case formatYAML:
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		_, err = w.Write(data)
		return err
	case formatText:
		switch report := report.(type) {
		case *poolReport:
			writePoolText(w, report)
		case *queueReport:
			writeQueueText(w, report)
		default:
			return fmt.Errorf("unsupported report: %T", report)
		}
		return nil
	default:
		return fmt.Errorf("invalid --format %q (want %s|%s)", format, formatText, formatYAML)
	}
}

func writePoolText(w io.Writer, r *poolReport) {
	_, _ = headingColor.Fprintf(w, "pool: %d workers, %d items in %s\n", r.Workers, r.Items, r.Elapsed)
	_, _ = okColor.Fprintf(w, "  ok:        %d\n", r.OK)
	_, _ = badColor.Fprintf(w, "  failed:    %d\n", r.Failed)
	_, _ = warnColor.Fprintf(w, "  timed out: %d\n", r.TimedOut)
	if r.Latencies != nil {
		_, _ = fmt.Fprintf(w, "  latency:   p50=%s p90=%s p99=%s max=%s\n", r.Latencies.P50, r.Latencies.P90, r.Latencies.P99, r.Latencies.Max)
	}
}

func writeQueueText(w io.Writer, r *queueReport) {
	_, _ = headingColor.Fprintf(w, "queue: %s, capacity %d, %d items in %s\n", r.Kind, r.Capacity, r.Items, r.Elapsed)
	_, _ = okColor.Fprintf(w, "  received:   %d (%.0f/s)\n", r.Received, r.Throughput)
	_, _ = warnColor.Fprintf(w, "  full:       %d\n", r.Full)
	_, _ = warnColor.Fprintf(w, "  empty:      %d\n", r.Empty)
}
