// Command threadbench exercises the worker pool and queues under synthetic
// load, reporting outcome counts and latencies.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "threadbench",
		Short: "Load generator for the go-threading primitives",
		Long: `Runs producers against a worker pool or a bounded queue, and reports
what happened. Defaults may be loaded from a TOML file, using --config, and
are overridden by any flags that are set.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().String("config", "", "TOML file to load defaults from")
	cmd.PersistentFlags().String("format", formatText, "report format (text|yaml)")
	cmd.PersistentFlags().String("color", "auto", "colorize text output (auto|on|off)")
	cmd.AddCommand(newPoolCmd(), newQueueCmd())
	return cmd
}
