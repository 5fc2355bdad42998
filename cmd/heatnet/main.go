// Command heatnet routes, sizes and simulates district heating networks from
// YAML scenario files.
//
//	heatnet route scenario.yaml
//	heatnet simulate --config heatnet.yaml --parallel 4 a.yaml b.yaml
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/katalvlaran/heatnet/catalog"
	"github.com/katalvlaran/heatnet/config"
	"github.com/katalvlaran/heatnet/logging"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

// options are the persistent flags shared by all commands.
type options struct {
	configPath  string
	catalogPath string
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "heatnet:", err)
		return exitError
	}

	return exitOK
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "heatnet",
		Short:         "Route, size and simulate district heating networks",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "configuration YAML (defaults are used when empty)")
	root.PersistentFlags().StringVar(&opts.catalogPath, "catalog", "", "pipe catalog YAML (built-in table when empty)")

	root.AddCommand(newRouteCmd(opts), newSimulateCmd(opts))

	return root
}

// load reads the configuration, the pipe catalog and builds the logger.
func (o *options) load(cmd *cobra.Command) (config.Config, *catalog.Catalog, *slog.Logger, error) {
	cfg := config.Default()
	if o.configPath != "" {
		f, err := os.Open(o.configPath)
		if err != nil {
			return cfg, nil, nil, err
		}
		defer f.Close()
		if cfg, err = config.Load(f); err != nil {
			return cfg, nil, nil, fmt.Errorf("%s: %w", o.configPath, err)
		}
	}

	cat := catalog.Default()
	if o.catalogPath != "" {
		f, err := os.Open(o.catalogPath)
		if err != nil {
			return cfg, nil, nil, err
		}
		defer f.Close()
		if cat, err = catalog.Decode(f); err != nil {
			return cfg, nil, nil, fmt.Errorf("%s: %w", o.catalogPath, err)
		}
	}

	log, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return cfg, nil, nil, err
	}

	return cfg, cat, log, nil
}
