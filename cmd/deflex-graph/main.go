// Command deflex-graph compiles a deflex scenario, a directory of CSV
// tables, into an energy system graph. It prints a report, optionally
// exports the graph, recompiles on table changes and serves the result
// over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/deflex-graph/pkg/config"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/runner"
	"github.com/ritzau/deflex-graph/pkg/watcher"
	"github.com/ritzau/deflex-graph/pkg/web"
)

const (
	quietPeriod = 300 * time.Millisecond
	maxWait     = 2 * time.Second
)

func main() {
	flags := pflag.NewFlagSet("deflex-graph", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	configureLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags, cfg); err != nil {
		stop()
		os.Exit(1)
	}
}

func configureLogging(cfg *config.Config) {
	if cfg.JSONLogs {
		logging.SetJSONOutput()
	}
	logging.SetLevel(cfg.LogLevel())
}

// run compiles once and then, depending on the configuration, keeps
// recompiling on changes and serving the result until ctx is canceled.
func run(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config) error {
	var server *web.Server
	serverErr := make(chan error, 1)
	if cfg.WebMode {
		server = web.NewServer(nil)
		go func() {
			err := server.Start(ctx, cfg.Port)
			if err != nil {
				logging.Error("web server failed", "error", err)
			}
			serverErr <- err
		}()
	}

	r := runner.New(server)

	_, err := r.Run(ctx, runner.Options{Config: cfg, Reason: "initial compile"})
	if !cfg.Watch && !cfg.WebMode {
		return err
	}

	if cfg.Watch {
		if err := watch(ctx, flags, cfg, r); err != nil {
			logging.Error("watching failed", "error", err)
			return err
		}
	}

	if server == nil {
		return nil
	}

	if !cfg.Watch {
		<-ctx.Done()
	}
	return <-serverErr
}

// watch recompiles whenever a table or the config file changes. Compile
// errors are reported and watching goes on.
func watch(ctx context.Context, flags *pflag.FlagSet, cfg *config.Config, r *runner.Runner) error {
	fw, err := watcher.NewFileWatcher(cfg.Input, config.DefaultFile)
	if err != nil {
		return err
	}
	if err := fw.Start(ctx); err != nil {
		return err
	}

	debouncer := watcher.NewDebouncer(fw.Events(), quietPeriod, maxWait)
	debouncer.Start(ctx)

	for batch := range debouncer.Output() {
		if ctx.Err() != nil {
			break
		}

		changes := watcher.AnalyzeChanges(batch)
		logging.Info("change detected", "reason", changes.Reason(), "files", len(changes.ChangedFiles))

		if changes.NeedConfigReload {
			reloaded, err := config.Load(flags)
			if err != nil {
				logging.Error("keeping previous configuration", "error", err)
				continue
			}
			if reloaded.Input != cfg.Input {
				logging.Warn("input directory changed, restart to watch it", "watching", cfg.Input, "configured", reloaded.Input)
			}
			configureLogging(reloaded)
			cfg = reloaded
		}

		if changes.NeedTableReload {
			// Errors are already reported
			_, _ = r.Run(ctx, runner.Options{Config: cfg, Reason: changes.Reason()})
		}
	}

	return nil
}
