// Package runner orchestrates one compilation: load the tables, compile
// the scenario, report, export and update the web server.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ritzau/deflex-graph/pkg/builder"
	"github.com/ritzau/deflex-graph/pkg/config"
	"github.com/ritzau/deflex-graph/pkg/export"
	"github.com/ritzau/deflex-graph/pkg/logging"
	"github.com/ritzau/deflex-graph/pkg/output"
	"github.com/ritzau/deflex-graph/pkg/pubsub"
	"github.com/ritzau/deflex-graph/pkg/scenario"
	"github.com/ritzau/deflex-graph/pkg/web"
)

// Runner compiles scenarios one at a time
type Runner struct {
	server *web.Server // optional
	stdout io.Writer
	stderr io.Writer
	mu     sync.Mutex
}

// Options configures a single run
type Options struct {
	Config *config.Config
	Reason string // e.g. "initial compile", "table changed"

	SkipReport bool
	SkipExport bool

	// Builders override the default builders, mainly for tests
	Builders []builder.Builder
}

// New creates a runner. server may be nil.
func New(server *web.Server) *Runner {
	return &Runner{
		server: server,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
}

// SetOutput redirects the compile report and error output
func (r *Runner) SetOutput(stdout, stderr io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stdout = stdout
	r.stderr = stderr
}

// ScenarioName is the configured name, or the name of the input directory
func ScenarioName(cfg *config.Config) string {
	if cfg.Name != "" {
		return cfg.Name
	}
	if abs, err := filepath.Abs(cfg.Input); err == nil {
		return filepath.Base(abs)
	}
	return filepath.Base(cfg.Input)
}

// Run compiles the configured scenario. Errors are reported before they
// are returned.
func (r *Runner) Run(ctx context.Context, opts Options) (*scenario.Scenario, error) {
	// Lock to prevent concurrent compilation
	r.mu.Lock()
	defer r.mu.Unlock()

	cfg := opts.Config
	name := ScenarioName(cfg)
	start := time.Now()
	logger := logging.New("runner")

	logger.Info("starting compile", "scenario", name, "reason", opts.Reason)

	fail := func(err error) (*scenario.Scenario, error) {
		output.PrintCompileError(r.stderr, name, err)
		if r.server != nil {
			if perr := r.server.CompileFailed(name, err, time.Since(start)); perr != nil {
				logger.Warn("failed to publish compile status", "error", perr)
			}
		}
		return nil, err
	}

	r.publish(name, pubsub.StateLoading, "reading tables from "+cfg.Input)

	sc, err := scenario.FromCSV(name, cfg.Input)
	if err != nil {
		return fail(err)
	}
	sc.Year = cfg.Year
	sc.Debug = cfg.Debug
	sc.ExtraRegions = cfg.ExtraRegions
	sc.ShortageCost = cfg.ShortageCost
	sc.Builders = opts.Builders

	if err := sc.CheckTables(); err != nil {
		logger.Warn("tables contain NaN values", "error", err)
	}

	r.publish(name, pubsub.StateCompiling, fmt.Sprintf("compiling %d tables", len(sc.Tables)))

	if _, err := sc.Compile(ctx); err != nil {
		return fail(err)
	}
	duration := time.Since(start)

	doc, err := export.NewDocument(sc)
	if err != nil {
		return fail(err)
	}

	if !opts.SkipReport {
		output.PrintCompileReport(r.stdout, doc.Metadata, doc.Summary)
	}

	if !opts.SkipExport && cfg.Output != "" {
		if err := export.WriteFile(cfg.Output, doc); err != nil {
			return fail(err)
		}
	}

	if r.server != nil {
		if err := r.server.CompileSucceeded(sc, doc, duration); err != nil {
			logger.Warn("failed to publish compiled scenario", "error", err)
		}
	}

	logger.Info("compile complete", "scenario", name, "reason", opts.Reason, "durationMs", duration.Milliseconds())
	return sc, nil
}

func (r *Runner) publish(name, state, message string) {
	if r.server == nil {
		return
	}
	status := pubsub.CompileStatus{State: state, Scenario: name, Message: message}
	if err := r.server.PublishStatus(status); err != nil {
		logging.Warn("failed to publish compile status", "error", err)
	}
}
