// Command rawflow is the CLI entrypoint for RawFlow, the MLV batch
// processor.
//
// It loads settings, applies flags, validates configuration, and either
// runs system diagnostics (--check) or processes the given .mlv files.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/backmassage/rawflow/internal/check"
	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/logging"
	"github.com/backmassage/rawflow/internal/metrics"
	"github.com/backmassage/rawflow/internal/pipeline"
	"github.com/backmassage/rawflow/internal/tools"
)

// version and commit are injected at build time via -ldflags.
var (
	version = "1.0.0"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	// Phase 1: Bootstrap. The logger doesn't exist yet, so errors go
	// directly to stderr.
	cli, err := config.ParseFlags(os.Args[1:], version)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rawflow: %v\n", err)
		fmt.Fprintln(os.Stderr, "Try 'rawflow --help' for more information.")
		return 1
	}

	cfg := config.DefaultConfig()
	if err := config.LoadSettings(&cfg, cli.SettingsPath, os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "rawflow: %v\n", err)
		return 1
	}
	cli.Apply(&cfg)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "rawflow: %v\n", err)
		return 1
	}

	log, err := logging.NewLogger(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rawflow: %v\n", err)
		return 1
	}
	defer log.Close()

	// Phase 2: Logger available.
	log.Info("=== RawFlow v%s (%s) ===", version, commit)

	if err := cfg.ResolveDirectories(); err != nil {
		log.Error("%v", err)
		return 1
	}

	if cfg.CheckOnly {
		if !check.RunCheck(&cfg, log) {
			return 1
		}
		return 0
	}

	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		log.Error("Run 'rawflow --check' to see which tools are missing")
		return 1
	}

	// Phase 3: Signal handling. Cancelling stops the running tool and the
	// batch; the current file's staging directory is cleaned up next run.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Phase 4: Run the batch.
	runner := tools.NewExecRunner(cfg.ToolDirectory)
	if cfg.Verbose {
		runner.StderrTee = os.Stderr
	}
	rec := metrics.NewRecorder()
	proc := pipeline.NewProcessor(&cfg, runner, log, rec)
	stats := pipeline.Run(ctx, &cfg, log, proc, cli.Paths)

	if cfg.MetricsTextfile != "" {
		if err := rec.WriteTextfile(cfg.MetricsTextfile, time.Now()); err != nil {
			log.Warn("%v", err)
		}
	}

	if stats.Stopped() {
		return 1
	}
	return 0
}
