// Package pipeline orchestrates the batch: candidate ordering and filtering,
// the per-file processing state machine, and the summary report.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/display"
	"github.com/backmassage/rawflow/internal/logging"
	"github.com/backmassage/rawflow/internal/metrics"
	"github.com/backmassage/rawflow/internal/naming"
	"github.com/backmassage/rawflow/internal/tools"
)

// Run is the top-level batch entry point. It orders the input paths,
// filters out anything that is not an existing container file, processes
// the rest one at a time, and returns aggregate stats.
func Run(ctx context.Context, cfg *config.Config, log *logging.Logger, p *Processor, args []string) RunStats {
	var stats RunStats
	start := time.Now()

	files := Candidates(args, cfg.Recursive)
	stats.Total = len(files)
	claims := naming.NewClaims()
	rec := p.Metrics()

	logBatchHeader(cfg, log, &stats)

	if input, ok := tempHoldsInput(cfg, files); ok {
		log.Error("TemporaryWorkingDirectory %s contains the input %s and is emptied before each file",
			cfg.TemporaryWorkingDirectory, input)
		log.Error("Choose a scratch directory that holds no %s files", config.ContainerExt)
		stats.Rejected = true
		stats.Elapsed = time.Since(start)
		logSummary(log, &stats)
		return stats
	}

	for i, path := range files {
		stats.Current = i + 1

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			stats.Interrupted = true
			break
		}

		if !processFile(ctx, cfg, log, p, rec, claims, path, &stats) {
			break
		}
	}

	stats.Elapsed = time.Since(start)
	logSummary(log, &stats)
	return stats
}

// processFile handles one candidate: filter → claim → process. It returns
// false when the batch must stop.
func processFile(
	ctx context.Context,
	cfg *config.Config,
	log *logging.Logger,
	p *Processor,
	rec *metrics.Recorder,
	claims *naming.Claims,
	path string,
	stats *RunStats,
) bool {
	log.Info("[%d/%d] Processing %s", stats.Current, stats.Total, path)

	skip := func(format string, args ...interface{}) bool {
		log.Info(format, args...)
		stats.Skipped++
		rec.Job(metrics.OutcomeSkipped, 0)
		return true
	}

	// --- Filter ---
	if !HasContainerExt(path) {
		return skip("Skipping %s because it's not an mlv", path)
	}
	fi, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return skip("Skipping %s because it doesn't exist", path)
	case err != nil:
		return skip("Skipping %s because it can't be read: %v", path, err)
	case !fi.Mode().IsRegular():
		return skip("Skipping %s because it isn't a regular file", path)
	}

	resultDir := naming.ResultDir(cfg.OutputDirectory, path)
	if owner, ok := claims.Claim(path, resultDir); !ok {
		log.Warn("Skipping %s because %s already writes to %s", path, owner, resultDir)
		stats.Skipped++
		rec.Job(metrics.OutcomeSkipped, 0)
		return true
	}

	// --- Process ---
	job, err := p.Process(ctx, path)
	if err != nil {
		stats.Failed++
		rec.Job(metrics.OutcomeFailed, 0)
		logFailure(log, path, job, err)

		if ctx.Err() != nil {
			log.Warn("Interrupted")
			stats.Interrupted = true
			return false
		}
		if cfg.FailurePolicy == config.PolicyAbort {
			log.Error("Aborting batch (FailurePolicy=abort)")
			stats.Aborted = true
			return false
		}
		return true
	}

	if job.State == StateSkipped {
		if m, err := ReadManifest(job.ResultDir); err == nil {
			log.Debug("Completed by run %s at %s", m.RunID, m.Finished.Format(time.RFC3339))
		}
		return skip("Skipping %s because result directory already exists", path)
	}

	elapsed := job.Finished.Sub(job.Started)
	stats.Processed++
	stats.Frames += job.Frames
	stats.OutputBytes += job.OutputBytes
	rec.Job(metrics.OutcomeProcessed, elapsed)

	log.Success("%s -> %s (%d frames, %s, %s)",
		filepath.Base(path), job.ResultDir, job.Frames,
		display.FormatBytes(job.OutputBytes), display.FormatDuration(elapsed))
	return true
}

func logFailure(log *logging.Logger, path string, job *Job, err error) {
	log.Error("Failed %s: %v", path, err)

	var te *tools.ToolError
	if errors.As(err, &te) {
		if tail := te.StderrTail(20); len(tail) > 0 {
			log.Error("Last %s output:", te.Result.Tool)
			for _, l := range tail {
				log.Error("  %s", l)
			}
		}
	}
	if job != nil && job.StagingDir != "" {
		if ok, _ := dirExists(job.StagingDir); ok {
			log.Warn("Incomplete output left in %s", job.StagingDir)
		}
	}
}

// tempHoldsInput returns the first container file in files that sits
// directly inside the shared temporary directory. Every job clears that
// directory, so such an input would be deleted before its turn.
func tempHoldsInput(cfg *config.Config, files []string) (string, bool) {
	if cfg.TemporaryWorkingDirectory == "" {
		return "", false
	}
	for _, f := range files {
		if HasContainerExt(f) && naming.SameDir(filepath.Dir(f), cfg.TemporaryWorkingDirectory) {
			return f, true
		}
	}
	return "", false
}

// --- Logging helpers ---

func logBatchHeader(cfg *config.Config, log *logging.Logger, stats *RunStats) {
	log.Info("RawFlow started")
	log.Info("Found %d candidate path(s)", stats.Total)
	if cfg.OutputDirectory != "" {
		log.Info("Output: %s", cfg.OutputDirectory)
	} else {
		log.Info("Output: beside each input file")
	}
	if cfg.TemporaryWorkingDirectory != "" {
		log.Info("Temporary: %s (emptied before each file)", cfg.TemporaryWorkingDirectory)
	}
	if cfg.GenerateProxyVideo {
		log.Info("Proxy: 480px H.264 at %s fps, %d dcraw worker(s)", tools.ProxyFrameRate, cfg.ConversionWorkers)
	}
	log.Info("On failure: %s", cfg.FailurePolicy)
}

func logSummary(log *logging.Logger, stats *RunStats) {
	log.Info("==============================")
	log.Info("Done: %d processed, %d skipped, %d failed", stats.Processed, stats.Skipped, stats.Failed)
	log.Info("  Frames extracted: %d (%s)", stats.Frames, display.FormatRate(stats.Frames, stats.Elapsed))
	log.Info("  Output written: %s in %s", display.FormatBytes(stats.OutputBytes), display.FormatDuration(stats.Elapsed))
	if stats.Stopped() {
		log.Warn("  Stopped after %d of %d path(s)", stats.Current, stats.Total)
	}
	log.Info("RawFlow ended")
}
