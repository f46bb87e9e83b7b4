package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/logging"
	"github.com/backmassage/rawflow/internal/metrics"
	"github.com/backmassage/rawflow/internal/naming"
	"github.com/backmassage/rawflow/internal/poster"
	"github.com/backmassage/rawflow/internal/tools"
)

var (
	// ErrNoFrames is returned when mlv_dump exits cleanly but leaves no DNGs.
	ErrNoFrames = errors.New("no frames extracted")

	// ErrTempHoldsSource is returned when the shared temporary directory is
	// the source's own folder; clearing it would delete the input.
	ErrTempHoldsSource = errors.New("temporary directory contains the source file")
)

// Processor runs the per-file pipeline:
//
//	check result dir → prepare temp → extract DNGs → [proxy] → move → rename
//
// Everything is written to a staging directory that is renamed to the
// result directory only after every step succeeded.
type Processor struct {
	cfg     *config.Config
	runner  tools.Runner
	log     *logging.Logger
	metrics *metrics.Recorder
	now     func() time.Time
}

// NewProcessor wires a Processor. rec may be nil.
func NewProcessor(cfg *config.Config, runner tools.Runner, log *logging.Logger, rec *metrics.Recorder) *Processor {
	if rec == nil {
		rec = metrics.NewRecorder()
	}
	return &Processor{cfg: cfg, runner: runner, log: log, metrics: rec, now: time.Now}
}

// Metrics returns the recorder the processor reports to.
func (p *Processor) Metrics() *metrics.Recorder { return p.metrics }

// Process runs source through the pipeline. A skipped job returns with
// State == StateSkipped and a nil error. On error the job is StateFailed
// and its staging directory is left in place for inspection.
func (p *Processor) Process(ctx context.Context, source string) (*Job, error) {
	job := NewJob(source, p.cfg.OutputDirectory)
	job.Started = p.now()
	log := p.log.With("run", job.ShortID())

	if err := p.process(ctx, log, job); err != nil {
		job.fail()
		return job, err
	}
	return job, nil
}

func (p *Processor) process(ctx context.Context, log *logging.Logger, job *Job) error {
	// --- Result dir check (idempotency gate) ---
	exists, err := dirExists(job.ResultDir)
	if err != nil {
		return fmt.Errorf("check result directory: %w", err)
	}
	if exists {
		return job.advance(StateSkipped)
	}
	if err := p.prepareStaging(log, job); err != nil {
		return err
	}
	if err := job.advance(StateResultDirChecked); err != nil {
		return err
	}

	// --- Temp dir ---
	job.TempDir = job.StagingDir
	if p.cfg.TemporaryWorkingDirectory != "" {
		job.TempDir = config.WithTrailingSeparator(p.cfg.TemporaryWorkingDirectory)
	}
	if !naming.SameDir(job.TempDir, job.StagingDir) {
		if naming.SameDir(job.TempDir, filepath.Dir(job.Source)) {
			return fmt.Errorf("prepare temporary directory: %w", ErrTempHoldsSource)
		}
		n, err := clearFiles(job.TempDir)
		if err != nil {
			return fmt.Errorf("clear temporary directory: %w", err)
		}
		if n > 0 {
			log.Info("Cleared %d stale file(s) from %s", n, job.TempDir)
		}
	}
	if err := job.advance(StateTempPrepared); err != nil {
		return err
	}

	// --- Extract DNGs ---
	if err := p.extract(ctx, log, job); err != nil {
		return err
	}
	if err := job.advance(StateDNGsExtracted); err != nil {
		return err
	}

	// --- Proxy ---
	if p.cfg.GenerateProxyVideo {
		if err := p.generateProxy(ctx, log, job); err != nil {
			return err
		}
		if err := job.advance(StateProxyGenerated); err != nil {
			return err
		}
	}

	// --- Move scratch files into staging ---
	if !naming.SameDir(job.TempDir, job.StagingDir) {
		log.Info("Moving result files from temporary directory into result directory")
		if _, err := moveFiles(job.TempDir, job.StagingDir); err != nil {
			return fmt.Errorf("move results: %w", err)
		}
	}
	if err := job.advance(StateFinalizedMoved); err != nil {
		return err
	}

	return p.finalize(job)
}

// prepareStaging replaces any staging directory left by an interrupted run
// with a fresh empty one.
func (p *Processor) prepareStaging(log *logging.Logger, job *Job) error {
	stale, err := dirExists(job.StagingDir)
	if err != nil {
		return fmt.Errorf("check staging directory: %w", err)
	}
	if stale {
		log.Warn("Removing incomplete result from an earlier run: %s", job.StagingDir)
		if err := os.RemoveAll(job.StagingDir); err != nil {
			return fmt.Errorf("remove stale staging directory: %w", err)
		}
	}
	if err := os.MkdirAll(job.StagingDir, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	return nil
}

func (p *Processor) extract(ctx context.Context, log *logging.Logger, job *Job) error {
	log.Info("Extracting DNGs")
	if fi, err := os.Stat(job.Source); err == nil {
		job.SourceBytes = fi.Size()
	}

	_, err := p.run(ctx, log, tools.Invocation{
		Tool: tools.MLVDump,
		Dir:  p.cfg.ToolDirectory,
		Args: tools.ExtractArgs(job.Source, job.TempDir),
	})
	if err != nil {
		return fmt.Errorf("extract frames: %w", err)
	}

	dngs, err := filesWithExt(job.TempDir, ".dng")
	if err != nil {
		return fmt.Errorf("list frames: %w", err)
	}
	if len(dngs) == 0 {
		return fmt.Errorf("extract frames: %w", ErrNoFrames)
	}
	job.Frames = len(dngs)
	p.metrics.Frames(len(dngs))
	log.Info("Extracted %d frames", len(dngs))
	return nil
}

func (p *Processor) generateProxy(ctx context.Context, log *logging.Logger, job *Job) error {
	dngs, err := filesWithExt(job.TempDir, ".dng")
	if err != nil {
		return fmt.Errorf("list frames: %w", err)
	}

	log.Info("Generating TIFFs for proxy video")
	if err := p.convertAll(ctx, log, dngs); err != nil {
		return fmt.Errorf("convert frames: %w", err)
	}

	if p.cfg.GeneratePosterFrame {
		p.writePoster(log, job)
	}

	log.Info("Generating proxy video")
	name := tools.ProxyName(job.Source)
	if _, err := p.run(ctx, log, tools.Invocation{
		Tool: tools.FFmpeg,
		Dir:  job.TempDir,
		Args: tools.EncodeArgs(name),
	}); err != nil {
		return fmt.Errorf("encode proxy: %w", err)
	}
	job.ProxyFile = name

	log.Info("Cleaning up temporary files")
	if _, err := removeWithExt(job.TempDir, ".tiff"); err != nil {
		return fmt.Errorf("remove TIFFs: %w", err)
	}
	return nil
}

// convertAll runs dcraw once per DNG, at most ConversionWorkers at a time.
// The first failure cancels conversions that have not started yet.
func (p *Processor) convertAll(ctx context.Context, log *logging.Logger, dngs []string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ConversionWorkers)
	for _, dng := range dngs {
		dng := dng // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			_, err := p.run(gctx, log, tools.Invocation{
				Tool: tools.Dcraw,
				Dir:  p.cfg.ToolDirectory,
				Args: tools.ConvertArgs(dng),
			})
			return err
		})
	}
	return g.Wait()
}

// writePoster renders the first TIFF as a JPEG. Failures only warn: the
// poster is a convenience and the proxy video is still produced.
func (p *Processor) writePoster(log *logging.Logger, job *Job) {
	tiffs, err := filesWithExt(job.TempDir, ".tiff")
	if err != nil || len(tiffs) == 0 {
		log.Warn("No TIFF available for a poster frame")
		return
	}
	name := filepath.Base(job.Source) + ".jpg"
	if err := poster.Write(tiffs[0], filepath.Join(job.TempDir, name)); err != nil {
		log.Warn("Poster frame failed: %v", err)
		return
	}
	job.PosterFile = name
}

// finalize writes the manifest and renames staging to the result directory.
func (p *Processor) finalize(job *Job) error {
	size, err := dirSize(job.StagingDir)
	if err != nil {
		return fmt.Errorf("measure results: %w", err)
	}
	job.OutputBytes = size
	job.Finished = p.now()

	if err := WriteManifest(job.StagingDir, manifestFor(job, p.cfg.ToolDirectory)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(filepath.Clean(job.StagingDir), filepath.Clean(job.ResultDir)); err != nil {
		return fmt.Errorf("publish result directory: %w", err)
	}
	p.metrics.OutputBytes(size)
	return job.advance(StateDone)
}

// run invokes one tool and records it.
func (p *Processor) run(ctx context.Context, log *logging.Logger, inv tools.Invocation) (tools.Result, error) {
	log.Debug("%s %s", inv.Tool, strings.Join(inv.Args, " "))
	res, err := p.runner.Run(ctx, inv)
	p.metrics.ToolRun(string(inv.Tool), err == nil, res.Duration)
	return res, err
}
