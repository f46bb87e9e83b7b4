package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"
)

// Tool names a bundled executable.
type Tool string

const (
	MLVDump Tool = "mlv_dump" // MLV container to DNG frames.
	Dcraw   Tool = "dcraw"    // DNG to TIFF.
	FFmpeg  Tool = "ffmpeg"   // TIFF sequence to proxy video.
)

// Path returns the location of tool inside dir, with the platform's
// executable suffix.
func Path(dir string, tool Tool) string {
	name := string(tool)
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, name)
}

// Invocation describes one tool run. Dir is the process working directory.
type Invocation struct {
	Tool Tool
	Dir  string
	Args []string
}

// Result holds the outcome of a single tool run.
type Result struct {
	Tool     Tool
	Args     []string
	ExitCode int // -1 when the process could not be started.
	Stderr   string
	Duration time.Duration
}

// Runner executes tool invocations. The pipeline depends on this interface
// so tests can substitute a fake.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (Result, error)
}

// ExecRunner runs bundled tools as child processes. It blocks until the
// process exits; cancelling ctx kills it.
type ExecRunner struct {
	Dir       string    // Tool directory.
	StderrTee io.Writer // Optional live copy of tool stderr (verbose mode).
}

// NewExecRunner returns a runner resolving tools inside dir.
func NewExecRunner(dir string) *ExecRunner {
	return &ExecRunner{Dir: dir}
}

// Run starts the tool without a shell, discards stdout, captures stderr, and
// waits for it to exit. A nonzero exit or start failure returns a
// *ToolError alongside the Result.
func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (Result, error) {
	res := Result{Tool: inv.Tool, Args: inv.Args, ExitCode: -1}

	path := Path(r.Dir, inv.Tool)
	if fi, err := os.Stat(path); err != nil || fi.IsDir() {
		return res, &ToolError{Result: res, Err: fmt.Errorf("%w: %s", ErrNotFound, path)}
	}

	cmd := exec.CommandContext(ctx, path, inv.Args...)
	cmd.Dir = inv.Dir
	hideWindow(cmd)

	var stderrBuf bytes.Buffer
	if r.StderrTee != nil {
		cmd.Stderr = io.MultiWriter(&stderrBuf, r.StderrTee)
	} else {
		cmd.Stderr = &stderrBuf
	}

	start := time.Now()
	err := cmd.Run()
	res.Duration = time.Since(start)
	res.Stderr = stderrBuf.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
		}
		return res, &ToolError{Result: res, Err: err}
	}
	res.ExitCode = 0
	return res, nil
}
