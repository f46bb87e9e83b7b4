// Package check provides system diagnostics (--check mode) and pre-batch
// dependency validation (CheckDeps) for the bundled tools.
package check

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/tools"
)

// ErrToolNotFound is returned by CheckDeps when a tool the configuration
// needs is missing from the tool directory.
var ErrToolNotFound = errors.New("bundled tool not found")

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RequiredTools lists the tools a run with cfg will invoke.
func RequiredTools(cfg *config.Config) []tools.Tool {
	req := []tools.Tool{tools.MLVDump}
	if cfg.GenerateProxyVideo {
		req = append(req, tools.Dcraw, tools.FFmpeg)
	}
	return req
}

// RunCheck runs the interactive --check flow: reports every bundled tool,
// the ffmpeg version, and the effective directories. Returns false if a
// tool the current configuration needs is missing.
func RunCheck(cfg *config.Config, log Logger) bool {
	log.Info("=== System Check ===")
	log.Info("Tool directory: %s", cfg.ToolDirectory)

	required := map[tools.Tool]bool{}
	for _, t := range RequiredTools(cfg) {
		required[t] = true
	}

	ok := true
	for _, t := range []tools.Tool{tools.MLVDump, tools.Dcraw, tools.FFmpeg} {
		path := tools.Path(cfg.ToolDirectory, t)
		if !isExecutable(path) {
			if required[t] {
				log.Error("%s: missing (%s)", t, path)
				ok = false
			} else {
				log.Warn("%s: missing (only needed with GenerateProxyVideo)", t)
			}
			continue
		}
		log.Success("%s: %s", t, path)
	}

	if v := ffmpegVersion(cfg.ToolDirectory); v != "" {
		log.Info("ffmpeg: %s", v)
	}

	log.Info("OutputDirectory: %s", orDefault(cfg.OutputDirectory, "(beside each input)"))
	log.Info("TemporaryWorkingDirectory: %s", orDefault(cfg.TemporaryWorkingDirectory, "(result directory)"))
	log.Info("GenerateProxyVideo: %t", cfg.GenerateProxyVideo)
	return ok
}

// CheckDeps is the pre-batch validation: every tool the configuration will
// invoke must exist in the tool directory.
func CheckDeps(cfg *config.Config) error {
	for _, t := range RequiredTools(cfg) {
		path := tools.Path(cfg.ToolDirectory, t)
		if !isExecutable(path) {
			return fmt.Errorf("%w: %s", ErrToolNotFound, path)
		}
	}
	return nil
}

// --- internal helpers ---

// isExecutable reports whether path is a regular file the OS will run. On
// Windows the .exe suffix already decides that; elsewhere an execute bit
// must be set.
func isExecutable(path string) bool {
	fi, err := os.Stat(path)
	if err != nil || !fi.Mode().IsRegular() {
		return false
	}
	return runtime.GOOS == "windows" || fi.Mode().Perm()&0o111 != 0
}

// ffmpegVersion returns the first line of `ffmpeg -version`, or "" when
// ffmpeg is absent or fails.
func ffmpegVersion(toolDir string) string {
	path := tools.Path(toolDir, tools.FFmpeg)
	if !isExecutable(path) {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	out, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return ""
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")
	return first
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
