// Package config holds runtime configuration: defaults, the settings file,
// environment overrides, CLI flag parsing, and validation. A Config is built
// once at startup and passed by pointer to the packages that need it.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// --- Enum types for validated string fields ---

// FailurePolicy decides what the batch does after a job fails.
type FailurePolicy string

const (
	PolicySkip  FailurePolicy = "skip"  // Log the failure and continue with the next file (default).
	PolicyAbort FailurePolicy = "abort" // Stop the batch at the first failed file.
)

// ColorMode controls ANSI color output.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"   // Enable colors when stdout is a TTY (default).
	ColorAlways ColorMode = "always" // Force colors on.
	ColorNever  ColorMode = "never"  // Disable colors entirely.
)

// ContainerExt is the only input extension the batch accepts (compared
// case-insensitively).
const ContainerExt = ".mlv"

// Config holds all runtime settings. Fields tagged with env are read from
// the settings file and the process environment under the exact key shown;
// the rest are CLI-only.
type Config struct {
	// Directories. Empty means "use the per-job default"; otherwise the
	// value ends with a path separator once ResolveDirectories has run.
	OutputDirectory           string `env:"OutputDirectory"`
	TemporaryWorkingDirectory string `env:"TemporaryWorkingDirectory"`
	ToolDirectory             string `env:"ToolDirectory"` // Default: directory of the running executable.

	// Pipeline stages.
	GenerateProxyVideo  bool `env:"GenerateProxyVideo"`  // Default: false.
	GeneratePosterFrame bool `env:"GeneratePosterFrame"` // Default: false. Only honored with GenerateProxyVideo.
	ConversionWorkers   int  `env:"ConversionWorkers"`   // Default: 1 (one dcraw at a time).

	// Batch behavior.
	FailurePolicy FailurePolicy `env:"FailurePolicy"` // Default: "skip".
	Recursive     bool          // Expand directory arguments into the .mlv files beneath them.

	// Reporting.
	MetricsTextfile string    `env:"MetricsTextfile"` // Optional Prometheus textfile path.
	LogFile         string    `env:"LogFile"`         // Optional log file path.
	Verbose         bool      `env:"Verbose"`
	ColorMode       ColorMode `env:"ColorMode"` // Default: "auto".
	CheckOnly       bool      // Run --check diagnostics and exit.
}

// DefaultConfig returns a Config with every optional setting at its default.
func DefaultConfig() Config {
	return Config{
		ToolDirectory:     InstallDir(),
		ConversionWorkers: 1,
		FailurePolicy:     PolicySkip,
		ColorMode:         ColorAuto,
	}
}

// InstallDir returns the directory holding the running executable. Bundled
// tools and the default settings file live here. Falls back to "." when the
// executable path cannot be determined.
func InstallDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}

// Validate checks that enum fields hold valid values and that numeric
// settings are in range.
func (c *Config) Validate() error {
	switch c.FailurePolicy {
	case PolicySkip, PolicyAbort:
		// valid
	default:
		return fmt.Errorf("invalid FailurePolicy %q (use 'skip' or 'abort')", c.FailurePolicy)
	}

	switch c.ColorMode {
	case ColorAuto, ColorAlways, ColorNever:
		// valid
	default:
		return fmt.Errorf("invalid ColorMode %q (use 'auto', 'always' or 'never')", c.ColorMode)
	}

	if c.ConversionWorkers < 1 {
		return fmt.Errorf("ConversionWorkers must be at least 1 (got %d)", c.ConversionWorkers)
	}
	if c.ToolDirectory == "" {
		return errors.New("ToolDirectory must not be empty")
	}
	return nil
}

// ResolveDirectories makes the configured directories absolute, and creates
// the output and temporary directories. Tools run with their own working
// directory, so a relative path would resolve against the wrong folder. Any
// error is a fatal configuration error.
func (c *Config) ResolveDirectories() error {
	toolDir, err := filepath.Abs(c.ToolDirectory)
	if err != nil {
		return &DirError{Key: "ToolDirectory", Path: c.ToolDirectory, Err: err}
	}
	c.ToolDirectory = toolDir

	out, err := ResolveDirectory("OutputDirectory", c.OutputDirectory)
	if err != nil {
		return err
	}
	tmp, err := ResolveDirectory("TemporaryWorkingDirectory", c.TemporaryWorkingDirectory)
	if err != nil {
		return err
	}
	c.OutputDirectory, c.TemporaryWorkingDirectory = out, tmp
	return nil
}

// DirError reports a configured directory that could not be created.
type DirError struct {
	Key  string
	Path string
	Err  error
}

func (e *DirError) Error() string {
	return fmt.Sprintf("%s %q is unusable: %v", e.Key, e.Path, e.Err)
}

func (e *DirError) Unwrap() error { return e.Err }

// ResolveDirectory turns a configured directory value into a usable path.
// An empty value stays empty so the caller can apply its own default.
// Otherwise the path is made absolute, gets a trailing separator, and is
// created along with any missing parents.
func ResolveDirectory(key, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", nil
	}
	abs, err := filepath.Abs(value)
	if err != nil {
		return "", &DirError{Key: key, Path: value, Err: err}
	}
	dir := WithTrailingSeparator(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", &DirError{Key: key, Path: dir, Err: err}
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return "", &DirError{Key: key, Path: dir, Err: err}
	}
	if !fi.IsDir() {
		return "", &DirError{Key: key, Path: dir, Err: errors.New("not a directory")}
	}
	return dir, nil
}

// WithTrailingSeparator appends the OS path separator unless path already
// ends with one. "/" also counts as a separator on Windows.
func WithTrailingSeparator(path string) string {
	if path == "" {
		return path
	}
	if strings.HasSuffix(path, string(filepath.Separator)) || strings.HasSuffix(path, "/") {
		return path
	}
	return path + string(filepath.Separator)
}
