// Package term provides terminal detection and color-mode resolution.
//
// The logger asks ColorEnabled once during startup; everything else that
// prints (summaries, usage) goes through the logger or plain stdout.
package term

import (
	"os"
	"strings"

	"github.com/backmassage/rawflow/internal/config"
)

// ColorEnabled resolves whether ANSI colors should be used based on the
// configured mode, TTY detection, and the NO_COLOR env var
// (https://no-color.org).
func ColorEnabled(mode config.ColorMode) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	default: // ColorAuto
		return IsTerminal(os.Stdout) &&
			os.Getenv("NO_COLOR") == "" &&
			strings.ToLower(os.Getenv("TERM")) != "dumb"
	}
}

// IsTerminal reports whether f is attached to a TTY (character device).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}
