package tools

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is wrapped by ToolError when the executable is missing from
// the tool directory.
var ErrNotFound = errors.New("executable not found in tool directory")

// ToolError reports a tool that could not be started or exited nonzero.
type ToolError struct {
	Result Result
	Err    error
}

func (e *ToolError) Error() string {
	if e.Result.ExitCode > 0 {
		return fmt.Sprintf("%s exited with status %d", e.Result.Tool, e.Result.ExitCode)
	}
	return fmt.Sprintf("%s: %v", e.Result.Tool, e.Err)
}

func (e *ToolError) Unwrap() error { return e.Err }

// StderrTail returns at most n trailing non-empty lines of the tool's stderr.
func (e *ToolError) StderrTail(n int) []string {
	s := strings.TrimSpace(e.Result.Stderr)
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}
