package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawflow/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorNever
	cfg.LogFile = filepath.Join(dir, "logs", "rawflow.log")

	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	l.Info("to file %d", 42)
	l.With("run", "abc").Warn("child line")
	l.Debug("hidden unless verbose")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	content := string(b)
	assert.Contains(t, content, "INFO")
	assert.Contains(t, content, "to file 42")
	assert.Contains(t, content, "child line")
	assert.Contains(t, content, `"run": "abc"`)
	assert.NotContains(t, content, "hidden unless verbose")
	assert.NotContains(t, content, "\x1b[", "file sink must stay uncolored")
}

func TestNewLogger_VerboseWritesDebug(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.ColorMode = config.ColorAlways
	cfg.Verbose = true
	cfg.LogFile = filepath.Join(t.TempDir(), "rawflow.log")

	l, err := NewLogger(&cfg)
	require.NoError(t, err)
	l.Debug("tool args")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(cfg.LogFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "DEBUG")
	assert.Contains(t, string(b), "tool args")
}

func TestNop(t *testing.T) {
	l := NewNop()
	l.Info("ignored")
	l.Success("ignored")
	assert.NoError(t, l.Close())
}
