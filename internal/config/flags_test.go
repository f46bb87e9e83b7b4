package config

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags_PositionalPaths(t *testing.T) {
	cli, err := ParseFlags([]string{"b.mlv", "A.MLV", "c.txt"}, "test")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.mlv", "A.MLV", "c.txt"}, cli.Paths)
}

func TestParseFlags_RequiresPathsUnlessCheck(t *testing.T) {
	_, err := ParseFlags(nil, "test")
	assert.Error(t, err)

	cli, err := ParseFlags([]string{"--check"}, "test")
	require.NoError(t, err)
	cfg := DefaultConfig()
	cli.Apply(&cfg)
	assert.True(t, cfg.CheckOnly)
}

func TestApply_OnlyOverridesPassedFlags(t *testing.T) {
	cfg := DefaultConfig()
	cfg.OutputDirectory = "/from/settings"
	cfg.GenerateProxyVideo = true

	cli, err := ParseFlags([]string{"-t", "/scratch", "-w", "3", "x.mlv"}, "test")
	require.NoError(t, err)
	cli.Apply(&cfg)

	assert.Equal(t, "/from/settings", cfg.OutputDirectory, "unset flag must not clobber settings")
	assert.True(t, cfg.GenerateProxyVideo)
	assert.Equal(t, "/scratch", cfg.TemporaryWorkingDirectory)
	assert.Equal(t, 3, cfg.ConversionWorkers)
}

func TestApply_ExplicitFalseOverridesSettings(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GenerateProxyVideo = true

	cli, err := ParseFlags([]string{"--proxy=false", "x.mlv"}, "test")
	require.NoError(t, err)
	cli.Apply(&cfg)
	assert.False(t, cfg.GenerateProxyVideo)
}

func TestParseFlags_Policy(t *testing.T) {
	cli, err := ParseFlags([]string{"--policy", "ABORT", "x.mlv"}, "test")
	require.NoError(t, err)
	cfg := DefaultConfig()
	cli.Apply(&cfg)
	assert.Equal(t, PolicyAbort, cfg.FailurePolicy)

	_, err = ParseFlags([]string{"--policy", "retry", "x.mlv"}, "test")
	assert.Error(t, err)
}

func TestParseFlags_BadWorkers(t *testing.T) {
	for _, v := range []string{"0", "-2", "many"} {
		_, err := ParseFlags([]string{"--workers", v, "x.mlv"}, "test")
		assert.Error(t, err, "workers=%s", v)
	}
}

func TestApply_ColorFlags(t *testing.T) {
	cfg := DefaultConfig()
	cli, err := ParseFlags([]string{"--color", "--no-color", "x.mlv"}, "test")
	require.NoError(t, err)
	cli.Apply(&cfg)
	assert.Equal(t, ColorNever, cfg.ColorMode, "--no-color wins over --color")
}

func TestPrintUsage_MentionsEveryGroup(t *testing.T) {
	var buf bytes.Buffer
	printUsage(&buf, "1.2.3")
	out := buf.String()
	for _, want := range []string{"RawFlow v1.2.3", "Directories", "Pipeline", "Batch", "Display", "Utility", "--policy <skip|abort>"} {
		assert.True(t, strings.Contains(out, want), "usage missing %q", want)
	}
}
