package term

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/rawflow/internal/config"
)

func TestColorEnabled_ExplicitModes(t *testing.T) {
	assert.True(t, ColorEnabled(config.ColorAlways))
	assert.False(t, ColorEnabled(config.ColorNever))
}

func TestColorEnabled_AutoHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(config.ColorAuto))
}

func TestIsTerminal_RegularFile(t *testing.T) {
	f, err := os.Create(filepath.Join(t.TempDir(), "out.txt"))
	require.NoError(t, err)
	defer f.Close()

	assert.False(t, IsTerminal(f))
	assert.False(t, IsTerminal(nil))
}
