package poster

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrite_ScalesToWidth(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "frame_000000.tiff")
	dst := filepath.Join(dir, "clip.mlv.jpg")

	frame := imaging.New(1920, 1080, color.NRGBA{R: 200, G: 120, B: 40, A: 255})
	require.NoError(t, imaging.Save(frame, src))

	require.NoError(t, Write(src, dst))

	out, err := imaging.Open(dst)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(480, 270), out.Bounds().Size())
}

func TestWrite_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := Write(filepath.Join(dir, "missing.tiff"), filepath.Join(dir, "out.jpg"))
	assert.Error(t, err)
}
