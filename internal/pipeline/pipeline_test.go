package pipeline

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Candidate tests ---

func TestCandidates_LexicographicOrder(t *testing.T) {
	dir := t.TempDir()
	got := Candidates([]string{
		filepath.Join(dir, "c.txt"),
		filepath.Join(dir, "b.mlv"),
		filepath.Join(dir, "A.MLV"),
	}, false)
	assert.Equal(t, []string{
		filepath.Join(dir, "A.MLV"),
		filepath.Join(dir, "b.mlv"),
		filepath.Join(dir, "c.txt"),
	}, got)
}

func TestCandidates_RelativeBecomeAbsolute(t *testing.T) {
	dir := t.TempDir()
	chdirForTest(t, dir)
	got := Candidates([]string{"b.mlv", filepath.Join("day1", "a.mlv")}, false)
	assert.Equal(t, []string{
		filepath.Join(dir, "b.mlv"),
		filepath.Join(dir, "day1", "a.mlv"),
	}, got)
}

func TestCandidates_RecursiveExpandsDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day2"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "day1"), 0o755))
	touch(t, filepath.Join(dir, "day2"), "M02-0001.MLV")
	touch(t, filepath.Join(dir, "day1"), "M01-0002.mlv")
	touch(t, filepath.Join(dir, "day1"), "M01-0001.mlv")
	touch(t, filepath.Join(dir, "day1"), "notes.txt")

	got := Candidates([]string{dir}, true)
	assert.Equal(t, []string{
		filepath.Join(dir, "day1", "M01-0001.mlv"),
		filepath.Join(dir, "day1", "M01-0002.mlv"),
		filepath.Join(dir, "day2", "M02-0001.MLV"),
	}, got)
}

func TestCandidates_RecursivePrunesResultDirs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mlv")
	for _, sub := range []string{"clip.mlv.RawFlow", "clip.mlv.RawFlow.partial"} {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, sub), 0o755))
		touch(t, filepath.Join(dir, sub), "copy.mlv")
	}

	got := Candidates([]string{dir}, true)
	assert.Equal(t, []string{filepath.Join(dir, "clip.mlv")}, got)
}

func TestCandidates_NonRecursiveKeepsDirectoryArgs(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "clip.mlv")
	assert.Equal(t, []string{dir}, Candidates([]string{dir}, false))
}

func TestHasContainerExt(t *testing.T) {
	assert.True(t, HasContainerExt("a.mlv"))
	assert.True(t, HasContainerExt("/x/A.MLV"))
	assert.True(t, HasContainerExt("b.Mlv"))
	assert.False(t, HasContainerExt("c.txt"))
	assert.False(t, HasContainerExt("mlv"))
	assert.False(t, HasContainerExt("clip.mlv.mp4"))
}

// --- Job lifecycle tests ---

func TestNewJob_Directories(t *testing.T) {
	src := filepath.Join("in", "clip.mlv")
	j := NewJob(src, "")
	sep := string(filepath.Separator)
	assert.Equal(t, filepath.Join("in", "clip.mlv.RawFlow")+sep, j.ResultDir)
	assert.Equal(t, filepath.Join("in", "clip.mlv.RawFlow.partial")+sep, j.StagingDir)
	assert.Equal(t, StatePending, j.State)
	assert.Len(t, j.ShortID(), 8)

	out := filepath.Join("out")
	j = NewJob(src, out+sep)
	assert.Equal(t, filepath.Join("out", "clip.mlv.RawFlow")+sep, j.ResultDir)
}

func TestJob_FullLifecycle(t *testing.T) {
	j := NewJob("clip.mlv", "")
	for _, s := range []State{
		StateResultDirChecked, StateTempPrepared, StateDNGsExtracted,
		StateProxyGenerated, StateFinalizedMoved, StateDone,
	} {
		require.NoError(t, j.advance(s))
	}
	assert.Equal(t, StateDone, j.State)
	assert.Len(t, j.History, 7)

	j.fail()
	assert.Equal(t, StateDone, j.State, "terminal states are final")
}

func TestJob_ProxyIsOptional(t *testing.T) {
	j := NewJob("clip.mlv", "")
	require.NoError(t, j.advance(StateResultDirChecked))
	require.NoError(t, j.advance(StateTempPrepared))
	require.NoError(t, j.advance(StateDNGsExtracted))
	require.NoError(t, j.advance(StateFinalizedMoved))
}

func TestJob_RejectsSkippedEdges(t *testing.T) {
	j := NewJob("clip.mlv", "")
	assert.Error(t, j.advance(StateDNGsExtracted))
	require.NoError(t, j.advance(StateSkipped))
	assert.Error(t, j.advance(StateResultDirChecked))
}

func TestJob_Fail(t *testing.T) {
	j := NewJob("clip.mlv", "")
	require.NoError(t, j.advance(StateResultDirChecked))
	j.fail()
	assert.Equal(t, StateFailed, j.State)
	assert.Equal(t, []State{StatePending, StateResultDirChecked, StateFailed}, j.History)
}

// --- File operation tests ---

func TestClearFiles_LeavesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.dng")
	touch(t, dir, "b.tiff")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "keep"), 0o755))

	n, err := clearFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"keep"}, dirNames(t, dir))
}

func TestFilesWithExt_CaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "frame_000001.DNG")
	touch(t, dir, "frame_000000.dng")
	touch(t, dir, "frame_000000.tiff")

	got, err := filesWithExt(dir, ".dng")
	require.NoError(t, err)
	assert.Equal(t, []string{"frame_000000.dng", "frame_000001.DNG"}, basenames(got))
}

func TestMoveFiles(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	touch(t, src, "frame_000000.dng")
	touch(t, src, "clip.mlv.mp4")

	n, err := moveFiles(src, dst)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Empty(t, dirNames(t, src))
	assert.Equal(t, []string{"clip.mlv.mp4", "frame_000000.dng"}, dirNames(t, dst))
}

func TestMoveFiles_RefusesToOverwrite(t *testing.T) {
	src, dst := t.TempDir(), t.TempDir()
	touch(t, src, "frame_000000.dng")
	touch(t, dst, "frame_000000.dng")

	_, err := moveFiles(src, dst)
	assert.ErrorIs(t, err, ErrDestinationExists)
	assert.Equal(t, []string{"frame_000000.dng"}, dirNames(t, src))
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "a.dng")
	require.NoError(t, os.WriteFile(from, []byte("raw"), 0o644))

	to := filepath.Join(dir, "b.dng")
	require.NoError(t, copyFile(from, to))
	data, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "raw", string(data))

	assert.Error(t, copyFile(from, to), "existing destination is not truncated")
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), make([]byte, 5), 0o644))
	n, err := dirSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(15), n)
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	ok, err := dirExists(dir)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = dirExists(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, ok)

	touch(t, dir, "file")
	ok, err = dirExists(filepath.Join(dir, "file"))
	require.NoError(t, err)
	assert.False(t, ok)
}

// --- Manifest tests ---

func TestManifest_ReadWrite(t *testing.T) {
	dir := t.TempDir()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	want := Manifest{
		RunID:         "4f1c2d9a-0000-0000-0000-000000000000",
		Source:        "/in/clip.mlv",
		SourceBytes:   1 << 20,
		Frames:        48,
		Proxy:         "clip.mlv.mp4",
		ToolDirectory: "/opt/rawflow",
		Started:       started,
		Finished:      started.Add(90 * time.Second),
	}
	require.NoError(t, WriteManifest(dir, want))

	got, err := ReadManifest(dir)
	require.NoError(t, err)
	assert.Equal(t, want.RunID, got.RunID)
	assert.Equal(t, want.Frames, got.Frames)
	assert.True(t, want.Finished.Equal(got.Finished))
	assert.Empty(t, got.Poster)
}

func TestReadManifest_Missing(t *testing.T) {
	_, err := ReadManifest(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// --- RunStats tests ---

func TestRunStats_Stopped(t *testing.T) {
	assert.False(t, (&RunStats{}).Stopped())
	assert.True(t, (&RunStats{Aborted: true}).Stopped())
	assert.True(t, (&RunStats{Interrupted: true}).Stopped())
	assert.True(t, (&RunStats{Rejected: true}).Stopped())
}

// --- Helpers ---

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

// dirNames lists the entry names directly inside dir, sorted.
func dirNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	out := []string{}
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

// chdirForTest changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
