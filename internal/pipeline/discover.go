package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/backmassage/rawflow/internal/config"
	"github.com/backmassage/rawflow/internal/naming"
)

// HasContainerExt reports whether path ends in the container extension,
// compared case-insensitively.
func HasContainerExt(path string) bool {
	return strings.EqualFold(filepath.Ext(path), config.ContainerExt)
}

// Candidates returns the batch's input list in processing order: absolute
// paths sorted by byte order. With recursive set, each directory argument
// is replaced by the container files beneath it; RawFlow's own result and
// staging directories are not descended into. Other arguments pass through
// unfiltered so the batch can log why each one is skipped.
func Candidates(args []string, recursive bool) []string {
	var out []string
	for _, a := range args {
		if abs, err := filepath.Abs(a); err == nil {
			a = abs
		}
		if recursive {
			if files, ok := discover(a); ok {
				out = append(out, files...)
				continue
			}
		}
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// discover walks dir and collects container files. ok is false when dir is
// not a directory.
func discover(dir string) ([]string, bool) {
	exists, err := dirExists(dir)
	if err != nil || !exists {
		return nil, false
	}
	var files []string
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped rather than failing the batch.
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (strings.HasSuffix(name, naming.ResultSuffix) || strings.HasSuffix(name, naming.ResultSuffix+naming.StagingSuffix)) {
				return filepath.SkipDir
			}
			return nil
		}
		if HasContainerExt(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, true
}
