package naming

import (
	"path/filepath"
	"strings"

	"github.com/backmassage/rawflow/internal/config"
)

const (
	ResultSuffix  = ".RawFlow"
	StagingSuffix = ".partial"
)

// ResultDir returns the result directory for source, with a trailing
// separator. An empty outputDir places it beside the source file.
func ResultDir(outputDir, source string) string {
	base := outputDir
	if base == "" {
		base = filepath.Dir(source)
	}
	return config.WithTrailingSeparator(filepath.Join(base, filepath.Base(source)+ResultSuffix))
}

// StagingDir returns the directory a job is assembled in before being
// renamed to resultDir.
func StagingDir(resultDir string) string {
	return config.WithTrailingSeparator(trimSeparator(resultDir) + StagingSuffix)
}

// SameDir reports whether a and b name the same directory, ignoring
// trailing separators and redundant path elements.
func SameDir(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

func trimSeparator(dir string) string {
	if len(dir) <= 1 {
		return dir
	}
	return strings.TrimRight(dir, `/\`)
}
