package pipeline

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrDestinationExists is returned when a move would overwrite a file.
var ErrDestinationExists = errors.New("destination file already exists")

// regularFiles returns the regular files directly inside dir, sorted by name.
func regularFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// filesWithExt returns the regular files in dir whose extension matches ext
// case-insensitively, sorted by name.
func filesWithExt(dir, ext string) ([]string, error) {
	all, err := regularFiles(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range all {
		if strings.EqualFold(filepath.Ext(p), ext) {
			out = append(out, p)
		}
	}
	return out, nil
}

// clearFiles deletes every regular file directly inside dir. Subdirectories
// are left alone.
func clearFiles(dir string) (int, error) {
	files, err := regularFiles(dir)
	if err != nil {
		return 0, err
	}
	for i, p := range files {
		if err := os.Remove(p); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// removeWithExt deletes the regular files in dir matching ext.
func removeWithExt(dir, ext string) (int, error) {
	files, err := filesWithExt(dir, ext)
	if err != nil {
		return 0, err
	}
	for i, p := range files {
		if err := os.Remove(p); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

// moveFiles moves every regular file directly inside src into dst, one
// file at a time. A same-named file in dst stops the move with
// ErrDestinationExists. Renames that cross filesystems fall back to
// copy-and-delete.
func moveFiles(src, dst string) (int, error) {
	files, err := regularFiles(src)
	if err != nil {
		return 0, err
	}
	for i, from := range files {
		to := filepath.Join(dst, filepath.Base(from))
		if _, err := os.Lstat(to); err == nil {
			return i, fmt.Errorf("%w: %s", ErrDestinationExists, to)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return i, err
		}
		if err := moveFile(from, to); err != nil {
			return i, err
		}
	}
	return len(files), nil
}

func moveFile(from, to string) error {
	renameErr := os.Rename(from, to)
	if renameErr == nil {
		return nil
	}
	if err := copyFile(from, to); err != nil {
		_ = os.Remove(to)
		return errors.Join(renameErr, err)
	}
	return os.Remove(from)
}

func copyFile(from, to string) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	fi, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(to, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fi.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// dirSize sums the sizes of the regular files directly inside dir.
func dirSize(dir string) (int64, error) {
	files, err := regularFiles(dir)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, p := range files {
		fi, err := os.Stat(p)
		if err != nil {
			return 0, err
		}
		total += fi.Size()
	}
	return total, nil
}

// dirExists reports whether path exists as a directory. Errors other than
// "not found" are returned so a permission problem is not mistaken for
// absence.
func dirExists(path string) (bool, error) {
	fi, err := os.Stat(path)
	if err == nil {
		return fi.IsDir(), nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}
