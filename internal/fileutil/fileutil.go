package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PartSuffix marks in-progress files. Completion checks never consider them.
const PartSuffix = ".part"

// Exists reports whether path names an existing regular file.
func Exists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// WriteAtomic streams r into path through a temporary sibling file and
// renames it into place, so a reader never observes a partially written
// target. Parent directories are created as needed. It returns the number
// of bytes written.
func WriteAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory %q: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*"+PartSuffix)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	written, err := io.Copy(tmp, r)
	if err != nil {
		return written, err
	}
	if err := tmp.Sync(); err != nil {
		return written, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return written, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return written, fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return written, fmt.Errorf("rename into place: %w", err)
	}
	committed = true
	return written, nil
}

// WriteFileAtomic is WriteAtomic for in-memory content.
func WriteFileAtomic(path string, data []byte) error {
	_, err := WriteAtomic(path, bytes.NewReader(data))
	return err
}

// RemoveIfExists deletes path, treating a missing file as success.
func RemoveIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// RemovePartials deletes in-progress siblings left behind for path by an
// interrupted WriteAtomic. It returns how many were removed.
func RemovePartials(path string) int {
	pattern := filepath.Join(filepath.Dir(path), "."+globEscape(filepath.Base(path))+".*"+PartSuffix)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return 0
	}
	removed := 0
	for _, match := range matches {
		if os.Remove(match) == nil {
			removed++
		}
	}
	return removed
}

func globEscape(s string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return replacer.Replace(s)
}
