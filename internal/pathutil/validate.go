// Package pathutil provides utilities for safe path handling.
package pathutil

import (
	"errors"
	"path/filepath"
	"strings"
)

var (
	ErrEmptyPath = errors.New("path is empty")
	ErrNullBytes = errors.New("path contains null bytes")
)

// ValidatePath ensures a path is usable for file operations.
// It returns the cleaned path, with symlinks resolved when the path exists.
func ValidatePath(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}

	cleaned := filepath.Clean(path)
	if strings.Contains(cleaned, "\x00") {
		return "", ErrNullBytes
	}

	realPath, err := filepath.EvalSymlinks(cleaned)
	if err != nil {
		// Not created yet; callers may be about to write it.
		return cleaned, nil
	}

	return realPath, nil
}

// Absolute validates path and makes it absolute against the working
// directory. Symlinks are left alone so that paths reported by the
// coverage runtime and paths from configuration compare equal.
func Absolute(path string) (string, error) {
	if path == "" {
		return "", ErrEmptyPath
	}
	if strings.Contains(path, "\x00") {
		return "", ErrNullBytes
	}
	return filepath.Abs(path)
}

// AbsoluteFrom is Absolute with relative paths resolved against base
// instead of the working directory. An empty base behaves like
// Absolute.
func AbsoluteFrom(base, path string) (string, error) {
	if base == "" || filepath.IsAbs(path) {
		return Absolute(path)
	}
	if path == "" {
		return "", ErrEmptyPath
	}
	return Absolute(filepath.Join(base, path))
}

// Within reports whether file is dir itself or lies below it. Both
// paths must be cleaned and of the same kind (absolute or relative).
func Within(file, dir string) bool {
	if file == dir {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(file, dir)
	}
	return strings.HasPrefix(file, dir+string(filepath.Separator))
}
