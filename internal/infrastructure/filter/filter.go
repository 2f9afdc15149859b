// Package filter decides which source files take part in coverage
// reports. It keeps an explicit set of files: including a directory
// adds every source file found beneath it at that moment, excluding a
// directory removes the members beneath it. Call order therefore
// matters, and a later exclude always beats an earlier include.
//
// Relative paths resolve against the base directory given with
// WithBaseDir, or the working directory when none is set.
package filter

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/speccover/internal/pathutil"
)

// Filter is a set of absolute source file paths.
type Filter struct {
	files     map[string]struct{}
	suffixes  []string
	skipTests bool
	base      string
}

// Option configures a Filter.
type Option func(*Filter)

// WithSuffixes sets which file suffixes count as source files.
func WithSuffixes(suffixes ...string) Option {
	return func(f *Filter) {
		f.suffixes = suffixes
	}
}

// WithTestFiles makes directory walks pick up _test.go files too.
func WithTestFiles() Option {
	return func(f *Filter) {
		f.skipTests = false
	}
}

// WithBaseDir resolves relative paths against dir.
func WithBaseDir(dir string) Option {
	return func(f *Filter) {
		f.base = dir
	}
}

// New returns an empty filter matching .go files, test files excluded.
func New(opts ...Option) *Filter {
	f := &Filter{
		files:     make(map[string]struct{}),
		suffixes:  []string{".go"},
		skipTests: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// IncludeDirectory adds every source file below dir. A directory that
// does not exist adds nothing.
func (f *Filter) IncludeDirectory(dir string) error {
	root, err := f.abs(dir)
	if err != nil {
		return err
	}
	if _, err := os.Stat(root); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !f.isSource(d.Name()) {
			return nil
		}
		f.files[filepath.Clean(path)] = struct{}{}
		return nil
	})
}

// ExcludeDirectory removes every included file below dir.
func (f *Filter) ExcludeDirectory(dir string) error {
	root, err := f.abs(dir)
	if err != nil {
		return err
	}
	for file := range f.files {
		if pathutil.Within(file, root) {
			delete(f.files, file)
		}
	}
	return nil
}

// IncludeFile adds a single file.
func (f *Filter) IncludeFile(file string) error {
	abs, err := f.abs(file)
	if err != nil {
		return err
	}
	f.files[abs] = struct{}{}
	return nil
}

// ExcludeFile removes a single file.
func (f *Filter) ExcludeFile(file string) error {
	abs, err := f.abs(file)
	if err != nil {
		return err
	}
	delete(f.files, abs)
	return nil
}

// IsExcluded reports whether file is outside the set.
func (f *Filter) IsExcluded(file string) bool {
	abs, err := f.abs(file)
	if err != nil {
		return true
	}
	_, ok := f.files[abs]
	return !ok
}

// IsIncluded is the negation of IsExcluded.
func (f *Filter) IsIncluded(file string) bool {
	return !f.IsExcluded(file)
}

// IsEmpty reports whether nothing has been included.
func (f *Filter) IsEmpty() bool {
	return len(f.files) == 0
}

// Files returns the included files in lexical order.
func (f *Filter) Files() []string {
	out := make([]string, 0, len(f.files))
	for file := range f.files {
		out = append(out, file)
	}
	sort.Strings(out)
	return out
}

func (f *Filter) abs(path string) (string, error) {
	return pathutil.AbsoluteFrom(f.base, path)
}

func (f *Filter) isSource(name string) bool {
	if f.skipTests && strings.HasSuffix(name, "_test.go") {
		return false
	}
	for _, suffix := range f.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
