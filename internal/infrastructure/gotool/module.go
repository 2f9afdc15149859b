package gotool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/mod/modfile"
)

var (
	ErrModuleRootNotFound = errors.New("module root not found: no go.mod in current or parent directories")
	ErrModulePathNotFound = errors.New("module path not found in go.mod")
)

// ModuleInfo provides Go module information.
type ModuleInfo interface {
	ModuleRoot(ctx context.Context) (string, error)
	ModulePath(ctx context.Context) (string, error)
}

// ModuleResolver locates the main module for Dir (the working directory
// when empty).
type ModuleResolver struct {
	Dir string
}

func (m ModuleResolver) ModuleRoot(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "go", "env", "GOMOD")
	cmd.Dir = m.Dir
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err == nil {
		gomod := strings.TrimSpace(out.String())
		if gomod != "" && gomod != os.DevNull {
			return filepath.Dir(gomod), nil
		}
	}
	return findModuleRoot(m.Dir)
}

// findModuleRoot walks up from dir looking for go.mod. Used when the go
// command is unavailable or reports no module.
func findModuleRoot(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = cwd
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrModuleRootNotFound
		}
		dir = parent
	}
}

// ModulePath reads the module directive of the root go.mod.
func (m ModuleResolver) ModulePath(ctx context.Context) (string, error) {
	root, err := m.ModuleRoot(ctx)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(filepath.Join(root, "go.mod"))
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	path := modfile.ModulePath(data)
	if path == "" {
		return "", ErrModulePathNotFound
	}
	return path, nil
}

// CachedModuleResolver resolves once and remembers the result, errors
// included.
type CachedModuleResolver struct {
	inner ModuleInfo

	rootOnce sync.Once
	root     string
	rootErr  error

	pathOnce sync.Once
	path     string
	pathErr  error
}

func NewCachedModuleResolver(inner ModuleInfo) *CachedModuleResolver {
	return &CachedModuleResolver{inner: inner}
}

func (c *CachedModuleResolver) ModuleRoot(ctx context.Context) (string, error) {
	c.rootOnce.Do(func() {
		c.root, c.rootErr = c.inner.ModuleRoot(ctx)
	})
	return c.root, c.rootErr
}

func (c *CachedModuleResolver) ModulePath(ctx context.Context) (string, error) {
	c.pathOnce.Do(func() {
		c.path, c.pathErr = c.inner.ModulePath(ctx)
	})
	return c.path, c.pathErr
}
