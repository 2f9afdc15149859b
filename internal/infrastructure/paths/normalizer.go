// Package paths maps Go coverage profile file names onto the filesystem.
package paths

import (
	"path/filepath"
	"strings"

	"github.com/felixgeelhaar/speccover/internal/domain"
)

// GoModuleNormalizer normalizes import-path style profile entries
// relative to a Go module.
type GoModuleNormalizer struct {
	ModuleRoot string
	ModulePath string
}

// NewGoModuleNormalizer creates a new GoModuleNormalizer.
func NewGoModuleNormalizer(moduleRoot, modulePath string) *GoModuleNormalizer {
	return &GoModuleNormalizer{
		ModuleRoot: moduleRoot,
		ModulePath: modulePath,
	}
}

// NormalizePath converts a coverage file path to an absolute path.
func (n *GoModuleNormalizer) NormalizePath(file string) string {
	clean := filepath.Clean(filepath.FromSlash(file))
	if filepath.IsAbs(clean) {
		return clean
	}
	if n.ModulePath != "" {
		if file == n.ModulePath {
			return filepath.Clean(n.ModuleRoot)
		}
		if strings.HasPrefix(file, n.ModulePath+"/") {
			rel := strings.TrimPrefix(file, n.ModulePath+"/")
			return filepath.Join(n.ModuleRoot, filepath.FromSlash(rel))
		}
	}
	if n.ModuleRoot != "" {
		return filepath.Join(n.ModuleRoot, clean)
	}
	return clean
}

// ToRelativePath converts a normalized path to a slash-separated path
// relative to the module root. Paths outside the root are returned as is.
func (n *GoModuleNormalizer) ToRelativePath(normalized string) string {
	if n.ModuleRoot == "" {
		return filepath.ToSlash(normalized)
	}
	rel, err := filepath.Rel(n.ModuleRoot, normalized)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(normalized)
	}
	return filepath.ToSlash(rel)
}

var _ domain.PathNormalizer = (*GoModuleNormalizer)(nil)
