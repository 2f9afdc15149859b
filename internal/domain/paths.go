package domain

// PathNormalizer maps file names found in coverage profiles to
// filesystem paths and back to display names.
type PathNormalizer interface {
	// NormalizePath converts a coverage file path to a normalized form.
	NormalizePath(file string) string
	// ToRelativePath converts a normalized path to a relative path.
	ToRelativePath(normalized string) string
}
