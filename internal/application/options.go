package application

// Options is the listener configuration. A nil field means "not set":
// Merge keeps the current value for it. A non-nil field, even an empty
// one, replaces the current value wholesale.
type Options struct {
	IncludeDirs  []string
	ExcludeDirs  []string
	IncludeFiles []string
	ExcludeFiles []string
	Formats      []string
	Destinations map[string]string
	Skip         *bool
}

// DefaultOptions returns the configuration used before Configure.
func DefaultOptions() Options {
	skip := false
	return Options{
		IncludeDirs:  []string{"src", "lib"},
		ExcludeDirs:  []string{"test", "vendor", "spec"},
		IncludeFiles: []string{},
		ExcludeFiles: []string{},
		Formats:      []string{"html"},
		Destinations: map[string]string{"html": "coverage"},
		Skip:         &skip,
	}
}

// Merge returns o with every set field of override applied on top.
// The merge is shallow: Destinations is replaced, not combined.
func (o Options) Merge(override Options) Options {
	out := o.Clone()
	if override.IncludeDirs != nil {
		out.IncludeDirs = cloneStrings(override.IncludeDirs)
	}
	if override.ExcludeDirs != nil {
		out.ExcludeDirs = cloneStrings(override.ExcludeDirs)
	}
	if override.IncludeFiles != nil {
		out.IncludeFiles = cloneStrings(override.IncludeFiles)
	}
	if override.ExcludeFiles != nil {
		out.ExcludeFiles = cloneStrings(override.ExcludeFiles)
	}
	if override.Formats != nil {
		out.Formats = cloneStrings(override.Formats)
	}
	if override.Destinations != nil {
		out.Destinations = cloneMap(override.Destinations)
	}
	if override.Skip != nil {
		skip := *override.Skip
		out.Skip = &skip
	}
	return out
}

// Clone returns a deep copy.
func (o Options) Clone() Options {
	out := Options{
		IncludeDirs:  cloneStrings(o.IncludeDirs),
		ExcludeDirs:  cloneStrings(o.ExcludeDirs),
		IncludeFiles: cloneStrings(o.IncludeFiles),
		ExcludeFiles: cloneStrings(o.ExcludeFiles),
		Formats:      cloneStrings(o.Formats),
		Destinations: cloneMap(o.Destinations),
	}
	if o.Skip != nil {
		skip := *o.Skip
		out.Skip = &skip
	}
	return out
}

// SkipCoverage reports whether coverage is bypassed entirely.
func (o Options) SkipCoverage() bool {
	return o.Skip != nil && *o.Skip
}

// Destination returns the output path configured for a format.
func (o Options) Destination(format string) (string, bool) {
	dest, ok := o.Destinations[format]
	return dest, ok
}

// Bool returns a pointer to v, for setting Options.Skip.
func Bool(v bool) *bool {
	return &v
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

func cloneMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
