package application

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/speccover/internal/domain"
)

var (
	ErrConfigNotFound      = errors.New("config not found")
	ErrConfigurationFrozen = errors.New("configuration cannot change while a suite is running")
	ErrUnknownFormat       = errors.New("unknown report format")
	ErrMissingDestination  = errors.New("no output destination configured")
)

// Filter selects which source files are reported. Calls are applied in
// order, so a later exclude removes files an earlier include added.
type Filter interface {
	IncludeDirectory(path string) error
	ExcludeDirectory(path string) error
	IncludeFile(path string) error
	ExcludeFile(path string) error
	IsExcluded(path string) bool
}

// Session exposes the coverage gathered so far.
type Session interface {
	Data(ctx context.Context) (domain.Coverage, error)
}

// Engine records coverage for one example at a time. Start and Stop are
// strictly paired and never overlap.
type Engine interface {
	Session
	Start(label string) error
	Stop() error
	Filter() Filter
}

// Console is where diagnostics and the text report go.
type Console interface {
	IsVerbose() bool
	IsDecorated() bool
	WriteLine(text string)
}

// ReportKind tells how a renderer hands back its output.
type ReportKind int

const (
	// KindFile renderers write to a destination path themselves.
	KindFile ReportKind = iota
	// KindText renderers return text for the console.
	KindText
)

func (k ReportKind) String() string {
	switch k {
	case KindText:
		return "text"
	default:
		return "file"
	}
}

// TextRenderer renders a report for the console.
type TextRenderer interface {
	Render(ctx context.Context, s Session, color bool) (string, error)
}

// FileRenderer writes a report to a file or directory.
type FileRenderer interface {
	Write(ctx context.Context, s Session, destination string) error
}

// Report pairs a format with its renderer. Exactly one of Text or File
// is set, matching Kind.
type Report struct {
	Format string
	Kind   ReportKind
	Text   TextRenderer
	File   FileRenderer
}

// RendererRegistry resolves format names to reports.
type RendererRegistry interface {
	Lookup(format string) (Report, error)
}

// TextOptions tune the text report.
type TextOptions struct {
	ShowUncoveredFiles bool
	ShowOnlySummary    bool
	LowUpperBound      float64
	HighLowerBound     float64
}

// DefaultTextOptions matches the thresholds used by the HTML report.
func DefaultTextOptions() TextOptions {
	return TextOptions{
		ShowUncoveredFiles: false,
		ShowOnlySummary:    false,
		LowUpperBound:      50,
		HighLowerBound:     90,
	}
}

// Config is everything a config file carries.
type Config struct {
	Listener Options
	Text     TextOptions
}

type ConfigLoader interface {
	Load(path string) (Config, error)
	Exists(path string) (bool, error)
}

// HistoryStore persists suite summaries.
type HistoryStore interface {
	Load() (domain.History, error)
	Save(h domain.History) error
	Append(entry domain.HistoryEntry) error
}
