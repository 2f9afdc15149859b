// Package report renders engine coverage into the supported formats.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/felixgeelhaar/speccover/internal/application"
)

// Options are shared by all renderers.
type Options struct {
	Text application.TextOptions
	// Project names the report in HTML titles and XML headers.
	Project string
	// BadgeLabel is the left-hand text of the SVG badge.
	BadgeLabel string
	Now        func() time.Time
}

func (o Options) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o Options) project() string {
	if o.Project == "" {
		return "speccover"
	}
	return o.Project
}

// Registry maps format names to renderers.
type Registry struct {
	reports map[string]application.Report
}

// NewRegistry returns a registry holding every built-in format. Text
// options are used as given; start from application.DefaultTextOptions
// for the usual thresholds.
func NewRegistry(opts Options) *Registry {
	r := &Registry{reports: make(map[string]application.Report)}
	r.RegisterText("text", TextReport{Options: opts})
	r.RegisterFile("html", HTMLReport{Options: opts})
	r.RegisterFile("clover", CloverReport{Options: opts})
	r.RegisterFile("cobertura", CoberturaReport{Options: opts})
	r.RegisterFile("lcov", LCOVReport{})
	r.RegisterFile("profile", ProfileReport{})
	r.RegisterFile("badge", BadgeReport{Options: opts})
	r.RegisterFile("history", HistoryReport{Options: opts})
	return r
}

func (r *Registry) RegisterText(format string, renderer application.TextRenderer) {
	r.reports[format] = application.Report{Format: format, Kind: application.KindText, Text: renderer}
}

func (r *Registry) RegisterFile(format string, renderer application.FileRenderer) {
	r.reports[format] = application.Report{Format: format, Kind: application.KindFile, File: renderer}
}

func (r *Registry) Lookup(format string) (application.Report, error) {
	report, ok := r.reports[format]
	if !ok {
		return application.Report{}, fmt.Errorf("%w: %q", application.ErrUnknownFormat, format)
	}
	return report, nil
}

// Formats lists the registered format names in lexical order.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.reports))
	for format := range r.reports {
		out = append(out, format)
	}
	sort.Strings(out)
	return out
}

var _ application.RendererRegistry = (*Registry)(nil)

// createFile opens path for writing, creating parent directories.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// #nosec G304 -- destination comes from configuration
	return os.Create(path)
}

// writeFile runs render against a freshly created path and reports the
// first of the render and close errors.
func writeFile(path string, render func(f *os.File) error) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// level classifies a percentage against the configured bounds.
type level int

const (
	levelLow level = iota
	levelMedium
	levelHigh
)

func levelFor(percent float64, opts application.TextOptions) level {
	switch {
	case percent >= opts.HighLowerBound:
		return levelHigh
	case percent >= opts.LowUpperBound:
		return levelMedium
	default:
		return levelLow
	}
}

func (l level) String() string {
	switch l {
	case levelHigh:
		return "high"
	case levelMedium:
		return "medium"
	default:
		return "low"
	}
}
