// Package service runs the coverage listener outside a test runner.
package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/bootstrap"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/events"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/console"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/history"
)

// ReportOptions drive one listener lifecycle over a coverprofile.
type ReportOptions struct {
	// Out receives console output. Nil uses the service's writer.
	Out        io.Writer
	ConfigPath string
	Profile    string
	Label      string
	Verbose    bool
	NoCoverage bool
}

type FilterOptions struct {
	ConfigPath string
	Paths      []string
}

// FilterResult tells whether a path survives the configured filter.
type FilterResult struct {
	Path     string
	Included bool
}

// Service is what the commands need from the coverage machinery.
type Service interface {
	Report(ctx context.Context, opts ReportOptions) error
	Filter(ctx context.Context, opts FilterOptions) ([]FilterResult, bool, error)
	History(ctx context.Context, path string) (domain.History, error)
}

type coverageService struct {
	out    io.Writer
	logger *log.Logger
	extra  []bootstrap.Option
}

// New returns the Service used by the speccover binary. Extra
// bootstrap options apply to every run.
func New(out io.Writer, logger *log.Logger, extra ...bootstrap.Option) Service {
	return &coverageService{out: out, logger: logger, extra: extra}
}

func (s *coverageService) build(ctx context.Context, configPath string, out io.Writer, verbose bool, opts ...bootstrap.Option) (*bootstrap.Result, error) {
	if out == nil {
		out = s.out
	}
	base := []bootstrap.Option{
		bootstrap.WithConfigFile(configPath),
		bootstrap.WithLogger(s.logger),
		bootstrap.WithConsole(&console.Console{Out: out, Verbose: verbose}),
	}
	base = append(base, s.extra...)
	return bootstrap.Build(ctx, append(base, opts...)...)
}

// Report replays the profile as a single example and renders every
// configured format.
func (s *coverageService) Report(ctx context.Context, opts ReportOptions) error {
	extra := []bootstrap.Option{bootstrap.WithDriver(engine.ProfileDriver{Path: opts.Profile})}
	if opts.NoCoverage {
		extra = append(extra, bootstrap.WithOptions(application.Options{Skip: application.Bool(true)}))
	}
	res, err := s.build(ctx, opts.ConfigPath, opts.Out, opts.Verbose, extra...)
	if err != nil {
		return err
	}

	label := opts.Label
	if label == "" {
		label = "report"
	}
	example := &events.Example{Spec: filepath.ToSlash(opts.Profile), Name: label}
	for _, e := range []events.Event{
		{Name: events.BeforeSuite},
		{Name: events.BeforeExample, Example: example},
		{Name: events.AfterExample, Example: example},
		{Name: events.AfterSuite},
	} {
		if err := res.Dispatcher.Dispatch(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Filter applies the configured include and exclude lists and checks
// each path against them. The bool result is false when coverage is
// skipped and no filter applies.
func (s *coverageService) Filter(ctx context.Context, opts FilterOptions) ([]FilterResult, bool, error) {
	res, err := s.build(ctx, opts.ConfigPath, io.Discard, false, bootstrap.WithDriver(engine.ProfileDriver{}))
	if err != nil {
		return nil, false, err
	}
	if err := res.Listener.BeforeSuite(ctx); err != nil {
		return nil, false, fmt.Errorf("apply filter: %w", err)
	}
	active := !res.Listener.Options().SkipCoverage()

	results := make([]FilterResult, 0, len(opts.Paths))
	for _, p := range opts.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, false, err
		}
		results = append(results, FilterResult{Path: p, Included: res.Engine.Includes(abs)})
	}
	return results, active, nil
}

func (s *coverageService) History(_ context.Context, path string) (domain.History, error) {
	store := &history.FileStore{Path: path}
	return store.Load()
}
