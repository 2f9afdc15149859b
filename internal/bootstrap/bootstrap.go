// Package bootstrap wires a coverage listener to its collaborators.
package bootstrap

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/events"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/config"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/console"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/filter"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/gotool"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/paths"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/report"
)

// Settings collect everything Build needs. Zero values pick defaults.
type Settings struct {
	// ConfigPath must exist when set. When empty, config.DefaultPath is
	// used if present.
	ConfigPath string
	Overrides  application.Options
	Console    application.Console
	Verbose    bool
	Driver     engine.Driver
	Logger     *log.Logger
	Module     gotool.ModuleInfo
	Getenv     func(string) string
}

type Option func(*Settings)

func WithConfigFile(path string) Option {
	return func(s *Settings) { s.ConfigPath = path }
}

// WithOptions merges opts over the config file values.
func WithOptions(opts application.Options) Option {
	return func(s *Settings) { s.Overrides = s.Overrides.Merge(opts) }
}

func WithConsole(c application.Console) Option {
	return func(s *Settings) { s.Console = c }
}

func WithVerbose(verbose bool) Option {
	return func(s *Settings) { s.Verbose = verbose }
}

// WithDriver replaces the runtime coverage driver.
func WithDriver(d engine.Driver) Option {
	return func(s *Settings) { s.Driver = d }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Settings) { s.Logger = l }
}

func WithModule(m gotool.ModuleInfo) Option {
	return func(s *Settings) { s.Module = m }
}

func WithGetenv(getenv func(string) string) Option {
	return func(s *Settings) { s.Getenv = getenv }
}

var testBinary = testing.Testing

// Result is a ready listener with the parts it was built from.
type Result struct {
	Listener   *application.CoverageListener
	Engine     *engine.CodeCoverage
	Registry   *report.Registry
	Config     application.Config
	Dispatcher *events.Dispatcher
}

// Build loads configuration and assembles the listener. The listener
// is already subscribed to the returned dispatcher.
//
// Relative include and exclude paths resolve against the module
// root, or the working directory when no module is found. Without a
// Driver, Build fails with engine.ErrTestBinary inside go test binaries
// unless coverage is skipped.
func Build(ctx context.Context, opts ...Option) (*Result, error) {
	s := Settings{Getenv: os.Getenv}
	for _, opt := range opts {
		opt(&s)
	}
	if s.Logger == nil {
		s.Logger = log.New(io.Discard)
	}

	cfg, err := loadConfig(s.ConfigPath)
	if err != nil {
		return nil, err
	}
	s.Logger.Debug("configuration loaded", "path", s.ConfigPath, "formats", cfg.Listener.Formats)

	var filterOpts []filter.Option
	engineOpts := []engine.Option{engine.WithLogger(s.Logger)}
	project := ""
	if s.Module == nil {
		s.Module = gotool.NewCachedModuleResolver(gotool.ModuleResolver{})
	}
	root, rootErr := s.Module.ModuleRoot(ctx)
	modulePath, pathErr := s.Module.ModulePath(ctx)
	if rootErr == nil {
		filterOpts = append(filterOpts, filter.WithBaseDir(root))
	}
	if err := errors.Join(rootErr, pathErr); err != nil {
		s.Logger.Debug("module not resolved, profile paths kept as is", "err", err)
	} else {
		engineOpts = append(engineOpts, engine.WithNormalizer(paths.NewGoModuleNormalizer(root, modulePath)))
		project = path.Base(modulePath)
	}
	engineOpts = append(engineOpts, engine.WithFilter(filter.New(filterOpts...)))

	driver := s.Driver
	if driver == nil {
		driver = engine.NewRuntimeDriver("")
	}
	eng := engine.New(driver, engineOpts...)

	out := s.Console
	if out == nil {
		out = console.New(s.Verbose)
	}
	registry := report.NewRegistry(report.Options{Text: cfg.Text, Project: project})

	listener := application.NewCoverageListener(eng, out, registry)
	for _, layer := range []application.Options{
		cfg.Listener,
		s.Overrides,
		{Skip: config.SkipFromEnv(s.Getenv)},
	} {
		if err := listener.Configure(layer); err != nil {
			return nil, err
		}
	}
	if s.Driver == nil && testBinary() && !listener.Options().SkipCoverage() {
		return nil, engine.ErrTestBinary
	}

	dispatcher := events.NewDispatcher()
	dispatcher.Subscribe(listener.Subscriptions()...)

	return &Result{
		Listener:   listener,
		Engine:     eng,
		Registry:   registry,
		Config:     cfg,
		Dispatcher: dispatcher,
	}, nil
}

func loadConfig(configPath string) (application.Config, error) {
	loader := config.Loader{}
	if configPath == "" {
		ok, err := loader.Exists(config.DefaultPath)
		if err != nil {
			return application.Config{}, err
		}
		if !ok {
			return application.Config{Text: application.DefaultTextOptions()}, nil
		}
		configPath = config.DefaultPath
	}
	return loader.Load(configPath)
}
