package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/events"
)

// ListenerPriority places the coverage listener after handlers
// registered at the default priority.
const ListenerPriority = -10

// CoverageListener drives a coverage engine from test-runner lifecycle
// events and renders the configured reports when the suite ends.
//
// Hooks are called inline by the runner, one at a time. Configuration is
// frozen between BeforeSuite and AfterSuite.
type CoverageListener struct {
	engine  Engine
	console Console
	reports RendererRegistry
	options Options
	running bool
}

// NewCoverageListener returns a listener using DefaultOptions.
func NewCoverageListener(engine Engine, console Console, reports RendererRegistry) *CoverageListener {
	return &CoverageListener{
		engine:  engine,
		console: console,
		reports: reports,
		options: DefaultOptions(),
	}
}

// Configure merges opts over the current configuration.
func (l *CoverageListener) Configure(opts Options) error {
	if l.running {
		return ErrConfigurationFrozen
	}
	l.options = l.options.Merge(opts)
	return nil
}

// Options returns a copy of the effective configuration.
func (l *CoverageListener) Options() Options {
	return l.options.Clone()
}

// BeforeSuite applies the include and exclude lists to the engine's
// filter. Includes go first so that excludes win for files in both.
func (l *CoverageListener) BeforeSuite(_ context.Context) error {
	l.running = true
	if l.options.SkipCoverage() {
		return nil
	}

	filter := l.engine.Filter()
	for _, dir := range l.options.IncludeDirs {
		if err := filter.IncludeDirectory(dir); err != nil {
			return err
		}
	}
	for _, dir := range l.options.ExcludeDirs {
		if err := filter.ExcludeDirectory(dir); err != nil {
			return err
		}
	}
	for _, file := range l.options.IncludeFiles {
		if err := filter.IncludeFile(file); err != nil {
			return err
		}
	}
	for _, file := range l.options.ExcludeFiles {
		if err := filter.ExcludeFile(file); err != nil {
			return err
		}
	}
	return nil
}

// BeforeExample starts recording under the label "<spec>::<example>".
func (l *CoverageListener) BeforeExample(_ context.Context, example events.Example) error {
	if l.options.SkipCoverage() {
		return nil
	}
	return l.engine.Start(domain.ExampleLabel(example.Spec, example.Name))
}

// AfterExample stops the current recording.
func (l *CoverageListener) AfterExample(_ context.Context, _ events.Example) error {
	if l.options.SkipCoverage() {
		return nil
	}
	return l.engine.Stop()
}

// AfterSuite renders every configured format in declared order. The
// first failure aborts the remaining formats.
func (l *CoverageListener) AfterSuite(ctx context.Context) error {
	defer func() { l.running = false }()

	verbose := l.console.IsVerbose()
	if l.options.SkipCoverage() {
		if verbose {
			l.console.WriteLine("Skipping code coverage generation")
		}
		return nil
	}

	if verbose {
		l.console.WriteLine("")
	}
	for _, format := range l.options.Formats {
		if verbose {
			l.console.WriteLine(fmt.Sprintf("Generating code coverage report in %s format ...", format))
		}
		if err := l.render(ctx, format); err != nil {
			return err
		}
	}
	return nil
}

func (l *CoverageListener) render(ctx context.Context, format string) error {
	report, err := l.reports.Lookup(format)
	if err != nil {
		return err
	}
	switch report.Kind {
	case KindText:
		out, err := report.Text.Render(ctx, l.engine, l.console.IsDecorated())
		if err != nil {
			return err
		}
		l.console.WriteLine(out)
		return nil
	default:
		dest, ok := l.options.Destination(format)
		if !ok {
			return fmt.Errorf("%w for format %q", ErrMissingDestination, format)
		}
		return report.File.Write(ctx, l.engine, dest)
	}
}

// Subscriptions lists the lifecycle hooks this listener needs, all at
// ListenerPriority.
func (l *CoverageListener) Subscriptions() []events.Subscription {
	return []events.Subscription{
		{Event: events.BeforeExample, Handler: l.onBeforeExample, Priority: ListenerPriority},
		{Event: events.AfterExample, Handler: l.onAfterExample, Priority: ListenerPriority},
		{Event: events.BeforeSuite, Handler: l.onBeforeSuite, Priority: ListenerPriority},
		{Event: events.AfterSuite, Handler: l.onAfterSuite, Priority: ListenerPriority},
	}
}

func (l *CoverageListener) onBeforeSuite(ctx context.Context, _ events.Event) error {
	return l.BeforeSuite(ctx)
}

func (l *CoverageListener) onAfterSuite(ctx context.Context, _ events.Event) error {
	return l.AfterSuite(ctx)
}

func (l *CoverageListener) onBeforeExample(ctx context.Context, e events.Event) error {
	return l.BeforeExample(ctx, exampleOf(e))
}

func (l *CoverageListener) onAfterExample(ctx context.Context, e events.Event) error {
	return l.AfterExample(ctx, exampleOf(e))
}

func exampleOf(e events.Event) events.Example {
	if e.Example == nil {
		return events.Example{}
	}
	return *e.Example
}
