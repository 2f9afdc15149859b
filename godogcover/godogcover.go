// Package godogcover records code coverage per godog scenario and
// renders the configured reports when the suite ends.
//
// Coverage counters can only be reset in a main package built with
// coverage, so the suite runs from its own binary:
//
//	// cmd/features/main.go
//	func main() {
//		suite := godog.TestSuite{
//			ScenarioInitializer: features.InitializeScenario,
//			Options:             &godog.Options{Format: "pretty", Paths: []string{"features"}},
//		}
//		hooks, err := godogcover.Attach(&suite)
//		if err != nil {
//			log.Fatal(err)
//		}
//		status := suite.Run()
//		if err := hooks.Err(); err != nil {
//			log.Fatal(err)
//		}
//		os.Exit(status)
//	}
//
// built and run with
//
//	go build -cover -covermode=atomic -coverpkg=./... -o bin/features ./cmd/features
//	./bin/features
//
// Inside go test, Attach returns ErrTestBinary unless the suite is given
// a ProfileReplay driver or coverage is skipped with SPECCOVER_SKIP.
//
// Scenarios are labelled "<feature uri>::<scenario name>".
package godogcover

import (
	"context"
	"errors"
	"sync"

	"github.com/cucumber/godog"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/bootstrap"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/events"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine"
)

var (
	// ErrConcurrentScenarios is returned by Attach when the suite runs
	// scenarios in parallel. Coverage counters are process wide.
	ErrConcurrentScenarios = errors.New("godogcover: scenarios must run with concurrency 1")

	// ErrTestBinary is returned by Attach inside go test binaries when
	// no driver is given.
	ErrTestBinary = engine.ErrTestBinary
)

type (
	Option   = bootstrap.Option
	Options  = application.Options
	Console  = application.Console
	Driver   = engine.Driver
	Snapshot = engine.Snapshot
	Session  = domain.Session
)

// WithConfigFile loads configuration from path instead of
// .speccover.yaml.
func WithConfigFile(path string) Option { return bootstrap.WithConfigFile(path) }

// WithOptions overrides configuration file values.
func WithOptions(opts Options) Option { return bootstrap.WithOptions(opts) }

func WithConsole(c Console) Option { return bootstrap.WithConsole(c) }

func WithVerbose(verbose bool) Option { return bootstrap.WithVerbose(verbose) }

// WithDriver replaces the runtime coverage driver, for instance with a
// profile replay.
func WithDriver(d Driver) Option { return bootstrap.WithDriver(d) }

// ProfileReplay attributes the coverprofile at path, as written by
// go test -coverprofile, to every scenario.
func ProfileReplay(path string) Driver { return engine.ProfileDriver{Path: path} }

// Bool returns a pointer to v, for Options.Skip.
func Bool(v bool) *bool { return application.Bool(v) }

// Hooks forwards godog lifecycle callbacks to the coverage listener.
type Hooks struct {
	result *bootstrap.Result

	mu   sync.Mutex
	errs []error
}

// Attach hooks coverage into suite. Existing initializers keep running;
// the coverage hooks are registered after the suite's own.
func Attach(suite *godog.TestSuite, opts ...Option) (*Hooks, error) {
	if suite.Options != nil && suite.Options.Concurrency > 1 {
		return nil, ErrConcurrentScenarios
	}
	res, err := bootstrap.Build(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	h := &Hooks{result: res}

	suiteInit := suite.TestSuiteInitializer
	suite.TestSuiteInitializer = func(tsc *godog.TestSuiteContext) {
		if suiteInit != nil {
			suiteInit(tsc)
		}
		tsc.BeforeSuite(h.beforeSuite)
		tsc.AfterSuite(h.afterSuite)
	}

	scenarioInit := suite.ScenarioInitializer
	suite.ScenarioInitializer = func(sc *godog.ScenarioContext) {
		if scenarioInit != nil {
			scenarioInit(sc)
		}
		sc.Before(h.beforeScenario)
		sc.After(h.afterScenario)
	}
	return h, nil
}

// Err reports errors raised by the suite hooks, which godog cannot
// surface itself.
func (h *Hooks) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return errors.Join(h.errs...)
}

// Options returns the effective listener configuration.
func (h *Hooks) Options() Options {
	return h.result.Listener.Options()
}

// Sessions lists the recorded scenarios.
func (h *Hooks) Sessions() []Session {
	return h.result.Engine.Sessions()
}

func (h *Hooks) beforeSuite() {
	h.record(h.dispatch(context.Background(), events.BeforeSuite, nil))
}

func (h *Hooks) afterSuite() {
	h.record(h.dispatch(context.Background(), events.AfterSuite, nil))
}

func (h *Hooks) beforeScenario(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	return ctx, h.dispatch(ctx, events.BeforeExample, exampleOf(sc))
}

func (h *Hooks) afterScenario(ctx context.Context, sc *godog.Scenario, _ error) (context.Context, error) {
	return ctx, h.dispatch(ctx, events.AfterExample, exampleOf(sc))
}

func (h *Hooks) dispatch(ctx context.Context, name events.Name, example *events.Example) error {
	return h.result.Dispatcher.Dispatch(ctx, events.Event{Name: name, Example: example})
}

func (h *Hooks) record(err error) {
	if err == nil {
		return
	}
	h.mu.Lock()
	h.errs = append(h.errs, err)
	h.mu.Unlock()
}

func exampleOf(sc *godog.Scenario) *events.Example {
	if sc == nil {
		return &events.Example{}
	}
	return &events.Example{Spec: sc.Uri, Name: sc.Name}
}
