// Package ginkgocover records code coverage per Ginkgo spec.
//
// Ginkgo allows a single BeforeSuite, so the suite hooks are called from
// the suite's own nodes:
//
//	var hooks = mustHooks()
//	var _ = hooks.Register()
//
//	var _ = BeforeSuite(func() { hooks.BeforeSuite() })
//	var _ = AfterSuite(func() { hooks.AfterSuite() })
//
//	func mustHooks() *ginkgocover.Hooks {
//		h, err := ginkgocover.New()
//		if err != nil {
//			log.Fatal(err)
//		}
//		return h
//	}
//
// Coverage counters can only be reset in a main package built with
// coverage. RunSpecs accepts any GinkgoTestingT, so the specs can run
// from such a main:
//
//	type runner struct{ failed bool }
//
//	func (r *runner) Fail() { r.failed = true }
//
//	func main() {
//		r := &runner{}
//		gomega.RegisterFailHandler(ginkgo.Fail)
//		ginkgo.RunSpecs(r, "calc")
//		if r.failed {
//			os.Exit(1)
//		}
//	}
//
// built and run with
//
//	go build -cover -covermode=atomic -coverpkg=./... -o bin/specs ./cmd/specs
//	./bin/specs
//
// Inside go test, New returns ErrTestBinary unless it is given a
// ProfileReplay driver or coverage is skipped with SPECCOVER_SKIP.
//
// Specs are labelled "<container texts>::<spec text>".
package ginkgocover

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/onsi/ginkgo/v2"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/bootstrap"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/events"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/engine"
)

// ErrTestBinary is returned by New inside go test binaries when no
// driver is given.
var ErrTestBinary = engine.ErrTestBinary

type (
	Option   = bootstrap.Option
	Options  = application.Options
	Console  = application.Console
	Driver   = engine.Driver
	Snapshot = engine.Snapshot
	Session  = domain.Session
)

func WithConfigFile(path string) Option { return bootstrap.WithConfigFile(path) }

func WithOptions(opts Options) Option { return bootstrap.WithOptions(opts) }

func WithConsole(c Console) Option { return bootstrap.WithConsole(c) }

func WithVerbose(verbose bool) Option { return bootstrap.WithVerbose(verbose) }

func WithDriver(d Driver) Option { return bootstrap.WithDriver(d) }

// ProfileReplay attributes the coverprofile at path to every spec.
func ProfileReplay(path string) Driver { return engine.ProfileDriver{Path: path} }

func Bool(v bool) *bool { return application.Bool(v) }

// Hooks forwards Ginkgo node callbacks to the coverage listener.
// Failures are reported through ginkgo.Fail.
type Hooks struct {
	result *bootstrap.Result
	fail   func(message string, callerSkip ...int)
}

func New(opts ...Option) (*Hooks, error) {
	res, err := bootstrap.Build(context.Background(), opts...)
	if err != nil {
		return nil, err
	}
	return &Hooks{result: res, fail: ginkgo.Fail}, nil
}

// Register adds top-level BeforeEach and AfterEach nodes. Call it
// while the spec tree is built, usually from a package-level var.
func (h *Hooks) Register() bool {
	ginkgo.BeforeEach(func(ctx ginkgo.SpecContext) {
		h.check(h.dispatch(ctx, events.BeforeExample, currentExample()))
	})
	ginkgo.AfterEach(func(ctx ginkgo.SpecContext) {
		h.check(h.dispatch(ctx, events.AfterExample, currentExample()))
	})
	return true
}

func (h *Hooks) BeforeSuite() {
	h.check(h.dispatch(context.Background(), events.BeforeSuite, nil))
}

func (h *Hooks) AfterSuite() {
	h.check(h.dispatch(context.Background(), events.AfterSuite, nil))
}

func (h *Hooks) Options() Options {
	return h.result.Listener.Options()
}

func (h *Hooks) Sessions() []Session {
	return h.result.Engine.Sessions()
}

func (h *Hooks) dispatch(ctx context.Context, name events.Name, example *events.Example) error {
	return h.result.Dispatcher.Dispatch(ctx, events.Event{Name: name, Example: example})
}

func (h *Hooks) check(err error) {
	if err != nil {
		h.fail("speccover: "+err.Error(), 1)
	}
}

func currentExample() *events.Example {
	report := ginkgo.CurrentSpecReport()
	return &events.Example{
		Spec: specName(report.ContainerHierarchyTexts, report.LeafNodeLocation.FileName),
		Name: report.LeafNodeText,
	}
}

// specName joins the container texts. Specs declared outside any
// container are grouped by file.
func specName(containers []string, file string) string {
	if len(containers) == 0 {
		return filepath.Base(file)
	}
	return strings.Join(containers, " ")
}
