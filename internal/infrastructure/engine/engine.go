// Package engine records Go statement coverage per example and merges
// the recordings into a single report-ready view.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/filter"
)

var (
	ErrSessionActive = errors.New("a coverage session is already running")
	ErrNoSession     = errors.New("no coverage session is running")
)

// Snapshot produces the profile recorded by one session. Conversion is
// deferred until the data is needed.
type Snapshot func(ctx context.Context) (domain.Profile, error)

// Driver talks to the coverage instrumentation.
type Driver interface {
	Start() error
	Stop() (Snapshot, error)
}

type recording struct {
	session  domain.Session
	snapshot Snapshot
}

// CodeCoverage is the coverage engine handed to the listener.
type CodeCoverage struct {
	mu         sync.Mutex
	driver     Driver
	filter     *filter.Filter
	normalizer domain.PathNormalizer
	logger     *log.Logger
	now        func() time.Time

	current    *domain.Session
	recordings []recording
	cached     *domain.Coverage
}

// Option configures CodeCoverage.
type Option func(*CodeCoverage)

// WithFilter replaces the default empty filter.
func WithFilter(f *filter.Filter) Option {
	return func(c *CodeCoverage) {
		c.filter = f
	}
}

// WithNormalizer maps profile file names to filesystem paths.
func WithNormalizer(n domain.PathNormalizer) Option {
	return func(c *CodeCoverage) {
		c.normalizer = n
	}
}

func WithLogger(l *log.Logger) Option {
	return func(c *CodeCoverage) {
		c.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *CodeCoverage) {
		c.now = now
	}
}

// New returns an engine recording through driver.
func New(driver Driver, opts ...Option) *CodeCoverage {
	c := &CodeCoverage{
		driver: driver,
		filter: filter.New(),
		logger: log.New(io.Discard),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start opens a session labelled label.
func (c *CodeCoverage) Start(label string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return fmt.Errorf("%w: %q", ErrSessionActive, c.current.Label)
	}
	if err := c.driver.Start(); err != nil {
		return err
	}
	c.current = &domain.Session{Label: label, Started: c.now()}
	c.logger.Debug("coverage session started", "label", label)
	return nil
}

// Stop closes the running session and keeps its snapshot.
func (c *CodeCoverage) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current == nil {
		return ErrNoSession
	}
	session := *c.current
	c.current = nil

	snapshot, err := c.driver.Stop()
	if err != nil {
		return err
	}
	session.Stopped = c.now()
	c.recordings = append(c.recordings, recording{session: session, snapshot: snapshot})
	c.cached = nil
	c.logger.Debug("coverage session stopped", "label", session.Label, "duration", session.Duration())
	return nil
}

// Filter returns the file filter applied by Data.
func (c *CodeCoverage) Filter() application.Filter {
	return c.filter
}

// Includes reports whether Data keeps path. An empty filter keeps
// every file.
func (c *CodeCoverage) Includes(path string) bool {
	return c.filter.IsEmpty() || !c.filter.IsExcluded(path)
}

// Sessions returns the completed sessions in recording order.
func (c *CodeCoverage) Sessions() []domain.Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Session, len(c.recordings))
	for i, r := range c.recordings {
		out[i] = r.session
	}
	return out
}

// Data merges every completed session. The result is cached until the
// next session stops.
func (c *CodeCoverage) Data(ctx context.Context) (domain.Coverage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil {
		return *c.cached, nil
	}

	m := newMerger()
	sessions := make([]domain.Session, 0, len(c.recordings))
	for _, r := range c.recordings {
		profile, err := r.snapshot(ctx)
		if err != nil {
			return domain.Coverage{}, fmt.Errorf("coverage for %q: %w", r.session.Label, err)
		}
		m.add(r.session.Label, profile)
		sessions = append(sessions, r.session)
	}

	cov := domain.Coverage{Mode: m.mode, Sessions: sessions}
	for name, blocks := range m.files {
		path, display := c.resolve(name)
		if !c.Includes(path) {
			continue
		}
		cov.Files = append(cov.Files, domain.FileCoverage{
			Path:   path,
			Name:   display,
			Blocks: blocks.sorted(),
		})
	}
	sort.Slice(cov.Files, func(i, j int) bool { return cov.Files[i].Path < cov.Files[j].Path })

	c.logger.Debug("coverage merged", "sessions", len(sessions), "files", len(cov.Files))
	c.cached = &cov
	return cov, nil
}

func (c *CodeCoverage) resolve(name string) (string, string) {
	if c.normalizer == nil {
		return name, name
	}
	path := c.normalizer.NormalizePath(name)
	return path, c.normalizer.ToRelativePath(path)
}

var _ application.Engine = (*CodeCoverage)(nil)
