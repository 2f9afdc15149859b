package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/coverage"
	"testing"

	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/coverprofile"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/gotool"
)

// ErrTestBinary is returned when runtime coverage is requested from a
// go test binary. The runtime only finalises coverage meta-data for
// those binaries at exit.
var ErrTestBinary = errors.New("runtime coverage is unavailable inside go test binaries: " +
	"run the suite from a main built with go build -cover -covermode=atomic, " +
	"replay a profile with a ProfileDriver, or set SPECCOVER_SKIP=true")

// RuntimeDriver records coverage of the running binary. The binary must
// be a main package built with go build -cover -covermode=atomic so
// counters can be reset. Test binaries are rejected with ErrTestBinary.
type RuntimeDriver struct {
	dir     string
	seq     int
	covdata gotool.Covdata

	testBinary    func() bool
	clear         func() error
	writeMeta     func(dir string) error
	writeCounters func(dir string) error
}

// NewRuntimeDriver stores session data below dir. An empty dir uses a
// fresh temporary directory.
func NewRuntimeDriver(dir string) *RuntimeDriver {
	return &RuntimeDriver{
		dir:           dir,
		testBinary:    testing.Testing,
		clear:         coverage.ClearCounters,
		writeMeta:     coverage.WriteMetaDir,
		writeCounters: coverage.WriteCountersDir,
	}
}

// Dir returns the directory holding per-session data.
func (d *RuntimeDriver) Dir() string {
	return d.dir
}

func (d *RuntimeDriver) Start() error {
	if d.testBinary() {
		return ErrTestBinary
	}
	if err := d.clear(); err != nil {
		return fmt.Errorf("reset coverage counters: %w", err)
	}
	return nil
}

func (d *RuntimeDriver) Stop() (Snapshot, error) {
	if d.dir == "" {
		dir, err := os.MkdirTemp("", "speccover-")
		if err != nil {
			return nil, err
		}
		d.dir = dir
	}
	d.seq++
	dir := filepath.Join(d.dir, fmt.Sprintf("session-%04d", d.seq))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if err := d.writeMeta(dir); err != nil {
		return nil, fmt.Errorf("write coverage meta-data: %w", err)
	}
	if err := d.writeCounters(dir); err != nil {
		return nil, fmt.Errorf("write coverage counters: %w", err)
	}

	covdata := d.covdata
	return func(ctx context.Context) (domain.Profile, error) {
		out := filepath.Join(dir, "profile.txt")
		if _, err := os.Stat(out); err != nil {
			if err := covdata.TextFormat(ctx, out, dir); err != nil {
				return domain.Profile{}, err
			}
		}
		return coverprofile.Parser{}.Parse(out)
	}, nil
}

// ProfileDriver replays an existing text coverprofile for every
// session. It serves reports over coverage produced by `go test
// -coverprofile`.
type ProfileDriver struct {
	Path string
}

func (ProfileDriver) Start() error { return nil }

func (d ProfileDriver) Stop() (Snapshot, error) {
	path := d.Path
	return func(context.Context) (domain.Profile, error) {
		return coverprofile.Parser{}.Parse(path)
	}, nil
}
