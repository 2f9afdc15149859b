package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/bootstrap"
)

type noModule struct{}

func (noModule) ModuleRoot(context.Context) (string, error) { return "", errors.New("no module") }
func (noModule) ModulePath(context.Context) (string, error) { return "", errors.New("no module") }

type project struct {
	root    string
	config  string
	profile string
}

func newProject(t *testing.T) project {
	t.Helper()
	root := t.TempDir()
	src := filepath.Join(root, "src")
	require.NoError(t, os.MkdirAll(src, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "vendor"), 0o755))
	for _, f := range []string{filepath.Join(src, "calc.go"), filepath.Join(root, "vendor", "dep.go")} {
		require.NoError(t, os.WriteFile(f, []byte("package x\n"), 0o644))
	}

	profile := filepath.Join(root, "coverage.out")
	calc := filepath.ToSlash(filepath.Join(src, "calc.go"))
	dep := filepath.ToSlash(filepath.Join(root, "vendor", "dep.go"))
	content := fmt.Sprintf("mode: set\n%s:1.1,3.2 3 1\n%s:5.1,6.2 1 0\n%s:1.1,2.2 2 1\n", calc, calc, dep)
	require.NoError(t, os.WriteFile(profile, []byte(content), 0o644))

	config := filepath.Join(root, ".speccover.yaml")
	clover := filepath.ToSlash(filepath.Join(root, "out", "clover.xml"))
	yaml := fmt.Sprintf("include_dirs: [%q]\nexclude_dirs: [%q]\nformats: [text, clover]\noutput_destinations:\n  clover: %q\n",
		filepath.ToSlash(src), filepath.ToSlash(filepath.Join(root, "vendor")), clover)
	require.NoError(t, os.WriteFile(config, []byte(yaml), 0o644))

	return project{root: root, config: config, profile: profile}
}

func testService(out *bytes.Buffer) Service {
	return New(out, log.New(&bytes.Buffer{}),
		bootstrap.WithModule(noModule{}),
		bootstrap.WithGetenv(func(string) string { return "" }),
	)
}

func TestServiceReportRendersConfiguredFormats(t *testing.T) {
	p := newProject(t)
	var out bytes.Buffer
	svc := testService(&out)

	err := svc.Report(context.Background(), ReportOptions{ConfigPath: p.config, Profile: p.profile, Verbose: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Generating code coverage report in text format ...")
	assert.Contains(t, out.String(), "Statements:  75.00% (3/4)")
	assert.Contains(t, out.String(), "Examples:   1")
	assert.NotContains(t, out.String(), "dep.go")

	data, err := os.ReadFile(filepath.Join(p.root, "out", "clover.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "calc.go")
	assert.NotContains(t, string(data), "dep.go")
}

func TestServiceReportNoCoverage(t *testing.T) {
	p := newProject(t)
	var out bytes.Buffer
	svc := testService(&out)

	err := svc.Report(context.Background(), ReportOptions{ConfigPath: p.config, Profile: p.profile, Verbose: true, NoCoverage: true})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Skipping code coverage generation")
	assert.NoFileExists(t, filepath.Join(p.root, "out", "clover.xml"))
}

func TestServiceReportMissingConfig(t *testing.T) {
	var out bytes.Buffer
	err := testService(&out).Report(context.Background(), ReportOptions{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Profile:    "coverage.out",
	})
	assert.ErrorIs(t, err, application.ErrConfigNotFound)
}

func TestServiceFilter(t *testing.T) {
	p := newProject(t)
	var out bytes.Buffer
	results, active, err := testService(&out).Filter(context.Background(), FilterOptions{
		ConfigPath: p.config,
		Paths: []string{
			filepath.Join(p.root, "src", "calc.go"),
			filepath.Join(p.root, "vendor", "dep.go"),
		},
	})
	require.NoError(t, err)
	assert.True(t, active)
	require.Len(t, results, 2)
	assert.True(t, results[0].Included)
	assert.False(t, results[1].Included)
}

func TestServiceReportOutOverride(t *testing.T) {
	p := newProject(t)
	var out, own bytes.Buffer
	err := testService(&out).Report(context.Background(), ReportOptions{Out: &own, ConfigPath: p.config, Profile: p.profile})
	require.NoError(t, err)
	assert.Empty(t, out.String())
	assert.Contains(t, own.String(), "Code Coverage Report:")
}

func TestServiceHistoryMissingFile(t *testing.T) {
	var out bytes.Buffer
	h, err := testService(&out).History(context.Background(), filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	assert.Empty(t, h.Entries)
}
