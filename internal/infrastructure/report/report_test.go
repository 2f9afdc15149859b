package report

import (
	"context"
	"encoding/xml"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/coverprofile"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/history"
)

type staticSession struct {
	cov domain.Coverage
	err error
}

func (s staticSession) Data(context.Context) (domain.Coverage, error) {
	return s.cov, s.err
}

var fixedNow = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

func testOptions() Options {
	return Options{Text: application.DefaultTextOptions(), Project: "calc", Now: fixedNow}
}

// sampleCoverage describes two files below root: calc.go is half
// covered, unused.go not at all.
func sampleCoverage(t *testing.T) (domain.Coverage, string) {
	t.Helper()
	root := t.TempDir()
	src := "package calc\n\nfunc Add(a, b int) int {\n\treturn a + b\n}\n\nfunc Sub(a, b int) int {\n\treturn a - b\n}\n"
	require.NoError(t, os.MkdirAll(filepath.Join(root, "calc"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "calc", "calc.go"), []byte(src), 0o644))

	cov := domain.Coverage{
		Mode: "atomic",
		Files: []domain.FileCoverage{
			{
				Path: filepath.Join(root, "calc", "calc.go"),
				Name: "calc/calc.go",
				Blocks: []domain.BlockCoverage{
					{Block: domain.Block{StartLine: 3, StartCol: 24, EndLine: 5, EndCol: 2, NumStmt: 1, Count: 2}, CoveredBy: []string{"calc.feature::adds"}},
					{Block: domain.Block{StartLine: 7, StartCol: 24, EndLine: 9, EndCol: 2, NumStmt: 1, Count: 0}},
				},
			},
			{
				Path: filepath.Join(root, "calc", "unused.go"),
				Name: "calc/unused.go",
				Blocks: []domain.BlockCoverage{
					{Block: domain.Block{StartLine: 3, StartCol: 1, EndLine: 3, EndCol: 10, NumStmt: 2, Count: 0}},
				},
			},
		},
		Sessions: []domain.Session{{Label: "calc.feature::adds"}, {Label: "calc.feature::subtracts"}},
	}
	return cov, root
}

func TestRegistryLookup(t *testing.T) {
	r := NewRegistry(Options{})

	text, err := r.Lookup("text")
	require.NoError(t, err)
	assert.Equal(t, application.KindText, text.Kind)
	assert.NotNil(t, text.Text)
	assert.Nil(t, text.File)

	for _, format := range []string{"html", "clover", "cobertura", "lcov", "profile", "badge", "history"} {
		rep, err := r.Lookup(format)
		require.NoError(t, err, format)
		assert.Equal(t, application.KindFile, rep.Kind, format)
		assert.Equal(t, format, rep.Format)
	}

	_, err = r.Lookup("pdf")
	assert.ErrorIs(t, err, application.ErrUnknownFormat)
	assert.Len(t, r.Formats(), 8)
}

func TestRegistryKeepsExplicitTextOptions(t *testing.T) {
	zero := application.TextOptions{}
	rep, err := NewRegistry(Options{Text: zero}).Lookup("text")
	require.NoError(t, err)
	assert.Equal(t, zero, rep.Text.(TextReport).Options.Text)

	rep, err = NewRegistry(Options{Text: application.DefaultTextOptions()}).Lookup("text")
	require.NoError(t, err)
	assert.Equal(t, 90.0, rep.Text.(TextReport).Options.Text.HighLowerBound)
}

func TestTextReportPlain(t *testing.T) {
	cov, _ := sampleCoverage(t)
	out, err := TextReport{Options: testOptions()}.Render(context.Background(), staticSession{cov: cov}, false)
	require.NoError(t, err)

	assert.Contains(t, out, "Code Coverage Report:")
	assert.Contains(t, out, "2024-05-01 12:30:00")
	assert.Contains(t, out, "Statements:  25.00% (1/4)")
	assert.Contains(t, out, "Examples:   2")
	assert.Contains(t, out, "calc/calc.go")
	assert.NotContains(t, out, "calc/unused.go")
	assert.NotContains(t, out, "\x1b[")
	assert.False(t, strings.HasSuffix(out, "\n"))
}

func TestTextReportOptions(t *testing.T) {
	cov, _ := sampleCoverage(t)
	ctx := context.Background()

	opts := testOptions()
	opts.Text.ShowUncoveredFiles = true
	out, err := TextReport{Options: opts}.Render(ctx, staticSession{cov: cov}, false)
	require.NoError(t, err)
	assert.Contains(t, out, "calc/unused.go")

	opts.Text.ShowOnlySummary = true
	out, err = TextReport{Options: opts}.Render(ctx, staticSession{cov: cov}, false)
	require.NoError(t, err)
	assert.NotContains(t, out, "calc/calc.go")
}

func TestTextReportColor(t *testing.T) {
	cov, _ := sampleCoverage(t)
	out, err := TextReport{Options: testOptions()}.Render(context.Background(), staticSession{cov: cov}, true)
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

func TestRenderersPropagateDataErrors(t *testing.T) {
	boom := errors.New("boom")
	s := staticSession{err: boom}
	ctx := context.Background()
	dest := filepath.Join(t.TempDir(), "out")

	_, err := TextReport{}.Render(ctx, s, false)
	assert.ErrorIs(t, err, boom)
	for _, r := range []application.FileRenderer{
		HTMLReport{}, CloverReport{}, CoberturaReport{}, LCOVReport{}, ProfileReport{}, BadgeReport{}, HistoryReport{},
	} {
		assert.ErrorIs(t, r.Write(ctx, s, dest), boom)
	}
	assert.NoFileExists(t, dest)
}

func TestHTMLReport(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "coverage")

	require.NoError(t, HTMLReport{Options: testOptions()}.Write(context.Background(), staticSession{cov: cov}, dest))

	index, err := os.ReadFile(filepath.Join(dest, "index.html"))
	require.NoError(t, err)
	assert.Contains(t, string(index), "<!DOCTYPE html>")
	assert.Contains(t, string(index), `href="calc/calc.go.html"`)
	assert.Contains(t, string(index), "25.0%")

	page, err := os.ReadFile(filepath.Join(dest, "calc", "calc.go.html"))
	require.NoError(t, err)
	assert.Contains(t, string(page), `href="../index.html"`)
	assert.Contains(t, string(page), "func Add(a, b int) int {")
	assert.Contains(t, string(page), `class="line covered" title="calc.feature::adds"`)
	assert.Contains(t, string(page), `class="line uncovered"`)

	// Missing sources still get a page.
	assert.FileExists(t, filepath.Join(dest, "calc", "unused.go.html"))
}

func TestCloverReport(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "build", "clover.xml")
	require.NoError(t, CloverReport{Options: testOptions()}.Write(context.Background(), staticSession{cov: cov}, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	var doc cloverCoverage
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, "calc", doc.Project.Name)
	assert.Equal(t, 2, doc.Project.Metrics.Files)
	assert.Equal(t, 4, doc.Project.Metrics.Statements)
	assert.Equal(t, 1, doc.Project.Metrics.CoveredStatements)
	require.Len(t, doc.Project.Files, 2)
	assert.Equal(t, cov.Files[0].Path, doc.Project.Files[0].Name)
	assert.Equal(t, cloverLine{Num: 3, Type: "stmt", Count: 2}, doc.Project.Files[0].Lines[0])
}

func TestCoberturaReport(t *testing.T) {
	cov, root := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "cobertura.xml")
	require.NoError(t, CoberturaReport{Options: testOptions()}.Write(context.Background(), staticSession{cov: cov}, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "coverage-04.dtd")

	var doc coberturaCoverage
	require.NoError(t, xml.Unmarshal(data, &doc))
	assert.Equal(t, []string{root}, doc.Sources)
	assert.Equal(t, 7, doc.LinesValid)
	assert.Equal(t, 3, doc.LinesCovered)
	require.Len(t, doc.Packages, 1)
	assert.Equal(t, "calc", doc.Packages[0].Name)
	require.Len(t, doc.Packages[0].Classes, 2)
	assert.Equal(t, "calc/calc.go", doc.Packages[0].Classes[0].Filename)
	assert.Equal(t, "calc", doc.Packages[0].Classes[0].Name)
}

func TestLCOVReport(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "lcov.info")
	require.NoError(t, LCOVReport{}.Write(context.Background(), staticSession{cov: cov}, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, "SF:"+cov.Files[0].Path+"\n")
	assert.Contains(t, out, "DA:3,2\nDA:4,2\nDA:5,2\nDA:7,0\n")
	assert.Contains(t, out, "LF:6\nLH:3\nend_of_record\n")
	assert.Equal(t, 2, strings.Count(out, "end_of_record"))
}

func TestProfileReportRoundTrips(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "merged.out")
	require.NoError(t, ProfileReport{}.Write(context.Background(), staticSession{cov: cov}, dest))

	profile, err := coverprofile.Parser{}.Parse(dest)
	require.NoError(t, err)
	assert.Equal(t, "atomic", profile.Mode)
	assert.Len(t, profile.Files["calc/calc.go"], 2)
	assert.Equal(t, int64(2), profile.Files["calc/calc.go"][0].Count)
}

func TestBadgeReport(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "badge.svg")
	require.NoError(t, BadgeReport{Options: testOptions()}.Write(context.Background(), staticSession{cov: cov}, dest))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Contains(t, string(data), "25%")
	assert.Contains(t, string(data), "#e05d44")
}

func TestHistoryReportAppends(t *testing.T) {
	cov, _ := sampleCoverage(t)
	dest := filepath.Join(t.TempDir(), "history.json")
	r := HistoryReport{Options: testOptions()}

	require.NoError(t, r.Write(context.Background(), staticSession{cov: cov}, dest))
	require.NoError(t, r.Write(context.Background(), staticSession{cov: cov}, dest))

	h, err := (&history.FileStore{Path: dest}).Load()
	require.NoError(t, err)
	require.Len(t, h.Entries, 2)
	assert.Equal(t, 25.0, h.Entries[0].Overall)
	assert.Equal(t, 2, h.Entries[0].Examples)
	assert.True(t, h.Entries[0].Timestamp.Equal(fixedNow()))
}
