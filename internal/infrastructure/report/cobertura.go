package report

import (
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
)

const coberturaDoctype = `<!DOCTYPE coverage SYSTEM "http://cobertura.sourceforge.net/xml/coverage-04.dtd">`

type coberturaCoverage struct {
	XMLName         xml.Name           `xml:"coverage"`
	LineRate        string             `xml:"line-rate,attr"`
	BranchRate      string             `xml:"branch-rate,attr"`
	LinesCovered    int                `xml:"lines-covered,attr"`
	LinesValid      int                `xml:"lines-valid,attr"`
	BranchesCovered int                `xml:"branches-covered,attr"`
	BranchesValid   int                `xml:"branches-valid,attr"`
	Complexity      int                `xml:"complexity,attr"`
	Version         string             `xml:"version,attr"`
	Timestamp       int64              `xml:"timestamp,attr"`
	Sources         []string           `xml:"sources>source"`
	Packages        []coberturaPackage `xml:"packages>package"`
}

type coberturaPackage struct {
	Name       string           `xml:"name,attr"`
	LineRate   string           `xml:"line-rate,attr"`
	BranchRate string           `xml:"branch-rate,attr"`
	Complexity int              `xml:"complexity,attr"`
	Classes    []coberturaClass `xml:"classes>class"`
}

type coberturaClass struct {
	Name       string          `xml:"name,attr"`
	Filename   string          `xml:"filename,attr"`
	LineRate   string          `xml:"line-rate,attr"`
	BranchRate string          `xml:"branch-rate,attr"`
	Complexity int             `xml:"complexity,attr"`
	Methods    struct{}        `xml:"methods"`
	Lines      []coberturaLine `xml:"lines>line"`
}

type coberturaLine struct {
	Number int   `xml:"number,attr"`
	Hits   int64 `xml:"hits,attr"`
}

// CoberturaReport writes a Cobertura XML file. Files are grouped into
// packages by directory.
type CoberturaReport struct {
	Options Options
	// Source is the root recorded in <sources>. Defaults to the common
	// prefix of the file paths.
	Source string
}

func (c CoberturaReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}

	lines := cov.LineStat()
	doc := coberturaCoverage{
		LineRate:     rate(lines),
		BranchRate:   "0",
		LinesCovered: lines.Covered,
		LinesValid:   lines.Total,
		Version:      c.Options.project(),
		Timestamp:    c.Options.now().Unix(),
	}
	if source := c.source(cov); source != "" {
		doc.Sources = []string{source}
	}

	byDir := make(map[string][]domain.FileCoverage)
	for _, f := range cov.Files {
		dir := path.Dir(f.Name)
		byDir[dir] = append(byDir[dir], f)
	}
	dirs := make([]string, 0, len(byDir))
	for dir := range byDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		var stat domain.CoverageStat
		pkg := coberturaPackage{Name: dir, BranchRate: "0"}
		for _, f := range byDir[dir] {
			stat = stat.Add(f.LineStat())
			pkg.Classes = append(pkg.Classes, coberturaClassFor(f))
		}
		pkg.LineRate = rate(stat)
		doc.Packages = append(doc.Packages, pkg)
	}

	return writeFile(destination, func(out *os.File) error {
		return encodeXML(out, coberturaDoctype, doc)
	})
}

func coberturaClassFor(f domain.FileCoverage) coberturaClass {
	hits := f.LineHits()
	class := coberturaClass{
		Name:       strings.TrimSuffix(path.Base(f.Name), ".go"),
		Filename:   f.Name,
		LineRate:   rate(f.LineStat()),
		BranchRate: "0",
	}
	for _, n := range f.Lines() {
		class.Lines = append(class.Lines, coberturaLine{Number: n, Hits: hits[n]})
	}
	return class
}

func (c CoberturaReport) source(cov domain.Coverage) string {
	if c.Source != "" {
		return c.Source
	}
	for _, f := range cov.Files {
		if f.Name == "" || f.Path == "" {
			continue
		}
		if root, ok := strings.CutSuffix(f.Path, filepath.FromSlash(f.Name)); ok {
			return strings.TrimRight(root, `/\`)
		}
	}
	return ""
}

func rate(stat domain.CoverageStat) string {
	if stat.Total == 0 {
		return "0"
	}
	return fmt.Sprintf("%.4f", float64(stat.Covered)/float64(stat.Total))
}

var _ application.FileRenderer = CoberturaReport{}
