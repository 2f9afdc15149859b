package report

import (
	"context"
	"encoding/xml"
	"os"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
)

type cloverCoverage struct {
	XMLName   xml.Name      `xml:"coverage"`
	Generated int64         `xml:"generated,attr"`
	Clover    string        `xml:"clover,attr"`
	Project   cloverProject `xml:"project"`
}

type cloverProject struct {
	Timestamp int64         `xml:"timestamp,attr"`
	Name      string        `xml:"name,attr"`
	Files     []cloverFile  `xml:"file"`
	Metrics   cloverMetrics `xml:"metrics"`
}

type cloverFile struct {
	Name    string        `xml:"name,attr"`
	Lines   []cloverLine  `xml:"line"`
	Metrics cloverMetrics `xml:"metrics"`
}

type cloverLine struct {
	Num   int    `xml:"num,attr"`
	Type  string `xml:"type,attr"`
	Count int64  `xml:"count,attr"`
}

type cloverMetrics struct {
	Files             int `xml:"files,attr,omitempty"`
	LOC               int `xml:"loc,attr"`
	NCLOC             int `xml:"ncloc,attr"`
	Statements        int `xml:"statements,attr"`
	CoveredStatements int `xml:"coveredstatements,attr"`
	Elements          int `xml:"elements,attr"`
	CoveredElements   int `xml:"coveredelements,attr"`
}

func newCloverMetrics(lines, stmts domain.CoverageStat) cloverMetrics {
	return cloverMetrics{
		LOC:               lines.Total,
		NCLOC:             lines.Total,
		Statements:        stmts.Total,
		CoveredStatements: stmts.Covered,
		Elements:          stmts.Total,
		CoveredElements:   stmts.Covered,
	}
}

// CloverReport writes a Clover XML file.
type CloverReport struct {
	Options Options
}

func (c CloverReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}

	stamp := c.Options.now().Unix()
	doc := cloverCoverage{
		Generated: stamp,
		Clover:    "4.4.0",
		Project: cloverProject{
			Timestamp: stamp,
			Name:      c.Options.project(),
			Metrics:   newCloverMetrics(cov.LineStat(), cov.Stat()),
		},
	}
	doc.Project.Metrics.Files = len(cov.Files)

	for _, f := range cov.Files {
		hits := f.LineHits()
		file := cloverFile{Name: f.Path, Metrics: newCloverMetrics(f.LineStat(), f.Stat())}
		for _, n := range f.Lines() {
			file.Lines = append(file.Lines, cloverLine{Num: n, Type: "stmt", Count: hits[n]})
		}
		doc.Project.Files = append(doc.Project.Files, file)
	}

	return writeFile(destination, func(out *os.File) error {
		return encodeXML(out, "", doc)
	})
}

func encodeXML(out *os.File, doctype string, doc any) error {
	if _, err := out.WriteString(xml.Header); err != nil {
		return err
	}
	if doctype != "" {
		if _, err := out.WriteString(doctype + "\n"); err != nil {
			return err
		}
	}
	enc := xml.NewEncoder(out)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := out.WriteString("\n")
	return err
}

var _ application.FileRenderer = CloverReport{}
