package report

import (
	"bufio"
	"context"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
)

const htmlStyle = `
        :root {
            --high: #16A34A;
            --medium: #CA8A04;
            --low: #DC2626;
            --bg: #0f172a;
            --card: #1e293b;
            --text: #f8fafc;
            --muted: #94a3b8;
            --border: #334155;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Ubuntu, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.6;
            padding: 2rem;
        }
        a { color: var(--text); }
        .container { max-width: 1200px; margin: 0 auto; }
        h1 { font-size: 1.75rem; font-weight: 600; margin-bottom: 0.5rem; }
        .timestamp { color: var(--muted); font-size: 0.875rem; margin-bottom: 2rem; }
        .summary { display: flex; gap: 1rem; margin-bottom: 2rem; }
        .summary-card {
            background: var(--card);
            border: 1px solid var(--border);
            border-radius: 0.5rem;
            padding: 1rem 1.5rem;
        }
        .summary-label { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); }
        .summary-value { font-size: 1.5rem; font-weight: 600; }
        table { width: 100%; border-collapse: collapse; background: var(--card); }
        th, td { padding: 0.5rem 1rem; text-align: left; border-bottom: 1px solid var(--border); }
        th { font-size: 0.75rem; text-transform: uppercase; color: var(--muted); }
        .high { color: var(--high); }
        .medium { color: var(--medium); }
        .low { color: var(--low); }
        pre { background: var(--card); overflow-x: auto; }
        .line { display: block; padding: 0 1rem; white-space: pre; font-family: ui-monospace, monospace; }
        .line .num { display: inline-block; width: 4rem; color: var(--muted); }
        .line .hits { display: inline-block; width: 4rem; color: var(--muted); }
        .line.covered { background: rgba(22, 163, 74, 0.15); }
        .line.uncovered { background: rgba(220, 38, 38, 0.15); }
`

var indexPage = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Project}} coverage</title>
    <style>{{.Style}}</style>
</head>
<body>
    <div class="container">
        <h1>{{.Project}} coverage</h1>
        <p class="timestamp">Generated {{.Timestamp}}</p>
        <div class="summary">
            <div class="summary-card">
                <div class="summary-label">Statements</div>
                <div class="summary-value {{.Statements.Level}}">{{printf "%.1f" .Statements.Percent}}%</div>
            </div>
            <div class="summary-card">
                <div class="summary-label">Lines</div>
                <div class="summary-value {{.Lines.Level}}">{{printf "%.1f" .Lines.Percent}}%</div>
            </div>
            <div class="summary-card">
                <div class="summary-label">Examples</div>
                <div class="summary-value">{{.Examples}}</div>
            </div>
        </div>
        <table>
            <thead>
                <tr><th>File</th><th>Statements</th><th>Lines</th></tr>
            </thead>
            <tbody>
                {{range .Files}}
                <tr>
                    <td><a href="{{.Href}}">{{.Name}}</a></td>
                    <td class="{{.Statements.Level}}">{{printf "%.1f" .Statements.Percent}}% ({{.Statements.Covered}}/{{.Statements.Total}})</td>
                    <td class="{{.Lines.Level}}">{{printf "%.1f" .Lines.Percent}}% ({{.Lines.Covered}}/{{.Lines.Total}})</td>
                </tr>
                {{end}}
            </tbody>
        </table>
    </div>
</body>
</html>
`))

var filePage = template.Must(template.New("file").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>{{.Name}}</title>
    <style>{{.Style}}</style>
</head>
<body>
    <div class="container">
        <h1>{{.Name}}</h1>
        <p class="timestamp"><a href="{{.Index}}">index</a> | Generated {{.Timestamp}} | <span class="{{.Statements.Level}}">{{printf "%.1f" .Statements.Percent}}%</span></p>
        <pre>{{range .Lines}}<span class="line {{.Class}}"{{if .Tests}} title="{{.Tests}}"{{end}}><span class="num">{{.Number}}</span><span class="hits">{{.Hits}}</span>{{.Source}}</span>{{end}}</pre>
    </div>
</body>
</html>
`))

type htmlStat struct {
	domain.CoverageStat
	Level string
}

type htmlFile struct {
	Name       string
	Href       string
	Statements htmlStat
	Lines      htmlStat
}

type htmlLine struct {
	Number int
	Hits   string
	Class  string
	Tests  string
	Source string
}

// HTMLReport writes index.html plus one page per source file into the
// destination directory.
type HTMLReport struct {
	Options Options
}

func (h HTMLReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return err
	}

	stamp := h.Options.now().Format(timeLayout)
	files := make([]htmlFile, 0, len(cov.Files))
	for _, f := range cov.Files {
		page := pageName(f)
		files = append(files, htmlFile{
			Name:       f.Name,
			Href:       page,
			Statements: h.stat(f.Stat()),
			Lines:      h.stat(f.LineStat()),
		})
		if err := h.writeFilePage(filepath.Join(destination, filepath.FromSlash(page)), page, f, stamp); err != nil {
			return err
		}
	}

	return writeFile(filepath.Join(destination, "index.html"), func(out *os.File) error {
		return indexPage.Execute(out, map[string]any{
			"Project":    h.Options.project(),
			"Style":      template.CSS(htmlStyle),
			"Timestamp":  stamp,
			"Statements": h.stat(cov.Stat()),
			"Lines":      h.stat(cov.LineStat()),
			"Examples":   len(cov.Sessions),
			"Files":      files,
		})
	})
}

func (h HTMLReport) stat(stat domain.CoverageStat) htmlStat {
	return htmlStat{CoverageStat: stat, Level: levelFor(stat.Percent(), h.Options.Text).String()}
}

func (h HTMLReport) writeFilePage(dest, page string, f domain.FileCoverage, stamp string) error {
	hits := f.LineHits()
	source := readLines(f.Path)
	last := len(source)
	for line := range hits {
		if line > last {
			last = line
		}
	}

	lines := make([]htmlLine, 0, last)
	for n := 1; n <= last; n++ {
		l := htmlLine{Number: n}
		if n <= len(source) {
			l.Source = source[n-1]
		}
		if count, ok := hits[n]; ok {
			l.Class = "uncovered"
			l.Hits = "0"
			if count > 0 {
				l.Class = "covered"
				l.Hits = strconv.FormatInt(count, 10)
				l.Tests = strings.Join(f.TestsForLine(n), "\n")
			}
		}
		lines = append(lines, l)
	}

	depth := strings.Count(page, "/")
	index := strings.Repeat("../", depth) + "index.html"
	return writeFile(dest, func(out *os.File) error {
		return filePage.Execute(out, map[string]any{
			"Name":       f.Name,
			"Style":      template.CSS(htmlStyle),
			"Index":      index,
			"Timestamp":  stamp,
			"Statements": h.stat(f.Stat()),
			"Lines":      lines,
		})
	})
}

// pageName maps a file to its slash-separated page path inside the
// report directory.
func pageName(f domain.FileCoverage) string {
	name := strings.TrimPrefix(path.Clean(filepath.ToSlash(f.Name)), "/")
	return name + ".html"
}

func readLines(file string) []string {
	// #nosec G304 -- path comes from the coverage profile
	fh, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer fh.Close()

	var lines []string
	scanner := bufio.NewScanner(fh)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines
}

var _ application.FileRenderer = HTMLReport{}
