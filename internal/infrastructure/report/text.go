package report

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
)

const timeLayout = "2006-01-02 15:04:05"

// TextReport renders a summary and a per-file table for the console.
type TextReport struct {
	Options Options
}

type textStyles struct {
	title  lipgloss.Style
	header lipgloss.Style
	levels map[level]lipgloss.Style
}

func newTextStyles(color bool) textStyles {
	r := lipgloss.NewRenderer(io.Discard)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return textStyles{
		title:  r.NewStyle().Bold(true),
		header: r.NewStyle().Bold(true).Underline(true),
		levels: map[level]lipgloss.Style{
			levelLow:    r.NewStyle().Foreground(lipgloss.Color("#DC2626")),
			levelMedium: r.NewStyle().Foreground(lipgloss.Color("#CA8A04")),
			levelHigh:   r.NewStyle().Foreground(lipgloss.Color("#16A34A")),
		},
	}
}

// Render returns the report without a trailing newline. Colour codes
// are emitted only when color is true.
func (t TextReport) Render(ctx context.Context, s application.Session, color bool) (string, error) {
	cov, err := s.Data(ctx)
	if err != nil {
		return "", err
	}
	opts := t.Options.Text
	styles := newTextStyles(color)
	pct := func(stat domain.CoverageStat) string {
		text := fmt.Sprintf("%6.2f%% (%d/%d)", stat.Percent(), stat.Covered, stat.Total)
		return styles.levels[levelFor(stat.Percent(), opts)].Render(text)
	}

	var b strings.Builder
	b.WriteString(styles.title.Render("Code Coverage Report:") + "\n")
	b.WriteString("  " + t.Options.now().Format(timeLayout) + "\n\n")
	b.WriteString(" Summary:\n")
	b.WriteString("  Statements: " + pct(cov.Stat()) + "\n")
	b.WriteString("  Lines:      " + pct(cov.LineStat()) + "\n")
	b.WriteString(fmt.Sprintf("  Examples:   %d", len(cov.Sessions)))

	if opts.ShowOnlySummary {
		return b.String(), nil
	}

	files := make([]domain.FileCoverage, 0, len(cov.Files))
	width := len("File")
	for _, f := range cov.Files {
		if !opts.ShowUncoveredFiles && f.Stat().Covered == 0 {
			continue
		}
		files = append(files, f)
		if len(f.Name) > width {
			width = len(f.Name)
		}
	}
	if len(files) == 0 {
		return b.String(), nil
	}

	b.WriteString("\n\n")
	b.WriteString(styles.header.Render(fmt.Sprintf("%-*s", width, "File")) + "  Statements\n")
	for _, f := range files {
		b.WriteString(fmt.Sprintf("%-*s  %s\n", width, f.Name, pct(f.Stat())))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

var _ application.TextRenderer = TextReport{}
