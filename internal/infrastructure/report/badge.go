package report

import (
	"context"
	"os"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/badge"
)

// BadgeReport writes an SVG badge showing statement coverage.
type BadgeReport struct {
	Options Options
}

func (b BadgeReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}

	opts := badge.Options{
		Label:   b.Options.BadgeLabel,
		Percent: cov.Stat().PercentRounded(),
		Low:     b.Options.Text.LowUpperBound,
		High:    b.Options.Text.HighLowerBound,
	}
	return writeFile(destination, func(out *os.File) error {
		return badge.Generate(out, opts)
	})
}

var _ application.FileRenderer = BadgeReport{}
