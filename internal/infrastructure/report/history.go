package report

import (
	"context"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/history"
)

// HistoryReport appends a summary of the run to a JSON history file.
type HistoryReport struct {
	Options Options
}

func (h HistoryReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}
	store := &history.FileStore{Path: destination}
	return store.Append(domain.NewHistoryEntry(cov, h.Options.now()))
}

var _ application.FileRenderer = HistoryReport{}
