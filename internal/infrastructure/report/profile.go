package report

import (
	"context"
	"os"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/coverprofile"
)

// ProfileReport dumps the merged coverage as a Go text coverprofile,
// keyed by module-relative file name.
type ProfileReport struct{}

func (ProfileReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}

	profile := domain.Profile{Mode: cov.Mode, Files: make(map[string][]domain.Block, len(cov.Files))}
	for _, f := range cov.Files {
		blocks := make([]domain.Block, len(f.Blocks))
		for i, b := range f.Blocks {
			blocks[i] = b.Block
		}
		profile.Files[f.Name] = blocks
	}

	return writeFile(destination, func(out *os.File) error {
		return coverprofile.Write(out, profile)
	})
}

var _ application.FileRenderer = ProfileReport{}
