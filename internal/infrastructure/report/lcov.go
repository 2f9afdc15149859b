package report

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/felixgeelhaar/speccover/internal/application"
)

// LCOVReport writes an LCOV tracefile with one record per source file.
type LCOVReport struct{}

func (LCOVReport) Write(ctx context.Context, s application.Session, destination string) error {
	cov, err := s.Data(ctx)
	if err != nil {
		return err
	}

	return writeFile(destination, func(out *os.File) error {
		w := bufio.NewWriter(out)
		for _, f := range cov.Files {
			hits := f.LineHits()
			fmt.Fprintln(w, "TN:")
			fmt.Fprintf(w, "SF:%s\n", f.Path)
			for _, n := range f.Lines() {
				fmt.Fprintf(w, "DA:%d,%d\n", n, hits[n])
			}
			stat := f.LineStat()
			fmt.Fprintf(w, "LF:%d\n", stat.Total)
			fmt.Fprintf(w, "LH:%d\n", stat.Covered)
			fmt.Fprintln(w, "end_of_record")
		}
		return w.Flush()
	})
}

var _ application.FileRenderer = LCOVReport{}
