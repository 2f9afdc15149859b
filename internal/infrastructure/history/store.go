// Package history keeps a JSON log of suite coverage summaries.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
)

// DefaultMaxEntries bounds the log when FileStore.MaxEntries is zero.
const DefaultMaxEntries = 100

// FileStore stores history in a single JSON file. Appends from
// concurrent processes are serialised with a lock file next to it.
type FileStore struct {
	Path       string
	MaxEntries int
}

// Load returns an empty history when the file does not exist yet.
func (s *FileStore) Load() (domain.History, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.History{}, nil
	}
	if err != nil {
		return domain.History{}, err
	}

	var h domain.History
	if err := json.Unmarshal(data, &h); err != nil {
		return domain.History{}, fmt.Errorf("decode history %s: %w", s.Path, err)
	}
	return h, nil
}

func (s *FileStore) Save(h domain.History) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o750); err != nil {
		return err
	}
	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.Path, append(data, '\n'), 0o600)
}

// Append adds entry and drops the oldest entries beyond MaxEntries.
func (s *FileStore) Append(entry domain.HistoryEntry) error {
	lock, err := s.lock()
	if err != nil {
		return fmt.Errorf("lock history: %w", err)
	}
	defer func() { _ = lock.release() }()

	h, err := s.Load()
	if err != nil {
		return err
	}
	h.Entries = append(h.Entries, entry)

	limit := s.MaxEntries
	if limit <= 0 {
		limit = DefaultMaxEntries
	}
	if len(h.Entries) > limit {
		h.Entries = h.Entries[len(h.Entries)-limit:]
	}
	return s.Save(h)
}

func (s *FileStore) openLockFile() (*os.File, error) {
	lockPath := s.Path + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o750); err != nil {
		return nil, err
	}
	// #nosec G304 -- path comes from configuration
	return os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0o600)
}

var _ application.HistoryStore = (*FileStore)(nil)
