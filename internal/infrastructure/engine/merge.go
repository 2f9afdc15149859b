package engine

import (
	"sort"

	"github.com/felixgeelhaar/speccover/internal/domain"
)

type blockKey struct {
	startLine, startCol, endLine, endCol int
}

type fileBlocks map[blockKey]*domain.BlockCoverage

func (fb fileBlocks) sorted() []domain.BlockCoverage {
	out := make([]domain.BlockCoverage, 0, len(fb))
	for _, b := range fb {
		sort.Strings(b.CoveredBy)
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartLine != out[j].StartLine {
			return out[i].StartLine < out[j].StartLine
		}
		return out[i].StartCol < out[j].StartCol
	})
	return out
}

// merger folds per-session profiles together. Counters are reset at
// every session start, so counts add up and any positive count
// attributes the block to the session's label.
type merger struct {
	mode  string
	files map[string]fileBlocks
}

func newMerger() *merger {
	return &merger{files: make(map[string]fileBlocks)}
}

func (m *merger) add(label string, profile domain.Profile) {
	if m.mode == "" {
		m.mode = profile.Mode
	}
	for name, blocks := range profile.Files {
		fb, ok := m.files[name]
		if !ok {
			fb = make(fileBlocks)
			m.files[name] = fb
		}
		for _, b := range blocks {
			key := blockKey{b.StartLine, b.StartCol, b.EndLine, b.EndCol}
			cur, ok := fb[key]
			if !ok {
				cur = &domain.BlockCoverage{Block: b}
				cur.Count = 0
				fb[key] = cur
			}
			if m.mode == "set" {
				if b.Count > cur.Count {
					cur.Count = b.Count
				}
			} else {
				cur.Count += b.Count
			}
			if b.Count > 0 && !contains(cur.CoveredBy, label) {
				cur.CoveredBy = append(cur.CoveredBy, label)
			}
		}
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
