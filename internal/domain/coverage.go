package domain

import (
	"math"
	"sort"
)

// CoverageStat summarizes covered vs total statements.
type CoverageStat struct {
	Covered int
	Total   int
}

// Percent returns the coverage percentage as a raw float64.
func (c CoverageStat) Percent() float64 {
	if c.Total == 0 {
		return 0
	}
	return (float64(c.Covered) / float64(c.Total)) * 100
}

// PercentRounded returns the coverage percentage rounded to one decimal place.
func (c CoverageStat) PercentRounded() float64 {
	return Round1(c.Percent())
}

// Uncovered returns the number of uncovered statements.
func (c CoverageStat) Uncovered() int {
	return c.Total - c.Covered
}

// IsEmpty returns true if there are no statements to cover.
func (c CoverageStat) IsEmpty() bool {
	return c.Total == 0
}

// Add returns the sum of two stats.
func (c CoverageStat) Add(other CoverageStat) CoverageStat {
	return CoverageStat{Covered: c.Covered + other.Covered, Total: c.Total + other.Total}
}

// Block is one basic block of a Go coverage profile.
type Block struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	NumStmt   int
	Count     int64
}

// SameRange reports whether two blocks cover the same source span.
func (b Block) SameRange(other Block) bool {
	return b.StartLine == other.StartLine && b.StartCol == other.StartCol &&
		b.EndLine == other.EndLine && b.EndCol == other.EndCol
}

// Profile is a parsed text coverage profile keyed by file name as it
// appears in the profile (usually an import path).
type Profile struct {
	Mode  string
	Files map[string][]Block
}

// BlockCoverage is a block together with the examples that executed it.
type BlockCoverage struct {
	Block
	CoveredBy []string
}

// FileCoverage holds the merged block coverage for one source file.
type FileCoverage struct {
	// Path is the normalized filesystem path.
	Path string
	// Name is the path relative to the module root, used for display.
	Name   string
	Blocks []BlockCoverage
}

// Stat returns statement coverage for the file.
func (f FileCoverage) Stat() CoverageStat {
	var stat CoverageStat
	for _, b := range f.Blocks {
		stat.Total += b.NumStmt
		if b.Count > 0 {
			stat.Covered += b.NumStmt
		}
	}
	return stat
}

// LineHits returns the highest execution count seen per source line.
// Lines spanned by several blocks keep the maximum count.
func (f FileCoverage) LineHits() map[int]int64 {
	hits := make(map[int]int64)
	for _, b := range f.Blocks {
		for line := b.StartLine; line <= b.EndLine; line++ {
			if cur, ok := hits[line]; !ok || b.Count > cur {
				hits[line] = b.Count
			}
		}
	}
	return hits
}

// Lines returns the sorted line numbers carrying coverage information.
func (f FileCoverage) Lines() []int {
	hits := f.LineHits()
	lines := make([]int, 0, len(hits))
	for line := range hits {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// LineStat returns line coverage for the file.
func (f FileCoverage) LineStat() CoverageStat {
	var stat CoverageStat
	for _, count := range f.LineHits() {
		stat.Total++
		if count > 0 {
			stat.Covered++
		}
	}
	return stat
}

// TestsForLine returns the labels of the examples that executed line.
func (f FileCoverage) TestsForLine(line int) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, b := range f.Blocks {
		if line < b.StartLine || line > b.EndLine {
			continue
		}
		for _, label := range b.CoveredBy {
			if _, ok := seen[label]; ok {
				continue
			}
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Coverage is the result of a suite run: merged file coverage plus the
// recorded sessions.
type Coverage struct {
	Mode     string
	Files    []FileCoverage
	Sessions []Session
}

// Stat returns statement coverage across all files.
func (c Coverage) Stat() CoverageStat {
	var stat CoverageStat
	for _, f := range c.Files {
		stat = stat.Add(f.Stat())
	}
	return stat
}

// LineStat returns line coverage across all files.
func (c Coverage) LineStat() CoverageStat {
	var stat CoverageStat
	for _, f := range c.Files {
		stat = stat.Add(f.LineStat())
	}
	return stat
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
