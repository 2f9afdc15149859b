package domain

import "testing"

func sampleFile() FileCoverage {
	return FileCoverage{
		Path: "/src/calc.go",
		Blocks: []BlockCoverage{
			{Block: Block{StartLine: 1, EndLine: 3, NumStmt: 2, Count: 1}, CoveredBy: []string{"calc::adds"}},
			{Block: Block{StartLine: 3, EndLine: 4, NumStmt: 1, Count: 0}},
			{Block: Block{StartLine: 2, EndLine: 2, NumStmt: 1, Count: 4}, CoveredBy: []string{"calc::subtracts", "calc::adds"}},
		},
	}
}

func TestCoverageStatPercent(t *testing.T) {
	if got := (CoverageStat{}).Percent(); got != 0 {
		t.Fatalf("expected 0 for empty stat, got %v", got)
	}
	stat := CoverageStat{Covered: 2, Total: 3}
	if got := stat.PercentRounded(); got != 66.7 {
		t.Fatalf("expected 66.7, got %v", got)
	}
	if stat.Uncovered() != 1 || stat.IsEmpty() {
		t.Fatalf("unexpected stat helpers for %+v", stat)
	}
	sum := stat.Add(CoverageStat{Covered: 1, Total: 1})
	if sum != (CoverageStat{Covered: 3, Total: 4}) {
		t.Fatalf("unexpected sum %+v", sum)
	}
}

func TestFileCoverageStats(t *testing.T) {
	f := sampleFile()
	if got := f.Stat(); got != (CoverageStat{Covered: 3, Total: 4}) {
		t.Fatalf("unexpected statement stat %+v", got)
	}
	hits := f.LineHits()
	if hits[2] != 4 || hits[3] != 1 || hits[4] != 0 {
		t.Fatalf("unexpected line hits %v", hits)
	}
	if got := f.LineStat(); got != (CoverageStat{Covered: 3, Total: 4}) {
		t.Fatalf("unexpected line stat %+v", got)
	}
	lines := f.Lines()
	if len(lines) != 4 || lines[0] != 1 || lines[3] != 4 {
		t.Fatalf("unexpected lines %v", lines)
	}
}

func TestFileCoverageTestsForLine(t *testing.T) {
	f := sampleFile()
	got := f.TestsForLine(2)
	if len(got) != 2 || got[0] != "calc::adds" || got[1] != "calc::subtracts" {
		t.Fatalf("unexpected labels %v", got)
	}
	if len(f.TestsForLine(4)) != 0 {
		t.Fatalf("expected no labels for an uncovered line")
	}
}

func TestCoverageTotals(t *testing.T) {
	c := Coverage{Files: []FileCoverage{sampleFile(), {Blocks: []BlockCoverage{{Block: Block{StartLine: 1, EndLine: 1, NumStmt: 2}}}}}}
	if got := c.Stat(); got != (CoverageStat{Covered: 3, Total: 6}) {
		t.Fatalf("unexpected total %+v", got)
	}
	if got := c.LineStat(); got != (CoverageStat{Covered: 3, Total: 5}) {
		t.Fatalf("unexpected line total %+v", got)
	}
}

func TestBlockSameRange(t *testing.T) {
	a := Block{StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 4, Count: 1}
	b := Block{StartLine: 1, StartCol: 2, EndLine: 3, EndCol: 4, Count: 9}
	if !a.SameRange(b) {
		t.Fatal("expected same range regardless of count")
	}
	b.EndCol = 5
	if a.SameRange(b) {
		t.Fatal("expected different range")
	}
}

func TestExampleLabel(t *testing.T) {
	if got := ExampleLabel("calc", "adds"); got != "calc::adds" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := ExampleLabel("", "adds"); got != "::adds" {
		t.Fatalf("unexpected label %q", got)
	}
}
