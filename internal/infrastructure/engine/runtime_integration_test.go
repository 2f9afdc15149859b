package engine

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/speccover/internal/domain"
)

// TestRuntimeDriverAttributesRealCoverage builds a coverage-instrumented
// main that records two examples through RuntimeDriver and checks the
// attribution produced by runtime/coverage and go tool covdata.
func TestRuntimeDriverAttributesRealCoverage(t *testing.T) {
	if testing.Short() {
		t.Skip("builds and runs an instrumented binary")
	}
	goBin, err := exec.LookPath("go")
	if err != nil {
		t.Skip("go command not available")
	}

	bin := filepath.Join(t.TempDir(), "covermain")
	build := exec.Command(goBin, "build", "-cover", "-covermode=atomic",
		"-coverpkg=./testdata/covermain/calc", "-o", bin, "./testdata/covermain")
	out, err := build.CombinedOutput()
	require.NoError(t, err, "go build: %s", out)

	run := exec.Command(bin, t.TempDir())
	run.Env = append(os.Environ(), "GOCOVERDIR="+t.TempDir())
	var stderr strings.Builder
	run.Stderr = &stderr
	stdout, err := run.Output()
	require.NoError(t, err, "covermain: %s", stderr.String())

	var cov domain.Coverage
	require.NoError(t, json.Unmarshal(stdout, &cov))
	assert.Equal(t, "atomic", cov.Mode)
	require.Len(t, cov.Files, 1)
	assert.True(t, strings.HasSuffix(cov.Files[0].Path, "testdata/covermain/calc/calc.go"), cov.Files[0].Path)

	blocks := cov.Files[0].Blocks
	assert.ElementsMatch(t, []string{"abs::positive", "abs::negative"}, coveredFrom(t, blocks, 3))
	assert.Equal(t, []string{"abs::negative"}, coveredFrom(t, blocks, 4))
	assert.Equal(t, []string{"abs::positive"}, coveredFrom(t, blocks, 7))
}

// coveredFrom returns the examples that ran the block starting on line.
func coveredFrom(t *testing.T, blocks []domain.BlockCoverage, line int) []string {
	t.Helper()
	for _, b := range blocks {
		if b.StartLine == line {
			return b.CoveredBy
		}
	}
	t.Fatalf("no block starts on line %d", line)
	return nil
}
