package gotool

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecFunc runs a command and returns its combined output.
type ExecFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Covdata converts binary coverage directories (GOCOVERDIR layout) into
// the text profile format using `go tool covdata textfmt`.
type Covdata struct {
	// Exec defaults to running the real go command.
	Exec ExecFunc
}

// TextFormat merges the counter data found in dirs into a text profile
// written to out.
func (c Covdata) TextFormat(ctx context.Context, out string, dirs ...string) error {
	if len(dirs) == 0 {
		return fmt.Errorf("covdata textfmt: no input directories")
	}
	args := []string{"tool", "covdata", "textfmt", "-i=" + strings.Join(dirs, ","), "-o=" + out}
	run := c.Exec
	if run == nil {
		run = runCommand
	}
	if output, err := run(ctx, "go", args...); err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			return fmt.Errorf("covdata textfmt: %w", err)
		}
		return fmt.Errorf("covdata textfmt: %w: %s", err, msg)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}
