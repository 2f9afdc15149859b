// Package console is the listener's output sink.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"github.com/felixgeelhaar/speccover/internal/application"
)

// Console writes lines to Out. Decorated is detected from Out when nil.
type Console struct {
	Out       io.Writer
	Verbose   bool
	Decorated *bool

	mu sync.Mutex
}

// New returns a console on stdout.
func New(verbose bool) *Console {
	return &Console{Out: os.Stdout, Verbose: verbose}
}

func (c *Console) IsVerbose() bool {
	return c.Verbose
}

// IsDecorated reports whether colour output is wanted: an explicit
// setting wins, then NO_COLOR, then whether Out is a terminal.
func (c *Console) IsDecorated() bool {
	if c.Decorated != nil {
		return *c.Decorated
	}
	return colorEnabled(c.Out)
}

func (c *Console) WriteLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintln(c.out(), text)
}

func (c *Console) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

var _ application.Console = (*Console)(nil)
