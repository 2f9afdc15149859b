package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/speccover/internal/application"
	"github.com/felixgeelhaar/speccover/internal/domain"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/config"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/report"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/watcher"
	"github.com/felixgeelhaar/speccover/internal/infrastructure/wizard"
	"github.com/felixgeelhaar/speccover/internal/mcp"
	"github.com/felixgeelhaar/speccover/internal/service"
)

const defaultHistoryPath = ".speccover/history.json"

var (
	initWizard   = wizard.Run
	newWatcher   = func() (fileWatcher, error) { return watcher.New(watcher.WithDebounce(500 * time.Millisecond)) }
	watchSignals = []os.Signal{os.Interrupt, syscall.SIGTERM}
)

var runMCP = func(ctx context.Context, svc service.Service, cfg mcp.Config) error {
	return mcp.New(svc, cfg, Version).Run(ctx)
}

type fileWatcher interface {
	WatchFile(path string) error
	Events(ctx context.Context) <-chan struct{}
	Close() error
}

func Run(args []string, stdout, stderr io.Writer, svc service.Service) int {
	if len(args) < 2 {
		usage(stderr)
		return 2
	}

	ctx := context.Background()

	switch args[1] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", config.DefaultPath, "Config file path")
		force := fs.Bool("force", false, "Overwrite existing config file")
		noInteractive := fs.Bool("no-interactive", false, "Skip the interactive init wizard")
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		cfg := application.Config{
			Listener: application.DefaultOptions(),
			Text:     application.DefaultTextOptions(),
		}
		if !*noInteractive {
			formats := report.NewRegistry(report.Options{}).Formats()
			var confirmed bool
			var err error
			cfg, confirmed, err = initWizard(cfg, formats, stdout, os.Stdin)
			if err != nil {
				return exitCode(err, 5, stderr)
			}
			if !confirmed {
				fmt.Fprintln(stdout, "Init cancelled; no configuration written.")
				return 0
			}
		}
		if err := writeConfigFile(*configPath, cfg, stdout, *force); err != nil {
			return exitCode(err, 2, stderr)
		}
		if *configPath != "-" {
			fmt.Fprintf(stdout, "Config written to %s\n", *configPath)
		}
		return 0
	case "filter":
		fs := flag.NewFlagSet("filter", flag.ContinueOnError)
		fs.SetOutput(stderr)
		configPath := fs.String("config", "", "Config file path (default .speccover.yaml when present)")
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		if fs.NArg() == 0 {
			fmt.Fprintln(stderr, "filter: at least one path is required")
			return 2
		}
		results, active, err := svc.Filter(ctx, service.FilterOptions{ConfigPath: *configPath, Paths: fs.Args()})
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		printFilterResults(results, active, stdout)
		return 0
	case "report":
		fs := flag.NewFlagSet("report", flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := reportFlags(fs)
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		return exitCode(svc.Report(ctx, *opts), 3, stderr)
	case "watch":
		fs := flag.NewFlagSet("watch", flag.ContinueOnError)
		fs.SetOutput(stderr)
		opts := reportFlags(fs)
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		return runWatch(ctx, stdout, stderr, svc, *opts)
	case "trend":
		fs := flag.NewFlagSet("trend", flag.ContinueOnError)
		fs.SetOutput(stderr)
		historyPath := fs.String("history", defaultHistoryPath, "History file path")
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		h, err := svc.History(ctx, *historyPath)
		if err != nil {
			return exitCode(err, 3, stderr)
		}
		printTrend(h, stdout)
		return 0
	case "mcp":
		fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
		fs.SetOutput(stderr)
		cfg := mcp.DefaultConfig()
		fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "Config file path (default .speccover.yaml when present)")
		fs.StringVar(&cfg.ProfilePath, "profile", cfg.ProfilePath, "Coverage profile path")
		fs.StringVar(&cfg.HistoryPath, "history", cfg.HistoryPath, "History file path")
		if err := fs.Parse(args[2:]); err != nil {
			return 2
		}
		ctx, stop := signal.NotifyContext(ctx, watchSignals...)
		defer stop()
		return exitCode(runMCP(ctx, svc, cfg), 3, stderr)
	case "version":
		fmt.Fprintf(stdout, "speccover %s (commit %s, built %s)\n", Version, Commit, Date)
		return 0
	default:
		usage(stderr)
		return 2
	}
}

func reportFlags(fs *flag.FlagSet) *service.ReportOptions {
	opts := &service.ReportOptions{}
	fs.StringVar(&opts.ConfigPath, "config", "", "Config file path (default .speccover.yaml when present)")
	fs.StringVar(&opts.Profile, "profile", "coverage.out", "Coverage profile path")
	fs.StringVar(&opts.Label, "label", "", "Example label recorded for the profile")
	fs.BoolVar(&opts.Verbose, "v", false, "Print progress for every format")
	fs.BoolVar(&opts.NoCoverage, "no-coverage", false, "Skip report generation")
	return opts
}

func writeConfigFile(path string, cfg application.Config, stdout io.Writer, force bool) error {
	if path == "-" {
		return config.Write(stdout, cfg)
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config %s already exists", path)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return config.Write(file, cfg)
}

func usage(w io.Writer) {
	fmt.Fprintln(w, `speccover <command>

Commands:
  init     Write a config file, interactively by default
  filter   Show which paths the configured filter keeps
  report   Render the configured reports from a coverprofile
  watch    Re-render reports whenever the coverprofile changes
  trend    Show coverage trend from the history file
  mcp      Serve coverage tools over MCP on stdio
  version  Print version information`)
}

// exitCode maps an error to a process exit code. Configuration
// problems always exit with 2.
func exitCode(err error, code int, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, err)
	if errors.Is(err, application.ErrConfigNotFound) {
		return 2
	}
	return code
}

func printFilterResults(results []service.FilterResult, active bool, w io.Writer) {
	if !active {
		fmt.Fprintln(w, "Coverage is skipped; no filter applies.")
	}
	for _, r := range results {
		state := "excluded"
		if r.Included {
			state = "included"
		}
		fmt.Fprintf(w, "%-8s %s\n", state, r.Path)
	}
}

func printTrend(h domain.History, w io.Writer) {
	latest := h.LatestEntry()
	if latest == nil {
		fmt.Fprintln(w, "No history recorded yet.")
		return
	}
	trend := h.Trend()
	fmt.Fprintf(w, "Coverage Trend: %s %.2f%% (%+.2f%%)\n", trend.Direction.Symbol(), latest.Overall, trend.Delta)
	fmt.Fprintf(w, "Last run: %s, %d files, %d examples\n",
		latest.Timestamp.Format(time.RFC3339), latest.Files, latest.Examples)
	fmt.Fprintf(w, "\nHistory: %d entries\n", len(h.Entries))
}

func runWatch(ctx context.Context, stdout, stderr io.Writer, svc service.Service, opts service.ReportOptions) int {
	w, err := newWatcher()
	if err != nil {
		fmt.Fprintf(stderr, "failed to create watcher: %v\n", err)
		return 3
	}
	defer w.Close()

	if err := w.WatchFile(opts.Profile); err != nil {
		fmt.Fprintf(stderr, "failed to watch %s: %v\n", opts.Profile, err)
		return 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, watchSignals...)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(stdout, "\nStopping watch mode...")
			cancel()
		case <-ctx.Done():
		}
	}()

	fmt.Fprintf(stdout, "Watching %s for changes... (Ctrl+C to stop)\n", opts.Profile)

	run := 0
	render := func() {
		run++
		fmt.Fprintf(stdout, "\n--- Run #%d at %s ---\n", run, time.Now().Format("15:04:05"))
		if err := svc.Report(ctx, opts); err != nil {
			fmt.Fprintf(stderr, "Report failed: %v\n", err)
			return
		}
		fmt.Fprintln(stdout, "Reports rendered")
	}

	if _, err := os.Stat(opts.Profile); err == nil {
		render()
	}
	changes := w.Events(ctx)
	for {
		select {
		case <-ctx.Done():
			return 0
		case _, ok := <-changes:
			if !ok {
				return 0
			}
			render()
		}
	}
}
