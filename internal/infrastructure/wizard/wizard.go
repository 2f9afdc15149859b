// Package wizard is the interactive front end of `speccover init`.
package wizard

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/felixgeelhaar/speccover/internal/application"
)

// DefaultDestinations are proposed for file formats the user enables.
var DefaultDestinations = map[string]string{
	"html":      "coverage",
	"clover":    "coverage/clover.xml",
	"cobertura": "coverage/cobertura.xml",
	"lcov":      "coverage/lcov.info",
	"profile":   "coverage/merged.out",
	"badge":     "coverage/badge.svg",
	"history":   ".speccover/history.json",
}

type wizardState int

const (
	stateIntro wizardState = iota
	stateFormats
	stateBounds
	stateConfirm
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#16A34A"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#CA8A04"))
)

type formatChoice struct {
	name    string
	enabled bool
}

type initWizardModel struct {
	state     wizardState
	formats   []formatChoice
	cursor    int
	low       float64
	high      float64
	base      application.Config
	warning   string
	confirmed bool
	aborted   bool
}

// Run lets the user pick report formats and colour bounds, starting
// from cfg. formats lists every format the user may enable. The bool
// result is false when the user cancelled.
func Run(cfg application.Config, formats []string, stdout io.Writer, stdin io.Reader) (application.Config, bool, error) {
	model := newInitWizardModel(cfg, formats)
	program := tea.NewProgram(model, tea.WithInput(stdin), tea.WithOutput(stdout))
	res, err := program.Run()
	if err != nil {
		return cfg, false, err
	}
	final, ok := res.(*initWizardModel)
	if !ok {
		return cfg, false, fmt.Errorf("unexpected wizard state")
	}
	if final.aborted || !final.confirmed {
		return cfg, false, nil
	}
	return final.toConfig(), true, nil
}

func newInitWizardModel(cfg application.Config, formats []string) *initWizardModel {
	opts := application.DefaultOptions().Merge(cfg.Listener)
	enabled := make(map[string]bool, len(opts.Formats))
	for _, f := range opts.Formats {
		enabled[f] = true
	}
	choices := make([]formatChoice, len(formats))
	for i, f := range formats {
		choices[i] = formatChoice{name: f, enabled: enabled[f]}
	}

	text := cfg.Text
	if text == (application.TextOptions{}) {
		text = application.DefaultTextOptions()
	}
	return &initWizardModel{
		state:   stateIntro,
		formats: choices,
		low:     text.LowUpperBound,
		high:    text.HighLowerBound,
		base:    cfg,
	}
}

func (m *initWizardModel) Init() tea.Cmd {
	return nil
}

func (m *initWizardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q":
		m.aborted = true
		return m, tea.Quit
	case "enter":
		return m.advance()
	case "esc":
		if m.state > stateFormats {
			m.state--
			m.cursor = 0
		}
	case "up", "k":
		m.moveCursor(-1)
	case "down", "j":
		m.moveCursor(1)
	case " ", "space", "x":
		if m.state == stateFormats {
			m.toggle()
		}
	case "left", "-":
		if m.state == stateBounds {
			m.adjustBound(-5)
		}
	case "right", "+":
		if m.state == stateBounds {
			m.adjustBound(5)
		}
	}
	return m, nil
}

func (m *initWizardModel) advance() (tea.Model, tea.Cmd) {
	m.warning = ""
	switch m.state {
	case stateIntro:
		m.state = stateFormats
	case stateFormats:
		if len(m.selected()) == 0 {
			m.warning = "Select at least one format."
			return m, nil
		}
		m.state = stateBounds
		m.cursor = 0
	case stateBounds:
		m.state = stateConfirm
	case stateConfirm:
		m.confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *initWizardModel) moveCursor(delta int) {
	rows := 0
	switch m.state {
	case stateFormats:
		rows = len(m.formats)
	case stateBounds:
		rows = 2
	}
	if rows == 0 {
		return
	}
	m.cursor = int(clamp(float64(m.cursor+delta), 0, float64(rows-1)))
}

func (m *initWizardModel) toggle() {
	if m.cursor < len(m.formats) {
		m.formats[m.cursor].enabled = !m.formats[m.cursor].enabled
	}
}

// adjustBound moves the selected bound, keeping low <= high.
func (m *initWizardModel) adjustBound(delta float64) {
	if m.cursor == 0 {
		m.low = clamp(m.low+delta, 0, m.high)
		return
	}
	m.high = clamp(m.high+delta, m.low, 100)
}

func (m *initWizardModel) selected() []string {
	var out []string
	for _, f := range m.formats {
		if f.enabled {
			out = append(out, f.name)
		}
	}
	return out
}

func (m *initWizardModel) View() string {
	var b strings.Builder
	switch m.state {
	case stateIntro:
		fmt.Fprintf(&b, "\n%s\n\n", titleStyle.Render("speccover init"))
		fmt.Fprintf(&b, "Choose which coverage reports are written after each suite.\n\n")
		fmt.Fprintf(&b, "Press Enter to continue, or Ctrl+C to cancel.\n")
	case stateFormats:
		fmt.Fprintf(&b, "\n%s\n\n", titleStyle.Render("Report formats"))
		fmt.Fprintf(&b, "Use ↑/↓ to move, space to toggle.\n\n")
		for i, f := range m.formats {
			box := "[ ]"
			if f.enabled {
				box = selectedStyle.Render("[x]")
			}
			fmt.Fprintf(&b, "%s%s %s\n", cursor(m.cursor == i), box, f.name)
		}
		if m.warning != "" {
			fmt.Fprintf(&b, "\n%s\n", warnStyle.Render(m.warning))
		}
		fmt.Fprintf(&b, "\nEnter to continue, q to cancel.\n")
	case stateBounds:
		fmt.Fprintf(&b, "\n%s\n\n", titleStyle.Render("Colour bounds"))
		fmt.Fprintf(&b, "Use ↑/↓ to move, ←/→ or +/- to change values.\n\n")
		fmt.Fprintf(&b, "%sLow below:     %.0f%%\n", cursor(m.cursor == 0), m.low)
		fmt.Fprintf(&b, "%sHigh from:     %.0f%%\n", cursor(m.cursor == 1), m.high)
		fmt.Fprintf(&b, "\nEnter to continue, Esc to go back.\n")
	case stateConfirm:
		cfg := m.toConfig()
		fmt.Fprintf(&b, "\n%s\n\n", titleStyle.Render("Ready to write configuration"))
		for _, f := range cfg.Listener.Formats {
			if dest, ok := cfg.Listener.Destinations[f]; ok {
				fmt.Fprintf(&b, "  %s -> %s\n", f, dest)
			} else {
				fmt.Fprintf(&b, "  %s (console)\n", f)
			}
		}
		fmt.Fprintf(&b, "\nColour bounds: low below %.0f%%, high from %.0f%%\n", m.low, m.high)
		fmt.Fprintf(&b, "\nPress Enter to save, Esc to go back, q to cancel.\n")
	}
	return b.String()
}

func (m *initWizardModel) toConfig() application.Config {
	cfg := m.base
	opts := application.DefaultOptions().Merge(cfg.Listener)
	opts.Formats = m.selected()

	dests := make(map[string]string)
	for _, f := range opts.Formats {
		if dest, ok := opts.Destinations[f]; ok {
			dests[f] = dest
		} else if dest, ok := DefaultDestinations[f]; ok {
			dests[f] = dest
		}
	}
	opts.Destinations = dests
	cfg.Listener = opts

	if cfg.Text == (application.TextOptions{}) {
		cfg.Text = application.DefaultTextOptions()
	}
	cfg.Text.LowUpperBound = m.low
	cfg.Text.HighLowerBound = m.high
	return cfg
}

func cursor(active bool) string {
	if active {
		return "> "
	}
	return "  "
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
