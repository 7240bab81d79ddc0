package components

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// LoadPhase describes what a data view is waiting for.
type LoadPhase int

const (
	LoadIdle    LoadPhase = iota
	LoadFirst             // nothing to show yet
	LoadRefresh           // data on screen, newer data on the way
	LoadRetry             // the previous attempt failed
)

// PhaseOf derives the phase from a view's loading flags.
func PhaseOf(loading, hasData, failed bool) LoadPhase {
	switch {
	case !loading:
		return LoadIdle
	case failed:
		return LoadRetry
	case hasData:
		return LoadRefresh
	}
	return LoadFirst
}

// Loader is the activity indicator of a station feed or report page.
type Loader struct {
	spinner spinner.Model
	subject string
	style   lipgloss.Style
}

// NewLoader creates a loader for subject, e.g. "stations" or "report".
func NewLoader(subject string) Loader {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(styles.Primary)

	return Loader{
		spinner: s,
		subject: subject,
		style:   lipgloss.NewStyle().Foreground(styles.TextSecondary),
	}
}

// Init starts the animation.
func (l Loader) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the animation on spinner ticks.
func (l Loader) Update(msg tea.Msg) (Loader, tea.Cmd) {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return l, cmd
}

// Text returns the label for phase.
func (l Loader) Text(phase LoadPhase) string {
	switch phase {
	case LoadIdle:
		return ""
	case LoadRefresh:
		return "Refreshing " + l.subject + "..."
	case LoadRetry:
		return "Retrying " + l.subject + "..."
	}
	return "Loading " + l.subject + "..."
}

// View renders the spinner and label, or "" when idle.
func (l Loader) View(phase LoadPhase) string {
	if phase == LoadIdle {
		return ""
	}
	return l.spinner.View() + " " + l.style.Render(l.Text(phase))
}

// Centered renders View in the middle of a width x height area.
func (l Loader) Centered(phase LoadPhase, width, height int) string {
	return styles.CenterBoth(l.View(phase), width, height)
}
