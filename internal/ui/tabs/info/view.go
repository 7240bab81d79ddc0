package info

import (
	"fmt"
	"runtime"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
	"github.com/j-veylop/hydro-dashboard-tui/internal/version"
)

// View renders the info tab.
func (m *Model) View() string {
	var sections []string

	// Title
	sections = append(sections, m.renderTitle())

	// Configuration card
	sections = append(sections, m.renderConfigCard())

	sections = append(sections, m.renderAutoLoopCard())
	sections = append(sections, m.renderExportsCard())

	// About card
	sections = append(sections, m.renderAboutCard())

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderTitle renders the info tab title.
func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Info")
	subtitle := styles.HelpStyle.Render("Configuration, rotation status and export history")

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) cardWidth() int {
	return min(max(m.width-6, 50), 100)
}

// renderConfigCard renders the effective configuration.
func (m *Model) renderConfigCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("Configuration"))
	rows = append(rows, "")

	if m.config != nil {
		cfg := m.config
		configFile := cfg.ConfigFile
		if configFile == "" {
			configFile = "(defaults and environment)"
		}
		metricsAddr := cfg.MetricsAddr
		if metricsAddr == "" {
			metricsAddr = "disabled"
		}

		rows = append(rows, m.renderConfigRow("Config File", configFile))
		rows = append(rows, m.renderConfigRow("API", cfg.API.BaseURL))
		rows = append(rows, m.renderConfigRow("Database", cfg.DatabasePath))
		rows = append(rows, m.renderConfigRow("Stations", cfg.StationsPath))
		rows = append(rows, m.renderConfigRow("Export Dir", cfg.Export.Dir))
		rows = append(rows, m.renderConfigRow("Export Mode", cfg.Export.Mode))
		rows = append(rows, m.renderConfigRow("Poll Interval", cfg.PollInterval.String()))
		rows = append(rows, m.renderConfigRow("Retention", fmt.Sprintf("%d days", cfg.RetentionDays)))
		rows = append(rows, m.renderConfigRow("Metrics", metricsAddr))
	} else {
		rows = append(rows, styles.HelpStyle.Render("Configuration not loaded"))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderConfigRow renders a configuration key-value row.
func (m *Model) renderConfigRow(label, value string) string {
	labelStyle := lipgloss.NewStyle().
		Width(18).
		Foreground(styles.TextMuted)

	valueStyle := lipgloss.NewStyle().
		Foreground(styles.TextPrimary)

	return labelStyle.Render(label+":") + " " + valueStyle.Render(value)
}

// renderAutoLoopCard shows the rotation settings and live scheduler state.
func (m *Model) renderAutoLoopCard() string {
	rows := []string{styles.CardTitleStyle.Render("Auto Loop"), ""}

	if m.config != nil {
		al := m.config.AutoLoop
		enabled := "off"
		if al.Enabled {
			enabled = "on"
		}
		rows = append(rows, m.renderConfigRow("Enabled", enabled))
		rows = append(rows, m.renderConfigRow("Inactivity", al.Inactivity.String()))
		rows = append(rows, m.renderConfigRow("Dwell", al.Dwell.String()))
		rows = append(rows, m.renderConfigRow("Min Width", fmt.Sprintf("%d columns (now %d)", al.MinWidth, m.width)))
	}

	st := m.state.AutoLoop()
	rows = append(rows, m.renderConfigRow("State", st.State.String()))
	switch {
	case st.Rotating:
		rows = append(rows, m.renderConfigRow("Showing", st.CurrentTab))
		rows = append(rows, m.renderConfigRow("Next Tab In", st.UntilNextAction.Round(time.Second).String()))
	case st.Idle:
		rows = append(rows, m.renderConfigRow("Starts In", st.UntilNextAction.Round(time.Second).String()))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

// renderExportsCard lists recent exports, newest first.
func (m *Model) renderExportsCard() string {
	rows := []string{styles.CardTitleStyle.Render("Export History"), ""}

	records := m.state.Exports()
	if len(records) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No exports yet"))
	}
	for i, rec := range records {
		if i == maxHistoryRows {
			rows = append(rows, styles.HelpStyle.Render(fmt.Sprintf("… %d more", len(records)-maxHistoryRows)))
			break
		}
		rows = append(rows, renderExport(rec))
	}

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}

func renderExport(rec models.ExportRecord) string {
	title := string(rec.Kind)
	if cfg, ok := models.ConfigFor(rec.Kind); ok {
		title = cfg.Title
	}

	status := styles.SuccessTextStyle.Render("✓")
	detail := rec.Path
	if !rec.Succeeded() {
		status = styles.ErrorTextStyle.Render("✗")
		detail = styles.ErrorTextStyle.Render(rec.Error)
	}

	return fmt.Sprintf("%s %s  %-6s %s  %s",
		status,
		styles.HelpStyle.Render(rec.CreatedAt.Format("02 Jan 15:04")),
		rec.Format.Label(),
		title,
		detail,
	)
}

// renderAboutCard renders the about/version information card.
func (m *Model) renderAboutCard() string {
	var rows []string
	rows = append(rows, styles.CardTitleStyle.Render("About Hydro Dashboard TUI"))
	rows = append(rows, "")

	rows = append(rows, m.renderConfigRow("Version", version.GetVersion()))
	rows = append(rows, m.renderConfigRow("Build Date", version.GetDate()))
	rows = append(rows, m.renderConfigRow("Git Commit", version.GetCommit()))
	rows = append(rows, m.renderConfigRow("Go Version", runtime.Version()))
	rows = append(rows, m.renderConfigRow("Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)))

	return styles.CardStyle.Width(m.cardWidth()).Render(
		lipgloss.JoinVertical(lipgloss.Left, rows...),
	)
}
