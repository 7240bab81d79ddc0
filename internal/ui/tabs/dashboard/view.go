package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// feedOrder lists the live feeds in the order they are reported.
var feedOrder = []struct {
	source string
	label  string
}{
	{overview.SourceSummary, "Summary"},
	{overview.SourceDischarge, "Discharge"},
	{overview.SourceWeather, "Weather (AWS)"},
	{overview.SourceRain, "Rain Gauges"},
	{overview.SourceDam, "Dam"},
}

// View renders the dashboard component.
func (m *Model) View() string {
	snap, ok := m.state.Snapshot()
	if !ok {
		return m.renderLoading()
	}

	sections := []string{
		m.renderTitle(snap),
		m.renderSummary(snap),
		m.renderDam(snap),
		m.renderFeeds(snap),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)

	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

// renderLoading renders the loading state.
func (m *Model) renderLoading() string {
	content := lipgloss.JoinVertical(lipgloss.Center,
		m.loader.View(components.LoadFirst),
		"",
		components.LoadingBar(40, m.animationFrame),
	)
	return styles.CenterBoth(content, m.width, m.height)
}

// renderTitle renders the dashboard title.
func (m *Model) renderTitle(snap overview.Snapshot) string {
	title := styles.TitleStyle.Render("Hydrological Monitoring Overview")

	stamp := "Last updated: never"
	if !snap.LastUpdated.IsZero() {
		stamp = "Last updated: " + snap.LastUpdated.Format("02 Jan 2006 15:04:05")
	}
	subtitle := styles.HelpStyle.Render(stamp)

	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

// renderSummary renders the metric cards, or the error state when the
// summary has never been received.
func (m *Model) renderSummary(snap overview.Snapshot) string {
	if snap.Summary == nil {
		cardWidth := max(m.width-6, 40)
		rows := []string{
			styles.ErrorTextStyle.Bold(true).Render("⚠ " + overview.SummaryErrorText),
			"",
			styles.HelpStyle.Render("Station counts are unavailable. Press r to retry."),
		}
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	cards := snap.Summary.Cards()
	rendered := make([]string, 0, len(cards))
	for i, c := range cards {
		style := styles.MetricCardStyle
		if i == m.selectedCard {
			style = style.BorderForeground(styles.Primary)
		}
		title := styles.HelpStyle.Render(c.Title)
		if c.Clickable {
			title = styles.HelpStyle.Render(c.Title + " ›")
		}
		rendered = append(rendered, style.Render(lipgloss.JoinVertical(lipgloss.Left,
			styles.MetricValueStyle.Render(c.Value),
			title,
		)))
	}

	row := components.WrapHorizontal(rendered, max(m.width-6, 40))
	if snap.SummaryErr != nil {
		note := styles.WarningTextStyle.Render("Showing last known counts")
		return lipgloss.JoinVertical(lipgloss.Left, row, note, "")
	}
	return lipgloss.JoinVertical(lipgloss.Left, row, "")
}

// renderDam renders the dam level bars and the recent level trend.
func (m *Model) renderDam(snap overview.Snapshot) string {
	cardWidth := max(m.width-6, 40)

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	if snap.Dam == nil {
		rows := []string{
			fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Dam")),
			styles.HelpStyle.Render("  No dam reading available"),
		}
		return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	dam := *snap.Dam
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render(dam.Title))}
	if !dam.RecordedAt.IsZero() {
		rows = append(rows, styles.HelpStyle.Render("Recorded "+dam.RecordedAt.Format("15:04")))
	}

	contentWidth := max(cardWidth-6, 40)
	for _, lvl := range damLevels {
		reading := lvl.value(dam)
		shown := m.displayValue(lvl.key, reading)
		rows = append(rows, m.levelBar.View(lvl.label, shown, axisMax(snap, lvl.key, reading), "m", contentWidth))
	}

	if len(snap.DamTrend) > 1 {
		values := make([]float64, 0, len(snap.DamTrend))
		for _, d := range snap.DamTrend {
			values = append(values, d.LevelPier1)
		}
		caption := fmt.Sprintf("Level Pier 1 (m), last %d readings", len(values))
		rows = append(rows, "", components.RenderLineChart(values, contentWidth-10, 6, caption))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderFeeds lists every live feed with where its data came from.
func (m *Model) renderFeeds(snap overview.Snapshot) string {
	cardWidth := max(m.width-6, 40)

	rows := []string{styles.CardTitleStyle.Render("Live Feeds")}
	for _, f := range feedOrder {
		prov := snap.Provenance[f.source]
		if prov == "" {
			prov = overview.ProvenanceNone
		}

		line := fmt.Sprintf("%s %-14s %s", provenanceIcon(prov), f.label, styles.HelpStyle.Render(string(prov)))
		if err, failed := snap.SourceErrors[f.source]; failed && err != nil {
			line += "  " + styles.ErrorTextStyle.Render(truncate(err.Error(), max(cardWidth-40, 20)))
		}
		rows = append(rows, line)
	}

	counts := fmt.Sprintf("%d discharge · %d weather · %d rain gauge stations",
		len(snap.Discharge), len(snap.Weather), len(snap.RainGauges))
	rows = append(rows, "", styles.HelpStyle.Render(counts))
	if !snap.FetchedAt.IsZero() {
		rows = append(rows, styles.HelpStyle.Render("Fetched "+snap.FetchedAt.Format("15:04:05")))
	}

	return styles.CardStyle.Width(cardWidth).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func provenanceIcon(p overview.Provenance) string {
	switch p {
	case overview.ProvenanceLive:
		return styles.SuccessTextStyle.Render("●")
	case overview.ProvenanceLast, overview.ProvenanceCached:
		return styles.WarningTextStyle.Render("◐")
	default:
		return styles.ErrorTextStyle.Render("○")
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
