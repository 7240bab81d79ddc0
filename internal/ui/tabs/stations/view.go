package stations

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// twoColumnWidth is the content width from which charts are drawn side by side.
const twoColumnWidth = 120

// View renders the tab.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return m.loader.Centered(components.LoadFirst, m.width, m.height)
	}

	list := m.stations()

	sections := []string{m.renderTitle(list)}
	if len(list) == 0 {
		sections = append(sections, styles.HelpStyle.Render("No station data available."))
	} else {
		sections = append(sections,
			m.renderLegend(list),
			"",
			m.renderStations(list),
		)
		if m.hasParams() {
			sections = append(sections, m.renderParams())
		}
		sections = append(sections, m.renderCharts(list))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, sections...)
	m.viewport.SetContent(content)

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle(list []station) string {
	title := styles.TitleStyle.Render(m.title)

	sub := fmt.Sprintf("%d stations", len(list))
	if n := len(m.selected); n > 0 {
		sub += fmt.Sprintf(" · %d selected", n)
	}
	if snap, ok := m.snapshot(); ok && !snap.FetchedAt.IsZero() {
		sub += " · fetched " + snap.FetchedAt.Format("15:04:05")
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, styles.HelpStyle.Render(sub), "")
}

func (m *Model) renderLegend(list []station) string {
	items := make([]components.LegendItem, 0, len(list))
	for _, s := range list {
		items = append(items, components.LegendItem{
			Label:  s.key,
			Color:  s.color,
			Dimmed: len(m.selected) > 0 && !m.selected[s.key],
		})
	}
	return components.RenderLegend(items)
}

// renderStations renders one card per station, wrapped to the tab width.
func (m *Model) renderStations(list []station) string {
	width := max(m.width-6, 40)

	cards := make([]string, 0, len(list))
	for i, s := range list {
		cards = append(cards, m.renderStationCard(s, i == m.cursor))
	}

	return components.WrapHorizontal(cards, width)
}

func (m *Model) renderStationCard(s station, focused bool) string {
	style := styles.BlurredBorderStyle.MarginRight(1)
	if focused {
		style = styles.FocusedBorderStyle.MarginRight(1)
	}

	check := "[ ]"
	if m.selected[s.key] {
		check = styles.SuccessTextStyle.Render("[x]")
	}
	swatch := lipgloss.NewStyle().Foreground(s.color).Render("■")
	header := fmt.Sprintf("%s %s %s", check, swatch, lipgloss.NewStyle().Bold(true).Render(s.title))

	lines := []string{header}
	for _, r := range s.readings {
		lines = append(lines, fmt.Sprintf("  %-14s %s", r.label,
			styles.InfoTextStyle.Render(strings.TrimSpace(models.FormatValue(r.value)+" "+r.unit))))
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// renderParams renders the parameter toggles of the weather charts.
func (m *Model) renderParams() string {
	charts := m.bundle().Charts
	parts := make([]string, 0, len(charts))
	for i, c := range charts {
		label := c.Title
		switch {
		case m.params[c.Key]:
			label = styles.ButtonActiveStyle.Render(label)
		default:
			label = styles.ButtonInactiveStyle.Render(label)
		}
		if i == m.paramCursor {
			label = styles.FocusedStyle.Render("›") + label
		} else {
			label = " " + label
		}
		parts = append(parts, label)
	}

	hint := "All parameters"
	if n := len(m.params); n > 0 {
		hint = fmt.Sprintf("%d parameter(s) selected", n)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		"",
		styles.SubTitleStyle.Render("Parameters")+"  "+styles.HelpStyle.Render(hint),
		lipgloss.JoinHorizontal(lipgloss.Top, parts...),
	)
}

// renderCharts renders the bar charts, two per row on wide terminals.
func (m *Model) renderCharts(list []station) string {
	charts := m.charts()
	if len(charts) == 0 {
		return styles.HelpStyle.Render("No statistics available.")
	}

	colors := make(map[string]lipgloss.Color, len(list))
	for _, s := range list {
		colors[s.key] = s.color
	}
	opts := components.BarOptions{Highlight: m.selected, Colors: colors}

	contentWidth := max(m.width-6, 40)
	perRow := 1
	if contentWidth >= twoColumnWidth {
		perRow = 2
	}
	cardWidth := contentWidth/perRow - 2 // border

	rendered := make([]string, 0, len(charts))
	for _, c := range charts {
		body := lipgloss.JoinVertical(lipgloss.Left,
			styles.CardTitleStyle.Render(c.Title),
			components.RenderBarChart(c, cardWidth-6, opts),
		)
		rendered = append(rendered, styles.CardStyle.Width(cardWidth).Render(body))
	}

	section := m.bundle().SectionTitle
	if section == "" {
		section = "Statistics"
	}
	return lipgloss.JoinVertical(lipgloss.Left, "", styles.SubTitleStyle.Render(section), components.WrapHorizontal(rendered, contentWidth))
}
