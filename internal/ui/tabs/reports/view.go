package reports

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// EmptyText is shown when a report page has no rows.
const EmptyText = "No records found for the selected period."

// View renders the reports tab.
func (m *Model) View() string {
	cfg := m.config()
	e := m.engine()

	sections := []string{
		m.renderTitle(cfg),
		m.renderKinds(),
		"",
		m.renderFilters(cfg),
	}
	if text := e.ErrorText(); text != "" && e.WindowErr() != nil {
		sections = append(sections, styles.ErrorTextStyle.Render("⚠ "+text))
	}
	if m.mode == modeStations {
		sections = append(sections, m.renderPicker(cfg))
	}
	sections = append(sections, "", m.renderBody(e), m.renderFooter(e))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m *Model) renderTitle(cfg models.ReportConfig) string {
	title := styles.TitleStyle.Render(cfg.Title)
	if cfg.Badge != "" {
		title += " " + styles.ButtonActiveStyle.Render(cfg.Badge)
	}
	return title
}

// renderKinds renders the report selector.
func (m *Model) renderKinds() string {
	parts := make([]string, 0, len(m.kinds))
	for i, k := range m.kinds {
		cfg, _ := models.ConfigFor(k)
		label := cfg.Title
		if label == "" {
			label = string(k)
		}
		if i == m.kindIdx {
			parts = append(parts, styles.ButtonActiveStyle.Render(label))
		} else {
			parts = append(parts, styles.ButtonInactiveStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...) + "  " + styles.HelpStyle.Render("[ ]")
}

// renderFilters renders the time window and the station selection.
func (m *Model) renderFilters(cfg models.ReportConfig) string {
	w := m.engine().Window()

	from := styles.InfoTextStyle.Render(w.Start.Format(inputLayout))
	to := styles.InfoTextStyle.Render(w.End.Format(inputLayout))
	switch m.mode {
	case modeEditStart:
		from = m.input.View()
	case modeEditEnd:
		to = m.input.View()
	}

	label := cfg.StationLabel
	if label == "" {
		label = "Stations"
	}

	lines := []string{
		fmt.Sprintf("%s %s   %s %s   %s %s",
			styles.HelpStyle.Render("From"), from,
			styles.HelpStyle.Render("To"), to,
			styles.HelpStyle.Render(label), m.selectionLabel()),
	}
	if m.inputErr != "" {
		lines = append(lines, styles.ErrorTextStyle.Render(m.inputErr))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m *Model) selectionLabel() string {
	sel := m.Selection()
	if sel.IsAll() {
		return styles.InfoTextStyle.Render("All stations")
	}
	titles := make([]string, 0, len(sel))
	for _, ref := range m.refs() {
		if sel.Contains(ref.ID) {
			titles = append(titles, ref.Title)
		}
	}
	if len(titles) == 0 {
		return styles.InfoTextStyle.Render(fmt.Sprintf("%d selected", len(sel)))
	}
	return styles.InfoTextStyle.Render(ansi.Truncate(strings.Join(titles, ", "), max(m.width-60, 20), "..."))
}

// renderPicker renders the station checklist.
func (m *Model) renderPicker(cfg models.ReportConfig) string {
	refs := m.refs()
	sel := m.Selection()

	rows := []string{styles.CardTitleStyle.Render("Select " + strings.ToLower(cfg.StationLabel))}
	if len(refs) == 0 {
		rows = append(rows, styles.HelpStyle.Render("No stations known yet."))
	}
	for i, ref := range refs {
		check := "[ ]"
		if sel.Contains(ref.ID) {
			check = styles.SuccessTextStyle.Render("[x]")
		}
		line := fmt.Sprintf("%s %s", check, ref.Title)
		if i == m.stationCursor {
			line = styles.SelectedListItemStyle.Render("› " + line)
		} else {
			line = styles.ListItemStyle.Render("  " + line)
		}
		rows = append(rows, line)
	}

	hint := "space toggle · a all stations · enter close"
	if !cfg.MultiSelect {
		hint = "space select one · a all stations · enter close"
	}
	rows = append(rows, "", styles.HelpStyle.Render(hint))

	return styles.FocusedBorderStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderBody renders the table, or the loading, error or empty state.
func (m *Model) renderBody(e *report.Engine) string {
	switch {
	case e.Loading() && len(e.Rows()) == 0:
		return m.loader.View(components.PhaseOf(true, false, e.Err() != nil))
	case e.Err() != nil:
		return styles.ErrorTextStyle.Render(report.FetchErrorText)
	case !e.Initialized():
		return styles.HelpStyle.Render("Press g to generate the report.")
	case len(e.Rows()) == 0:
		return styles.HelpStyle.Render(EmptyText)
	}

	body := m.table.View()
	if e.Loading() {
		body = lipgloss.JoinVertical(lipgloss.Left, body, m.loader.View(components.LoadRefresh))
	}
	return body
}

func (m *Model) renderFooter(e *report.Engine) string {
	line := e.Footer() + "  ·  " + e.PageLabel()
	if t := e.LastUpdated(); !t.IsZero() {
		line += "  ·  updated " + t.Format("15:04:05")
	}
	lines := []string{"", styles.HelpStyle.Render(line)}

	if m.exports != nil {
		if req, ok := m.exports.Current(); ok {
			cfg, _ := models.ConfigFor(req.Kind)
			lines = append(lines, styles.WarningTextStyle.Render(
				fmt.Sprintf("Exporting %s %s...", cfg.Title, req.Format.Label())))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// columnWidths splits width across columns, giving the first (serial)
// column a fixed narrow share.
func columnWidths(cols []models.Column, width int) []int {
	widths := make([]int, len(cols))
	if len(cols) == 0 {
		return widths
	}
	const serial = 6
	rest := len(cols) - 1
	each := 12
	if rest > 0 {
		each = max((width-serial)/rest-2, 10)
	}
	for i := range cols {
		widths[i] = each
	}
	widths[0] = serial
	return widths
}

// alignCell pads s inside a cell of width w.
func alignCell(s string, w int, align models.Alignment) string {
	s = ansi.Truncate(s, w, "…")
	pad := w - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	switch align {
	case models.AlignRight:
		return strings.Repeat(" ", pad) + s
	case models.AlignCenter:
		left := pad / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
	default:
		return s + strings.Repeat(" ", pad)
	}
}
