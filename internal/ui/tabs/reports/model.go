// Package reports provides the report tab: paged station reports for every
// report kind, a time window editor, a station picker and file exports.
package reports

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/report"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// inputLayout is how window bounds are shown in the editor.
const inputLayout = "2006-01-02 15:04"

// mode is what the keyboard currently drives.
type mode int

const (
	modeTable mode = iota
	modeStations
	modeEditStart
	modeEditEnd
)

// keyMap defines the key bindings specific to the reports tab.
type keyMap struct {
	NextKind    key.Binding
	PrevKind    key.Binding
	Generate    key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	ExportPDF   key.Binding
	ExportExcel key.Binding
	EditStart   key.Binding
	EditEnd     key.Binding
	Stations    key.Binding
	Toggle      key.Binding
	AllStations key.Binding
	Up          key.Binding
	Down        key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
}

// defaultKeyMap returns the default key bindings for the reports tab.
func defaultKeyMap() keyMap {
	return keyMap{
		NextKind: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next report"),
		),
		PrevKind: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev report"),
		),
		Generate: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "generate"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		ExportPDF: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export PDF"),
		),
		ExportExcel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "export Excel"),
		),
		EditStart: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "edit from"),
		),
		EditEnd: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "edit to"),
		),
		Stations: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "pick stations"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle station"),
		),
		AllStations: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "all stations"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
	}
}

// Model represents the reports tab state.
type Model struct {
	state   *app.State
	exports *report.Coordinator
	keys    keyMap

	kinds   []models.ReportKind
	kindIdx int
	engines map[models.ReportKind]*report.Engine
	// selections is the live operator selection per kind. The engine keeps
	// its own copy pinned to the displayed page.
	selections map[models.ReportKind]models.StationSelection

	mode          mode
	stationCursor int
	input         textinput.Model
	inputErr      string

	table   table.Model
	loader  components.Loader
	width   int
	height  int
}

// New creates the reports tab. Every report kind gets its own engine over
// fetcher; exports go through the shared coordinator.
func New(state *app.State, fetcher report.Fetcher, exports *report.Coordinator, opts ...report.Option) *Model {
	kinds := models.ReportKinds()
	engines := make(map[models.ReportKind]*report.Engine, len(kinds))
	for _, k := range kinds {
		engines[k] = report.NewEngine(k, fetcher, opts...)
	}

	input := textinput.New()
	input.Placeholder = "YYYY-MM-DD HH:MM"
	input.CharLimit = 19
	input.Width = 20

	t := table.New(
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.Subtle).
		BorderBottom(true).
		Bold(true).
		Foreground(styles.Primary)
	s.Selected = s.Selected.
		Foreground(styles.TextPrimary).
		Background(styles.BgAccent).
		Bold(true)
	t.SetStyles(s)

	m := &Model{
		state:      state,
		exports:    exports,
		keys:       defaultKeyMap(),
		kinds:      kinds,
		engines:    engines,
		selections: make(map[models.ReportKind]models.StationSelection, len(kinds)),
		input:      input,
		table:      t,
		loader:     components.NewLoader("report"),
	}
	m.syncTable()
	return m
}

// Init initializes the reports tab.
func (m *Model) Init() tea.Cmd {
	return m.loader.Init()
}

// Activate loads the first page of the current report the first time the
// tab is shown.
func (m *Model) Activate() tea.Cmd {
	return m.engine().Initialize()
}

// Retry repeats the displayed query after a failed fetch.
func (m *Model) Retry() tea.Cmd {
	e := m.engine()
	if e.Err() == nil {
		return nil
	}
	return e.Refetch()
}

// CapturingInput reports whether a window bound is being typed.
func (m *Model) CapturingInput() bool {
	return m.mode == modeEditStart || m.mode == modeEditEnd
}

// Kind returns the report kind on screen.
func (m *Model) Kind() models.ReportKind {
	return m.kinds[m.kindIdx]
}

// Engine returns the engine of a report kind.
func (m *Model) Engine(kind models.ReportKind) *report.Engine {
	return m.engines[kind]
}

func (m *Model) engine() *report.Engine {
	return m.engines[m.Kind()]
}

func (m *Model) config() models.ReportConfig {
	cfg, _ := models.ConfigFor(m.Kind())
	return cfg
}

// Selection returns the live station selection of the current kind.
func (m *Model) Selection() models.StationSelection {
	return m.selections[m.Kind()]
}

// Update handles messages for the reports tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	switch msg := msg.(type) {
	case report.ResultMsg:
		if e, ok := m.engines[msg.Kind]; ok && e.HandleResult(msg) && msg.Kind == m.Kind() {
			m.syncTable()
		}
		return m, nil

	case app.SnapshotUpdatedMsg, app.CatalogUpdatedMsg:
		m.stationCursor = min(m.stationCursor, max(len(m.refs())-1, 0))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeEditStart, modeEditEnd:
			return m, m.updateInput(msg)
		case modeStations:
			return m, m.updatePicker(msg)
		default:
			return m, m.handleKeyMsg(msg)
		}
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	e := m.engine()

	switch {
	case key.Matches(msg, m.keys.NextKind):
		return m.switchKind(1)
	case key.Matches(msg, m.keys.PrevKind):
		return m.switchKind(-1)
	case key.Matches(msg, m.keys.Generate):
		cmd := e.Generate(m.Selection())
		m.syncTable()
		return cmd
	case key.Matches(msg, m.keys.NextPage):
		return e.ChangePage(1)
	case key.Matches(msg, m.keys.PrevPage):
		return e.ChangePage(-1)
	case key.Matches(msg, m.keys.ExportPDF):
		return m.export(models.FormatPDF)
	case key.Matches(msg, m.keys.ExportExcel):
		return m.export(models.FormatSpreadsheet)
	case key.Matches(msg, m.keys.EditStart):
		return m.startEditing(modeEditStart)
	case key.Matches(msg, m.keys.EditEnd):
		return m.startEditing(modeEditEnd)
	case key.Matches(msg, m.keys.Stations):
		m.mode = modeStations
		m.stationCursor = 0
		return nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	e.SetCursor(m.table.Cursor())
	return cmd
}

// switchKind moves to another report kind and loads it on first view.
func (m *Model) switchKind(delta int) tea.Cmd {
	n := len(m.kinds)
	m.kindIdx = (m.kindIdx + delta + n) % n
	m.mode = modeTable
	m.stationCursor = 0
	m.syncTable()
	return m.engine().Initialize()
}

// export starts an export of the live selection and window. An invalid
// window blocks the export.
func (m *Model) export(format models.ExportFormat) tea.Cmd {
	e := m.engine()
	if err := report.Validate(e.Window()); err != nil {
		return notify(app.NotificationWarning, report.Message(err))
	}
	if m.exports == nil {
		return nil
	}
	return m.exports.Start(models.ExportRequest{
		Kind:      m.Kind(),
		Format:    format,
		Selection: m.Selection(),
		Window:    e.Window(),
	})
}

func (m *Model) startEditing(md mode) tea.Cmd {
	w := m.engine().Window()
	value := w.Start
	if md == modeEditEnd {
		value = w.End
	}
	m.mode = md
	m.inputErr = ""
	m.input.SetValue(value.Format(inputLayout))
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.stopEditing()
		return nil
	case key.Matches(msg, m.keys.Confirm):
		t, err := report.ParseTimestamp(m.input.Value())
		if err != nil {
			m.inputErr = "Invalid date, use YYYY-MM-DD HH:MM"
			return nil
		}
		if m.mode == modeEditStart {
			m.engine().SetWindowStart(t)
		} else {
			m.engine().SetWindowEnd(t)
		}
		m.stopEditing()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *Model) stopEditing() {
	m.mode = modeTable
	m.inputErr = ""
	m.input.Blur()
}

func (m *Model) updatePicker(msg tea.KeyMsg) tea.Cmd {
	refs := m.refs()

	switch {
	case key.Matches(msg, m.keys.Cancel, m.keys.Confirm, m.keys.Stations):
		m.mode = modeTable
	case key.Matches(msg, m.keys.Down):
		if len(refs) > 0 {
			m.stationCursor = (m.stationCursor + 1) % len(refs)
		}
	case key.Matches(msg, m.keys.Up):
		if len(refs) > 0 {
			m.stationCursor = (m.stationCursor - 1 + len(refs)) % len(refs)
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.stationCursor < len(refs) {
			m.toggleStation(refs[m.stationCursor].ID)
		}
	case key.Matches(msg, m.keys.AllStations):
		m.selections[m.Kind()] = nil
	}
	return nil
}

// toggleStation flips id in the live selection. Single-select reports keep
// at most one station.
func (m *Model) toggleStation(id string) {
	kind := m.Kind()
	sel := m.selections[kind]
	if m.config().MultiSelect {
		m.selections[kind] = sel.Toggle(id)
		return
	}
	if sel.Contains(id) {
		m.selections[kind] = nil
		return
	}
	m.selections[kind] = models.StationSelection{id}
}

func (m *Model) refs() []models.StationRef {
	return m.state.StationRefs(m.Kind())
}

// syncTable loads the current engine's columns and rows into the table.
func (m *Model) syncTable() {
	cfg := m.config()
	widths := columnWidths(cfg.Columns, max(m.width-8, 60))

	cols := make([]table.Column, len(cfg.Columns))
	for i, c := range cfg.Columns {
		cols[i] = table.Column{Title: c.Label, Width: widths[i]}
	}

	e := m.engine()
	rows := make([]table.Row, 0, len(e.Rows()))
	for _, r := range e.Rows() {
		row := make(table.Row, len(cfg.Columns))
		for i, c := range cfg.Columns {
			row[i] = alignCell(r[c.Key], widths[i], c.Align)
		}
		rows = append(rows, row)
	}

	// Rows must be cleared before the columns change shape.
	m.table.SetRows(nil)
	m.table.SetColumns(cols)
	m.table.SetRows(rows)
	m.table.SetCursor(e.Cursor())
}

// SetSize sets the available size for the reports tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(max(height-16, 5))
	m.syncTable()
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	return []key.Binding{
		m.keys.Generate,
		m.keys.NextPage,
		m.keys.ExportPDF,
		m.keys.ExportExcel,
	}
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keys.PrevKind, m.keys.NextKind, m.keys.Generate},
		{m.keys.PrevPage, m.keys.NextPage, m.keys.Up, m.keys.Down},
		{m.keys.EditStart, m.keys.EditEnd, m.keys.Stations, m.keys.Toggle, m.keys.AllStations},
		{m.keys.ExportPDF, m.keys.ExportExcel},
	}
}

func notify(t app.NotificationType, message string) tea.Cmd {
	return func() tea.Msg {
		return app.AddNotificationMsg{Type: t, Message: message, Duration: app.DefaultNotificationDuration}
	}
}
