// Package stations provides the live station tabs. One model serves each
// station class: reading cards on top, the derived bar charts below, with
// station highlight toggles and, for weather stations, parameter toggles.
package stations

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/hydro-dashboard-tui/internal/app"
	"github.com/j-veylop/hydro-dashboard-tui/internal/models"
	"github.com/j-veylop/hydro-dashboard-tui/internal/overview"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/components"
	"github.com/j-veylop/hydro-dashboard-tui/internal/ui/styles"
)

// keyMap defines the key bindings specific to the station tabs.
type keyMap struct {
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	Clear       key.Binding
	NextParam   key.Binding
	PrevParam   key.Binding
	ToggleParam key.Binding
}

// defaultKeyMap returns the default key bindings for the station tabs.
func defaultKeyMap() keyMap {
	return keyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "prev station"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next station"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" ", "enter"),
			key.WithHelp("space", "highlight station"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "clear selection"),
		),
		NextParam: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next parameter"),
		),
		PrevParam: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev parameter"),
		),
		ToggleParam: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "toggle parameter"),
		),
	}
}

// reading is one labelled value on a station card.
type reading struct {
	label string
	value float64
	unit  string
}

// station is a card on the tab. key matches the bar names of the charts.
type station struct {
	key      string
	title    string
	color    lipgloss.Color
	readings []reading
}

// Model is one live station tab.
type Model struct {
	state    *app.State
	kind     models.ReportKind
	title    string
	keys     keyMap
	viewport viewport.Model
	loader   components.Loader
	width    int
	height   int

	cursor   int
	selected map[string]bool

	paramCursor int
	params      map[string]bool
}

// New creates the live tab for a station class. Only the discharge, AWS and
// rain gauge kinds have live panels.
func New(state *app.State, kind models.ReportKind) *Model {
	return &Model{
		state:    state,
		kind:     kind,
		title:    tabTitle(kind),
		keys:     defaultKeyMap(),
		viewport: viewport.New(0, 0),
		loader:   components.NewLoader("stations"),
		selected: make(map[string]bool),
		params:   make(map[string]bool),
	}
}

func tabTitle(kind models.ReportKind) string {
	switch kind {
	case models.ReportDischarge:
		return "Discharge Stations"
	case models.ReportAWS:
		return "Automatic Weather Stations"
	case models.ReportRainGauge:
		return "Rain Gauge Stations"
	}
	return string(kind)
}

// Init initializes the tab.
func (m *Model) Init() tea.Cmd {
	return m.loader.Init()
}

// Activate clears the station and parameter selection. It runs on every
// activation, manual or scheduled.
func (m *Model) Activate() tea.Cmd {
	m.cursor = 0
	m.paramCursor = 0
	m.selected = make(map[string]bool)
	m.params = make(map[string]bool)
	m.viewport.GotoTop()
	return nil
}

// Update handles messages for the tab.
func (m *Model) Update(msg tea.Msg) (app.Tab, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKeyMsg(msg))

	case app.SnapshotUpdatedMsg:
		m.pruneSelection()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.loader, cmd = m.loader.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) tea.Cmd {
	list := m.stations()

	switch {
	case key.Matches(msg, m.keys.Down):
		if len(list) > 0 {
			m.cursor = (m.cursor + 1) % len(list)
		}
	case key.Matches(msg, m.keys.Up):
		if len(list) > 0 {
			m.cursor = (m.cursor - 1 + len(list)) % len(list)
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(list) {
			k := list[m.cursor].key
			if m.selected[k] {
				delete(m.selected, k)
			} else {
				m.selected[k] = true
			}
		}
	case key.Matches(msg, m.keys.Clear):
		m.selected = make(map[string]bool)
		m.params = make(map[string]bool)
	case m.hasParams() && key.Matches(msg, m.keys.NextParam):
		if n := len(m.bundle().Charts); n > 0 {
			m.paramCursor = (m.paramCursor + 1) % n
		}
	case m.hasParams() && key.Matches(msg, m.keys.PrevParam):
		if n := len(m.bundle().Charts); n > 0 {
			m.paramCursor = (m.paramCursor - 1 + n) % n
		}
	case m.hasParams() && key.Matches(msg, m.keys.ToggleParam):
		charts := m.bundle().Charts
		if m.paramCursor < len(charts) {
			k := charts[m.paramCursor].Key
			if m.params[k] {
				delete(m.params, k)
			} else {
				m.params[k] = true
			}
		}
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return cmd
	}
	return nil
}

// pruneSelection drops selected stations that left the feed.
func (m *Model) pruneSelection() {
	list := m.stations()
	present := make(map[string]bool, len(list))
	for _, s := range list {
		present[s.key] = true
	}
	for k := range m.selected {
		if !present[k] {
			delete(m.selected, k)
		}
	}
	if m.cursor >= len(list) {
		m.cursor = max(len(list)-1, 0)
	}
}

// hasParams reports whether the tab offers parameter toggles.
func (m *Model) hasParams() bool {
	return m.kind == models.ReportAWS
}

func (m *Model) snapshot() (overview.Snapshot, bool) {
	return m.state.Snapshot()
}

func (m *Model) bundle() models.StatsBundle {
	snap, ok := m.snapshot()
	if !ok {
		return models.StatsBundle{}
	}
	switch m.kind {
	case models.ReportDischarge:
		return snap.DischargeStats
	case models.ReportAWS:
		return snap.WeatherStats
	case models.ReportRainGauge:
		return snap.RainStats
	}
	return models.StatsBundle{}
}

// charts returns the charts to draw. An empty parameter selection shows all.
func (m *Model) charts() []models.Chart {
	all := m.bundle().Charts
	if len(m.params) == 0 {
		return all
	}
	shown := make([]models.Chart, 0, len(m.params))
	for _, c := range all {
		if m.params[c.Key] {
			shown = append(shown, c)
		}
	}
	return shown
}

func (m *Model) stations() []station {
	snap, ok := m.snapshot()
	if !ok {
		return nil
	}

	var list []station
	switch m.kind {
	case models.ReportDischarge:
		for _, s := range snap.Discharge {
			name := s.RiverName
			if name == "" {
				name = models.RiverName(s.Title)
			}
			list = append(list, station{
				key:   name,
				title: s.Title,
				color: styles.StationColor(string(s.Color)),
				readings: []reading{
					{"Discharge", s.Discharge, "m³/s"},
					{"Velocity", s.Velocity, "m/s"},
					{"Water Level", s.WaterLevel, "m"},
				},
			})
		}
	case models.ReportAWS:
		for _, s := range snap.Weather {
			list = append(list, station{
				key:   s.ChartKey,
				title: s.Title,
				color: styles.StationColor(string(s.Color)),
				readings: []reading{
					{"Temperature", s.Temperature, "°C"},
					{"Humidity", s.RelativeHumidity, "%"},
					{"Wind", s.WindSpeed, "m/s"},
					{"Rain (day)", s.RainfallDay, "mm"},
				},
			})
		}
	case models.ReportRainGauge:
		for _, s := range snap.RainGauges {
			list = append(list, station{
				key:   s.ChartKey,
				title: s.Title,
				color: styles.StationColor(string(s.Color)),
				readings: []reading{
					{"Rainfall HR", s.RainfallHR, "mm"},
					{"Rainfall Total", s.RainfallTotal, "mm"},
				},
			})
		}
	}
	return list
}

// SetSize sets the available size for the tab.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = height
}

// ShortHelp returns the key bindings for the short help view.
func (m *Model) ShortHelp() []key.Binding {
	b := []key.Binding{m.keys.Down, m.keys.Toggle, m.keys.Clear}
	if m.hasParams() {
		b = append(b, m.keys.ToggleParam)
	}
	return b
}

// FullHelp returns the key bindings for the full help view.
func (m *Model) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{
		{m.keys.Up, m.keys.Down},
		{m.keys.Toggle, m.keys.Clear},
	}
	if m.hasParams() {
		groups = append(groups, []key.Binding{m.keys.PrevParam, m.keys.NextParam, m.keys.ToggleParam})
	}
	return groups
}
